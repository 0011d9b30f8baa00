package httputil

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// DefaultListLimit is the page size when limit is omitted.
	DefaultListLimit = 50
	// MaxListLimit caps the page size of key listings.
	MaxListLimit = 500
)

// ListQuery holds the paging and filtering parameters of a key listing.
type ListQuery struct {
	Offset int
	Limit  int
	Prefix string
}

// ParseListQuery reads offset, limit and prefix from the query string.
// GET /v1/values?prefix=db/&offset=0&limit=50
func ParseListQuery(c *gin.Context) (ListQuery, error) {
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		return ListQuery{}, fmt.Errorf("invalid offset parameter: must be a non-negative integer")
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultListLimit)))
	if err != nil || limit < 1 || limit > MaxListLimit {
		return ListQuery{}, fmt.Errorf("invalid limit parameter: must be between 1 and %d", MaxListLimit)
	}

	return ListQuery{Offset: offset, Limit: limit, Prefix: c.Query("prefix")}, nil
}

// Filter returns the keys starting with q.Prefix. keys must be sorted.
func (q ListQuery) Filter(keys []string) []string {
	if q.Prefix == "" {
		return keys
	}
	start := sort.SearchStrings(keys, q.Prefix)
	end := start
	for end < len(keys) && strings.HasPrefix(keys[end], q.Prefix) {
		end++
	}
	return keys[start:end]
}

// ParseLimit reads an optional positive limit parameter. Zero means the
// parameter was absent.
func ParseLimit(c *gin.Context) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid limit parameter: must be a positive integer")
	}
	return n, nil
}
