// Package httputil holds the gin helpers shared by the HTTP handlers.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/errors"
)

// unavailableRetryAfter is the Retry-After hint, in seconds, sent when no
// storage provider answered.
const unavailableRetryAfter = "5"

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

type problem struct {
	status  int
	message string
}

// problems maps apperrors codes to responses. An empty message means the
// error text itself is safe to return.
var problems = map[string]problem{
	apperrors.CodeNotFound:     {http.StatusNotFound, "The requested resource was not found"},
	apperrors.CodeConflict:     {http.StatusConflict, "The operation conflicts with the current key state"},
	apperrors.CodeInvalidInput: {http.StatusUnprocessableEntity, ""},
	apperrors.CodeIntegrity:    {http.StatusUnprocessableEntity, "Stored data failed verification or its key material is missing"},
	apperrors.CodeUnavailable:  {http.StatusServiceUnavailable, "No storage provider is currently available"},
	apperrors.CodeInternal:     {http.StatusInternalServerError, "An internal error occurred"},
}

// HandleErrorGin classifies err and writes the matching JSON response. The
// full error is logged; the client only sees the message for its category.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	code := apperrors.Code(err)
	p := problems[code]
	message := p.message
	if message == "" {
		message = err.Error()
	}

	if code == apperrors.CodeUnavailable {
		c.Header("Retry-After", unavailableRetryAfter)
	}

	if logger != nil {
		level := slog.LevelWarn
		if p.status >= http.StatusInternalServerError || code == apperrors.CodeIntegrity {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "request failed",
			slog.Int("status_code", p.status),
			slog.String("error_code", code),
			slog.Any("error", err),
		)
	}

	c.JSON(p.status, ErrorResponse{Error: code, Message: message})
}

// HandleBadRequestGin writes a 400 for bodies or parameters that could not be
// parsed at all.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("bad request", slog.Any("error", err))
	}
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: err.Error()})
}

// HandleValidationErrorGin writes a 422 for requests that parsed but failed
// validation.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("validation failed", slog.Any("error", err))
	}
	c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation_error", Message: err.Error()})
}
