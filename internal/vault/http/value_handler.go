// Package http provides HTTP handlers for encrypted values, root key status
// and storage provider status.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	cryptoDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/crypto/domain"
	"github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/httputil"
	customValidation "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/validation"
	vaultDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/vault/domain"
	"github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/vault/http/dto"
	vaultUseCase "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/vault/usecase"
)

// ValueHandler handles HTTP requests for encrypted values.
type ValueHandler struct {
	vault  vaultUseCase.Vault
	logger *slog.Logger
}

// NewValueHandler creates a new value handler.
func NewValueHandler(vault vaultUseCase.Vault, logger *slog.Logger) *ValueHandler {
	return &ValueHandler{
		vault:  vault,
		logger: logger,
	}
}

// PutHandler encrypts and stores a value.
// PUT /v1/values/*key
// Returns 201 Created with envelope metadata (no ciphertext, no plaintext).
func (h *ValueHandler) PutHandler(c *gin.Context) {
	key, ok := h.keyParam(c)
	if !ok {
		return
	}

	var req dto.PutValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	value, err := req.DecodedValue()
	if err != nil {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid base64 value: %w", err), h.logger)
		return
	}
	defer cryptoDomain.Zero(value)

	sensitivity, err := req.ParsedSensitivity()
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	env, err := h.vault.Put(c.Request.Context(), key, value, sensitivity)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapEnvelopeToResponse(key, env))
}

// GetHandler decrypts and returns a value.
// GET /v1/values/*key
// Returns 200 OK with the plaintext, 404 when no provider holds the key.
func (h *ValueHandler) GetHandler(c *gin.Context) {
	key, ok := h.keyParam(c)
	if !ok {
		return
	}

	value, found, err := h.vault.Get(c.Request.Context(), key)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	if !found {
		httputil.HandleErrorGin(c, vaultDomain.ErrValueNotFound, h.logger)
		return
	}

	// SECURITY: zero plaintext once the response is written
	defer cryptoDomain.Zero(value)

	c.JSON(http.StatusOK, dto.ValueResponse{Key: key, Value: value})
}

// DeleteHandler removes a value. With ?secure=true every provider's copy is
// overwritten before removal.
// DELETE /v1/values/*key
// Returns 204 No Content.
func (h *ValueHandler) DeleteHandler(c *gin.Context) {
	key, ok := h.keyParam(c)
	if !ok {
		return
	}

	secure, err := strconv.ParseBool(c.DefaultQuery("secure", "false"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid secure parameter: must be a boolean"), h.logger)
		return
	}

	if secure {
		err = h.vault.SecureDelete(c.Request.Context(), key)
	} else {
		err = h.vault.Delete(c.Request.Context(), key)
	}
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// ListHandler returns stored keys with pagination support.
// GET /v1/values?prefix=db/&offset=0&limit=50
func (h *ValueHandler) ListHandler(c *gin.Context) {
	query, err := httputil.ParseListQuery(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	keys, err := h.vault.List(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapKeysToListResponse(query.Filter(keys), query.Offset, query.Limit))
}

func (h *ValueHandler) keyParam(c *gin.Context) (string, bool) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if key == "" {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("key cannot be empty"), h.logger)
		return "", false
	}
	return key, true
}
