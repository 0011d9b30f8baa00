// Package http provides HTTP handlers for the audit query interface.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	auditDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/audit/domain"
	"github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/audit/http/dto"
	auditUseCase "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/audit/usecase"
	"github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/httputil"
)

// AuditHandler handles HTTP requests for audit events.
type AuditHandler struct {
	auditLog auditUseCase.AuditLog
	logger   *slog.Logger
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(auditLog auditUseCase.AuditLog, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{
		auditLog: auditLog,
		logger:   logger,
	}
}

// ListHandler returns buffered events, oldest first.
// GET /v1/audit/events?event_type=storage&status=failure&since=2026-02-01T00:00:00Z&until=...&limit=100
// since and until are RFC3339 and inclusive. limit keeps the newest events.
func (h *AuditHandler) ListHandler(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapEventsToListResponse(h.auditLog.Query(filter)))
}

// ClearHandler drops every buffered event.
// DELETE /v1/audit/events
func (h *AuditHandler) ClearHandler(c *gin.Context) {
	h.auditLog.Clear()
	h.logger.Info("audit events cleared")
	c.Data(http.StatusNoContent, "application/json", nil)
}

// StatsHandler returns aggregate counts over the buffer.
// GET /v1/audit/stats
func (h *AuditHandler) StatsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.auditLog.Stats())
}

// VerifyHandler checks the signature of every buffered event.
// GET /v1/audit/verify
// Returns 200 OK when every signature verifies, 422 otherwise.
func (h *AuditHandler) VerifyHandler(c *gin.Context) {
	if err := h.auditLog.Verify(); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.VerifyResponse{
		Valid:  true,
		Events: h.auditLog.Stats().Total,
	})
}

// ExportHandler returns the matching events as a signed snapshot.
// GET /v1/audit/export accepts the same filters as ListHandler.
func (h *AuditHandler) ExportHandler(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	export, err := h.auditLog.Export(c.Request.Context(), filter)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, export)
}

func parseFilter(c *gin.Context) (auditDomain.Filter, error) {
	var filter auditDomain.Filter

	switch eventType := auditDomain.EventType(c.Query("event_type")); eventType {
	case "", auditDomain.EventTypeStorage, auditDomain.EventTypeCrypto,
		auditDomain.EventTypeKeyManagement, auditDomain.EventTypeSystem:
		filter.Type = eventType
	default:
		return filter, fmt.Errorf("invalid event_type parameter: %q", eventType)
	}

	switch status := auditDomain.Status(c.Query("status")); status {
	case "", auditDomain.StatusSuccess, auditDomain.StatusFailure, auditDomain.StatusWarning:
		filter.Status = status
	default:
		return filter, fmt.Errorf("invalid status parameter: %q", status)
	}

	if since := c.Query("since"); since != "" {
		parsed, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return filter, fmt.Errorf("invalid since format: must be RFC3339 (e.g., 2026-02-01T00:00:00Z)")
		}
		filter.Since = parsed.UTC()
	}
	if until := c.Query("until"); until != "" {
		parsed, err := time.Parse(time.RFC3339, until)
		if err != nil {
			return filter, fmt.Errorf("invalid until format: must be RFC3339 (e.g., 2026-02-14T23:59:59Z)")
		}
		filter.Until = parsed.UTC()
	}
	if !filter.Since.IsZero() && !filter.Until.IsZero() && filter.Since.After(filter.Until) {
		return filter, fmt.Errorf("since must be before or equal to until")
	}

	limit, err := httputil.ParseLimit(c)
	if err != nil {
		return filter, err
	}
	filter.Limit = limit

	return filter, nil
}
