package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/audit/domain"
	"github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/audit/http/dto"
	auditService "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/audit/service"
	auditUseCase "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/audit/usecase"
	cryptoService "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/crypto/service"
)

func setupAuditHandler(t *testing.T, withExport bool) (*AuditHandler, auditUseCase.AuditLog) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	signer, err := auditService.NewEventSigner([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	var exportSigner auditUseCase.ExportSigner
	if withExport {
		exportSigner, err = cryptoService.NewMLDSA65Signer()
		require.NoError(t, err)
	}

	auditLog := auditUseCase.NewAuditLog(auditUseCase.Config{Capacity: 10}, auditService.NewRedactor(), signer, exportSigner, logger)
	return NewAuditHandler(auditLog, logger), auditLog
}

func seedEvents(t *testing.T, auditLog auditUseCase.AuditLog) {
	t.Helper()
	ctx := context.Background()
	events := []auditDomain.Event{
		{Type: auditDomain.EventTypeStorage, Operation: "write", Status: auditDomain.StatusSuccess},
		{Type: auditDomain.EventTypeStorage, Operation: "read", Status: auditDomain.StatusFailure},
		{Type: auditDomain.EventTypeKeyManagement, Operation: "rotate", Status: auditDomain.StatusSuccess},
	}
	for _, event := range events {
		_, err := auditLog.Record(ctx, event)
		require.NoError(t, err)
	}
}

func newContext(method, target string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, nil)
	return c, w
}

func TestAuditHandler_ListHandler(t *testing.T) {
	t.Run("Success_AllEvents", func(t *testing.T) {
		handler, auditLog := setupAuditHandler(t, false)
		seedEvents(t, auditLog)

		c, w := newContext(http.MethodGet, "/v1/audit/events")
		handler.ListHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var response dto.ListEventsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Len(t, response.Data, 3)
		assert.Equal(t, "write", response.Data[0].Operation)
		assert.True(t, response.Data[0].Signed)
	})

	t.Run("Success_Filtered", func(t *testing.T) {
		handler, auditLog := setupAuditHandler(t, false)
		seedEvents(t, auditLog)

		c, w := newContext(http.MethodGet, "/v1/audit/events?event_type=storage&status=failure")
		handler.ListHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var response dto.ListEventsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Len(t, response.Data, 1)
		assert.Equal(t, "read", response.Data[0].Operation)
	})

	t.Run("Success_Limit", func(t *testing.T) {
		handler, auditLog := setupAuditHandler(t, false)
		seedEvents(t, auditLog)

		c, w := newContext(http.MethodGet, "/v1/audit/events?limit=1")
		handler.ListHandler(c)

		var response dto.ListEventsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Len(t, response.Data, 1)
		assert.Equal(t, "rotate", response.Data[0].Operation)
	})

	invalid := []struct {
		name  string
		query string
	}{
		{name: "unknown event type", query: "?event_type=network"},
		{name: "unknown status", query: "?status=maybe"},
		{name: "bad since", query: "?since=yesterday"},
		{name: "bad until", query: "?until=tomorrow"},
		{name: "inverted window", query: "?since=2026-02-14T00:00:00Z&until=2026-02-01T00:00:00Z"},
		{name: "bad limit", query: "?limit=0"},
	}
	for _, tt := range invalid {
		t.Run("Error_"+tt.name, func(t *testing.T) {
			handler, _ := setupAuditHandler(t, false)

			c, w := newContext(http.MethodGet, "/v1/audit/events"+tt.query)
			handler.ListHandler(c)

			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		})
	}
}

func TestAuditHandler_ClearAndStats(t *testing.T) {
	handler, auditLog := setupAuditHandler(t, false)
	seedEvents(t, auditLog)

	c, w := newContext(http.MethodGet, "/v1/audit/stats")
	handler.StatsHandler(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var stats auditDomain.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.SuccessCount)
	assert.Equal(t, 1, stats.FailureCount)
	assert.Equal(t, 2, stats.ByType[auditDomain.EventTypeStorage])

	c, w = newContext(http.MethodDelete, "/v1/audit/events")
	handler.ClearHandler(c)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 0, auditLog.Stats().Total)
}

func TestAuditHandler_VerifyHandler(t *testing.T) {
	handler, auditLog := setupAuditHandler(t, false)
	seedEvents(t, auditLog)

	c, w := newContext(http.MethodGet, "/v1/audit/verify")
	handler.VerifyHandler(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response dto.VerifyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response.Valid)
	assert.Equal(t, 3, response.Events)
}

func TestAuditHandler_ExportHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, auditLog := setupAuditHandler(t, true)
		seedEvents(t, auditLog)

		c, w := newContext(http.MethodGet, "/v1/audit/export?event_type=key-management")
		handler.ExportHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var export auditDomain.SignedExport
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &export))
		assert.Len(t, export.Events, 1)
		assert.Equal(t, "ML-DSA-65", export.Algorithm)
		assert.NotEmpty(t, export.Signature)
	})

	t.Run("Error_NoSigner", func(t *testing.T) {
		handler, _ := setupAuditHandler(t, false)

		c, w := newContext(http.MethodGet, "/v1/audit/export")
		handler.ExportHandler(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
