package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditHTTP "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/audit/http"
	auditService "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/audit/service"
	auditUseCase "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/audit/usecase"
	cryptoUseCase "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/crypto/usecase"
	"github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/metrics"
	storageUseCase "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/storage/usecase"
	vaultHTTP "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/vault/http"
	"github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/vault/usecase/mocks"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type stubKeys struct {
	initialized bool
}

func (s stubKeys) Status() cryptoUseCase.KeyStatus {
	return cryptoUseCase.KeyStatus{Initialized: s.initialized}
}

type stubProviders struct {
	degraded bool
}

func (s stubProviders) Degraded() bool {
	return s.degraded
}

func (s stubProviders) Providers() []storageUseCase.ProviderStatus {
	return []storageUseCase.ProviderStatus{{Name: "memory", Priority: 0, Available: !s.degraded}}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRoutedServer(t *testing.T, cfg RouterConfig, vault *mocks.MockVault) *Server {
	t.Helper()
	logger := discardLogger()

	signer, err := auditService.NewEventSigner([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)
	auditLog := auditUseCase.NewAuditLog(auditUseCase.Config{Capacity: 10}, auditService.NewRedactor(), signer, nil, logger)

	keys := stubKeys{initialized: true}
	providers := stubProviders{}

	server := NewServer(providers, keys, "localhost", 0, logger)
	server.SetupRouter(
		cfg,
		vaultHTTP.NewValueHandler(vault, logger),
		vaultHTTP.NewKeyHandler(vault, keys, providers, logger),
		auditHTTP.NewAuditHandler(auditLog, logger),
		nil,
	)
	return server
}

func serve(handler http.Handler, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestHealthHandler(t *testing.T) {
	server := NewServer(nil, nil, "localhost", 8080, discardLogger())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)
	server.healthHandler(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name       string
		providers  vaultHTTP.ProviderStatusReader
		keys       vaultHTTP.KeyStatusReader
		wantCode   int
		wantStatus string
		storage    string
		rootKey    string
	}{
		{
			name:       "Ready",
			providers:  stubProviders{},
			keys:       stubKeys{initialized: true},
			wantCode:   http.StatusOK,
			wantStatus: "ready",
			storage:    "ok",
			rootKey:    "ok",
		},
		{
			name:       "Degraded storage",
			providers:  stubProviders{degraded: true},
			keys:       stubKeys{initialized: true},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "not_ready",
			storage:    "degraded",
			rootKey:    "ok",
		},
		{
			name:       "Uninitialized root key",
			providers:  stubProviders{},
			keys:       stubKeys{},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "not_ready",
			storage:    "ok",
			rootKey:    "uninitialized",
		},
		{
			name:       "Nothing wired",
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "not_ready",
			storage:    "error",
			rootKey:    "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := NewServer(tt.providers, tt.keys, "localhost", 8080, discardLogger())

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)
			server.readinessHandler(c)

			assert.Equal(t, tt.wantCode, w.Code)
			var response struct {
				Status     string            `json:"status"`
				Components map[string]string `json:"components"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.wantStatus, response.Status)
			assert.Equal(t, tt.storage, response.Components["storage"])
			assert.Equal(t, tt.rootKey, response.Components["root_key"])
		})
	}
}

func TestCustomLoggerMiddleware(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	router := gin.New()
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(logger))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "test"})
	})

	w := serve(router, http.MethodGet, "/test")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, buf.String(), `"path":"/test"`)
	assert.Contains(t, buf.String(), `"status":200`)
	assert.Contains(t, buf.String(), w.Header().Get("X-Request-Id"))
}

func TestRecoveryMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(CustomLoggerMiddleware(discardLogger()))
	router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	w := serve(router, http.MethodGet, "/panic")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(RateLimitMiddleware(1, 2, discardLogger()))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/test").Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/test").Code)

	w := serve(router, http.MethodGet, "/test")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "rate_limit_exceeded", response["error"])
}

func TestRateLimitMiddleware_PerClient(t *testing.T) {
	router := gin.New()
	router.Use(RateLimitMiddleware(1, 1, discardLogger()))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	request := func(remoteAddr string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.RemoteAddr = remoteAddr
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, request("10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, request("10.0.0.1:1234"))
	assert.Equal(t, http.StatusOK, request("10.0.0.2:1234"))
}

func TestRateLimiterStore_CleanupStale(t *testing.T) {
	store := &rateLimiterStore{rps: 1, burst: 1}
	store.getLimiter("10.0.0.1")

	store.cleanupStale(time.Now().Add(-time.Hour))
	_, ok := store.limiters.Load("10.0.0.1")
	assert.True(t, ok)

	store.cleanupStale(time.Now().Add(time.Second))
	_, ok = store.limiters.Load("10.0.0.1")
	assert.False(t, ok)
}

func TestServer_SetupRouter(t *testing.T) {
	vault := &mocks.MockVault{}
	vault.On("Get", mock.Anything, "users/alice").Return([]byte("hello"), true, nil)
	vault.On("List", mock.Anything).Return([]string{"users/alice"}, nil)
	server := newRoutedServer(t, RouterConfig{}, vault)
	handler := server.GetHandler()

	tests := []struct {
		method string
		target string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/ready", http.StatusOK},
		{http.MethodGet, "/v1/values/users/alice", http.StatusOK},
		{http.MethodGet, "/v1/values", http.StatusOK},
		{http.MethodGet, "/v1/keys", http.StatusOK},
		{http.MethodGet, "/v1/storage/providers", http.StatusOK},
		{http.MethodGet, "/v1/audit/events", http.StatusOK},
		{http.MethodGet, "/v1/audit/stats", http.StatusOK},
		{http.MethodGet, "/v1/audit/verify", http.StatusOK},
		{http.MethodGet, "/v1/audit/export", http.StatusServiceUnavailable},
		{http.MethodGet, "/metrics", http.StatusNotFound},
		{http.MethodGet, "/nonexistent", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			w := serve(handler, tt.method, tt.target)
			assert.Equal(t, tt.want, w.Code)
		})
	}
	vault.AssertExpectations(t)
}

func TestServer_SetupRouter_RateLimitedAPI(t *testing.T) {
	vault := &mocks.MockVault{}
	vault.On("List", mock.Anything).Return([]string{}, nil)
	server := newRoutedServer(t, RouterConfig{RateLimitEnabled: true, RateLimitRPS: 1, RateLimitBurst: 1}, vault)
	handler := server.GetHandler()

	assert.Equal(t, http.StatusOK, serve(handler, http.MethodGet, "/v1/values").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(handler, http.MethodGet, "/v1/values").Code)
	assert.Equal(t, http.StatusOK, serve(handler, http.MethodGet, "/health").Code)
}

func TestServer_StartWithoutRouter(t *testing.T) {
	server := NewServer(nil, nil, "localhost", 0, discardLogger())
	assert.Error(t, server.Start(context.Background()))
}

func TestServer_ShutdownGracefully(t *testing.T) {
	server := newRoutedServer(t, RouterConfig{}, &mocks.MockVault{})

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(context.Background())
	}()

	time.Sleep(100 * time.Millisecond)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, server.Shutdown(shutdownCtx))
	assert.NoError(t, <-errChan)
}

func TestMetricsServer_Endpoints(t *testing.T) {
	provider, err := metrics.NewProvider("test_app")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	metricsServer := NewMetricsServer("localhost", 8081, discardLogger(), provider.Handler())
	require.NotNil(t, metricsServer)

	w := serve(metricsServer.GetHandler(), http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")

	w = serve(metricsServer.GetHandler(), http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())

	w = serve(metricsServer.GetHandler(), http.MethodPost, "/metrics")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
