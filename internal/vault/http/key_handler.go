package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	cryptoUseCase "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/crypto/usecase"
	"github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/httputil"
	storageUseCase "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/storage/usecase"
	"github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/vault/http/dto"
	vaultUseCase "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/vault/usecase"
)

// KeyStatusReader exposes the key manager snapshot.
type KeyStatusReader interface {
	Status() cryptoUseCase.KeyStatus
}

// ProviderStatusReader exposes storage provider availability.
type ProviderStatusReader interface {
	Degraded() bool
	Providers() []storageUseCase.ProviderStatus
}

// KeyHandler handles root key and storage status requests.
type KeyHandler struct {
	vault     vaultUseCase.Vault
	keys      KeyStatusReader
	providers ProviderStatusReader
	logger    *slog.Logger
}

// NewKeyHandler creates a new key handler.
func NewKeyHandler(
	vault vaultUseCase.Vault,
	keys KeyStatusReader,
	providers ProviderStatusReader,
	logger *slog.Logger,
) *KeyHandler {
	return &KeyHandler{
		vault:     vault,
		keys:      keys,
		providers: providers,
		logger:    logger,
	}
}

// StatusHandler returns the root key versions and rotation schedule.
// GET /v1/keys
func (h *KeyHandler) StatusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.keys.Status())
}

// RotateHandler forces a root key rotation.
// POST /v1/keys/rotate
// Returns 200 OK with the new version, 409 when a rotation is already running.
func (h *KeyHandler) RotateHandler(c *gin.Context) {
	key, err := h.vault.Rotate(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRootKeyToResponse(key))
}

// StorageStatusHandler reports which providers answered the last probe.
// GET /v1/storage/providers
func (h *KeyHandler) StorageStatusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, dto.StorageStatusResponse{
		Degraded:  h.providers.Degraded(),
		Providers: h.providers.Providers(),
	})
}
