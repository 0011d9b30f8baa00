package app

import (
	"context"
	"fmt"
	"log/slog"

	cryptoDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/crypto/domain"
	cryptoRepository "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/crypto/repository"
	cryptoService "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/crypto/service"
	cryptoUseCase "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/crypto/usecase"
	storageDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/storage/domain"
	storageRepository "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/storage/repository"
)

// KMSService returns the KMS service.
func (c *Container) KMSService() cryptoService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = cryptoService.NewKMSService()
	})
	return c.kmsService
}

// KMSKeeper returns the keeper that wraps persisted root key records.
func (c *Container) KMSKeeper() (cryptoDomain.KMSKeeper, error) {
	var err error
	c.kmsKeeperInit.Do(func() {
		c.kmsKeeper, err = c.initKMSKeeper()
		if err != nil {
			c.initErrors["kmsKeeper"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["kmsKeeper"]; exists {
		return nil, storedErr
	}
	return c.kmsKeeper, nil
}

// KeyStore returns the blob store holding wrapped root key records.
func (c *Container) KeyStore() (storageDomain.Store, error) {
	var err error
	c.keyStoreInit.Do(func() {
		c.keyStore, err = c.initKeyStore()
		if err != nil {
			c.initErrors["keyStore"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyStore"]; exists {
		return nil, storedErr
	}
	return c.keyStore, nil
}

// KeyRepository returns the root key record repository.
func (c *Container) KeyRepository() (cryptoUseCase.KeyRepository, error) {
	var err error
	c.keyRepositoryInit.Do(func() {
		c.keyRepository, err = c.initKeyRepository()
		if err != nil {
			c.initErrors["keyRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyRepository"]; exists {
		return nil, storedErr
	}
	return c.keyRepository, nil
}

// KeyManager returns the key manager with persisted versions loaded.
func (c *Container) KeyManager() (cryptoUseCase.KeyManager, error) {
	var err error
	c.keyManagerInit.Do(func() {
		c.keyManager, err = c.initKeyManager()
		if err != nil {
			c.initErrors["keyManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyManager"]; exists {
		return nil, storedErr
	}
	return c.keyManager, nil
}

// RotationScheduler returns the background rotation scheduler.
func (c *Container) RotationScheduler() (*cryptoUseCase.RotationScheduler, error) {
	var err error
	c.rotationSchedulerInit.Do(func() {
		c.rotationScheduler, err = c.initRotationScheduler()
		if err != nil {
			c.initErrors["rotationScheduler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["rotationScheduler"]; exists {
		return nil, storedErr
	}
	return c.rotationScheduler, nil
}

// Codec returns the envelope codec.
func (c *Container) Codec() cryptoService.Codec {
	c.codecInit.Do(func() {
		aeads := cryptoService.NewAEADManager()
		c.Logger().Debug("envelope codec ready", slog.Any("aead_algorithms", aeads.Algorithms()))
		c.codec = cryptoService.NewCodec(aeads)
	})
	return c.codec
}

func (c *Container) initKMSKeeper() (cryptoDomain.KMSKeeper, error) {
	if c.config.KMSKeyURI == "" {
		return nil, fmt.Errorf("%w: KMS_KEY_URI is required to persist root keys", cryptoDomain.ErrInvalidKMSKeyURI)
	}
	keeper, err := c.KMSService().OpenKeeper(context.Background(), c.config.KMSKeyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open kms keeper: %w", err)
	}
	return keeper, nil
}

func (c *Container) initKeyStore() (storageDomain.Store, error) {
	store, err := storageRepository.OpenBlobStore(
		context.Background(),
		"keystore",
		c.config.KeystoreBlobURL,
		c.config.StorageNamespace,
		c.Logger(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open key store: %w", err)
	}
	return store, nil
}

func (c *Container) initKeyRepository() (cryptoUseCase.KeyRepository, error) {
	keeper, err := c.KMSKeeper()
	if err != nil {
		return nil, fmt.Errorf("failed to get kms keeper for key repository: %w", err)
	}
	store, err := c.KeyStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get key store for key repository: %w", err)
	}
	return cryptoRepository.NewKeyRecordRepository(store, keeper), nil
}

func (c *Container) initKeyManager() (cryptoUseCase.KeyManager, error) {
	logger := c.Logger()

	algorithm, err := cryptoDomain.ParseAlgorithm(c.config.EnvelopeAEAD)
	if err != nil {
		return nil, fmt.Errorf("invalid ENVELOPE_AEAD: %w", err)
	}

	repo, err := c.KeyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get key repository for key manager: %w", err)
	}

	auditLog, err := c.AuditLog()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log for key manager: %w", err)
	}

	manager := cryptoUseCase.NewKeyManager(
		cryptoUseCase.Config{
			Algorithm:        algorithm,
			RotationInterval: c.config.KeyRotationInterval,
			RetentionGrace:   c.config.KeyRetentionGrace,
		},
		repo,
		cryptoService.NewKeyGenerator(),
		auditLog,
		logger,
	)

	if err := manager.Load(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to load root keys: %w", err)
	}

	status := manager.Status()
	logger.Info("root keys loaded",
		slog.Bool("initialized", status.Initialized),
		slog.Uint64("current_version", uint64(status.CurrentVersion)),
	)
	return manager, nil
}

func (c *Container) initRotationScheduler() (*cryptoUseCase.RotationScheduler, error) {
	keyManager, err := c.KeyManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get key manager for rotation scheduler: %w", err)
	}
	return cryptoUseCase.NewRotationScheduler(
		cryptoUseCase.SchedulerConfig{Interval: c.config.KeyRotationCheckPeriod},
		keyManager,
		c.Logger(),
	), nil
}
