package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/config"
	storageDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/storage/domain"
	storageRepository "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/storage/repository"
	storageUseCase "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/storage/usecase"
)

// Stores returns the configured storage providers in priority order.
func (c *Container) Stores() ([]storageDomain.Store, error) {
	var err error
	c.storesInit.Do(func() {
		c.stores, err = c.initStores()
		if err != nil {
			c.initErrors["stores"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["stores"]; exists {
		return nil, storedErr
	}
	return c.stores, nil
}

// FailsafeManager returns the initialized failsafe manager.
func (c *Container) FailsafeManager() (storageUseCase.FailsafeManager, error) {
	var err error
	c.failsafeManagerInit.Do(func() {
		c.failsafeManager, err = c.initFailsafeManager()
		if err != nil {
			c.initErrors["failsafeManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["failsafeManager"]; exists {
		return nil, storedErr
	}
	return c.failsafeManager, nil
}

// initStores builds one Store per STORAGE_PROVIDERS entry. The sql provider
// picks the PostgreSQL or MySQL implementation from DB_DRIVER.
func (c *Container) initStores() ([]storageDomain.Store, error) {
	logger := c.Logger()
	stores := make([]storageDomain.Store, 0, len(c.config.StorageProviders))

	for _, provider := range c.config.StorageProviders {
		store, err := c.newStore(provider)
		if err != nil {
			for _, opened := range stores {
				_ = closeStore(opened)
			}
			return nil, err
		}
		stores = append(stores, store)
	}

	if len(stores) == 0 {
		return nil, storageDomain.ErrNoProviders
	}

	logger.Info("storage providers configured", slog.Any("providers", c.config.StorageProviders))
	return stores, nil
}

func (c *Container) newStore(provider string) (storageDomain.Store, error) {
	logger := c.Logger()

	switch provider {
	case config.ProviderSQL:
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for sql store: %w", err)
		}
		txManager, err := c.TxManager()
		if err != nil {
			return nil, fmt.Errorf("failed to get tx manager for sql store: %w", err)
		}
		switch c.config.DBDriver {
		case "mysql":
			return storageRepository.NewMySQLStore(provider, db, txManager, c.config.StorageNamespace, logger), nil
		case "postgres":
			return storageRepository.NewPostgreSQLStore(provider, db, txManager, c.config.StorageNamespace, logger), nil
		default:
			return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	case config.ProviderBlob:
		store, err := storageRepository.OpenBlobStore(
			context.Background(),
			provider,
			c.config.StorageBlobURL,
			c.config.StorageNamespace,
			logger,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to open blob store: %w", err)
		}
		return store, nil
	case config.ProviderSession:
		return storageRepository.NewSessionStore(provider, c.config.SessionIdleTTL), nil
	case config.ProviderMemory:
		return storageRepository.NewMemoryStore(provider), nil
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", provider)
	}
}

// initFailsafeManager builds the manager and runs the startup probe. A
// degraded result is not an error; the manager fails fast until a later probe.
func (c *Container) initFailsafeManager() (storageUseCase.FailsafeManager, error) {
	logger := c.Logger()

	stores, err := c.Stores()
	if err != nil {
		return nil, fmt.Errorf("failed to get stores for failsafe manager: %w", err)
	}

	auditLog, err := c.AuditLog()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log for failsafe manager: %w", err)
	}

	manager, err := storageUseCase.NewFailsafeManager(
		storageUseCase.Config{
			ProbeTimeout:     c.config.StorageProbeTimeout,
			OperationTimeout: c.config.StorageOperationTimeout,
		},
		stores,
		auditLog,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create failsafe manager: %w", err)
	}

	if err := manager.Initialize(context.Background()); err != nil {
		logger.Warn("storage initialized degraded", slog.Any("error", err))
	}

	return manager, nil
}

// closeStore closes store when it holds resources.
func closeStore(store storageDomain.Store) error {
	if closer, ok := store.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
