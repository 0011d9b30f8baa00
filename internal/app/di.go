// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"go.opentelemetry.io/otel/metric"

	auditHTTP "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/audit/http"
	auditUseCase "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/audit/usecase"
	"github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/config"
	cryptoDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/crypto/domain"
	cryptoService "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/crypto/service"
	cryptoUseCase "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/crypto/usecase"
	"github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/database"
	"github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/errors"
	"github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/http"
	"github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/metrics"
	storageDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/storage/domain"
	storageUseCase "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/storage/usecase"
	vaultHTTP "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/vault/http"
	vaultUseCase "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/vault/usecase"
)

// Container holds all application dependencies and provides methods to access them.
// Components are created on first access.
type Container struct {
	config *config.Config

	// Infrastructure
	logger    *slog.Logger
	db        *sql.DB
	txManager database.TxManager

	// Metrics
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics
	stateGauges     metric.Registration

	// Audit
	auditLog auditUseCase.AuditLog

	// Storage
	stores          []storageDomain.Store
	failsafeManager storageUseCase.FailsafeManager

	// Root keys
	kmsService        cryptoService.KMSService
	kmsKeeper         cryptoDomain.KMSKeeper
	keyStore          storageDomain.Store
	keyRepository     cryptoUseCase.KeyRepository
	keyManager        cryptoUseCase.KeyManager
	rotationScheduler *cryptoUseCase.RotationScheduler
	codec             cryptoService.Codec

	// Vault
	vault vaultUseCase.Vault

	// HTTP
	valueHandler  *vaultHTTP.ValueHandler
	keyHandler    *vaultHTTP.KeyHandler
	auditHandler  *auditHTTP.AuditHandler
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	mu                    sync.Mutex
	loggerInit            sync.Once
	dbInit                sync.Once
	txManagerInit         sync.Once
	metricsProviderInit   sync.Once
	businessMetricsInit   sync.Once
	auditLogInit          sync.Once
	storesInit            sync.Once
	failsafeManagerInit   sync.Once
	kmsServiceInit        sync.Once
	kmsKeeperInit         sync.Once
	keyStoreInit          sync.Once
	keyRepositoryInit     sync.Once
	keyManagerInit        sync.Once
	rotationSchedulerInit sync.Once
	codecInit             sync.Once
	vaultInit             sync.Once
	valueHandlerInit      sync.Once
	keyHandlerInit        sync.Once
	auditHandlerInit      sync.Once
	httpServerInit        sync.Once
	metricsServerInit     sync.Once
	initErrors            map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection used by the sql storage provider.
func (c *Container) DB() (*sql.DB, error) {
	var err error
	c.dbInit.Do(func() {
		c.db, err = c.initDB()
		if err != nil {
			c.initErrors["db"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
func (c *Container) TxManager() (database.TxManager, error) {
	var err error
	c.txManagerInit.Do(func() {
		c.txManager, err = c.initTxManager()
		if err != nil {
			c.initErrors["txManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// MetricsProvider returns the metrics provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		c.metricsProvider, err = c.initMetricsProvider()
		if err != nil {
			c.initErrors["metricsProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder. It is a no-op when
// metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	var err error
	c.businessMetricsInit.Do(func() {
		c.businessMetrics, err = c.initBusinessMetrics()
		if err != nil {
			c.initErrors["businessMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// meterProvider returns the OpenTelemetry meter provider as an interface,
// nil when metrics are disabled.
func (c *Container) meterProvider() (metric.MeterProvider, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, nil
	}
	return provider.MeterProvider(), nil
}

// Shutdown releases every initialized resource in reverse dependency order.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.stateGauges != nil {
		if err := c.stateGauges.Unregister(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("state gauges unregister: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.failsafeManager != nil {
		if err := c.failsafeManager.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("storage close: %w", err))
		}
	} else {
		for _, store := range c.stores {
			if err := closeStore(store); err != nil {
				shutdownErrors = append(shutdownErrors, fmt.Errorf("storage close: %w", err))
			}
		}
	}

	if c.keyStore != nil {
		if err := closeStore(c.keyStore); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("key store close: %w", err))
		}
	}

	if c.kmsKeeper != nil {
		if err := c.kmsKeeper.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("kms keeper close: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	return errors.Join(shutdownErrors...)
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB opens the database pool. Reachability is left to the failsafe probe.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(context.Background(), database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initTxManager creates the transaction manager using the database connection.
func (c *Container) initTxManager() (database.TxManager, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}

func (c *Container) initMetricsProvider() (*metrics.Provider, error) {
	if !c.config.MetricsEnabled {
		return nil, nil
	}
	provider, err := metrics.NewProvider(c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics provider: %w", err)
	}
	return provider, nil
}

func (c *Container) initBusinessMetrics() (metrics.BusinessMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for business metrics: %w", err)
	}
	if provider == nil {
		return metrics.NewNoOpBusinessMetrics(), nil
	}
	return metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
}
