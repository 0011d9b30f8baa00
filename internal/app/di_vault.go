package app

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"

	"github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/http"
	"github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/metrics"
	vaultHTTP "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/vault/http"
	vaultUseCase "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/vault/usecase"
)

// Vault returns the vault use case, decorated with metrics when enabled.
func (c *Container) Vault() (vaultUseCase.Vault, error) {
	var err error
	c.vaultInit.Do(func() {
		c.vault, err = c.initVault()
		if err != nil {
			c.initErrors["vault"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["vault"]; exists {
		return nil, storedErr
	}
	return c.vault, nil
}

// ValueHandler returns the value HTTP handler.
func (c *Container) ValueHandler() (*vaultHTTP.ValueHandler, error) {
	var err error
	c.valueHandlerInit.Do(func() {
		c.valueHandler, err = c.initValueHandler()
		if err != nil {
			c.initErrors["valueHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["valueHandler"]; exists {
		return nil, storedErr
	}
	return c.valueHandler, nil
}

// KeyHandler returns the key and storage status HTTP handler.
func (c *Container) KeyHandler() (*vaultHTTP.KeyHandler, error) {
	var err error
	c.keyHandlerInit.Do(func() {
		c.keyHandler, err = c.initKeyHandler()
		if err != nil {
			c.initErrors["keyHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyHandler"]; exists {
		return nil, storedErr
	}
	return c.keyHandler, nil
}

// HTTPServer returns the API server with its router configured.
func (c *Container) HTTPServer() (*http.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		c.metricsServer, err = c.initMetricsServer()
		if err != nil {
			c.initErrors["metricsServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

func (c *Container) initVault() (vaultUseCase.Vault, error) {
	keyManager, err := c.KeyManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get key manager for vault: %w", err)
	}

	storage, err := c.FailsafeManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get failsafe manager for vault: %w", err)
	}

	auditLog, err := c.AuditLog()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log for vault: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for vault: %w", err)
	}

	vault := vaultUseCase.NewVault(c.Codec(), keyManager, storage, auditLog, c.Logger())
	if c.config.MetricsEnabled {
		vault = vaultUseCase.NewVaultWithMetrics(vault, businessMetrics)
	}
	return vault, nil
}

func (c *Container) initValueHandler() (*vaultHTTP.ValueHandler, error) {
	vault, err := c.Vault()
	if err != nil {
		return nil, fmt.Errorf("failed to get vault for value handler: %w", err)
	}
	return vaultHTTP.NewValueHandler(vault, c.Logger()), nil
}

func (c *Container) initKeyHandler() (*vaultHTTP.KeyHandler, error) {
	vault, err := c.Vault()
	if err != nil {
		return nil, fmt.Errorf("failed to get vault for key handler: %w", err)
	}
	keyManager, err := c.KeyManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get key manager for key handler: %w", err)
	}
	storage, err := c.FailsafeManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get failsafe manager for key handler: %w", err)
	}
	return vaultHTTP.NewKeyHandler(vault, keyManager, storage, c.Logger()), nil
}

func (c *Container) initHTTPServer() (*http.Server, error) {
	valueHandler, err := c.ValueHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get value handler for http server: %w", err)
	}
	keyHandler, err := c.KeyHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get key handler for http server: %w", err)
	}
	auditHandler, err := c.AuditHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit handler for http server: %w", err)
	}
	keyManager, err := c.KeyManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get key manager for http server: %w", err)
	}
	storage, err := c.FailsafeManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get failsafe manager for http server: %w", err)
	}
	meterProvider, err := c.meterProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get meter provider for http server: %w", err)
	}

	server := http.NewServer(storage, keyManager, c.config.ServerHost, c.config.ServerPort, c.Logger())
	server.SetupRouter(
		http.RouterConfig{
			CORSEnabled:      c.config.CORSEnabled,
			CORSAllowOrigins: c.config.CORSAllowOrigins,
			RateLimitEnabled: c.config.RateLimitEnabled,
			RateLimitRPS:     c.config.RateLimitRequestsPerSec,
			RateLimitBurst:   c.config.RateLimitBurst,
			MetricsNamespace: c.config.MetricsNamespace,
		},
		valueHandler,
		keyHandler,
		auditHandler,
		meterProvider,
	)
	return server, nil
}

// initMetricsServer also registers the storage, root key and audit gauges.
func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
	}
	if provider == nil {
		return nil, nil
	}

	registration, err := c.registerStateGauges(provider.MeterProvider())
	if err != nil {
		return nil, err
	}
	c.stateGauges = registration

	return http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider.Handler()), nil
}

func (c *Container) registerStateGauges(meterProvider metric.MeterProvider) (metric.Registration, error) {
	storage, err := c.FailsafeManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get failsafe manager for state gauges: %w", err)
	}
	keyManager, err := c.KeyManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get key manager for state gauges: %w", err)
	}
	auditLog, err := c.AuditLog()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log for state gauges: %w", err)
	}

	registration, err := metrics.RegisterStateGauges(meterProvider, c.config.MetricsNamespace, metrics.StateObserver{
		ProvidersAvailable: func() int {
			available := 0
			for _, provider := range storage.Providers() {
				if provider.Available {
					available++
				}
			}
			return available
		},
		Degraded:    storage.Degraded,
		KeyVersion:  func() uint { return keyManager.Status().CurrentVersion },
		AuditEvents: func() int { return auditLog.Stats().Total },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register state gauges: %w", err)
	}
	return registration, nil
}
