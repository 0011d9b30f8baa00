package app

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	auditHTTP "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/audit/http"
	auditService "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/audit/service"
	auditUseCase "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/audit/usecase"
	cryptoDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/crypto/domain"
	cryptoService "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/crypto/service"
)

const auditSigningKeySize = 32

// AuditLog returns the in-memory audit ring buffer.
func (c *Container) AuditLog() (auditUseCase.AuditLog, error) {
	var err error
	c.auditLogInit.Do(func() {
		c.auditLog, err = c.initAuditLog()
		if err != nil {
			c.initErrors["auditLog"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditLog"]; exists {
		return nil, storedErr
	}
	return c.auditLog, nil
}

// AuditHandler returns the audit HTTP handler.
func (c *Container) AuditHandler() (*auditHTTP.AuditHandler, error) {
	var err error
	c.auditHandlerInit.Do(func() {
		var auditLog auditUseCase.AuditLog
		auditLog, err = c.AuditLog()
		if err != nil {
			err = fmt.Errorf("failed to get audit log for audit handler: %w", err)
			c.initErrors["auditHandler"] = err
			return
		}
		c.auditHandler = auditHTTP.NewAuditHandler(auditLog, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditHandler"]; exists {
		return nil, storedErr
	}
	return c.auditHandler, nil
}

// initAuditLog signs events with AUDIT_SIGNING_KEY, or a per-process random
// key when unset, and signs exports with a fresh ML-DSA-65 key pair.
func (c *Container) initAuditLog() (auditUseCase.AuditLog, error) {
	secret, err := c.auditSigningKey()
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(secret)

	signer, err := auditService.NewEventSigner(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit event signer: %w", err)
	}

	exportSigner, err := cryptoService.NewMLDSA65Signer()
	if err != nil {
		return nil, fmt.Errorf("failed to create audit export signer: %w", err)
	}

	return auditUseCase.NewAuditLog(
		auditUseCase.Config{Capacity: c.config.AuditCapacity},
		auditService.NewRedactor(),
		signer,
		exportSigner,
		c.Logger(),
	), nil
}

func (c *Container) auditSigningKey() ([]byte, error) {
	if c.config.AuditSigningKey == "" {
		secret := make([]byte, auditSigningKeySize)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("failed to generate audit signing key: %w", err)
		}
		c.Logger().Warn("AUDIT_SIGNING_KEY not set, audit signatures are valid for this process only")
		return secret, nil
	}

	secret, err := base64.StdEncoding.DecodeString(c.config.AuditSigningKey)
	if err != nil {
		return nil, fmt.Errorf("invalid AUDIT_SIGNING_KEY: %w", err)
	}
	if len(secret) != auditSigningKeySize {
		return nil, fmt.Errorf("invalid AUDIT_SIGNING_KEY: expected %d bytes, got %d", auditSigningKeySize, len(secret))
	}
	return secret, nil
}
