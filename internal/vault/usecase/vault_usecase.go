package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	auditDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/audit/domain"
	cryptoDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/crypto/domain"
	cryptoService "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/crypto/service"
	cryptoUseCase "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/crypto/usecase"
	apperrors "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/errors"
	storageUseCase "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/storage/usecase"
	"github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/validation"
	vaultDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/vault/domain"
)

type vault struct {
	codec      cryptoService.Codec
	keyManager cryptoUseCase.KeyManager
	storage    storageUseCase.FailsafeManager
	auditLog   AuditRecorder
	logger     *slog.Logger
}

// NewVault creates a Vault.
func NewVault(
	codec cryptoService.Codec,
	keyManager cryptoUseCase.KeyManager,
	storage storageUseCase.FailsafeManager,
	auditLog AuditRecorder,
	logger *slog.Logger,
) Vault {
	return &vault{
		codec:      codec,
		keyManager: keyManager,
		storage:    storage,
		auditLog:   auditLog,
		logger:     logger,
	}
}

// Put seals value under the current root key and writes the record.
func (v *vault) Put(
	ctx context.Context,
	key string,
	value []byte,
	s vaultDomain.Sensitivity,
) (*cryptoDomain.Envelope, error) {
	if err := validation.ValidateStorageKey(key); err != nil {
		return nil, err
	}
	mode := s.Mode()

	var env *cryptoDomain.Envelope
	err := v.keyManager.WithCurrentKey(func(rootKey *cryptoDomain.RootKey) error {
		var err error
		env, err = v.codec.Encrypt(ctx, value, mode, rootKey, cryptoService.WithAssociatedData([]byte(key)))
		return err
	})
	if err != nil {
		v.record(ctx, "encrypt", auditDomain.StatusFailure, map[string]any{
			"entry":  key,
			"mode":   string(mode),
			"reason": err.Error(),
		})
		return nil, err
	}
	v.record(ctx, "encrypt", auditDomain.StatusSuccess, map[string]any{
		"entry":     key,
		"mode":      string(mode),
		"algorithm": env.AlgorithmTag,
		"version":   env.KeyVersion,
	})

	data, err := vaultDomain.MarshalRecord(&vaultDomain.Record{Key: key, Sensitivity: s, Envelope: env})
	if err != nil {
		return nil, err
	}
	if err := v.storage.Write(ctx, vaultDomain.RecordName(key), data); err != nil {
		return nil, err
	}
	return env, nil
}

// PutJSON marshals value and stores it.
func (v *vault) PutJSON(
	ctx context.Context,
	key string,
	value any,
	s vaultDomain.Sensitivity,
) (*cryptoDomain.Envelope, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
	}
	defer cryptoDomain.Zero(data)
	return v.Put(ctx, key, data, s)
}

// Get reads the record and opens its envelope with the key version it names.
func (v *vault) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := validation.ValidateStorageKey(key); err != nil {
		return nil, false, err
	}

	data, found, err := v.storage.Read(ctx, vaultDomain.RecordName(key))
	if err != nil || !found {
		return nil, false, err
	}

	record, err := vaultDomain.UnmarshalRecord(data)
	if err == nil && record.Key != key {
		err = fmt.Errorf("%w: record belongs to another key", vaultDomain.ErrCorruptRecord)
	}
	if err != nil {
		v.record(ctx, "decrypt", auditDomain.StatusFailure, map[string]any{
			"entry":  key,
			"reason": err.Error(),
		})
		return nil, false, err
	}

	env := record.Envelope
	var plaintext []byte
	err = v.keyManager.WithKey(env.KeyVersion, func(rootKey *cryptoDomain.RootKey) error {
		var err error
		plaintext, err = v.codec.Decrypt(ctx, env, rootKey, cryptoService.WithAssociatedData([]byte(key)))
		return err
	})
	if errors.Is(err, cryptoDomain.ErrKeyNotFound) {
		err = fmt.Errorf("%w: root key version %d is not available", cryptoDomain.ErrMissingKeyMaterial, env.KeyVersion)
	}
	if err != nil {
		v.logger.Warn("failed to open stored envelope",
			slog.String("entry", key),
			slog.Uint64("version", uint64(env.KeyVersion)),
			slog.Any("error", err),
		)
		v.record(ctx, "decrypt", auditDomain.StatusFailure, map[string]any{
			"entry":   key,
			"mode":    string(env.Mode),
			"version": env.KeyVersion,
			"reason":  err.Error(),
		})
		return nil, false, err
	}

	v.record(ctx, "decrypt", auditDomain.StatusSuccess, map[string]any{
		"entry":   key,
		"mode":    string(env.Mode),
		"version": env.KeyVersion,
	})
	return plaintext, true, nil
}

// GetJSON reads the value for key and unmarshals it into out.
func (v *vault) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	data, found, err := v.Get(ctx, key)
	if err != nil || !found {
		return found, err
	}
	defer cryptoDomain.Zero(data)

	if err := json.Unmarshal(data, out); err != nil {
		return true, apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
	}
	return true, nil
}

// Delete removes the record for key.
func (v *vault) Delete(ctx context.Context, key string) error {
	if err := validation.ValidateStorageKey(key); err != nil {
		return err
	}
	return v.storage.Delete(ctx, vaultDomain.RecordName(key))
}

// SecureDelete shreds the record for key.
func (v *vault) SecureDelete(ctx context.Context, key string) error {
	if err := validation.ValidateStorageKey(key); err != nil {
		return err
	}
	return v.storage.SecureDelete(ctx, vaultDomain.RecordName(key))
}

// List returns the stored keys, ignoring names outside the value namespace.
func (v *vault) List(ctx context.Context) ([]string, error) {
	names, err := v.storage.List(ctx)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(names))
	for _, name := range names {
		if key, ok := vaultDomain.KeyFromRecordName(name); ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Rotate replaces the root key.
func (v *vault) Rotate(ctx context.Context) (*cryptoDomain.RootKey, error) {
	return v.keyManager.Rotate(ctx)
}

func (v *vault) record(ctx context.Context, operation string, status auditDomain.Status, metadata map[string]any) {
	if v.auditLog == nil {
		return
	}
	_, err := v.auditLog.Record(ctx, auditDomain.Event{
		Type:      auditDomain.EventTypeCrypto,
		Operation: operation,
		Status:    status,
		Metadata:  metadata,
	})
	if err != nil {
		v.logger.Error("failed to record audit event",
			slog.String("operation", operation),
			slog.Any("error", err),
		)
	}
}
