// Package repository persists root key records wrapped by a KMS keeper.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	cryptoDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/crypto/domain"
	storageDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/storage/domain"
)

const recordPrefix = "root-keys/v"

// KeyRecordRepository stores one record per root key version in a Store.
// Records are JSON encoded and wrapped by the keeper before they touch the
// medium, so the store never holds plaintext key material.
type KeyRecordRepository struct {
	store  storageDomain.Store
	keeper cryptoDomain.KMSKeeper
}

// NewKeyRecordRepository creates a repository over store and keeper.
func NewKeyRecordRepository(store storageDomain.Store, keeper cryptoDomain.KMSKeeper) *KeyRecordRepository {
	return &KeyRecordRepository{store: store, keeper: keeper}
}

// Save wraps and writes key. Erased keys are written as metadata-only
// tombstones so the version sequence survives restarts.
func (r *KeyRecordRepository) Save(ctx context.Context, key *cryptoDomain.RootKey) error {
	record := key
	if key.IsErased() {
		record = key.Metadata()
	}

	plaintext, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode root key record: %w", err)
	}
	defer cryptoDomain.Zero(plaintext)

	wrapped, err := r.keeper.Encrypt(ctx, plaintext)
	if err != nil {
		return fmt.Errorf("failed to wrap root key record: %w", err)
	}

	if !r.store.Write(ctx, recordName(key.Version), wrapped) {
		return fmt.Errorf("failed to write root key record v%d: %w", key.Version, storageDomain.ErrProviderUnavailable)
	}
	return nil
}

// Get loads one version.
func (r *KeyRecordRepository) Get(ctx context.Context, version uint) (*cryptoDomain.RootKey, error) {
	wrapped, outcome := r.store.Read(ctx, recordName(version))
	switch outcome {
	case storageDomain.OutcomeAbsent:
		return nil, cryptoDomain.ErrKeyNotFound
	case storageDomain.OutcomeUnavailable:
		return nil, fmt.Errorf("failed to read root key record v%d: %w", version, storageDomain.ErrProviderUnavailable)
	}
	return r.unwrap(ctx, wrapped)
}

// List loads every persisted version ordered by version.
func (r *KeyRecordRepository) List(ctx context.Context) ([]*cryptoDomain.RootKey, error) {
	names, ok := r.store.List(ctx)
	if !ok {
		return nil, fmt.Errorf("failed to list root key records: %w", storageDomain.ErrProviderUnavailable)
	}

	var keys []*cryptoDomain.RootKey
	for _, name := range names {
		version, ok := parseRecordName(name)
		if !ok {
			continue
		}
		key, err := r.Get(ctx, version)
		if err != nil {
			for _, k := range keys {
				k.Wipe()
			}
			return nil, err
		}
		keys = append(keys, key)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i].Version < keys[j].Version })
	return keys, nil
}

// Shred overwrites the persisted record for version with the zero, ones and
// random passes and removes it.
func (r *KeyRecordRepository) Shred(ctx context.Context, version uint) error {
	if !storageDomain.Shred(ctx, r.store, recordName(version)) {
		return fmt.Errorf("failed to shred root key record v%d: %w", version, storageDomain.ErrProviderUnavailable)
	}
	return nil
}

func (r *KeyRecordRepository) unwrap(ctx context.Context, wrapped []byte) (*cryptoDomain.RootKey, error) {
	plaintext, err := r.keeper.Decrypt(ctx, wrapped)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to unwrap root key record: %v", cryptoDomain.ErrMissingKeyMaterial, err)
	}
	defer cryptoDomain.Zero(plaintext)

	var key cryptoDomain.RootKey
	if err := json.Unmarshal(plaintext, &key); err != nil {
		return nil, fmt.Errorf("failed to decode root key record: %w", err)
	}
	return &key, nil
}

func recordName(version uint) string {
	return fmt.Sprintf("%s%010d", recordPrefix, version)
}

func parseRecordName(name string) (uint, bool) {
	if !strings.HasPrefix(name, recordPrefix) {
		return 0, false
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(name, recordPrefix), 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}
