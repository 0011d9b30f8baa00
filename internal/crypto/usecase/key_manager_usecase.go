package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	auditDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/audit/domain"
	cryptoDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/crypto/domain"
	cryptoService "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/crypto/service"
	storageDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/storage/domain"
)

// DefaultRotationInterval is the default lifetime of a root key version.
const DefaultRotationInterval = 30 * 24 * time.Hour

// Config holds key manager settings.
type Config struct {
	// Algorithm is the AEAD used by new versions.
	Algorithm cryptoDomain.Algorithm
	// RotationInterval is the time between rotations.
	RotationInterval time.Duration
	// RetentionGrace is how long a superseded version stays available for
	// decryption. Zero erases it as part of the rotation.
	RetentionGrace time.Duration
}

type keyManager struct {
	config    Config
	repo      KeyRepository
	generator cryptoService.KeyGenerator
	auditLog  AuditRecorder
	logger    *slog.Logger
	now       func() time.Time

	// lifecycle serializes state-changing operations; rotating rejects a
	// second rotation instead of queueing it.
	lifecycle sync.Mutex
	rotating  atomic.Bool

	mu      sync.RWMutex
	keys    map[uint]*cryptoDomain.RootKey
	current uint
}

// NewKeyManager creates a key manager. repo may be nil, in which case keys
// live only in memory.
func NewKeyManager(
	config Config,
	repo KeyRepository,
	generator cryptoService.KeyGenerator,
	auditLog AuditRecorder,
	logger *slog.Logger,
) KeyManager {
	if config.Algorithm == "" {
		config.Algorithm = cryptoDomain.AESGCM
	}
	if config.RotationInterval <= 0 {
		config.RotationInterval = DefaultRotationInterval
	}
	if config.RetentionGrace < 0 {
		config.RetentionGrace = 0
	}

	return &keyManager{
		config:    config,
		repo:      repo,
		generator: generator,
		auditLog:  auditLog,
		logger:    logger,
		now:       time.Now,
		keys:      make(map[uint]*cryptoDomain.RootKey),
	}
}

// Load restores persisted versions.
func (m *keyManager) Load(ctx context.Context) error {
	if m.repo == nil {
		return nil
	}

	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	keys, err := m.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load root keys: %w", err)
	}

	loaded := make(map[uint]*cryptoDomain.RootKey, len(keys))
	var current uint
	for _, key := range keys {
		loaded[key.Version] = key
		if key.State == cryptoDomain.KeyStateActive && key.Version > current {
			current = key.Version
		}
	}

	// An interrupted rotation can leave two active records; the newest wins.
	now := m.now().UTC()
	for version, key := range loaded {
		if version != current && key.State == cryptoDomain.KeyStateActive {
			key.State = cryptoDomain.KeyStateSuperseded
			key.SupersededAt = &now
		}
	}

	m.mu.Lock()
	for _, key := range m.keys {
		key.Wipe()
	}
	m.keys = loaded
	m.current = current
	m.mu.Unlock()

	m.logger.Info("root keys loaded",
		slog.Int("versions", len(loaded)),
		slog.Uint64("current_version", uint64(current)),
	)
	return nil
}

// Initialize creates the first version, or a fresh one after a forced reset.
func (m *keyManager) Initialize(ctx context.Context, opts InitializeOptions) (*cryptoDomain.RootKey, error) {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	m.mu.RLock()
	initialized := m.current != 0
	m.mu.RUnlock()

	if initialized && !opts.ForceReset {
		m.record(ctx, "initialize", auditDomain.StatusFailure, map[string]any{
			"reason": "already initialized",
		})
		return nil, cryptoDomain.ErrAlreadyInitialized
	}

	if opts.ForceReset {
		for _, version := range m.versions() {
			if err := m.eraseLocked(ctx, version); err != nil {
				m.record(ctx, "initialize", auditDomain.StatusFailure, map[string]any{
					"force_reset": true,
					"reason":      err.Error(),
				})
				return nil, err
			}
		}
	}

	now := m.now().UTC()
	key, err := m.generator.Generate(m.nextVersion(), m.config.Algorithm)
	if err != nil {
		m.record(ctx, "initialize", auditDomain.StatusFailure, map[string]any{"reason": err.Error()})
		return nil, err
	}
	key.CreatedAt = now
	key.NextRotationAt = now.Add(m.config.RotationInterval)

	if err := m.persist(ctx, key); err != nil {
		key.Wipe()
		m.record(ctx, "initialize", auditDomain.StatusFailure, map[string]any{"reason": err.Error()})
		return nil, err
	}

	m.mu.Lock()
	m.keys[key.Version] = key
	m.current = key.Version
	m.mu.Unlock()

	m.logger.Info("root key initialized",
		slog.Uint64("version", uint64(key.Version)),
		slog.String("algorithm", string(key.Algorithm)),
	)
	m.record(ctx, "initialize", auditDomain.StatusSuccess, map[string]any{
		"version":          key.Version,
		"algorithm":        string(key.Algorithm),
		"force_reset":      opts.ForceReset,
		"next_rotation_at": key.NextRotationAt,
	})
	return key.Metadata(), nil
}

// CheckRotation reports whether the current version must be rotated.
func (m *keyManager) CheckRotation() RotationCheck {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.checkRotationLocked()
}

func (m *keyManager) checkRotationLocked() RotationCheck {
	key, ok := m.keys[m.current]
	if !ok {
		return RotationCheck{Reason: RotationReasonNotInitialized}
	}

	check := RotationCheck{Reason: RotationReasonNotDue, NextRotationAt: key.NextRotationAt}
	switch {
	case !m.now().Before(key.NextRotationAt):
		check.Due = true
		check.Reason = RotationReasonScheduled
	case key.Algorithm != m.config.Algorithm:
		check.Due = true
		check.Reason = RotationReasonAlgorithmChanged
	}
	return check
}

// IsRotationDue reports CheckRotation().Due.
func (m *keyManager) IsRotationDue() bool {
	return m.CheckRotation().Due
}

// Rotate installs a new version and supersedes the previous one.
func (m *keyManager) Rotate(ctx context.Context) (*cryptoDomain.RootKey, error) {
	if !m.rotating.CompareAndSwap(false, true) {
		m.record(ctx, "rotate", auditDomain.StatusFailure, map[string]any{
			"reason": "rotation in progress",
		})
		return nil, cryptoDomain.ErrRotationInProgress
	}
	defer m.rotating.Store(false)

	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	m.mu.RLock()
	previous, ok := m.keys[m.current]
	m.mu.RUnlock()
	if !ok {
		m.record(ctx, "rotate", auditDomain.StatusFailure, map[string]any{
			"reason": "not initialized",
		})
		return nil, cryptoDomain.ErrNotInitialized
	}

	next, err := m.generator.Generate(m.nextVersion(), m.config.Algorithm)
	if err != nil {
		m.record(ctx, "rotate", auditDomain.StatusFailure, map[string]any{
			"previous_version": previous.Version,
			"reason":           err.Error(),
		})
		return nil, err
	}

	now := m.now().UTC()
	next.CreatedAt = now
	next.RotatedAt = &now
	next.NextRotationAt = now.Add(m.config.RotationInterval)

	// The new record is written first so an interrupted rotation leaves two
	// active records, which Load resolves in favour of the newer one.
	if err := m.persist(ctx, next); err != nil {
		next.Wipe()
		m.record(ctx, "rotate", auditDomain.StatusFailure, map[string]any{
			"previous_version": previous.Version,
			"reason":           err.Error(),
		})
		return nil, err
	}

	m.mu.Lock()
	previous.State = cryptoDomain.KeyStateSuperseded
	previous.SupersededAt = &now
	m.keys[next.Version] = next
	m.current = next.Version
	m.mu.Unlock()

	if err := m.persist(ctx, previous); err != nil {
		m.logger.Warn("failed to persist superseded root key state",
			slog.Uint64("version", uint64(previous.Version)),
			slog.Any("error", err),
		)
	}

	m.logger.Info("root key rotated",
		slog.Uint64("previous_version", uint64(previous.Version)),
		slog.Uint64("version", uint64(next.Version)),
	)
	m.record(ctx, "rotate", auditDomain.StatusSuccess, map[string]any{
		"previous_version": previous.Version,
		"version":          next.Version,
		"algorithm":        string(next.Algorithm),
		"next_rotation_at": next.NextRotationAt,
	})

	if m.config.RetentionGrace == 0 {
		if err := m.eraseLocked(ctx, previous.Version); err != nil {
			m.logger.Error("failed to erase superseded root key",
				slog.Uint64("version", uint64(previous.Version)),
				slog.Any("error", err),
			)
		}
	}

	return next.Metadata(), nil
}

// Erase destroys a superseded version.
func (m *keyManager) Erase(ctx context.Context, version uint) error {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	m.mu.RLock()
	current := m.current
	m.mu.RUnlock()

	if version == current && current != 0 {
		m.record(ctx, "erase", auditDomain.StatusFailure, map[string]any{
			"version": version,
			"reason":  "active version",
		})
		return cryptoDomain.ErrActiveKeyErase
	}
	return m.eraseLocked(ctx, version)
}

// eraseLocked overwrites the persisted record and the in-memory secret
// material with each wipe pass. Callers must hold m.lifecycle.
func (m *keyManager) eraseLocked(ctx context.Context, version uint) error {
	m.mu.RLock()
	key, ok := m.keys[version]
	m.mu.RUnlock()

	if !ok {
		m.record(ctx, "erase", auditDomain.StatusFailure, map[string]any{
			"version": version,
			"reason":  "unknown version",
		})
		return cryptoDomain.ErrKeyNotFound
	}
	if key.IsErased() {
		m.record(ctx, "erase", auditDomain.StatusSuccess, map[string]any{
			"version": version,
			"reason":  "already erased",
		})
		return nil
	}

	if m.repo != nil {
		if err := m.repo.Shred(ctx, version); err != nil {
			m.record(ctx, "erase", auditDomain.StatusFailure, map[string]any{
				"version": version,
				"reason":  err.Error(),
			})
			return err
		}
	}

	now := m.now().UTC()
	m.mu.Lock()
	for _, pass := range storageDomain.WipePasses {
		pass.Fill(key.Key)
		pass.Fill(key.KEMPrivate)
		pass.Fill(key.ECDHPrivate)
	}
	key.Wipe()
	key.State = cryptoDomain.KeyStateErased
	key.ErasedAt = &now
	if m.current == version {
		m.current = 0
	}
	m.mu.Unlock()

	if err := m.persist(ctx, key); err != nil {
		m.logger.Warn("failed to persist root key tombstone",
			slog.Uint64("version", uint64(version)),
			slog.Any("error", err),
		)
	}

	m.logger.Info("root key erased", slog.Uint64("version", uint64(version)))
	m.record(ctx, "erase", auditDomain.StatusSuccess, map[string]any{
		"version": version,
		"passes":  len(storageDomain.WipePasses),
	})
	return nil
}

// PurgeExpired erases superseded versions older than the retention grace.
func (m *keyManager) PurgeExpired(ctx context.Context) (int, error) {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	cutoff := m.now().Add(-m.config.RetentionGrace)

	m.mu.RLock()
	var expired []uint
	for version, key := range m.keys {
		if key.State != cryptoDomain.KeyStateSuperseded || key.SupersededAt == nil {
			continue
		}
		if !key.SupersededAt.After(cutoff) {
			expired = append(expired, version)
		}
	}
	m.mu.RUnlock()
	sort.Slice(expired, func(i, j int) bool { return expired[i] < expired[j] })

	erased := 0
	for _, version := range expired {
		if err := m.eraseLocked(ctx, version); err != nil {
			return erased, err
		}
		erased++
	}
	return erased, nil
}

// WithCurrentKey runs fn under the read lock with the current version.
func (m *keyManager) WithCurrentKey(fn func(key *cryptoDomain.RootKey) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	key, ok := m.keys[m.current]
	if !ok {
		return cryptoDomain.ErrNotInitialized
	}
	return fn(key)
}

// WithKey runs fn under the read lock with the requested version.
func (m *keyManager) WithKey(version uint, fn func(key *cryptoDomain.RootKey) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	key, ok := m.keys[version]
	if !ok {
		return cryptoDomain.ErrKeyNotFound
	}
	if key.IsErased() {
		return cryptoDomain.ErrKeyErased
	}
	return fn(key)
}

// Status returns a secret-free snapshot.
func (m *keyManager) Status() KeyStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status := KeyStatus{
		CurrentVersion: m.current,
		Rotation:       m.checkRotationLocked(),
		Versions:       make([]KeyVersionStatus, 0, len(m.keys)),
	}
	if key, ok := m.keys[m.current]; ok {
		status.Initialized = true
		status.Algorithm = string(key.Algorithm)
		status.NextRotationAt = key.NextRotationAt
	}

	for _, key := range m.keys {
		status.Versions = append(status.Versions, KeyVersionStatus{
			Version:      key.Version,
			State:        key.State,
			Algorithm:    key.Algorithm,
			CreatedAt:    key.CreatedAt,
			SupersededAt: key.SupersededAt,
			ErasedAt:     key.ErasedAt,
		})
	}
	sort.Slice(status.Versions, func(i, j int) bool {
		return status.Versions[i].Version < status.Versions[j].Version
	})
	return status
}

// nextVersion returns one past the highest version ever issued, erased
// tombstones included.
func (m *keyManager) nextVersion() uint {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var highest uint
	for version := range m.keys {
		if version > highest {
			highest = version
		}
	}
	return highest + 1
}

func (m *keyManager) versions() []uint {
	m.mu.RLock()
	defer m.mu.RUnlock()

	versions := make([]uint, 0, len(m.keys))
	for version := range m.keys {
		versions = append(versions, version)
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i] < versions[j] })
	return versions
}

func (m *keyManager) persist(ctx context.Context, key *cryptoDomain.RootKey) error {
	if m.repo == nil {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.repo.Save(ctx, key)
}

func (m *keyManager) record(ctx context.Context, operation string, status auditDomain.Status, metadata map[string]any) {
	if m.auditLog == nil {
		return
	}
	_, err := m.auditLog.Record(ctx, auditDomain.Event{
		Type:      auditDomain.EventTypeKeyManagement,
		Operation: operation,
		Status:    status,
		Metadata:  metadata,
	})
	if err != nil {
		m.logger.Error("failed to record audit event",
			slog.String("operation", operation),
			slog.Any("error", err),
		)
	}
}
