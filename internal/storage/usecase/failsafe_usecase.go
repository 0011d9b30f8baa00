package usecase

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	auditDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/audit/domain"
	"github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/errors"
	storageDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/storage/domain"
)

// Default timeouts applied when Config leaves them unset.
const (
	DefaultProbeTimeout     = 2 * time.Second
	DefaultOperationTimeout = 5 * time.Second
)

// Config holds failsafe manager settings.
type Config struct {
	// ProbeTimeout bounds each availability probe during Initialize.
	ProbeTimeout time.Duration
	// OperationTimeout bounds each single-provider call, mirrors included.
	OperationTimeout time.Duration
}

type failsafeManager struct {
	config   Config
	stores   []storageDomain.Store
	auditLog AuditRecorder
	logger   *slog.Logger
	mirrors  *mirrorTracker

	mu          sync.RWMutex
	initialized bool
	active      []storageDomain.Store
	statuses    []ProviderStatus
}

// NewFailsafeManager creates a failsafe manager over stores listed in
// priority order. The manager takes ownership of the stores.
func NewFailsafeManager(
	config Config,
	stores []storageDomain.Store,
	auditLog AuditRecorder,
	logger *slog.Logger,
) (FailsafeManager, error) {
	if len(stores) == 0 {
		return nil, storageDomain.ErrNoProviders
	}

	seen := make(map[string]struct{}, len(stores))
	statuses := make([]ProviderStatus, len(stores))
	for i, store := range stores {
		if _, ok := seen[store.Name()]; ok {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "duplicate storage provider name %q", store.Name())
		}
		seen[store.Name()] = struct{}{}
		statuses[i] = ProviderStatus{Name: store.Name(), Kind: store.Kind(), Priority: i}
	}

	if config.ProbeTimeout <= 0 {
		config.ProbeTimeout = DefaultProbeTimeout
	}
	if config.OperationTimeout <= 0 {
		config.OperationTimeout = DefaultOperationTimeout
	}

	return &failsafeManager{
		config:   config,
		stores:   append([]storageDomain.Store(nil), stores...),
		auditLog: auditLog,
		logger:   logger,
		mirrors:  newMirrorTracker(),
		statuses: statuses,
	}, nil
}

// Initialize probes all stores concurrently.
func (m *failsafeManager) Initialize(ctx context.Context) error {
	available := make([]bool, len(m.stores))

	var g errgroup.Group
	for i, store := range m.stores {
		g.Go(func() error {
			probeCtx, cancel := context.WithTimeout(ctx, m.config.ProbeTimeout)
			defer cancel()
			available[i] = store.IsAvailable(probeCtx)
			return nil
		})
	}
	_ = g.Wait()

	probedAt := time.Now().UTC()
	active := make([]storageDomain.Store, 0, len(m.stores))
	statuses := make([]ProviderStatus, len(m.stores))
	var names, skipped []string
	for i, store := range m.stores {
		statuses[i] = ProviderStatus{
			Name:      store.Name(),
			Kind:      store.Kind(),
			Priority:  i,
			Available: available[i],
			ProbedAt:  probedAt,
		}
		if available[i] {
			active = append(active, store)
			names = append(names, store.Name())
		} else {
			skipped = append(skipped, store.Name())
		}
	}

	m.mu.Lock()
	m.active = active
	m.statuses = statuses
	m.initialized = true
	m.mu.Unlock()

	status := auditDomain.StatusSuccess
	switch {
	case len(active) == 0:
		status = auditDomain.StatusFailure
		m.logger.Error("no storage provider available, running degraded",
			slog.Any("unavailable", skipped),
		)
	case len(skipped) > 0:
		status = auditDomain.StatusWarning
		m.logger.Warn("some storage providers unavailable",
			slog.Any("active", names),
			slog.Any("unavailable", skipped),
		)
	default:
		m.logger.Info("storage providers initialized", slog.Any("active", names))
	}

	m.record(ctx, auditDomain.EventTypeSystem, "initialize", status, map[string]any{
		"active":      names,
		"unavailable": skipped,
	})
	return nil
}

// Write tries stores in priority order and mirrors to the rest after the first success.
func (m *failsafeManager) Write(ctx context.Context, key string, data []byte) error {
	if key == "" {
		m.record(ctx, auditDomain.EventTypeStorage, "write", auditDomain.StatusFailure, map[string]any{
			"reason": "empty entry name",
		})
		return storageDomain.ErrInvalidKey
	}

	unlock := m.mirrors.lock(key)
	defer unlock()

	// A pending mirror of an older value must not overwrite this write on a
	// store it fails over to.
	m.mirrors.waitKey(key)

	active := m.activeStores(ctx)
	for i, store := range active {
		if !m.writeOne(ctx, store, key, data) {
			m.logger.Warn("storage provider write failed, trying next",
				slog.String("provider", store.Name()),
				slog.String("entry", key),
			)
			continue
		}

		m.mirror(ctx, active[i+1:], key, data)
		m.record(ctx, auditDomain.EventTypeStorage, "write", auditDomain.StatusSuccess, map[string]any{
			"entry":    key,
			"provider": store.Name(),
			"size":     len(data),
			"mirrors":  len(active) - i - 1,
		})
		return nil
	}

	m.logger.Error("write failed on every storage provider", slog.String("entry", key))
	m.record(ctx, auditDomain.EventTypeStorage, "write", auditDomain.StatusFailure, map[string]any{
		"entry":     key,
		"attempted": len(active),
	})
	return storageDomain.ErrAllProvidersUnavailable
}

// mirror copies data to the lower-priority stores in the background. Mirrors
// of one key apply in write order. Mirror failures are logged and never fail
// the write.
func (m *failsafeManager) mirror(ctx context.Context, stores []storageDomain.Store, key string, data []byte) {
	if len(stores) == 0 {
		return
	}

	payload := append([]byte(nil), data...)
	mirrorCtx := context.WithoutCancel(ctx)

	batch, prev := m.mirrors.begin(key, len(stores))
	for _, store := range stores {
		go func() {
			defer m.mirrors.done(key, batch)
			if prev != nil {
				<-prev
			}
			if !m.writeOne(mirrorCtx, store, key, payload) {
				m.logger.Warn("storage mirror write failed",
					slog.String("provider", store.Name()),
					slog.String("entry", key),
				)
			}
		}()
	}
}

// Read returns the first affirmative answer in priority order.
func (m *failsafeManager) Read(ctx context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		m.record(ctx, auditDomain.EventTypeStorage, "read", auditDomain.StatusFailure, map[string]any{
			"reason": "empty entry name",
		})
		return nil, false, storageDomain.ErrInvalidKey
	}

	for i, store := range m.activeStores(ctx) {
		if i == 1 {
			// Lower-priority stores only hold what their mirrors delivered.
			m.mirrors.waitKey(key)
		}
		opCtx, cancel := context.WithTimeout(ctx, m.config.OperationTimeout)
		data, outcome := store.Read(opCtx, key)
		cancel()

		switch outcome {
		case storageDomain.OutcomeFound:
			m.record(ctx, auditDomain.EventTypeStorage, "read", auditDomain.StatusSuccess, map[string]any{
				"entry":    key,
				"provider": store.Name(),
				"outcome":  outcome.String(),
			})
			return data, true, nil
		case storageDomain.OutcomeAbsent:
			m.record(ctx, auditDomain.EventTypeStorage, "read", auditDomain.StatusSuccess, map[string]any{
				"entry":    key,
				"provider": store.Name(),
				"outcome":  outcome.String(),
			})
			return nil, false, nil
		default:
			m.logger.Warn("storage provider read unavailable, trying next",
				slog.String("provider", store.Name()),
				slog.String("entry", key),
			)
		}
	}

	m.record(ctx, auditDomain.EventTypeStorage, "read", auditDomain.StatusFailure, map[string]any{
		"entry":   key,
		"outcome": storageDomain.OutcomeUnavailable.String(),
	})
	return nil, false, storageDomain.ErrAllProvidersUnavailable
}

// Delete issues the delete to every active store.
func (m *failsafeManager) Delete(ctx context.Context, key string) error {
	return m.deleteAll(ctx, "delete", key, func(opCtx context.Context, store storageDomain.Store) bool {
		return store.Delete(opCtx, key)
	})
}

// SecureDelete overwrites the value on every active store before deleting it.
func (m *failsafeManager) SecureDelete(ctx context.Context, key string) error {
	return m.deleteAll(ctx, "secure_delete", key, func(opCtx context.Context, store storageDomain.Store) bool {
		return storageDomain.Shred(opCtx, store, key)
	})
}

func (m *failsafeManager) deleteAll(
	ctx context.Context,
	operation, key string,
	remove func(context.Context, storageDomain.Store) bool,
) error {
	if key == "" {
		m.record(ctx, auditDomain.EventTypeStorage, operation, auditDomain.StatusFailure, map[string]any{
			"reason": "empty entry name",
		})
		return storageDomain.ErrInvalidKey
	}

	m.mirrors.waitKey(key)

	active := m.activeStores(ctx)
	confirmed := make([]bool, len(active))

	var g errgroup.Group
	for i, store := range active {
		g.Go(func() error {
			opCtx, cancel := context.WithTimeout(ctx, m.config.OperationTimeout)
			defer cancel()
			confirmed[i] = remove(opCtx, store)
			return nil
		})
	}
	_ = g.Wait()

	var confirmedBy, failed []string
	for i, store := range active {
		if confirmed[i] {
			confirmedBy = append(confirmedBy, store.Name())
		} else {
			failed = append(failed, store.Name())
		}
	}

	metadata := map[string]any{
		"entry":        key,
		"confirmed_by": confirmedBy,
		"failed":       failed,
	}

	if len(confirmedBy) == 0 {
		m.logger.Error(operation+" failed on every storage provider", slog.String("entry", key))
		m.record(ctx, auditDomain.EventTypeStorage, operation, auditDomain.StatusFailure, metadata)
		return storageDomain.ErrAllProvidersUnavailable
	}

	status := auditDomain.StatusSuccess
	if len(failed) > 0 {
		status = auditDomain.StatusWarning
		m.logger.Warn(operation+" not confirmed by every storage provider",
			slog.String("entry", key),
			slog.Any("failed", failed),
		)
	}
	m.record(ctx, auditDomain.EventTypeStorage, operation, status, metadata)
	return nil
}

// List merges the key sets of every active store.
func (m *failsafeManager) List(ctx context.Context) ([]string, error) {
	active := m.activeStores(ctx)
	results := make([][]string, len(active))
	answered := make([]bool, len(active))

	var g errgroup.Group
	for i, store := range active {
		g.Go(func() error {
			opCtx, cancel := context.WithTimeout(ctx, m.config.OperationTimeout)
			defer cancel()
			results[i], answered[i] = store.List(opCtx)
			return nil
		})
	}
	_ = g.Wait()

	union := make(map[string]struct{})
	responded := 0
	for i := range active {
		if !answered[i] {
			continue
		}
		responded++
		for _, key := range results[i] {
			union[key] = struct{}{}
		}
	}

	if responded == 0 {
		m.record(ctx, auditDomain.EventTypeStorage, "list", auditDomain.StatusFailure, map[string]any{
			"attempted": len(active),
		})
		return nil, storageDomain.ErrAllProvidersUnavailable
	}

	keys := make([]string, 0, len(union))
	for key := range union {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	m.record(ctx, auditDomain.EventTypeStorage, "list", auditDomain.StatusSuccess, map[string]any{
		"count":     len(keys),
		"responded": responded,
	})
	return keys, nil
}

// Degraded reports whether the last probe found no available store.
func (m *failsafeManager) Degraded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.initialized && len(m.active) == 0
}

// Providers returns a snapshot of the provider statuses.
func (m *failsafeManager) Providers() []ProviderStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]ProviderStatus(nil), m.statuses...)
}

// Wait blocks until every in-flight mirror write completes.
func (m *failsafeManager) Wait() {
	m.mirrors.waitAll()
}

// Close waits for mirrors and releases store resources.
func (m *failsafeManager) Close() error {
	m.mirrors.waitAll()

	var errs []error
	for _, store := range m.stores {
		closer, ok := store.(io.Closer)
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			errs = append(errs, errors.Wrapf(err, "failed to close storage provider %s", store.Name()))
		}
	}
	return errors.Join(errs...)
}

// activeStores returns the stores retained by the last probe, probing first
// if Initialize was never called.
func (m *failsafeManager) activeStores(ctx context.Context) []storageDomain.Store {
	m.mu.RLock()
	initialized := m.initialized
	active := m.active
	m.mu.RUnlock()

	if initialized {
		return active
	}

	_ = m.Initialize(ctx)

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

func (m *failsafeManager) writeOne(ctx context.Context, store storageDomain.Store, key string, data []byte) bool {
	opCtx, cancel := context.WithTimeout(ctx, m.config.OperationTimeout)
	defer cancel()
	return store.Write(opCtx, key, data)
}

func (m *failsafeManager) record(
	ctx context.Context,
	eventType auditDomain.EventType,
	operation string,
	status auditDomain.Status,
	metadata map[string]any,
) {
	if m.auditLog == nil {
		return
	}
	_, err := m.auditLog.Record(ctx, auditDomain.Event{
		Type:      eventType,
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
