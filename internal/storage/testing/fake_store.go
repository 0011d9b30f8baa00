// Package testing provides a configurable Store double shared by storage,
// key management and vault tests.
package testing

import (
	"context"
	"sort"
	"sync"
	"time"

	storageDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/storage/domain"
)

// Operation names recorded by FakeStore.
const (
	OpProbe  = "probe"
	OpWrite  = "write"
	OpRead   = "read"
	OpDelete = "delete"
	OpList   = "list"
)

// WriteRecord captures one Write call.
type WriteRecord struct {
	Key  string
	Data []byte
}

// FakeStore is an in-memory Store whose availability and latency can be
// toggled at runtime. It records every call and keeps a copy of every write
// so tests can count overwrite passes.
type FakeStore struct {
	name string
	kind storageDomain.Kind

	mu        sync.Mutex
	available bool
	delay     time.Duration
	failWrite bool
	writeHook func(key string, data []byte)
	entries   map[string][]byte
	calls     map[string]int
	writes    []WriteRecord
}

// NewFakeStore creates an available fake store.
func NewFakeStore(name string, kind storageDomain.Kind) *FakeStore {
	return &FakeStore{
		name:      name,
		kind:      kind,
		available: true,
		entries:   make(map[string][]byte),
		calls:     make(map[string]int),
	}
}

// SetAvailable toggles whether the store answers.
func (f *FakeStore) SetAvailable(available bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.available = available
}

// SetDelay makes every call block for d or until the context is done.
func (f *FakeStore) SetDelay(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delay = d
}

// SetFailWrites makes Write report failure while reads keep working.
func (f *FakeStore) SetFailWrites(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWrite = fail
}

// SetWriteHook runs hook before every answered Write, outside the store lock.
// Tests use it to slow down specific values.
func (f *FakeStore) SetWriteHook(hook func(key string, data []byte)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writeHook = hook
}

// Seed stores data without recording a call.
func (f *FakeStore) Seed(key string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = append([]byte(nil), data...)
}

// Calls returns the number of calls made for op.
func (f *FakeStore) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// Writes returns copies of every successful write to key, oldest first.
func (f *FakeStore) Writes(key string) [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out [][]byte
	for _, w := range f.writes {
		if w.Key == key {
			out = append(out, append([]byte(nil), w.Data...))
		}
	}
	return out
}

// Has reports whether key is currently stored.
func (f *FakeStore) Has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.entries[key]
	return ok
}

// Name returns the provider name.
func (f *FakeStore) Name() string {
	return f.name
}

// Kind returns the configured kind.
func (f *FakeStore) Kind() storageDomain.Kind {
	return f.kind
}

// IsAvailable reports the configured availability.
func (f *FakeStore) IsAvailable(ctx context.Context) bool {
	return f.begin(ctx, OpProbe)
}

// Write stores data when available.
func (f *FakeStore) Write(ctx context.Context, key string, data []byte) bool {
	if !f.begin(ctx, OpWrite) {
		return false
	}

	f.mu.Lock()
	hook := f.writeHook
	f.mu.Unlock()
	if hook != nil {
		hook(key, data)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWrite {
		return false
	}
	f.entries[key] = append([]byte(nil), data...)
	f.writes = append(f.writes, WriteRecord{Key: key, Data: append([]byte(nil), data...)})
	return true
}

// Read returns the stored value or the matching outcome.
func (f *FakeStore) Read(ctx context.Context, key string) ([]byte, storageDomain.Outcome) {
	if !f.begin(ctx, OpRead) {
		return nil, storageDomain.OutcomeUnavailable
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	data, ok := f.entries[key]
	if !ok {
		return nil, storageDomain.OutcomeAbsent
	}
	return append([]byte(nil), data...), storageDomain.OutcomeFound
}

// Delete removes key when available.
func (f *FakeStore) Delete(ctx context.Context, key string) bool {
	if !f.begin(ctx, OpDelete) {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, key)
	return true
}

// List returns the stored keys when available.
func (f *FakeStore) List(ctx context.Context) ([]string, bool) {
	if !f.begin(ctx, OpList) {
		return nil, false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	keys := make([]string, 0, len(f.entries))
	for key := range f.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, true
}

// begin records the call, applies the configured delay and reports whether
// the store should answer.
func (f *FakeStore) begin(ctx context.Context, op string) bool {
	f.mu.Lock()
	f.calls[op]++
	delay := f.delay
	available := f.available
	f.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return false
		case <-timer.C:
		}
	}

	return available && ctx.Err() == nil
}
