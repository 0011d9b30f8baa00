// Package repository provides the concrete Store backends: process memory,
// session-scoped memory, gocloud.dev blob buckets and SQL tables.
package repository

import (
	"context"
	"sort"
	"sync"

	storageDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/storage/domain"
)

// MemoryStore keeps values in process memory. It is the fastest and least
// durable backend and serves as the last-resort fallback.
type MemoryStore struct {
	name    string
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(name string) *MemoryStore {
	return &MemoryStore{
		name:    name,
		entries: make(map[string][]byte),
	}
}

// Name returns the provider name.
func (m *MemoryStore) Name() string {
	return m.name
}

// Kind returns KindMemory.
func (m *MemoryStore) Kind() storageDomain.Kind {
	return storageDomain.KindMemory
}

// IsAvailable reports true unless the context is already done.
func (m *MemoryStore) IsAvailable(ctx context.Context) bool {
	return ctx.Err() == nil
}

// Write stores a private copy of data. The previous value is zeroed.
func (m *MemoryStore) Write(ctx context.Context, key string, data []byte) bool {
	if ctx.Err() != nil {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.entries[key]; ok {
		storageDomain.WipeZeros.Fill(old)
	}
	m.entries[key] = cloneBytes(data)
	return true
}

// Read returns a copy of the stored value.
func (m *MemoryStore) Read(ctx context.Context, key string) ([]byte, storageDomain.Outcome) {
	if ctx.Err() != nil {
		return nil, storageDomain.OutcomeUnavailable
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.entries[key]
	if !ok {
		return nil, storageDomain.OutcomeAbsent
	}
	return cloneBytes(data), storageDomain.OutcomeFound
}

// Delete zeroes and removes the value.
func (m *MemoryStore) Delete(ctx context.Context, key string) bool {
	if ctx.Err() != nil {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if data, ok := m.entries[key]; ok {
		storageDomain.WipeZeros.Fill(data)
		delete(m.entries, key)
	}
	return true
}

// Shred overwrites the backing buffer once per pass before removing it.
func (m *MemoryStore) Shred(ctx context.Context, key string, passes []storageDomain.WipePass) bool {
	if ctx.Err() != nil {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if data, ok := m.entries[key]; ok {
		for _, pass := range passes {
			pass.Fill(data)
		}
		delete(m.entries, key)
	}
	return true
}

// List returns the stored keys in lexical order.
func (m *MemoryStore) List(ctx context.Context) ([]string, bool) {
	if ctx.Err() != nil {
		return nil, false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.entries))
	for key := range m.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, true
}

// Len returns the number of stored entries.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
