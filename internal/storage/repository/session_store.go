package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	storageDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/storage/domain"
)

type sessionEntry struct {
	data       []byte
	lastAccess time.Time
}

// SessionStore is an in-memory store scoped to a session. Entries idle for
// longer than the TTL expire, and EndSession wipes everything. A store whose
// session has ended stays usable and starts a fresh session on the next write.
type SessionStore struct {
	name    string
	idleTTL time.Duration
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]*sessionEntry
}

// NewSessionStore creates a session store. A zero idleTTL disables idle expiry.
func NewSessionStore(name string, idleTTL time.Duration) *SessionStore {
	return &SessionStore{
		name:    name,
		idleTTL: idleTTL,
		now:     time.Now,
		entries: make(map[string]*sessionEntry),
	}
}

// Name returns the provider name.
func (s *SessionStore) Name() string {
	return s.name
}

// Kind returns KindSession.
func (s *SessionStore) Kind() storageDomain.Kind {
	return storageDomain.KindSession
}

// IsAvailable reports true unless the context is already done.
func (s *SessionStore) IsAvailable(ctx context.Context) bool {
	return ctx.Err() == nil
}

// Write stores a private copy of data and refreshes its idle timer.
func (s *SessionStore) Write(ctx context.Context, key string, data []byte) bool {
	if ctx.Err() != nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.entries[key]; ok {
		storageDomain.WipeZeros.Fill(old.data)
	}
	s.entries[key] = &sessionEntry{data: cloneBytes(data), lastAccess: s.now()}
	return true
}

// Read returns a copy of a live entry and refreshes its idle timer.
func (s *SessionStore) Read(ctx context.Context, key string) ([]byte, storageDomain.Outcome) {
	if ctx.Err() != nil {
		return nil, storageDomain.OutcomeUnavailable
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.liveEntry(key)
	if !ok {
		return nil, storageDomain.OutcomeAbsent
	}
	entry.lastAccess = s.now()
	return cloneBytes(entry.data), storageDomain.OutcomeFound
}

// Delete zeroes and removes the entry.
func (s *SessionStore) Delete(ctx context.Context, key string) bool {
	if ctx.Err() != nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(key)
	return true
}

// Shred overwrites the entry once per pass before removing it.
func (s *SessionStore) Shred(ctx context.Context, key string, passes []storageDomain.WipePass) bool {
	if ctx.Err() != nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.entries[key]; ok {
		for _, pass := range passes {
			pass.Fill(entry.data)
		}
		delete(s.entries, key)
	}
	return true
}

// List returns the live keys in lexical order.
func (s *SessionStore) List(ctx context.Context) ([]string, bool) {
	if ctx.Err() != nil {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.entries))
	for key := range s.entries {
		if _, ok := s.liveEntry(key); ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, true
}

// EndSession zeroes and drops every entry.
func (s *SessionStore) EndSession() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.entries {
		s.removeLocked(key)
	}
}

// Close ends the session.
func (s *SessionStore) Close() error {
	s.EndSession()
	return nil
}

// liveEntry returns the entry for key, expiring it if it has been idle too long.
// Callers must hold s.mu.
func (s *SessionStore) liveEntry(key string) (*sessionEntry, bool) {
	entry, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if s.idleTTL > 0 && s.now().Sub(entry.lastAccess) > s.idleTTL {
		s.removeLocked(key)
		return nil, false
	}
	return entry, true
}

func (s *SessionStore) removeLocked(key string) {
	if entry, ok := s.entries[key]; ok {
		storageDomain.WipeZeros.Fill(entry.data)
		delete(s.entries, key)
	}
}
