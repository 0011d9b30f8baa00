// Package domain defines the storage provider contract shared by every backend
// and the failover orchestration built on top of it.
package domain

import (
	"context"
	"fmt"
	"strings"
)

// Kind classifies a Store by durability.
type Kind string

const (
	// KindPersistent survives process restarts (filesystem, object storage, SQL).
	KindPersistent Kind = "persistent"
	// KindSession is cleared when the owning session ends or the process exits.
	KindSession Kind = "session"
	// KindMemory lives only in process memory and is the last-resort fallback.
	KindMemory Kind = "memory"
)

// Outcome reports how a Store answered a read. It keeps a provider being down
// distinct from the key genuinely not existing.
type Outcome int

const (
	// OutcomeFound means the provider returned the stored bytes.
	OutcomeFound Outcome = iota
	// OutcomeAbsent means the provider is reachable and the key does not exist.
	OutcomeAbsent
	// OutcomeUnavailable means the provider could not answer.
	OutcomeUnavailable
)

// String returns a label suitable for logs and audit metadata.
func (o Outcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeAbsent:
		return "absent"
	case OutcomeUnavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Store is a single named persistence backend.
//
// Implementations never return errors across this boundary: failures surface
// as false, an empty result, or OutcomeUnavailable. Every method must honour
// the context deadline and report a deadline hit as a provider failure.
type Store interface {
	// Name returns the unique, stable provider name.
	Name() string

	// Kind reports the durability class of the provider.
	Kind() Kind

	// IsAvailable probes the underlying medium.
	IsAvailable(ctx context.Context) bool

	// Write stores data under key, overwriting any existing value.
	Write(ctx context.Context, key string, data []byte) bool

	// Read returns the bytes stored under key together with the read outcome.
	Read(ctx context.Context, key string) ([]byte, Outcome)

	// Delete removes key. Deleting a missing key succeeds.
	Delete(ctx context.Context, key string) bool

	// List returns the keys in this subsystem's namespace. The second return
	// value is false when the provider could not be enumerated.
	List(ctx context.Context) ([]string, bool)
}

// NamespacedKey prefixes key with namespace using a slash separator.
func NamespacedKey(namespace, key string) string {
	if namespace == "" {
		return key
	}
	return namespace + "/" + key
}

// StripNamespace removes the namespace prefix from a stored key. The second
// return value is false when the key belongs to another namespace.
func StripNamespace(namespace, stored string) (string, bool) {
	if namespace == "" {
		return stored, true
	}
	prefix := namespace + "/"
	if !strings.HasPrefix(stored, prefix) {
		return "", false
	}
	return strings.TrimPrefix(stored, prefix), true
}

// Shredder is implemented by stores that can overwrite a value in place before
// removing it. Stores without it are shredded by writing each pass pattern
// through Write and then calling Delete.
type Shredder interface {
	// Shred overwrites the stored value for key once per pass, in order, and
	// then removes it. Shredding a missing key succeeds.
	Shred(ctx context.Context, key string, passes []WipePass) bool
}
