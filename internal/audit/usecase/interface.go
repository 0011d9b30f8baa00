// Package usecase implements the bounded, queryable audit log.
package usecase

import (
	"context"

	auditDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/audit/domain"
)

// ExportSigner signs audit exports with an asymmetric signature scheme.
type ExportSigner interface {
	Algorithm() string
	PublicKey() []byte
	Sign(message []byte) ([]byte, error)
	Verify(publicKey, message, signature []byte) bool
}

// AuditLog records and queries audit events.
type AuditLog interface {
	// Record sanitizes, signs and appends an event, evicting the oldest entry
	// when the buffer is full. It returns the stored copy.
	Record(ctx context.Context, event auditDomain.Event) (*auditDomain.Event, error)

	// Query returns the buffered events matching filter, oldest first.
	Query(filter auditDomain.Filter) []*auditDomain.Event

	// Stats aggregates the buffered events on demand.
	Stats() auditDomain.Stats

	// Clear drops every buffered event.
	Clear()

	// Verify checks the signature of every buffered event.
	Verify() error

	// Export returns the matching events signed as a single snapshot.
	Export(ctx context.Context, filter auditDomain.Filter) (*auditDomain.SignedExport, error)
}
