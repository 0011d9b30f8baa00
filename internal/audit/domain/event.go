// Package domain defines audit events recorded for every security-relevant
// operation of the storage subsystem.
package domain

import (
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"
)

// EventType groups events by the component that emitted them.
type EventType string

const (
	// EventTypeStorage covers reads, writes, deletes and listings.
	EventTypeStorage EventType = "storage"
	// EventTypeCrypto covers envelope encryption and decryption.
	EventTypeCrypto EventType = "crypto"
	// EventTypeKeyManagement covers key initialization, rotation and erasure.
	EventTypeKeyManagement EventType = "key-management"
	// EventTypeSystem covers subsystem lifecycle (provider probing, shutdown).
	EventTypeSystem EventType = "system"
)

// Status is the outcome of the audited operation.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	StatusWarning Status = "warning"
)

// Event is one append-only audit record. Metadata is sanitized before the
// event is stored, so it never carries secret material.
type Event struct {
	ID        uuid.UUID      `json:"id"`
	Type      EventType      `json:"event_type"`
	Operation string         `json:"operation"`
	Status    Status         `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Signature []byte         `json:"signature,omitempty"`
}

// Validate checks the required event fields.
func (e *Event) Validate() error {
	return validation.ValidateStruct(e,
		validation.Field(&e.Type, validation.Required, validation.In(
			EventTypeStorage,
			EventTypeCrypto,
			EventTypeKeyManagement,
			EventTypeSystem,
		)),
		validation.Field(&e.Operation, validation.Required),
		validation.Field(&e.Status, validation.Required, validation.In(
			StatusSuccess,
			StatusFailure,
			StatusWarning,
		)),
	)
}

// Filter selects events. Zero-valued fields match everything.
type Filter struct {
	Type   EventType
	Status Status
	// Since and Until bound the event timestamp, both inclusive.
	Since time.Time
	Until time.Time
	// Limit caps the number of returned events, keeping the newest. Zero means no cap.
	Limit int
}

// Matches reports whether e satisfies the filter.
func (f Filter) Matches(e *Event) bool {
	if f.Type != "" && e.Type != f.Type {
		return false
	}
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if !f.Since.IsZero() && e.Timestamp.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && e.Timestamp.After(f.Until) {
		return false
	}
	return true
}

// Stats aggregates the buffered events.
type Stats struct {
	Total        int               `json:"total"`
	SuccessCount int               `json:"success_count"`
	FailureCount int               `json:"failure_count"`
	WarningCount int               `json:"warning_count"`
	ByType       map[EventType]int `json:"by_type"`
}

// SignedExport is a snapshot of events signed with an asymmetric signature
// scheme so it can be verified outside the process.
type SignedExport struct {
	Events     []*Event  `json:"events"`
	ExportedAt time.Time `json:"exported_at"`
	Algorithm  string    `json:"algorithm"`
	PublicKey  []byte    `json:"public_key"`
	Signature  []byte    `json:"signature"`
}
