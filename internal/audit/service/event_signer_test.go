package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/audit/domain"
)

func newSignedEvent(t *testing.T, signer EventSigner) *auditDomain.Event {
	t.Helper()
	event := &auditDomain.Event{
		ID:        uuid.Must(uuid.NewV7()),
		Type:      auditDomain.EventTypeStorage,
		Operation: "write",
		Status:    auditDomain.StatusSuccess,
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC),
		Metadata:  map[string]any{"entry": "profile", "provider": "blob"},
	}
	sig, err := signer.Sign(event)
	require.NoError(t, err)
	event.Signature = sig
	return event
}

func TestNewEventSigner(t *testing.T) {
	_, err := NewEventSigner([]byte("short"))
	assert.Error(t, err)

	signer, err := NewEventSigner([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)
	assert.NotNil(t, signer)
}

func TestEventSigner_SignVerify(t *testing.T) {
	signer, err := NewEventSigner([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	t.Run("valid signature", func(t *testing.T) {
		event := newSignedEvent(t, signer)
		assert.Len(t, event.Signature, 32)
		assert.NoError(t, signer.Verify(event))
	})

	t.Run("deterministic", func(t *testing.T) {
		event := newSignedEvent(t, signer)
		again, err := signer.Sign(event)
		require.NoError(t, err)
		assert.Equal(t, event.Signature, again)
	})

	tamperCases := []struct {
		name   string
		tamper func(e *auditDomain.Event)
	}{
		{name: "operation", tamper: func(e *auditDomain.Event) { e.Operation = "read" }},
		{name: "status", tamper: func(e *auditDomain.Event) { e.Status = auditDomain.StatusFailure }},
		{name: "type", tamper: func(e *auditDomain.Event) { e.Type = auditDomain.EventTypeCrypto }},
		{name: "metadata", tamper: func(e *auditDomain.Event) { e.Metadata["entry"] = "other" }},
		{name: "timestamp", tamper: func(e *auditDomain.Event) { e.Timestamp = e.Timestamp.Add(time.Nanosecond) }},
		{name: "id", tamper: func(e *auditDomain.Event) { e.ID = uuid.Must(uuid.NewV7()) }},
	}

	for _, tc := range tamperCases {
		t.Run("tampered "+tc.name, func(t *testing.T) {
			event := newSignedEvent(t, signer)
			tc.tamper(event)
			assert.ErrorIs(t, signer.Verify(event), auditDomain.ErrSignatureInvalid)
		})
	}

	t.Run("different secret", func(t *testing.T) {
		event := newSignedEvent(t, signer)
		other, err := NewEventSigner([]byte("fedcba9876543210fedcba9876543210"))
		require.NoError(t, err)
		assert.ErrorIs(t, other.Verify(event), auditDomain.ErrSignatureInvalid)
	})
}
