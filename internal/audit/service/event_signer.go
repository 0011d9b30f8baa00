package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	auditDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/audit/domain"
)

// EventSigner computes tamper-evident HMAC-SHA256 signatures over audit events.
type EventSigner interface {
	Sign(event *auditDomain.Event) ([]byte, error)
	Verify(event *auditDomain.Event) error
}

type hmacEventSigner struct {
	signingKey []byte
}

// NewEventSigner derives a dedicated signing key from secret with HKDF-SHA256
// and returns an HMAC-SHA256 event signer.
func NewEventSigner(secret []byte) (EventSigner, error) {
	if len(secret) < 16 {
		return nil, fmt.Errorf("audit signing secret must be at least 16 bytes")
	}

	kdf := hkdf.New(sha256.New, secret, nil, []byte("tetracrypt:audit-event-signing:v1"))
	signingKey := make([]byte, 32)
	if _, err := io.ReadFull(kdf, signingKey); err != nil {
		return nil, fmt.Errorf("failed to derive signing key: %w", err)
	}

	return &hmacEventSigner{signingKey: signingKey}, nil
}

// Sign returns the 32-byte signature for event. The Signature field is ignored.
func (s *hmacEventSigner) Sign(event *auditDomain.Event) ([]byte, error) {
	canonical, err := canonicalizeEvent(event)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize event: %w", err)
	}

	mac := hmac.New(sha256.New, s.signingKey)
	mac.Write(canonical)
	return mac.Sum(nil), nil
}

// Verify recomputes the signature and compares it in constant time.
func (s *hmacEventSigner) Verify(event *auditDomain.Event) error {
	expected, err := s.Sign(event)
	if err != nil {
		return fmt.Errorf("failed to compute expected signature: %w", err)
	}
	if !hmac.Equal(event.Signature, expected) {
		return auditDomain.ErrSignatureInvalid
	}
	return nil
}

// canonicalizeEvent encodes id || type || operation || status || metadata || timestamp
// with length prefixes on every variable-length field.
func canonicalizeEvent(event *auditDomain.Event) ([]byte, error) {
	buf := make([]byte, 0, 256)
	buf = append(buf, event.ID[:]...)
	buf = appendLengthPrefixed(buf, []byte(event.Type))
	buf = appendLengthPrefixed(buf, []byte(event.Operation))
	buf = appendLengthPrefixed(buf, []byte(event.Status))

	if event.Metadata != nil {
		// encoding/json sorts map keys, which keeps this deterministic
		metadata, err := json.Marshal(event.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}
		buf = appendLengthPrefixed(buf, metadata)
	} else {
		buf = appendLengthPrefixed(buf, nil)
	}

	buf = binary.BigEndian.AppendUint64(buf, uint64(event.Timestamp.UnixNano()))
	return buf, nil
}

// appendLengthPrefixed adds a 4-byte big-endian length followed by data.
func appendLengthPrefixed(buf, data []byte) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(data)))
	return append(buf, data...)
}
