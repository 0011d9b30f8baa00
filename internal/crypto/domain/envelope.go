package domain

import (
	"time"
)

const (
	// EnvelopeFormatVersion is written into every new envelope. Readers accept
	// any version up to this one; fields are only ever added.
	EnvelopeFormatVersion = 1

	// IVSize is the AEAD nonce length in bytes.
	IVSize = 12

	// KeyCommitmentSize is the length of the key commitment in bytes.
	KeyCommitmentSize = 16
)

// Envelope is the encrypted, self-describing representation of one stored
// value. It is immutable once built; every write produces a new envelope.
type Envelope struct {
	Version         int       `json:"version"`
	Mode            Mode      `json:"mode"`
	AlgorithmTag    string    `json:"algorithm_tag"`
	KeyVersion      uint      `json:"key_version"`
	IV              []byte    `json:"iv"`
	EncapsulatedKey []byte    `json:"encapsulated_key,omitempty"`
	Ciphertext      []byte    `json:"ciphertext"`
	CreatedAt       time.Time `json:"created_at"`

	// KeyCommitment is derived alongside the content key. A mismatch under
	// caller-supplied private material means the wrong key was supplied;
	// under the envelope's own key version it means the header was altered.
	KeyCommitment []byte `json:"key_commitment,omitempty"`
}

// Validate checks the structural invariants of the envelope.
func (e *Envelope) Validate() error {
	switch {
	case e.Version < 1 || e.Version > EnvelopeFormatVersion:
		return ErrInvalidEnvelope
	case len(e.IV) != IVSize:
		return ErrInvalidEnvelope
	case len(e.Ciphertext) == 0:
		return ErrInvalidEnvelope
	case e.KeyVersion == 0:
		return ErrInvalidEnvelope
	case len(e.KeyCommitment) != 0 && len(e.KeyCommitment) != KeyCommitmentSize:
		return ErrInvalidEnvelope
	}

	switch e.Mode {
	case ModeDirect:
		if len(e.EncapsulatedKey) != 0 {
			return ErrInvalidEnvelope
		}
	case ModeKeyEncapsulation, ModeHybrid:
		if len(e.EncapsulatedKey) == 0 {
			return ErrInvalidEnvelope
		}
	default:
		return ErrInvalidEnvelope
	}

	tag, err := ParseAlgorithmTag(e.AlgorithmTag)
	if err != nil {
		return err
	}
	if tag.KEM != e.Mode.KEM() {
		return ErrInvalidEnvelope
	}
	return nil
}
