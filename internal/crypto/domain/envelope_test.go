package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/errors"
)

func validEnvelope(mode Mode) *Envelope {
	env := &Envelope{
		Version:      EnvelopeFormatVersion,
		Mode:         mode,
		AlgorithmTag: AlgorithmTag{KEM: mode.KEM(), KDF: KDFHKDFSHA256, AEAD: AESGCM}.String(),
		KeyVersion:   1,
		IV:           make([]byte, IVSize),
		Ciphertext:   []byte{1, 2, 3},
		CreatedAt:    time.Now(),
	}
	if mode.RequiresEncapsulation() {
		env.EncapsulatedKey = []byte{9, 9}
	}
	return env
}

func TestEnvelope_Validate(t *testing.T) {
	for _, mode := range Modes {
		t.Run("valid "+string(mode), func(t *testing.T) {
			assert.NoError(t, validEnvelope(mode).Validate())
		})
	}

	tests := []struct {
		name   string
		mutate func(*Envelope)
		mode   Mode
	}{
		{"direct with encapsulated key", func(e *Envelope) { e.EncapsulatedKey = []byte{1} }, ModeDirect},
		{"kem without encapsulated key", func(e *Envelope) { e.EncapsulatedKey = nil }, ModeKeyEncapsulation},
		{"hybrid without encapsulated key", func(e *Envelope) { e.EncapsulatedKey = nil }, ModeHybrid},
		{"short iv", func(e *Envelope) { e.IV = make([]byte, 8) }, ModeDirect},
		{"empty ciphertext", func(e *Envelope) { e.Ciphertext = nil }, ModeDirect},
		{"zero key version", func(e *Envelope) { e.KeyVersion = 0 }, ModeDirect},
		{"future format version", func(e *Envelope) { e.Version = EnvelopeFormatVersion + 1 }, ModeDirect},
		{"unknown mode", func(e *Envelope) { e.Mode = "sealed" }, ModeDirect},
		{"tag for another mode", func(e *Envelope) {
			e.AlgorithmTag = AlgorithmTag{KEM: KEMMLKEM768, KDF: KDFHKDFSHA256, AEAD: AESGCM}.String()
		}, ModeDirect},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := validEnvelope(tt.mode)
			tt.mutate(env)
			err := env.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrInvalidInput)
		})
	}
}

func TestAlgorithmTag(t *testing.T) {
	t.Run("render", func(t *testing.T) {
		tag := AlgorithmTag{KEM: KEMX25519MLKEM768, KDF: KDFHKDFSHA256, AEAD: ChaCha20}
		assert.Equal(t, "X25519-ML-KEM-768/HKDF-SHA-256/CHACHA20-POLY1305", tag.String())
	})

	t.Run("parse round trip", func(t *testing.T) {
		tag, err := ParseAlgorithmTag("none/HKDF-SHA-256/AES-256-GCM")
		require.NoError(t, err)
		assert.Equal(t, AlgorithmTag{KEM: KEMNone, KDF: KDFHKDFSHA256, AEAD: AESGCM}, tag)
	})

	t.Run("parse rejects unknown cipher", func(t *testing.T) {
		_, err := ParseAlgorithmTag("none/HKDF-SHA-256/DES")
		assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
	})

	t.Run("parse rejects malformed tag", func(t *testing.T) {
		_, err := ParseAlgorithmTag("AES-256-GCM")
		assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
	})
}

func TestParseAlgorithm(t *testing.T) {
	for in, want := range map[string]Algorithm{
		"aes-gcm":           AESGCM,
		"AES-256-GCM":       AESGCM,
		"chacha20-poly1305": ChaCha20,
	} {
		got, err := ParseAlgorithm(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseAlgorithm("rot13")
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}

func TestParseMode(t *testing.T) {
	mode, err := ParseMode("hybrid")
	require.NoError(t, err)
	assert.Equal(t, ModeHybrid, mode)
	assert.True(t, mode.RequiresEncapsulation())
	assert.False(t, ModeDirect.RequiresEncapsulation())

	_, err = ParseMode("HYBRID")
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}

func TestErrorTaxonomy(t *testing.T) {
	assert.ErrorIs(t, ErrIntegrityFailure, errors.ErrIntegrity)
	assert.ErrorIs(t, ErrMissingKeyMaterial, errors.ErrIntegrity)
	assert.ErrorIs(t, ErrKeyErased, ErrMissingKeyMaterial)
	assert.ErrorIs(t, ErrRotationInProgress, errors.ErrConflict)
	assert.ErrorIs(t, ErrAlreadyInitialized, errors.ErrConflict)
	assert.ErrorIs(t, ErrKeyNotFound, errors.ErrNotFound)
}
