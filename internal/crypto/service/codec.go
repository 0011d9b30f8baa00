package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	cryptoDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/crypto/domain"
)

const envelopeInfoPrefix = "tetracrypt:envelope:v1"

type codecOptions struct {
	recipient      []byte
	private        []byte
	associatedData []byte
}

// Option customizes a single Encrypt or Decrypt call.
type Option func(*codecOptions)

// EncryptOption and DecryptOption name the option sets accepted by each call.
type (
	EncryptOption = Option
	DecryptOption = Option
)

// WithRecipient encrypts to public instead of the root key's own public
// material. Only meaningful for encapsulating modes.
func WithRecipient(public []byte) EncryptOption {
	return func(o *codecOptions) {
		o.recipient = public
	}
}

// WithPrivateMaterial decapsulates with private instead of the root key's
// own private material.
func WithPrivateMaterial(private []byte) DecryptOption {
	return func(o *codecOptions) {
		o.private = private
	}
}

// WithAssociatedData binds aad into the authentication tag. The same value
// must be supplied on decrypt.
func WithAssociatedData(aad []byte) Option {
	return func(o *codecOptions) {
		o.associatedData = aad
	}
}

type envelopeCodec struct {
	aeadManager AEADManager
	kems        map[cryptoDomain.Mode]KEM
	now         func() time.Time
}

// NewCodec creates an envelope codec. KeyEncapsulation uses ML-KEM-768 and
// Hybrid uses X25519 combined with ML-KEM-768.
func NewCodec(aeadManager AEADManager) Codec {
	return &envelopeCodec{
		aeadManager: aeadManager,
		kems: map[cryptoDomain.Mode]KEM{
			cryptoDomain.ModeKeyEncapsulation: NewMLKEM768(),
			cryptoDomain.ModeHybrid:           NewHybridKEM(),
		},
		now: time.Now,
	}
}

// Encrypt seals plaintext under a fresh random IV.
func (c *envelopeCodec) Encrypt(
	ctx context.Context,
	plaintext []byte,
	mode cryptoDomain.Mode,
	key *cryptoDomain.RootKey,
	opts ...EncryptOption,
) (*cryptoDomain.Envelope, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := usableKey(key); err != nil {
		return nil, err
	}
	o := applyOptions(opts)

	tag := cryptoDomain.AlgorithmTag{KEM: mode.KEM(), KDF: cryptoDomain.KDFHKDFSHA256, AEAD: key.Algorithm}
	if key.Algorithm.TagName() == "" {
		return nil, cryptoDomain.ErrUnsupportedAlgorithm
	}

	iv := make([]byte, cryptoDomain.IVSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("failed to generate IV: %w", err)
	}

	var ikm, encapsulated []byte
	switch mode {
	case cryptoDomain.ModeDirect:
		if len(key.Key) != cryptoDomain.RootKeySize {
			return nil, cryptoDomain.ErrMissingKeyMaterial
		}
		ikm = key.Key
	case cryptoDomain.ModeKeyEncapsulation, cryptoDomain.ModeHybrid:
		recipient := o.recipient
		if len(recipient) == 0 {
			recipient = key.PublicMaterial(mode)
		}
		if len(recipient) == 0 {
			return nil, cryptoDomain.ErrMissingKeyMaterial
		}
		ct, ss, err := c.kems[mode].Encapsulate(recipient)
		if err != nil {
			return nil, err
		}
		defer cryptoDomain.Zero(ss)
		ikm = ss
		encapsulated = ct
	default:
		return nil, fmt.Errorf("%w: mode %q", cryptoDomain.ErrUnsupportedAlgorithm, mode)
	}

	env := &cryptoDomain.Envelope{
		Version:         cryptoDomain.EnvelopeFormatVersion,
		Mode:            mode,
		AlgorithmTag:    tag.String(),
		KeyVersion:      key.Version,
		IV:              iv,
		EncapsulatedKey: encapsulated,
		CreatedAt:       c.now().UTC(),
	}

	aead, commitment, err := c.contentCipher(ikm, env, tag)
	if err != nil {
		return nil, err
	}
	env.KeyCommitment = commitment

	ciphertext, err := aead.Seal(iv, plaintext, associatedData(env, o.associatedData))
	if err != nil {
		return nil, err
	}
	env.Ciphertext = ciphertext
	return env, nil
}

// Decrypt opens env. Envelopes are validated before any key is touched.
func (c *envelopeCodec) Decrypt(
	ctx context.Context,
	env *cryptoDomain.Envelope,
	key *cryptoDomain.RootKey,
	opts ...DecryptOption,
) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if env == nil {
		return nil, cryptoDomain.ErrInvalidEnvelope
	}
	if err := env.Validate(); err != nil {
		return nil, err
	}
	tag, err := cryptoDomain.ParseAlgorithmTag(env.AlgorithmTag)
	if err != nil {
		return nil, err
	}
	if err := usableKey(key); err != nil {
		return nil, err
	}
	o := applyOptions(opts)

	var ikm []byte
	switch env.Mode {
	case cryptoDomain.ModeDirect:
		if key.Version != env.KeyVersion || len(key.Key) != cryptoDomain.RootKeySize {
			return nil, cryptoDomain.ErrMissingKeyMaterial
		}
		ikm = key.Key
	case cryptoDomain.ModeKeyEncapsulation, cryptoDomain.ModeHybrid:
		private := o.private
		if len(private) == 0 {
			if key.Version != env.KeyVersion {
				return nil, cryptoDomain.ErrMissingKeyMaterial
			}
			private = key.PrivateMaterial(env.Mode)
			defer cryptoDomain.Zero(private)
		}
		if len(private) == 0 {
			return nil, cryptoDomain.ErrMissingKeyMaterial
		}
		ss, err := c.kems[env.Mode].Decapsulate(private, env.EncapsulatedKey)
		if err != nil {
			if errors.Is(err, cryptoDomain.ErrInvalidEnvelope) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrMissingKeyMaterial, err)
		}
		defer cryptoDomain.Zero(ss)
		ikm = ss
	default:
		return nil, cryptoDomain.ErrInvalidEnvelope
	}

	aead, commitment, err := c.contentCipher(ikm, env, tag)
	if err != nil {
		return nil, err
	}
	if len(env.KeyCommitment) != 0 && subtle.ConstantTimeCompare(commitment, env.KeyCommitment) != 1 {
		// With the envelope's own key version and stored private material the
		// key is right, so a mismatch means the header was altered.
		if len(o.private) == 0 {
			return nil, cryptoDomain.ErrIntegrityFailure
		}
		return nil, cryptoDomain.ErrMissingKeyMaterial
	}
	return aead.Open(env.IV, env.Ciphertext, associatedData(env, o.associatedData))
}

// contentCipher derives the per-envelope content key and key commitment with
// HKDF-SHA-256 (salt = IV, info = prefix || mode || tag) and builds the AEAD.
func (c *envelopeCodec) contentCipher(
	ikm []byte,
	env *cryptoDomain.Envelope,
	tag cryptoDomain.AlgorithmTag,
) (AEAD, []byte, error) {
	info := make([]byte, 0, len(envelopeInfoPrefix)+len(env.Mode)+len(env.AlgorithmTag))
	info = append(info, envelopeInfoPrefix...)
	info = append(info, env.Mode...)
	info = append(info, env.AlgorithmTag...)

	okm, err := DeriveKey(ikm, env.IV, info, cryptoDomain.RootKeySize+cryptoDomain.KeyCommitmentSize)
	if err != nil {
		return nil, nil, err
	}
	defer cryptoDomain.Zero(okm)

	aead, err := c.aeadManager.CreateCipher(okm[:cryptoDomain.RootKeySize], tag.AEAD)
	if err != nil {
		return nil, nil, err
	}
	commitment := append([]byte(nil), okm[cryptoDomain.RootKeySize:]...)
	return aead, commitment, nil
}

func usableKey(key *cryptoDomain.RootKey) error {
	switch {
	case key == nil:
		return cryptoDomain.ErrMissingKeyMaterial
	case key.IsErased():
		return cryptoDomain.ErrKeyErased
	default:
		return nil
	}
}

func applyOptions(opts []Option) codecOptions {
	var o codecOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// associatedData authenticates the envelope header alongside the caller's
// associated data so header fields cannot be swapped between envelopes.
func associatedData(env *cryptoDomain.Envelope, extra []byte) []byte {
	var buf []byte
	buf = binary.BigEndian.AppendUint32(buf, uint32(env.Version))
	buf = appendLengthPrefixed(buf, []byte(env.Mode))
	buf = appendLengthPrefixed(buf, []byte(env.AlgorithmTag))
	buf = binary.BigEndian.AppendUint64(buf, uint64(env.KeyVersion))
	buf = appendLengthPrefixed(buf, env.EncapsulatedKey)
	return appendLengthPrefixed(buf, extra)
}

func appendLengthPrefixed(buf, data []byte) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(data)))
	return append(buf, data...)
}
