package service

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMLDSA65Signer(t *testing.T) {
	signer, err := NewMLDSA65Signer()
	require.NoError(t, err)

	message := []byte("audit export")
	signature, err := signer.Sign(message)
	require.NoError(t, err)

	assert.Equal(t, MLDSA65AlgorithmName, signer.Algorithm())
	assert.True(t, signer.Verify(signer.PublicKey(), message, signature))
	assert.False(t, signer.Verify(signer.PublicKey(), []byte("audit exporT"), signature))
	assert.False(t, signer.Verify([]byte("not a key"), message, signature))

	other, err := NewMLDSA65Signer()
	require.NoError(t, err)
	assert.False(t, signer.Verify(other.PublicKey(), message, signature))
}

func TestNewMLDSA65SignerFromSeed(t *testing.T) {
	seed := bytes.Repeat([]byte{7}, 32)

	a, err := NewMLDSA65SignerFromSeed(seed)
	require.NoError(t, err)
	b, err := NewMLDSA65SignerFromSeed(seed)
	require.NoError(t, err)
	assert.Equal(t, a.PublicKey(), b.PublicKey())

	_, err = NewMLDSA65SignerFromSeed(seed[:16])
	assert.Error(t, err)
}
