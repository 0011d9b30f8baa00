package domain

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/errors"
)

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "found", OutcomeFound.String())
	assert.Equal(t, "absent", OutcomeAbsent.String())
	assert.Equal(t, "unavailable", OutcomeUnavailable.String())
	assert.Equal(t, "outcome(42)", Outcome(42).String())
}

func TestNamespacedKey(t *testing.T) {
	assert.Equal(t, "vault/profile", NamespacedKey("vault", "profile"))
	assert.Equal(t, "profile", NamespacedKey("", "profile"))
}

func TestStripNamespace(t *testing.T) {
	tests := []struct {
		name      string
		namespace string
		stored    string
		want      string
		ok        bool
	}{
		{name: "matching namespace", namespace: "vault", stored: "vault/profile", want: "profile", ok: true},
		{name: "nested key", namespace: "vault", stored: "vault/a/b", want: "a/b", ok: true},
		{name: "other namespace", namespace: "vault", stored: "other/profile", ok: false},
		{name: "prefix without separator", namespace: "vault", stored: "vaultprofile", ok: false},
		{name: "empty namespace", namespace: "", stored: "profile", want: "profile", ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := StripNamespace(tt.namespace, tt.stored)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWipePass_Fill(t *testing.T) {
	t.Run("zeros", func(t *testing.T) {
		b := []byte{1, 2, 3}
		WipeZeros.Fill(b)
		assert.Equal(t, []byte{0, 0, 0}, b)
	})

	t.Run("ones", func(t *testing.T) {
		b := []byte{1, 2, 3}
		WipeOnes.Fill(b)
		assert.Equal(t, []byte{0xFF, 0xFF, 0xFF}, b)
	})

	t.Run("random", func(t *testing.T) {
		a := WipeRandom.Pattern(64)
		b := WipeRandom.Pattern(64)
		assert.Len(t, a, 64)
		assert.False(t, bytes.Equal(a, b))
	})

	t.Run("pass order", func(t *testing.T) {
		assert.Equal(t, []WipePass{WipeZeros, WipeOnes, WipeRandom}, WipePasses)
		assert.Equal(t, "zeros", WipeZeros.String())
		assert.Equal(t, "ones", WipeOnes.String())
		assert.Equal(t, "random", WipeRandom.String())
	})
}

func TestErrors(t *testing.T) {
	assert.True(t, errors.Is(ErrProviderUnavailable, errors.ErrUnavailable))
	assert.True(t, errors.Is(ErrAllProvidersUnavailable, errors.ErrUnavailable))
	assert.True(t, errors.Is(ErrInvalidKey, errors.ErrInvalidInput))
}
