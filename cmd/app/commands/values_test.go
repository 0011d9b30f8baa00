package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/crypto/domain"
	vaultDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/vault/domain"
	"github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/vault/usecase/mocks"
)

func testEnvelope(mode cryptoDomain.Mode) *cryptoDomain.Envelope {
	return &cryptoDomain.Envelope{
		Version:      cryptoDomain.EnvelopeFormatVersion,
		Mode:         mode,
		AlgorithmTag: "aes-gcm",
		KeyVersion:   3,
	}
}

func TestRunPut(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("value-argument", func(t *testing.T) {
		vault := &mocks.MockVault{}
		vault.On("Put", ctx, "db/password", []byte("s3cret"), vaultDomain.SensitivityMedium).
			Return(testEnvelope(cryptoDomain.ModeKeyEncapsulation), nil)

		var out bytes.Buffer
		err := RunPut(ctx, vault, logger, IOTuple{Writer: &out}, "db/password", "s3cret", "medium", "text")
		require.NoError(t, err)
		assert.Equal(t, "Stored db/password (key-encapsulation, key version 3)\n", out.String())
		vault.AssertExpectations(t)
	})

	t.Run("value-from-reader", func(t *testing.T) {
		vault := &mocks.MockVault{}
		vault.On("Put", ctx, "token", []byte("piped"), vaultDomain.SensitivityHigh).
			Return(testEnvelope(cryptoDomain.ModeHybrid), nil)

		var out bytes.Buffer
		streams := IOTuple{Reader: strings.NewReader("piped\n"), Writer: &out}
		require.NoError(t, RunPut(ctx, vault, logger, streams, "token", "", "", "json"))

		var result map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		assert.Equal(t, "hybrid", result["mode"])
		assert.EqualValues(t, 3, result["key_version"])
		vault.AssertExpectations(t)
	})

	t.Run("invalid-sensitivity", func(t *testing.T) {
		vault := &mocks.MockVault{}
		err := RunPut(ctx, vault, logger, IOTuple{Writer: io.Discard}, "k", "v", "extreme", "text")
		require.ErrorIs(t, err, vaultDomain.ErrInvalidSensitivity)
		vault.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("vault-error", func(t *testing.T) {
		vault := &mocks.MockVault{}
		vault.On("Put", ctx, "k", []byte("v"), vaultDomain.SensitivityLow).
			Return(nil, cryptoDomain.ErrNotInitialized)

		err := RunPut(ctx, vault, logger, IOTuple{Writer: io.Discard}, "k", "v", "low", "text")
		require.ErrorIs(t, err, cryptoDomain.ErrNotInitialized)
	})
}

func TestRunGet(t *testing.T) {
	ctx := context.Background()

	t.Run("text", func(t *testing.T) {
		vault := &mocks.MockVault{}
		vault.On("Get", ctx, "greeting").Return([]byte("hello"), true, nil)

		var out bytes.Buffer
		require.NoError(t, RunGet(ctx, vault, &out, "greeting", "text"))
		assert.Equal(t, "hello\n", out.String())
	})

	t.Run("json-binary", func(t *testing.T) {
		vault := &mocks.MockVault{}
		vault.On("Get", ctx, "blob").Return([]byte{0xff, 0xfe}, true, nil)

		var out bytes.Buffer
		require.NoError(t, RunGet(ctx, vault, &out, "blob", "json"))
		assert.JSONEq(t, `{"key":"blob","value":"//4=","encoding":"base64"}`, out.String())
	})

	t.Run("not-found", func(t *testing.T) {
		vault := &mocks.MockVault{}
		vault.On("Get", ctx, "missing").Return(nil, false, nil)

		err := RunGet(ctx, vault, io.Discard, "missing", "text")
		require.ErrorIs(t, err, ErrValueNotFound)
	})

	t.Run("integrity-failure", func(t *testing.T) {
		vault := &mocks.MockVault{}
		vault.On("Get", ctx, "tampered").Return(nil, false, cryptoDomain.ErrIntegrityFailure)

		err := RunGet(ctx, vault, io.Discard, "tampered", "text")
		require.ErrorIs(t, err, cryptoDomain.ErrIntegrityFailure)
	})
}

func TestRunDelete(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("plain", func(t *testing.T) {
		vault := &mocks.MockVault{}
		vault.On("Delete", ctx, "k").Return(nil)

		var out bytes.Buffer
		require.NoError(t, RunDelete(ctx, vault, logger, &out, "k", false))
		assert.Equal(t, "Deleted k\n", out.String())
		vault.AssertNotCalled(t, "SecureDelete", mock.Anything, mock.Anything)
	})

	t.Run("secure", func(t *testing.T) {
		vault := &mocks.MockVault{}
		vault.On("SecureDelete", ctx, "k").Return(nil)

		require.NoError(t, RunDelete(ctx, vault, logger, io.Discard, "k", true))
		vault.AssertExpectations(t)
	})

	t.Run("error", func(t *testing.T) {
		vault := &mocks.MockVault{}
		vault.On("Delete", ctx, "k").Return(errors.New("all providers failed"))

		err := RunDelete(ctx, vault, logger, io.Discard, "k", false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to delete value")
	})
}

func TestRunList(t *testing.T) {
	ctx := context.Background()

	t.Run("text", func(t *testing.T) {
		vault := &mocks.MockVault{}
		vault.On("List", ctx).Return([]string{"a", "b"}, nil)

		var out bytes.Buffer
		require.NoError(t, RunList(ctx, vault, &out, "text"))
		assert.Equal(t, "a\nb\n", out.String())
	})

	t.Run("json-empty", func(t *testing.T) {
		vault := &mocks.MockVault{}
		vault.On("List", ctx).Return(nil, nil)

		var out bytes.Buffer
		require.NoError(t, RunList(ctx, vault, &out, "json"))
		assert.JSONEq(t, `{"keys":[]}`, out.String())
	})
}
