package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/crypto/domain"
	"github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/metrics"
	vaultDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/vault/domain"
	vaultMocks "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/vault/usecase/mocks"
)

// mockBusinessMetrics is a mock implementation of metrics.BusinessMetrics for testing.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

func (m *mockBusinessMetrics) RecordEnvelope(ctx context.Context, mode, algorithm string) {
	m.Called(ctx, mode, algorithm)
}

var _ metrics.BusinessMetrics = (*mockBusinessMetrics)(nil)

func expectMetrics(ctx context.Context, m *mockBusinessMetrics, operation, status string) {
	m.On("RecordOperation", ctx, "vault", operation, status).Return().Once()
	m.On("RecordDuration", ctx, "vault", operation, mock.AnythingOfType("time.Duration"), status).Return().Once()
}

func TestNewVaultWithMetrics(t *testing.T) {
	decorator := NewVaultWithMetrics(&vaultMocks.MockVault{}, &mockBusinessMetrics{})

	assert.NotNil(t, decorator)
	assert.Implements(t, (*Vault)(nil), decorator)
}

func TestVaultWithMetrics_Put(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		next := &vaultMocks.MockVault{}
		m := &mockBusinessMetrics{}
		env := &cryptoDomain.Envelope{Mode: cryptoDomain.ModeHybrid, AlgorithmTag: "aes-gcm"}

		next.On("Put", ctx, "k", []byte("v"), vaultDomain.SensitivityHigh).Return(env, nil).Once()
		expectMetrics(ctx, m, "put", "success")
		m.On("RecordEnvelope", ctx, "hybrid", "aes-gcm").Return().Once()

		got, err := NewVaultWithMetrics(next, m).Put(ctx, "k", []byte("v"), vaultDomain.SensitivityHigh)
		assert.NoError(t, err)
		assert.Equal(t, env, got)
		next.AssertExpectations(t)
		m.AssertExpectations(t)
	})

	t.Run("error", func(t *testing.T) {
		next := &vaultMocks.MockVault{}
		m := &mockBusinessMetrics{}
		failure := errors.New("boom")

		next.On("PutJSON", ctx, "k", "v", vaultDomain.SensitivityLow).Return(nil, failure).Once()
		expectMetrics(ctx, m, "put", "error")

		_, err := NewVaultWithMetrics(next, m).PutJSON(ctx, "k", "v", vaultDomain.SensitivityLow)
		assert.ErrorIs(t, err, failure)
		next.AssertExpectations(t)
		m.AssertExpectations(t)
	})
}

func TestVaultWithMetrics_Get(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		value  []byte
		found  bool
		err    error
		status string
	}{
		{name: "found", value: []byte("v"), found: true, status: "success"},
		{name: "not found", status: "not_found"},
		{name: "error", err: errors.New("boom"), status: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := &vaultMocks.MockVault{}
			m := &mockBusinessMetrics{}

			next.On("Get", ctx, "k").Return(tt.value, tt.found, tt.err).Once()
			expectMetrics(ctx, m, "get", tt.status)

			value, found, err := NewVaultWithMetrics(next, m).Get(ctx, "k")
			assert.Equal(t, tt.value, value)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.err, err)
			next.AssertExpectations(t)
			m.AssertExpectations(t)
		})
	}
}

func TestVaultWithMetrics_Operations(t *testing.T) {
	ctx := context.Background()
	failure := errors.New("boom")

	t.Run("delete", func(t *testing.T) {
		next := &vaultMocks.MockVault{}
		m := &mockBusinessMetrics{}
		next.On("Delete", ctx, "k").Return(nil).Once()
		expectMetrics(ctx, m, "delete", "success")

		assert.NoError(t, NewVaultWithMetrics(next, m).Delete(ctx, "k"))
		m.AssertExpectations(t)
	})

	t.Run("secure delete", func(t *testing.T) {
		next := &vaultMocks.MockVault{}
		m := &mockBusinessMetrics{}
		next.On("SecureDelete", ctx, "k").Return(failure).Once()
		expectMetrics(ctx, m, "secure_delete", "error")

		assert.ErrorIs(t, NewVaultWithMetrics(next, m).SecureDelete(ctx, "k"), failure)
		m.AssertExpectations(t)
	})

	t.Run("list", func(t *testing.T) {
		next := &vaultMocks.MockVault{}
		m := &mockBusinessMetrics{}
		next.On("List", ctx).Return([]string{"a"}, nil).Once()
		expectMetrics(ctx, m, "list", "success")

		keys, err := NewVaultWithMetrics(next, m).List(ctx)
		assert.NoError(t, err)
		assert.Equal(t, []string{"a"}, keys)
		m.AssertExpectations(t)
	})

	t.Run("rotate", func(t *testing.T) {
		next := &vaultMocks.MockVault{}
		m := &mockBusinessMetrics{}
		next.On("Rotate", ctx).Return(&cryptoDomain.RootKey{Version: 2}, nil).Once()
		expectMetrics(ctx, m, "rotate", "success")

		key, err := NewVaultWithMetrics(next, m).Rotate(ctx)
		assert.NoError(t, err)
		assert.Equal(t, uint(2), key.Version)
		m.AssertExpectations(t)
	})
}
