// Package mocks provides mock implementations of the vault use case for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/crypto/domain"
	vaultDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/vault/domain"
)

// MockVault is a mock implementation of usecase.Vault.
type MockVault struct {
	mock.Mock
}

// Put mocks the Put method.
func (m *MockVault) Put(
	ctx context.Context,
	key string,
	value []byte,
	s vaultDomain.Sensitivity,
) (*cryptoDomain.Envelope, error) {
	args := m.Called(ctx, key, value, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.Envelope), args.Error(1)
}

// PutJSON mocks the PutJSON method.
func (m *MockVault) PutJSON(
	ctx context.Context,
	key string,
	value any,
	s vaultDomain.Sensitivity,
) (*cryptoDomain.Envelope, error) {
	args := m.Called(ctx, key, value, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.Envelope), args.Error(1)
}

// Get mocks the Get method.
func (m *MockVault) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.Bool(1), args.Error(2)
}

// GetJSON mocks the GetJSON method.
func (m *MockVault) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	args := m.Called(ctx, key, out)
	return args.Bool(0), args.Error(1)
}

// Delete mocks the Delete method.
func (m *MockVault) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// SecureDelete mocks the SecureDelete method.
func (m *MockVault) SecureDelete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// List mocks the List method.
func (m *MockVault) List(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// Rotate mocks the Rotate method.
func (m *MockVault) Rotate(ctx context.Context) (*cryptoDomain.RootKey, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.RootKey), args.Error(1)
}
