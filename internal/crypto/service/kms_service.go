package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"gocloud.dev/secrets"

	cryptoDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/crypto/domain"

	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// KMSService opens the keeper that wraps persisted root key records.
//
// Supported URI schemes:
//   - base64key:// local key for development and tests
//   - awskms:// AWS KMS
//   - gcpkms:// Google Cloud KMS
//   - azurekeyvault:// Azure Key Vault
//   - hashivault:// HashiCorp Vault transit
type KMSService interface {
	OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error)
}

type kmsService struct{}

// NewKMSService creates a KMSService backed by gocloud.dev/secrets.
func NewKMSService() KMSService {
	return &kmsService{}
}

// OpenKeeper opens the keeper identified by keyURI.
func (k *kmsService) OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error) {
	if err := ValidateKMSKeyURI(keyURI); err != nil {
		return nil, err
	}

	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	return keeper, nil
}

// ValidateKMSKeyURI checks that keyURI is a non-empty URL with a scheme.
func ValidateKMSKeyURI(keyURI string) error {
	if strings.TrimSpace(keyURI) == "" {
		return fmt.Errorf("%w: empty", cryptoDomain.ErrInvalidKMSKeyURI)
	}
	u, err := url.Parse(keyURI)
	if err != nil || u.Scheme == "" {
		return fmt.Errorf("%w: missing scheme", cryptoDomain.ErrInvalidKMSKeyURI)
	}
	return nil
}
