package commands

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"

	cryptoDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/crypto/domain"
	cryptoService "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/crypto/service"
)

// RunCreateMasterKey prints the environment needed to wrap persisted root key
// records and sign audit events.
//
// With an empty kmsKeyURI a fresh 32-byte localsecrets key is generated
// (base64key://). Otherwise the given URI is used as is. Either way the keeper
// is opened and a probe is wrapped and unwrapped before anything is printed.
//
// Output format:
//   - KMS_KEY_URI="<uri>"
//   - AUDIT_SIGNING_KEY="<base64-encoded 32 bytes>"
//
// Security: never use base64key:// outside development. Use a cloud KMS
// (gcpkms, awskms, azurekeyvault, hashivault) in production.
func RunCreateMasterKey(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	logger *slog.Logger,
	w io.Writer,
	kmsKeyURI string,
) error {
	local := kmsKeyURI == ""
	if local {
		wrappingKey := make([]byte, cryptoDomain.RootKeySize)
		if _, err := rand.Read(wrappingKey); err != nil {
			return fmt.Errorf("failed to generate wrapping key: %w", err)
		}
		kmsKeyURI = "base64key://" + base64.URLEncoding.EncodeToString(wrappingKey)
		cryptoDomain.Zero(wrappingKey)
	}

	if err := probeKeeper(ctx, kmsService, kmsKeyURI); err != nil {
		return err
	}

	signingKey := make([]byte, 32)
	if _, err := rand.Read(signingKey); err != nil {
		return fmt.Errorf("failed to generate audit signing key: %w", err)
	}
	defer cryptoDomain.Zero(signingKey)

	if local {
		_, _ = fmt.Fprintln(w, "# Local development keeper (localsecrets). Do not use in production.")
	} else {
		_, _ = fmt.Fprintln(w, "# KMS keeper verified")
	}
	_, _ = fmt.Fprintln(w, "# Copy these environment variables to your .env file or secrets manager")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "KMS_KEY_URI=\"%s\"\n", kmsKeyURI)
	_, _ = fmt.Fprintf(w, "AUDIT_SIGNING_KEY=\"%s\"\n", base64.StdEncoding.EncodeToString(signingKey))

	logger.Info("master key configuration generated", slog.Bool("local", local))
	return nil
}

// probeKeeper wraps and unwraps a random probe through the keeper at keyURI.
func probeKeeper(ctx context.Context, kmsService cryptoService.KMSService, keyURI string) error {
	keeper, err := kmsService.OpenKeeper(ctx, keyURI)
	if err != nil {
		return fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	defer func() { _ = keeper.Close() }()

	probe := make([]byte, 16)
	if _, err := rand.Read(probe); err != nil {
		return fmt.Errorf("failed to generate probe: %w", err)
	}

	wrapped, err := keeper.Encrypt(ctx, probe)
	if err != nil {
		return fmt.Errorf("failed to encrypt with KMS: %w", err)
	}
	unwrapped, err := keeper.Decrypt(ctx, wrapped)
	if err != nil {
		return fmt.Errorf("failed to decrypt with KMS: %w", err)
	}
	if !bytes.Equal(probe, unwrapped) {
		return fmt.Errorf("KMS round trip mismatch for %s", keyURI)
	}
	return nil
}
