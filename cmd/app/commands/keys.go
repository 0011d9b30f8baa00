package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	cryptoDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/crypto/domain"
	cryptoUseCase "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/crypto/usecase"
)

// RunInitKeys creates the first root key version. forceReset erases every
// existing version first; without it an initialized keystore is left alone
// and ErrAlreadyInitialized is returned.
func RunInitKeys(
	ctx context.Context,
	keyManager cryptoUseCase.KeyManager,
	logger *slog.Logger,
	w io.Writer,
	forceReset bool,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	key, err := keyManager.Initialize(ctx, cryptoUseCase.InitializeOptions{ForceReset: forceReset})
	if err != nil {
		return fmt.Errorf("failed to initialize root key: %w", err)
	}

	logger.Info("root key initialized",
		slog.Uint64("version", uint64(key.Version)),
		slog.Bool("force_reset", forceReset),
	)
	return writeKeyResult(w, format, "initialized", key)
}

// RunRotateKeys replaces the current root key version.
func RunRotateKeys(
	ctx context.Context,
	keyManager cryptoUseCase.KeyManager,
	logger *slog.Logger,
	w io.Writer,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	key, err := keyManager.Rotate(ctx)
	if err != nil {
		return fmt.Errorf("failed to rotate root key: %w", err)
	}

	logger.Info("root key rotated", slog.Uint64("version", uint64(key.Version)))
	return writeKeyResult(w, format, "rotated", key)
}

// RunKeyStatus prints the key manager status without secret material.
func RunKeyStatus(keyManager cryptoUseCase.KeyManager, w io.Writer, format string) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	status := keyManager.Status()
	if format == "json" {
		return writeJSON(w, status)
	}

	if !status.Initialized {
		_, err := fmt.Fprintln(w, "Root key: not initialized")
		return err
	}

	_, _ = fmt.Fprintf(w, "Root key: version %d (%s)\n", status.CurrentVersion, status.Algorithm)
	_, _ = fmt.Fprintf(w, "Next rotation: %s\n", status.NextRotationAt.Format(time.RFC3339))
	_, _ = fmt.Fprintf(w, "Rotation due: %t (%s)\n", status.Rotation.Due, status.Rotation.Reason)
	_, _ = fmt.Fprintln(w, "Versions:")
	for _, v := range status.Versions {
		_, _ = fmt.Fprintf(w, "  %d\t%s\t%s\tcreated %s\n",
			v.Version, v.State, v.Algorithm, v.CreatedAt.Format(time.RFC3339))
	}
	return nil
}

// RunPurgeKeys erases superseded versions whose retention grace has elapsed.
func RunPurgeKeys(
	ctx context.Context,
	keyManager cryptoUseCase.KeyManager,
	logger *slog.Logger,
	w io.Writer,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	count, err := keyManager.PurgeExpired(ctx)
	if err != nil {
		return fmt.Errorf("failed to purge root keys: %w", err)
	}

	logger.Info("expired root keys purged", slog.Int("count", count))

	if format == "json" {
		return writeJSON(w, map[string]any{"erased": count})
	}
	_, err = fmt.Fprintf(w, "Erased %d superseded root key version(s)\n", count)
	return err
}

func writeKeyResult(w io.Writer, format, action string, key *cryptoDomain.RootKey) error {
	if format == "json" {
		return writeJSON(w, map[string]any{
			"action":           action,
			"version":          key.Version,
			"algorithm":        key.Algorithm,
			"created_at":       key.CreatedAt,
			"next_rotation_at": key.NextRotationAt,
		})
	}
	_, err := fmt.Fprintf(w, "Root key %s: version %d (%s), next rotation at %s\n",
		action, key.Version, key.Algorithm, key.NextRotationAt.Format(time.RFC3339))
	return err
}
