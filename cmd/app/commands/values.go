package commands

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"

	cryptoDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/crypto/domain"
	apperrors "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/errors"
	vaultDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/vault/domain"
	vaultUseCase "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/vault/usecase"
)

// ErrValueNotFound is returned by RunGet when no reachable provider holds the
// key.
var ErrValueNotFound = apperrors.Wrap(apperrors.ErrNotFound, "value")

// RunPut encrypts value and stores it under key. An empty value is read from
// streams.Reader so secrets can be piped instead of passed as arguments.
func RunPut(
	ctx context.Context,
	vault vaultUseCase.Vault,
	logger *slog.Logger,
	streams IOTuple,
	key, value, sensitivity, format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	s, err := vaultDomain.ParseSensitivity(sensitivity)
	if err != nil {
		return err
	}

	data := []byte(value)
	if value == "" && streams.Reader != nil {
		if data, err = readAll(streams.Reader); err != nil {
			return fmt.Errorf("failed to read value: %w", err)
		}
	}
	defer cryptoDomain.Zero(data)

	envelope, err := vault.Put(ctx, key, data, s)
	if err != nil {
		return fmt.Errorf("failed to store value: %w", err)
	}

	logger.Info("value stored",
		slog.String("key", key),
		slog.String("mode", string(envelope.Mode)),
		slog.Uint64("key_version", uint64(envelope.KeyVersion)),
	)

	if format == "json" {
		return writeJSON(streams.Writer, map[string]any{
			"key":         key,
			"mode":        envelope.Mode,
			"algorithm":   envelope.AlgorithmTag,
			"key_version": envelope.KeyVersion,
		})
	}
	_, err = fmt.Fprintf(streams.Writer, "Stored %s (%s, key version %d)\n", key, envelope.Mode, envelope.KeyVersion)
	return err
}

// RunGet decrypts the value stored under key and writes it to w. Text output
// prints the raw value; JSON output carries it as a string, or base64 when it
// is not valid UTF-8.
func RunGet(ctx context.Context, vault vaultUseCase.Vault, w io.Writer, key, format string) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	value, found, err := vault.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to read value: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrValueNotFound, key)
	}
	defer cryptoDomain.Zero(value)

	if format == "json" {
		if utf8.Valid(value) {
			return writeJSON(w, map[string]any{"key": key, "value": string(value)})
		}
		return writeJSON(w, map[string]any{
			"key":      key,
			"value":    base64.StdEncoding.EncodeToString(value),
			"encoding": "base64",
		})
	}

	if _, err := w.Write(value); err != nil {
		return err
	}
	_, err = fmt.Fprintln(w)
	return err
}

// RunDelete removes key from every provider. secure overwrites the stored
// bytes before removal.
func RunDelete(
	ctx context.Context,
	vault vaultUseCase.Vault,
	logger *slog.Logger,
	w io.Writer,
	key string,
	secure bool,
) error {
	var err error
	if secure {
		err = vault.SecureDelete(ctx, key)
	} else {
		err = vault.Delete(ctx, key)
	}
	if err != nil {
		return fmt.Errorf("failed to delete value: %w", err)
	}

	logger.Info("value deleted", slog.String("key", key), slog.Bool("secure", secure))
	_, err = fmt.Fprintf(w, "Deleted %s\n", key)
	return err
}

// RunList prints every stored key in ascending order.
func RunList(ctx context.Context, vault vaultUseCase.Vault, w io.Writer, format string) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	keys, err := vault.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list values: %w", err)
	}

	if format == "json" {
		if keys == nil {
			keys = []string{}
		}
		return writeJSON(w, map[string]any{"keys": keys})
	}
	for _, key := range keys {
		if _, err := fmt.Fprintln(w, key); err != nil {
			return err
		}
	}
	return nil
}

func readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	// Drop the trailing newline left by echo or a heredoc.
	if n := len(data); n > 0 && data[n-1] == '\n' {
		data = data[:n-1]
	}
	return data, nil
}
