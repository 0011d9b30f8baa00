// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	apperrors "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/errors"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// exitCodes gives scripts a stable status per error category.
var exitCodes = map[string]int{
	apperrors.CodeInternal:     1,
	apperrors.CodeInvalidInput: 2,
	apperrors.CodeNotFound:     3,
	apperrors.CodeConflict:     4,
	apperrors.CodeUnavailable:  5,
	apperrors.CodeIntegrity:    6,
}

func main() {
	cmd := &cli.Command{
		Name:     "tetracrypt",
		Usage:    "Failsafe encrypted storage with post-quantum envelopes",
		Version:  version,
		Commands: getCommands(version),
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err), slog.String("code", apperrors.Code(err)))
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	var coder cli.ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return exitCodes[apperrors.Code(err)]
}
