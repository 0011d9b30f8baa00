// Package errors holds the domain error categories shared by every module.
// Domain packages wrap these sentinels; transports classify them with Code.
package errors

import (
	"errors"
	"fmt"
)

// Error categories. Every domain error wraps exactly one of them.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnavailable marks backends that could not be reached. Callers may
	// retry later.
	ErrUnavailable = errors.New("unavailable")

	// ErrIntegrity marks authenticated data that failed verification or whose
	// key material is gone. Never retried.
	ErrIntegrity = errors.New("integrity violation")
)

// Stable machine-readable codes returned by Code.
const (
	CodeNotFound     = "not_found"
	CodeConflict     = "conflict"
	CodeInvalidInput = "invalid_input"
	CodeUnavailable  = "unavailable"
	CodeIntegrity    = "integrity_failure"
	CodeInternal     = "internal_error"
)

// categories is checked in order. Integrity comes first so an error that
// joins an integrity failure with anything else is never downgraded.
var categories = []struct {
	sentinel error
	code     string
}{
	{ErrIntegrity, CodeIntegrity},
	{ErrUnavailable, CodeUnavailable},
	{ErrInvalidInput, CodeInvalidInput},
	{ErrConflict, CodeConflict},
	{ErrNotFound, CodeNotFound},
}

// Code classifies err into one of the Code constants. Nil yields "".
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range categories {
		if errors.Is(err, c.sentinel) {
			return c.code
		}
	}
	return CodeInternal
}

// New creates an error with the given message.
func New(message string) error {
	return errors.New(message)
}

// Wrap prefixes err with message. Nil stays nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is Wrap with a format string.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

func Join(errs ...error) error {
	return errors.Join(errs...)
}
