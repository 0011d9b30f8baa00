package domain

import (
	"fmt"
)

// Mode is the envelope encryption mode.
type Mode string

const (
	// ModeDirect derives the content key from the root key and the IV.
	ModeDirect Mode = "direct"
	// ModeKeyEncapsulation derives the content key from an ML-KEM-768 shared secret.
	ModeKeyEncapsulation Mode = "key-encapsulation"
	// ModeHybrid derives the content key from combined X25519 and ML-KEM-768 shared secrets.
	ModeHybrid Mode = "hybrid"
)

// Modes lists every supported mode.
var Modes = []Mode{ModeDirect, ModeKeyEncapsulation, ModeHybrid}

// RequiresEncapsulation reports whether envelopes in this mode carry an
// encapsulated key.
func (m Mode) RequiresEncapsulation() bool {
	return m == ModeKeyEncapsulation || m == ModeHybrid
}

// KEM returns the name of the key encapsulation mechanism used by the mode.
func (m Mode) KEM() string {
	switch m {
	case ModeKeyEncapsulation:
		return KEMMLKEM768
	case ModeHybrid:
		return KEMX25519MLKEM768
	default:
		return KEMNone
	}
}

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: mode %q", ErrUnsupportedAlgorithm, s)
}
