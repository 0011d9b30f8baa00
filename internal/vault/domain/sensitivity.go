// Package domain defines the value-level types of the encrypted vault: how
// sensitive a value is and how its envelope is persisted.
package domain

import (
	"strings"

	cryptoDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/crypto/domain"
)

// Sensitivity selects the encryption mode applied to a value.
type Sensitivity string

const (
	SensitivityLow    Sensitivity = "low"
	SensitivityMedium Sensitivity = "medium"
	SensitivityHigh   Sensitivity = "high"
)

// Mode maps the sensitivity to an envelope mode. Unknown values map to the
// strongest mode.
func (s Sensitivity) Mode() cryptoDomain.Mode {
	switch s {
	case SensitivityLow:
		return cryptoDomain.ModeDirect
	case SensitivityMedium:
		return cryptoDomain.ModeKeyEncapsulation
	default:
		return cryptoDomain.ModeHybrid
	}
}

// ParseSensitivity parses a sensitivity name. An empty string yields
// SensitivityHigh.
func ParseSensitivity(s string) (Sensitivity, error) {
	switch Sensitivity(strings.ToLower(strings.TrimSpace(s))) {
	case SensitivityLow:
		return SensitivityLow, nil
	case SensitivityMedium:
		return SensitivityMedium, nil
	case SensitivityHigh, "":
		return SensitivityHigh, nil
	default:
		return "", ErrInvalidSensitivity
	}
}
