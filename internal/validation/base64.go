package validation

import (
	"encoding/base64"

	validation "github.com/jellydator/validation"
)

// Base64 accepts standard base64 text of any decoded length.
var Base64 = Base64Len(0)

// Base64Len accepts standard base64 text that decodes to exactly n bytes. A
// zero n accepts any length. Empty strings pass so Required can report them.
func Base64Len(n int) validation.Rule {
	return validation.By(func(value any) error {
		s, ok := value.(string)
		if !ok {
			return validation.NewError("validation_base64_type", "must be a string")
		}
		if s == "" {
			return nil
		}
		decoded, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return validation.NewError("validation_base64", "must be valid base64-encoded data")
		}
		if n > 0 && len(decoded) != n {
			return validation.NewError("validation_base64_length", "must decode to the expected number of bytes").
				SetParams(map[string]any{"length": n})
		}
		return nil
	})
}
