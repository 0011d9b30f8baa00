package dto

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vaultDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/vault/domain"
)

func TestPutValueRequest_Validate(t *testing.T) {
	t.Run("Success_ValidRequest", func(t *testing.T) {
		req := PutValueRequest{
			Value:       base64.StdEncoding.EncodeToString([]byte(`{"name":"alice"}`)),
			Sensitivity: "high",
		}

		assert.NoError(t, req.Validate())
	})

	t.Run("Success_DefaultSensitivity", func(t *testing.T) {
		req := PutValueRequest{Value: base64.StdEncoding.EncodeToString([]byte("v"))}

		assert.NoError(t, req.Validate())
		s, err := req.ParsedSensitivity()
		require.NoError(t, err)
		assert.Equal(t, vaultDomain.SensitivityHigh, s)
	})

	t.Run("Success_BinaryData", func(t *testing.T) {
		binaryData := []byte{0x00, 0x01, 0x02, 0xFF, 0xFE, 0xFD}
		req := PutValueRequest{Value: base64.StdEncoding.EncodeToString(binaryData), Sensitivity: "low"}

		require.NoError(t, req.Validate())
		value, err := req.DecodedValue()
		require.NoError(t, err)
		assert.Equal(t, binaryData, value)
	})

	t.Run("Error_EmptyValue", func(t *testing.T) {
		req := PutValueRequest{}

		err := req.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "value")
	})

	t.Run("Error_InvalidBase64", func(t *testing.T) {
		req := PutValueRequest{Value: "not-valid-base64!!!"}

		err := req.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "base64")
	})

	t.Run("Error_UnknownSensitivity", func(t *testing.T) {
		req := PutValueRequest{
			Value:       base64.StdEncoding.EncodeToString([]byte("v")),
			Sensitivity: "extreme",
		}

		err := req.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "sensitivity")
	})
}
