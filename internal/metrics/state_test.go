package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, provider *Provider) string {
	t.Helper()
	w := httptest.NewRecorder()
	provider.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestRegisterStateGauges(t *testing.T) {
	provider, err := NewProvider("vault_test")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	available := 2
	version := uint(3)
	registration, err := RegisterStateGauges(provider.MeterProvider(), "vault_test", StateObserver{
		ProvidersAvailable: func() int { return available },
		Degraded:           func() bool { return available == 0 },
		KeyVersion:         func() uint { return version },
		AuditEvents:        func() int { return 7 },
	})
	require.NoError(t, err)

	output := scrape(t, provider)
	assert.Regexp(t, `vault_test_storage_providers_available(_[a-z]+)?\{[^}]*\} 2`, output)
	assert.Regexp(t, `vault_test_storage_degraded\{[^}]*\} 0`, output)
	assert.Regexp(t, `vault_test_root_key_version\{[^}]*\} 3`, output)
	assert.Regexp(t, `vault_test_audit_events(_[a-z]+)?\{[^}]*\} 7`, output)

	available = 0
	version = 4
	output = scrape(t, provider)
	assert.Regexp(t, `vault_test_storage_degraded\{[^}]*\} 1`, output)
	assert.Regexp(t, `vault_test_root_key_version\{[^}]*\} 4`, output)

	require.NoError(t, registration.Unregister())
}

func TestRegisterStateGauges_PartialObserver(t *testing.T) {
	provider, err := NewProvider("partial_test")
	require.NoError(t, err)

	_, err = RegisterStateGauges(provider.MeterProvider(), "partial_test", StateObserver{
		KeyVersion: func() uint { return 1 },
	})
	require.NoError(t, err)

	output := scrape(t, provider)
	assert.Regexp(t, `partial_test_root_key_version\{[^}]*\} 1`, output)
	assert.NotContains(t, output, "partial_test_storage_degraded{")
}
