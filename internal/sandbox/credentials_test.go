package sandbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCredentialExplicitEnvWins(t *testing.T) {
	t.Setenv("WORLDMIND_TEST_EXPLICIT", "explicit-token")
	t.Setenv("ANTHROPIC_API_KEY", "provider-token")

	token, err := ResolveCredential("m1", "WORLDMIND_TEST_EXPLICIT", "default-token", nil)
	require.NoError(t, err)
	assert.Equal(t, "explicit-token", token)
}

func TestResolveCredentialExplicitEnvUnsetIsError(t *testing.T) {
	_, err := ResolveCredential("m1", "WORLDMIND_TEST_MISSING_VAR", "default-token", nil)
	require.Error(t, err)
}

func TestResolveCredentialFallsBackToProviderKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "provider-token")

	token, err := ResolveCredential("m1", "", "default-token", nil)
	require.NoError(t, err)
	assert.Equal(t, "provider-token", token)
}

func TestResolveCredentialFallsBackToBoundCredential(t *testing.T) {
	bound := func(missionID string) (string, bool) {
		if missionID == "m1" {
			return "bound-token", true
		}
		return "", false
	}

	token, err := ResolveCredential("m1", "", "default-token", bound)
	require.NoError(t, err)
	assert.Equal(t, "bound-token", token)
}

func TestResolveCredentialFallsBackToDefault(t *testing.T) {
	token, err := ResolveCredential("m1", "", "default-token", func(string) (string, bool) { return "", false })
	require.NoError(t, err)
	assert.Equal(t, "default-token", token)
}

func TestResolveCredentialNoneAvailableIsError(t *testing.T) {
	_, err := ResolveCredential("m1", "", "", func(string) (string, bool) { return "", false })
	require.Error(t, err)
}
