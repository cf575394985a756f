package sandbox

import (
	"fmt"
	"os"
)

// ProviderKeyEnvVars lists, per model provider, the environment variable
// that carries its provider-native API key, for auto-detection when no
// explicit override is configured.
var ProviderKeyEnvVars = map[string]string{
	"anthropic": "ANTHROPIC_API_KEY",
	"openai":    "OPENAI_API_KEY",
	"google":    "GOOGLE_API_KEY",
}

// BoundCredentialLookup resolves a mission's pre-bound service credential,
// if one was configured out of band (e.g. via the hosting platform's
// secret store). It returns ok=false when no binding exists.
type BoundCredentialLookup func(missionID string) (token string, ok bool)

// ResolveCredential implements the task-runner credential resolution order
// (spec §6): an explicit env override always wins; otherwise the first
// provider-native key found in the environment is used; otherwise a
// pre-bound service credential; otherwise the configured default. A bound
// credential is only ever consumed when no explicit key was provided.
func ResolveCredential(missionID, explicitEnvKey, defaultToken string, bound BoundCredentialLookup) (string, error) {
	if explicitEnvKey != "" {
		if v := os.Getenv(explicitEnvKey); v != "" {
			return v, nil
		}
		return "", fmt.Errorf("explicit credential env var %q is unset", explicitEnvKey)
	}

	for _, envVar := range ProviderKeyEnvVars {
		if v := os.Getenv(envVar); v != "" {
			return v, nil
		}
	}

	if bound != nil {
		if token, ok := bound(missionID); ok {
			return token, nil
		}
	}

	if defaultToken != "" {
		return defaultToken, nil
	}

	return "", fmt.Errorf("no credential resolved for mission %s: no explicit key, no provider-native key, no bound credential, no default", missionID)
}
