package secrets

import (
	"errors"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// Service groups this app's secrets in the OS keychain.
	KeyringService = "ph-tracker"
	KeyringAccount = "producthunt:api-token"

	tokenEnv = "PRODUCTHUNT_TOKEN"
)

// GetAPIToken resolves the Product Hunt developer token. The environment
// wins over the keychain so CI and one-off shells can override a stored
// token. An empty result is not an error: callers treat a missing token as
// "API strategy unavailable".
func GetAPIToken() string {
	if t := strings.TrimSpace(os.Getenv(tokenEnv)); t != "" {
		return t
	}
	if t, err := keyring.Get(KeyringService, KeyringAccount); err == nil {
		return strings.TrimSpace(t)
	}
	return ""
}

func SetAPIToken(token string) error {
	if strings.TrimSpace(token) == "" {
		return errors.New("token is empty")
	}
	return keyring.Set(KeyringService, KeyringAccount, token)
}

func DeleteAPIToken() error {
	return keyring.Delete(KeyringService, KeyringAccount)
}
