package auth

import (
	"fmt"
	"os"
)

// Environment variables consumed by FromEnv.
const (
	EnvServerURL  = "TABLEAU_SERVER_URL"
	EnvSiteID     = "TABLEAU_SITE_ID"
	EnvTokenName  = "TABLEAU_TOKEN_NAME"
	EnvTokenValue = "TABLEAU_TOKEN_VALUE"
	EnvUsername   = "TABLEAU_USERNAME"
	EnvPassword   = "TABLEAU_PASSWORD"
	EnvJWT        = "TABLEAU_JWT_TOKEN"
)

// FromEnv resolves server config and credentials from environment variables.
// Credential precedence: personal access token, then username/password, then
// JWT. Fails when no complete credential variant is present.
func FromEnv() (ServerConfig, Credential, error) {
	serverURL := os.Getenv(EnvServerURL)
	if serverURL == "" {
		return ServerConfig{}, Credential{}, fmt.Errorf("%s environment variable required", EnvServerURL)
	}

	cfg := ServerConfig{
		ServerURL: serverURL,
		Site:      os.Getenv(EnvSiteID),
	}

	if name, value := os.Getenv(EnvTokenName), os.Getenv(EnvTokenValue); name != "" && value != "" {
		return cfg, Credential{Method: MethodPAT, TokenName: name, TokenValue: value}, nil
	}

	if user, pass := os.Getenv(EnvUsername), os.Getenv(EnvPassword); user != "" && pass != "" {
		return cfg, Credential{Method: MethodPassword, Username: user, Password: pass}, nil
	}

	if jwt := os.Getenv(EnvJWT); jwt != "" {
		return cfg, Credential{Method: MethodJWT, JWT: jwt}, nil
	}

	return ServerConfig{}, Credential{}, fmt.Errorf(
		"no credentials found: set %s+%s, %s+%s, or %s",
		EnvTokenName, EnvTokenValue, EnvUsername, EnvPassword, EnvJWT,
	)
}
