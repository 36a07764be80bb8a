// Package auth resolves server coordinates and credentials into immutable
// values consumed by the rest of the tool. Nothing outside this package reads
// environment variables or prompts the user.
package auth

import "fmt"

// Method identifies a credential scheme.
type Method string

const (
	MethodPAT      Method = "pat"
	MethodPassword Method = "credentials"
	MethodJWT      Method = "jwt"
)

// Credential is a tagged union over the three supported credential schemes.
// Exactly one variant is active, selected by Method; it is immutable once
// constructed.
type Credential struct {
	Method Method

	// Personal access token (Method == MethodPAT)
	TokenName  string
	TokenValue string

	// Username/password (Method == MethodPassword)
	Username string
	Password string

	// JWT (Method == MethodJWT)
	JWT string
}

// Validate checks that the active variant has its required fields.
func (c Credential) Validate() error {
	switch c.Method {
	case MethodPAT:
		if c.TokenName == "" || c.TokenValue == "" {
			return fmt.Errorf("token name and value required for PAT authentication")
		}
	case MethodPassword:
		if c.Username == "" || c.Password == "" {
			return fmt.Errorf("username and password required for credential authentication")
		}
	case MethodJWT:
		if c.JWT == "" {
			return fmt.Errorf("token required for JWT authentication")
		}
	default:
		return fmt.Errorf("unsupported authentication method: %q", c.Method)
	}
	return nil
}

// Describe returns a display string for the credential with secrets masked.
func (c Credential) Describe() string {
	switch c.Method {
	case MethodPAT:
		return fmt.Sprintf("personal access token %q", c.TokenName)
	case MethodPassword:
		return fmt.Sprintf("username/password for %q", c.Username)
	case MethodJWT:
		return "JWT token"
	}
	return "none"
}

// ServerConfig identifies the server and site to operate against.
type ServerConfig struct {
	ServerURL string
	Site      string // site content URL; empty = default site
}
