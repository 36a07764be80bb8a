package auth

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// Interactive prompts on the terminal for server coordinates and a credential.
// Secrets are read without echo.
func Interactive() (ServerConfig, Credential, error) {
	in := bufio.NewReader(os.Stdin)

	serverURL, err := prompt(in, "Server URL")
	if err != nil {
		return ServerConfig{}, Credential{}, err
	}
	if serverURL == "" {
		return ServerConfig{}, Credential{}, fmt.Errorf("server URL is required")
	}

	site, err := prompt(in, "Site ID (leave blank for default)")
	if err != nil {
		return ServerConfig{}, Credential{}, err
	}

	cfg := ServerConfig{ServerURL: serverURL, Site: site}

	fmt.Println("Authentication methods:")
	fmt.Println("  1. Personal access token (recommended)")
	fmt.Println("  2. Username/password")
	fmt.Println("  3. JWT token")

	choice, err := prompt(in, "Choose method [1]")
	if err != nil {
		return ServerConfig{}, Credential{}, err
	}

	var cred Credential
	switch choice {
	case "", "1":
		name, err := prompt(in, "Token name")
		if err != nil {
			return ServerConfig{}, Credential{}, err
		}
		value, err := promptSecret("Token value")
		if err != nil {
			return ServerConfig{}, Credential{}, err
		}
		cred = Credential{Method: MethodPAT, TokenName: name, TokenValue: value}
	case "2":
		user, err := prompt(in, "Username")
		if err != nil {
			return ServerConfig{}, Credential{}, err
		}
		pass, err := promptSecret("Password")
		if err != nil {
			return ServerConfig{}, Credential{}, err
		}
		cred = Credential{Method: MethodPassword, Username: user, Password: pass}
	case "3":
		jwt, err := promptSecret("JWT token")
		if err != nil {
			return ServerConfig{}, Credential{}, err
		}
		cred = Credential{Method: MethodJWT, JWT: jwt}
	default:
		return ServerConfig{}, Credential{}, fmt.Errorf("invalid choice: %q", choice)
	}

	if err := cred.Validate(); err != nil {
		return ServerConfig{}, Credential{}, err
	}
	return cfg, cred, nil
}

func prompt(in *bufio.Reader, label string) (string, error) {
	fmt.Printf("%s: ", label)
	line, err := in.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func promptSecret(label string) (string, error) {
	fmt.Printf("%s: ", label)
	value, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading secret: %w", err)
	}
	return strings.TrimSpace(string(value)), nil
}
