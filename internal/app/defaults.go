package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - TABCLI_CONFIG_PATH: config file location (default: ~/.config/tabcli.toml)
//   - TABCLI_HOME: base directory for tabcli data (default: ~/.local/share/tabcli)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path":  configPath,
		"base_dir":     baseDir,
		"log_dir":      filepath.Join(baseDir, "log"),
		"snapshot_dir": filepath.Join(baseDir, "snapshots"),
	}, nil
}

// getConfigPath returns the config file path, checking TABCLI_CONFIG_PATH env
// var first, then falling back to the default ~/.config/tabcli.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("TABCLI_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "tabcli.toml"), nil
}

// getBaseDir returns the base directory for tabcli data, checking TABCLI_HOME
// env var first, then falling back to the XDG default ~/.local/share/tabcli.
func getBaseDir() (string, error) {
	if path := os.Getenv("TABCLI_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "tabcli"), nil
}
