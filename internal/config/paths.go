package config

import (
	"os"
	"path/filepath"
)

// DefaultConfigPath returns the conventional location for the optional
// YAML defaults file: ~/.config/enhanced-terminal/config.yaml. The file
// need not exist; Manager.Load treats a missing file as "use defaults".
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "enhanced-terminal", "config.yaml"), nil
}
