package config

import (
	"os"
	"path/filepath"
)

// ConfigEnvVar overrides the configuration file path.
const ConfigEnvVar = "JSX_CONFIG"

// GetConfigPath returns the configuration file path: $JSX_CONFIG when set,
// otherwise ~/.jseditorx/config.
func GetConfigPath() (string, error) {
	if configPath := os.Getenv(ConfigEnvVar); configPath != "" {
		return configPath, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".jseditorx", "config"), nil
}

// EnsureConfigDir ensures that the configuration directory exists.
func EnsureConfigDir() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	return os.MkdirAll(filepath.Dir(configPath), 0755)
}
