package library

import (
	"os"
	"path/filepath"
)

const appDir = "solforge"

// DataHome returns XDG_DATA_HOME or its default.
func DataHome() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return xdgData
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".local", "share")
}

// ConfigHome returns XDG_CONFIG_HOME or its default.
func ConfigHome() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return xdgConfig
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config")
}

// DefaultLibraryPath is where the card collection lives.
func DefaultLibraryPath() string {
	return filepath.Join(DataHome(), appDir, "cards.json")
}

// DefaultConfigPath is where the client config lives.
func DefaultConfigPath() string {
	return filepath.Join(ConfigHome(), appDir, "config.toml")
}

// DefaultKeypairPath is the wallet keypair used when none is configured.
func DefaultKeypairPath() string {
	return filepath.Join(ConfigHome(), "solana", "id.json")
}
