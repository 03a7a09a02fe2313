package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/atinyakov/SolForge/internal/solana"
)

// Config is the client configuration stored as TOML.
type Config struct {
	// Server is the SolForge server base URL.
	Server string `toml:"server"`
	// RPCURL is the Solana JSON-RPC endpoint used for minting.
	RPCURL string `toml:"rpc_url"`
	// Keypair is the path of the signing wallet in solana-keygen format.
	Keypair string `toml:"keypair"`
	// Treasury receives minted tokens. Empty keeps them in the wallet.
	Treasury string `toml:"treasury"`
	// SendRetries is passed as maxRetries to sendTransaction.
	SendRetries int `toml:"send_retries"`
}

// DefaultConfig returns the configuration written on first use.
func DefaultConfig() Config {
	return Config{
		Server:      "http://localhost:8080",
		RPCURL:      solana.DevnetEndpoint,
		Keypair:     DefaultKeypairPath(),
		SendRetries: solana.DefaultSendRetries,
	}
}

// LoadConfig reads the config at path, creating it with defaults if it does
// not exist yet.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := SaveConfig(path, cfg); err != nil {
			return Config{}, err
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("error decoding config file: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating config file: %w", err)
	}
	defer file.Close()

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}
	return nil
}
