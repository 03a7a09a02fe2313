// Package config provides functionality for managing configuration options
// for the server using command-line flags, an optional config file and
// environment variables.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/atinyakov/SolForge/internal/solana"
)

// Options holds the configuration values for the server.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"address" toml:"address"`

	// DatabaseDSN selects the postgres card store. Empty keeps cards in
	// memory.
	DatabaseDSN string `json:"database_dsn" toml:"database_dsn"`

	// Config is the path to the config file.
	Config string `json:"-" toml:"-"`

	// LogLevel is a zap level name.
	LogLevel string `json:"log_level" toml:"log_level"`

	// RPCURL is the Solana JSON-RPC endpoint.
	RPCURL string `json:"rpc_url" toml:"rpc_url"`
	// BlockchainID is advertised in X-Blockchain-Ids.
	BlockchainID string `json:"blockchain_id" toml:"blockchain_id"`
	// SendRetries is passed as maxRetries to sendTransaction.
	SendRetries int `json:"send_retries" toml:"send_retries"`

	TreasurySecretKey  string `json:"treasury_secret_key" toml:"treasury_secret_key"`
	TreasuryPublicKey  string `json:"treasury_public_key" toml:"treasury_public_key"`
	TreasurySecretName string `json:"treasury_secret_name" toml:"treasury_secret_name"`
	GCPProject         string `json:"gcp_project" toml:"gcp_project"`

	PinataJWT     string `json:"pinata_jwt" toml:"pinata_jwt"`
	PinataGateway string `json:"pinata_gateway" toml:"pinata_gateway"`

	// PublicBaseURL overrides the origin used in action links.
	PublicBaseURL string `json:"public_base_url" toml:"public_base_url"`

	// DraftRetention is how long unminted cards are kept in postgres.
	DraftRetention Duration `json:"draft_retention" toml:"draft_retention"`
}

// Duration is a time.Duration read from "72h" style strings.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// UnmarshalJSON accepts a duration string.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	return d.UnmarshalText([]byte(s))
}

// Defaults applied before flags, file and environment.
const (
	DefaultAddress        = "localhost:8080"
	DefaultLogLevel       = "info"
	DefaultDraftRetention = 7 * 24 * time.Hour
)

// Parse reads os.Args and the environment. It exits the process on a
// malformed config file.
func Parse() *Options {
	opts, err := Load(os.Args[1:], os.Getenv)
	if err != nil {
		log.Fatalf("error while loading config: %v", err)
	}
	return opts
}

// Load builds Options from args, then the config file, then getenv.
// Later sources override earlier ones. A missing config file is not an
// error.
func Load(args []string, getenv func(string) string) (*Options, error) {
	opts := &Options{
		SendRetries:    solana.DefaultSendRetries,
		DraftRetention: Duration{DefaultDraftRetention},
	}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&opts.Port, "a", DefaultAddress, "run on ip:port server")
	fs.StringVar(&opts.DatabaseDSN, "d", "", "db address")
	fs.StringVar(&opts.Config, "config", "config.json", "path to config file")
	fs.StringVar(&opts.Config, "c", "config.json", "path to config file (shorthand)")
	fs.StringVar(&opts.RPCURL, "rpc", solana.DevnetEndpoint, "solana rpc endpoint")
	fs.StringVar(&opts.LogLevel, "l", DefaultLogLevel, "log level")
	fs.StringVar(&opts.BlockchainID, "chain", solana.DevnetBlockchainID, "blockchain id advertised to action clients")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if configPath := getenv("CONFIG"); configPath != "" {
		opts.Config = configPath
	}
	if err := readFile(opts.Config, opts); err != nil {
		return nil, err
	}

	for env, dst := range map[string]*string{
		"SERVER_ADDRESS":       &opts.Port,
		"DATABASE_DSN":         &opts.DatabaseDSN,
		"LOG_LEVEL":            &opts.LogLevel,
		"SOLANA_RPC_URL":       &opts.RPCURL,
		"BLOCKCHAIN_ID":        &opts.BlockchainID,
		"TREASURY_SECRET_KEY":  &opts.TreasurySecretKey,
		"TREASURY_PUBLIC_KEY":  &opts.TreasuryPublicKey,
		"TREASURY_SECRET_NAME": &opts.TreasurySecretName,
		"GOOGLE_CLOUD_PROJECT": &opts.GCPProject,
		"PINATA_JWT":           &opts.PinataJWT,
		"PINATA_GATEWAY":       &opts.PinataGateway,
		"PUBLIC_BASE_URL":      &opts.PublicBaseURL,
	} {
		if v := strings.TrimSpace(getenv(env)); v != "" {
			*dst = v
		}
	}

	if opts.SendRetries < 0 {
		return nil, fmt.Errorf("send_retries must not be negative, got %d", opts.SendRetries)
	}
	if opts.DraftRetention.Duration <= 0 {
		return nil, fmt.Errorf("draft_retention must be positive, got %s", opts.DraftRetention.Duration)
	}
	return opts, nil
}

func readFile(path string, opts *Options) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error while reading config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), opts); err != nil {
			return fmt.Errorf("error while parsing config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, opts); err != nil {
			return fmt.Errorf("error while parsing config file: %w", err)
		}
	}
	return nil
}
