package shdw_drive

import (
	"fmt"
	"os"
	"time"

	"github.com/gagliardetto/solana-go"
	"gopkg.in/yaml.v3"
)

// Mainnet deployment of the Shadow Drive storage program.
var (
	DefaultProgramID       = solana.MustPublicKeyFromBase58("2e1wdyNhUvE76y6yUCvah2KaviavMJYKoRun8acMRBZZ")
	DefaultTokenMint       = solana.MustPublicKeyFromBase58("SHDWyBxihqiCj6YekG2GUr7wqKLeLAMK1gHZck9pL6y")
	DefaultEmissionsWallet = solana.MustPublicKeyFromBase58("SHDWRWMZ6kmRG9CvKFSD7kVcnUqXMtd3SaMrLvWscbj")
	DefaultUploader        = solana.MustPublicKeyFromBase58("972oJTFyjmVNsWM4GHEKPWUbdrM2RQ3YJwuoxMa2XNVh")
)

const (
	DefaultEndpoint       = "https://shadow-storage.genesysgo.net"
	DefaultRequestTimeout = 120 * time.Second

	// Commitment is the finality level sent to the coordinator with every transaction.
	Commitment = "finalized"
)

// Config holds every deployment specific value used by the client.
// A Config is treated as immutable once handed to NewClient.
type Config struct {
	ProgramID       solana.PublicKey
	TokenMint       solana.PublicKey
	EmissionsWallet solana.PublicKey
	Uploader        solana.PublicKey

	// Endpoint is the base URL of the storage coordinator service.
	Endpoint string

	// RequestTimeout bounds every ledger RPC and HTTP call.
	RequestTimeout time.Duration
}

// DefaultConfig returns the mainnet configuration.
func DefaultConfig() Config {
	return Config{
		ProgramID:       DefaultProgramID,
		TokenMint:       DefaultTokenMint,
		EmissionsWallet: DefaultEmissionsWallet,
		Uploader:        DefaultUploader,
		Endpoint:        DefaultEndpoint,
		RequestTimeout:  DefaultRequestTimeout,
	}
}

// fileConfig is the on-disk YAML shape. Empty fields keep their defaults.
type fileConfig struct {
	ProgramID       string `yaml:"program_id"`
	TokenMint       string `yaml:"token_mint"`
	EmissionsWallet string `yaml:"emissions_wallet"`
	Uploader        string `yaml:"uploader"`
	Endpoint        string `yaml:"endpoint"`
	RequestTimeout  string `yaml:"request_timeout"`
}

// LoadConfig reads a YAML file and overlays it on DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	keys := []struct {
		raw  string
		dst  *solana.PublicKey
		name string
	}{
		{fc.ProgramID, &cfg.ProgramID, "program_id"},
		{fc.TokenMint, &cfg.TokenMint, "token_mint"},
		{fc.EmissionsWallet, &cfg.EmissionsWallet, "emissions_wallet"},
		{fc.Uploader, &cfg.Uploader, "uploader"},
	}
	for _, k := range keys {
		if k.raw == "" {
			continue
		}
		pk, err := solana.PublicKeyFromBase58(k.raw)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s: %w", k.name, err)
		}
		*k.dst = pk
	}

	if fc.Endpoint != "" {
		cfg.Endpoint = fc.Endpoint
	}
	if fc.RequestTimeout != "" {
		d, err := time.ParseDuration(fc.RequestTimeout)
		if err != nil {
			return cfg, fmt.Errorf("invalid request_timeout: %w", err)
		}
		cfg.RequestTimeout = d
	}

	return cfg, cfg.Validate()
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.ProgramID.IsZero() {
		return fmt.Errorf("program id is required")
	}
	if c.TokenMint.IsZero() {
		return fmt.Errorf("token mint is required")
	}
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	return nil
}
