package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gagliardetto/solana-go"
)

const (
	defaultConfigDirName = ".config"
	solanaConfigDirName  = "solana"
	keypairFileName      = "id.json"
)

// KeypairStore reads and writes keypairs in the solana-keygen JSON format,
// a JSON array of the 64 private key bytes.
type KeypairStore struct {
	path string
}

// NewKeypairStore returns a store for path, or for the default solana CLI
// keypair when path is empty.
func NewKeypairStore(path string) (*KeypairStore, error) {
	if path == "" {
		defaultPath, err := DefaultKeypairPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}
	return &KeypairStore{path: path}, nil
}

// Path returns the keypair file location.
func (s *KeypairStore) Path() string {
	return s.path
}

// Exists reports whether the keypair file is present.
func (s *KeypairStore) Exists() (bool, error) {
	_, err := os.Stat(s.path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check for keypair file: %w", err)
	}
	return true, nil
}

// Load reads the keypair.
func (s *KeypairStore) Load() (solana.PrivateKey, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keypair file: %w", err)
	}

	// Accepts both the keygen number array and a base64 string.
	var keyBytes []byte
	if err := json.Unmarshal(data, &keyBytes); err != nil {
		return nil, fmt.Errorf("failed to parse keypair file: %w", err)
	}

	if len(keyBytes) != solana.PrivateKeyLength {
		return nil, fmt.Errorf("invalid private key length: expected %d, got %d", solana.PrivateKeyLength, len(keyBytes))
	}
	return solana.PrivateKey(keyBytes), nil
}

// Save writes key, creating parent directories. Existing files are not overwritten.
func (s *KeypairStore) Save(key solana.PrivateKey) error {
	if len(key) != solana.PrivateKeyLength {
		return fmt.Errorf("invalid private key length: expected %d, got %d", solana.PrivateKeyLength, len(key))
	}
	exists, err := s.Exists()
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("keypair file already exists: %s", s.path)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create keypair directory: %w", err)
	}

	ints := make([]int, len(key))
	for i, b := range key {
		ints[i] = int(b)
	}
	data, err := json.Marshal(ints)
	if err != nil {
		return fmt.Errorf("failed to marshal keypair: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write keypair file: %w", err)
	}
	return nil
}

// Generate creates and saves a new keypair.
func (s *KeypairStore) Generate() (solana.PrivateKey, error) {
	key := solana.NewWallet().PrivateKey
	if err := s.Save(key); err != nil {
		return nil, err
	}
	return key, nil
}

// DefaultKeypairPath returns the solana CLI default keypair path,
// e.g. /home/user/.config/solana/id.json.
func DefaultKeypairPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, defaultConfigDirName, solanaConfigDirName, keypairFileName), nil
}
