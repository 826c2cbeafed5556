package cmd

import (
	"fmt"
	"log"
	"os"

	shdw_drive "shdw-cli/solana"

	"github.com/joho/godotenv"
)

const defaultRpcEndpoint = "https://api.mainnet-beta.solana.com"

// Settings resolved from flags, the environment and an optional .env file.
// Flags win over environment variables.
var (
	rpcURLFlag     string
	keypairFlag    string
	configFileFlag string
	verboseFlag    bool
	assumeYesFlag  bool
)

// GetRpcEndpoint returns the best available RPC endpoint.
func GetRpcEndpoint() string {
	if rpcURLFlag != "" {
		return rpcURLFlag
	}
	if url := os.Getenv("SHDW_RPC_URL"); url != "" {
		return url
	}
	if heliusApiKey := os.Getenv("HELIUS_API_KEY"); heliusApiKey != "" {
		return fmt.Sprintf("https://mainnet.helius-rpc.com/?api-key=%s", heliusApiKey)
	}
	return defaultRpcEndpoint
}

// GetKeypairPath returns the keypair path, empty meaning the solana CLI default.
func GetKeypairPath() string {
	if keypairFlag != "" {
		return keypairFlag
	}
	return os.Getenv("SHDW_KEYPAIR")
}

// LoadDriveConfig returns the deployment configuration, overlaid with a YAML
// file when one is given.
func LoadDriveConfig() (shdw_drive.Config, error) {
	path := configFileFlag
	if path == "" {
		path = os.Getenv("SHDW_CONFIG")
	}
	if path == "" {
		return shdw_drive.DefaultConfig(), nil
	}
	return shdw_drive.LoadConfig(path)
}

func loadEnv() {
	if err := godotenv.Load(); err != nil && verboseFlag {
		log.Println("Info: .env file not found, using flags and environment only.")
	}
}
