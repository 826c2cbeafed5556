package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	shdw_drive "shdw-cli/solana"
	"shdw-cli/storage"

	"github.com/AlecAivazis/survey/v2"
	figure "github.com/common-nighthawk/go-figure"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "shdw-drive",
	Short: "shdw-drive manages Shadow Drive storage accounts.",
	Long:  `A command-line interface to create, resize, lock and delete Shadow Drive storage accounts and files.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		loadEnv()
	},
	Run: func(cmd *cobra.Command, args []string) {
		myFigure := figure.NewFigure("SHDW", "larry3d", true)
		fmt.Println(titleStyle.Render(myFigure.String()))
		cmd.Help()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rpcURLFlag, "rpc-url", "", "Solana RPC endpoint (env SHDW_RPC_URL)")
	flags.StringVar(&keypairFlag, "keypair", "", "path to a solana-keygen keypair file (env SHDW_KEYPAIR)")
	flags.StringVar(&configFileFlag, "config", "", "YAML file overriding program addresses and endpoints (env SHDW_CONFIG)")
	flags.BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")
	flags.BoolVarP(&assumeYesFlag, "yes", "y", false, "skip confirmation prompts")
}

// newLogger returns a development logger in verbose mode and a no-op logger otherwise.
func newLogger() *zap.Logger {
	if !verboseFlag {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// newDriveClient builds a client from the resolved settings.
func newDriveClient() (*shdw_drive.Client, error) {
	cfg, err := LoadDriveConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return shdw_drive.NewClient(GetRpcEndpoint(), cfg, shdw_drive.WithLogger(newLogger()))
}

// loadSigner reads the keypair used to sign transactions.
func loadSigner() (solana.PrivateKey, error) {
	store, err := storage.NewKeypairStore(GetKeypairPath())
	if err != nil {
		return nil, err
	}
	key, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load keypair from %s: %w", store.Path(), err)
	}
	return key, nil
}

func parseStorageAccountArg(arg string) (solana.PublicKey, error) {
	key, err := solana.PublicKeyFromBase58(arg)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid storage account address %q: %w", arg, err)
	}
	return key, nil
}

// confirm asks before a destructive action unless --yes was given.
func confirm(message string) bool {
	if assumeYesFlag {
		return true
	}
	ok := false
	prompt := &survey.Confirm{Message: message}
	if err := survey.AskOne(prompt, &ok); err != nil {
		return false
	}
	return ok
}

// printResult renders a response as indented JSON.
func printResult(title string, v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format response: %w", err)
	}
	fmt.Println(titleStyle.Render(title))
	fmt.Println(infoStyle.Render(string(out)))
	return nil
}

// describeError adds a hint for the errors users can act on.
func describeError(err error) string {
	var serverErr *shdw_drive.ServerError
	switch {
	case errors.Is(err, shdw_drive.ErrUserInfoNotCreated):
		return fmt.Sprintf("%v\nCreate a storage account first; it initializes your user info account.", err)
	case errors.Is(err, shdw_drive.ErrInvalidStorage):
		return fmt.Sprintf("%v\nUse a size such as 500KB, 10MB or 1GB.", err)
	case errors.As(err, &serverErr):
		return fmt.Sprintf("Shadow Drive rejected the request (HTTP %d): %s", serverErr.Status, string(serverErr.Message))
	default:
		return err.Error()
	}
}

func Execute() {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(warningStyle.Render("❌ " + describeError(err)))
		os.Exit(1)
	}
}
