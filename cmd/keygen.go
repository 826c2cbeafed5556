package cmd

import (
	"fmt"

	"shdw-cli/storage"

	"github.com/spf13/cobra"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a new keypair file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := storage.NewKeypairStore(GetKeypairPath())
		if err != nil {
			return err
		}

		fmt.Println(promptStyle.Render("Generating new keypair..."))
		key, err := store.Generate()
		if err != nil {
			return fmt.Errorf("failed to generate keypair: %w", err)
		}

		fmt.Println(titleStyle.Render("✅ Keypair saved to " + store.Path()))
		fmt.Println(infoStyle.Render("Public key: " + key.PublicKey().String()))
		fmt.Println(warningStyle.Render("🔒 Keep this file private. Anyone holding it controls your storage accounts."))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd)
}
