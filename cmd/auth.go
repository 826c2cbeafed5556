package cmd

import (
	"errors"
	"fmt"

	"shdw-cli/auth"

	"github.com/spf13/cobra"
)

var (
	authAccountIDFlag   string
	authProviderURLFlag string
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Get a GenesysGo premium RPC token",
	Long: `Signs in to the GenesysGo portal with the keypair and exchanges the
portal session for a bearer token scoped to a premium RPC account.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		authenticator := auth.NewAuthenticator(auth.DefaultConfig(), newLogger())

		accountID := authAccountIDFlag
		if accountID == "" {
			if authProviderURLFlag == "" {
				return errors.New("either --account-id or --provider-url is required")
			}
			id, err := authenticator.ParseAccountIDFromURL(authProviderURLFlag)
			if err != nil {
				return err
			}
			accountID = id
		}

		signer, err := loadSigner()
		if err != nil {
			return err
		}

		fmt.Println(promptStyle.Render("Signing in as " + signer.PublicKey().String() + "..."))
		token, err := authenticator.Authenticate(cmd.Context(), signer, accountID)
		if err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}

		fmt.Println(titleStyle.Render("✅ Authenticated"))
		fmt.Println(infoStyle.Render(token))
		return nil
	},
}

func init() {
	authCmd.Flags().StringVar(&authAccountIDFlag, "account-id", "", "GenesysGo premium RPC account ID")
	authCmd.Flags().StringVar(&authProviderURLFlag, "provider-url", "", "GenesysGo RPC URL to read the account ID from")
	rootCmd.AddCommand(authCmd)
}
