package cmd

import (
	"fmt"

	shdw_drive "shdw-cli/solana"

	"github.com/AlecAivazis/survey/v2"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

var (
	createVersionFlag string
	createOwner2Flag  string
	addImmutableFlag  bool
	historyLimitFlag  int
)

var createStorageAccountCmd = &cobra.Command{
	Use:   "create-storage-account [name] [size]",
	Short: "Create a new storage account",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, size := "", ""
		if len(args) > 0 {
			name = args[0]
		}
		if len(args) > 1 {
			size = args[1]
		}

		// Prompt for anything not given on the command line.
		if name == "" {
			namePrompt := &survey.Input{Message: "Storage account name:"}
			if err := survey.AskOne(namePrompt, &name, survey.WithValidator(survey.Required)); err != nil {
				return err
			}
		}
		if size == "" {
			sizePrompt := &survey.Input{
				Message: "Storage size:",
				Default: "1MB",
				Help:    "Only KB, MB and GB units are supported.",
			}
			if err := survey.AskOne(sizePrompt, &size, survey.WithValidator(func(ans interface{}) error {
				_, err := shdw_drive.ParseStorageSize(fmt.Sprint(ans))
				return err
			})); err != nil {
				return err
			}
		}

		version, err := shdw_drive.ParseStorageAccountVersion(createVersionFlag)
		if err != nil {
			return err
		}

		req := shdw_drive.CreateStorageAccountRequest{Name: name, Size: size, Version: version}
		if createOwner2Flag != "" {
			owner2, err := solana.PublicKeyFromBase58(createOwner2Flag)
			if err != nil {
				return fmt.Errorf("invalid --owner2: %w", err)
			}
			req.Owner2 = &owner2
		}

		signer, err := loadSigner()
		if err != nil {
			return err
		}
		client, err := newDriveClient()
		if err != nil {
			return err
		}

		fmt.Println(promptStyle.Render(fmt.Sprintf("Creating %s storage account %q with %s...", version, name, size)))
		resp, err := client.CreateStorageAccount(cmd.Context(), signer, req)
		if err != nil {
			return err
		}
		return printResult("✅ Storage account created", resp)
	},
}

var getStorageAccountCmd = &cobra.Command{
	Use:   "get-storage-account <address>",
	Short: "Show a storage account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := parseStorageAccountArg(args[0])
		if err != nil {
			return err
		}
		client, err := newDriveClient()
		if err != nil {
			return err
		}
		account, err := client.GetStorageAccount(cmd.Context(), key)
		if err != nil {
			return err
		}
		return printResult("Storage account "+key.String(), summarize(key, account))
	},
}

var getStorageAccountsCmd = &cobra.Command{
	Use:   "get-storage-accounts [owner]",
	Short: "List the storage accounts of an owner (defaults to the keypair)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var owner solana.PublicKey
		if len(args) == 1 {
			key, err := solana.PublicKeyFromBase58(args[0])
			if err != nil {
				return fmt.Errorf("invalid owner address: %w", err)
			}
			owner = key
		} else {
			signer, err := loadSigner()
			if err != nil {
				return err
			}
			owner = signer.PublicKey()
		}

		client, err := newDriveClient()
		if err != nil {
			return err
		}
		accounts, err := client.GetStorageAccounts(cmd.Context(), owner)
		if err != nil {
			return err
		}

		summaries := make([]accountSummary, 0, len(accounts))
		for _, a := range accounts {
			summaries = append(summaries, summarize(a.Key, a.Account))
		}
		return printResult(fmt.Sprintf("%d storage account(s) for %s", len(summaries), owner), summaries)
	},
}

var addStorageCmd = &cobra.Command{
	Use:   "add-storage <address> <size>",
	Short: "Add storage to a storage account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := parseStorageAccountArg(args[0])
		if err != nil {
			return err
		}
		signer, err := loadSigner()
		if err != nil {
			return err
		}
		client, err := newDriveClient()
		if err != nil {
			return err
		}

		var resp *shdw_drive.StorageResponse
		if addImmutableFlag {
			resp, err = client.AddImmutableStorage(cmd.Context(), signer, key, args[1])
		} else {
			resp, err = client.AddStorage(cmd.Context(), signer, key, args[1])
		}
		if err != nil {
			return err
		}
		return printResult("✅ Storage added", resp)
	},
}

var reduceStorageCmd = &cobra.Command{
	Use:   "reduce-storage <address> <size>",
	Short: "Reduce the storage of a storage account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := parseStorageAccountArg(args[0])
		if err != nil {
			return err
		}
		signer, err := loadSigner()
		if err != nil {
			return err
		}
		client, err := newDriveClient()
		if err != nil {
			return err
		}
		resp, err := client.ReduceStorage(cmd.Context(), signer, key, args[1])
		if err != nil {
			return err
		}
		return printResult("✅ Storage reduced", resp)
	},
}

var makeImmutableCmd = &cobra.Command{
	Use:   "make-immutable <address>",
	Short: "Permanently lock a storage account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := parseStorageAccountArg(args[0])
		if err != nil {
			return err
		}
		if !confirm(fmt.Sprintf("Make %s immutable? This cannot be undone.", key)) {
			fmt.Println(promptStyle.Render("Aborted."))
			return nil
		}
		signer, err := loadSigner()
		if err != nil {
			return err
		}
		client, err := newDriveClient()
		if err != nil {
			return err
		}
		resp, err := client.MakeStorageImmutable(cmd.Context(), signer, key)
		if err != nil {
			return err
		}
		return printResult("✅ Storage account is now immutable", resp)
	},
}

var deleteStorageAccountCmd = &cobra.Command{
	Use:   "delete-storage-account <address>",
	Short: "Request deletion of a storage account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := parseStorageAccountArg(args[0])
		if err != nil {
			return err
		}
		if !confirm(fmt.Sprintf("Delete storage account %s and all of its files?", key)) {
			fmt.Println(promptStyle.Render("Aborted."))
			return nil
		}
		signer, err := loadSigner()
		if err != nil {
			return err
		}
		client, err := newDriveClient()
		if err != nil {
			return err
		}
		resp, err := client.DeleteStorageAccount(cmd.Context(), signer, key)
		if err != nil {
			return err
		}
		return printResult("✅ Deletion requested", resp)
	},
}

var cancelDeleteStorageAccountCmd = &cobra.Command{
	Use:   "cancel-delete-storage-account <address>",
	Short: "Cancel a pending storage account deletion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := parseStorageAccountArg(args[0])
		if err != nil {
			return err
		}
		signer, err := loadSigner()
		if err != nil {
			return err
		}
		client, err := newDriveClient()
		if err != nil {
			return err
		}
		resp, err := client.CancelDeleteStorageAccount(cmd.Context(), signer, key)
		if err != nil {
			return err
		}
		return printResult("✅ Deletion cancelled", resp)
	},
}

var claimStakeCmd = &cobra.Command{
	Use:   "claim-stake <address>",
	Short: "Claim stake released by reduce-storage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := parseStorageAccountArg(args[0])
		if err != nil {
			return err
		}
		signer, err := loadSigner()
		if err != nil {
			return err
		}
		client, err := newDriveClient()
		if err != nil {
			return err
		}
		resp, err := client.ClaimStake(cmd.Context(), signer, key)
		if err != nil {
			return err
		}
		return printResult("✅ Stake claimed", resp)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history <address>",
	Short: "Show recent transactions on a storage account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := parseStorageAccountArg(args[0])
		if err != nil {
			return err
		}
		client, err := newDriveClient()
		if err != nil {
			return err
		}
		entries, err := client.GetStorageAccountHistory(cmd.Context(), key, historyLimitFlag)
		if err != nil {
			return err
		}
		return printResult(fmt.Sprintf("%d transaction(s) on %s", len(entries), key), entries)
	},
}

// accountSummary is the printable view of a storage account.
type accountSummary struct {
	Address     string   `json:"address"`
	Version     string   `json:"version"`
	Identifier  string   `json:"identifier"`
	Owners      []string `json:"owners"`
	Storage     string   `json:"storage"`
	Used        string   `json:"used,omitempty"`
	Immutable   bool     `json:"immutable"`
	ToBeDeleted bool     `json:"to_be_deleted"`
	Seed        uint32   `json:"account_counter_seed"`
}

func summarize(key solana.PublicKey, account shdw_drive.StorageAccount) accountSummary {
	owners := make([]string, 0, len(account.Owners()))
	for _, o := range account.Owners() {
		owners = append(owners, o.String())
	}
	summary := accountSummary{
		Address:     key.String(),
		Version:     account.Version().String(),
		Identifier:  account.Identifier(),
		Owners:      owners,
		Storage:     shdw_drive.FormatStorageSize(account.Storage()),
		Immutable:   account.IsImmutable(),
		ToBeDeleted: account.IsToBeDeleted(),
		Seed:        account.AccountCounterSeed(),
	}
	if used, ok := account.Used(); ok {
		summary.Used = shdw_drive.FormatStorageSize(used)
	}
	return summary
}

func init() {
	createStorageAccountCmd.Flags().StringVar(&createVersionFlag, "version", "v2", "storage account version (v1 or v2)")
	createStorageAccountCmd.Flags().StringVar(&createOwner2Flag, "owner2", "", "optional second owner (v1 only)")
	addStorageCmd.Flags().BoolVar(&addImmutableFlag, "immutable", false, "add storage to an immutable account")
	historyCmd.Flags().IntVar(&historyLimitFlag, "limit", shdw_drive.DefaultHistoryLimit, "number of transactions to show")

	rootCmd.AddCommand(
		createStorageAccountCmd,
		getStorageAccountCmd,
		getStorageAccountsCmd,
		addStorageCmd,
		reduceStorageCmd,
		makeImmutableCmd,
		deleteStorageAccountCmd,
		cancelDeleteStorageAccountCmd,
		claimStakeCmd,
		historyCmd,
	)
}
