package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteFileCmd = &cobra.Command{
	Use:   "delete-file <storage-account> <file-url>",
	Short: "Delete a file from a storage account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := parseStorageAccountArg(args[0])
		if err != nil {
			return err
		}
		if !confirm(fmt.Sprintf("Delete %s?", args[1])) {
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
		resp, err := client.DeleteFile(cmd.Context(), signer, key, args[1])
		if err != nil {
			return err
		}
		return printResult("✅ File deleted", resp)
	},
}

var getObjectDataCmd = &cobra.Command{
	Use:   "get-object-data <file-url>",
	Short: "Show the accounts behind a stored file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newDriveClient()
		if err != nil {
			return err
		}
		resp, err := client.GetObjectData(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printResult("Object data", resp)
	},
}

var listObjectsCmd = &cobra.Command{
	Use:   "list-objects <storage-account>",
	Short: "List the files in a storage account",
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
		resp, err := client.ListObjects(cmd.Context(), key)
		if err != nil {
			return err
		}
		return printResult(fmt.Sprintf("%d object(s)", len(resp.Keys)), resp.Keys)
	},
}

func init() {
	rootCmd.AddCommand(deleteFileCmd, getObjectDataCmd, listObjectsCmd)
}
