package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var filesCmd = &cobra.Command{
	Use:   "files [folder-id]",
	Short: "List the files of a Drive folder",
	Long:  `Lists the non-trashed children of a folder with their type and web link.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runFiles,
}

func init() {
	rootCmd.AddCommand(filesCmd)
}

func runFiles(cmd *cobra.Command, args []string) error {
	if folderService == nil {
		return errors.New("folder service not configured")
	}

	nodes, err := folderService.ListFiles(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to list files: %w", err)
	}

	if len(nodes) == 0 {
		cmd.Println("Folder is empty.")
		return nil
	}

	for _, n := range nodes {
		cmd.Printf("  %s [%s]\n", n.Name, n.Format)
		cmd.Printf("    ID: %s\n", n.ID)
		if n.WebLink != "" {
			cmd.Printf("    Link: %s\n", n.WebLink)
		}
	}
	return nil
}
