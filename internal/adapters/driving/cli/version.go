package cli

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/salasync/internal/adapters/driving/mcp"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Prints the salasync version, the MCP server version and the Go runtime it was built with.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		if versionShort {
			cmd.Println(version)
			return
		}
		cmd.Printf("salasync version %s\n", version)
		cmd.Printf("  mcp server: %s\n", mcp.Version)
		cmd.Printf("  runtime:    %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "print only the version")
	rootCmd.AddCommand(versionCmd)
}
