// Package cli provides the salasync command line.
//
// Commands talk to core services through the driving ports only. The
// services are injected once at startup with SetServices.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/salasync/internal/core/ports/driving"
	"github.com/custodia-labs/salasync/internal/logger"
)

// MetricsWriter exports recorded sync metrics to a file.
type MetricsWriter interface {
	WriteTextfile(path string) error
}

// Services groups the core services used by commands.
type Services struct {
	Sync     driving.SyncOrchestrator
	Registry driving.RegistryService
	Folders  driving.FolderService
	Settings driving.SettingsService
	Metrics  MetricsWriter
}

var (
	version = "dev"
	verbose bool

	syncOrchestrator driving.SyncOrchestrator
	registryService  driving.RegistryService
	folderService    driving.FolderService
	settingsService  driving.SettingsService
	metricsWriter    MetricsWriter
)

var rootCmd = &cobra.Command{
	Use:   "salasync",
	Short: "Sync patient reports from Drive folders into the registry",
	Long: `salasync walks a master Drive folder of rooms, finds each room's
final-reports folder, extracts patient fields from every report and merges
them into a local registry keyed by patient name.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetServices injects the core services.
func SetServices(s Services) {
	syncOrchestrator = s.Sync
	registryService = s.Registry
	folderService = s.Folders
	settingsService = s.Settings
	metricsWriter = s.Metrics
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
