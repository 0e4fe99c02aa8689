package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/salasync/internal/core/domain"
	"github.com/custodia-labs/salasync/internal/core/ports/driving"
	"github.com/custodia-labs/salasync/internal/logger"
)

var syncCmd = &cobra.Command{
	Use:   "sync [master-folder-id]",
	Short: "Ingest final reports into the registry",
	Long: `Walks the master folder: every child folder is a room, and inside each
room the folder whose name contains the report tokens (default "inf" and
"final") holds the documents to ingest. If no folder id is given, the
configured drive.master_folder_id is used.

Failures of a single room or document are logged and counted; only a
failure listing the master folder aborts the run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

var syncRoomCmd = &cobra.Command{
	Use:   "room [room-name] [folder-id]",
	Short: "Register every child folder of a room folder as a patient",
	Args:  cobra.ExactArgs(2),
	RunE:  runSyncRoom,
}

var metricsFile string

// progressInterval is how often a running sync is polled for status.
var progressInterval = 500 * time.Millisecond

// isTerminal reports whether progress should be printed.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func init() {
	syncCmd.Flags().StringVar(&metricsFile, "metrics-file", "",
		"write Prometheus metrics to this file after the run")
	syncCmd.AddCommand(syncRoomCmd)
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	if syncOrchestrator == nil {
		return errors.New("sync service not configured")
	}

	masterID := ""
	if len(args) > 0 {
		masterID = args[0]
	} else if settingsService != nil {
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		masterID = settings.Drive.MasterFolderID
	}

	if masterID == "" {
		cmd.Println("No master folder configured. Run 'salasync settings set drive.master_folder_id <id>'.")
		return nil
	}

	cmd.Printf("Synchronising master folder %s...\n", masterID)

	report, err := syncWithProgress(cmd.Context(), cmd, syncOrchestrator, masterID)
	if report != nil {
		printReport(cmd, report)
	}
	writeMetrics(cmd)

	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		cmd.Println("Sync cancelled. Records merged so far were kept.")
		return nil
	case domain.IsFatal(err):
		return fmt.Errorf("sync aborted: %w", err)
	default:
		return fmt.Errorf("sync failed: %w", err)
	}

	printRegistrySize(cmd)
	return nil
}

func runSyncRoom(cmd *cobra.Command, args []string) error {
	if syncOrchestrator == nil {
		return errors.New("sync service not configured")
	}

	report, err := syncOrchestrator.SyncRoomFolders(cmd.Context(), args[0], args[1])
	if err != nil {
		return fmt.Errorf("room sync failed: %w", err)
	}

	cmd.Printf("Room %s: %d folders, %d patients merged, %d failed\n",
		args[0], report.FoldersSeen, report.PatientsMerged, report.Failed)
	printRegistrySize(cmd)
	return nil
}

// syncWithProgress runs the sync while displaying progress updates on a terminal.
func syncWithProgress(
	ctx context.Context,
	cmd *cobra.Command,
	syncOrch driving.SyncOrchestrator,
	masterID string,
) (*domain.SyncReport, error) {
	type result struct {
		report *domain.SyncReport
		err    error
	}

	// Start sync in goroutine
	resCh := make(chan result, 1)
	go func() {
		report, err := syncOrch.SyncMaster(ctx, masterID)
		resCh <- result{report, err}
	}()

	if !isTerminal() {
		res := <-resCh
		return res.report, res.err
	}

	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	lastCount := -1
	for {
		select {
		case res := <-resCh:
			if lastCount >= 0 {
				cmd.Println()
			}
			return res.report, res.err
		case <-ticker.C:
			// Best effort; a failed status read only skips one update
			status, err := syncOrch.Status(ctx)
			if err == nil && status != nil && status.Running && status.DocumentsProcessed != lastCount {
				cmd.Printf("\rProcessing... %d rooms, %d documents (%d errors)",
					status.RoomsProcessed, status.DocumentsProcessed, status.ErrorCount)
				lastCount = status.DocumentsProcessed
			}
		}
	}
}

func printReport(cmd *cobra.Command, r *domain.SyncReport) {
	cmd.Println()
	cmd.Println("Sync Report")
	cmd.Println("===========")
	cmd.Printf("  Rooms:                %d\n", r.RoomsSeen)
	cmd.Printf("  Without reports:      %d\n", r.RoomsWithoutReports)
	cmd.Printf("  Rooms failed:         %d\n", r.RoomsFailed)
	cmd.Printf("  Documents processed:  %d\n", r.DocumentsProcessed)
	cmd.Printf("  Documents failed:     %d\n", r.DocumentsFailed)
	cmd.Printf("  Documents skipped:    %d\n", r.DocumentsSkipped)
	cmd.Printf("  Duration:             %s\n", r.Duration.Round(time.Millisecond))
	if r.DocumentsFailed > 0 {
		cmd.Println("Failed documents are listed in the warnings above.")
	}
}

func printRegistrySize(cmd *cobra.Command) {
	if registryService == nil {
		return
	}
	rooms, patients, err := registryService.Counts(cmd.Context())
	if err != nil {
		logger.Warn("Reading registry size: %v", err)
		return
	}
	cmd.Printf("Registry: %d rooms, %d patients\n", rooms, patients)
}

func writeMetrics(cmd *cobra.Command) {
	if metricsFile == "" || metricsWriter == nil {
		return
	}
	if err := metricsWriter.WriteTextfile(metricsFile); err != nil {
		logger.Warn("%v", err)
		return
	}
	cmd.Printf("Metrics written to %s\n", metricsFile)
}
