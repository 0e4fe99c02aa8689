package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/salasync/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change settings stored in ~/.salasync/config.toml.

Environment variables (SALASYNC_ACCESS_TOKEN, SALASYNC_MASTER_FOLDER_ID, ...)
and a .env file in the working directory override stored values.`,
	RunE: runSettingsList,
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show effective settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsList,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Show one setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change one setting",
	Long: `Validates and stores a setting. Lists are comma separated and
durations use Go syntax (30s, 2m).

Examples:
  salasync settings set drive.master_folder_id 1AbC...
  salasync settings set sync.merge_policy merge-non-empty
  salasync settings set sync.reports_tokens inf,final`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsListCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsList(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	values := settingsValues(settings)
	cmd.Println("Current Settings")
	cmd.Println("================")
	for _, key := range settingsService.Keys() {
		cmd.Printf("  %-28s %s\n", key, values[key])
	}

	if !settings.Auth.IsConfigured() {
		cmd.Println()
		cmd.Println("Warning: no Drive credentials configured (auth.access_token or auth.refresh_token).")
	}
	return nil
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	value, ok := settingsValues(settings)[args[0]]
	if !ok {
		return fmt.Errorf("unknown setting: %s", args[0])
	}
	cmd.Println(value)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to save setting: %w", err)
	}

	cmd.Printf("%s updated.\n", args[0])
	return nil
}

// settingsValues renders effective settings by config key. Secrets are masked.
func settingsValues(s *domain.AppSettings) map[string]string {
	return map[string]string{
		"drive.master_folder_id":    orNotSet(s.Drive.MasterFolderID),
		"drive.page_size":           strconv.Itoa(s.Drive.PageSize),
		"drive.requests_per_second": strconv.FormatFloat(s.Drive.RequestsPerSecond, 'g', -1, 64),
		"drive.burst":               strconv.Itoa(s.Drive.Burst),
		"drive.shared_drives":       strconv.FormatBool(s.Drive.SharedDrives),
		"sync.workers":              strconv.Itoa(s.Sync.Workers),
		"sync.fetch_timeout":        s.Sync.FetchTimeout.String(),
		"sync.merge_policy":         string(s.Sync.MergePolicy),
		"sync.reports_tokens":       strings.Join(s.Sync.ReportsTokens, ","),
		"registry.backend":          string(s.Registry.Backend),
		"registry.data_dir":         orNotSet(s.Registry.DataDir),
		"registry.redis_addr":       s.Registry.RedisAddr,
		"auth.access_token":         maskSecret(s.Auth.AccessToken),
		"auth.client_id":            orNotSet(s.Auth.ClientID),
		"auth.client_secret":        maskSecret(s.Auth.ClientSecret),
		"auth.refresh_token":        maskSecret(s.Auth.RefreshToken),
	}
}

func orNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

// maskSecret masks a credential for display.
func maskSecret(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
