package driving

import "github.com/custodia-labs/salasync/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current settings: defaults, then the config file, then the environment.
	Get() (*domain.AppSettings, error)

	// Set validates and persists a single dot-notation key.
	Set(key, value string) error

	// Keys returns the supported configuration keys.
	Keys() []string

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
