package drive

import "github.com/custodia-labs/salasync/internal/core/domain"

// MaxExportSize is the maximum size read for exported or downloaded content (5MB).
const MaxExportSize = 5 * 1024 * 1024

// Config holds Google Drive adapter configuration.
type Config struct {
	// PageSize is the page size for list requests.
	PageSize int64
	// SharedDrives includes items from shared drives in listings.
	SharedDrives bool
	// MaxContentSize bounds exported and downloaded bodies.
	MaxContentSize int64
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		PageSize:       100,
		SharedDrives:   true,
		MaxContentSize: MaxExportSize,
	}
}

// ConfigFromSettings builds a Config from application settings.
func ConfigFromSettings(s domain.DriveSettings) Config {
	cfg := DefaultConfig()
	if s.PageSize > 0 {
		cfg.PageSize = int64(s.PageSize)
	}
	cfg.SharedDrives = s.SharedDrives
	return cfg
}
