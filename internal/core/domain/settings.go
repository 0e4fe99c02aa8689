package domain

import (
	"fmt"
	"time"
)

// Bounds for the sync worker count.
const (
	MinWorkers = 1
	MaxWorkers = 16
)

// RegistryBackend selects the RecordStore implementation.
type RegistryBackend string

// Available registry backends.
const (
	// BackendSQLite stores the registry in a local SQLite file.
	BackendSQLite RegistryBackend = "sqlite"

	// BackendRedis stores the registry in a Redis instance shared by several operators.
	BackendRedis RegistryBackend = "redis"

	// BackendMemory keeps the registry in process memory (dry runs).
	BackendMemory RegistryBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b RegistryBackend) IsValid() bool {
	switch b {
	case BackendSQLite, BackendRedis, BackendMemory:
		return true
	default:
		return false
	}
}

// AppSettings contains all application settings.
type AppSettings struct {
	Drive    DriveSettings
	Sync     SyncSettings
	Registry RegistrySettings
	Auth     AuthSettings
}

// DriveSettings configures access to the document store.
type DriveSettings struct {
	// MasterFolderID is the folder whose children are rooms.
	MasterFolderID string

	// PageSize is the listing page size.
	PageSize int

	// RequestsPerSecond is the sustained API request rate.
	RequestsPerSecond float64

	// Burst is the maximum burst of API requests.
	Burst int

	// SharedDrives includes items from shared drives in listings.
	SharedDrives bool
}

// SyncSettings configures the ingestion pass.
type SyncSettings struct {
	// Workers bounds in-flight rooms and documents per level.
	Workers int

	// FetchTimeout bounds a single document fetch.
	FetchTimeout time.Duration

	// MergePolicy controls replace-all versus merge-non-empty upserts.
	MergePolicy MergePolicy

	// ReportsTokens must all occur in the final-reports folder name.
	ReportsTokens []string
}

// RegistrySettings configures registry persistence.
type RegistrySettings struct {
	Backend   RegistryBackend
	DataDir   string
	RedisAddr string
}

// AuthSettings holds document store credentials.
type AuthSettings struct {
	// AccessToken is a pre-acquired bearer token.
	AccessToken string

	// ClientID, ClientSecret and RefreshToken allow refreshing tokens.
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// HasRefresh returns true if a refresh token flow is configured.
func (a AuthSettings) HasRefresh() bool {
	return a.ClientID != "" && a.RefreshToken != ""
}

// IsConfigured returns true if some credential is present.
func (a AuthSettings) IsConfigured() bool {
	return a.AccessToken != "" || a.HasRefresh()
}

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Drive: DriveSettings{
			PageSize:          100,
			RequestsPerSecond: 8.0,
			Burst:             10,
			SharedDrives:      true,
		},
		Sync: SyncSettings{
			Workers:       4,
			FetchTimeout:  30 * time.Second,
			MergePolicy:   MergeReplace,
			ReportsTokens: []string{"inf", "final"},
		},
		Registry: RegistrySettings{
			Backend:   BackendSQLite,
			RedisAddr: "localhost:6379",
		},
	}
}

// ClampWorkers bounds n to [MinWorkers, MaxWorkers].
func ClampWorkers(n int) int {
	if n < MinWorkers {
		return MinWorkers
	}
	if n > MaxWorkers {
		return MaxWorkers
	}
	return n
}

// Validate checks that settings can drive a sync.
func (s AppSettings) Validate() error {
	if !s.Registry.Backend.IsValid() {
		return fmt.Errorf("%w: registry backend %q", ErrInvalidInput, s.Registry.Backend)
	}
	if s.Registry.Backend == BackendRedis && s.Registry.RedisAddr == "" {
		return fmt.Errorf("%w: redis backend requires registry.redis_addr", ErrInvalidInput)
	}
	if s.Sync.FetchTimeout <= 0 {
		return fmt.Errorf("%w: sync.fetch_timeout must be positive", ErrInvalidInput)
	}
	if len(s.Sync.ReportsTokens) == 0 {
		return fmt.Errorf("%w: sync.reports_tokens must not be empty", ErrInvalidInput)
	}
	if s.Drive.PageSize <= 0 || s.Drive.PageSize > 1000 {
		return fmt.Errorf("%w: drive.page_size must be within 1..1000", ErrInvalidInput)
	}
	return nil
}
