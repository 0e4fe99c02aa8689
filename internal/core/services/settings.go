package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/salasync/internal/core/domain"
	"github.com/custodia-labs/salasync/internal/core/ports/driven"
	"github.com/custodia-labs/salasync/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyMasterFolder   = "drive.master_folder_id"
	keyPageSize       = "drive.page_size"
	keyRequestsPerSec = "drive.requests_per_second"
	keyBurst          = "drive.burst"
	keySharedDrives   = "drive.shared_drives"
	keyWorkers        = "sync.workers"
	keyFetchTimeout   = "sync.fetch_timeout"
	keyMergePolicy    = "sync.merge_policy"
	keyReportsTokens  = "sync.reports_tokens"
	keyBackend        = "registry.backend"
	keyDataDir        = "registry.data_dir"
	keyRedisAddr      = "registry.redis_addr"
	keyAccessToken    = "auth.access_token"
	keyClientID       = "auth.client_id"
	keyClientSecret   = "auth.client_secret"
	keyRefreshToken   = "auth.refresh_token"
)

// Environment variables that override the config file.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
var envOverrides = map[string]string{
	"SALASYNC_MASTER_FOLDER_ID": keyMasterFolder,
	"SALASYNC_ACCESS_TOKEN":     keyAccessToken,
	"SALASYNC_CLIENT_ID":        keyClientID,
	"SALASYNC_CLIENT_SECRET":    keyClientSecret,
	"SALASYNC_REFRESH_TOKEN":    keyRefreshToken,
	"SALASYNC_REDIS_ADDR":       keyRedisAddr,
}

type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindFloat
	kindBool
	kindDuration
	kindList
)

var keyKinds = map[string]keyKind{
	keyMasterFolder:   kindString,
	keyPageSize:       kindInt,
	keyRequestsPerSec: kindFloat,
	keyBurst:          kindInt,
	keySharedDrives:   kindBool,
	keyWorkers:        kindInt,
	keyFetchTimeout:   kindDuration,
	keyMergePolicy:    kindString,
	keyReportsTokens:  kindList,
	keyBackend:        kindString,
	keyDataDir:        kindString,
	keyRedisAddr:      kindString,
	keyAccessToken:    kindString,
	keyClientID:       kindString,
	keyClientSecret:   kindString,
	keyRefreshToken:   kindString,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		lookupEnv:   os.LookupEnv,
	}
}

// Get retrieves current settings: defaults, then the config file, then the environment.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	policy, err := domain.ParseMergePolicy(s.value(keyMergePolicy))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", keyMergePolicy, err)
	}

	settings := &domain.AppSettings{
		Drive: domain.DriveSettings{
			MasterFolderID:    s.value(keyMasterFolder),
			PageSize:          s.getInt(keyPageSize, defaults.Drive.PageSize),
			RequestsPerSecond: s.getFloat(keyRequestsPerSec, defaults.Drive.RequestsPerSecond),
			Burst:             s.getInt(keyBurst, defaults.Drive.Burst),
			SharedDrives:      s.getBool(keySharedDrives, defaults.Drive.SharedDrives),
		},
		Sync: domain.SyncSettings{
			Workers:       domain.ClampWorkers(s.getInt(keyWorkers, defaults.Sync.Workers)),
			FetchTimeout:  s.getDuration(keyFetchTimeout, defaults.Sync.FetchTimeout),
			MergePolicy:   policy,
			ReportsTokens: s.getList(keyReportsTokens, defaults.Sync.ReportsTokens),
		},
		Registry: domain.RegistrySettings{
			Backend:   domain.RegistryBackend(s.getString(keyBackend, string(defaults.Registry.Backend))),
			DataDir:   s.value(keyDataDir),
			RedisAddr: s.getString(keyRedisAddr, defaults.Registry.RedisAddr),
		},
		Auth: domain.AuthSettings{
			AccessToken:  s.value(keyAccessToken),
			ClientID:     s.value(keyClientID),
			ClientSecret: s.value(keyClientSecret),
			RefreshToken: s.value(keyRefreshToken),
		},
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Set validates and persists a single dot-notation key.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := keyKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var typed any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s expects an integer", domain.ErrInvalidInput, key)
		}
		typed = int64(n)
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s expects a number", domain.ErrInvalidInput, key)
		}
		typed = f
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s expects true or false", domain.ErrInvalidInput, key)
		}
		typed = b
	case kindDuration:
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%w: %s expects a duration such as 30s", domain.ErrInvalidInput, key)
		}
		typed = value
	case kindList:
		typed = splitList(value)
	default:
		typed = value
	}

	switch key {
	case keyMergePolicy:
		if _, err := domain.ParseMergePolicy(value); err != nil {
			return fmt.Errorf("%w: %s expects replace or merge-non-empty", domain.ErrInvalidInput, key)
		}
	case keyBackend:
		if !domain.RegistryBackend(value).IsValid() {
			return fmt.Errorf("%w: %s expects sqlite, redis or memory", domain.ErrInvalidInput, key)
		}
	}

	if err := s.configStore.Set(key, typed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns the supported configuration keys in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(keyKinds))
	for k := range keyKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

// value returns the environment override for key, or the stored string.
func (s *SettingsService) value(key string) string {
	for env, k := range envOverrides {
		if k != key {
			continue
		}
		if v, ok := s.lookupEnv(env); ok && v != "" {
			return v
		}
	}
	return s.configStore.GetString(key)
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.value(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val, ok := s.configStore.Get(key)
	if !ok {
		return defaultVal
	}
	switch v := val.(type) {
	case float64:
		if v > 0 {
			return v
		}
	case int64:
		if v > 0 {
			return float64(v)
		}
	case int:
		if v > 0 {
			return float64(v)
		}
	}
	return defaultVal
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

// getDuration accepts a duration string ("45s") or a number of seconds.
func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	if str := s.configStore.GetString(key); str != "" {
		if d, err := time.ParseDuration(str); err == nil && d > 0 {
			return d
		}
		return defaultVal
	}
	if secs := s.configStore.GetInt(key); secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultVal
}

func (s *SettingsService) getList(key string, defaultVal []string) []string {
	if vals := s.configStore.GetStringSlice(key); len(vals) > 0 {
		return vals
	}
	if str := s.configStore.GetString(key); str != "" {
		return splitList(str)
	}
	return defaultVal
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
