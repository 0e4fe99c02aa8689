package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/salasync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/salasync/internal/core/domain"
)

func newTestSettingsService(seed map[string]any, env map[string]string) (*SettingsService, *memory.ConfigStore) {
	store := memory.NewConfigStore(seed)
	service := NewSettingsService(store)
	service.lookupEnv = func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
	return service, store
}

func TestNewSettingsService(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(nil))

	require.NotNil(t, service)
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service, _ := newTestSettingsService(nil, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Drive, settings.Drive)
	assert.Equal(t, defaults.Sync, settings.Sync)
	assert.Equal(t, defaults.Registry, settings.Registry)
	assert.False(t, settings.Auth.IsConfigured())
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	service, _ := newTestSettingsService(map[string]any{
		"drive.master_folder_id":    "master-1",
		"sync.workers":              int64(8),
		"sync.fetch_timeout":        "45s",
		"sync.merge_policy":         "merge-non-empty",
		"sync.reports_tokens":       []any{"informes", "finales"},
		"registry.backend":          "redis",
		"registry.redis_addr":       "cache:6379",
		"drive.shared_drives":       false,
		"drive.requests_per_second": int64(3),
	}, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, "master-1", settings.Drive.MasterFolderID)
	assert.Equal(t, 8, settings.Sync.Workers)
	assert.Equal(t, 45*time.Second, settings.Sync.FetchTimeout)
	assert.Equal(t, domain.MergeNonEmpty, settings.Sync.MergePolicy)
	assert.Equal(t, []string{"informes", "finales"}, settings.Sync.ReportsTokens)
	assert.Equal(t, domain.BackendRedis, settings.Registry.Backend)
	assert.Equal(t, "cache:6379", settings.Registry.RedisAddr)
	assert.False(t, settings.Drive.SharedDrives)
	assert.Equal(t, 3.0, settings.Drive.RequestsPerSecond)
}

func TestSettingsService_Get_ClampsWorkers(t *testing.T) {
	service, _ := newTestSettingsService(map[string]any{"sync.workers": int64(99)}, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.MaxWorkers, settings.Sync.Workers)
}

func TestSettingsService_Get_TimeoutAsSeconds(t *testing.T) {
	service, _ := newTestSettingsService(map[string]any{"sync.fetch_timeout": int64(12)}, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, 12*time.Second, settings.Sync.FetchTimeout)
}

func TestSettingsService_Get_EnvironmentOverridesFile(t *testing.T) {
	service, _ := newTestSettingsService(
		map[string]any{"drive.master_folder_id": "from-file"},
		map[string]string{
			"SALASYNC_MASTER_FOLDER_ID": "from-env",
			"SALASYNC_ACCESS_TOKEN":     "tok",
		},
	)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, "from-env", settings.Drive.MasterFolderID)
	assert.Equal(t, "tok", settings.Auth.AccessToken)
	assert.True(t, settings.Auth.IsConfigured())
}

func TestSettingsService_Get_InvalidStoredValues(t *testing.T) {
	tests := []struct {
		name string
		seed map[string]any
	}{
		{"unknown merge policy", map[string]any{"sync.merge_policy": "append"}},
		{"unknown backend", map[string]any{"registry.backend": "postgres"}},
		{"page size too large", map[string]any{"drive.page_size": int64(5000)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _ := newTestSettingsService(tt.seed, nil)

			_, err := service.Get()

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestSettingsService_Set_TypedValues(t *testing.T) {
	service, store := newTestSettingsService(nil, nil)

	require.NoError(t, service.Set("sync.workers", "6"))
	require.NoError(t, service.Set("drive.requests_per_second", "2.5"))
	require.NoError(t, service.Set("drive.shared_drives", "false"))
	require.NoError(t, service.Set("sync.fetch_timeout", "1m"))
	require.NoError(t, service.Set("sync.reports_tokens", "inf, final ,"))
	require.NoError(t, service.Set("sync.merge_policy", "merge-non-empty"))

	val, _ := store.Get("sync.workers")
	assert.Equal(t, int64(6), val)
	val, _ = store.Get("drive.requests_per_second")
	assert.Equal(t, 2.5, val)
	val, _ = store.Get("drive.shared_drives")
	assert.Equal(t, false, val)
	assert.Equal(t, []string{"inf", "final"}, store.GetStringSlice("sync.reports_tokens"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, time.Minute, settings.Sync.FetchTimeout)
	assert.Equal(t, domain.MergeNonEmpty, settings.Sync.MergePolicy)
}

func TestSettingsService_Set_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown key", "search.mode", "hybrid"},
		{"non integer", "sync.workers", "many"},
		{"non number", "drive.requests_per_second", "fast"},
		{"non bool", "drive.shared_drives", "maybe"},
		{"bad duration", "sync.fetch_timeout", "soon"},
		{"bad policy", "sync.merge_policy", "append"},
		{"bad backend", "registry.backend", "postgres"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, store := newTestSettingsService(nil, nil)

			err := service.Set(tt.key, tt.value)

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Empty(t, store.Keys())
		})
	}
}

func TestSettingsService_Keys(t *testing.T) {
	service, _ := newTestSettingsService(nil, nil)

	keys := service.Keys()

	assert.Contains(t, keys, "drive.master_folder_id")
	assert.Contains(t, keys, "sync.merge_policy")
	assert.IsIncreasing(t, keys)
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service, _ := newTestSettingsService(nil, nil)

	assert.Equal(t, domain.DefaultAppSettings(), service.GetDefaults())
}
