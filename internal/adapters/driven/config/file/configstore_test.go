package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
	assert.Empty(t, store.Keys())
}

func TestNewConfigStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "salasync")

	_, err := NewConfigStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("drive.master_folder_id", "root-123"))

	val, ok := store.Get("drive.master_folder_id")
	assert.True(t, ok)
	assert.Equal(t, "root-123", val)
	assert.Equal(t, "root-123", store.GetString("drive.master_folder_id"))
}

func TestConfigStore_TypedGettersWrongType(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("sync.workers", "four"))

	assert.Equal(t, 0, store.GetInt("sync.workers"))
	assert.False(t, store.GetBool("sync.workers"))
	assert.Nil(t, store.GetStringSlice("sync.workers"))
	assert.Equal(t, "", store.GetString("missing"))
}

func TestConfigStore_PersistsNestedTables(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("sync.workers", int64(6)))
	require.NoError(t, store.Set("sync.reports_tokens", []string{"inf", "final"}))
	require.NoError(t, store.Set("drive.shared_drives", false))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[sync]")
	assert.Contains(t, string(raw), "[drive]")

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, 6, reopened.GetInt("sync.workers"))
	assert.Equal(t, []string{"inf", "final"}, reopened.GetStringSlice("sync.reports_tokens"))
	assert.False(t, reopened.GetBool("drive.shared_drives"))
	_, ok := reopened.Get("drive.shared_drives")
	assert.True(t, ok)
}

func TestConfigStore_Unset(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("auth.access_token", "secret"))
	require.NoError(t, store.Unset("auth.access_token"))
	require.NoError(t, store.Unset("auth.access_token"))

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)
	_, ok := reopened.Get("auth.access_token")
	assert.False(t, ok)
}

func TestConfigStore_KeysSorted(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("sync.workers", int64(2)))
	require.NoError(t, store.Set("drive.page_size", int64(50)))

	assert.Equal(t, []string{"drive.page_size", "sync.workers"}, store.Keys())
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("auth.refresh_token", "r"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_LoadInvalidTOML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("not = [valid"), 0600))

	_, err := NewConfigStore(dir)
	assert.Error(t, err)
}

func TestFlattenMap(t *testing.T) {
	nested := map[string]any{
		"sync":  map[string]any{"workers": int64(4)},
		"plain": "x",
	}

	flat := flattenMap(nested, "")

	assert.Equal(t, map[string]any{"sync.workers": int64(4), "plain": "x"}, flat)
}

func TestUnflattenMap_ScalarWinsOverTable(t *testing.T) {
	flat := map[string]any{
		"sync":         "scalar",
		"sync.workers": int64(4),
		"drive.burst":  int64(10),
	}

	nested := unflattenMap(flat)

	assert.Equal(t, "scalar", nested["sync"])
	assert.Equal(t, map[string]any{"burst": int64(10)}, nested["drive"])
}
