package app

import (
	"path/filepath"
	"testing"

	"github.com/nexshop/nexshop/internal/docstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfigManager(t *testing.T) *ConfigManager {
	t.Helper()
	store, err := docstore.NewBoltStore(filepath.Join(t.TempDir(), "nexshop.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return NewConfigManager(store)
}

func TestSetAndGet(t *testing.T) {
	cm := newTestConfigManager(t)

	require.NoError(t, cm.Set("store", "name", "NexShop"))
	require.NoError(t, cm.Set("checkout", "tax_rate", "0.18"))
	require.NoError(t, cm.Set("checkout", "shipping_fee", "99"))
	require.NoError(t, cm.Set("store", "maintenance", "true"))

	assert.Equal(t, "NexShop", cm.GetString("store", "name"))
	assert.Equal(t, 0.18, cm.GetFloat64("checkout", "tax_rate"))
	assert.Equal(t, int64(99), cm.GetInt64("checkout", "shipping_fee"))
	assert.True(t, cm.GetBool("store", "maintenance"))
}

func TestGetMissingSetting(t *testing.T) {
	cm := newTestConfigManager(t)

	assert.Empty(t, cm.GetString("store", "missing"))
	assert.Zero(t, cm.GetInt64("store", "missing"))
	assert.Zero(t, cm.GetFloat64("store", "missing"))
	assert.False(t, cm.GetBool("store", "missing"))
}

func TestSetUpdatesExistingRow(t *testing.T) {
	store, err := docstore.NewBoltStore(filepath.Join(t.TempDir(), "nexshop.db"))
	require.NoError(t, err)
	defer store.Close()
	cm := NewConfigManager(store)

	require.NoError(t, cm.Set("store", "currency", "INR"))
	require.NoError(t, cm.Set("store", "currency", "USD"))
	assert.Equal(t, "USD", cm.GetString("store", "currency"))

	// second Set must not create a second sys_config row
	fresh := NewConfigManager(store)
	assert.Equal(t, "USD", fresh.GetString("store", "currency"))
	assert.Len(t, fresh.Dump(), 1)
}

func TestReloadPicksUpExternalChanges(t *testing.T) {
	store, err := docstore.NewBoltStore(filepath.Join(t.TempDir(), "nexshop.db"))
	require.NoError(t, err)
	defer store.Close()

	writer := NewConfigManager(store)
	reader := NewConfigManager(store)
	require.NoError(t, writer.Set("store", "name", "NexShop"))

	assert.Empty(t, reader.GetString("store", "name"), "cache is stale until reload")
	require.NoError(t, reader.Reload())
	assert.Equal(t, "NexShop", reader.GetString("store", "name"))
}

func TestDumpIsACopy(t *testing.T) {
	cm := newTestConfigManager(t)
	require.NoError(t, cm.Set("store", "name", "NexShop"))

	dump := cm.Dump()
	dump["store.name"] = "tampered"
	assert.Equal(t, "NexShop", cm.GetString("store", "name"))
}
