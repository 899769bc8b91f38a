package content

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisSettingsStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	defaults := DefaultSettings("Big Rig Repair", "555-0199")
	store := NewRedisSettingsStore(client, defaults)
	ctx := context.Background()

	got, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, defaults, got)

	updated := SiteSettings{
		ShopName:    "Big Rig Repair",
		Phone:       "555-0100",
		Address:     "12 Freight Way",
		SocialLinks: map[string]string{"facebook": "https://facebook.com/bigrig"},
	}
	require.NoError(t, store.Save(ctx, updated))
	assert.True(t, mr.Exists(settingsKey))

	got, err = store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestRedisSettingsStore_CorruptValue(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, mr.Set(settingsKey, "not-json"))

	_, err := NewRedisSettingsStore(client, SiteSettings{}).Get(context.Background())
	assert.Error(t, err)
}

func TestMemorySettingsStore(t *testing.T) {
	store := NewMemorySettingsStore(DefaultSettings("Shop", "1"))
	ctx := context.Background()

	got, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Shop", got.ShopName)
	assert.True(t, got.EmergencyAvailable)

	require.NoError(t, store.Save(ctx, SiteSettings{ShopName: "New", Phone: "2"}))
	got, err = store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "New", got.ShopName)
}
