package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/subdesk/pkg/plans"
	"github.com/platinummonkey/subdesk/pkg/subscribers"
)

// setupRedisStoreTest creates a miniredis instance and a store connected to it
func setupRedisStoreTest(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := DefaultConfig()
	cfg.RedisURL = "redis://" + mr.Addr()

	store, err := NewRedisStore(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store, mr
}

func TestRedisStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	store, mr := setupRedisStoreTest(t)

	subs := []*subscribers.Subscriber{
		testSubscriber(t, "Alice", "1", "Basic", 2.5),
		testSubscriber(t, "Bob", "2", "Super Plus", 150),
	}
	require.NoError(t, store.Save(ctx, subs))

	list, err := mr.List("subdesk:subscribers")
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice|1|Basic|2.5", "Bob|2|Super Plus|150"}, list)

	loaded, err := store.Load(ctx, plans.DefaultCatalog())
	require.NoError(t, err)
	assert.Equal(t, tuples(subs), tuples(loaded))
}

func TestRedisStore_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	store, mr := setupRedisStoreTest(t)

	require.NoError(t, store.Save(ctx, []*subscribers.Subscriber{
		testSubscriber(t, "Alice", "1", "Basic", 1),
		testSubscriber(t, "Bob", "2", "Basic", 1),
	}))
	require.NoError(t, store.Save(ctx, nil))

	assert.False(t, mr.Exists("subdesk:subscribers"))

	loaded, err := store.Load(ctx, plans.DefaultCatalog())
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestRedisStore_LoadSkipsMalformed(t *testing.T) {
	store, mr := setupRedisStoreTest(t)

	_, err := mr.Push("subdesk:subscribers", "Alice|1|Basic|1", "garbage", "Bob|2|Nope|3")
	require.NoError(t, err)

	catalog := plans.DefaultCatalog()
	loaded, err := store.Load(context.Background(), catalog)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Same(t, catalog.Default(), loaded[1].Plan())
}

func TestNewRedisStore_Errors(t *testing.T) {
	t.Run("invalid url", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.RedisURL = "not-a-url://"
		_, err := NewRedisStore(context.Background(), cfg)
		assert.Error(t, err)
	})

	t.Run("unreachable server", func(t *testing.T) {
		mr, err := miniredis.Run()
		require.NoError(t, err)
		addr := mr.Addr()
		mr.Close()

		cfg := DefaultConfig()
		cfg.RedisURL = "redis://" + addr
		_, err = NewRedisStore(context.Background(), cfg)
		assert.Error(t, err)
	})
}
