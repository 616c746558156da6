package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client, time.Minute)
}

func TestFetchJSONPopulatesAndReuses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	key, err := store.BuildKey(ctx, "snapshot", "main")
	require.NoError(t, err)

	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return map[string]int{"qty": 7}, nil
	}

	var out map[string]int
	require.NoError(t, store.FetchJSON(ctx, key, &out, loader))
	require.Equal(t, 7, out["qty"])
	require.Equal(t, 1, calls)

	out = nil
	require.NoError(t, store.FetchJSON(ctx, key, &out, loader))
	require.Equal(t, 7, out["qty"])
	require.Equal(t, 1, calls)
}

func TestBumpRotatesKeys(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	before, err := store.BuildKey(ctx, "snapshot", "main")
	require.NoError(t, err)

	require.NoError(t, store.Bump(ctx))

	after, err := store.BuildKey(ctx, "snapshot", "main")
	require.NoError(t, err)
	require.NotEqual(t, before, after)
}

func TestNilStoreFallsThroughToLoader(t *testing.T) {
	var store *Store
	ctx := context.Background()

	var out int
	require.NoError(t, store.FetchJSON(ctx, "any", &out, func(context.Context) (any, error) {
		return 42, nil
	}))
	require.Equal(t, 42, out)
	require.NoError(t, store.Bump(ctx))
}
