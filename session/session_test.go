package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewWithClient(rdb), mr
}

func TestSetGetClear(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	pending, err := store.Get(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, pending)

	err = store.Set(ctx, 42, &Pending{Kind: AwaitTokenAddress, Command: "fb", Chain: "eth"})
	require.NoError(t, err)

	pending, err = store.Get(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, AwaitTokenAddress, pending.Kind)
	assert.Equal(t, "fb", pending.Command)

	// Other users are unaffected.
	other, err := store.Get(ctx, 43)
	require.NoError(t, err)
	assert.Nil(t, other)

	store.Clear(ctx, 42)
	pending, err = store.Get(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, pending)
}

func TestPendingExpires(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, 7, &Pending{Kind: AwaitTxHash, Days: 30}))

	mr.FastForward(pendingTTL + time.Second)

	pending, err := store.Get(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, pending)
}

func TestSetReplacesPrevious(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, 9, &Pending{Kind: AwaitTokenAddress, Command: "th"}))
	require.NoError(t, store.Set(ctx, 9, &Pending{Kind: AwaitTxHash, Days: 90}))

	pending, err := store.Get(ctx, 9)
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, AwaitTxHash, pending.Kind)
	assert.Equal(t, 90, pending.Days)
}
