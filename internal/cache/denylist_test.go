package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestDenylist(t *testing.T) (*Denylist, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewDenylist(rdb, ""), mr
}

func TestDenylist_RevokeAndCheck(t *testing.T) {
	t.Parallel()

	d, mr := newTestDenylist(t)
	ctx := context.Background()

	revoked, err := d.IsRevoked(ctx, "u@example.com", 1700000000)
	require.NoError(t, err)
	require.False(t, revoked)

	require.NoError(t, d.Revoke(ctx, "u@example.com", 1700000000, time.Hour))

	revoked, err = d.IsRevoked(ctx, "u@example.com", 1700000000)
	require.NoError(t, err)
	require.True(t, revoked)

	// Другая сессия того же принципала не затронута.
	revoked, err = d.IsRevoked(ctx, "u@example.com", 1700000001)
	require.NoError(t, err)
	require.False(t, revoked)

	// Email не попадает в ключ открытым текстом.
	for _, k := range mr.Keys() {
		require.NotContains(t, k, "u@example.com")
		require.Contains(t, k, DefaultPrefix)
	}
}

func TestDenylist_EntryExpires(t *testing.T) {
	t.Parallel()

	d, mr := newTestDenylist(t)
	ctx := context.Background()

	require.NoError(t, d.Revoke(ctx, "u@example.com", 1, time.Minute))
	require.Len(t, mr.Keys(), 1)
	require.Equal(t, time.Minute, mr.TTL(mr.Keys()[0]))

	mr.FastForward(time.Minute + time.Second)

	revoked, err := d.IsRevoked(ctx, "u@example.com", 1)
	require.NoError(t, err)
	require.False(t, revoked)
}

func TestDenylist_InvalidTTL(t *testing.T) {
	t.Parallel()

	d, _ := newTestDenylist(t)

	err := d.Revoke(context.Background(), "u@example.com", 1, 0)
	require.ErrorIs(t, err, ErrInvalidTTL)
}

func TestDenylist_RedisUnavailable(t *testing.T) {
	t.Parallel()

	d, mr := newTestDenylist(t)
	mr.Close()

	_, err := d.IsRevoked(context.Background(), "u@example.com", 1)
	require.Error(t, err)
	require.Error(t, d.Ping(context.Background()))
}

func TestNewRedisDenylist(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)

	d, err := NewRedisDenylist(context.Background(), "redis://"+mr.Addr()+"/0", "custom:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	require.NoError(t, d.Revoke(context.Background(), "u@example.com", 1, time.Minute))
	require.True(t, mr.Exists(d.key("u@example.com", 1)))

	_, err = NewRedisDenylist(context.Background(), "not a url", "")
	require.Error(t, err)
}
