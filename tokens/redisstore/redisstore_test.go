package redisstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/go-course-portal/tokens"
	"github.com/jrsteele09/go-course-portal/tokens/redisstore"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, prefix string) (*redisstore.Store, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client, err := redisstore.Connect(context.Background(), server.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return redisstore.New(client, prefix), server
}

func TestStore_RoundTrip(t *testing.T) {
	store, server := newStore(t, "coursectl:")

	tokens.SavePair(store, tokens.Pair{Access: "a", Refresh: "r"})
	require.Equal(t, tokens.Pair{Access: "a", Refresh: "r"}, tokens.LoadPair(store))

	server.CheckGet(t, "coursectl:"+tokens.AccessTokenKey, "a")
	server.CheckGet(t, "coursectl:"+tokens.RefreshTokenKey, "r")
	require.False(t, server.Exists(tokens.AccessTokenKey), "keys are always prefixed")

	tokens.ClearPair(store)
	require.Equal(t, tokens.Pair{}, tokens.LoadPair(store))
	require.False(t, server.Exists("coursectl:"+tokens.AccessTokenKey))
	require.False(t, server.Exists("coursectl:"+tokens.RefreshTokenKey))
}

func TestStore_MissingKey(t *testing.T) {
	store, _ := newStore(t, "coursectl:")

	v, ok := store.Get(tokens.AccessTokenKey)
	require.False(t, ok)
	require.Empty(t, v)

	store.Clear(tokens.RefreshTokenKey)
	require.False(t, tokens.HasRefresh(store))
}

func TestStore_PrefixesIsolateSessions(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })

	alice := redisstore.New(client, "alice:")
	bob := redisstore.New(client, "bob:")
	alice.Set(tokens.AccessTokenKey, "alice-access")

	_, ok := bob.Get(tokens.AccessTokenKey)
	require.False(t, ok)

	bob.Clear(tokens.AccessTokenKey)
	v, ok := alice.Get(tokens.AccessTokenKey)
	require.True(t, ok)
	require.Equal(t, "alice-access", v)
}

func TestStore_ServerErrors(t *testing.T) {
	store, server := newStore(t, "coursectl:")
	store.Set(tokens.AccessTokenKey, "a")

	server.SetError("ERR token storage unavailable")
	_, ok := store.Get(tokens.AccessTokenKey)
	require.False(t, ok, "read errors look like a missing token")

	server.SetError("")
	v, ok := store.Get(tokens.AccessTokenKey)
	require.True(t, ok)
	require.Equal(t, "a", v)
}

func TestConnect(t *testing.T) {
	server := miniredis.RunT(t)
	server.RequireAuth("secret")

	_, err := redisstore.Connect(context.Background(), server.Addr(), "wrong", 0)
	require.ErrorContains(t, err, "ping redis at "+server.Addr())

	client, err := redisstore.Connect(context.Background(), server.Addr(), "secret", 0)
	require.NoError(t, err)
	require.NoError(t, client.Close())
}

func TestStore_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 200 * time.Millisecond,
	})
	t.Cleanup(func() { client.Close() })

	store := redisstore.New(client, "test:", redisstore.WithOpTimeout(time.Second))
	store.Set(tokens.AccessTokenKey, "ignored")
	_, ok := store.Get(tokens.AccessTokenKey)
	require.False(t, ok)
	store.Clear(tokens.AccessTokenKey)
}
