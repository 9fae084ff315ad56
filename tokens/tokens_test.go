package tokens_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-course-portal/internal/errors"
	"github.com/jrsteele09/go-course-portal/tokens"
	"github.com/jrsteele09/go-course-portal/tokens/storefake"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp *time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{Subject: "1"}
	if exp != nil {
		claims.ExpiresAt = jwt.NewNumericDate(*exp)
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestPairHelpers(t *testing.T) {
	store := storefake.NewFakeTokenStore()

	require.Equal(t, tokens.Pair{}, tokens.LoadPair(store))
	require.False(t, tokens.HasAccess(store))
	require.False(t, tokens.HasRefresh(store))

	tokens.SavePair(store, tokens.Pair{Access: "a1", Refresh: "r1"})
	require.Equal(t, tokens.Pair{Access: "a1", Refresh: "r1"}, tokens.LoadPair(store))
	require.True(t, tokens.HasAccess(store))

	// An empty refresh token leaves the stored one untouched
	tokens.SavePair(store, tokens.Pair{Access: "a2"})
	require.Equal(t, tokens.Pair{Access: "a2", Refresh: "r1"}, tokens.LoadPair(store))

	tokens.ClearPair(store)
	_, ok := store.Get(tokens.AccessTokenKey)
	require.False(t, ok)
	_, ok = store.Get(tokens.RefreshTokenKey)
	require.False(t, ok)
	require.Equal(t, 0, store.Len())
}

func TestAccessTokenExpiry(t *testing.T) {
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("reads exp", func(t *testing.T) {
		got, err := tokens.AccessTokenExpiry(signedToken(t, &exp))
		require.NoError(t, err)
		require.True(t, exp.Equal(got))
	})

	t.Run("no exp claim", func(t *testing.T) {
		got, err := tokens.AccessTokenExpiry(signedToken(t, nil))
		require.NoError(t, err)
		require.True(t, got.IsZero())
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := tokens.AccessTokenExpiry("")
		require.ErrorIs(t, err, errors.ErrNoAccessToken)
	})

	t.Run("not a jwt", func(t *testing.T) {
		_, err := tokens.AccessTokenExpiry("opaque-token")
		require.Error(t, err)
	})
}

func TestIsExpiredAndRemaining(t *testing.T) {
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	tokens.NowTimeFunc = func() time.Time { return now }
	t.Cleanup(func() { tokens.NowTimeFunc = time.Now })

	past := now.Add(-time.Minute)
	future := now.Add(5 * time.Minute)

	require.True(t, tokens.IsExpired(signedToken(t, &past)))
	require.False(t, tokens.IsExpired(signedToken(t, &future)))
	require.False(t, tokens.IsExpired("opaque-token"))

	require.Equal(t, 5*time.Minute, tokens.Pair{Access: signedToken(t, &future)}.Remaining())
	require.Zero(t, tokens.Pair{Access: signedToken(t, &past)}.Remaining())
}

func TestPair_OAuth2(t *testing.T) {
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	access := signedToken(t, &exp)

	tok := tokens.Pair{Access: access, Refresh: "r"}.OAuth2()
	require.Equal(t, access, tok.AccessToken)
	require.Equal(t, "r", tok.RefreshToken)
	require.Equal(t, "Bearer", tok.Type())
	require.True(t, exp.Equal(tok.Expiry))
}
