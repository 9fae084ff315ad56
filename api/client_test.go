package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-course-portal/api"
	"github.com/jrsteele09/go-course-portal/api/apifake"
	ierrors "github.com/jrsteele09/go-course-portal/internal/errors"
	"github.com/jrsteele09/go-course-portal/tokens"
	"github.com/jrsteele09/go-course-portal/tokens/storefake"
	"github.com/jrsteele09/go-course-portal/users"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	backend *apifake.Backend
	server  *httptest.Server
	store   *storefake.FakeTokenStore
	client  *api.Client
}

func newFixture(t *testing.T, backendOpts []apifake.Option, clientOpts ...api.ClientOption) *fixture {
	t.Helper()
	backend := apifake.New(backendOpts...)
	server := backend.Server()
	t.Cleanup(server.Close)

	store := storefake.NewFakeTokenStore()
	return &fixture{
		backend: backend,
		server:  server,
		store:   store,
		client:  api.NewClient(server.URL, store, clientOpts...),
	}
}

// loginAs seeds the token store the way a successful login would
func (f *fixture) loginAs(t *testing.T, username string) tokens.Pair {
	t.Helper()
	pair, err := f.backend.IssuePair(username)
	require.NoError(t, err)
	tokens.SavePair(f.store, pair)
	return pair
}

func TestClient_AttachesStoredAccessToken(t *testing.T) {
	f := newFixture(t, nil)
	pair := f.loginAs(t, apifake.StudentUsername)

	_, err := f.client.Auth.Profile(context.Background())
	require.NoError(t, err)

	reqs := f.backend.RequestsTo(http.MethodGet, api.PathProfile)
	require.Len(t, reqs, 1)
	require.Equal(t, "Bearer "+pair.Access, reqs[0].Authorization)
}

func TestClient_NoTokenNoHeader(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.client.Auth.Login(context.Background(), users.Credentials{Username: apifake.StudentUsername, Password: apifake.StudentPassword})
	require.NoError(t, err)

	reqs := f.backend.RequestsTo(http.MethodPost, api.PathLogin)
	require.Len(t, reqs, 1)
	require.Empty(t, reqs[0].Authorization)
}

func TestClient_RefreshesOnceAndRetries(t *testing.T) {
	f := newFixture(t, nil)
	original := f.loginAs(t, apifake.StudentUsername)
	f.backend.ExpireAccessTokens()

	u, err := f.client.Auth.Profile(context.Background())
	require.NoError(t, err)
	require.Equal(t, apifake.StudentUsername, u.Username)

	require.Equal(t, 1, f.backend.RefreshCalls())
	reqs := f.backend.RequestsTo(http.MethodGet, api.PathProfile)
	require.Len(t, reqs, 2)
	require.Equal(t, "Bearer "+original.Access, reqs[0].Authorization)

	stored := tokens.LoadPair(f.store)
	require.NotEqual(t, original.Access, stored.Access)
	require.Equal(t, original.Refresh, stored.Refresh)
	require.Equal(t, "Bearer "+stored.Access, reqs[1].Authorization)
}

func TestClient_StoresRotatedRefreshToken(t *testing.T) {
	f := newFixture(t, []apifake.Option{apifake.WithRefreshRotation()})
	original := f.loginAs(t, apifake.StudentUsername)
	f.backend.ExpireAccessTokens()

	_, err := f.client.Auth.Profile(context.Background())
	require.NoError(t, err)
	require.NotEqual(t, original.Refresh, tokens.LoadPair(f.store).Refresh)
}

func TestClient_FatalRefreshClearsTokens(t *testing.T) {
	expired := 0
	f := newFixture(t, nil, api.WithSessionExpiredHandler(func() { expired++ }))
	f.loginAs(t, apifake.StudentUsername)
	f.backend.ExpireAccessTokens()
	f.backend.FailRefresh(true)

	_, err := f.client.Auth.Profile(context.Background())
	require.ErrorIs(t, err, ierrors.ErrSessionExpired)

	require.Equal(t, 1, expired)
	require.Equal(t, 1, f.backend.RefreshCalls())
	require.Len(t, f.backend.RequestsTo(http.MethodGet, api.PathProfile), 1, "the original request is not retried")
	require.Equal(t, tokens.Pair{}, tokens.LoadPair(f.store))
}

func TestClient_LateBoundSessionExpiredHandler(t *testing.T) {
	f := newFixture(t, nil)
	f.loginAs(t, apifake.StudentUsername)
	f.backend.ExpireAccessTokens()
	f.backend.FailRefresh(true)

	called := false
	f.client.OnSessionExpired(func() { called = true })

	_, err := f.client.Courses.ListActive(context.Background())
	require.ErrorIs(t, err, ierrors.ErrSessionExpired)
	require.True(t, called)
}

func TestClient_UnauthorizedWithoutRefreshToken(t *testing.T) {
	f := newFixture(t, nil)
	pair := f.loginAs(t, apifake.StudentUsername)
	f.store.Clear(tokens.RefreshTokenKey)
	f.backend.ExpireAccessTokens()

	_, err := f.client.Auth.Profile(context.Background())
	apiErr, ok := api.AsError(err)
	require.True(t, ok)
	require.True(t, apiErr.IsUnauthorized())
	require.NotErrorIs(t, err, ierrors.ErrSessionExpired)

	require.Zero(t, f.backend.RefreshCalls())
	access, _ := f.store.Get(tokens.AccessTokenKey)
	require.Equal(t, pair.Access, access, "tokens are left alone when no refresh is attempted")
}

func TestClient_RetriesAtMostOnce(t *testing.T) {
	var (
		lock      sync.Mutex
		profile   int
		refreshes int
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lock.Lock()
		defer lock.Unlock()
		switch r.URL.Path {
		case api.PathTokenRefresh:
			refreshes++
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access":"still-rejected"}`)) //nolint:errcheck
		default:
			profile++
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail":"Given token not valid for any token type"}`)) //nolint:errcheck
		}
	}))
	t.Cleanup(server.Close)

	store := storefake.NewFakeTokenStore()
	tokens.SavePair(store, tokens.Pair{Access: "a", Refresh: "r"})
	client := api.NewClient(server.URL, store)

	_, err := client.Auth.Profile(context.Background())
	apiErr, ok := api.AsError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Equal(t, "Given token not valid for any token type", apiErr.Message)

	require.Equal(t, 1, refreshes)
	require.Equal(t, 2, profile)
}

func concurrentProfiles(t *testing.T, f *fixture, n int) {
	t.Helper()
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.client.Auth.Profile(context.Background())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
}

func TestClient_ConcurrentRefreshes(t *testing.T) {
	const n = 3
	opts := []apifake.Option{apifake.WithRefreshDelay(200 * time.Millisecond)}

	t.Run("independent by default", func(t *testing.T) {
		f := newFixture(t, opts)
		f.loginAs(t, apifake.StudentUsername)
		f.backend.ExpireAccessTokens()

		concurrentProfiles(t, f, n)
		require.Equal(t, n, f.backend.RefreshCalls())
	})

	t.Run("shared with dedup", func(t *testing.T) {
		f := newFixture(t, opts, api.WithRefreshDedup())
		f.loginAs(t, apifake.StudentUsername)
		f.backend.ExpireAccessTokens()

		concurrentProfiles(t, f, n)
		require.Equal(t, 1, f.backend.RefreshCalls())
	})
}

func TestClient_ContextCancellation(t *testing.T) {
	f := newFixture(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.client.Courses.ListActive(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	client := api.NewClient(server.URL, storefake.NewFakeTokenStore(), api.WithTimeout(time.Second))
	_, err := client.Auth.Profile(context.Background())
	require.Error(t, err)
	_, isAPIErr := api.AsError(err)
	require.False(t, isAPIErr)
}

func TestClient_InterruptedRefreshKeepsTokens(t *testing.T) {
	tests := []struct {
		name       string
		clientOpts []api.ClientOption
	}{
		{"independent refresh", nil},
		{"shared refresh", []api.ClientOption{api.WithRefreshDedup()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var expired atomic.Int32
			opts := append(tt.clientOpts, api.WithSessionExpiredHandler(func() { expired.Add(1) }))
			f := newFixture(t, []apifake.Option{apifake.WithRefreshDelay(300 * time.Millisecond)}, opts...)
			pair := f.loginAs(t, apifake.StudentUsername)
			f.backend.ExpireAccessTokens()

			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			_, err := f.client.Auth.Profile(ctx)
			require.ErrorIs(t, err, context.DeadlineExceeded)
			require.NotErrorIs(t, err, ierrors.ErrSessionExpired)
			require.Zero(t, expired.Load())
			require.True(t, tokens.HasRefresh(f.store))
			require.Equal(t, pair.Refresh, tokens.LoadPair(f.store).Refresh)
		})
	}
}

func TestClient_SharedRefreshOutlivesWaiter(t *testing.T) {
	f := newFixture(t, []apifake.Option{apifake.WithRefreshDelay(200 * time.Millisecond)}, api.WithRefreshDedup())
	pair := f.loginAs(t, apifake.StudentUsername)
	f.backend.ExpireAccessTokens()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	_, err := f.client.Auth.Profile(ctx)
	require.ErrorIs(t, err, context.Canceled)

	require.Eventually(t, func() bool {
		access, _ := f.store.Get(tokens.AccessTokenKey)
		return access != pair.Access
	}, 2*time.Second, 20*time.Millisecond, "the shared refresh completes for the other waiters")

	_, err = f.client.Auth.Profile(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, f.backend.RefreshCalls())
}

func TestClient_TimeoutAppliesToCopy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	shared := &http.Client{}
	orders := map[string][]api.ClientOption{
		"timeout first": {api.WithTimeout(50 * time.Millisecond), api.WithHTTPClient(shared)},
		"timeout last":  {api.WithHTTPClient(shared), api.WithTimeout(50 * time.Millisecond)},
	}
	for name, opts := range orders {
		t.Run(name, func(t *testing.T) {
			client := api.NewClient(server.URL, storefake.NewFakeTokenStore(), opts...)
			_, err := client.Auth.Profile(context.Background())
			require.Error(t, err)
			_, isAPIErr := api.AsError(err)
			require.False(t, isAPIErr)
		})
	}
	require.Zero(t, shared.Timeout, "the caller's http.Client is left untouched")
}
