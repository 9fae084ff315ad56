package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	ierrors "github.com/jrsteele09/go-course-portal/internal/errors"
	"github.com/jrsteele09/go-course-portal/tokens"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultTimeout = 30 * time.Second
	maxErrorBody   = 1 << 20
	refreshKey     = "refresh"
)

// Client talks to the course portal backend. Every request carries the
// stored access token; a 401 triggers at most one refresh and one retry.
// When the refresh itself fails both tokens are cleared and the session
// expired handler runs.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	store      tokens.Store

	dedupRefresh bool
	refreshGroup singleflight.Group

	handlerLock      sync.RWMutex
	onSessionExpired func()

	Auth     *AuthService
	Courses  *CoursesService
	Students *StudentsService
}

type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per request timeout. It is applied to a copy of the
// http.Client once all options have run, whatever their order.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithRefreshDedup shares one refresh call between requests that hit a 401
// at the same time. Without it each request refreshes on its own.
func WithRefreshDedup() ClientOption {
	return func(c *Client) {
		c.dedupRefresh = true
	}
}

// WithSessionExpiredHandler sets the function run after a failed refresh
func WithSessionExpiredHandler(fn func()) ClientOption {
	return func(c *Client) {
		c.onSessionExpired = fn
	}
}

func NewClient(baseURL string, store tokens.Store, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		store:      store,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	c.Auth = &AuthService{client: c}
	c.Courses = &CoursesService{client: c}
	c.Students = &StudentsService{client: c}
	return c
}

// OnSessionExpired sets the session expired handler after construction.
// The session manager registers itself here.
func (c *Client) OnSessionExpired(fn func()) {
	c.handlerLock.Lock()
	defer c.handlerLock.Unlock()
	c.onSessionExpired = fn
}

// Store returns the token store the client reads from and writes to
func (c *Client) Store() tokens.Store {
	return c.store
}

// BaseURL returns the backend root without a trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

type request struct {
	method string
	path   string
	query  map[string]string
	body   []byte
}

// do sends a request and decodes a 2xx JSON body into out (when out is not nil)
func (c *Client) do(ctx context.Context, method, path string, query map[string]string, in, out any) error {
	req := request{method: method, path: path, query: query}
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return errors.Wrapf(err, "encode %s %s", method, path)
		}
		req.body = body
	}

	resp, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		resp, err = c.retryAfterRefresh(ctx, req, resp)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return errors.Wrapf(err, "decode %s %s", method, path)
	}
	return nil
}

// retryAfterRefresh handles a 401 for a request that has not been retried.
// Without a refresh token the original 401 is returned unchanged.
func (c *Client) retryAfterRefresh(ctx context.Context, req request, unauthorized *http.Response) (*http.Response, error) {
	if !tokens.HasRefresh(c.store) {
		return nil, parseError(unauthorized)
	}
	io.Copy(io.Discard, unauthorized.Body) //nolint:errcheck

	if err := c.refreshSession(ctx); err != nil {
		return nil, err
	}

	log.Debug().Str("method", req.method).Str("path", req.path).Msg("Retrying request with refreshed access token")
	return c.send(ctx, req)
}

// refreshSession obtains a new access token. On failure the tokens are
// cleared, the session expired handler runs and ErrSessionExpired is returned.
// An interrupted caller context leaves the tokens untouched.
func (c *Client) refreshSession(ctx context.Context) error {
	if !c.dedupRefresh {
		return c.refreshOrExpire(ctx)
	}

	// The shared refresh outlives any single waiter
	ch := c.refreshGroup.DoChan(refreshKey, func() (any, error) {
		refreshCtx, cancel := c.detach(ctx)
		defer cancel()
		return nil, c.refreshOrExpire(refreshCtx)
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		if res.Shared {
			log.Debug().Msg("Shared an in-flight token refresh")
		}
		return res.Err
	}
}

// detach keeps ctx's values but not its cancellation, bounded by the client timeout
func (c *Client) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if c.httpClient.Timeout > 0 {
		return context.WithTimeout(detached, c.httpClient.Timeout)
	}
	return context.WithCancel(detached)
}

func (c *Client) refreshOrExpire(ctx context.Context) error {
	err := c.refreshAccessToken(ctx)
	if err == nil {
		return nil
	}
	if interrupted(ctx, err) {
		log.Debug().Err(err).Msg("Token refresh interrupted, keeping tokens")
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}

	log.Warn().Err(err).Msg("Token refresh failed, clearing session")
	tokens.ClearPair(c.store)

	c.handlerLock.RLock()
	handler := c.onSessionExpired
	c.handlerLock.RUnlock()
	if handler != nil {
		handler()
	}
	return ierrors.ErrSessionExpired
}

// interrupted reports a refresh that never got an answer because the
// caller gave up, as opposed to one the refresh endpoint rejected
func interrupted(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// refreshAccessToken is a raw call that bypasses decoration and the retry logic
func (c *Client) refreshAccessToken(ctx context.Context) error {
	refresh, _ := c.store.Get(tokens.RefreshTokenKey)
	body, err := json.Marshal(RefreshRequest{Refresh: refresh})
	if err != nil {
		return errors.Wrap(err, "encode refresh request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+PathTokenRefresh, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build refresh request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return errors.Wrap(err, "refresh request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseError(resp)
	}

	var pair RefreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return errors.Wrap(err, "decode refresh response")
	}
	if pair.Access == "" {
		return errors.Wrap(ierrors.ErrNoAccessToken, "refresh response")
	}

	// Rotated refresh tokens are stored when the backend sends one
	tokens.SavePair(c.store, tokens.Pair{Access: pair.Access, Refresh: pair.Refresh})
	return nil
}

// send builds and decorates one HTTP request from the current token store contents
func (c *Client) send(ctx context.Context, req request) (*http.Response, error) {
	u := c.baseURL + req.path
	if len(req.query) > 0 {
		values := url.Values{}
		for k, v := range req.query {
			values.Set(k, v)
		}
		u += "?" + values.Encode()
	}

	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, body)
	if err != nil {
		return nil, errors.Wrapf(err, "build %s %s", req.method, req.path)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if access, ok := c.store.Get(tokens.AccessTokenKey); ok && access != "" {
		tokens.Pair{Access: access}.OAuth2().SetAuthHeader(httpReq)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", req.method, req.path)
	}
	log.Debug().
		Str("method", req.method).
		Str("path", req.path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("API request")
	return resp, nil
}
