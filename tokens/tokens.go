package tokens

import (
	"time"

	"golang.org/x/oauth2"
)

// Names under which the two session credentials are persisted
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
)

// Store is a small durable key/value store for the session credentials.
// Implementations never fail loudly: storage errors are logged and the
// value is treated as absent.
type Store interface {
	Get(name string) (string, bool)
	Set(name, value string)
	Clear(name string)
}

// Pair holds the access and refresh tokens issued together by the backend
type Pair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// LoadPair reads both tokens. Missing tokens are returned as empty strings.
func LoadPair(s Store) Pair {
	access, _ := s.Get(AccessTokenKey)
	refresh, _ := s.Get(RefreshTokenKey)
	return Pair{Access: access, Refresh: refresh}
}

// SavePair writes the non-empty tokens of p
func SavePair(s Store, p Pair) {
	if p.Access != "" {
		s.Set(AccessTokenKey, p.Access)
	}
	if p.Refresh != "" {
		s.Set(RefreshTokenKey, p.Refresh)
	}
}

// ClearPair deletes both tokens
func ClearPair(s Store) {
	s.Clear(AccessTokenKey)
	s.Clear(RefreshTokenKey)
}

// HasAccess returns true when an access token is stored
func HasAccess(s Store) bool {
	v, ok := s.Get(AccessTokenKey)
	return ok && v != ""
}

// HasRefresh returns true when a refresh token is stored
func HasRefresh(s Store) bool {
	v, ok := s.Get(RefreshTokenKey)
	return ok && v != ""
}

// OAuth2 converts the pair into an oauth2.Token so it can decorate requests.
// Expiry is taken from the access token's exp claim when it can be read.
func (p Pair) OAuth2() *oauth2.Token {
	t := &oauth2.Token{
		AccessToken:  p.Access,
		TokenType:    "Bearer",
		RefreshToken: p.Refresh,
	}
	if exp, err := AccessTokenExpiry(p.Access); err == nil {
		t.Expiry = exp
	}
	return t
}

// Remaining returns how long the access token is valid for, zero when it has
// expired or carries no exp claim.
func (p Pair) Remaining() time.Duration {
	exp, err := AccessTokenExpiry(p.Access)
	if err != nil || exp.IsZero() {
		return 0
	}
	if d := exp.Sub(NowTimeFunc()); d > 0 {
		return d
	}
	return 0
}
