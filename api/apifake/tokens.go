package apifake

import (
	"fmt"
	"strconv"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-course-portal/tokens"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// claims mirrors the payload of the backend's JWTs
type claims struct {
	TokenType  string `json:"token_type"`
	UserID     int    `json:"user_id"`
	Generation int    `json:"gen"`
	jwtlib.RegisteredClaims
}

// issuePair must be called with the lock held
func (b *Backend) issuePair(userID int) (tokens.Pair, error) {
	access, err := b.issue(userID, tokenTypeAccess)
	if err != nil {
		return tokens.Pair{}, err
	}
	refresh, err := b.issue(userID, tokenTypeRefresh)
	if err != nil {
		return tokens.Pair{}, err
	}
	return tokens.Pair{Access: access, Refresh: refresh}, nil
}

// IssuePair signs a fresh token pair for an existing user, as a login would
func (b *Backend) IssuePair(username string) (tokens.Pair, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	id, ok := b.usernames[username]
	if !ok {
		return tokens.Pair{}, fmt.Errorf("unknown user %q", username)
	}
	return b.issuePair(id)
}

func (b *Backend) issue(userID int, tokenType string) (string, error) {
	now := NowTimeFunc()
	ttl := b.accessTTL
	if tokenType == tokenTypeRefresh {
		ttl = b.refreshTTL
	}
	c := claims{
		TokenType:  tokenType,
		UserID:     userID,
		Generation: b.generation,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   strconv.Itoa(userID),
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(), // Unique per token so rotated pairs never collide
		},
	}
	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, c).SignedString(b.secret)
}

// verify checks signature, expiry and type. Access tokens from an older
// generation are rejected. Must be called with at least a read lock held.
func (b *Backend) verify(token, tokenType string) (*claims, error) {
	parsed := &claims{}
	_, err := jwtlib.ParseWithClaims(token, parsed, func(t *jwtlib.Token) (any, error) {
		return b.secret, nil
	},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithTimeFunc(NowTimeFunc),
	)
	if err != nil {
		return nil, err
	}
	if parsed.TokenType != tokenType {
		return nil, fmt.Errorf("token has wrong type %q", parsed.TokenType)
	}
	if tokenType == tokenTypeAccess && parsed.Generation < b.generation {
		return nil, fmt.Errorf("token has been revoked")
	}
	if tokenType == tokenTypeRefresh && b.blacklist[token] {
		return nil, fmt.Errorf("token is blacklisted")
	}
	if _, ok := b.accounts[parsed.UserID]; !ok {
		return nil, fmt.Errorf("user %d not found", parsed.UserID)
	}
	return parsed, nil
}
