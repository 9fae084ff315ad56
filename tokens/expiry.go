package tokens

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-course-portal/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// AccessTokenExpiry reads the exp claim of a JWT without verifying its
// signature. The client never holds the signing key so this is for display
// only; the backend remains the judge of validity. A token without an exp
// claim returns the zero time.
func AccessTokenExpiry(token string) (time.Time, error) {
	if token == "" {
		return time.Time{}, errors.ErrNoAccessToken
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, errors.Wrapf(err, "parse access token")
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, nil
	}
	return claims.ExpiresAt.Time, nil
}

// IsExpired reports whether the token's exp claim lies in the past.
// Unreadable tokens are not considered expired; the backend decides.
func IsExpired(token string) bool {
	exp, err := AccessTokenExpiry(token)
	if err != nil || exp.IsZero() {
		return false
	}
	return !NowTimeFunc().Before(exp)
}
