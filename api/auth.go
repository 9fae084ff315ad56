package api

import (
	"context"
	"encoding/json"
	"net/http"

	ierrors "github.com/jrsteele09/go-course-portal/internal/errors"
	"github.com/jrsteele09/go-course-portal/tokens"
	"github.com/jrsteele09/go-course-portal/users"
)

// AuthResponse is the body returned by the login and register endpoints.
type AuthResponse struct {
	// Message is a human readable confirmation.
	// Example: "Login successful"
	Message string `json:"message,omitempty"`

	// User is the authenticated account, including its role.
	// Usage: Selects the admin or student surface
	User *users.User `json:"user"`

	// Access is the short-lived JWT sent as "Authorization: Bearer <access>".
	// Lifespan: Minutes; renewed through the refresh endpoint
	Access string `json:"access"`

	// Refresh is the long-lived token exchanged for new access tokens.
	// Usage: Sent to /api/auth/token/refresh/ and to /api/auth/logout/
	Refresh string `json:"refresh"`
}

// Pair returns the tokens in the response
func (r AuthResponse) Pair() tokens.Pair {
	return tokens.Pair{Access: r.Access, Refresh: r.Refresh}
}

// RefreshRequest is the body of the refresh and logout endpoints
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// RefreshResponse carries the new access token. Refresh is only set when the
// backend rotates refresh tokens.
type RefreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// MessageResponse is the body of endpoints that only confirm an action
type MessageResponse struct {
	Message string `json:"message"`
}

// ProfileResponse is the body of PUT /api/auth/profile/. User is kept raw so
// a field the backend cleared can be told apart from one it left out.
type ProfileResponse struct {
	Message string          `json:"message"`
	User    json.RawMessage `json:"user"`
}

// MergeInto applies the returned user on top of current
func (r ProfileResponse) MergeInto(current users.User) (users.User, error) {
	return current.MergeJSON(r.User)
}

// AuthService groups the /api/auth/ endpoints. It does not touch the token
// store; persisting tokens is the session manager's job.
type AuthService struct {
	client *Client
}

func (s *AuthService) Login(ctx context.Context, creds users.Credentials) (*AuthResponse, error) {
	var resp AuthResponse
	if err := s.client.do(ctx, http.MethodPost, PathLogin, nil, creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *AuthService) Register(ctx context.Context, reg users.Registration) (*AuthResponse, error) {
	var resp AuthResponse
	if err := s.client.do(ctx, http.MethodPost, PathRegister, nil, reg, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout blacklists the refresh token on the backend
func (s *AuthService) Logout(ctx context.Context, refresh string) error {
	if refresh == "" {
		return ierrors.ErrNoRefreshToken
	}
	return s.client.do(ctx, http.MethodPost, PathLogout, nil, RefreshRequest{Refresh: refresh}, nil)
}

func (s *AuthService) Profile(ctx context.Context) (*users.User, error) {
	var u users.User
	if err := s.client.do(ctx, http.MethodGet, PathProfile, nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile sends the changed fields. The caller merges the returned user
// into what it already holds.
func (s *AuthService) UpdateProfile(ctx context.Context, update users.ProfileUpdate) (*ProfileResponse, error) {
	var resp ProfileResponse
	if err := s.client.do(ctx, http.MethodPut, PathProfile, nil, update, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, change users.PasswordChange) (*MessageResponse, error) {
	var resp MessageResponse
	if err := s.client.do(ctx, http.MethodPost, PathChangePassword, nil, change, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RefreshToken calls the refresh endpoint explicitly. It goes through the
// normal request path and does not write to the token store.
func (s *AuthService) RefreshToken(ctx context.Context, refresh string) (*RefreshResponse, error) {
	if refresh == "" {
		return nil, ierrors.ErrNoRefreshToken
	}
	var resp RefreshResponse
	if err := s.client.do(ctx, http.MethodPost, PathTokenRefresh, nil, RefreshRequest{Refresh: refresh}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListUsers returns every account for admins and only the caller otherwise
func (s *AuthService) ListUsers(ctx context.Context) (*Page[users.User], error) {
	var page Page[users.User]
	if err := s.client.do(ctx, http.MethodGet, PathUsers, nil, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}
