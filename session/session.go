// Package session owns the client side login state: who is signed in and
// whether that is known yet. All transitions go through Manager methods.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/jrsteele09/go-course-portal/api"
	ierrors "github.com/jrsteele09/go-course-portal/internal/errors"
	"github.com/jrsteele09/go-course-portal/tokens"
	"github.com/jrsteele09/go-course-portal/users"
	"github.com/rs/zerolog/log"
)

// State is a snapshot of the session. IsAuthenticated is true exactly when
// User is set. While IsLoading the user is not known yet.
type State struct {
	User            *users.User
	IsAuthenticated bool
	IsLoading       bool
}

// Loading is the state before Restore has finished
var Loading = State{IsLoading: true}

// Manager is the single writer of the session state
type Manager struct {
	client *api.Client
	store  tokens.Store

	lock  sync.RWMutex
	state State

	observerLock sync.RWMutex
	observers    map[int]func(State)
	nextObserver int
}

type ManagerOption func(*Manager)

// WithObserver registers fn before the first transition
func WithObserver(fn func(State)) ManagerOption {
	return func(m *Manager) {
		m.addObserver(fn)
	}
}

// NewManager starts in the loading state and registers Expire as the
// client's session expired handler.
func NewManager(client *api.Client, opts ...ManagerOption) *Manager {
	m := &Manager{
		client:    client,
		store:     client.Store(),
		state:     Loading,
		observers: make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(m)
	}
	client.OnSessionExpired(m.Expire)
	return m
}

// State returns a copy of the current session
func (m *Manager) State() State {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return snapshot(m.state)
}

// User returns the signed in user, or an error while loading or signed out
func (m *Manager) User() (*users.User, error) {
	s := m.State()
	switch {
	case s.IsLoading:
		return nil, ierrors.ErrSessionLoading
	case !s.IsAuthenticated:
		return nil, ierrors.ErrNotAuthenticated
	}
	return s.User, nil
}

// Subscribe calls fn after every transition. The returned function removes it.
func (m *Manager) Subscribe(fn func(State)) func() {
	id := m.addObserver(fn)
	return func() {
		m.observerLock.Lock()
		defer m.observerLock.Unlock()
		delete(m.observers, id)
	}
}

func (m *Manager) addObserver(fn func(State)) int {
	m.observerLock.Lock()
	defer m.observerLock.Unlock()
	id := m.nextObserver
	m.nextObserver++
	m.observers[id] = fn
	return id
}

// Restore probes the stored tokens once at startup. Without an access token
// the session becomes signed out and no request is made. Otherwise the
// profile is fetched; any failure clears the tokens.
func (m *Manager) Restore(ctx context.Context) State {
	if !tokens.HasAccess(m.store) {
		return m.transition(State{})
	}

	u, err := m.client.Auth.Profile(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("Session restore failed")
		tokens.ClearPair(m.store)
		return m.transition(State{})
	}
	return m.transition(signedIn(u))
}

// Login exchanges credentials for a token pair. On failure the session and
// the stored tokens are left untouched.
func (m *Manager) Login(ctx context.Context, creds users.Credentials) (*users.User, error) {
	resp, err := m.client.Auth.Login(ctx, creds)
	if err != nil {
		return nil, failure(err, ierrors.ErrLoginFailed, false)
	}
	return m.signIn(resp), nil
}

// Register creates an account and signs it in. Field level rejections are
// returned as *api.Error with Fields set.
func (m *Manager) Register(ctx context.Context, reg users.Registration) (*users.User, error) {
	resp, err := m.client.Auth.Register(ctx, reg)
	if err != nil {
		return nil, failure(err, ierrors.ErrRegistrationFailed, true)
	}
	return m.signIn(resp), nil
}

func (m *Manager) signIn(resp *api.AuthResponse) *users.User {
	tokens.SavePair(m.store, resp.Pair())
	u := resp.User
	if u == nil {
		u = &users.User{}
	}
	m.transition(signedIn(u))
	return snapshotUser(u)
}

// Logout tells the backend to invalidate the refresh token when there is one.
// Whatever the backend says, local tokens and state are cleared.
func (m *Manager) Logout(ctx context.Context) {
	if refresh, ok := m.store.Get(tokens.RefreshTokenKey); ok && refresh != "" {
		if err := m.client.Auth.Logout(ctx, refresh); err != nil {
			log.Warn().Err(err).Msg("Logout request failed")
		}
	}
	tokens.ClearPair(m.store)
	m.transition(State{})
}

// Expire is the transition after an unrecoverable refresh failure
func (m *Manager) Expire() {
	tokens.ClearPair(m.store)
	m.transition(State{})
}

// UpdateProfile saves the changed fields and merges the backend's answer into
// the current user.
func (m *Manager) UpdateProfile(ctx context.Context, update users.ProfileUpdate) (*users.User, error) {
	resp, err := m.client.Auth.UpdateProfile(ctx, update)
	if err != nil {
		return nil, failure(err, ierrors.ErrProfileUpdateFailed, true)
	}

	m.lock.Lock()
	var current users.User
	if m.state.User != nil {
		current = *m.state.User
	}
	merged, err := resp.MergeInto(current)
	if err != nil {
		m.lock.Unlock()
		return nil, fmt.Errorf("%w (%w)", ierrors.ErrProfileUpdateFailed, err)
	}
	m.state = signedIn(&merged)
	s := snapshot(m.state)
	m.lock.Unlock()

	m.notify(s)
	return snapshotUser(&merged), nil
}

// ChangePassword checks the confirmation locally before calling the backend.
// The session itself does not change.
func (m *Manager) ChangePassword(ctx context.Context, change users.PasswordChange) error {
	if err := change.Validate(); err != nil {
		return err
	}
	_, err := m.client.Auth.ChangePassword(ctx, change)
	return err
}

func (m *Manager) transition(next State) State {
	m.lock.Lock()
	m.state = next
	s := snapshot(m.state)
	m.lock.Unlock()

	m.notify(s)
	return s
}

func (m *Manager) notify(s State) {
	m.observerLock.RLock()
	observers := make([]func(State), 0, len(m.observers))
	for _, fn := range m.observers {
		observers = append(observers, fn)
	}
	m.observerLock.RUnlock()

	for _, fn := range observers {
		fn(snapshot(s))
	}
}

// failure keeps backend errors that carry a message (or field errors when
// keepFields is set) and replaces anything else with the fallback.
func failure(err, fallback error, keepFields bool) error {
	if apiErr, ok := api.AsError(err); ok {
		if apiErr.Message != "" || (keepFields && len(apiErr.Fields) > 0) {
			return apiErr
		}
	}
	if ierrors.Is(err, ierrors.ErrSessionExpired) {
		return err
	}
	return fmt.Errorf("%w (%w)", fallback, err)
}

func signedIn(u *users.User) State {
	return State{User: snapshotUser(u), IsAuthenticated: u != nil}
}

func snapshot(s State) State {
	s.User = snapshotUser(s.User)
	return s
}

func snapshotUser(u *users.User) *users.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
