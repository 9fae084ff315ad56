// Package apifake is an in-memory stand-in for the course portal REST backend.
// It issues real signed JWT pairs, enforces bearer authentication and records
// the requests it receives so client behaviour can be asserted in tests.
package apifake

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jrsteele09/go-course-portal/courses"
	"github.com/jrsteele09/go-course-portal/students"
	"github.com/jrsteele09/go-course-portal/users"
	"golang.org/x/crypto/bcrypt"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Demo accounts seeded into every backend
const (
	StudentUsername = "john_doe"
	StudentPassword = "student123"
	AdminUsername   = "admin"
	AdminPassword   = "admin123"
)

// RecordedRequest is one request as seen by the backend
type RecordedRequest struct {
	Method        string
	Path          string
	Authorization string
}

type account struct {
	user         users.User
	passwordHash []byte
}

type Backend struct {
	lock sync.RWMutex

	accounts   map[int]*account
	usernames  map[string]int
	nextUserID int

	courses     map[uuid.UUID]*courses.Course
	students    map[uuid.UUID]*studentRecord
	enrollments []*students.Enrollment
	studentSeq  int

	secret        []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	generation    int
	blacklist     map[string]bool
	failRefresh   bool
	rotateRefresh bool
	refreshCalls  int
	refreshDelay  time.Duration
	requests      []RecordedRequest

	router *mux.Router
}

type Option func(*Backend)

// WithAccessTTL sets the lifetime of issued access tokens
func WithAccessTTL(d time.Duration) Option {
	return func(b *Backend) {
		b.accessTTL = d
	}
}

// WithRefreshRotation makes the refresh endpoint return a new refresh token as well
func WithRefreshRotation() Option {
	return func(b *Backend) {
		b.rotateRefresh = true
	}
}

// WithRefreshDelay slows the refresh endpoint down so concurrent callers overlap
func WithRefreshDelay(d time.Duration) Option {
	return func(b *Backend) {
		b.refreshDelay = d
	}
}

func New(opts ...Option) *Backend {
	b := &Backend{
		accounts:   make(map[int]*account),
		usernames:  make(map[string]int),
		nextUserID: 1,
		courses:    make(map[uuid.UUID]*courses.Course),
		students:   make(map[uuid.UUID]*studentRecord),
		secret:     []byte(uuid.NewString()),
		accessTTL:  5 * time.Minute,
		refreshTTL: 24 * time.Hour,
		blacklist:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(b)
	}

	b.AddUser(users.User{Username: AdminUsername, Email: "admin@example.com", FirstName: "Site", LastName: "Admin", Role: users.RoleAdmin}, AdminPassword)
	john := b.AddUser(users.User{Username: StudentUsername, Email: "john@example.com", FirstName: "John", LastName: "Doe", Role: users.RoleStudent}, StudentPassword)
	b.lock.Lock()
	b.addStudentRecord(john.ID)
	b.lock.Unlock()

	b.router = b.routes()
	return b
}

func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.router.ServeHTTP(w, r)
}

// Server starts an httptest server for the backend. The caller closes it.
func (b *Backend) Server() *httptest.Server {
	return httptest.NewServer(b)
}

// AddUser creates an account. Role defaults to student.
func (b *Backend) AddUser(u users.User, password string) users.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(fmt.Sprintf("hash password: %v", err))
	}

	b.lock.Lock()
	defer b.lock.Unlock()
	return b.insertUser(u, hash)
}

// insertUser must be called with the lock held
func (b *Backend) insertUser(u users.User, hash []byte) users.User {
	if u.Role == "" {
		u.Role = users.RoleStudent
	}
	u.ID = b.nextUserID
	b.nextUserID++
	u.FullName = fullName(u.FirstName, u.LastName)
	u.DateJoined = NowTimeFunc().UTC()

	b.accounts[u.ID] = &account{user: u, passwordHash: hash}
	b.usernames[u.Username] = u.ID
	return u
}

// AddCourse stores a course as if an admin had created it
func (b *Backend) AddCourse(in courses.Input) courses.Course {
	b.lock.Lock()
	defer b.lock.Unlock()
	return *b.createCourse(in.Normalize())
}

// User returns the stored account by username
func (b *Backend) User(username string) (users.User, bool) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	id, ok := b.usernames[username]
	if !ok {
		return users.User{}, false
	}
	return b.accounts[id].user, true
}

// StudentFor returns the student record of a user account
func (b *Backend) StudentFor(username string) (students.Student, bool) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	id, ok := b.usernames[username]
	if !ok {
		return students.Student{}, false
	}
	s := b.studentByUser(id)
	if s == nil {
		return students.Student{}, false
	}
	return b.studentView(s), true
}

// ExpireAccessTokens invalidates every access token issued so far.
// Refresh tokens stay valid.
func (b *Backend) ExpireAccessTokens() {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.generation++
}

// FailRefresh makes the refresh endpoint reject every token
func (b *Backend) FailRefresh(fail bool) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.failRefresh = fail
}

// RefreshCalls counts requests to the refresh endpoint
func (b *Backend) RefreshCalls() int {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return b.refreshCalls
}

// Requests returns every recorded request in arrival order
func (b *Backend) Requests() []RecordedRequest {
	b.lock.RLock()
	defer b.lock.RUnlock()
	out := make([]RecordedRequest, len(b.requests))
	copy(out, b.requests)
	return out
}

// RequestsTo returns the recorded requests for one method and path
func (b *Backend) RequestsTo(method, path string) []RecordedRequest {
	out := []RecordedRequest{}
	for _, r := range b.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// IsBlacklisted reports whether a refresh token was revoked by logout
func (b *Backend) IsBlacklisted(refresh string) bool {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return b.blacklist[refresh]
}

func (b *Backend) record(r *http.Request) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.requests = append(b.requests, RecordedRequest{
		Method:        r.Method,
		Path:          r.URL.Path,
		Authorization: r.Header.Get("Authorization"),
	})
}

func fullName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}
