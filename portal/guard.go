package portal

import "github.com/jrsteele09/go-course-portal/session"

// Status is the three way outcome of checking a session before a protected page
type Status string

const (
	StatusLoading         Status = "LOADING"
	StatusAuthenticated   Status = "AUTHENTICATED"
	StatusUnauthenticated Status = "UNAUTHENTICATED"
)

// Decision tells the caller what to do with a protected page.
// Redirect is only set for StatusUnauthenticated.
type Decision struct {
	Status   Status
	Redirect string
}

// Render reports whether the protected content may be shown
func (d Decision) Render() bool {
	return d.Status == StatusAuthenticated
}

// Guard gates protected pages on the session state
type Guard struct {
	loginRoute string
}

type GuardOption func(*Guard)

// WithLoginRoute overrides where unauthenticated visitors are sent
func WithLoginRoute(route string) GuardOption {
	return func(g *Guard) {
		g.loginRoute = route
	}
}

func NewGuard(opts ...GuardOption) *Guard {
	g := &Guard{loginRoute: RouteLogin}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Evaluate renders nothing while loading, redirects to login when signed
// out and renders otherwise. It never looks at the role.
func (g *Guard) Evaluate(s session.State) Decision {
	switch {
	case s.IsLoading:
		return Decision{Status: StatusLoading}
	case !s.IsAuthenticated || s.User == nil:
		return Decision{Status: StatusUnauthenticated, Redirect: g.loginRoute}
	default:
		return Decision{Status: StatusAuthenticated}
	}
}
