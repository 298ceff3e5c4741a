package auth

import (
	"context"
	"sync"
)

// GuardState is the resolved authentication state a Guard acts on.
type GuardState string

const (
	// StateChecking is the initial state before the first resolution.
	// It is never re-entered once left.
	StateChecking           GuardState = "checking"
	StateAnonymous          GuardState = "anonymous"
	StateAuthenticated      GuardState = "authenticated-non-admin"
	StateAuthenticatedAdmin GuardState = "authenticated-admin"
)

// Region classifies what a caller is trying to reach.
type Region int

const (
	// RegionProtected requires any signed-in user.
	RegionProtected Region = iota
	// RegionAdmin additionally requires the admin role.
	RegionAdmin
)

// Decision is the guard's verdict for a region.
type Decision int

const (
	// DecisionDefer: state not yet resolved, render neither content nor
	// a redirect.
	DecisionDefer Decision = iota
	// DecisionRender: the caller may see the region.
	DecisionRender
	// DecisionRedirectLogin: anonymous caller, send to the login view.
	DecisionRedirectLogin
	// DecisionRedirectHome: signed in but not allowed here, send to the
	// default authenticated view rather than login.
	DecisionRedirectHome
)

// Guard tracks one client's authentication state and gates region access.
// It resolves once from the initial session fetch and then follows the
// auth service's change subscription for its whole lifetime. The fetch
// and the subscription may race; last write wins since both converge on
// the same external truth.
type Guard struct {
	mu     sync.Mutex
	state  GuardState
	sub    *Subscription
	closed bool
}

// NewGuard creates a guard in the checking state, subscribed to svc's
// auth-state changes. Call Close when the owning scope goes away.
func NewGuard(svc Service) *Guard {
	g := &Guard{state: StateChecking}
	g.sub = svc.OnAuthStateChange(func(_ ChangeEvent, session *Session) {
		g.Resolve(session)
	})
	return g
}

// Start performs the initial one-shot session resolution.
func (g *Guard) Start(ctx context.Context, svc Service, token string) {
	session, err := svc.GetSession(ctx, token)
	if err != nil {
		// Treat a failed check like no session; the subscription will
		// correct the state on the next change.
		session = nil
	}
	g.Resolve(session)
}

// Resolve applies a freshly observed session to the guard's state.
// Callbacks arriving after Close are dropped.
func (g *Guard) Resolve(session *Session) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	switch {
	case session == nil:
		g.state = StateAnonymous
	case session.IsAdmin():
		g.state = StateAuthenticatedAdmin
	default:
		g.state = StateAuthenticated
	}
}

// State returns the current guard state.
func (g *Guard) State() GuardState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Decide returns the verdict for reaching region in the current state.
func (g *Guard) Decide(region Region) Decision {
	g.mu.Lock()
	state := g.state
	g.mu.Unlock()

	switch state {
	case StateChecking:
		return DecisionDefer
	case StateAnonymous:
		return DecisionRedirectLogin
	case StateAuthenticatedAdmin:
		return DecisionRender
	case StateAuthenticated:
		if region == RegionAdmin {
			return DecisionRedirectHome
		}
		return DecisionRender
	}
	return DecisionRedirectLogin
}

// Close tears down the subscription and freezes the guard. Any callback
// already in flight becomes a no-op.
func (g *Guard) Close() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
	if g.sub != nil {
		g.sub.Unsubscribe()
	}
}
