package auth

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phishguard/awareness-service/internal/models"
)

// fakeAuthService drives guards by hand: GetSession returns a fixed
// session and Fire pushes subscription callbacks.
type fakeAuthService struct {
	mu       sync.Mutex
	session  *Session
	nextID   int
	handlers map[int]func(ChangeEvent, *Session)
}

func newFakeAuthService(session *Session) *fakeAuthService {
	return &fakeAuthService{
		session:  session,
		handlers: map[int]func(ChangeEvent, *Session){},
	}
}

func (f *fakeAuthService) SignInWithPassword(context.Context, string, string) (*Session, error) {
	return nil, nil
}

func (f *fakeAuthService) SignOut(context.Context, string) error { return nil }

func (f *fakeAuthService) GetSession(context.Context, string) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session, nil
}

func (f *fakeAuthService) RefreshSession(context.Context, string) (*Session, error) {
	return nil, nil
}

func (f *fakeAuthService) OnAuthStateChange(handler func(ChangeEvent, *Session)) *Subscription {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.handlers[id] = handler
	f.mu.Unlock()
	return &Subscription{unsubscribe: func() {
		f.mu.Lock()
		delete(f.handlers, id)
		f.mu.Unlock()
	}}
}

func (f *fakeAuthService) Fire(event ChangeEvent, session *Session) {
	f.mu.Lock()
	handlers := make([]func(ChangeEvent, *Session), 0, len(f.handlers))
	for _, h := range f.handlers {
		handlers = append(handlers, h)
	}
	f.mu.Unlock()
	for _, h := range handlers {
		h(event, session)
	}
}

func (f *fakeAuthService) SubscriberCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.handlers)
}

func adminSession() *Session {
	return &Session{Token: "t", UserID: "u1", Role: models.RoleAdmin}
}

func employeeSession() *Session {
	return &Session{Token: "t", UserID: "u2", Role: models.RoleEmployee}
}

func TestGuard_CheckingRendersNothing(t *testing.T) {
	svc := newFakeAuthService(nil)
	g := NewGuard(svc)
	defer g.Close()

	require.Equal(t, StateChecking, g.State())
	assert.Equal(t, DecisionDefer, g.Decide(RegionProtected))
	assert.Equal(t, DecisionDefer, g.Decide(RegionAdmin))
}

func TestGuard_AnonymousRedirectsToLogin(t *testing.T) {
	svc := newFakeAuthService(nil)
	g := NewGuard(svc)
	defer g.Close()

	g.Start(context.Background(), svc, "")

	assert.Equal(t, StateAnonymous, g.State())
	assert.Equal(t, DecisionRedirectLogin, g.Decide(RegionProtected))
	assert.Equal(t, DecisionRedirectLogin, g.Decide(RegionAdmin))
}

func TestGuard_NonAdminOnAdminRegionGoesHome(t *testing.T) {
	svc := newFakeAuthService(employeeSession())
	g := NewGuard(svc)
	defer g.Close()

	g.Start(context.Background(), svc, "t")

	require.Equal(t, StateAuthenticated, g.State())
	assert.Equal(t, DecisionRender, g.Decide(RegionProtected))
	// Signed-in users are pointed at the dashboard, never back to login.
	assert.Equal(t, DecisionRedirectHome, g.Decide(RegionAdmin))
}

func TestGuard_AdminRendersEverything(t *testing.T) {
	svc := newFakeAuthService(adminSession())
	g := NewGuard(svc)
	defer g.Close()

	g.Start(context.Background(), svc, "t")

	require.Equal(t, StateAuthenticatedAdmin, g.State())
	assert.Equal(t, DecisionRender, g.Decide(RegionProtected))
	assert.Equal(t, DecisionRender, g.Decide(RegionAdmin))
}

func TestGuard_FollowsAuthStateChanges(t *testing.T) {
	svc := newFakeAuthService(nil)
	g := NewGuard(svc)
	defer g.Close()

	g.Start(context.Background(), svc, "")
	require.Equal(t, StateAnonymous, g.State())

	svc.Fire(EventSignedIn, adminSession())
	assert.Equal(t, StateAuthenticatedAdmin, g.State())

	svc.Fire(EventSignedOut, nil)
	assert.Equal(t, StateAnonymous, g.State())

	// Refresh keeps the resolved state, it never re-enters checking.
	svc.Fire(EventTokenRefreshed, employeeSession())
	assert.Equal(t, StateAuthenticated, g.State())
}

func TestGuard_CloseStopsCallbacks(t *testing.T) {
	svc := newFakeAuthService(nil)
	g := NewGuard(svc)
	g.Start(context.Background(), svc, "")

	g.Close()
	assert.Equal(t, 0, svc.SubscriberCount())

	state := g.State()
	g.Resolve(adminSession()) // late callback after teardown
	assert.Equal(t, state, g.State())
}

func TestGuard_RaceBetweenFetchAndSubscriptionConverges(t *testing.T) {
	svc := newFakeAuthService(adminSession())
	g := NewGuard(svc)
	defer g.Close()

	// Both paths deliver the same external truth in arbitrary order.
	svc.Fire(EventSignedIn, adminSession())
	g.Start(context.Background(), svc, "t")

	assert.Equal(t, StateAuthenticatedAdmin, g.State())
}
