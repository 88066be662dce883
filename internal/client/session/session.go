// Package session holds the process-wide authentication state.
//
// A Session is the single writer of the credential store. It is hydrated
// once from the store at startup, replaced wholesale on login and cleared
// wholesale on logout or when the server reports the token as no longer
// valid. Readers get immutable Snapshots, either on demand or pushed to
// subscribers whenever the logged-in flag or the user changes.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/vmsclient/internal/client/client"
	"github.com/dmitrijs2005/vmsclient/internal/client/models"
	"github.com/dmitrijs2005/vmsclient/internal/client/routes"
	"github.com/dmitrijs2005/vmsclient/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

// Store is the credential persistence the session writes through.
type Store interface {
	GetToken(ctx context.Context) string
	GetUser(ctx context.Context) *models.UserProfile
	Save(ctx context.Context, token string, u *models.UserProfile) bool
	Clear(ctx context.Context)
}

// Authenticator is the remote side of login and registration.
type Authenticator interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (string, error)
}

// Navigator moves the application to another location.
type Navigator interface {
	Navigate(ctx context.Context, target string) (string, error)
}

type Option func(*Session)

func WithLogger(l logging.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithClock overrides the clock used to check token expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

type Session struct {
	store Store
	auth  Authenticator
	nav   Navigator
	log   logging.Logger
	now   func() time.Time

	// mutMu serializes mutations together with the delivery of their
	// notifications, so subscribers observe changes in mutation order.
	mutMu sync.Mutex

	mu    sync.RWMutex
	token string
	user  *models.UserProfile

	subsMu sync.Mutex
	subs   map[int]func(Snapshot)
	nextID int
}

// New returns a logged-out session. Call Restore to hydrate it from the
// store. nav may be set later with SetNavigator when the router is built
// on top of the session.
func New(store Store, auth Authenticator, nav Navigator, opts ...Option) *Session {
	s := &Session{
		store: store,
		auth:  auth,
		nav:   nav,
		log:   logging.Discard(),
		now:   time.Now,
		subs:  make(map[int]func(Snapshot)),
	}
	for _, o := range opts {
		o(s)
	}
	s.log = s.log.With("component", "session")
	return s
}

// SetNavigator wires the navigator after construction. The router guards
// read the session, so the two are built in that order.
func (s *Session) SetNavigator(nav Navigator) {
	s.mutMu.Lock()
	defer s.mutMu.Unlock()
	s.nav = nav
}

// Restore hydrates the session from the store. A partial record (token
// without profile or the reverse) and an expired JWT are treated as
// logged out and the store is cleared.
func (s *Session) Restore(ctx context.Context) Snapshot {
	s.mutMu.Lock()
	defer s.mutMu.Unlock()

	token := s.store.GetToken(ctx)
	user := s.store.GetUser(ctx)

	switch {
	case token == "" && user == nil:
		s.log.Debug(ctx, "no stored credentials")
	case token == "" || user == nil:
		s.log.Warn(ctx, "partial credential record, clearing", "has_token", token != "", "has_user", user != nil)
		s.store.Clear(ctx)
		token, user = "", nil
	case tokenExpired(token, s.now()):
		s.log.Info(ctx, "stored token expired, clearing", "user", user.Username)
		s.store.Clear(ctx)
		token, user = "", nil
	default:
		s.log.Info(ctx, "session restored", "user", user.Username)
	}

	return s.apply(token, user)
}

// Login authenticates against the server. On success both the token and
// the profile are persisted and the session becomes logged in. Any failure
// tears the session down; the error is ErrInvalidCredentials when the
// server answered 401 and wraps ErrLoginFailed otherwise.
func (s *Session) Login(ctx context.Context, req models.LoginRequest) (*models.UserProfile, error) {
	if err := req.Validate(); err != nil {
		s.teardown(ctx)
		return nil, fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	resp, err := s.auth.Login(ctx, req)
	if err != nil {
		s.teardown(ctx)
		if errors.Is(err, client.ErrUnauthorized) {
			s.log.Info(ctx, "login rejected", "username", req.UsernameOrEmail)
			return nil, ErrInvalidCredentials
		}
		s.log.Warn(ctx, "login request failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}
	if resp == nil {
		s.teardown(ctx)
		return nil, fmt.Errorf("%w: %w", ErrLoginFailed, ErrInvalidResponse)
	}
	if err := resp.Validate(); err != nil {
		s.teardown(ctx)
		s.log.Warn(ctx, "login response rejected", "error", err)
		return nil, fmt.Errorf("%w: %w: %w", ErrLoginFailed, ErrInvalidResponse, err)
	}

	s.mutMu.Lock()
	defer s.mutMu.Unlock()

	if !s.store.Save(ctx, resp.AccessToken, resp.User) {
		s.store.Clear(ctx)
		s.apply("", nil)
		s.log.Warn(ctx, "credentials not persisted, login aborted", "username", req.UsernameOrEmail)
		return nil, fmt.Errorf("%w: %w", ErrLoginFailed, ErrNotPersisted)
	}
	snap := s.apply(resp.AccessToken, resp.User)
	s.log.Info(ctx, "logged in", "user", resp.User.Username, "role", string(snap.PrimaryRole()))
	return snap.User(), nil
}

// Register creates an account. It does not sign the user in.
func (s *Session) Register(ctx context.Context, req models.RegisterRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("invalid registration: %w", err)
	}
	msg, err := s.auth.Register(ctx, req)
	if err != nil {
		return "", fmt.Errorf("registration failed: %w", err)
	}
	return msg, nil
}

// Logout clears the credentials and navigates to the login page. A second
// call has no further effect: when the user is already logged out and the
// navigator reports the login page, no navigation happens.
func (s *Session) Logout(ctx context.Context) {
	s.mutMu.Lock()
	s.store.Clear(ctx)
	prev := s.Snapshot()
	s.apply("", nil)
	nav := s.nav
	s.mutMu.Unlock()

	if prev.IsLoggedIn() {
		s.log.Info(ctx, "logged out", "user", prev.Username())
	} else if atLogin(nav) {
		return
	}
	s.navigate(ctx, nav, routes.Login)
}

// atLogin reports whether nav knows its location and it is the login page.
func atLogin(nav Navigator) bool {
	l, ok := nav.(interface{ CurrentURL() string })
	return ok && routes.IsLogin(l.CurrentURL())
}

// Expire tears the session down after the server rejected the token. It
// navigates to the login page, with returnURL as the return target, only
// when the session actually went from logged in to logged out, and reports
// whether it did.
func (s *Session) Expire(ctx context.Context, returnURL string) bool {
	s.mutMu.Lock()
	s.store.Clear(ctx)
	prev := s.Snapshot()
	s.apply("", nil)
	nav := s.nav
	s.mutMu.Unlock()

	if !prev.IsLoggedIn() {
		return false
	}
	s.log.Warn(ctx, "session expired", "user", prev.Username(), "return_url", returnURL)
	s.navigate(ctx, nav, routes.LoginWithReturn(returnURL))
	return true
}

// Subscribe registers fn and calls it at once with the current snapshot,
// then on every change of the logged-in flag or the user. fn runs while
// the session serializes mutations and must not call Login, Logout or
// Expire itself.
func (s *Session) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mutMu.Lock()
	defer s.mutMu.Unlock()

	s.subsMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subsMu.Unlock()

	fn(s.Snapshot())

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, id)
			s.subsMu.Unlock()
		})
	}
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newSnapshot(s.token, s.user)
}

// Token returns the bearer token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) IsLoggedIn() bool { return s.Snapshot().IsLoggedIn() }
func (s *Session) CurrentUser() *models.UserProfile { return s.Snapshot().User() }
func (s *Session) IsAdmin() bool { return s.Snapshot().IsAdmin() }
func (s *Session) IsOrganizer() bool { return s.Snapshot().IsOrganizer() }
func (s *Session) IsVolunteer() bool { return s.Snapshot().IsVolunteer() }
func (s *Session) HasAnyRole(roles ...string) bool { return s.Snapshot().HasAnyRole(roles...) }
func (s *Session) PrimaryRole() models.PrimaryRole { return s.Snapshot().PrimaryRole() }
func (s *Session) DisplayName() string { return s.Snapshot().DisplayName() }
func (s *Session) VolunteerID() (int64, bool) { return s.Snapshot().VolunteerID() }

// teardown clears the store and the in-memory state without navigating.
func (s *Session) teardown(ctx context.Context) {
	s.mutMu.Lock()
	defer s.mutMu.Unlock()
	s.store.Clear(ctx)
	s.apply("", nil)
}

// apply replaces the in-memory state and notifies subscribers when the
// visible state changed. The caller holds mutMu.
func (s *Session) apply(token string, user *models.UserProfile) Snapshot {
	if token == "" || user == nil {
		token, user = "", nil
	}

	s.mu.Lock()
	prev := newSnapshot(s.token, s.user)
	s.token = token
	s.user = user.Clone()
	next := newSnapshot(s.token, s.user)
	s.mu.Unlock()

	if !prev.Equal(next) {
		s.notify(next)
	}
	return next
}

func (s *Session) notify(snap Snapshot) {
	s.subsMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subsMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (s *Session) navigate(ctx context.Context, nav Navigator, target string) {
	if nav == nil {
		return
	}
	if _, err := nav.Navigate(ctx, target); err != nil {
		s.log.Warn(ctx, "navigation failed", "target", target, "error", err)
	}
}

// tokenExpired reports whether token is a JWT whose exp claim has passed.
// The signature is not checked: the server remains the authority, this
// only avoids restoring a session that is certain to be rejected. Opaque
// tokens are never considered expired.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}
