package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/vmsclient/internal/client/client"
	"github.com/dmitrijs2005/vmsclient/internal/client/credentials"
	"github.com/dmitrijs2005/vmsclient/internal/client/models"
	"github.com/dmitrijs2005/vmsclient/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/vmsclient/internal/logging"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fakes ----

type fakeAuth struct {
	resp  *models.LoginResponse
	err   error
	calls int

	registerMsg string
	registerErr error
}

func (f *fakeAuth) Login(_ context.Context, _ models.LoginRequest) (*models.LoginResponse, error) {
	f.calls++
	return f.resp, f.err
}

func (f *fakeAuth) Register(_ context.Context, _ models.RegisterRequest) (string, error) {
	return f.registerMsg, f.registerErr
}

type fakeNav struct {
	mu      sync.Mutex
	targets []string
}

func (f *fakeNav) Navigate(_ context.Context, target string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.targets = append(f.targets, target)
	return target, nil
}

func (f *fakeNav) CurrentURL() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.targets) == 0 {
		return ""
	}
	return f.targets[len(f.targets)-1]
}

func (f *fakeNav) Targets() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.targets...)
}

// ---- helpers ----

type fixture struct {
	repo  *metadata.MemoryRepository
	store *credentials.Store
	auth  *fakeAuth
	nav   *fakeNav
	s     *Session
}

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo: metadata.NewMemoryRepository(),
		auth: &fakeAuth{},
		nav:  &fakeNav{},
	}
	f.store = credentials.NewStore(f.repo, logging.Discard())
	f.s = New(f.store, f.auth, f.nav, WithClock(func() time.Time { return now }))
	return f
}

func profile(roles ...string) *models.UserProfile {
	if roles == nil {
		roles = []string{}
	}
	return &models.UserProfile{ID: 42, Username: "ann", Email: "ann@example.com", Roles: roles}
}

func jwtToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "ann",
		"exp": exp.Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	return tok
}

func (f *fixture) loggedIn(t *testing.T, roles ...string) {
	t.Helper()
	f.auth.resp = &models.LoginResponse{AccessToken: "tok", User: profile(roles...)}
	_, err := f.s.Login(context.Background(), models.LoginRequest{UsernameOrEmail: "ann", Password: "pw"})
	require.NoError(t, err)
	require.True(t, f.s.IsLoggedIn())
}

func (f *fixture) storeIsEmpty(t *testing.T) {
	t.Helper()
	all, err := f.repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

// ---- hydration ----

func TestRestore(t *testing.T) {
	tests := []struct {
		name      string
		token     func(t *testing.T) string
		user      *models.UserProfile
		wantState State
	}{
		{"nothing stored", func(*testing.T) string { return "" }, nil, LoggedOut},
		{"opaque token and user", func(*testing.T) string { return "opaque" }, profile(models.RoleVolunteer), LoggedIn},
		{"token only", func(*testing.T) string { return "opaque" }, nil, LoggedOut},
		{"user only", func(*testing.T) string { return "" }, profile(models.RoleAdmin), LoggedOut},
		{"valid jwt", func(t *testing.T) string { return jwtToken(t, now.Add(time.Hour)) }, profile(models.RoleAdmin), LoggedIn},
		{"expired jwt", func(t *testing.T) string { return jwtToken(t, now.Add(-time.Minute)) }, profile(models.RoleAdmin), LoggedOut},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)
			if tok := tt.token(t); tok != "" {
				f.store.SaveToken(ctx, tok)
			}
			if tt.user != nil {
				f.store.SaveUser(ctx, tt.user)
			}

			snap := f.s.Restore(ctx)

			assert.Equal(t, tt.wantState, snap.State())
			assert.Equal(t, tt.wantState == LoggedIn, f.s.IsLoggedIn())
			if tt.wantState == LoggedOut {
				f.storeIsEmpty(t)
				assert.Nil(t, f.s.CurrentUser())
				assert.Equal(t, "", f.s.Token())
			} else {
				assert.Equal(t, tt.user, f.s.CurrentUser())
			}
			assert.Empty(t, f.nav.Targets(), "hydration never navigates")
		})
	}
}

func TestRestore_CorruptedUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.repo.SetMany(ctx, map[string][]byte{
		credentials.TokenKey: []byte("tok"),
		credentials.UserKey:  []byte(`{"id":1,"username":"ann"}`),
	}))

	snap := f.s.Restore(ctx)

	assert.False(t, snap.IsLoggedIn())
	f.storeIsEmpty(t)
}

// ---- login ----

func TestLogin_Success(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	var got []Snapshot
	f.s.Subscribe(func(s Snapshot) { got = append(got, s) })

	f.auth.resp = &models.LoginResponse{AccessToken: "tok", TokenType: "Bearer", User: profile(models.RoleOrganizer)}
	u, err := f.s.Login(ctx, models.LoginRequest{UsernameOrEmail: "ann", Password: "pw"})

	require.NoError(t, err)
	if diff := cmp.Diff(profile(models.RoleOrganizer), u); diff != "" {
		t.Fatalf("user mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "tok", f.s.Token())
	assert.Equal(t, "tok", f.store.GetToken(ctx))
	assert.Equal(t, profile(models.RoleOrganizer), f.store.GetUser(ctx))
	assert.True(t, f.s.IsOrganizer())
	assert.False(t, f.s.IsAdmin())

	require.Len(t, got, 2, "initial snapshot plus the login")
	assert.False(t, got[0].IsLoggedIn())
	assert.True(t, got[1].IsLoggedIn())
	assert.Empty(t, f.nav.Targets(), "login does not navigate by itself")
}

func TestLogin_InvalidCredentials(t *testing.T) {
	f := newFixture(t)
	f.loggedIn(t, models.RoleAdmin)

	f.auth.resp = nil
	f.auth.err = &client.StatusError{Code: 401}
	_, err := f.s.Login(context.Background(), models.LoginRequest{UsernameOrEmail: "ann", Password: "bad"})

	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, "Invalid username or password.", Message(err))
	assert.False(t, f.s.IsLoggedIn())
	f.storeIsEmpty(t)
}

func TestLogin_TransportFailure(t *testing.T) {
	f := newFixture(t)
	f.auth.err = errors.Join(client.ErrUnavailable, errors.New("connection refused"))

	_, err := f.s.Login(context.Background(), models.LoginRequest{UsernameOrEmail: "ann", Password: "pw"})

	require.ErrorIs(t, err, ErrLoginFailed)
	require.ErrorIs(t, err, client.ErrUnavailable)
	assert.Equal(t, "Login failed.", Message(err))
	assert.False(t, f.s.IsLoggedIn())
}

func TestLogin_MalformedResponseTearsDown(t *testing.T) {
	tests := map[string]*models.LoginResponse{
		"nil response":  nil,
		"blank token":   {AccessToken: "  ", User: profile(models.RoleAdmin)},
		"missing user":  {AccessToken: "tok"},
		"missing roles": {AccessToken: "tok", User: &models.UserProfile{ID: 1, Username: "ann"}},
		"zero id":       {AccessToken: "tok", User: &models.UserProfile{Username: "ann", Roles: []string{}}},
	}
	for name, resp := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			f.loggedIn(t, models.RoleVolunteer)

			f.auth.resp = resp
			_, err := f.s.Login(context.Background(), models.LoginRequest{UsernameOrEmail: "ann", Password: "pw"})

			require.ErrorIs(t, err, ErrLoginFailed)
			require.ErrorIs(t, err, ErrInvalidResponse)
			assert.Equal(t, "Login failed.", Message(err))
			assert.False(t, f.s.IsLoggedIn(), "no partial identity after a bad response")
			f.storeIsEmpty(t)
		})
	}
}

// unsavableStore refuses to persist, as a full or read-only disk would.
type unsavableStore struct{ *credentials.Store }

func (unsavableStore) Save(context.Context, string, *models.UserProfile) bool { return false }

func TestLogin_UnpersistedCredentialsTearDown(t *testing.T) {
	repo := metadata.NewMemoryRepository()
	store := credentials.NewStore(repo, logging.Discard())
	auth := &fakeAuth{resp: &models.LoginResponse{AccessToken: "tok", User: profile(models.RoleVolunteer)}}
	s := New(unsavableStore{store}, auth, nil)
	var states []State
	s.Subscribe(func(snap Snapshot) { states = append(states, snap.State()) })

	_, err := s.Login(context.Background(), models.LoginRequest{UsernameOrEmail: "ann", Password: "pw"})

	require.ErrorIs(t, err, ErrLoginFailed)
	require.ErrorIs(t, err, ErrNotPersisted)
	assert.Equal(t, "Login failed.", Message(err))
	assert.False(t, s.IsLoggedIn())
	assert.Empty(t, s.Token())
	assert.Equal(t, []State{LoggedOut}, states, "never observed as logged in")
	all, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestLogin_InvalidRequestSkipsServer(t *testing.T) {
	f := newFixture(t)

	_, err := f.s.Login(context.Background(), models.LoginRequest{UsernameOrEmail: "ann"})

	require.ErrorIs(t, err, ErrLoginFailed)
	assert.Equal(t, 0, f.auth.calls)
}

func TestLogin_EmptyRolesIsLoggedInWithoutRoleFlags(t *testing.T) {
	f := newFixture(t)
	f.loggedIn(t)

	assert.True(t, f.s.IsLoggedIn())
	assert.False(t, f.s.IsAdmin())
	assert.False(t, f.s.IsOrganizer())
	assert.False(t, f.s.IsVolunteer())
	assert.Equal(t, models.PrimaryRoleNone, f.s.PrimaryRole())
}

// ---- register ----

func TestRegister(t *testing.T) {
	f := newFixture(t)
	f.auth.registerMsg = "User registered successfully!"

	msg, err := f.s.Register(context.Background(), models.RegisterRequest{
		Name: "Ann Lee", Username: "ann", Email: "ann@example.com", RoleName: models.RoleVolunteer, Password: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, "User registered successfully!", msg)
	assert.False(t, f.s.IsLoggedIn())

	_, err = f.s.Register(context.Background(), models.RegisterRequest{Username: "a"})
	assert.ErrorContains(t, err, "invalid registration")
}

// ---- logout / expire ----

func TestLogout_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.loggedIn(t, models.RoleAdmin)
	notified := 0
	f.s.Subscribe(func(Snapshot) { notified++ })

	f.s.Logout(context.Background())
	first := f.s.Snapshot()
	f.s.Logout(context.Background())

	assert.True(t, first.Equal(f.s.Snapshot()))
	assert.False(t, f.s.IsLoggedIn())
	f.storeIsEmpty(t)
	assert.Equal(t, []string{"/login"}, f.nav.Targets())
	assert.Equal(t, 2, notified, "initial snapshot plus one transition")
}

func TestLogout_LoggedOutElsewhereStillGoesToLogin(t *testing.T) {
	f := newFixture(t)
	_, err := f.nav.Navigate(context.Background(), "/home")
	require.NoError(t, err)

	f.s.Logout(context.Background())
	f.s.Logout(context.Background())

	assert.Equal(t, []string{"/home", "/login"}, f.nav.Targets())
}

func TestExpire(t *testing.T) {
	f := newFixture(t)
	f.loggedIn(t, models.RoleVolunteer)

	assert.True(t, f.s.Expire(context.Background(), "/events/3"))
	assert.False(t, f.s.Expire(context.Background(), "/events/3"))

	assert.False(t, f.s.IsLoggedIn())
	f.storeIsEmpty(t)
	assert.Equal(t, []string{"/login?returnUrl=%2Fevents%2F3"}, f.nav.Targets())
}

func TestExpire_ConcurrentTransitionsOnce(t *testing.T) {
	f := newFixture(t)
	f.loggedIn(t, models.RoleVolunteer)

	var transitions atomic.Int32
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if f.s.Expire(context.Background(), "/home") {
				transitions.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), transitions.Load())
	assert.Len(t, f.nav.Targets(), 1)
}

func TestNilNavigatorIsTolerated(t *testing.T) {
	store := credentials.NewStore(metadata.NewMemoryRepository(), logging.Discard())
	s := New(store, &fakeAuth{resp: &models.LoginResponse{AccessToken: "t", User: profile()}}, nil)

	assert.NotPanics(t, func() { s.Logout(context.Background()) })

	nav := &fakeNav{}
	s.SetNavigator(nav)
	s.Logout(context.Background())
	assert.Equal(t, []string{"/login"}, nav.Targets())
}

// ---- subscriptions ----

func TestSubscribe_OnlyOnChange(t *testing.T) {
	f := newFixture(t)
	var got []State
	unsubscribe := f.s.Subscribe(func(s Snapshot) { got = append(got, s.State()) })

	f.loggedIn(t, models.RoleAdmin)
	f.loggedIn(t, models.RoleAdmin) // same user again: no change
	f.loggedIn(t, models.RoleOrganizer)
	f.s.Logout(context.Background())
	f.s.Logout(context.Background())
	unsubscribe()
	unsubscribe()
	f.loggedIn(t, models.RoleAdmin)

	assert.Equal(t, []State{LoggedOut, LoggedIn, LoggedIn, LoggedOut}, got)
}

func TestSubscribe_DeliveredInMutationOrder(t *testing.T) {
	f := newFixture(t)
	var mu sync.Mutex
	var states []bool
	f.s.Subscribe(func(s Snapshot) {
		mu.Lock()
		states = append(states, s.IsLoggedIn())
		mu.Unlock()
	})

	for range 20 {
		f.loggedIn(t, models.RoleVolunteer)
		f.s.Logout(context.Background())
	}

	mu.Lock()
	defer mu.Unlock()
	for i := 1; i < len(states); i++ {
		assert.NotEqual(t, states[i-1], states[i], "notifications alternate at %d", i)
	}
}

// ---- derived state ----

func TestPrimaryRole(t *testing.T) {
	tests := []struct {
		roles []string
		want  models.PrimaryRole
	}{
		{[]string{models.RoleVolunteer, models.RoleAdmin}, models.PrimaryRoleAdmin},
		{[]string{models.RoleVolunteer, models.RoleOrganizer}, models.PrimaryRoleOrganizer},
		{[]string{models.RoleVolunteer}, models.PrimaryRoleVolunteer},
		{[]string{"ROLE_GUEST"}, models.PrimaryRoleNone},
		{[]string{}, models.PrimaryRoleNone},
	}
	for _, tt := range tests {
		f := newFixture(t)
		f.loggedIn(t, tt.roles...)
		assert.Equal(t, tt.want, f.s.PrimaryRole(), "%v", tt.roles)
	}
	assert.Equal(t, models.PrimaryRoleNone, newFixture(t).s.PrimaryRole())
}

func TestDerivedAccessors(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, "", f.s.DisplayName())
	_, ok := f.s.VolunteerID()
	assert.False(t, ok)
	assert.False(t, f.s.HasAnyRole())

	vid := int64(9)
	f.auth.resp = &models.LoginResponse{AccessToken: "tok", User: &models.UserProfile{
		ID: 1, Username: "vic", Roles: []string{models.RoleVolunteer}, VolunteerID: &vid,
	}}
	_, err := f.s.Login(context.Background(), models.LoginRequest{UsernameOrEmail: "vic", Password: "pw"})
	require.NoError(t, err)

	assert.Equal(t, "vic", f.s.DisplayName(), "falls back to the username without an email")
	id, ok := f.s.VolunteerID()
	assert.True(t, ok)
	assert.Equal(t, int64(9), id)
	assert.True(t, f.s.HasAnyRole(models.RoleAdmin, models.RoleVolunteer))
	assert.False(t, f.s.HasAnyRole())
}

func TestSnapshot_IsImmutable(t *testing.T) {
	f := newFixture(t)
	f.loggedIn(t, models.RoleVolunteer)

	snap := f.s.Snapshot()
	u := snap.User()
	u.Roles[0] = models.RoleAdmin
	roles := snap.Roles()
	roles[0] = models.RoleAdmin
	f.s.CurrentUser().Roles[0] = models.RoleAdmin

	assert.False(t, snap.IsAdmin())
	assert.False(t, f.s.IsAdmin())

	f.s.Logout(context.Background())
	assert.True(t, snap.IsLoggedIn(), "a taken snapshot does not change")
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, "Invalid username or password.", Message(ErrInvalidCredentials))
	assert.Equal(t, "Login failed.", Message(errors.New("boom")))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "LOGGED_IN", LoggedIn.String())
	assert.Equal(t, "LOGGED_OUT", LoggedOut.String())
}
