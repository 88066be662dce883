package session

import (
	"slices"

	"github.com/dmitrijs2005/vmsclient/internal/client/models"
)

// State is the authentication state of a session.
type State int

const (
	LoggedOut State = iota
	LoggedIn
)

func (s State) String() string {
	if s == LoggedIn {
		return "LOGGED_IN"
	}
	return "LOGGED_OUT"
}

// Snapshot is an immutable view of the session at one point in time.
// The zero value is the logged-out snapshot.
type Snapshot struct {
	loggedIn bool
	user     *models.UserProfile
}

func newSnapshot(token string, user *models.UserProfile) Snapshot {
	if token == "" || user == nil {
		return Snapshot{}
	}
	return Snapshot{loggedIn: true, user: user.Clone()}
}

func (s Snapshot) State() State {
	if s.loggedIn {
		return LoggedIn
	}
	return LoggedOut
}

func (s Snapshot) IsLoggedIn() bool { return s.loggedIn }

// User returns a copy of the signed-in profile, or nil.
func (s Snapshot) User() *models.UserProfile { return s.user.Clone() }

func (s Snapshot) Username() string {
	if s.user == nil {
		return ""
	}
	return s.user.Username
}

// Roles returns a copy of the user's roles; nil when logged out.
func (s Snapshot) Roles() []string {
	if s.user == nil {
		return nil
	}
	return slices.Clone(s.user.Roles)
}

func (s Snapshot) IsAdmin() bool { return s.user.HasRole(models.RoleAdmin) }
func (s Snapshot) IsOrganizer() bool { return s.user.HasRole(models.RoleOrganizer) }
func (s Snapshot) IsVolunteer() bool { return s.user.HasRole(models.RoleVolunteer) }

// HasAnyRole is false for an empty roles list.
func (s Snapshot) HasAnyRole(roles ...string) bool { return s.user.HasAnyRole(roles...) }

func (s Snapshot) PrimaryRole() models.PrimaryRole { return s.user.Primary() }

func (s Snapshot) DisplayName() string { return s.user.DisplayName() }

// VolunteerID returns the linked volunteer record id, if any.
func (s Snapshot) VolunteerID() (int64, bool) {
	if s.user == nil || s.user.VolunteerID == nil {
		return 0, false
	}
	return *s.user.VolunteerID, true
}

// Equal reports whether both snapshots have the same logged-in flag and
// the same user.
func (s Snapshot) Equal(o Snapshot) bool {
	if s.loggedIn != o.loggedIn {
		return false
	}
	a, b := s.user, o.user
	if a == nil || b == nil {
		return a == b
	}
	if a.ID != b.ID || a.Username != b.Username || a.Email != b.Email || !slices.Equal(a.Roles, b.Roles) {
		return false
	}
	if (a.VolunteerID == nil) != (b.VolunteerID == nil) {
		return false
	}
	return a.VolunteerID == nil || *a.VolunteerID == *b.VolunteerID
}
