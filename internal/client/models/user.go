// Package models defines the client-side data models exchanged with the
// volunteer management API and kept in the local credential store.
package models

import (
	"errors"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

// Role names as issued by the API.
const (
	RoleAdmin     = "ROLE_ADMIN"
	RoleOrganizer = "ROLE_ORGANIZER"
	RoleVolunteer = "ROLE_VOLUNTEER"
)

// PrimaryRole is the single role used to classify a user in the UI.
type PrimaryRole string

const (
	PrimaryRoleNone      PrimaryRole = ""
	PrimaryRoleAdmin     PrimaryRole = "admin"
	PrimaryRoleOrganizer PrimaryRole = "organizer"
	PrimaryRoleVolunteer PrimaryRole = "volunteer"
)

// UserProfile is the authenticated user as returned by the login endpoint
// and persisted by the credential store.
type UserProfile struct {
	ID          int64    `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Roles       []string `json:"roles"`
	VolunteerID *int64   `json:"volunteerId,omitempty"`
}

// Validate checks the minimum shape a profile must have before it is
// trusted: a non-zero id and a roles array (possibly empty) of non-blank
// role names. A missing roles array is rejected, never read as "all roles".
func (u UserProfile) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.ID, validation.Required),
		validation.Field(&u.Roles, validation.NotNil, validation.By(nonBlankStrings)),
	)
}

// HasRole reports whether the profile carries role.
func (u *UserProfile) HasRole(role string) bool {
	if u == nil {
		return false
	}
	return slices.Contains(u.Roles, role)
}

// HasAnyRole reports whether the profile carries at least one of roles.
// An empty roles argument yields false.
func (u *UserProfile) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if u.HasRole(r) {
			return true
		}
	}
	return false
}

// Primary classifies the profile by priority admin > organizer > volunteer.
// Profiles with none of the known roles get PrimaryRoleNone.
func (u *UserProfile) Primary() PrimaryRole {
	switch {
	case u.HasRole(RoleAdmin):
		return PrimaryRoleAdmin
	case u.HasRole(RoleOrganizer):
		return PrimaryRoleOrganizer
	case u.HasRole(RoleVolunteer):
		return PrimaryRoleVolunteer
	default:
		return PrimaryRoleNone
	}
}

// DisplayName is the email, falling back to the username.
func (u *UserProfile) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Email != "" {
		return u.Email
	}
	return u.Username
}

// Clone returns a deep copy so callers cannot mutate shared session state.
func (u *UserProfile) Clone() *UserProfile {
	if u == nil {
		return nil
	}
	c := *u
	if u.Roles != nil {
		c.Roles = slices.Clone(u.Roles)
	}
	if u.VolunteerID != nil {
		id := *u.VolunteerID
		c.VolunteerID = &id
	}
	return &c
}

func nonBlankStrings(value any) error {
	items, _ := value.([]string)
	for _, s := range items {
		if strings.TrimSpace(s) == "" {
			return errors.New("must not contain blank values")
		}
	}
	return nil
}
