package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func TestUserProfile_Validate(t *testing.T) {
	tests := []struct {
		name    string
		user    UserProfile
		wantErr bool
	}{
		{name: "valid", user: UserProfile{ID: 1, Username: "bob", Roles: []string{RoleVolunteer}}},
		{name: "empty roles array is well formed", user: UserProfile{ID: 1, Roles: []string{}}},
		{name: "zero id", user: UserProfile{ID: 0, Roles: []string{RoleAdmin}}, wantErr: true},
		{name: "missing roles", user: UserProfile{ID: 3}, wantErr: true},
		{name: "blank role", user: UserProfile{ID: 3, Roles: []string{RoleAdmin, "  "}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.user.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestUserProfile_Primary(t *testing.T) {
	tests := []struct {
		roles []string
		want  PrimaryRole
	}{
		{roles: []string{RoleVolunteer, RoleAdmin}, want: PrimaryRoleAdmin},
		{roles: []string{RoleVolunteer, RoleOrganizer}, want: PrimaryRoleOrganizer},
		{roles: []string{RoleVolunteer}, want: PrimaryRoleVolunteer},
		{roles: []string{"ROLE_AUDITOR"}, want: PrimaryRoleNone},
		{roles: nil, want: PrimaryRoleNone},
	}
	for _, tt := range tests {
		u := &UserProfile{ID: 1, Roles: tt.roles}
		assert.Equal(t, tt.want, u.Primary(), "roles=%v", tt.roles)
	}

	var nilUser *UserProfile
	assert.Equal(t, PrimaryRoleNone, nilUser.Primary())
}

func TestUserProfile_HasAnyRole(t *testing.T) {
	u := &UserProfile{ID: 1, Roles: []string{RoleOrganizer}}

	assert.True(t, u.HasAnyRole(RoleAdmin, RoleOrganizer))
	assert.False(t, u.HasAnyRole(RoleAdmin))
	assert.False(t, u.HasAnyRole(), "empty role list never matches")

	var nilUser *UserProfile
	assert.False(t, nilUser.HasAnyRole(RoleAdmin))
}

func TestUserProfile_DisplayName(t *testing.T) {
	assert.Equal(t, "bob@example.org", (&UserProfile{Email: "bob@example.org", Username: "bob"}).DisplayName())
	assert.Equal(t, "bob", (&UserProfile{Username: "bob"}).DisplayName())

	var nilUser *UserProfile
	assert.Empty(t, nilUser.DisplayName())
}

func TestUserProfile_CloneIsDeep(t *testing.T) {
	orig := &UserProfile{ID: 7, Roles: []string{RoleVolunteer}, VolunteerID: int64Ptr(70)}
	c := orig.Clone()

	c.Roles[0] = RoleAdmin
	*c.VolunteerID = 1

	assert.Equal(t, RoleVolunteer, orig.Roles[0])
	assert.Equal(t, int64(70), *orig.VolunteerID)

	var nilUser *UserProfile
	assert.Nil(t, nilUser.Clone())
}
