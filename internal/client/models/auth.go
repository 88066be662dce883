package models

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail"`
	Password        string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UsernameOrEmail, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// LoginResponse is the body returned by POST /auth/login.
type LoginResponse struct {
	AccessToken string       `json:"accessToken"`
	TokenType   string       `json:"tokenType,omitempty"`
	User        *UserProfile `json:"user"`
}

// Validate is the trust-boundary check applied before a login response may
// change session state: a non-blank token and a valid user profile.
func (r LoginResponse) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.AccessToken, validation.Required, validation.By(notBlank)),
		validation.Field(&r.User, validation.NotNil),
	)
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	RoleName string `json:"roleName"`
	Password string `json:"password"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(3, 50)),
		validation.Field(&r.Username, validation.Required, validation.Length(3, 50)),
		validation.Field(&r.Email, validation.Required, validation.Length(0, 50), is.Email),
		validation.Field(&r.RoleName, validation.Required, validation.In(RoleVolunteer, RoleOrganizer, RoleAdmin)),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 100)),
	)
}

func notBlank(value any) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}
	return nil
}
