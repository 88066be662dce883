package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/vmsclient/internal/client/client"
	"github.com/dmitrijs2005/vmsclient/internal/client/models"
	"github.com/dmitrijs2005/vmsclient/internal/client/routes"
	"github.com/dmitrijs2005/vmsclient/internal/client/session"
	"github.com/dmitrijs2005/vmsclient/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for credentials and signs in. On success it moves to the
// location the user was sent away from, or to the landing page of their
// role. A rejected login is reported to the user, not returned.
func (a *App) Login(ctx context.Context) error {
	if snap := a.session.Snapshot(); snap.IsLoggedIn() {
		fmt.Fprintf(a.out, "Already logged in as %s. Use 'logout' first.\n", snap.DisplayName())
		return nil
	}

	name, err := getSimpleText(a.reader, "Username or email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	returnURL := returnURLFrom(a.nav.CurrentURL())

	user, err := a.session.Login(ctx, models.LoginRequest{UsernameOrEmail: name, Password: string(password)})
	if err != nil {
		a.log.Debug(ctx, "login failed", "error", err)
		fmt.Fprintln(a.out, errorStyle.Render(session.Message(err)))
		return nil
	}

	fmt.Fprintf(a.out, "Welcome, %s!\n", userStyle.Render(user.DisplayName()))
	_, err = a.visit(ctx, landing(user.Primary(), returnURL))
	return err
}

// Register prompts for the account fields and creates the account. It does
// not sign in.
func (a *App) Register(ctx context.Context) error {
	var req models.RegisterRequest
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Full name", &req.Name},
		{"Username", &req.Username},
		{"Email", &req.Email},
		{"Role (volunteer, organizer) [volunteer]", &req.RoleName},
	}
	for _, f := range fields {
		v, err := getSimpleText(a.reader, f.prompt, a.out)
		if err != nil {
			return err
		}
		*f.dst = v
	}
	req.RoleName = roleName(req.RoleName)

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	req.Password = string(password)

	msg, err := a.session.Register(ctx, req)
	if err != nil {
		return err
	}
	if msg == "" {
		msg = "Registration successful."
	}
	fmt.Fprintln(a.out, msg, "You can now log in.")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

// WhoAmI prints the signed-in identity and, when the server is reachable,
// the account the server holds for it.
func (a *App) WhoAmI(ctx context.Context) error {
	snap := a.session.Snapshot()
	if !snap.IsLoggedIn() {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}

	fmt.Fprintf(a.out, "%s %s\n", labelStyle.Render("User:"), userStyle.Render(snap.DisplayName()))
	fmt.Fprintf(a.out, "%s %s\n", labelStyle.Render("Username:"), snap.Username())
	fmt.Fprintf(a.out, "%s %s\n", labelStyle.Render("Roles:"), strings.Join(snap.Roles(), ", "))
	if role := snap.PrimaryRole(); role != models.PrimaryRoleNone {
		fmt.Fprintf(a.out, "%s %s\n", labelStyle.Render("Acting as:"), role)
	}
	if id, ok := snap.VolunteerID(); ok {
		fmt.Fprintf(a.out, "%s %d\n", labelStyle.Render("Volunteer id:"), id)
	}

	acc, err := a.events.Account(ctx)
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		fmt.Fprintln(a.out, errorStyle.Render("The server no longer accepts this session."))
		return nil
	case err != nil:
		return err
	}
	fmt.Fprintf(a.out, "%s %s <%s> %s\n", labelStyle.Render("Account:"), acc.Name, acc.Email, mutedStyle.Render(acc.Role))
	return nil
}

// landing picks where to go after login: the return target if there is
// one, otherwise the profile for volunteers and home for everyone else.
func landing(role models.PrimaryRole, returnURL string) string {
	if returnURL != "" {
		return returnURL
	}
	if role == models.PrimaryRoleVolunteer {
		return routes.Profile
	}
	return routes.Home
}

// returnURLFrom extracts the return target from a login location.
func returnURLFrom(location string) string {
	if !routes.IsLogin(location) {
		return ""
	}
	_, query, _ := strings.Cut(location, "?")
	q, err := url.ParseQuery(query)
	if err != nil {
		return ""
	}
	target := q.Get(routes.ReturnURLParam)
	// Only in-app locations; never follow a return target off-site.
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return ""
	}
	return target
}

func roleName(in string) string {
	switch strings.ToLower(strings.TrimSpace(in)) {
	case "", "volunteer", strings.ToLower(models.RoleVolunteer):
		return models.RoleVolunteer
	case "organizer", strings.ToLower(models.RoleOrganizer):
		return models.RoleOrganizer
	case "admin", strings.ToLower(models.RoleAdmin):
		return models.RoleAdmin
	default:
		return in
	}
}
