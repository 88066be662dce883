package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/vmsclient/internal/client/client"
	"github.com/dmitrijs2005/vmsclient/internal/client/guards"
	"github.com/dmitrijs2005/vmsclient/internal/client/models"
	"github.com/dmitrijs2005/vmsclient/internal/client/router"
	"github.com/dmitrijs2005/vmsclient/internal/client/routes"
	"github.com/dmitrijs2005/vmsclient/internal/client/services"
)

// visit navigates to target and reports whether the navigation landed on
// the path that was asked for. Redirects are reported by onNavigate.
func (a *App) visit(ctx context.Context, target string) (bool, error) {
	a.setPending(target)
	defer a.setPending("")

	loc, err := a.nav.Navigate(ctx, target)
	switch {
	case errors.Is(err, router.ErrSuperseded):
		return false, nil
	case errors.Is(err, router.ErrRouteNotFound):
		fmt.Fprintln(a.out, errorStyle.Render("No such page: "+target))
		return false, nil
	case err != nil:
		return false, err
	}
	return pathOf(loc) == pathOf(target), nil
}

func (a *App) setPending(target string) {
	a.mu.Lock()
	a.pending = target
	a.mu.Unlock()
}

// onNavigate runs for every committed location. A command that did not end
// up where it asked to go is told where it landed and why. A navigation no
// command asked for that ends on the login page with a return target is the
// session expiring under the user.
func (a *App) onNavigate(loc string) {
	a.mu.Lock()
	pending := a.pending
	a.mu.Unlock()

	if pending == "" {
		if routes.IsLogin(loc) && returnURLFrom(loc) != "" {
			fmt.Fprintln(a.out, errorStyle.Render("Your session has expired. Please log in again."))
		}
		return
	}
	if pathOf(loc) == pathOf(pending) {
		return
	}
	fmt.Fprintf(a.out, "%s %s\n", mutedStyle.Render("Redirected to"), loc)
	if msg := redirectMessage(loc); msg != "" {
		fmt.Fprintln(a.out, errorStyle.Render(msg))
	}
}

func pathOf(loc string) string {
	path, _, _ := strings.Cut(loc, "?")
	if path != "/" {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}

// redirectMessage explains where a guard sent the user.
func redirectMessage(loc string) string {
	path, query, _ := strings.Cut(loc, "?")
	switch {
	case routes.IsLogin(loc):
		return "Please log in first."
	case path == routes.Forbidden:
		return "You do not have access to that page."
	case path == routes.Events:
		q, _ := url.ParseQuery(query)
		switch q.Get("error") {
		case guards.ErrCodeEventNotFound:
			return "Event not found."
		case guards.ErrCodeEventCheckFailed:
			return "Could not verify access to the event."
		}
	}
	return ""
}

func (a *App) Go(ctx context.Context, target string) error {
	if !strings.HasPrefix(target, "/") {
		target = "/" + target
	}
	if _, err := a.visit(ctx, target); err != nil {
		return err
	}
	return a.Where(ctx)
}

func (a *App) Where(ctx context.Context) error {
	fmt.Fprintln(a.out, a.nav.CurrentURL())
	return nil
}

// Events lists all events. Volunteers see which ones they signed up for.
func (a *App) Events(ctx context.Context) error {
	ok, err := a.visit(ctx, routes.Events)
	if !ok || err != nil {
		return err
	}
	list, err := a.events.List(ctx, a.session.Snapshot().IsVolunteer())
	if err != nil {
		return err
	}
	fmt.Fprint(a.out, renderEvents(list))
	return nil
}

func (a *App) Event(ctx context.Context, id string) error {
	eventID, err := parseID(id)
	if err != nil {
		return err
	}
	ok, err := a.visit(ctx, routes.Event(strconv.FormatInt(eventID, 10)))
	if !ok || err != nil {
		return err
	}
	ev, err := a.events.Get(ctx, eventID)
	if errors.Is(err, client.ErrNotFound) {
		fmt.Fprintln(a.out, errorStyle.Render("Event not found."))
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprint(a.out, renderEvent(ev, false))
	return nil
}

// Manage opens the edit view of an event. Only its organizer or an admin
// gets through; the volunteers assigned to it are shown.
func (a *App) Manage(ctx context.Context, id string) error {
	eventID, err := parseID(id)
	if err != nil {
		return err
	}
	ok, err := a.visit(ctx, routes.Event(strconv.FormatInt(eventID, 10))+"/edit")
	if !ok || err != nil {
		return err
	}
	ev, err := a.events.Get(ctx, eventID)
	if err != nil {
		return err
	}
	fmt.Fprint(a.out, renderEvent(ev, true))
	return nil
}

func (a *App) Organized(ctx context.Context) error {
	ok, err := a.visit(ctx, "/manage-organized-events")
	if !ok || err != nil {
		return err
	}
	list, err := a.events.Organized(ctx)
	if err != nil {
		return err
	}
	views := make([]services.EventView, 0, len(list))
	for _, ev := range list {
		views = append(views, services.EventView{Event: ev})
	}
	fmt.Fprint(a.out, renderEvents(views))
	return nil
}

// SignUp registers the current volunteer for an event.
func (a *App) SignUp(ctx context.Context, id string) error {
	eventID, err := parseID(id)
	if err != nil {
		return err
	}
	snap := a.session.Snapshot()
	if !snap.IsLoggedIn() {
		fmt.Fprintln(a.out, errorStyle.Render("Please log in first."))
		return nil
	}
	if !snap.IsVolunteer() {
		fmt.Fprintln(a.out, errorStyle.Render("Only volunteers can sign up for events."))
		return nil
	}

	err = a.events.SignUp(ctx, eventID)
	var se *client.StatusError
	switch {
	case err == nil:
		fmt.Fprintf(a.out, "Signed up for event %d.\n", eventID)
		return nil
	case errors.Is(err, client.ErrNotFound):
		fmt.Fprintln(a.out, errorStyle.Render("Event not found."))
		return nil
	case errors.As(err, &se) && se.Code == 409:
		fmt.Fprintln(a.out, errorStyle.Render("You are already signed up for this event."))
		return nil
	}
	return err
}

// MyEvents lists the events the current volunteer signed up for.
func (a *App) MyEvents(ctx context.Context) error {
	snap := a.session.Snapshot()
	volunteerID, isVolunteer := snap.VolunteerID()
	if snap.IsLoggedIn() && !isVolunteer {
		fmt.Fprintln(a.out, errorStyle.Render("No volunteer profile is linked to this account."))
		return nil
	}

	ok, err := a.visit(ctx, "/manage-registered-events/"+strconv.FormatInt(volunteerID, 10))
	if !ok || err != nil {
		return err
	}
	list, err := a.events.List(ctx, true)
	if err != nil {
		return err
	}
	mine := list[:0]
	for _, ev := range list {
		if ev.Registered {
			mine = append(mine, ev)
		}
	}
	fmt.Fprint(a.out, renderEvents(mine))
	return nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid event id %q", raw)
	}
	return id, nil
}

// roleLabel is shown in the prompt next to the user name.
func roleLabel(role models.PrimaryRole) string {
	if role == models.PrimaryRoleNone {
		return ""
	}
	return " (" + string(role) + ")"
}
