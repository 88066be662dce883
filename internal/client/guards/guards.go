// Package guards decides whether a navigation may proceed.
//
// Every guard reads the session snapshot and never mutates it. A denied
// check is not an error: it is a redirect decision. Checks that need the
// server (event ownership) return a deferred Result; the rest resolve at
// once.
package guards

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/vmsclient/internal/client/client"
	"github.com/dmitrijs2005/vmsclient/internal/client/models"
	"github.com/dmitrijs2005/vmsclient/internal/client/routes"
	"github.com/dmitrijs2005/vmsclient/internal/client/session"
	"github.com/dmitrijs2005/vmsclient/internal/logging"
)

// Request describes the navigation being checked.
type Request struct {
	// Path is the matched path without query, e.g. "/events/3/edit".
	Path string
	// URL is the full attempted location including the query.
	URL string
	// Params holds the values of the route's ":name" segments.
	Params map[string]string
	// Roles is the role list declared on the route, if any.
	Roles []string
}

type Guard interface {
	Check(ctx context.Context, req Request) *Result
}

type GuardFunc func(ctx context.Context, req Request) *Result

func (f GuardFunc) Check(ctx context.Context, req Request) *Result { return f(ctx, req) }

// SessionReader is the read-only view of the session the guards use.
type SessionReader interface {
	Snapshot() session.Snapshot
}

// EventLookup fetches an event for the ownership check.
type EventLookup interface {
	GetEvent(ctx context.Context, id int64) (*models.Event, error)
}

var (
	staffRoles = []string{models.RoleAdmin, models.RoleOrganizer}
	allRoles   = []string{models.RoleAdmin, models.RoleOrganizer, models.RoleVolunteer}

	// Sections open to volunteers as well as staff.
	volunteerSections = map[string]bool{"profile": true, "events": true}
)

// Authenticated admits logged-in users holding the default role set of the
// route: any known role under /profile and /events, admin or organizer
// elsewhere. Anonymous users are sent to the login page.
func Authenticated(s SessionReader, log logging.Logger) Guard {
	return GuardFunc(func(ctx context.Context, req Request) *Result {
		snap := s.Snapshot()
		if !snap.IsLoggedIn() {
			return Resolved(RedirectTo(routes.LoginWithReturn(req.URL)))
		}

		required := staffRoles
		if volunteerSections[firstSegment(req.Path)] {
			required = allRoles
		}
		if snap.HasAnyRole(required...) {
			return Resolved(Allow())
		}
		log.Info(ctx, "access denied", "guard", "authenticated", "url", req.URL, "roles", snap.Roles(), "required", required)
		return Resolved(RedirectTo(routes.Root))
	})
}

// AdminOnly admits administrators and sends everyone else home.
func AdminOnly(s SessionReader, log logging.Logger) Guard {
	return GuardFunc(func(ctx context.Context, req Request) *Result {
		if s.Snapshot().IsAdmin() {
			return Resolved(Allow())
		}
		log.Info(ctx, "access denied", "guard", "admin", "url", req.URL)
		return Resolved(RedirectTo(routes.Home))
	})
}

// OrganizerOrAdmin admits organizers and administrators.
func OrganizerOrAdmin(s SessionReader, log logging.Logger) Guard {
	return GuardFunc(func(ctx context.Context, req Request) *Result {
		if s.Snapshot().HasAnyRole(staffRoles...) {
			return Resolved(Allow())
		}
		log.Info(ctx, "access denied", "guard", "organizer_or_admin", "url", req.URL)
		return Resolved(RedirectTo(routes.Root))
	})
}

// DeclaredRoles admits users holding at least one of the roles declared on
// the route. A route that declares no roles is closed to everyone.
func DeclaredRoles(s SessionReader, log logging.Logger) Guard {
	return GuardFunc(func(ctx context.Context, req Request) *Result {
		if len(req.Roles) == 0 {
			log.Warn(ctx, "route declares no roles", "url", req.URL)
			return Resolved(RedirectTo(routes.Forbidden))
		}

		snap := s.Snapshot()
		if !snap.IsLoggedIn() {
			return Resolved(RedirectTo(routes.LoginWithReturn(req.URL)))
		}
		if len(snap.Roles()) == 0 {
			log.Info(ctx, "access denied, user has no roles", "guard", "declared_roles", "url", req.URL)
			return Resolved(RedirectTo(routes.Forbidden))
		}
		if snap.HasAnyRole(req.Roles...) {
			return Resolved(Allow())
		}
		log.Info(ctx, "access denied", "guard", "declared_roles", "url", req.URL, "roles", snap.Roles(), "required", req.Roles)
		return Resolved(RedirectTo(routes.Forbidden))
	})
}

// Ownership failure codes carried on the event list redirect.
const (
	ErrCodeEventNotFound    = "event_not_found"
	ErrCodeEventCheckFailed = "event_check_failed"
)

// EventOwnership admits administrators at once and otherwise only the
// organizer of the event named by the "id" route parameter, which takes a
// lookup. Lookup failures redirect to the event list instead of failing.
func EventOwnership(s SessionReader, events EventLookup, log logging.Logger) Guard {
	return GuardFunc(func(ctx context.Context, req Request) *Result {
		raw := req.Params["id"]
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			log.Warn(ctx, "event id missing or invalid", "id", raw, "url", req.URL)
			return Resolved(RedirectTo(routes.Events))
		}

		snap := s.Snapshot()
		if !snap.IsLoggedIn() {
			return Resolved(RedirectTo(routes.LoginWithReturn(req.URL)))
		}
		if snap.IsAdmin() {
			return Resolved(Allow())
		}

		username := snap.Username()
		return Deferred(ctx, func(ctx context.Context) Decision {
			ev, err := events.GetEvent(ctx, id)
			switch {
			case errors.Is(err, client.ErrNotFound):
				log.Info(ctx, "event not found during ownership check", "event_id", id)
				return RedirectTo(routes.EventsWithError(ErrCodeEventNotFound))
			case err != nil:
				log.Warn(ctx, "event ownership check failed", "event_id", id, "error", err)
				return RedirectTo(routes.EventsWithError(ErrCodeEventCheckFailed))
			case ev == nil:
				return RedirectTo(routes.EventsWithError(ErrCodeEventNotFound))
			case ev.OrganizerName != "" && ev.OrganizerName == username:
				return Allow()
			default:
				log.Info(ctx, "access denied, not the organizer", "event_id", id, "user", username, "organizer", ev.OrganizerName)
				return RedirectTo(routes.Event(strconv.FormatInt(id, 10)))
			}
		})
	})
}

func firstSegment(path string) string {
	path = strings.TrimPrefix(path, "/")
	seg, _, _ := strings.Cut(path, "/")
	return seg
}
