package router

import (
	"github.com/dmitrijs2005/vmsclient/internal/client/guards"
	"github.com/dmitrijs2005/vmsclient/internal/client/models"
	"github.com/dmitrijs2005/vmsclient/internal/client/routes"
	"github.com/dmitrijs2005/vmsclient/internal/logging"
)

// DefaultRoutes is the application's route table.
func DefaultRoutes(s guards.SessionReader, events guards.EventLookup, log logging.Logger) []Route {
	auth := guards.Authenticated(s, log)
	admin := guards.AdminOnly(s, log)
	staff := guards.OrganizerOrAdmin(s, log)
	owner := guards.EventOwnership(s, events, log)
	declared := guards.DeclaredRoles(s, log)

	return []Route{
		{Pattern: routes.Login},
		{Pattern: routes.Register},

		{Pattern: "/volunteers", Guards: []guards.Guard{auth, staff}},
		{Pattern: "/volunteers/new", Guards: []guards.Guard{auth, admin, staff}},
		{Pattern: "/volunteers/:id/edit", Guards: []guards.Guard{auth, admin, staff}},
		{Pattern: "/volunteers/:id", Guards: []guards.Guard{auth}},

		{Pattern: routes.Events, Guards: []guards.Guard{auth}},
		{Pattern: "/events/new", Guards: []guards.Guard{auth, staff}},
		{Pattern: "/events/:id/edit", Guards: []guards.Guard{auth, owner, staff}},
		{Pattern: "/events/:id", Guards: []guards.Guard{auth}},

		{Pattern: "/manage-organized-events", Guards: []guards.Guard{auth, declared}, Roles: []string{models.RoleOrganizer}},
		{Pattern: "/manage-registered-events/:volunteerId", Guards: []guards.Guard{declared}, Roles: []string{models.RoleVolunteer}},

		{Pattern: "/profile/edit", Guards: []guards.Guard{auth}},
		{Pattern: routes.Profile, Guards: []guards.Guard{auth}},
		{Pattern: "/profile/:id", Guards: []guards.Guard{auth}},

		{Pattern: routes.Home},
		{Pattern: routes.Forbidden},
		{Pattern: routes.Root, RedirectTo: routes.Home},
	}
}
