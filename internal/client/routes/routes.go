// Package routes names the application locations shared by the session,
// the access guards and the router.
package routes

import (
	"net/url"
	"strings"
)

const (
	Root      = "/"
	Home      = "/home"
	Login     = "/login"
	Register  = "/register"
	Forbidden = "/forbidden"
	Events    = "/events"
	Profile   = "/profile"

	ReturnURLParam = "returnUrl"
)

// LoginWithReturn builds the login location that sends the user back to
// returnURL after signing in. An empty return target, or one that already
// points at the login page, yields the bare login location.
func LoginWithReturn(returnURL string) string {
	if returnURL == "" || returnURL == Root || IsLogin(returnURL) {
		return Login
	}
	q := url.Values{ReturnURLParam: []string{returnURL}}
	return Login + "?" + q.Encode()
}

// IsLogin reports whether location points at the login page.
func IsLogin(location string) bool {
	path, _, _ := strings.Cut(location, "?")
	return path == Login
}

// Event returns the detail location of an event.
func Event(id string) string {
	return Events + "/" + id
}

// EventsWithError returns the event list location carrying an error code,
// e.g. "/events?error=event_not_found".
func EventsWithError(code string) string {
	return Events + "?" + url.Values{"error": []string{code}}.Encode()
}
