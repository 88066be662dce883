// Package cli provides the interactive volunteer management command-line
// client.
//
// It wires configuration, the local credential store, the session, the
// guarded router, the authenticating HTTP transport and the API client, then
// runs a REPL. Every command that opens a page goes through the router, so
// the same access rules apply as in the web client: anonymous users are
// sent to the login page with a return location, and a 401 from the server
// ends the session.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
