// Package client talks to the volunteer management HTTP API.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) covering
//     authentication, events, registrations and the current user account.
//  2. A concrete HTTP/JSON implementation (see HTTPClient). Authentication is
//     not handled here: the caller passes a round tripper (normally the
//     auth transport) that attaches the bearer token and reacts to 401s.
//  3. Local persistence bootstrap utilities (InitDatabase, RunMigrations)
//     that open the SQLite credential database and apply embedded goose
//     migrations.
//
// # Error Handling
//
// Every non-2xx response is returned as a *StatusError. It unwraps to one of
// the sentinel errors ErrUnauthorized, ErrForbidden, ErrNotFound or
// ErrUnavailable, so callers can match with errors.Is. Transport failures
// are wrapped with ErrUnavailable.
//
// # Concurrency
//
// HTTPClient is safe for concurrent use. All operations accept a
// context.Context and honor cancellation.
package client
