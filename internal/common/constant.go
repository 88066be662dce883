// Package common contains shared constants and sentinel errors used across
// the client packages.
package common

// AuthorizationHeaderName is the HTTP header carrying the bearer token on
// outbound API requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the access token in the Authorization header.
const BearerPrefix = "Bearer "

// RequestIDHeaderName correlates a client request with server-side logs.
const RequestIDHeaderName = "X-Request-ID"
