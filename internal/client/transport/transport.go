// Package transport provides the http.RoundTripper that authenticates
// outgoing API requests and turns a 401 answer into a session teardown.
package transport

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/vmsclient/internal/common"
	"github.com/dmitrijs2005/vmsclient/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// TokenSource yields the current bearer token, "" when there is none.
type TokenSource interface {
	Token() string
}

// Expirer tears the session down. It must be idempotent and report whether
// the call actually logged the user out.
type Expirer interface {
	Expire(ctx context.Context, returnURL string) bool
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// ExpireFunc adapts a function to Expirer.
type ExpireFunc func(ctx context.Context, returnURL string) bool

func (f ExpireFunc) Expire(ctx context.Context, returnURL string) bool { return f(ctx, returnURL) }

// Locator reports the location the user is currently at; it becomes the
// return target of the login redirect.
type Locator interface {
	CurrentURL() string
}

type AuthTransport struct {
	base     http.RoundTripper
	tokens   TokenSource
	expirer  Expirer
	location Locator
	log      logging.Logger

	expiring singleflight.Group
}

// New wraps base. A nil base means http.DefaultTransport; a nil location
// sends the user to the bare login page on expiry.
func New(base http.RoundTripper, tokens TokenSource, expirer Expirer, location Locator, log logging.Logger) *AuthTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &AuthTransport{
		base:     base,
		tokens:   tokens,
		expirer:  expirer,
		location: location,
		log:      log.With("component", "transport"),
	}
}

// RoundTrip sends req with the bearer token attached when one exists. On a
// 401 answer the session is expired before the response is handed back;
// the response and error themselves are returned unchanged.
func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	r := req.Clone(ctx)
	if token := t.tokens.Token(); token != "" {
		r.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}
	if r.Header.Get(common.RequestIDHeaderName) == "" {
		r.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	}

	resp, err := t.base.RoundTrip(r)
	if resp != nil && resp.StatusCode == http.StatusUnauthorized {
		t.log.Debug(ctx, "request unauthorized",
			"method", r.Method, "url", r.URL.Redacted(), "request_id", r.Header.Get(common.RequestIDHeaderName))
		t.expire(ctx)
	}
	return resp, err
}

// expire collapses concurrent 401s into one teardown. Callers that arrive
// while it runs wait for it, so every 401 returns after the session is
// already logged out. The teardown must not issue API requests itself.
func (t *AuthTransport) expire(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	_, _, _ = t.expiring.Do("expire", func() (any, error) {
		returnURL := ""
		if t.location != nil {
			returnURL = t.location.CurrentURL()
		}
		if t.expirer.Expire(ctx, returnURL) {
			t.log.Info(ctx, "session expired by server", "return_url", returnURL)
		}
		return nil, nil
	})
}
