// Package router resolves application locations against a route table,
// runs the route guards and follows their redirects.
package router

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrijs2005/vmsclient/internal/client/guards"
	"github.com/dmitrijs2005/vmsclient/internal/logging"
)

// MaxRedirects bounds the redirect chain of a single navigation.
const MaxRedirects = 10

var (
	ErrRouteNotFound    = errors.New("route not found")
	ErrTooManyRedirects = errors.New("too many redirects")
	// ErrSuperseded is returned by a navigation that lost to a newer one.
	ErrSuperseded = errors.New("navigation superseded")
	// ErrDenied is returned when a guard refused without a redirect target.
	ErrDenied = errors.New("navigation denied")
)

// Route is one entry of the route table.
type Route struct {
	// Pattern is an absolute path whose ":name" segments match any single
	// non-empty segment, e.g. "/events/:id/edit".
	Pattern string
	// Guards run in order; the first redirect wins.
	Guards []guards.Guard
	// Roles is the role list declared on the route, read by the
	// declared-roles guard.
	Roles []string
	// RedirectTo, when set, sends the navigation elsewhere before any guard.
	RedirectTo string

	segments []string
}

type Router struct {
	log logging.Logger

	mu        sync.Mutex
	routes    []Route
	current   string
	seq       uint64
	listeners []func(string)
}

func New(log logging.Logger) *Router {
	return &Router{log: log.With("component", "router")}
}

// Handle appends routes to the table. Earlier routes take precedence, so
// register literal paths before parameterized ones that overlap them.
func (r *Router) Handle(routes ...Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rt := range routes {
		rt.segments = splitPath(rt.Pattern)
		r.routes = append(r.routes, rt)
	}
}

// CurrentURL returns the last committed location, "" before the first
// navigation.
func (r *Router) CurrentURL() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// OnNavigate registers fn to be called with every committed location.
func (r *Router) OnNavigate(fn func(string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Navigate resolves target, runs the guards of the matched route and
// follows redirects until a route admits the navigation. It returns the
// committed location. A navigation started later wins: an earlier one
// still waiting on a guard ends with ErrSuperseded and commits nothing.
func (r *Router) Navigate(ctx context.Context, target string) (string, error) {
	seq := r.begin()
	loc := normalize(target)

	for hop := 0; ; hop++ {
		if hop > MaxRedirects {
			r.log.Warn(ctx, "redirect loop", "target", target, "last", loc)
			return "", fmt.Errorf("%w: %s", ErrTooManyRedirects, target)
		}

		path, _, _ := strings.Cut(loc, "?")
		rt, params, ok := r.match(path)
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrRouteNotFound, path)
		}
		if rt.RedirectTo != "" {
			loc = normalize(rt.RedirectTo)
			continue
		}

		d, err := r.runGuards(ctx, rt, guards.Request{Path: path, URL: loc, Params: params, Roles: rt.Roles})
		if err != nil {
			return "", err
		}
		if r.superseded(seq) {
			return "", ErrSuperseded
		}
		if !d.Allowed {
			if d.Redirect == "" {
				return "", fmt.Errorf("%w: %s", ErrDenied, loc)
			}
			r.log.Debug(ctx, "navigation redirected", "from", loc, "to", d.Redirect)
			loc = normalize(d.Redirect)
			continue
		}

		return r.commit(ctx, seq, loc)
	}
}

func (r *Router) runGuards(ctx context.Context, rt Route, req guards.Request) (guards.Decision, error) {
	for _, g := range rt.Guards {
		d, err := g.Check(ctx, req).Wait(ctx)
		if err != nil {
			return guards.Decision{}, err
		}
		if !d.Allowed {
			return d, nil
		}
	}
	return guards.Allow(), nil
}

func (r *Router) begin() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return r.seq
}

func (r *Router) superseded(seq uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seq != seq
}

func (r *Router) commit(ctx context.Context, seq uint64, loc string) (string, error) {
	r.mu.Lock()
	if r.seq != seq {
		r.mu.Unlock()
		return "", ErrSuperseded
	}
	r.current = loc
	listeners := slices.Clone(r.listeners)
	r.mu.Unlock()

	r.log.Debug(ctx, "navigation committed", "url", loc)
	for _, fn := range listeners {
		fn(loc)
	}
	return loc, nil
}

func (r *Router) match(path string) (Route, map[string]string, bool) {
	segs := splitPath(path)

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rt := range r.routes {
		if params, ok := matchSegments(rt.segments, segs); ok {
			return rt, params, true
		}
	}
	return Route{}, nil, false
}

func matchSegments(pattern, path []string) (map[string]string, bool) {
	if len(pattern) != len(path) {
		return nil, false
	}
	params := map[string]string{}
	for i, p := range pattern {
		if name, ok := strings.CutPrefix(p, ":"); ok {
			if path[i] == "" {
				return nil, false
			}
			params[name] = path[i]
			continue
		}
		if p != path[i] {
			return nil, false
		}
	}
	return params, true
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// normalize makes loc absolute: "events" and "/events" are the same place.
func normalize(loc string) string {
	loc = strings.TrimSpace(loc)
	if !strings.HasPrefix(loc, "/") {
		loc = "/" + loc
	}
	return loc
}
