package guards

import (
	"context"
	"sync"
)

// Decision is the outcome of an access check: either allow the navigation
// or redirect it to another location.
type Decision struct {
	Allowed  bool
	Redirect string
}

func Allow() Decision { return Decision{Allowed: true} }

func RedirectTo(location string) Decision { return Decision{Redirect: location} }

func (d Decision) String() string {
	if d.Allowed {
		return "allow"
	}
	return "redirect " + d.Redirect
}

// Result carries a Decision that is either known immediately or produced
// later by a lookup. A deferred result resolves exactly once.
type Result struct {
	done     chan struct{}
	once     sync.Once
	decision Decision
}

// Resolved returns a result that is ready at once.
func Resolved(d Decision) *Result {
	r := &Result{done: make(chan struct{}), decision: d}
	close(r.done)
	return r
}

// Deferred starts fn in its own goroutine and returns a result that
// becomes ready when fn returns. fn gets ctx and should honor it.
func Deferred(ctx context.Context, fn func(ctx context.Context) Decision) *Result {
	r := &Result{done: make(chan struct{})}
	go func() { r.resolve(fn(ctx)) }()
	return r
}

func (r *Result) resolve(d Decision) {
	r.once.Do(func() {
		r.decision = d
		close(r.done)
	})
}

// Ready reports whether the decision is available without waiting.
func (r *Result) Ready() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// Done is closed once the decision is available.
func (r *Result) Done() <-chan struct{} { return r.done }

// Decision returns the decision and true when ready, or the zero Decision
// and false otherwise.
func (r *Result) Decision() (Decision, bool) {
	if !r.Ready() {
		return Decision{}, false
	}
	return r.decision, true
}

// Wait blocks until the decision is available or ctx is done. A caller
// that gives up gets ctx.Err(); the lookup finishes on its own and its
// decision is simply never read.
func (r *Result) Wait(ctx context.Context) (Decision, error) {
	select {
	case <-r.done:
		return r.decision, nil
	case <-ctx.Done():
		return Decision{}, ctx.Err()
	}
}
