package router

import (
	"context"
	"net/url"

	"github.com/vango-dev/histroute/pkg/history"
)

// EventKind identifies what a controller Event reports.
type EventKind int

const (
	// EventUpdate is a re-read of the browser location.
	EventUpdate EventKind = iota

	// EventRedirect is a programmatic navigation.
	EventRedirect

	// EventWatch is a new state subscription.
	EventWatch

	// EventUnwatch is a disposed state subscription.
	EventUnwatch
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventUpdate:
		return "update"
	case EventRedirect:
		return "redirect"
	case EventWatch:
		return "watch"
	case EventUnwatch:
		return "unwatch"
	default:
		return "unknown"
	}
}

// Event describes one controller operation as it passes through the
// middleware chain. From, To and Changed are filled in by the controller
// before next returns.
type Event struct {
	Kind EventKind

	// Route is the redirect target. Empty for other kinds.
	Route RouteName

	// URL is the location read (update) or the navigation target (redirect).
	URL *url.URL

	// Mode is the history operation of a redirect.
	Mode history.Mode

	// From is the current route before the operation.
	From RouteName

	// To is the current route after the operation.
	To RouteName

	// Changed reports whether the location changed.
	Changed bool

	ctx context.Context
}

// Context returns the event's context. It is never nil.
func (e *Event) Context() context.Context {
	if e.ctx == nil {
		return context.Background()
	}
	return e.ctx
}

// WithContext replaces the event's context. Nested events (the update a
// redirect triggers) inherit it.
func (e *Event) WithContext(ctx context.Context) {
	e.ctx = ctx
}

// Is404 reports whether no route was current after the operation.
func (e *Event) Is404() bool {
	return e.To == ""
}

// Middleware observes controller operations. It is used for metrics,
// tracing and logging, not for vetoing navigation.
type Middleware interface {
	// Handle processes the event and must call next exactly once.
	Handle(ev *Event, next func() error) error
}

// MiddlewareFunc is a function adapter for Middleware.
type MiddlewareFunc func(ev *Event, next func() error) error

// Handle implements Middleware.
func (f MiddlewareFunc) Handle(ev *Event, next func() error) error {
	return f(ev, next)
}

// ComposeMiddleware builds a handler chain from middleware and a final handler.
// Middleware is executed in order (first to last), with the handler at the end.
func ComposeMiddleware(ev *Event, mw []Middleware, handler func() error) error {
	if len(mw) == 0 {
		return handler()
	}

	chain := handler
	for i := len(mw) - 1; i >= 0; i-- {
		m := mw[i]
		next := chain
		chain = func() error {
			return m.Handle(ev, next)
		}
	}

	return chain()
}

// Chain creates a middleware that combines multiple middleware in order.
func Chain(middleware ...Middleware) Middleware {
	return MiddlewareFunc(func(ev *Event, next func() error) error {
		return ComposeMiddleware(ev, middleware, next)
	})
}

// Only runs mw for events of the given kinds and passes the rest through.
func Only(mw Middleware, kinds ...EventKind) Middleware {
	return MiddlewareFunc(func(ev *Event, next func() error) error {
		for _, k := range kinds {
			if ev.Kind == k {
				return mw.Handle(ev, next)
			}
		}
		return next()
	})
}
