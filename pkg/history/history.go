// Package history defines the browser collaborator a router controller
// talks to, and an in-memory implementation of it.
//
// A Browser reports the current location, accepts push/replace history
// mutations, and announces back/forward navigations through popstate
// listeners. Mutations made through PushState and ReplaceState never fire
// popstate, matching browser behavior.
package history

import "net/url"

// Browser is the location/history capability a controller needs.
type Browser interface {
	// Location returns the current absolute URL.
	Location() *url.URL

	// PushState adds a new history entry for u.
	PushState(u *url.URL)

	// ReplaceState replaces the current history entry with u.
	ReplaceState(u *url.URL)

	// OnPopState registers fn to run after a back/forward navigation.
	// The returned function removes the listener; calling it more than once
	// is a no-op.
	OnPopState(fn func()) (remove func())
}

// Mode is how a navigation changes the history stack.
type Mode int

const (
	// ModePush adds a new history entry (default behavior).
	ModePush Mode = iota

	// ModeReplace replaces the current history entry.
	ModeReplace
)

// String returns "push" or "replace".
func (m Mode) String() string {
	if m == ModeReplace {
		return "replace"
	}
	return "push"
}

// Apply performs the mutation for m on b.
func (m Mode) Apply(b Browser, u *url.URL) {
	if m == ModeReplace {
		b.ReplaceState(u)
		return
	}
	b.PushState(u)
}

// cloneURL copies u so callers cannot mutate stored entries.
func cloneURL(u *url.URL) *url.URL {
	if u == nil {
		return nil
	}
	c := *u
	if u.User != nil {
		user := *u.User
		c.User = &user
	}
	return &c
}
