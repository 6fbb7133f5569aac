package bridge

import (
	"github.com/vango-dev/histroute/pkg/router"
)

// Client message types.
const (
	// TypeHello opens a session with the page's current location.
	TypeHello = "hello"

	// TypePopState reports a back/forward navigation or a user-initiated
	// location change.
	TypePopState = "popstate"

	// TypeNavigate asks the server to redirect to a named route.
	TypeNavigate = "navigate"
)

// Server message types.
const (
	// TypeState carries the route state after every location change.
	TypeState = "state"

	// TypePush tells the client to call history.pushState.
	TypePush = "push"

	// TypeReplace tells the client to call history.replaceState.
	TypeReplace = "replace"

	// TypeError reports a rejected message.
	TypeError = "error"
)

// ClientMessage is a message from the browser.
type ClientMessage struct {
	Type string `json:"type"`

	// URL is the location, for hello and popstate.
	URL string `json:"url,omitempty"`

	// Route, Params, Query, Hash and Replace describe a navigate request.
	Route   string         `json:"route,omitempty"`
	Params  map[string]any `json:"params,omitempty"`
	Query   map[string]any `json:"query,omitempty"`
	Hash    string         `json:"hash,omitempty"`
	Replace bool           `json:"replace,omitempty"`
}

// redirectOptions converts a navigate request.
func (m ClientMessage) redirectOptions() router.RedirectOptions {
	return router.RedirectOptions{
		URLOptions: router.URLOptions{
			Params:      m.Params,
			QueryParams: m.Query,
			Hash:        m.Hash,
		},
		Replace: m.Replace,
	}
}

// ServerMessage is a message to the browser.
type ServerMessage struct {
	Type string `json:"type"`

	// Session is the session ID, sent with every state message.
	Session string `json:"session,omitempty"`

	// URL is the new location for push and replace, and the current
	// location for state.
	URL string `json:"url,omitempty"`

	// State is the route state.
	State *router.RouteState `json:"state,omitempty"`

	// Code and Message describe an error.
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
