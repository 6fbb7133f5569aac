package router

import (
	"maps"
	"net/url"
	"slices"

	"github.com/vango-dev/histroute/pkg/urlpattern"
)

// RouteName is the unique key of a route in a Routes table.
type RouteName string

// Route describes how one named route matches a URL.
type Route struct {
	// Pathname is the pathname template (e.g., "/users/:id"). Required.
	Pathname string `json:"pathname" yaml:"pathname"`

	// Search is the search template. Empty matches any query string.
	Search string `json:"search,omitempty" yaml:"search,omitempty"`

	// Hash is the hash template. Empty matches any fragment.
	Hash string `json:"hash,omitempty" yaml:"hash,omitempty"`

	// Normalize controls trailing-slash normalization. nil means true.
	Normalize *bool `json:"normalize,omitempty" yaml:"normalize,omitempty"`

	// Ignore excludes the route from current-route selection. Its match
	// detail is still computed.
	Ignore bool `json:"ignore,omitempty" yaml:"ignore,omitempty"`

	// Meta is carried through unmodified.
	Meta any `json:"meta,omitempty" yaml:"meta,omitempty"`
}

// ShouldNormalize reports whether the pathname gets a trailing-slash token
// appended before compiling.
func (r Route) ShouldNormalize() bool {
	return r.Normalize == nil || *r.Normalize
}

// CompiledRoute is a Route together with its compiled pattern.
type CompiledRoute struct {
	Route

	// Name is the route's key in the table.
	Name RouteName `json:"name"`

	// Pattern is the compiled matcher. Its Pathname is the normalized
	// pathname template.
	Pattern urlpattern.Pattern `json:"-"`
}

// CompiledRoutes is a compiled table in declaration order.
type CompiledRoutes []CompiledRoute

// Get returns the compiled route with the given name.
func (c CompiledRoutes) Get(name RouteName) (CompiledRoute, bool) {
	for _, r := range c {
		if r.Name == name {
			return r, true
		}
	}
	return CompiledRoute{}, false
}

// MatchDetail is the outcome of testing the current URL against one route.
type MatchDetail struct {
	CompiledRoute

	// IsMatch reports whether the URL matches the route's pattern.
	IsMatch bool `json:"isMatch"`

	// Detail holds the captures. It is nil when IsMatch is false.
	Detail *urlpattern.Result `json:"detail,omitempty"`
}

func (d MatchDetail) clone() MatchDetail {
	d.Detail = d.Detail.Clone()
	return d
}

// MatchDetails holds one MatchDetail per route in declaration order.
type MatchDetails []MatchDetail

// Get returns the match detail for the given route name.
func (m MatchDetails) Get(name RouteName) (MatchDetail, bool) {
	for _, d := range m {
		if d.Name == name {
			return d, true
		}
	}
	return MatchDetail{}, false
}

func (m MatchDetails) clone() MatchDetails {
	if m == nil {
		return nil
	}
	c := make(MatchDetails, len(m))
	for i, d := range m {
		c[i] = d.clone()
	}
	return c
}

// CurrentDetail is the match detail of the selected current route.
type CurrentDetail struct {
	MatchDetail
}

// RouteState is the resolved location: which route is current and what it
// captured.
type RouteState struct {
	// Name is the current route, or "" when no route matches.
	Name RouteName `json:"name"`

	// Is404 is true exactly when no route is current.
	Is404 bool `json:"is404"`

	// Params are the pathname captures of the current route.
	Params map[string]string `json:"params"`

	// QueryParams are the URL's query parameters. For a repeated key the
	// last value wins.
	QueryParams map[string]string `json:"queryParams"`

	// Hash is the raw, still-escaped URL fragment without the leading "#".
	Hash string `json:"hash"`

	// Info is the current route's detail, nil on 404.
	Info *CurrentDetail `json:"-"`
}

// clone copies the maps and detail so callers cannot reach the cached value.
func (s RouteState) clone() RouteState {
	s.Params = maps.Clone(s.Params)
	s.QueryParams = maps.Clone(s.QueryParams)
	if s.Info != nil {
		s.Info = &CurrentDetail{MatchDetail: s.Info.MatchDetail.clone()}
	}
	return s
}

// SummaryState bundles every derived value of a controller.
type SummaryState struct {
	URL              *url.URL
	RouteData        Routes
	CompiledRoutes   CompiledRoutes
	MatchDetails     MatchDetails
	RouteState       RouteState
	CurrentRouteName RouteName
}

func (s SummaryState) clone() SummaryState {
	s.URL = cloneURL(s.URL)
	s.RouteData = s.RouteData.Clone()
	s.CompiledRoutes = slices.Clone(s.CompiledRoutes)
	s.MatchDetails = s.MatchDetails.clone()
	s.RouteState = s.RouteState.clone()
	return s
}

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

// HasCurrent reports whether a route is current.
func (s SummaryState) HasCurrent() bool {
	return s.CurrentRouteName != ""
}
