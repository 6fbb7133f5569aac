package router

import (
	"maps"

	"github.com/vango-dev/histroute/internal/errors"
)

// Entry is one named route of a table.
type Entry struct {
	Name  RouteName
	Route Route
}

// Routes is an ordered route table. Declaration order decides which route
// wins when several match, so the table keeps insertion order.
//
// The zero value is an empty table ready for Add.
type Routes struct {
	entries []Entry
	index   map[RouteName]int
}

// NewRoutes builds a table from entries in order.
func NewRoutes(entries ...Entry) (Routes, error) {
	var r Routes
	for _, e := range entries {
		if err := r.Add(e.Name, e.Route); err != nil {
			return Routes{}, err
		}
	}
	return r, nil
}

// MustRoutes is NewRoutes that panics on error. It is meant for tables
// declared in code.
func MustRoutes(entries ...Entry) Routes {
	r, err := NewRoutes(entries...)
	if err != nil {
		panic(err)
	}
	return r
}

// Add appends a route. It fails for an empty or duplicate name and for a
// route without a pathname. Other copies of r are left unchanged.
func (r *Routes) Add(name RouteName, route Route) error {
	if name == "" {
		return errors.New(errors.CodeEmptyRouteName)
	}
	if _, ok := r.index[name]; ok {
		return errors.New(errors.CodeDuplicateRoute).
			WithDetailf("route %q is declared more than once", name).
			WithSuggestion("Rename one of the routes")
	}
	if route.Pathname == "" {
		return errors.New(errors.CodeEmptyPathname).
			WithDetailf("route %q", name)
	}

	// Copies of a table share storage, so Add never writes in place.
	index := make(map[RouteName]int, len(r.index)+1)
	maps.Copy(index, r.index)
	index[name] = len(r.entries)

	entries := make([]Entry, len(r.entries), len(r.entries)+1)
	copy(entries, r.entries)
	r.entries = append(entries, Entry{Name: name, Route: route})
	r.index = index
	return nil
}

// Get returns the route with the given name.
func (r Routes) Get(name RouteName) (Route, bool) {
	i, ok := r.index[name]
	if !ok {
		return Route{}, false
	}
	return r.entries[i].Route, true
}

// Has reports whether name is declared.
func (r Routes) Has(name RouteName) bool {
	_, ok := r.index[name]
	return ok
}

// Len returns the number of routes.
func (r Routes) Len() int {
	return len(r.entries)
}

// Names returns route names in declaration order.
func (r Routes) Names() []RouteName {
	names := make([]RouteName, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.Name
	}
	return names
}

// Entries returns a copy of the table's entries in declaration order.
func (r Routes) Entries() []Entry {
	return append([]Entry(nil), r.entries...)
}

// Clone returns an independent copy of the table.
func (r Routes) Clone() Routes {
	return Routes{
		entries: r.Entries(),
		index:   maps.Clone(r.index),
	}
}
