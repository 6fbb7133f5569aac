// Package errors provides structured error values for histroute.
//
// Every error carries a code (e.g., "E101") that maps to a category, a short
// message and a longer explanation. Callers add the specifics:
//
//	err := errors.New(errors.CodeUnknownRoute).
//	    WithDetail(fmt.Sprintf("route %q is not in the route table", name)).
//	    WithSuggestion("Check the route name against the table passed to router.New")
//
// # Error Categories
//
//   - route: programmer errors against a route table (unknown or duplicate
//     names, invalid patterns)
//   - config: route table files and project configuration
//   - bridge: remote browser protocol errors
//   - cli: command line usage
//
// Errors support errors.Is and errors.As through Unwrap, and Is matches two
// *HistrouteError values by code.
package errors
