// Package router keeps reactive route state in sync with browser history.
//
// A route table is an ordered set of named URL patterns:
//
//	routes := router.MustRoutes(
//	    router.Entry{Name: "home", Route: router.Route{Pathname: "/"}},
//	    router.Entry{Name: "user", Route: router.Route{Pathname: "/users/:id"}},
//	    router.Entry{Name: "search", Route: router.Route{Pathname: "/search", Search: "q=:q"}},
//	)
//
// A Controller matches the browser's current location against every route
// and selects the current one:
//
//	c, err := router.New(routes, urlpattern.Compile, browser)
//	state := c.RouteState() // {Name: "user", Params: {"id": "42"}, ...}
//
// # Matching
//
// Each route is compiled once. Unless Normalize is false, a pathname that
// does not end in "/", "{/}" or "{/}?" gets "{/}?" appended so that both
// "/about" and "/about/" match. Empty search and hash templates match
// anything.
//
// The current route is the first route in declaration order that matches
// and is not marked Ignore. There is no specificity ranking: declare
// "/users/new" before "/users/:id". When nothing matches, RouteState.Is404
// is true.
//
// # Navigation
//
// Redirect builds a URL from the target route's pathname template, pushes
// or replaces a history entry and updates state synchronously:
//
//	err := c.Redirect("user", router.NewRedirectOptions(
//	    router.WithParams(map[string]any{"id": 7}),
//	    router.WithQuery(map[string]any{"tab": "posts"}),
//	))
//
// Back/forward navigations reach the controller through the browser's
// popstate notification.
//
// # Subscriptions
//
// WatchRouteState and WatchSummaryState call back immediately and after
// every location change. Callbacks see a fully updated snapshot.
//
//	stop := c.WatchRouteState(func(s router.RouteState) {
//	    log.Println("now on", s.Name)
//	})
//	defer stop()
//
// # Middleware
//
// Every update, redirect and subscription change passes through the
// middleware chain installed with WithMiddleware. The middleware package
// provides Prometheus and OpenTelemetry implementations.
package router
