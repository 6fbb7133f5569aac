// Package middleware provides observability middleware for router
// controllers.
//
// This package includes:
//   - OpenTelemetry tracing of updates and redirects
//   - Prometheus metrics for navigations, resolutions and subscriptions
//
// # OpenTelemetry Middleware
//
// Every location update and redirect gets a span. The update a redirect
// triggers is recorded as a child of the redirect span.
//
//	c, err := router.New(routes, urlpattern.Compile, browser,
//	    router.WithMiddleware(middleware.OpenTelemetry()),
//	)
//
// Configure with options:
//
//	middleware.OpenTelemetry(
//	    middleware.WithTracerName("my-app"),
//	    middleware.WithIncludeURL(false),
//	    middleware.WithEventFilter(func(ev *router.Event) bool {
//	        return ev.Kind == router.EventRedirect
//	    }),
//	)
//
// # Prometheus Metrics
//
// The Prometheus middleware collects:
//   - histroute_navigations_total: Redirects by history mode and status
//   - histroute_route_resolutions_total: Location changes by resolved route
//   - histroute_not_found_total: Location changes no route matched
//   - histroute_subscriptions_active: Live route state subscriptions
//
//	c, err := router.New(routes, urlpattern.Compile, browser,
//	    router.WithMiddleware(middleware.Prometheus()),
//	)
//
// Then expose metrics:
//
//	http.Handle("/metrics", promhttp.Handler())
//
// Servers that create a controller per connection should create one
// Metrics with NewMetrics and install it on every controller.
package middleware
