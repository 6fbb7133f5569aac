package router

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/vango-dev/histroute/internal/errors"
	"github.com/vango-dev/histroute/pkg/history"
	"github.com/vango-dev/histroute/pkg/reactive"
	"github.com/vango-dev/histroute/pkg/urlpattern"
)

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller's logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMiddleware appends middleware to the controller's event chain.
func WithMiddleware(mw ...Middleware) Option {
	return func(c *Controller) {
		c.middleware = append(c.middleware, mw...)
	}
}

// WithContext sets the base context events are dispatched with.
func WithContext(ctx context.Context) Option {
	return func(c *Controller) {
		if ctx != nil {
			c.ctx = ctx
		}
	}
}

// Controller keeps reactive route state in sync with a browser's history.
//
// All derived state is computed lazily from a single current-URL signal
// and cached until the location changes. A Controller is not safe for
// concurrent use; drive it from one goroutine.
type Controller struct {
	rt      *reactive.Runtime
	owner   *reactive.Owner
	browser history.Browser
	logger  *slog.Logger
	ctx     context.Context

	middleware []Middleware
	patterns   urlpattern.Compiler

	table    *reactive.Signal[Routes]
	location *reactive.Signal[*url.URL]

	compiled *reactive.Memo[CompiledRoutes]
	details  *reactive.Memo[MatchDetails]
	current  *reactive.Memo[RouteName]
	state    *reactive.Memo[RouteState]
	summary  *reactive.Memo[SummaryState]

	watchers  []*watcher
	destroyed bool
}

// watcher is one WatchRouteState/WatchSummaryState subscription.
type watcher struct {
	effect   *reactive.Effect
	disposed bool
}

// New creates a controller for routes, reading and writing browser.
//
// Every pattern is compiled up front; a pattern that fails to compile is
// reported here. The controller listens for popstate until Destroy is called.
//
// Example:
//
//	routes := router.MustRoutes(
//	    router.Entry{Name: "home", Route: router.Route{Pathname: "/"}},
//	    router.Entry{Name: "user", Route: router.Route{Pathname: "/users/:id"}},
//	)
//	c, err := router.New(routes, urlpattern.Compile, browser)
//	if err != nil {
//	    return err
//	}
//	defer c.Destroy()
//
//	if c.On("user") {
//	    fmt.Println(c.RouteState().Params["id"])
//	}
func New(routes Routes, patterns urlpattern.Compiler, browser history.Browser, opts ...Option) (*Controller, error) {
	if browser == nil {
		return nil, errors.Newf(errors.CategoryRoute, "router: nil browser")
	}
	if _, err := Compile(routes, patterns); err != nil {
		return nil, err
	}

	rt := reactive.NewRuntime()
	c := &Controller{
		rt:       rt,
		owner:    reactive.NewOwner(rt),
		browser:  browser,
		logger:   slog.Default(),
		ctx:      context.Background(),
		patterns: patterns,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.table = reactive.NewSignal(rt, routes.Clone())
	c.location = reactive.NewSignal(rt, readLocation(browser)).WithEquals(sameURL)

	c.compiled = reactive.NewMemo(rt, c.compileRoutes)
	c.details = reactive.NewMemo(rt, c.matchDetails)
	c.current = reactive.NewMemo(rt, c.currentRouteName)
	c.state = reactive.NewMemo(rt, c.routeState)
	c.summary = reactive.NewMemo(rt, c.summaryState)

	c.owner.OnCleanup(browser.OnPopState(c.Update))

	c.logger.Debug("router controller created",
		"routes", routes.Len(),
		"url", c.location.Peek().String(),
	)
	return c, nil
}

func (c *Controller) compileRoutes() CompiledRoutes {
	compiled, err := Compile(c.table.Get(), c.patterns)
	if err != nil {
		// The table is immutable and compiled successfully in New.
		panic(err)
	}
	return compiled
}

func (c *Controller) matchDetails() MatchDetails {
	routes := c.compiled.Get()
	u := c.location.Get()

	details := make(MatchDetails, len(routes))
	for i, r := range routes {
		d := MatchDetail{CompiledRoute: r}
		if r.Pattern.Test(u) {
			d.IsMatch = true
			d.Detail = r.Pattern.Exec(u)
		}
		details[i] = d
	}
	return details
}

// currentRouteName picks the first non-ignored matching route in
// declaration order. Declaration order is the only tie-break.
func (c *Controller) currentRouteName() RouteName {
	for _, d := range c.details.Get() {
		if d.Ignore {
			continue
		}
		if d.IsMatch {
			return d.Name
		}
	}
	return ""
}

func (c *Controller) routeState() RouteState {
	name := c.current.Get()
	u := c.location.Get()

	state := RouteState{
		Name:        name,
		Is404:       name == "",
		Params:      map[string]string{},
		QueryParams: queryParams(u),
		Hash:        u.EscapedFragment(),
	}
	if name == "" {
		return state
	}

	d, _ := c.details.Get().Get(name)
	if d.Detail != nil {
		for k, v := range d.Detail.Pathname.Groups {
			state.Params[k] = v
		}
	}
	state.Info = &CurrentDetail{MatchDetail: d}
	return state
}

func (c *Controller) summaryState() SummaryState {
	return SummaryState{
		URL:              c.location.Get(),
		RouteData:        c.table.Get(),
		CompiledRoutes:   c.compiled.Get(),
		MatchDetails:     c.details.Get(),
		RouteState:       c.state.Get(),
		CurrentRouteName: c.current.Get(),
	}
}

// SummaryState returns every derived value for the current location.
func (c *Controller) SummaryState() SummaryState {
	return c.summary.Get().clone()
}

// RouteState returns the resolved current route.
func (c *Controller) RouteState() RouteState {
	return c.state.Get().clone()
}

// URL returns the current location.
func (c *Controller) URL() *url.URL {
	return cloneURL(c.location.Get())
}

// Routes returns the route table the controller was built with.
func (c *Controller) Routes() Routes {
	return c.table.Get()
}

// Detail returns the match detail of the named route.
func (c *Controller) Detail(name RouteName) (MatchDetail, bool) {
	d, ok := c.details.Get().Get(name)
	return d.clone(), ok
}

// MustDetail is Detail for names known to be in the table. It panics with
// an E101 error for an unknown name.
func (c *Controller) MustDetail(name RouteName) MatchDetail {
	d, ok := c.Detail(name)
	if !ok {
		panic(unknownRoute(name))
	}
	return d
}

// CurrentDetail returns the detail of the current route, or false on 404.
func (c *Controller) CurrentDetail() (CurrentDetail, bool) {
	name := c.current.Get()
	if name == "" {
		return CurrentDetail{}, false
	}
	d, _ := c.details.Get().Get(name)
	return CurrentDetail{MatchDetail: d.clone()}, true
}

// On reports whether name is the current route.
func (c *Controller) On(name RouteName) bool {
	if name == "" || c.current.Get() != name {
		return false
	}
	d, ok := c.details.Get().Get(name)
	return ok && d.IsMatch
}

// OnOneOf reports whether any of names is the current route.
func (c *Controller) OnOneOf(names ...RouteName) bool {
	for _, name := range names {
		if c.On(name) {
			return true
		}
	}
	return false
}

// OnRouteMatch reports whether the named route matches the current location,
// whether or not it is the current route. It is false for an unknown name.
func (c *Controller) OnRouteMatch(name RouteName) bool {
	d, ok := c.details.Get().Get(name)
	return ok && d.IsMatch
}

// Update re-reads the browser location. Calling it when the location has
// not changed has no effect on state or subscribers.
func (c *Controller) Update() {
	c.update(c.ctx)
}

func (c *Controller) update(ctx context.Context) {
	u := readLocation(c.browser)
	ev := &Event{Kind: EventUpdate, URL: u, ctx: ctx}
	_ = c.dispatch(ev, func() error {
		ev.From = c.current.Peek()
		ev.Changed = !sameURL(c.location.Peek(), u)
		c.location.Set(u)
		ev.To = c.current.Peek()

		if ev.Changed {
			c.logger.Debug("location updated",
				"url", u.String(),
				"from", string(ev.From),
				"to", string(ev.To),
			)
		}
		return nil
	})
}

// Redirect navigates to the named route. The URL is built from the route's
// pathname template and opts, pushed (or replaced when opts.Replace is set)
// onto the browser history, and state is updated before Redirect returns.
//
// An unknown route name returns an E101 error and leaves history untouched.
func (c *Controller) Redirect(name RouteName, opts RedirectOptions) error {
	return c.redirect(name, func(URLOptions) RedirectOptions { return opts })
}

// RedirectFunc is Redirect with options computed from the current route
// state. fn receives the current params, query params and hash.
//
//	// Keep the query, switch the tab.
//	c.RedirectFunc("settings", func(cur router.URLOptions) router.RedirectOptions {
//	    cur.Params = map[string]any{"tab": "billing"}
//	    return router.RedirectOptions{URLOptions: cur}
//	})
func (c *Controller) RedirectFunc(name RouteName, fn func(current URLOptions) RedirectOptions) error {
	return c.redirect(name, fn)
}

func (c *Controller) redirect(name RouteName, resolve func(URLOptions) RedirectOptions) error {
	route, ok := c.compiled.Peek().Get(name)
	if !ok {
		err := unknownRoute(name)
		c.logger.Warn("redirect to unknown route", "route", string(name))
		ev := &Event{Kind: EventRedirect, Route: name, ctx: c.ctx}
		return c.dispatch(ev, func() error { return err })
	}

	opts := resolve(c.currentOptions())
	u := BuildURL(c.origin(), route.Pattern.Pathname(), opts.URLOptions)

	mode := history.ModePush
	if opts.Replace {
		mode = history.ModeReplace
	}

	ev := &Event{Kind: EventRedirect, Route: name, URL: u, Mode: mode, ctx: c.ctx}
	return c.dispatch(ev, func() error {
		ev.From = c.current.Peek()
		before := c.location.Peek()

		mode.Apply(c.browser, u)
		c.update(ev.Context())

		ev.To = c.current.Peek()
		ev.Changed = !sameURL(before, c.location.Peek())

		c.logger.Debug("redirected",
			"route", string(name),
			"url", u.String(),
			"mode", mode.String(),
		)
		return nil
	})
}

// Href returns the absolute URL of the named route without navigating.
func (c *Controller) Href(name RouteName, opts URLOptions) (string, error) {
	route, ok := c.compiled.Peek().Get(name)
	if !ok {
		return "", unknownRoute(name)
	}
	return BuildURL(c.origin(), route.Pattern.Pathname(), opts).String(), nil
}

// WatchRouteState calls fn with the route state now and after every
// location change. The returned function stops the subscription; calling
// it again is a no-op.
func (c *Controller) WatchRouteState(fn func(RouteState)) (dispose func()) {
	return c.watch(func() {
		state := c.state.Get().clone()
		c.rt.Untracked(func() { fn(state) })
	})
}

// WatchSummaryState is WatchRouteState for the full summary.
func (c *Controller) WatchSummaryState(fn func(SummaryState)) (dispose func()) {
	return c.watch(func() {
		summary := c.summary.Get().clone()
		c.rt.Untracked(func() { fn(summary) })
	})
}

func (c *Controller) watch(fn func()) func() {
	w := &watcher{}
	w.effect = c.owner.Watch(fn)
	if w.effect.Disposed() {
		// Destroyed controller: nothing to watch.
		return func() {}
	}
	c.watchers = append(c.watchers, w)
	c.emit(EventWatch)

	return func() { c.unwatch(w) }
}

func (c *Controller) unwatch(w *watcher) {
	if w.disposed {
		return
	}
	w.disposed = true
	w.effect.Dispose()
	for i, existing := range c.watchers {
		if existing == w {
			c.watchers = append(c.watchers[:i], c.watchers[i+1:]...)
			break
		}
	}
	c.emit(EventUnwatch)
}

// Watchers returns the number of live subscriptions.
func (c *Controller) Watchers() int {
	return len(c.watchers)
}

// Destroy stops all subscriptions and the popstate listener. The controller
// keeps answering queries with its last state. Destroy may be called more
// than once.
func (c *Controller) Destroy() {
	if c.destroyed {
		return
	}
	c.destroyed = true

	for _, w := range append([]*watcher(nil), c.watchers...) {
		c.unwatch(w)
	}
	c.owner.Dispose()

	c.logger.Debug("router controller destroyed")
}

// Destroyed reports whether Destroy has been called.
func (c *Controller) Destroyed() bool {
	return c.destroyed
}

func (c *Controller) emit(kind EventKind) {
	ev := &Event{Kind: kind, ctx: c.ctx}
	_ = c.dispatch(ev, func() error { return nil })
}

func (c *Controller) dispatch(ev *Event, handler func() error) error {
	return ComposeMiddleware(ev, c.middleware, handler)
}

// currentOptions returns the current state as URL options.
func (c *Controller) currentOptions() URLOptions {
	state := c.state.Peek()
	opts := URLOptions{
		Params:      make(map[string]any, len(state.Params)),
		QueryParams: make(map[string]any, len(state.QueryParams)),
		Hash:        state.Hash,
	}
	for k, v := range state.Params {
		opts.Params[k] = v
	}
	for k, v := range state.QueryParams {
		opts.QueryParams[k] = v
	}
	return opts
}

// origin is the base URLs are built against.
func (c *Controller) origin() *url.URL {
	u := c.location.Peek()
	return &url.URL{Scheme: u.Scheme, Host: u.Host}
}

func unknownRoute(name RouteName) *errors.HistrouteError {
	return errors.New(errors.CodeUnknownRoute).
		WithDetailf("route %q is not in the route table", name)
}

// readLocation returns the browser location, never nil.
func readLocation(b history.Browser) *url.URL {
	if u := b.Location(); u != nil {
		return u
	}
	return &url.URL{}
}

// sameURL compares locations by their serialized form.
func sameURL(a, b *url.URL) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.String() == b.String()
}

// queryParams flattens u's query. For a repeated key the last value wins.
func queryParams(u *url.URL) map[string]string {
	params := map[string]string{}
	for k, vs := range u.Query() {
		if len(vs) > 0 {
			params[k] = vs[len(vs)-1]
		}
	}
	return params
}
