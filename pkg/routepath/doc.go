// Package routepath holds the small path-level helpers shared by the route
// compiler, the URL builder and the browser bridge: recognizing trailing-slash
// pattern tokens and validating locations reported by a remote browser.
package routepath
