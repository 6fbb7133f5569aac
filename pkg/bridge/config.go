package bridge

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vango-dev/histroute/pkg/router"
)

// Config configures a bridge Server.
type Config struct {
	// Base is the origin every session's locations must be on. When nil,
	// the origin is taken from the upgrade request's Origin header, or
	// from its Host.
	Base *url.URL

	// ReadBufferSize is the websocket read buffer size in bytes.
	// Default: 4096.
	ReadBufferSize int

	// WriteBufferSize is the websocket write buffer size in bytes.
	// Default: 4096.
	WriteBufferSize int

	// CheckOrigin is called to validate the upgrade request origin.
	// Default: SameOriginCheck.
	CheckOrigin func(r *http.Request) bool

	// HelloTimeout is how long a new connection has to send its hello.
	// Default: 10s.
	HelloTimeout time.Duration

	// IdleTimeout closes a session that sends nothing for this long.
	// Zero disables it.
	IdleTimeout time.Duration

	// WriteTimeout bounds each message write.
	// Default: 10s.
	WriteTimeout time.Duration

	// Middleware is installed on every session's controller.
	Middleware []router.Middleware

	// Gatherer backs the /metrics endpoint.
	// Default: prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer

	// Logger receives connection lifecycle and protocol errors.
	// Default: slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     SameOriginCheck,
		HelloTimeout:    10 * time.Second,
		WriteTimeout:    10 * time.Second,
		Gatherer:        prometheus.DefaultGatherer,
	}
}

// withDefaults returns a copy of c with unset fields filled in.
func (c *Config) withDefaults() *Config {
	defaults := DefaultConfig()
	if c == nil {
		return defaults
	}
	out := *c
	if out.ReadBufferSize == 0 {
		out.ReadBufferSize = defaults.ReadBufferSize
	}
	if out.WriteBufferSize == 0 {
		out.WriteBufferSize = defaults.WriteBufferSize
	}
	if out.CheckOrigin == nil {
		out.CheckOrigin = defaults.CheckOrigin
	}
	if out.HelloTimeout == 0 {
		out.HelloTimeout = defaults.HelloTimeout
	}
	if out.WriteTimeout == 0 {
		out.WriteTimeout = defaults.WriteTimeout
	}
	if out.Gatherer == nil {
		out.Gatherer = defaults.Gatherer
	}
	return &out
}

// SameOriginCheck accepts upgrade requests whose Origin header matches the
// request host, or that carry no Origin header.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if r.Host == "" {
		return false
	}
	return originURL.Host == r.Host
}

// AllowOrigins accepts same-origin requests and requests from the listed
// origins (scheme://host[:port]).
func AllowOrigins(origins ...string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return func(r *http.Request) bool {
		if SameOriginCheck(r) {
			return true
		}
		return allowed[r.Header.Get("Origin")]
	}
}
