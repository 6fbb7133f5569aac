package bridge

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vango-dev/histroute/internal/errors"
	"github.com/vango-dev/histroute/pkg/routepath"
	"github.com/vango-dev/histroute/pkg/router"
	"github.com/vango-dev/histroute/pkg/urlpattern"
)

// Server accepts bridge sessions and exposes their state over HTTP.
type Server struct {
	routes   router.Routes
	compiled router.CompiledRoutes
	compiler urlpattern.Compiler
	config   *Config
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
	closed   bool
}

// New creates a Server for routes. The table is compiled once here so a bad
// pattern fails at startup rather than on the first connection.
func New(routes router.Routes, compiler urlpattern.Compiler, config *Config) (*Server, error) {
	config = config.withDefaults()

	compiled, err := router.Compile(routes, compiler)
	if err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "bridge")

	return &Server{
		routes:   routes.Clone(),
		compiled: compiled,
		compiler: compiler,
		config:   config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		logger:   logger,
		sessions: make(map[string]*Session),
	}, nil
}

// Handler returns the HTTP handler:
//
//	GET /ws          websocket endpoint
//	GET /routes      route table in declaration order
//	GET /state       state of every session
//	GET /state/{id}  state of one session
//	GET /metrics     Prometheus metrics
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/ws", s.HandleWebSocket)
	r.Get("/routes", s.handleRoutes)
	r.Get("/state", s.handleStates)
	r.Get("/state/{id}", s.handleState)
	r.Handle("/metrics", promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
	return r
}

// HandleWebSocket upgrades the request and serves the session until the
// connection closes.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	base := s.sessionBase(r)
	start, err := s.readHello(conn, base)
	if err != nil {
		he := errors.FromError(err, errors.CodeInvalidMessage)
		s.logger.Warn("hello rejected", "code", he.Code, "error", err, "remote", r.RemoteAddr)
		_ = writeMessage(conn, s.config.WriteTimeout, ServerMessage{Type: TypeError, Code: he.Code, Message: he.Error()})
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	sess := &Session{
		ID:        uuid.NewString(),
		conn:      conn,
		base:      base,
		config:    s.config,
		location:  start,
		createdAt: time.Now(),
	}
	sess.logger = s.logger.With("session", sess.ID)

	sess.ctrl, err = router.New(s.routes, s.compiler, sess,
		router.WithLogger(sess.logger),
		router.WithMiddleware(s.config.Middleware...),
		router.WithContext(r.Context()),
	)
	if err != nil {
		s.logger.Error("controller setup failed", "error", err)
		return
	}

	if !s.register(sess) {
		sess.ctrl.Destroy()
		return
	}
	defer s.unregister(sess)

	sess.logger.Info("session started", "url", start.String(), "remote", r.RemoteAddr)
	sess.run()
	sess.logger.Info("session ended")
}

// sessionBase is the origin a session's locations must be on.
func (s *Server) sessionBase(r *http.Request) *url.URL {
	if s.config.Base != nil {
		return &url.URL{Scheme: s.config.Base.Scheme, Host: s.config.Base.Host}
	}
	if origin := r.Header.Get("Origin"); origin != "" {
		if u, err := url.Parse(origin); err == nil && u.Host != "" {
			return &url.URL{Scheme: u.Scheme, Host: u.Host}
		}
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return &url.URL{Scheme: scheme, Host: r.Host}
}

// readHello waits for the opening message and validates its location.
func (s *Server) readHello(conn *websocket.Conn, base *url.URL) (*url.URL, error) {
	_ = conn.SetReadDeadline(time.Now().Add(s.config.HelloTimeout))

	_, data, err := conn.ReadMessage()
	if err != nil {
		return nil, errors.New(errors.CodeInvalidMessage).
			WithDetail("no hello received").
			Wrap(err)
	}

	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, errors.New(errors.CodeInvalidMessage).Wrap(err)
	}
	if msg.Type != TypeHello {
		return nil, errors.New(errors.CodeInvalidMessage).
			WithDetailf("expected hello, got %q", msg.Type)
	}

	u, err := routepath.ValidateLocation(base, msg.URL)
	if err != nil {
		return nil, errors.New(errors.CodeInvalidLocation).
			WithDetailf("%q", msg.URL).
			Wrap(err)
	}
	return u, nil
}

func (s *Server) register(sess *Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.sessions[sess.ID] = sess
	return true
}

func (s *Server) unregister(sess *Session) {
	s.mu.Lock()
	delete(s.sessions, sess.ID)
	s.mu.Unlock()
}

// Session returns the live session with the given ID.
func (s *Server) Session(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// Sessions returns the live sessions, oldest first.
func (s *Server) Sessions() []*Session {
	s.mu.RLock()
	out := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].createdAt.Equal(out[j].createdAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].createdAt.Before(out[j].createdAt)
	})
	return out
}

// Shutdown closes every session and refuses new ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.Close()
	}

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		s.mu.RLock()
		n := len(s.sessions)
		s.mu.RUnlock()
		if n == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

type routeInfo struct {
	Name     router.RouteName `json:"name"`
	Pathname string           `json:"pathname"`
	Pattern  string           `json:"pattern"`
	Search   string           `json:"search,omitempty"`
	Hash     string           `json:"hash,omitempty"`
	Ignore   bool             `json:"ignore,omitempty"`
	Meta     any              `json:"meta,omitempty"`
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	out := make([]routeInfo, 0, len(s.compiled))
	for _, c := range s.compiled {
		out = append(out, routeInfo{
			Name:     c.Name,
			Pathname: c.Route.Pathname,
			Pattern:  c.Pattern.Pathname(),
			Search:   c.Search,
			Hash:     c.Hash,
			Ignore:   c.Ignore,
			Meta:     c.Meta,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type sessionState struct {
	ID    string            `json:"id"`
	URL   string            `json:"url"`
	State router.RouteState `json:"state"`
}

func snapshotOf(sess *Session) sessionState {
	st, u := sess.Snapshot()
	return sessionState{ID: sess.ID, URL: u, State: st}
}

func (s *Server) handleStates(w http.ResponseWriter, r *http.Request) {
	sessions := s.Sessions()
	out := make([]sessionState, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, snapshotOf(sess))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.Session(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, snapshotOf(sess))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
