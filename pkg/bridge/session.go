package bridge

import (
	"encoding/json"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vango-dev/histroute/internal/errors"
	"github.com/vango-dev/histroute/pkg/history"
	"github.com/vango-dev/histroute/pkg/routepath"
	"github.com/vango-dev/histroute/pkg/router"
)

// Session mirrors one browser tab. It implements history.Browser: pushes and
// replaces made by its controller are forwarded to the client, and popstate
// messages from the client fire its popstate listeners.
//
// Everything except Snapshot and Close runs on the session's own goroutine,
// which also owns the controller.
type Session struct {
	ID string

	conn   *websocket.Conn
	base   *url.URL
	config *Config
	logger *slog.Logger

	location  *url.URL
	listeners []*popListener
	nextID    int
	ctrl      *router.Controller

	mu        sync.Mutex
	snapshot  router.RouteState
	url       string
	createdAt time.Time
	closeOnce sync.Once
}

type popListener struct {
	id int
	fn func()
}

var _ history.Browser = (*Session)(nil)

// Location implements history.Browser.
func (s *Session) Location() *url.URL {
	c := *s.location
	return &c
}

// PushState implements history.Browser.
func (s *Session) PushState(u *url.URL) {
	s.navigate(history.ModePush, u)
}

// ReplaceState implements history.Browser.
func (s *Session) ReplaceState(u *url.URL) {
	s.navigate(history.ModeReplace, u)
}

func (s *Session) navigate(mode history.Mode, u *url.URL) {
	c := *u
	s.location = &c
	msgType := TypePush
	if mode == history.ModeReplace {
		msgType = TypeReplace
	}
	s.send(ServerMessage{Type: msgType, URL: u.String()})
}

// OnPopState implements history.Browser.
func (s *Session) OnPopState(fn func()) func() {
	s.nextID++
	l := &popListener{id: s.nextID, fn: fn}
	s.listeners = append(s.listeners, l)
	return func() {
		for i, other := range s.listeners {
			if other.id == l.id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *Session) popState(u *url.URL) {
	s.location = u
	listeners := make([]*popListener, len(s.listeners))
	copy(listeners, s.listeners)
	for _, l := range listeners {
		l.fn()
	}
}

// Snapshot returns the last route state sent to the client and its URL.
// It is safe to call from any goroutine.
func (s *Session) Snapshot() (router.RouteState, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot, s.url
}

// CreatedAt returns when the session completed its hello.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// Close closes the connection. The session goroutine then destroys the
// controller. It is safe to call from any goroutine.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		deadline := time.Now().Add(s.config.WriteTimeout)
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			deadline)
		_ = s.conn.Close()
	})
}

// run serves the session until the connection ends.
func (s *Session) run() {
	defer s.ctrl.Destroy()

	s.ctrl.WatchRouteState(func(st router.RouteState) {
		u := s.location.String()
		s.mu.Lock()
		s.snapshot = st
		s.url = u
		s.mu.Unlock()
		s.send(ServerMessage{Type: TypeState, Session: s.ID, URL: u, State: &st})
	})

	for {
		if s.config.IdleTimeout > 0 {
			_ = s.conn.SetReadDeadline(time.Now().Add(s.config.IdleTimeout))
		}

		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.reject(errors.New(errors.CodeInvalidMessage).Wrap(err))
			continue
		}
		s.handle(msg)
	}
}

func (s *Session) handle(msg ClientMessage) {
	switch msg.Type {
	case TypePopState:
		u, err := routepath.ValidateLocation(s.base, msg.URL)
		if err != nil {
			s.reject(errors.New(errors.CodeInvalidLocation).
				WithDetailf("%q", msg.URL).
				Wrap(err))
			return
		}
		s.popState(u)

	case TypeNavigate:
		if err := s.ctrl.Redirect(router.RouteName(msg.Route), msg.redirectOptions()); err != nil {
			s.reject(err)
		}

	case TypeHello:
		s.reject(errors.New(errors.CodeInvalidMessage).
			WithDetail("session already started"))

	default:
		s.reject(errors.New(errors.CodeInvalidMessage).
			WithDetailf("unknown message type %q", msg.Type))
	}
}

// reject logs err and reports it to the client.
func (s *Session) reject(err error) {
	he := errors.FromError(err, errors.CodeInvalidMessage)
	s.logger.Warn("message rejected", "code", he.Code, "error", err)
	s.send(ServerMessage{Type: TypeError, Code: he.Code, Message: he.Error()})
}

func (s *Session) send(msg ServerMessage) {
	if err := writeMessage(s.conn, s.config.WriteTimeout, msg); err != nil {
		s.logger.Debug("write error", "error", err)
	}
}

func writeMessage(conn *websocket.Conn, timeout time.Duration, msg ServerMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(timeout))
	return conn.WriteMessage(websocket.TextMessage, data)
}
