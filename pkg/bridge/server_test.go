package bridge

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/vango-dev/histroute/internal/errors"
	"github.com/vango-dev/histroute/pkg/router"
	"github.com/vango-dev/histroute/pkg/urlpattern"
)

func testRoutes() router.Routes {
	return router.MustRoutes(
		router.Entry{Name: "home", Route: router.Route{Pathname: "/"}},
		router.Entry{Name: "post", Route: router.Route{Pathname: "/posts/:id", Meta: "Post"}},
		router.Entry{Name: "about", Route: router.Route{Pathname: "/about"}},
	)
}

func newTestServer(t *testing.T, cfg *Config) (*Server, *httptest.Server) {
	t.Helper()
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.NewRegistry()
	}

	srv, err := New(testRoutes(), urlpattern.Compile, cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial() error: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msg ClientMessage) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("WriteJSON() error: %v", err)
	}
}

func receive(t *testing.T, conn *websocket.Conn) ServerMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg ServerMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON() error: %v", err)
	}
	return msg
}

func hello(t *testing.T, ts *httptest.Server, path string) (*websocket.Conn, ServerMessage) {
	t.Helper()
	conn := dial(t, ts)
	send(t, conn, ClientMessage{Type: TypeHello, URL: ts.URL + path})
	msg := receive(t, conn)
	if msg.Type != TypeState {
		t.Fatalf("first message = %+v, want state", msg)
	}
	return conn, msg
}

func TestHelloSendsState(t *testing.T) {
	_, ts := newTestServer(t, nil)

	_, msg := hello(t, ts, "/posts/7?tab=comments#top")

	if msg.Session == "" {
		t.Error("state should carry the session ID")
	}
	if msg.State == nil {
		t.Fatal("state message without state")
	}
	if msg.State.Name != "post" || msg.State.Is404 {
		t.Errorf("state = %+v, want post", msg.State)
	}
	if msg.State.Params["id"] != "7" {
		t.Errorf("params = %v", msg.State.Params)
	}
	if msg.State.QueryParams["tab"] != "comments" {
		t.Errorf("queryParams = %v", msg.State.QueryParams)
	}
	if msg.State.Hash != "top" {
		t.Errorf("hash = %q, want top", msg.State.Hash)
	}
}

func TestNavigatePushesThenSendsState(t *testing.T) {
	_, ts := newTestServer(t, nil)
	conn, _ := hello(t, ts, "/")

	send(t, conn, ClientMessage{Type: TypeNavigate, Route: "post", Params: map[string]any{"id": 8}})

	push := receive(t, conn)
	if push.Type != TypePush || push.URL != ts.URL+"/posts/8" {
		t.Fatalf("got %+v, want push of /posts/8", push)
	}
	state := receive(t, conn)
	if state.Type != TypeState || state.State.Name != "post" || state.State.Params["id"] != "8" {
		t.Fatalf("got %+v, want post state", state)
	}

	send(t, conn, ClientMessage{Type: TypeNavigate, Route: "about", Replace: true})
	if msg := receive(t, conn); msg.Type != TypeReplace {
		t.Fatalf("got %+v, want replace", msg)
	}
	if msg := receive(t, conn); msg.State == nil || msg.State.Name != "about" {
		t.Fatalf("got %+v, want about state", msg)
	}
}

func TestPopState(t *testing.T) {
	_, ts := newTestServer(t, nil)
	conn, _ := hello(t, ts, "/about")

	send(t, conn, ClientMessage{Type: TypePopState, URL: "/missing"})
	msg := receive(t, conn)
	if msg.Type != TypeState || !msg.State.Is404 {
		t.Fatalf("got %+v, want 404 state", msg)
	}
	if msg.URL != ts.URL+"/missing" {
		t.Errorf("url = %q", msg.URL)
	}
}

func TestRejectedMessages(t *testing.T) {
	_, ts := newTestServer(t, nil)
	conn, _ := hello(t, ts, "/")

	tests := []struct {
		name string
		msg  ClientMessage
		code string
	}{
		{"cross origin", ClientMessage{Type: TypePopState, URL: "https://evil.example/"}, errors.CodeInvalidLocation},
		{"backslash", ClientMessage{Type: TypePopState, URL: "/a%5Cb"}, errors.CodeInvalidLocation},
		{"unknown route", ClientMessage{Type: TypeNavigate, Route: "nope"}, errors.CodeUnknownRoute},
		{"second hello", ClientMessage{Type: TypeHello, URL: "/"}, errors.CodeInvalidMessage},
		{"unknown type", ClientMessage{Type: "reload"}, errors.CodeInvalidMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			send(t, conn, tt.msg)
			msg := receive(t, conn)
			if msg.Type != TypeError || msg.Code != tt.code {
				t.Errorf("got %+v, want error %s", msg, tt.code)
			}
		})
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	if msg := receive(t, conn); msg.Code != errors.CodeInvalidMessage {
		t.Errorf("got %+v, want E302", msg)
	}

	// The session keeps working after rejections.
	send(t, conn, ClientMessage{Type: TypePopState, URL: "/about"})
	if msg := receive(t, conn); msg.State == nil || msg.State.Name != "about" {
		t.Errorf("got %+v, want about state", msg)
	}
}

func TestHelloRejected(t *testing.T) {
	_, ts := newTestServer(t, nil)

	tests := []struct {
		name string
		msg  ClientMessage
		code string
	}{
		{"not hello", ClientMessage{Type: TypePopState, URL: "/"}, errors.CodeInvalidMessage},
		{"cross origin", ClientMessage{Type: TypeHello, URL: "https://evil.example/"}, errors.CodeInvalidLocation},
		{"empty url", ClientMessage{Type: TypeHello}, errors.CodeInvalidLocation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := dial(t, ts)
			send(t, conn, tt.msg)
			msg := receive(t, conn)
			if msg.Type != TypeError || msg.Code != tt.code {
				t.Errorf("got %+v, want error %s", msg, tt.code)
			}
			_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
			if _, _, err := conn.ReadMessage(); err == nil {
				t.Error("connection should be closed after a rejected hello")
			}
		})
	}
}

func TestBaseOverridesRequestHost(t *testing.T) {
	base, _ := url.Parse("https://app.example")
	_, ts := newTestServer(t, &Config{Base: base})

	conn := dial(t, ts)
	send(t, conn, ClientMessage{Type: TypeHello, URL: "https://app.example/about"})
	msg := receive(t, conn)
	if msg.Type != TypeState || msg.State.Name != "about" {
		t.Fatalf("got %+v, want about state", msg)
	}

	send(t, conn, ClientMessage{Type: TypePopState, URL: ts.URL + "/"})
	if msg := receive(t, conn); msg.Code != errors.CodeInvalidLocation {
		t.Errorf("got %+v, want E301 for the test server origin", msg)
	}
}

func getJSON(t *testing.T, target string, v any) int {
	t.Helper()
	resp, err := http.Get(target)
	if err != nil {
		t.Fatalf("GET %s: %v", target, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", target, err)
		}
	}
	return resp.StatusCode
}

func TestRoutesEndpoint(t *testing.T) {
	_, ts := newTestServer(t, nil)

	var routes []routeInfo
	if code := getJSON(t, ts.URL+"/routes", &routes); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if len(routes) != 3 {
		t.Fatalf("got %d routes, want 3", len(routes))
	}
	names := []router.RouteName{routes[0].Name, routes[1].Name, routes[2].Name}
	if names[0] != "home" || names[1] != "post" || names[2] != "about" {
		t.Errorf("order = %v", names)
	}
	if routes[1].Pattern != "/posts/:id{/}?" {
		t.Errorf("pattern = %q, want normalized pathname", routes[1].Pattern)
	}
	if routes[1].Meta != "Post" {
		t.Errorf("meta = %v", routes[1].Meta)
	}
}

func TestStateEndpoints(t *testing.T) {
	srv, ts := newTestServer(t, nil)
	_, first := hello(t, ts, "/posts/1")
	conn, _ := hello(t, ts, "/about")

	var states []sessionState
	if code := getJSON(t, ts.URL+"/state", &states); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if len(states) != 2 {
		t.Fatalf("got %d sessions, want 2", len(states))
	}

	var one sessionState
	if code := getJSON(t, ts.URL+"/state/"+first.Session, &one); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if one.State.Name != "post" || one.URL != ts.URL+"/posts/1" {
		t.Errorf("session state = %+v", one)
	}

	if code := getJSON(t, ts.URL+"/state/nope", &one); code != http.StatusNotFound {
		t.Errorf("unknown session status = %d, want 404", code)
	}

	conn.Close()
	waitFor(t, func() bool { return len(srv.Sessions()) == 1 })
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "bridge_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	_, ts := newTestServer(t, &Config{Gatherer: reg})

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "bridge_test_total 1") {
		t.Errorf("metrics output missing counter:\n%s", body)
	}
}

func TestShutdown(t *testing.T) {
	srv, ts := newTestServer(t, nil)
	conn, _ := hello(t, ts, "/")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error: %v", err)
	}
	if n := len(srv.Sessions()); n != 0 {
		t.Errorf("%d sessions after Shutdown", n)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Errorf("read error = %v, want going-away close", err)
	}
}

func TestNewRejectsBadTable(t *testing.T) {
	bad := router.MustRoutes(router.Entry{Name: "bad", Route: router.Route{Pathname: "/:"}})
	if _, err := New(bad, urlpattern.Compile, nil); errors.Code(err) != errors.CodeInvalidPattern {
		t.Errorf("New() error = %v, want E103", err)
	}
}

func TestCheckOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://app.example/ws", nil)
	if !SameOriginCheck(req) {
		t.Error("request without Origin should pass")
	}

	req.Header.Set("Origin", "http://app.example")
	if !SameOriginCheck(req) {
		t.Error("same origin should pass")
	}

	req.Header.Set("Origin", "https://other.example")
	if SameOriginCheck(req) {
		t.Error("cross origin should fail")
	}
	if !AllowOrigins("https://other.example")(req) {
		t.Error("listed origin should pass")
	}
	if AllowOrigins("https://third.example")(req) {
		t.Error("unlisted origin should fail")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
