// Package bridge runs router controllers on the server for browsers
// connected over a websocket.
//
// Each connection is a Session. The page opens the socket and sends its
// location; the server builds a controller whose history.Browser is the
// session, and from then on the two sides mirror each other:
//
//	client → server
//	  {"type":"hello","url":"https://app.example/posts/7"}
//	  {"type":"popstate","url":"https://app.example/"}
//	  {"type":"navigate","route":"post","params":{"id":8},"replace":false}
//
//	server → client
//	  {"type":"state","session":"…","url":"…","state":{…}}
//	  {"type":"push","url":"https://app.example/posts/8"}
//	  {"type":"replace","url":"…"}
//	  {"type":"error","code":"E301","message":"…"}
//
// A state message follows every location change. A navigate produces a
// push (or replace) followed by a state. Locations reported by the client
// are validated with routepath.ValidateLocation and must stay on the
// session's origin.
//
// One goroutine serves each session and owns its controller. HTTP
// endpoints read session state through a mutex-guarded snapshot.
//
// # Usage
//
//	srv, err := bridge.New(routes, urlpattern.Compile, &bridge.Config{
//	    Middleware: []router.Middleware{middleware.Prometheus()},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	http.ListenAndServe(":3000", srv.Handler())
package bridge
