package router

import "github.com/vireo-web/vireo/http"

// Respond delivers the response of an exchange. It must be invoked exactly
// once per Handle call, synchronously or later, from any goroutine: the
// session marshals the value back onto its own goroutine before the stream is
// touched. Passing nil responds with an empty 200. Redundant invocations are
// ignored.
type Respond func(*http.Response)

// Router is the extension point the server dispatches parsed requests into.
// Implementations must convert their domain failures into response values
// themselves, as the session defines no recovery for a panicking handler.
//
// The bound instance is shared across all connections and is never mutated by
// the server, so any state a Router keeps needs its own synchronization.
type Router interface {
	Handle(request *http.Request, respond Respond)
}

// RouterFunc adapts an ordinary function to the Router interface.
type RouterFunc func(request *http.Request, respond Respond)

func (f RouterFunc) Handle(request *http.Request, respond Respond) {
	f(request, respond)
}
