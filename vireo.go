package vireo

import (
	"net"
	"sync/atomic"

	"github.com/vireo-web/vireo/config"
	"github.com/vireo-web/vireo/http"
	"github.com/vireo-web/vireo/http/status"
	"github.com/vireo-web/vireo/internal/diag"
	"github.com/vireo-web/vireo/internal/initialize"
	httpserver "github.com/vireo-web/vireo/internal/server/http"
	"github.com/vireo-web/vireo/internal/server/tcp"
	"github.com/vireo-web/vireo/router"
	"github.com/vireo-web/vireo/router/simple"
)

type ListenerConstructor func(network, addr string) (net.Listener, error)

type listener struct {
	addr        string
	constructor ListenerConstructor
}

// App glues the pieces together: it binds listeners, spawns a session per
// accepted connection and deals with shutdown.
type App struct {
	cfg       *config.Config
	hooks     hooks
	report    diag.Reporter
	listeners []listener
	errCh     chan error
}

// New returns a new App instance serving on addr once Serve is called.
func New(addr string) *App {
	app := &App{
		cfg:    config.Default(),
		report: diag.Log,
		// buffered: the servers still report their exit after a Stop already
		// consumed the slot, and nobody is left to read it
		errCh: make(chan error, 1),
	}

	return app.Listen(addr)
}

// Tune replaces the default config.
func (a *App) Tune(cfg *config.Config) *App {
	a.cfg = cfg
	return a
}

// OnTransportError replaces the default diagnostics sink. The callback
// receives the name of a failed operation (accept, read, parse, dispatch,
// write) and the failure itself. It must not block: it is called straight
// from accept and session loops, which carry on right after.
func (a *App) OnTransportError(report func(op string, err error)) *App {
	a.report = report
	return a
}

// NotifyOnStart calls the callback at the moment all the listeners are bound.
func (a *App) NotifyOnStart(cb func()) *App {
	a.hooks.OnStart = cb
	return a
}

// NotifyOnStop calls the callback at the moment the server stops accepting
// connections and all the clients are disconnected.
func (a *App) NotifyOnStop(cb func()) *App {
	a.hooks.OnStop = cb
	return a
}

// Listen adds one more address to serve on, optionally via a custom listener
// constructor.
func (a *App) Listen(addr string, optionalConstructor ...ListenerConstructor) *App {
	constructor := net.Listen
	if len(optionalConstructor) > 0 && optionalConstructor[0] != nil {
		constructor = optionalConstructor[0]
	}

	a.listeners = append(a.listeners, listener{
		addr:        addr,
		constructor: constructor,
	})

	return a
}

// Serve starts the application. If nil is passed instead of a router, every
// request is plainly acknowledged with an empty 200.
//
// The call blocks until the server stops.
func (a *App) Serve(r router.Router) error {
	if r == nil {
		r = simple.New(http.Respond)
	}

	servers, err := a.bind(r)
	if err != nil {
		return err
	}

	return a.run(servers)
}

func (a *App) bind(r router.Router) ([]*tcp.Server, error) {
	servers := make([]*tcp.Server, 0, len(a.listeners))

	for _, l := range a.listeners {
		sock, err := l.constructor("tcp", l.addr)
		if err != nil {
			return nil, err
		}

		servers = append(servers, tcp.NewServer(sock, a.newConnCallback(r), a.report))
	}

	return servers, nil
}

func (a *App) run(servers []*tcp.Server) error {
	var failSilently atomic.Bool

	for _, server := range servers {
		go func(server *tcp.Server) {
			err := server.Start()

			if failSilently.Swap(true) {
				return
			}

			a.errCh <- err
		}(server)
	}

	callIfNotNil(a.hooks.OnStart)
	err := <-a.errCh
	if err == status.ErrGracefulShutdown {
		// stop accepting new clients, then serve the old ones to the end
		for _, server := range servers {
			_ = server.GracefulShutdown()
		}
	}

	for _, server := range servers {
		_ = server.Stop()
	}

	callIfNotNil(a.hooks.OnStop)

	return err
}

// GracefulStop stops accepting new connections, but keeps serving the old
// ones.
//
// NOTE: the call isn't blocking, the server will still be running when it
// returns.
func (a *App) GracefulStop() {
	a.errCh <- status.ErrGracefulShutdown
}

// Stop stops the whole application immediately.
//
// NOTE: the call isn't blocking, the server will still be running when it
// returns.
func (a *App) Stop() {
	a.errCh <- status.ErrShutdown
}

// newConnCallback builds the per-connection object graph and runs the session
// on the accepting goroutine of the connection.
func (a *App) newConnCallback(r router.Router) func(net.Conn) {
	return func(conn net.Conn) {
		client := initialize.NewClient(a.cfg.NET, conn)
		body := initialize.NewBody(client, a.cfg.Body)
		request := initialize.NewRequest(a.cfg, conn.RemoteAddr(), body)
		trans := initialize.NewTransport(a.cfg, request)
		session := httpserver.NewSession(
			client, request, trans, r, a.report, a.cfg.HTTP.DispatchTimeout,
		)
		session.Run()
	}
}

type hooks struct {
	OnStart, OnStop func()
}

func callIfNotNil(f func()) {
	if f != nil {
		f()
	}
}
