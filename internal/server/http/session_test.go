package http

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vireo-web/vireo/config"
	"github.com/vireo-web/vireo/http"
	"github.com/vireo-web/vireo/http/status"
	"github.com/vireo-web/vireo/internal/initialize"
	"github.com/vireo-web/vireo/internal/server/tcp"
	"github.com/vireo-web/vireo/internal/server/tcp/dummy"
	"github.com/vireo-web/vireo/router"
	"github.com/vireo-web/vireo/router/simple"
)

type report struct {
	Op  string
	Err error
}

type reports struct {
	collected []report
}

func (r *reports) Report(op string, err error) {
	r.collected = append(r.collected, report{op, err})
}

func newSession(
	client tcp.Client, handler router.Router, dispatchTimeout time.Duration,
) (*Session, *reports) {
	cfg := config.Default()
	body := initialize.NewBody(client, cfg.Body)
	request := initialize.NewRequest(cfg, dummy.NewNopClient().Remote(), body)
	trans := initialize.NewTransport(cfg, request)
	sink := new(reports)

	return NewSession(client, request, trans, handler, sink.Report, dispatchTimeout), sink
}

func TestSession_KeepAlive(t *testing.T) {
	raw := []byte("GET /first HTTP/1.1\r\n\r\nGET /second HTTP/1.1\r\n\r\n")
	client := dummy.NewCircularClient(raw).OneTime()

	var paths []string
	handler := simple.New(func(request *http.Request) *http.Response {
		paths = append(paths, request.Path)
		return http.Respond(request)
	})

	session, sink := newSession(client, handler, 0)
	session.Run()

	require.Equal(t, []string{"/first", "/second"}, paths)
	require.Empty(t, sink.collected)
	require.Equal(t, 2, strings.Count(string(client.Written()), "200 OK"))
	require.True(t, client.Closed())
}

func TestSession_ConnectionClose(t *testing.T) {
	raw := []byte("GET / HTTP/1.1\r\nConnection: close\r\n\r\nGET /never HTTP/1.1\r\n\r\n")
	client := dummy.NewCircularClient(raw).OneTime()

	var served int
	handler := simple.New(func(request *http.Request) *http.Response {
		served++
		return http.Respond(request)
	})

	session, sink := newSession(client, handler, 0)
	session.Run()

	// the second request stays untouched: the first one ended the connection
	require.Equal(t, 1, served)
	require.Empty(t, sink.collected)
	require.True(t, client.Closed())
}

func TestSession_ParseError(t *testing.T) {
	raw := []byte("GET / HTTP/4.2\r\n\r\n")
	client := dummy.NewCircularClient(raw).OneTime()

	handler := simple.New(func(request *http.Request) *http.Response {
		require.Fail(t, "the handler must not see a malformed request")
		return nil
	})

	session, sink := newSession(client, handler, 0)
	session.Run()

	// no response hits the wire, the failure goes to diagnostics only
	require.Empty(t, client.Written())
	require.Len(t, sink.collected, 1)
	require.Equal(t, "parse", sink.collected[0].Op)
	require.EqualError(t, sink.collected[0].Err, status.ErrUnsupportedProtocol.Error())
}

func TestSession_DeferredRespond(t *testing.T) {
	raw := []byte("GET / HTTP/1.1\r\n\r\n")
	client := dummy.NewCircularClient(raw).OneTime()

	handler := deferredRouter{delay: 5 * time.Millisecond}
	session, sink := newSession(client, handler, 0)
	session.Run()

	require.Empty(t, sink.collected)
	require.Contains(t, string(client.Written()), "deferred")
}

type deferredRouter struct {
	delay time.Duration
}

func (d deferredRouter) Handle(request *http.Request, respond router.Respond) {
	response := request.Respond().String("deferred")

	go func() {
		time.Sleep(d.delay)
		respond(response)
	}()
}

func TestSession_RedundantResponds(t *testing.T) {
	raw := []byte("GET / HTTP/1.1\r\n\r\n")
	client := dummy.NewCircularClient(raw).OneTime()

	handler := router.RouterFunc(func(request *http.Request, respond router.Respond) {
		respond(request.Respond().String("first"))
		respond(http.NewResponse().String("left unnoticed"))
	})

	session, sink := newSession(client, handler, 0)
	session.Run()

	require.Empty(t, sink.collected)
	require.Equal(t, 1, strings.Count(string(client.Written()), "HTTP/1.1"))
	require.Contains(t, string(client.Written()), "first")
	require.NotContains(t, string(client.Written()), "left unnoticed")
}

func TestSession_NilResponse(t *testing.T) {
	raw := []byte("GET / HTTP/1.1\r\n\r\n")
	client := dummy.NewCircularClient(raw).OneTime()

	handler := router.RouterFunc(func(request *http.Request, respond router.Respond) {
		respond(nil)
	})

	session, sink := newSession(client, handler, 0)
	session.Run()

	require.Empty(t, sink.collected)
	require.Contains(t, string(client.Written()), "200 OK")
}

func TestSession_DispatchTimeout(t *testing.T) {
	raw := []byte("GET / HTTP/1.1\r\n\r\n")
	client := dummy.NewCircularClient(raw).OneTime()

	handler := router.RouterFunc(func(request *http.Request, respond router.Respond) {
		// never responds
	})

	session, sink := newSession(client, handler, 5*time.Millisecond)
	session.Run()

	require.Empty(t, client.Written())
	require.Len(t, sink.collected, 1)
	require.Equal(t, "dispatch", sink.collected[0].Op)
	require.EqualError(t, sink.collected[0].Err, status.ErrDispatchTimeout.Error())
}

func TestSession_IdleTimeout(t *testing.T) {
	session, sink := newSession(timeoutClient{}, simple.New(http.Respond), 0)
	session.Run()

	require.Len(t, sink.collected, 1)
	require.Equal(t, "read", sink.collected[0].Op)
	require.EqualError(t, sink.collected[0].Err, status.ErrRequestTimeout.Error())
}

// timeoutClient fails every read with a timeout, imitating an expired read
// deadline.
type timeoutClient struct{}

func (timeoutClient) Read() ([]byte, error) {
	return nil, &net.OpError{Op: "read", Err: timeoutError{}}
}

func (timeoutClient) Unread([]byte) {}

func (timeoutClient) Write([]byte) error {
	return nil
}

func (timeoutClient) Remote() net.Addr {
	return &net.TCPAddr{}
}

func (timeoutClient) Shutdown() error {
	return nil
}

func (timeoutClient) Close() error {
	return nil
}

type timeoutError struct{}

func (timeoutError) Error() string {
	return "i/o timeout"
}

func (timeoutError) Timeout() bool {
	return true
}

func (timeoutError) Temporary() bool {
	return false
}
