package http

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/vireo-web/vireo/http"
	"github.com/vireo-web/vireo/http/status"
	"github.com/vireo-web/vireo/internal/diag"
	"github.com/vireo-web/vireo/internal/server/tcp"
	"github.com/vireo-web/vireo/internal/transport"
	"github.com/vireo-web/vireo/router"
)

// Session drives a single connection through its lifecycle:
//
//	Idle -> Reading -> Dispatching -> Writing -> (Reading | Closed)
//
// All transitions happen on the connection's own goroutine, so reading,
// dispatching and writing for one connection never overlap, while different
// sessions run truly in parallel. Responses produced on foreign goroutines are
// marshalled back here before the stream is touched.
type Session struct {
	client          tcp.Client
	request         *http.Request
	trans           transport.Transport
	handler         router.Router
	report          diag.Reporter
	dispatchTimeout time.Duration
	state           sessionState
	pending         chan *http.Response
	response        *http.Response
}

func NewSession(
	client tcp.Client,
	request *http.Request,
	trans transport.Transport,
	handler router.Router,
	report diag.Reporter,
	dispatchTimeout time.Duration,
) *Session {
	return &Session{
		client:          client,
		request:         request,
		trans:           trans,
		handler:         handler,
		report:          report,
		dispatchTimeout: dispatchTimeout,
		state:           stateIdle,
		pending:         make(chan *http.Response, 1),
	}
}

// Run serves the connection until the peer disconnects, an error occurs or a
// response requests connection closure. The call blocks for the whole lifetime
// of the connection.
func (s *Session) Run() {
	for s.state = stateReading; s.state != stateClosed; {
		switch s.state {
		case stateReading:
			s.read()
		case stateDispatching:
			s.dispatch()
		case stateWriting:
			s.write()
		default:
			panic(fmt.Sprintf("BUG: session: unexpected state: %v", s.state))
		}
	}

	s.close()
}

// read prepares the request for the next exchange and feeds socket reads into
// the parser until a whole request arrives. Leftovers past the headers are
// handed back to the client for the body reader.
func (s *Session) read() {
	if err := s.request.Reset(); err != nil {
		s.fail("read", err)
		return
	}

	for {
		data, err := s.client.Read()
		if err != nil {
			s.fail("read", err)
			return
		}

		state, extra, err := s.trans.Parse(data)
		switch state {
		case transport.Pending:
		case transport.HeadersCompleted:
			s.client.Unread(extra)
			s.request.Body.Init(s.request)
			s.state = stateDispatching
			return
		case transport.Error:
			s.report("parse", err)
			s.state = stateClosed
			return
		default:
			panic(fmt.Sprintf("BUG: session: unexpected parser state: %v", state))
		}
	}
}

// dispatch hands the request over to the handler and waits for the respond
// callback to deliver the response value.
func (s *Session) dispatch() {
	s.handler.Handle(s.request, s.respondOnce())

	if s.dispatchTimeout == 0 {
		s.response = <-s.pending
	} else {
		timer := time.NewTimer(s.dispatchTimeout)
		select {
		case s.response = <-s.pending:
			timer.Stop()
		case <-timer.C:
			s.report("dispatch", status.ErrDispatchTimeout)
			s.state = stateClosed
			return
		}
	}

	if s.response == nil {
		s.response = http.Respond(s.request)
	}

	s.state = stateWriting
}

// respondOnce returns the respond callback for the current exchange. The first
// invocation wins, the rest are dropped. The pending channel is buffered, so a
// late respond after a dispatch timeout cannot strand the calling goroutine.
func (s *Session) respondOnce() router.Respond {
	var once sync.Once

	return func(resp *http.Response) {
		once.Do(func() {
			s.pending <- resp
		})
	}
}

func (s *Session) write() {
	err := s.trans.Write(s.request.Proto, s.request, s.response, s.client)
	s.response = nil

	switch {
	case err == nil:
		s.state = stateReading
	case errors.Is(err, status.ErrCloseConnection):
		s.state = stateClosed
	default:
		s.report("write", err)
		s.state = stateClosed
	}
}

// fail classifies a read-path error: a clean peer disconnect is not an error
// at all, an exceeded idle period is reported as a timeout, the rest as-is.
func (s *Session) fail(op string, err error) {
	switch {
	case errors.Is(err, io.EOF):
	case isTimeout(err):
		s.report(op, status.ErrRequestTimeout)
	default:
		s.report(op, err)
	}

	s.state = stateClosed
}

// close releases the connection with a half-close first, so the peer observes
// a clean EOF. Shutdown errors are pointless at this stage and are ignored.
func (s *Session) close() {
	_ = s.client.Shutdown()
	_ = s.client.Close()
}

func isTimeout(err error) bool {
	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}
