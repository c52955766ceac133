package transport

import (
	"github.com/vireo-web/vireo/http"
	"github.com/vireo-web/vireo/http/proto"
)

// RequestState represents the progress of parsing the current request.
type RequestState uint8

const (
	// Pending means more data is needed before the request completes.
	Pending RequestState = iota + 1
	// HeadersCompleted means the request line and headers were fully parsed;
	// the unconsumed remainder is returned as extra.
	HeadersCompleted
	// Error means the data cannot form a valid request. The connection cannot
	// be recovered.
	Error
)

type Parser interface {
	Parse(b []byte) (state RequestState, extra []byte, err error)
}

type Writer interface {
	Write([]byte) error
}

// Serializer renders a response builder into bytes and pushes them into the
// writer. Returns status.ErrCloseConnection after a response that must be the
// last one on its connection.
type Serializer interface {
	Write(target proto.Protocol, request *http.Request, response *http.Response, writer Writer) error
}

// Transport is a parser and a serializer of the same protocol version.
type Transport interface {
	Parser
	Serializer
}
