package http

import (
	"net"

	"github.com/vireo-web/vireo/http/method"
	"github.com/vireo-web/vireo/http/proto"
	"github.com/vireo-web/vireo/kv"
)

type Headers = *kv.Storage

// Request represents a single HTTP request. The instance is owned by its
// connection and reused across requests on it, so none of the fields may be
// retained past the respond call.
type Request struct {
	// Method is an enum representing the request method.
	Method method.Method
	// Path is the raw request path with the query cut off.
	Path string
	// Query is the raw, unparsed query string, if any.
	Query string
	// Proto is the protocol the request arrived via.
	Proto proto.Protocol
	// Headers holds non-normalized header pairs in their original order, the
	// lookup is nevertheless case-insensitive.
	Headers Headers
	// ContentLength is the value of the Content-Length header, 0 if absent.
	// Don't rely on it if Encoding.Chunked is set.
	ContentLength int
	// ContentType is the value of the Content-Type header, if any.
	ContentType string
	// Connection holds the non-normalized Connection header value.
	Connection string
	// Encoding describes the transfer codings applied to the body.
	Encoding Encoding
	// Remote is the address of the peer. Note that proxies in the middle make
	// it a poor way to identify a user.
	Remote net.Addr
	// Body provides the streamed message body.
	Body     Body
	response *Response
}

func NewRequest(hdrs Headers, response *Response, remote net.Addr, body Body) *Request {
	return &Request{
		Method:   method.Unknown,
		Proto:    proto.HTTP11,
		Headers:  hdrs,
		Remote:   remote,
		Body:     body,
		response: response,
	}
}

// Respond returns the response builder of this connection.
//
// WARNING: the builder is cleared under the hood, thereby at most one response
// per exchange may be under construction.
func (r *Request) Respond() *Response {
	return r.response.Clear()
}

// Reset drains whatever is left unread of the body off the wire and clears the
// request for the next exchange. Fails only on body read errors, which are
// connection-fatal.
func (r *Request) Reset() error {
	if err := r.Body.Discard(); err != nil {
		return err
	}

	r.Method = method.Unknown
	r.Path = ""
	r.Query = ""
	r.Proto = proto.HTTP11
	r.Headers.Clear()
	r.ContentLength = 0
	r.ContentType = ""
	r.Connection = ""
	r.Encoding = Encoding{}

	return nil
}

type Encoding struct {
	// Transfer contains the applied Transfer-Encoding tokens in their original
	// order, except chunked, which has a flag of its own.
	Transfer []string
	// Chunked reports whether the body arrives in chunked transfer coding.
	Chunked bool
}
