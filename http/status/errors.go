package status

import "errors"

type HTTPError struct {
	Message string
	Code    Code
}

func NewError(code Code, message string) error {
	return HTTPError{
		Code:    code,
		Message: message,
	}
}

func (h HTTPError) Error() string {
	return h.Message
}

// Control-flow sentinels. They are never rendered on a wire.
var (
	// ErrCloseConnection is returned by the serializer after a response that
	// must be the last one on its connection was written.
	ErrCloseConnection  = errors.New("actively closing the connection")
	ErrShutdown         = errors.New("server shutdown")
	ErrGracefulShutdown = errors.New("graceful shutdown")
)

var (
	ErrBadRequest           = NewError(BadRequest, "bad request")
	ErrTooLongRequestLine   = NewError(BadRequest, "request line is too long")
	ErrBadChunk             = NewError(BadRequest, "malformed chunk-encoded data")
	ErrNotFound             = NewError(NotFound, "not found")
	ErrInternalServerError  = NewError(InternalServerError, "internal server error")
	ErrMethodNotImplemented = NewError(NotImplemented, "request method is not supported")
	ErrMethodNotAllowed     = NewError(MethodNotAllowed, "method not allowed")
	ErrBodyTooLarge         = NewError(RequestEntityTooLarge, "request body is too large")
	ErrHeaderFieldsTooLarge = NewError(RequestHeaderFieldsTooLarge, "too large headers section")
	ErrTooManyHeaders       = NewError(RequestHeaderFieldsTooLarge, "too many headers")
	ErrURITooLong           = NewError(RequestURITooLong, "request URI too long")
	ErrUnsupportedProtocol  = NewError(HTTPVersionNotSupported, "HTTP version not supported")
	ErrRequestTimeout       = NewError(RequestTimeout, "request timeout")
	ErrDispatchTimeout      = NewError(GatewayTimeout, "handler has not responded in time")
)
