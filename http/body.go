package http

// Body provides access to the message body of the current request. The body is
// read lazily off the wire, so it may be consumed at most once.
type Body interface {
	// Init binds the body to the freshly parsed request. Called by the session
	// once headers are complete, before the request is dispatched.
	Init(*Request)
	// Bytes reads the whole body into memory.
	Bytes() ([]byte, error)
	// String reads the whole body into memory as a string.
	String() (string, error)
	// Retrieve returns the next piece of the body. io.EOF signals the end,
	// possibly along with the last piece.
	Retrieve() ([]byte, error)
	// Discard reads the rest of the body out of the connection and drops it.
	Discard() error
}
