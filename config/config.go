package config

import "time"

type (
	HeadersNumber struct {
		Default, Maximal int
	}

	HeadersKeySpace struct {
		Default, Maximal int
	}

	HeadersValueSpace struct {
		Default, Maximal int
	}

	RequestLineSize struct {
		Default, Maximal int
	}
)

type (
	URI struct {
		// RequestLineSize is a shared buffer storing the method, path and protocol of a
		// request among reads. Setting the maximal boundary too low results in pretty
		// ambiguous errors for longer requests.
		RequestLineSize RequestLineSize
	}

	Headers struct {
		// Number is responsible for the headers storage size.
		// Default value is the number of preallocated seats, Maximal is the
		// number of headers a single request is allowed to carry.
		Number HeadersNumber
		// KeySpace limits the memory occupied by header keys of a single request.
		KeySpace HeadersKeySpace
		// ValueSpace limits the memory occupied by header values of a single request.
		ValueSpace HeadersValueSpace
		// Default headers are included into every response implicitly, unless
		// explicitly overridden by a handler.
		Default map[string]string `test:"nullable"`
	}

	Body struct {
		// MaxSize limits how big a request body may be. Bodies exceeding the limit
		// fail the read with status.ErrBodyTooLarge.
		MaxSize uint64
	}

	NET struct {
		// ReadBufferSize is the size of the per-connection buffer used to read
		// from the socket.
		ReadBufferSize int
		// ReadTimeout is the idle timeout: the maximal time a connection may stay
		// silent between requests before it is closed. Rearmed before every read.
		ReadTimeout time.Duration
	}

	HTTP struct {
		// ResponseBuffSize is the initial size of the buffer a response is
		// serialized into.
		ResponseBuffSize int
		// DispatchTimeout bounds how long a session waits for a handler to invoke
		// its respond callback. Zero disables the bound, which matches the behavior
		// of handlers that are trusted to always respond.
		DispatchTimeout time.Duration `test:"nullable"`
	}
)

// Config holds limits, timeouts and preallocation hints used across the server.
//
// Always modify the defaults (returned via Default()) instead of instantiating
// the struct manually, otherwise zero-valued limits will reject everything.
type Config struct {
	URI     URI
	Headers Headers
	Body    Body
	NET     NET
	HTTP    HTTP
}

// Default returns a well-balanced default config.
func Default() *Config {
	return &Config{
		URI: URI{
			RequestLineSize: RequestLineSize{
				Default: 2 * 1024,
				// most web-entities limit the request line to 4-8kb, being tolerant
				// costs nothing as the buffer grows lazily
				Maximal: 16 * 1024,
			},
		},
		Headers: Headers{
			Number: HeadersNumber{
				Default: 10,
				Maximal: 50,
			},
			KeySpace: HeadersKeySpace{
				Default: 1 * 1024,
				Maximal: 4 * 1024,
			},
			ValueSpace: HeadersValueSpace{
				Default: 1 * 1024, // 1kb of header values must be fairly enough in most cases
				Maximal: 16 * 1024,
			},
			Default: map[string]string{
				"Server": "vireo",
			},
		},
		Body: Body{
			MaxSize: 512 * 1024 * 1024, // 512 megabytes
		},
		NET: NET{
			ReadBufferSize: 2 * 1024,
			ReadTimeout:    30 * time.Second,
		},
		HTTP: HTTP{
			ResponseBuffSize: 2 * 1024,
		},
	}
}
