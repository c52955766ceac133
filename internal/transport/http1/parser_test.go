package http1

import (
	"fmt"
	"strings"
	"testing"

	"github.com/dchest/uniuri"
	"github.com/indigo-web/chunkedbody"
	"github.com/indigo-web/utils/buffer"
	"github.com/stretchr/testify/require"

	"github.com/vireo-web/vireo/config"
	"github.com/vireo-web/vireo/http"
	"github.com/vireo-web/vireo/http/method"
	"github.com/vireo-web/vireo/http/proto"
	"github.com/vireo-web/vireo/http/status"
	"github.com/vireo-web/vireo/internal/server/tcp/dummy"
	"github.com/vireo-web/vireo/internal/transport"
	"github.com/vireo-web/vireo/kv"
)

func getParser() (*Parser, *http.Request) {
	cfg := config.Default()
	keyBuff := buffer.New(
		cfg.Headers.KeySpace.Default,
		cfg.Headers.KeySpace.Maximal,
	)
	valBuff := buffer.New(
		cfg.Headers.ValueSpace.Default,
		cfg.Headers.ValueSpace.Maximal,
	)
	startLineBuff := buffer.New(
		cfg.URI.RequestLineSize.Default,
		cfg.URI.RequestLineSize.Maximal,
	)
	chunkedParser := chunkedbody.NewParser(chunkedbody.DefaultSettings())
	body := NewBody(dummy.NewNopClient(), chunkedParser, cfg.Body)
	request := http.NewRequest(
		kv.New(), http.NewResponse(), dummy.NewNopClient().Remote(), body,
	)

	return NewParser(request, keyBuff, valBuff, startLineBuff, cfg.Headers), request
}

type wantedRequest struct {
	Headers  http.Headers
	Path     string
	Method   method.Method
	Protocol proto.Protocol
}

func compareRequests(t *testing.T, wanted wantedRequest, actual *http.Request) {
	require.Equal(t, wanted.Method, actual.Method)
	require.Equal(t, wanted.Path, actual.Path)
	require.Equal(t, wanted.Protocol, actual.Proto)

	for _, key := range wanted.Headers.Keys() {
		require.Equal(t, wanted.Headers.Values(key), actual.Headers.Values(key))
	}
}

func splitIntoParts(req []byte, n int) (parts [][]byte) {
	for i := 0; i < len(req); i += n {
		end := i + n
		if end > len(req) {
			end = len(req)
		}

		parts = append(parts, req[i:end])
	}

	return parts
}

func feedPartially(
	parser *Parser, rawRequest []byte, n int,
) (state transport.RequestState, extra []byte, err error) {
	for _, part := range splitIntoParts(rawRequest, n) {
		state, extra, err = parser.Parse(part)
		if err != nil || state != transport.Pending {
			return state, extra, err
		}

		for len(extra) > 0 {
			state, extra, err = parser.Parse(extra)
			if state != transport.Pending {
				return state, extra, err
			}
		}
	}

	return state, extra, nil
}

func TestParser_Parse_GET(t *testing.T) {
	parser, request := getParser()

	t.Run("simple GET", func(t *testing.T) {
		raw := "GET / HTTP/1.1\r\n\r\n"
		state, extra, err := parser.Parse([]byte(raw))
		require.NoError(t, err)
		require.Equal(t, transport.HeadersCompleted, state)
		require.Empty(t, extra)

		wanted := wantedRequest{
			Method:   method.GET,
			Path:     "/",
			Protocol: proto.HTTP11,
			Headers:  kv.New(),
		}

		compareRequests(t, wanted, request)
		require.NoError(t, request.Reset())
	})

	t.Run("GET with headers", func(t *testing.T) {
		raw := "GET /path HTTP/1.1\r\nHello: World!\r\nEaster: Egg\r\n\r\n"
		state, extra, err := parser.Parse([]byte(raw))
		require.NoError(t, err)
		require.Equal(t, transport.HeadersCompleted, state)
		require.Empty(t, extra)

		wanted := wantedRequest{
			Method:   method.GET,
			Path:     "/path",
			Protocol: proto.HTTP11,
			Headers: kv.New().
				Add("hello", "World!").
				Add("easter", "Egg"),
		}

		compareRequests(t, wanted, request)
		require.NoError(t, request.Reset())
	})

	t.Run("multiple header values", func(t *testing.T) {
		raw := "GET / HTTP/1.1\r\nAccept: one,two\r\nAccept: three\r\n\r\n"
		state, extra, err := parser.Parse([]byte(raw))
		require.NoError(t, err)
		require.Equal(t, transport.HeadersCompleted, state)
		require.Empty(t, extra)

		wanted := wantedRequest{
			Method:   method.GET,
			Path:     "/",
			Protocol: proto.HTTP11,
			Headers: kv.New().
				Add("accept", "one,two").
				Add("accept", "three"),
		}

		compareRequests(t, wanted, request)
		require.NoError(t, request.Reset())
	})

	t.Run("query is cut off the path", func(t *testing.T) {
		raw := "GET /path?hello=world&lorem=ipsum HTTP/1.1\r\n\r\n"
		state, extra, err := parser.Parse([]byte(raw))
		require.NoError(t, err)
		require.Equal(t, transport.HeadersCompleted, state)
		require.Empty(t, extra)

		require.Equal(t, "/path", request.Path)
		require.Equal(t, "hello=world&lorem=ipsum", request.Query)
		require.NoError(t, request.Reset())
	})

	t.Run("HTTP/1.0", func(t *testing.T) {
		raw := "GET / HTTP/1.0\r\n\r\n"
		state, _, err := parser.Parse([]byte(raw))
		require.NoError(t, err)
		require.Equal(t, transport.HeadersCompleted, state)
		require.Equal(t, proto.HTTP10, request.Proto)
		require.NoError(t, request.Reset())
	})

	t.Run("content-length", func(t *testing.T) {
		raw := "GET / HTTP/1.1\r\nContent-Length: 13\r\n\r\nHello, world!"
		state, extra, err := parser.Parse([]byte(raw))
		require.NoError(t, err)
		require.Equal(t, transport.HeadersCompleted, state)
		require.Equal(t, 13, request.ContentLength)
		require.Equal(t, "Hello, world!", string(extra))
		require.NoError(t, request.Reset())
	})

	t.Run("chunked transfer encoding", func(t *testing.T) {
		raw := "GET / HTTP/1.1\r\nTransfer-Encoding: gzip, chunked\r\n\r\n"
		state, _, err := parser.Parse([]byte(raw))
		require.NoError(t, err)
		require.Equal(t, transport.HeadersCompleted, state)
		require.True(t, request.Encoding.Chunked)
		require.Equal(t, []string{"gzip"}, request.Encoding.Transfer)
		require.NoError(t, request.Reset())
	})

	t.Run("connection and content-type shortcuts", func(t *testing.T) {
		raw := "GET / HTTP/1.1\r\nConnection: close\r\nContent-Type: text/plain\r\n\r\n"
		state, _, err := parser.Parse([]byte(raw))
		require.NoError(t, err)
		require.Equal(t, transport.HeadersCompleted, state)
		require.Equal(t, "close", request.Connection)
		require.Equal(t, "text/plain", request.ContentType)
		require.NoError(t, request.Reset())
	})

	t.Run("two requests in a row", func(t *testing.T) {
		first := "GET /first HTTP/1.1\r\n\r\n"
		second := "GET /second HTTP/1.1\r\n\r\n"
		state, extra, err := parser.Parse([]byte(first + second))
		require.NoError(t, err)
		require.Equal(t, transport.HeadersCompleted, state)
		require.Equal(t, "/first", request.Path)
		require.Equal(t, second, string(extra))
		require.NoError(t, request.Reset())

		state, extra, err = parser.Parse(extra)
		require.NoError(t, err)
		require.Equal(t, transport.HeadersCompleted, state)
		require.Equal(t, "/second", request.Path)
		require.Empty(t, extra)
		require.NoError(t, request.Reset())
	})
}

func TestParser_Parse_Partial(t *testing.T) {
	raw := "GET /hello-world?who=ami HTTP/1.1\r\nHello: world\r\nContent-Length: 0\r\n\r\n"

	for n := 1; n < len(raw); n++ {
		t.Run(fmt.Sprintf("feed by %d bytes", n), func(t *testing.T) {
			parser, request := getParser()
			state, extra, err := feedPartially(parser, []byte(raw), n)
			require.NoError(t, err)
			require.Equal(t, transport.HeadersCompleted, state)
			require.Empty(t, extra)

			wanted := wantedRequest{
				Method:   method.GET,
				Path:     "/hello-world",
				Protocol: proto.HTTP11,
				Headers:  kv.New().Add("hello", "world"),
			}

			compareRequests(t, wanted, request)
			require.Equal(t, "who=ami", request.Query)
		})
	}
}

func TestParser_Parse_Negative(t *testing.T) {
	check := func(t *testing.T, raw string, wantErr error) {
		parser, _ := getParser()
		state, _, err := parser.Parse([]byte(raw))
		require.Equal(t, transport.Error, state)
		require.EqualError(t, err, wantErr.Error())
	}

	t.Run("empty method", func(t *testing.T) {
		check(t, " / HTTP/1.1\r\n\r\n", status.ErrBadRequest)
	})

	t.Run("unknown method", func(t *testing.T) {
		check(t, "BREW /coffee HTTP/1.1\r\n\r\n", status.ErrMethodNotImplemented)
	})

	t.Run("empty path", func(t *testing.T) {
		check(t, "GET  HTTP/1.1\r\n\r\n", status.ErrBadRequest)
	})

	t.Run("unsupported protocol", func(t *testing.T) {
		check(t, "GET / HTTP/42.1\r\n\r\n", status.ErrUnsupportedProtocol)
	})

	t.Run("missing protocol", func(t *testing.T) {
		check(t, "GET /\r\n\r\n", status.ErrBadRequest)
	})

	t.Run("junk in content-length", func(t *testing.T) {
		check(t, "GET / HTTP/1.1\r\nContent-Length: 13abc\r\n\r\n", status.ErrBadRequest)
	})

	t.Run("lonely CR in the headers section", func(t *testing.T) {
		check(t, "GET / HTTP/1.1\r\nHello: world\r\n\rs\n\r\n", status.ErrBadRequest)
	})

	t.Run("too long request line", func(t *testing.T) {
		cfg := config.Default()
		raw := "GET /" + strings.Repeat("a", cfg.URI.RequestLineSize.Maximal) + " HTTP/1.1\r\n\r\n"
		check(t, raw, status.ErrURITooLong)
	})

	t.Run("too many headers", func(t *testing.T) {
		cfg := config.Default()
		hdrs := make([]string, 0, cfg.Headers.Number.Maximal+1)
		for len(hdrs) < cap(hdrs) {
			hdrs = append(hdrs, fmt.Sprintf("%s: some value", uniuri.New()))
		}

		raw := "GET / HTTP/1.1\r\n" + strings.Join(hdrs, "\r\n") + "\r\n\r\n"
		check(t, raw, status.ErrTooManyHeaders)
	})
}
