package initialize

import (
	"net"

	"github.com/indigo-web/chunkedbody"
	"github.com/indigo-web/utils/buffer"

	"github.com/vireo-web/vireo/config"
	"github.com/vireo-web/vireo/http"
	"github.com/vireo-web/vireo/internal/server/tcp"
	"github.com/vireo-web/vireo/internal/transport"
	"github.com/vireo-web/vireo/internal/transport/http1"
	"github.com/vireo-web/vireo/kv"
)

func NewClient(cfg config.NET, conn net.Conn) tcp.Client {
	readBuff := make([]byte, cfg.ReadBufferSize)

	return tcp.NewClient(conn, cfg.ReadTimeout, readBuff)
}

func NewBody(client tcp.Client, cfg config.Body) *http1.Body {
	return http1.NewBody(client, chunkedbody.NewParser(chunkedbody.DefaultSettings()), cfg)
}

func NewRequest(cfg *config.Config, remote net.Addr, body http.Body) *http.Request {
	hdrs := kv.NewPrealloc(cfg.Headers.Number.Default)
	response := http.NewResponse()

	return http.NewRequest(hdrs, response, remote, body)
}

func NewTransport(cfg *config.Config, req *http.Request) transport.Transport {
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
	respBuff := make([]byte, 0, cfg.HTTP.ResponseBuffSize)

	return http1.New(
		req,
		keyBuff, valBuff, startLineBuff,
		cfg.Headers,
		respBuff,
		cfg.Headers.Default,
	)
}
