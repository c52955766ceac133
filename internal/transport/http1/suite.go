package http1

import (
	"github.com/indigo-web/utils/buffer"

	"github.com/vireo-web/vireo/config"
	"github.com/vireo-web/vireo/http"
	"github.com/vireo-web/vireo/internal/transport"
)

var _ transport.Transport = new(Suite)

// Suite is the HTTP/1 transport: a parser and a serializer over the same
// connection.
type Suite struct {
	*Parser
	*Serializer
}

func New(
	request *http.Request,
	keyBuff, valBuff, startLineBuff *buffer.Buffer,
	headersCfg config.Headers,
	respBuff []byte,
	defaultHeaders map[string]string,
) *Suite {
	return &Suite{
		Parser:     NewParser(request, keyBuff, valBuff, startLineBuff, headersCfg),
		Serializer: NewSerializer(respBuff, defaultHeaders),
	}
}
