package response

import "github.com/vireo-web/vireo/http/status"

const DefaultContentType = "text/html"

type Header struct {
	Key, Value string
}

// Fields is the raw content of a response builder. Kept apart from the builder
// itself so the serializer can reach the values without widening the public API.
type Fields struct {
	Code        status.Code
	Status      status.Status
	ContentType string
	Headers     []Header
	Body        []byte
}

func (f *Fields) Clear() {
	f.Code = status.OK
	f.Status = ""
	f.ContentType = DefaultContentType
	f.Headers = f.Headers[:0]
	f.Body = nil
}
