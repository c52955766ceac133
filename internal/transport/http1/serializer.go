package http1

import (
	"strconv"

	"github.com/indigo-web/utils/strcomp"
	"github.com/indigo-web/utils/uf"

	"github.com/vireo-web/vireo/http"
	"github.com/vireo-web/vireo/http/method"
	"github.com/vireo-web/vireo/http/proto"
	"github.com/vireo-web/vireo/http/status"
	"github.com/vireo-web/vireo/internal/httpchars"
	"github.com/vireo-web/vireo/internal/response"
	"github.com/vireo-web/vireo/internal/transport"
)

const (
	contentType   = "Content-Type: "
	contentLength = "Content-Length: "
)

// Serializer renders responses into a reusable buffer and flushes them into
// the writer in a single call.
type Serializer struct {
	buff           []byte
	defaultHeaders defaultHeaders
}

func NewSerializer(buff []byte, defHdrs map[string]string) *Serializer {
	return &Serializer{
		buff:           buff[:0],
		defaultHeaders: processDefaultHeaders(defHdrs),
	}
}

// Write serializes and sends a whole response, respecting the differences
// between HTTP/1.0 and HTTP/1.1. After a response that must be the last one on
// its connection, status.ErrCloseConnection is returned instead of nil.
func (d *Serializer) Write(
	protocol proto.Protocol, request *http.Request, response *http.Response, writer transport.Writer,
) (err error) {
	defer d.clear()

	fields := response.Reveal()

	d.renderProtocol(protocol)
	d.renderResponseLine(fields)
	d.renderHeaders(fields)
	d.renderContentLength(int64(len(fields.Body)))
	d.crlf()

	if request.Method != method.HEAD {
		// HEAD responses mirror GET ones, except for the forced lack of body,
		// even though Content-Length still holds the would-be length
		d.buff = append(d.buff, fields.Body...)
	}

	if err = writer.Write(d.buff); err != nil {
		return err
	}

	if !isKeepAlive(protocol, request) || closeRequested(fields) {
		err = status.ErrCloseConnection
	}

	return err
}

func (d *Serializer) renderResponseLine(fields *response.Fields) {
	d.buff = strconv.AppendInt(d.buff, int64(fields.Code), 10)
	d.sp()

	if fields.Status == "" {
		d.buff = append(d.buff, status.Text(fields.Code)...)
	} else {
		d.buff = append(d.buff, fields.Status...)
	}

	d.crlf()
}

func (d *Serializer) renderHeaders(fields *response.Fields) {
	for _, header := range fields.Headers {
		d.renderHeader(header)
		d.defaultHeaders.Exclude(header.Key)
	}

	for _, header := range d.defaultHeaders {
		if header.Excluded {
			continue
		}

		d.buff = append(d.buff, header.Full...)
	}

	// Content-Type is compulsory
	d.renderKnownHeader(contentType, fields.ContentType)
}

// renderHeader renders the pair into the buffer, CRLF included.
func (d *Serializer) renderHeader(header response.Header) {
	d.buff = append(d.buff, header.Key...)
	d.colonsp()
	d.buff = append(d.buff, header.Value...)
	d.crlf()
}

func (d *Serializer) renderContentLength(value int64) {
	d.buff = strconv.AppendInt(append(d.buff, contentLength...), value, 10)
	d.crlf()
}

func (d *Serializer) renderKnownHeader(key, value string) {
	d.buff = append(d.buff, key...)
	d.buff = append(d.buff, value...)
	d.crlf()
}

func (d *Serializer) renderProtocol(protocol proto.Protocol) {
	d.buff = append(d.buff, protocol.String()...)
}

func (d *Serializer) sp() {
	d.buff = append(d.buff, ' ')
}

func (d *Serializer) colonsp() {
	d.buff = append(d.buff, httpchars.COLONSP...)
}

func (d *Serializer) crlf() {
	d.buff = append(d.buff, httpchars.CRLF...)
}

func (d *Serializer) clear() {
	d.buff = d.buff[:0]
	d.defaultHeaders.Reset()
}

func isKeepAlive(protocol proto.Protocol, req *http.Request) bool {
	switch protocol {
	case proto.HTTP10:
		return strcomp.EqualFold(req.Connection, "keep-alive")
	case proto.HTTP11:
		// in case of HTTP/1.1, keep-alive may be only disabled
		return !strcomp.EqualFold(req.Connection, "close")
	default:
		// don't know what this is, but act like everything is okay
		return true
	}
}

// closeRequested reports whether the handler explicitly set Connection: close.
func closeRequested(fields *response.Fields) bool {
	for _, header := range fields.Headers {
		if strcomp.EqualFold(header.Key, "connection") {
			return strcomp.EqualFold(header.Value, "close")
		}
	}

	return false
}

func processDefaultHeaders(hdrs map[string]string) defaultHeaders {
	processed := make(defaultHeaders, 0, len(hdrs))

	for key, value := range hdrs {
		full := renderHeader(key, value)
		processed = append(processed, defaultHeader{
			// the key is a slice of the rendered line, letting the GC release
			// the original map
			Key:  full[:len(key)],
			Full: full,
		})
	}

	return processed
}

func renderHeader(key, value string) string {
	return key + httpchars.COLONSP + value + uf.B2S(httpchars.CRLF)
}

type defaultHeader struct {
	Excluded bool
	Key      string
	Full     string
}

type defaultHeaders []defaultHeader

func (d defaultHeaders) Exclude(key string) {
	for i, header := range d {
		if strcomp.EqualFold(header.Key, key) {
			header.Excluded = true
			d[i] = header
			return
		}
	}
}

func (d defaultHeaders) Reset() {
	for i := range d {
		d[i].Excluded = false
	}
}
