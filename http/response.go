package http

import (
	"github.com/indigo-web/utils/strcomp"
	"github.com/indigo-web/utils/uf"
	json "github.com/json-iterator/go"

	"github.com/vireo-web/vireo/http/status"
	"github.com/vireo-web/vireo/internal/response"
)

// why 7? No theory behind the number, most handlers just never set more.
const preallocRespHeaders = 7

const jsonContentType = "application/json"

// Response is a chainable response builder. A single instance lives per
// connection and is reset at the beginning of every exchange.
type Response struct {
	fields *response.Fields
}

// NewResponse returns a new response builder with the status code set to
// 200 OK and text/html content-type.
//
// NOTE: inside of handlers, prefer Request.Respond() instead.
func NewResponse() *Response {
	return &Response{
		&response.Fields{
			Code:        status.OK,
			Headers:     make([]response.Header, 0, preallocRespHeaders),
			ContentType: response.DefaultContentType,
		},
	}
}

// Code sets the response code. The corresponding status text is chosen
// automatically; for unknown codes set one via Status.
func (r *Response) Code(code status.Code) *Response {
	r.fields.Code = code
	return r
}

// Status sets a custom status text. Clients generally ignore it, so there is
// rarely a reason to call this.
func (r *Response) Status(status status.Status) *Response {
	r.fields.Status = status
	return r
}

// ContentType sets a custom Content-Type header value.
func (r *Response) ContentType(value string) *Response {
	r.fields.ContentType = value
	return r
}

// Header adds header values to a key. Existing values of the key are kept.
func (r *Response) Header(key string, values ...string) *Response {
	if strcomp.EqualFold(key, "content-type") {
		return r.ContentType(values[0])
	}

	for i := range values {
		r.fields.Headers = append(r.fields.Headers, response.Header{
			Key:   key,
			Value: values[i],
		})
	}

	return r
}

// Headers merges the passed headers into the response.
func (r *Response) Headers(headers map[string][]string) *Response {
	resp := r

	for k, v := range headers {
		resp = resp.Header(k, v...)
	}

	return resp
}

// String sets the response body to the passed string.
func (r *Response) String(body string) *Response {
	return r.Bytes(uf.S2B(body))
}

// Bytes sets the response body to the passed slice WITHOUT COPYING. Modifying
// the slice until the response is written affects the response.
func (r *Response) Bytes(body []byte) *Response {
	r.fields.Body = body
	return r
}

// Write implements io.Writer by appending to the response body. It always
// returns n=len(b) and err=nil.
func (r *Response) Write(b []byte) (n int, err error) {
	r.fields.Body = append(r.fields.Body, b...)
	return len(b), nil
}

// TryJSON serializes the model into the response body and sets the
// application/json content-type.
func (r *Response) TryJSON(model any) (*Response, error) {
	r.fields.Body = r.fields.Body[:0]
	stream := json.ConfigDefault.BorrowStream(r)
	stream.WriteVal(model)
	err := stream.Flush()
	json.ConfigDefault.ReturnStream(stream)

	return r.ContentType(jsonContentType), err
}

// JSON does the same as TryJSON does, except the returned error is implicitly
// wrapped by Error.
func (r *Response) JSON(model any) *Response {
	resp, err := r.TryJSON(model)
	if err != nil {
		return r.Error(err)
	}

	return resp
}

// Error sets the response up to carry the error. status.HTTPError instances
// pick their own code, any other error results in the optional custom code or
// 500 Internal Server Error.
func (r *Response) Error(err error, code ...status.Code) *Response {
	if err == nil {
		return r
	}

	if http, ok := err.(status.HTTPError); ok {
		return r.
			Code(http.Code).
			String(http.Message)
	}

	c := status.InternalServerError
	if len(code) > 0 {
		// peek the first, ignore the rest
		c = code[0]
	}

	return r.
		Code(c).
		String(err.Error())
}

// Reveal returns the raw field values of the builder. Used by the serializer.
func (r *Response) Reveal() *response.Fields {
	return r.fields
}

// Clear discards everything done with the builder before.
func (r *Response) Clear() *Response {
	r.fields.Clear()
	return r
}

// Respond is a predicate to request.Respond(). May be used as a dummy handler.
func Respond(request *Request) *Response {
	return request.Respond()
}

// Code is a predicate to request.Respond().Code(...)
func Code(request *Request, code status.Code) *Response {
	return request.Respond().Code(code)
}

// String is a predicate to request.Respond().String(...)
func String(request *Request, str string) *Response {
	return request.Respond().String(str)
}

// Error is a predicate to request.Respond().Error(...)
func Error(request *Request, err error, code ...status.Code) *Response {
	return request.Respond().Error(err, code...)
}
