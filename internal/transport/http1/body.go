package http1

import (
	"io"
	"math"

	"github.com/indigo-web/chunkedbody"
	"github.com/indigo-web/utils/uf"

	"github.com/vireo-web/vireo/config"
	"github.com/vireo-web/vireo/http"
	"github.com/vireo-web/vireo/http/status"
	"github.com/vireo-web/vireo/internal/server/tcp"
)

var _ http.Body = new(Body)

// Body reads the message body off the wire, either sized by Content-Length or
// in chunked transfer coding. Data past the body's end is handed back to the
// client for the next request.
type Body struct {
	plain        plainBodyReader
	chunked      chunkedBodyReader
	isChunked    bool
	fullBodyBuff []byte
	eof          bool
}

func NewBody(client tcp.Client, chunkedParser *chunkedbody.Parser, cfg config.Body) *Body {
	return &Body{
		plain:   newPlainBodyReader(client, cfg.MaxSize),
		chunked: newChunkedBodyReader(client, cfg.MaxSize, chunkedParser),
	}
}

func (b *Body) Init(request *http.Request) {
	b.isChunked = request.Encoding.Chunked
	if b.isChunked {
		b.chunked.init()
	} else {
		b.plain.init(request)
	}

	b.eof = false
}

func (b *Body) String() (string, error) {
	bytes, err := b.Bytes()

	return uf.B2S(bytes), err
}

func (b *Body) Bytes() ([]byte, error) {
	if b.eof {
		return b.fullBodyBuff, nil
	}

	b.fullBodyBuff = b.fullBodyBuff[:0]

	for {
		data, err := b.Retrieve()
		b.fullBodyBuff = append(b.fullBodyBuff, data...)
		switch err {
		case nil:
		case io.EOF:
			return b.fullBodyBuff, nil
		default:
			return nil, err
		}
	}
}

// Retrieve returns the next piece of the body. The last piece arrives along
// with io.EOF; a zero-length body yields io.EOF straight away.
func (b *Body) Retrieve() ([]byte, error) {
	if b.eof {
		return nil, io.EOF
	}

	var (
		piece []byte
		err   error
	)

	if b.isChunked {
		piece, err = b.chunked.read()
	} else {
		piece, err = b.plain.read()
	}

	if err == io.EOF {
		b.eof = true
	}

	return piece, err
}

func (b *Body) Discard() (err error) {
	for !b.eof {
		_, err = b.Retrieve()
		if err != nil {
			break
		}
	}

	if err == io.EOF {
		err = nil
	}

	return err
}

type plainBodyReader struct {
	client                tcp.Client
	maxBodyLen, bytesLeft uint64
}

func newPlainBodyReader(client tcp.Client, maxBodyLen uint64) plainBodyReader {
	return plainBodyReader{
		client:     client,
		maxBodyLen: maxBodyLen,
	}
}

func (p *plainBodyReader) init(request *http.Request) {
	p.bytesLeft = uint64(request.ContentLength)
}

func (p *plainBodyReader) read() (body []byte, err error) {
	if p.bytesLeft == 0 {
		return nil, io.EOF
	}

	if p.bytesLeft > p.maxBodyLen {
		return nil, status.ErrBodyTooLarge
	}

	data, err := p.client.Read()
	if err != nil {
		return nil, err
	}

	if dataLen := uint64(len(data)); dataLen >= p.bytesLeft {
		body, data = data[:p.bytesLeft], data[p.bytesLeft:]
		p.client.Unread(data)
		p.bytesLeft = 0
		err = io.EOF
	} else {
		p.bytesLeft -= dataLen
		body = data
	}

	return body, err
}

type chunkedBodyReader struct {
	client               tcp.Client
	maxBodyLen, received uint64
	parser               *chunkedbody.Parser
}

func newChunkedBodyReader(client tcp.Client, maxBodyLen uint64, parser *chunkedbody.Parser) chunkedBodyReader {
	return chunkedBodyReader{
		client:     client,
		maxBodyLen: maxBodyLen,
		parser:     parser,
	}
}

func (c *chunkedBodyReader) init() {
	c.received = 0
}

func (c *chunkedBodyReader) read() (body []byte, err error) {
	data, err := c.client.Read()
	if err != nil {
		return nil, err
	}

	chunk, extra, err := c.parser.Parse(data, false)
	switch err {
	case nil, io.EOF:
	default:
		return nil, status.ErrBadChunk
	}

	received, overflows := adduint(c.received, uint64(len(chunk)))
	if overflows || received > c.maxBodyLen {
		return nil, status.ErrBodyTooLarge
	}

	c.received = received
	c.client.Unread(extra)

	return chunk, err
}

func adduint(x, y uint64) (uint64, bool) {
	return x + y, math.MaxUint64-x < y
}
