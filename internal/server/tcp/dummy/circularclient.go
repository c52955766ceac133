package dummy

import (
	"io"
	"net"

	"github.com/indigo-web/utils/unreader"
)

// CircularClient returns the pieces it was initialised with over and over
// again, in a loop. OneTime() limits it to a single pass.
type CircularClient struct {
	unreader        *unreader.Unreader
	data            [][]byte
	written         []byte
	pointer         int
	closed, oneTime bool
}

func NewCircularClient(data ...[]byte) *CircularClient {
	return &CircularClient{
		unreader: new(unreader.Unreader),
		data:     data,
		pointer:  -1,
	}
}

func (c *CircularClient) Read() ([]byte, error) {
	if c.closed {
		return nil, io.EOF
	}

	return c.unreader.PendingOr(func() ([]byte, error) {
		c.pointer++

		if c.pointer == len(c.data) {
			if c.oneTime {
				c.closed = true
				return nil, io.EOF
			}

			c.pointer = 0
		}

		return c.data[c.pointer], nil
	})
}

func (c *CircularClient) Unread(takeback []byte) {
	c.unreader.Unread(takeback)
}

func (c *CircularClient) Write(b []byte) error {
	c.written = append(c.written, b...)
	return nil
}

// Written exposes everything sent through the client so far.
func (c *CircularClient) Written() []byte {
	return c.written
}

func (*CircularClient) Remote() net.Addr {
	return &net.TCPAddr{}
}

func (*CircularClient) Shutdown() error {
	return nil
}

func (c *CircularClient) Close() error {
	c.closed = true
	return nil
}

func (c *CircularClient) Closed() bool {
	return c.closed
}

func (c *CircularClient) OneTime() *CircularClient {
	c.oneTime = true
	return c
}
