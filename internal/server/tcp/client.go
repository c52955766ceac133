package tcp

import (
	"net"
	"time"

	"github.com/indigo-web/utils/unreader"
)

// Client is a stream over a connected socket. Read rearms the idle deadline on
// every call, so a connection staying silent for longer than the timeout fails
// the pending read with a net.Error reporting Timeout() == true.
type Client interface {
	Read() ([]byte, error)
	Unread([]byte)
	Write([]byte) error
	Remote() net.Addr
	// Shutdown performs a half-close: the peer sees EOF, yet pending inbound
	// data stays readable. Returns without blocking.
	Shutdown() error
	Close() error
}

type closeWriter interface {
	CloseWrite() error
}

type client struct {
	unreader *unreader.Unreader
	buff     []byte
	conn     net.Conn
	timeout  time.Duration
}

func NewClient(conn net.Conn, timeout time.Duration, buff []byte) Client {
	return &client{
		unreader: new(unreader.Unreader),
		buff:     buff,
		conn:     conn,
		timeout:  timeout,
	}
}

func (c *client) Read() ([]byte, error) {
	return c.unreader.PendingOr(func() ([]byte, error) {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
			return nil, err
		}

		n, err := c.conn.Read(c.buff)

		return c.buff[:n], err
	})
}

func (c *client) Unread(b []byte) {
	c.unreader.Unread(b)
}

func (c *client) Write(b []byte) error {
	_, err := c.conn.Write(b)

	return err
}

func (c *client) Remote() net.Addr {
	return c.conn.RemoteAddr()
}

func (c *client) Shutdown() error {
	if cw, ok := c.conn.(closeWriter); ok {
		return cw.CloseWrite()
	}

	return nil
}

func (c *client) Close() error {
	return c.conn.Close()
}
