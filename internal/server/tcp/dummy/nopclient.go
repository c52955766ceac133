package dummy

import (
	"io"
	"net"
)

// NopClient does nothing except takebacks, which work as intended.
type NopClient struct {
	takeback []byte
}

func NewNopClient() *NopClient {
	return new(NopClient)
}

func (n *NopClient) Read() ([]byte, error) {
	if len(n.takeback) > 0 {
		takeback := n.takeback
		n.takeback = nil

		return takeback, nil
	}

	return nil, io.EOF
}

func (n *NopClient) Unread(takeback []byte) {
	n.takeback = takeback
}

func (*NopClient) Write([]byte) error {
	return nil
}

func (*NopClient) Remote() net.Addr {
	return &net.TCPAddr{}
}

func (*NopClient) Shutdown() error {
	return nil
}

func (*NopClient) Close() error {
	return nil
}
