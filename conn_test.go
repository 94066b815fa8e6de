package xwire

import (
	"bytes"
	"io"
	"net"
	"time"
)

type testAddr string

func (a testAddr) Network() string { return "test" }
func (a testAddr) String() string  { return string(a) }

// scriptConn is an in-memory net.Conn for stream-level tests: Read drains
// a scripted server-to-client byte sequence, Write collects everything
// the client sends. maxRead caps the bytes returned per Read call so
// tests can simulate partial reads; 0 means unlimited.
type scriptConn struct {
	in      *bytes.Reader
	out     bytes.Buffer
	maxRead int
	closed  bool
}

func newScriptConn(serverBytes []byte) *scriptConn {
	return &scriptConn{in: bytes.NewReader(serverBytes)}
}

func (c *scriptConn) Read(p []byte) (int, error) {
	if c.maxRead > 0 && len(p) > c.maxRead {
		p = p[:c.maxRead]
	}
	return c.in.Read(p)
}

func (c *scriptConn) Write(p []byte) (int, error) {
	if c.closed {
		return 0, io.ErrClosedPipe
	}
	return c.out.Write(p)
}

func (c *scriptConn) Close() error {
	c.closed = true
	return nil
}

func (c *scriptConn) LocalAddr() net.Addr                { return testAddr("local") }
func (c *scriptConn) RemoteAddr() net.Addr               { return testAddr("remote") }
func (c *scriptConn) SetDeadline(t time.Time) error      { return nil }
func (c *scriptConn) SetReadDeadline(t time.Time) error  { return nil }
func (c *scriptConn) SetWriteDeadline(t time.Time) error { return nil }
