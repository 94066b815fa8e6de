package xwire

import (
	"io"

	"github.com/pkg/errors"
)

// A Client owns one open connection to a display server: the stream, the
// receive buffer, and the negotiated setup information. It performs no
// internal locking; concurrent use must be serialized by the caller.
type Client struct {
	stream   *Stream
	buf      receiveBuffer
	setup    *SetupInfo
	sequence uint16
	scratch  [4096]byte
}

// Connect parses the display specifier, opens the selected transport and
// performs the connection handshake. The specifier must already be
// resolved (for the usual default, pass the value of the DISPLAY
// environment variable). auth may be nil for servers that accept
// unauthorized local connections.
//
// Every failure is terminal: re-attempt Connect from scratch.
func Connect(display string, auth *AuthInfo) (*Client, error) {
	name, err := ParseDisplay(display)
	if err != nil {
		return nil, err
	}

	stream, err := openStream(name.Protocol, name.Host, name.Display)
	if err != nil {
		return nil, err
	}

	setup, err := setupConnection(stream, auth)
	if err != nil {
		stream.Close()
		return nil, err
	}

	logger.WithField("transport", stream.Kind()).
		WithField("addr", stream.RemoteAddr().String()).
		WithField("vendor", setup.Vendor).
		Debug("connected to display server")

	return &Client{stream: stream, setup: setup}, nil
}

// Setup returns the server capability data from the handshake.
func (c *Client) Setup() *SetupInfo { return c.setup }

// Close releases the transport. No in-flight frame state survives it.
func (c *Client) Close() error {
	return c.stream.Close()
}

// Send serializes the request onto the stream, flushes it, and returns
// the sequence number assigned to it. Sequence numbers start at 1 and
// wrap at 16 bits; pairing replies to them is the caller's dispatch
// layer's job.
func (c *Client) Send(req *Request) (uint16, error) {
	if err := writeRequest(c.stream, req); err != nil {
		return 0, err
	}
	c.sequence++
	return c.sequence, nil
}

// ReadFrame returns the next complete frame from the server. It buffers
// partial reads internally and only suspends on stream I/O. A clean end
// of stream yields (nil, io.EOF); an end of stream that strands a partial
// frame yields ErrConnectionReset, after which the client must be torn
// down.
func (c *Client) ReadFrame() (Frame, error) {
	for {
		if n, err := checkFrame(c.buf.bytes()); err == nil {
			frame, consumed, err := parseFrame(c.buf.bytes()[:n])
			if err != nil {
				return nil, err
			}
			c.buf.advance(consumed)
			return frame, nil
		} else if err != errIncomplete {
			return nil, err
		}

		n, err := c.stream.Read(c.scratch[:])
		if n > 0 {
			c.buf.append(c.scratch[:n])
			continue
		}
		switch {
		case err == io.EOF || err == nil:
			if c.buf.len() == 0 {
				return nil, io.EOF
			}
			logger.WithField("buffered", c.buf.len()).
				Error("stream ended mid-frame")
			return nil, ErrConnectionReset
		default:
			return nil, errors.Wrap(err, "read stream")
		}
	}
}
