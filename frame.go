package xwire

import (
	"fmt"

	"github.com/pkg/errors"
)

// Wire frames are self-delimited protocol messages. The first byte of a
// server-to-client frame is the discriminant: 0 is an error, 1 is a
// reply, anything else is an event code. Requests only ever travel
// client-to-server, so the receive path never sees one.
const (
	errorDiscriminant byte = 0
	replyDiscriminant byte = 1
)

// fixedFrameSize is the size of every event and error frame and of a
// reply's fixed header. Replies grow beyond it in 4-byte blocks.
const fixedFrameSize = 32

// A Frame is one complete, decoded wire message.
type Frame interface {
	// Bytes returns the frame's exact wire encoding.
	Bytes() []byte

	isFrame()
}

// Request is a client-to-server message. Length counts the payload in
// 4-byte blocks, so the whole frame is 4 + 4*Length bytes.
type Request struct {
	MajorOpcode uint8
	Metabyte    uint8
	Length      uint16
	Payload     []byte
}

// Reply answers a request. Length counts the 4-byte blocks beyond the
// fixed 32-byte header, never the whole frame, so Payload carries
// 24 + 4*Length bytes.
type Reply struct {
	Metabyte uint8
	Sequence uint16
	Length   uint32
	Payload  []byte
}

// Event is an unsolicited server notification, always exactly 32 bytes.
type Event struct {
	Code    uint8
	Payload [31]byte
}

// Error reports a failed request, always exactly 32 bytes.
type Error struct {
	Code        uint8
	Sequence    uint16
	Metablock   [4]byte
	MinorOpcode uint16
	MajorOpcode uint8
	Payload     [21]byte
}

func (*Request) isFrame() {}
func (*Reply) isFrame()   {}
func (*Event) isFrame()   {}
func (*Error) isFrame()   {}

var (
	_ Frame = (*Request)(nil)
	_ Frame = (*Reply)(nil)
	_ Frame = (*Event)(nil)
	_ Frame = (*Error)(nil)
)

// Error makes a protocol error frame usable as a Go error.
func (e *Error) Error() string {
	return fmt.Sprintf("x protocol error %d: sequence %d, opcode %d/%d",
		e.Code, e.Sequence, e.MajorOpcode, e.MinorOpcode)
}

// validate checks the declared block length against the payload.
func (r *Request) validate() error {
	if len(r.Payload) != 4*int(r.Length) {
		return errors.Wrapf(ErrBadFrame,
			"request payload is %d bytes, length field declares %d",
			len(r.Payload), 4*int(r.Length))
	}
	return nil
}

func (r *Request) Bytes() []byte {
	buf := make([]byte, 4, 4+len(r.Payload))
	buf[0] = r.MajorOpcode
	buf[1] = r.Metabyte
	put16(buf[2:], r.Length)
	return append(buf, r.Payload...)
}

func (r *Reply) Bytes() []byte {
	buf := make([]byte, 8, 8+len(r.Payload))
	buf[0] = replyDiscriminant
	buf[1] = r.Metabyte
	put16(buf[2:], r.Sequence)
	put32(buf[4:], r.Length)
	return append(buf, r.Payload...)
}

func (e *Event) Bytes() []byte {
	buf := make([]byte, fixedFrameSize)
	buf[0] = e.Code
	copy(buf[1:], e.Payload[:])
	return buf
}

func (e *Error) Bytes() []byte {
	buf := make([]byte, fixedFrameSize)
	buf[0] = errorDiscriminant
	buf[1] = e.Code
	put16(buf[2:], e.Sequence)
	copy(buf[4:8], e.Metablock[:])
	put16(buf[8:], e.MinorOpcode)
	buf[10] = e.MajorOpcode
	copy(buf[11:], e.Payload[:])
	return buf
}

// checkFrame is phase one of the codec: it decides whether buf starts
// with a complete server-to-client frame, returning its total length. It
// never allocates or copies. errIncomplete means "read more and retry".
func checkFrame(buf []byte) (int, error) {
	if len(buf) < 1 {
		return 0, errIncomplete
	}
	if buf[0] == replyDiscriminant {
		// The reply's extra length sits after the metabyte and sequence
		// number; the frame is the 32-byte header plus that many blocks.
		if len(buf) < 8 {
			return 0, errIncomplete
		}
		total := fixedFrameSize + 4*int(get32(buf[4:]))
		if len(buf) < total {
			return 0, errIncomplete
		}
		return total, nil
	}
	if len(buf) < fixedFrameSize {
		return 0, errIncomplete
	}
	return fixedFrameSize, nil
}

// parseFrame is phase two: it decodes the frame checkFrame validated,
// returning a fully-owned Frame and the byte count to discard from the
// buffer. All size arithmetic lives in the cursor, which fails with
// errIncomplete instead of ever indexing out of range.
func parseFrame(buf []byte) (Frame, int, error) {
	cur := cursor{buf: buf}
	disc, err := cur.u8()
	if err != nil {
		return nil, 0, err
	}

	switch disc {
	case errorDiscriminant:
		e := &Error{}
		if e.Code, err = cur.u8(); err != nil {
			return nil, 0, err
		}
		if e.Sequence, err = cur.u16(); err != nil {
			return nil, 0, err
		}
		if err = cur.copy(e.Metablock[:]); err != nil {
			return nil, 0, err
		}
		if e.MinorOpcode, err = cur.u16(); err != nil {
			return nil, 0, err
		}
		if e.MajorOpcode, err = cur.u8(); err != nil {
			return nil, 0, err
		}
		if err = cur.copy(e.Payload[:]); err != nil {
			return nil, 0, err
		}
		return e, cur.off, nil

	case replyDiscriminant:
		r := &Reply{}
		if r.Metabyte, err = cur.u8(); err != nil {
			return nil, 0, err
		}
		if r.Sequence, err = cur.u16(); err != nil {
			return nil, 0, err
		}
		if r.Length, err = cur.u32(); err != nil {
			return nil, 0, err
		}
		if r.Payload, err = cur.take(24 + 4*int(r.Length)); err != nil {
			return nil, 0, err
		}
		return r, cur.off, nil

	default:
		e := &Event{Code: disc}
		if err = cur.copy(e.Payload[:]); err != nil {
			return nil, 0, err
		}
		return e, cur.off, nil
	}
}

// parseRequest decodes a client-to-server frame. The client never
// receives requests; this is the server-role inverse of Request.Bytes.
func parseRequest(buf []byte) (*Request, int, error) {
	cur := cursor{buf: buf}
	r := &Request{}
	var err error
	if r.MajorOpcode, err = cur.u8(); err != nil {
		return nil, 0, err
	}
	if r.Metabyte, err = cur.u8(); err != nil {
		return nil, 0, err
	}
	if r.Length, err = cur.u16(); err != nil {
		return nil, 0, err
	}
	if r.Payload, err = cur.take(4 * int(r.Length)); err != nil {
		return nil, 0, err
	}
	return r, cur.off, nil
}

// writeRequest serializes a request onto the stream and flushes it. A
// flush failure is a transport error; the stream is no longer usable.
func writeRequest(s *Stream, r *Request) error {
	if err := r.validate(); err != nil {
		return err
	}
	if _, err := s.Write(r.Bytes()); err != nil {
		return errors.Wrap(err, "write request")
	}
	if err := s.Flush(); err != nil {
		return errors.Wrap(err, "flush request")
	}
	return nil
}

// cursor walks a byte slice with bounds-checked accessors. Every read
// past the end reports errIncomplete rather than panicking, which keeps
// the decode logic free of size arithmetic.
type cursor struct {
	buf []byte
	off int
}

func (c *cursor) u8() (uint8, error) {
	if c.off+1 > len(c.buf) {
		return 0, errIncomplete
	}
	v := c.buf[c.off]
	c.off++
	return v, nil
}

func (c *cursor) u16() (uint16, error) {
	if c.off+2 > len(c.buf) {
		return 0, errIncomplete
	}
	v := get16(c.buf[c.off:])
	c.off += 2
	return v, nil
}

func (c *cursor) u32() (uint32, error) {
	if c.off+4 > len(c.buf) {
		return 0, errIncomplete
	}
	v := get32(c.buf[c.off:])
	c.off += 4
	return v, nil
}

// take returns an owned copy of the next n bytes.
func (c *cursor) take(n int) ([]byte, error) {
	if c.off+n > len(c.buf) {
		return nil, errIncomplete
	}
	out := make([]byte, n)
	copy(out, c.buf[c.off:])
	c.off += n
	return out, nil
}

// copy fills dst from the next len(dst) bytes.
func (c *cursor) copy(dst []byte) error {
	if c.off+len(dst) > len(c.buf) {
		return errIncomplete
	}
	copy(dst, c.buf[c.off:])
	c.off += len(dst)
	return nil
}
