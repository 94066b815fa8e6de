package xwire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testReply(extra uint32) *Reply {
	payload := make([]byte, 24+4*int(extra))
	for i := range payload {
		payload[i] = byte(i)
	}
	return &Reply{Metabyte: 0x5a, Sequence: 0x0102, Length: extra, Payload: payload}
}

func TestFrameRoundTrip(t *testing.T) {
	event := &Event{Code: 12}
	copy(event.Payload[:], "some event data")

	errFrame := &Error{
		Code:        3,
		Sequence:    0xbeef,
		Metablock:   [4]byte{0xde, 0xad, 0xbe, 0xef},
		MinorOpcode: 0x0201,
		MajorOpcode: 42,
	}
	copy(errFrame.Payload[:], "extra error bytes")

	frames := []Frame{
		testReply(0),
		testReply(3),
		event,
		errFrame,
	}

	for _, want := range frames {
		wire := want.Bytes()
		require.Zero(t, len(wire)%4, "frame length must be a multiple of 4")

		n, err := checkFrame(wire)
		require.NoError(t, err)
		require.Equal(t, len(wire), n)

		got, consumed, err := parseFrame(wire)
		require.NoError(t, err)
		require.Equal(t, len(wire), consumed)
		require.Equal(t, want, got)
	}
}

func TestRequestRoundTrip(t *testing.T) {
	req := &Request{
		MajorOpcode: 98,
		Metabyte:    1,
		Length:      2,
		Payload:     []byte{1, 2, 3, 4, 5, 6, 7, 8},
	}
	require.NoError(t, req.validate())

	wire := req.Bytes()
	require.Len(t, wire, 4+4*int(req.Length))

	got, consumed, err := parseRequest(wire)
	require.NoError(t, err)
	require.Equal(t, len(wire), consumed)
	require.Equal(t, req, got)
}

func TestRequestValidate(t *testing.T) {
	req := &Request{MajorOpcode: 1, Length: 2, Payload: []byte{1, 2, 3}}
	require.ErrorIs(t, req.validate(), ErrBadFrame)
}

// Feeding the codec one byte at a time must report errIncomplete on every
// strict prefix and decode the frame the instant the last byte arrives.
func TestCheckFrameIncrementalFeed(t *testing.T) {
	frames := []Frame{
		testReply(0),
		testReply(3),
		&Event{Code: 200},
		&Error{Code: 1, Sequence: 7, MajorOpcode: 5},
	}

	for _, want := range frames {
		wire := want.Bytes()
		for n := 0; n < len(wire); n++ {
			_, err := checkFrame(wire[:n])
			require.ErrorIs(t, err, errIncomplete, "prefix of %d/%d bytes", n, len(wire))
		}

		total, err := checkFrame(wire)
		require.NoError(t, err)
		require.Equal(t, len(wire), total)

		got, _, err := parseFrame(wire)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestReplySizes(t *testing.T) {
	require.Len(t, testReply(0).Bytes(), 32)
	require.Len(t, testReply(3).Bytes(), 44)

	// Decoding consumes exactly the frame and leaves trailing bytes.
	wire := append(testReply(3).Bytes(), 0xff, 0xfe)
	n, err := checkFrame(wire)
	require.NoError(t, err)
	require.Equal(t, 44, n)

	_, consumed, err := parseFrame(wire[:n])
	require.NoError(t, err)
	require.Equal(t, 44, consumed)
}

func TestFrameDiscriminants(t *testing.T) {
	// First byte 0 decodes as an error, 1 as a reply, anything else as an
	// event with that code.
	var wire [32]byte

	wire[0] = 0
	f, _, err := parseFrame(wire[:])
	require.NoError(t, err)
	require.IsType(t, &Error{}, f)

	wire[0] = 1
	f, _, err = parseFrame(wire[:])
	require.NoError(t, err)
	require.IsType(t, &Reply{}, f)

	wire[0] = 2
	f, _, err = parseFrame(wire[:])
	require.NoError(t, err)
	require.IsType(t, &Event{}, f)
	require.Equal(t, uint8(2), f.(*Event).Code)
}

func TestBigEndianEncoding(t *testing.T) {
	r := &Reply{Sequence: 0x0102, Length: 0x00000003, Payload: make([]byte, 36)}
	wire := r.Bytes()
	require.Equal(t, []byte{0x01, 0x02}, wire[2:4], "sequence is big-endian")
	require.Equal(t, []byte{0x00, 0x00, 0x00, 0x03}, wire[4:8], "length is big-endian")

	req := &Request{MajorOpcode: 7, Length: 0x0102, Payload: make([]byte, 4*0x0102)}
	require.Equal(t, []byte{0x01, 0x02}, req.Bytes()[2:4], "request length is big-endian")
}
