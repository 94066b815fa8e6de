package xwire

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
)

const (
	protocolMajorVersion = 11
	protocolMinorVersion = 0

	// byteOrderMSBFirst asks the server to speak big-endian, the order
	// the frame codec mandates for every multi-byte integer.
	byteOrderMSBFirst = 'B'
)

// Handshake response status bytes.
const (
	setupFailed       byte = 0
	setupSuccess      byte = 1
	setupAuthenticate byte = 2
)

// AuthInfo carries the authorization protocol name and data sent in the
// connection setup request, typically from an Xauthority file.
type AuthInfo struct {
	Name string
	Data []byte
}

// SetupInfo is the server capability data a successful handshake returns.
// The scalar fields and vendor string are decoded; the pixmap-format and
// screen tables are retained raw for the higher-level protocol layer.
type SetupInfo struct {
	ProtocolMajor uint16
	ProtocolMinor uint16

	ReleaseNumber        uint32
	ResourceIDBase       uint32
	ResourceIDMask       uint32
	MotionBufferSize     uint32
	MaximumRequestLength uint16
	NumScreens           uint8
	NumFormats           uint8
	ImageByteOrder       uint8
	BitmapBitOrder       uint8
	BitmapScanlineUnit   uint8
	BitmapScanlinePad    uint8
	MinKeycode           uint8
	MaxKeycode           uint8
	Vendor               string

	// FormatsAndScreens holds the undecoded pixmap-format and screen
	// tables exactly as received.
	FormatsAndScreens []byte
}

// setupConnection drives the handshake over an open stream: it writes the
// setup request and classifies the server's response. Failure is always
// reported to the caller; there is no retry here.
func setupConnection(s *Stream, auth *AuthInfo) (*SetupInfo, error) {
	if err := writeSetupRequest(s, auth); err != nil {
		return nil, err
	}
	return readSetupResponse(s)
}

// writeSetupRequest sends the connection-initiation message: byte-order
// marker, protocol version, and the authorization name and data, each
// padded to a 4-byte boundary.
//
//	[order u8][pad u8][major u16][minor u16]
//	[nameLen u16][dataLen u16][pad u16][name...][data...]
func writeSetupRequest(s *Stream, auth *AuthInfo) error {
	name := ""
	var data []byte
	if auth != nil {
		name, data = auth.Name, auth.Data
	}

	buf := make([]byte, 12, 12+pad4(len(name))+pad4(len(data)))
	buf[0] = byteOrderMSBFirst
	put16(buf[2:], protocolMajorVersion)
	put16(buf[4:], protocolMinorVersion)
	put16(buf[6:], uint16(len(name)))
	put16(buf[8:], uint16(len(data)))

	buf = append(buf, name...)
	buf = append(buf, make([]byte, pad4(len(name))-len(name))...)
	buf = append(buf, data...)
	buf = append(buf, make([]byte, pad4(len(data))-len(data))...)

	if _, err := s.Write(buf); err != nil {
		return errors.Wrap(err, "write setup request")
	}
	if err := s.Flush(); err != nil {
		return errors.Wrap(err, "flush setup request")
	}
	return nil
}

// readSetupResponse blocks until the full fixed-plus-variable response is
// available and classifies it as success, failure, or an authentication
// challenge.
//
//	[status u8][b1 u8][major u16][minor u16][extra u16][extra*4 bytes]
func readSetupResponse(s *Stream) (*SetupInfo, error) {
	var header [8]byte
	if _, err := io.ReadFull(s, header[:]); err != nil {
		return nil, errors.Wrap(err, "read setup response header")
	}

	body := make([]byte, 4*int(get16(header[6:])))
	if _, err := io.ReadFull(s, body); err != nil {
		return nil, errors.Wrap(err, "read setup response body")
	}

	switch header[0] {
	case setupSuccess:
		return parseSetupInfo(header, body)

	case setupFailed:
		// The second header byte is the reason length.
		n := int(header[1])
		if n > len(body) {
			n = len(body)
		}
		return nil, &SetupFailure{
			Reason:        string(body[:n]),
			ProtocolMajor: get16(header[2:]),
			ProtocolMinor: get16(header[4:]),
		}

	case setupAuthenticate:
		return nil, &AuthenticateError{
			Reason: string(bytes.TrimRight(body, "\x00")),
		}
	}
	return nil, errors.Errorf("unknown setup response status %d", header[0])
}

func parseSetupInfo(header [8]byte, body []byte) (*SetupInfo, error) {
	if len(body) < 32 {
		return nil, errors.Errorf("setup response body too short: %d bytes", len(body))
	}

	info := &SetupInfo{
		ProtocolMajor:        get16(header[2:]),
		ProtocolMinor:        get16(header[4:]),
		ReleaseNumber:        get32(body[0:]),
		ResourceIDBase:       get32(body[4:]),
		ResourceIDMask:       get32(body[8:]),
		MotionBufferSize:     get32(body[12:]),
		MaximumRequestLength: get16(body[18:]),
		NumScreens:           body[20],
		NumFormats:           body[21],
		ImageByteOrder:       body[22],
		BitmapBitOrder:       body[23],
		BitmapScanlineUnit:   body[24],
		BitmapScanlinePad:    body[25],
		MinKeycode:           body[26],
		MaxKeycode:           body[27],
	}

	vendorLen := int(get16(body[16:]))
	vendorEnd := 32 + pad4(vendorLen)
	if vendorEnd > len(body) {
		return nil, errors.Errorf("setup response vendor string overruns body")
	}
	info.Vendor = string(body[32 : 32+vendorLen])
	info.FormatsAndScreens = body[vendorEnd:]

	return info, nil
}
