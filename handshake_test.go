package xwire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// buildSetupResponse assembles a server handshake response with the given
// status, header bytes and body, padding the body to 4-byte blocks.
func buildSetupResponse(status, b1 byte, major, minor uint16, body []byte) []byte {
	padded := make([]byte, pad4(len(body)))
	copy(padded, body)

	out := make([]byte, 8, 8+len(padded))
	out[0] = status
	out[1] = b1
	put16(out[2:], major)
	put16(out[4:], minor)
	put16(out[6:], uint16(len(padded)/4))
	return append(out, padded...)
}

// buildSetupSuccessBody assembles the fixed 32-byte success block plus a
// padded vendor string and raw trailing tables.
func buildSetupSuccessBody(vendor string, trailing []byte) []byte {
	body := make([]byte, 32)
	put32(body[0:], 11501000)   // release number
	put32(body[4:], 0x02a00000) // resource id base
	put32(body[8:], 0x001fffff) // resource id mask
	put32(body[12:], 256)       // motion buffer size
	put16(body[16:], uint16(len(vendor)))
	put16(body[18:], 65535) // maximum request length
	body[20] = 1            // screens
	body[21] = 2            // pixmap formats
	body[22] = 1            // image byte order
	body[23] = 1            // bitmap bit order
	body[24] = 32           // scanline unit
	body[25] = 32           // scanline pad
	body[26] = 8            // min keycode
	body[27] = 255          // max keycode

	body = append(body, vendor...)
	body = append(body, make([]byte, pad4(len(vendor))-len(vendor))...)
	return append(body, trailing...)
}

func TestWriteSetupRequestLayout(t *testing.T) {
	conn := newScriptConn(nil)
	s := newStream(streamTCP, conn)

	auth := &AuthInfo{Name: "MIT-MAGIC-COOKIE-1", Data: []byte{1, 2, 3, 4, 5}}
	require.NoError(t, writeSetupRequest(s, auth))

	wire := conn.out.Bytes()
	require.Equal(t, byte('B'), wire[0], "big-endian order marker")
	require.Equal(t, uint16(11), get16(wire[2:]), "protocol major version")
	require.Equal(t, uint16(0), get16(wire[4:]), "protocol minor version")
	require.Equal(t, uint16(18), get16(wire[6:]), "auth name length")
	require.Equal(t, uint16(5), get16(wire[8:]), "auth data length")

	// Name is 18 bytes (needs 2 pad bytes), data is 5 (needs 3).
	require.Len(t, wire, 12+20+8)
	require.Equal(t, "MIT-MAGIC-COOKIE-1", string(wire[12:30]))
	require.Equal(t, []byte{0, 0}, wire[30:32])
	require.Equal(t, []byte{1, 2, 3, 4, 5}, wire[32:37])
	require.Equal(t, []byte{0, 0, 0}, wire[37:40])
}

func TestWriteSetupRequestNoAuth(t *testing.T) {
	conn := newScriptConn(nil)
	s := newStream(streamTCP, conn)

	require.NoError(t, writeSetupRequest(s, nil))
	wire := conn.out.Bytes()
	require.Len(t, wire, 12)
	require.Equal(t, uint16(0), get16(wire[6:]))
	require.Equal(t, uint16(0), get16(wire[8:]))
}

func TestReadSetupResponseSuccess(t *testing.T) {
	trailing := []byte{9, 9, 9, 9, 8, 8, 8, 8}
	script := buildSetupResponse(setupSuccess, 0, 11, 0,
		buildSetupSuccessBody("The X.Org Foundation", trailing))

	s := newStream(streamTCP, newScriptConn(script))
	info, err := readSetupResponse(s)
	require.NoError(t, err)

	require.Equal(t, uint16(11), info.ProtocolMajor)
	require.Equal(t, uint16(0), info.ProtocolMinor)
	require.Equal(t, uint32(11501000), info.ReleaseNumber)
	require.Equal(t, uint32(0x02a00000), info.ResourceIDBase)
	require.Equal(t, uint32(0x001fffff), info.ResourceIDMask)
	require.Equal(t, uint16(65535), info.MaximumRequestLength)
	require.Equal(t, uint8(1), info.NumScreens)
	require.Equal(t, uint8(2), info.NumFormats)
	require.Equal(t, uint8(8), info.MinKeycode)
	require.Equal(t, uint8(255), info.MaxKeycode)
	require.Equal(t, "The X.Org Foundation", info.Vendor)
	require.Equal(t, trailing, info.FormatsAndScreens)
}

func TestReadSetupResponseFailed(t *testing.T) {
	reason := "no protocol specified"
	script := buildSetupResponse(setupFailed, byte(len(reason)), 11, 0, []byte(reason))

	s := newStream(streamTCP, newScriptConn(script))
	_, err := readSetupResponse(s)

	var failure *SetupFailure
	require.ErrorAs(t, err, &failure)
	require.Equal(t, reason, failure.Reason)
	require.Equal(t, uint16(11), failure.ProtocolMajor)
}

func TestReadSetupResponseAuthenticate(t *testing.T) {
	reason := "Authorization required, but no authorization protocol specified"
	script := buildSetupResponse(setupAuthenticate, 0, 0, 0, []byte(reason))

	s := newStream(streamTCP, newScriptConn(script))
	_, err := readSetupResponse(s)

	var authErr *AuthenticateError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, reason, authErr.Reason)
}

func TestReadSetupResponseUnknownStatus(t *testing.T) {
	script := buildSetupResponse(7, 0, 0, 0, nil)
	s := newStream(streamTCP, newScriptConn(script))
	_, err := readSetupResponse(s)
	require.Error(t, err)
}

func TestSetupConnection(t *testing.T) {
	script := buildSetupResponse(setupSuccess, 0, 11, 0, buildSetupSuccessBody("vendor", nil))
	conn := newScriptConn(script)
	s := newStream(streamTCP, conn)

	info, err := setupConnection(s, nil)
	require.NoError(t, err)
	require.Equal(t, "vendor", info.Vendor)

	// The setup request must have been written and flushed first.
	require.Equal(t, 12, conn.out.Len())
	require.Equal(t, byte('B'), conn.out.Bytes()[0])
}
