/*
Package xwire is a client-side transport and wire-protocol core for the X
Window System network protocol. It parses display specifiers, opens the
matching transport (TCP over IPv4 or IPv6, or a unix domain socket),
negotiates the connection handshake, and frames the protocol's four
message kinds to and from the byte stream.

Connecting:

	client, err := xwire.Connect(os.Getenv("DISPLAY"), nil)
	if err != nil {
		// terminal; re-attempt Connect from scratch
	}
	defer client.Close()

Display specifiers follow the usual grammar,

	[protocol/][host:]display[.screen]

so ":0", "unix/:1", "tcp/hostname:2.1" and "inet6/[::1]:0" all select a
server. The TCP port is 6000 plus the display number; the unix socket
path is /tmp/.X11-unix/X<display>.

After a successful handshake the client exposes Send for serialized
requests and ReadFrame for the incoming reply, event and error frames.
Both operate on one exclusively owned stream: the package does no
internal locking and no reply dispatch. Correlating replies with the
sequence numbers Send returns, decoding typed requests and replies, and
any reconnect policy all belong to the caller.

All multi-byte integers on the wire are big-endian, and every frame's
total length is a multiple of four bytes. Events and errors are exactly
32 bytes; a reply's length field counts the 4-byte blocks beyond its
fixed 32-byte header.
*/
package xwire
