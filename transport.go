package xwire

import (
	"bufio"
	"fmt"
	"net"
	"runtime"
	"strconv"

	"github.com/pkg/errors"
)

// tcpPortBase is added to the display number to form the server's TCP
// port. The sum is computed in 16-bit space and may wrap for very large
// display numbers; that mirrors the protocol's own arithmetic.
const tcpPortBase = 6000

// unixSocketDir is where local display servers place their sockets.
const unixSocketDir = "/tmp/.X11-unix"

// streamKind tags the two transport variants a Stream can wrap.
type streamKind int

const (
	streamTCP streamKind = iota
	streamUnix
)

func (k streamKind) String() string {
	if k == streamUnix {
		return "unix"
	}
	return "tcp"
}

// A Stream is the uniform byte-stream capability over either transport.
// Writes are buffered until Flush; reads go straight to the socket so the
// client's receive buffer stays the only buffering on the read path.
type Stream struct {
	kind streamKind
	conn net.Conn
	w    *bufio.Writer
}

func newStream(kind streamKind, conn net.Conn) *Stream {
	return &Stream{kind: kind, conn: conn, w: bufio.NewWriter(conn)}
}

func (s *Stream) Read(p []byte) (int, error)  { return s.conn.Read(p) }
func (s *Stream) Write(p []byte) (int, error) { return s.w.Write(p) }
func (s *Stream) Flush() error                { return s.w.Flush() }
func (s *Stream) Close() error                { return s.conn.Close() }

// RemoteAddr reports the dialed endpoint, for logging.
func (s *Stream) RemoteAddr() net.Addr { return s.conn.RemoteAddr() }

// Kind names the transport variant backing the stream: "tcp" or "unix".
func (s *Stream) Kind() string { return s.kind.String() }

// supportsUnixSockets reports whether the platform offers unix domain
// sockets. Where it does not, the default transport falls back to TCP.
func supportsUnixSockets() bool {
	switch runtime.GOOS {
	case "windows", "plan9":
		return false
	}
	return true
}

// displayPort computes the TCP port for a display number. Wraps, never
// saturates.
func displayPort(display int16) uint16 {
	return uint16(tcpPortBase + display)
}

// socketPath computes the unix domain socket path for a display number.
func socketPath(display int16) string {
	return fmt.Sprintf("%s/X%d", unixSocketDir, display)
}

// dialPlan is one resolved entry of the transport decision table: the
// network and address to hand to net.Dial, plus the resulting stream kind.
type dialPlan struct {
	kind    streamKind
	network string
	address string
}

func tcpPlan(network, host string, display int16) dialPlan {
	if host == "" {
		switch network {
		case "tcp6":
			host = "::1"
		default:
			// IPv4 loopback is also the fallback for plain "tcp".
			host = "127.0.0.1"
		}
	}
	return dialPlan{
		kind:    streamTCP,
		network: network,
		address: net.JoinHostPort(host, strconv.Itoa(int(displayPort(display)))),
	}
}

func unixPlan(display int16) dialPlan {
	return dialPlan{kind: streamUnix, network: "unix", address: socketPath(display)}
}

// streamPlan maps every (protocol, host) combination to exactly one
// transport-opening action. Combinations outside the table are rejected.
func streamPlan(proto Protocol, host *Hostname, display int16) (dialPlan, error) {
	if host != nil && host.Kind == HostDECnet {
		return dialPlan{}, ErrDECnetUnsupported
	}
	if proto == ProtocolDECnet {
		return dialPlan{}, ErrDECnetUnsupported
	}

	named := host != nil && host.Kind == HostNamed
	inet6 := host != nil && host.Kind == HostInet6
	unixMarker := host != nil && host.Kind == HostUnix

	switch {
	// Unix domain sockets: explicit protocol, the "unix" host marker, or
	// the platform default when nothing at all is specified.
	case unixMarker:
		return unixPlan(display), nil
	case proto == ProtocolUnix && host == nil:
		return unixPlan(display), nil
	case proto == ProtocolUnspecified && host == nil:
		if supportsUnixSockets() {
			return unixPlan(display), nil
		}
		return tcpPlan("tcp", "", display), nil

	// IPv4 with and without an address.
	case proto == ProtocolInet && named:
		return tcpPlan("tcp4", host.Name, display), nil
	case proto == ProtocolInet && host == nil:
		return tcpPlan("tcp4", "", display), nil

	// IPv6: a bracketed literal forces IPv6 for any TCP-family protocol,
	// as does the inet6 protocol with a plain hostname or no host.
	case inet6 && (proto == ProtocolUnspecified || proto == ProtocolTCP || proto == ProtocolInet6):
		return tcpPlan("tcp6", host.Name, display), nil
	case proto == ProtocolInet6 && named:
		return tcpPlan("tcp6", host.Name, display), nil
	case proto == ProtocolInet6 && host == nil:
		return tcpPlan("tcp6", "", display), nil

	// TCP with the IP version left to the address itself.
	case named && (proto == ProtocolUnspecified || proto == ProtocolTCP):
		return tcpPlan("tcp", host.Name, display), nil
	case proto == ProtocolTCP && host == nil:
		return tcpPlan("tcp", "", display), nil
	}

	// The protocol contradicts the host, e.g. inet with an IPv6 literal.
	name := DisplayName{Protocol: proto, Host: host, Display: display}
	return dialPlan{}, &ParseError{Kind: IllFormatted, Input: name.String()}
}

// openStream opens the transport selected by streamPlan and wraps it in a
// Stream.
func openStream(proto Protocol, host *Hostname, display int16) (*Stream, error) {
	plan, err := streamPlan(proto, host, display)
	if err != nil {
		return nil, err
	}
	conn, err := net.Dial(plan.network, plan.address)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s %s", plan.network, plan.address)
	}
	return newStream(plan.kind, conn), nil
}
