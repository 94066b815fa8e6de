package xwire

import (
	"strconv"
	"strings"
)

// Protocol selects the transport family used to reach the display server.
// It is optional in a display specifier; ProtocolUnspecified means the
// transport is chosen from the hostname and the platform defaults.
type Protocol int

const (
	ProtocolUnspecified Protocol = iota
	// ProtocolTCP connects over TCP with the IP version left unspecified.
	ProtocolTCP
	// ProtocolInet connects over TCP using IPv4.
	ProtocolInet
	// ProtocolInet6 connects over TCP using IPv6.
	ProtocolInet6
	// ProtocolUnix connects over a unix domain socket.
	ProtocolUnix
	// ProtocolDECnet is recognized for completeness only; DECnet was
	// orphaned in the Linux kernel back in 2010 and is not dialable.
	ProtocolDECnet
)

// String returns the specifier token for the protocol, or "" if the
// protocol has no token (unspecified, DECnet).
func (p Protocol) String() string {
	switch p {
	case ProtocolTCP:
		return "tcp"
	case ProtocolInet:
		return "inet"
	case ProtocolInet6:
		return "inet6"
	case ProtocolUnix:
		return "unix"
	}
	return ""
}

// HostnameKind discriminates the host field of a display specifier. The
// kind is decided by the surrounding syntax, not by resolving the name.
type HostnameKind int

const (
	// HostNamed is a hostname or address literal with no special syntax.
	HostNamed HostnameKind = iota
	// HostInet6 is a bracketed IPv6 literal, stored without the brackets.
	HostInet6
	// HostUnix is the literal host text "unix".
	HostUnix
	// HostDECnet is a host followed by the DECnet "::" separator.
	HostDECnet
)

// Hostname is the host portion of a display specifier.
type Hostname struct {
	Kind HostnameKind
	Name string
}

// DisplayName is a parsed display specifier. It is immutable after
// ParseDisplay returns it.
type DisplayName struct {
	Protocol Protocol
	Host     *Hostname
	Display  int16
	Screen   *int16
}

// ParseDisplay parses a display specifier of the form
//
//	[protocol/][host:]display[.screen]
//
// such as ":0", "unix/:1", "tcp/hostname:2.1", "inet6/[::1]:0" or the
// DECnet form "hostname::1". The display number is mandatory; everything
// else is optional. Parsing is pure: no name resolution or dialing
// happens here.
func ParseDisplay(name string) (*DisplayName, error) {
	input := name
	dn := &DisplayName{}

	// Everything before the first '/' is the protocol token.
	if i := strings.Index(name, "/"); i >= 0 {
		proto, err := parseProtocol(name[:i], input)
		if err != nil {
			return nil, err
		}
		dn.Protocol = proto
		name = name[i+1:]
	}

	// Everything before the last ':' is the host field. The separator
	// itself classifies the host: a trailing extra ':' is DECnet syntax,
	// brackets mark an IPv6 literal, the literal "unix" is a marker.
	if i := strings.LastIndex(name, ":"); i >= 0 {
		host := name[:i]
		name = name[i+1:]
		switch {
		case host == "":
			// ":0" and friends; no host at all.
		case strings.HasSuffix(host, ":"):
			dn.Host = &Hostname{Kind: HostDECnet, Name: host[:len(host)-1]}
		case strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]"):
			dn.Host = &Hostname{Kind: HostInet6, Name: host[1 : len(host)-1]}
		case host == "unix":
			dn.Host = &Hostname{Kind: HostUnix}
		default:
			dn.Host = &Hostname{Kind: HostNamed, Name: host}
		}
	}

	// Everything after the last '.' is the screen number.
	if i := strings.LastIndex(name, "."); i >= 0 {
		screen, err := parseInt16(name[i+1:], input)
		if err != nil {
			return nil, err
		}
		dn.Screen = &screen
		name = name[:i]
	}

	display, err := parseInt16(name, input)
	if err != nil {
		return nil, err
	}
	dn.Display = display

	return dn, nil
}

func parseProtocol(token, input string) (Protocol, error) {
	switch token {
	case "tcp":
		return ProtocolTCP, nil
	case "inet":
		return ProtocolInet, nil
	case "inet6":
		return ProtocolInet6, nil
	case "unix":
		if supportsUnixSockets() {
			return ProtocolUnix, nil
		}
	}
	return ProtocolUnspecified, &ParseError{Kind: UnrecognizedProtocol, Input: input}
}

func parseInt16(s, input string) (int16, error) {
	n, err := strconv.ParseInt(s, 10, 16)
	if err != nil {
		return 0, &ParseError{Kind: IllFormatted, Input: input}
	}
	return int16(n), nil
}

// String renders the specifier in canonical form. Parsing the result
// yields an equal DisplayName.
func (dn *DisplayName) String() string {
	var b strings.Builder
	if tok := dn.Protocol.String(); tok != "" {
		b.WriteString(tok)
		b.WriteString("/")
	}
	if dn.Host != nil {
		switch dn.Host.Kind {
		case HostDECnet:
			b.WriteString(dn.Host.Name)
			b.WriteString(":")
		case HostInet6:
			b.WriteString("[")
			b.WriteString(dn.Host.Name)
			b.WriteString("]")
		case HostUnix:
			b.WriteString("unix")
		default:
			b.WriteString(dn.Host.Name)
		}
		b.WriteString(":")
	}
	b.WriteString(strconv.Itoa(int(dn.Display)))
	if dn.Screen != nil {
		b.WriteString(".")
		b.WriteString(strconv.Itoa(int(*dn.Screen)))
	}
	return b.String()
}
