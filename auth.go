package xwire

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// familyLocal is the Xauthority address family for local (non-network)
// connections, as per Xauth.h.
const familyLocal = 256

// ReadAuthority scans the Xauthority file at path for the entry matching
// hostname and display number, returning its credentials for use in
// Connect. If hostname is empty or "localhost", the system's hostname is
// used instead. Path resolution (XAUTHORITY, the home directory) is the
// caller's job; the library itself never consults the environment.
func ReadAuthority(path, hostname string, display int16) (*AuthInfo, error) {
	if hostname == "" || hostname == "localhost" {
		var err error
		hostname, err = os.Hostname()
		if err != nil {
			return nil, errors.Wrap(err, "resolve local hostname")
		}
	}
	displayStr := strconv.Itoa(int(display))

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open authority file")
	}
	defer f.Close()

	r := bufio.NewReader(f)
	for {
		family, err := readAuthU16(r)
		if err == io.EOF {
			return nil, errors.Errorf("no authority entry for %s:%s", hostname, displayStr)
		}
		if err != nil {
			return nil, errors.Wrap(err, "read authority entry")
		}

		addr, err := readAuthString(r)
		if err != nil {
			return nil, errors.Wrap(err, "read authority entry")
		}
		disp, err := readAuthString(r)
		if err != nil {
			return nil, errors.Wrap(err, "read authority entry")
		}
		name, err := readAuthString(r)
		if err != nil {
			return nil, errors.Wrap(err, "read authority entry")
		}
		data, err := readAuthBytes(r)
		if err != nil {
			return nil, errors.Wrap(err, "read authority entry")
		}

		if family == familyLocal && addr == hostname && disp == displayStr {
			return &AuthInfo{Name: name, Data: data}, nil
		}
	}
}

func readAuthU16(r io.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

func readAuthBytes(r io.Reader) ([]byte, error) {
	n, err := readAuthU16(r)
	if err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

func readAuthString(r io.Reader) (string, error) {
	b, err := readAuthBytes(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
