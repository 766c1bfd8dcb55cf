package dwm

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"

	"golang.org/x/sys/unix"
)

// xauthFamilyLocal is the Xauthority family value for a Unix-domain
// connection; xauthFamilyWild (spelled "0" in spec §4.4.5) is treated as a
// wildcard match.
const (
	xauthFamilyLocal = 256
	xauthFamilyWild  = 0
)

type xauthEntry struct {
	name string
	data []byte
}

// xauthPath resolves $XAUTHORITY, falling back to $HOME/.Xauthority.
func xauthPath() string {
	if p := os.Getenv("XAUTHORITY"); p != "" {
		return p
	}
	return os.Getenv("HOME") + "/.Xauthority"
}

// nodename returns uname().nodename, used to match local Xauthority
// entries against the running host.
func nodename() (string, error) {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return "", fmt.Errorf("dwm: uname: %w", err)
	}
	return cstring(u.Nodename[:]), nil
}

func cstring(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// lookupXauth scans the Xauthority file for the first record matching
// either family 256 (FamilyLocal) with address == host and number ==
// display, or family 0, per spec §4.4.5 step 2.
func lookupXauth(path, host string, display int) (xauthEntry, bool) {
	f, err := os.Open(path)
	if err != nil {
		return xauthEntry{}, false
	}
	defer f.Close()

	for {
		family, err := readBE16(f)
		if err != nil {
			return xauthEntry{}, false
		}
		address, err := readBE16String(f)
		if err != nil {
			return xauthEntry{}, false
		}
		numberStr, err := readBE16String(f)
		if err != nil {
			return xauthEntry{}, false
		}
		name, err := readBE16String(f)
		if err != nil {
			return xauthEntry{}, false
		}
		data, err := readBE16Bytes(f)
		if err != nil {
			return xauthEntry{}, false
		}

		if family == xauthFamilyWild {
			return xauthEntry{name: name, data: data}, true
		}
		if family == xauthFamilyLocal && address == host && numberStr == strconv.Itoa(display) {
			return xauthEntry{name: name, data: data}, true
		}
	}
}

func readBE16(r io.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

func readBE16Bytes(r io.Reader) ([]byte, error) {
	n, err := readBE16(r)
	if err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

func readBE16String(r io.Reader) (string, error) {
	b, err := readBE16Bytes(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
