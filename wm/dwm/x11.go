package dwm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/nvg/wire"
)

// ErrNoDisplay means $DISPLAY isn't set.
var ErrNoDisplay = errors.New("dwm: DISPLAY not set")

// maxSetupReply bounds the variable-length tail of the X11 connection
// setup reply (vendor string, pixmap formats, screens).
const maxSetupReply = 1 << 16

const (
	x11OpInternAtom  = 16
	x11OpGetProperty = 20
)

// displayAddr is a parsed $DISPLAY of the form [host]:display[.screen].
type displayAddr struct {
	host    string
	display int
	screen  int
}

func parseDisplay(s string) (displayAddr, error) {
	i := strings.LastIndexByte(s, ':')
	if i < 0 {
		return displayAddr{}, fmt.Errorf("dwm: malformed DISPLAY %q", s)
	}
	host := s[:i]
	rest := s[i+1:]
	screen := 0
	if j := strings.IndexByte(rest, '.'); j >= 0 {
		n, err := strconv.Atoi(rest[j+1:])
		if err != nil {
			return displayAddr{}, fmt.Errorf("dwm: malformed DISPLAY screen %q", s)
		}
		screen = n
		rest = rest[:j]
	}
	display, err := strconv.Atoi(rest)
	if err != nil {
		return displayAddr{}, fmt.Errorf("dwm: malformed DISPLAY number %q", s)
	}
	return displayAddr{host: host, display: display, screen: screen}, nil
}

// x11Conn is a single synchronous connection to the X server: every request
// this package sends is answered before the next is issued, so no sequence
// number bookkeeping is needed.
type x11Conn struct {
	conn       net.Conn
	timeout    time.Duration
	rootWindow uint32
}

// dialX11 performs the full handshake described in spec §4.4.5: parse
// $DISPLAY, look up an Xauthority entry, connect to the Unix socket, send
// the connection setup, and walk the reply to the requested screen's root
// window.
func dialX11(timeout time.Duration) (*x11Conn, error) {
	displayEnv := os.Getenv("DISPLAY")
	if displayEnv == "" {
		return nil, ErrNoDisplay
	}
	addr, err := parseDisplay(displayEnv)
	if err != nil {
		return nil, err
	}

	var auth xauthEntry
	if host, err := nodename(); err == nil {
		auth, _ = lookupXauth(xauthPath(), host, addr.display)
	}

	sockPath := fmt.Sprintf("/tmp/.X11-unix/X%d", addr.display)
	conn, err := wire.DialUnixTimeout(sockPath, timeout)
	if err != nil {
		return nil, fmt.Errorf("dwm: connect X11: %w", err)
	}

	if err := sendSetup(conn, auth); err != nil {
		conn.Close()
		return nil, err
	}
	root, err := readSetupReply(conn, addr.screen)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &x11Conn{conn: conn, timeout: timeout, rootWindow: root}, nil
}

func (c *x11Conn) Close() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func pad4(n int) int { return (4 - n%4) % 4 }

func sendSetup(conn net.Conn, auth xauthEntry) error {
	nameLen, dataLen := len(auth.name), len(auth.data)
	buf := make([]byte, 0, 12+nameLen+pad4(nameLen)+dataLen+pad4(dataLen))
	buf = append(buf, 'l', 0) // byte-order 'l' (little-endian), unused pad
	buf = binary.LittleEndian.AppendUint16(buf, 11)
	buf = binary.LittleEndian.AppendUint16(buf, 0)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(nameLen))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(dataLen))
	buf = binary.LittleEndian.AppendUint16(buf, 0) // unused pad
	buf = append(buf, auth.name...)
	buf = append(buf, make([]byte, pad4(nameLen))...)
	buf = append(buf, auth.data...)
	buf = append(buf, make([]byte, pad4(dataLen))...)
	return wire.WriteAll(conn, buf)
}

// readSetupReply reads the 8-byte setup header plus its variable tail, and
// returns the root window id of the requested screen.
func readSetupReply(conn net.Conn, wantScreen int) (uint32, error) {
	var header [8]byte
	if err := wire.ReadExact(conn, header[:]); err != nil {
		return 0, err
	}
	status := header[0]
	additionalLen := int(binary.LittleEndian.Uint16(header[6:8]))
	if additionalLen*4 > maxSetupReply {
		return 0, fmt.Errorf("dwm: setup reply too large")
	}
	body := make([]byte, additionalLen*4)
	if err := wire.ReadExact(conn, body); err != nil {
		return 0, err
	}
	if status != 1 {
		return 0, fmt.Errorf("dwm: X11 connection setup failed (status %d)", status)
	}
	return parseScreens(body, wantScreen)
}

// parseScreens walks the setup reply's vendor string, pixmap formats, and
// per-screen blocks, returning the root window id of screen wantScreen.
func parseScreens(body []byte, wantScreen int) (uint32, error) {
	if len(body) < 32 {
		return 0, fmt.Errorf("dwm: setup reply too short")
	}
	vendorLen := int(binary.LittleEndian.Uint16(body[16:18]))
	numRoots := int(body[20])
	numFormats := int(body[21])

	pos := 32
	pos += vendorLen + pad4(vendorLen)
	pos += numFormats * 8

	for screenIdx := 0; screenIdx < numRoots; screenIdx++ {
		if pos+40 > len(body) {
			return 0, fmt.Errorf("dwm: truncated screen block")
		}
		screen := body[pos : pos+40]
		root := binary.LittleEndian.Uint32(screen[0:4])
		numDepths := int(screen[39])
		pos += 40

		for d := 0; d < numDepths; d++ {
			if pos+8 > len(body) {
				return 0, fmt.Errorf("dwm: truncated depth block")
			}
			depth := body[pos : pos+8]
			numVisuals := int(binary.LittleEndian.Uint16(depth[2:4]))
			pos += 8 + numVisuals*24
		}

		if screenIdx == wantScreen {
			return root, nil
		}
	}
	return 0, fmt.Errorf("dwm: screen %d not present in setup reply", wantScreen)
}

// internAtom sends InternAtom(name) and returns the atom id from byte
// offset 8 of the 32-byte reply.
func (c *x11Conn) internAtom(name string) (uint32, error) {
	reqLen := 2 + (len(name)+pad4(len(name)))/4
	req := make([]byte, 0, reqLen*4)
	req = append(req, x11OpInternAtom, 0)
	req = binary.LittleEndian.AppendUint16(req, uint16(reqLen))
	req = binary.LittleEndian.AppendUint16(req, uint16(len(name)))
	req = binary.LittleEndian.AppendUint16(req, 0)
	req = append(req, name...)
	req = append(req, make([]byte, pad4(len(name)))...)

	if c.timeout > 0 {
		if err := wire.SetTimeouts(c.conn, c.timeout); err != nil {
			return 0, err
		}
	}
	if err := wire.WriteAll(c.conn, req); err != nil {
		return 0, err
	}
	var reply [32]byte
	if err := wire.ReadExact(c.conn, reply[:]); err != nil {
		return 0, err
	}
	if reply[0] != 1 {
		return 0, fmt.Errorf("dwm: InternAtom failed (reply type %d)", reply[0])
	}
	return binary.LittleEndian.Uint32(reply[8:12]), nil
}

// getPropertyU32 issues GetProperty for a 32-bit-valued property on window
// and returns its first returned u32.
func (c *x11Conn) getPropertyU32(window, atom uint32) (uint32, error) {
	req := make([]byte, 0, 24)
	req = append(req, x11OpGetProperty, 0)
	req = binary.LittleEndian.AppendUint16(req, 6) // 24 bytes / 4
	req = binary.LittleEndian.AppendUint32(req, window)
	req = binary.LittleEndian.AppendUint32(req, atom)
	req = binary.LittleEndian.AppendUint32(req, 0) // AnyPropertyType
	req = binary.LittleEndian.AppendUint32(req, 0) // long-offset
	req = binary.LittleEndian.AppendUint32(req, 1024)

	if c.timeout > 0 {
		if err := wire.SetTimeouts(c.conn, c.timeout); err != nil {
			return 0, err
		}
	}
	if err := wire.WriteAll(c.conn, req); err != nil {
		return 0, err
	}
	var header [32]byte
	if err := wire.ReadExact(c.conn, header[:]); err != nil {
		return 0, err
	}
	if header[0] != 1 {
		return 0, fmt.Errorf("dwm: GetProperty failed (reply type %d)", header[0])
	}
	format := header[1]
	replyLen := binary.LittleEndian.Uint32(header[4:8])
	valueLen := binary.LittleEndian.Uint32(header[16:20])
	if format != 32 || valueLen < 1 {
		return 0, fmt.Errorf("dwm: property missing or wrong format")
	}
	value := make([]byte, replyLen*4)
	if len(value) > 0 {
		if err := wire.ReadExact(c.conn, value); err != nil {
			return 0, err
		}
	}
	if len(value) < 4 {
		return 0, fmt.Errorf("dwm: property value too short")
	}
	return binary.LittleEndian.Uint32(value[0:4]), nil
}
