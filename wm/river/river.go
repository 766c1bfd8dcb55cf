// Package river implements enough of the Wayland wire protocol to drive
// river: bind zwlr_foreign_toplevel_manager_v1 to find the focused PID by
// cross-referencing activated toplevels against /proc, and zriver_control_v1
// to dispatch focus-view commands.
package river

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/nvg/direction"
	"github.com/cespare/nvg/nproc"
	"github.com/cespare/nvg/wire"
	"github.com/cespare/nvg/wm"
)

// ErrNoWaylandDisplay means $WAYLAND_DISPLAY isn't set.
var ErrNoWaylandDisplay = errors.New("river: WAYLAND_DISPLAY not set")

// errDisplayError is returned internally when the compositor sends
// wl_display's error event; per spec §4.4.4 this aborts the operation
// silently (the caller just sees a failure, not a diagnostic).
var errDisplayError = errors.New("river: wl_display reported an error")

// maxMessageArgs bounds a single incoming message's argument payload.
const maxMessageArgs = 1 << 16

// Fixed object ids: 1 is wl_display by protocol convention; the registry is
// always bound to 2 since nvg opens exactly one connection per invocation.
const (
	displayID  uint32 = 1
	registryID uint32 = 2
)

// wl_display request opcodes.
const (
	displayOpSync        uint16 = 0
	displayOpGetRegistry uint16 = 1
)

// wl_display event opcodes.
const displayEventError uint16 = 0

// wl_registry event/request opcodes.
const (
	registryOpBind         uint16 = 0 // request
	registryEventGlobal    uint16 = 0
	registryEventGlobalRem uint16 = 1
)

// wl_callback event opcode.
const callbackEventDone uint16 = 0

// zwlr_foreign_toplevel_manager_v1 event opcodes.
const (
	managerEventToplevel uint16 = 0
	managerEventFinished uint16 = 1
)

// zwlr_foreign_toplevel_handle_v1 event opcodes.
const (
	handleEventTitle      uint16 = 0
	handleEventAppID      uint16 = 1
	handleEventOutputEnt  uint16 = 2
	handleEventOutputLeft uint16 = 3
	handleEventState      uint16 = 4
	handleEventDone       uint16 = 5
	handleEventClosed     uint16 = 6
)

// state enum values carried inside the handle's state array, one u32 per
// entry.
const stateActivated uint32 = 2

// zriver_control_v1 request opcodes.
const (
	controlOpAddArgument uint16 = 0
	controlOpRunCommand  uint16 = 1
)

const (
	ifaceSeat            = "wl_seat"
	ifaceToplevelManager = "zwlr_foreign_toplevel_manager_v1"
	ifaceRiverControl    = "zriver_control_v1"
)

type registryEntry struct {
	name    uint32
	version uint32
}

// Client is a connection to the compositor's Wayland socket.
type Client struct {
	conn      net.Conn
	timeout   time.Duration
	nextID    uint32
	globals   map[string]registryEntry
	seatID    uint32
	ctrlID    uint32
	managerID uint32
}

var _ wm.WindowManager = (*Client)(nil)

// SocketPath resolves $XDG_RUNTIME_DIR/$WAYLAND_DISPLAY.
func SocketPath() (string, error) {
	display := os.Getenv("WAYLAND_DISPLAY")
	if display == "" {
		return "", ErrNoWaylandDisplay
	}
	if filepath.IsAbs(display) {
		return display, nil
	}
	return filepath.Join(os.Getenv("XDG_RUNTIME_DIR"), display), nil
}

// Connect dials the compositor socket and performs the registry roundtrip
// described in spec §4.4.4, recording the names of wl_seat,
// zwlr_foreign_toplevel_manager_v1, and zriver_control_v1.
func Connect(timeout time.Duration) (*Client, error) {
	path, err := SocketPath()
	if err != nil {
		return nil, err
	}
	conn, err := wire.DialUnixTimeout(path, timeout)
	if err != nil {
		return nil, fmt.Errorf("river: connect: %w", err)
	}
	c := &Client{
		conn:    conn,
		timeout: timeout,
		nextID:  3,
		globals: make(map[string]registryEntry),
	}
	if err := c.fetchRegistry(); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) Disconnect() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *Client) allocID() uint32 {
	id := c.nextID
	c.nextID++
	return id
}

func (c *Client) send(objectID uint32, opcode uint16, b *msgBuilder) error {
	if c.timeout > 0 {
		if err := wire.SetTimeouts(c.conn, c.timeout); err != nil {
			return err
		}
	}
	return wire.WriteAll(c.conn, b.build(objectID, opcode))
}

// readMessage reads one wire message: 8-byte header, then its argument body.
func (c *Client) readMessage() (wireMessage, error) {
	var header [8]byte
	if err := wire.ReadExact(c.conn, header[:]); err != nil {
		return wireMessage{}, err
	}
	objectID, size, opcode := decodeHeader(header[:])
	if size < 8 || size-8 > maxMessageArgs {
		return wireMessage{}, fmt.Errorf("river: implausible message size %d", size)
	}
	args := make([]byte, size-8)
	if len(args) > 0 {
		if err := wire.ReadExact(c.conn, args); err != nil {
			return wireMessage{}, err
		}
	}
	return wireMessage{objectID: objectID, opcode: opcode, args: args}, nil
}

// sync sends wl_display.sync and drains messages, invoking onMsg for each
// one seen before the matching wl_callback.done arrives. A wl_display error
// event aborts with errDisplayError.
func (c *Client) sync(onMsg func(wireMessage)) error {
	cbID := c.allocID()
	var b msgBuilder
	b.putUint32(cbID)
	if err := c.send(displayID, displayOpSync, &b); err != nil {
		return err
	}
	for {
		msg, err := c.readMessage()
		if err != nil {
			return err
		}
		if msg.objectID == displayID && msg.opcode == displayEventError {
			return errDisplayError
		}
		if msg.objectID == cbID && msg.opcode == callbackEventDone {
			return nil
		}
		if onMsg != nil {
			onMsg(msg)
		}
	}
}

func (c *Client) fetchRegistry() error {
	var b msgBuilder
	b.putUint32(registryID)
	if err := c.send(displayID, displayOpGetRegistry, &b); err != nil {
		return err
	}
	return c.sync(func(msg wireMessage) {
		if msg.objectID != registryID || msg.opcode != registryEventGlobal {
			return
		}
		r := &msgReader{buf: msg.args}
		name, err := r.uint32()
		if err != nil {
			return
		}
		iface, err := r.string()
		if err != nil {
			return
		}
		version, err := r.uint32()
		if err != nil {
			return
		}
		c.globals[iface] = registryEntry{name: name, version: version}
	})
}

func (c *Client) bind(iface string) (uint32, error) {
	entry, ok := c.globals[iface]
	if !ok {
		return 0, fmt.Errorf("river: compositor does not expose %s", iface)
	}
	id := c.allocID()
	var b msgBuilder
	b.putUint32(entry.name)
	b.putString(iface)
	b.putUint32(entry.version)
	b.putUint32(id)
	if err := c.send(registryID, registryOpBind, &b); err != nil {
		return 0, err
	}
	return id, nil
}

type toplevelState struct {
	appID     string
	activated bool
	closed    bool
}

// FocusedPID binds the foreign-toplevel manager, collects every toplevel's
// app_id and activated state, then scans /proc for a process whose comm or
// argv[0] basename matches the activated toplevel's app_id. Per spec §4.4.4
// and §8, this match is approximate: the first matching PID wins.
func (c *Client) FocusedPID() (nproc.PID, bool) {
	managerID, err := c.bind(ifaceToplevelManager)
	if err != nil {
		return 0, false
	}
	c.managerID = managerID

	toplevels := make(map[uint32]*toplevelState)
	err = c.sync(func(msg wireMessage) {
		switch {
		case msg.objectID == managerID && msg.opcode == managerEventToplevel:
			r := &msgReader{buf: msg.args}
			handleID, err := r.uint32()
			if err != nil {
				return
			}
			toplevels[handleID] = &toplevelState{}
		case msg.objectID == managerID && msg.opcode == managerEventFinished:
			// no state to track
		default:
			st, ok := toplevels[msg.objectID]
			if !ok {
				return // unknown object_id event, ignored per spec
			}
			switch msg.opcode {
			case handleEventAppID:
				r := &msgReader{buf: msg.args}
				if s, err := r.string(); err == nil {
					st.appID = s
				}
			case handleEventState:
				r := &msgReader{buf: msg.args}
				raw, err := r.array()
				if err != nil {
					return
				}
				for i := 0; i+4 <= len(raw); i += 4 {
					if binary.LittleEndian.Uint32(raw[i:]) == stateActivated {
						st.activated = true
					}
				}
			case handleEventClosed:
				st.closed = true
			}
		}
	})
	if err != nil {
		return 0, false
	}

	var appID string
	found := false
	for _, st := range toplevels {
		if st.activated && !st.closed && st.appID != "" {
			appID = st.appID
			found = true
			break
		}
	}
	if !found {
		return 0, false
	}
	pid, ok := findProcessByAppID(appID)
	if !ok {
		return 0, false
	}
	return pid, true
}

// findProcessByAppID scans /proc for the first process whose comm or
// argv[0] basename case-insensitively matches appID.
func findProcessByAppID(appID string) (nproc.PID, bool) {
	want := strings.ToLower(appID)
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return 0, false
	}
	for _, e := range entries {
		pid, err := parsePIDName(e.Name())
		if err != nil {
			continue
		}
		if comm, err := nproc.ReadComm(pid); err == nil && strings.ToLower(comm) == want {
			return pid, true
		}
		if arg0, err := nproc.ReadCmdlineArg0(pid); err == nil {
			if strings.ToLower(filepath.Base(arg0)) == want {
				return pid, true
			}
		}
	}
	return 0, false
}

func parsePIDName(name string) (nproc.PID, error) {
	var n int64
	for _, r := range name {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("river: not a pid: %s", name)
		}
		n = n*10 + int64(r-'0')
	}
	if n <= 0 {
		return 0, fmt.Errorf("river: not a pid: %s", name)
	}
	return nproc.PID(n), nil
}

// MoveFocus binds wl_seat and zriver_control_v1 (if not already bound),
// queues the focus-view command arguments, and runs it, per spec §4.4.4.
func (c *Client) MoveFocus(dir direction.Direction) error {
	if c.seatID == 0 {
		id, err := c.bind(ifaceSeat)
		if err != nil {
			return err
		}
		c.seatID = id
	}
	if c.ctrlID == 0 {
		id, err := c.bind(ifaceRiverControl)
		if err != nil {
			return err
		}
		c.ctrlID = id
	}

	if err := c.addArgument("focus-view"); err != nil {
		return err
	}
	if err := c.addArgument(dir.String()); err != nil {
		return err
	}

	cbID := c.allocID()
	var b msgBuilder
	b.putUint32(c.seatID)
	b.putUint32(cbID)
	if err := c.send(c.ctrlID, controlOpRunCommand, &b); err != nil {
		return err
	}
	return c.sync(nil)
}

func (c *Client) addArgument(s string) error {
	var b msgBuilder
	b.putString(s)
	return c.send(c.ctrlID, controlOpAddArgument, &b)
}
