// Package dwm implements the dwm backend: focus moves go through the
// dwmfifo patch's named pipe, and the focused PID is read via the raw X11
// protocol (EWMH _NET_ACTIVE_WINDOW / _NET_WM_PID), since stock dwm exposes
// no IPC for queries.
package dwm

import (
	"time"

	"github.com/cespare/nvg/direction"
	"github.com/cespare/nvg/nproc"
	"github.com/cespare/nvg/wm"
)

// Client holds the fifo path for moves and a lazily-dialed X11 connection
// for focused-PID queries.
type Client struct {
	fifoPath string
	timeout  time.Duration
	x11      *x11Conn

	activeWindowAtom uint32
	wmPIDAtom        uint32
}

var _ wm.WindowManager = (*Client)(nil)

// Connect resolves the fifo path. The X11 connection is opened lazily on
// the first FocusedPID call, since MoveFocus alone never needs it.
func Connect(timeout time.Duration) (*Client, error) {
	return &Client{fifoPath: fifoPath(), timeout: timeout}, nil
}

func (c *Client) Disconnect() {
	if c.x11 != nil {
		c.x11.Close()
		c.x11 = nil
	}
}

func (c *Client) ensureX11() error {
	if c.x11 != nil {
		return nil
	}
	conn, err := dialX11(c.timeout)
	if err != nil {
		return err
	}
	activeWindow, err := conn.internAtom("_NET_ACTIVE_WINDOW")
	if err != nil {
		conn.Close()
		return err
	}
	wmPID, err := conn.internAtom("_NET_WM_PID")
	if err != nil {
		conn.Close()
		return err
	}
	c.x11 = conn
	c.activeWindowAtom = activeWindow
	c.wmPIDAtom = wmPID
	return nil
}

// FocusedPID reads _NET_ACTIVE_WINDOW off the root window, then
// _NET_WM_PID off the active window, per spec §4.4.5 steps 5-7.
func (c *Client) FocusedPID() (nproc.PID, bool) {
	if err := c.ensureX11(); err != nil {
		return 0, false
	}
	activeWindow, err := c.x11.getPropertyU32(c.x11.rootWindow, c.activeWindowAtom)
	if err != nil || activeWindow == 0 {
		return 0, false
	}
	pid, err := c.x11.getPropertyU32(activeWindow, c.wmPIDAtom)
	if err != nil || pid == 0 {
		return 0, false
	}
	return nproc.PID(pid), true
}

// MoveFocus writes the dwmfifo focusstack command for dir.
func (c *Client) MoveFocus(dir direction.Direction) error {
	return writeFifoCommand(c.fifoPath, fifoCommand(dir))
}
