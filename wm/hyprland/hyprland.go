// Package hyprland implements the Hyprland IPC protocol: one line of text
// per request over a fresh Unix connection, with the write half shut down
// to signal end-of-request, then a read until EOF for the reply.
package hyprland

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/tidwall/gjson"

	"github.com/cespare/nvg/direction"
	"github.com/cespare/nvg/nproc"
	"github.com/cespare/nvg/wire"
	"github.com/cespare/nvg/wm"
)

// ErrNoInstanceSignature means $HYPRLAND_INSTANCE_SIGNATURE isn't set.
var ErrNoInstanceSignature = errors.New("hyprland: HYPRLAND_INSTANCE_SIGNATURE not set")

// maxReplyLen bounds a single IPC reply buffer, per spec §5.
const maxReplyLen = 8192

// Client dials a fresh connection per request, matching Hyprland's own
// request/response model (the socket is not kept open across calls).
type Client struct {
	sockPath string
	timeout  time.Duration
}

var _ wm.WindowManager = (*Client)(nil)

// SocketPath resolves $XDG_RUNTIME_DIR/hypr/$HYPRLAND_INSTANCE_SIGNATURE/.socket.sock.
func SocketPath() (string, error) {
	sig := os.Getenv("HYPRLAND_INSTANCE_SIGNATURE")
	if sig == "" {
		return "", ErrNoInstanceSignature
	}
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	return filepath.Join(runtimeDir, "hypr", sig, ".socket.sock"), nil
}

// Connect resolves the Hyprland socket path. The connection itself is
// opened fresh for every request (see request), so Connect does no I/O.
func Connect(timeout time.Duration) (*Client, error) {
	path, err := SocketPath()
	if err != nil {
		return nil, err
	}
	return &Client{sockPath: path, timeout: timeout}, nil
}

func (c *Client) Disconnect() {}

func (c *Client) request(line string) ([]byte, error) {
	conn, err := wire.DialUnixTimeout(c.sockPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("hyprland: connect: %w", err)
	}
	defer conn.Close()

	if err := wire.WriteAll(conn, []byte(line)); err != nil {
		return nil, err
	}
	if uc, ok := conn.(*net.UnixConn); ok {
		if err := uc.CloseWrite(); err != nil {
			return nil, fmt.Errorf("hyprland: shutdown write: %w", err)
		}
	}
	buf := make([]byte, maxReplyLen)
	n, err := wire.ReadUntilEOF(conn, buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

func (c *Client) FocusedPID() (nproc.PID, bool) {
	body, err := c.request("j/activewindow")
	if err != nil {
		return 0, false
	}
	pid := gjson.GetBytes(body, "pid").Int()
	if pid <= 0 {
		return 0, false
	}
	return nproc.PID(pid), true
}

var dirLetter = map[direction.Direction]string{
	direction.Left:  "l",
	direction.Right: "r",
	direction.Up:    "u",
	direction.Down:  "d",
}

func (c *Client) MoveFocus(dir direction.Direction) error {
	_, err := c.request("dispatch movefocus " + dirLetter[dir])
	return err
}
