// Package niri implements the niri IPC protocol: newline-terminated JSON
// requests and responses, each response wrapped as {"Ok":...} or
// {"Err":"..."}.
package niri

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/tidwall/gjson"

	"github.com/cespare/nvg/direction"
	"github.com/cespare/nvg/nproc"
	"github.com/cespare/nvg/wire"
	"github.com/cespare/nvg/wm"
)

// ErrNoSocket means $NIRI_SOCKET isn't set.
var ErrNoSocket = errors.New("niri: NIRI_SOCKET not set")

// maxLineLen bounds a single newline-terminated reply.
const maxLineLen = 1 << 20

// Client is a connection to the niri IPC socket.
type Client struct {
	conn    *bufWriteConn
	timeout time.Duration
}

var _ wm.WindowManager = (*Client)(nil)

// SocketPath resolves $NIRI_SOCKET.
func SocketPath() (string, error) {
	p := os.Getenv("NIRI_SOCKET")
	if p == "" {
		return "", ErrNoSocket
	}
	return p, nil
}

type bufWriteConn struct {
	conn interface {
		Close() error
	}
	reader *bufio.Reader
	write  func([]byte) error
}

// Connect dials the niri socket and wraps it for line-oriented I/O.
func Connect(timeout time.Duration) (*Client, error) {
	path, err := SocketPath()
	if err != nil {
		return nil, err
	}
	conn, err := wire.DialUnixTimeout(path, timeout)
	if err != nil {
		return nil, fmt.Errorf("niri: connect: %w", err)
	}
	bc := &bufWriteConn{
		conn:   conn,
		reader: bufio.NewReaderSize(conn, maxLineLen),
		write:  func(b []byte) error { return wire.WriteAll(conn, b) },
	}
	return &Client{conn: bc, timeout: timeout}, nil
}

func (c *Client) Disconnect() {
	if c.conn != nil {
		c.conn.conn.Close()
		c.conn = nil
	}
}

func (c *Client) request(reqJSON string) ([]byte, error) {
	if err := c.conn.write([]byte(reqJSON + "\n")); err != nil {
		return nil, err
	}
	line, err := c.conn.reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("niri: read reply: %w", err)
	}
	return line, nil
}

func (c *Client) FocusedPID() (nproc.PID, bool) {
	body, err := c.request(`"FocusedWindow"`)
	if err != nil {
		return 0, false
	}
	result := gjson.ParseBytes(body)
	if result.Get("Err").Exists() {
		return 0, false
	}
	pidResult := result.Get("Ok.FocusedWindow.pid")
	if !pidResult.Exists() || pidResult.Type == gjson.Null {
		return 0, false
	}
	pid := pidResult.Int()
	if pid <= 0 {
		return 0, false
	}
	return nproc.PID(pid), true
}

var actionName = map[direction.Direction]string{
	direction.Left:  "FocusColumnOrMonitorLeft",
	direction.Right: "FocusColumnOrMonitorRight",
	direction.Up:    "FocusWindowOrMonitorUp",
	direction.Down:  "FocusWindowOrMonitorDown",
}

func (c *Client) MoveFocus(dir direction.Direction) error {
	req := fmt.Sprintf(`{"Action":{%q:{}}}`, actionName[dir])
	_, err := c.request(req)
	return err
}
