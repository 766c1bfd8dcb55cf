// Package sway implements the i3-ipc protocol shared by sway and i3: a
// 14-byte header (6-byte magic, native u32 length, native u32 message
// type) followed by a JSON or plain-text payload.
package sway

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/cespare/nvg/direction"
	"github.com/cespare/nvg/nproc"
	"github.com/cespare/nvg/wire"
	"github.com/cespare/nvg/wm"
)

const magic = "i3-ipc"

const (
	msgRunCommand uint32 = 0
	msgGetTree    uint32 = 4
)

const headerLen = len(magic) + 4 + 4 // 14 bytes

// maxReplyLen bounds a GET_TREE reply; sway trees are usually a few KiB
// to a few dozen KiB even on a busy desktop.
const maxReplyLen = 1 << 20

// ErrSocketPathUnset means neither SWAYSOCK nor I3SOCK is set.
var ErrSocketPathUnset = errors.New("sway: SWAYSOCK/I3SOCK not set")

// Client is a single-use connection to the sway/i3 IPC socket.
type Client struct {
	conn    net.Conn
	timeout time.Duration
}

var _ wm.WindowManager = (*Client)(nil)

// SocketPath resolves $SWAYSOCK, falling back to $I3SOCK.
func SocketPath() (string, error) {
	if p := os.Getenv("SWAYSOCK"); p != "" {
		return p, nil
	}
	if p := os.Getenv("I3SOCK"); p != "" {
		return p, nil
	}
	return "", ErrSocketPathUnset
}

// Connect dials the sway/i3 IPC socket.
func Connect(timeout time.Duration) (*Client, error) {
	path, err := SocketPath()
	if err != nil {
		return nil, err
	}
	conn, err := wire.DialUnixTimeout(path, timeout)
	if err != nil {
		return nil, fmt.Errorf("sway: connect: %w", err)
	}
	return &Client{conn: conn, timeout: timeout}, nil
}

func (c *Client) Disconnect() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *Client) request(msgType uint32, payload []byte) ([]byte, error) {
	if c.timeout > 0 {
		if err := wire.SetTimeouts(c.conn, c.timeout); err != nil {
			return nil, err
		}
	}
	req := make([]byte, 0, headerLen+len(payload))
	req = append(req, magic...)
	req = binary.NativeEndian.AppendUint32(req, uint32(len(payload)))
	req = binary.NativeEndian.AppendUint32(req, msgType)
	req = append(req, payload...)
	if err := wire.WriteAll(c.conn, req); err != nil {
		return nil, err
	}

	header := make([]byte, headerLen)
	if err := wire.ReadExact(c.conn, header); err != nil {
		return nil, err
	}
	if !bytes.Equal(header[:len(magic)], []byte(magic)) {
		return nil, fmt.Errorf("sway: bad magic in reply header")
	}
	length := binary.NativeEndian.Uint32(header[len(magic):])
	if length > maxReplyLen {
		return nil, wire.ErrTooLarge
	}
	body := make([]byte, length)
	if err := wire.ReadExact(c.conn, body); err != nil {
		return nil, err
	}
	return body, nil
}

// node is the subset of the GET_TREE JSON tree nvg needs.
type node struct {
	Focused       bool   `json:"focused"`
	PID           int64  `json:"pid"`
	Nodes         []node `json:"nodes"`
	FloatingNodes []node `json:"floating_nodes"`
}

func (n *node) findFocused() (nproc.PID, bool) {
	if n.Focused && n.PID > 0 {
		return nproc.PID(n.PID), true
	}
	for i := range n.Nodes {
		if pid, ok := n.Nodes[i].findFocused(); ok {
			return pid, true
		}
	}
	for i := range n.FloatingNodes {
		if pid, ok := n.FloatingNodes[i].findFocused(); ok {
			return pid, true
		}
	}
	return 0, false
}

func (c *Client) FocusedPID() (nproc.PID, bool) {
	body, err := c.request(msgGetTree, nil)
	if err != nil {
		return 0, false
	}
	var root node
	if err := json.Unmarshal(body, &root); err != nil {
		return 0, false
	}
	return root.findFocused()
}

var commandWord = map[direction.Direction]string{
	direction.Left:  "left",
	direction.Right: "right",
	direction.Up:    "up",
	direction.Down:  "down",
}

func (c *Client) MoveFocus(dir direction.Direction) error {
	cmd := "focus " + commandWord[dir]
	_, err := c.request(msgRunCommand, []byte(cmd))
	return err
}
