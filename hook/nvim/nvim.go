// Package nvim implements the neovim hook: detecting an nvim process,
// talking msgpack-RPC to its socket to query and move window focus.
package nvim

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/cespare/nvg/direction"
	"github.com/cespare/nvg/hook"
	"github.com/cespare/nvg/msgpack"
	"github.com/cespare/nvg/nproc"
	"github.com/cespare/nvg/wire"
)

// Hook is the neovim focus-aware application adapter.
type Hook struct{}

var _ hook.Hook = Hook{}

func (Hook) Name() string { return "nvim" }

// excludedArg0 substrings exclude helper processes that merely embed
// "nvim" in their name but aren't the editor itself (e.g. a wrapper
// script or nvim's own --headless test runner binaries some distros
// ship).
var excludedArg0 = []string{"nvim-qt-wrapper", "nvim.appimage.wrapper"}

func (Hook) Detect(pid nproc.PID, comm, exePath, arg0 string) (nproc.PID, bool) {
	name := arg0
	if name == "" {
		name = comm
	}
	base := basename(exePath)
	candidate := strings.Contains(name, "nvim") || strings.Contains(base, "nvim")
	if !candidate {
		return 0, false
	}
	for _, ex := range excludedArg0 {
		if strings.Contains(name, ex) {
			return 0, false
		}
	}
	return pid, true
}

func basename(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

// socketPath resolves the nvim RPC socket from NVIM=<path> in the
// target's environ, per spec §4.3.1: "env-derived only".
func socketPath(pid nproc.PID) (string, bool) {
	return nproc.Environ(pid, "NVIM")
}

// CanMove asks nvim for winnr() and winnr('<motion>'); if they're equal,
// the current window is at the edge in that direction.
func (h Hook) CanMove(pid nproc.PID, dir direction.Direction, timeout time.Duration) hook.Answer {
	sock, ok := socketPath(pid)
	if !ok {
		return hook.Unknown
	}
	conn, err := wire.DialUnixTimeout(sock, timeout)
	if err != nil {
		return hook.Unknown
	}
	defer conn.Close()

	cur, err := evalUint(conn, 1, "winnr()", timeout)
	if err != nil {
		return hook.Unknown
	}
	motion := fmt.Sprintf("winnr('%c')", dir.VimKey())
	target, err := evalUint(conn, 2, motion, timeout)
	if err != nil {
		return hook.Unknown
	}
	if target == cur {
		return hook.No
	}
	return hook.Yes
}

func (h Hook) MoveFocus(pid nproc.PID, dir direction.Direction, timeout time.Duration) error {
	sock, ok := socketPath(pid)
	if !ok {
		return fmt.Errorf("nvim: no NVIM socket in environ for pid %d", pid)
	}
	conn, err := wire.DialUnixTimeout(sock, timeout)
	if err != nil {
		return err
	}
	defer conn.Close()
	return command(conn, 1, fmt.Sprintf("wincmd %c", dir.VimKey()), timeout)
}

// maxEdgeSteps bounds the move-to-edge loop, matching kitty/wezterm's
// repeat-with-cap design (spec §4.3.1).
const maxEdgeSteps = 50

func (h Hook) MoveToEdge(pid nproc.PID, dir direction.Direction, timeout time.Duration) error {
	sock, ok := socketPath(pid)
	if !ok {
		return fmt.Errorf("nvim: no NVIM socket in environ for pid %d", pid)
	}
	conn, err := wire.DialUnixTimeout(sock, timeout)
	if err != nil {
		return err
	}
	defer conn.Close()

	motion := fmt.Sprintf("wincmd %c", dir.VimKey())
	var msgid uint32 = 1
	prev := uint64(0)
	for i := 0; i < maxEdgeSteps; i++ {
		cur, err := evalUint(conn, msgid, "winnr()", timeout)
		msgid++
		if err != nil {
			return err
		}
		if i > 0 && cur == prev {
			return nil // stopped moving: we're at the edge
		}
		prev = cur
		if err := command(conn, msgid, motion, timeout); err != nil {
			return err
		}
		msgid++
	}
	return nil
}

func evalUint(conn net.Conn, msgid uint32, expr string, timeout time.Duration) (uint64, error) {
	return roundTrip(conn, msgid, "nvim_eval", expr, timeout)
}

func command(conn net.Conn, msgid uint32, cmd string, timeout time.Duration) error {
	_, err := roundTrip(conn, msgid, "nvim_command", cmd, timeout)
	return err
}

func roundTrip(conn net.Conn, msgid uint32, method, arg string, timeout time.Duration) (uint64, error) {
	if timeout > 0 {
		if err := wire.SetTimeouts(conn, timeout); err != nil {
			return 0, err
		}
	}
	req := msgpack.EncodeRequest(msgid, method, arg)
	if err := wire.WriteAll(conn, req); err != nil {
		return 0, err
	}
	buf := make([]byte, 4096)
	n, err := conn.Read(buf)
	if err != nil {
		return 0, err
	}
	resp, err := msgpack.DecodeResponse(buf[:n], msgid)
	if err != nil {
		return 0, err
	}
	if resp.IsError {
		return 0, fmt.Errorf("nvim: rpc error for %s(%q)", method, arg)
	}
	return resp.Result, nil
}
