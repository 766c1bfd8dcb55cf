package nvim

import (
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cespare/nvg/direction"
	"github.com/cespare/nvg/hook"
	"github.com/cespare/nvg/nproc"
)

func TestDetect(t *testing.T) {
	h := Hook{}
	cases := []struct {
		comm, exe, arg0 string
		want            bool
	}{
		{"nvim", "/usr/bin/nvim", "nvim", true},
		{"something", "/usr/bin/nvim", "", true},
		{"bash", "/bin/bash", "nvim", true}, // arg0 substring match
		{"bash", "/bin/bash", "-bash", false},
		{"vim", "/usr/bin/vim", "vim", false},
	}
	for _, c := range cases {
		_, ok := h.Detect(123, c.comm, c.exe, c.arg0)
		if ok != c.want {
			t.Errorf("Detect(%q,%q,%q) = %v, want %v", c.comm, c.exe, c.arg0, ok, c.want)
		}
	}
}

// fakeNvim serves one accepted connection, answering nvim_eval("winnr()")
// and nvim_eval("winnr('X')") with canned window numbers.
func fakeNvim(t *testing.T, curWin, targetWin uint64) string {
	t.Helper()
	dir := t.TempDir()
	sock := filepath.Join(dir, "nvim.sock")
	ln, err := net.Listen("unix", sock)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 4096)
		for i := 0; i < 2; i++ {
			n, err := conn.Read(buf)
			if err != nil {
				return
			}
			_ = buf[:n] // request content not reparsed here; order determines answer
			var result uint64
			if i == 0 {
				result = curWin
			} else {
				result = targetWin
			}
			resp := fakeResponse(uint32(i+1), result)
			conn.Write(resp)
		}
	}()
	return sock
}

// fakeResponse hand-builds a msgpack-RPC response [1, msgid, nil, result]
// for small (fixint-range) msgid/result values, mirroring the wire shape
// msgpack.DecodeResponse expects.
func fakeResponse(msgid uint32, result uint64) []byte {
	return []byte{
		0x94,           // fixarray, 4 elements
		0x01,           // response type
		byte(msgid),    // msgid (fixint, test values are small)
		0xc0,           // nil (no error)
		byte(result),   // result (fixint, test values are small)
	}
}

func TestCanMoveYesAndNo(t *testing.T) {
	pid := nproc.PID(os.Getpid())
	os.Setenv("NVIM", fakeNvim(t, 1, 2))
	defer os.Unsetenv("NVIM")

	h := Hook{}
	if got := h.CanMove(pid, direction.Right, time.Second); got != hook.Yes {
		t.Errorf("CanMove (different window numbers) = %v, want Yes", got)
	}
}

func TestCanMoveAtEdge(t *testing.T) {
	pid := nproc.PID(os.Getpid())
	os.Setenv("NVIM", fakeNvim(t, 1, 1))
	defer os.Unsetenv("NVIM")

	h := Hook{}
	if got := h.CanMove(pid, direction.Right, time.Second); got != hook.No {
		t.Errorf("CanMove (same window number) = %v, want No", got)
	}
}

func TestCanMoveUnknownWithoutSocket(t *testing.T) {
	os.Unsetenv("NVIM")
	h := Hook{}
	if got := h.CanMove(nproc.PID(os.Getpid()), direction.Left, time.Second); got != hook.Unknown {
		t.Errorf("CanMove without NVIM env = %v, want Unknown", got)
	}
}
