package niri

import (
	"bufio"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cespare/nvg/direction"
)

func fakeNiriServer(t *testing.T, handle func(line string) string) (sockPath string) {
	t.Helper()
	dir := t.TempDir()
	sockPath = filepath.Join(dir, "niri.sock")
	ln, err := net.Listen("unix", sockPath)
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
		r := bufio.NewReader(conn)
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			line = line[:len(line)-1]
			conn.Write([]byte(handle(line) + "\n"))
		}
	}()
	return sockPath
}

func TestFocusedPID(t *testing.T) {
	sock := fakeNiriServer(t, func(line string) string {
		if line != `"FocusedWindow"` {
			t.Errorf("unexpected request %q", line)
		}
		return `{"Ok":{"FocusedWindow":{"pid":12345,"app_id":"foot"}}}`
	})
	os.Setenv("NIRI_SOCKET", sock)
	defer os.Unsetenv("NIRI_SOCKET")

	c, err := Connect(time.Second)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer c.Disconnect()

	pid, ok := c.FocusedPID()
	if !ok || pid != 12345 {
		t.Errorf("FocusedPID = %d,%v want 12345,true", pid, ok)
	}
}

func TestFocusedPIDNull(t *testing.T) {
	sock := fakeNiriServer(t, func(line string) string {
		return `{"Ok":{"FocusedWindow":null}}`
	})
	os.Setenv("NIRI_SOCKET", sock)
	defer os.Unsetenv("NIRI_SOCKET")

	c, err := Connect(time.Second)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer c.Disconnect()

	if _, ok := c.FocusedPID(); ok {
		t.Error("FocusedPID should report absent when FocusedWindow is null")
	}
}

func TestFocusedPIDErr(t *testing.T) {
	sock := fakeNiriServer(t, func(line string) string {
		return `{"Err":"not supported"}`
	})
	os.Setenv("NIRI_SOCKET", sock)
	defer os.Unsetenv("NIRI_SOCKET")

	c, err := Connect(time.Second)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer c.Disconnect()

	if _, ok := c.FocusedPID(); ok {
		t.Error("FocusedPID should report absent on Err response")
	}
}

func TestMoveFocusDown(t *testing.T) {
	var gotReq string
	sock := fakeNiriServer(t, func(line string) string {
		gotReq = line
		return `{"Ok":{"Handled":null}}`
	})
	os.Setenv("NIRI_SOCKET", sock)
	defer os.Unsetenv("NIRI_SOCKET")

	c, err := Connect(time.Second)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer c.Disconnect()

	if err := c.MoveFocus(direction.Down); err != nil {
		t.Fatalf("MoveFocus: %v", err)
	}
	want := `{"Action":{"FocusWindowOrMonitorDown":{}}}`
	if gotReq != want {
		t.Errorf("request = %q, want %q", gotReq, want)
	}
}
