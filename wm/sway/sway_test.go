package sway

import (
	"encoding/binary"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cespare/nvg/direction"
)

// fakeSwayServer accepts one connection, answers GET_TREE with a canned
// tree and RUN_COMMAND with a success reply, and records the RUN_COMMAND
// payloads it receives.
func fakeSwayServer(t *testing.T, treeJSON string) (sockPath string, commands chan string) {
	t.Helper()
	dir := t.TempDir()
	sockPath = filepath.Join(dir, "sway.sock")
	ln, err := net.Listen("unix", sockPath)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })
	commands = make(chan string, 8)

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			header := make([]byte, headerLen)
			if _, err := readFull(conn, header); err != nil {
				return
			}
			length := binary.NativeEndian.Uint32(header[len(magic):])
			msgType := binary.NativeEndian.Uint32(header[len(magic)+4:])
			payload := make([]byte, length)
			if _, err := readFull(conn, payload); err != nil {
				return
			}

			var replyPayload []byte
			switch msgType {
			case msgGetTree:
				replyPayload = []byte(treeJSON)
			case msgRunCommand:
				commands <- string(payload)
				replyPayload = []byte(`[{"success":true}]`)
			}
			resp := make([]byte, 0, headerLen+len(replyPayload))
			resp = append(resp, magic...)
			resp = binary.NativeEndian.AppendUint32(resp, uint32(len(replyPayload)))
			resp = binary.NativeEndian.AppendUint32(resp, msgType)
			resp = append(resp, replyPayload...)
			conn.Write(resp)
		}
	}()
	return sockPath, commands
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	read := 0
	for read < len(buf) {
		n, err := conn.Read(buf[read:])
		read += n
		if err != nil {
			return read, err
		}
	}
	return read, nil
}

func TestFocusedPID(t *testing.T) {
	tree := `{"focused":false,"pid":0,"nodes":[
		{"focused":false,"pid":100,"nodes":[]},
		{"focused":true,"pid":4242,"nodes":[]}
	]}`
	sock, _ := fakeSwayServer(t, tree)
	os.Setenv("SWAYSOCK", sock)
	defer os.Unsetenv("SWAYSOCK")

	c, err := Connect(time.Second)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer c.Disconnect()

	pid, ok := c.FocusedPID()
	if !ok {
		t.Fatal("FocusedPID returned ok=false")
	}
	if pid != 4242 {
		t.Errorf("FocusedPID = %d, want 4242", pid)
	}
}

func TestFocusedPIDNoneFocused(t *testing.T) {
	tree := `{"focused":false,"pid":0,"nodes":[{"focused":false,"pid":100,"nodes":[]}]}`
	sock, _ := fakeSwayServer(t, tree)
	os.Setenv("SWAYSOCK", sock)
	defer os.Unsetenv("SWAYSOCK")

	c, err := Connect(time.Second)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer c.Disconnect()

	if _, ok := c.FocusedPID(); ok {
		t.Error("FocusedPID should report absent when no node is focused")
	}
}

func TestMoveFocusSendsCommand(t *testing.T) {
	sock, commands := fakeSwayServer(t, `{"focused":false,"pid":0,"nodes":[]}`)
	os.Setenv("SWAYSOCK", sock)
	defer os.Unsetenv("SWAYSOCK")

	c, err := Connect(time.Second)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer c.Disconnect()

	if err := c.MoveFocus(direction.Right); err != nil {
		t.Fatalf("MoveFocus: %v", err)
	}
	select {
	case cmd := <-commands:
		if cmd != "focus right" {
			t.Errorf("command = %q, want %q", cmd, "focus right")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for command")
	}
}

func TestSocketPathFallsBackToI3SOCK(t *testing.T) {
	os.Unsetenv("SWAYSOCK")
	os.Setenv("I3SOCK", "/tmp/i3.sock")
	defer os.Unsetenv("I3SOCK")
	p, err := SocketPath()
	if err != nil {
		t.Fatalf("SocketPath: %v", err)
	}
	if p != "/tmp/i3.sock" {
		t.Errorf("SocketPath = %q, want /tmp/i3.sock", p)
	}
}
