package dwm

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/cespare/nvg/direction"
)

// defaultFifoPath is used when $DWM_FIFO isn't set.
const defaultFifoPath = "/tmp/dwm.fifo"

func fifoPath() string {
	if p := os.Getenv("DWM_FIFO"); p != "" {
		return p
	}
	return defaultFifoPath
}

// fifoCommand maps a direction to the dwmfifo patch's focusstack command:
// Left/Up move the stack back, Right/Down move it forward, per spec §4.4.5.
func fifoCommand(dir direction.Direction) string {
	switch dir {
	case direction.Left, direction.Up:
		return "focusstack-\n"
	default:
		return "focusstack+\n"
	}
}

// writeFifoCommand opens $DWM_FIFO write-only and non-blocking, writes the
// command, and closes it.
func writeFifoCommand(path, cmd string) error {
	fd, err := unix.Open(path, unix.O_WRONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return fmt.Errorf("dwm: open fifo %s: %w", path, err)
	}
	defer unix.Close(fd)

	b := []byte(cmd)
	for len(b) > 0 {
		n, err := unix.Write(fd, b)
		if err != nil {
			return fmt.Errorf("dwm: write fifo: %w", err)
		}
		b = b[n:]
	}
	return nil
}
