// Package tmux implements the tmux hook via the tmux CLI, resolving the
// server socket from the TMUX environment variable the way a pane
// actually sees it.
package tmux

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/cespare/nvg/direction"
	"github.com/cespare/nvg/hook"
	"github.com/cespare/nvg/nproc"
)

// Hook is the tmux focus-aware application adapter.
type Hook struct{}

var _ hook.Hook = Hook{}

func (Hook) Name() string { return "tmux" }

func (Hook) Detect(pid nproc.PID, comm, exePath, arg0 string) (nproc.PID, bool) {
	if strings.Contains(comm, "tmux") {
		return pid, true
	}
	return 0, false
}

// socketArgs resolves "-S <path>" from the target's TMUX=<sock>,<pid>,<n>
// environment variable, falling back to this process's own environment
// (nvg itself is often invoked from inside the pane it's navigating).
func socketArgs(pid nproc.PID) []string {
	v, ok := nproc.Environ(pid, "TMUX")
	if !ok {
		v, ok = nproc.SelfEnviron("TMUX")
	}
	if !ok || v == "" {
		return nil
	}
	sock := v
	if i := strings.IndexByte(v, ','); i >= 0 {
		sock = v[:i]
	}
	return []string{"-S", sock}
}

var directionFlag = map[direction.Direction]string{
	direction.Left:  "-L",
	direction.Right: "-R",
	direction.Up:    "-U",
	direction.Down:  "-D",
}

// edgeFormat maps a direction to the pane_at_<edge> format variable that
// is true when there is no neighbour in that direction.
var edgeFormat = map[direction.Direction]string{
	direction.Left:  "#{pane_at_left}",
	direction.Right: "#{pane_at_right}",
	direction.Up:    "#{pane_at_top}",
	direction.Down:  "#{pane_at_bottom}",
}

func run(pid nproc.PID, timeout time.Duration, args ...string) (string, error) {
	ctx := context.Background()
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	full := append(socketArgs(pid), args...)
	out, err := exec.CommandContext(ctx, "tmux", full...).Output()
	return strings.TrimSpace(string(out)), err
}

func (h Hook) CanMove(pid nproc.PID, dir direction.Direction, timeout time.Duration) hook.Answer {
	out, err := run(pid, timeout, "display-message", "-p", edgeFormat[dir])
	if err != nil {
		return hook.Unknown
	}
	switch out {
	case "1":
		return hook.No
	case "0":
		return hook.Yes
	default:
		return hook.Unknown
	}
}

func (h Hook) MoveFocus(pid nproc.PID, dir direction.Direction, timeout time.Duration) error {
	_, err := run(pid, timeout, "select-pane", directionFlag[dir])
	return err
}

func (h Hook) MoveToEdge(pid nproc.PID, dir direction.Direction, timeout time.Duration) error {
	const maxEdgeSteps = 50
	for i := 0; i < maxEdgeSteps; i++ {
		if h.CanMove(pid, dir, timeout) != hook.Yes {
			return nil
		}
		if err := h.MoveFocus(pid, dir, timeout); err != nil {
			return err
		}
	}
	return nil
}
