// Package wezterm implements the wezterm hook via the `wezterm cli`
// subcommand.
package wezterm

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/cespare/nvg/direction"
	"github.com/cespare/nvg/hook"
	"github.com/cespare/nvg/nproc"
)

// errNoEnv is returned when neither the target process nor nvg itself has
// WEZTERM_PANE set.
var errNoEnv = errors.New("wezterm: no WEZTERM_PANE in environ")

// Hook is the wezterm focus-aware application adapter.
type Hook struct{}

var _ hook.Hook = Hook{}

func (Hook) Name() string { return "wezterm" }

func (Hook) Detect(pid nproc.PID, comm, exePath, arg0 string) (nproc.PID, bool) {
	if strings.Contains(comm, "wezterm") {
		return pid, true
	}
	return 0, false
}

type env struct {
	paneID string
	socket string
}

func lookupEnv(pid nproc.PID) (env, bool) {
	paneID, ok := nproc.Environ(pid, "WEZTERM_PANE")
	if !ok {
		paneID, ok = nproc.SelfEnviron("WEZTERM_PANE")
	}
	if !ok || paneID == "" {
		return env{}, false
	}
	socket, _ := nproc.Environ(pid, "WEZTERM_UNIX_SOCKET")
	if socket == "" {
		socket, _ = nproc.SelfEnviron("WEZTERM_UNIX_SOCKET")
	}
	return env{paneID: paneID, socket: socket}, true
}

var directionName = map[direction.Direction]string{
	direction.Left:  "Left",
	direction.Right: "Right",
	direction.Up:    "Up",
	direction.Down:  "Down",
}

func cliArgs(e env, subcommand string, extra ...string) []string {
	args := []string{"cli"}
	if e.socket != "" {
		args = append(args, "--unix-socket", e.socket)
	}
	args = append(args, subcommand, "--pane-id", e.paneID)
	return append(args, extra...)
}

func run(timeout time.Duration, args ...string) (string, error) {
	ctx := context.Background()
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	out, err := exec.CommandContext(ctx, "wezterm", args...).Output()
	return strings.TrimSpace(string(out)), err
}

func (h Hook) CanMove(pid nproc.PID, dir direction.Direction, timeout time.Duration) hook.Answer {
	e, ok := lookupEnv(pid)
	if !ok {
		return hook.Unknown
	}
	out, err := run(timeout, cliArgs(e, "get-pane-direction", directionName[dir])...)
	if err != nil {
		return hook.Unknown
	}
	if out == "" {
		return hook.No
	}
	return hook.Yes
}

func (h Hook) MoveFocus(pid nproc.PID, dir direction.Direction, timeout time.Duration) error {
	e, ok := lookupEnv(pid)
	if !ok {
		return errNoEnv
	}
	_, err := run(timeout, cliArgs(e, "activate-pane-direction", directionName[dir])...)
	return err
}

const maxEdgeSteps = 50

func (h Hook) MoveToEdge(pid nproc.PID, dir direction.Direction, timeout time.Duration) error {
	e, ok := lookupEnv(pid)
	if !ok {
		return errNoEnv
	}
	for i := 0; i < maxEdgeSteps; i++ {
		neighbor, err := run(timeout, cliArgs(e, "get-pane-direction", directionName[dir])...)
		if err != nil {
			return err
		}
		if neighbor == "" {
			return nil
		}
		if _, err := run(timeout, cliArgs(e, "activate-pane-direction", directionName[dir])...); err != nil {
			return err
		}
		e.paneID = neighbor
	}
	return nil
}
