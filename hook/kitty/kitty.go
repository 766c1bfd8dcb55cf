// Package kitty implements the kitty hook by shelling out to the kitten
// remote-control CLI and reading its JSON window tree with gjson.
package kitty

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/cespare/nvg/direction"
	"github.com/cespare/nvg/hook"
	"github.com/cespare/nvg/nproc"
)

// Hook is the kitty focus-aware application adapter.
type Hook struct{}

var _ hook.Hook = Hook{}

func (Hook) Name() string { return "kitty" }

// Detect matches processes named "kitty" but excludes "kitten", the CLI
// helper binary this hook itself shells out to.
func (Hook) Detect(pid nproc.PID, comm, exePath, arg0 string) (nproc.PID, bool) {
	if strings.Contains(comm, "kitten") {
		return 0, false
	}
	if strings.Contains(comm, "kitty") {
		return pid, true
	}
	return 0, false
}

type env struct {
	listenOn string
	windowID string
}

func lookupEnv(pid nproc.PID) (env, bool) {
	listenOn, ok1 := nproc.Environ(pid, "KITTY_LISTEN_ON")
	windowID, ok2 := nproc.Environ(pid, "KITTY_WINDOW_ID")
	if !ok1 || !ok2 {
		// Fall back to this process's own environment (nvg invoked from
		// inside the kitty window it's navigating).
		if v, ok := nproc.SelfEnviron("KITTY_LISTEN_ON"); ok {
			listenOn = v
			ok1 = true
		}
		if v, ok := nproc.SelfEnviron("KITTY_WINDOW_ID"); ok {
			windowID = v
			ok2 = true
		}
	}
	if !ok1 || !ok2 {
		return env{}, false
	}
	return env{listenOn: listenOn, windowID: windowID}, true
}

func runKitten(timeout time.Duration, args ...string) ([]byte, error) {
	ctx := context.Background()
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return exec.CommandContext(ctx, "kitten", args...).Output()
}

// findWindow locates the focused OS window's focused tab's window with
// matching windowID, returning its JSON object.
func findWindow(lsOutput []byte, windowID string) (gjson.Result, bool) {
	var found gjson.Result
	var ok bool
	osWindows := gjson.ParseBytes(lsOutput)
	osWindows.ForEach(func(_, osWin gjson.Result) bool {
		if !osWin.Get("is_focused").Bool() {
			return true
		}
		osWin.Get("tabs").ForEach(func(_, tab gjson.Result) bool {
			if !tab.Get("is_focused").Bool() {
				return true
			}
			tab.Get("windows").ForEach(func(_, win gjson.Result) bool {
				if win.Get("id").String() == windowID {
					found = win
					ok = true
					return false
				}
				return true
			})
			return !ok
		})
		return !ok
	})
	return found, ok
}

var atEdgeField = map[direction.Direction]string{
	direction.Left:  "at_left",
	direction.Right: "at_right",
	direction.Up:    "at_top",
	direction.Down:  "at_bottom",
}

func (h Hook) CanMove(pid nproc.PID, dir direction.Direction, timeout time.Duration) hook.Answer {
	e, ok := lookupEnv(pid)
	if !ok {
		return hook.Unknown
	}
	out, err := runKitten(timeout, "@", "ls", "--to", e.listenOn)
	if err != nil {
		return hook.Unknown
	}
	win, ok := findWindow(out, e.windowID)
	if !ok {
		return hook.Unknown
	}
	atEdge := win.Get(atEdgeField[dir]).Bool()
	if atEdge {
		return hook.No
	}
	return hook.Yes
}

var neighborArg = map[direction.Direction]string{
	direction.Left:  "left",
	direction.Right: "right",
	direction.Up:    "top",
	direction.Down:  "bottom",
}

func (h Hook) MoveFocus(pid nproc.PID, dir direction.Direction, timeout time.Duration) error {
	e, ok := lookupEnv(pid)
	if !ok {
		return fmt.Errorf("kitty: no KITTY_LISTEN_ON/KITTY_WINDOW_ID for pid %d", pid)
	}
	_, err := runKitten(timeout, "@", "action", "--to", e.listenOn, "neighboring_window", neighborArg[dir])
	return err
}

const maxEdgeSteps = 50

func (h Hook) MoveToEdge(pid nproc.PID, dir direction.Direction, timeout time.Duration) error {
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
