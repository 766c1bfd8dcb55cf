// Package resolve implements the focus-navigation decision core: given a
// window manager and a set of enabled hooks, it performs exactly one focus
// action per call, bubbling from the innermost focus-aware layer outward
// and landing at the entry edge of whatever the WM switches focus to.
package resolve

import (
	"time"

	"github.com/cespare/nvg/debuglog"
	"github.com/cespare/nvg/detect"
	"github.com/cespare/nvg/direction"
	"github.com/cespare/nvg/hook"
	"github.com/cespare/nvg/wm"
)

// detectAll is a seam over detect.All so tests can script the process-tree
// detector's output without needing a real, matching /proc tree.
var detectAll = detect.All

// Navigate performs one focus move in dir, per spec §4.1. Any IPC failure
// downstream collapses to "absent" or a no-op rather than propagating, so
// Navigate itself never returns an error: a failed navigation is simply a
// keystroke that did nothing.
func Navigate(w wm.WindowManager, dir direction.Direction, timeout time.Duration, hooks []hook.Hook) {
	pid, ok := w.FocusedPID()
	if !ok {
		debuglog.Tracef("no focused pid; falling back to WM move")
		wmMoveAndLand(w, dir, timeout, hooks)
		return
	}

	detected := detectAll(pid, hooks)
	if len(detected) == 0 {
		debuglog.Tracef("pid %d: no hooks matched; falling back to WM move", pid)
		wmMoveAndLand(w, dir, timeout, hooks)
		return
	}

	for i := len(detected) - 1; i >= 0; i-- {
		d := detected[i]
		answer := d.Hook.CanMove(d.PID, dir, timeout)
		debuglog.Tracef("hook %s pid %d depth %d: can_move(%s) = %s", d.Hook.Name(), d.PID, d.Depth, dir, answer)
		switch answer {
		case hook.Yes:
			if err := d.Hook.MoveFocus(d.PID, dir, timeout); err != nil {
				debuglog.Tracef("hook %s pid %d: move_focus error: %v", d.Hook.Name(), d.PID, err)
			}
			return
		case hook.No, hook.Unknown:
			continue
		}
	}

	debuglog.Tracef("every hook bubbled; falling back to WM move")
	wmMoveAndLand(w, dir, timeout, hooks)
}

// wmMoveAndLand asks the WM to move focus, then steers the freshly focused
// process's innermost hook to the entry edge so navigation feels
// continuous, per spec §4.1 step 5.
func wmMoveAndLand(w wm.WindowManager, dir direction.Direction, timeout time.Duration, hooks []hook.Hook) {
	if err := w.MoveFocus(dir); err != nil {
		debuglog.Tracef("wm move_focus error: %v", err)
		return
	}

	pid, ok := w.FocusedPID()
	if !ok {
		return
	}
	detected := detectAll(pid, hooks)
	if len(detected) == 0 {
		return
	}
	inner := detected[len(detected)-1]
	if err := inner.Hook.MoveToEdge(inner.PID, dir.Opposite(), timeout); err != nil {
		debuglog.Tracef("hook %s pid %d: move_to_edge error: %v", inner.Hook.Name(), inner.PID, err)
	}
}
