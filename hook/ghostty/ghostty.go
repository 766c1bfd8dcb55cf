// Package ghostty is a detect-only stub, same pattern as vscode: ghostty
// doesn't yet expose a stable pane-navigation IPC nvg can drive.
package ghostty

import (
	"strings"
	"time"

	"github.com/cespare/nvg/direction"
	"github.com/cespare/nvg/hook"
	"github.com/cespare/nvg/nproc"
)

// Hook is the ghostty stub adapter.
type Hook struct{}

var _ hook.Hook = Hook{}

func (Hook) Name() string { return "ghostty" }

func (Hook) Detect(pid nproc.PID, comm, exePath, arg0 string) (nproc.PID, bool) {
	if strings.Contains(comm, "ghostty") {
		return pid, true
	}
	return 0, false
}

func (Hook) CanMove(nproc.PID, direction.Direction, time.Duration) hook.Answer { return hook.Unknown }
func (Hook) MoveFocus(nproc.PID, direction.Direction, time.Duration) error     { return nil }
func (Hook) MoveToEdge(nproc.PID, direction.Direction, time.Duration) error    { return nil }
