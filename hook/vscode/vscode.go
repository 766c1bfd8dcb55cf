// Package vscode is a detect-only stub: VS Code has no scriptable
// split-navigation IPC nvg can reach, so CanMove always bubbles up.
package vscode

import (
	"time"

	"github.com/cespare/nvg/direction"
	"github.com/cespare/nvg/hook"
	"github.com/cespare/nvg/nproc"
)

// Hook is the VS Code stub adapter.
type Hook struct{}

var _ hook.Hook = Hook{}

func (Hook) Name() string { return "vscode" }

// Detect matches an exact basename of "code" or "code-oss", rejecting
// substrings like "barcode", "encode", "unicode" that merely contain
// "code".
func (Hook) Detect(pid nproc.PID, comm, exePath, arg0 string) (nproc.PID, bool) {
	base := basename(exePath)
	if base == "" {
		base = comm
	}
	switch base {
	case "code", "code-oss":
		return pid, true
	default:
		return 0, false
	}
}

func basename(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}

func (Hook) CanMove(nproc.PID, direction.Direction, time.Duration) hook.Answer { return hook.Unknown }
func (Hook) MoveFocus(nproc.PID, direction.Direction, time.Duration) error     { return nil }
func (Hook) MoveToEdge(nproc.PID, direction.Direction, time.Duration) error    { return nil }
