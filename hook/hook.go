// Package hook defines the uniform shape every focus-aware application
// adapter implements, and the ordered registry the detector and resolver
// iterate over.
package hook

import (
	"time"

	"github.com/cespare/nvg/direction"
	"github.com/cespare/nvg/nproc"
)

// Answer is the three-valued result of CanMove, per spec §3: Yes means a
// neighbour exists in that direction, No means the application is at its
// edge, Unknown means the probe failed or timed out. Unknown and No both
// cause the resolver to bubble up, but they're kept distinct because
// NVG_DEBUG tracing wants to tell "at edge" apart from "couldn't ask".
type Answer int

const (
	Unknown Answer = iota
	Yes
	No
)

func (a Answer) String() string {
	switch a {
	case Yes:
		return "yes"
	case No:
		return "no"
	default:
		return "unknown"
	}
}

// Hook is the adapter for one focus-aware application. Implementations
// are stateless singletons; every method opens whatever auxiliary IPC it
// needs (a socket, a CLI subprocess) fresh on each call.
type Hook interface {
	// Name identifies the hook for --hooks filtering and debug tracing.
	Name() string

	// Detect reports whether the descendant process described by comm,
	// exePath, and arg0 (argv[0]) is one this hook understands, and if
	// so which PID actually owns the focus-navigable state (usually pid
	// itself, but a hook is free to report a different PID — e.g. a
	// server process instead of a wrapper script).
	Detect(pid nproc.PID, comm, exePath, arg0 string) (nproc.PID, bool)

	// CanMove asks whether the application has a neighbour in dir.
	CanMove(pid nproc.PID, dir direction.Direction, timeout time.Duration) Answer

	// MoveFocus moves the application's internal focus one step in dir.
	// Errors are logged for debugging but never surfaced to the caller:
	// a failure here is a no-op from the resolver's point of view.
	MoveFocus(pid nproc.PID, dir direction.Direction, timeout time.Duration) error

	// MoveToEdge repositions focus at the edge of the application
	// closest to dir, used after the WM hands focus to a new window so
	// navigation feels continuous.
	MoveToEdge(pid nproc.PID, dir direction.Direction, timeout time.Duration) error
}

// Detected is one match found by the process-tree detector.
type Detected struct {
	Hook  Hook
	PID   nproc.PID
	Depth int
}

// MaxDetected is the fixed capacity of a detected-hook list, per spec §3.
const MaxDetected = 8
