// Package wm defines the uniform window-manager capability every backend
// implements, and the Backend enum naming which one.
package wm

import (
	"github.com/cespare/nvg/direction"
	"github.com/cespare/nvg/nproc"
)

// WindowManager is the capability the focus resolver drives: learn which
// process owns focus, and move focus one step in a direction. Exactly one
// concrete implementation exists per invocation.
type WindowManager interface {
	// FocusedPID returns the PID of the focused window's owning process,
	// or (0, false) if none is focused or the query failed — both
	// collapse to "absent" for the resolver.
	FocusedPID() (nproc.PID, bool)

	// MoveFocus asks the WM to move focus one step in dir.
	MoveFocus(dir direction.Direction) error

	// Disconnect releases the connection. Safe to call once per
	// WindowManager.
	Disconnect()
}

// Backend names a concrete WM protocol.
type Backend int

const (
	Sway Backend = iota
	Hyprland
	Niri
	River
	Dwm
)

func (b Backend) String() string {
	switch b {
	case Sway:
		return "sway"
	case Hyprland:
		return "hyprland"
	case Niri:
		return "niri"
	case River:
		return "river"
	case Dwm:
		return "dwm"
	default:
		return "invalid"
	}
}

// ParseBackend maps a --wm flag value to a Backend. "i3" is an alias for
// the sway backend (identical protocol), per spec §4.5.
func ParseBackend(name string) (Backend, bool) {
	switch name {
	case "sway", "i3":
		return Sway, true
	case "hyprland":
		return Hyprland, true
	case "niri":
		return Niri, true
	case "river":
		return River, true
	case "dwm":
		return Dwm, true
	default:
		return 0, false
	}
}
