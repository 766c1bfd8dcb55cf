// Package wmsel selects and connects the concrete wm.WindowManager
// implementation named by a wm.Backend. It is the only package that imports
// every backend subpackage, keeping each backend free to import wm without
// creating an import cycle.
package wmsel

import (
	"fmt"
	"time"

	"github.com/cespare/nvg/wm"
	"github.com/cespare/nvg/wm/dwm"
	"github.com/cespare/nvg/wm/hyprland"
	"github.com/cespare/nvg/wm/niri"
	"github.com/cespare/nvg/wm/river"
	"github.com/cespare/nvg/wm/sway"
)

// Connect dials the backend named by b, applying timeout to every socket
// operation the resulting wm.WindowManager performs.
func Connect(b wm.Backend, timeout time.Duration) (wm.WindowManager, error) {
	switch b {
	case wm.Sway:
		return sway.Connect(timeout)
	case wm.Hyprland:
		return hyprland.Connect(timeout)
	case wm.Niri:
		return niri.Connect(timeout)
	case wm.River:
		return river.Connect(timeout)
	case wm.Dwm:
		return dwm.Connect(timeout)
	default:
		return nil, fmt.Errorf("wmsel: unknown backend %v", b)
	}
}
