// Package hookreg wires together the concrete hook implementations into
// the ordered registry the detector walks, and validates the CLI's
// --hooks flag against it.
package hookreg

import (
	"fmt"
	"strings"

	"github.com/cespare/nvg/hook"
	"github.com/cespare/nvg/hook/ghostty"
	"github.com/cespare/nvg/hook/kitty"
	"github.com/cespare/nvg/hook/nvim"
	"github.com/cespare/nvg/hook/tmux"
	"github.com/cespare/nvg/hook/vscode"
	"github.com/cespare/nvg/hook/wezterm"
)

// all lists every known hook in registration order — the order the
// detector applies each hook's detect probe to a descendant process, per
// spec §4.2.
var all = []hook.Hook{
	nvim.Hook{},
	tmux.Hook{},
	vscode.Hook{},
	kitty.Hook{},
	wezterm.Hook{},
	ghostty.Hook{},
}

// All returns every known hook, in registration order.
func All() []hook.Hook {
	out := make([]hook.Hook, len(all))
	copy(out, all)
	return out
}

// Select returns the hooks named in names, in registration order
// (independent of the order names were given), or an error if names is
// empty or names an unknown hook.
func Select(names []string) ([]hook.Hook, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("hookreg: --hooks requires at least one name")
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if !known(n) {
			return nil, fmt.Errorf("hookreg: unknown hook %q (known: %s)", n, strings.Join(knownNames(), ", "))
		}
		want[n] = true
	}
	var out []hook.Hook
	for _, h := range all {
		if want[h.Name()] {
			out = append(out, h)
		}
	}
	return out, nil
}

func known(name string) bool {
	for _, h := range all {
		if h.Name() == name {
			return true
		}
	}
	return false
}

func knownNames() []string {
	names := make([]string, len(all))
	for i, h := range all {
		names[i] = h.Name()
	}
	return names
}
