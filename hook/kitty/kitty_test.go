package kitty

import (
	"testing"

	"github.com/cespare/nvg/direction"
)

const sampleLs = `[
  {
    "id": 1,
    "is_focused": false,
    "tabs": [{"id": 10, "is_focused": true, "windows": [
      {"id": 100, "is_focused": true, "at_left": true, "at_right": false, "at_top": true, "at_bottom": true}
    ]}]
  },
  {
    "id": 2,
    "is_focused": true,
    "tabs": [{"id": 20, "is_focused": true, "windows": [
      {"id": 200, "is_focused": false, "at_left": true, "at_right": false, "at_top": true, "at_bottom": true},
      {"id": 201, "is_focused": true, "at_left": false, "at_right": true, "at_top": true, "at_bottom": true}
    ]}]
  }
]`

func TestFindWindowPicksFocusedOSWindowAndTab(t *testing.T) {
	win, ok := findWindow([]byte(sampleLs), "201")
	if !ok {
		t.Fatal("findWindow(201) not found")
	}
	if win.Get("id").String() != "201" {
		t.Errorf("found window id = %s, want 201", win.Get("id").String())
	}
}

func TestFindWindowMissing(t *testing.T) {
	if _, ok := findWindow([]byte(sampleLs), "999"); ok {
		t.Error("findWindow(999) unexpectedly found a window")
	}
}

func TestAtEdgeFieldMapping(t *testing.T) {
	win, ok := findWindow([]byte(sampleLs), "201")
	if !ok {
		t.Fatal("setup: findWindow failed")
	}
	// Window 201 is at_right=true (no neighbour to the right) and
	// at_left=false (a neighbour exists to the left).
	if got := win.Get(atEdgeField[direction.Right]).Bool(); !got {
		t.Error("at_right should be true for window 201")
	}
	if got := win.Get(atEdgeField[direction.Left]).Bool(); got {
		t.Error("at_left should be false for window 201")
	}
}
