package wm

import (
	"os"
	"testing"
)

func clearWMEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SWAYSOCK", "I3SOCK", "HYPRLAND_INSTANCE_SIGNATURE", "NIRI_SOCKET",
		"XDG_CURRENT_DESKTOP", "WAYLAND_DISPLAY", "DWM_FIFO", "DISPLAY",
	} {
		old, had := os.LookupEnv(k)
		os.Unsetenv(k)
		t.Cleanup(func() {
			if had {
				os.Setenv(k, old)
			}
		})
	}
}

func TestDetectPrecedence(t *testing.T) {
	clearWMEnv(t)
	os.Setenv("SWAYSOCK", "/tmp/sway.sock")
	os.Setenv("HYPRLAND_INSTANCE_SIGNATURE", "abc")
	b, err := Detect(false)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if b != Sway {
		t.Errorf("Detect() = %v, want Sway (SWAYSOCK takes precedence)", b)
	}
}

func TestDetectNoneFound(t *testing.T) {
	clearWMEnv(t)
	if _, err := Detect(false); err == nil {
		t.Error("Detect() with no env vars set should error")
	}
}

func TestDetectRiverRequiresWaylandDisplay(t *testing.T) {
	clearWMEnv(t)
	os.Setenv("XDG_CURRENT_DESKTOP", "river")
	if _, err := Detect(false); err == nil {
		t.Error("Detect() should fail for river without WAYLAND_DISPLAY")
	}
	os.Setenv("WAYLAND_DISPLAY", "wayland-1")
	b, err := Detect(false)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if b != River {
		t.Errorf("Detect() = %v, want River", b)
	}
}

func TestDetectForceDwmRequiresDisplay(t *testing.T) {
	clearWMEnv(t)
	if _, err := Detect(true); err == nil {
		t.Error("Detect(true) should fail with neither DWM_FIFO nor DISPLAY set")
	}
	os.Setenv("DISPLAY", ":0")
	b, err := Detect(true)
	if err != nil {
		t.Fatalf("Detect(true): %v", err)
	}
	if b != Dwm {
		t.Errorf("Detect(true) = %v, want Dwm", b)
	}
}

func TestDetectForceDwmIgnoredWithoutForce(t *testing.T) {
	clearWMEnv(t)
	os.Setenv("DISPLAY", ":0")
	if _, err := Detect(false); err == nil {
		t.Error("Detect(false) should not select dwm from $DISPLAY alone")
	}
}

func TestParseBackendI3Alias(t *testing.T) {
	b, ok := ParseBackend("i3")
	if !ok || b != Sway {
		t.Errorf("ParseBackend(i3) = %v,%v want Sway,true", b, ok)
	}
}

func TestParseBackendUnknown(t *testing.T) {
	if _, ok := ParseBackend("fvwm"); ok {
		t.Error("ParseBackend(fvwm) unexpectedly succeeded")
	}
}
