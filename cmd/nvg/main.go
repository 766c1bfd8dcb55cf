// Command nvg decides whether a directional keystroke should move focus
// inside the current application or between window-manager windows, then
// performs exactly one such move.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/cespare/subcmd"

	"github.com/cespare/nvg/direction"
	"github.com/cespare/nvg/hook"
	"github.com/cespare/nvg/hookreg"
	"github.com/cespare/nvg/resolve"
	"github.com/cespare/nvg/wm"
	"github.com/cespare/nvg/wmsel"
)

// defaultTimeoutMS is applied when -t/--timeout isn't given, per spec §5.
const defaultTimeoutMS = 100

// version reports the module version a release binary was built at,
// falling back to "(devel)" for a `go run`/local build.
func version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "(devel)"
	}
	if v := info.Main.Version; v != "" {
		return v
	}
	return "(devel)"
}

var cmds = []subcmd.Command{
	{Name: "left", Description: "move focus left", Do: cmdDirection(direction.Left)},
	{Name: "right", Description: "move focus right", Do: cmdDirection(direction.Right)},
	{Name: "up", Description: "move focus up", Do: cmdDirection(direction.Up)},
	{Name: "down", Description: "move focus down", Do: cmdDirection(direction.Down)},
}

func main() {
	subcmd.Run(cmds)
}

// cmdDirection returns a subcmd.Command.Do closure for dir, sharing the
// flag set and dispatch logic every direction uses identically.
func cmdDirection(dir direction.Direction) func([]string) {
	return func(args []string) {
		fs := flag.NewFlagSet(dir.String(), flag.ContinueOnError)

		var timeoutMS int
		fs.IntVar(&timeoutMS, "t", defaultTimeoutMS, "socket timeout in milliseconds (0 disables)")
		fs.IntVar(&timeoutMS, "timeout", defaultTimeoutMS, "socket timeout in milliseconds (0 disables)")

		var hooksFlag string
		fs.StringVar(&hooksFlag, "hooks", "", "comma-separated hook names to enable (default: all)")

		var wmFlag string
		fs.StringVar(&wmFlag, "wm", "", "window manager backend (default: auto-detect)")

		var showVersion bool
		fs.BoolVar(&showVersion, "v", false, "print the version and exit")
		fs.BoolVar(&showVersion, "version", false, "print the version and exit")

		fs.Usage = func() {
			fmt.Fprintf(os.Stderr, "Usage: nvg %s [-t|--timeout MS] [--hooks a,b,c] [--wm NAME] [-v|--version]\n\n", dir)
			fs.PrintDefaults()
		}

		switch err := fs.Parse(args); err {
		case nil:
		case flag.ErrHelp:
			os.Exit(0)
		default:
			os.Exit(1)
		}

		if showVersion {
			fmt.Println("nvg", version())
			return
		}

		hooks, err := resolveHooks(fs, hooksFlag)
		if err != nil {
			fmt.Fprintln(os.Stderr, "nvg:", err)
			fs.Usage()
			os.Exit(1)
		}

		backend, err := resolveBackend(wmFlag)
		if err != nil {
			fmt.Fprintln(os.Stderr, "nvg:", err)
			os.Exit(1)
		}

		timeout := time.Duration(timeoutMS) * time.Millisecond
		w, err := wmsel.Connect(backend, timeout)
		if err != nil {
			fmt.Fprintln(os.Stderr, "nvg:", err)
			os.Exit(1)
		}
		defer w.Disconnect()

		resolve.Navigate(w, dir, timeout, hooks)
	}
}

// resolveHooks distinguishes "--hooks wasn't given" (use every hook) from
// "--hooks was given an empty value" (usage error), per spec §6.
func resolveHooks(fs *flag.FlagSet, hooksFlag string) (hooks []hook.Hook, err error) {
	var wasSet bool
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "hooks" {
			wasSet = true
		}
	})
	if !wasSet {
		return hookreg.All(), nil
	}
	if hooksFlag == "" {
		return nil, fmt.Errorf("--hooks requires at least one name")
	}
	return hookreg.Select(strings.Split(hooksFlag, ","))
}

// resolveBackend honors an explicit --wm, otherwise auto-detects per spec
// §4.5. dwm has no socket/env fingerprint of its own, so an explicit
// --wm dwm still goes through wm.Detect (forcing its dwm clause) rather
// than being trusted blindly, to confirm $DISPLAY or $DWM_FIFO is set.
func resolveBackend(wmFlag string) (wm.Backend, error) {
	switch wmFlag {
	case "":
		return wm.Detect(false)
	case "dwm":
		return wm.Detect(true)
	}
	b, ok := wm.ParseBackend(wmFlag)
	if !ok {
		return 0, fmt.Errorf("unknown --wm %q", wmFlag)
	}
	return b, nil
}
