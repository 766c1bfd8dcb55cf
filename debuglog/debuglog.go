// Package debuglog is nvg's trace sink: lines written through Tracef appear
// on stderr only when $NVG_DEBUG=1, matching spec §7 ("stderr is used only
// for errors and, when NVG_DEBUG=1, for trace lines").
package debuglog

import (
	"fmt"
	"log"
	"os"
	"sync"
)

var (
	once    sync.Once
	enabled bool
	logger  = log.New(os.Stderr, "nvg: ", 0)
)

func checkEnabled() {
	enabled = os.Getenv("NVG_DEBUG") == "1"
}

// Enabled reports whether NVG_DEBUG=1 is set. The check runs once per
// process; nvg doesn't expect the environment to change mid-invocation.
func Enabled() bool {
	once.Do(checkEnabled)
	return enabled
}

// Tracef writes a trace line to stderr if debug tracing is enabled.
func Tracef(format string, args ...any) {
	if !Enabled() {
		return
	}
	logger.Output(2, fmt.Sprintf(format, args...))
}
