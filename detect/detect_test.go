package detect

import (
	"os"
	"testing"
	"time"

	"github.com/cespare/nvg/direction"
	"github.com/cespare/nvg/hook"
	"github.com/cespare/nvg/nproc"
)

// matchAllHook matches every process it's shown; used to confirm the
// walk visits real descendants without depending on a specific
// application being installed.
type matchAllHook struct{}

func (matchAllHook) Name() string { return "matchall" }
func (matchAllHook) Detect(pid nproc.PID, comm, exePath, arg0 string) (nproc.PID, bool) {
	return pid, true
}
func (matchAllHook) CanMove(nproc.PID, direction.Direction, time.Duration) hook.Answer {
	return hook.Unknown
}
func (matchAllHook) MoveFocus(nproc.PID, direction.Direction, time.Duration) error  { return nil }
func (matchAllHook) MoveToEdge(nproc.PID, direction.Direction, time.Duration) error { return nil }

func TestAllFindsSelfUnderParent(t *testing.T) {
	detected := All(nproc.PID(os.Getppid()), []hook.Hook{matchAllHook{}})
	var found bool
	for _, d := range detected {
		if d.PID == nproc.PID(os.Getpid()) {
			found = true
			if d.Depth != 1 {
				t.Errorf("depth = %d, want 1", d.Depth)
			}
		}
	}
	if !found {
		t.Skip("test runner's process tree doesn't expose this relationship (sandboxed /proc)")
	}
}

func TestAllEmptyForChildlessRoot(t *testing.T) {
	const lonelyPID nproc.PID = 2000000002
	detected := All(lonelyPID, []hook.Hook{matchAllHook{}})
	if len(detected) != 0 {
		t.Errorf("got %d matches for a childless root, want 0", len(detected))
	}
}

func TestAllRespectsCapacity(t *testing.T) {
	detected := All(nproc.PID(os.Getppid()), []hook.Hook{matchAllHook{}})
	if len(detected) > hook.MaxDetected {
		t.Errorf("got %d matches, want at most %d", len(detected), hook.MaxDetected)
	}
}

func TestAllNoMatchWithNoHooks(t *testing.T) {
	detected := All(nproc.PID(os.Getppid()), nil)
	if len(detected) != 0 {
		t.Errorf("got %d matches with no hooks enabled, want 0", len(detected))
	}
}
