// Package detect walks the descendants of the WM-focused process and
// applies every enabled hook's detect probe, yielding matches annotated
// with their tree depth.
package detect

import (
	"github.com/cespare/nvg/hook"
	"github.com/cespare/nvg/nproc"
)

// All walks root's descendants (shallowest first) and returns every
// process that matches one of hooks, in the order found. The result is
// capped at hook.MaxDetected entries; deeper matches beyond the cap are
// silently dropped, per spec §3 Invariants.
func All(root nproc.PID, hooks []hook.Hook) []hook.Detected {
	var out []hook.Detected
	nproc.WalkDescendants(root, func(pid nproc.PID, depth int) bool {
		if len(out) >= hook.MaxDetected {
			return false
		}
		comm, err := nproc.ReadComm(pid)
		if err != nil {
			return true // dead or unreadable: skip, keep walking
		}
		arg0, _ := nproc.ReadCmdlineArg0(pid)
		exePath, _ := nproc.ReadExePath(pid)

		for _, h := range hooks {
			if matchedPID, ok := h.Detect(pid, comm, exePath, arg0); ok {
				out = append(out, hook.Detected{Hook: h, PID: matchedPID, Depth: depth})
				break
			}
		}
		return true
	})
	return out
}
