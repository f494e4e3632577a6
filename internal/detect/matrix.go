// Package detect implements the two deadlock-detection strategies:
// wait-for graph cycle detection for single-instance systems and the
// work/finish reachability simulation for the general case. Both are
// pure functions of an immutable SystemState.
package detect

import (
	"fmt"

	"github.com/gridlock/core/internal/models"
)

// Reachability runs the work/finish deadlock-detection simulation. It is
// correct for both single- and multi-instance resources.
//
// The scan visits unfinished processes in ascending pid order and
// restarts from pid 0 after every grant, so the trace and the safe
// order are deterministic for identical inputs. All arithmetic is over
// non-negative integers; the request comparison is component-wise.
func Reachability(state *models.SystemState) *models.DetectionResult {
	n, m := state.N(), state.M()
	res := &models.DetectionResult{
		Algorithm:      models.AlgorithmReachability,
		DeadlockedPIDs: []int{},
		Finish:         make([]bool, n),
	}

	res.Trace = append(res.Trace,
		"=== Reachability (Work/Finish) Deadlock Detection ===",
		fmt.Sprintf("System: %d processes, %d resource types", n, m))

	work := append([]int(nil), state.Available...)
	res.Trace = append(res.Trace,
		"Step 1: initialize",
		fmt.Sprintf("  Work = Available = %s", vectorString(work)),
		fmt.Sprintf("  Finish = false for all %d processes", n))

	res.Trace = append(res.Trace, "Step 2: grant satisfiable requests")
	iteration := 1
	for {
		granted := false
		for i := 0; i < n; i++ {
			if res.Finish[i] || !vectorLEQ(state.Request[i], work) {
				continue
			}
			res.Finish[i] = true
			res.SafeOrder = append(res.SafeOrder, i)

			res.Trace = append(res.Trace,
				fmt.Sprintf("  iteration %d: P%d can proceed, Request=%s <= Work=%s",
					iteration, i, vectorString(state.Request[i]), vectorString(work)))
			vectorAdd(work, state.Allocation[i])
			res.Trace = append(res.Trace,
				fmt.Sprintf("    P%d finishes, releases %s, Work=%s",
					i, vectorString(state.Allocation[i]), vectorString(work)))

			iteration++
			granted = true
			break // restart the scan from pid 0
		}
		if !granted {
			break
		}
	}

	res.Trace = append(res.Trace, "Step 3: check for deadlock")
	for i := 0; i < n; i++ {
		if !res.Finish[i] {
			res.DeadlockedPIDs = append(res.DeadlockedPIDs, i)
			res.Trace = append(res.Trace,
				fmt.Sprintf("  P%d cannot finish: Request=%s > Work=%s",
					i, vectorString(state.Request[i]), vectorString(work)))
		}
	}

	if len(res.DeadlockedPIDs) > 0 {
		res.Deadlocked = true
		res.Trace = append(res.Trace,
			"Result: DEADLOCK DETECTED",
			fmt.Sprintf("  deadlocked processes: %s", formatPIDSet(res.DeadlockedPIDs)))
		res.SafeOrder = nil
	} else {
		res.Trace = append(res.Trace, "Result: NO DEADLOCK")
		if len(res.SafeOrder) > 0 {
			order := ""
			for i, pid := range res.SafeOrder {
				if i > 0 {
					order += " -> "
				}
				order += fmt.Sprintf("P%d", pid)
			}
			res.Trace = append(res.Trace, "  safe execution order: "+order)
		}
	}
	return res
}
