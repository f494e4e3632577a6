// Package detect implements the two deadlock-detection strategies:
// wait-for graph cycle detection for single-instance systems and the
// work/finish reachability simulation for the general case. Both are
// pure functions of an immutable SystemState.
package detect

import (
	"fmt"
	"sort"

	"github.com/gridlock/core/internal/models"
)

// DFS node colors: white = unvisited, gray = on the current path,
// black = fully explored.
const (
	white = iota
	gray
	black
)

// WaitFor runs wait-for graph deadlock detection.
//
// A cycle in the wait-for graph implies deadlock only when every
// resource type has a single instance. On a multi-instance state the
// graph is still well-defined and the detector runs, but the result
// carries a warning: callers that want correctness there must use
// Reachability instead.
//
// Deadlocked processes are exactly the members of detected cycles.
// Processes that are blocked behind a cycle without being on one are
// not reported as deadlocked.
func WaitFor(state *models.SystemState) *models.DetectionResult {
	n := state.N()
	res := &models.DetectionResult{
		Algorithm:      models.AlgorithmWaitFor,
		DeadlockedPIDs: []int{},
	}

	res.Trace = append(res.Trace,
		"=== Wait-For Graph Deadlock Detection ===",
		fmt.Sprintf("System: %d processes, %d resource types", n, state.M()))

	if !state.IsSingleInstance() {
		w := "not all resource types are single-instance; wait-for cycle detection may miss multi-instance deadlocks"
		res.Warnings = append(res.Warnings, w)
		res.Trace = append(res.Trace, "WARNING: "+w)
	}

	res.Trace = append(res.Trace, "Step 1: build wait-for graph")
	adjacency, edges := buildWaitForGraph(state)
	res.Edges = edges

	if len(edges) == 0 {
		res.Trace = append(res.Trace,
			"  no wait-for edges (no process is blocked)",
			"Result: NO DEADLOCK")
		return res
	}
	for _, e := range edges {
		res.Trace = append(res.Trace, fmt.Sprintf("  P%d -> P%d (R%d)", e.From, e.To, e.RID))
	}

	res.Trace = append(res.Trace, "Step 2: detect cycles (DFS, ascending pid)")
	cycles := findCycles(adjacency, n, edges)

	if len(cycles) == 0 {
		res.Trace = append(res.Trace,
			"  no cycles in wait-for graph",
			"Result: NO DEADLOCK")
		return res
	}

	deadlocked := map[int]bool{}
	for _, c := range cycles {
		for _, pid := range c.PIDs {
			deadlocked[pid] = true
		}
		res.Trace = append(res.Trace, "  cycle: "+formatCycle(c))
	}
	res.Cycles = cycles
	res.Deadlocked = true
	res.DeadlockedPIDs = sortedKeys(deadlocked)

	res.Trace = append(res.Trace,
		"Step 3: deadlocked processes",
		fmt.Sprintf("  processes on cycles: %s", formatPIDSet(res.DeadlockedPIDs)),
		"Result: DEADLOCK DETECTED")
	return res
}

// buildWaitForGraph derives the wait relation: an edge i -> k labeled j
// whenever process i requests resource j and process k holds it. An
// unheld resource blocks nobody, so it produces no edge.
func buildWaitForGraph(state *models.SystemState) ([][]int, []models.WaitForEdge) {
	n, m := state.N(), state.M()

	// holders[j] lists processes holding resource j, ascending.
	holders := make([][]int, m)
	for j := 0; j < m; j++ {
		for i := 0; i < n; i++ {
			if state.Allocation[i][j] > 0 {
				holders[j] = append(holders[j], i)
			}
		}
	}

	adjacency := make([][]int, n)
	seen := make([]map[int]bool, n)
	var edges []models.WaitForEdge

	for i := 0; i < n; i++ {
		seen[i] = map[int]bool{}
		for j := 0; j < m; j++ {
			if state.Request[i][j] == 0 {
				continue
			}
			for _, k := range holders[j] {
				if k == i {
					continue
				}
				edges = append(edges, models.WaitForEdge{From: i, To: k, RID: j})
				if !seen[i][k] {
					seen[i][k] = true
					adjacency[i] = append(adjacency[i], k)
				}
			}
		}
		// Traversal visits waited-on processes in ascending pid order.
		sort.Ints(adjacency[i])
	}
	return adjacency, edges
}

// findCycles extracts every cycle reachable by the ascending-pid DFS.
// Each gray back edge closes one cycle; the cycle hops are labeled with
// the lowest resource id that induces the hop.
func findCycles(adjacency [][]int, n int, edges []models.WaitForEdge) []models.Cycle {
	color := make([]int, n)
	var path []int
	var cycles []models.Cycle

	hop := func(from, to int) models.WaitForEdge {
		for _, e := range edges {
			if e.From == from && e.To == to {
				return e
			}
		}
		return models.WaitForEdge{From: from, To: to, RID: -1}
	}

	var dfs func(node int)
	dfs = func(node int) {
		color[node] = gray
		path = append(path, node)

		for _, next := range adjacency[node] {
			switch color[next] {
			case gray:
				start := 0
				for path[start] != next {
					start++
				}
				pids := append([]int(nil), path[start:]...)
				c := models.Cycle{PIDs: pids}
				for i := range pids {
					c.Edges = append(c.Edges, hop(pids[i], pids[(i+1)%len(pids)]))
				}
				cycles = append(cycles, c)
			case white:
				dfs(next)
			}
		}

		color[node] = black
		path = path[:len(path)-1]
	}

	for i := 0; i < n; i++ {
		if color[i] == white {
			dfs(i)
		}
	}
	return cycles
}

func formatCycle(c models.Cycle) string {
	s := ""
	for _, pid := range c.PIDs {
		s += fmt.Sprintf("P%d -> ", pid)
	}
	return s + fmt.Sprintf("P%d", c.PIDs[0])
}

func formatPIDSet(pids []int) string {
	s := "{"
	for i, pid := range pids {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("P%d", pid)
	}
	return s + "}"
}

func sortedKeys(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for pid := range set {
		out = append(out, pid)
	}
	sort.Ints(out)
	return out
}
