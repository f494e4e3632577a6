// Package recovery computes concrete ways out of a detected deadlock:
// minimal process-termination sets and verified resource-preemption
// transfers. Every candidate is evaluated by re-running detection on a
// hypothetical state; the input state is never mutated.
package recovery

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gridlock/core/internal/detect"
	"github.com/gridlock/core/internal/models"
)

// DefaultMaxSubsets bounds the termination search. The search is
// combinatorial in the size of the deadlocked set; when it would examine
// more candidate subsets than this, the engine fails explicitly instead
// of returning a partial answer.
const DefaultMaxSubsets = 4096

// Engine runs recovery-strategy searches. The zero value uses
// DefaultMaxSubsets.
type Engine struct {
	MaxSubsets int
}

func (e *Engine) maxSubsets() int {
	if e.MaxSubsets > 0 {
		return e.MaxSubsets
	}
	return DefaultMaxSubsets
}

// MinimalTerminationSets enumerates subsets of the deadlocked processes
// in increasing size order (lexicographic within a size) and returns
// every smallest-size set whose termination leaves the remaining
// processes free of deadlock. Termination of a set returns its held
// allocations to the available pool and removes its requests entirely.
//
// Re-detection uses the same algorithm that produced result. A
// *PreconditionError is returned when result is not a deadlock; a
// *SearchBoundError when the enumeration would exceed the configured
// bound before the answer is complete.
func (e *Engine) MinimalTerminationSets(state *models.SystemState, result *models.DetectionResult) ([][]int, error) {
	if result == nil || !result.Deadlocked {
		return nil, &models.PreconditionError{
			Op:     "recovery.MinimalTerminationSets",
			Detail: "detection result is not a deadlock",
		}
	}

	deadlocked := append([]int(nil), result.DeadlockedPIDs...)
	sort.Ints(deadlocked)

	bound := e.maxSubsets()
	examined := 0
	var found [][]int

	for size := 1; size <= len(deadlocked); size++ {
		// Explicit desugaring of `for idx := range combinations(...)`;
		// the local toolchain predates range-over-func.
		var boundErr error
		combinations(len(deadlocked), size)(func(idx []int) bool {
			if examined == bound {
				boundErr = &models.SearchBoundError{Candidates: examined + 1, Bound: bound}
				return false
			}
			examined++

			victims := make([]int, size)
			for i, k := range idx {
				victims[i] = deadlocked[k]
			}
			if recovers(state, result.Algorithm, victims) {
				found = append(found, victims)
			}
			return true
		})
		if boundErr != nil {
			return nil, boundErr
		}
		if len(found) > 0 {
			return found, nil
		}
	}
	return found, nil
}

// PreemptionSuggestions proposes single-instance transfers between
// deadlocked processes: for every resource a deadlocked donor holds and
// another deadlocked process wants, the transfer is simulated and
// detection re-run. A suggestion is Verified only when the simulation
// shows the recipient leaving the deadlocked set; anything else is
// labeled speculative. Order is deterministic: donor pid, then resource
// id, then recipient pid.
func (e *Engine) PreemptionSuggestions(state *models.SystemState, result *models.DetectionResult) ([]models.RecoverySuggestion, error) {
	if result == nil || !result.Deadlocked {
		return nil, &models.PreconditionError{
			Op:     "recovery.PreemptionSuggestions",
			Detail: "detection result is not a deadlock",
		}
	}

	deadlocked := append([]int(nil), result.DeadlockedPIDs...)
	sort.Ints(deadlocked)
	inDeadlock := map[int]bool{}
	for _, pid := range deadlocked {
		inDeadlock[pid] = true
	}

	var suggestions []models.RecoverySuggestion
	for _, donor := range deadlocked {
		for rid := 0; rid < state.M(); rid++ {
			if state.Allocation[donor][rid] == 0 {
				continue
			}
			for _, recipient := range deadlocked {
				if recipient == donor || state.Request[recipient][rid] == 0 {
					continue
				}
				suggestions = append(suggestions, e.simulatePreemption(state, result.Algorithm, rid, donor, recipient))
			}
		}
	}
	return suggestions, nil
}

// Suggest combines both strategies: every minimal termination set first
// (these are proven by construction), then the preemption transfers.
func (e *Engine) Suggest(state *models.SystemState, result *models.DetectionResult) ([]models.RecoverySuggestion, error) {
	sets, err := e.MinimalTerminationSets(state, result)
	if err != nil {
		return nil, err
	}

	var suggestions []models.RecoverySuggestion
	for _, set := range sets {
		suggestions = append(suggestions, models.RecoverySuggestion{
			Kind:        models.SuggestTerminate,
			PIDs:        set,
			Verified:    true,
			Description: fmt.Sprintf("terminate %d process(es): %s", len(set), pidList(set)),
			Explanation: fmt.Sprintf("terminating %s releases their held resources; the remaining processes can all finish", pidList(set)),
		})
	}

	preempts, err := e.PreemptionSuggestions(state, result)
	if err != nil {
		return nil, err
	}
	return append(suggestions, preempts...), nil
}

// recovers reports whether removing victims leaves the survivors free
// of deadlock. The reduced state reindexes survivors to keep pids dense;
// only the verdict is used, so the mapping never leaks to callers.
func recovers(state *models.SystemState, algorithm models.Algorithm, victims []int) bool {
	removed := map[int]bool{}
	for _, pid := range victims {
		removed[pid] = true
	}

	available := append([]int(nil), state.Available...)
	for _, pid := range victims {
		for j := range available {
			available[j] += state.Allocation[pid][j]
		}
	}

	var processes []models.Process
	var allocation, request [][]int
	for i := 0; i < state.N(); i++ {
		if removed[i] {
			continue
		}
		processes = append(processes, models.Process{PID: len(processes), Name: state.Processes[i].Name})
		allocation = append(allocation, append([]int(nil), state.Allocation[i]...))
		request = append(request, append([]int(nil), state.Request[i]...))
	}
	if len(processes) == 0 {
		return true
	}

	resourceTypes := append([]models.ResourceType(nil), state.ResourceTypes...)
	reduced, err := models.NewSystemState(processes, resourceTypes, available, allocation, request)
	if err != nil {
		// A valid input state can only reduce to a valid state.
		return false
	}
	return !rerun(algorithm, reduced).Deadlocked
}

func (e *Engine) simulatePreemption(state *models.SystemState, algorithm models.Algorithm, rid, donor, recipient int) models.RecoverySuggestion {
	s := models.RecoverySuggestion{
		Kind:         models.SuggestPreempt,
		RID:          rid,
		DonorPID:     donor,
		RecipientPID: recipient,
		Description: fmt.Sprintf("preempt one instance of R%d from P%d and grant it to P%d",
			rid, donor, recipient),
	}

	// Transfer one instance: the recipient's outstanding request for the
	// resource shrinks by the granted instance. Available is untouched.
	sim := state.Clone()
	sim.Allocation[donor][rid]--
	sim.Allocation[recipient][rid]++
	sim.Request[recipient][rid]--

	outcome := rerun(algorithm, sim)
	s.Outcome = outcome

	stillDeadlocked := false
	for _, pid := range outcome.DeadlockedPIDs {
		if pid == recipient {
			stillDeadlocked = true
			break
		}
	}

	if !stillDeadlocked {
		s.Verified = true
		s.Explanation = fmt.Sprintf("verified: after the transfer P%d is no longer deadlocked (P%d must be rolled back and restarted)",
			recipient, donor)
	} else {
		s.Explanation = fmt.Sprintf("speculative: the transfer alone does not unblock P%d", recipient)
	}
	return s
}

func rerun(algorithm models.Algorithm, state *models.SystemState) *models.DetectionResult {
	if algorithm == models.AlgorithmWaitFor {
		return detect.WaitFor(state)
	}
	return detect.Reachability(state)
}

// combinations yields every k-element index subset of [0, n) in
// lexicographic order. Iterative odometer generation keeps memory flat
// and makes the search bound trivial to enforce.
func combinations(n, k int) func(yield func([]int) bool) {
	return func(yield func([]int) bool) {
		if k > n || k == 0 {
			return
		}
		idx := make([]int, k)
		for i := range idx {
			idx[i] = i
		}
		for {
			if !yield(idx) {
				return
			}
			// Advance the rightmost index that can still move.
			i := k - 1
			for i >= 0 && idx[i] == n-k+i {
				i--
			}
			if i < 0 {
				return
			}
			idx[i]++
			for j := i + 1; j < k; j++ {
				idx[j] = idx[j-1] + 1
			}
		}
	}
}

func pidList(pids []int) string {
	parts := make([]string, len(pids))
	for i, pid := range pids {
		parts[i] = fmt.Sprintf("P%d", pid)
	}
	return strings.Join(parts, ", ")
}
