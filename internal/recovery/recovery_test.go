// Package recovery computes concrete ways out of a detected deadlock:
// minimal process-termination sets and verified resource-preemption
// transfers.
package recovery

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridlock/core/internal/detect"
	"github.com/gridlock/core/internal/models"
)

func buildState(t *testing.T, instances, available []int, allocation, request [][]int) *models.SystemState {
	t.Helper()

	processes := make([]models.Process, len(allocation))
	for i := range processes {
		processes[i] = models.Process{PID: i, Name: fmt.Sprintf("P%d", i)}
	}
	resourceTypes := make([]models.ResourceType, len(instances))
	for j := range resourceTypes {
		resourceTypes[j] = models.ResourceType{RID: j, Name: fmt.Sprintf("R%d", j), Instances: instances[j]}
	}

	state, err := models.NewSystemState(processes, resourceTypes, available, allocation, request)
	require.NoError(t, err)
	return state
}

func circularWait(t *testing.T) *models.SystemState {
	return buildState(t,
		[]int{1, 1, 1},
		[]int{0, 0, 0},
		[][]int{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		[][]int{{0, 1, 0}, {0, 0, 1}, {1, 0, 0}})
}

func TestMinimalTerminationSets(t *testing.T) {
	t.Run("three-way cycle has three singleton solutions", func(t *testing.T) {
		state := circularWait(t)
		result := detect.WaitFor(state)
		require.True(t, result.Deadlocked)

		engine := &Engine{}
		sets, err := engine.MinimalTerminationSets(state, result)

		require.NoError(t, err)
		assert.Equal(t, [][]int{{0}, {1}, {2}}, sets)
	})

	t.Run("same answer under reachability mode", func(t *testing.T) {
		state := circularWait(t)
		result := detect.Reachability(state)
		require.True(t, result.Deadlocked)

		engine := &Engine{}
		sets, err := engine.MinimalTerminationSets(state, result)

		require.NoError(t, err)
		assert.Equal(t, [][]int{{0}, {1}, {2}}, sets)
	})

	t.Run("removing a reported set clears the deadlock", func(t *testing.T) {
		state := buildState(t,
			[]int{2, 2, 2},
			[]int{0, 0, 0},
			[][]int{{1, 0, 1}, {1, 1, 0}, {0, 1, 1}},
			[][]int{{1, 1, 0}, {0, 1, 1}, {1, 0, 1}})
		result := detect.Reachability(state)
		require.True(t, result.Deadlocked)

		engine := &Engine{}
		sets, err := engine.MinimalTerminationSets(state, result)
		require.NoError(t, err)
		require.NotEmpty(t, sets)

		for _, victims := range sets {
			removed := map[int]bool{}
			for _, pid := range victims {
				removed[pid] = true
			}

			available := append([]int(nil), state.Available...)
			var processes []models.Process
			var allocation, request [][]int
			for i := 0; i < state.N(); i++ {
				if removed[i] {
					for j := range available {
						available[j] += state.Allocation[i][j]
					}
					continue
				}
				processes = append(processes, models.Process{PID: len(processes), Name: state.Processes[i].Name})
				allocation = append(allocation, append([]int(nil), state.Allocation[i]...))
				request = append(request, append([]int(nil), state.Request[i]...))
			}
			require.NotEmpty(t, processes)

			reduced, err := models.NewSystemState(processes,
				append([]models.ResourceType(nil), state.ResourceTypes...),
				available, allocation, request)
			require.NoError(t, err)
			assert.False(t, detect.Reachability(reduced).Deadlocked,
				"terminating %v must clear the deadlock", victims)
		}
	})

	t.Run("two-cycle system needs one victim per cycle", func(t *testing.T) {
		state := buildState(t,
			[]int{1, 1, 1, 1},
			[]int{0, 0, 0, 0},
			[][]int{
				{1, 0, 0, 0},
				{0, 1, 0, 0},
				{0, 0, 1, 0},
				{0, 0, 0, 1},
			},
			[][]int{
				{0, 1, 0, 0},
				{1, 0, 0, 0},
				{0, 0, 0, 1},
				{0, 0, 1, 0},
			})
		result := detect.WaitFor(state)
		require.True(t, result.Deadlocked)

		engine := &Engine{}
		sets, err := engine.MinimalTerminationSets(state, result)

		require.NoError(t, err)
		assert.Equal(t, [][]int{{0, 2}, {0, 3}, {1, 2}, {1, 3}}, sets)
	})

	t.Run("non-deadlocked result is a precondition error", func(t *testing.T) {
		state := buildState(t,
			[]int{1},
			[]int{1},
			[][]int{{0}},
			[][]int{{0}})
		result := detect.Reachability(state)
		require.False(t, result.Deadlocked)

		engine := &Engine{}
		_, err := engine.MinimalTerminationSets(state, result)

		var perr *models.PreconditionError
		require.ErrorAs(t, err, &perr)
	})

	t.Run("exceeding the subset bound fails explicitly", func(t *testing.T) {
		state := circularWait(t)
		result := detect.WaitFor(state)

		engine := &Engine{MaxSubsets: 2}
		_, err := engine.MinimalTerminationSets(state, result)

		var berr *models.SearchBoundError
		require.ErrorAs(t, err, &berr)
		assert.Equal(t, 2, berr.Bound)
	})
}

func TestPreemptionSuggestions(t *testing.T) {
	t.Run("cycle transfers are all verified", func(t *testing.T) {
		state := circularWait(t)
		result := detect.WaitFor(state)

		engine := &Engine{}
		suggestions, err := engine.PreemptionSuggestions(state, result)

		require.NoError(t, err)
		require.Len(t, suggestions, 3)
		for _, s := range suggestions {
			assert.Equal(t, models.SuggestPreempt, s.Kind)
			assert.True(t, s.Verified, "transfer %s should verify", s.Description)
			require.NotNil(t, s.Outcome)
			assert.False(t, s.Outcome.Deadlocked)
		}
	})

	t.Run("suggestions are ordered by donor, resource, recipient", func(t *testing.T) {
		state := circularWait(t)
		result := detect.WaitFor(state)

		engine := &Engine{}
		suggestions, err := engine.PreemptionSuggestions(state, result)

		require.NoError(t, err)
		require.Len(t, suggestions, 3)
		assert.Equal(t, 0, suggestions[0].DonorPID)
		assert.Equal(t, 2, suggestions[0].RecipientPID)
		assert.Equal(t, 1, suggestions[1].DonorPID)
		assert.Equal(t, 2, suggestions[2].DonorPID)
	})

	t.Run("transfer that does not unblock is speculative", func(t *testing.T) {
		// P0 and P1 hold two instances each and both want three more:
		// moving a single instance between them satisfies nobody.
		state := buildState(t,
			[]int{4},
			[]int{0},
			[][]int{{2}, {2}},
			[][]int{{3}, {3}})
		result := detect.Reachability(state)
		require.True(t, result.Deadlocked)

		engine := &Engine{}
		suggestions, err := engine.PreemptionSuggestions(state, result)

		require.NoError(t, err)
		require.Len(t, suggestions, 2)
		for _, s := range suggestions {
			assert.False(t, s.Verified)
			assert.Contains(t, s.Explanation, "speculative")
		}
	})

	t.Run("input state is untouched by simulation", func(t *testing.T) {
		state := circularWait(t)
		before := state.Clone()
		result := detect.WaitFor(state)

		engine := &Engine{}
		_, err := engine.PreemptionSuggestions(state, result)

		require.NoError(t, err)
		assert.Equal(t, before, state)
	})

	t.Run("non-deadlocked result is a precondition error", func(t *testing.T) {
		state := buildState(t,
			[]int{1},
			[]int{1},
			[][]int{{0}},
			[][]int{{0}})
		result := detect.Reachability(state)

		engine := &Engine{}
		_, err := engine.PreemptionSuggestions(state, result)

		var perr *models.PreconditionError
		require.ErrorAs(t, err, &perr)
	})
}

func TestSuggest(t *testing.T) {
	t.Run("terminations come before preemptions", func(t *testing.T) {
		state := circularWait(t)
		result := detect.WaitFor(state)

		engine := &Engine{}
		suggestions, err := engine.Suggest(state, result)

		require.NoError(t, err)
		require.Len(t, suggestions, 6)
		for _, s := range suggestions[:3] {
			assert.Equal(t, models.SuggestTerminate, s.Kind)
			assert.True(t, s.Verified)
		}
		for _, s := range suggestions[3:] {
			assert.Equal(t, models.SuggestPreempt, s.Kind)
		}
	})
}
