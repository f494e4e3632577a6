// Package models defines the core data structures for deadlock analysis.
// It includes the system-state model, detection results, and the typed
// errors the engine returns instead of logging.
package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProcesses(n int) []Process {
	out := make([]Process, n)
	for i := range out {
		out[i] = Process{PID: i, Name: "P" + string(rune('0'+i))}
	}
	return out
}

func newResources(instances ...int) []ResourceType {
	out := make([]ResourceType, len(instances))
	for j, inst := range instances {
		out[j] = ResourceType{RID: j, Name: "R" + string(rune('0'+j)), Instances: inst}
	}
	return out
}

func TestNewSystemState(t *testing.T) {
	t.Run("valid state passes validation", func(t *testing.T) {
		state, err := NewSystemState(
			newProcesses(2),
			newResources(1, 1),
			[]int{0, 0},
			[][]int{{1, 0}, {0, 1}},
			[][]int{{0, 1}, {0, 0}},
		)

		require.NoError(t, err)
		assert.Equal(t, 2, state.N())
		assert.Equal(t, 2, state.M())
	})

	t.Run("conservation holds for every resource after construction", func(t *testing.T) {
		state, err := NewSystemState(
			newProcesses(3),
			newResources(10, 5, 7),
			[]int{3, 3, 2},
			[][]int{{0, 1, 0}, {2, 0, 0}, {5, 1, 5}},
			[][]int{{0, 0, 0}, {1, 0, 2}, {0, 0, 0}},
		)

		require.NoError(t, err)
		for j := 0; j < state.M(); j++ {
			allocated := 0
			for i := 0; i < state.N(); i++ {
				allocated += state.Allocation[i][j]
			}
			assert.Equal(t, state.ResourceTypes[j].Instances, state.Available[j]+allocated)
		}
	})

	t.Run("conservation violation is rejected with the resource index", func(t *testing.T) {
		_, err := NewSystemState(
			newProcesses(2),
			newResources(1, 7),
			[]int{0, 0},
			[][]int{{1, 0}, {0, 5}},
			[][]int{{0, 0}, {0, 0}},
		)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "conservation", verr.Rule)
		assert.Equal(t, []int{1}, verr.Index)
		assert.Contains(t, verr.Error(), "available(0)+allocated(5) != total(7)")
	})

	t.Run("negative allocation entry is rejected with its position", func(t *testing.T) {
		_, err := NewSystemState(
			newProcesses(2),
			newResources(1, 1),
			[]int{2, 0},
			[][]int{{-1, 0}, {0, 1}},
			[][]int{{0, 0}, {0, 0}},
		)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "negative", verr.Rule)
		assert.Equal(t, []int{0, 0}, verr.Index)
	})

	t.Run("dimension mismatch in available vector is rejected", func(t *testing.T) {
		_, err := NewSystemState(
			newProcesses(1),
			newResources(1, 1),
			[]int{1},
			[][]int{{0, 0}},
			[][]int{{0, 0}},
		)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "dimension", verr.Rule)
	})

	t.Run("ragged allocation matrix is rejected", func(t *testing.T) {
		_, err := NewSystemState(
			newProcesses(2),
			newResources(1, 1),
			[]int{1, 1},
			[][]int{{0, 0}, {0}},
			[][]int{{0, 0}, {0, 0}},
		)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "dimension", verr.Rule)
		assert.Equal(t, []int{1}, verr.Index)
	})

	t.Run("request exceeding total instances is rejected", func(t *testing.T) {
		_, err := NewSystemState(
			newProcesses(1),
			newResources(2),
			[]int{2},
			[][]int{{0}},
			[][]int{{3}},
		)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "request_exceeds_total", verr.Rule)
	})

	t.Run("empty process list is rejected", func(t *testing.T) {
		_, err := NewSystemState(nil, newResources(1), []int{1}, nil, nil)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("non-dense pids are rejected", func(t *testing.T) {
		_, err := NewSystemState(
			[]Process{{PID: 0, Name: "P0"}, {PID: 5, Name: "P5"}},
			newResources(1),
			[]int{1},
			[][]int{{0}, {0}},
			[][]int{{0}, {0}},
		)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("no partial state is returned on failure", func(t *testing.T) {
		state, err := NewSystemState(
			newProcesses(1),
			newResources(1),
			[]int{-1},
			[][]int{{2}},
			[][]int{{0}},
		)

		assert.Error(t, err)
		assert.Nil(t, state)
	})
}

func TestIsSingleInstance(t *testing.T) {
	t.Run("true when every resource has exactly one instance", func(t *testing.T) {
		state, err := NewSystemState(
			newProcesses(1),
			newResources(1, 1, 1),
			[]int{1, 1, 1},
			[][]int{{0, 0, 0}},
			[][]int{{0, 0, 0}},
		)

		require.NoError(t, err)
		assert.True(t, state.IsSingleInstance())
	})

	t.Run("false when any resource has more", func(t *testing.T) {
		state, err := NewSystemState(
			newProcesses(1),
			newResources(1, 2),
			[]int{1, 2},
			[][]int{{0, 0}},
			[][]int{{0, 0}},
		)

		require.NoError(t, err)
		assert.False(t, state.IsSingleInstance())
	})
}

func TestClone(t *testing.T) {
	t.Run("clone is deep", func(t *testing.T) {
		state, err := NewSystemState(
			newProcesses(2),
			newResources(2, 2),
			[]int{1, 1},
			[][]int{{1, 0}, {0, 1}},
			[][]int{{0, 1}, {0, 0}},
		)
		require.NoError(t, err)

		clone := state.Clone()
		clone.Available[0] = 99
		clone.Allocation[0][0] = 99
		clone.Request[1][1] = 99
		clone.Processes[0].Name = "mutated"

		assert.Equal(t, 1, state.Available[0])
		assert.Equal(t, 1, state.Allocation[0][0])
		assert.Equal(t, 0, state.Request[1][1])
		assert.Equal(t, "P0", state.Processes[0].Name)
	})
}

func TestErrorTaxonomy(t *testing.T) {
	t.Run("validation error is matchable", func(t *testing.T) {
		var err error = &ValidationError{Rule: "negative", Detail: "negative value at allocation[1][0]"}

		var verr *ValidationError
		assert.True(t, errors.As(err, &verr))
		assert.Contains(t, err.Error(), "negative value at allocation[1][0]")
	})

	t.Run("precondition error names the operation", func(t *testing.T) {
		err := &PreconditionError{Op: "recovery.Suggest", Detail: "detection result is not a deadlock"}
		assert.Contains(t, err.Error(), "recovery.Suggest")
	})

	t.Run("search bound error carries the bound", func(t *testing.T) {
		err := &SearchBoundError{Candidates: 5000, Bound: 4096}
		assert.Contains(t, err.Error(), "4096")
	})
}
