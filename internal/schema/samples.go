// Package schema handles the durable JSON form of a system state.
// It decodes and validates incoming documents, encodes states for
// storage, and ships the bundled sample datasets.
package schema

import (
	"fmt"
	"sort"

	"github.com/gridlock/core/internal/models"
)

// Sample keys, stable across releases.
const (
	SampleSingleDeadlock   = "single-instance-deadlock"
	SampleSingleNoDeadlock = "single-instance-no-deadlock"
	SampleMultiDeadlock    = "multi-instance-deadlock"
	SampleMultiNoDeadlock  = "multi-instance-no-deadlock"
	SampleEmpty            = "empty-template"
)

type sampleBuilder struct {
	title string
	build func() *models.SystemState
}

var samples = map[string]sampleBuilder{
	SampleSingleDeadlock: {
		title: "Single-Instance: Deadlock (Cycle)",
		build: func() *models.SystemState {
			// P0 holds R0 wants R1, P1 holds R1 wants R2, P2 holds R2
			// wants R0: the classic three-way cycle.
			return mustState(3,
				[]int{1, 1, 1},
				[]int{0, 0, 0},
				[][]int{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
				[][]int{{0, 1, 0}, {0, 0, 1}, {1, 0, 0}})
		},
	},
	SampleSingleNoDeadlock: {
		title: "Single-Instance: No Deadlock",
		build: func() *models.SystemState {
			// Only P0 waits; P1 and P2 can finish and release.
			return mustState(3,
				[]int{1, 1, 1},
				[]int{0, 0, 0},
				[][]int{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
				[][]int{{0, 1, 0}, {0, 0, 0}, {0, 0, 0}})
		},
	},
	SampleMultiDeadlock: {
		title: "Multi-Instance: Deadlock",
		build: func() *models.SystemState {
			return mustState(3,
				[]int{2, 2, 2},
				[]int{0, 0, 0},
				[][]int{{1, 0, 1}, {1, 1, 0}, {0, 1, 1}},
				[][]int{{1, 1, 0}, {0, 1, 1}, {1, 0, 1}})
		},
	},
	SampleMultiNoDeadlock: {
		title: "Multi-Instance: No Deadlock",
		build: func() *models.SystemState {
			return mustState(5,
				[]int{10, 5, 7},
				[]int{3, 3, 2},
				[][]int{{0, 1, 0}, {2, 0, 0}, {3, 0, 2}, {2, 1, 1}, {0, 0, 2}},
				[][]int{{0, 0, 0}, {1, 0, 2}, {0, 0, 0}, {1, 0, 0}, {0, 0, 2}})
		},
	},
	SampleEmpty: {
		title: "Empty Template",
		build: func() *models.SystemState {
			return mustState(3,
				[]int{1, 1, 1},
				[]int{1, 1, 1},
				[][]int{{0, 0, 0}, {0, 0, 0}, {0, 0, 0}},
				[][]int{{0, 0, 0}, {0, 0, 0}, {0, 0, 0}})
		},
	},
}

// SampleNames returns the available sample keys, sorted.
func SampleNames() []string {
	names := make([]string, 0, len(samples))
	for name := range samples {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SampleTitle returns the display title for a sample key.
func SampleTitle(name string) string {
	return samples[name].title
}

// LoadSample builds a fresh copy of the named sample.
func LoadSample(name string) (*models.SystemState, error) {
	b, ok := samples[name]
	if !ok {
		return nil, fmt.Errorf("unknown sample %q, available: %v", name, SampleNames())
	}
	return b.build(), nil
}

// mustState builds a sample with generated P/R names and the given
// instance totals. Samples are fixed data; a construction failure is a
// bug in this file.
func mustState(n int, instances, available []int, allocation, request [][]int) *models.SystemState {
	processes := make([]models.Process, n)
	for i := range processes {
		processes[i] = models.Process{PID: i, Name: fmt.Sprintf("P%d", i)}
	}
	resourceTypes := make([]models.ResourceType, len(instances))
	for j := range resourceTypes {
		resourceTypes[j] = models.ResourceType{RID: j, Name: fmt.Sprintf("R%d", j), Instances: instances[j]}
	}
	state, err := models.NewSystemState(processes, resourceTypes, available, allocation, request)
	if err != nil {
		panic(fmt.Sprintf("invalid sample dataset: %v", err))
	}
	return state
}
