// Package models defines the core data structures for deadlock analysis.
// It includes the system-state model, detection results, and the typed
// errors the engine returns instead of logging.
package models

import "fmt"

// Process is a process under analysis. PIDs are 0-based and dense.
type Process struct {
	PID  int    `json:"pid"`
	Name string `json:"name"`
}

// ResourceType is a resource type with its total instance count.
// RIDs are 0-based and dense.
type ResourceType struct {
	RID       int    `json:"rid"`
	Name      string `json:"name"`
	Instances int    `json:"instances"`
}

// SystemState is the complete snapshot the detectors consume, using the
// standard textbook notation: n processes, m resource types,
// Available[m], Allocation[n][m], Request[n][m].
//
// A SystemState that came out of NewSystemState always satisfies the
// structural invariants; detectors never mutate it, so one state can be
// analyzed from multiple goroutines without locking.
type SystemState struct {
	Processes     []Process      `json:"processes"`
	ResourceTypes []ResourceType `json:"resource_types"`
	Available     []int          `json:"available"`
	Allocation    [][]int        `json:"allocation"`
	Request       [][]int        `json:"request"`
}

// NewSystemState validates the raw arrays and returns a state, or a
// *ValidationError naming the violated rule and position. Validation is
// atomic: either every invariant holds or no state is returned.
func NewSystemState(processes []Process, resourceTypes []ResourceType, available []int, allocation, request [][]int) (*SystemState, error) {
	s := &SystemState{
		Processes:     processes,
		ResourceTypes: resourceTypes,
		Available:     available,
		Allocation:    allocation,
		Request:       request,
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SystemState) validate() error {
	n := len(s.Processes)
	m := len(s.ResourceTypes)

	if n < 1 {
		return &ValidationError{Rule: "dimension", Detail: "at least one process is required"}
	}
	if m < 1 {
		return &ValidationError{Rule: "dimension", Detail: "at least one resource type is required"}
	}

	for i, p := range s.Processes {
		if p.PID != i {
			return &ValidationError{
				Rule:   "dimension",
				Index:  []int{i},
				Detail: fmt.Sprintf("process at position %d has pid %d, want dense 0-based ids", i, p.PID),
			}
		}
	}
	for j, rt := range s.ResourceTypes {
		if rt.RID != j {
			return &ValidationError{
				Rule:   "dimension",
				Index:  []int{j},
				Detail: fmt.Sprintf("resource type at position %d has rid %d, want dense 0-based ids", j, rt.RID),
			}
		}
		if rt.Instances < 1 {
			return &ValidationError{
				Rule:   "negative",
				Index:  []int{j},
				Detail: fmt.Sprintf("resource %d must have at least 1 instance, got %d", j, rt.Instances),
			}
		}
	}

	if len(s.Available) != m {
		return &ValidationError{
			Rule:   "dimension",
			Detail: fmt.Sprintf("available vector has %d entries, want %d", len(s.Available), m),
		}
	}
	if len(s.Allocation) != n {
		return &ValidationError{
			Rule:   "dimension",
			Detail: fmt.Sprintf("allocation matrix has %d rows, want %d", len(s.Allocation), n),
		}
	}
	if len(s.Request) != n {
		return &ValidationError{
			Rule:   "dimension",
			Detail: fmt.Sprintf("request matrix has %d rows, want %d", len(s.Request), n),
		}
	}
	for i, row := range s.Allocation {
		if len(row) != m {
			return &ValidationError{
				Rule:   "dimension",
				Index:  []int{i},
				Detail: fmt.Sprintf("allocation row %d has %d columns, want %d", i, len(row), m),
			}
		}
	}
	for i, row := range s.Request {
		if len(row) != m {
			return &ValidationError{
				Rule:   "dimension",
				Index:  []int{i},
				Detail: fmt.Sprintf("request row %d has %d columns, want %d", i, len(row), m),
			}
		}
	}

	for j, v := range s.Available {
		if v < 0 {
			return &ValidationError{
				Rule:   "negative",
				Index:  []int{j},
				Detail: fmt.Sprintf("negative value at available[%d]: %d", j, v),
			}
		}
	}
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			if s.Allocation[i][j] < 0 {
				return &ValidationError{
					Rule:   "negative",
					Index:  []int{i, j},
					Detail: fmt.Sprintf("negative value at allocation[%d][%d]: %d", i, j, s.Allocation[i][j]),
				}
			}
			if s.Request[i][j] < 0 {
				return &ValidationError{
					Rule:   "negative",
					Index:  []int{i, j},
					Detail: fmt.Sprintf("negative value at request[%d][%d]: %d", i, j, s.Request[i][j]),
				}
			}
		}
	}

	for j := 0; j < m; j++ {
		allocated := 0
		for i := 0; i < n; i++ {
			allocated += s.Allocation[i][j]
		}
		if s.Available[j]+allocated != s.ResourceTypes[j].Instances {
			return &ValidationError{
				Rule:  "conservation",
				Index: []int{j},
				Detail: fmt.Sprintf("resource conservation violated for resource %d: available(%d)+allocated(%d) != total(%d)",
					j, s.Available[j], allocated, s.ResourceTypes[j].Instances),
			}
		}
	}

	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			if s.Request[i][j] > s.ResourceTypes[j].Instances {
				return &ValidationError{
					Rule:  "request_exceeds_total",
					Index: []int{i, j},
					Detail: fmt.Sprintf("request[%d][%d] = %d exceeds total instances of resource %d (%d)",
						i, j, s.Request[i][j], j, s.ResourceTypes[j].Instances),
				}
			}
		}
	}

	return nil
}

// N returns the number of processes.
func (s *SystemState) N() int { return len(s.Processes) }

// M returns the number of resource types.
func (s *SystemState) M() int { return len(s.ResourceTypes) }

// IsSingleInstance reports whether every resource type has exactly one
// instance. Callers use it to choose between wait-for graph and
// reachability detection; the detectors themselves never switch modes.
func (s *SystemState) IsSingleInstance() bool {
	for _, rt := range s.ResourceTypes {
		if rt.Instances != 1 {
			return false
		}
	}
	return true
}

// Clone returns a deep copy. Recovery simulations mutate clones, never
// the original.
func (s *SystemState) Clone() *SystemState {
	c := &SystemState{
		Processes:     make([]Process, len(s.Processes)),
		ResourceTypes: make([]ResourceType, len(s.ResourceTypes)),
		Available:     make([]int, len(s.Available)),
		Allocation:    make([][]int, len(s.Allocation)),
		Request:       make([][]int, len(s.Request)),
	}
	copy(c.Processes, s.Processes)
	copy(c.ResourceTypes, s.ResourceTypes)
	copy(c.Available, s.Available)
	for i, row := range s.Allocation {
		c.Allocation[i] = append([]int(nil), row...)
	}
	for i, row := range s.Request {
		c.Request[i] = append([]int(nil), row...)
	}
	return c
}
