// Package models defines the core data structures for deadlock analysis.
// It includes the system-state model, detection results, and the typed
// errors the engine returns instead of logging.
package models

import "fmt"

// ValidationError reports a system state that violates a structural
// invariant. It is returned at construction time; no partial state is
// ever exposed to the caller.
type ValidationError struct {
	Rule   string // "dimension", "negative", "conservation", "request_exceeds_total"
	Index  []int  // offending position, e.g. [i, j] for a matrix cell
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid system state (%s): %s", e.Rule, e.Detail)
}

// PreconditionError reports caller-side misuse of the engine, such as
// running recovery on a non-deadlocked result. It signals a programming
// error, not bad user input.
type PreconditionError struct {
	Op     string
	Detail string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: precondition failed: %s", e.Op, e.Detail)
}

// SearchBoundError reports that the termination-set search would exceed
// its configured bound. The engine never returns a partial answer in its
// place.
type SearchBoundError struct {
	Candidates int
	Bound      int
}

func (e *SearchBoundError) Error() string {
	return fmt.Sprintf("termination search space (%d candidate sets) exceeds bound %d", e.Candidates, e.Bound)
}
