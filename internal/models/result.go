// Package models defines the core data structures for deadlock analysis.
// It includes the system-state model, detection results, and the typed
// errors the engine returns instead of logging.
package models

// Algorithm names the detection strategy that produced a result.
type Algorithm string

const (
	AlgorithmWaitFor      Algorithm = "waitfor"
	AlgorithmReachability Algorithm = "reachability"
)

// WaitForEdge is a directed edge in the wait-for graph: From is blocked
// on resource RID, which To currently holds.
type WaitForEdge struct {
	From int `json:"from"`
	To   int `json:"to"`
	RID  int `json:"rid"`
}

// Cycle is one elementary cycle in the wait-for graph. PIDs lists the
// members in traversal order without repeating the first; Edges has one
// entry per hop, including the closing hop back to PIDs[0].
type Cycle struct {
	PIDs  []int         `json:"pids"`
	Edges []WaitForEdge `json:"edges"`
}

// DetectionResult is the outcome of either detector.
//
// DeadlockedPIDs is sorted ascending and empty iff Deadlocked is false.
// Cycles and Edges are populated by the wait-for detector only; SafeOrder
// and Finish by the reachability detector only. Trace is an ordered,
// replayable account of the algorithm's steps, meant for display and
// audit, never for control flow.
type DetectionResult struct {
	Algorithm      Algorithm     `json:"algorithm"`
	Deadlocked     bool          `json:"deadlocked"`
	DeadlockedPIDs []int         `json:"deadlocked_pids"`
	Cycles         []Cycle       `json:"cycles,omitempty"`
	Edges          []WaitForEdge `json:"edges,omitempty"`
	SafeOrder      []int         `json:"safe_order,omitempty"`
	Finish         []bool        `json:"finish,omitempty"`
	Trace          []string      `json:"trace"`
	Warnings       []string      `json:"warnings,omitempty"`
}

// SuggestionKind distinguishes the two recovery variants.
type SuggestionKind string

const (
	SuggestTerminate SuggestionKind = "terminate"
	SuggestPreempt   SuggestionKind = "preempt"
)

// RecoverySuggestion is one proposed way out of a detected deadlock.
//
// Termination suggestions carry PIDs, a minimal set of processes whose
// removal provably clears the deadlock. Preemption suggestions carry a
// single-instance transfer (RID from DonorPID to RecipientPID); Verified
// is true only when re-running detection on the hypothetical transfer
// showed the recipient unblocked, and Outcome holds that re-detection.
type RecoverySuggestion struct {
	Kind         SuggestionKind   `json:"kind"`
	PIDs         []int            `json:"pids,omitempty"`
	RID          int              `json:"rid,omitempty"`
	DonorPID     int              `json:"donor_pid,omitempty"`
	RecipientPID int              `json:"recipient_pid,omitempty"`
	Verified     bool             `json:"verified"`
	Outcome      *DetectionResult `json:"outcome,omitempty"`
	Description  string           `json:"description"`
	Explanation  string           `json:"explanation,omitempty"`
}
