// Package schema handles the durable JSON form of a system state.
// It decodes and validates incoming documents, encodes states for
// storage, and ships the bundled sample datasets.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/gridlock/core/internal/models"
)

// Version identifies the document layout. Decoders accept any document
// that carries a schema_version; all integer fields round-trip exactly.
const Version = "1.0"

// Document is the serialized form of a SystemState.
type Document struct {
	SchemaVersion string                `json:"schema_version"`
	Processes     []models.Process      `json:"processes"`
	ResourceTypes []models.ResourceType `json:"resource_types"`
	Available     []int                 `json:"available"`
	Allocation    [][]int               `json:"allocation"`
	Request       [][]int               `json:"request"`
}

// Decode parses and validates a serialized system state. Structural
// validation is delegated to models.NewSystemState, so a decoded state
// carries the same guarantees as one built directly.
func Decode(data []byte) (*models.SystemState, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty system state document")
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal system state: %w", err)
	}

	if doc.SchemaVersion == "" {
		return nil, fmt.Errorf("invalid system state document: missing schema_version field")
	}

	return models.NewSystemState(doc.Processes, doc.ResourceTypes, doc.Available, doc.Allocation, doc.Request)
}

// Encode serializes a state as an indented document.
func Encode(state *models.SystemState) ([]byte, error) {
	doc := Document{
		SchemaVersion: Version,
		Processes:     state.Processes,
		ResourceTypes: state.ResourceTypes,
		Available:     state.Available,
		Allocation:    state.Allocation,
		Request:       state.Request,
	}
	return json.MarshalIndent(doc, "", "  ")
}
