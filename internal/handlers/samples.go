// Package handlers provides HTTP request handlers for the API endpoints.
// It defines the routing logic, response formatting, and error handling
// mechanisms.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gridlock/core/internal/schema"
)

// SampleInfo describes one bundled sample dataset.
type SampleInfo struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// SamplesHandler lists the bundled sample datasets, or returns one in
// full when the name query parameter is set.
func SamplesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if name := r.URL.Query().Get("name"); name != "" {
		state, err := schema.LoadSample(name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		doc, err := schema.Encode(state)
		if err != nil {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if _, err := w.Write(doc); err != nil {
			slog.Error("failed to write sample response", "error", err)
		}
		return
	}

	infos := []SampleInfo{}
	for _, name := range schema.SampleNames() {
		infos = append(infos, SampleInfo{Name: name, Title: schema.SampleTitle(name)})
	}
	if err := json.NewEncoder(w).Encode(infos); err != nil {
		slog.Error("failed to encode samples response", "error", err)
	}
}
