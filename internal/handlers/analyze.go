// Package handlers provides HTTP request handlers for the API endpoints.
// It defines the routing logic, response formatting, and error handling
// mechanisms.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gridlock/core/internal/detect"
	"github.com/gridlock/core/internal/models"
	"github.com/gridlock/core/internal/recovery"
	"github.com/gridlock/core/internal/schema"
)

// AnalyzeResponse is the body returned by the analyze endpoint.
type AnalyzeResponse struct {
	Processes      int                         `json:"processes"`
	ResourceTypes  int                         `json:"resource_types"`
	SingleInstance bool                        `json:"single_instance"`
	Result         *models.DetectionResult     `json:"result"`
	Suggestions    []models.RecoverySuggestion `json:"suggestions,omitempty"`
}

// AnalyzeHandler runs deadlock detection on a posted system state
// document.
//
// Query parameters:
//   - mode: "auto" (default, dispatch on single-instance), "waitfor" or
//     "matrix". Mode "waitfor" on a multi-instance state is refused
//     unless force=true, since the wait-for graph cannot express every
//     multi-instance deadlock.
//   - recover: "true" appends recovery suggestions when deadlocked.
//   - pretty: "true" indents the response.
func AnalyzeHandler(engine *recovery.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read body", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		state, err := schema.Decode(body)
		if err != nil {
			http.Error(w, "Invalid system state: "+err.Error(), http.StatusBadRequest)
			return
		}

		mode := r.URL.Query().Get("mode")
		if mode == "" {
			mode = "auto"
		}

		var result *models.DetectionResult
		switch mode {
		case "auto":
			if state.IsSingleInstance() {
				result = detect.WaitFor(state)
			} else {
				result = detect.Reachability(state)
			}
		case "waitfor":
			if !state.IsSingleInstance() && r.URL.Query().Get("force") != "true" {
				http.Error(w, "Wait-for detection requires a single-instance state (pass force=true to override)",
					http.StatusUnprocessableEntity)
				return
			}
			result = detect.WaitFor(state)
		case "matrix", "reachability":
			result = detect.Reachability(state)
		default:
			http.Error(w, "Unknown mode: "+mode, http.StatusBadRequest)
			return
		}

		response := AnalyzeResponse{
			Processes:      state.N(),
			ResourceTypes:  state.M(),
			SingleInstance: state.IsSingleInstance(),
			Result:         result,
		}

		if r.URL.Query().Get("recover") == "true" && result.Deadlocked {
			suggestions, err := engine.Suggest(state, result)
			if err != nil {
				var bound *models.SearchBoundError
				if errors.As(err, &bound) {
					http.Error(w, "Recovery search failed: "+err.Error(), http.StatusUnprocessableEntity)
					return
				}
				http.Error(w, "Recovery search failed: "+err.Error(), http.StatusInternalServerError)
				return
			}
			response.Suggestions = suggestions
		}

		w.Header().Set("Content-Type", "application/json")

		encoder := json.NewEncoder(w)
		if r.URL.Query().Get("pretty") == "true" {
			encoder.SetIndent("", "  ")
		}

		if err := encoder.Encode(response); err != nil {
			slog.Error("failed to encode analyze response", "error", err)
		}
	}
}
