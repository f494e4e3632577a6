package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/gridlock/core/internal/detect"
	"github.com/gridlock/core/internal/models"
	"github.com/gridlock/core/internal/recovery"
	"github.com/gridlock/core/internal/schema"
)

var (
	analyzeSample  string
	analyzeMode    string
	analyzeRecover bool
	analyzeJSON    bool
	analyzeForce   bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [FILE]",
	Short: "Run deadlock detection on a system state document",
	Long: `Loads a system state from a JSON document (or a bundled sample via
--sample) and runs deadlock detection. With --recover, a detected
deadlock is followed by the recovery-strategy search.

Modes:
  auto      pick wait-for graph for single-instance states, the
            work/finish simulation otherwise (default)
  waitfor   wait-for graph cycle detection
  matrix    work/finish reachability simulation`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		state, err := loadAnalyzeState(args)
		if err != nil {
			return err
		}

		result, err := runDetection(state, analyzeMode, analyzeForce)
		if err != nil {
			return err
		}

		var suggestions []models.RecoverySuggestion
		if analyzeRecover && result.Deadlocked {
			engine := &recovery.Engine{MaxSubsets: cfg.Engine.MaxSubsets}
			suggestions, err = engine.Suggest(state, result)
			if err != nil {
				return err
			}
		}

		if analyzeJSON {
			out := struct {
				Result      *models.DetectionResult     `json:"result"`
				Suggestions []models.RecoverySuggestion `json:"suggestions,omitempty"`
			}{result, suggestions}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}

		printStateTable(cmd, state)
		printResult(cmd, result)
		if analyzeRecover && result.Deadlocked {
			printSuggestions(cmd, suggestions)
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeSample, "sample", "", "analyze a bundled sample instead of a file")
	analyzeCmd.Flags().StringVar(&analyzeMode, "mode", "auto", "detection mode: auto, waitfor or matrix")
	analyzeCmd.Flags().BoolVar(&analyzeRecover, "recover", false, "suggest recovery actions when deadlocked")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "emit JSON instead of tables")
	analyzeCmd.Flags().BoolVar(&analyzeForce, "force", false, "allow waitfor mode on multi-instance states")
	rootCmd.AddCommand(analyzeCmd)
}

func loadAnalyzeState(args []string) (*models.SystemState, error) {
	if analyzeSample != "" {
		return schema.LoadSample(analyzeSample)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("either FILE or --sample is required")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return schema.Decode(data)
}

func runDetection(state *models.SystemState, mode string, force bool) (*models.DetectionResult, error) {
	switch mode {
	case "auto":
		if state.IsSingleInstance() {
			return detect.WaitFor(state), nil
		}
		return detect.Reachability(state), nil
	case "waitfor":
		if !state.IsSingleInstance() && !force {
			return nil, fmt.Errorf("waitfor mode requires a single-instance state (use --force to override)")
		}
		return detect.WaitFor(state), nil
	case "matrix", "reachability":
		return detect.Reachability(state), nil
	default:
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
}

func printStateTable(cmd *cobra.Command, state *models.SystemState) {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetTitle("System State")

	header := table.Row{"Process"}
	for _, rt := range state.ResourceTypes {
		header = append(header, fmt.Sprintf("%s held", rt.Name))
	}
	for _, rt := range state.ResourceTypes {
		header = append(header, fmt.Sprintf("%s wanted", rt.Name))
	}
	t.AppendHeader(header)

	for i, p := range state.Processes {
		row := table.Row{p.Name}
		for j := range state.ResourceTypes {
			row = append(row, state.Allocation[i][j])
		}
		for j := range state.ResourceTypes {
			row = append(row, state.Request[i][j])
		}
		t.AppendRow(row)
	}

	footer := table.Row{"available"}
	for j := range state.ResourceTypes {
		footer = append(footer, state.Available[j])
	}
	for range state.ResourceTypes {
		footer = append(footer, "")
	}
	t.AppendFooter(footer)

	fmt.Fprintln(cmd.OutOrStdout(), t.Render())
}

func printResult(cmd *cobra.Command, result *models.DetectionResult) {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out)
	for _, line := range result.Trace {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out)

	if result.Deadlocked {
		fmt.Fprintf(out, "DEADLOCK: processes %s\n", joinPIDs(result.DeadlockedPIDs))
		for _, c := range result.Cycles {
			var hops []string
			for _, e := range c.Edges {
				hops = append(hops, fmt.Sprintf("P%d -(R%d)-> P%d", e.From, e.RID, e.To))
			}
			fmt.Fprintln(out, "  cycle:", strings.Join(hops, " "))
		}
	} else {
		fmt.Fprintln(out, "No deadlock detected.")
		if len(result.SafeOrder) > 0 {
			fmt.Fprintf(out, "  safe order: %s\n", joinPIDs(result.SafeOrder))
		}
	}
}

func printSuggestions(cmd *cobra.Command, suggestions []models.RecoverySuggestion) {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetTitle("Recovery Suggestions")
	t.AppendHeader(table.Row{"#", "Kind", "Verified", "Suggestion"})

	for i, s := range suggestions {
		verified := "yes"
		if !s.Verified {
			verified = "speculative"
		}
		t.AppendRow(table.Row{i + 1, string(s.Kind), verified, s.Description})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintln(out, t.Render())
}

func joinPIDs(pids []int) string {
	parts := make([]string, len(pids))
	for i, pid := range pids {
		parts[i] = fmt.Sprintf("P%d", pid)
	}
	return strings.Join(parts, ", ")
}
