package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/gridlock/core/internal/schema"
)

var samplesCmd = &cobra.Command{
	Use:   "samples",
	Short: "List the bundled sample datasets",
	RunE: func(cmd *cobra.Command, args []string) error {
		t := table.NewWriter()
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Name", "Title", "Processes", "Resources", "Single-Instance"})

		for _, name := range schema.SampleNames() {
			state, err := schema.LoadSample(name)
			if err != nil {
				return err
			}
			t.AppendRow(table.Row{
				name,
				schema.SampleTitle(name),
				state.N(),
				state.M(),
				state.IsSingleInstance(),
			})
		}

		fmt.Fprintln(cmd.OutOrStdout(), t.Render())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(samplesCmd)
}
