package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/trikesim/qa/scenarios"
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario <file>...",
	Short: "Run hand-written YAML scenarios and check their expectations",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runScenarios,
}

func init() {
	rootCmd.AddCommand(scenarioCmd)
}

func runScenarios(cmd *cobra.Command, args []string) error {
	failed := 0
	for _, path := range args {
		sc, err := scenarios.Load(path)
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		res, err := scenarios.Run(cmd.Context(), sc)
		if err != nil {
			return fmt.Errorf("run %s: %w", sc.Name, err)
		}
		status := "ok"
		if err := sc.Expected.Check(res); err != nil {
			failed++
			status = "FAIL: " + err.Error()
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-32s completed %d/%d in %d ticks  %s\n",
			sc.Name, res.Summary.Completed, res.Summary.TotalPassengers, res.Summary.Ticks, status)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, len(args))
	}
	return nil
}
