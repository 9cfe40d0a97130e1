package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/trikesim/app"
	"github.com/kilianp07/trikesim/config"
	"github.com/kilianp07/trikesim/infra/logger"
)

var (
	cfgPath  string
	runCount int
	seed     int64
)

var rootCmd = &cobra.Command{
	Use:   "trikesim",
	Short: "Tricycle fleet dispatch simulator",
	RunE:  run,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate and simulate the configured scenario",
	RunE:  run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
	for _, c := range []*cobra.Command{rootCmd, runCmd} {
		c.Flags().IntVarP(&runCount, "runs", "n", 0, "number of runs, overrides runs.count")
		c.Flags().Int64Var(&seed, "seed", 0, "base seed, overrides simulation.seed")
	}
	rootCmd.AddCommand(runCmd)
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cmd.Flags().Changed("runs") {
		cfg.Runs.Count = runCount
	}
	if cmd.Flags().Changed("seed") {
		cfg.Simulation.Seed = seed
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	sums, err := svc.Run(ctx)
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	for _, s := range sums {
		if encErr := enc.Encode(s); encErr != nil {
			return encErr
		}
	}
	return err
}
