package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agrisense/biocat/experiment"
)

func robustnessCmd() *cobra.Command {
	var (
		configPath string
		runs       int
		workers    int
		task       string
		outPath    string
		chartsDir  string
	)

	cmd := &cobra.Command{
		Use:   "robustness",
		Short: "Repeat the comparison across synthetic datasets",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if runs > 0 {
				cfg.Robustness.Runs = runs
			}
			if workers > 0 {
				cfg.Robustness.Workers = workers
			}
			if task != "" {
				cfg.Task = experiment.Task(task)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			h := experiment.NewHarness(cfg)
			summary, _, table, err := h.RunRobustness()
			if err != nil {
				return err
			}
			table.Sort(experiment.HeadlineMetric(cfg.Task))

			fmt.Printf("runs: %d requested, %d completed, %d failed\n",
				summary.RequestedRuns, summary.CompletedRuns, summary.FailedRuns)
			fmt.Printf("weighted booster best:       %5.1f%%\n", 100*summary.TopRate)
			fmt.Printf("weighted booster top two:    %5.1f%%\n", 100*summary.Top2Rate)
			fmt.Printf("beats unweighted boosting:   %5.1f%%\n", 100*summary.BeatsBoostingRate)

			if chartsDir != "" {
				if err := writeRobustnessCharts(cfg, table, chartsDir); err != nil {
					return err
				}
			}
			if outPath != "" {
				return writeTable(table, cfg, outPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "YAML config file (defaults used when empty)")
	cmd.Flags().IntVar(&runs, "runs", 0, "override configured run count")
	cmd.Flags().IntVar(&workers, "workers", 0, "override configured worker count")
	cmd.Flags().StringVar(&task, "task", "", "override configured task (classification or regression)")
	cmd.Flags().StringVar(&outPath, "out", "", "write per-run results as CSV")
	cmd.Flags().StringVar(&chartsDir, "charts", "", "directory for per-run metric charts")
	return cmd
}

func writeRobustnessCharts(cfg *experiment.Config, table *experiment.ResultTable, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	metric := experiment.HeadlineMetric(cfg.Task)
	for _, scenario := range table.Scenarios() {
		path := filepath.Join(dir, scenario+"_"+metric+".png")
		if err := experiment.RenderMetricBars(table, scenario, metric, path); err != nil {
			return err
		}
	}
	return nil
}
