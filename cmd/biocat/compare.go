package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agrisense/biocat/dataset"
	"github.com/agrisense/biocat/experiment"
	"github.com/agrisense/biocat/pkg/log"
	"github.com/agrisense/biocat/risk"
)

func compareCmd() *cobra.Command {
	var (
		configPath    string
		dataPath      string
		featureList   string
		targetColumn  string
		riskColumn    string
		normalizeRisk bool
		standardize   bool
		task          string
		outPath       string
		chartsDir     string
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Run the model comparison on one CSV dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := log.GetLoggerWithName("compare")

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if task != "" {
				cfg.Task = experiment.Task(task)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			f, err := os.Open(dataPath)
			if err != nil {
				return err
			}
			defer f.Close()

			tbl, err := dataset.LoadCSV(f, dataset.Options{
				FeatureColumns:      splitColumns(featureList),
				TargetColumn:        targetColumn,
				RiskColumn:          riskColumn,
				NormalizeRisk:       normalizeRisk,
				StandardizeFeatures: standardize,
			})
			if err != nil {
				return err
			}
			logger.Info("dataset loaded",
				"rows", tbl.NumRows(), "features", tbl.NumFeatures())

			h := experiment.NewHarness(cfg)
			table := experiment.NewResultTable()
			if err := h.Evaluate("dataset", tbl, cfg.Seed, table); err != nil {
				return err
			}
			table.Sort(experiment.HeadlineMetric(cfg.Task))

			if chartsDir != "" {
				if err := writeCompareCharts(cfg, tbl, table, chartsDir); err != nil {
					return err
				}
			}
			return writeTable(table, cfg, outPath)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "YAML config file (defaults used when empty)")
	cmd.Flags().StringVar(&dataPath, "data", "", "input CSV file")
	cmd.Flags().StringVar(&featureList, "features", "", "comma-separated feature columns")
	cmd.Flags().StringVar(&targetColumn, "target", "abundance", "target column")
	cmd.Flags().StringVar(&riskColumn, "risk", "risk_index", "biological risk index column")
	cmd.Flags().BoolVar(&normalizeRisk, "normalize-risk", false, "min-max scale the risk column before clamping")
	cmd.Flags().BoolVar(&standardize, "standardize", false, "standardize feature columns")
	cmd.Flags().StringVar(&task, "task", "", "override configured task (classification or regression)")
	cmd.Flags().StringVar(&outPath, "out", "", "write the result table as CSV (stdout when empty)")
	cmd.Flags().StringVar(&chartsDir, "charts", "", "directory for gain-curve and metric charts")
	cobra.CheckErr(cmd.MarkFlagRequired("data"))
	cobra.CheckErr(cmd.MarkFlagRequired("features"))
	return cmd
}

func loadConfig(path string) (*experiment.Config, error) {
	if path == "" {
		return experiment.DefaultConfig(), nil
	}
	return experiment.LoadConfig(path)
}

func splitColumns(list string) []string {
	var out []string
	for _, c := range strings.Split(list, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

func writeTable(table *experiment.ResultTable, cfg *experiment.Config, outPath string) error {
	metrics := experiment.MetricColumns(cfg.Task)
	if outPath == "" {
		return table.WriteCSV(os.Stdout, metrics)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return table.WriteCSV(f, metrics)
}

func writeCompareCharts(cfg *experiment.Config, tbl *dataset.Table, table *experiment.ResultTable, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	// Curves reflect the anchors of the full dataset; the harness itself
	// recomputes them from the training split.
	anchors, err := risk.ComputeAnchors(tbl.Risk)
	if err != nil {
		return err
	}
	registry, err := risk.BuildRegistry(anchors)
	if err != nil {
		return err
	}
	series, err := experiment.GainCurves(registry, 200)
	if err != nil {
		return err
	}
	if err := experiment.RenderGainCurves(series, filepath.Join(dir, "gain_curves.png")); err != nil {
		return err
	}

	metric := experiment.HeadlineMetric(cfg.Task)
	return experiment.RenderMetricBars(table, "dataset", metric,
		filepath.Join(dir, metric+"_by_model.png"))
}
