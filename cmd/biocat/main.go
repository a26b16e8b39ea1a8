package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agrisense/biocat/pkg/log"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "biocat",
	Short: "Risk-weighted pest abundance forecasting experiments",
	Long: `biocat compares risk-weighted gradient boosting against unweighted
baselines. The compare command runs one dataset end to end; the robustness
command repeats the comparison across many synthetic datasets.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetupLogger(logLevel)
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level (debug, info, warn, error)")
	rootCmd.AddCommand(compareCmd())
	rootCmd.AddCommand(robustnessCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
