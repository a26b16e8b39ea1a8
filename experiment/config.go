// Package experiment contains the model-comparison harness and the
// robustness simulator for the BioCAT weighting study: split the data,
// fit unweighted baselines and one weighted booster per gain strategy,
// score everything on the held-out split, and (in robustness mode) repeat
// across many independently seeded synthetic datasets.
package experiment

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	biocatErrors "github.com/agrisense/biocat/pkg/errors"
)

// Task selects the prediction target type.
type Task string

// Supported tasks.
const (
	TaskClassification Task = "classification"
	TaskRegression     Task = "regression"
)

// ForestConfig holds random-forest hyperparameters.
type ForestConfig struct {
	NumTrees       int     `yaml:"num_trees"`
	MaxDepth       int     `yaml:"max_depth"`
	MinSamplesLeaf int     `yaml:"min_samples_leaf"`
	Colsample      float64 `yaml:"colsample"`
}

// TreeConfig holds single-decision-tree hyperparameters.
type TreeConfig struct {
	MaxDepth       int `yaml:"max_depth"`
	MinSamplesLeaf int `yaml:"min_samples_leaf"`
}

// BoostConfig holds gradient-boosting hyperparameters.
type BoostConfig struct {
	Rounds         int     `yaml:"rounds"`
	LearningRate   float64 `yaml:"learning_rate"`
	MaxDepth       int     `yaml:"max_depth"`
	MinSamplesLeaf int     `yaml:"min_samples_leaf"`
	Subsample      float64 `yaml:"subsample"`
	Colsample      float64 `yaml:"colsample"`
	Lambda         float64 `yaml:"lambda"`
}

// RobustnessConfig controls the synthetic-dataset simulation.
type RobustnessConfig struct {
	Runs        int `yaml:"runs"`
	MinSamples  int `yaml:"min_samples"`
	MaxSamples  int `yaml:"max_samples"`
	MinFeatures int `yaml:"min_features"`
	MaxFeatures int `yaml:"max_features"`

	// Workers bounds the worker pool; runs are independent and per-run
	// seeding does not depend on scheduling, so any value produces
	// identical results. 0 or 1 means sequential.
	Workers int `yaml:"workers"`
}

// Config is the full experiment configuration. The weighted boosters always
// reuse the Boosting block so that sample weights are the only difference
// from the plain-boosting baseline.
type Config struct {
	Task         Task    `yaml:"task"`
	Seed         int64   `yaml:"seed"`
	TestFraction float64 `yaml:"test_fraction"`

	Forest        ForestConfig     `yaml:"forest"`
	Tree          TreeConfig       `yaml:"tree"`
	BoostedForest BoostConfig      `yaml:"boosted_forest"`
	Boosting      BoostConfig      `yaml:"boosting"`
	Robustness    RobustnessConfig `yaml:"robustness"`
}

// DefaultConfig returns the hyperparameters used throughout the study.
func DefaultConfig() *Config {
	return &Config{
		Task:         TaskRegression,
		Seed:         42,
		TestFraction: 0.25,
		Forest: ForestConfig{
			NumTrees:       300,
			MaxDepth:       6,
			MinSamplesLeaf: 2,
			Colsample:      1.0 / 3.0,
		},
		Tree: TreeConfig{
			MaxDepth:       6,
			MinSamplesLeaf: 2,
		},
		BoostedForest: BoostConfig{
			Rounds:         300,
			LearningRate:   0.05,
			MaxDepth:       6,
			MinSamplesLeaf: 5,
			Subsample:      0.8,
			Colsample:      0.8,
			Lambda:         1.0,
		},
		Boosting: BoostConfig{
			Rounds:         300,
			LearningRate:   0.05,
			MaxDepth:       4,
			MinSamplesLeaf: 5,
			Subsample:      0.9,
			Colsample:      1.0,
			Lambda:         1.0,
		},
		Robustness: RobustnessConfig{
			Runs:        100,
			MinSamples:  120,
			MaxSamples:  400,
			MinFeatures: 4,
			MaxFeatures: 12,
			Workers:     1,
		},
	}
}

// LoadConfig reads a YAML config file over the defaults and validates it.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, biocatErrors.NewModelError("experiment.LoadConfig", "reading config file", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, biocatErrors.NewModelError("experiment.LoadConfig", "parsing config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values that would make a run
// meaningless.
func (c *Config) Validate() error {
	if c.Task != TaskClassification && c.Task != TaskRegression {
		return biocatErrors.NewValidationError("task",
			"must be \"classification\" or \"regression\"", string(c.Task))
	}
	if c.TestFraction <= 0 || c.TestFraction >= 1 {
		return biocatErrors.NewValidationError("test_fraction", "must be in (0, 1)", c.TestFraction)
	}
	if c.Seed < 0 {
		return biocatErrors.NewValidationError("seed", "must be non-negative", c.Seed)
	}
	if c.Robustness.Runs < 1 {
		return biocatErrors.NewValidationError("robustness.runs", "must be >= 1", c.Robustness.Runs)
	}
	if c.Robustness.MinSamples < 10 || c.Robustness.MaxSamples < c.Robustness.MinSamples {
		return biocatErrors.NewValidationError("robustness sample range",
			"need max_samples >= min_samples >= 10",
			fmt.Sprintf("[%d, %d]", c.Robustness.MinSamples, c.Robustness.MaxSamples))
	}
	if c.Robustness.MinFeatures < 1 || c.Robustness.MaxFeatures < c.Robustness.MinFeatures {
		return biocatErrors.NewValidationError("robustness feature range",
			"need max_features >= min_features >= 1",
			fmt.Sprintf("[%d, %d]", c.Robustness.MinFeatures, c.Robustness.MaxFeatures))
	}
	if c.Robustness.Workers < 0 {
		return biocatErrors.NewValidationError("robustness.workers", "must be >= 0", c.Robustness.Workers)
	}
	if err := validateForest("forest", c.Forest); err != nil {
		return err
	}
	if err := validateTree("tree", c.Tree); err != nil {
		return err
	}
	if err := validateBoost("boosted_forest", c.BoostedForest); err != nil {
		return err
	}
	return validateBoost("boosting", c.Boosting)
}

func validateForest(block string, fc ForestConfig) error {
	if fc.NumTrees < 1 {
		return biocatErrors.NewValidationError(block+".num_trees", "must be >= 1", fc.NumTrees)
	}
	if fc.MaxDepth < 0 {
		return biocatErrors.NewValidationError(block+".max_depth", "must be >= 0", fc.MaxDepth)
	}
	if fc.MinSamplesLeaf < 1 {
		return biocatErrors.NewValidationError(block+".min_samples_leaf", "must be >= 1", fc.MinSamplesLeaf)
	}
	if fc.Colsample <= 0 || fc.Colsample > 1 {
		return biocatErrors.NewValidationError(block+".colsample", "must be in (0, 1]", fc.Colsample)
	}
	return nil
}

func validateTree(block string, tc TreeConfig) error {
	if tc.MaxDepth < 0 {
		return biocatErrors.NewValidationError(block+".max_depth", "must be >= 0", tc.MaxDepth)
	}
	if tc.MinSamplesLeaf < 1 {
		return biocatErrors.NewValidationError(block+".min_samples_leaf", "must be >= 1", tc.MinSamplesLeaf)
	}
	return nil
}

func validateBoost(block string, bc BoostConfig) error {
	if bc.Rounds < 1 {
		return biocatErrors.NewValidationError(block+".rounds", "must be >= 1", bc.Rounds)
	}
	if bc.LearningRate <= 0 || bc.LearningRate > 1 {
		return biocatErrors.NewValidationError(block+".learning_rate", "must be in (0, 1]", bc.LearningRate)
	}
	if bc.MaxDepth < 1 {
		return biocatErrors.NewValidationError(block+".max_depth", "must be >= 1", bc.MaxDepth)
	}
	if bc.MinSamplesLeaf < 1 {
		return biocatErrors.NewValidationError(block+".min_samples_leaf", "must be >= 1", bc.MinSamplesLeaf)
	}
	if bc.Subsample <= 0 || bc.Subsample > 1 {
		return biocatErrors.NewValidationError(block+".subsample", "must be in (0, 1]", bc.Subsample)
	}
	if bc.Colsample <= 0 || bc.Colsample > 1 {
		return biocatErrors.NewValidationError(block+".colsample", "must be in (0, 1]", bc.Colsample)
	}
	if bc.Lambda < 0 {
		return biocatErrors.NewValidationError(block+".lambda", "must be >= 0", bc.Lambda)
	}
	return nil
}
