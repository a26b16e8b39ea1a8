package experiment

import (
	"errors"

	"gonum.org/v1/gonum/mat"

	"github.com/agrisense/biocat/dataset"
	"github.com/agrisense/biocat/ensemble"
	"github.com/agrisense/biocat/metrics"
	biocatErrors "github.com/agrisense/biocat/pkg/errors"
	"github.com/agrisense/biocat/pkg/log"
	"github.com/agrisense/biocat/risk"
	"github.com/agrisense/biocat/tree"
)

// Model is anything the harness can fit and score without sample weights.
type Model interface {
	Fit(X, y mat.Matrix) error
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// WeightedModel additionally accepts per-sample training weights.
type WeightedModel interface {
	FitWeighted(X, y mat.Matrix, sampleWeight []float64) error
	Predict(X mat.Matrix) (mat.Matrix, error)
}

type namedModel struct {
	name  string
	model Model
}

// Harness runs the full model comparison for one dataset: four unweighted
// baselines plus one weighted booster per registered gain strategy, all
// scored on the same held-out split.
type Harness struct {
	cfg    *Config
	logger log.Logger
}

// NewHarness returns a harness for the given configuration.
func NewHarness(cfg *Config) *Harness {
	return &Harness{cfg: cfg, logger: log.GetLoggerWithName("harness")}
}

func (h *Harness) boostParams(bc BoostConfig, seed int64) ensemble.Params {
	return ensemble.Params{
		Rounds:         bc.Rounds,
		LearningRate:   bc.LearningRate,
		MaxDepth:       bc.MaxDepth,
		MinSamplesLeaf: bc.MinSamplesLeaf,
		Subsample:      bc.Subsample,
		Colsample:      bc.Colsample,
		Lambda:         bc.Lambda,
		Seed:           seed,
	}
}

func (h *Harness) baselines(seed int64) []namedModel {
	fc, tc := h.cfg.Forest, h.cfg.Tree
	treeOpts := []tree.Option{
		tree.WithMaxDepth(tc.MaxDepth),
		tree.WithMinSamplesLeaf(tc.MinSamplesLeaf),
	}
	if h.cfg.Task == TaskClassification {
		return []namedModel{
			{ModelRandomForest, ensemble.NewRandomForestClassifier().
				WithNumTrees(fc.NumTrees).WithMaxDepth(fc.MaxDepth).
				WithMinSamplesLeaf(fc.MinSamplesLeaf).WithColsample(fc.Colsample).
				WithSeed(seed)},
			{ModelBoostedForest, ensemble.NewGBTClassifier(h.boostParams(h.cfg.BoostedForest, seed))},
			{ModelDecisionTree, tree.NewClassifier(treeOpts...)},
			{ModelPlainBoosting, ensemble.NewGBTClassifier(h.boostParams(h.cfg.Boosting, seed))},
		}
	}
	return []namedModel{
		{ModelRandomForest, ensemble.NewRandomForestRegressor().
			WithNumTrees(fc.NumTrees).WithMaxDepth(fc.MaxDepth).
			WithMinSamplesLeaf(fc.MinSamplesLeaf).WithColsample(fc.Colsample).
			WithSeed(seed)},
		{ModelBoostedForest, ensemble.NewGBTRegressor(h.boostParams(h.cfg.BoostedForest, seed))},
		{ModelDecisionTree, tree.NewRegressor(treeOpts...)},
		{ModelPlainBoosting, ensemble.NewGBTRegressor(h.boostParams(h.cfg.Boosting, seed))},
	}
}

func (h *Harness) weightedBooster(seed int64) WeightedModel {
	if h.cfg.Task == TaskClassification {
		return ensemble.NewGBTClassifier(h.boostParams(h.cfg.Boosting, seed))
	}
	return ensemble.NewGBTRegressor(h.boostParams(h.cfg.Boosting, seed))
}

// Evaluate splits the table, fits every model, and appends one scored row
// per model under the given scenario label. Anchors and sample weights come
// from training risk only.
func (h *Harness) Evaluate(scenario string, tbl *dataset.Table, seed int64, out *ResultTable) error {
	train, test, err := TrainTestSplit(tbl, h.cfg.TestFraction, seed)
	if err != nil {
		return err
	}
	h.logger.Debug("split ready",
		"scenario", scenario, "train", train.NumRows(), "test", test.NumRows())

	if h.cfg.Task == TaskClassification && distinctValues(train.Y) < 2 {
		return biocatErrors.ErrDegenerateTarget
	}

	anchors, err := risk.ComputeAnchors(train.Risk)
	if err != nil {
		return err
	}
	registry, err := risk.BuildRegistry(anchors)
	if err != nil {
		return err
	}

	for _, nm := range h.baselines(seed) {
		if err := nm.model.Fit(train.X, train.Y); err != nil {
			return biocatErrors.NewModelError(nm.name, "fitting baseline", err)
		}
		ms, err := h.scoreOn(nm.model, test)
		if err != nil {
			return biocatErrors.NewModelError(nm.name, "scoring baseline", err)
		}
		out.Append(Result{Scenario: scenario, Model: nm.name, Metrics: ms})
	}

	for _, label := range registry.Labels() {
		fn, ok := registry.Get(label)
		if !ok {
			return biocatErrors.NewValueError("Harness.Evaluate", "unknown gain strategy "+label)
		}
		weights, err := risk.SampleWeights(fn, train.Risk)
		if err != nil {
			return err
		}
		booster := h.weightedBooster(seed)
		name := WeightedPrefix + label
		if err := booster.FitWeighted(train.X, train.Y, weights); err != nil {
			return biocatErrors.NewModelError(name, "fitting weighted booster", err)
		}
		ms, err := h.scoreOn(booster, test)
		if err != nil {
			return biocatErrors.NewModelError(name, "scoring weighted booster", err)
		}
		out.Append(Result{Scenario: scenario, Model: name, Metrics: ms})
	}
	return nil
}

type predictor interface {
	Predict(X mat.Matrix) (mat.Matrix, error)
}

func (h *Harness) scoreOn(m predictor, test *Split) (map[string]float64, error) {
	pred, err := m.Predict(test.X)
	if err != nil {
		return nil, err
	}
	yPred := toVec(pred)

	if h.cfg.Task == TaskClassification {
		acc, err := metrics.Accuracy(test.Y, yPred)
		if err != nil {
			return nil, err
		}
		kappa, err := metrics.CohenKappa(test.Y, yPred)
		if err != nil {
			return nil, err
		}
		return map[string]float64{MetricAccuracy: acc, MetricKappa: kappa}, nil
	}

	r2, err := metrics.R2Pearson(test.Y, yPred)
	if err != nil {
		var ve *biocatErrors.ValueError
		if !errors.As(err, &ve) {
			return nil, err
		}
		// Constant predictions or constant truth carry no correlation.
		h.logger.Warn("undefined correlation, reporting r2 = 0", "error", err)
		r2 = 0
	}
	rmse, err := metrics.RMSE(test.Y, yPred)
	if err != nil {
		return nil, err
	}
	return map[string]float64{MetricR2: r2, MetricRMSE: rmse}, nil
}

func toVec(m mat.Matrix) *mat.VecDense {
	n, _ := m.Dims()
	v := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		v.SetVec(i, m.At(i, 0))
	}
	return v
}

func distinctValues(y *mat.VecDense) int {
	seen := make(map[float64]bool)
	for i := 0; i < y.Len(); i++ {
		seen[y.AtVec(i)] = true
	}
	return len(seen)
}
