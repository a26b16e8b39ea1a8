package ensemble

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/agrisense/biocat/core/model"
	biocatErrors "github.com/agrisense/biocat/pkg/errors"
)

// Params are the gradient-boosting hyperparameters. The harness fits the
// weighted booster and the plain baseline from identical Params so that the
// sample weights are the only difference between them.
type Params struct {
	Rounds         int     // boosting rounds (trees per class for classification)
	LearningRate   float64 // shrinkage applied to every leaf value
	MaxDepth       int     // depth of each gradient tree
	MinSamplesLeaf int     // minimum samples per leaf
	Subsample      float64 // row fraction drawn per round (1 = no subsampling)
	Colsample      float64 // feature fraction drawn per round
	Lambda         float64 // L2 regularization on leaf values
	Seed           int64
}

// withDefaults fills zero values with the documented defaults.
func (p Params) withDefaults() Params {
	if p.Rounds == 0 {
		p.Rounds = 100
	}
	if p.LearningRate == 0 {
		p.LearningRate = 0.1
	}
	if p.MaxDepth == 0 {
		p.MaxDepth = 3
	}
	if p.MinSamplesLeaf == 0 {
		p.MinSamplesLeaf = 5
	}
	if p.Subsample == 0 {
		p.Subsample = 1.0
	}
	if p.Colsample == 0 {
		p.Colsample = 1.0
	}
	if p.Lambda == 0 {
		p.Lambda = 1.0
	}
	return p
}

const minSplitGain = 1e-7

// PCG stream bases. Each randomized component adds its own base to the
// second seed word, so boosting rounds and forest trees draw from disjoint
// streams even when they share a base seed with other collaborators.
const (
	boostStream  uint64 = 1 << 32
	forestStream uint64 = 2 << 32
)

// gradNode is one node of a gradient tree fitted to (gradient, hessian)
// statistics. Leaf values are -G/(H+lambda).
type gradNode struct {
	leaf      bool
	feature   int
	threshold float64
	left      *gradNode
	right     *gradNode
	value     float64
}

func leafValue(g, h, lambda float64) float64 {
	return -g / (h + lambda)
}

// splitGain is the standard second-order gain of a candidate split.
func splitGain(gl, hl, gr, hr, lambda float64) float64 {
	g := gl + gr
	h := hl + hr
	return 0.5 * (gl*gl/(hl+lambda) + gr*gr/(hr+lambda) - g*g/(h+lambda))
}

// buildGradTree grows a depth-limited tree over the row subset idx using only
// the features in colIdx. grad and hess are indexed by original row.
func buildGradTree(cols [][]float64, grad, hess []float64, idx, colIdx []int, depth int, p Params) *gradNode {
	var gSum, hSum float64
	for _, i := range idx {
		gSum += grad[i]
		hSum += hess[i]
	}

	node := &gradNode{value: leafValue(gSum, hSum, p.Lambda)}
	if depth >= p.MaxDepth || len(idx) < 2*p.MinSamplesLeaf {
		node.leaf = true
		return node
	}

	bestGain := minSplitGain
	bestFeature := -1
	bestThreshold := 0.0

	ord := make([]int, len(idx))
	for _, j := range colIdx {
		col := cols[j]
		copy(ord, idx)
		sort.Slice(ord, func(a, b int) bool { return col[ord[a]] < col[ord[b]] })

		var gl, hl float64
		for k := 0; k < len(ord)-1; k++ {
			gl += grad[ord[k]]
			hl += hess[ord[k]]

			if col[ord[k]] == col[ord[k+1]] {
				continue
			}
			leftN := k + 1
			rightN := len(ord) - leftN
			if leftN < p.MinSamplesLeaf || rightN < p.MinSamplesLeaf {
				continue
			}

			gain := splitGain(gl, hl, gSum-gl, hSum-hl, p.Lambda)
			if gain > bestGain {
				bestGain = gain
				bestFeature = j
				bestThreshold = (col[ord[k]] + col[ord[k+1]]) / 2
			}
		}
	}

	if bestFeature < 0 {
		node.leaf = true
		return node
	}

	var left, right []int
	for _, i := range idx {
		if cols[bestFeature][i] <= bestThreshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	node.feature = bestFeature
	node.threshold = bestThreshold
	node.left = buildGradTree(cols, grad, hess, left, colIdx, depth+1, p)
	node.right = buildGradTree(cols, grad, hess, right, colIdx, depth+1, p)
	return node
}

func (n *gradNode) predictRow(X mat.Matrix, i int) float64 {
	node := n
	for !node.leaf {
		if X.At(i, node.feature) <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.value
}

// matColumns extracts X into column-major slices.
func matColumns(X mat.Matrix) [][]float64 {
	n, p := X.Dims()
	cols := make([][]float64, p)
	for j := 0; j < p; j++ {
		col := make([]float64, n)
		for i := 0; i < n; i++ {
			col[i] = X.At(i, j)
		}
		cols[j] = col
	}
	return cols
}

// subsampleRows draws a deterministic row subset without replacement; a
// fraction >= 1 returns all rows.
func subsampleRows(r *rand.Rand, n int, fraction float64) []int {
	if fraction >= 1 {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	k := int(math.Round(fraction * float64(n)))
	if k < 1 {
		k = 1
	}
	perm := r.Perm(n)
	rows := append([]int(nil), perm[:k]...)
	sort.Ints(rows)
	return rows
}

func validateWeights(op string, weights []float64, n int) error {
	if weights == nil {
		return nil
	}
	if len(weights) != n {
		return biocatErrors.NewDimensionError(op, n, len(weights), 0)
	}
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return biocatErrors.NewValidationError("sample weight",
				fmt.Sprintf("must be finite and non-negative at index %d", i), w)
		}
	}
	return nil
}

// GBTRegressor is a gradient-boosted regression tree ensemble under squared
// loss. Per-sample weights scale the gradients and hessians of every round,
// the same mechanism LightGBM-style trainers use, so leaf values become
// weighted averages of the residuals they cover.
type GBTRegressor struct {
	state  *model.StateManager
	params Params

	base  float64
	trees []*gradNode
}

// NewGBTRegressor creates a booster with the given hyperparameters; zero
// fields take documented defaults.
func NewGBTRegressor(p Params) *GBTRegressor {
	return &GBTRegressor{state: model.NewStateManager(), params: p.withDefaults()}
}

// Params returns the effective hyperparameters.
func (gb *GBTRegressor) Params() Params { return gb.params }

// Fit trains without sample weights.
func (gb *GBTRegressor) Fit(X, y mat.Matrix) error {
	return gb.FitWeighted(X, y, nil)
}

// FitWeighted trains with optional per-sample weights (nil means uniform).
func (gb *GBTRegressor) FitWeighted(X, y mat.Matrix, sampleWeight []float64) (err error) {
	defer biocatErrors.Recover(&err, "ensemble.GBTRegressor.FitWeighted")

	n, p := X.Dims()
	if n == 0 {
		return biocatErrors.NewValueError("GBTRegressor.FitWeighted", "empty training data")
	}
	yRows, yCols := y.Dims()
	if yRows != n {
		return biocatErrors.NewDimensionError("GBTRegressor.FitWeighted", n, yRows, 0)
	}
	if yCols != 1 {
		return biocatErrors.NewDimensionError("GBTRegressor.FitWeighted", 1, yCols, 1)
	}
	if err := validateWeights("GBTRegressor.FitWeighted", sampleWeight, n); err != nil {
		return err
	}

	w := sampleWeight
	if w == nil {
		w = make([]float64, n)
		for i := range w {
			w[i] = 1
		}
	}

	targets := make([]float64, n)
	var wSum, wySum float64
	for i := 0; i < n; i++ {
		targets[i] = y.At(i, 0)
		wSum += w[i]
		wySum += w[i] * targets[i]
	}
	if wSum <= 0 {
		return biocatErrors.NewValueError("GBTRegressor.FitWeighted", "sample weights sum to zero")
	}

	cols := matColumns(X)
	gb.base = wySum / wSum
	gb.trees = make([]*gradNode, 0, gb.params.Rounds)

	score := make([]float64, n)
	for i := range score {
		score[i] = gb.base
	}

	grad := make([]float64, n)
	hess := make([]float64, n)
	for round := 0; round < gb.params.Rounds; round++ {
		r := rand.New(rand.NewPCG(uint64(gb.params.Seed), uint64(gb.params.Seed)+boostStream+uint64(round)))
		rows := subsampleRows(r, n, gb.params.Subsample)
		colIdx := sampleColumns(r, p, gb.params.Colsample)

		for i := 0; i < n; i++ {
			grad[i] = w[i] * (score[i] - targets[i])
			hess[i] = w[i]
		}

		t := buildGradTree(cols, grad, hess, rows, colIdx, 0, gb.params)
		gb.trees = append(gb.trees, t)

		for i := 0; i < n; i++ {
			score[i] += gb.params.LearningRate * t.predictRow(X, i)
		}
	}

	gb.state.SetDimensions(n, p)
	gb.state.SetFitted()
	return nil
}

// Predict returns an n×1 matrix of predictions for X.
func (gb *GBTRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !gb.state.IsFitted() {
		return nil, biocatErrors.NewNotFittedError("ensemble.GBTRegressor", "Predict")
	}
	n, _ := X.Dims()
	out := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		score := gb.base
		for _, t := range gb.trees {
			score += gb.params.LearningRate * t.predictRow(X, i)
		}
		out.Set(i, 0, score)
	}
	return out, nil
}

// GBTClassifier is a gradient-boosted classifier using one-vs-rest logistic
// boosting: one score chain per class, prediction by argmax.
type GBTClassifier struct {
	state  *model.StateManager
	params Params

	classes []int
	base    []float64
	trees   [][]*gradNode // [class][round]
}

// NewGBTClassifier creates a booster with the given hyperparameters; zero
// fields take documented defaults.
func NewGBTClassifier(p Params) *GBTClassifier {
	return &GBTClassifier{state: model.NewStateManager(), params: p.withDefaults()}
}

// Params returns the effective hyperparameters.
func (gb *GBTClassifier) Params() Params { return gb.params }

// Classes returns the sorted class labels seen at fit time.
func (gb *GBTClassifier) Classes() []int {
	out := make([]int, len(gb.classes))
	copy(out, gb.classes)
	return out
}

// Fit trains without sample weights.
func (gb *GBTClassifier) Fit(X, y mat.Matrix) error {
	return gb.FitWeighted(X, y, nil)
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	ez := math.Exp(z)
	return ez / (1 + ez)
}

// FitWeighted trains with optional per-sample weights (nil means uniform).
// Returns ErrDegenerateTarget when the labels contain fewer than two distinct
// classes; batch callers skip such splits instead of aborting.
func (gb *GBTClassifier) FitWeighted(X, y mat.Matrix, sampleWeight []float64) (err error) {
	defer biocatErrors.Recover(&err, "ensemble.GBTClassifier.FitWeighted")

	n, p := X.Dims()
	if n == 0 {
		return biocatErrors.NewValueError("GBTClassifier.FitWeighted", "empty training data")
	}
	yRows, yCols := y.Dims()
	if yRows != n {
		return biocatErrors.NewDimensionError("GBTClassifier.FitWeighted", n, yRows, 0)
	}
	if yCols != 1 {
		return biocatErrors.NewDimensionError("GBTClassifier.FitWeighted", 1, yCols, 1)
	}
	if err := validateWeights("GBTClassifier.FitWeighted", sampleWeight, n); err != nil {
		return err
	}

	labels := make([]int, n)
	seen := make(map[int]bool)
	for i := 0; i < n; i++ {
		labels[i] = int(y.At(i, 0))
		seen[labels[i]] = true
	}
	if len(seen) < 2 {
		return fmt.Errorf("GBTClassifier.FitWeighted: %w", biocatErrors.ErrDegenerateTarget)
	}
	gb.classes = make([]int, 0, len(seen))
	for c := range seen {
		gb.classes = append(gb.classes, c)
	}
	sort.Ints(gb.classes)

	w := sampleWeight
	if w == nil {
		w = make([]float64, n)
		for i := range w {
			w[i] = 1
		}
	}

	cols := matColumns(X)
	nClasses := len(gb.classes)
	gb.base = make([]float64, nClasses)
	gb.trees = make([][]*gradNode, nClasses)

	scores := make([][]float64, nClasses)
	binary := make([][]float64, nClasses)
	var wSum float64
	for i := 0; i < n; i++ {
		wSum += w[i]
	}

	for k, class := range gb.classes {
		binary[k] = make([]float64, n)
		var posW float64
		for i := 0; i < n; i++ {
			if labels[i] == class {
				binary[k][i] = 1
				posW += w[i]
			}
		}
		prior := posW / wSum
		if prior < 1e-3 {
			prior = 1e-3
		}
		if prior > 1-1e-3 {
			prior = 1 - 1e-3
		}
		gb.base[k] = math.Log(prior / (1 - prior))

		scores[k] = make([]float64, n)
		for i := range scores[k] {
			scores[k][i] = gb.base[k]
		}
		gb.trees[k] = make([]*gradNode, 0, gb.params.Rounds)
	}

	grad := make([]float64, n)
	hess := make([]float64, n)
	for round := 0; round < gb.params.Rounds; round++ {
		for k := range gb.classes {
			offset := uint64(round)*uint64(nClasses) + uint64(k)
			r := rand.New(rand.NewPCG(uint64(gb.params.Seed), uint64(gb.params.Seed)+boostStream+offset))
			rows := subsampleRows(r, n, gb.params.Subsample)
			colIdx := sampleColumns(r, p, gb.params.Colsample)

			for i := 0; i < n; i++ {
				prob := sigmoid(scores[k][i])
				grad[i] = w[i] * (prob - binary[k][i])
				h := w[i] * prob * (1 - prob)
				if h < 1e-16 {
					h = 1e-16
				}
				hess[i] = h
			}

			t := buildGradTree(cols, grad, hess, rows, colIdx, 0, gb.params)
			gb.trees[k] = append(gb.trees[k], t)

			for i := 0; i < n; i++ {
				scores[k][i] += gb.params.LearningRate * t.predictRow(X, i)
			}
		}
	}

	gb.state.SetDimensions(n, p)
	gb.state.SetFitted()
	return nil
}

func (gb *GBTClassifier) rawScores(X mat.Matrix, i int) []float64 {
	scores := make([]float64, len(gb.classes))
	for k := range gb.classes {
		s := gb.base[k]
		for _, t := range gb.trees[k] {
			s += gb.params.LearningRate * t.predictRow(X, i)
		}
		scores[k] = s
	}
	return scores
}

// Predict returns the argmax class label per sample.
func (gb *GBTClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !gb.state.IsFitted() {
		return nil, biocatErrors.NewNotFittedError("ensemble.GBTClassifier", "Predict")
	}
	n, _ := X.Dims()
	out := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		scores := gb.rawScores(X, i)
		best := 0
		for k := 1; k < len(scores); k++ {
			if scores[k] > scores[best] {
				best = k
			}
		}
		out.Set(i, 0, float64(gb.classes[best]))
	}
	return out, nil
}

// PredictProba returns per-class probabilities (normalized one-vs-rest
// sigmoids), one row per sample in class order.
func (gb *GBTClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !gb.state.IsFitted() {
		return nil, biocatErrors.NewNotFittedError("ensemble.GBTClassifier", "PredictProba")
	}
	n, _ := X.Dims()
	out := mat.NewDense(n, len(gb.classes), nil)
	for i := 0; i < n; i++ {
		scores := gb.rawScores(X, i)
		var total float64
		for k, s := range scores {
			scores[k] = sigmoid(s)
			total += scores[k]
		}
		for k := range scores {
			out.Set(i, k, scores[k]/total)
		}
	}
	return out, nil
}
