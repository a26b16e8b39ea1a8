// Package tree implements CART decision trees for regression and
// classification.
//
// Both estimators share the same recursive structure: exact best-split search
// over sorted feature columns, midpoint thresholds between distinct adjacent
// values, and impurity-decrease feature importances. The regressor minimizes
// within-node squared error; the classifier supports gini and entropy
// criteria. Trees are the base learners for the ensemble package and the
// single-tree baseline in the evaluation harness.
package tree

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/agrisense/biocat/core/model"
	biocatErrors "github.com/agrisense/biocat/pkg/errors"
)

// Node is one node of a fitted tree.
type Node struct {
	Leaf      bool
	Feature   int     // split feature (internal nodes)
	Threshold float64 // split threshold; values <= go left
	Left      *Node
	Right     *Node
	Value     float64 // leaf prediction (regression)
	Class     int     // majority class index (classification)
	Counts    []int   // class counts (classification)
	Samples   int
}

// Option configures a tree estimator.
type Option func(*options)

type options struct {
	maxDepth        int // 0 = unlimited
	minSamplesSplit int
	minSamplesLeaf  int
	criterion       string // "gini" or "entropy" (classifier only)
}

func defaultOptions() options {
	return options{
		maxDepth:        0,
		minSamplesSplit: 2,
		minSamplesLeaf:  1,
		criterion:       "gini",
	}
}

// WithMaxDepth limits tree depth; 0 means unlimited.
func WithMaxDepth(d int) Option {
	return func(o *options) { o.maxDepth = d }
}

// WithMinSamplesSplit sets the minimum node size eligible for splitting.
func WithMinSamplesSplit(n int) Option {
	return func(o *options) { o.minSamplesSplit = n }
}

// WithMinSamplesLeaf sets the minimum number of samples in a leaf.
func WithMinSamplesLeaf(n int) Option {
	return func(o *options) { o.minSamplesLeaf = n }
}

// WithCriterion sets the classification impurity criterion ("gini" or
// "entropy").
func WithCriterion(c string) Option {
	return func(o *options) { o.criterion = c }
}

// columns extracts X into column-major slices so split search can scan one
// feature at a time without re-reading the matrix.
func columns(X mat.Matrix) [][]float64 {
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

func targetColumn(op string, y mat.Matrix, nSamples int) ([]float64, error) {
	rows, colsN := y.Dims()
	if rows != nSamples {
		return nil, biocatErrors.NewDimensionError(op, nSamples, rows, 0)
	}
	if colsN != 1 {
		return nil, biocatErrors.NewDimensionError(op, 1, colsN, 1)
	}
	out := make([]float64, rows)
	for i := 0; i < rows; i++ {
		out[i] = y.At(i, 0)
	}
	return out, nil
}

// Regressor is a CART regression tree.
type Regressor struct {
	state       *model.StateManager
	opts        options
	root        *Node
	importances []float64
}

// NewRegressor creates a regression tree with the given options.
func NewRegressor(opts ...Option) *Regressor {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Regressor{state: model.NewStateManager(), opts: o}
}

// Fit trains the regression tree on X (n×p) and y (n×1).
func (t *Regressor) Fit(X, y mat.Matrix) (err error) {
	defer biocatErrors.Recover(&err, "tree.Regressor.Fit")

	n, p := X.Dims()
	if n == 0 {
		return biocatErrors.NewValueError("tree.Regressor.Fit", "empty training data")
	}
	targets, err := targetColumn("tree.Regressor.Fit", y, n)
	if err != nil {
		return err
	}

	cols := columns(X)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	t.importances = make([]float64, p)
	t.root = t.build(cols, targets, idx, 0)
	normalizeImportances(t.importances)

	t.state.SetDimensions(n, p)
	t.state.SetFitted()
	return nil
}

func (t *Regressor) build(cols [][]float64, y []float64, idx []int, depth int) *Node {
	n := len(idx)
	var sum, sumSq float64
	for _, i := range idx {
		sum += y[i]
		sumSq += y[i] * y[i]
	}
	mean := sum / float64(n)
	sse := sumSq - sum*sum/float64(n)

	node := &Node{Value: mean, Samples: n}

	if (t.opts.maxDepth > 0 && depth >= t.opts.maxDepth) ||
		n < t.opts.minSamplesSplit || sse <= 1e-12 {
		node.Leaf = true
		return node
	}

	feature, threshold, reduction := t.bestSplit(cols, y, idx, sse)
	if feature < 0 {
		node.Leaf = true
		return node
	}

	left, right := partition(cols[feature], idx, threshold)
	t.importances[feature] += reduction

	node.Feature = feature
	node.Threshold = threshold
	node.Left = t.build(cols, y, left, depth+1)
	node.Right = t.build(cols, y, right, depth+1)
	return node
}

// bestSplit scans every feature in sorted order with running sums, so each
// candidate threshold is evaluated in O(1).
func (t *Regressor) bestSplit(cols [][]float64, y []float64, idx []int, parentSSE float64) (int, float64, float64) {
	n := len(idx)
	bestFeature := -1
	bestThreshold := 0.0
	bestReduction := 0.0

	ord := make([]int, n)
	for j, col := range cols {
		copy(ord, idx)
		sort.Slice(ord, func(a, b int) bool { return col[ord[a]] < col[ord[b]] })

		var leftSum, leftSq float64
		totalSum, totalSq := 0.0, 0.0
		for _, i := range ord {
			totalSum += y[i]
			totalSq += y[i] * y[i]
		}

		for k := 0; k < n-1; k++ {
			v := y[ord[k]]
			leftSum += v
			leftSq += v * v

			if col[ord[k]] == col[ord[k+1]] {
				continue
			}
			leftN := k + 1
			rightN := n - leftN
			if leftN < t.opts.minSamplesLeaf || rightN < t.opts.minSamplesLeaf {
				continue
			}

			leftSSE := leftSq - leftSum*leftSum/float64(leftN)
			rightSum := totalSum - leftSum
			rightSSE := (totalSq - leftSq) - rightSum*rightSum/float64(rightN)

			reduction := parentSSE - (leftSSE + rightSSE)
			if reduction > bestReduction {
				bestReduction = reduction
				bestFeature = j
				bestThreshold = (col[ord[k]] + col[ord[k+1]]) / 2
			}
		}
	}

	return bestFeature, bestThreshold, bestReduction
}

// Predict returns an n×1 matrix of predictions for X.
func (t *Regressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !t.state.IsFitted() {
		return nil, biocatErrors.NewNotFittedError("tree.Regressor", "Predict")
	}
	n, _ := X.Dims()
	out := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		node := t.root
		for !node.Leaf {
			if X.At(i, node.Feature) <= node.Threshold {
				node = node.Left
			} else {
				node = node.Right
			}
		}
		out.Set(i, 0, node.Value)
	}
	return out, nil
}

// FeatureImportances returns normalized impurity-decrease importances.
func (t *Regressor) FeatureImportances() []float64 {
	out := make([]float64, len(t.importances))
	copy(out, t.importances)
	return out
}

// Classifier is a CART classification tree.
type Classifier struct {
	state       *model.StateManager
	opts        options
	root        *Node
	classes     []int
	importances []float64
}

// NewClassifier creates a classification tree with the given options.
func NewClassifier(opts ...Option) *Classifier {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Classifier{state: model.NewStateManager(), opts: o}
}

// Classes returns the sorted class labels seen at fit time.
func (t *Classifier) Classes() []int {
	out := make([]int, len(t.classes))
	copy(out, t.classes)
	return out
}

// Fit trains the classification tree on X (n×p) and integer labels y (n×1).
func (t *Classifier) Fit(X, y mat.Matrix) (err error) {
	defer biocatErrors.Recover(&err, "tree.Classifier.Fit")

	n, p := X.Dims()
	if n == 0 {
		return biocatErrors.NewValueError("tree.Classifier.Fit", "empty training data")
	}
	targets, err := targetColumn("tree.Classifier.Fit", y, n)
	if err != nil {
		return err
	}

	// Map labels to contiguous class indices.
	seen := make(map[int]bool)
	for _, v := range targets {
		seen[int(v)] = true
	}
	t.classes = make([]int, 0, len(seen))
	for c := range seen {
		t.classes = append(t.classes, c)
	}
	sort.Ints(t.classes)

	classIdx := make(map[int]int, len(t.classes))
	for i, c := range t.classes {
		classIdx[c] = i
	}
	yIdx := make([]int, n)
	for i, v := range targets {
		yIdx[i] = classIdx[int(v)]
	}

	cols := columns(X)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	t.importances = make([]float64, p)
	t.root = t.build(cols, yIdx, idx, 0)
	normalizeImportances(t.importances)

	t.state.SetDimensions(n, p)
	t.state.SetFitted()
	return nil
}

func (t *Classifier) build(cols [][]float64, y []int, idx []int, depth int) *Node {
	n := len(idx)
	counts := make([]int, len(t.classes))
	for _, i := range idx {
		counts[y[i]]++
	}

	majority := 0
	for c, cnt := range counts {
		if cnt > counts[majority] {
			majority = c
		}
	}

	imp := t.impurity(counts, n)
	node := &Node{Class: majority, Counts: counts, Samples: n}

	if (t.opts.maxDepth > 0 && depth >= t.opts.maxDepth) ||
		n < t.opts.minSamplesSplit || imp == 0 {
		node.Leaf = true
		return node
	}

	feature, threshold, decrease := t.bestSplit(cols, y, idx, imp)
	if feature < 0 {
		node.Leaf = true
		return node
	}

	left, right := partition(cols[feature], idx, threshold)
	t.importances[feature] += decrease * float64(n)

	node.Feature = feature
	node.Threshold = threshold
	node.Left = t.build(cols, y, left, depth+1)
	node.Right = t.build(cols, y, right, depth+1)
	return node
}

func (t *Classifier) bestSplit(cols [][]float64, y []int, idx []int, parentImp float64) (int, float64, float64) {
	n := len(idx)
	nClasses := len(t.classes)
	bestFeature := -1
	bestThreshold := 0.0
	bestDecrease := 0.0

	ord := make([]int, n)
	leftCounts := make([]int, nClasses)
	totalCounts := make([]int, nClasses)

	for j, col := range cols {
		copy(ord, idx)
		sort.Slice(ord, func(a, b int) bool { return col[ord[a]] < col[ord[b]] })

		for c := range leftCounts {
			leftCounts[c] = 0
			totalCounts[c] = 0
		}
		for _, i := range ord {
			totalCounts[y[i]]++
		}

		for k := 0; k < n-1; k++ {
			leftCounts[y[ord[k]]]++

			if col[ord[k]] == col[ord[k+1]] {
				continue
			}
			leftN := k + 1
			rightN := n - leftN
			if leftN < t.opts.minSamplesLeaf || rightN < t.opts.minSamplesLeaf {
				continue
			}

			leftImp := t.impurityLeft(leftCounts, leftN)
			rightImp := t.impurityRight(leftCounts, totalCounts, rightN)

			weighted := (float64(leftN)*leftImp + float64(rightN)*rightImp) / float64(n)
			decrease := parentImp - weighted
			if decrease > bestDecrease {
				bestDecrease = decrease
				bestFeature = j
				bestThreshold = (col[ord[k]] + col[ord[k+1]]) / 2
			}
		}
	}

	return bestFeature, bestThreshold, bestDecrease
}

func (t *Classifier) impurity(counts []int, total int) float64 {
	if total == 0 {
		return 0
	}
	switch t.opts.criterion {
	case "entropy":
		ent := 0.0
		for _, c := range counts {
			if c > 0 {
				p := float64(c) / float64(total)
				ent -= p * math.Log2(p)
			}
		}
		return ent
	default: // gini
		sumSq := 0.0
		for _, c := range counts {
			if c > 0 {
				p := float64(c) / float64(total)
				sumSq += p * p
			}
		}
		return 1 - sumSq
	}
}

func (t *Classifier) impurityLeft(leftCounts []int, leftN int) float64 {
	return t.impurity(leftCounts, leftN)
}

func (t *Classifier) impurityRight(leftCounts, totalCounts []int, rightN int) float64 {
	right := make([]int, len(totalCounts))
	for c := range totalCounts {
		right[c] = totalCounts[c] - leftCounts[c]
	}
	return t.impurity(right, rightN)
}

// Predict returns an n×1 matrix of predicted class labels for X.
func (t *Classifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !t.state.IsFitted() {
		return nil, biocatErrors.NewNotFittedError("tree.Classifier", "Predict")
	}
	n, _ := X.Dims()
	out := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		node := t.root
		for !node.Leaf {
			if X.At(i, node.Feature) <= node.Threshold {
				node = node.Left
			} else {
				node = node.Right
			}
		}
		out.Set(i, 0, float64(t.classes[node.Class]))
	}
	return out, nil
}

// FeatureImportances returns normalized impurity-decrease importances.
func (t *Classifier) FeatureImportances() []float64 {
	out := make([]float64, len(t.importances))
	copy(out, t.importances)
	return out
}

func partition(col []float64, idx []int, threshold float64) (left, right []int) {
	for _, i := range idx {
		if col[i] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return left, right
}

func normalizeImportances(imp []float64) {
	var sum float64
	for _, v := range imp {
		sum += v
	}
	if sum > 0 {
		for i := range imp {
			imp[i] /= sum
		}
	}
}
