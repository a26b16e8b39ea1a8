// Package ensemble implements the tree-ensemble collaborators evaluated by
// the experiment harness: bootstrap random forests and gradient-boosted
// trees. The booster is the only estimator that consumes per-sample weights;
// forests serve as unweighted baselines.
//
// All randomness is drawn from PCG sources seeded explicitly per tree or per
// boosting round, so refitting with the same seed reproduces the model
// bit-for-bit regardless of what else has run in the process.
package ensemble

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/agrisense/biocat/core/model"
	biocatErrors "github.com/agrisense/biocat/pkg/errors"
	"github.com/agrisense/biocat/tree"
)

// columnView presents a column subset of a matrix without copying.
type columnView struct {
	m    mat.Matrix
	cols []int
}

func (v columnView) Dims() (int, int) {
	r, _ := v.m.Dims()
	return r, len(v.cols)
}

func (v columnView) At(i, j int) float64 { return v.m.At(i, v.cols[j]) }

func (v columnView) T() mat.Matrix { return mat.Transpose{Matrix: v} }

// sampleColumns picks a deterministic subset of max(1, round(fraction*p))
// feature indices, returned sorted.
func sampleColumns(r *rand.Rand, p int, fraction float64) []int {
	k := int(math.Round(fraction * float64(p)))
	if k < 1 {
		k = 1
	}
	if k > p {
		k = p
	}
	perm := r.Perm(p)
	cols := append([]int(nil), perm[:k]...)
	sort.Ints(cols)
	return cols
}

// bootstrapMatrix draws n rows with replacement from X restricted to cols,
// returning the sampled design matrix and the row indices drawn.
func bootstrapMatrix(r *rand.Rand, X mat.Matrix, cols []int) (*mat.Dense, []int) {
	n, _ := X.Dims()
	rows := make([]int, n)
	sub := mat.NewDense(n, len(cols), nil)
	for i := 0; i < n; i++ {
		src := r.IntN(n)
		rows[i] = src
		for j, c := range cols {
			sub.Set(i, j, X.At(src, c))
		}
	}
	return sub, rows
}

// RandomForestRegressor averages bagged CART regression trees.
type RandomForestRegressor struct {
	state *model.StateManager

	NumTrees       int
	MaxDepth       int     // 0 = unlimited
	MinSamplesLeaf int
	Colsample      float64 // fraction of features per tree
	Seed           int64

	trees    []*tree.Regressor
	treeCols [][]int
}

// NewRandomForestRegressor creates a forest with default hyperparameters.
func NewRandomForestRegressor() *RandomForestRegressor {
	return &RandomForestRegressor{
		state:          model.NewStateManager(),
		NumTrees:       100,
		MaxDepth:       0,
		MinSamplesLeaf: 1,
		Colsample:      1.0 / 3.0,
		Seed:           42,
	}
}

// WithNumTrees sets the number of trees.
func (rf *RandomForestRegressor) WithNumTrees(n int) *RandomForestRegressor {
	rf.NumTrees = n
	return rf
}

// WithMaxDepth sets the maximum tree depth (0 = unlimited).
func (rf *RandomForestRegressor) WithMaxDepth(d int) *RandomForestRegressor {
	rf.MaxDepth = d
	return rf
}

// WithMinSamplesLeaf sets the minimum leaf size.
func (rf *RandomForestRegressor) WithMinSamplesLeaf(n int) *RandomForestRegressor {
	rf.MinSamplesLeaf = n
	return rf
}

// WithColsample sets the per-tree feature fraction.
func (rf *RandomForestRegressor) WithColsample(f float64) *RandomForestRegressor {
	rf.Colsample = f
	return rf
}

// WithSeed sets the random seed.
func (rf *RandomForestRegressor) WithSeed(seed int64) *RandomForestRegressor {
	rf.Seed = seed
	return rf
}

// Fit trains the forest on X (n×p) and y (n×1).
func (rf *RandomForestRegressor) Fit(X, y mat.Matrix) (err error) {
	defer biocatErrors.Recover(&err, "ensemble.RandomForestRegressor.Fit")

	n, p := X.Dims()
	if n == 0 {
		return biocatErrors.NewValueError("RandomForestRegressor.Fit", "empty training data")
	}
	yRows, yCols := y.Dims()
	if yRows != n {
		return biocatErrors.NewDimensionError("RandomForestRegressor.Fit", n, yRows, 0)
	}
	if yCols != 1 {
		return biocatErrors.NewDimensionError("RandomForestRegressor.Fit", 1, yCols, 1)
	}

	rf.trees = make([]*tree.Regressor, 0, rf.NumTrees)
	rf.treeCols = make([][]int, 0, rf.NumTrees)

	for k := 0; k < rf.NumTrees; k++ {
		r := rand.New(rand.NewPCG(uint64(rf.Seed), uint64(rf.Seed)+forestStream+uint64(k)))
		cols := sampleColumns(r, p, rf.Colsample)
		subX, rows := bootstrapMatrix(r, X, cols)

		subY := mat.NewDense(n, 1, nil)
		for i, src := range rows {
			subY.Set(i, 0, y.At(src, 0))
		}

		t := tree.NewRegressor(
			tree.WithMaxDepth(rf.MaxDepth),
			tree.WithMinSamplesLeaf(rf.MinSamplesLeaf),
		)
		if err := t.Fit(subX, subY); err != nil {
			return err
		}
		rf.trees = append(rf.trees, t)
		rf.treeCols = append(rf.treeCols, cols)
	}

	rf.state.SetDimensions(n, p)
	rf.state.SetFitted()
	return nil
}

// Predict returns the per-sample mean prediction across trees.
func (rf *RandomForestRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !rf.state.IsFitted() {
		return nil, biocatErrors.NewNotFittedError("ensemble.RandomForestRegressor", "Predict")
	}
	n, _ := X.Dims()
	sums := make([]float64, n)
	for k, t := range rf.trees {
		pred, err := t.Predict(columnView{m: X, cols: rf.treeCols[k]})
		if err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			sums[i] += pred.At(i, 0)
		}
	}
	out := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		out.Set(i, 0, sums[i]/float64(len(rf.trees)))
	}
	return out, nil
}

// RandomForestClassifier majority-votes bagged CART classification trees.
type RandomForestClassifier struct {
	state *model.StateManager

	NumTrees       int
	MaxDepth       int
	MinSamplesLeaf int
	Colsample      float64
	Seed           int64

	trees    []*tree.Classifier
	treeCols [][]int
}

// NewRandomForestClassifier creates a forest with default hyperparameters.
func NewRandomForestClassifier() *RandomForestClassifier {
	return &RandomForestClassifier{
		state:          model.NewStateManager(),
		NumTrees:       100,
		MaxDepth:       0,
		MinSamplesLeaf: 1,
		Colsample:      1.0 / 3.0,
		Seed:           42,
	}
}

// WithNumTrees sets the number of trees.
func (rf *RandomForestClassifier) WithNumTrees(n int) *RandomForestClassifier {
	rf.NumTrees = n
	return rf
}

// WithMaxDepth sets the maximum tree depth (0 = unlimited).
func (rf *RandomForestClassifier) WithMaxDepth(d int) *RandomForestClassifier {
	rf.MaxDepth = d
	return rf
}

// WithMinSamplesLeaf sets the minimum leaf size.
func (rf *RandomForestClassifier) WithMinSamplesLeaf(n int) *RandomForestClassifier {
	rf.MinSamplesLeaf = n
	return rf
}

// WithColsample sets the per-tree feature fraction.
func (rf *RandomForestClassifier) WithColsample(f float64) *RandomForestClassifier {
	rf.Colsample = f
	return rf
}

// WithSeed sets the random seed.
func (rf *RandomForestClassifier) WithSeed(seed int64) *RandomForestClassifier {
	rf.Seed = seed
	return rf
}

// Fit trains the forest on X (n×p) and integer labels y (n×1).
func (rf *RandomForestClassifier) Fit(X, y mat.Matrix) (err error) {
	defer biocatErrors.Recover(&err, "ensemble.RandomForestClassifier.Fit")

	n, p := X.Dims()
	if n == 0 {
		return biocatErrors.NewValueError("RandomForestClassifier.Fit", "empty training data")
	}
	yRows, yCols := y.Dims()
	if yRows != n {
		return biocatErrors.NewDimensionError("RandomForestClassifier.Fit", n, yRows, 0)
	}
	if yCols != 1 {
		return biocatErrors.NewDimensionError("RandomForestClassifier.Fit", 1, yCols, 1)
	}

	rf.trees = make([]*tree.Classifier, 0, rf.NumTrees)
	rf.treeCols = make([][]int, 0, rf.NumTrees)

	for k := 0; k < rf.NumTrees; k++ {
		r := rand.New(rand.NewPCG(uint64(rf.Seed), uint64(rf.Seed)+forestStream+uint64(k)))
		cols := sampleColumns(r, p, rf.Colsample)
		subX, rows := bootstrapMatrix(r, X, cols)

		subY := mat.NewDense(n, 1, nil)
		for i, src := range rows {
			subY.Set(i, 0, y.At(src, 0))
		}

		t := tree.NewClassifier(
			tree.WithMaxDepth(rf.MaxDepth),
			tree.WithMinSamplesLeaf(rf.MinSamplesLeaf),
		)
		if err := t.Fit(subX, subY); err != nil {
			return err
		}
		rf.trees = append(rf.trees, t)
		rf.treeCols = append(rf.treeCols, cols)
	}

	rf.state.SetDimensions(n, p)
	rf.state.SetFitted()
	return nil
}

// Predict returns the majority-vote label per sample. Vote ties go to the
// smaller label for determinism.
func (rf *RandomForestClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !rf.state.IsFitted() {
		return nil, biocatErrors.NewNotFittedError("ensemble.RandomForestClassifier", "Predict")
	}
	n, _ := X.Dims()
	votes := make([]map[int]int, n)
	for i := range votes {
		votes[i] = make(map[int]int)
	}
	for k, t := range rf.trees {
		pred, err := t.Predict(columnView{m: X, cols: rf.treeCols[k]})
		if err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			votes[i][int(pred.At(i, 0))]++
		}
	}

	out := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		bestLabel, bestVotes := 0, -1
		labels := make([]int, 0, len(votes[i]))
		for label := range votes[i] {
			labels = append(labels, label)
		}
		sort.Ints(labels)
		for _, label := range labels {
			if votes[i][label] > bestVotes {
				bestLabel, bestVotes = label, votes[i][label]
			}
		}
		out.Set(i, 0, float64(bestLabel))
	}
	return out, nil
}
