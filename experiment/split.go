package experiment

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/agrisense/biocat/dataset"
	biocatErrors "github.com/agrisense/biocat/pkg/errors"
)

// PCG stream bases for this package. Distinct bases on the second seed word
// keep the split permutation and the synthetic generator on streams disjoint
// from each other and from the ensemble seeding, even under one run seed.
const (
	splitStream uint64 = 3 << 32
	synthStream uint64 = 4 << 32
)

// Split is one side of a train/test partition.
type Split struct {
	X    *mat.Dense
	Y    *mat.VecDense
	Risk []float64
}

// NumRows returns the number of samples in the split.
func (s *Split) NumRows() int {
	r, _ := s.X.Dims()
	return r
}

// TrainTestSplit shuffles row indices with a PCG stream derived from seed
// and carves off a test fraction. Risk values travel with their rows, so
// anchors are always computed from training risk only.
func TrainTestSplit(tbl *dataset.Table, testFraction float64, seed int64) (train, test *Split, err error) {
	n := tbl.NumRows()
	if n < 4 {
		return nil, nil, biocatErrors.NewValueError("experiment.TrainTestSplit",
			"need at least 4 samples to split")
	}
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, biocatErrors.NewValueError("experiment.TrainTestSplit",
			"test fraction must be in (0, 1)")
	}

	nTest := int(math.Round(testFraction * float64(n)))
	if nTest < 1 {
		nTest = 1
	}
	if n-nTest < 2 {
		nTest = n - 2
	}

	r := rand.New(rand.NewPCG(uint64(seed), uint64(seed)+splitStream))
	perm := r.Perm(n)

	test = takeRows(tbl, perm[:nTest])
	train = takeRows(tbl, perm[nTest:])
	return train, test, nil
}

func takeRows(tbl *dataset.Table, idx []int) *Split {
	p := tbl.NumFeatures()
	X := mat.NewDense(len(idx), p, nil)
	y := mat.NewVecDense(len(idx), nil)
	risk := make([]float64, len(idx))
	for i, src := range idx {
		for j := 0; j < p; j++ {
			X.Set(i, j, tbl.X.At(src, j))
		}
		y.SetVec(i, tbl.Y.AtVec(src))
		risk[i] = tbl.Risk[src]
	}
	return &Split{X: X, Y: y, Risk: risk}
}
