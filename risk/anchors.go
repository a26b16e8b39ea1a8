// Package risk derives per-sample training weights from a biological risk
// index.
//
// The pipeline is: clamp the raw index into [0.01, 1], compute distributional
// anchors from the training split only, build the fixed six-strategy registry
// of gain curves parametrized by those anchors, and apply a chosen curve
// element-wise to the training risk vector.
package risk

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	biocatErrors "github.com/agrisense/biocat/pkg/errors"
)

// Anchors are the distributional statistics of a training-split risk sample
// used to auto-parametrize gain curves. They must be computed from training
// data only; feeding test risk values in here leaks the held-out split.
type Anchors struct {
	Median  float64
	HalfIQR float64 // (Q3 - Q1) / 2
	Q40     float64
	Q60     float64
	Q80     float64
}

// ComputeAnchors derives Anchors from a risk-index sample using
// linear-interpolated quantiles. The sample must contain at least two
// distinct values; a constant sample has no usable spread and the caller must
// handle that case explicitly.
func ComputeAnchors(risk []float64) (Anchors, error) {
	if len(risk) < 2 {
		return Anchors{}, biocatErrors.NewValueError("ComputeAnchors",
			"risk sample must contain at least 2 values")
	}

	sorted := make([]float64, len(risk))
	copy(sorted, risk)
	sort.Float64s(sorted)

	if sorted[0] == sorted[len(sorted)-1] {
		return Anchors{}, biocatErrors.NewValueError("ComputeAnchors",
			"risk sample must contain at least 2 distinct values")
	}

	q := func(p float64) float64 {
		return stat.Quantile(p, stat.LinInterp, sorted, nil)
	}

	q1 := q(0.25)
	q3 := q(0.75)

	return Anchors{
		Median:  q(0.5),
		HalfIQR: (q3 - q1) / 2,
		Q40:     q(0.4),
		Q60:     q(0.6),
		Q80:     q(0.8),
	}, nil
}
