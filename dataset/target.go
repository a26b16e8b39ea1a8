package dataset

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/agrisense/biocat/pkg/log"
)

// Tertile class labels for the pressure classification target.
const (
	PressureLow    = 0
	PressureMedium = 1
	PressureHigh   = 2
)

// TertileLabels buckets a continuous target into low/medium/high classes at
// its 1/3 and 2/3 quantiles. When the quantile breaks are not distinct (heavy
// ties in the counts) it falls back to equal-width binning over [min, max]
// and reports the fallback, logging a warning rather than failing the run.
func TertileLabels(y []float64) (labels []float64, fellBack bool) {
	labels = make([]float64, len(y))
	if len(y) == 0 {
		return labels, false
	}

	sorted := make([]float64, len(y))
	copy(sorted, y)
	sort.Float64s(sorted)

	q1 := stat.Quantile(1.0/3.0, stat.LinInterp, sorted, nil)
	q2 := stat.Quantile(2.0/3.0, stat.LinInterp, sorted, nil)

	if q1 < q2 {
		for i, v := range y {
			switch {
			case v <= q1:
				labels[i] = PressureLow
			case v <= q2:
				labels[i] = PressureMedium
			default:
				labels[i] = PressureHigh
			}
		}
		return labels, false
	}

	log.GetLoggerWithName("dataset").Warn(
		"tertile breaks not distinct, falling back to equal-width bins",
		"q1", q1, "q2", q2)

	lo := sorted[0]
	hi := sorted[len(sorted)-1]
	if hi == lo {
		// Constant target: every observation lands in the low class and the
		// classifier will reject the split as degenerate.
		return labels, true
	}

	width := (hi - lo) / 3
	b1 := lo + width
	b2 := lo + 2*width
	for i, v := range y {
		switch {
		case v <= b1:
			labels[i] = PressureLow
		case v <= b2:
			labels[i] = PressureMedium
		default:
			labels[i] = PressureHigh
		}
	}
	return labels, true
}
