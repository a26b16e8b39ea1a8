package metrics

import (
	"gonum.org/v1/gonum/mat"

	biocatErrors "github.com/agrisense/biocat/pkg/errors"
)

// Accuracy calculates the exact-match rate between true and predicted labels.
//
// Returns:
//   - float64: accuracy in [0, 1]
//   - error: nil if successful, otherwise an error describing the failure
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, biocatErrors.NewValueError("Accuracy", "empty vector")
	}
	if yPred.Len() != n {
		return 0, biocatErrors.NewDimensionError("Accuracy", n, yPred.Len(), 0)
	}

	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// CohenKappa calculates Cohen's kappa, agreement between true and predicted
// labels corrected for the agreement expected by chance:
//
//	kappa = (po - pe) / (1 - pe)
//
// where po is the observed agreement (accuracy) and pe the expected
// agreement from the marginal label distributions. Kappa is 1 for perfect
// agreement, 0 for chance-level agreement and can be negative for systematic
// disagreement. When pe == 1 (both sides constant and equal) the statistic is
// undefined and 0 is returned, matching the chance-only interpretation.
func CohenKappa(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, biocatErrors.NewValueError("CohenKappa", "empty vector")
	}
	if yPred.Len() != n {
		return 0, biocatErrors.NewDimensionError("CohenKappa", n, yPred.Len(), 0)
	}

	trueCounts := make(map[float64]int)
	predCounts := make(map[float64]int)
	agree := 0
	for i := 0; i < n; i++ {
		t := yTrue.AtVec(i)
		p := yPred.AtVec(i)
		trueCounts[t]++
		predCounts[p]++
		if t == p {
			agree++
		}
	}

	po := float64(agree) / float64(n)

	var pe float64
	total := float64(n)
	for label, tc := range trueCounts {
		pe += (float64(tc) / total) * (float64(predCounts[label]) / total)
	}

	if pe >= 1 {
		return 0, nil
	}
	return (po - pe) / (1 - pe), nil
}
