package risk

import (
	"github.com/agrisense/biocat/gain"
	biocatErrors "github.com/agrisense/biocat/pkg/errors"
)

// Index bounds for the normalized risk score.
const (
	IndexMin = 0.01
	IndexMax = 1.0
)

// ClampIndex maps raw normalized risk estimates into [IndexMin, IndexMax],
// returning a new slice. The floor keeps exponential and step strategies from
// zeroing out low-risk samples entirely.
func ClampIndex(raw []float64) []float64 {
	clamped := make([]float64, len(raw))
	for i, v := range raw {
		switch {
		case v < IndexMin:
			clamped[i] = IndexMin
		case v > IndexMax:
			clamped[i] = IndexMax
		default:
			clamped[i] = v
		}
	}
	return clamped
}

// SampleWeights applies f element-wise over the training risk vector,
// producing one weight per training observation in the same order. No
// normalization is applied; the boosting collaborator consumes raw weights.
func SampleWeights(f gain.Function, riskTrain []float64) ([]float64, error) {
	if len(riskTrain) == 0 {
		return nil, biocatErrors.NewValueError("SampleWeights", "empty risk vector")
	}
	return gain.EvaluateAll(f, riskTrain), nil
}
