// Package preprocessing provides feature scaling used by the dataset loader:
// StandardScaler for covariates and MinMaxScaler for normalizing the raw
// biological risk estimate into [0, 1] before clamping.
package preprocessing

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/agrisense/biocat/core/model"
	biocatErrors "github.com/agrisense/biocat/pkg/errors"
)

// StandardScaler standardizes features to zero mean and unit variance.
// Constant columns get scale 1 so transforming them yields zeros instead of
// NaN.
type StandardScaler struct {
	state *model.StateManager

	Mean  []float64
	Scale []float64
}

// NewStandardScaler creates an unfitted StandardScaler.
func NewStandardScaler() *StandardScaler {
	return &StandardScaler{state: model.NewStateManager()}
}

// Fit computes per-column mean and standard deviation of X.
func (s *StandardScaler) Fit(X mat.Matrix) error {
	n, p := X.Dims()
	if n == 0 || p == 0 {
		return biocatErrors.NewValueError("StandardScaler.Fit", "empty matrix")
	}

	s.Mean = make([]float64, p)
	s.Scale = make([]float64, p)
	for j := 0; j < p; j++ {
		var sum float64
		for i := 0; i < n; i++ {
			sum += X.At(i, j)
		}
		mean := sum / float64(n)

		var sq float64
		for i := 0; i < n; i++ {
			d := X.At(i, j) - mean
			sq += d * d
		}
		std := math.Sqrt(sq / float64(n))
		if std == 0 {
			std = 1
		}
		s.Mean[j] = mean
		s.Scale[j] = std
	}

	s.state.SetDimensions(n, p)
	s.state.SetFitted()
	return nil
}

// Transform standardizes X with the fitted statistics.
func (s *StandardScaler) Transform(X mat.Matrix) (*mat.Dense, error) {
	if !s.state.IsFitted() {
		return nil, biocatErrors.NewNotFittedError("StandardScaler", "Transform")
	}
	n, p := X.Dims()
	if p != len(s.Mean) {
		return nil, biocatErrors.NewDimensionError("StandardScaler.Transform", len(s.Mean), p, 1)
	}

	out := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			out.Set(i, j, (X.At(i, j)-s.Mean[j])/s.Scale[j])
		}
	}
	return out, nil
}

// FitTransform fits on X and returns the standardized matrix.
func (s *StandardScaler) FitTransform(X mat.Matrix) (*mat.Dense, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// MinMaxScaler rescales a single series linearly onto [0, 1]. A constant
// series maps to all zeros.
type MinMaxScaler struct {
	state *model.StateManager

	Min float64
	Max float64
}

// NewMinMaxScaler creates an unfitted MinMaxScaler.
func NewMinMaxScaler() *MinMaxScaler {
	return &MinMaxScaler{state: model.NewStateManager()}
}

// Fit records the minimum and maximum of the series.
func (s *MinMaxScaler) Fit(values []float64) error {
	if len(values) == 0 {
		return biocatErrors.NewValueError("MinMaxScaler.Fit", "empty series")
	}
	s.Min, s.Max = values[0], values[0]
	for _, v := range values[1:] {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	s.state.SetDimensions(len(values), 1)
	s.state.SetFitted()
	return nil
}

// Transform maps the series onto [0, 1] using the fitted range.
func (s *MinMaxScaler) Transform(values []float64) ([]float64, error) {
	if !s.state.IsFitted() {
		return nil, biocatErrors.NewNotFittedError("MinMaxScaler", "Transform")
	}
	out := make([]float64, len(values))
	span := s.Max - s.Min
	if span == 0 {
		return out, nil
	}
	for i, v := range values {
		out[i] = (v - s.Min) / span
	}
	return out, nil
}

// FitTransform fits on the series and returns the rescaled copy.
func (s *MinMaxScaler) FitTransform(values []float64) ([]float64, error) {
	if err := s.Fit(values); err != nil {
		return nil, err
	}
	return s.Transform(values)
}
