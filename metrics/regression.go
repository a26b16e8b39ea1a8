// Package metrics provides the evaluation metrics used by the model
// comparison harness.
//
// Regression models are scored with RMSE and R² (the squared Pearson
// correlation between predictions and truth); classification models with
// accuracy and Cohen's kappa. All functions operate on *mat.VecDense inputs,
// validate dimensions up front and return typed errors from pkg/errors.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	biocatErrors "github.com/agrisense/biocat/pkg/errors"
)

// MSE calculates the Mean Squared Error between true and predicted values.
//
// Returns:
//   - float64: MSE value (non-negative)
//   - error: nil if successful, otherwise an error describing the failure
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, biocatErrors.NewValueError("MSE", "empty vector")
	}
	if yPred.Len() != n {
		return 0, biocatErrors.NewDimensionError("MSE", n, yPred.Len(), 0)
	}

	var sum float64
	for i := 0; i < n; i++ {
		diff := yTrue.AtVec(i) - yPred.AtVec(i)
		sum += diff * diff
	}
	return sum / float64(n), nil
}

// RMSE calculates the Root Mean Squared Error, the square root of MSE,
// reported in the same units as the target variable.
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// R2Pearson calculates R² as the squared Pearson correlation between
// predictions and truth.
//
// This is the experiment's headline regression metric: it measures how well
// the predicted ordering and scale track the observed catch counts, and is
// bounded in [0, 1] unlike the coefficient-of-determination form, which can
// go negative for badly biased predictors.
//
// Errors:
//   - ValueError if the inputs are empty or either side has zero variance
//   - DimensionError if yTrue and yPred have different lengths
func R2Pearson(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, biocatErrors.NewValueError("R2Pearson", "empty vector")
	}
	if yPred.Len() != n {
		return 0, biocatErrors.NewDimensionError("R2Pearson", n, yPred.Len(), 0)
	}

	if constant(yTrue) || constant(yPred) {
		return 0, biocatErrors.NewValueError("R2Pearson",
			"correlation undefined for a zero-variance input")
	}

	r := stat.Correlation(yTrue.RawVector().Data, yPred.RawVector().Data, nil)
	return r * r, nil
}

func constant(v *mat.VecDense) bool {
	first := v.AtVec(0)
	for i := 1; i < v.Len(); i++ {
		if v.AtVec(i) != first {
			return false
		}
	}
	return true
}
