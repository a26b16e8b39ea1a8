package metrics_test

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/agrisense/biocat/metrics"
)

const epsilon = 1e-10

func vec(vals ...float64) *mat.VecDense {
	return mat.NewVecDense(len(vals), vals)
}

func TestMSE(t *testing.T) {
	yTrue := vec(1, 2, 3, 4)
	yPred := vec(1, 2, 3, 4)

	mse, err := metrics.MSE(yTrue, yPred)
	if err != nil {
		t.Fatalf("MSE failed: %v", err)
	}
	if mse != 0 {
		t.Errorf("perfect predictions: expected 0, got %f", mse)
	}

	mse, err = metrics.MSE(vec(1, 2, 3), vec(2, 3, 4))
	if err != nil {
		t.Fatalf("MSE failed: %v", err)
	}
	if math.Abs(mse-1.0) > epsilon {
		t.Errorf("unit offset: expected 1.0, got %f", mse)
	}
}

func TestRMSE(t *testing.T) {
	rmse, err := metrics.RMSE(vec(0, 0, 0, 0), vec(2, 2, 2, 2))
	if err != nil {
		t.Fatalf("RMSE failed: %v", err)
	}
	if math.Abs(rmse-2.0) > epsilon {
		t.Errorf("constant offset 2: expected 2.0, got %f", rmse)
	}
}

func TestR2Pearson(t *testing.T) {
	// Perfect linear relation, regardless of slope and intercept.
	r2, err := metrics.R2Pearson(vec(1, 2, 3, 4), vec(10, 20, 30, 40))
	if err != nil {
		t.Fatalf("R2Pearson failed: %v", err)
	}
	if math.Abs(r2-1.0) > epsilon {
		t.Errorf("perfect linear relation: expected 1.0, got %f", r2)
	}

	// Perfect anti-correlation also squares to 1.
	r2, err = metrics.R2Pearson(vec(1, 2, 3, 4), vec(4, 3, 2, 1))
	if err != nil {
		t.Fatalf("R2Pearson failed: %v", err)
	}
	if math.Abs(r2-1.0) > epsilon {
		t.Errorf("anti-correlated: expected 1.0, got %f", r2)
	}
}

func TestR2Pearson_ZeroVariance(t *testing.T) {
	if _, err := metrics.R2Pearson(vec(1, 2, 3), vec(5, 5, 5)); err == nil {
		t.Error("expected error for constant predictions")
	}
	if _, err := metrics.R2Pearson(vec(5, 5, 5), vec(1, 2, 3)); err == nil {
		t.Error("expected error for constant truth")
	}
}

func TestRegressionMetrics_DimensionMismatch(t *testing.T) {
	if _, err := metrics.MSE(vec(1, 2), vec(1, 2, 3)); err == nil {
		t.Error("MSE: expected dimension error")
	}
	if _, err := metrics.R2Pearson(vec(1, 2), vec(1, 2, 3)); err == nil {
		t.Error("R2Pearson: expected dimension error")
	}
}

func TestAccuracy(t *testing.T) {
	acc, err := metrics.Accuracy(vec(0, 1, 2, 1), vec(0, 1, 2, 1))
	if err != nil {
		t.Fatalf("Accuracy failed: %v", err)
	}
	if acc != 1.0 {
		t.Errorf("perfect predictions: expected 1.0, got %f", acc)
	}

	acc, err = metrics.Accuracy(vec(0, 1, 2, 1), vec(0, 1, 0, 0))
	if err != nil {
		t.Fatalf("Accuracy failed: %v", err)
	}
	if math.Abs(acc-0.5) > epsilon {
		t.Errorf("half right: expected 0.5, got %f", acc)
	}
}

func TestCohenKappa(t *testing.T) {
	// Perfect agreement on a mixed label set.
	kappa, err := metrics.CohenKappa(vec(0, 1, 2, 0, 1, 2), vec(0, 1, 2, 0, 1, 2))
	if err != nil {
		t.Fatalf("CohenKappa failed: %v", err)
	}
	if math.Abs(kappa-1.0) > epsilon {
		t.Errorf("perfect agreement: expected 1.0, got %f", kappa)
	}

	// Binary case with known marginals:
	// po = 0.5, pe = 0.5 so kappa = 0 (chance-level agreement).
	kappa, err = metrics.CohenKappa(vec(0, 0, 1, 1), vec(0, 1, 0, 1))
	if err != nil {
		t.Fatalf("CohenKappa failed: %v", err)
	}
	if math.Abs(kappa) > epsilon {
		t.Errorf("chance agreement: expected 0, got %f", kappa)
	}
}

func TestCohenKappa_ConstantLabels(t *testing.T) {
	// Both sides constant and equal: pe == 1, statistic undefined, report 0.
	kappa, err := metrics.CohenKappa(vec(1, 1, 1), vec(1, 1, 1))
	if err != nil {
		t.Fatalf("CohenKappa failed: %v", err)
	}
	if kappa != 0 {
		t.Errorf("degenerate agreement: expected 0, got %f", kappa)
	}
}
