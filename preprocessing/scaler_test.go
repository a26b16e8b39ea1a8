package preprocessing_test

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/agrisense/biocat/preprocessing"
)

const epsilon = 1e-10

func TestStandardScaler_BasicFunctionality(t *testing.T) {
	// Feature 1: [1, 2, 3] -> mean=2, std=0.816
	// Feature 2: [4, 5, 6] -> mean=5, std=0.816
	X := mat.NewDense(3, 2, []float64{
		1.0, 4.0,
		2.0, 5.0,
		3.0, 6.0,
	})

	scaler := preprocessing.NewStandardScaler()
	out, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	expectedMean := []float64{2.0, 5.0}
	expectedStd := []float64{0.816496580927726, 0.816496580927726}
	for j := range expectedMean {
		if math.Abs(scaler.Mean[j]-expectedMean[j]) > epsilon {
			t.Errorf("Mean[%d]: expected %f, got %f", j, expectedMean[j], scaler.Mean[j])
		}
		if math.Abs(scaler.Scale[j]-expectedStd[j]) > epsilon {
			t.Errorf("Scale[%d]: expected %f, got %f", j, expectedStd[j], scaler.Scale[j])
		}
	}

	expected := []float64{
		-1.224744871391589, -1.224744871391589,
		0.0, 0.0,
		1.224744871391589, 1.224744871391589,
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 2; j++ {
			if math.Abs(out.At(i, j)-expected[i*2+j]) > epsilon {
				t.Errorf("out[%d][%d]: expected %f, got %f", i, j, expected[i*2+j], out.At(i, j))
			}
		}
	}
}

func TestStandardScaler_ConstantColumn(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{7, 7, 7})

	scaler := preprocessing.NewStandardScaler()
	out, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}
	// Constant columns center to zero instead of dividing by zero.
	for i := 0; i < 3; i++ {
		if out.At(i, 0) != 0 {
			t.Errorf("row %d: expected 0, got %f", i, out.At(i, 0))
		}
	}
}

func TestStandardScaler_TransformBeforeFit(t *testing.T) {
	scaler := preprocessing.NewStandardScaler()
	if _, err := scaler.Transform(mat.NewDense(1, 1, []float64{1})); err == nil {
		t.Error("expected not-fitted error")
	}
}

func TestMinMaxScaler_Basic(t *testing.T) {
	scaler := preprocessing.NewMinMaxScaler()
	out, err := scaler.FitTransform([]float64{2, 4, 6, 10})
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	want := []float64{0, 0.25, 0.5, 1}
	for i := range want {
		if math.Abs(out[i]-want[i]) > epsilon {
			t.Errorf("out[%d]: expected %f, got %f", i, want[i], out[i])
		}
	}
}

func TestMinMaxScaler_ConstantSeries(t *testing.T) {
	scaler := preprocessing.NewMinMaxScaler()
	out, err := scaler.FitTransform([]float64{3, 3, 3})
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}
	for i, v := range out {
		if v != 0 {
			t.Errorf("out[%d]: expected 0 for constant series, got %f", i, v)
		}
	}
}
