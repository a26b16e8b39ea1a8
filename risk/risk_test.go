package risk_test

import (
	"math"
	"testing"

	"github.com/agrisense/biocat/gain"
	"github.com/agrisense/biocat/risk"
)

func sampleRisk() []float64 {
	return []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9}
}

func TestComputeAnchors_Ordering(t *testing.T) {
	a, err := risk.ComputeAnchors(sampleRisk())
	if err != nil {
		t.Fatalf("ComputeAnchors failed: %v", err)
	}

	if !(a.Q40 <= a.Median && a.Median <= a.Q60 && a.Q60 <= a.Q80) {
		t.Errorf("anchors out of order: q40=%f median=%f q60=%f q80=%f",
			a.Q40, a.Median, a.Q60, a.Q80)
	}
	if a.HalfIQR <= 0 {
		t.Errorf("expected positive half-IQR for spread data, got %f", a.HalfIQR)
	}
	if a.Median < 0.4 || a.Median > 0.6 {
		t.Errorf("median of symmetric sample must be near 0.5, got %f", a.Median)
	}
}

func TestComputeAnchors_IgnoresInputOrder(t *testing.T) {
	shuffled := []float64{0.9, 0.3, 0.6, 0.1, 0.8, 0.4, 0.2, 0.7, 0.5}

	a1, err := risk.ComputeAnchors(sampleRisk())
	if err != nil {
		t.Fatalf("ComputeAnchors failed: %v", err)
	}
	a2, err := risk.ComputeAnchors(shuffled)
	if err != nil {
		t.Fatalf("ComputeAnchors failed: %v", err)
	}
	if a1 != a2 {
		t.Errorf("anchors depend on input order: %+v vs %+v", a1, a2)
	}
}

func TestComputeAnchors_LeavesInputUntouched(t *testing.T) {
	in := []float64{0.9, 0.1, 0.5, 0.3}
	want := []float64{0.9, 0.1, 0.5, 0.3}

	if _, err := risk.ComputeAnchors(in); err != nil {
		t.Fatalf("ComputeAnchors failed: %v", err)
	}
	for i := range in {
		if in[i] != want[i] {
			t.Fatalf("input slice was reordered at %d", i)
		}
	}
}

func TestComputeAnchors_Degenerate(t *testing.T) {
	if _, err := risk.ComputeAnchors([]float64{0.5}); err == nil {
		t.Error("expected error for single-element sample")
	}
	if _, err := risk.ComputeAnchors([]float64{0.5, 0.5, 0.5}); err == nil {
		t.Error("expected error for constant sample")
	}
	if _, err := risk.ComputeAnchors(nil); err == nil {
		t.Error("expected error for empty sample")
	}
}

func TestClampIndex(t *testing.T) {
	raw := []float64{-0.2, 0.0, 0.005, 0.01, 0.5, 1.0, 1.7}
	want := []float64{0.01, 0.01, 0.01, 0.01, 0.5, 1.0, 1.0}

	got := risk.ClampIndex(raw)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ClampIndex[%d]: expected %f, got %f", i, want[i], got[i])
		}
	}
	if raw[0] != -0.2 {
		t.Error("ClampIndex must not mutate its input")
	}
}

func TestBuildRegistry_AllStrategies(t *testing.T) {
	a, err := risk.ComputeAnchors(sampleRisk())
	if err != nil {
		t.Fatalf("ComputeAnchors failed: %v", err)
	}
	reg, err := risk.BuildRegistry(a)
	if err != nil {
		t.Fatalf("BuildRegistry failed: %v", err)
	}

	wantLabels := []string{
		risk.StrategyExp, risk.StrategySigmoid, risk.StrategyStep,
		risk.StrategyTriangular, risk.StrategyTrapezoid, risk.StrategyGaussian,
	}
	labels := reg.Labels()
	if len(labels) != len(wantLabels) {
		t.Fatalf("expected %d strategies, got %d", len(wantLabels), len(labels))
	}
	for i, want := range wantLabels {
		if labels[i] != want {
			t.Errorf("label %d: expected %s, got %s", i, want, labels[i])
		}
	}
	for _, label := range labels {
		if _, ok := reg.Get(label); !ok {
			t.Errorf("strategy %s not registered", label)
		}
	}
	if _, ok := reg.Get("LINEAR"); ok {
		t.Error("unknown label must not resolve")
	}
}

func TestBuildRegistry_AnchorParametrization(t *testing.T) {
	a, err := risk.ComputeAnchors(sampleRisk())
	if err != nil {
		t.Fatalf("ComputeAnchors failed: %v", err)
	}
	reg, err := risk.BuildRegistry(a)
	if err != nil {
		t.Fatalf("BuildRegistry failed: %v", err)
	}

	sig, _ := reg.Get(risk.StrategySigmoid)
	if got := sig.Evaluate(a.Median); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("sigmoid at median: expected 0.5, got %f", got)
	}

	exp, _ := reg.Get(risk.StrategyExp)
	if got := exp.Evaluate(a.Q60); math.Abs(got-1.0) > 1e-12 {
		t.Errorf("exponential at q60 threshold: expected 1.0, got %f", got)
	}

	gauss, _ := reg.Get(risk.StrategyGaussian)
	if got := gauss.Evaluate(a.Median); math.Abs(got-1.0) > 1e-12 {
		t.Errorf("gaussian at median: expected 1.0, got %f", got)
	}

	tri, _ := reg.Get(risk.StrategyTriangular)
	if got := tri.Evaluate(a.Median); math.Abs(got-gain.DefaultMaxWeight) > 1e-12 {
		t.Errorf("triangular at median peak: expected %f, got %f", gain.DefaultMaxWeight, got)
	}
}

func TestBuildRegistry_Deterministic(t *testing.T) {
	a, err := risk.ComputeAnchors(sampleRisk())
	if err != nil {
		t.Fatalf("ComputeAnchors failed: %v", err)
	}

	reg1, err := risk.BuildRegistry(a)
	if err != nil {
		t.Fatalf("BuildRegistry failed: %v", err)
	}
	reg2, err := risk.BuildRegistry(a)
	if err != nil {
		t.Fatalf("BuildRegistry failed: %v", err)
	}

	rs := []float64{0.01, 0.23, 0.5, 0.71, 1.0}
	for _, label := range reg1.Labels() {
		f1, _ := reg1.Get(label)
		f2, _ := reg2.Get(label)
		w1, err := risk.SampleWeights(f1, rs)
		if err != nil {
			t.Fatalf("SampleWeights failed: %v", err)
		}
		w2, err := risk.SampleWeights(f2, rs)
		if err != nil {
			t.Fatalf("SampleWeights failed: %v", err)
		}
		for i := range w1 {
			if w1[i] != w2[i] {
				t.Errorf("%s: rebuild changed weight %d: %f vs %f", label, i, w1[i], w2[i])
			}
		}
	}
}

func TestBuildRegistry_DegenerateAnchors(t *testing.T) {
	// Zero half-IQR makes the Gaussian strategy ill-defined.
	if _, err := risk.BuildRegistry(risk.Anchors{
		Median: 0.5, HalfIQR: 0, Q40: 0.4, Q60: 0.6, Q80: 0.8,
	}); err == nil {
		t.Error("expected error for zero half-IQR")
	}

	// Median at the q40 edge breaks the triangular peak constraint.
	if _, err := risk.BuildRegistry(risk.Anchors{
		Median: 0.4, HalfIQR: 0.1, Q40: 0.4, Q60: 0.6, Q80: 0.8,
	}); err == nil {
		t.Error("expected error for median on the q40 boundary")
	}
}

func TestSampleWeights_StepBands(t *testing.T) {
	step := gain.NewStep(0.4, 0.7, gain.DefaultLowWeight, gain.DefaultHighWeight, gain.DefaultMidWeight)

	weights, err := risk.SampleWeights(step, []float64{0.1, 0.5, 0.9})
	if err != nil {
		t.Fatalf("SampleWeights failed: %v", err)
	}
	want := []float64{gain.DefaultLowWeight, gain.DefaultMidWeight, gain.DefaultHighWeight}
	for i := range want {
		if weights[i] != want[i] {
			t.Errorf("weight %d: expected %f, got %f", i, want[i], weights[i])
		}
	}
}

func TestSampleWeights_Empty(t *testing.T) {
	step := gain.NewStep(0.4, 0.7, 0.5, 2.0, 1.0)
	if _, err := risk.SampleWeights(step, nil); err == nil {
		t.Error("expected error for empty risk vector")
	}
}
