package experiment

import "testing"

func row(model string, r2 float64) Result {
	return Result{Scenario: "run-001", Model: model, Metrics: map[string]float64{MetricR2: r2}}
}

func TestRankRun_MinTieRanking(t *testing.T) {
	rows := []Result{
		row(ModelRandomForest, 0.80),
		row(ModelPlainBoosting, 0.80),
		row(ModelDecisionTree, 0.60),
		row(WeightedPrefix+"EXP", 0.90),
	}

	rk := rankRun(1, rows, MetricR2)

	if rk.Ranks[WeightedPrefix+"EXP"] != 1 {
		t.Errorf("best model rank: expected 1, got %d", rk.Ranks[WeightedPrefix+"EXP"])
	}
	// Tied models share the minimum rank.
	if rk.Ranks[ModelRandomForest] != 2 || rk.Ranks[ModelPlainBoosting] != 2 {
		t.Errorf("tied models: expected rank 2 for both, got %d and %d",
			rk.Ranks[ModelRandomForest], rk.Ranks[ModelPlainBoosting])
	}
	// The rank after a two-way tie skips a slot.
	if rk.Ranks[ModelDecisionTree] != 4 {
		t.Errorf("trailing model: expected rank 4, got %d", rk.Ranks[ModelDecisionTree])
	}
}

func TestRankRun_WeightedFlags(t *testing.T) {
	rows := []Result{
		row(ModelPlainBoosting, 0.70),
		row(ModelRandomForest, 0.95),
		row(WeightedPrefix+"SIGMOID", 0.80),
		row(WeightedPrefix+"STEP", 0.50),
	}

	rk := rankRun(1, rows, MetricR2)

	if rk.IsBest {
		t.Error("no weighted booster placed first")
	}
	if !rk.IsTop2 {
		t.Error("a weighted booster placed second")
	}
	if !rk.BeatsPlainBoosting {
		t.Error("best weighted booster beat the plain booster")
	}
}

func TestRankRun_TieDoesNotBeatPlainBoosting(t *testing.T) {
	rows := []Result{
		row(ModelPlainBoosting, 0.80),
		row(WeightedPrefix+"EXP", 0.80),
	}

	rk := rankRun(1, rows, MetricR2)

	// Beating requires a strict improvement.
	if rk.BeatsPlainBoosting {
		t.Error("equal score must not count as beating the plain booster")
	}
	if !rk.IsBest {
		t.Error("tied weighted booster still shares rank 1")
	}
}

func TestStreamBases_Disjoint(t *testing.T) {
	if splitStream == synthStream {
		t.Fatal("split and generator must not share a PCG stream base")
	}
	if splitStream == 0 || synthStream == 0 {
		t.Error("a zero base collapses onto the raw seed stream")
	}
}

func TestDeriveSeed_DistinctPerRun(t *testing.T) {
	seen := make(map[int64]bool)
	for i := 0; i < 200; i++ {
		s := deriveSeed(42, i)
		if seen[s] {
			t.Fatalf("duplicate stream seed for run %d", i)
		}
		seen[s] = true
	}
}
