package experiment

import (
	"fmt"
	"strings"
	"sync"

	biocatErrors "github.com/agrisense/biocat/pkg/errors"
)

// RunRanking describes how the models placed on one synthetic run, using
// the task's headline metric. Ranks use the minimum rank for ties, so two
// models sharing the best score both get rank 1.
type RunRanking struct {
	Run     int
	Ranks   map[string]int
	Metrics map[string]float64

	// IsBest and IsTop2 report whether any weighted booster placed
	// first (respectively in the top two). BeatsPlainBoosting reports
	// whether the best weighted booster strictly beat the unweighted
	// booster with identical hyperparameters.
	IsBest             bool
	IsTop2             bool
	BeatsPlainBoosting bool
}

// Summary aggregates rankings over the completed runs.
type Summary struct {
	RequestedRuns int
	CompletedRuns int
	FailedRuns    int

	TopRate           float64
	Top2Rate          float64
	BeatsBoostingRate float64
}

type runOutcome struct {
	table *ResultTable
	err   error
}

// RunRobustness repeats the full comparison over independently seeded
// synthetic datasets. Failed runs (degenerate targets, unsplittable data)
// are logged and skipped; rates are computed over completed runs only.
func (h *Harness) RunRobustness() (*Summary, []RunRanking, *ResultTable, error) {
	rc := h.cfg.Robustness
	outcomes := make([]runOutcome, rc.Runs)

	workers := rc.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > rc.Runs {
		workers = rc.Runs
	}

	h.logger.Info("starting robustness simulation",
		"runs", rc.Runs, "workers", workers, "task", string(h.cfg.Task))

	if workers == 1 {
		for i := 0; i < rc.Runs; i++ {
			outcomes[i] = h.runOne(i)
		}
	} else {
		var wg sync.WaitGroup
		jobs := make(chan int)
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					outcomes[i] = h.runOne(i)
				}
			}()
		}
		for i := 0; i < rc.Runs; i++ {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
	}

	summary := &Summary{RequestedRuns: rc.Runs}
	var rankings []RunRanking
	master := NewResultTable()
	metric := HeadlineMetric(h.cfg.Task)

	for i, oc := range outcomes {
		if oc.err != nil {
			summary.FailedRuns++
			h.logger.Warn("robustness run failed, skipping", "run", i+1, "error", oc.err)
			continue
		}
		summary.CompletedRuns++
		master.Merge(oc.table)

		rk := rankRun(i+1, oc.table.Rows(), metric)
		rankings = append(rankings, rk)
		if rk.IsBest {
			summary.TopRate++
		}
		if rk.IsTop2 {
			summary.Top2Rate++
		}
		if rk.BeatsPlainBoosting {
			summary.BeatsBoostingRate++
		}
	}

	if summary.CompletedRuns == 0 {
		return nil, nil, nil, biocatErrors.NewModelError("Harness.RunRobustness",
			"every simulation run failed", nil)
	}
	done := float64(summary.CompletedRuns)
	summary.TopRate /= done
	summary.Top2Rate /= done
	summary.BeatsBoostingRate /= done

	h.logger.Info("robustness simulation finished",
		"completed", summary.CompletedRuns, "failed", summary.FailedRuns,
		"top_rate", summary.TopRate, "top2_rate", summary.Top2Rate,
		"beats_boosting_rate", summary.BeatsBoostingRate)
	return summary, rankings, master, nil
}

func (h *Harness) runOne(i int) runOutcome {
	runSeed := deriveSeed(h.cfg.Seed, i)
	tbl := GenerateSynthetic(h.cfg.Robustness, h.cfg.Task, runSeed)
	scenario := fmt.Sprintf("run-%03d", i+1)

	local := NewResultTable()
	if err := h.Evaluate(scenario, tbl, runSeed, local); err != nil {
		return runOutcome{err: err}
	}
	return runOutcome{table: local}
}

func rankRun(run int, rows []Result, metric string) RunRanking {
	rk := RunRanking{
		Run:     run,
		Ranks:   make(map[string]int, len(rows)),
		Metrics: make(map[string]float64, len(rows)),
	}
	for _, r := range rows {
		rk.Metrics[r.Model] = r.Metrics[metric]
	}

	bestWeighted := 0.0
	haveWeighted := false
	for model, v := range rk.Metrics {
		rank := 1
		for other, ov := range rk.Metrics {
			if other != model && ov > v {
				rank++
			}
		}
		rk.Ranks[model] = rank
		if strings.HasPrefix(model, WeightedPrefix) {
			if !haveWeighted || v > bestWeighted {
				bestWeighted = v
				haveWeighted = true
			}
			if rank == 1 {
				rk.IsBest = true
			}
			if rank <= 2 {
				rk.IsTop2 = true
			}
		}
	}
	plain, ok := rk.Metrics[ModelPlainBoosting]
	rk.BeatsPlainBoosting = haveWeighted && ok && bestWeighted > plain
	return rk
}
