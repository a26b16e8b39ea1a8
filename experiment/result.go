package experiment

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	biocatErrors "github.com/agrisense/biocat/pkg/errors"
)

// Metric names used by the harness.
const (
	MetricAccuracy = "accuracy"
	MetricKappa    = "kappa"
	MetricR2       = "r2"
	MetricRMSE     = "rmse"
)

// Model names used by the harness. Weighted boosters are named with
// WeightedPrefix followed by the gain strategy label.
const (
	ModelRandomForest  = "RandomForest"
	ModelBoostedForest = "BoostedForest"
	ModelDecisionTree  = "DecisionTree"
	ModelPlainBoosting = "GBT"

	WeightedPrefix = "BioCAT-"
)

// HeadlineMetric returns the metric used for ranking and sorting.
func HeadlineMetric(task Task) string {
	if task == TaskClassification {
		return MetricAccuracy
	}
	return MetricR2
}

// MetricColumns returns the metrics reported for a task, headline first.
func MetricColumns(task Task) []string {
	if task == TaskClassification {
		return []string{MetricAccuracy, MetricKappa}
	}
	return []string{MetricR2, MetricRMSE}
}

// Result is one fitted model scored on one scenario.
type Result struct {
	Scenario string
	Model    string
	Metrics  map[string]float64
}

// ResultTable collects Results across scenarios. Append-only; rows keep
// insertion order until Sort is called.
type ResultTable struct {
	rows []Result
}

// NewResultTable returns an empty table.
func NewResultTable() *ResultTable {
	return &ResultTable{}
}

// Append adds a row.
func (t *ResultTable) Append(r Result) {
	t.rows = append(t.rows, r)
}

// Merge appends every row of other.
func (t *ResultTable) Merge(other *ResultTable) {
	t.rows = append(t.rows, other.rows...)
}

// Len returns the number of rows.
func (t *ResultTable) Len() int {
	return len(t.rows)
}

// Rows returns a copy of the rows.
func (t *ResultTable) Rows() []Result {
	out := make([]Result, len(t.rows))
	copy(out, t.rows)
	return out
}

// Sort orders rows by scenario label ascending, then by the given metric
// descending. Model name breaks remaining ties so output is reproducible.
func (t *ResultTable) Sort(metric string) {
	sort.SliceStable(t.rows, func(i, j int) bool {
		a, b := t.rows[i], t.rows[j]
		if a.Scenario != b.Scenario {
			return a.Scenario < b.Scenario
		}
		ma, mb := a.Metrics[metric], b.Metrics[metric]
		if ma != mb {
			return ma > mb
		}
		return a.Model < b.Model
	})
}

// MetricSeries returns model names and the given metric for one scenario,
// in row order.
func (t *ResultTable) MetricSeries(scenario, metric string) (models []string, values []float64) {
	for _, r := range t.rows {
		if r.Scenario != scenario {
			continue
		}
		models = append(models, r.Model)
		values = append(values, r.Metrics[metric])
	}
	return models, values
}

// Scenarios returns the distinct scenario labels in first-seen order.
func (t *ResultTable) Scenarios() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range t.rows {
		if !seen[r.Scenario] {
			seen[r.Scenario] = true
			out = append(out, r.Scenario)
		}
	}
	return out
}

// WriteCSV writes the table with one column per requested metric.
func (t *ResultTable) WriteCSV(w io.Writer, metrics []string) error {
	cw := csv.NewWriter(w)
	header := append([]string{"scenario", "model"}, metrics...)
	if err := cw.Write(header); err != nil {
		return biocatErrors.NewModelError("ResultTable.WriteCSV", "writing header", err)
	}
	for _, r := range t.rows {
		rec := []string{r.Scenario, r.Model}
		for _, m := range metrics {
			rec = append(rec, strconv.FormatFloat(r.Metrics[m], 'f', 6, 64))
		}
		if err := cw.Write(rec); err != nil {
			return biocatErrors.NewModelError("ResultTable.WriteCSV", "writing row", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return biocatErrors.NewModelError("ResultTable.WriteCSV", "flushing output", err)
	}
	return nil
}
