// Package dataset loads the field-survey table and builds model-ready
// feature matrices, target vectors and risk-index vectors. It also generates
// the tertile classification target with the equal-width fallback used when
// the catch distribution has too few distinct quantile breaks.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	biocatErrors "github.com/agrisense/biocat/pkg/errors"
	"github.com/agrisense/biocat/preprocessing"
	"github.com/agrisense/biocat/risk"
)

// Table is one loaded dataset: features, target and the per-observation risk
// index already clamped into [0.01, 1].
type Table struct {
	FeatureNames []string
	X            *mat.Dense
	Y            *mat.VecDense
	Risk         []float64
}

// NumRows returns the number of observations.
func (t *Table) NumRows() int {
	r, _ := t.X.Dims()
	return r
}

// NumFeatures returns the number of feature columns.
func (t *Table) NumFeatures() int {
	_, c := t.X.Dims()
	return c
}

// Options selects columns from the raw CSV.
type Options struct {
	FeatureColumns []string
	TargetColumn   string
	RiskColumn     string

	// NormalizeRisk min-max rescales the raw risk column onto [0,1] before
	// clamping; use when the source stores an unnormalized risk estimate.
	NormalizeRisk bool

	// StandardizeFeatures applies a StandardScaler to the feature matrix.
	StandardizeFeatures bool
}

func missing(field string) bool {
	f := strings.TrimSpace(field)
	return f == "" || strings.EqualFold(f, "na") || strings.EqualFold(f, "nan")
}

// LoadCSV reads a header-first CSV into a Table. Missing feature cells
// (empty, "na", "nan") become zero; any other unparseable cell is an error,
// and missing target or risk cells are an error since silently zeroing them
// would fabricate observations.
func LoadCSV(r io.Reader, opts Options) (*Table, error) {
	if len(opts.FeatureColumns) == 0 {
		return nil, biocatErrors.NewValueError("LoadCSV", "no feature columns selected")
	}
	if opts.TargetColumn == "" || opts.RiskColumn == "" {
		return nil, biocatErrors.NewValueError("LoadCSV", "target and risk columns are required")
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, biocatErrors.NewModelError("dataset.LoadCSV", "reading header", err)
	}

	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[strings.TrimSpace(name)] = i
	}

	featIdx := make([]int, len(opts.FeatureColumns))
	for i, name := range opts.FeatureColumns {
		idx, ok := colIdx[name]
		if !ok {
			return nil, biocatErrors.NewValueError("LoadCSV",
				fmt.Sprintf("feature column %q not found", name))
		}
		featIdx[i] = idx
	}
	targetIdx, ok := colIdx[opts.TargetColumn]
	if !ok {
		return nil, biocatErrors.NewValueError("LoadCSV",
			fmt.Sprintf("target column %q not found", opts.TargetColumn))
	}
	riskIdx, ok := colIdx[opts.RiskColumn]
	if !ok {
		return nil, biocatErrors.NewValueError("LoadCSV",
			fmt.Sprintf("risk column %q not found", opts.RiskColumn))
	}

	var features []float64
	var target []float64
	var rawRisk []float64

	row := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, biocatErrors.NewModelError("dataset.LoadCSV",
				fmt.Sprintf("reading row %d", row), err)
		}
		row++

		for fi, idx := range featIdx {
			v := 0.0
			if !missing(record[idx]) {
				parsed, err := strconv.ParseFloat(strings.TrimSpace(record[idx]), 64)
				if err != nil {
					return nil, biocatErrors.NewValueError("LoadCSV",
						fmt.Sprintf("unparseable %s value at row %d: %q",
							opts.FeatureColumns[fi], row, record[idx]))
				}
				v = parsed
			}
			features = append(features, v)
		}

		tv, err := parseRequired(record[targetIdx], opts.TargetColumn, row)
		if err != nil {
			return nil, err
		}
		target = append(target, tv)

		rv, err := parseRequired(record[riskIdx], opts.RiskColumn, row)
		if err != nil {
			return nil, err
		}
		rawRisk = append(rawRisk, rv)
	}

	n := len(target)
	if n == 0 {
		return nil, biocatErrors.NewValueError("LoadCSV", "no data rows")
	}

	X := mat.NewDense(n, len(featIdx), features)
	if opts.StandardizeFeatures {
		scaler := preprocessing.NewStandardScaler()
		X, err = scaler.FitTransform(X)
		if err != nil {
			return nil, err
		}
	}

	riskValues := rawRisk
	if opts.NormalizeRisk {
		scaler := preprocessing.NewMinMaxScaler()
		riskValues, err = scaler.FitTransform(rawRisk)
		if err != nil {
			return nil, err
		}
	}

	return &Table{
		FeatureNames: append([]string(nil), opts.FeatureColumns...),
		X:            X,
		Y:            mat.NewVecDense(n, target),
		Risk:         risk.ClampIndex(riskValues),
	}, nil
}

func parseRequired(field, column string, row int) (float64, error) {
	if missing(field) {
		return 0, biocatErrors.NewValueError("LoadCSV",
			fmt.Sprintf("missing %s value at row %d", column, row))
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	if err != nil {
		return 0, biocatErrors.NewValueError("LoadCSV",
			fmt.Sprintf("unparseable %s value at row %d: %q", column, row, field))
	}
	return v, nil
}
