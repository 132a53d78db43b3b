// Package dataset loads tabular regression datasets into a gota DataFrame of
// float64 feature columns plus an aligned target vector.
//
// A Dataset is immutable after Load: every operation returns a new value.
package dataset

import (
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/mat"

	"github.com/biswajyotidutta/tabeda/pkg/errors"
)

// Dataset is a feature table with an aligned real-valued target.
type Dataset struct {
	// ID is the identifier the dataset was loaded from.
	ID string

	// TargetName is the name of the target column as it appears in the source.
	TargetName string

	features dataframe.DataFrame
	target   []float64
}

// New builds a Dataset from feature columns and a target. Every column must
// have len(target) rows.
func New(id string, names []string, columns [][]float64, targetName string, target []float64) (*Dataset, error) {
	if len(names) != len(columns) {
		return nil, errors.NewDimensionError("dataset.New", len(names), len(columns), 1)
	}
	if len(names) == 0 || len(target) == 0 {
		return nil, errors.NewDatasetError(id, errors.DatasetParse, errors.ErrEmptyData)
	}

	cols := make([]series.Series, len(columns))
	for j, c := range columns {
		if len(c) != len(target) {
			return nil, errors.NewDimensionError("dataset.New", len(target), len(c), 0)
		}
		cols[j] = series.New(c, series.Float, names[j])
	}

	df := dataframe.New(cols...)
	if df.Err != nil {
		return nil, errors.NewDatasetError(id, errors.DatasetParse, df.Err)
	}

	return &Dataset{
		ID:         id,
		TargetName: targetName,
		features:   df,
		target:     append([]float64(nil), target...),
	}, nil
}

// Rows returns the number of samples.
func (d *Dataset) Rows() int {
	return len(d.target)
}

// FeatureNames returns the feature column names in source order.
func (d *Dataset) FeatureNames() []string {
	return d.features.Names()
}

// Columns returns the feature names followed by the target name.
func (d *Dataset) Columns() []string {
	return append(d.FeatureNames(), d.TargetName)
}

// Frame returns the feature DataFrame. gota frames are values, so callers
// cannot mutate the dataset through it.
func (d *Dataset) Frame() dataframe.DataFrame {
	return d.features
}

// Target returns a copy of the target values.
func (d *Dataset) Target() []float64 {
	return append([]float64(nil), d.target...)
}

// Column returns a copy of the named column. The target is addressable by
// its name; lookup is case-insensitive.
func (d *Dataset) Column(name string) ([]float64, error) {
	if strings.EqualFold(name, d.TargetName) {
		return d.Target(), nil
	}
	for _, n := range d.features.Names() {
		if strings.EqualFold(n, name) {
			return d.features.Col(n).Float(), nil
		}
	}
	return nil, errors.NewValidationError("column", "no such column in dataset "+d.ID, name)
}

// Matrix returns the features as a rows × features matrix.
func (d *Dataset) Matrix() *mat.Dense {
	r, c := d.features.Nrow(), d.features.Ncol()
	m := mat.NewDense(r, c, nil)
	for j, name := range d.features.Names() {
		m.SetCol(j, d.features.Col(name).Float())
	}
	return m
}

// TargetVec returns the target as a vector.
func (d *Dataset) TargetVec() *mat.VecDense {
	return mat.NewVecDense(len(d.target), d.Target())
}

// Subset returns a new Dataset holding the given rows in the given order.
func (d *Dataset) Subset(rows []int) (*Dataset, error) {
	if len(rows) == 0 {
		return nil, errors.NewValueError("Dataset.Subset", "no rows selected")
	}
	target := make([]float64, len(rows))
	for i, r := range rows {
		if r < 0 || r >= len(d.target) {
			return nil, errors.NewValidationError("rows", "index out of range", r)
		}
		target[i] = d.target[r]
	}

	df := d.features.Subset(rows)
	if df.Err != nil {
		return nil, errors.Wrap(df.Err, "Dataset.Subset")
	}
	return &Dataset{ID: d.ID, TargetName: d.TargetName, features: df, target: target}, nil
}

// Select returns a new Dataset restricted to the named feature columns.
func (d *Dataset) Select(names ...string) (*Dataset, error) {
	resolved := make([]string, 0, len(names))
	for _, name := range names {
		found := ""
		for _, n := range d.features.Names() {
			if strings.EqualFold(n, name) {
				found = n
				break
			}
		}
		if found == "" {
			return nil, errors.NewValidationError("columns", "no such feature in dataset "+d.ID, name)
		}
		resolved = append(resolved, found)
	}

	df := d.features.Select(resolved)
	if df.Err != nil {
		return nil, errors.Wrap(df.Err, "Dataset.Select")
	}
	return &Dataset{ID: d.ID, TargetName: d.TargetName, features: df, target: d.target}, nil
}
