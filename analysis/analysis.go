// Package analysis computes read-only descriptive statistics over a dataset:
// summaries, missing counts, correlations and skewness.
package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/biswajyotidutta/tabeda/dataset"
	"github.com/biswajyotidutta/tabeda/pkg/errors"
)

// ColumnSummary holds describe-style statistics for one column.
// Statistics ignore missing values; Std is the sample standard deviation.
type ColumnSummary struct {
	Name  string
	Count int
	Mean  float64
	Std   float64
	Min   float64
	Q25   float64
	Q50   float64
	Q75   float64
	Max   float64
}

// Ranked is a column name with a signed score.
type Ranked struct {
	Name  string
	Value float64
}

// Correlation is a Pearson correlation matrix over Names.
type Correlation struct {
	Names  []string
	Matrix *mat.SymDense
}

// At returns the correlation between two named columns.
func (c *Correlation) At(a, b string) (float64, bool) {
	i, j := c.index(a), c.index(b)
	if i < 0 || j < 0 {
		return 0, false
	}
	return c.Matrix.At(i, j), true
}

func (c *Correlation) index(name string) int {
	for i, n := range c.Names {
		if n == name {
			return i
		}
	}
	return -1
}

// Shape returns the number of rows and feature columns.
func Shape(ds *dataset.Dataset) (rows, cols int) {
	return ds.Rows(), len(ds.FeatureNames())
}

// Describe summarizes every feature column followed by the target.
func Describe(ds *dataset.Dataset) []ColumnSummary {
	names := ds.Columns()
	out := make([]ColumnSummary, 0, len(names))
	for _, name := range names {
		values, _ := ds.Column(name)
		out = append(out, summarize(name, values))
	}
	return out
}

func summarize(name string, values []float64) ColumnSummary {
	x := present(values)
	s := ColumnSummary{Name: name, Count: len(x)}
	if len(x) == 0 {
		nan := math.NaN()
		s.Mean, s.Std, s.Min, s.Q25, s.Q50, s.Q75, s.Max = nan, nan, nan, nan, nan, nan, nan
		return s
	}

	sort.Float64s(x)
	s.Mean = stat.Mean(x, nil)
	s.Std = math.NaN()
	if len(x) > 1 {
		s.Std = stat.StdDev(x, nil)
	}
	s.Min = x[0]
	s.Max = x[len(x)-1]
	s.Q25 = quantile(x, 0.25)
	s.Q50 = quantile(x, 0.50)
	s.Q75 = quantile(x, 0.75)
	return s
}

// quantile linearly interpolates between closest ranks at position
// p·(n−1) of the sorted sample.
func quantile(sorted []float64, p float64) float64 {
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// MissingCounts returns the number of missing values per column, target
// included.
func MissingCounts(ds *dataset.Dataset) map[string]int {
	counts := make(map[string]int)
	for _, name := range ds.Columns() {
		values, _ := ds.Column(name)
		n := 0
		for _, v := range values {
			if math.IsNaN(v) {
				n++
			}
		}
		counts[name] = n
	}
	return counts
}

// CorrelationMatrix computes Pearson correlations over every feature and the
// target. Rows with any missing value are excluded. Pairs involving a
// constant column are NaN and reported with an UndefinedMetricWarning.
func CorrelationMatrix(ds *dataset.Dataset) (*Correlation, error) {
	names := ds.Columns()
	data := completeRows(ds, names)
	r, _ := data.Dims()
	if r < 2 {
		return nil, errors.NewValueError("CorrelationMatrix", "fewer than two complete rows")
	}

	corr := mat.NewSymDense(len(names), nil)
	stat.CorrelationMatrix(corr, data, nil)

	col := make([]float64, r)
	for j, name := range names {
		mat.Col(col, j, data)
		if floats.Min(col) == floats.Max(col) {
			errors.Warn(errors.NewUndefinedMetricWarning("correlation("+name+")", "zero variance", math.NaN()))
		}
	}
	return &Correlation{Names: names, Matrix: corr}, nil
}

func completeRows(ds *dataset.Dataset, names []string) *mat.Dense {
	cols := make([][]float64, len(names))
	for j, name := range names {
		cols[j], _ = ds.Column(name)
	}

	var rows []int
	for i := 0; i < ds.Rows(); i++ {
		ok := true
		for j := range cols {
			if math.IsNaN(cols[j][i]) {
				ok = false
				break
			}
		}
		if ok {
			rows = append(rows, i)
		}
	}

	if len(rows) == 0 {
		return &mat.Dense{}
	}
	m := mat.NewDense(len(rows), len(names), nil)
	for i, row := range rows {
		for j := range cols {
			m.Set(i, j, cols[j][row])
		}
	}
	return m
}

// SkewnessRanking returns the adjusted Fisher-Pearson skewness of every
// column, sorted by absolute value descending. Columns with fewer than three
// values or no variance are skipped.
func SkewnessRanking(ds *dataset.Dataset) []Ranked {
	var out []Ranked
	for _, name := range ds.Columns() {
		values, _ := ds.Column(name)
		x := present(values)
		if len(x) < 3 || floats.Min(x) == floats.Max(x) {
			continue
		}
		out = append(out, Ranked{Name: name, Value: stat.Skew(x, nil)})
	}
	sortByMagnitude(out)
	return out
}

// TopCorrelated returns the k features with the largest absolute correlation
// with the target, strongest first. k is clamped to the feature count.
func TopCorrelated(ds *dataset.Dataset, k int) ([]Ranked, error) {
	if k < 0 {
		return nil, errors.NewValidationError("k", "must be non-negative", k)
	}
	corr, err := CorrelationMatrix(ds)
	if err != nil {
		return nil, err
	}
	return topCorrelated(corr, ds, k), nil
}

// TopCorrelatedFrom ranks features like TopCorrelated but reads an already
// computed matrix. Features missing from corr are skipped.
func TopCorrelatedFrom(corr *Correlation, ds *dataset.Dataset, k int) ([]Ranked, error) {
	if k < 0 {
		return nil, errors.NewValidationError("k", "must be non-negative", k)
	}
	if corr == nil || corr.index(ds.TargetName) < 0 {
		return nil, errors.NewValueError("TopCorrelatedFrom", "correlation matrix does not cover target "+ds.TargetName)
	}
	return topCorrelated(corr, ds, k), nil
}

func topCorrelated(corr *Correlation, ds *dataset.Dataset, k int) []Ranked {
	features := ds.FeatureNames()
	out := make([]Ranked, 0, len(features))
	for _, f := range features {
		v, ok := corr.At(f, ds.TargetName)
		if !ok || math.IsNaN(v) {
			continue
		}
		out = append(out, Ranked{Name: f, Value: v})
	}
	sortByMagnitude(out)

	if k > len(out) {
		k = len(out)
	}
	return out[:k]
}

func sortByMagnitude(r []Ranked) {
	sort.SliceStable(r, func(i, j int) bool {
		return math.Abs(r[i].Value) > math.Abs(r[j].Value)
	})
}

func present(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Summary bundles every statistic the workflow reports.
type Summary struct {
	Rows          int
	Features      int
	Columns       []ColumnSummary
	Missing       map[string]int
	Correlation   *Correlation
	Skewness      []Ranked
	TopWithTarget []Ranked
}

// Analyze computes the full Summary with the top k target correlations.
func Analyze(ds *dataset.Dataset, k int) (*Summary, error) {
	if k < 0 {
		return nil, errors.NewValidationError("k", "must be non-negative", k)
	}
	corr, err := CorrelationMatrix(ds)
	if err != nil {
		return nil, err
	}
	rows, cols := Shape(ds)
	return &Summary{
		Rows:          rows,
		Features:      cols,
		Columns:       Describe(ds),
		Missing:       MissingCounts(ds),
		Correlation:   corr,
		Skewness:      SkewnessRanking(ds),
		TopWithTarget: topCorrelated(corr, ds, k),
	}, nil
}
