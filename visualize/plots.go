// Package visualize renders dataset plots to PNG or SVG files with
// gonum/plot. Rendering never modifies the dataset.
package visualize

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/biswajyotidutta/tabeda/analysis"
	"github.com/biswajyotidutta/tabeda/dataset"
	"github.com/biswajyotidutta/tabeda/pkg/errors"
)

// GridColumns is the number of panels per row in multi-panel figures.
const GridColumns = 4

// DefaultBins is the histogram bin count used when none is given.
const DefaultBins = 30

// Histograms draws one histogram panel per column, target included.
func Histograms(ds *dataset.Dataset, path string, bins int) error {
	if bins <= 0 {
		bins = DefaultBins
	}
	var plots []*plot.Plot
	for _, name := range ds.Columns() {
		values, _ := ds.Column(name)
		p, err := histogram(name, values, bins)
		if err != nil {
			return err
		}
		plots = append(plots, p)
	}
	return saveGrid(layout(plots, GridColumns), path)
}

func histogram(name string, values []float64, bins int) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = name
	x := finite(values)
	if len(x) == 0 {
		return p, nil
	}
	h, err := plotter.NewHist(plotter.Values(x), bins)
	if err != nil {
		return nil, errors.Wrapf(err, "histogram %s", name)
	}
	p.Add(h)
	return p, nil
}

// CorrelationHeatmap draws the correlation matrix on a diverging blue-red
// scale fixed to [-1, 1]. Undefined cells are left blank.
func CorrelationHeatmap(corr *analysis.Correlation, path string) error {
	n := len(corr.Names)
	if n == 0 {
		return errors.NewValueError("CorrelationHeatmap", "empty correlation matrix")
	}

	cm := moreland.SmoothBlueRed()
	cm.SetMin(-1)
	cm.SetMax(1)

	hm := plotter.NewHeatMap(corrGrid{m: corr.Matrix, n: n}, cm.Palette(255))
	hm.Min, hm.Max = -1, 1

	p := plot.New()
	p.Title.Text = "Correlation matrix"
	p.Add(hm)
	p.NominalX(corr.Names...)
	reversed := make([]string, n)
	for i, name := range corr.Names {
		reversed[n-1-i] = name
	}
	p.NominalY(reversed...)
	p.X.Tick.Label.Rotation = math.Pi / 2.5
	p.X.Tick.Label.XAlign = -1

	side := vg.Length(n)*0.45*vg.Inch + 1.5*vg.Inch
	return errors.Wrapf(p.Save(side, side, path), "save %s", path)
}

// corrGrid adapts a correlation matrix to plotter.GridXYZ with the first
// column drawn at the top.
type corrGrid struct {
	m *mat.SymDense
	n int
}

func (g corrGrid) Dims() (c, r int)   { return g.n, g.n }
func (g corrGrid) Z(c, r int) float64 { return g.m.At(g.n-1-r, c) }
func (g corrGrid) X(c int) float64    { return float64(c) }
func (g corrGrid) Y(r int) float64    { return float64(r) }

// ScatterWithTarget draws one scatter panel per feature against the target.
func ScatterWithTarget(ds *dataset.Dataset, features []string, path string) error {
	if len(features) == 0 {
		return errors.NewValueError("ScatterWithTarget", "no features selected")
	}
	target := ds.Target()
	var plots []*plot.Plot
	for _, f := range features {
		x, err := ds.Column(f)
		if err != nil {
			return err
		}
		p, err := scatter(x, target)
		if err != nil {
			return errors.Wrapf(err, "scatter %s", f)
		}
		p.Title.Text = f + " vs " + ds.TargetName
		p.X.Label.Text = f
		p.Y.Label.Text = ds.TargetName
		plots = append(plots, p)
	}
	return saveGrid(layout(plots, GridColumns), path)
}

func scatter(x, y []float64) (*plot.Plot, error) {
	pts := make(plotter.XYs, 0, len(x))
	for i := range x {
		if isFinite(x[i]) && isFinite(y[i]) {
			pts = append(pts, plotter.XY{X: x[i], Y: y[i]})
		}
	}
	p := plot.New()
	if len(pts) == 0 {
		return p, nil
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	s.GlyphStyle.Radius = vg.Points(1.5)
	p.Add(s)
	return p, nil
}

// PairGrid draws every pair of the given columns: histograms on the
// diagonal, scatter plots elsewhere. Columns may include the target.
func PairGrid(ds *dataset.Dataset, columns []string, path string) error {
	if len(columns) == 0 {
		return errors.NewValueError("PairGrid", "no columns selected")
	}
	values := make([][]float64, len(columns))
	for i, c := range columns {
		v, err := ds.Column(c)
		if err != nil {
			return err
		}
		values[i] = v
	}

	n := len(columns)
	grid := make([][]*plot.Plot, n)
	for i := range grid {
		grid[i] = make([]*plot.Plot, n)
		for j := range grid[i] {
			var (
				p   *plot.Plot
				err error
			)
			if i == j {
				p, err = histogram("", values[i], 20)
			} else {
				p, err = scatter(values[j], values[i])
			}
			if err != nil {
				return errors.Wrapf(err, "pair %s/%s", columns[i], columns[j])
			}
			if i == n-1 {
				p.X.Label.Text = columns[j]
			}
			if j == 0 {
				p.Y.Label.Text = columns[i]
			}
			grid[i][j] = p
		}
	}
	return saveGrid(grid, path)
}

// Boxplots draws one box per column on its own axis, target included.
func Boxplots(ds *dataset.Dataset, path string) error {
	var plots []*plot.Plot
	for _, name := range ds.Columns() {
		values, _ := ds.Column(name)
		p := plot.New()
		p.Title.Text = name
		if x := finite(values); len(x) > 0 {
			b, err := plotter.NewBoxPlot(vg.Points(30), 0, plotter.Values(x))
			if err != nil {
				return errors.Wrapf(err, "boxplot %s", name)
			}
			p.Add(b)
			p.NominalX(name)
		}
		plots = append(plots, p)
	}
	return saveGrid(layout(plots, GridColumns), path)
}

// PredictionScatter plots predictions against actual values with the
// identity line for reference.
func PredictionScatter(actual, predicted []float64, path string) error {
	if len(actual) != len(predicted) {
		return errors.NewDimensionError("PredictionScatter", len(actual), len(predicted), 0)
	}
	if len(actual) == 0 {
		return errors.NewValueError("PredictionScatter", "no points")
	}

	p, err := scatter(actual, predicted)
	if err != nil {
		return err
	}
	p.Title.Text = "Predicted vs actual"
	p.X.Label.Text = "actual"
	p.Y.Label.Text = "predicted"

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range append(finite(actual), finite(predicted)...) {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo < hi {
		line, err := plotter.NewLine(plotter.XYs{{X: lo, Y: lo}, {X: hi, Y: hi}})
		if err != nil {
			return err
		}
		line.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
		p.Add(line)
	}
	return errors.Wrapf(p.Save(5*vg.Inch, 5*vg.Inch, path), "save %s", path)
}

func finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if isFinite(v) {
			out = append(out, v)
		}
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
