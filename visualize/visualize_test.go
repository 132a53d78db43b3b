package visualize

import (
	"bytes"
	"context"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biswajyotidutta/tabeda/analysis"
	"github.com/biswajyotidutta/tabeda/dataset"
	"github.com/biswajyotidutta/tabeda/pkg/errors"
	"github.com/biswajyotidutta/tabeda/pkg/log"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func sample(t *testing.T) *dataset.Dataset {
	t.Helper()
	rng := rand.New(rand.NewPCG(1, 2))
	n := 60
	names := []string{"RM", "LSTAT", "CRIM", "TAX"}
	cols := make([][]float64, len(names))
	for j := range cols {
		cols[j] = make([]float64, n)
	}
	target := make([]float64, n)
	for i := 0; i < n; i++ {
		cols[0][i] = 6 + rng.NormFloat64()
		cols[1][i] = 12 + 5*rng.NormFloat64()
		cols[2][i] = rng.ExpFloat64()
		cols[3][i] = 300 + 50*rng.NormFloat64()
		target[i] = 9*cols[0][i] - 0.5*cols[1][i] + rng.NormFloat64()
	}
	cols[2][3] = math.NaN()
	ds, err := dataset.New("sample", names, cols, "MEDV", target)
	require.NoError(t, err)
	return ds
}

func requirePNG(t *testing.T, path string) {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(b), len(pngMagic))
	assert.True(t, bytes.HasPrefix(b, pngMagic), "%s is not a PNG", path)
}

func TestGridShape(t *testing.T) {
	tests := []struct {
		n, cols    int
		rows, want int
	}{
		{0, 4, 0, 0},
		{1, 4, 1, 1},
		{4, 4, 1, 4},
		{5, 4, 2, 4},
		{14, 4, 4, 4},
		{3, 0, 0, 0},
	}
	for _, tt := range tests {
		rows, cols := gridShape(tt.n, tt.cols)
		assert.Equal(t, tt.rows, rows, "n=%d", tt.n)
		assert.Equal(t, tt.want, cols, "n=%d", tt.n)
	}
}

func TestLayoutFillsBlankTiles(t *testing.T) {
	ds := sample(t)
	p, err := histogram("x", ds.Target(), 10)
	require.NoError(t, err)

	grid := layout(repeat(p, 5), 4)
	require.Len(t, grid, 2)
	for _, row := range grid {
		require.Len(t, row, 4)
		for _, tile := range row {
			assert.NotNil(t, tile)
		}
	}
	assert.Same(t, p, grid[1][0])
	assert.NotSame(t, p, grid[1][1])
}

func TestFigures(t *testing.T) {
	ds := sample(t)
	corr, err := analysis.CorrelationMatrix(ds)
	require.NoError(t, err)
	dir := t.TempDir()

	tests := []struct {
		name   string
		render func(path string) error
	}{
		{"histograms", func(p string) error { return Histograms(ds, p, 0) }},
		{"heatmap", func(p string) error { return CorrelationHeatmap(corr, p) }},
		{"scatter", func(p string) error { return ScatterWithTarget(ds, []string{"RM", "LSTAT"}, p) }},
		{"pairs", func(p string) error { return PairGrid(ds, []string{"RM", "LSTAT", "MEDV"}, p) }},
		{"boxplots", func(p string) error { return Boxplots(ds, p) }},
		{"prediction", func(p string) error {
			y := ds.Target()
			pred := make([]float64, len(y))
			for i, v := range y {
				pred[i] = v + 0.5
			}
			return PredictionScatter(y, pred, p)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".png")
			require.NoError(t, tt.render(path))
			requirePNG(t, path)
		})
	}
}

func TestSVGOutput(t *testing.T) {
	ds := sample(t)
	path := filepath.Join(t.TempDir(), "hist.svg")
	require.NoError(t, Histograms(ds, path, 10))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "<svg")
}

func TestFigureErrors(t *testing.T) {
	ds := sample(t)
	dir := t.TempDir()

	err := Histograms(ds, filepath.Join(dir, "hist.bmp"), 10)
	var vErr *errors.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "path", vErr.ParamName)

	err = ScatterWithTarget(ds, []string{"NOPE"}, filepath.Join(dir, "s.png"))
	assert.Error(t, err)

	err = ScatterWithTarget(ds, nil, filepath.Join(dir, "s.png"))
	var valErr *errors.ValueError
	assert.True(t, errors.As(err, &valErr))

	err = PredictionScatter([]float64{1, 2}, []float64{1}, filepath.Join(dir, "p.png"))
	var dim *errors.DimensionError
	assert.True(t, errors.As(err, &dim))

	err = CorrelationHeatmap(&analysis.Correlation{}, filepath.Join(dir, "c.png"))
	assert.True(t, errors.As(err, &valErr))
}

func TestRenderAll(t *testing.T) {
	ds := sample(t)
	before := ds.Target()
	dir := filepath.Join(t.TempDir(), "plots")
	logger, _ := log.NewTestLogger(log.LevelDebug)

	cfg := DefaultConfig()
	cfg.TopK = 2
	cfg.Workers = 2
	cfg.Logger = logger

	paths, err := RenderAll(context.Background(), ds, dir, cfg)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "histograms.png"),
		filepath.Join(dir, "correlation.png"),
		filepath.Join(dir, "scatter_target.png"),
		filepath.Join(dir, "pairs.png"),
		filepath.Join(dir, "boxplots.png"),
	}, paths)
	for _, p := range paths {
		requirePNG(t, p)
	}

	assert.Equal(t, before, ds.Target(), "rendering leaves the dataset untouched")
	assert.True(t, logger.ContainsMessage("Plots rendered"))
	assert.True(t, logger.ContainsField(log.CountKey, 5.0))
	assert.True(t, logger.ContainsField(log.FeaturesKey, 2.0))
}

func TestRenderAllReusesCorrelation(t *testing.T) {
	ds := sample(t)
	narrow, err := ds.Select("RM")
	require.NoError(t, err)
	corr, err := analysis.CorrelationMatrix(narrow)
	require.NoError(t, err)

	logger, _ := log.NewTestLogger(log.LevelInfo)
	cfg := DefaultConfig()
	cfg.TopK = 3
	cfg.Logger = logger
	cfg.Correlation = corr

	paths, err := RenderAll(context.Background(), ds, t.TempDir(), cfg)
	require.NoError(t, err)
	assert.Len(t, paths, 5)
	// only the features in the given matrix are ranked
	assert.True(t, logger.ContainsField(log.FeaturesKey, 1.0))
}

func TestRenderAllSVG(t *testing.T) {
	ds := sample(t)
	cfg := DefaultConfig()
	cfg.Format = "svg"
	cfg.Logger, _ = log.NewTestLogger(log.LevelInfo)

	paths, err := RenderAll(context.Background(), ds, t.TempDir(), cfg)
	require.NoError(t, err)
	for _, p := range paths {
		assert.Equal(t, ".svg", filepath.Ext(p))
		assert.FileExists(t, p)
	}
}

func TestRenderAllErrors(t *testing.T) {
	ds := sample(t)
	quiet, _ := log.NewTestLogger(log.LevelInfo)

	tests := []struct {
		name  string
		cfg   Config
		param string
	}{
		{"format", Config{TopK: 3, Format: "gif", Logger: quiet}, "format"},
		{"top k", Config{TopK: 0, Format: "png", Logger: quiet}, "top_k"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RenderAll(context.Background(), ds, t.TempDir(), tt.cfg)
			var vErr *errors.ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.param, vErr.ParamName)
		})
	}

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		cfg := DefaultConfig()
		cfg.Logger = quiet
		_, err := RenderAll(ctx, ds, t.TempDir(), cfg)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func repeat[T any](v T, n int) []T {
	out := make([]T, n)
	for i := range out {
		out[i] = v
	}
	return out
}
