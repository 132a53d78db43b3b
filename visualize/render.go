package visualize

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/biswajyotidutta/tabeda/analysis"
	"github.com/biswajyotidutta/tabeda/dataset"
	"github.com/biswajyotidutta/tabeda/pkg/errors"
	"github.com/biswajyotidutta/tabeda/pkg/log"
)

// Config controls RenderAll.
type Config struct {
	// TopK is the number of target-correlated features drawn in the scatter
	// and pair figures.
	TopK int
	// Bins is the histogram bin count; 0 means DefaultBins.
	Bins int
	// Workers bounds concurrent renders; 0 means one per CPU.
	Workers int
	// Format is "png" or "svg"; empty means "png".
	Format string
	// Logger receives one line per written file; the process logger is used when nil.
	Logger log.Logger
	// Correlation reuses a matrix already computed for ds, e.g.
	// analysis.Summary.Correlation; it is computed when nil.
	Correlation *analysis.Correlation
}

// DefaultConfig returns the settings used by the command.
func DefaultConfig() Config {
	return Config{TopK: 5, Bins: DefaultBins, Format: "png"}
}

type task struct {
	name   string
	render func(path string) error
}

// RenderAll writes every exploration figure into dir and returns the written
// paths in a fixed order. Figures render concurrently; a panic inside the
// plotting library becomes a PanicError instead of crashing the process.
func RenderAll(ctx context.Context, ds *dataset.Dataset, dir string, cfg Config) ([]string, error) {
	if cfg.Format == "" {
		cfg.Format = "png"
	}
	if cfg.Format != "png" && cfg.Format != "svg" {
		return nil, errors.NewValidationError("format", "must be png or svg", cfg.Format)
	}
	if cfg.TopK < 1 {
		return nil, errors.NewValidationError("top_k", "must be at least 1", cfg.TopK)
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.GetLogger()
	}
	logger = logger.With(log.OperationKey, log.OperationRender, log.DatasetIDKey, ds.ID)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create %s", dir)
	}

	corr := cfg.Correlation
	if corr == nil {
		var err error
		if corr, err = analysis.CorrelationMatrix(ds); err != nil {
			return nil, err
		}
	}
	top, err := analysis.TopCorrelatedFrom(corr, ds, cfg.TopK)
	if err != nil {
		return nil, err
	}
	features := make([]string, len(top))
	for i, r := range top {
		features[i] = r.Name
	}
	pairs := append(append([]string(nil), features...), ds.TargetName)

	tasks := []task{
		{"histograms", func(p string) error { return Histograms(ds, p, cfg.Bins) }},
		{"correlation", func(p string) error { return CorrelationHeatmap(corr, p) }},
		{"scatter_target", func(p string) error { return ScatterWithTarget(ds, features, p) }},
		{"pairs", func(p string) error { return PairGrid(ds, pairs, p) }},
		{"boxplots", func(p string) error { return Boxplots(ds, p) }},
	}

	paths := make([]string, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, t := range tasks {
		path := filepath.Join(dir, t.name+"."+cfg.Format)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			if err := errors.SafeExecute("render "+t.name, func() error { return t.render(path) }); err != nil {
				return errors.Wrapf(err, "render %s", t.name)
			}
			paths[i] = path
			logger.Debug("Plot written",
				log.PathKey, path,
				log.DurationMsKey, time.Since(start).Milliseconds(),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Info("Plots rendered", log.CountKey, len(paths), log.FeaturesKey, len(features), log.PathKey, dir)
	return paths, nil
}
