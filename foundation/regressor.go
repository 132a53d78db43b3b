// Package foundation implements a pretrained in-context regressor for small
// tabular data.
//
// Fit does no gradient training: it standardizes the data, fits a ridge
// prior head and keeps the training rows as context. Predict lets every
// query row attend over the context rows and averages an ensemble of members
// that each look at a fixed random subset of the features. The ensemble
// shape and attention temperature come from a pretrained Artifact.
package foundation

import (
	"math"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/biswajyotidutta/tabeda/core/model"
	"github.com/biswajyotidutta/tabeda/core/parallel"
	"github.com/biswajyotidutta/tabeda/linear"
	"github.com/biswajyotidutta/tabeda/pkg/errors"
	"github.com/biswajyotidutta/tabeda/pkg/log"
	"github.com/biswajyotidutta/tabeda/preprocessing"
)

const modelName = "foundation.Regressor"

// Regressor is the in-context regressor. Exported fields hold the fitted
// state so the model can be saved with model.SaveModel.
type Regressor struct {
	*model.StateManager

	Artifact Artifact

	XScaler *preprocessing.StandardScaler
	YScaler *preprocessing.StandardScaler
	Prior   *linear.Regression

	// Context holds the standardized training rows attended over at predict time.
	Context *mat.Dense
	// Residuals is the standardized target minus the weighted prior, per context row.
	Residuals []float64
	// Subsets lists the feature columns of each ensemble member.
	Subsets [][]int

	workers int
	logger  log.Logger
	optErr  error
}

// Option configures a Regressor.
type Option func(*Regressor)

// WithArtifact replaces the embedded artifact. A nil artifact makes
// NewRegressor fail.
func WithArtifact(a *Artifact) Option {
	return func(r *Regressor) {
		if a == nil {
			r.optErr = errors.NewValidationError("artifact", "must not be nil", nil)
			return
		}
		r.Artifact = *a
	}
}

// WithWorkers bounds the goroutines used by Predict; 0 means one per CPU.
func WithWorkers(n int) Option {
	return func(r *Regressor) {
		r.workers = n
	}
}

// WithLogger sets the logger; the process logger is used otherwise.
func WithLogger(l log.Logger) Option {
	return func(r *Regressor) {
		r.logger = l
	}
}

// NewRegressor creates an unfitted regressor from the embedded artifact.
func NewRegressor(opts ...Option) (*Regressor, error) {
	a, err := DefaultArtifact()
	if err != nil {
		return nil, err
	}
	r := &Regressor{
		StateManager: model.NewStateManager(),
		Artifact:     *a,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.optErr != nil {
		return nil, r.optErr
	}
	if err := r.Artifact.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Name implements model.Named.
func (r *Regressor) Name() string {
	return modelName
}

func (r *Regressor) eventLogger() log.Logger {
	l := r.logger
	if l == nil {
		l = log.GetLogger()
	}
	return l.With(log.ModelNameKey, modelName, log.ArtifactKey, r.Artifact.String())
}

// Fit stores the standardized training rows as context and fits the prior head.
func (r *Regressor) Fit(X, y mat.Matrix) error {
	start := time.Now()
	n, c := X.Dims()
	ny, cy := y.Dims()
	if n == 0 || c == 0 {
		return errors.NewModelError(modelName+".Fit", "empty data", errors.ErrEmptyData)
	}
	if ny != n {
		return errors.NewDimensionError(modelName+".Fit", n, ny, 0)
	}
	if cy != 1 {
		return errors.NewValueError(modelName+".Fit", "y must be a column vector")
	}
	if r.StateManager == nil {
		r.StateManager = model.NewStateManager()
	}
	r.Reset()

	xScaler := preprocessing.NewStandardScalerDefault()
	xs, err := xScaler.FitTransform(X)
	if err != nil {
		return errors.Wrap(err, modelName+".Fit")
	}
	yScaler := preprocessing.NewStandardScalerDefault()
	ys, err := yScaler.FitTransform(y)
	if err != nil {
		return errors.Wrap(err, modelName+".Fit")
	}

	prior := linear.NewRegression(linear.WithAlpha(r.Artifact.PriorAlpha))
	if err := prior.Fit(xs, ys); err != nil {
		return errors.NewModelError(modelName+".Fit", "prior head", err)
	}

	rows := r.contextRows(n)
	ctxX := mat.NewDense(len(rows), c, nil)
	ctxRes := make([]float64, len(rows))
	selected := make([]float64, c)
	for i, row := range rows {
		mat.Row(selected, row, xs)
		ctxX.SetRow(i, selected)
	}
	priorPred, err := prior.Predict(ctxX)
	if err != nil {
		return errors.Wrap(err, modelName+".Fit")
	}
	for i, row := range rows {
		ctxRes[i] = ys.At(row, 0) - r.Artifact.PriorWeight*priorPred.At(i, 0)
	}

	r.XScaler = xScaler
	r.YScaler = yScaler
	r.Prior = prior
	r.Context = ctxX
	r.Residuals = ctxRes
	r.Subsets = r.memberSubsets(c)
	r.SetFitted(c, n)

	r.eventLogger().Info("Regressor fitted",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, n,
		log.FeaturesKey, c,
		log.ContextRowsKey, len(rows),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// contextRows returns all row indices, or a seeded sample of MaxContext rows.
func (r *Regressor) contextRows(n int) []int {
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	if r.Artifact.MaxContext == 0 || n <= r.Artifact.MaxContext {
		return rows
	}
	rng := rand.New(rand.NewPCG(r.Artifact.Seed, r.Artifact.Seed^0x9e3779b97f4a7c15))
	rng.Shuffle(n, func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
	rows = rows[:r.Artifact.MaxContext]
	sort.Ints(rows)
	return rows
}

// memberSubsets draws ceil(FeatureFraction·c) features per member.
func (r *Regressor) memberSubsets(c int) [][]int {
	k := int(math.Ceil(r.Artifact.FeatureFraction * float64(c)))
	if k < 1 {
		k = 1
	}
	rng := rand.New(rand.NewPCG(r.Artifact.Seed, r.Artifact.Seed))
	subsets := make([][]int, r.Artifact.Members)
	for m := range subsets {
		perm := rng.Perm(c)[:k]
		sort.Ints(perm)
		subsets[m] = perm
	}
	return subsets
}

// Predict returns an n×1 matrix of predictions aligned with the rows of X.
func (r *Regressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if r.StateManager == nil {
		return nil, errors.NewNotFittedError(modelName, "Predict")
	}
	if err := r.RequireFitted(modelName, "Predict"); err != nil {
		return nil, err
	}
	n, c := X.Dims()
	if err := r.CheckFeatures(modelName+".Predict", c); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, errors.NewValueError(modelName+".Predict", "empty data")
	}
	start := time.Now()

	xs, err := r.XScaler.Transform(X)
	if err != nil {
		return nil, err
	}
	prior, err := r.Prior.Predict(xs)
	if err != nil {
		return nil, err
	}

	out := mat.NewDense(n, 1, nil)
	var (
		once     sync.Once
		firstErr error
	)
	parallel.ParallelizeN(n, r.workers, func(lo, hi int) {
		logits := make([]float64, len(r.Residuals))
		query := make([]float64, c)
		for i := lo; i < hi; i++ {
			mat.Row(query, i, xs)
			v := r.Artifact.PriorWeight*prior.At(i, 0) + r.attend(query, logits)
			if err := errors.CheckScalar("attention", v, i); err != nil {
				once.Do(func() { firstErr = err })
				return
			}
			out.Set(i, 0, v)
		}
	})
	if firstErr != nil {
		return nil, firstErr
	}

	pred, err := r.YScaler.InverseTransform(out)
	if err != nil {
		return nil, err
	}

	r.eventLogger().Debug("Predicted",
		log.OperationKey, log.OperationPredict,
		log.SamplesKey, n,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return pred, nil
}

// attend averages, over members, the softmax-weighted mean of the context
// residuals. Logits are the negative mean squared distance on the member's
// features divided by the temperature. logits is scratch space.
func (r *Regressor) attend(query, logits []float64) float64 {
	var total float64
	for _, subset := range r.Subsets {
		scale := 1 / (r.Artifact.Temperature * float64(len(subset)))
		for j := range logits {
			var d float64
			for _, f := range subset {
				diff := query[f] - r.Context.At(j, f)
				d += diff * diff
			}
			logits[j] = -d * scale
		}
		errors.Softmax(logits)

		var v float64
		for j, w := range logits {
			v += w * r.Residuals[j]
		}
		total += v
	}
	return total / float64(len(r.Subsets))
}
