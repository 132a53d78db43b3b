package split

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/biswajyotidutta/tabeda/core/model"
	"github.com/biswajyotidutta/tabeda/metrics"
	"github.com/biswajyotidutta/tabeda/pkg/errors"
	"github.com/biswajyotidutta/tabeda/pkg/log"
)

// Fold represents a single fold in cross-validation
type Fold struct {
	TrainIndices []int
	TestIndices  []int
}

// KFold implements k-fold cross-validation splitter
type KFold struct {
	NSplits    int
	Shuffle    bool
	RandomSeed uint64
}

// NewKFold creates a new k-fold splitter
func NewKFold(nSplits int, shuffle bool, randomSeed uint64) (*KFold, error) {
	if nSplits < 2 {
		return nil, errors.NewValidationError("n_splits", "must be at least 2", nSplits)
	}
	return &KFold{
		NSplits:    nSplits,
		Shuffle:    shuffle,
		RandomSeed: randomSeed,
	}, nil
}

// Split generates train/test indices for each fold. The first n % NSplits
// folds get one extra test sample.
func (kf *KFold) Split(n int) ([]Fold, error) {
	if n < kf.NSplits {
		return nil, errors.NewValidationError("n_splits",
			"cannot exceed the number of samples", kf.NSplits)
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	if kf.Shuffle {
		indices = Permutation(n, kf.RandomSeed)
	}

	folds := make([]Fold, kf.NSplits)
	foldSize := n / kf.NSplits
	remainder := n % kf.NSplits

	current := 0
	for i := 0; i < kf.NSplits; i++ {
		testSize := foldSize
		if i < remainder {
			testSize++
		}

		test := append([]int(nil), indices[current:current+testSize]...)
		train := make([]int, 0, n-testSize)
		train = append(train, indices[:current]...)
		train = append(train, indices[current+testSize:]...)

		folds[i] = Fold{TrainIndices: train, TestIndices: test}
		current += testSize
	}
	return folds, nil
}

// CrossValScore fits a fresh model from newModel on each fold and returns the
// R² of each fold's test partition, in fold order. Folds run concurrently.
func CrossValScore(ctx context.Context, newModel func() model.Regressor, X mat.Matrix, y mat.Vector, kf *KFold) ([]float64, error) {
	n, _ := X.Dims()
	if y.Len() != n {
		return nil, errors.NewDimensionError("CrossValScore", n, y.Len(), 0)
	}
	folds, err := kf.Split(n)
	if err != nil {
		return nil, err
	}

	logger := log.GetLogger().With(log.ComponentKey, "split", log.OperationKey, "cross_validate")
	scores := make([]float64, len(folds))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, fold := range folds {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m := newModel()
			if err := m.Fit(Rows(X, fold.TrainIndices), Elements(y, fold.TrainIndices)); err != nil {
				return errors.Wrapf(err, "fold %d", i)
			}
			pred, err := m.Predict(Rows(X, fold.TestIndices))
			if err != nil {
				return errors.Wrapf(err, "fold %d", i)
			}
			report, err := metrics.Evaluate(Elements(y, fold.TestIndices), pred)
			if err != nil {
				return errors.Wrapf(err, "fold %d", i)
			}
			scores[i] = report.R2
			logger.Debug("Fold scored", log.FoldKey, i, log.R2ScoreKey, report.R2, log.MSEKey, report.MSE)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}
