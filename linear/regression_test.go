package linear

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/biswajyotidutta/tabeda/core/model"
	"github.com/biswajyotidutta/tabeda/pkg/errors"
)

func TestRegressionFitPredict(t *testing.T) {
	tests := []struct {
		name          string
		opts          []Option
		X             *mat.Dense
		y             *mat.Dense
		wantCoef      []float64
		wantIntercept float64
	}{
		{
			name:          "y = 2x + 1",
			X:             mat.NewDense(4, 1, []float64{1, 2, 3, 4}),
			y:             mat.NewDense(4, 1, []float64{3, 5, 7, 9}),
			wantCoef:      []float64{2},
			wantIntercept: 1,
		},
		{
			name:          "two features",
			X:             mat.NewDense(5, 2, []float64{1, 0, 0, 1, 1, 1, 2, 1, 3, 5}),
			y:             mat.NewDense(5, 1, []float64{4, -1, 2, 5, 0}), // 3a - 2b + 1
			wantCoef:      []float64{3, -2},
			wantIntercept: 1,
		},
		{
			name:          "no intercept",
			opts:          []Option{WithFitIntercept(false)},
			X:             mat.NewDense(4, 1, []float64{1, 2, 3, 4}),
			y:             mat.NewDense(4, 1, []float64{2, 4, 6, 8}),
			wantCoef:      []float64{2},
			wantIntercept: 0,
		},
		{
			name:          "parallel design matrix",
			opts:          []Option{WithParallelThreshold(1)},
			X:             mat.NewDense(4, 1, []float64{1, 2, 3, 4}),
			y:             mat.NewDense(4, 1, []float64{3, 5, 7, 9}),
			wantCoef:      []float64{2},
			wantIntercept: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lr := NewRegression(tt.opts...)
			require.NoError(t, lr.Fit(tt.X, tt.y))
			assert.InDeltaSlice(t, tt.wantCoef, lr.Coef, 1e-9)
			assert.InDelta(t, tt.wantIntercept, lr.Intercept, 1e-9)

			pred, err := lr.Predict(tt.X)
			require.NoError(t, err)
			rows, cols := pred.Dims()
			assert.Equal(t, tt.X.RawMatrix().Rows, rows)
			assert.Equal(t, 1, cols)
			assert.True(t, mat.EqualApprox(tt.y, pred, 1e-9))

			score, err := lr.Score(tt.X, tt.y)
			require.NoError(t, err)
			assert.InDelta(t, 1.0, score, 1e-9)
		})
	}
}

func TestRidgeShrinksCoefficients(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := mat.NewDense(4, 1, []float64{3, 5, 7, 9})

	ols := NewRegression()
	require.NoError(t, ols.Fit(X, y))
	ridge := NewRegression(WithAlpha(5))
	require.NoError(t, ridge.Fit(X, y))

	assert.Equal(t, "linear", ols.Name())
	assert.Equal(t, "ridge", ridge.Name())
	assert.Less(t, ridge.Coef[0], ols.Coef[0])
	assert.Greater(t, ridge.Coef[0], 0.0)
}

func TestRidgeHandlesCollinearFeatures(t *testing.T) {
	// second column duplicates the first, OLS is singular
	X := mat.NewDense(4, 2, []float64{1, 1, 2, 2, 3, 3, 4, 4})
	y := mat.NewDense(4, 1, []float64{2, 4, 6, 8})

	err := NewRegression().Fit(X, y)
	assert.True(t, errors.Is(err, errors.ErrSingularMatrix))

	ridge := NewRegression(WithAlpha(0.1))
	require.NoError(t, ridge.Fit(X, y))
	assert.InDelta(t, ridge.Coef[0], ridge.Coef[1], 1e-9)
}

func TestRegressionErrors(t *testing.T) {
	lr := NewRegression()

	_, err := lr.Predict(mat.NewDense(1, 1, nil))
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))

	err = lr.Fit(mat.NewDense(3, 1, []float64{1, 2, 3}), mat.NewDense(2, 1, []float64{1, 2}))
	var dim *errors.DimensionError
	assert.True(t, errors.As(err, &dim))

	err = lr.Fit(mat.NewDense(2, 1, []float64{1, 2}), mat.NewDense(2, 2, nil))
	var ve *errors.ValueError
	assert.True(t, errors.As(err, &ve))

	err = NewRegression(WithAlpha(-1)).Fit(mat.NewDense(2, 1, []float64{1, 2}), mat.NewDense(2, 1, []float64{1, 2}))
	var vErr *errors.ValidationError
	assert.True(t, errors.As(err, &vErr))

	require.NoError(t, lr.Fit(mat.NewDense(3, 1, []float64{1, 2, 3}), mat.NewDense(3, 1, []float64{1, 2, 4})))
	_, err = lr.Predict(mat.NewDense(1, 2, nil))
	require.True(t, errors.As(err, &dim))
	assert.Equal(t, 1, dim.Expected)
	assert.Equal(t, 2, dim.Got)
}

func TestRegressionPersistence(t *testing.T) {
	X, y := createBenchmarkData(50, 3)
	lr := NewRegression(WithAlpha(0.5))
	require.NoError(t, lr.Fit(X, y))

	var buf bytes.Buffer
	require.NoError(t, model.SaveModelToWriter(lr, &buf))

	var loaded Regression
	require.NoError(t, model.LoadModelFromReader(&loaded, &buf))

	want, err := lr.Predict(X)
	require.NoError(t, err)
	got, err := loaded.Predict(X)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(want, got, 1e-12))
	assert.Equal(t, 0.5, loaded.Alpha)
}
