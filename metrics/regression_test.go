package metrics

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/biswajyotidutta/tabeda/pkg/errors"
)

func TestMSE(t *testing.T) {
	tests := []struct {
		name      string
		yTrue     *mat.VecDense
		yPred     *mat.VecDense
		want      float64
		tolerance float64
		wantErr   bool
	}{
		{
			name:      "perfect prediction",
			yTrue:     mat.NewVecDense(5, []float64{24.0, 21.6, 34.7, 33.4, 36.2}),
			yPred:     mat.NewVecDense(5, []float64{24.0, 21.6, 34.7, 33.4, 36.2}),
			want:      0.0,
			tolerance: 1e-12,
		},
		{
			name:      "simple case",
			yTrue:     mat.NewVecDense(4, []float64{1.0, 2.0, 3.0, 4.0}),
			yPred:     mat.NewVecDense(4, []float64{1.5, 2.5, 2.5, 3.5}),
			want:      0.25, // 4 × 0.5² / 4
			tolerance: 1e-10,
		},
		{
			name:      "larger errors",
			yTrue:     mat.NewVecDense(3, []float64{10.0, 20.0, 30.0}),
			yPred:     mat.NewVecDense(3, []float64{12.0, 18.0, 33.0}),
			want:      17.0 / 3.0, // (4 + 4 + 9) / 3
			tolerance: 1e-10,
		},
		{
			name:    "dimension mismatch",
			yTrue:   mat.NewVecDense(3, []float64{1.0, 2.0, 3.0}),
			yPred:   mat.NewVecDense(2, []float64{1.0, 2.0}),
			wantErr: true,
		},
		{
			name:    "empty vectors",
			yTrue:   &mat.VecDense{},
			yPred:   &mat.VecDense{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MSE(tt.yTrue, tt.yPred)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, tt.tolerance)
		})
	}
}

func TestMSEErrorTypes(t *testing.T) {
	_, err := MSE(mat.NewVecDense(3, nil), mat.NewVecDense(2, nil))
	var dimErr *errors.DimensionError
	require.True(t, errors.As(err, &dimErr))
	assert.Equal(t, 3, dimErr.Expected)
	assert.Equal(t, 2, dimErr.Got)

	_, err = MSE(&mat.VecDense{}, &mat.VecDense{})
	var valErr *errors.ValueError
	assert.True(t, errors.As(err, &valErr))
}

func TestMSEMatrix(t *testing.T) {
	yTrue := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	yPred := mat.NewDense(4, 1, []float64{1.5, 2.5, 2.5, 3.5})

	got, err := MSEMatrix(yTrue, yPred)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, got, 1e-10)

	wide := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	_, err = MSEMatrix(wide, wide)
	assert.Error(t, err, "multiple columns should error")

	_, err = MSEMatrix(mat.NewDense(3, 1, nil), mat.NewDense(2, 1, nil))
	assert.Error(t, err)
}

func TestRMSEAndMAE(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{1.0, 2.0, 3.0, 4.0})
	yPred := mat.NewVecDense(4, []float64{2.0, 1.0, 4.0, 3.0})

	rmse, err := RMSE(yTrue, yPred)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, rmse, 1e-12)

	mae, err := MAE(yTrue, yPred)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, mae, 1e-12)

	_, err = MAE(yTrue, mat.NewVecDense(2, nil))
	assert.Error(t, err)
}

func TestR2Score(t *testing.T) {
	tests := []struct {
		name      string
		yTrue     *mat.VecDense
		yPred     *mat.VecDense
		want      float64
		tolerance float64
		wantErr   bool
	}{
		{
			name:      "perfect prediction",
			yTrue:     mat.NewVecDense(5, []float64{1.0, 2.0, 3.0, 4.0, 5.0}),
			yPred:     mat.NewVecDense(5, []float64{1.0, 2.0, 3.0, 4.0, 5.0}),
			want:      1.0,
			tolerance: 1e-12,
		},
		{
			name:      "mean prediction",
			yTrue:     mat.NewVecDense(4, []float64{1.0, 2.0, 3.0, 4.0}),
			yPred:     mat.NewVecDense(4, []float64{2.5, 2.5, 2.5, 2.5}),
			want:      0.0,
			tolerance: 1e-12,
		},
		{
			name:      "worse than mean baseline",
			yTrue:     mat.NewVecDense(4, []float64{1.0, 2.0, 3.0, 4.0}),
			yPred:     mat.NewVecDense(4, []float64{4.0, 3.0, 2.0, 1.0}),
			want:      -3.0, // RSS 20 / TSS 5
			tolerance: 1e-12,
		},
		{
			name:    "no variance in yTrue",
			yTrue:   mat.NewVecDense(5, []float64{3.0, 3.0, 3.0, 3.0, 3.0}),
			yPred:   mat.NewVecDense(5, []float64{2.0, 3.0, 4.0, 3.0, 3.0}),
			wantErr: true,
		},
		{
			name:    "dimension mismatch",
			yTrue:   mat.NewVecDense(3, []float64{1.0, 2.0, 3.0}),
			yPred:   mat.NewVecDense(2, []float64{1.0, 2.0}),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := R2Score(tt.yTrue, tt.yPred)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, tt.tolerance)
		})
	}
}

func TestR2ScoreConstantTarget(t *testing.T) {
	y := mat.NewVecDense(3, []float64{22, 22, 22})
	_, err := R2Score(y, y)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConstantTarget))
}

// Identity properties over random non-constant vectors.
func TestIdentityProperties(t *testing.T) {
	r := rand.New(rand.NewPCG(42, 42))
	for trial := 0; trial < 50; trial++ {
		n := 2 + r.IntN(300)
		y := mat.NewVecDense(n, nil)
		for i := 0; i < n; i++ {
			y.SetVec(i, r.NormFloat64()*9+22)
		}

		mse, err := MSE(y, y)
		require.NoError(t, err)
		assert.Equal(t, 0.0, mse)

		r2, err := R2Score(y, y)
		require.NoError(t, err)
		assert.Equal(t, 1.0, r2)
	}
}

func TestEvaluate(t *testing.T) {
	yTrue := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	yPred := mat.NewDense(4, 1, []float64{1.5, 2.5, 2.5, 3.5})

	report, err := Evaluate(yTrue, yPred)
	require.NoError(t, err)
	assert.Equal(t, 4, report.Samples)
	assert.InDelta(t, 0.25, report.MSE, 1e-12)
	assert.InDelta(t, 0.5, report.RMSE, 1e-12)
	assert.InDelta(t, 0.5, report.MAE, 1e-12)
	assert.InDelta(t, 0.8, report.R2, 1e-12) // 1 - 1/5

	_, err = Evaluate(mat.NewDense(2, 1, []float64{5, 5}), mat.NewDense(2, 1, []float64{4, 6}))
	assert.True(t, errors.Is(err, errors.ErrConstantTarget))

	_, err = Evaluate(yTrue, mat.NewDense(3, 1, nil))
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))
	assert.False(t, math.IsNaN(report.R2))
}

func BenchmarkMSE(b *testing.B) {
	size := 10000
	yTrue := mat.NewVecDense(size, nil)
	yPred := mat.NewVecDense(size, nil)
	for i := 0; i < size; i++ {
		yTrue.SetVec(i, float64(i))
		yPred.SetVec(i, float64(i)+0.1*float64(i%10))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = MSE(yTrue, yPred)
	}
}
