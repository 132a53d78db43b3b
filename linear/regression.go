// Package linear implements the least-squares baseline regressor and the
// ridge head used inside the foundation regressor.
package linear

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/biswajyotidutta/tabeda/core/model"
	"github.com/biswajyotidutta/tabeda/core/parallel"
	"github.com/biswajyotidutta/tabeda/metrics"
	"github.com/biswajyotidutta/tabeda/pkg/errors"
)

// 並列処理の閾値（この値以下の行数では逐次処理を使用）
const defaultParallelThreshold = 1000

// Regression は正規方程式で解く線形回帰モデル（Alpha > 0 でリッジ回帰）
type Regression struct {
	*model.StateManager

	FitIntercept bool
	Alpha        float64

	Coef      []float64 // 重み（係数）
	Intercept float64   // 切片

	parallelThreshold int
}

// NewRegression は新しい線形回帰モデルを作成する
//
// 使用例:
//
//	reg := linear.NewRegression(linear.WithAlpha(1.0))
//	err := reg.Fit(X, y)
func NewRegression(opts ...Option) *Regression {
	lr := &Regression{
		StateManager:      model.NewStateManager(),
		FitIntercept:      true,
		parallelThreshold: defaultParallelThreshold,
	}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// Name returns "linear" or "ridge" depending on Alpha.
func (lr *Regression) Name() string {
	if lr.Alpha > 0 {
		return "ridge"
	}
	return "linear"
}

// Fit はモデルを訓練データで学習させる
// 正規方程式 w = (X^T X + αI)^(-1) X^T y を使用
func (lr *Regression) Fit(X, y mat.Matrix) error {
	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return errors.NewModelError("Regression.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return errors.NewDimensionError("Regression.Fit", r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("Regression.Fit", "y must be a column vector")
	}
	if lr.Alpha < 0 {
		return errors.NewValidationError("alpha", "must be non-negative", lr.Alpha)
	}
	if lr.StateManager == nil {
		lr.StateManager = model.NewStateManager()
	}

	// 切片項のために X の先頭に 1 の列を追加
	offset := 0
	if lr.FitIntercept {
		offset = 1
	}
	design := mat.NewDense(r, c+offset, nil)

	threshold := lr.parallelThreshold
	if threshold <= 0 {
		threshold = defaultParallelThreshold
	}
	parallel.ParallelizeWithThreshold(r, threshold, func(start, end int) {
		for i := start; i < end; i++ {
			if offset == 1 {
				design.Set(i, 0, 1.0)
			}
			for j := 0; j < c; j++ {
				design.Set(i, j+offset, X.At(i, j))
			}
		}
	})

	var xtx mat.Dense
	xtx.Mul(design.T(), design)
	for j := offset; j < c+offset; j++ {
		xtx.Set(j, j, xtx.At(j, j)+lr.Alpha)
	}

	yVec := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		yVec.SetVec(i, y.At(i, 0))
	}
	var xty mat.VecDense
	xty.MulVec(design.T(), yVec)

	var weights mat.VecDense
	if err := weights.SolveVec(&xtx, &xty); err != nil {
		return errors.NewModelError("Regression.Fit", "singular matrix", errors.ErrSingularMatrix)
	}
	if err := errors.CheckMatrix("Regression.Fit", &weights); err != nil {
		return err
	}

	lr.Intercept = 0
	if offset == 1 {
		lr.Intercept = weights.AtVec(0)
	}
	lr.Coef = make([]float64, c)
	for j := 0; j < c; j++ {
		lr.Coef[j] = weights.AtVec(j + offset)
	}

	lr.SetFitted(c, r)
	return nil
}

// Predict は入力データに対する予測を行う
func (lr *Regression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if lr.StateManager == nil {
		return nil, errors.NewNotFittedError(lr.Name(), "Predict")
	}
	if err := lr.RequireFitted(lr.Name(), "Predict"); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	if err := lr.CheckFeatures("Regression.Predict", c); err != nil {
		return nil, err
	}

	// y = X w + b
	coef := mat.NewVecDense(c, lr.Coef)
	var out mat.VecDense
	out.MulVec(X, coef)

	predictions := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		predictions.Set(i, 0, out.AtVec(i)+lr.Intercept)
	}
	return predictions, nil
}

// Score はモデルの決定係数（R²）を計算する
func (lr *Regression) Score(X, y mat.Matrix) (float64, error) {
	yPred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	report, err := metrics.Evaluate(y, yPred)
	if err != nil {
		return 0, err
	}
	return report.R2, nil
}

// String はモデルの文字列表現を返す
func (lr *Regression) String() string {
	return fmt.Sprintf("Regression(alpha=%g, fit_intercept=%t)", lr.Alpha, lr.FitIntercept)
}
