// Package model defines the estimator contracts shared by the regressors and
// the state and persistence helpers they are built on.
package model

import "gonum.org/v1/gonum/mat"

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる。y は n×1 の列ベクトル。
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を行う。戻り値は X と行が対応する n×1 行列。
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Regressor combines Fit and Predict; every regressor in this module
// satisfies it.
type Regressor interface {
	Fitter
	Predictor
}

// Named is implemented by models that report a stable name for logs and
// error messages.
type Named interface {
	Name() string
}
