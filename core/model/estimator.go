// Package model defines the interfaces shared by estimators, transformers
// and feature selectors, and the fitted-state bookkeeping they embed.
package model

import "gonum.org/v1/gonum/mat"

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を行う (n_samples × 1)
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Scorer はスコアを計算できるモデルのインターフェース
type Scorer interface {
	// Score は分類器なら正解率、回帰器なら決定係数を返す
	Score(X, y mat.Matrix) (float64, error)
}

// Estimator is a supervised model that selectors can refit many times.
// Clone returns an unfitted copy with the same hyperparameters.
type Estimator interface {
	Fitter
	Predictor
	Scorer
	Clone() Estimator
}

// CoefEstimator is an Estimator with a linear coefficient matrix of shape
// (n_targets × n_features); binary classifiers and regressors have one row.
// Feature selectors derive importances from it.
type CoefEstimator interface {
	Estimator
	Coef() *mat.Dense
}

// Classifier is an Estimator that predicts class indices.
type Classifier interface {
	Estimator
	PredictProba(X mat.Matrix) (mat.Matrix, error)
	Classes() []int
}

// Transformer はデータ変換のインターフェース (教師なし)
type Transformer interface {
	Fit(X mat.Matrix) error
	Transform(X mat.Matrix) (mat.Matrix, error)
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// Selector is a supervised column selector: Fit decides which columns to
// keep, Transform keeps exactly those columns in their original order.
type Selector interface {
	Fitter
	Transform(X mat.Matrix) (mat.Matrix, error)
	FitTransform(X, y mat.Matrix) (mat.Matrix, error)
	Support() []bool
	Ranking() []int
}
