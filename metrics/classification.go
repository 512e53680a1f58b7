// Package metrics provides scoring functions for fitted models.
//
// Targets and predictions are n×1 column matrices, as returned by
// Predict on every estimator in this module.
package metrics

import (
	"github.com/YuminosukeSato/featsel/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// checkColumns validates that yTrue and yPred are non-empty n×1 columns of
// equal length and returns n.
func checkColumns(op string, yTrue, yPred mat.Matrix) (int, error) {
	if yTrue == nil || yPred == nil {
		return 0, errors.NewValueError(op, "nil input")
	}
	rTrue, cTrue := yTrue.Dims()
	rPred, cPred := yPred.Dims()
	if rTrue == 0 {
		return 0, errors.NewValueError(op, "empty input")
	}
	if cTrue != 1 || cPred != 1 {
		return 0, errors.NewValueError(op, "must be a column vector (n×1 matrix)")
	}
	if rTrue != rPred {
		return 0, errors.NewDimensionError(op, rTrue, rPred, 0)
	}
	return rTrue, nil
}

// AccuracyScore は正解率（予測が一致したサンプルの割合）を計算する
func AccuracyScore(yTrue, yPred mat.Matrix) (float64, error) {
	n, err := checkColumns("AccuracyScore", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.At(i, 0) == yPred.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// ConfusionMatrix は混同行列を計算する
//
// 行が正解クラス、列が予測クラスで、C[i][j] は正解 i を j と予測したサンプル数。
// ラベルは 0..nClasses-1 のクラスインデックスでなければならない。
func ConfusionMatrix(yTrue, yPred mat.Matrix, nClasses int) (*mat.Dense, error) {
	n, err := checkColumns("ConfusionMatrix", yTrue, yPred)
	if err != nil {
		return nil, err
	}
	if nClasses <= 0 {
		return nil, errors.NewValidationError("nClasses", "must be positive", nClasses)
	}

	cm := mat.NewDense(nClasses, nClasses, nil)
	for i := 0; i < n; i++ {
		t, p := int(yTrue.At(i, 0)), int(yPred.At(i, 0))
		if t < 0 || t >= nClasses || p < 0 || p >= nClasses {
			return nil, errors.NewValueError("ConfusionMatrix", "label outside [0, nClasses)")
		}
		cm.Set(t, p, cm.At(t, p)+1)
	}
	return cm, nil
}

// PerClassRecall は混同行列から各クラスの再現率を計算する
// サンプルのないクラスの再現率は0とする
func PerClassRecall(cm mat.Matrix) []float64 {
	k, _ := cm.Dims()
	recall := make([]float64, k)
	for i := 0; i < k; i++ {
		total := 0.0
		for j := 0; j < k; j++ {
			total += cm.At(i, j)
		}
		recall[i] = errors.SafeDivide(cm.At(i, i), total)
	}
	return recall
}
