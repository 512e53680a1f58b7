package feature_selection

import (
	"math"

	"github.com/YuminosukeSato/featsel/core/model"
	"github.com/YuminosukeSato/featsel/pkg/errors"
)

// Aggregation collapses a coefficient matrix with one row per class into
// one importance per feature.
type Aggregation int

const (
	// SquaredSum sums squared coefficients over classes. RFE ranks by it.
	SquaredSum Aggregation = iota
	// AbsSum sums absolute coefficients over classes (the L1 norm of each
	// column). SelectFromModel thresholds it.
	AbsSum
)

// FeatureImportancer is implemented by estimators that expose importances
// directly instead of linear coefficients.
type FeatureImportancer interface {
	FeatureImportances() []float64
}

// Importances returns one non-negative importance per feature of a fitted
// estimator. Estimators must implement model.CoefEstimator or
// FeatureImportancer.
func Importances(est model.Estimator, agg Aggregation) ([]float64, error) {
	switch e := est.(type) {
	case model.CoefEstimator:
		coef := e.Coef()
		if coef == nil {
			return nil, errors.NewNotFittedError("Importances", "Coef")
		}
		k, d := coef.Dims()
		imp := make([]float64, d)
		for c := 0; c < k; c++ {
			for j := 0; j < d; j++ {
				v := coef.At(c, j)
				if agg == SquaredSum {
					imp[j] += v * v
				} else {
					imp[j] += math.Abs(v)
				}
			}
		}
		return imp, nil
	case FeatureImportancer:
		imp := e.FeatureImportances()
		if imp == nil {
			return nil, errors.NewNotFittedError("Importances", "FeatureImportances")
		}
		return append([]float64(nil), imp...), nil
	default:
		return nil, errors.NewValueError("Importances",
			"estimator exposes neither Coef nor FeatureImportances")
	}
}
