package feature_selection

import (
	"testing"

	"github.com/YuminosukeSato/featsel/pkg/errors"
	"github.com/YuminosukeSato/featsel/sklearn/linear_model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Importances of this estimator are [0.2, 1.0, 0, 3, 0.4]: mean 0.92,
// median 0.4.
func fixedImportances() *fixedCoef {
	return &fixedCoef{coef: mat.NewDense(2, 5, []float64{
		0.1, -0.5, 0, 2, 0.4,
		0.1, 0.5, 0, -1, 0,
	})}
}

func TestSelectFromModel_Thresholds(t *testing.T) {
	X := mat.NewDense(3, 5, nil)
	tests := []struct {
		name      string
		opts      []Option
		threshold float64
		support   []bool
	}{
		{"default is mean", nil, 0.92, []bool{false, true, false, true, false}},
		{"mean", []Option{WithThreshold("mean")}, 0.92, []bool{false, true, false, true, false}},
		{"median", []Option{WithThreshold("median")}, 0.4, []bool{false, true, false, true, true}},
		{"scaled mean", []Option{WithThreshold("0.1*mean")}, 0.092, []bool{true, true, false, true, true}},
		{"scaled median", []Option{WithThreshold(" 2 * median ")}, 0.8, []bool{false, true, false, true, false}},
		{"number", []Option{WithThreshold("0.2")}, 0.2, []bool{true, true, false, true, true}},
		{"value", []Option{WithThresholdValue(1.5)}, 1.5, []bool{false, false, false, true, false}},
		{"zero keeps all", []Option{WithThreshold("0")}, 0, []bool{true, true, true, true, true}},
		{"max features", []Option{WithThreshold("0"), WithMaxFeatures(2)}, 0, []bool{false, true, false, true, false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := append([]Option{WithPrefit(true)}, tt.opts...)
			sfm := NewSelectFromModel(fixedImportances(), opts...)
			require.NoError(t, sfm.Fit(X, nil))

			assert.InDelta(t, tt.threshold, sfm.Threshold(), 1e-12)
			assert.Equal(t, tt.support, sfm.Support())
			for j, keep := range tt.support {
				want := 2
				if keep {
					want = 1
				}
				assert.Equal(t, want, sfm.Ranking()[j])
			}
		})
	}
}

func TestSelectFromModel_L1DefaultThreshold(t *testing.T) {
	est := &sparseCoef{*fixedImportances()}
	sfm := NewSelectFromModel(est, WithPrefit(true))
	require.NoError(t, sfm.Fit(mat.NewDense(3, 5, nil), nil))

	assert.Equal(t, l1Threshold, sfm.Threshold())
	assert.Equal(t, []bool{true, true, false, true, true}, sfm.Support(), "only exact zeros are dropped")
	assert.Equal(t, []float64{0.2, 1.0, 0, 3, 0.4}, sfm.Importances())
}

func TestSelectFromModel_InvalidThreshold(t *testing.T) {
	for _, expr := range []string{"foo", "2*max", "x*mean", "1.5*0.3"} {
		sfm := NewSelectFromModel(fixedImportances(), WithPrefit(true), WithThreshold(expr))
		err := sfm.Fit(mat.NewDense(3, 5, nil), nil)
		var ve *errors.ValidationError
		assert.True(t, errors.As(err, &ve), "%q: got %v", expr, err)
		assert.False(t, sfm.IsFitted())
	}

	sfm := NewSelectFromModel(fixedImportances(), WithPrefit(true), WithMaxFeatures(6))
	assert.Error(t, sfm.Fit(mat.NewDense(3, 5, nil), nil))

	sfm = NewSelectFromModel(fixedImportances(), WithPrefit(true))
	var de *errors.DimensionError
	err := sfm.Fit(mat.NewDense(3, 4, nil), nil)
	assert.True(t, errors.As(err, &de), "got %v", err)
}

func TestSelectFromModel_NothingSelected(t *testing.T) {
	warnings := captureWarnings(t)
	X := mat.NewDense(3, 5, nil)
	sfm := NewSelectFromModel(fixedImportances(), WithPrefit(true), WithThresholdValue(10))
	require.NoError(t, sfm.Fit(X, nil))

	assert.Equal(t, 0, sfm.NFeatures())
	assert.Equal(t, 1, countSelectionWarnings(*warnings))
	_, err := sfm.Transform(X)
	assert.Error(t, err)
}

func TestSelectFromModel_LassoLogistic(t *testing.T) {
	X, y := separable(t)
	lr := linear_model.NewLogisticRegression(
		linear_model.WithLRPenalty(linear_model.PenaltyL1),
		linear_model.WithLRC(0.05),
	)
	sfm := NewSelectFromModel(lr)
	Xs, err := sfm.FitTransform(X, y)
	require.NoError(t, err)

	assert.False(t, lr.IsFitted(), "Fit works on a clone")
	assert.Equal(t, l1Threshold, sfm.Threshold())
	support := sfm.Support()
	assert.True(t, support[0])
	assert.True(t, support[3])
	assert.Less(t, sfm.NFeatures(), 6)
	requireSameMatrix(t, maskColumns(X, support), Xs)

	imp := sfm.Importances()
	for j, keep := range support {
		assert.Equal(t, keep, imp[j] >= l1Threshold)
	}
}

func TestSelectFromModel_LassoRegression(t *testing.T) {
	X, _ := separable(t)
	n, _ := X.Dims()
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		y.Set(i, 0, 3*X.At(i, 0)-2*X.At(i, 3))
	}
	sfm := NewSelectFromModel(linear_model.NewLasso(linear_model.WithAlpha(0.1)))
	require.NoError(t, sfm.Fit(X, y))
	assert.Equal(t, []bool{true, false, false, true, false, false}, sfm.Support())
}

func TestSelectFromModel_L2MeanThreshold(t *testing.T) {
	X, y := separable(t)
	sfm := NewSelectFromModel(linear_model.NewLogisticRegression())
	require.NoError(t, sfm.Fit(X, y))

	imp := sfm.Importances()
	assert.InDelta(t, stat.Mean(imp, nil), sfm.Threshold(), 1e-12)
	for j, keep := range sfm.Support() {
		assert.Equal(t, keep, imp[j] >= sfm.Threshold())
	}
	assert.True(t, sfm.Support()[0])
}

func TestSelectFromModel_Prefit(t *testing.T) {
	X, y := separable(t)
	lr := linear_model.NewLogisticRegression()
	require.NoError(t, lr.Fit(X, y))

	sfm := NewSelectFromModel(lr, WithPrefit(true))
	require.NoError(t, sfm.Fit(X, nil))
	assert.Same(t, lr, sfm.Estimator())

	err := NewSelectFromModel(linear_model.NewLogisticRegression(), WithPrefit(true)).Fit(X, nil)
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf), "got %v", err)
}
