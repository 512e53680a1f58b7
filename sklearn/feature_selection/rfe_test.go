package feature_selection

import (
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/YuminosukeSato/featsel/core/model"
	"github.com/YuminosukeSato/featsel/pkg/errors"
	"github.com/YuminosukeSato/featsel/sklearn/linear_model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestRFE_KeepsInformativeFeatures(t *testing.T) {
	X, y := separable(t)
	rfe := NewRFE(linear_model.NewLogisticRegression(), WithNFeaturesToSelect(2))
	require.NoError(t, rfe.Fit(X, y))

	assert.Equal(t, []bool{true, false, false, true, false, false}, rfe.Support())
	assert.Equal(t, 2, rfe.NFeatures())

	ranking := rfe.Ranking()
	sorted := append([]int(nil), ranking...)
	sort.Ints(sorted)
	assert.Equal(t, []int{1, 1, 2, 3, 4, 5}, sorted, "one feature leaves per round")
	for j, keep := range rfe.Support() {
		assert.Equal(t, keep, ranking[j] == 1)
	}

	Xs, err := rfe.Transform(X)
	require.NoError(t, err)
	requireSameMatrix(t, maskColumns(X, rfe.Support()), Xs)

	acc, err := rfe.Score(X, y)
	require.NoError(t, err)
	assert.Greater(t, acc, 0.9)

	pred, err := rfe.Predict(X)
	require.NoError(t, err)
	r, _ := pred.Dims()
	assert.Equal(t, 150, r)

	_, coefCols := rfe.Estimator().(*linear_model.LogisticRegression).Coef().Dims()
	assert.Equal(t, 2, coefCols, "final estimator is fitted on the survivors")
}

func TestRFE_StepFraction(t *testing.T) {
	X, y := separable(t)
	rfe := NewRFE(linear_model.NewLogisticRegression(),
		WithNFeaturesToSelect(2), WithStep(0.5))
	require.NoError(t, rfe.Fit(X, y))

	sorted := rfe.Ranking()
	sort.Ints(sorted)
	// 6 -> 3 -> 2
	assert.Equal(t, []int{1, 1, 2, 3, 3, 3}, sorted)
	assert.True(t, rfe.Support()[0])
}

func TestRFE_DefaultKeepsHalf(t *testing.T) {
	X, y := separable(t)
	rfe := NewRFE(linear_model.NewLogisticRegression())
	Xs, err := rfe.FitTransform(X, y)
	require.NoError(t, err)

	_, c := Xs.Dims()
	assert.Equal(t, 3, c)
	assert.True(t, rfe.Support()[0])
	assert.True(t, rfe.Support()[3])
}

func TestRFE_TooManyFeaturesRequested(t *testing.T) {
	warnings := captureWarnings(t)
	X, y := separable(t)
	rfe := NewRFE(linear_model.NewLogisticRegression(), WithNFeaturesToSelect(10))
	require.NoError(t, rfe.Fit(X, y))

	assert.Equal(t, []int{1, 1, 1, 1, 1, 1}, rfe.Ranking())
	assert.Equal(t, 1, countSelectionWarnings(*warnings))
}

func TestRFE_Deterministic(t *testing.T) {
	X, y := separable(t)
	a := NewRFE(linear_model.NewLogisticRegression(), WithNFeaturesToSelect(3))
	b := NewRFE(linear_model.NewLogisticRegression(), WithNFeaturesToSelect(3))
	require.NoError(t, a.Fit(X, y))
	require.NoError(t, b.Fit(X, y))
	assert.Equal(t, a.Ranking(), b.Ranking())
}

func TestRFE_TiesEliminateLowerIndexFirst(t *testing.T) {
	rfe := NewRFE(&unitCoef{}, WithNFeaturesToSelect(1))
	require.NoError(t, rfe.Fit(mat.NewDense(6, 3, nil), mat.NewDense(6, 1, nil)))
	assert.Equal(t, []int{3, 2, 1}, rfe.Ranking())
}

func TestRFE_FeatureScaleChangesRanking(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	n := 120
	X := mat.NewDense(n, 3, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		k := float64(i % 3)
		y.Set(i, 0, k)
		X.Set(i, 0, k+0.5*rng.NormFloat64())
		X.Set(i, 1, 0.5*k+0.5*rng.NormFloat64())
		X.Set(i, 2, rng.NormFloat64())
	}
	ols := linear_model.NewLasso(linear_model.WithAlpha(0))

	before := NewRFE(ols, WithNFeaturesToSelect(1))
	require.NoError(t, before.Fit(X, y))
	require.Less(t, before.Ranking()[0], 3)

	scaled := mat.DenseCopyOf(X)
	for i := 0; i < n; i++ {
		scaled.Set(i, 0, 1000*X.At(i, 0))
	}
	after := NewRFE(ols, WithNFeaturesToSelect(1))
	require.NoError(t, after.Fit(scaled, y))
	assert.Equal(t, 3, after.Ranking()[0], "a column measured in larger units gets a tiny coefficient")
}

func TestRFE_Errors(t *testing.T) {
	X, y := separable(t)

	err := NewRFE(linear_model.NewLogisticRegression(), WithStep(0)).Fit(X, y)
	var ve *errors.ValidationError
	assert.True(t, errors.As(err, &ve), "got %v", err)

	err = NewRFE(linear_model.NewLogisticRegression()).Fit(X, mat.NewDense(3, 1, nil))
	var de *errors.DimensionError
	assert.True(t, errors.As(err, &de), "got %v", err)

	err = NewRFE(stub{}).Fit(X, y)
	assert.Error(t, err, "an estimator without importances cannot be ranked")

	rfe := NewRFE(linear_model.NewLogisticRegression(), WithNFeaturesToSelect(2))
	require.NoError(t, rfe.Fit(X, y))
	_, err = rfe.Transform(mat.NewDense(2, 5, nil))
	assert.True(t, errors.As(err, &de), "got %v", err)
}

func TestResolveStep(t *testing.T) {
	tests := []struct {
		step float64
		d    int
		want int
		ok   bool
	}{
		{1, 10, 1, true},
		{3, 10, 3, true},
		{2.7, 10, 2, true},
		{0.25, 10, 2, true},
		{0.01, 10, 1, true},
		{0, 10, 0, false},
		{-1, 10, 0, false},
	}
	for _, tt := range tests {
		got, err := resolveStep(tt.step, tt.d)
		if tt.ok {
			require.NoError(t, err)
			assert.Equal(t, tt.want, got, "step %v", tt.step)
		} else {
			assert.Error(t, err, "step %v", tt.step)
		}
	}
}

// unitCoef reports a coefficient of 1 for every column it was fitted on.
type unitCoef struct {
	stub
	coef *mat.Dense
}

func (u *unitCoef) Fit(X, _ mat.Matrix) error {
	_, d := X.Dims()
	u.coef = mat.NewDense(1, d, nil)
	for j := 0; j < d; j++ {
		u.coef.Set(0, j, 1)
	}
	return nil
}
func (u *unitCoef) Clone() model.Estimator { return &unitCoef{} }
func (u *unitCoef) Coef() *mat.Dense       { return u.coef }
