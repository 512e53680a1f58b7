package model_selection

import (
	"context"
	"sort"
	"testing"

	"github.com/YuminosukeSato/featsel/core/model"
	"github.com/YuminosukeSato/featsel/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func checkFolds(t *testing.T, folds []Fold, n int) {
	t.Helper()
	tested := make([]int, n)
	for f, fold := range folds {
		assert.True(t, sort.IntsAreSorted(fold.TestIndices), "fold %d test not sorted", f)
		assert.True(t, sort.IntsAreSorted(fold.TrainIndices), "fold %d train not sorted", f)
		assert.Equal(t, n, len(fold.TestIndices)+len(fold.TrainIndices))
		for _, idx := range fold.TestIndices {
			tested[idx]++
		}
	}
	for idx, c := range tested {
		assert.Equal(t, 1, c, "row %d tested %d times", idx, c)
	}
}

func TestKFold(t *testing.T) {
	X, y := imbalanced(23)
	for _, shuffle := range []bool{false, true} {
		folds, err := NewKFold(5, shuffle, 3).Split(X, y)
		require.NoError(t, err)
		require.Len(t, folds, 5)
		checkFolds(t, folds, 23)
		assert.Len(t, folds[0].TestIndices, 5)
		assert.Len(t, folds[4].TestIndices, 4)
	}

	folds, _ := NewKFold(2, false, 0).Split(mat.NewDense(4, 1, nil), nil)
	assert.Equal(t, []int{0, 1}, folds[0].TestIndices)

	_, err := NewKFold(5, false, 0).Split(mat.NewDense(3, 1, nil), nil)
	assert.Error(t, err)
	assert.Equal(t, 5, NewKFold(1, false, 0).GetNSplits())
}

func TestStratifiedKFold(t *testing.T) {
	X, y := imbalanced(100)
	skf := NewStratifiedKFold(5, true, 11)

	folds, err := skf.Split(X, y)
	require.NoError(t, err)
	require.Len(t, folds, 5)
	checkFolds(t, folds, 100)

	full := classShares(y)
	for f, fold := range folds {
		assert.Len(t, fold.TestIndices, 20)
		for label, share := range classShares(SelectRows(y, fold.TestIndices)) {
			assert.InDelta(t, full[label], share, 0.06, "fold %d class %v", f, label)
		}
	}

	again, err := skf.Split(X, y)
	require.NoError(t, err)
	assert.Equal(t, folds, again)
}

// majority always predicts the most frequent training label.
type majority struct {
	label float64
}

func (m *majority) Fit(_, y mat.Matrix) error {
	n, _ := y.Dims()
	counts := map[float64]int{}
	best := 0
	for i := 0; i < n; i++ {
		l := y.At(i, 0)
		counts[l]++
		if counts[l] > best || (counts[l] == best && l < m.label) {
			best, m.label = counts[l], l
		}
	}
	return nil
}

func (m *majority) Predict(X mat.Matrix) (mat.Matrix, error) {
	n, _ := X.Dims()
	out := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		out.Set(i, 0, m.label)
	}
	return out, nil
}

func (m *majority) Score(X, y mat.Matrix) (float64, error) {
	pred, _ := m.Predict(X)
	n, _ := y.Dims()
	hit := 0
	for i := 0; i < n; i++ {
		if pred.At(i, 0) == y.At(i, 0) {
			hit++
		}
	}
	return float64(hit) / float64(n), nil
}

func (m *majority) Clone() model.Estimator { return &majority{} }

func TestCrossValScore(t *testing.T) {
	X, y := imbalanced(100)

	scores, err := CrossValScore(context.Background(), &majority{}, X, y, NewStratifiedKFold(5, false, 0))
	require.NoError(t, err)
	require.Len(t, scores, 5)
	for _, s := range scores {
		assert.InDelta(t, 0.4, s, 1e-12)
	}
	assert.InDelta(t, 0.4, scores.Mean(), 1e-12)
	assert.InDelta(t, 0, scores.Std(), 1e-12)

	failing := func(model.Estimator, mat.Matrix, mat.Matrix) (float64, error) {
		return 0, errors.New("boom")
	}
	_, err = CrossValScore(context.Background(), &majority{}, X, y, NewKFold(3, false, 0), WithScorer(failing), WithWorkers(1))
	assert.ErrorContains(t, err, "boom")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = CrossValScore(ctx, &majority{}, X, y, NewKFold(3, false, 0))
	assert.ErrorIs(t, err, context.Canceled)
}
