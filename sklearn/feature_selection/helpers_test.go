package feature_selection

import (
	"math/rand/v2"
	"testing"

	"github.com/YuminosukeSato/featsel/core/model"
	"github.com/YuminosukeSato/featsel/pkg/errors"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// separable returns 150 rows, 3 classes and 6 columns. Columns 0 and 3
// carry the class signal, the rest are standard normal noise.
func separable(t *testing.T) (*mat.Dense, *mat.Dense) {
	t.Helper()
	rng := rand.New(rand.NewPCG(17, 17))
	n, d := 150, 6
	X := mat.NewDense(n, d, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		k := float64(i % 3)
		y.Set(i, 0, k)
		for j := 0; j < d; j++ {
			X.Set(i, j, rng.NormFloat64())
		}
		X.Set(i, 0, X.At(i, 0)+3*k)
		X.Set(i, 3, X.At(i, 3)-2*k)
	}
	return X, y
}

// maskColumns indexes X by mask the slow way.
func maskColumns(X mat.Matrix, mask []bool) *mat.Dense {
	r, c := X.Dims()
	var cols []int
	for j := 0; j < c; j++ {
		if mask[j] {
			cols = append(cols, j)
		}
	}
	out := mat.NewDense(r, len(cols), nil)
	for i := 0; i < r; i++ {
		for k, j := range cols {
			out.Set(i, k, X.At(i, j))
		}
	}
	return out
}

// stub is an estimator that learns nothing.
type stub struct{}

func (stub) Fit(_, _ mat.Matrix) error { return nil }
func (stub) Predict(X mat.Matrix) (mat.Matrix, error) {
	r, _ := X.Dims()
	return mat.NewDense(r, 1, nil), nil
}
func (stub) Score(_, _ mat.Matrix) (float64, error) { return 0, nil }
func (stub) Clone() model.Estimator                 { return stub{} }

// fixedCoef reports a constant coefficient matrix.
type fixedCoef struct {
	stub
	coef *mat.Dense
}

func (f *fixedCoef) Coef() *mat.Dense { return f.coef }

// sparseCoef is fixedCoef reporting an L1 penalty.
type sparseCoef struct {
	fixedCoef
}

func (s *sparseCoef) Penalty() string { return "l1" }

// treeLike exposes importances without coefficients.
type treeLike struct {
	stub
	imp []float64
}

func (t *treeLike) FeatureImportances() []float64 { return t.imp }

// captureWarnings records every warning raised until the test ends.
func captureWarnings(t *testing.T) *[]error {
	t.Helper()
	var got []error
	prev := errors.SetWarningHandler(func(w error) { got = append(got, w) })
	t.Cleanup(func() { errors.SetWarningHandler(prev) })
	return &got
}

func countSelectionWarnings(warnings []error) int {
	n := 0
	for _, w := range warnings {
		var sw *errors.SelectionWarning
		if errors.As(w, &sw) {
			n++
		}
	}
	return n
}

func requireSameMatrix(t *testing.T, want, got mat.Matrix) {
	t.Helper()
	wr, wc := want.Dims()
	gr, gc := got.Dims()
	require.Equal(t, wr, gr)
	require.Equal(t, wc, gc)
	require.True(t, mat.Equal(want, got))
}
