package linear_model

import (
	"math"
	"testing"

	"github.com/YuminosukeSato/featsel/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// quadratic is f(W, b) = ½||W - 1||² + ½||b - 2||², minimized at W = 1, b = 2.
func quadratic(W *mat.Dense, b []float64, gW *mat.Dense, gb []float64) float64 {
	k, d := W.Dims()
	loss := 0.0
	for c := 0; c < k; c++ {
		for j := 0; j < d; j++ {
			r := W.At(c, j) - 1
			gW.Set(c, j, r)
			loss += 0.5 * r * r
		}
		r := b[c] - 2
		gb[c] = r
		loss += 0.5 * r * r
	}
	return loss
}

func TestProxProblem_Solvers(t *testing.T) {
	for _, solver := range []string{SolverFISTA, SolverLBFGS} {
		t.Run(solver, func(t *testing.T) {
			p := &proxProblem{grad: quadratic, lipschitz: 1, fitIntercept: true, maxIter: 200, tol: 1e-8}
			W := mat.NewDense(2, 3, nil)
			b := make([]float64, 2)

			_, ok, err := p.run(solver, W, b)
			require.NoError(t, err)
			assert.True(t, ok)
			for c := 0; c < 2; c++ {
				for j := 0; j < 3; j++ {
					assert.InDelta(t, 1, W.At(c, j), 1e-6)
				}
				assert.InDelta(t, 2, b[c], 1e-6)
			}
		})
	}
}

func TestProxProblem_NonFiniteLoss(t *testing.T) {
	tests := []struct {
		name  string
		value float64
	}{
		{"NaN", math.NaN()},
		{"Inf", math.Inf(1)},
	}
	for _, solver := range []string{SolverFISTA, SolverLBFGS} {
		for _, tt := range tests {
			t.Run(solver+"/"+tt.name, func(t *testing.T) {
				broken := func(W *mat.Dense, b []float64, gW *mat.Dense, gb []float64) float64 {
					quadratic(W, b, gW, gb)
					return tt.value
				}
				p := &proxProblem{grad: broken, lipschitz: 1, fitIntercept: true, maxIter: 50, tol: 1e-8}

				_, ok, err := p.run(solver, mat.NewDense(1, 2, nil), make([]float64, 1))
				require.Error(t, err)
				assert.False(t, ok)
				var nie *errors.NumericalInstabilityError
				assert.True(t, errors.As(err, &nie), "want NumericalInstabilityError, got %T", err)
			})
		}
	}
}
