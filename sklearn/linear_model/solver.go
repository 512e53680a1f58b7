package linear_model

import (
	"math"

	"github.com/YuminosukeSato/featsel/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

const solverOperation = "LogisticRegression.solve"

// gradFunc returns the mean data loss at (W, b) and writes its gradient
// into gW and gb. Regularization is handled by the solver.
type gradFunc func(W *mat.Dense, b []float64, gW *mat.Dense, gb []float64) float64

// proxProblem is a composite objective
//
//	f(W, b) + l2/2 ||W||² + l1 ||W||₁
//
// where f is smooth with an L-Lipschitz gradient. The intercept b is never
// penalized.
type proxProblem struct {
	grad         gradFunc
	lipschitz    float64
	l1, l2       float64
	fitIntercept bool
	maxIter      int
	tol          float64
}

// run dispatches to the named solver. A loss or intercept that turns NaN
// or Inf is reported as a NumericalInstabilityError.
func (p *proxProblem) run(solver string, W *mat.Dense, b []float64) (int, bool, error) {
	var (
		iters int
		ok    bool
		err   error
	)
	if solver == SolverLBFGS {
		iters, ok, err = p.solveLBFGS(W, b)
	} else {
		iters, ok, err = p.solve(W, b)
	}
	if err != nil {
		return iters, false, err
	}
	if err := errors.CheckNumericalStability(solverOperation, b, iters); err != nil {
		return iters, false, err
	}
	return iters, ok, nil
}

// solve runs accelerated proximal gradient descent (FISTA) from W, b and
// overwrites them with the solution. It stops when the largest parameter
// change over one step, divided by the step size, drops below tol.
func (p *proxProblem) solve(W *mat.Dense, b []float64) (iters int, converged bool, err error) {
	k, d := W.Dims()
	L := p.lipschitz + p.l2
	if L <= 0 {
		L = 1
	}
	step := 1 / L

	prevW := mat.DenseCopyOf(W)
	prevB := append([]float64(nil), b...)
	yW := mat.DenseCopyOf(W)
	yB := append([]float64(nil), b...)
	gW := mat.NewDense(k, d, nil)
	gb := make([]float64, k)
	t := 1.0

	for iters = 1; iters <= p.maxIter; iters++ {
		loss := p.grad(yW, yB, gW, gb)
		if err := errors.CheckScalar(solverOperation, loss, iters); err != nil {
			return iters, false, err
		}

		maxDelta := 0.0
		for c := 0; c < k; c++ {
			for j := 0; j < d; j++ {
				y := yW.At(c, j)
				v := y - step*(gW.At(c, j)+p.l2*y)
				if p.l1 > 0 {
					v = SoftThreshold(v, step*p.l1)
				}
				maxDelta = math.Max(maxDelta, math.Abs(v-y))
				W.Set(c, j, v)
			}
			if p.fitIntercept {
				v := yB[c] - step*gb[c]
				maxDelta = math.Max(maxDelta, math.Abs(v-yB[c]))
				b[c] = v
			}
		}

		if maxDelta/step < p.tol {
			return iters, true, nil
		}

		// 運動量の更新
		tNext := (1 + math.Sqrt(1+4*t*t)) / 2
		momentum := (t - 1) / tNext
		for c := 0; c < k; c++ {
			for j := 0; j < d; j++ {
				w := W.At(c, j)
				yW.Set(c, j, w+momentum*(w-prevW.At(c, j)))
			}
			yB[c] = b[c] + momentum*(b[c]-prevB[c])
		}
		prevW.Copy(W)
		copy(prevB, b)
		t = tNext
	}
	return p.maxIter, false, nil
}

// solveLBFGS minimizes the smooth objective (l1 must be zero) with
// gonum's L-BFGS, starting from W, b and overwriting them with the result.
// Quasi-Newton steps adapt to badly scaled features, which plain gradient
// steps do not.
func (p *proxProblem) solveLBFGS(W *mat.Dense, b []float64) (iters int, converged bool, err error) {
	k, d := W.Dims()
	nw := k * d
	size := nw
	if p.fitIntercept {
		size += k
	}

	x0 := make([]float64, size)
	for c := 0; c < k; c++ {
		mat.Row(x0[c*d:(c+1)*d], c, W)
	}
	if p.fitIntercept {
		copy(x0[nw:], b)
	}

	unpack := func(x []float64, Wt *mat.Dense, bt []float64) {
		for c := 0; c < k; c++ {
			Wt.SetRow(c, x[c*d:(c+1)*d])
		}
		if p.fitIntercept {
			copy(bt, x[nw:])
		}
	}

	Wt := mat.NewDense(k, d, nil)
	bt := append([]float64(nil), b...)
	gW := mat.NewDense(k, d, nil)
	gb := make([]float64, k)
	evals := 0
	var unstable error
	eval := func(grad, x []float64) float64 {
		unpack(x, Wt, bt)
		loss := p.grad(Wt, bt, gW, gb)
		evals++
		if err := errors.CheckScalar(solverOperation, loss, evals); err != nil && unstable == nil {
			unstable = err
		}
		for c := 0; c < k; c++ {
			for j := 0; j < d; j++ {
				w := Wt.At(c, j)
				loss += 0.5 * p.l2 * w * w
				if grad != nil {
					grad[c*d+j] = gW.At(c, j) + p.l2*w
				}
			}
		}
		if grad != nil && p.fitIntercept {
			copy(grad[nw:], gb)
		}
		return loss
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 { return eval(nil, x) },
		Grad: func(grad, x []float64) { eval(grad, x) },
	}
	settings := &optimize.Settings{
		GradientThreshold: p.tol,
		MajorIterations:   p.maxIter,
	}
	result, err := optimize.Minimize(problem, x0, settings, &optimize.LBFGS{})
	if unstable != nil {
		return evals, false, unstable
	}
	if result == nil {
		return 0, false, err
	}
	unpack(result.X, W, b)

	converged = err == nil &&
		result.Status != optimize.IterationLimit &&
		result.Status != optimize.Failure
	return result.Stats.MajorIterations, converged, nil
}

// spectralNormSq returns the squared largest singular value of X, with a
// column of ones appended when intercept is true. It falls back to the
// squared Frobenius norm, an upper bound, if the SVD fails.
func spectralNormSq(X mat.Matrix, intercept bool) float64 {
	n, d := X.Dims()
	A := X
	if intercept {
		aug := mat.NewDense(n, d+1, nil)
		aug.Slice(0, n, 0, d).(*mat.Dense).Copy(X)
		for i := 0; i < n; i++ {
			aug.Set(i, d, 1)
		}
		A = aug
	}

	var svd mat.SVD
	if svd.Factorize(A, mat.SVDNone) {
		if s := svd.Values(nil); len(s) > 0 {
			return s[0] * s[0]
		}
	}
	f := mat.Norm(A, 2)
	return f * f
}

// SoftThreshold returns 0.0 if the value is less than or equal to the gamma input
func SoftThreshold(x, gamma float64) float64 {
	res := math.Max(0, math.Abs(x)-gamma)
	if math.Signbit(x) {
		return -res
	}
	return res
}
