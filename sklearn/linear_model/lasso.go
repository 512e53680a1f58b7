package linear_model

import (
	"fmt"
	"math"

	"github.com/YuminosukeSato/featsel/core/model"
	"github.com/YuminosukeSato/featsel/metrics"
	"github.com/YuminosukeSato/featsel/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	DefaultAlpha      = 1.0
	DefaultIterations = 1000
	DefaultTolerance  = 1e-4
)

// Lasso computes the lasso regression using coordinate descent. It minimizes
//
//	1/(2n) ||y - Xw - b||² + alpha ||w||₁
//
// alpha = 0 converges to ordinary least squares. The intercept is fitted by
// centering and is not penalized.
type Lasso struct {
	state *model.StateManager

	alpha        float64
	maxIter      int
	tol          float64
	fitIntercept bool

	coef      []float64
	intercept float64
	nIter     int
}

// LassoOption is a functional option for Lasso
type LassoOption func(*Lasso)

// WithAlpha sets the L1 multiplier. Must be non-negative.
func WithAlpha(alpha float64) LassoOption {
	return func(l *Lasso) { l.alpha = alpha }
}

// WithLassoMaxIter sets the maximum number of passes over all coefficients.
func WithLassoMaxIter(n int) LassoOption {
	return func(l *Lasso) { l.maxIter = n }
}

// WithLassoTol sets the smallest relative coefficient change that keeps
// the descent going.
func WithLassoTol(tol float64) LassoOption {
	return func(l *Lasso) { l.tol = tol }
}

// WithLassoFitIntercept sets whether to fit an intercept.
func WithLassoFitIntercept(fit bool) LassoOption {
	return func(l *Lasso) { l.fitIntercept = fit }
}

// NewLasso initializes a Lasso model ready for fitting
func NewLasso(opts ...LassoOption) *Lasso {
	l := &Lasso{
		state:        model.NewStateManager(),
		alpha:        DefaultAlpha,
		maxIter:      DefaultIterations,
		tol:          DefaultTolerance,
		fitIntercept: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Lasso) validate() error {
	if l.alpha < 0 || math.IsNaN(l.alpha) {
		return errors.NewValidationError("alpha", "must be non-negative", l.alpha)
	}
	if l.maxIter <= 0 {
		return errors.NewValidationError("max_iter", "must be positive", l.maxIter)
	}
	if l.tol < 0 {
		return errors.NewValidationError("tol", "must be non-negative", l.tol)
	}
	return nil
}

// Fit the model according to the given training data
func (l *Lasso) Fit(X, y mat.Matrix) error {
	if err := l.validate(); err != nil {
		return err
	}
	m, n := X.Dims()
	if m == 0 || n == 0 {
		return errors.NewModelError("Lasso.Fit", "empty data", errors.ErrEmptyData)
	}
	if ym, _ := y.Dims(); ym != m {
		return errors.NewDimensionError("Lasso.Fit", m, ym, 0)
	}
	if err := errors.CheckMatrix("Lasso.Fit", X, m, n, 0); err != nil {
		return err
	}

	// precompute the centred feature columns and their dot products
	xcols := make([][]float64, n)
	xmeans := make([]float64, n)
	xdot := make([]float64, n)
	for j := 0; j < n; j++ {
		xj := mat.Col(nil, j, X)
		if l.fitIntercept {
			xmeans[j] = stat.Mean(xj, nil)
			floats.AddConst(-xmeans[j], xj)
		}
		xcols[j] = xj
		xdot[j] = floats.Dot(xj, xj)
	}
	yArr := mat.Col(nil, 0, y)
	ymean := 0.0
	if l.fitIntercept {
		ymean = stat.Mean(yArr, nil)
		floats.AddConst(-ymean, yArr)
	}

	// residual = y - Xβ, updated in place as coefficients move
	beta := make([]float64, n)
	residual := append([]float64(nil), yArr...)
	gamma := l.alpha * float64(m)

	converged := false
	iter := 0
	for iter = 1; iter <= l.maxIter; iter++ {
		maxCoef := 0.0
		maxUpdate := 0.0

		// loop through all features and minimize loss function
		for j := 0; j < n; j++ {
			if xdot[j] == 0 {
				continue
			}
			betaCurr := beta[j]
			obsCol := xcols[j]
			num := floats.Dot(obsCol, residual) + xdot[j]*betaCurr
			betaNext := SoftThreshold(num, gamma) / xdot[j]

			if delta := betaNext - betaCurr; delta != 0 {
				floats.AddScaled(residual, -delta, obsCol)
			}
			maxCoef = math.Max(maxCoef, math.Abs(betaNext))
			maxUpdate = math.Max(maxUpdate, math.Abs(betaNext-betaCurr))
			beta[j] = betaNext
		}

		// break early if we've achieved the desired tolerance
		if maxCoef == 0 || maxUpdate <= l.tol*maxCoef {
			converged = true
			break
		}
	}
	if !converged {
		iter = l.maxIter
		errors.Warn(errors.NewConvergenceWarning("Lasso", l.maxIter,
			"objective did not converge, consider increasing max_iter"))
	}

	l.coef = beta
	l.intercept = 0
	if l.fitIntercept {
		l.intercept = ymean - floats.Dot(xmeans, beta)
	}
	l.nIter = iter
	l.state.SetFitted(n, m)
	return nil
}

// Predict using the Lasso model. Returns an n×1 matrix.
func (l *Lasso) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := l.state.RequireFitted("Lasso", "Predict"); err != nil {
		return nil, err
	}
	m, n := X.Dims()
	if err := l.state.CheckFeatures("Lasso.Predict", n); err != nil {
		return nil, err
	}

	out := mat.NewVecDense(m, nil)
	out.MulVec(X, mat.NewVecDense(n, l.coef))
	for i := 0; i < m; i++ {
		out.SetVec(i, out.AtVec(i)+l.intercept)
	}
	return out, nil
}

// Score computes the coefficient of determination of the prediction
func (l *Lasso) Score(X, y mat.Matrix) (float64, error) {
	pred, err := l.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2Score(y, pred)
}

// Coef returns the coefficients as a 1 × n_features matrix.
func (l *Lasso) Coef() *mat.Dense {
	if l.coef == nil {
		return nil
	}
	return mat.NewDense(1, len(l.coef), append([]float64(nil), l.coef...))
}

// Intercept returns the computed intercept if FitIntercept is set to true. Defaults to 0.0 if not set.
func (l *Lasso) Intercept() float64 {
	return l.intercept
}

// NIter returns the number of coordinate-descent passes of the last fit.
func (l *Lasso) NIter() int {
	return l.nIter
}

// Penalty always reports "l1".
func (l *Lasso) Penalty() string {
	return PenaltyL1
}

// Clone returns an unfitted copy with the same hyperparameters.
func (l *Lasso) Clone() model.Estimator {
	return &Lasso{
		state:        model.NewStateManager(),
		alpha:        l.alpha,
		maxIter:      l.maxIter,
		tol:          l.tol,
		fitIntercept: l.fitIntercept,
	}
}

func (l *Lasso) String() string {
	return fmt.Sprintf("Lasso(alpha=%g, max_iter=%d)", l.alpha, l.maxIter)
}
