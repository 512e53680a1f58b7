// Package linear_model provides linear estimators whose coefficients drive
// feature selection: LogisticRegression for classification and Lasso for
// L1-regularized regression.
package linear_model

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/YuminosukeSato/featsel/core/model"
	"github.com/YuminosukeSato/featsel/core/parallel"
	"github.com/YuminosukeSato/featsel/metrics"
	"github.com/YuminosukeSato/featsel/pkg/errors"
	"github.com/YuminosukeSato/featsel/pkg/log"
	"gonum.org/v1/gonum/mat"
)

// Penalty and multi-class settings accepted by LogisticRegression.
const (
	PenaltyL2   = "l2"
	PenaltyL1   = "l1"
	PenaltyNone = "none"

	MultiClassOvR         = "ovr"
	MultiClassMultinomial = "multinomial"

	// SolverAuto uses L-BFGS for l2/none and FISTA for l1.
	SolverAuto  = "auto"
	SolverLBFGS = "lbfgs"
	SolverFISTA = "fista"
)

// LogisticRegression implements logistic regression for classification
// Compatible with scikit-learn's LogisticRegression
//
// The objective is the mean log-loss plus penalty / (C · n_samples), which
// matches scikit-learn's parameterization of C. Smooth objectives are
// minimized with L-BFGS; the l1 penalty uses accelerated proximal gradient
// descent (FISTA), which yields exact zeros in Coef.
type LogisticRegression struct {
	state *model.StateManager // State management (composition)

	// Hyperparameters
	penalty      string  // Regularization: "l2", "l1", "none"
	C            float64 // Inverse regularization strength (1/alpha)
	fitIntercept bool    // Whether to fit intercept
	randomState  uint64  // Seed for the initial weights
	maxIter      int     // Maximum iterations
	multiClass   string  // Multi-class: "ovr", "multinomial"
	solver       string  // Solver: "auto", "lbfgs", "fista"
	tol          float64 // Tolerance for stopping

	// Model parameters
	coef      *mat.Dense // Coefficients (n_classes x n_features or 1 x n_features for binary)
	intercept []float64  // Intercept terms
	classes   []int      // Unique class labels
	nIter     []int      // Actual iterations per fitted problem
}

// LogisticRegressionOption is a functional option for LogisticRegression
type LogisticRegressionOption func(*LogisticRegression)

// NewLogisticRegression creates a new LogisticRegression classifier
func NewLogisticRegression(opts ...LogisticRegressionOption) *LogisticRegression {
	lr := &LogisticRegression{
		state:        model.NewStateManager(),
		penalty:      PenaltyL2,
		C:            1.0,
		fitIntercept: true,
		maxIter:      1000,
		multiClass:   MultiClassOvR,
		solver:       SolverAuto,
		tol:          1e-4,
	}

	// Apply options
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// WithLRPenalty sets the regularization type
func WithLRPenalty(penalty string) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.penalty = penalty
	}
}

// WithLRC sets the inverse regularization strength
func WithLRC(c float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.C = c
	}
}

// WithLogisticFitIntercept sets whether to fit intercept
func WithLogisticFitIntercept(fit bool) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.fitIntercept = fit
	}
}

// WithLRSolver sets the optimization solver
func WithLRSolver(solver string) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.solver = solver
	}
}

// WithLRMaxIter sets the maximum number of iterations
func WithLRMaxIter(maxIter int) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.maxIter = maxIter
	}
}

// WithLRTol sets the tolerance for stopping criteria
func WithLRTol(tol float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.tol = tol
	}
}

// WithLRMultiClass selects one-vs-rest or multinomial (softmax) fitting for
// more than two classes. Binary problems always fit a single sigmoid.
func WithLRMultiClass(multiClass string) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.multiClass = multiClass
	}
}

// WithLRRandomState sets the random seed
func WithLRRandomState(seed uint64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.randomState = seed
	}
}

func (lr *LogisticRegression) validate() error {
	switch lr.penalty {
	case PenaltyL1, PenaltyL2, PenaltyNone:
	default:
		return errors.NewValidationError("penalty", "must be one of l1, l2, none", lr.penalty)
	}
	switch lr.multiClass {
	case MultiClassOvR, MultiClassMultinomial:
	default:
		return errors.NewValidationError("multi_class", "must be ovr or multinomial", lr.multiClass)
	}
	switch lr.solver {
	case SolverAuto, SolverFISTA:
	case SolverLBFGS:
		if lr.penalty == PenaltyL1 {
			return errors.NewValidationError("solver", "lbfgs supports only l2 or none penalties", lr.solver)
		}
	default:
		return errors.NewValidationError("solver", "must be one of auto, lbfgs, fista", lr.solver)
	}
	if !(lr.C > 0) || math.IsInf(lr.C, 1) {
		return errors.NewValidationError("C", "must be positive and finite", lr.C)
	}
	if lr.maxIter <= 0 {
		return errors.NewValidationError("max_iter", "must be positive", lr.maxIter)
	}
	if lr.tol <= 0 {
		return errors.NewValidationError("tol", "must be positive", lr.tol)
	}
	return nil
}

// Fit trains the logistic regression model. y holds integer class labels in
// its first column.
func (lr *LogisticRegression) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "LogisticRegression.Fit")

	if err := lr.validate(); err != nil {
		return err
	}

	// Validate inputs
	nSamples, nFeatures := X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return errors.NewModelError("LogisticRegression.Fit", "empty data", errors.ErrEmptyData)
	}
	yRows, yCols := y.Dims()
	if nSamples != yRows {
		return errors.NewDimensionError("LogisticRegression.Fit", nSamples, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewValueError("LogisticRegression.Fit", "y must be a column vector (n×1 matrix)")
	}
	if err := errors.CheckMatrix("LogisticRegression.Fit", X, nSamples, nFeatures, 0); err != nil {
		return err
	}

	classes, labels := extractClasses(y)
	if len(classes) < 2 {
		return errors.NewModelError("LogisticRegression.Fit", "single class", errors.ErrSingleClass)
	}

	Xd := mat.DenseCopyOf(X)
	lambda := 0.0
	if lr.penalty != PenaltyNone {
		lambda = 1 / (lr.C * float64(nSamples))
	}
	l1, l2 := 0.0, 0.0
	if lr.penalty == PenaltyL1 {
		l1 = lambda
	} else {
		l2 = lambda
	}
	solver := lr.resolvedSolver()
	normSq := 0.0
	if solver == SolverFISTA {
		normSq = spectralNormSq(Xd, lr.fitIntercept)
	}

	nRows := len(classes)
	if nRows == 2 {
		nRows = 1
	}
	coef := lr.initializeWeights(nRows, nFeatures)
	intercept := make([]float64, nRows)
	var nIter []int

	if nRows > 1 && lr.multiClass == MultiClassMultinomial {
		prob := &proxProblem{
			grad:         multinomialGrad(Xd, labels, len(classes)),
			lipschitz:    0.5 * normSq / float64(nSamples),
			l1:           l1,
			l2:           l2,
			fitIntercept: lr.fitIntercept,
			maxIter:      lr.maxIter,
			tol:          lr.tol,
		}
		it, ok, err := prob.run(solver, coef, intercept)
		if err != nil {
			return errors.NewModelError("LogisticRegression.Fit", "solver failed", err)
		}
		nIter = []int{it}
		if !ok {
			lr.warnNotConverged("multinomial")
		}
	} else {
		// One-vs-rest (the binary case is a single problem for the positive class)
		nIter = make([]int, nRows)
		err := parallel.ForEach(nRows, 0, func(r int) error {
			positive := r
			if nRows == 1 {
				positive = 1
			}
			target := make([]float64, nSamples)
			for i, l := range labels {
				if l == positive {
					target[i] = 1
				}
			}
			prob := &proxProblem{
				grad:         binaryGrad(Xd, target),
				lipschitz:    0.25 * normSq / float64(nSamples),
				l1:           l1,
				l2:           l2,
				fitIntercept: lr.fitIntercept,
				maxIter:      lr.maxIter,
				tol:          lr.tol,
			}
			w := coef.Slice(r, r+1, 0, nFeatures).(*mat.Dense)
			b := intercept[r : r+1]
			it, ok, err := prob.run(solver, w, b)
			if err != nil {
				return errors.NewModelError("LogisticRegression.Fit", "solver failed", err)
			}
			nIter[r] = it
			if !ok {
				lr.warnNotConverged(fmt.Sprintf("class %d", classes[positive]))
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	if err := errors.CheckMatrix("LogisticRegression.Fit", coef, nRows, nFeatures, lr.maxIter); err != nil {
		return err
	}

	lr.coef = coef
	lr.intercept = intercept
	lr.classes = classes
	lr.nIter = nIter
	lr.state.SetFitted(nFeatures, nSamples)

	log.GetLoggerWithName("linear_model").Debug("model fitted",
		log.ModelNameKey, "LogisticRegression",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		log.ClassesKey, len(classes),
		log.IterationKey, nIter,
	)
	return nil
}

func (lr *LogisticRegression) resolvedSolver() string {
	if lr.solver != SolverAuto {
		return lr.solver
	}
	if lr.penalty == PenaltyL1 {
		return SolverFISTA
	}
	return SolverLBFGS
}

func (lr *LogisticRegression) warnNotConverged(problem string) {
	errors.Warn(errors.NewConvergenceWarning("LogisticRegression", lr.maxIter,
		fmt.Sprintf("%s: increase max_iter or scale the data", problem)))
}

// extractClasses returns the sorted distinct labels of y and, for every
// row, the position of its label in that list.
func extractClasses(y mat.Matrix) ([]int, []int) {
	rows, _ := y.Dims()
	classMap := make(map[int]bool)
	for i := 0; i < rows; i++ {
		classMap[int(y.At(i, 0))] = true
	}

	classes := make([]int, 0, len(classMap))
	for class := range classMap {
		classes = append(classes, class)
	}
	sort.Ints(classes)

	pos := make(map[int]int, len(classes))
	for i, c := range classes {
		pos[c] = i
	}
	labels := make([]int, rows)
	for i := 0; i < rows; i++ {
		labels[i] = pos[int(y.At(i, 0))]
	}
	return classes, labels
}

// initializeWeights initializes model weights with small seeded values
func (lr *LogisticRegression) initializeWeights(nRows, nFeatures int) *mat.Dense {
	rng := rand.New(rand.NewPCG(lr.randomState, lr.randomState))
	coef := mat.NewDense(nRows, nFeatures, nil)
	for i := 0; i < nRows; i++ {
		for j := 0; j < nFeatures; j++ {
			coef.Set(i, j, rng.NormFloat64()*0.01)
		}
	}
	return coef
}

// binaryGrad is the gradient of the mean binary log-loss for a single
// weight row.
func binaryGrad(X *mat.Dense, target []float64) gradFunc {
	n, _ := X.Dims()
	z := mat.NewVecDense(n, nil)
	return func(W *mat.Dense, b []float64, gW *mat.Dense, gb []float64) float64 {
		z.MulVec(X, W.RowView(0))
		sum, loss := 0.0, 0.0
		for i := 0; i < n; i++ {
			zi := z.AtVec(i) + b[0]
			// log(1 + exp(z)) - y·z
			loss += math.Max(zi, 0) + math.Log1p(math.Exp(-math.Abs(zi))) - target[i]*zi
			r := errors.Sigmoid(zi) - target[i]
			z.SetVec(i, r)
			sum += r
		}
		var g mat.VecDense
		g.MulVec(X.T(), z)
		g.ScaleVec(1/float64(n), &g)
		gW.SetRow(0, g.RawVector().Data)
		gb[0] = sum / float64(n)
		return loss / float64(n)
	}
}

// multinomialGrad is the gradient of the mean softmax cross-entropy.
func multinomialGrad(X *mat.Dense, labels []int, k int) gradFunc {
	n, _ := X.Dims()
	Z := mat.NewDense(n, k, nil)
	return func(W *mat.Dense, b []float64, gW *mat.Dense, gb []float64) float64 {
		Z.Mul(X, W.T())
		for c := range gb {
			gb[c] = 0
		}
		loss := 0.0
		for i := 0; i < n; i++ {
			row := Z.RawRowView(i)
			for c := range row {
				row[c] += b[c]
			}
			lse := errors.LogSumExp(row)
			loss += lse - row[labels[i]]
			for c := range row {
				row[c] = math.Exp(row[c] - lse)
			}
			row[labels[i]] -= 1
			for c := range row {
				gb[c] += row[c] / float64(n)
			}
		}
		gW.Mul(Z.T(), X)
		gW.Scale(1/float64(n), gW)
		return loss / float64(n)
	}
}

// DecisionFunction returns the raw linear scores, one column per row of Coef.
func (lr *LogisticRegression) DecisionFunction(X mat.Matrix) (*mat.Dense, error) {
	if err := lr.state.RequireFitted("LogisticRegression", "DecisionFunction"); err != nil {
		return nil, err
	}
	n, d := X.Dims()
	if err := lr.state.CheckFeatures("LogisticRegression.DecisionFunction", d); err != nil {
		return nil, err
	}
	k, _ := lr.coef.Dims()
	scores := mat.NewDense(n, k, nil)
	scores.Mul(X, lr.coef.T())
	for i := 0; i < n; i++ {
		row := scores.RawRowView(i)
		for c := range row {
			row[c] += lr.intercept[c]
		}
	}
	return scores, nil
}

// Predict makes predictions for input data
func (lr *LogisticRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	scores, err := lr.DecisionFunction(X)
	if err != nil {
		return nil, err
	}

	nSamples, k := scores.Dims()
	predictions := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		if k == 1 {
			// Binary classification
			if scores.At(i, 0) > 0 {
				predictions.Set(i, 0, float64(lr.classes[1]))
			} else {
				predictions.Set(i, 0, float64(lr.classes[0]))
			}
			continue
		}
		bestClass := 0
		for c := 1; c < k; c++ {
			if scores.At(i, c) > scores.At(i, bestClass) {
				bestClass = c
			}
		}
		predictions.Set(i, 0, float64(lr.classes[bestClass]))
	}
	return predictions, nil
}

// PredictProba returns probability estimates for each class
//
// One-vs-rest scores are squashed with a sigmoid and normalized per row;
// multinomial scores go through softmax.
func (lr *LogisticRegression) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	scores, err := lr.DecisionFunction(X)
	if err != nil {
		return nil, err
	}

	nSamples, k := scores.Dims()
	probas := mat.NewDense(nSamples, len(lr.classes), nil)
	for i := 0; i < nSamples; i++ {
		row := scores.RawRowView(i)
		switch {
		case k == 1:
			p1 := errors.Sigmoid(row[0])
			probas.Set(i, 0, 1-p1)
			probas.Set(i, 1, p1)
		case lr.multiClass == MultiClassMultinomial:
			errors.Softmax(row)
			probas.SetRow(i, row)
		default:
			sum := 0.0
			for c := range row {
				row[c] = errors.Sigmoid(row[c])
				sum += row[c]
			}
			for c := range row {
				probas.Set(i, c, errors.SafeDivide(row[c], sum))
			}
		}
	}
	return probas, nil
}

// Score returns the mean accuracy on the given test data and labels
func (lr *LogisticRegression) Score(X, y mat.Matrix) (float64, error) {
	predictions, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.AccuracyScore(y, predictions)
}

// Coef returns a copy of the coefficient matrix.
func (lr *LogisticRegression) Coef() *mat.Dense {
	if lr.coef == nil {
		return nil
	}
	return mat.DenseCopyOf(lr.coef)
}

// Intercept returns a copy of the intercept terms.
func (lr *LogisticRegression) Intercept() []float64 {
	return append([]float64(nil), lr.intercept...)
}

// Classes returns the sorted class labels seen during Fit.
func (lr *LogisticRegression) Classes() []int {
	return append([]int(nil), lr.classes...)
}

// NIter returns the number of iterations used by each fitted problem.
func (lr *LogisticRegression) NIter() []int {
	return append([]int(nil), lr.nIter...)
}

// Penalty returns the regularization type.
func (lr *LogisticRegression) Penalty() string {
	return lr.penalty
}

// IsFitted returns whether the model has been fitted
func (lr *LogisticRegression) IsFitted() bool {
	return lr.state.IsFitted()
}

// Clone returns an unfitted copy with the same hyperparameters.
func (lr *LogisticRegression) Clone() model.Estimator {
	return &LogisticRegression{
		state:        model.NewStateManager(),
		penalty:      lr.penalty,
		C:            lr.C,
		fitIntercept: lr.fitIntercept,
		randomState:  lr.randomState,
		maxIter:      lr.maxIter,
		multiClass:   lr.multiClass,
		solver:       lr.solver,
		tol:          lr.tol,
	}
}

// GetParams returns the model hyperparameters
func (lr *LogisticRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"penalty":       lr.penalty,
		"C":             lr.C,
		"fit_intercept": lr.fitIntercept,
		"random_state":  lr.randomState,
		"max_iter":      lr.maxIter,
		"multi_class":   lr.multiClass,
		"solver":        lr.solver,
		"tol":           lr.tol,
	}
}

// String returns a string representation of the model
func (lr *LogisticRegression) String() string {
	return fmt.Sprintf("LogisticRegression(penalty=%s, C=%g, multi_class=%s, max_iter=%d)",
		lr.penalty, lr.C, lr.multiClass, lr.maxIter)
}
