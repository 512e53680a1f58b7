package model_selection

import (
	"context"
	"math"

	"github.com/YuminosukeSato/featsel/core/model"
	"github.com/YuminosukeSato/featsel/core/parallel"
	"github.com/YuminosukeSato/featsel/metrics"
	"github.com/YuminosukeSato/featsel/pkg/errors"
	"github.com/YuminosukeSato/featsel/pkg/log"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ScoreFunc scores a fitted estimator on held-out data. Higher is better.
type ScoreFunc func(est model.Estimator, X, y mat.Matrix) (float64, error)

// EstimatorScore uses the estimator's own Score method.
func EstimatorScore(est model.Estimator, X, y mat.Matrix) (float64, error) {
	return est.Score(X, y)
}

// NegMeanSquaredError scores a regressor by the negated mean squared error
// of its predictions, so that higher is still better.
func NegMeanSquaredError(est model.Estimator, X, y mat.Matrix) (float64, error) {
	pred, err := est.Predict(X)
	if err != nil {
		return 0, err
	}
	mse, err := metrics.MSE(y, pred)
	if err != nil {
		return 0, err
	}
	return -mse, nil
}

// Scores holds one score per fold.
type Scores []float64

// Mean returns the mean fold score.
func (s Scores) Mean() float64 {
	if len(s) == 0 {
		return 0
	}
	return stat.Mean(s, nil)
}

// Std returns the population standard deviation of the fold scores.
func (s Scores) Std() float64 {
	if len(s) <= 1 {
		return 0
	}
	_, variance := stat.PopMeanVariance(s, nil)
	return math.Sqrt(variance)
}

type cvConfig struct {
	scorer  ScoreFunc
	workers int
}

// CVOption configures CrossValScore.
type CVOption func(*cvConfig)

// WithScorer replaces EstimatorScore.
func WithScorer(f ScoreFunc) CVOption {
	return func(c *cvConfig) { c.scorer = f }
}

// WithWorkers bounds the number of folds evaluated at once. Zero or less
// uses one worker per CPU.
func WithWorkers(n int) CVOption {
	return func(c *cvConfig) { c.workers = n }
}

// CrossValScore fits a clone of est on the training rows of every fold and
// scores it on the test rows. Folds run concurrently; est itself is never
// fitted. Scores are returned in fold order.
func CrossValScore(ctx context.Context, est model.Estimator, X, y mat.Matrix, cv Splitter, opts ...CVOption) (Scores, error) {
	cfg := &cvConfig{scorer: EstimatorScore}
	for _, opt := range opts {
		opt(cfg)
	}

	folds, err := cv.Split(X, y)
	if err != nil {
		return nil, err
	}

	logger := log.GetLoggerWithName("model_selection")
	scores := make(Scores, len(folds))
	err = parallel.ForEach(len(folds), cfg.workers, func(i int) error {
		if err := ctx.Err(); err != nil {
			return errors.WithStack(err)
		}
		fold := folds[i]
		clone := est.Clone()
		if err := clone.Fit(SelectRows(X, fold.TrainIndices), SelectRows(y, fold.TrainIndices)); err != nil {
			return errors.Wrapf(err, "fold %d", i)
		}
		s, err := cfg.scorer(clone, SelectRows(X, fold.TestIndices), SelectRows(y, fold.TestIndices))
		if err != nil {
			return errors.Wrapf(err, "fold %d", i)
		}
		scores[i] = s
		logger.Debug("fold scored", log.FoldKey, i, log.AccuracyKey, s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return scores, nil
}
