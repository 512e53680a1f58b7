package feature_selection

import (
	"context"
	"math"

	"github.com/YuminosukeSato/featsel/core/model"
	"github.com/YuminosukeSato/featsel/core/parallel"
	"github.com/YuminosukeSato/featsel/pkg/errors"
	"github.com/YuminosukeSato/featsel/pkg/log"
	"github.com/YuminosukeSato/featsel/sklearn/model_selection"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// CVResults holds the cross-validated score of every feature count RFECV
// evaluated, ordered by increasing number of features.
type CVResults struct {
	NFeatures     []int
	MeanTestScore []float64
	StdTestScore  []float64
	// SplitTestScores[f][k] is the score of fold f at NFeatures[k].
	SplitTestScores [][]float64
}

// Best returns the feature count with the highest mean score and that
// score. Ties go to the smaller feature count.
func (c *CVResults) Best() (nFeatures int, score float64) {
	best := -1
	for k, s := range c.MeanTestScore {
		if best < 0 || s > c.MeanTestScore[best] {
			best = k
		}
	}
	if best < 0 {
		return 0, 0
	}
	return c.NFeatures[best], c.MeanTestScore[best]
}

// RFECV chooses the number of features by cross-validated RFE.
//
// For every fold it runs the RFE elimination path on the training rows
// down to the minimum feature count, scoring each intermediate model on
// the fold's test rows. Scores are averaged per feature count across
// folds; the count with the highest mean wins, ties going to fewer
// features. A final RFE with that count is then run on all of X.
type RFECV struct {
	fitted

	estimator model.Estimator
	cfg       config

	final     model.Estimator
	cvResults *CVResults
}

// NewRFECV creates an RFECV selector around estimator.
func NewRFECV(estimator model.Estimator, opts ...Option) *RFECV {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &RFECV{
		fitted:    fitted{name: "RFECV"},
		estimator: estimator,
		cfg:       cfg,
	}
}

// Fit is FitContext with a background context.
func (r *RFECV) Fit(X, y mat.Matrix) error {
	return r.FitContext(context.Background(), X, y)
}

// FitContext runs the cross-validated elimination. Folds run concurrently;
// ctx is checked before each fold starts.
func (r *RFECV) FitContext(ctx context.Context, X, y mat.Matrix) error {
	_, d, err := checkXY("RFECV.Fit", X, y)
	if err != nil {
		return err
	}
	step, err := resolveStep(r.cfg.step, d)
	if err != nil {
		return err
	}
	minFeatures := r.cfg.minFeatures
	if minFeatures < 1 {
		return errors.NewValidationError("min_features_to_select", "must be at least 1", minFeatures)
	}
	if minFeatures > d {
		minFeatures = d
	}

	cv := r.cfg.cv
	if cv == nil {
		if _, ok := r.estimator.(model.Classifier); ok {
			cv = model_selection.NewStratifiedKFold(5, false, 0)
		} else {
			cv = model_selection.NewKFold(5, false, 0)
		}
	}
	folds, err := cv.Split(X, y)
	if err != nil {
		return err
	}

	logger := log.GetLoggerWithName("feature_selection").With(log.ModelNameKey, "RFECV")
	scores := make([][]float64, len(folds))
	counts := make([][]int, len(folds))
	err = parallel.ForEach(len(folds), r.cfg.workers, func(f int) error {
		if err := ctx.Err(); err != nil {
			return errors.WithStack(err)
		}
		fold := folds[f]
		XTrain := model_selection.SelectRows(X, fold.TrainIndices)
		yTrain := model_selection.SelectRows(y, fold.TrainIndices)
		XTest := model_selection.SelectRows(X, fold.TestIndices)
		yTest := model_selection.SelectRows(y, fold.TestIndices)

		_, _, err := eliminate(r.estimator, XTrain, yTrain, minFeatures, step,
			func(est model.Estimator, features []int) error {
				s, err := r.cfg.scorer(est, selectColumns(XTest, features), yTest)
				if err != nil {
					return err
				}
				scores[f] = append(scores[f], s)
				counts[f] = append(counts[f], len(features))
				return nil
			})
		if err != nil {
			return errors.Wrapf(err, "fold %d", f)
		}
		logger.Debug("fold path scored", log.FoldKey, f, log.AccuracyKey, scores[f])
		return nil
	})
	if err != nil {
		return err
	}

	results := summarize(counts[0], scores)
	nSelect, best := results.Best()

	ranking, final, err := eliminate(r.estimator, X, y, nSelect, step, nil)
	if err != nil {
		return err
	}
	r.selection = NewSelection(ranking)
	r.final = final
	r.cvResults = results

	logger.Info("selection fitted",
		log.FeaturesKey, d,
		log.SelectedFeaturesKey, nSelect,
		log.AccuracyKey, best,
	)
	return nil
}

// summarize turns per-fold paths (most features first) into CVResults
// ordered by increasing feature count. Every fold walks the same path
// because the path only depends on the feature count, step and minimum.
func summarize(path []int, scores [][]float64) *CVResults {
	nSteps := len(path)
	res := &CVResults{
		NFeatures:       make([]int, nSteps),
		MeanTestScore:   make([]float64, nSteps),
		StdTestScore:    make([]float64, nSteps),
		SplitTestScores: make([][]float64, len(scores)),
	}
	for f := range scores {
		res.SplitTestScores[f] = make([]float64, nSteps)
	}

	col := make([]float64, len(scores))
	for k := 0; k < nSteps; k++ {
		src := nSteps - 1 - k
		res.NFeatures[k] = path[src]
		for f := range scores {
			col[f] = scores[f][src]
			res.SplitTestScores[f][k] = col[f]
		}
		mean, variance := stat.PopMeanVariance(col, nil)
		res.MeanTestScore[k] = mean
		res.StdTestScore[k] = math.Sqrt(variance)
	}
	return res
}

// FitTransform fits on X, y and returns the selected columns of X.
func (r *RFECV) FitTransform(X, y mat.Matrix) (mat.Matrix, error) {
	if err := r.Fit(X, y); err != nil {
		return nil, err
	}
	return r.Transform(X)
}

// CVResults returns the cross-validation curve, or nil before Fit.
func (r *RFECV) CVResults() *CVResults {
	return r.cvResults
}

// Estimator returns the estimator fitted on the selected features.
func (r *RFECV) Estimator() model.Estimator {
	return r.final
}

// Score reduces X to the selected features and scores the final estimator.
func (r *RFECV) Score(X, y mat.Matrix) (float64, error) {
	Xs, err := r.Transform(X)
	if err != nil {
		return 0, err
	}
	return r.final.Score(Xs, y)
}
