package feature_selection

import (
	"strconv"

	"github.com/YuminosukeSato/featsel/sklearn/model_selection"
)

// config holds the settings shared by all selectors. Each selector reads
// only the fields that apply to it.
type config struct {
	// RFE / RFECV
	nFeaturesToSelect int
	step              float64
	minFeatures       int
	cv                model_selection.Splitter
	scorer            model_selection.ScoreFunc
	workers           int

	// SelectFromModel
	threshold   string
	maxFeatures int
	prefit      bool
}

func defaultConfig() config {
	return config{
		step:        1,
		minFeatures: 1,
		scorer:      model_selection.EstimatorScore,
	}
}

// Option configures a selector.
type Option func(*config)

// WithNFeaturesToSelect sets how many features RFE keeps. Zero or less
// keeps half of them (rounded down, at least one).
func WithNFeaturesToSelect(n int) Option {
	return func(c *config) { c.nFeaturesToSelect = n }
}

// WithStep sets how many features RFE and RFECV remove per round. Values
// of 1 or more are truncated to an integer count; values in (0, 1) are a
// fraction of the original feature count, rounded down but at least one.
func WithStep(step float64) Option {
	return func(c *config) { c.step = step }
}

// WithMinFeaturesToSelect sets the smallest feature count RFECV evaluates.
func WithMinFeaturesToSelect(n int) Option {
	return func(c *config) { c.minFeatures = n }
}

// WithCV sets the RFECV splitter. By default classifiers use a 5-fold
// StratifiedKFold and other estimators a 5-fold KFold, both unshuffled.
func WithCV(cv model_selection.Splitter) Option {
	return func(c *config) { c.cv = cv }
}

// WithScoring replaces the estimator's own Score in RFECV.
func WithScoring(f model_selection.ScoreFunc) Option {
	return func(c *config) { c.scorer = f }
}

// WithWorkers bounds how many RFECV folds run at once. Zero or less uses
// one worker per CPU.
func WithWorkers(n int) Option {
	return func(c *config) { c.workers = n }
}

// WithThreshold sets the SelectFromModel importance cut-off: a number,
// "mean", "median", or a scaled reference such as "1.25*mean". Features
// with importance >= threshold are kept.
func WithThreshold(threshold string) Option {
	return func(c *config) { c.threshold = threshold }
}

// WithThresholdValue is WithThreshold for a numeric cut-off.
func WithThresholdValue(v float64) Option {
	return WithThreshold(strconv.FormatFloat(v, 'g', -1, 64))
}

// WithMaxFeatures caps how many features SelectFromModel keeps; the most
// important ones win. Zero means no cap.
func WithMaxFeatures(n int) Option {
	return func(c *config) { c.maxFeatures = n }
}

// WithPrefit tells SelectFromModel the estimator is already fitted, so Fit
// only reads its coefficients.
func WithPrefit(prefit bool) Option {
	return func(c *config) { c.prefit = prefit }
}
