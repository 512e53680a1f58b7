package experiment

import (
	"math"

	"github.com/YuminosukeSato/featsel/dataset"
	"github.com/YuminosukeSato/featsel/pkg/errors"
	"github.com/YuminosukeSato/featsel/sklearn/linear_model"
)

// Selector step names accepted in Config.Selectors.
const (
	StepBaseline = "baseline"
	StepRFE      = "rfe"
	StepRFECV    = "rfecv"
	StepLasso    = "lasso"
)

// Config describes one pipeline run.
type Config struct {
	// DataPath is a delimited file with a header row. Empty means
	// synthetic data generated from Synthetic.
	DataPath    string
	LabelColumn string
	Delimiter   rune
	Synthetic   dataset.ClassificationConfig

	// TestSize is the held-out fraction of rows, split stratified.
	TestSize float64
	Seed     uint64

	// MultiClass is passed to every LogisticRegression ("ovr" or
	// "multinomial").
	MultiClass string
	// C is the inverse L2 strength of the classifiers that are scored.
	C float64

	// Selectors lists the selection steps to run, in order.
	Selectors []string
	// NFeatures is the RFE target. Zero or less keeps half.
	NFeatures int
	// Step is the RFE/RFECV elimination step.
	Step float64
	// CVFolds is the number of stratified folds RFECV uses.
	CVFolds int
	// LassoC is the inverse L1 strength of the SelectFromModel estimator.
	LassoC float64
	// Workers bounds RFECV fold concurrency; zero uses every CPU.
	Workers int

	// PlotPNG and PlotHTML, when set, receive the RFECV validation curve.
	PlotPNG  string
	PlotHTML string
}

// DefaultConfig returns the configuration of the reference run: synthetic
// data, stratified 70/30 split, RFE down to five features, 5-fold RFECV
// and L1 selection with C = 0.1.
func DefaultConfig() Config {
	return Config{
		Delimiter:  ',',
		Synthetic:  dataset.DefaultClassificationConfig(),
		TestSize:   0.3,
		Seed:       42,
		MultiClass: linear_model.MultiClassOvR,
		C:          1.0,
		Selectors:  []string{StepRFE, StepRFECV, StepLasso},
		NFeatures:  5,
		Step:       1,
		CVFolds:    5,
		LassoC:     0.1,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if !(c.TestSize > 0 && c.TestSize < 1) {
		return errors.NewValidationError("TestSize", "must be in (0, 1)", c.TestSize)
	}
	switch c.MultiClass {
	case linear_model.MultiClassOvR, linear_model.MultiClassMultinomial:
	default:
		return errors.NewValidationError("MultiClass", "must be ovr or multinomial", c.MultiClass)
	}
	if !(c.C > 0) || math.IsInf(c.C, 1) {
		return errors.NewValidationError("C", "must be positive and finite", c.C)
	}
	if !(c.LassoC > 0) || math.IsInf(c.LassoC, 1) {
		return errors.NewValidationError("LassoC", "must be positive and finite", c.LassoC)
	}
	if !(c.Step > 0) {
		return errors.NewValidationError("Step", "must be positive", c.Step)
	}
	if c.CVFolds < 2 {
		return errors.NewValidationError("CVFolds", "must be at least 2", c.CVFolds)
	}
	seen := make(map[string]bool, len(c.Selectors))
	for _, s := range c.Selectors {
		switch s {
		case StepRFE, StepRFECV, StepLasso:
		default:
			return errors.NewValidationError("Selectors", "unknown selector", s)
		}
		if seen[s] {
			return errors.NewValidationError("Selectors", "listed twice", s)
		}
		seen[s] = true
	}
	if (c.PlotPNG != "" || c.PlotHTML != "") && !seen[StepRFECV] {
		return errors.NewValidationError("PlotPNG", "plots need the rfecv selector", c.PlotPNG+c.PlotHTML)
	}
	return nil
}

// classifier returns a fresh, unfitted classifier for scoring.
func (c Config) classifier() *linear_model.LogisticRegression {
	return linear_model.NewLogisticRegression(
		linear_model.WithLRC(c.C),
		linear_model.WithLRMultiClass(c.MultiClass),
		linear_model.WithLRRandomState(c.Seed),
	)
}

// lassoEstimator is the L1-penalized classifier SelectFromModel thresholds.
func (c Config) lassoEstimator() *linear_model.LogisticRegression {
	return linear_model.NewLogisticRegression(
		linear_model.WithLRPenalty(linear_model.PenaltyL1),
		linear_model.WithLRC(c.LassoC),
		linear_model.WithLRMultiClass(c.MultiClass),
		linear_model.WithLRRandomState(c.Seed),
	)
}
