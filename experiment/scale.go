package experiment

import (
	"github.com/YuminosukeSato/featsel/core/model"
	"github.com/YuminosukeSato/featsel/dataset"
	"github.com/YuminosukeSato/featsel/pkg/errors"
	"github.com/YuminosukeSato/featsel/pkg/log"
	"github.com/YuminosukeSato/featsel/sklearn/feature_selection"
	"github.com/YuminosukeSato/featsel/sklearn/linear_model"
	"gonum.org/v1/gonum/mat"
)

// ScaleConfig configures ScaleSensitivity.
type ScaleConfig struct {
	// Feature is the column to rescale. Empty picks the first column RFE
	// selects on the original data.
	Feature string
	// Factor multiplies the column. Defaults to 1000.
	Factor float64
	// NFeatures is the RFE target. Zero or less keeps half.
	NFeatures int
	// Estimator is ranked by RFE. Defaults to an unpenalized
	// LogisticRegression.
	Estimator model.Estimator
	// Rows restricts the check to these rows, typically
	// Report.TrainIndex. Nil uses every row.
	Rows []int
}

// ScaleReport compares RFE rankings before and after rescaling a column.
type ScaleReport struct {
	Feature       string  `json:"feature"`
	Factor        float64 `json:"factor"`
	RankBefore    int     `json:"rank_before"`
	RankAfter     int     `json:"rank_after"`
	RankingBefore []int   `json:"ranking_before"`
	RankingAfter  []int   `json:"ranking_after"`
}

// Changed reports whether rescaling moved the feature's rank.
func (s *ScaleReport) Changed() bool {
	return s.RankBefore != s.RankAfter
}

// ScaleSensitivity runs RFE on the unstandardized columns of ds, multiplies
// one column by a constant and runs RFE again. Coefficient-based rankings
// depend on feature units, so the rank of that column usually moves.
func ScaleSensitivity(ds *dataset.Dataset, cfg ScaleConfig) (*ScaleReport, error) {
	if ds == nil || ds.X == nil {
		return nil, errors.NewValueError("experiment.ScaleSensitivity", "dataset is required")
	}
	if cfg.Rows != nil {
		sub, err := ds.Subset(cfg.Rows)
		if err != nil {
			return nil, err
		}
		ds = sub
	}
	if cfg.Factor == 0 {
		cfg.Factor = 1000
	}
	if cfg.Estimator == nil {
		cfg.Estimator = linear_model.NewLogisticRegression(
			linear_model.WithLRPenalty(linear_model.PenaltyNone),
		)
	}

	rank := func(X mat.Matrix) ([]int, error) {
		rfe := feature_selection.NewRFE(cfg.Estimator,
			feature_selection.WithNFeaturesToSelect(cfg.NFeatures))
		if err := rfe.Fit(X, ds.Y); err != nil {
			return nil, err
		}
		return rfe.Ranking(), nil
	}

	before, err := rank(ds.X)
	if err != nil {
		return nil, errors.Wrap(err, "ranking original columns")
	}

	col := -1
	if cfg.Feature == "" {
		for j, r := range before {
			if r == 1 {
				col = j
				break
			}
		}
	} else {
		for j, name := range ds.FeatureNames {
			if name == cfg.Feature {
				col = j
				break
			}
		}
		if col < 0 {
			return nil, errors.NewValidationError("Feature", "unknown feature", cfg.Feature)
		}
	}

	scaled := mat.DenseCopyOf(ds.X)
	n, _ := scaled.Dims()
	for i := 0; i < n; i++ {
		scaled.Set(i, col, scaled.At(i, col)*cfg.Factor)
	}
	after, err := rank(scaled)
	if err != nil {
		return nil, errors.Wrap(err, "ranking rescaled columns")
	}

	rep := &ScaleReport{
		Feature:       ds.FeatureNames[col],
		Factor:        cfg.Factor,
		RankBefore:    before[col],
		RankAfter:     after[col],
		RankingBefore: before,
		RankingAfter:  after,
	}
	log.GetLoggerWithName("experiment").Info("scale sensitivity",
		log.ModelNameKey, "RFE",
		"feature", rep.Feature,
		"rank_before", rep.RankBefore,
		"rank_after", rep.RankAfter,
	)
	return rep, nil
}
