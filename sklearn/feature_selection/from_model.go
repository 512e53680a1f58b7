package feature_selection

import (
	"sort"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/featsel/core/model"
	"github.com/YuminosukeSato/featsel/pkg/errors"
	"github.com/YuminosukeSato/featsel/pkg/log"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// l1Threshold is the default cut-off for L1-penalized estimators, whose
// unused coefficients are exactly zero.
const l1Threshold = 1e-5

// penalized is implemented by estimators that report their penalty.
type penalized interface {
	Penalty() string
}

// SelectFromModel keeps the features whose importance, the absolute
// coefficients summed over classes, reaches a threshold. Paired with an
// L1-penalized estimator this is LASSO feature selection.
//
// The default threshold is 1e-5 when the estimator reports an "l1"
// penalty and the mean importance otherwise. Kept features rank 1, the
// rest rank 2.
type SelectFromModel struct {
	fitted

	estimator model.Estimator
	cfg       config

	final       model.Estimator
	threshold   float64
	importances []float64
}

// NewSelectFromModel creates a SelectFromModel selector around estimator.
func NewSelectFromModel(estimator model.Estimator, opts ...Option) *SelectFromModel {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &SelectFromModel{
		fitted:    fitted{name: "SelectFromModel"},
		estimator: estimator,
		cfg:       cfg,
	}
}

// Fit fits a clone of the estimator (or, with WithPrefit, uses the
// estimator as is) and thresholds its importances.
func (s *SelectFromModel) Fit(X, y mat.Matrix) error {
	var d int
	est := s.estimator
	if s.cfg.prefit {
		if X == nil {
			return errors.NewValueError("SelectFromModel.Fit", "X is required")
		}
		_, d = X.Dims()
	} else {
		var err error
		if _, d, err = checkXY("SelectFromModel.Fit", X, y); err != nil {
			return err
		}
		est = s.estimator.Clone()
		if err := est.Fit(X, y); err != nil {
			return errors.Wrap(err, "SelectFromModel.Fit")
		}
	}

	imp, err := Importances(est, AbsSum)
	if err != nil {
		return err
	}
	if len(imp) != d {
		return errors.NewDimensionError("SelectFromModel.Fit", d, len(imp), 1)
	}

	l1 := false
	if p, ok := est.(penalized); ok {
		l1 = p.Penalty() == "l1"
	}
	threshold, err := resolveThreshold(s.cfg.threshold, imp, l1)
	if err != nil {
		return err
	}
	if s.cfg.maxFeatures < 0 || s.cfg.maxFeatures > d {
		return errors.NewValidationError("max_features", "must be in [0, n_features]", s.cfg.maxFeatures)
	}

	keep := make([]bool, d)
	for j, v := range imp {
		keep[j] = v >= threshold
	}
	if s.cfg.maxFeatures > 0 {
		order := make([]int, d)
		for j := range order {
			order[j] = j
		}
		sort.SliceStable(order, func(a, b int) bool { return imp[order[a]] > imp[order[b]] })
		for _, j := range order[s.cfg.maxFeatures:] {
			keep[j] = false
		}
	}

	ranking := make([]int, d)
	selected := 0
	for j, k := range keep {
		if k {
			ranking[j] = 1
			selected++
		} else {
			ranking[j] = 2
		}
	}
	if selected == 0 {
		errors.Warn(errors.NewSelectionWarning("SelectFromModel", 0, d,
			"no features reach the threshold, Transform will fail"))
	}

	s.selection = NewSelection(ranking)
	s.final = est
	s.threshold = threshold
	s.importances = imp

	log.GetLoggerWithName("feature_selection").Info("selection fitted",
		log.ModelNameKey, "SelectFromModel",
		log.FeaturesKey, d,
		log.SelectedFeaturesKey, selected,
		log.ThresholdKey, threshold,
	)
	return nil
}

// FitTransform fits on X, y and returns the selected columns of X.
func (s *SelectFromModel) FitTransform(X, y mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X, y); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// Threshold returns the numeric threshold used by the last Fit.
func (s *SelectFromModel) Threshold() float64 {
	return s.threshold
}

// Importances returns the per-feature importances computed by the last Fit.
func (s *SelectFromModel) Importances() []float64 {
	return append([]float64(nil), s.importances...)
}

// Estimator returns the estimator whose coefficients were thresholded. It
// was fitted on all features.
func (s *SelectFromModel) Estimator() model.Estimator {
	return s.final
}

// resolveThreshold parses a threshold expression against importances.
func resolveThreshold(expr string, imp []float64, l1 bool) (float64, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		if l1 {
			return l1Threshold, nil
		}
		expr = "mean"
	}

	scale := 1.0
	ref := expr
	if i := strings.Index(expr, "*"); i >= 0 {
		v, err := strconv.ParseFloat(strings.TrimSpace(expr[:i]), 64)
		if err != nil {
			return 0, errors.NewValidationError("threshold", "invalid scaling factor", expr)
		}
		scale = v
		ref = strings.TrimSpace(expr[i+1:])
	}

	switch ref {
	case "mean":
		return scale * stat.Mean(imp, nil), nil
	case "median":
		return scale * median(imp), nil
	}
	if scale != 1.0 || ref != expr {
		return 0, errors.NewValidationError("threshold", "scaled threshold must reference mean or median", expr)
	}
	v, err := strconv.ParseFloat(expr, 64)
	if err != nil {
		return 0, errors.NewValidationError("threshold", "expected a number, mean, median or <factor>*mean", expr)
	}
	return v, nil
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
