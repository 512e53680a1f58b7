package feature_selection

import (
	"sort"

	"github.com/YuminosukeSato/featsel/core/model"
	"github.com/YuminosukeSato/featsel/pkg/errors"
	"github.com/YuminosukeSato/featsel/pkg/log"
	"gonum.org/v1/gonum/mat"
)

// RFE ranks features by recursive feature elimination.
//
// Starting from all features, it repeatedly fits a clone of the estimator
// on the remaining features and removes the step features with the
// smallest importance (squared coefficients summed over classes) until
// the requested number remains. Ties are broken by column order, the
// lower index going first. Selected features get rank 1, the features
// removed in the last round rank 2, and so on.
type RFE struct {
	fitted

	estimator model.Estimator
	cfg       config

	final model.Estimator
}

// NewRFE creates an RFE selector around estimator, which must implement
// model.CoefEstimator or FeatureImportancer.
func NewRFE(estimator model.Estimator, opts ...Option) *RFE {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &RFE{
		fitted:    fitted{name: "RFE"},
		estimator: estimator,
		cfg:       cfg,
	}
}

// Fit runs the elimination on X, y. A previous result is replaced only if
// Fit succeeds.
func (r *RFE) Fit(X, y mat.Matrix) error {
	_, d, err := checkXY("RFE.Fit", X, y)
	if err != nil {
		return err
	}
	step, err := resolveStep(r.cfg.step, d)
	if err != nil {
		return err
	}

	nSelect := r.cfg.nFeaturesToSelect
	switch {
	case nSelect <= 0:
		nSelect = d / 2
		if nSelect < 1 {
			nSelect = 1
		}
	case nSelect > d:
		errors.Warn(errors.NewSelectionWarning("RFE", d, d,
			"n_features_to_select exceeds the number of features, keeping all"))
		nSelect = d
	}

	ranking, final, err := eliminate(r.estimator, X, y, nSelect, step, nil)
	if err != nil {
		return err
	}
	r.selection = NewSelection(ranking)
	r.final = final

	log.GetLoggerWithName("feature_selection").Info("selection fitted",
		log.ModelNameKey, "RFE",
		log.FeaturesKey, d,
		log.SelectedFeaturesKey, nSelect,
	)
	return nil
}

// FitTransform fits on X, y and returns the selected columns of X.
func (r *RFE) FitTransform(X, y mat.Matrix) (mat.Matrix, error) {
	if err := r.Fit(X, y); err != nil {
		return nil, err
	}
	return r.Transform(X)
}

// Estimator returns the estimator fitted on the selected features.
func (r *RFE) Estimator() model.Estimator {
	return r.final
}

// Predict reduces X to the selected features and predicts with the final
// estimator.
func (r *RFE) Predict(X mat.Matrix) (mat.Matrix, error) {
	Xs, err := r.Transform(X)
	if err != nil {
		return nil, err
	}
	return r.final.Predict(Xs)
}

// Score reduces X to the selected features and scores the final estimator.
func (r *RFE) Score(X, y mat.Matrix) (float64, error) {
	Xs, err := r.Transform(X)
	if err != nil {
		return 0, err
	}
	return r.final.Score(Xs, y)
}

// stepHook is called after each fit on the elimination path with the
// fitted estimator and the feature columns it was fitted on.
type stepHook func(est model.Estimator, features []int) error

// eliminate runs one elimination path from all columns of X down to
// nSelect columns and returns the ranking and the estimator fitted on the
// survivors.
func eliminate(base model.Estimator, X, y mat.Matrix, nSelect, step int, hook stepHook) ([]int, model.Estimator, error) {
	_, d := X.Dims()
	support := make([]bool, d)
	ranking := make([]int, d)
	for j := range support {
		support[j] = true
		ranking[j] = 1
	}
	logger := log.GetLoggerWithName("feature_selection").With(log.ModelNameKey, "RFE")

	remaining := func() []int {
		features := make([]int, 0, d)
		for j, keep := range support {
			if keep {
				features = append(features, j)
			}
		}
		return features
	}

	fit := func(features []int) (model.Estimator, error) {
		est := base.Clone()
		if err := est.Fit(selectColumns(X, features), y); err != nil {
			return nil, errors.Wrapf(err, "fitting on %d features", len(features))
		}
		if hook != nil {
			if err := hook(est, features); err != nil {
				return nil, err
			}
		}
		return est, nil
	}

	for features := remaining(); len(features) > nSelect; features = remaining() {
		est, err := fit(features)
		if err != nil {
			return nil, nil, err
		}
		imp, err := Importances(est, SquaredSum)
		if err != nil {
			return nil, nil, err
		}
		if len(imp) != len(features) {
			return nil, nil, errors.NewDimensionError("RFE.eliminate", len(features), len(imp), 1)
		}

		order := make([]int, len(features))
		for k := range order {
			order[k] = k
		}
		sort.SliceStable(order, func(a, b int) bool { return imp[order[a]] < imp[order[b]] })

		drop := step
		if len(features)-nSelect < drop {
			drop = len(features) - nSelect
		}
		for _, k := range order[:drop] {
			support[features[k]] = false
		}
		for j, keep := range support {
			if !keep {
				ranking[j]++
			}
		}
		logger.Debug("elimination round",
			log.FeaturesKey, len(features),
			log.EliminatedKey, drop,
		)
	}

	final, err := fit(remaining())
	if err != nil {
		return nil, nil, err
	}
	return ranking, final, nil
}

// resolveStep turns the step option into a feature count per round.
func resolveStep(step float64, nFeatures int) (int, error) {
	switch {
	case !(step > 0):
		return 0, errors.NewValidationError("step", "must be positive", step)
	case step < 1:
		n := int(step * float64(nFeatures))
		if n < 1 {
			n = 1
		}
		return n, nil
	default:
		return int(step), nil
	}
}

// checkXY validates a supervised input pair and returns its shape.
func checkXY(op string, X, y mat.Matrix) (n, d int, err error) {
	if X == nil || y == nil {
		return 0, 0, errors.NewValueError(op, "X and y are required")
	}
	n, d = X.Dims()
	if n == 0 || d == 0 {
		return 0, 0, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if yRows, _ := y.Dims(); yRows != n {
		return 0, 0, errors.NewDimensionError(op, n, yRows, 0)
	}
	return n, d, nil
}
