// Package experiment runs the feature-selection pipeline end to end: load
// a table, split it stratified, standardize with training statistics,
// score a baseline logistic regression, then score the same classifier on
// the columns each selector keeps.
package experiment

import (
	"context"
	"time"

	"github.com/YuminosukeSato/featsel/dataset"
	"github.com/YuminosukeSato/featsel/metrics"
	"github.com/YuminosukeSato/featsel/pkg/errors"
	"github.com/YuminosukeSato/featsel/pkg/log"
	"github.com/YuminosukeSato/featsel/plot"
	"github.com/YuminosukeSato/featsel/preprocessing"
	"github.com/YuminosukeSato/featsel/sklearn/feature_selection"
	"github.com/YuminosukeSato/featsel/sklearn/model_selection"
	"gonum.org/v1/gonum/mat"
)

// selector is what every selection step needs from a fitted selector.
type selector interface {
	Fit(X, y mat.Matrix) error
	Transform(X mat.Matrix) (mat.Matrix, error)
	Selection() *feature_selection.Selection
}

// partitions holds the standardized train/test data shared by all steps.
type partitions struct {
	XTrain, XTest mat.Matrix
	yTrain, yTest mat.Matrix
	nClasses      int
}

// Run executes the pipeline described by cfg. Runs with the same cfg
// produce the same report. ctx is checked between steps and inside RFECV.
func Run(ctx context.Context, cfg Config) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := log.GetLoggerWithName("experiment")

	ds, source, err := LoadDataset(cfg)
	if err != nil {
		return nil, err
	}
	nSamples, nFeatures := ds.Dims()
	logger.Info("dataset loaded",
		log.SourceKey, source,
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		log.ClassesKey, len(ds.ClassNames),
	)

	split, err := model_selection.TrainTestSplit(ds.X, ds.Y,
		model_selection.WithTestSize(cfg.TestSize),
		model_selection.WithRandomSeed(cfg.Seed),
	)
	if err != nil {
		return nil, errors.Wrap(err, "train/test split")
	}

	// 訓練データだけで標準化パラメータを推定する
	scaler := preprocessing.NewStandardScalerDefault()
	XTrain, err := scaler.FitTransform(split.XTrain)
	if err != nil {
		return nil, errors.Wrap(err, "standardize training data")
	}
	XTest, err := scaler.Transform(split.XTest)
	if err != nil {
		return nil, errors.Wrap(err, "standardize test data")
	}
	data := partitions{
		XTrain:   XTrain,
		XTest:    XTest,
		yTrain:   split.YTrain,
		yTest:    split.YTest,
		nClasses: len(ds.ClassNames),
	}

	report := &Report{
		Source:       source,
		NSamples:     nSamples,
		FeatureNames: append([]string(nil), ds.FeatureNames...),
		Classes:      append([]string(nil), ds.ClassNames...),
		ClassCounts:  ds.ClassCounts(),
		TrainSize:    len(split.TrainIndex),
		TestSize:     len(split.TestIndex),
		Seed:         cfg.Seed,
		TrainIndex:   append([]int(nil), split.TrainIndex...),
		TestIndex:    append([]int(nil), split.TestIndex...),
	}

	baseline, err := scoreColumns(ctx, cfg, data, nil)
	if err != nil {
		return nil, errors.Wrap(err, StepBaseline)
	}
	baseline.Name = StepBaseline
	baseline.Features = append([]string(nil), ds.FeatureNames...)
	baseline.NSelected = nFeatures
	report.Steps = append(report.Steps, baseline)
	logStep(logger, baseline)

	for _, name := range cfg.Selectors {
		if err := ctx.Err(); err != nil {
			return nil, errors.WithStack(err)
		}
		start := time.Now()
		step, err := runSelector(ctx, cfg, name, data, ds, report)
		if err != nil {
			return nil, errors.Wrap(err, name)
		}
		step.DurationMs = time.Since(start).Milliseconds()
		report.Steps = append(report.Steps, step)
		logStep(logger, step)
	}

	if err := writePlots(cfg, report); err != nil {
		return nil, err
	}
	return report, nil
}

// LoadDataset reads cfg.DataPath, or generates cfg.Synthetic when the path
// is empty, and returns the dataset with a name for its source.
func LoadDataset(cfg Config) (*dataset.Dataset, string, error) {
	if cfg.DataPath == "" {
		ds, err := dataset.MakeClassification(cfg.Synthetic)
		return ds, "synthetic", err
	}
	opts := []dataset.Option{dataset.WithDelimiter(cfg.Delimiter)}
	if cfg.LabelColumn != "" {
		opts = append(opts, dataset.WithLabelColumn(cfg.LabelColumn))
	}
	ds, err := dataset.LoadCSV(cfg.DataPath, opts...)
	return ds, cfg.DataPath, err
}

// runSelector fits the named selector on the standardized training data
// and scores a fresh classifier on the reduced partitions.
func runSelector(ctx context.Context, cfg Config, name string, data partitions, ds *dataset.Dataset, report *Report) (StepResult, error) {
	var (
		sel       selector
		threshold float64
	)
	switch name {
	case StepRFE:
		sel = feature_selection.NewRFE(cfg.classifier(),
			feature_selection.WithNFeaturesToSelect(cfg.NFeatures),
			feature_selection.WithStep(cfg.Step),
		)
		if err := sel.Fit(data.XTrain, data.yTrain); err != nil {
			return StepResult{}, err
		}
	case StepRFECV:
		rfecv := feature_selection.NewRFECV(cfg.classifier(),
			feature_selection.WithStep(cfg.Step),
			feature_selection.WithCV(model_selection.NewStratifiedKFold(cfg.CVFolds, true, cfg.Seed)),
			feature_selection.WithWorkers(cfg.Workers),
		)
		if err := rfecv.FitContext(ctx, data.XTrain, data.yTrain); err != nil {
			return StepResult{}, err
		}
		report.ValidationCurve = newValidationCurve(rfecv.CVResults())
		sel = rfecv
	case StepLasso:
		sfm := feature_selection.NewSelectFromModel(cfg.lassoEstimator())
		if err := sfm.Fit(data.XTrain, data.yTrain); err != nil {
			return StepResult{}, err
		}
		threshold = sfm.Threshold()
		sel = sfm
	default:
		return StepResult{}, errors.NewValidationError("Selectors", "unknown selector", name)
	}

	selection := sel.Selection()
	step := StepResult{
		Name:      name,
		NSelected: selection.NSelected(),
		Features:  ds.SelectFeatures(selection.Support()),
		Ranking:   selection.Ranking(),
		Threshold: threshold,
	}
	if step.NSelected == 0 {
		step.Note = "no features selected"
		return step, nil
	}

	scored, err := scoreColumns(ctx, cfg, data, selection)
	if err != nil {
		return StepResult{}, err
	}
	step.TrainAccuracy = scored.TrainAccuracy
	step.TestAccuracy = scored.TestAccuracy
	step.CVAccuracy = scored.CVAccuracy
	step.CVAccuracyStd = scored.CVAccuracyStd
	step.TestRecall = scored.TestRecall
	return step, nil
}

// scoreColumns fits a fresh classifier on the training partition reduced
// by selection (all columns when nil) and reports its train, test and
// cross-validated training accuracy plus the per-class test recall.
func scoreColumns(ctx context.Context, cfg Config, data partitions, selection *feature_selection.Selection) (StepResult, error) {
	XTrain, XTest := data.XTrain, data.XTest
	if selection != nil {
		var err error
		if XTrain, err = selection.Transform(data.XTrain); err != nil {
			return StepResult{}, err
		}
		if XTest, err = selection.Transform(data.XTest); err != nil {
			return StepResult{}, err
		}
	}

	cv, err := model_selection.CrossValScore(ctx, cfg.classifier(), XTrain, data.yTrain,
		model_selection.NewStratifiedKFold(cfg.CVFolds, true, cfg.Seed),
		model_selection.WithWorkers(cfg.Workers),
	)
	if err != nil {
		return StepResult{}, errors.Wrap(err, "cross-validation")
	}

	clf := cfg.classifier()
	if err := clf.Fit(XTrain, data.yTrain); err != nil {
		return StepResult{}, err
	}
	train, err := clf.Score(XTrain, data.yTrain)
	if err != nil {
		return StepResult{}, err
	}
	pred, err := clf.Predict(XTest)
	if err != nil {
		return StepResult{}, err
	}
	test, err := metrics.AccuracyScore(data.yTest, pred)
	if err != nil {
		return StepResult{}, err
	}
	cm, err := metrics.ConfusionMatrix(data.yTest, pred, data.nClasses)
	if err != nil {
		return StepResult{}, err
	}
	return StepResult{
		TrainAccuracy: train,
		TestAccuracy:  test,
		CVAccuracy:    cv.Mean(),
		CVAccuracyStd: cv.Std(),
		TestRecall:    metrics.PerClassRecall(cm),
	}, nil
}

func logStep(logger log.Logger, s StepResult) {
	logger.Info("step scored",
		log.StepKey, s.Name,
		log.SelectedFeaturesKey, s.NSelected,
		log.SelectedNamesKey, s.Features,
		log.TrainAccuracyKey, s.TrainAccuracy,
		log.TestAccuracyKey, s.TestAccuracy,
		log.AccuracyKey, s.CVAccuracy,
	)
}

func writePlots(cfg Config, report *Report) error {
	if cfg.PlotPNG == "" && cfg.PlotHTML == "" {
		return nil
	}
	if report.ValidationCurve == nil {
		return errors.NewValueError("experiment.Run", "no validation curve to plot")
	}
	curve := report.ValidationCurve.plotCurve()
	if cfg.PlotPNG != "" {
		if err := plot.ValidationCurvePNG(cfg.PlotPNG, curve); err != nil {
			return err
		}
	}
	if cfg.PlotHTML != "" {
		if err := plot.ValidationCurveHTML(cfg.PlotHTML, curve); err != nil {
			return err
		}
	}
	return nil
}
