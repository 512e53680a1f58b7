// Package log defines standard attribute keys for feature-selection runs.
//
// Keys follow a hierarchical naming convention ("model.name",
// "data.samples", "selection.n_features") so that JSON log lines from a
// pipeline run can be filtered and aggregated consistently.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the estimator or transformer type.
	// Examples: "LogisticRegression", "StandardScaler", "RFECV"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "transform", "fit_transform", "score"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "dataset", "preprocessing", "feature_selection"
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of the pipeline.
	PhaseKey = "ml.phase"

	// StepKey names the pipeline step ("baseline", "rfe", "rfecv", "lasso").
	StepKey = "pipeline.step"
)

// Data Shape and Characteristics
const (
	SamplesKey  = "data.samples"
	FeaturesKey = "data.features"
	ClassesKey  = "data.classes"

	// SourceKey is the path or name of the loaded dataset.
	SourceKey = "data.source"
)

// Performance Metrics
const (
	DurationMsKey = "perf.duration_ms"
	AccuracyKey   = "metrics.accuracy"

	// TrainAccuracyKey and TestAccuracyKey separate the two partitions of a
	// train/test split.
	TrainAccuracyKey = "metrics.train_accuracy"
	TestAccuracyKey  = "metrics.test_accuracy"

	LossKey      = "metrics.loss"
	IterationKey = "training.iteration"
	FoldKey      = "cv.fold"
)

// Feature selection
const (
	// SelectedFeaturesKey is the number of features kept by a selector.
	SelectedFeaturesKey = "selection.n_features"

	// SelectedNamesKey lists the names of the kept features.
	SelectedNamesKey = "selection.features"

	// ThresholdKey records the importance threshold used by SelectFromModel.
	ThresholdKey = "selection.threshold"

	// EliminatedKey is the number of features removed in one RFE round.
	EliminatedKey = "selection.eliminated"
)

// Error and Warning Context
const (
	ErrorCodeKey  = "error.code"
	ErrorTypeKey  = "error.type"
	SuggestionKey = "error.suggestion"
)

// Hyperparameters and Configuration
const (
	HyperParamsKey    = "model.hyperparams"
	RegularizationKey = "hyperparams.regularization"
	RandomSeedKey     = "config.random_seed"
	TestSizeKey       = "config.test_size"
)

// Standard attribute values.
const (
	OperationFit          = "fit"
	OperationPredict      = "predict"
	OperationTransform    = "transform"
	OperationFitTransform = "fit_transform"
	OperationScore        = "score"

	PhaseTraining      = "training"
	PhaseValidation    = "validation"
	PhaseTesting       = "testing"
	PhasePreprocessing = "preprocessing"
	PhaseSelection     = "selection"

	ErrorNotFitted         = "NOT_FITTED"
	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorEmptyData         = "EMPTY_DATA"
	ErrorInvalidInput      = "INVALID_INPUT"
	ErrorConvergence       = "CONVERGENCE_FAILURE"
)
