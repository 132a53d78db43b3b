// Package log defines standard attribute keys for the EDA and regression
// workflow.
//
// Keys follow a hierarchical naming convention (e.g. "data.samples",
// "metrics.mse") so log lines can be filtered by stage.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the type of regression model.
	// Examples: "foundation.Regressor", "linear.Regression"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "load", "analyze", "render", "split", "fit", "predict", "evaluate"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of the workflow.
	PhaseKey = "ml.phase"
)

// Dataset Context
const (
	// DatasetIDKey is the identifier passed to the loader.
	DatasetIDKey = "dataset.id"

	// SourceKey is the resolved location (URL or path) of the dataset.
	SourceKey = "dataset.source"

	// TargetKey is the name of the target column.
	TargetKey = "dataset.target"

	// ColumnKey names a single column.
	ColumnKey = "dataset.column"
)

// Data Shape
const (
	// SamplesKey indicates the number of samples (rows).
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns).
	FeaturesKey = "data.features"

	// TrainSamplesKey / TestSamplesKey are the partition sizes after a split.
	TrainSamplesKey = "data.train_samples"
	TestSamplesKey  = "data.test_samples"

	// TestSizeKey is the requested test fraction.
	TestSizeKey = "data.test_size"
)

// Performance and Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// MSEKey records mean squared error.
	MSEKey = "metrics.mse"

	// R2ScoreKey records R² coefficient of determination.
	R2ScoreKey = "metrics.r2_score"

	// MAEKey records mean absolute error.
	MAEKey = "metrics.mae"

	// FoldKey records the cross-validation fold index.
	FoldKey = "cv.fold"
)

// Output and Configuration
const (
	// PathKey is a written file (plot, model).
	PathKey = "output.path"

	// CountKey is a generic count of produced items.
	CountKey = "output.count"

	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"

	// ArtifactKey names the pretrained artifact in use.
	ArtifactKey = "model.artifact"

	// ContextRowsKey is the number of training rows kept as in-context examples.
	ContextRowsKey = "model.context_rows"
)

// Error Context
const (
	// ErrorTypeKey categorizes the type of error encountered.
	ErrorTypeKey = "error.type"

	// SuggestionKey provides helpful suggestions for resolving issues.
	SuggestionKey = "error.suggestion"
)

// Standard attribute values.
const (
	OperationLoad     = "load"
	OperationAnalyze  = "analyze"
	OperationRender   = "render"
	OperationSplit    = "split"
	OperationFit      = "fit"
	OperationPredict  = "predict"
	OperationEvaluate = "evaluate"

	PhaseExploration = "exploration"
	PhaseTraining    = "training"
	PhaseInference   = "inference"
	PhaseEvaluation  = "evaluation"
)
