// Package tabeda explores the Boston Housing data and predicts median home
// values with a pretrained in-context regressor.
//
// The workflow runs in a fixed order:
//
//	load → describe/plot → split → fit → predict → evaluate → report
//
// Each stage lives in its own package:
//
//   - dataset: resolves "boston", URLs or CSV paths into a Dataset (gota frame + float64 target)
//   - analysis: shape, describe, missing counts, correlation, skewness, top correlated features
//   - visualize: histograms, correlation heatmap, scatter, pair grid, boxplots (gonum/plot)
//   - split: seeded train/test split and k-fold cross-validation
//   - foundation: the pretrained in-context regressor and its JSON artifact
//   - linear: OLS / ridge baseline
//   - preprocessing: StandardScaler
//   - metrics: MSE, RMSE, MAE, R²
//   - report: terminal tables (lipgloss)
//   - config: defaults, TABEDA_* environment and flags
//   - core/model, core/parallel: model interfaces, gob persistence, row chunking
//   - pkg/errors, pkg/log: typed errors with stacks and zerolog-backed logging
//
// # Quick Start
//
//	ds, err := dataset.Load(ctx, "boston")
//	if err != nil {
//	    return err
//	}
//	res, err := split.TrainTestSplit(ds.Matrix(), ds.TargetVec(), 0.5, 42)
//	if err != nil {
//	    return err
//	}
//	reg, err := foundation.NewRegressor()
//	if err != nil {
//	    return err
//	}
//	if err := reg.Fit(res.XTrain, res.YTrain); err != nil {
//	    return err
//	}
//	pred, err := reg.Predict(res.XTest)
//	if err != nil {
//	    return err
//	}
//	report, err := metrics.Evaluate(res.YTest, pred)
//
// The command in examples/boston_housing runs the whole workflow.
package tabeda
