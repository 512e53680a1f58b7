// Package featsel is a small machine learning toolkit for Go focused on
// feature selection for tabular classification.
//
// It follows the scikit-learn fit/transform protocol on gonum matrices:
// estimators and transformers learn their parameters in Fit from training
// data only, and Transform applies those frozen parameters to any matrix
// with the same columns.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "context"
//	    "log"
//	    "os"
//
//	    "github.com/YuminosukeSato/featsel/experiment"
//	)
//
//	func main() {
//	    cfg := experiment.DefaultConfig()
//	    cfg.DataPath = "wine.csv"
//	    cfg.LabelColumn = "class"
//
//	    report, err := experiment.Run(context.Background(), cfg)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    report.WriteText(os.Stdout)
//	}
//
// # Packages
//
//   - dataset: CSV loading into matrices and synthetic classification data
//   - preprocessing: StandardScaler and LabelEncoder
//   - sklearn/model_selection: stratified train/test split, KFold,
//     StratifiedKFold and CrossValScore
//   - sklearn/linear_model: LogisticRegression (OvR or multinomial, L1/L2)
//     and Lasso
//   - sklearn/feature_selection: RFE, RFECV and SelectFromModel
//   - metrics: accuracy, confusion matrix, MSE and R²
//   - experiment: the end-to-end selection pipeline and its report
//   - plot: validation curve as an image (gonum/plot) or HTML (go-echarts)
//   - core/model, core/parallel: shared interfaces and worker fan-out
//   - pkg/errors, pkg/log: typed errors, warnings and structured logging
//
// # Command line
//
//	go run ./examples/feature_selection -data wine.csv -label class -k 5 -plot curve.html
//
// Without -data the pipeline runs on synthetic data with informative and
// noise columns on mixed scales.
package featsel
