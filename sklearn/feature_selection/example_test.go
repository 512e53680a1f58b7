package feature_selection_test

import (
	"fmt"
	"log"

	"github.com/YuminosukeSato/featsel/dataset"
	"github.com/YuminosukeSato/featsel/preprocessing"
	"github.com/YuminosukeSato/featsel/sklearn/feature_selection"
	"github.com/YuminosukeSato/featsel/sklearn/linear_model"
	"github.com/YuminosukeSato/featsel/sklearn/model_selection"
)

func ExampleRFE() {
	ds, err := dataset.MakeClassification(dataset.DefaultClassificationConfig())
	if err != nil {
		log.Fatal(err)
	}
	split, err := model_selection.TrainTestSplit(ds.X, ds.Y, model_selection.WithRandomSeed(1))
	if err != nil {
		log.Fatal(err)
	}

	scaler := preprocessing.NewStandardScalerDefault()
	XTrain, _ := scaler.FitTransform(split.XTrain)
	XTest, _ := scaler.Transform(split.XTest)

	rfe := feature_selection.NewRFE(linear_model.NewLogisticRegression(),
		feature_selection.WithNFeaturesToSelect(5))
	if err := rfe.Fit(XTrain, split.YTrain); err != nil {
		log.Fatal(err)
	}
	XTestSel, _ := rfe.Transform(XTest)
	_, cols := XTestSel.Dims()

	fmt.Println(rfe.Selection().Names(ds.FeatureNames), cols)
}

func ExampleSelectFromModel() {
	ds, err := dataset.MakeClassification(dataset.DefaultClassificationConfig())
	if err != nil {
		log.Fatal(err)
	}
	X, _ := preprocessing.NewStandardScalerDefault().FitTransform(ds.X)

	lasso := linear_model.NewLogisticRegression(
		linear_model.WithLRPenalty(linear_model.PenaltyL1),
		linear_model.WithLRC(0.1),
	)
	sfm := feature_selection.NewSelectFromModel(lasso)
	if err := sfm.Fit(X, ds.Y); err != nil {
		log.Fatal(err)
	}
	fmt.Println(sfm.NFeatures(), sfm.Threshold())
}
