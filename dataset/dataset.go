// Package dataset loads labelled tabular data into gonum matrices.
//
// A table has one categorical label column and any number of numeric
// feature columns. Labels are encoded to class indices in sorted order, so
// y can be passed straight to the classifiers in sklearn/linear_model.
package dataset

import (
	"github.com/YuminosukeSato/featsel/pkg/errors"
	"github.com/YuminosukeSato/featsel/preprocessing"
	"gonum.org/v1/gonum/mat"
)

// Dataset is an in-memory labelled table.
type Dataset struct {
	// FeatureNames holds the predictor column names in column order of X.
	FeatureNames []string

	// X is the n_samples × n_features predictor matrix.
	X *mat.Dense

	// Labels holds the raw label of every row.
	Labels []string

	// Y is the n_samples × 1 target column; Y[i] indexes ClassNames.
	Y *mat.Dense

	// ClassNames holds the distinct labels in sorted order.
	ClassNames []string
}

// Dims returns the number of samples and features.
func (d *Dataset) Dims() (samples, features int) {
	return d.X.Dims()
}

// ClassCounts returns the number of rows per class, indexed like ClassNames.
func (d *Dataset) ClassCounts() []int {
	counts := make([]int, len(d.ClassNames))
	r, _ := d.Y.Dims()
	for i := 0; i < r; i++ {
		counts[int(d.Y.At(i, 0))]++
	}
	return counts
}

// Subset returns a new Dataset containing the given rows in the given order.
// Feature and class names are shared with d.
func (d *Dataset) Subset(rows []int) (*Dataset, error) {
	if len(rows) == 0 {
		return nil, errors.NewModelError("Dataset.Subset", "empty data", errors.ErrEmptyData)
	}
	n, c := d.X.Dims()
	X := mat.NewDense(len(rows), c, nil)
	Y := mat.NewDense(len(rows), 1, nil)
	labels := make([]string, len(rows))
	for i, r := range rows {
		if r < 0 || r >= n {
			return nil, errors.NewValueError("Dataset.Subset", "row index out of range")
		}
		X.SetRow(i, d.X.RawRowView(r))
		Y.Set(i, 0, d.Y.At(r, 0))
		labels[i] = d.Labels[r]
	}
	return &Dataset{
		FeatureNames: d.FeatureNames,
		X:            X,
		Labels:       labels,
		Y:            Y,
		ClassNames:   d.ClassNames,
	}, nil
}

// SelectFeatures returns the names whose mask entry is true.
func (d *Dataset) SelectFeatures(mask []bool) []string {
	var names []string
	for j, keep := range mask {
		if keep && j < len(d.FeatureNames) {
			names = append(names, d.FeatureNames[j])
		}
	}
	return names
}

// encodeLabels maps labels to class indices in sorted label order.
func encodeLabels(labels []string) (*mat.Dense, []string, error) {
	enc := preprocessing.NewLabelEncoder()
	y, err := enc.FitTransform(labels)
	if err != nil {
		return nil, nil, err
	}
	return y, enc.Classes, nil
}
