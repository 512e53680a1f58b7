// Package plot renders the RFECV validation curve: mean cross-validated
// accuracy against the number of features kept.
package plot

import (
	"os"

	"github.com/YuminosukeSato/featsel/pkg/errors"
	"github.com/YuminosukeSato/featsel/sklearn/feature_selection"
)

// Curve is one validation curve. Std may be nil.
type Curve struct {
	Title     string
	NFeatures []int
	Mean      []float64
	Std       []float64
}

// FromCVResults converts RFECV results into a Curve.
func FromCVResults(title string, res *feature_selection.CVResults) Curve {
	if res == nil {
		return Curve{Title: title}
	}
	return Curve{
		Title:     title,
		NFeatures: append([]int(nil), res.NFeatures...),
		Mean:      append([]float64(nil), res.MeanTestScore...),
		Std:       append([]float64(nil), res.StdTestScore...),
	}
}

func (c Curve) validate(op string) error {
	if len(c.NFeatures) == 0 {
		return errors.NewValueError(op, "curve has no points")
	}
	if len(c.Mean) != len(c.NFeatures) {
		return errors.NewDimensionError(op, len(c.NFeatures), len(c.Mean), 0)
	}
	if c.Std != nil && len(c.Std) != len(c.NFeatures) {
		return errors.NewDimensionError(op, len(c.NFeatures), len(c.Std), 0)
	}
	return nil
}

// create opens path for writing, wrapping failures with the operation.
func create(op, path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: create %s", op, path)
	}
	return f, nil
}
