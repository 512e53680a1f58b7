package preprocessing

import (
	"sort"

	"github.com/YuminosukeSato/featsel/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// LabelEncoder maps categorical labels to class indices 0..n_classes-1 in
// sorted label order, the encoding classifiers in this module expect.
type LabelEncoder struct {
	// Classes holds the sorted distinct labels; index i encodes Classes[i].
	Classes []string

	index map[string]int
}

// NewLabelEncoder creates an unfitted LabelEncoder.
func NewLabelEncoder() *LabelEncoder {
	return &LabelEncoder{}
}

// Fit learns the distinct labels.
func (e *LabelEncoder) Fit(labels []string) error {
	if len(labels) == 0 {
		return errors.NewModelError("LabelEncoder.Fit", "empty data", errors.ErrEmptyData)
	}
	seen := make(map[string]struct{})
	for _, l := range labels {
		seen[l] = struct{}{}
	}
	classes := make([]string, 0, len(seen))
	for l := range seen {
		classes = append(classes, l)
	}
	sort.Strings(classes)

	e.Classes = classes
	e.index = make(map[string]int, len(classes))
	for i, c := range classes {
		e.index[c] = i
	}
	return nil
}

// Transform encodes labels as an n×1 column of class indices.
func (e *LabelEncoder) Transform(labels []string) (*mat.Dense, error) {
	if e.index == nil {
		return nil, errors.NewNotFittedError("LabelEncoder", "Transform")
	}
	if len(labels) == 0 {
		return nil, errors.NewModelError("LabelEncoder.Transform", "empty data", errors.ErrEmptyData)
	}
	y := mat.NewDense(len(labels), 1, nil)
	for i, l := range labels {
		idx, ok := e.index[l]
		if !ok {
			return nil, errors.NewValueError("LabelEncoder.Transform", "unseen label "+l)
		}
		y.Set(i, 0, float64(idx))
	}
	return y, nil
}

// FitTransform fits on labels and encodes them.
func (e *LabelEncoder) FitTransform(labels []string) (*mat.Dense, error) {
	if err := e.Fit(labels); err != nil {
		return nil, err
	}
	return e.Transform(labels)
}

// InverseTransform maps class indices in the first column of y back to labels.
func (e *LabelEncoder) InverseTransform(y mat.Matrix) ([]string, error) {
	if e.index == nil {
		return nil, errors.NewNotFittedError("LabelEncoder", "InverseTransform")
	}
	r, _ := y.Dims()
	out := make([]string, r)
	for i := 0; i < r; i++ {
		idx := int(y.At(i, 0))
		if idx < 0 || idx >= len(e.Classes) || float64(idx) != y.At(i, 0) {
			return nil, errors.NewValueError("LabelEncoder.InverseTransform", "class index out of range")
		}
		out[i] = e.Classes[idx]
	}
	return out, nil
}
