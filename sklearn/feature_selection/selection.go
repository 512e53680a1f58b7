// Package feature_selection implements wrapper and embedded feature
// selectors on top of linear estimators: recursive feature elimination
// (RFE), its cross-validated variant (RFECV) and coefficient-threshold
// selection (SelectFromModel).
//
// Every selector follows the same two-phase protocol. Fit decides which
// columns to keep and freezes that decision in a Selection; Transform then
// keeps exactly those columns, in their original order, from any matrix
// with the same number of columns. Transform never refits.
//
//	rfe := feature_selection.NewRFE(linear_model.NewLogisticRegression(),
//	    feature_selection.WithNFeaturesToSelect(5))
//	if err := rfe.Fit(XTrainStd, yTrain); err != nil { ... }
//	XTrainSel, _ := rfe.Transform(XTrainStd)
//	XTestSel, _ := rfe.Transform(XTestStd)
package feature_selection

import (
	"github.com/YuminosukeSato/featsel/core/model"
	"github.com/YuminosukeSato/featsel/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Selection is the immutable outcome of fitting a selector.
type Selection struct {
	support []bool
	ranking []int
}

// NewSelection builds a Selection from a ranking where rank 1 means
// selected.
func NewSelection(ranking []int) *Selection {
	s := &Selection{
		support: make([]bool, len(ranking)),
		ranking: append([]int(nil), ranking...),
	}
	for j, r := range ranking {
		s.support[j] = r == 1
	}
	return s
}

// Support returns the selection mask, one entry per input column.
func (s *Selection) Support() []bool {
	return append([]bool(nil), s.support...)
}

// Ranking returns the rank of every input column; selected columns have
// rank 1.
func (s *Selection) Ranking() []int {
	return append([]int(nil), s.ranking...)
}

// NFeaturesIn returns the number of columns the selection was fitted on.
func (s *Selection) NFeaturesIn() int {
	return len(s.support)
}

// NSelected returns the number of selected columns.
func (s *Selection) NSelected() int {
	n := 0
	for _, keep := range s.support {
		if keep {
			n++
		}
	}
	return n
}

// Indices returns the selected column indices in ascending order.
func (s *Selection) Indices() []int {
	idx := make([]int, 0, len(s.support))
	for j, keep := range s.support {
		if keep {
			idx = append(idx, j)
		}
	}
	return idx
}

// Names returns the entries of names at the selected positions.
func (s *Selection) Names(names []string) []string {
	out := make([]string, 0, len(s.support))
	for _, j := range s.Indices() {
		if j < len(names) {
			out = append(out, names[j])
		}
	}
	return out
}

// Transform returns a new matrix holding the selected columns of X. X is
// not modified.
func (s *Selection) Transform(X mat.Matrix) (*mat.Dense, error) {
	r, c := X.Dims()
	if c != len(s.support) {
		return nil, errors.NewDimensionError("Selection.Transform", len(s.support), c, 1)
	}
	idx := s.Indices()
	if len(idx) == 0 {
		return nil, errors.NewValueError("Selection.Transform", "no features were selected")
	}
	if r == 0 {
		return nil, errors.NewModelError("Selection.Transform", "empty data", errors.ErrEmptyData)
	}
	return selectColumns(X, idx), nil
}

// selectColumns copies the given columns of X into a new matrix.
func selectColumns(X mat.Matrix, cols []int) *mat.Dense {
	r, _ := X.Dims()
	out := mat.NewDense(r, len(cols), nil)
	for i := 0; i < r; i++ {
		for k, j := range cols {
			out.Set(i, k, X.At(i, j))
		}
	}
	return out
}

// fitted is embedded by every selector to share the post-Fit accessors.
type fitted struct {
	name      string
	selection *Selection
}

// Selection returns the frozen result of the last Fit, or nil.
func (f *fitted) Selection() *Selection {
	return f.selection
}

// Support returns the selection mask, or nil before Fit.
func (f *fitted) Support() []bool {
	if f.selection == nil {
		return nil
	}
	return f.selection.Support()
}

// Ranking returns the feature ranking, or nil before Fit.
func (f *fitted) Ranking() []int {
	if f.selection == nil {
		return nil
	}
	return f.selection.Ranking()
}

// NFeatures returns the number of selected features, or 0 before Fit.
func (f *fitted) NFeatures() int {
	if f.selection == nil {
		return 0
	}
	return f.selection.NSelected()
}

// IsFitted reports whether Fit has completed.
func (f *fitted) IsFitted() bool {
	return f.selection != nil
}

// Transform keeps the selected columns of X.
func (f *fitted) Transform(X mat.Matrix) (mat.Matrix, error) {
	if f.selection == nil {
		return nil, errors.NewNotFittedError(f.name, "Transform")
	}
	return f.selection.Transform(X)
}

var (
	_ model.Selector = (*RFE)(nil)
	_ model.Selector = (*RFECV)(nil)
	_ model.Selector = (*SelectFromModel)(nil)
)
