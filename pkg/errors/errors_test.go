package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		kind    string
		err     error
		wantMsg string
	}{
		{
			name:    "with original error",
			op:      "Fit",
			kind:    "invalid input",
			err:     fmt.Errorf("test error"),
			wantMsg: "featsel: Fit: invalid input: test error",
		},
		{
			name:    "without original error",
			op:      "Predict",
			kind:    "not fitted",
			err:     nil,
			wantMsg: "featsel: Predict: not fitted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)

			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			// スタックトレースの存在確認
			formatted := fmt.Sprintf("%+v", err)
			if !strings.Contains(formatted, "errors_test.go") {
				t.Error("Expected stack trace to contain test file name")
			}

			var modelErr *ModelError
			if !As(err, &modelErr) {
				t.Error("Error should be castable to *ModelError")
			}
		})
	}
}

func TestNewDimensionError(t *testing.T) {
	tests := []struct {
		axis int
		want string
	}{
		{0, "featsel: Predict: dimension mismatch on axis 0 (rows). Expected 10, got 7"},
		{1, "featsel: Predict: dimension mismatch on axis 1 (features). Expected 10, got 7"},
	}
	for _, tt := range tests {
		err := NewDimensionError("Predict", 10, 7, tt.axis)
		if err.Error() != tt.want {
			t.Errorf("Error() = %v, want %v", err.Error(), tt.want)
		}
		var dimErr *DimensionError
		if !As(err, &dimErr) {
			t.Fatal("Error should be castable to *DimensionError")
		}
		if dimErr.Expected != 10 || dimErr.Got != 7 {
			t.Errorf("unexpected fields: %+v", dimErr)
		}
	}
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("RFE", "Transform")

	want := "featsel: RFE: this model is not fitted yet. Call Fit() before using Transform()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var notFittedErr *NotFittedError
	if !As(err, &notFittedErr) {
		t.Error("Error should be castable to *NotFittedError")
	}
}

func TestNewDataError(t *testing.T) {
	tests := []struct {
		name    string
		row     int
		column  string
		cause   error
		wantMsg string
	}{
		{
			name:    "cell error",
			row:     3,
			column:  "alcohol",
			cause:   fmt.Errorf("not a number"),
			wantMsg: `featsel: wine.csv column "alcohol" row 3: invalid value: not a number`,
		},
		{
			name:    "column error",
			column:  "label",
			wantMsg: `featsel: wine.csv column "label": invalid value`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDataError("wine.csv", tt.row, tt.column, "invalid value", tt.cause)
			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}
			if tt.cause != nil && !Is(err, tt.cause) {
				t.Error("DataError should unwrap to its cause")
			}
		})
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("step", "must be positive", -1)
	want := "featsel: validation failed for parameter 'step': must be positive (got: -1)"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestWarningsRouting(t *testing.T) {
	var got []error
	prev := SetWarningHandler(func(w error) { got = append(got, w) })
	defer SetWarningHandler(prev)

	Warn(NewConvergenceWarning("LogisticRegression", 100, ""))
	if len(got) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(got))
	}
	if !strings.Contains(got[0].Error(), "failed to converge after 100 iterations") {
		t.Errorf("unexpected warning text: %v", got[0])
	}

	var zl []error
	SetZerologWarnFunc(func(w error) { zl = append(zl, w) })
	defer SetZerologWarnFunc(nil)

	Warn(NewSelectionWarning("SelectFromModel", 0, 5, "threshold too high"))
	if len(zl) != 1 || len(got) != 1 {
		t.Errorf("zerolog hook should take precedence: zerolog=%d handler=%d", len(zl), len(got))
	}
}

func TestWrapf(t *testing.T) {
	wrapped := Wrapf(ErrEmptyData, "in %s: expected %d, got %d", "Predict", 10, 5)

	if !Is(wrapped, ErrEmptyData) {
		t.Error("Expected Is(wrapped, ErrEmptyData) to be true")
	}
	if !strings.Contains(wrapped.Error(), "in Predict: expected 10, got 5") {
		t.Error("Expected wrapped error to contain wrapping message")
	}
}

func TestNumericalChecks(t *testing.T) {
	if err := CheckScalar("loss", 1.5, 0); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := CheckNumericalStability("grad", []float64{1, nanValue()}, 3); err == nil {
		t.Error("expected NaN to be detected")
	}
	if Sigmoid(1000) != 1 || Sigmoid(-1000) != 0 {
		t.Errorf("sigmoid saturation: %v %v", Sigmoid(1000), Sigmoid(-1000))
	}

	p := []float64{1, 2, 3}
	Softmax(p)
	sum := p[0] + p[1] + p[2]
	if sum < 1-1e-12 || sum > 1+1e-12 {
		t.Errorf("softmax does not sum to 1: %v", sum)
	}
}

func nanValue() float64 {
	zero := 0.0
	return zero / zero
}
