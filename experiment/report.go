package experiment

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/YuminosukeSato/featsel/pkg/errors"
	"github.com/YuminosukeSato/featsel/plot"
	"github.com/YuminosukeSato/featsel/sklearn/feature_selection"
	"github.com/goccy/go-json"
)

// Report is the outcome of Run.
type Report struct {
	Source       string   `json:"source"`
	NSamples     int      `json:"n_samples"`
	FeatureNames []string `json:"feature_names"`
	Classes      []string `json:"classes"`
	ClassCounts  []int    `json:"class_counts"`
	TrainSize    int      `json:"train_size"`
	TestSize     int      `json:"test_size"`
	Seed         uint64   `json:"seed"`

	// TrainIndex and TestIndex are the source rows of each partition in
	// ascending order.
	TrainIndex []int `json:"train_index"`
	TestIndex  []int `json:"test_index"`

	// Steps starts with the baseline on all features, followed by one
	// entry per selector in the configured order.
	Steps []StepResult `json:"steps"`

	// ValidationCurve is set when RFECV ran.
	ValidationCurve *ValidationCurve `json:"validation_curve,omitempty"`
}

// StepResult is one scored row of the report.
type StepResult struct {
	Name          string   `json:"name"`
	NSelected     int      `json:"n_selected"`
	Features      []string `json:"features"`
	Ranking       []int    `json:"ranking,omitempty"`
	Threshold     float64  `json:"threshold,omitempty"`
	TrainAccuracy float64  `json:"train_accuracy"`
	TestAccuracy  float64  `json:"test_accuracy"`
	// CVAccuracy is the mean stratified k-fold accuracy on the reduced
	// training partition.
	CVAccuracy    float64   `json:"cv_accuracy"`
	CVAccuracyStd float64   `json:"cv_accuracy_std"`
	TestRecall    []float64 `json:"test_recall,omitempty"`
	DurationMs    int64     `json:"duration_ms,omitempty"`
	Note          string    `json:"note,omitempty"`
}

// ValidationCurve is the RFECV accuracy per number of features.
type ValidationCurve struct {
	NFeatures    []int     `json:"n_features"`
	MeanAccuracy []float64 `json:"mean_accuracy"`
	StdAccuracy  []float64 `json:"std_accuracy"`
	Best         int       `json:"best_n_features"`
}

func newValidationCurve(res *feature_selection.CVResults) *ValidationCurve {
	if res == nil {
		return nil
	}
	best, _ := res.Best()
	return &ValidationCurve{
		NFeatures:    append([]int(nil), res.NFeatures...),
		MeanAccuracy: append([]float64(nil), res.MeanTestScore...),
		StdAccuracy:  append([]float64(nil), res.StdTestScore...),
		Best:         best,
	}
}

func (v *ValidationCurve) plotCurve() plot.Curve {
	return plot.Curve{
		Title:     "RFECV validation accuracy",
		NFeatures: v.NFeatures,
		Mean:      v.MeanAccuracy,
		Std:       v.StdAccuracy,
	}
}

// Step returns the step with the given name.
func (r *Report) Step(name string) (StepResult, bool) {
	for _, s := range r.Steps {
		if s.Name == name {
			return s, true
		}
	}
	return StepResult{}, false
}

// WriteText prints the report as aligned text tables.
func (r *Report) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "source:\t%s\n", r.Source)
	fmt.Fprintf(tw, "samples:\t%d (train %d, test %d)\n", r.NSamples, r.TrainSize, r.TestSize)
	fmt.Fprintf(tw, "features:\t%d\n", len(r.FeatureNames))
	classes := make([]string, len(r.Classes))
	for k, c := range r.Classes {
		classes[k] = fmt.Sprintf("%s (%d)", c, r.ClassCounts[k])
	}
	fmt.Fprintf(tw, "classes:\t%s\n", strings.Join(classes, ", "))
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "step\tfeatures\ttrain acc\tcv acc\ttest acc\tselected")
	for _, s := range r.Steps {
		selected := strings.Join(s.Features, ", ")
		if s.Name == StepBaseline {
			selected = "(all)"
		}
		if s.Note != "" {
			fmt.Fprintf(tw, "%s\t%d\t-\t-\t-\t%s\n", s.Name, s.NSelected, s.Note)
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%.4f\t%.4f ± %.4f\t%.4f\t%s\n",
			s.Name, s.NSelected, s.TrainAccuracy, s.CVAccuracy, s.CVAccuracyStd, s.TestAccuracy, selected)
	}

	for _, s := range r.Steps {
		if len(s.Ranking) == 0 || s.Name == StepLasso {
			continue
		}
		fmt.Fprintln(tw)
		fmt.Fprintf(tw, "%s ranking\t\n", s.Name)
		for j, rank := range s.Ranking {
			fmt.Fprintf(tw, "  %s\t%d\n", r.FeatureNames[j], rank)
		}
	}

	if v := r.ValidationCurve; v != nil {
		fmt.Fprintln(tw)
		fmt.Fprintf(tw, "rfecv\tmean acc\tstd\n")
		for k, n := range v.NFeatures {
			mark := ""
			if n == v.Best {
				mark = " *"
			}
			fmt.Fprintf(tw, "  %d%s\t%.4f\t%.4f\n", n, mark, v.MeanAccuracy[k], v.StdAccuracy[k])
		}
	}
	return errors.Wrap(tw.Flush(), "write report")
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode report")
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return errors.Wrap(err, "write report")
}
