package plot

import (
	"github.com/YuminosukeSato/featsel/pkg/errors"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// LineValidationCurve builds an echarts line chart of the curve, with the
// mean ± std band as two extra series when Std is set.
func LineValidationCurve(c Curve) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: c.Title}),
		charts.WithXAxisOpts(opts.XAxis{Name: "features"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "accuracy"}),
	)

	mean := make([]opts.LineData, 0, len(c.Mean))
	for _, v := range c.Mean {
		mean = append(mean, opts.LineData{Value: v})
	}
	line = line.SetXAxis(c.NFeatures).AddSeries("Mean CV accuracy", mean)

	if c.Std != nil {
		upper := make([]opts.LineData, 0, len(c.Mean))
		lower := make([]opts.LineData, 0, len(c.Mean))
		for i, v := range c.Mean {
			upper = append(upper, opts.LineData{Value: v + c.Std[i]})
			lower = append(lower, opts.LineData{Value: v - c.Std[i]})
		}
		line = line.AddSeries("+1 std", upper).AddSeries("-1 std", lower)
	}
	return line
}

// ValidationCurveHTML writes the curve as a standalone HTML page.
func ValidationCurveHTML(path string, c Curve) error {
	const op = "plot.ValidationCurveHTML"
	if err := c.validate(op); err != nil {
		return err
	}
	file, err := create(op, path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := LineValidationCurve(c).Render(file); err != nil {
		return errors.Wrapf(err, "%s: render", op)
	}
	return nil
}
