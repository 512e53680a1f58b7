package plot

import (
	"path/filepath"

	"github.com/YuminosukeSato/featsel/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// 画像サイズ
const (
	pngWidth  = 6 * vg.Inch
	pngHeight = 4 * vg.Inch
)

// ValidationCurvePNG は検証曲線を画像として保存する
// 形式は拡張子 (.png, .svg, .pdf など) から決まる
// Std があれば平均±標準偏差の帯を点線で描く
func ValidationCurvePNG(path string, c Curve) error {
	const op = "plot.ValidationCurvePNG"
	if err := c.validate(op); err != nil {
		return err
	}
	if filepath.Ext(path) == "" {
		return errors.NewValidationError("path", "needs an image extension", path)
	}

	p := plot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = "Number of features selected"
	p.Y.Label.Text = "Mean CV accuracy"
	p.Add(plotter.NewGrid())

	mean := make(plotter.XYs, len(c.NFeatures))
	for i, n := range c.NFeatures {
		mean[i].X = float64(n)
		mean[i].Y = c.Mean[i]
	}
	line, points, err := plotter.NewLinePoints(mean)
	if err != nil {
		return errors.Wrap(err, op)
	}
	p.Add(line, points)
	p.Legend.Add("mean", line, points)

	if c.Std != nil {
		upper := make(plotter.XYs, len(mean))
		lower := make(plotter.XYs, len(mean))
		for i := range mean {
			upper[i] = plotter.XY{X: mean[i].X, Y: mean[i].Y + c.Std[i]}
			lower[i] = plotter.XY{X: mean[i].X, Y: mean[i].Y - c.Std[i]}
		}
		for _, band := range []plotter.XYs{upper, lower} {
			l, err := plotter.NewLine(band)
			if err != nil {
				return errors.Wrap(err, op)
			}
			l.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
			p.Add(l)
		}
	}

	if err := p.Save(pngWidth, pngHeight, path); err != nil {
		return errors.Wrapf(err, "%s: save %s", op, path)
	}
	return nil
}
