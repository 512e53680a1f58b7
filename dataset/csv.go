package dataset

import (
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/featsel/pkg/errors"
	"github.com/YuminosukeSato/featsel/pkg/log"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/mat"
)

type loadConfig struct {
	labelColumn string
	delimiter   rune
	source      string
}

// Option configures LoadCSV and ReadCSV.
type Option func(*loadConfig)

// WithLabelColumn names the label column. By default the first column is
// the label.
func WithLabelColumn(name string) Option {
	return func(c *loadConfig) {
		c.labelColumn = name
	}
}

// WithDelimiter sets the field delimiter (default ',').
func WithDelimiter(d rune) Option {
	return func(c *loadConfig) {
		c.delimiter = d
	}
}

// withSource names the input in error messages and logs.
func withSource(name string) Option {
	return func(c *loadConfig) {
		c.source = name
	}
}

// LoadCSV reads a delimited table with a header row from path.
//
//	ds, err := dataset.LoadCSV("wine.csv", dataset.WithLabelColumn("class"))
func LoadCSV(path string, opts ...Option) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewDataError(path, 0, "", "cannot open file", err)
	}
	defer f.Close()

	return ReadCSV(f, append([]Option{withSource(path)}, opts...)...)
}

// ReadCSV reads a delimited table with a header row from r.
//
// Every column other than the label must be numeric. Empty cells and cells
// that do not parse as float64 are reported as a DataError carrying the
// 1-based data row and the column name.
func ReadCSV(r io.Reader, opts ...Option) (*Dataset, error) {
	cfg := &loadConfig{delimiter: ',', source: "<reader>"}
	for _, opt := range opts {
		opt(cfg)
	}

	// 型推論は行わず、全列を文字列として読み込んでから自前でパースする
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.WithDelimiter(cfg.delimiter),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return nil, errors.NewDataError(cfg.source, 0, "", "malformed table", df.Err)
	}
	return fromDataFrame(df, cfg)
}

func fromDataFrame(df dataframe.DataFrame, cfg *loadConfig) (*Dataset, error) {
	names := df.Names()
	nRows := df.Nrow()
	if nRows == 0 || len(names) < 2 {
		return nil, errors.NewDataError(cfg.source, 0, "",
			"table needs a header, at least one data row and at least one feature column", errors.ErrEmptyData)
	}

	label := cfg.labelColumn
	if label == "" {
		label = names[0]
	}
	found := false
	for _, n := range names {
		if n == label {
			found = true
			break
		}
	}
	if !found {
		return nil, errors.NewDataError(cfg.source, 0, label, "label column not found", nil)
	}

	labels := df.Col(label).Records()
	for i, l := range labels {
		if strings.TrimSpace(l) == "" || l == "NaN" {
			return nil, errors.NewDataError(cfg.source, i+1, label, "missing label", nil)
		}
	}

	features := df.Drop(label)
	featureNames := features.Names()
	X := mat.NewDense(nRows, len(featureNames), nil)
	for j, name := range featureNames {
		for i, cell := range features.Col(name).Records() {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, errors.NewDataError(cfg.source, i+1, name, "non-numeric value", err)
			}
			// gota は空セルを "NaN" として返すため、ここで行と列を特定する
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, errors.NewDataError(cfg.source, i+1, name, "missing or non-finite value", nil)
			}
			X.Set(i, j, v)
		}
	}
	y, classes, err := encodeLabels(labels)
	if err != nil {
		return nil, err
	}

	log.GetLoggerWithName("dataset").Debug("table loaded",
		log.SourceKey, cfg.source,
		log.SamplesKey, nRows,
		log.FeaturesKey, len(featureNames),
		log.ClassesKey, len(classes),
	)

	return &Dataset{
		FeatureNames: featureNames,
		X:            X,
		Labels:       labels,
		Y:            y,
		ClassNames:   classes,
	}, nil
}
