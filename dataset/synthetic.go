package dataset

import (
	"fmt"
	"math/rand/v2"

	"github.com/YuminosukeSato/featsel/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ClassificationConfig controls MakeClassification.
type ClassificationConfig struct {
	// NSamples is the total number of rows, spread evenly over classes.
	NSamples int
	// NInformative features carry class-dependent means.
	NInformative int
	// NNoise features are standard normal regardless of class.
	NNoise int
	// NClasses is the number of distinct labels.
	NClasses int
	// ClassSep scales the distance between class centres.
	ClassSep float64
	// Scales multiplies feature j by Scales[j % len(Scales)] after
	// generation, so columns live on very different ranges. Nil keeps unit
	// scale.
	Scales []float64
	// Seed makes the output reproducible.
	Seed uint64
}

// DefaultClassificationConfig mirrors a small wine-like table: three
// classes, a handful of informative columns and some noise, on mixed
// scales.
func DefaultClassificationConfig() ClassificationConfig {
	return ClassificationConfig{
		NSamples:     180,
		NInformative: 5,
		NNoise:       8,
		NClasses:     3,
		ClassSep:     1.5,
		Scales:       []float64{1, 10, 100, 0.1},
		Seed:         42,
	}
}

// MakeClassification generates isotropic Gaussian blobs with informative
// columns first, then noise columns. Informative columns are named
// "informative_<j>", noise columns "noise_<j>", labels "class_<k>".
func MakeClassification(cfg ClassificationConfig) (*Dataset, error) {
	switch {
	case cfg.NSamples <= 0:
		return nil, errors.NewValidationError("NSamples", "must be positive", cfg.NSamples)
	case cfg.NClasses < 2:
		return nil, errors.NewValidationError("NClasses", "must be at least 2", cfg.NClasses)
	case cfg.NInformative <= 0:
		return nil, errors.NewValidationError("NInformative", "must be positive", cfg.NInformative)
	case cfg.NNoise < 0:
		return nil, errors.NewValidationError("NNoise", "must be non-negative", cfg.NNoise)
	case cfg.NSamples < cfg.NClasses:
		return nil, errors.NewValidationError("NSamples", "must be at least NClasses", cfg.NSamples)
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))
	nFeatures := cfg.NInformative + cfg.NNoise

	centres := make([][]float64, cfg.NClasses)
	for k := range centres {
		centres[k] = make([]float64, cfg.NInformative)
		for j := range centres[k] {
			centres[k][j] = rng.NormFloat64() * cfg.ClassSep
		}
	}

	X := mat.NewDense(cfg.NSamples, nFeatures, nil)
	labels := make([]string, cfg.NSamples)
	for i := 0; i < cfg.NSamples; i++ {
		k := i % cfg.NClasses
		labels[i] = fmt.Sprintf("class_%d", k)
		for j := 0; j < nFeatures; j++ {
			v := rng.NormFloat64()
			if j < cfg.NInformative {
				v += centres[k][j]
			}
			if len(cfg.Scales) > 0 {
				v *= cfg.Scales[j%len(cfg.Scales)]
			}
			X.Set(i, j, v)
		}
	}

	names := make([]string, nFeatures)
	for j := range names {
		if j < cfg.NInformative {
			names[j] = fmt.Sprintf("informative_%d", j)
		} else {
			names[j] = fmt.Sprintf("noise_%d", j-cfg.NInformative)
		}
	}

	if err := errors.CheckMatrix("MakeClassification", X, cfg.NSamples, nFeatures, 0); err != nil {
		return nil, err
	}

	y, classes, err := encodeLabels(labels)
	if err != nil {
		return nil, err
	}
	return &Dataset{
		FeatureNames: names,
		X:            X,
		Labels:       labels,
		Y:            y,
		ClassNames:   classes,
	}, nil
}
