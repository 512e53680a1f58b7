package model_selection

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/YuminosukeSato/featsel/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Split is a train/test partition of a dataset. TrainIndex and TestIndex
// are the original row numbers, sorted ascending, disjoint and together
// covering every row.
type Split struct {
	XTrain, XTest *mat.Dense
	YTrain, YTest *mat.Dense
	TrainIndex    []int
	TestIndex     []int
}

type splitConfig struct {
	testSize   float64
	randomSeed uint64
	stratify   bool
	shuffle    bool
}

// SplitOption configures TrainTestSplit.
type SplitOption func(*splitConfig)

// WithTestSize sets the test fraction in (0, 1). Default 0.3.
func WithTestSize(size float64) SplitOption {
	return func(c *splitConfig) { c.testSize = size }
}

// WithRandomSeed fixes the shuffling seed. Default 0.
func WithRandomSeed(seed uint64) SplitOption {
	return func(c *splitConfig) { c.randomSeed = seed }
}

// WithStratify toggles stratification on y. Default true.
func WithStratify(stratify bool) SplitOption {
	return func(c *splitConfig) { c.stratify = stratify }
}

// WithShuffle toggles shuffling. Without shuffling and stratification the
// last rows form the test set. Default true.
func WithShuffle(shuffle bool) SplitOption {
	return func(c *splitConfig) { c.shuffle = shuffle }
}

// TrainTestSplit partitions X and y into training and test sets.
//
// The test set holds ceil(testSize * n) rows. When stratified, each class
// contributes its proportional share, with rounding leftovers going to the
// classes with the largest fractional share (ties to the lower label), so
// class proportions in both partitions match the input within one row per
// class. The same seed and options always produce the same partition.
//
//	split, err := model_selection.TrainTestSplit(ds.X, ds.Y,
//	    model_selection.WithTestSize(0.3),
//	    model_selection.WithRandomSeed(42),
//	)
func TrainTestSplit(X, y mat.Matrix, opts ...SplitOption) (*Split, error) {
	cfg := &splitConfig{testSize: 0.3, stratify: true, shuffle: true}
	for _, opt := range opts {
		opt(cfg)
	}

	n, _ := X.Dims()
	if n == 0 {
		return nil, errors.NewModelError("TrainTestSplit", "empty data", errors.ErrEmptyData)
	}
	if y == nil {
		return nil, errors.NewValueError("TrainTestSplit", "y is required")
	}
	if yRows, _ := y.Dims(); yRows != n {
		return nil, errors.NewDimensionError("TrainTestSplit", n, yRows, 0)
	}
	if cfg.testSize <= 0 || cfg.testSize >= 1 || math.IsNaN(cfg.testSize) {
		return nil, errors.NewValidationError("test_size", "must be in (0, 1)", cfg.testSize)
	}
	nTest := int(math.Ceil(cfg.testSize * float64(n)))
	if nTest >= n {
		return nil, errors.NewValidationError("test_size",
			"leaves no training samples", cfg.testSize)
	}

	var r *rand.Rand
	if cfg.shuffle {
		r = rand.New(rand.NewPCG(cfg.randomSeed, cfg.randomSeed))
	}

	var test []int
	if cfg.stratify {
		groups := groupByClass(y, r)
		for _, g := range groups {
			if len(g) < 2 {
				return nil, errors.NewValueError("TrainTestSplit",
					"the least populated class has only 1 member, which is too few to stratify")
			}
		}
		if len(groups) > nTest || len(groups) > n-nTest {
			return nil, errors.NewValidationError("test_size",
				"each partition needs at least one sample per class", cfg.testSize)
		}
		for k, take := range allocate(groups, nTest, n) {
			test = append(test, groups[k][:take]...)
		}
	} else {
		indices := make([]int, n)
		for i := range indices {
			indices[i] = i
		}
		if r != nil {
			r.Shuffle(n, func(i, j int) { indices[i], indices[j] = indices[j], indices[i] })
		}
		test = indices[n-nTest:]
	}

	inTest := make([]bool, n)
	for _, idx := range test {
		inTest[idx] = true
	}
	train := make([]int, 0, n-nTest)
	test = make([]int, 0, nTest)
	for i := 0; i < n; i++ {
		if inTest[i] {
			test = append(test, i)
		} else {
			train = append(train, i)
		}
	}

	return &Split{
		XTrain:     SelectRows(X, train),
		XTest:      SelectRows(X, test),
		YTrain:     SelectRows(y, train),
		YTest:      SelectRows(y, test),
		TrainIndex: train,
		TestIndex:  test,
	}, nil
}

// allocate distributes nTest test rows over class groups in proportion to
// their size using the largest-remainder method. Each class keeps at least
// one row on both sides of the split; the caller guarantees every group has
// two or more members and len(groups) <= min(nTest, n-nTest).
func allocate(groups [][]int, nTest, n int) []int {
	type share struct {
		class int
		frac  float64
	}
	takes := make([]int, len(groups))
	shares := make([]share, len(groups))
	assigned := 0
	for k, g := range groups {
		exact := float64(nTest) * float64(len(g)) / float64(n)
		takes[k] = min(max(int(math.Floor(exact)), 1), len(g)-1)
		shares[k] = share{class: k, frac: exact - float64(takes[k])}
		assigned += takes[k]
	}
	sort.SliceStable(shares, func(i, j int) bool { return shares[i].frac > shares[j].frac })
	// 下限の 1 件で超過した分は端数の小さいクラスから戻す
	for i := len(shares) - 1; assigned > nTest; i = (i - 1 + len(shares)) % len(shares) {
		k := shares[i].class
		if takes[k] > 1 {
			takes[k]--
			assigned--
		}
	}
	for i := 0; assigned < nTest; i = (i + 1) % len(shares) {
		k := shares[i].class
		if takes[k] < len(groups[k])-1 {
			takes[k]++
			assigned++
		}
	}
	return takes
}
