// Package split partitions feature rows into train and test subsets and
// generates k-fold cross-validation folds.
package split

import (
	"math"
	"math/rand/v2"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/biswajyotidutta/tabeda/pkg/errors"
)

// Result is a train/test partition with row correspondence preserved.
// TrainIndex and TestIndex point into the rows of the original input.
type Result struct {
	XTrain *mat.Dense
	XTest  *mat.Dense
	YTrain *mat.VecDense
	YTest  *mat.VecDense

	TrainIndex []int
	TestIndex  []int
}

// TrainTestSplit shuffles the rows of X and y with a PCG generator seeded by
// seed and puts ceil(testSize·n) of them in the test partition.
//
// testSize must lie in (0, 1) and leave both partitions non-empty.
func TrainTestSplit(X mat.Matrix, y mat.Vector, testSize float64, seed uint64) (*Result, error) {
	n, _ := X.Dims()
	if n == 0 {
		return nil, errors.NewValueError("TrainTestSplit", "empty data")
	}
	if y.Len() != n {
		return nil, errors.NewDimensionError("TrainTestSplit", n, y.Len(), 0)
	}
	if math.IsNaN(testSize) || testSize <= 0 || testSize >= 1 {
		return nil, errors.NewValidationError("test_size", "must be in (0, 1)", testSize)
	}

	nTest := int(math.Ceil(testSize * float64(n)))
	nTrain := n - nTest
	if nTest == 0 || nTrain == 0 {
		return nil, errors.NewValidationError("test_size",
			"leaves an empty partition for "+strconv.Itoa(n)+" samples", testSize)
	}

	perm := Permutation(n, seed)
	test := perm[:nTest]
	train := perm[nTest:]

	return &Result{
		XTrain:     Rows(X, train),
		XTest:      Rows(X, test),
		YTrain:     Elements(y, train),
		YTest:      Elements(y, test),
		TrainIndex: train,
		TestIndex:  test,
	}, nil
}

// Permutation returns a seeded shuffle of 0..n-1.
func Permutation(n int, seed uint64) []int {
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	r := rand.New(rand.NewPCG(seed, seed))
	r.Shuffle(n, func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})
	return indices
}

// Rows copies the selected rows of X into a new matrix.
func Rows(X mat.Matrix, idx []int) *mat.Dense {
	_, c := X.Dims()
	out := mat.NewDense(len(idx), c, nil)
	for i, r := range idx {
		for j := 0; j < c; j++ {
			out.Set(i, j, X.At(r, j))
		}
	}
	return out
}

// Elements copies the selected entries of y into a new vector.
func Elements(y mat.Vector, idx []int) *mat.VecDense {
	out := mat.NewVecDense(len(idx), nil)
	for i, r := range idx {
		out.SetVec(i, y.AtVec(r))
	}
	return out
}
