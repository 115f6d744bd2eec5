package common

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Shared numeric helpers used across algorithms, backed by gonum for robustness

// LogSumExp computes log(sum(exp(x))) as max(x) + log(sum(exp(x - max(x)))),
// which stays finite when individual terms would overflow or underflow.
// Returns NaN for empty input.
func LogSumExp(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return floats.LogSumExp(x)
}

// DenseFromRows copies a row-major [][]float64 into a gonum dense matrix.
// Returns nil if rows is empty or ragged.
func DenseFromRows(rows [][]float64) *mat.Dense {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil
	}
	dim := len(rows[0])
	m := mat.NewDense(len(rows), dim, nil)
	for i, row := range rows {
		if len(row) != dim {
			return nil
		}
		m.SetRow(i, row)
	}
	return m
}

// SampleCovariance computes the unbiased sample covariance matrix of the
// given observations. Returns nil when fewer than two rows are supplied,
// since the estimate is undefined there.
func SampleCovariance(rows [][]float64) *mat.SymDense {
	if len(rows) < 2 {
		return nil
	}
	x := DenseFromRows(rows)
	if x == nil {
		return nil
	}
	_, dim := x.Dims()
	cov := mat.NewSymDense(dim, nil)
	stat.CovarianceMatrix(cov, x, nil)
	return cov
}
