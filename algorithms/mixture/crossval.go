package mixture

import (
	"fmt"

	"github.com/m-chaves/GMM-EM-algorithm/logging"
)

// CrossValidationParams contains parameters for k-fold cross-validation of
// a mixture fit
type CrossValidationParams struct {
	NumFolds      int `json:"num_folds"`
	NumComponents int `json:"num_components"`
	MaxIterations int `json:"max_iterations"`

	// NumRestarts per fold. A single restart per fold is enough for model
	// comparison; raise it when individual folds land in poor optima.
	NumRestarts int `json:"num_restarts"`

	Init           InitMethod `json:"init"`
	KMeansRestarts int        `json:"kmeans_restarts"`
	Tolerance      float64    `json:"tolerance"`

	// Seed fixes the fold partition and the per-fold fits. The same seed
	// always produces the same partition, so different component counts
	// can be compared on identical folds.
	Seed int64 `json:"seed"`
}

// DefaultCrossValidationParams returns defaults for k components over the
// given number of folds
func DefaultCrossValidationParams(k, folds int) CrossValidationParams {
	return CrossValidationParams{
		NumFolds:       folds,
		NumComponents:  k,
		MaxIterations:  100,
		NumRestarts:    1,
		Init:           RandomCentroids,
		KMeansRestarts: 10,
		Tolerance:      0,
		Seed:           42,
	}
}

// FoldResult is the outcome of one fold: the held-out log-likelihood of
// the model fitted on the complement, or the error that failed the fold.
type FoldResult struct {
	Fold          int     `json:"fold"`
	LogLikelihood float64 `json:"log_likelihood"`
	Err           error   `json:"-"`
}

// CrossValidationResult collects per-fold outcomes in fold order
type CrossValidationResult struct {
	Folds  []FoldResult `json:"folds"`
	Failed int          `json:"failed"`
}

// LogLikelihoods returns the ordered held-out log-likelihood vector. It
// errors if any fold failed, so a partially failed validation cannot be
// mistaken for a complete one.
func (r *CrossValidationResult) LogLikelihoods() ([]float64, error) {
	out := make([]float64, len(r.Folds))
	for i, fold := range r.Folds {
		if fold.Err != nil {
			return nil, fmt.Errorf("fold %d failed: %w", fold.Fold, fold.Err)
		}
		out[i] = fold.LogLikelihood
	}
	return out, nil
}

// CrossValidate estimates held-out performance of a mixture fit by k-fold
// cross-validation: the rows are partitioned into NumFolds blocks of
// near-equal size over a seeded shuffle, and each fold is scored with the
// metrics of a model fitted on all remaining rows.
//
// Failed folds are recorded and counted, never silently dropped; the call
// errors only when every fold failed.
func CrossValidate(data [][]float64, params CrossValidationParams) (*CrossValidationResult, error) {
	n, _, err := validateData(data)
	if err != nil {
		return nil, err
	}
	if params.NumFolds < 2 {
		return nil, fmt.Errorf("need at least 2 folds, got %d: %w", params.NumFolds, ErrInvalidArgument)
	}
	if params.NumFolds > n {
		return nil, fmt.Errorf("number of folds (%d) cannot exceed number of observations (%d): %w", params.NumFolds, n, ErrInvalidArgument)
	}
	if err := validateK(params.NumComponents, n); err != nil {
		return nil, err
	}

	logger := logging.WithFields(logging.Fields{
		"component": "gmm_cv",
		"folds":     params.NumFolds,
		"k":         params.NumComponents,
	})

	folds := foldIndices(n, params.NumFolds, params.Seed)

	gmmParams := GMMParams{
		NumComponents:  params.NumComponents,
		MaxIterations:  params.MaxIterations,
		NumRestarts:    params.NumRestarts,
		Init:           params.Init,
		KMeansRestarts: params.KMeansRestarts,
		Tolerance:      params.Tolerance,
	}
	if gmmParams.NumRestarts < 1 {
		gmmParams.NumRestarts = 1
	}

	result := &CrossValidationResult{Folds: make([]FoldResult, params.NumFolds)}
	for i, holdout := range folds {
		train := complement(data, holdout, n)
		validation := subset(data, holdout)

		// Each fold owns an independent fit seeded from the partition
		// seed and its own index.
		foldParams := gmmParams
		foldParams.RandomSeed = foldSeed(params.Seed, i)

		result.Folds[i] = FoldResult{Fold: i}

		fit, err := NewGMMWithParams(foldParams).Fit(train)
		if err == nil {
			var metrics *Metrics
			metrics, err = Evaluate(validation, fit.Mixture)
			if err == nil {
				result.Folds[i].LogLikelihood = metrics.LogLikelihood
				continue
			}
		}

		logger.Warn("Fold failed", logging.Fields{
			"fold":  i,
			"error": err.Error(),
		})
		result.Folds[i].Err = err
		result.Failed++
	}

	if result.Failed == params.NumFolds {
		return nil, fmt.Errorf("%d of %d folds failed: %w", result.Failed, params.NumFolds, ErrAllFoldsFailed)
	}
	return result, nil
}

// foldSeed derives the base seed of one fold's fit. Folds are strided
// 1<<32 apart, keeping the whole low half of the seed space for the
// per-restart offsets (RandomSeed+r), so restarts of different folds
// cannot land on the same seed.
func foldSeed(seed int64, fold int) int64 {
	return seed + (int64(fold)+1)<<32
}

// foldIndices partitions 0..n-1 into contiguous blocks of near-equal size
// over a seeded permutation. The first n mod folds blocks get one extra
// element. Deterministic for a given (n, folds, seed).
func foldIndices(n, folds int, seed int64) [][]int {
	perm := newRand(seed).Perm(n)

	out := make([][]int, folds)
	base := n / folds
	extra := n % folds
	start := 0
	for i := range out {
		size := base
		if i < extra {
			size++
		}
		out[i] = perm[start : start+size]
		start += size
	}
	return out
}

// subset gathers the rows at the given indices
func subset(data [][]float64, indices []int) [][]float64 {
	out := make([][]float64, 0, len(indices))
	for _, i := range indices {
		out = append(out, data[i])
	}
	return out
}

// complement gathers the rows not in holdout
func complement(data [][]float64, holdout []int, n int) [][]float64 {
	skip := make([]bool, n)
	for _, i := range holdout {
		skip[i] = true
	}
	out := make([][]float64, 0, n-len(holdout))
	for i, row := range data {
		if !skip[i] {
			out = append(out, row)
		}
	}
	return out
}
