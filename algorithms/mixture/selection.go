package mixture

import (
	"fmt"
	"math"

	"github.com/m-chaves/GMM-EM-algorithm/logging"
)

// ModelSelectionResult holds per-candidate scores for a sweep over
// component counts. Vectors are indexed like Candidates; entries for a
// failed candidate are NaN with the cause in Errs.
type ModelSelectionResult struct {
	Candidates     []int     `json:"candidates"`
	LogLikelihoods []float64 `json:"log_likelihoods"`
	AICs           []float64 `json:"aics"`
	BICs           []float64 `json:"bics"`

	// CVLogLikelihoods[i][j] is candidate i's held-out log-likelihood on
	// fold j. Nil when cross-validation was not requested; a failed fold
	// is NaN.
	CVLogLikelihoods [][]float64 `json:"cv_log_likelihoods,omitempty"`

	// Fits holds the best fit per candidate, nil for failed candidates
	Fits []*FitResult `json:"-"`

	Errs []error `json:"-"`

	// BestK is the candidate with the highest BIC among those that fitted
	BestK int `json:"best_k"`
}

// SelectModel fits the mixture for every candidate component count on the
// full data and, when cv is non-nil, cross-validates each candidate on the
// identical seeded fold partition, so the resulting vectors are directly
// comparable across K. Per-candidate failures are recorded, not fatal; the
// call errors only when every candidate failed.
func SelectModel(data [][]float64, candidates []int, params GMMParams, cv *CrossValidationParams) (*ModelSelectionResult, error) {
	if _, _, err := validateData(data); err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no candidate component counts: %w", ErrInvalidArgument)
	}

	logger := logging.WithFields(logging.Fields{"component": "gmm_selection"})

	result := &ModelSelectionResult{
		Candidates:     candidates,
		LogLikelihoods: make([]float64, len(candidates)),
		AICs:           make([]float64, len(candidates)),
		BICs:           make([]float64, len(candidates)),
		Fits:           make([]*FitResult, len(candidates)),
		Errs:           make([]error, len(candidates)),
	}
	if cv != nil {
		result.CVLogLikelihoods = make([][]float64, len(candidates))
	}

	bestBIC := math.Inf(-1)
	succeeded := 0
	for i, k := range candidates {
		result.LogLikelihoods[i] = math.NaN()
		result.AICs[i] = math.NaN()
		result.BICs[i] = math.NaN()

		candidateParams := params
		candidateParams.NumComponents = k

		fit, err := NewGMMWithParams(candidateParams).Fit(data)
		if err != nil {
			logger.Warn("Candidate failed", logging.Fields{"k": k, "error": err.Error()})
			result.Errs[i] = err
			continue
		}

		result.Fits[i] = fit
		result.LogLikelihoods[i] = fit.LogLikelihood
		result.AICs[i] = fit.AIC
		result.BICs[i] = fit.BIC
		succeeded++

		if fit.BIC > bestBIC {
			bestBIC = fit.BIC
			result.BestK = k
		}

		if cv != nil {
			result.CVLogLikelihoods[i] = crossValidateCandidate(data, k, *cv, logger)
		}
	}

	if succeeded == 0 {
		return nil, fmt.Errorf("all %d candidate component counts failed: %w", len(candidates), ErrAllRestartsFailed)
	}
	return result, nil
}

// crossValidateCandidate scores one candidate K on the shared fold
// partition, returning NaN for failed folds
func crossValidateCandidate(data [][]float64, k int, params CrossValidationParams, logger logging.Logger) []float64 {
	params.NumComponents = k

	out := make([]float64, params.NumFolds)
	for i := range out {
		out[i] = math.NaN()
	}

	cvResult, err := CrossValidate(data, params)
	if err != nil {
		logger.Warn("Cross-validation failed", logging.Fields{"k": k, "error": err.Error()})
		return out
	}
	for i, fold := range cvResult.Folds {
		if fold.Err == nil {
			out[i] = fold.LogLikelihood
		}
	}
	return out
}
