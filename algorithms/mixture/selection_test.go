package mixture_test

import (
	"math"
	"testing"

	"github.com/m-chaves/GMM-EM-algorithm/algorithms/mixture"
)

func TestSelectModelScoresAllCandidates(t *testing.T) {
	data, _ := threeBlobs(t)
	candidates := []int{1, 2, 3, 4}

	params := mixture.DefaultGMMParams(0)
	params.NumRestarts = 3

	result, err := mixture.SelectModel(data, candidates, params, nil)
	if err != nil {
		t.Fatalf("SelectModel: %v", err)
	}

	if len(result.LogLikelihoods) != len(candidates) {
		t.Fatalf("got %d scores, want %d", len(result.LogLikelihoods), len(candidates))
	}
	for i, k := range candidates {
		if result.Errs[i] != nil {
			t.Fatalf("candidate K=%d failed: %v", k, result.Errs[i])
		}
		if math.IsNaN(result.LogLikelihoods[i]) || math.IsNaN(result.BICs[i]) {
			t.Errorf("candidate K=%d has NaN scores despite succeeding", k)
		}
	}

	// Log-likelihood on the training data cannot decrease with more
	// components when each K fits well.
	if result.LogLikelihoods[2] < result.LogLikelihoods[0] {
		t.Errorf("K=3 log-likelihood (%v) below K=1 (%v) on three-blob data", result.LogLikelihoods[2], result.LogLikelihoods[0])
	}

	// BestK must agree with the reported BIC vector
	bestIdx := 0
	for i := range result.BICs {
		if result.BICs[i] > result.BICs[bestIdx] {
			bestIdx = i
		}
	}
	if result.BestK != candidates[bestIdx] {
		t.Errorf("BestK = %d, want argmax-BIC candidate %d", result.BestK, candidates[bestIdx])
	}

	// With n = 150 > e^2 the BIC penalty per parameter exceeds AIC's, so
	// no step up in K can gain more BIC than AIC.
	for i := 1; i < len(candidates); i++ {
		aicGain := result.AICs[i] - result.AICs[i-1]
		bicGain := result.BICs[i] - result.BICs[i-1]
		if bicGain > aicGain+1e-9 {
			t.Errorf("K=%d -> K=%d: BIC gain %v exceeds AIC gain %v", candidates[i-1], candidates[i], bicGain, aicGain)
		}
	}
}

func TestSelectModelWithCrossValidation(t *testing.T) {
	data, _ := threeBlobs(t)
	candidates := []int{2, 3}

	params := mixture.DefaultGMMParams(0)
	params.NumRestarts = 2

	cv := mixture.DefaultCrossValidationParams(0, 5)
	cv.NumRestarts = 1

	result, err := mixture.SelectModel(data, candidates, params, &cv)
	if err != nil {
		t.Fatalf("SelectModel: %v", err)
	}

	if len(result.CVLogLikelihoods) != len(candidates) {
		t.Fatalf("got %d CV rows, want %d", len(result.CVLogLikelihoods), len(candidates))
	}
	for i, k := range candidates {
		if len(result.CVLogLikelihoods[i]) != cv.NumFolds {
			t.Fatalf("candidate K=%d has %d fold scores, want %d", k, len(result.CVLogLikelihoods[i]), cv.NumFolds)
		}
		for j, score := range result.CVLogLikelihoods[i] {
			if math.IsNaN(score) {
				t.Errorf("candidate K=%d fold %d failed", k, j)
			}
		}
	}
}
