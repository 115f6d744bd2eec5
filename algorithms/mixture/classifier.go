package mixture

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/m-chaves/GMM-EM-algorithm/algorithms/common"
)

// Responsibilities computes the n x K posterior probability matrix of the
// data under the mixture: entry (i, k) is the probability that observation
// i was generated by component k. Each row sums to 1. Inputs are not
// mutated.
func Responsibilities(data [][]float64, m *Mixture) ([][]float64, error) {
	_, dim, err := validateData(data)
	if err != nil {
		return nil, err
	}
	if err := validateMixture(m, dim); err != nil {
		return nil, err
	}

	dists, err := normals(m)
	if err != nil {
		return nil, err
	}

	gamma, _, err := responsibilities(data, m, dists)
	return gamma, err
}

// Classify assigns each observation to the component with the highest
// posterior responsibility. Ties go to the lowest component index. The
// function is pure: identical inputs always produce identical assignments.
func Classify(data [][]float64, m *Mixture) ([]int, error) {
	gamma, err := Responsibilities(data, m)
	if err != nil {
		return nil, err
	}

	labels := make([]int, len(gamma))
	for i, row := range gamma {
		labels[i] = floats.MaxIdx(row)
	}
	return labels, nil
}

// responsibilities is the shared E-step: log weighted densities per
// component, row-normalized in log space. It also returns the total
// log-likelihood of the data under the current parameters, since the
// per-row normalizers are exactly the per-row log-likelihood terms.
func responsibilities(data [][]float64, m *Mixture, dists []*distmv.Normal) ([][]float64, float64, error) {
	k := m.K()
	gamma := make([][]float64, len(data))
	logLikelihood := 0.0

	logWeighted := make([]float64, k)
	for i, row := range data {
		for j, c := range m.Components {
			logWeighted[j] = math.Log(c.Proportion) + dists[j].LogProb(row)
		}

		norm := common.LogSumExp(logWeighted)
		if math.IsNaN(norm) || math.IsInf(norm, 0) {
			return nil, 0, fmt.Errorf("non-finite posterior at observation %d: %w", i, ErrNumericFailure)
		}
		logLikelihood += norm

		gamma[i] = make([]float64, k)
		for j := range gamma[i] {
			gamma[i][j] = math.Exp(logWeighted[j] - norm)
		}
	}

	return gamma, logLikelihood, nil
}
