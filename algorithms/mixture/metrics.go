package mixture

import (
	"fmt"
	"math"

	"github.com/m-chaves/GMM-EM-algorithm/algorithms/common"
)

// Metrics bundles the model-selection scores of a mixture on a dataset.
// All three follow a higher-is-better convention: AIC and BIC are the
// log-likelihood minus a complexity penalty, so the selection rule is
// "maximize" for every entry.
type Metrics struct {
	LogLikelihood float64 `json:"log_likelihood"`
	AIC           float64 `json:"aic"`
	BIC           float64 `json:"bic"`
	NumFreeParams int     `json:"num_free_params"`
}

// NumFreeParams returns the effective parameter count of a K-component
// mixture in d dimensions: (K-1) mixing weights, K means of dimension d,
// and K*d*(d-1)/2 covariance entries.
func NumFreeParams(k, dim int) int {
	return (k - 1) + k*dim + k*dim*(dim-1)/2
}

// Evaluate computes the log-likelihood, AIC and BIC of the mixture on the
// given data. The data may be disjoint from whatever the mixture was
// fitted on; neither the data nor the mixture is mutated.
func Evaluate(data [][]float64, m *Mixture) (*Metrics, error) {
	n, dim, err := validateData(data)
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

	k := m.K()
	logLikelihood := 0.0
	logWeighted := make([]float64, k)
	for i, row := range data {
		for j, c := range m.Components {
			logWeighted[j] = math.Log(c.Proportion) + dists[j].LogProb(row)
		}
		rowLik := common.LogSumExp(logWeighted)
		if math.IsNaN(rowLik) || math.IsInf(rowLik, 0) {
			return nil, fmt.Errorf("non-finite log-likelihood at observation %d: %w", i, ErrNumericFailure)
		}
		logLikelihood += rowLik
	}

	eta := NumFreeParams(k, dim)
	return &Metrics{
		LogLikelihood: logLikelihood,
		AIC:           logLikelihood - float64(eta),
		BIC:           logLikelihood - 0.5*float64(eta)*math.Log(float64(n)),
		NumFreeParams: eta,
	}, nil
}
