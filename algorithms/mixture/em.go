package mixture

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/m-chaves/GMM-EM-algorithm/logging"
)

// GMM fits a Gaussian mixture model to multivariate data with the
// expectation-maximization algorithm
//
// References:
//   - Dempster, A. P., Laird, N. M., & Rubin, D. B. (1977). "Maximum
//     likelihood from incomplete data via the EM algorithm"
//   - Bishop, C. M. (2006). "Pattern Recognition and Machine Learning",
//     chapter 9
type GMM struct {
	params GMMParams
	logger logging.Logger
}

// NewGMM creates a fitter for k components with default parameters
func NewGMM(k int) *GMM {
	return NewGMMWithParams(DefaultGMMParams(k))
}

// NewGMMWithParams creates a fitter with custom parameters
func NewGMMWithParams(params GMMParams) *GMM {
	return &GMM{
		params: params,
		logger: logging.WithFields(logging.Fields{
			"component": "gmm",
			"init":      params.Init.String(),
		}),
	}
}

// Fit runs EM from NumRestarts independent initializations and returns the
// restart with the strictly highest final log-likelihood; the first restart
// found wins ties. Restart r is seeded with RandomSeed+r, so a fit is
// reproducible regardless of how the restarts are scheduled.
//
// A restart whose covariances degenerate or whose likelihood turns
// non-finite is logged, counted in FailedRestarts and excluded from the
// comparison. Fit fails only when every restart failed.
func (g *GMM) Fit(data [][]float64) (*FitResult, error) {
	n, _, err := validateData(data)
	if err != nil {
		return nil, err
	}
	if err := validateK(g.params.NumComponents, n); err != nil {
		return nil, err
	}
	if g.params.MaxIterations < 1 {
		return nil, fmt.Errorf("need at least 1 iteration, got %d: %w", g.params.MaxIterations, ErrInvalidArgument)
	}

	restarts := g.params.NumRestarts
	if restarts < 1 {
		restarts = 1
	}

	var best *FitResult
	failed := 0
	for r := 0; r < restarts; r++ {
		result, err := g.fitOnce(data, g.params.RandomSeed+int64(r))
		if err != nil {
			if errors.Is(err, ErrInvalidArgument) {
				return nil, err
			}
			g.logger.Warn("Restart failed", logging.Fields{
				"restart": r,
				"error":   err.Error(),
			})
			failed++
			continue
		}

		if best == nil || result.LogLikelihood > best.LogLikelihood {
			best = result
		}
	}

	if best == nil {
		return nil, fmt.Errorf("%d of %d restarts failed: %w", failed, restarts, ErrAllRestartsFailed)
	}

	best.FailedRestarts = failed
	g.logger.Debug("Fit completed", logging.Fields{
		"log_likelihood":  best.LogLikelihood,
		"iterations":      best.Iterations,
		"converged":       best.Converged,
		"failed_restarts": failed,
	})
	return best, nil
}

// fitOnce runs a single EM restart to convergence or MaxIterations
func (g *GMM) fitOnce(data [][]float64, seed int64) (*FitResult, error) {
	m, err := initialize(data, g.params, seed, newRand(seed))
	if err != nil {
		return nil, err
	}

	result := &FitResult{}
	prevLogLikelihood := math.NaN()

	for iter := 0; iter < g.params.MaxIterations; iter++ {
		// E-step: posterior responsibilities under the current parameters
		dists, err := normals(m)
		if err != nil {
			return nil, err
		}
		gamma, _, err := responsibilities(data, m, dists)
		if err != nil {
			return nil, err
		}

		// M-step: closed-form parameter updates from the responsibilities
		m = mStep(data, gamma)

		// Score the just-updated parameters. Evaluate also re-runs the
		// positive-definite check, so a collapsed component fails the
		// restart here.
		metrics, err := Evaluate(data, m)
		if err != nil {
			return nil, err
		}

		result.LogLikelihoodHistory = append(result.LogLikelihoodHistory, metrics.LogLikelihood)
		result.MeanHistory = append(result.MeanHistory, flattenMeans(m))
		result.Iterations = iter + 1
		result.LogLikelihood = metrics.LogLikelihood
		result.AIC = metrics.AIC
		result.BIC = metrics.BIC

		if g.stopped(metrics.LogLikelihood, prevLogLikelihood) {
			result.Converged = true
			break
		}
		prevLogLikelihood = metrics.LogLikelihood
	}

	result.Mixture = m
	return result, nil
}

// stopped applies the stopping rule. With Tolerance 0 the iteration stops
// only when two consecutive log-likelihoods are exactly equal, the
// floating-point fixed point EM settles into on convergent data.
func (g *GMM) stopped(logLikelihood, previous float64) bool {
	if math.IsNaN(previous) {
		return false
	}
	if g.params.Tolerance > 0 {
		return math.Abs(logLikelihood-previous) <= g.params.Tolerance
	}
	return logLikelihood == previous
}

// mStep computes the maximum-likelihood parameter updates given the
// responsibilities: for each component k, with nk = sum_i gamma[i][k],
//
//	proportion_k = nk / n
//	mean_k       = sum_i gamma[i][k] * x_i / nk
//	cov_k        = sum_i gamma[i][k] * (x_i - mean_k)(x_i - mean_k)^T / nk
func mStep(data [][]float64, gamma [][]float64) *Mixture {
	n := len(data)
	dim := len(data[0])
	k := len(gamma[0])

	components := make([]Component, k)
	for j := 0; j < k; j++ {
		nk := 0.0
		for i := range gamma {
			nk += gamma[i][j]
		}

		mean := make([]float64, dim)
		for i, row := range data {
			w := gamma[i][j]
			for d := range mean {
				mean[d] += w * row[d]
			}
		}
		for d := range mean {
			mean[d] /= nk
		}

		cov := mat.NewSymDense(dim, nil)
		for i, row := range data {
			w := gamma[i][j]
			for a := 0; a < dim; a++ {
				da := row[a] - mean[a]
				for b := a; b < dim; b++ {
					cov.SetSym(a, b, cov.At(a, b)+w*da*(row[b]-mean[b]))
				}
			}
		}
		for a := 0; a < dim; a++ {
			for b := a; b < dim; b++ {
				cov.SetSym(a, b, cov.At(a, b)/nk)
			}
		}

		components[j] = Component{
			Mean:       mean,
			Covariance: cov,
			Proportion: nk / float64(n),
		}
	}

	return &Mixture{Components: components}
}

// flattenMeans snapshots the component means row-major by component index
func flattenMeans(m *Mixture) []float64 {
	dim := m.Dim()
	flat := make([]float64, 0, m.K()*dim)
	for _, c := range m.Components {
		flat = append(flat, c.Mean...)
	}
	return flat
}
