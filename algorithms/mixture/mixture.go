package mixture

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

// InitMethod selects the parameter initialization strategy
type InitMethod int

const (
	// RandomCentroids draws K distinct observations as initial means,
	// uses the global sample covariance for every component and equal
	// mixing proportions.
	RandomCentroids InitMethod = iota

	// KMeansSeeded runs k-means first and derives means, covariances and
	// proportions from its clusters.
	KMeansSeeded
)

func (m InitMethod) String() string {
	switch m {
	case RandomCentroids:
		return "random_centroids"
	case KMeansSeeded:
		return "k_means"
	default:
		return "unknown"
	}
}

// Component is one Gaussian of the mixture. Mean, Covariance and
// Proportion at index k always describe the same component.
type Component struct {
	Mean       []float64     `json:"mean"`
	Covariance *mat.SymDense `json:"-"`
	Proportion float64       `json:"proportion"`
}

// Mixture holds the parameters of a K-component Gaussian mixture
type Mixture struct {
	Components []Component `json:"components"`
}

// K returns the number of components
func (m *Mixture) K() int {
	return len(m.Components)
}

// Dim returns the dimensionality of the mixture, 0 for an empty mixture
func (m *Mixture) Dim() int {
	if len(m.Components) == 0 {
		return 0
	}
	return len(m.Components[0].Mean)
}

// GMMParams contains parameters for fitting a Gaussian mixture
type GMMParams struct {
	NumComponents int `json:"num_components"`
	MaxIterations int `json:"max_iterations"`

	// NumRestarts runs EM from that many fresh initializations and keeps
	// the restart with the highest final log-likelihood.
	NumRestarts int `json:"num_restarts"`

	// Init selects the initialization strategy
	Init InitMethod `json:"init"`

	// KMeansRestarts is forwarded to the k-means run of KMeansSeeded
	// initialization.
	KMeansRestarts int `json:"kmeans_restarts"`

	// Tolerance controls the stopping rule. The default 0 stops only when
	// two consecutive log-likelihoods are exactly equal, which is how the
	// iteration behaves at a floating-point fixed point. A positive value
	// stops once the absolute improvement falls below it.
	Tolerance float64 `json:"tolerance"`

	RandomSeed int64 `json:"random_seed"`
}

// DefaultGMMParams returns sensible defaults for k components
func DefaultGMMParams(k int) GMMParams {
	return GMMParams{
		NumComponents:  k,
		MaxIterations:  100,
		NumRestarts:    10,
		Init:           RandomCentroids,
		KMeansRestarts: 10,
		Tolerance:      0,
		RandomSeed:     42,
	}
}

// FitResult is the outcome of one completed fit: the best restart's final
// parameters, metrics and per-iteration diagnostics.
type FitResult struct {
	Mixture       *Mixture `json:"mixture"`
	LogLikelihood float64  `json:"log_likelihood"`
	AIC           float64  `json:"aic"`
	BIC           float64  `json:"bic"`

	// LogLikelihoodHistory holds one entry per EM iteration actually run
	LogLikelihoodHistory []float64 `json:"log_likelihood_history"`

	// MeanHistory holds the flattened component means after each
	// iteration, row-major by component index.
	MeanHistory [][]float64 `json:"mean_history"`

	Iterations int  `json:"iterations"`
	Converged  bool `json:"converged"`

	// FailedRestarts counts restarts excluded for degenerate covariances
	// or numeric failures.
	FailedRestarts int `json:"failed_restarts"`
}

// validateData checks that data is a non-empty, non-ragged n x d matrix
// with d > 0.
func validateData(data [][]float64) (n, dim int, err error) {
	n = len(data)
	if n == 0 {
		return 0, 0, fmt.Errorf("empty data: %w", ErrInvalidArgument)
	}
	dim = len(data[0])
	if dim == 0 {
		return 0, 0, fmt.Errorf("zero-dimensional data: %w", ErrInvalidArgument)
	}
	for i, row := range data {
		if len(row) != dim {
			return 0, 0, fmt.Errorf("row %d has %d features, want %d: %w", i, len(row), dim, ErrInvalidArgument)
		}
	}
	return n, dim, nil
}

// validateK checks that 0 < k <= n
func validateK(k, n int) error {
	if k <= 0 {
		return fmt.Errorf("number of components must be positive, got %d: %w", k, ErrInvalidArgument)
	}
	if k > n {
		return fmt.Errorf("number of components (%d) cannot exceed number of observations (%d): %w", k, n, ErrInvalidArgument)
	}
	return nil
}

// validateMixture checks that a mixture is consistent with d-dimensional data
func validateMixture(m *Mixture, dim int) error {
	if m == nil || m.K() == 0 {
		return fmt.Errorf("empty mixture: %w", ErrInvalidArgument)
	}
	for k, c := range m.Components {
		if len(c.Mean) != dim {
			return fmt.Errorf("component %d mean has dimension %d, want %d: %w", k, len(c.Mean), dim, ErrInvalidArgument)
		}
		if c.Covariance == nil || c.Covariance.SymmetricDim() != dim {
			return fmt.Errorf("component %d covariance does not match dimension %d: %w", k, dim, ErrInvalidArgument)
		}
	}
	return nil
}

// normals builds one multivariate normal per component. The Cholesky
// factorization inside distmv.NewNormal doubles as the positive-definite
// check, so a collapsed component surfaces here.
func normals(m *Mixture) ([]*distmv.Normal, error) {
	dists := make([]*distmv.Normal, m.K())
	for k, c := range m.Components {
		normal, ok := distmv.NewNormal(c.Mean, c.Covariance, nil)
		if !ok {
			return nil, fmt.Errorf("component %d covariance is not positive-definite: %w", k, ErrDegenerateCovariance)
		}
		dists[k] = normal
	}
	return dists, nil
}

// newRand returns a seeded source for one unit of work (restart or fold)
func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(uint64(seed)))
}
