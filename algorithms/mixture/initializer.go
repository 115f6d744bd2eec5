package mixture

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/m-chaves/GMM-EM-algorithm/algorithms/common"
	"github.com/m-chaves/GMM-EM-algorithm/algorithms/kmeans"
)

// initialize produces the starting parameters for one EM restart. The
// returned mixture has already passed the positive-definite check.
func initialize(data [][]float64, params GMMParams, seed int64, rng *rand.Rand) (*Mixture, error) {
	var (
		m   *Mixture
		err error
	)
	switch params.Init {
	case RandomCentroids:
		m, err = initRandomCentroids(data, params.NumComponents, rng)
	case KMeansSeeded:
		m, err = initKMeansSeeded(data, params.NumComponents, params.KMeansRestarts, params.MaxIterations, seed)
	default:
		return nil, fmt.Errorf("unknown initialization method %d: %w", params.Init, ErrInvalidArgument)
	}
	if err != nil {
		return nil, err
	}
	// Surface singular starting covariances before any EM work is done
	if _, err := normals(m); err != nil {
		return nil, fmt.Errorf("initialization: %w", err)
	}
	return m, nil
}

// initRandomCentroids draws K distinct observations uniformly without
// replacement as the initial means. Every component starts with the global
// sample covariance of the data and proportion 1/K.
func initRandomCentroids(data [][]float64, k int, rng *rand.Rand) (*Mixture, error) {
	n := len(data)
	dim := len(data[0])

	globalCov := common.SampleCovariance(data)
	if globalCov == nil {
		return nil, fmt.Errorf("cannot estimate a sample covariance from %d observations: %w", n, ErrDegenerateCovariance)
	}

	perm := rng.Perm(n)
	components := make([]Component, k)
	for i := range components {
		mean := make([]float64, dim)
		copy(mean, data[perm[i]])

		cov := mat.NewSymDense(dim, nil)
		cov.CopySym(globalCov)

		components[i] = Component{
			Mean:       mean,
			Covariance: cov,
			Proportion: 1.0 / float64(k),
		}
	}

	return &Mixture{Components: components}, nil
}

// initKMeansSeeded clusters the data with k-means and derives component k's
// mean from centroid k, its covariance from the sample covariance of
// cluster k's members, and its proportion from the cluster's share of the
// data. A cluster too small to carry a covariance estimate is a degenerate
// initialization, not something to paper over.
func initKMeansSeeded(data [][]float64, k, kmRestarts, maxIterations int, seed int64) (*Mixture, error) {
	n := len(data)
	dim := len(data[0])

	kmParams := kmeans.DefaultParams(k)
	kmParams.MaxIterations = maxIterations
	kmParams.RandomSeed = seed
	if kmRestarts > 0 {
		kmParams.NumRestarts = kmRestarts
	}

	result, err := kmeans.NewWithParams(kmParams).Fit(data)
	if err != nil {
		return nil, fmt.Errorf("k-means seeding: %w", err)
	}

	// Group observations by assigned cluster
	members := make([][][]float64, k)
	for i, label := range result.Labels {
		members[label] = append(members[label], data[i])
	}

	components := make([]Component, k)
	for i := range components {
		if len(members[i]) <= dim {
			return nil, fmt.Errorf("k-means cluster %d has %d points in %d dimensions: %w", i, len(members[i]), dim, ErrDegenerateCovariance)
		}

		cov := common.SampleCovariance(members[i])
		if cov == nil {
			return nil, fmt.Errorf("k-means cluster %d covariance: %w", i, ErrDegenerateCovariance)
		}

		mean := make([]float64, dim)
		copy(mean, result.Centers[i])

		components[i] = Component{
			Mean:       mean,
			Covariance: cov,
			Proportion: float64(result.Sizes[i]) / float64(n),
		}
	}

	return &Mixture{Components: components}, nil
}
