package kmeans

import (
	"fmt"
	"math"
	"math/rand"
)

// Params contains parameters for the k-means clusterer
type Params struct {
	NumClusters   int     `json:"num_clusters"`
	MaxIterations int     `json:"max_iterations"`
	Tolerance     float64 `json:"tolerance"`

	// NumRestarts runs the whole algorithm several times from fresh
	// initializations and keeps the solution with the lowest inertia,
	// reducing sensitivity to the starting centers.
	NumRestarts int `json:"num_restarts"`

	// Initialization parameters
	InitMethod string `json:"init_method"` // "random", "kmeans++"
	RandomSeed int64  `json:"random_seed"`
}

// DefaultParams returns sensible defaults for k clusters
func DefaultParams(k int) Params {
	return Params{
		NumClusters:   k,
		MaxIterations: 100,
		Tolerance:     1e-4,
		NumRestarts:   10,
		InitMethod:    "kmeans++",
		RandomSeed:    42,
	}
}

// Result contains the output of a k-means run
type Result struct {
	Centers    [][]float64 `json:"centers"` // Cluster centroids, one per cluster
	Labels     []int       `json:"labels"`  // Cluster assignment for each point
	Sizes      []int       `json:"sizes"`   // Number of points per cluster
	Inertia    float64     `json:"inertia"` // Total within-cluster sum of squares
	Converged  bool        `json:"converged"`
	Iterations int         `json:"iterations"`
}

// KMeans implements Lloyd's algorithm with k-means++ or random initialization
//
// References:
//   - MacQueen, J. (1967). "Some methods for classification and analysis of
//     multivariate observations"
//   - Arthur, D., & Vassilvitskii, S. (2007). "k-means++: The advantages of
//     careful seeding"
type KMeans struct {
	params Params
}

// New creates a k-means clusterer for k clusters with default parameters
func New(k int) *KMeans {
	return &KMeans{params: DefaultParams(k)}
}

// NewWithParams creates a k-means clusterer with custom parameters
func NewWithParams(params Params) *KMeans {
	return &KMeans{params: params}
}

// Fit clusters the data and returns the best result over the configured
// number of restarts. Restart r uses seed RandomSeed+r, so results are
// reproducible under a fixed seed.
func (km *KMeans) Fit(data [][]float64) (*Result, error) {
	n := len(data)
	k := km.params.NumClusters

	if n == 0 {
		return nil, fmt.Errorf("empty data")
	}
	if k <= 0 {
		return nil, fmt.Errorf("number of clusters must be positive, got %d", k)
	}
	if k > n {
		return nil, fmt.Errorf("number of clusters (%d) cannot exceed number of data points (%d)", k, n)
	}

	restarts := km.params.NumRestarts
	if restarts < 1 {
		restarts = 1
	}

	var best *Result
	for r := 0; r < restarts; r++ {
		rng := rand.New(rand.NewSource(km.params.RandomSeed + int64(r)))
		result := km.run(data, rng)
		if best == nil || result.Inertia < best.Inertia {
			best = result
		}
	}

	return best, nil
}

// run executes one restart of Lloyd's algorithm
func (km *KMeans) run(data [][]float64, rng *rand.Rand) *Result {
	n := len(data)
	k := km.params.NumClusters
	dim := len(data[0])

	centers := km.initializeCenters(data, k, rng)
	labels := make([]int, n)

	converged := false
	iterations := 0

	for iterations < km.params.MaxIterations && !converged {
		// Assignment step: assign each point to closest center
		totalMovement := 0.0
		for i, point := range data {
			minDist := math.Inf(1)
			bestCluster := 0

			for j, center := range centers {
				dist := euclideanDistance(point, center)
				if dist < minDist {
					minDist = dist
					bestCluster = j
				}
			}

			if labels[i] != bestCluster {
				totalMovement += 1.0
			}
			labels[i] = bestCluster
		}

		// Update step: recalculate centers
		newCenters := make([][]float64, k)
		clusterSizes := make([]int, k)

		for i := range newCenters {
			newCenters[i] = make([]float64, dim)
		}

		for i, point := range data {
			cluster := labels[i]
			clusterSizes[cluster]++
			for j := range point {
				newCenters[cluster][j] += point[j]
			}
		}

		for i := range newCenters {
			if clusterSizes[i] > 0 {
				for j := range newCenters[i] {
					newCenters[i][j] /= float64(clusterSizes[i])
				}
			} else {
				// Keep the previous center for an empty cluster
				copy(newCenters[i], centers[i])
			}
		}

		centers = newCenters

		converged = (totalMovement / float64(n)) < km.params.Tolerance
		iterations++
	}

	sizes := make([]int, k)
	for _, label := range labels {
		sizes[label]++
	}

	return &Result{
		Centers:    centers,
		Labels:     labels,
		Sizes:      sizes,
		Inertia:    inertia(data, labels, centers),
		Converged:  converged,
		Iterations: iterations,
	}
}

// initializeCenters initializes cluster centers using k-means++ or random selection
// Reference: Arthur, D., & Vassilvitskii, S. (2007)
func (km *KMeans) initializeCenters(data [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(data)
	dim := len(data[0])
	centers := make([][]float64, k)

	if km.params.InitMethod == "random" {
		for i := range k {
			centers[i] = make([]float64, dim)
			copy(centers[i], data[rng.Intn(n)])
		}
		return centers
	}

	// k-means++ initialization
	// Choose first center randomly
	centers[0] = make([]float64, dim)
	copy(centers[0], data[rng.Intn(n)])

	// Choose remaining centers with probability proportional to squared
	// distance from the nearest already-chosen center
	for i := 1; i < k; i++ {
		distances := make([]float64, n)
		totalDist := 0.0

		for j, point := range data {
			minDist := math.Inf(1)
			for l := range i {
				dist := euclideanDistance(point, centers[l])
				if dist < minDist {
					minDist = dist
				}
			}
			distances[j] = minDist * minDist
			totalDist += distances[j]
		}

		if totalDist > 0 {
			r := rng.Float64() * totalDist
			cumSum := 0.0
			for j, dist := range distances {
				cumSum += dist
				if cumSum >= r {
					centers[i] = make([]float64, dim)
					copy(centers[i], data[j])
					break
				}
			}
		} else {
			// All points coincide with existing centers
			centers[i] = make([]float64, dim)
			copy(centers[i], data[rng.Intn(n)])
		}
	}

	return centers
}

// inertia computes total within-cluster sum of squares
func inertia(data [][]float64, labels []int, centers [][]float64) float64 {
	total := 0.0
	for i, point := range data {
		dist := euclideanDistance(point, centers[labels[i]])
		total += dist * dist
	}
	return total
}

// euclideanDistance calculates Euclidean distance between two points
func euclideanDistance(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return math.Sqrt(sum)
}
