package dataset

import (
	"errors"
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrBadBlob reports an unusable blob definition
var ErrBadBlob = errors.New("dataset: bad blob definition")

// Blob defines one Gaussian component of a synthetic dataset
type Blob struct {
	Mean []float64
	// Sigma is the component covariance; nil means the identity
	Sigma *mat.SymDense
	// Count is the number of points for GenerateBlobs
	Count int
	// Weight is the mixing proportion for SampleMixture
	Weight float64
}

// GenerateBlobs draws Count points from every blob in order and returns
// the stacked observations with their generating component index.
// Deterministic for a given seed.
func GenerateBlobs(blobs []Blob, seed uint64) ([][]float64, []int, error) {
	src := rand.NewSource(seed)

	dists, dim, err := blobNormals(blobs, src)
	if err != nil {
		return nil, nil, err
	}

	var (
		data   [][]float64
		labels []int
	)
	for i, blob := range blobs {
		if blob.Count <= 0 {
			return nil, nil, fmt.Errorf("blob %d has count %d: %w", i, blob.Count, ErrBadBlob)
		}
		for range blob.Count {
			row := make([]float64, dim)
			dists[i].Rand(row)
			data = append(data, row)
			labels = append(labels, i)
		}
	}

	return data, labels, nil
}

// SampleMixture draws n points from the mixture defined by the blobs'
// weights, choosing the generating component per point from a categorical
// distribution. Deterministic for a given seed.
func SampleMixture(blobs []Blob, n int, seed uint64) ([][]float64, []int, error) {
	if n <= 0 {
		return nil, nil, fmt.Errorf("sample size %d: %w", n, ErrBadBlob)
	}

	src := rand.NewSource(seed)

	dists, dim, err := blobNormals(blobs, src)
	if err != nil {
		return nil, nil, err
	}

	weights := make([]float64, len(blobs))
	for i, blob := range blobs {
		if blob.Weight <= 0 {
			return nil, nil, fmt.Errorf("blob %d has weight %v: %w", i, blob.Weight, ErrBadBlob)
		}
		weights[i] = blob.Weight
	}
	cat := distuv.NewCategorical(weights, src)

	data := make([][]float64, n)
	labels := make([]int, n)
	for i := range data {
		idx := int(cat.Rand())
		row := make([]float64, dim)
		dists[idx].Rand(row)
		data[i] = row
		labels[i] = idx
	}

	return data, labels, nil
}

// blobNormals builds the sampling distributions, defaulting covariances to
// the identity
func blobNormals(blobs []Blob, src rand.Source) ([]*distmv.Normal, int, error) {
	if len(blobs) == 0 {
		return nil, 0, fmt.Errorf("no blobs: %w", ErrBadBlob)
	}

	dim := len(blobs[0].Mean)
	if dim == 0 {
		return nil, 0, fmt.Errorf("blob 0 has an empty mean: %w", ErrBadBlob)
	}

	dists := make([]*distmv.Normal, len(blobs))
	for i, blob := range blobs {
		if len(blob.Mean) != dim {
			return nil, 0, fmt.Errorf("blob %d has dimension %d, want %d: %w", i, len(blob.Mean), dim, ErrBadBlob)
		}

		sigma := blob.Sigma
		if sigma == nil {
			sigma = identity(dim)
		}

		normal, ok := distmv.NewNormal(blob.Mean, sigma, src)
		if !ok {
			return nil, 0, fmt.Errorf("blob %d covariance is not positive-definite: %w", i, ErrBadBlob)
		}
		dists[i] = normal
	}

	return dists, dim, nil
}

func identity(dim int) *mat.SymDense {
	m := mat.NewSymDense(dim, nil)
	for i := 0; i < dim; i++ {
		m.SetSym(i, i, 1)
	}
	return m
}
