package kmeans_test

import (
	"math"
	"testing"

	"github.com/m-chaves/GMM-EM-algorithm/algorithms/kmeans"
	"github.com/m-chaves/GMM-EM-algorithm/dataset"
)

func threeBlobs(t *testing.T) ([][]float64, []int) {
	t.Helper()
	data, labels, err := dataset.GenerateBlobs([]dataset.Blob{
		{Mean: []float64{0, 0}, Count: 50},
		{Mean: []float64{10, 0}, Count: 50},
		{Mean: []float64{5, 10}, Count: 50},
	}, 7)
	if err != nil {
		t.Fatalf("GenerateBlobs: %v", err)
	}
	return data, labels
}

func TestKMeansRecoversSeparatedBlobs(t *testing.T) {
	data, _ := threeBlobs(t)

	result, err := kmeans.New(3).Fit(data)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}

	if len(result.Centers) != 3 {
		t.Fatalf("got %d centers, want 3", len(result.Centers))
	}

	truth := [][]float64{{0, 0}, {10, 0}, {5, 10}}
	for _, center := range truth {
		closest := math.Inf(1)
		for _, got := range result.Centers {
			d := math.Hypot(got[0]-center[0], got[1]-center[1])
			if d < closest {
				closest = d
			}
		}
		if closest > 0.5 {
			t.Errorf("no recovered center within 0.5 of %v (closest %v)", center, closest)
		}
	}

	total := 0
	for _, size := range result.Sizes {
		if size == 0 {
			t.Error("empty cluster on well-separated data")
		}
		total += size
	}
	if total != len(data) {
		t.Errorf("cluster sizes sum to %d, want %d", total, len(data))
	}
}

func TestKMeansDeterministicUnderSeed(t *testing.T) {
	data, _ := threeBlobs(t)

	params := kmeans.DefaultParams(3)
	params.RandomSeed = 99

	first, err := kmeans.NewWithParams(params).Fit(data)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	second, err := kmeans.NewWithParams(params).Fit(data)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}

	if first.Inertia != second.Inertia {
		t.Errorf("inertia differs across runs with the same seed: %v vs %v", first.Inertia, second.Inertia)
	}
	for i := range first.Labels {
		if first.Labels[i] != second.Labels[i] {
			t.Fatalf("label %d differs across runs with the same seed", i)
		}
	}
}

func TestKMeansInvalidArguments(t *testing.T) {
	data := [][]float64{{1, 1}, {2, 2}}

	if _, err := kmeans.New(3).Fit(data); err == nil {
		t.Error("expected error for more clusters than points")
	}
	if _, err := kmeans.New(0).Fit(data); err == nil {
		t.Error("expected error for zero clusters")
	}
	if _, err := kmeans.New(2).Fit(nil); err == nil {
		t.Error("expected error for empty data")
	}
}

func TestKMeansRestartsNeverWorsenInertia(t *testing.T) {
	data, _ := threeBlobs(t)

	single := kmeans.DefaultParams(3)
	single.NumRestarts = 1

	many := kmeans.DefaultParams(3)
	many.NumRestarts = 10

	one, err := kmeans.NewWithParams(single).Fit(data)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	ten, err := kmeans.NewWithParams(many).Fit(data)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}

	// Restart r uses seed RandomSeed+r, so the 10-restart run includes the
	// single run's initialization and can only match or improve it.
	if ten.Inertia > one.Inertia {
		t.Errorf("10 restarts produced worse inertia (%v) than 1 restart (%v)", ten.Inertia, one.Inertia)
	}
}
