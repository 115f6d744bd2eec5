package mixture_test

import (
	"math"
	"testing"

	"github.com/m-chaves/GMM-EM-algorithm/algorithms/mixture"
)

func TestResponsibilitiesRowsSumToOne(t *testing.T) {
	data, _ := threeBlobs(t)
	m := unitMixture([]float64{0, 0}, []float64{10, 0}, []float64{5, 10})

	gamma, err := mixture.Responsibilities(data, m)
	if err != nil {
		t.Fatalf("Responsibilities: %v", err)
	}

	if len(gamma) != len(data) {
		t.Fatalf("got %d rows, want %d", len(gamma), len(data))
	}
	for i, row := range gamma {
		sum := 0.0
		for _, v := range row {
			if v < 0 || v > 1 {
				t.Errorf("responsibility out of [0, 1] at row %d: %v", i, v)
			}
			sum += v
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("row %d sums to %v, want 1", i, sum)
		}
	}
}

func TestClassifyNearestComponentWins(t *testing.T) {
	m := unitMixture([]float64{0, 0}, []float64{10, 0})

	labels, err := mixture.Classify([][]float64{{-1, 0}, {11, 1}, {9, 0}}, m)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	want := []int{0, 1, 1}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("observation %d assigned to %d, want %d", i, labels[i], want[i])
		}
	}
}

func TestClassifyIdempotent(t *testing.T) {
	data, _ := threeBlobs(t)
	m := unitMixture([]float64{0, 0}, []float64{10, 0}, []float64{5, 10})

	first, err := mixture.Classify(data, m)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	second, err := mixture.Classify(data, m)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("assignment %d changed between identical calls", i)
		}
	}
}

func TestClassifyTieBreaksToLowestIndex(t *testing.T) {
	// Two identical components: every posterior is exactly 0.5/0.5
	m := unitMixture([]float64{0, 0}, []float64{0, 0})

	labels, err := mixture.Classify([][]float64{{0, 0}, {3, -1}}, m)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	for i, label := range labels {
		if label != 0 {
			t.Errorf("observation %d assigned to %d on a tie, want 0", i, label)
		}
	}
}
