package common

// External cluster evaluation measures.

// AdjustedRandIndex computes the adjusted Rand index between two hard
// labelings of the same observations. The index is 1 for identical
// partitions (up to label permutation) and has expected value 0 for
// independent random labelings.
//
// Reference: Hubert, L., & Arabie, P. (1985). "Comparing partitions"
func AdjustedRandIndex(a, b []int) float64 {
	n := len(a)
	if n == 0 || len(b) != n {
		return 0.0
	}

	// Contingency table between the two labelings
	table := make(map[[2]int]int)
	sizesA := make(map[int]int)
	sizesB := make(map[int]int)
	for i := range a {
		table[[2]int{a[i], b[i]}]++
		sizesA[a[i]]++
		sizesB[b[i]]++
	}

	sumCells := 0.0
	for _, count := range table {
		sumCells += pairs(count)
	}
	sumA := 0.0
	for _, count := range sizesA {
		sumA += pairs(count)
	}
	sumB := 0.0
	for _, count := range sizesB {
		sumB += pairs(count)
	}

	expected := sumA * sumB / pairs(n)
	maxIndex := (sumA + sumB) / 2

	if maxIndex == expected {
		// Both partitions are trivial (e.g. a single cluster each)
		return 1.0
	}

	return (sumCells - expected) / (maxIndex - expected)
}

// pairs returns the number of unordered pairs among m items, C(m, 2)
func pairs(m int) float64 {
	return float64(m) * float64(m-1) / 2
}
