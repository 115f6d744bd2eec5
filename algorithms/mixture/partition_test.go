package mixture

import "testing"

func TestFoldIndicesCoverEveryRowOnce(t *testing.T) {
	cases := []struct{ n, folds int }{
		{10, 5},
		{11, 3},
		{150, 7},
		{6, 6},
	}

	for _, c := range cases {
		folds := foldIndices(c.n, c.folds, 42)
		if len(folds) != c.folds {
			t.Fatalf("n=%d folds=%d: got %d blocks", c.n, c.folds, len(folds))
		}

		seen := make([]bool, c.n)
		for _, fold := range folds {
			for _, i := range fold {
				if seen[i] {
					t.Fatalf("n=%d folds=%d: row %d assigned twice", c.n, c.folds, i)
				}
				seen[i] = true
			}
		}
		for i, ok := range seen {
			if !ok {
				t.Errorf("n=%d folds=%d: row %d never assigned", c.n, c.folds, i)
			}
		}

		// Block sizes differ by at most one
		for _, fold := range folds {
			if len(fold) < c.n/c.folds || len(fold) > c.n/c.folds+1 {
				t.Errorf("n=%d folds=%d: block size %d not near-equal", c.n, c.folds, len(fold))
			}
		}
	}
}

func TestFoldSeedsLeaveRoomForRestartOffsets(t *testing.T) {
	const seed = 42

	// Restart r of a fold's fit draws seed foldSeed(...)+r. Fold seeds
	// are strided 1<<32 apart, so even an absurd restart budget cannot
	// reach the next fold's seed range.
	for fold := 0; fold < 10; fold++ {
		gap := foldSeed(seed, fold+1) - foldSeed(seed, fold)
		if gap != 1<<32 {
			t.Fatalf("fold %d seed gap = %d, want %d", fold, gap, int64(1)<<32)
		}
	}

	const restarts = 1 << 20
	for fold := 0; fold < 10; fold++ {
		last := foldSeed(seed, fold) + restarts - 1
		if last >= foldSeed(seed, fold+1) {
			t.Fatalf("fold %d restart seeds overflow into fold %d", fold, fold+1)
		}
	}
}

func TestFoldIndicesDeterministicPerSeed(t *testing.T) {
	first := foldIndices(20, 4, 9)
	second := foldIndices(20, 4, 9)
	for i := range first {
		for j := range first[i] {
			if first[i][j] != second[i][j] {
				t.Fatal("same seed produced different partitions")
			}
		}
	}

	other := foldIndices(20, 4, 10)
	same := true
	for i := range first {
		for j := range first[i] {
			if first[i][j] != other[i][j] {
				same = false
			}
		}
	}
	if same {
		t.Error("different seeds produced identical partitions")
	}
}
