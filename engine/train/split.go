package train

import "math/rand"

// splitIndices shuffles [0, n) with the given seed and carves off a holdout
// of round(n * testFraction) rows, clamped so both partitions stay non-empty.
// The same seed always yields the same split.
func splitIndices(n int, testFraction float64, seed int64) (trainIdx, evalIdx []int) {
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	if testFraction <= 0 || n < 2 {
		return perm, nil
	}

	testN := int(float64(n)*testFraction + 0.5)
	if testN < 1 {
		testN = 1
	}
	if testN > n-1 {
		testN = n - 1
	}
	return perm[testN:], perm[:testN]
}
