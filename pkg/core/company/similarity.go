package company

// Similarity is a string-similarity ratio expressed 0-100, based on the
// longest common subsequence of the two strings:
//
//	ratio = 200 * LCS(a, b) / (len(a) + len(b))
//
// Identical strings score 100, disjoint strings 0. Thresholds across the
// resolver are tuned against this one function so they stay comparable.
func Similarity(a, b string) float64 {
	if a == b {
		if a == "" {
			return 0
		}
		return 100
	}
	if a == "" || b == "" {
		return 0
	}

	ra := []rune(a)
	rb := []rune(b)

	// Single-row LCS table
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}

	lcs := prev[len(rb)]
	return 200.0 * float64(lcs) / float64(len(ra)+len(rb))
}
