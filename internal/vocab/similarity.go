package vocab

import "strings"

// SimilarityFunc scores how alike two strings are. Implementations must be
// symmetric, return a value in [0,1], and return 1.0 iff the inputs are equal
// under the function's own normalization.
type SimilarityFunc func(a, b string) float64

// Ratio is the default similarity: the longest-common-subsequence ratio
// 2*LCS/(len(a)+len(b)) over lower-cased inputs.
func Ratio(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)

	if a == b {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	return 2 * float64(lcsLength(a, b)) / float64(len(a)+len(b))
}

// lcsLength computes the longest common subsequence length with a rolling row
func lcsLength(a, b string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
