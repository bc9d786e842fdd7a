// Package similarity provides the edit-distance primitives used to rank noisy
// OCR output against canonical catalog keys.
package similarity

// Distance returns the Levenshtein distance between a and b: the minimum number
// of single-rune insertions, deletions and substitutions needed to turn a into b.
// Transpositions count as two edits.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	m, n := len(ra), len(rb)

	dp := make([][]int, m+1)
	for i := range dp {
		dp[i] = make([]int, n+1)
	}

	for i := 0; i <= m; i++ {
		for j := 0; j <= n; j++ {
			switch {
			case i == 0:
				dp[i][j] = j
			case j == 0:
				dp[i][j] = i
			case ra[i-1] == rb[j-1]:
				dp[i][j] = dp[i-1][j-1]
			default:
				dp[i][j] = 1 + min(dp[i-1][j], dp[i][j-1], dp[i-1][j-1])
			}
		}
	}

	return dp[m][n]
}

// Similarity returns a score in [0,100] where 100 means identical strings.
// Two empty strings score 0.
func Similarity(a, b string) float64 {
	return FromDistance(Distance(a, b), max(runeLen(a), runeLen(b)))
}

// FromDistance converts an edit distance between strings whose longer side has
// maxLen runes into a similarity score.
func FromDistance(d, maxLen int) float64 {
	if maxLen == 0 {
		return 0
	}
	return 100 * (1 - float64(d)/float64(maxLen))
}

// BoundedDistance computes the Levenshtein distance between a and b but gives up
// as soon as it is certain to exceed maxEdits. The boolean is false when the
// distance is larger than maxEdits, in which case the returned int is meaningless.
//
// Only two rows of the table are kept, so memory is O(min(len(a), len(b))).
func BoundedDistance(a, b string, maxEdits int) (int, bool) {
	if maxEdits < 0 {
		return 0, false
	}
	ra, rb := []rune(a), []rune(b)
	if abs(len(ra)-len(rb)) > maxEdits {
		return 0, false
	}
	// Keep the shorter string on the inner loop.
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}

	prev := make([]int, len(ra)+1)
	curr := make([]int, len(ra)+1)
	for i := range prev {
		prev[i] = i
	}

	for j := 1; j <= len(rb); j++ {
		curr[0] = j
		rowMin := curr[0]
		for i := 1; i <= len(ra); i++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[i] = min(curr[i-1]+1, prev[i]+1, prev[i-1]+cost)
			rowMin = min(rowMin, curr[i])
		}
		if rowMin > maxEdits {
			return 0, false
		}
		prev, curr = curr, prev
	}

	d := prev[len(ra)]
	if d > maxEdits {
		return 0, false
	}
	return d, true
}

// MaxEdits returns the largest distance between a and b that still scores
// strictly above threshold. A negative result means no distance qualifies.
func MaxEdits(a, b string, threshold float64) int {
	return EditBudget(max(runeLen(a), runeLen(b)), threshold)
}

// EditBudget is MaxEdits for a pair whose longer side has maxLen runes. It
// agrees exactly with FromDistance, so pruning with it accepts the same
// distances as scoring every candidate.
func EditBudget(maxLen int, threshold float64) int {
	if maxLen == 0 {
		return -1
	}
	// similarity > threshold  <=>  d < maxLen * (1 - threshold/100), up to
	// rounding; settle the edge with the score itself.
	limit := float64(maxLen) * (1 - threshold/100)
	d := maxLen
	if limit < float64(maxLen) {
		d = max(int(limit)+1, -1)
	}
	for d >= 0 && FromDistance(d, maxLen) <= threshold {
		d--
	}
	return d
}

// RuneLen returns the number of runes in s.
func RuneLen(s string) int { return runeLen(s) }

func runeLen(s string) int {
	return len([]rune(s))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
