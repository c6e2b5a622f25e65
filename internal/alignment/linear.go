package alignment

import (
	"fmt"
	"math"
)

// NoHint disables diagonal tie-breaking in LocalLinear.
const NoHint = math.MinInt

// LocalLinear computes an optimal local alignment in linear space.
//
// A forward pass finds the best score and where it ends, a reverse pass
// anchored at that end finds where it starts, and Hirschberg aligns the span.
// When several end cells share the best score, the one whose diagonal
// (i - j) is closest to hint wins; hint is the offset in s1 at which s2 is
// expected to begin. An empty alignment with score 0 is returned when the
// inputs share nothing.
func LocalLinear(s1, s2 string, scoring *ScoringMatrix, hint int) (*Alignment, error) {
	if scoring == nil {
		scoring = DefaultDNA()
	}
	if err := scoring.Validate(); err != nil {
		return nil, err
	}
	if len(s1) == 0 || len(s2) == 0 {
		return nil, fmt.Errorf("sequences must be non-empty")
	}

	best, endI, endJ := localEnd(s1, s2, scoring, hint)
	if best == 0 {
		return &Alignment{AlignmentType: Local}, nil
	}
	startI, startJ := localStart(s1[:endI], s2[:endJ], scoring, best)
	a1, a2 := hirschberg(s1[startI:endI], s2[startJ:endJ], scoring)

	return NewAlignmentWithPositions(a1, a2, best, startI, endI, startJ, endJ, Local)
}

func localEnd(s1, s2 string, scoring *ScoringMatrix, hint int) (int, int, int) {
	n := len(s2)
	prevRow := make([]int, n+1)
	currRow := make([]int, n+1)
	gap := scoring.GapPenalty()

	best, bestI, bestJ := 0, 0, 0
	for i := 1; i <= len(s1); i++ {
		currRow[0] = 0
		for j := 1; j <= n; j++ {
			diag := prevRow[j-1] + scoring.Score(s1[i-1], s2[j-1])
			h := max(0, max(diag, max(prevRow[j]+gap, currRow[j-1]+gap)))
			currRow[j] = h

			switch {
			case h > best:
				best, bestI, bestJ = h, i, j
			case h == best && h > 0 && hint != NoHint &&
				absInt(i-j-hint) < absInt(bestI-bestJ-hint):
				bestI, bestJ = i, j
			}
		}
		prevRow, currRow = currRow, prevRow
	}
	return best, bestI, bestJ
}

// localStart walks the reversed prefixes with an anchored global recurrence
// and returns the first cell reaching target.
func localStart(a, b string, scoring *ScoringMatrix, target int) (int, int) {
	ra, rb := reverse(a), reverse(b)
	n := len(rb)
	prevRow := make([]int, n+1)
	currRow := make([]int, n+1)
	gap := scoring.GapPenalty()

	for j := 0; j <= n; j++ {
		prevRow[j] = j * gap
	}
	for i := 1; i <= len(ra); i++ {
		currRow[0] = i * gap
		for j := 1; j <= n; j++ {
			diag := prevRow[j-1] + scoring.Score(ra[i-1], rb[j-1])
			currRow[j] = max(diag, max(prevRow[j]+gap, currRow[j-1]+gap))
			if currRow[j] == target {
				return len(a) - i, len(b) - j
			}
		}
		prevRow, currRow = currRow, prevRow
	}
	return 0, 0
}

// Hirschberg performs global alignment in linear space.
func Hirschberg(s1, s2 string, scoring *ScoringMatrix) (*Alignment, error) {
	if scoring == nil {
		scoring = DefaultDNA()
	}
	if err := scoring.Validate(); err != nil {
		return nil, err
	}
	if len(s1) == 0 || len(s2) == 0 {
		return nil, fmt.Errorf("sequences must be non-empty")
	}
	a1, a2 := hirschberg(s1, s2, scoring)
	return NewAlignment(a1, a2, rowScore(a1, a2, scoring), Global)
}

func hirschberg(a, b string, scoring *ScoringMatrix) (string, string) {
	if len(a) < 2 || len(b) < 2 {
		a1, a2, _ := globalMatrix(a, b, scoring)
		return a1, a2
	}

	mid := len(a) / 2
	upper := lastRow(a[:mid], b, scoring)
	lower := lastRow(reverse(a[mid:]), reverse(b), scoring)

	split, best := 0, math.MinInt
	for k := 0; k <= len(b); k++ {
		if s := upper[k] + lower[len(b)-k]; s > best {
			best, split = s, k
		}
	}

	l1, l2 := hirschberg(a[:mid], b[:split], scoring)
	r1, r2 := hirschberg(a[mid:], b[split:], scoring)
	return l1 + r1, l2 + r2
}

// rowScore scores two aligned rows with a linear gap penalty.
func rowScore(a1, a2 string, scoring *ScoringMatrix) int {
	score := 0
	for i := 0; i < len(a1); i++ {
		if a1[i] == '-' || a2[i] == '-' {
			score += scoring.GapPenalty()
			continue
		}
		score += scoring.Score(a1[i], a2[i])
	}
	return score
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
