package alignment

import (
	"fmt"
	"strings"
)

// NeedlemanWunsch performs global alignment with a full traceback matrix.
func NeedlemanWunsch(s1, s2 string, scoring *ScoringMatrix) (*Alignment, error) {
	if scoring == nil {
		scoring = DefaultDNA()
	}
	if len(s1) == 0 || len(s2) == 0 {
		return nil, fmt.Errorf("sequences must be non-empty")
	}

	aligned1, aligned2, score := globalMatrix(s1, s2, scoring)
	return NewAlignment(aligned1, aligned2, score, Global)
}

// globalMatrix is the quadratic global alignment shared by NeedlemanWunsch
// and the Hirschberg base case. Either input may be empty.
func globalMatrix(s1, s2 string, scoring *ScoringMatrix) (string, string, int) {
	m, n := len(s1), len(s2)

	H := make([][]int, m+1)
	traceback := make([][]AlignDirection, m+1)
	for i := range H {
		H[i] = make([]int, n+1)
		traceback[i] = make([]AlignDirection, n+1)
	}

	for i := 1; i <= m; i++ {
		H[i][0] = i * scoring.GapPenalty()
		traceback[i][0] = Up
	}
	for j := 1; j <= n; j++ {
		H[0][j] = j * scoring.GapPenalty()
		traceback[0][j] = Left
	}

	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			diag := H[i-1][j-1] + scoring.Score(s1[i-1], s2[j-1])
			up := H[i-1][j] + scoring.GapPenalty()
			left := H[i][j-1] + scoring.GapPenalty()

			best := diag
			direction := Diagonal
			if up > best {
				best = up
				direction = Up
			}
			if left > best {
				best = left
				direction = Left
			}

			H[i][j] = best
			traceback[i][j] = direction
		}
	}

	aligned1, aligned2 := tracebackGlobal(s1, s2, traceback, m, n)
	return aligned1, aligned2, H[m][n]
}

func tracebackGlobal(seq1, seq2 string, traceback [][]AlignDirection, m, n int) (string, string) {
	var aligned1, aligned2 strings.Builder
	i, j := m, n

	for i > 0 || j > 0 {
		switch {
		case i == 0:
			aligned1.WriteByte('-')
			aligned2.WriteByte(seq2[j-1])
			j--
		case j == 0:
			aligned1.WriteByte(seq1[i-1])
			aligned2.WriteByte('-')
			i--
		default:
			switch traceback[i][j] {
			case Up:
				aligned1.WriteByte(seq1[i-1])
				aligned2.WriteByte('-')
				i--
			case Left:
				aligned1.WriteByte('-')
				aligned2.WriteByte(seq2[j-1])
				j--
			default:
				aligned1.WriteByte(seq1[i-1])
				aligned2.WriteByte(seq2[j-1])
				i--
				j--
			}
		}
	}

	return reverse(aligned1.String()), reverse(aligned2.String())
}

// SemiGlobalAlignment aligns all of s1 against any stretch of s2, leaving end
// gaps in s2 unpenalised. It answers "does s1 sit inside s2".
func SemiGlobalAlignment(s1, s2 string, scoring *ScoringMatrix) (*Alignment, error) {
	if scoring == nil {
		scoring = DefaultDNA()
	}
	if len(s1) == 0 || len(s2) == 0 {
		return nil, fmt.Errorf("sequences must be non-empty")
	}

	m, n := len(s1), len(s2)

	H := make([][]int, m+1)
	traceback := make([][]AlignDirection, m+1)
	for i := range H {
		H[i] = make([]int, n+1)
		traceback[i] = make([]AlignDirection, n+1)
	}

	// free leading gaps in s2, paid leading gaps in s1
	for i := 1; i <= m; i++ {
		H[i][0] = i * scoring.GapPenalty()
		traceback[i][0] = Up
	}

	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			diag := H[i-1][j-1] + scoring.Score(s1[i-1], s2[j-1])
			up := H[i-1][j] + scoring.GapPenalty()
			left := H[i][j-1] + scoring.GapPenalty()

			best := diag
			direction := Diagonal
			if up > best {
				best = up
				direction = Up
			}
			if left > best {
				best = left
				direction = Left
			}

			H[i][j] = best
			traceback[i][j] = direction
		}
	}

	maxScore := H[m][0]
	maxJ := 0
	for j := 1; j <= n; j++ {
		if H[m][j] > maxScore {
			maxScore = H[m][j]
			maxJ = j
		}
	}

	// walk back to row 0 without consuming the free leading part of s2
	var aligned1, aligned2 strings.Builder
	i, j := m, maxJ
	for i > 0 {
		switch {
		case j == 0 || traceback[i][j] == Up:
			aligned1.WriteByte(s1[i-1])
			aligned2.WriteByte('-')
			i--
		case traceback[i][j] == Left:
			aligned1.WriteByte('-')
			aligned2.WriteByte(s2[j-1])
			j--
		default:
			aligned1.WriteByte(s1[i-1])
			aligned2.WriteByte(s2[j-1])
			i--
			j--
		}
	}

	return NewAlignmentWithPositions(reverse(aligned1.String()), reverse(aligned2.String()),
		maxScore, 0, m, j, maxJ, SemiGlobal)
}

// GlobalAlignmentScoreOnly calculates the global alignment score in O(n) space.
func GlobalAlignmentScoreOnly(s1, s2 string, scoring *ScoringMatrix) (int, error) {
	if scoring == nil {
		scoring = DefaultDNA()
	}
	if len(s1) == 0 || len(s2) == 0 {
		return 0, fmt.Errorf("sequences must be non-empty")
	}
	row := lastRow(s1, s2, scoring)
	return row[len(s2)], nil
}

// lastRow returns the final row of the global alignment matrix of s1
// against every prefix of s2.
func lastRow(s1, s2 string, scoring *ScoringMatrix) []int {
	n := len(s2)
	prevRow := make([]int, n+1)
	currRow := make([]int, n+1)
	gap := scoring.GapPenalty()

	for j := 0; j <= n; j++ {
		prevRow[j] = j * gap
	}
	for i := 1; i <= len(s1); i++ {
		currRow[0] = i * gap
		for j := 1; j <= n; j++ {
			diag := prevRow[j-1] + scoring.Score(s1[i-1], s2[j-1])
			up := prevRow[j] + gap
			left := currRow[j-1] + gap
			currRow[j] = max(diag, max(up, left))
		}
		prevRow, currRow = currRow, prevRow
	}
	return prevRow
}
