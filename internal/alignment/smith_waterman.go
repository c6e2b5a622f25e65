package alignment

import (
	"fmt"
	"strings"
)

// Alignment represents the result of an alignment between two sequences.
// Start and End are half-open base offsets into the original inputs.
type Alignment struct {
	AlignedSeq1   string        `json:"aligned_seq1"`
	AlignedSeq2   string        `json:"aligned_seq2"`
	Score         int           `json:"score"`
	Start1        int           `json:"start1"`
	End1          int           `json:"end1"`
	Start2        int           `json:"start2"`
	End2          int           `json:"end2"`
	AlignmentType AlignmentType `json:"-"`
	Identity      float64       `json:"identity"`
}

// NewAlignment creates a new alignment result.
func NewAlignment(aligned1, aligned2 string, score int, alignType AlignmentType) (*Alignment, error) {
	return NewAlignmentWithPositions(aligned1, aligned2, score,
		0, len(strings.ReplaceAll(aligned1, "-", "")),
		0, len(strings.ReplaceAll(aligned2, "-", "")), alignType)
}

// NewAlignmentWithPositions creates an alignment with position information.
func NewAlignmentWithPositions(aligned1, aligned2 string, score int,
	start1, end1, start2, end2 int, alignType AlignmentType) (*Alignment, error) {
	if len(aligned1) != len(aligned2) {
		return nil, fmt.Errorf("aligned sequences must have equal length")
	}

	a := &Alignment{
		AlignedSeq1:   aligned1,
		AlignedSeq2:   aligned2,
		Score:         score,
		Start1:        start1,
		End1:          end1,
		Start2:        start2,
		End2:          end2,
		AlignmentType: alignType,
	}
	a.Identity = a.calculateIdentity()
	return a, nil
}

func (a *Alignment) calculateIdentity() float64 {
	if len(a.AlignedSeq1) == 0 {
		return 0.0
	}
	return float64(a.MatchCount()) / float64(len(a.AlignedSeq1))
}

// Empty reports whether no bases were aligned.
func (a *Alignment) Empty() bool {
	return len(a.AlignedSeq1) == 0
}

// Length returns the length of the alignment.
func (a *Alignment) Length() int {
	return len(a.AlignedSeq1)
}

// MatchCount returns the number of matches.
func (a *Alignment) MatchCount() int {
	count := 0
	for i := 0; i < len(a.AlignedSeq1); i++ {
		if a.AlignedSeq1[i] == a.AlignedSeq2[i] && a.AlignedSeq1[i] != '-' {
			count++
		}
	}
	return count
}

// MismatchCount returns the number of mismatches.
func (a *Alignment) MismatchCount() int {
	count := 0
	for i := 0; i < len(a.AlignedSeq1); i++ {
		if a.AlignedSeq1[i] != a.AlignedSeq2[i] &&
			a.AlignedSeq1[i] != '-' && a.AlignedSeq2[i] != '-' {
			count++
		}
	}
	return count
}

// TotalGaps returns the total number of gap characters in both rows.
func (a *Alignment) TotalGaps() int {
	return strings.Count(a.AlignedSeq1, "-") + strings.Count(a.AlignedSeq2, "-")
}

// ToCIGAR generates a CIGAR string with X for mismatches.
func (a *Alignment) ToCIGAR() string {
	if len(a.AlignedSeq1) == 0 {
		return ""
	}

	var cigar strings.Builder
	currentOp := byte(0)
	count := 0

	for i := 0; i < len(a.AlignedSeq1); i++ {
		var op byte
		switch {
		case a.AlignedSeq1[i] == '-':
			op = 'I'
		case a.AlignedSeq2[i] == '-':
			op = 'D'
		case a.AlignedSeq1[i] == a.AlignedSeq2[i]:
			op = 'M'
		default:
			op = 'X'
		}

		if op == currentOp {
			count++
			continue
		}
		if count > 0 {
			fmt.Fprintf(&cigar, "%d%c", count, currentOp)
		}
		currentOp = op
		count = 1
	}
	fmt.Fprintf(&cigar, "%d%c", count, currentOp)

	return cigar.String()
}

// Format returns a three-line rendering of the alignment.
func (a *Alignment) Format() string {
	var matchLine strings.Builder
	for i := 0; i < len(a.AlignedSeq1); i++ {
		switch {
		case a.AlignedSeq1[i] == a.AlignedSeq2[i] && a.AlignedSeq1[i] != '-':
			matchLine.WriteByte('|')
		case a.AlignedSeq1[i] == '-' || a.AlignedSeq2[i] == '-':
			matchLine.WriteByte(' ')
		default:
			matchLine.WriteByte('.')
		}
	}

	return fmt.Sprintf("Seq1: %s\n      %s\nSeq2: %s\nScore: %d\nIdentity: %.1f%%\nCIGAR: %s",
		a.AlignedSeq1, matchLine.String(), a.AlignedSeq2,
		a.Score, a.Identity*100, a.ToCIGAR())
}

func (a *Alignment) String() string {
	return fmt.Sprintf("Alignment { score: %d, identity: %.1f%%, length: %d }",
		a.Score, a.Identity*100, a.Length())
}

// SmithWaterman performs local alignment with a full traceback matrix.
// Use LocalLinear for long inputs.
func SmithWaterman(s1, s2 string, scoring *ScoringMatrix) (*Alignment, error) {
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

	maxScore := 0
	maxI, maxJ := 0, 0

	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			diag := H[i-1][j-1] + scoring.Score(s1[i-1], s2[j-1])
			up := H[i-1][j] + scoring.GapPenalty()
			left := H[i][j-1] + scoring.GapPenalty()

			best := 0
			direction := Stop
			if diag > best {
				best = diag
				direction = Diagonal
			}
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

			if best > maxScore {
				maxScore = best
				maxI, maxJ = i, j
			}
		}
	}

	aligned1, aligned2, start1, start2 := tracebackLocal(s1, s2, traceback, maxI, maxJ)

	return NewAlignmentWithPositions(aligned1, aligned2, maxScore,
		start1, maxI, start2, maxJ, Local)
}

func tracebackLocal(seq1, seq2 string, traceback [][]AlignDirection,
	startI, startJ int) (string, string, int, int) {
	var aligned1, aligned2 strings.Builder
	i, j := startI, startJ

	for i > 0 && j > 0 {
		switch traceback[i][j] {
		case Stop:
			goto done
		case Diagonal:
			aligned1.WriteByte(seq1[i-1])
			aligned2.WriteByte(seq2[j-1])
			i--
			j--
		case Up:
			aligned1.WriteByte(seq1[i-1])
			aligned2.WriteByte('-')
			i--
		case Left:
			aligned1.WriteByte('-')
			aligned2.WriteByte(seq2[j-1])
			j--
		}
	}
done:

	return reverse(aligned1.String()), reverse(aligned2.String()), i, j
}

func reverse(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}

// AlignmentScoreOnly calculates the local alignment score in O(n) space.
func AlignmentScoreOnly(s1, s2 string, scoring *ScoringMatrix) (int, error) {
	if scoring == nil {
		scoring = DefaultDNA()
	}
	if len(s1) == 0 || len(s2) == 0 {
		return 0, fmt.Errorf("sequences must be non-empty")
	}

	n := len(s2)
	prevRow := make([]int, n+1)
	currRow := make([]int, n+1)
	maxScore := 0

	for i := 1; i <= len(s1); i++ {
		currRow[0] = 0
		for j := 1; j <= n; j++ {
			diag := prevRow[j-1] + scoring.Score(s1[i-1], s2[j-1])
			up := prevRow[j] + scoring.GapPenalty()
			left := currRow[j-1] + scoring.GapPenalty()

			best := max(0, max(diag, max(up, left)))
			currRow[j] = best
			if best > maxScore {
				maxScore = best
			}
		}
		prevRow, currRow = currRow, prevRow
	}

	return maxScore, nil
}
