package alignment

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoAlignment is returned when two sequences share no aligned region.
var ErrNoAlignment = errors.New("sequences share no aligned region")

// Aligner computes a local alignment of s2 against s1. hint is the offset in
// s1 at which s2 is expected to begin, or NoHint.
type Aligner interface {
	Align(s1, s2 string, hint int) (*Alignment, error)
}

// LinearSpace is the Aligner used for consensus building.
type LinearSpace struct {
	Scoring *ScoringMatrix
}

// NewLinearSpace validates scoring and returns a linear-space aligner.
func NewLinearSpace(scoring *ScoringMatrix) (*LinearSpace, error) {
	if scoring == nil {
		scoring = DefaultDNA()
	}
	if err := scoring.Validate(); err != nil {
		return nil, err
	}
	return &LinearSpace{Scoring: scoring}, nil
}

// Align implements Aligner.
func (l *LinearSpace) Align(s1, s2 string, hint int) (*Alignment, error) {
	return LocalLinear(s1, s2, l.Scoring, hint)
}

// Splice joins two overlapping sequences: the part of first before the point
// where second aligns, followed by all of second.
func Splice(first, second string, aligner Aligner) (string, error) {
	a, err := aligner.Align(first, second, NoHint)
	if err != nil {
		return "", fmt.Errorf("splicing sequences: %w", err)
	}
	if a.Empty() {
		return "", ErrNoAlignment
	}

	var sb strings.Builder
	if off := a.Start1 - a.Start2; off > 0 {
		sb.WriteString(first[:off])
	}
	sb.WriteString(second)
	return sb.String(), nil
}
