// Package alignment provides pairwise sequence alignment.
//
// Smith-Waterman (local), Needleman-Wunsch (global) and semi-global
// alignment are implemented with full matrices for short inputs; LocalLinear
// and Hirschberg do the same work in linear space and back the Aligner used
// by consensus reconstruction.
package alignment

import "fmt"

// AlignDirection represents the traceback direction in the alignment matrix.
type AlignDirection int

const (
	// Stop represents the end of alignment (local only)
	Stop AlignDirection = iota
	// Diagonal represents a match or mismatch
	Diagonal
	// Up represents a gap in sequence 2
	Up
	// Left represents a gap in sequence 1
	Left
)

// AlignmentType represents the type of alignment.
type AlignmentType int

const (
	Local AlignmentType = iota
	Global
	SemiGlobal
)

func (t AlignmentType) String() string {
	switch t {
	case Local:
		return "local"
	case Global:
		return "global"
	case SemiGlobal:
		return "semi-global"
	default:
		return "unknown"
	}
}

// ScoringError is returned for scoring parameters no alignment can use.
type ScoringError struct {
	Reason string
}

func (e *ScoringError) Error() string {
	return "invalid scoring: " + e.Reason
}

// ScoringMatrix represents the scoring parameters for alignment.
type ScoringMatrix struct {
	MatchScore       int `json:"match" mapstructure:"match"`
	MismatchPenalty  int `json:"mismatch" mapstructure:"mismatch"`
	GapOpenPenalty   int `json:"gap_open" mapstructure:"gap-open"`
	GapExtendPenalty int `json:"gap_extend" mapstructure:"gap-extend"`
}

// NewScoringMatrix creates a new scoring matrix with validation.
func NewScoringMatrix(match, mismatch, gapOpen, gapExtend int) (*ScoringMatrix, error) {
	s := &ScoringMatrix{
		MatchScore:       match,
		MismatchPenalty:  mismatch,
		GapOpenPenalty:   gapOpen,
		GapExtendPenalty: gapExtend,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the sign conventions of the matrix.
func (s *ScoringMatrix) Validate() error {
	switch {
	case s.MatchScore <= 0:
		return &ScoringError{Reason: "match score must be positive"}
	case s.MismatchPenalty > 0:
		return &ScoringError{Reason: "mismatch penalty should be <= 0"}
	case s.GapOpenPenalty > 0:
		return &ScoringError{Reason: "gap open penalty should be <= 0"}
	case s.GapExtendPenalty > 0:
		return &ScoringError{Reason: "gap extend penalty should be <= 0"}
	}
	return nil
}

// DefaultDNA creates a default DNA scoring matrix.
func DefaultDNA() *ScoringMatrix {
	return &ScoringMatrix{
		MatchScore:       2,
		MismatchPenalty:  -1,
		GapOpenPenalty:   -2,
		GapExtendPenalty: -1,
	}
}

// Simple creates a simple scoring matrix with uniform gap penalty.
func Simple(match, mismatch, gap int) (*ScoringMatrix, error) {
	return NewScoringMatrix(match, mismatch, gap, gap)
}

// Score returns the score for comparing two bases.
func (s *ScoringMatrix) Score(base1, base2 byte) int {
	if base1 == base2 {
		return s.MatchScore
	}
	return s.MismatchPenalty
}

// GapPenalty returns the linear gap penalty.
func (s *ScoringMatrix) GapPenalty() int {
	return s.GapOpenPenalty
}

func (s *ScoringMatrix) String() string {
	return fmt.Sprintf("ScoringMatrix { match: %d, mismatch: %d, gap_open: %d, gap_extend: %d }",
		s.MatchScore, s.MismatchPenalty, s.GapOpenPenalty, s.GapExtendPenalty)
}
