// Package quality decodes Phred quality strings and clips low-quality ends
// off EST reads before assembly.
//
// Phred scores relate to base-call error probability as Q = -10 log10(P).
package quality

import (
	"fmt"
	"math"
)

// Encoding offsets.
const (
	Phred33 = 33
	Phred64 = 64
)

// PhredMax is the highest score printable in Phred+33.
const PhredMax = '~' - Phred33

// QualityError marks errors raised while decoding qualities.
type QualityError interface {
	error
	IsQualityError()
}

// EmptyScoresError is returned for an empty quality string.
type EmptyScoresError struct{}

func (e *EmptyScoresError) Error() string {
	return "quality scores cannot be empty"
}
func (e *EmptyScoresError) IsQualityError() {}

// InvalidEncodingError is returned for a character outside the encoding.
type InvalidEncodingError struct {
	Position int
	Char     byte
	Offset   int
}

func (e *InvalidEncodingError) Error() string {
	return fmt.Sprintf("invalid Phred+%d character %q at position %d", e.Offset, e.Char, e.Position)
}
func (e *InvalidEncodingError) IsQualityError() {}

// LengthMismatchError is returned when qualities and bases differ in length.
type LengthMismatchError struct {
	Bases, Scores int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("%d bases but %d quality scores", e.Bases, e.Scores)
}
func (e *LengthMismatchError) IsQualityError() {}

// Scores holds the per-base qualities of one read.
type Scores struct {
	Values []int
}

// Decode parses a quality string with the given offset.
func Decode(encoded string, offset int) (*Scores, error) {
	if len(encoded) == 0 {
		return nil, &EmptyScoresError{}
	}
	values := make([]int, len(encoded))
	for i := 0; i < len(encoded); i++ {
		q := int(encoded[i]) - offset
		if q < 0 || encoded[i] > '~' {
			return nil, &InvalidEncodingError{Position: i, Char: encoded[i], Offset: offset}
		}
		values[i] = q
	}
	return &Scores{Values: values}, nil
}

// FromPhred33 parses Sanger / Illumina 1.8+ qualities.
func FromPhred33(encoded string) (*Scores, error) {
	return Decode(encoded, Phred33)
}

// FromPhred64 parses Illumina 1.3-1.7 qualities.
func FromPhred64(encoded string) (*Scores, error) {
	return Decode(encoded, Phred64)
}

// Len returns the number of scores.
func (s *Scores) Len() int {
	return len(s.Values)
}

// Average returns the mean score, 0 for no scores.
func (s *Scores) Average() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sum := 0
	for _, q := range s.Values {
		sum += q
	}
	return float64(sum) / float64(len(s.Values))
}

// ExpectedErrors sums the error probabilities of all bases.
func (s *Scores) ExpectedErrors() float64 {
	e := 0.0
	for _, q := range s.Values {
		e += ErrorProbability(q)
	}
	return e
}

// Encode renders the scores with the given offset.
func (s *Scores) Encode(offset int) string {
	b := make([]byte, len(s.Values))
	for i, q := range s.Values {
		b[i] = byte(min(q, PhredMax) + offset)
	}
	return string(b)
}

// ErrorProbability converts a Phred score to an error probability.
func ErrorProbability(q int) float64 {
	return math.Pow(10, -float64(q)/10)
}
