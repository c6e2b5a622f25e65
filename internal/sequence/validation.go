package sequence

import (
	"fmt"
	"strings"
)

// SequenceError is the base error type for sequence operations.
type SequenceError interface {
	error
	IsSequenceError()
}

// EmptySequenceError is returned when a sequence is empty.
type EmptySequenceError struct{}

func (e *EmptySequenceError) Error() string {
	return "sequence must have at least one base"
}

func (e *EmptySequenceError) IsSequenceError() {}

// InvalidBaseError is returned when an invalid base is encountered.
type InvalidBaseError struct {
	Position int
	Found    rune
}

func (e *InvalidBaseError) Error() string {
	return fmt.Sprintf("invalid base '%c' at position %d", e.Found, e.Position)
}

func (e *InvalidBaseError) IsSequenceError() {}

// IndexError is returned when a fragment index is outside the store.
type IndexError struct {
	Index int
	Size  int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("fragment index %d out of range [0, %d)", e.Index, e.Size)
}

func (e *IndexError) IsSequenceError() {}

// iupac folds ambiguity codes onto N. Anything not listed is rejected by ValidateEST.
var iupac = [256]byte{
	'A': 'A', 'C': 'C', 'G': 'G', 'T': 'T', 'N': 'N', '-': '-',
	'U': 'T',
	'R': 'N', 'Y': 'N', 'K': 'N', 'M': 'N', 'S': 'N', 'W': 'N',
	'B': 'N', 'D': 'N', 'H': 'N', 'V': 'N', 'X': 'N', '.': '-',
}

// Normalize upper-cases bases, removes whitespace and folds IUPAC codes to N.
func Normalize(bases string) string {
	var sb strings.Builder
	sb.Grow(len(bases))
	for i := 0; i < len(bases); i++ {
		c := bases[i]
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		}
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if folded := iupac[c]; folded != 0 {
			c = folded
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// ValidateEST checks that a normalized string only holds A, C, G, T, N or '-'.
func ValidateEST(bases string) error {
	for i := 0; i < len(bases); i++ {
		if !IsValidBase(bases[i]) {
			return &InvalidBaseError{Position: i, Found: rune(bases[i])}
		}
	}
	return nil
}

// IsValidBase reports whether c belongs to the fragment alphabet.
func IsValidBase(c byte) bool {
	switch c {
	case 'A', 'C', 'G', 'T', 'N', Gap:
		return true
	}
	return false
}
