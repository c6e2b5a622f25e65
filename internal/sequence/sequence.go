// Package sequence provides the EST fragment type and the indexed fragment store.
//
// Fragments are validated at construction: bases are upper-cased, IUPAC
// ambiguity codes are folded to N, and the gap character '-' is accepted so
// that consensus output can be fed back in unchanged.
package sequence

import (
	"fmt"
	"strings"
)

// Gap is the filler character used inside alignments and consensus columns.
const Gap = '-'

// Sequence is one EST fragment. It is immutable after the store is loaded.
type Sequence struct {
	// Index is the position of the fragment in its Store, -1 when unattached.
	Index       int
	ID          string
	Description string
	Bases       string
	// Start is the presumed start position carried in some FASTA headers
	// (">id_start_end" or ">start.length"), -1 when unknown.
	Start int
}

// New creates a fragment from raw bases.
func New(bases string) (*Sequence, error) {
	normalized := Normalize(bases)
	if len(normalized) == 0 {
		return nil, &EmptySequenceError{}
	}
	if err := ValidateEST(normalized); err != nil {
		return nil, err
	}
	return &Sequence{Index: -1, Bases: normalized, Start: -1}, nil
}

// WithID creates a fragment with an identifier.
func WithID(bases, id string) (*Sequence, error) {
	if len(id) == 0 {
		return nil, fmt.Errorf("ID cannot be empty")
	}
	seq, err := New(bases)
	if err != nil {
		return nil, err
	}
	seq.ID = id
	return seq, nil
}

// WithMetadata creates a fragment with identifier and description. When the
// identifier encodes a presumed start position it is recorded in Start.
func WithMetadata(bases, id, description string) (*Sequence, error) {
	seq, err := New(bases)
	if err != nil {
		return nil, err
	}
	seq.ID = id
	seq.Description = description
	if start, ok := ParseStart(id); ok {
		seq.Start = start
	}
	return seq, nil
}

// Len returns the number of bases.
func (s *Sequence) Len() int {
	return len(s.Bases)
}

// Name returns the identifier, or a positional name for anonymous fragments.
func (s *Sequence) Name() string {
	if s.ID != "" {
		return s.ID
	}
	return fmt.Sprintf("fragment_%d", s.Index)
}

// Header returns the FASTA header line without the leading '>'.
func (s *Sequence) Header() string {
	if s.Description == "" {
		return s.Name()
	}
	return s.Name() + " " + s.Description
}

// CountAmbiguous counts N bases.
func (s *Sequence) CountAmbiguous() int {
	return strings.Count(s.Bases, "N")
}

// BaseAt returns the base at index, or false if out of bounds.
func (s *Sequence) BaseAt(index int) (byte, bool) {
	if index < 0 || index >= len(s.Bases) {
		return 0, false
	}
	return s.Bases[index], true
}

// Subsequence returns bases [start, end) as a new, unattached fragment.
func (s *Sequence) Subsequence(start, end int) (*Sequence, error) {
	if start < 0 {
		return nil, fmt.Errorf("start index must be non-negative")
	}
	if end <= start {
		return nil, fmt.Errorf("end must be greater than start")
	}
	if end > len(s.Bases) {
		return nil, fmt.Errorf("end must not exceed sequence length")
	}
	return &Sequence{
		Index:       -1,
		ID:          s.ID,
		Description: s.Description,
		Bases:       s.Bases[start:end],
		Start:       -1,
	}, nil
}

// GCContent calculates the proportion of G and C among all bases.
func (s *Sequence) GCContent() float64 {
	if len(s.Bases) == 0 {
		return 0.0
	}
	gc := 0
	for i := 0; i < len(s.Bases); i++ {
		if s.Bases[i] == 'G' || s.Bases[i] == 'C' {
			gc++
		}
	}
	return float64(gc) / float64(len(s.Bases))
}

// BaseCounts holds the count of each base type.
type BaseCounts struct {
	A   int
	C   int
	G   int
	T   int
	N   int
	Gap int
}

// BaseCounts returns the count of each base type.
func (s *Sequence) BaseCounts() BaseCounts {
	counts := BaseCounts{}
	for i := 0; i < len(s.Bases); i++ {
		switch s.Bases[i] {
		case 'A':
			counts.A++
		case 'C':
			counts.C++
		case 'G':
			counts.G++
		case 'T':
			counts.T++
		case 'N':
			counts.N++
		case Gap:
			counts.Gap++
		}
	}
	return counts
}

// Total returns the total count of all bases.
func (bc BaseCounts) Total() int {
	return bc.A + bc.C + bc.G + bc.T + bc.N + bc.Gap
}

// ToFASTA formats the fragment as a FASTA record with 80-column lines.
func (s *Sequence) ToFASTA() string {
	var sb strings.Builder
	sb.WriteByte('>')
	sb.WriteString(s.Header())
	sb.WriteByte('\n')
	for i := 0; i < len(s.Bases); i += 80 {
		end := i + 80
		if end > len(s.Bases) {
			end = len(s.Bases)
		}
		sb.WriteString(s.Bases[i:end])
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (s *Sequence) String() string {
	if len(s.Bases) <= 20 {
		return fmt.Sprintf("Sequence(%s: %s)", s.Name(), s.Bases)
	}
	return fmt.Sprintf("Sequence(%s: %s...%s, len=%d)",
		s.Name(), s.Bases[:10], s.Bases[len(s.Bases)-10:], len(s.Bases))
}
