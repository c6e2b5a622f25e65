package sequence

import (
	log "github.com/sirupsen/logrus"
)

// Store holds the fragments of one assembly run, addressed by index.
// It is filled once and read concurrently afterwards.
type Store struct {
	seqs []*Sequence
}

// NewStore creates a store from fragments, assigning their indices in order.
func NewStore(seqs []*Sequence) *Store {
	s := &Store{seqs: make([]*Sequence, 0, len(seqs))}
	for _, seq := range seqs {
		s.Add(seq)
	}
	return s
}

// FromStrings builds a store from raw bases, naming fragments by position.
func FromStrings(bases []string) (*Store, error) {
	s := &Store{seqs: make([]*Sequence, 0, len(bases))}
	for _, b := range bases {
		seq, err := New(b)
		if err != nil {
			return nil, err
		}
		s.Add(seq)
	}
	return s, nil
}

// Add appends a fragment and returns its index.
func (s *Store) Add(seq *Sequence) int {
	seq.Index = len(s.seqs)
	s.seqs = append(s.seqs, seq)
	return seq.Index
}

// Len returns the number of fragments.
func (s *Store) Len() int {
	return len(s.seqs)
}

// Get returns the fragment at index i.
func (s *Store) Get(i int) (*Sequence, error) {
	if i < 0 || i >= len(s.seqs) {
		return nil, &IndexError{Index: i, Size: len(s.seqs)}
	}
	return s.seqs[i], nil
}

// Bases returns the bases of fragment i. An out-of-range index is a
// programming error and panics.
func (s *Store) Bases(i int) string {
	if i < 0 || i >= len(s.seqs) {
		log.Panicf("fragment index %d out of range [0, %d)", i, len(s.seqs))
	}
	return s.seqs[i].Bases
}

// Length returns the length of fragment i.
func (s *Store) Length(i int) int {
	return len(s.Bases(i))
}

// Lengths returns the length of every fragment, by index.
func (s *Store) Lengths() []int {
	lengths := make([]int, len(s.seqs))
	for i, seq := range s.seqs {
		lengths[i] = len(seq.Bases)
	}
	return lengths
}

// All returns the fragments in index order. The slice must not be modified.
func (s *Store) All() []*Sequence {
	return s.seqs
}

// Shortest returns the length of the shortest fragment, or 0 for an empty store.
func (s *Store) Shortest() int {
	if len(s.seqs) == 0 {
		return 0
	}
	shortest := len(s.seqs[0].Bases)
	for _, seq := range s.seqs[1:] {
		if len(seq.Bases) < shortest {
			shortest = len(seq.Bases)
		}
	}
	return shortest
}
