// Package overlap derives, for every fragment, its best left and right
// overlapping neighbour (the six-tuple) from the similarity tree.
package overlap

import (
	"fmt"

	"github.com/aria-lang/estflow-go/internal/graph"
	"github.com/aria-lang/estflow-go/internal/kmer"
)

// None marks a missing neighbour.
const None = -1

// SixTuple is the best left and right neighbour of one fragment, with the
// absolute overlap length and distance of each.
type SixTuple struct {
	Left          int `json:"left"`
	LeftLength    int `json:"left_length"`
	LeftDistance  int `json:"left_distance"`
	Right         int `json:"right"`
	RightLength   int `json:"right_length"`
	RightDistance int `json:"right_distance"`
}

// Empty returns a six-tuple with no neighbours.
func Empty() SixTuple {
	return SixTuple{
		Left:          None,
		LeftDistance:  kmer.NoOverlap,
		Right:         None,
		RightDistance: kmer.NoOverlap,
	}
}

// OfferLeft replaces the left neighbour when the candidate has a smaller
// distance, or an equal distance and a longer overlap.
func (s *SixTuple) OfferLeft(node, length, distance int) bool {
	if distance < s.LeftDistance || (distance == s.LeftDistance && length > s.LeftLength) {
		s.Left, s.LeftLength, s.LeftDistance = node, length, distance
		return true
	}
	return false
}

// OfferRight is OfferLeft for the right side.
func (s *SixTuple) OfferRight(node, length, distance int) bool {
	if distance < s.RightDistance || (distance == s.RightDistance && length > s.RightLength) {
		s.Right, s.RightLength, s.RightDistance = node, length, distance
		return true
	}
	return false
}

// Offer files an overlap result of candidate relative to the owner of s.
func (s *SixTuple) Offer(candidate int, r kmer.Result) bool {
	switch {
	case !r.HasOverlap():
		return false
	case r.Length < 0:
		return s.OfferLeft(candidate, -r.Length, r.Distance)
	case r.Length > 0:
		return s.OfferRight(candidate, r.Length, r.Distance)
	}
	return false
}

func (s SixTuple) String() string {
	return fmt.Sprintf("(%d, %d, %d, %d, %d, %d)",
		s.Left, s.LeftLength, s.LeftDistance, s.Right, s.RightLength, s.RightDistance)
}

// Edges converts six-tuples into directed distance-graph edges, each
// pointing from the left fragment to the right one.
func Edges(tuples []SixTuple) []graph.Edge {
	var edges []graph.Edge
	for i, t := range tuples {
		if t.Right != None {
			edges = append(edges, graph.Edge{From: i, To: t.Right, Weight: t.RightDistance, Length: t.RightLength})
		}
		if t.Left != None {
			edges = append(edges, graph.Edge{From: t.Left, To: i, Weight: t.LeftDistance, Length: t.LeftLength})
		}
	}
	return edges
}
