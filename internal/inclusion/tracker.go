// Package inclusion records which fragments lie entirely inside another.
//
// Included fragments are kept out of the overlap graph and reinserted next to
// their parent when the consensus is built.
package inclusion

import (
	"sort"
	"strings"

	"github.com/aria-lang/estflow-go/internal/alignment"
	"github.com/willf/bitset"
)

// Edge is a recorded child-in-parent relation.
type Edge struct {
	Child  int `json:"child"`
	Parent int `json:"parent"`
}

// Tracker is the inclusion index. It is built sequentially and read
// concurrently afterwards.
type Tracker struct {
	included *bitset.BitSet
	parent   map[int]int
	children map[int][]int
	edges    []Edge
}

// NewTracker creates a tracker for n fragments.
func NewTracker(n int) *Tracker {
	return &Tracker{
		included: bitset.New(uint(n)),
		parent:   make(map[int]int),
		children: make(map[int][]int),
	}
}

// Add records child as included in parent. It refuses self-inclusion, a
// child that already has a parent, and an edge that would reverse an
// existing one (parent already inside child).
func (t *Tracker) Add(child, parent int) bool {
	if child == parent || t.IsIncluded(child) {
		return false
	}
	for p, ok := t.parent[parent]; ok; p, ok = t.parent[p] {
		if p == child {
			return false
		}
	}
	t.included.Set(uint(child))
	t.parent[child] = parent
	t.children[parent] = append(t.children[parent], child)
	sort.Ints(t.children[parent])
	t.edges = append(t.edges, Edge{Child: child, Parent: parent})
	return true
}

// IsIncluded reports whether i was recorded as a child.
func (t *Tracker) IsIncluded(i int) bool {
	return t.included.Test(uint(i))
}

// Parent returns the direct parent of child.
func (t *Tracker) Parent(child int) (int, bool) {
	p, ok := t.parent[child]
	return p, ok
}

// Children returns the direct children of parent in index order.
func (t *Tracker) Children(parent int) []int {
	return t.children[parent]
}

// Descendants returns all fragments nested under parent, depth first, each
// child followed by its own descendants.
func (t *Tracker) Descendants(parent int) []int {
	var out []int
	var walk func(int)
	walk = func(p int) {
		for _, c := range t.children[p] {
			out = append(out, c)
			walk(c)
		}
	}
	walk(parent)
	return out
}

// Count returns the number of included fragments.
func (t *Tracker) Count() int {
	return int(t.included.Count())
}

// Edges returns the recorded edges in insertion order.
func (t *Tracker) Edges() []Edge {
	return t.edges
}

// Contains is the exact containment predicate: child occurs verbatim in
// parent and is not longer than it.
func Contains(parent, child string) bool {
	return len(child) <= len(parent) && strings.Contains(parent, child)
}

// Predicate decides whether child lies inside parent.
type Predicate func(parent, child string) bool

// AlignedContainment accepts near-exact containment: child is aligned end to
// end against parent and must reach minIdentity. Exact matches short-circuit.
func AlignedContainment(scoring *alignment.ScoringMatrix, minIdentity float64) Predicate {
	return func(parent, child string) bool {
		if len(child) > len(parent) {
			return false
		}
		if strings.Contains(parent, child) {
			return true
		}
		a, err := alignment.SemiGlobalAlignment(child, parent, scoring)
		if err != nil {
			return false
		}
		return a.Identity >= minIdentity
	}
}
