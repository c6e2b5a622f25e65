package overlap

import (
	"github.com/exascience/pargo/parallel"
	log "github.com/sirupsen/logrus"

	"github.com/aria-lang/estflow-go/internal/graph"
	"github.com/aria-lang/estflow-go/internal/inclusion"
	"github.com/aria-lang/estflow-go/internal/kmer"
	"github.com/aria-lang/estflow-go/internal/sequence"
)

// firstWideLevel is the tree depth at which false-left-end elimination
// starts; depths 1 to 3 are covered by the neighbour and expansion steps.
const firstWideLevel = 4

// Params tunes six-tuple construction.
type Params struct {
	// MaxDepth caps the breadth-first widening used to find a left
	// neighbour for candidate roots. Zero searches the whole tree.
	MaxDepth int
}

// Builder computes six-tuples for the fragments of a store.
type Builder struct {
	store    *sequence.Store
	engine   *kmer.Engine
	tracker  *inclusion.Tracker
	contains inclusion.Predicate
	params   Params
}

// NewBuilder creates a builder. A nil predicate selects exact containment.
func NewBuilder(store *sequence.Store, engine *kmer.Engine, tracker *inclusion.Tracker,
	contains inclusion.Predicate, params Params) *Builder {
	if contains == nil {
		contains = inclusion.Contains
	}
	return &Builder{
		store:    store,
		engine:   engine,
		tracker:  tracker,
		contains: contains,
		params:   params,
	}
}

// Build runs the four steps on the similarity tree: strip inclusions, pick
// the best direct neighbours, widen to two and three hops where a side is
// missing, then resolve false left ends. Included fragments keep an empty
// six-tuple.
func (b *Builder) Build(tree *graph.Tree) []SixTuple {
	n := b.store.Len()
	if tree.Len() != n {
		log.Panicf("tree has %d vertices for %d fragments", tree.Len(), n)
	}

	b.stripInclusions(tree)

	tuples := make([]SixTuple, n)
	parallel.Range(0, n, 0, func(low, high int) {
		for i := low; i < high; i++ {
			tuples[i] = Empty()
			if b.tracker.IsIncluded(i) {
				continue
			}
			for _, j := range tree.Neighbors(i) {
				b.offer(&tuples[i], i, j)
			}
			if tuples[i].Left == None || tuples[i].Right == None {
				b.expand(tree, &tuples[i], i)
			}
		}
	})

	b.eliminateFalseLeftEnds(tree, tuples)

	if log.IsLevelEnabled(log.DebugLevel) {
		log.Debugf("six-tuples: %d fragments, %d included, %d roots",
			n, b.tracker.Count(), len(Roots(tuples, b.tracker)))
	}
	return tuples
}

// stripInclusions records every fragment contained in one of its tree
// neighbours.
func (b *Builder) stripInclusions(tree *graph.Tree) {
	for i := 0; i < b.store.Len(); i++ {
		child := b.store.Bases(i)
		for _, j := range tree.Neighbors(i) {
			if b.contains(b.store.Bases(j), child) && b.tracker.Add(i, j) {
				log.Debugf("fragment %d is included in %d", i, j)
				break
			}
		}
	}
}

func (b *Builder) offer(t *SixTuple, i, j int) {
	if j == i || b.tracker.IsIncluded(j) {
		return
	}
	t.Offer(j, b.engine.Overlap(b.store.Bases(i), b.store.Bases(j)))
}

// expand looks at tree vertices two and three hops away. Values found so
// far seed the search, so it can only improve them.
func (b *Builder) expand(tree *graph.Tree, t *SixTuple, i int) {
	layers := tree.Layers(i, 3)
	for depth := 2; depth < len(layers); depth++ {
		for _, j := range layers[depth] {
			b.offer(t, i, j)
		}
	}
}

// eliminateFalseLeftEnds gives every fragment still lacking a left
// neighbour a second chance: first through another fragment's right
// pointer, then by widening the tree search level by level. Fragments that
// survive both are genuine roots.
func (b *Builder) eliminateFalseLeftEnds(tree *graph.Tree, tuples []SixTuple) {
	incoming := make([][]int, len(tuples))
	for y, t := range tuples {
		if t.Right != None && !b.tracker.IsIncluded(y) {
			incoming[t.Right] = append(incoming[t.Right], y)
		}
	}

	parallel.Range(0, len(tuples), 0, func(low, high int) {
		for x := low; x < high; x++ {
			t := &tuples[x]
			if t.Left != None || b.tracker.IsIncluded(x) {
				continue
			}
			for _, y := range incoming[x] {
				t.OfferLeft(y, tuples[y].RightLength, tuples[y].RightDistance)
			}
			if t.Left != None {
				continue
			}
			if b.params.MaxDepth != 0 && b.params.MaxDepth < firstWideLevel {
				continue
			}
			layers := tree.Layers(x, b.params.MaxDepth)
			for depth := firstWideLevel; depth < len(layers) && t.Left == None; depth++ {
				for _, y := range layers[depth] {
					if b.tracker.IsIncluded(y) {
						continue
					}
					r := b.engine.Overlap(b.store.Bases(x), b.store.Bases(y))
					if r.HasOverlap() && r.Length < 0 {
						t.OfferLeft(y, -r.Length, r.Distance)
					}
				}
			}
		}
	})
}

// Roots returns the fragments without a left neighbour, excluding included
// ones, in index order.
func Roots(tuples []SixTuple, tracker *inclusion.Tracker) []int {
	var roots []int
	for i, t := range tuples {
		if t.Left == None && (tracker == nil || !tracker.IsIncluded(i)) {
			roots = append(roots, i)
		}
	}
	return roots
}
