// Package layout turns six-tuples into absolute fragment coordinates, one
// coordinate system per left end.
package layout

import (
	"sort"

	"github.com/exascience/pargo/parallel"
	log "github.com/sirupsen/logrus"

	"github.com/aria-lang/estflow-go/internal/graph"
	"github.com/aria-lang/estflow-go/internal/inclusion"
	"github.com/aria-lang/estflow-go/internal/overlap"
)

// Placement is the layout grown from one root. Members lists the placed
// fragments in depth-first order, root first.
type Placement struct {
	Root    int         `json:"root"`
	Coords  map[int]int `json:"coords"`
	Members []int       `json:"members"`
	Parent  map[int]int `json:"-"`
}

// Len returns the number of placed fragments.
func (p *Placement) Len() int {
	return len(p.Members)
}

// Span returns the extent [start, end) covered by the placed fragments.
func (p *Placement) Span(lengths []int) (int, int) {
	start, end := 0, 0
	for i, m := range p.Members {
		c := p.Coords[m]
		if i == 0 || c < start {
			start = c
		}
		if e := c + lengths[m]; i == 0 || e > end {
			end = e
		}
	}
	return start, end
}

// DistanceGraph builds the directed distance graph over n fragments, one
// edge per left or right six-tuple pointer.
func DistanceGraph(n int, tuples []overlap.SixTuple) *graph.Digraph {
	if len(tuples) != n {
		log.Panicf("%d six-tuples for %d fragments", len(tuples), n)
	}
	g := graph.NewDigraph(n)
	for _, e := range overlap.Edges(tuples) {
		g.AddEdge(e)
	}
	return g
}

// Roots returns the left ends: fragments without a left pointer that are
// not included in another fragment.
func Roots(tuples []overlap.SixTuple, tracker *inclusion.Tracker) []int {
	return overlap.Roots(tuples, tracker)
}

// Place grows the minimum spanning arborescence of g from root and assigns
// coordinates depth-first: a child starts where its parent ends, minus the
// overlap between them.
func Place(g *graph.Digraph, root int, lengths []int) Placement {
	tree := g.Prim(root)
	p := Placement{
		Root:    root,
		Coords:  map[int]int{root: 0},
		Members: make([]int, 0, tree.Size()),
		Parent:  make(map[int]int, tree.Size()),
	}

	stack := []int{root}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		p.Members = append(p.Members, v)

		children := tree.Children[v]
		for k := len(children) - 1; k >= 0; k-- {
			c := children[k]
			p.Coords[c] = p.Coords[v] + lengths[v] - tree.In[c].Length
			p.Parent[c] = v
			stack = append(stack, c)
		}
	}
	return p
}

// AssignCoordinates finds the roots and places every one of them. Roots are
// independent, so they are laid out in parallel when par is set.
func AssignCoordinates(tuples []overlap.SixTuple, lengths []int, tracker *inclusion.Tracker, par bool) ([]int, []Placement) {
	g := DistanceGraph(len(lengths), tuples)
	roots := Roots(tuples, tracker)
	placements := make([]Placement, len(roots))

	place := func(low, high int) {
		for k := low; k < high; k++ {
			placements[k] = Place(g, roots[k], lengths)
		}
	}
	if par {
		parallel.Range(0, len(roots), 0, place)
	} else {
		place(0, len(roots))
	}

	log.Debugf("layout: %d roots over %d fragments", len(roots), len(lengths))
	return roots, placements
}

// Unplaced returns the fragments that no placement reached and that are not
// included in another fragment.
func Unplaced(n int, placements []Placement, tracker *inclusion.Tracker) []int {
	seen := make(map[int]bool, n)
	for _, p := range placements {
		for _, m := range p.Members {
			seen[m] = true
		}
	}
	var out []int
	for i := 0; i < n; i++ {
		if !seen[i] && (tracker == nil || !tracker.IsIncluded(i)) {
			out = append(out, i)
		}
	}
	sort.Ints(out)
	return out
}
