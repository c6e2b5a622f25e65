package graph

import (
	"container/heap"
	"sort"

	"github.com/willf/bitset"
)

// Arborescence is a minimum spanning tree of a Digraph grown from one root.
// Vertices not reachable from the root have Parent -1.
type Arborescence struct {
	Root     int
	Parent   []int
	In       []Edge
	Children [][]int
	reached  *bitset.BitSet
}

// Reached reports whether v was spanned.
func (a *Arborescence) Reached(v int) bool {
	return a.reached.Test(uint(v))
}

// Size returns the number of spanned vertices, root included.
func (a *Arborescence) Size() int {
	return int(a.reached.Count())
}

type edgeQueue []Edge

func (q edgeQueue) Len() int            { return len(q) }
func (q edgeQueue) Less(i, j int) bool  { return better(q[i], q[j]) }
func (q edgeQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *edgeQueue) Push(x interface{}) { *q = append(*q, x.(Edge)) }
func (q *edgeQueue) Pop() interface{} {
	old := *q
	e := old[len(old)-1]
	*q = old[:len(old)-1]
	return e
}

// Prim grows a minimum spanning arborescence from root along outgoing edges.
// Ties are broken by longer overlap, then lower target index, so the result
// depends only on the graph.
func (g *Digraph) Prim(root int) *Arborescence {
	n := g.Len()
	a := &Arborescence{
		Root:     root,
		Parent:   make([]int, n),
		In:       make([]Edge, n),
		Children: make([][]int, n),
		reached:  bitset.New(uint(n)),
	}
	for i := range a.Parent {
		a.Parent[i] = -1
	}
	a.reached.Set(uint(root))

	q := &edgeQueue{}
	for _, e := range g.Out(root) {
		heap.Push(q, e)
	}
	for q.Len() > 0 {
		e := heap.Pop(q).(Edge)
		if a.reached.Test(uint(e.To)) {
			continue
		}
		a.reached.Set(uint(e.To))
		a.Parent[e.To] = e.From
		a.In[e.To] = e
		a.Children[e.From] = append(a.Children[e.From], e.To)
		for _, next := range g.Out(e.To) {
			if !a.reached.Test(uint(next.To)) {
				heap.Push(q, next)
			}
		}
	}
	for _, c := range a.Children {
		sort.Ints(c)
	}
	return a
}
