package graph

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// Tree is an undirected spanning tree, or forest, over fragments.
type Tree struct {
	adj    [][]int
	weight map[[2]int]int
}

// NewTree creates an edgeless tree on n vertices.
func NewTree(n int) *Tree {
	return &Tree{adj: make([][]int, n), weight: make(map[[2]int]int)}
}

func key(u, v int) [2]int {
	if u > v {
		u, v = v, u
	}
	return [2]int{u, v}
}

// Len returns the number of vertices.
func (t *Tree) Len() int {
	return len(t.adj)
}

// AddEdge connects u and v. Repeated edges are ignored.
func (t *Tree) AddEdge(u, v, weight int) {
	k := key(u, v)
	if _, ok := t.weight[k]; ok || u == v {
		return
	}
	t.weight[k] = weight
	t.adj[u] = insertSorted(t.adj[u], v)
	t.adj[v] = insertSorted(t.adj[v], u)
}

func insertSorted(s []int, x int) []int {
	i := sort.SearchInts(s, x)
	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = x
	return s
}

// Neighbors returns the vertices adjacent to v in index order.
func (t *Tree) Neighbors(v int) []int {
	return t.adj[v]
}

// Weight returns the weight of edge u-v.
func (t *Tree) Weight(u, v int) (int, bool) {
	w, ok := t.weight[key(u, v)]
	return w, ok
}

// Edges returns every edge once, with From < To, in index order.
func (t *Tree) Edges() []Edge {
	var edges []Edge
	for u, nbrs := range t.adj {
		for _, v := range nbrs {
			if u < v {
				edges = append(edges, Edge{From: u, To: v, Weight: t.weight[key(u, v)]})
			}
		}
	}
	return edges
}

// Layers runs a breadth-first search from v and returns the vertices found
// at each depth; layers[0] is {v}. A maxDepth of 0 searches the whole
// component.
func (t *Tree) Layers(v, maxDepth int) [][]int {
	seen := map[int]bool{v: true}
	layers := [][]int{{v}}
	for depth := 1; maxDepth == 0 || depth <= maxDepth; depth++ {
		var next []int
		for _, u := range layers[depth-1] {
			for _, w := range t.adj[u] {
				if !seen[w] {
					seen[w] = true
					next = append(next, w)
				}
			}
		}
		if len(next) == 0 {
			break
		}
		sort.Ints(next)
		layers = append(layers, next)
	}
	return layers
}

// MinimumSpanningTree builds the similarity tree of the complete graph whose
// weights are dist[i][j] for i < j. Equal distances are separated by a
// sub-unit offset derived from the pair index, so the tree is unique.
func MinimumSpanningTree(dist [][]int) *Tree {
	n := len(dist)
	g := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(i))
	}
	scale := float64(n*n + 1)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			w := float64(dist[i][j]) + float64(i*n+j)/scale
			g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(i), T: simple.Node(j), W: w})
		}
	}

	dst := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	path.Prim(dst, g)

	t := NewTree(n)
	edges := dst.Edges()
	for edges.Next() {
		e := edges.Edge()
		u, v := int(e.From().ID()), int(e.To().ID())
		k := key(u, v)
		t.AddEdge(u, v, dist[k[0]][k[1]])
	}
	return t
}
