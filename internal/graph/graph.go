// Package graph holds the spanning-tree primitives of the assembler: the
// undirected similarity tree over all fragments, the directed distance graph
// built from six-tuples and its rooted minimum spanning arborescence.
package graph

import (
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"
)

// Edge is a weighted edge between two fragments. Weight is the overlap
// distance and Length the absolute overlap length.
type Edge struct {
	From   int `json:"from"`
	To     int `json:"to"`
	Weight int `json:"weight"`
	Length int `json:"length"`
}

// better orders edges by smaller weight, then longer overlap, then index.
func better(a, b Edge) bool {
	if a.Weight != b.Weight {
		return a.Weight < b.Weight
	}
	if a.Length != b.Length {
		return a.Length > b.Length
	}
	if a.To != b.To {
		return a.To < b.To
	}
	return a.From < b.From
}

func (e Edge) String() string {
	return fmt.Sprintf("%d -> %d (distance %d, overlap %d)", e.From, e.To, e.Weight, e.Length)
}

// Digraph is a directed graph over fragment indices with at most one edge
// per ordered pair.
type Digraph struct {
	out []map[int]Edge
}

// NewDigraph creates an empty graph on n vertices.
func NewDigraph(n int) *Digraph {
	g := &Digraph{out: make([]map[int]Edge, n)}
	for i := range g.out {
		g.out[i] = make(map[int]Edge)
	}
	return g
}

// Len returns the number of vertices.
func (g *Digraph) Len() int {
	return len(g.out)
}

// AddEdge inserts e, keeping the better edge when From->To already exists.
func (g *Digraph) AddEdge(e Edge) {
	if e.From < 0 || e.From >= len(g.out) || e.To < 0 || e.To >= len(g.out) {
		log.Panicf("edge %v outside graph of %d vertices", e, len(g.out))
	}
	if old, ok := g.out[e.From][e.To]; ok && !better(e, old) {
		return
	}
	g.out[e.From][e.To] = e
}

// Out returns the outgoing edges of v in target order.
func (g *Digraph) Out(v int) []Edge {
	edges := make([]Edge, 0, len(g.out[v]))
	for _, e := range g.out[v] {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].To < edges[j].To })
	return edges
}

// Edge returns the edge From->To if present.
func (g *Digraph) Edge(from, to int) (Edge, bool) {
	e, ok := g.out[from][to]
	return e, ok
}

// Edges returns every edge ordered by source then target.
func (g *Digraph) Edges() []Edge {
	var edges []Edge
	for v := range g.out {
		edges = append(edges, g.Out(v)...)
	}
	return edges
}
