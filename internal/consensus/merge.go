package consensus

import (
	"errors"
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/aria-lang/estflow-go/internal/alignment"
)

// mergeRoots joins contigs of roots that describe the same region. Two
// roots are grouped when the seed fragment of one contains the seed fragment
// of the other. Within a group the contig with the longest seed and the one
// using the most fragments are spliced together; the rest of the group is
// absorbed. Groups whose two contigs do not align stay separate.
func (r *Reconstructor) mergeRoots(contigs []*Contig) ([]*Contig, error) {
	if len(contigs) < 2 {
		return contigs, nil
	}

	uf := newUnionFind(len(contigs))
	for a, ca := range contigs {
		seed := r.store.Bases(ca.Root)
		for b, cb := range contigs {
			if a != b && r.contains(r.store.Bases(cb.Root), seed) {
				uf.union(a, b)
			}
		}
	}

	groups := make(map[int][]int)
	var order []int
	for k := range contigs {
		root := uf.find(k)
		if _, ok := groups[root]; !ok {
			order = append(order, root)
		}
		groups[root] = append(groups[root], k)
	}

	var out []*Contig
	for _, g := range order {
		members := groups[g]
		if len(members) == 1 {
			out = append(out, contigs[members[0]])
			continue
		}
		merged, err := r.mergeGroup(contigs, members)
		if err != nil {
			return nil, err
		}
		out = append(out, merged...)
	}
	return out, nil
}

func (r *Reconstructor) mergeGroup(contigs []*Contig, group []int) ([]*Contig, error) {
	longest, most := group[0], group[0]
	for _, k := range group[1:] {
		if contigs[k].SeedLength > contigs[longest].SeedLength {
			longest = k
		}
		if contigs[k].Used() > contigs[most].Used() {
			most = k
		}
	}

	union := make(map[int]bool)
	for _, k := range group {
		for _, m := range contigs[k].Members {
			union[m] = true
		}
	}
	members := make([]int, 0, len(union))
	for m := range union {
		members = append(members, m)
	}
	sort.Ints(members)

	first := contigs[longest]
	if longest == most {
		kept := *first
		kept.Members = members
		return []*Contig{&kept}, nil
	}

	second := contigs[most]
	seq, err := alignment.Splice(first.Sequence, second.Sequence, r.aligner)
	if errors.Is(err, alignment.ErrNoAlignment) {
		log.Debugf("roots %d and %d do not align, keeping both", first.Root, second.Root)
		out := make([]*Contig, 0, len(group))
		for _, k := range group {
			out = append(out, contigs[k])
		}
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("merging roots %d and %d: %w", first.Root, second.Root, err)
	}

	log.Debugf("merged %d roots into root %d (%d fragments)", len(group), first.Root, len(members))
	return []*Contig{{
		Root:       first.Root,
		Sequence:   seq,
		Members:    members,
		SeedLength: first.SeedLength,
		Breakpoint: NoBreakpoint,
	}}, nil
}

type unionFind []int

func newUnionFind(n int) unionFind {
	uf := make(unionFind, n)
	for i := range uf {
		uf[i] = i
	}
	return uf
}

func (uf unionFind) find(x int) int {
	for uf[x] != x {
		uf[x] = uf[uf[x]]
		x = uf[x]
	}
	return x
}

// union keeps the smaller index as representative so group order follows
// contig order.
func (uf unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	switch {
	case ra < rb:
		uf[rb] = ra
	case rb < ra:
		uf[ra] = rb
	}
}
