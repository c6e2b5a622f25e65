package consensus

import (
	"sort"
	"strings"

	"github.com/aria-lang/estflow-go/internal/alignment"
	"github.com/aria-lang/estflow-go/internal/sequence"
)

// Symbols in majority preference order.
const (
	symA = iota
	symG
	symC
	symT
	symGap
	symN
	numSymbols
)

var symbols = [numSymbols]byte{'A', 'G', 'C', 'T', '-', 'N'}

var symbolIndex = func() (t [256]int8) {
	for i := range t {
		t[i] = symN
	}
	for k, b := range symbols {
		t[b] = int8(k)
	}
	return
}()

// column counts the bases observed at one coordinate.
type column [numSymbols]int32

// majority returns the most frequent symbol, earlier symbols winning ties.
// An empty column has no majority.
func (c *column) majority() (byte, bool) {
	best := -1
	for k, n := range c {
		if n > 0 && (best < 0 || n > c[best]) {
			best = k
		}
	}
	if best < 0 {
		return 0, false
	}
	return symbols[best], true
}

// pileup is a growable run of columns; columns[0] sits at coordinate origin.
type pileup struct {
	origin  int
	columns []column
}

func (p *pileup) end() int {
	return p.origin + len(p.columns)
}

func (p *pileup) grow(coord int) {
	switch {
	case len(p.columns) == 0:
		p.origin = coord
		p.columns = make([]column, 1)
	case coord < p.origin:
		n := p.origin - coord
		cols := make([]column, n+len(p.columns))
		copy(cols[n:], p.columns)
		p.columns, p.origin = cols, coord
	case coord >= p.end():
		p.columns = append(p.columns, make([]column, coord-p.end()+1)...)
	}
}

func (p *pileup) vote(coord int, base byte) {
	p.grow(coord)
	p.columns[coord-p.origin][symbolIndex[base]]++
}

// place votes a fragment in at coord without alignment.
func (p *pileup) place(frag string, coord int) {
	for i := 0; i < len(frag); i++ {
		p.vote(coord+i, frag[i])
	}
}

// region returns the current consensus over [lo, hi) and the coordinate
// of each of its bases. Gap and empty columns are left out.
func (p *pileup) region(lo, hi int) (string, []int) {
	lo = max(lo, p.origin)
	hi = min(hi, p.end())
	var sb strings.Builder
	var coords []int
	for c := lo; c < hi; c++ {
		b, ok := p.columns[c-p.origin].majority()
		if !ok || b == sequence.Gap {
			continue
		}
		sb.WriteByte(b)
		coords = append(coords, c)
	}
	return sb.String(), coords
}

// add aligns frag against the consensus around its expected coordinate and
// votes every aligned base into the column it matched. Bases outside the
// local alignment extend the pileup on either side; bases inserted relative
// to the consensus are dropped.
func (p *pileup) add(aligner alignment.Aligner, frag string, coord, slack int) error {
	if len(p.columns) == 0 {
		p.place(frag, coord)
		return nil
	}
	ref, coords := p.region(coord-slack, coord+len(frag)+slack)
	if len(ref) == 0 {
		p.place(frag, coord)
		return nil
	}

	a, err := aligner.Align(ref, frag, sort.SearchInts(coords, coord))
	if err != nil {
		return err
	}
	if a.Empty() {
		p.place(frag, coord)
		return nil
	}

	i, j := a.Start1, a.Start2
	first, last := -1, -1
	for k := 0; k < len(a.AlignedSeq1); k++ {
		switch {
		case a.AlignedSeq1[k] == sequence.Gap:
			j++
		case a.AlignedSeq2[k] == sequence.Gap:
			p.vote(coords[i], sequence.Gap)
			last = coords[i]
			i++
		default:
			p.vote(coords[i], frag[j])
			if first < 0 {
				first = coords[i]
			}
			last = coords[i]
			i++
			j++
		}
	}

	for k := 0; k < a.Start2; k++ {
		p.vote(first-a.Start2+k, frag[k])
	}
	for k := a.End2; k < len(frag); k++ {
		p.vote(last+1+k-a.End2, frag[k])
	}
	return nil
}

// consensus collapses the columns to their majority bases.
func (p *pileup) consensus() string {
	var sb strings.Builder
	sb.Grow(len(p.columns))
	for k := range p.columns {
		if b, ok := p.columns[k].majority(); ok && b != sequence.Gap {
			sb.WriteByte(b)
		}
	}
	return sb.String()
}
