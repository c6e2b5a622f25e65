package consensus

import (
	"fmt"

	"github.com/aria-lang/estflow-go/internal/kmer"
)

// Breakpoint is the coordinate window [Start, End) where a root's fragments
// diverge into two branches.
type Breakpoint struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// NoBreakpoint is reported when no window qualified.
var NoBreakpoint = Breakpoint{Start: -1, End: -1}

// Found reports whether b marks a real window.
func (b Breakpoint) Found() bool {
	return b != NoBreakpoint
}

func (b Breakpoint) String() string {
	return fmt.Sprintf("(%d, %d)", b.Start, b.End)
}

// Branch is one side of a branch point: the fragments at or after the
// breakpoint that overlap each other, and their own consensus.
type Branch struct {
	Root       int        `json:"root"`
	Breakpoint Breakpoint `json:"breakpoint"`
	Members    []int      `json:"members"`
	Sequence   string     `json:"sequence"`
}

// detect partitions coordinate-sorted members into fixed windows and
// returns the first window that looks like a splicing branch point.
func (r *Reconstructor) detect(ms []member) Breakpoint {
	if r.params.Mode == None || len(ms) < 2 {
		return NoBreakpoint
	}
	w := r.params.Window
	lo := ms[0].coord
	buckets := make([][]int, (ms[len(ms)-1].coord-lo)/w+1)
	for _, m := range ms {
		k := (m.coord - lo) / w
		buckets[k] = append(buckets[k], m.index)
	}
	window := func(k int) Breakpoint {
		return Breakpoint{Start: lo + k*w, End: lo + (k+1)*w}
	}

	switch r.params.Mode {
	case TypeI:
		for k, b := range buckets {
			n := float64(len(b))
			if float64(r.nonOverlapping(b)) > n*n*r.params.TypeIFactor {
				return window(k)
			}
		}
	case TypeII:
		limit := float64(len(ms)) / float64(len(buckets)) * r.params.TypeIIFactor
		dense := func(k int) bool {
			return k < len(buckets) && float64(len(buckets[k])) > limit
		}
		for k := range buckets {
			if dense(k) && (!r.params.Consecutive || dense(k+1)) {
				return window(k)
			}
		}
	}
	return NoBreakpoint
}

// nonOverlapping counts pairs that neither overlap nor contain each other.
func (r *Reconstructor) nonOverlapping(frags []int) int {
	count := 0
	for a := 0; a < len(frags); a++ {
		for b := a + 1; b < len(frags); b++ {
			if !r.related(frags[a], frags[b]) {
				count++
			}
		}
	}
	return count
}

func (r *Reconstructor) related(i, j int) bool {
	res := r.engine.Overlap(r.store.Bases(i), r.store.Bases(j))
	return res.HasOverlap() || res.Containment != kmer.NotContained
}

// split separates the members before the breakpoint from those at or after
// it, and greedily groups the latter into two sets connected by overlaps.
func (r *Reconstructor) split(ms []member, bp Breakpoint) (prefix, left, right []member) {
	for _, m := range ms {
		if m.coord < bp.Start {
			prefix = append(prefix, m)
			continue
		}
		if len(left) == 0 {
			left = append(left, m)
			continue
		}
		inLeft := r.relatedToAny(m.index, left)
		inRight := len(right) > 0 && r.relatedToAny(m.index, right)
		switch {
		case inRight && !inLeft:
			right = append(right, m)
		case !inLeft && len(right) == 0:
			right = append(right, m)
		default:
			left = append(left, m)
		}
	}
	return prefix, left, right
}

func (r *Reconstructor) relatedToAny(i int, group []member) bool {
	for _, g := range group {
		if r.related(i, g.index) {
			return true
		}
	}
	return false
}
