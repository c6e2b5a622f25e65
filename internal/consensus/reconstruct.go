package consensus

import (
	"fmt"
	"sort"
	"strings"

	"github.com/exascience/pargo/parallel"
	psort "github.com/exascience/pargo/sort"
	log "github.com/sirupsen/logrus"
	"github.com/willf/bitset"

	"github.com/aria-lang/estflow-go/internal/alignment"
	"github.com/aria-lang/estflow-go/internal/inclusion"
	"github.com/aria-lang/estflow-go/internal/kmer"
	"github.com/aria-lang/estflow-go/internal/layout"
	"github.com/aria-lang/estflow-go/internal/sequence"
)

// Contig is the consensus of one root. When a branch point was found,
// Variants holds one sequence per branch and Sequence is the first of them.
type Contig struct {
	Root       int        `json:"root"`
	Sequence   string     `json:"sequence"`
	Variants   []string   `json:"variants,omitempty"`
	Members    []int      `json:"members"`
	SeedLength int        `json:"seed_length"`
	Breakpoint Breakpoint `json:"breakpoint"`
	Branches   []Branch   `json:"branches,omitempty"`
}

// Used returns the number of fragments folded into the contig.
func (c *Contig) Used() int {
	return len(c.Members)
}

// Sequences returns the variants, or the single consensus when there are
// none.
func (c *Contig) Sequences() []string {
	if len(c.Variants) > 0 {
		return c.Variants
	}
	return []string{c.Sequence}
}

// Result collects the contigs of a run and the fragments left out of all of
// them.
type Result struct {
	Contigs    []*Contig `json:"contigs"`
	Singletons []int     `json:"singletons"`
}

// Branches returns every branch reported by any contig.
func (r *Result) Branches() []Branch {
	var out []Branch
	for _, c := range r.Contigs {
		out = append(out, c.Branches...)
	}
	return out
}

// Used returns the number of distinct fragments in some contig.
func (r *Result) Used() int {
	seen := make(map[int]bool)
	for _, c := range r.Contigs {
		for _, m := range c.Members {
			seen[m] = true
		}
	}
	return len(seen)
}

// member is a fragment with its coordinate under one root. loose marks an
// inclusion child whose offset inside its parent is unknown.
type member struct {
	index int
	coord int
	loose bool
}

type byCoord []member

func (s byCoord) SequentialSort(i, j int) {
	sort.SliceStable(s[i:j], func(a, b int) bool {
		return s[i+a].coord < s[i+b].coord
	})
}

func (s byCoord) NewTemp() psort.StableSorter {
	return byCoord(make([]member, len(s)))
}

func (s byCoord) Len() int {
	return len(s)
}

func (s byCoord) Less(i, j int) bool {
	return s[i].coord < s[j].coord
}

func (s byCoord) Assign(source psort.StableSorter) func(i, j, len int) {
	dst, src := s, source.(byCoord)
	return func(i, j, len int) {
		copy(dst[i:i+len], src[j:j+len])
	}
}

// Reconstructor builds contigs for placements over one fragment store.
type Reconstructor struct {
	store    *sequence.Store
	engine   *kmer.Engine
	aligner  alignment.Aligner
	tracker  *inclusion.Tracker
	contains inclusion.Predicate
	params   Params
}

// New creates a reconstructor. A nil aligner selects the linear-space
// aligner with default scoring; a nil tracker means no inclusions.
func New(store *sequence.Store, engine *kmer.Engine, aligner alignment.Aligner,
	tracker *inclusion.Tracker, params Params) (*Reconstructor, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if params.Mode == TypeI && engine == nil {
		return nil, fmt.Errorf("type-i splicing detection needs an overlap engine")
	}
	if aligner == nil {
		ls, err := alignment.NewLinearSpace(nil)
		if err != nil {
			return nil, err
		}
		aligner = ls
	}
	if tracker == nil {
		tracker = inclusion.NewTracker(store.Len())
	}
	return &Reconstructor{
		store:    store,
		engine:   engine,
		aligner:  aligner,
		tracker:  tracker,
		contains: inclusion.Contains,
		params:   params,
	}, nil
}

// SetContainment replaces the predicate used to group roots before merging.
func (r *Reconstructor) SetContainment(contains inclusion.Predicate) {
	if contains != nil {
		r.contains = contains
	}
}

// Reconstruct builds one contig per placement, merges roots covering the
// same region and reports the fragments no contig uses.
func (r *Reconstructor) Reconstruct(placements []layout.Placement) (*Result, error) {
	contigs := make([]*Contig, len(placements))
	errs := make([]error, len(placements))
	run := func(low, high int) {
		for k := low; k < high; k++ {
			contigs[k], errs[k] = r.ReconstructRoot(placements[k])
		}
	}
	if r.params.Parallel {
		parallel.Range(0, len(placements), 0, run)
	} else {
		run(0, len(placements))
	}
	for k, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("reconstructing root %d: %w", placements[k].Root, err)
		}
	}

	var built []*Contig
	for _, c := range contigs {
		if c != nil {
			built = append(built, c)
		}
	}
	merged, err := r.mergeRoots(built)
	if err != nil {
		return nil, err
	}

	used := bitset.New(uint(r.store.Len()))
	for _, c := range merged {
		for _, m := range c.Members {
			used.Set(uint(m))
		}
	}
	res := &Result{Contigs: merged}
	for i := 0; i < r.store.Len(); i++ {
		if !used.Test(uint(i)) {
			res.Singletons = append(res.Singletons, i)
		}
	}

	log.Debugf("consensus: %d placements, %d contigs, %d singletons",
		len(placements), len(res.Contigs), len(res.Singletons))
	return res, nil
}

// ReconstructRoot builds the contig of one placement. It returns nil when
// only a single fragment belongs to the root; that fragment is a singleton.
func (r *Reconstructor) ReconstructRoot(p layout.Placement) (*Contig, error) {
	placed := make(byCoord, 0, p.Len())
	for _, m := range p.Members {
		placed = append(placed, member{index: m, coord: p.Coords[m]})
	}
	psort.StableSort(placed)

	all := r.withDescendants(placed)
	if len(all) < 2 {
		return nil, nil
	}

	c := &Contig{
		Root:       p.Root,
		Members:    indices(all),
		SeedLength: r.store.Length(p.Root),
		Breakpoint: NoBreakpoint,
	}

	if bp := r.detect(placed); bp.Found() {
		prefix, left, right := r.split(placed, bp)
		if len(left) > 0 && len(right) > 0 {
			for _, group := range [][]member{left, right} {
				variant, err := r.build(r.withDescendants(concat(prefix, group)))
				if err != nil {
					return nil, err
				}
				branch := r.withDescendants(group)
				seq, err := r.build(branch)
				if err != nil {
					return nil, err
				}
				c.Variants = append(c.Variants, variant)
				c.Branches = append(c.Branches, Branch{
					Root:       p.Root,
					Breakpoint: bp,
					Members:    indices(branch),
					Sequence:   seq,
				})
			}
			c.Sequence = c.Variants[0]
			c.Breakpoint = bp
			log.Debugf("root %d: branch point at %s", p.Root, bp)
			return c, nil
		}
		log.Debugf("root %d: window %s qualified but fragments do not split", p.Root, bp)
	}

	seq, err := r.build(all)
	if err != nil {
		return nil, err
	}
	c.Sequence = seq
	return c, nil
}

// withDescendants inserts the inclusion children of every member directly
// after it, positioned where they occur inside their parent.
func (r *Reconstructor) withDescendants(ms []member) []member {
	out := make([]member, 0, len(ms))
	for _, m := range ms {
		out = append(out, m)
		desc := r.tracker.Descendants(m.index)
		if len(desc) == 0 {
			continue
		}
		coords := map[int]int{m.index: m.coord}
		for _, d := range desc {
			parent, ok := r.tracker.Parent(d)
			if !ok {
				log.Panicf("included fragment %d has no parent", d)
			}
			off := strings.Index(r.store.Bases(parent), r.store.Bases(d))
			dm := member{index: d, coord: coords[parent] + max(off, 0), loose: off < 0}
			coords[d] = dm.coord
			out = append(out, dm)
		}
	}
	return out
}

// build folds members into a pileup in order and returns its consensus.
func (r *Reconstructor) build(ms []member) (string, error) {
	var p pileup
	for _, m := range ms {
		slack := r.params.Slack
		if m.loose {
			slack = 2*slack + r.store.Length(m.index)
		}
		if err := p.add(r.aligner, r.store.Bases(m.index), m.coord, slack); err != nil {
			return "", fmt.Errorf("aligning fragment %d: %w", m.index, err)
		}
	}
	return p.consensus(), nil
}

func indices(ms []member) []int {
	out := make([]int, len(ms))
	for k, m := range ms {
		out[k] = m.index
	}
	sort.Ints(out)
	return out
}

func concat(a, b []member) []member {
	out := make([]member, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
