// Package assembly runs the whole EST assembly: pairwise window distances,
// the similarity tree, six-tuples, layout and consensus reconstruction.
package assembly

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/exascience/pargo/parallel"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/aria-lang/estflow-go/internal/alignment"
	"github.com/aria-lang/estflow-go/internal/consensus"
	"github.com/aria-lang/estflow-go/internal/graph"
	"github.com/aria-lang/estflow-go/internal/inclusion"
	"github.com/aria-lang/estflow-go/internal/kmer"
	"github.com/aria-lang/estflow-go/internal/layout"
	"github.com/aria-lang/estflow-go/internal/overlap"
	"github.com/aria-lang/estflow-go/internal/sequence"
)

// InputError reports fragments that cannot be assembled. Index is -1 when
// the set as a whole is at fault.
type InputError struct {
	Index  int
	Reason string
}

func (e *InputError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("malformed input: %s", e.Reason)
	}
	return fmt.Sprintf("malformed input: fragment %d: %s", e.Index, e.Reason)
}

// ProgressFunc is told how many of total pairwise rows are done. It may be
// called from several goroutines.
type ProgressFunc func(done, total int)

// Options configures a run.
type Options struct {
	Overlap   kmer.Params
	Consensus consensus.Params
	Scoring   *alignment.ScoringMatrix
	// MaxDepth caps the false-left-end search; 0 is unbounded.
	MaxDepth int
	// ContainmentIdentity accepts inclusions that align end to end at this
	// identity. Zero requires exact containment.
	ContainmentIdentity float64
	// Tree replaces the similarity tree computed from window distances.
	Tree     *graph.Tree
	Progress ProgressFunc
}

// DefaultOptions returns the standard settings.
func DefaultOptions() Options {
	return Options{
		Overlap:   kmer.DefaultParams(),
		Consensus: consensus.DefaultParams(),
		Scoring:   alignment.DefaultDNA(),
	}
}

// Result is the outcome of one run, including the intermediate structures.
type Result struct {
	RunID      string              `json:"run_id"`
	Contigs    []*consensus.Contig `json:"contigs"`
	Singletons []int               `json:"singletons"`
	Roots      []int               `json:"roots"`
	Placements []layout.Placement  `json:"-"`
	Tuples     []overlap.SixTuple  `json:"-"`
	Tree       *graph.Tree         `json:"-"`
	Inclusions []inclusion.Edge    `json:"inclusions"`
	Elapsed    time.Duration       `json:"elapsed"`
}

// Consensus returns every contig sequence, variants included, in order.
func (r *Result) Consensus() []string {
	var out []string
	for _, c := range r.Contigs {
		out = append(out, c.Sequences()...)
	}
	return out
}

// Branches returns the branch side channel of all contigs.
func (r *Result) Branches() []consensus.Branch {
	var out []consensus.Branch
	for _, c := range r.Contigs {
		out = append(out, c.Branches...)
	}
	return out
}

// Validate checks that every fragment can be compared by the overlap engine.
func Validate(store *sequence.Store, window int) error {
	if store == nil || store.Len() == 0 {
		return &InputError{Index: -1, Reason: "no fragments"}
	}
	for i := 0; i < store.Len(); i++ {
		bases := store.Bases(i)
		if len(bases) < window {
			return &InputError{Index: i, Reason: fmt.Sprintf("length %d is shorter than the window size %d", len(bases), window)}
		}
		if strings.IndexByte(bases, sequence.Gap) >= 0 {
			return &InputError{Index: i, Reason: "contains gap characters"}
		}
	}
	return nil
}

// Distances computes the symmetric matrix of smallest end-window distances
// between all fragments. Rows are spread over goroutines.
func Distances(ctx context.Context, store *sequence.Store, engine *kmer.Engine, progress ProgressFunc) ([][]int, error) {
	n := store.Len()
	dist := make([][]int, n)
	for i := range dist {
		dist[i] = make([]int, n)
	}

	var done atomic.Int64
	parallel.Range(0, n, 0, func(low, high int) {
		for i := low; i < high; i++ {
			if ctx.Err() != nil {
				return
			}
			for j := i + 1; j < n; j++ {
				d := engine.Distance(store.Bases(i), store.Bases(j))
				dist[i][j] = d
			}
			if progress != nil {
				progress(int(done.Add(1)), n)
			}
		}
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dist[j][i] = dist[i][j]
		}
	}
	return dist, nil
}

// Run assembles the fragments of store.
func Run(ctx context.Context, store *sequence.Store, opts Options) (*Result, error) {
	start := time.Now()
	runID := uuid.New().String()
	logger := log.WithField("run", runID)

	if err := Validate(store, opts.Overlap.Window); err != nil {
		return nil, err
	}
	engine, err := kmer.NewEngine(opts.Overlap)
	if err != nil {
		return nil, fmt.Errorf("overlap engine: %w", err)
	}
	scoring := opts.Scoring
	if scoring == nil {
		scoring = alignment.DefaultDNA()
	}
	aligner, err := alignment.NewLinearSpace(scoring)
	if err != nil {
		return nil, fmt.Errorf("aligner: %w", err)
	}
	n := store.Len()
	logger.Debugf("assembling %d fragments", n)

	tree := opts.Tree
	if tree == nil {
		dist, err := Distances(ctx, store, engine, opts.Progress)
		if err != nil {
			return nil, err
		}
		tree = graph.MinimumSpanningTree(dist)
	} else if tree.Len() != n {
		return nil, &InputError{Index: -1, Reason: fmt.Sprintf("tree has %d vertices for %d fragments", tree.Len(), n)}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var contains inclusion.Predicate
	if opts.ContainmentIdentity > 0 {
		contains = inclusion.AlignedContainment(scoring, opts.ContainmentIdentity)
	}
	tracker := inclusion.NewTracker(n)
	builder := overlap.NewBuilder(store, engine, tracker, contains, overlap.Params{MaxDepth: opts.MaxDepth})
	tuples := builder.Build(tree)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	roots, placements := layout.AssignCoordinates(tuples, store.Lengths(), tracker, opts.Consensus.Parallel)
	logger.Debugf("%d roots, %d inclusions", len(roots), tracker.Count())

	rec, err := consensus.New(store, engine, aligner, tracker, opts.Consensus)
	if err != nil {
		return nil, err
	}
	rec.SetContainment(contains)
	res, err := rec.Reconstruct(placements)
	if err != nil {
		return nil, err
	}

	out := &Result{
		RunID:      runID,
		Contigs:    res.Contigs,
		Singletons: res.Singletons,
		Roots:      roots,
		Placements: placements,
		Tuples:     tuples,
		Tree:       tree,
		Inclusions: tracker.Edges(),
		Elapsed:    time.Since(start),
	}
	logger.WithFields(log.Fields{
		"fragments":  n,
		"contigs":    len(out.Contigs),
		"singletons": len(out.Singletons),
		"roots":      len(roots),
		"elapsed":    out.Elapsed.Round(time.Millisecond),
	}).Info("assembly finished")
	return out, nil
}
