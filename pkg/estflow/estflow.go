// Package estflow assembles expressed sequence tags into consensus contigs.
//
// Example usage:
//
//	seqs, err := estflow.ReadFASTA("ests.fa.gz")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := estflow.Assemble(context.Background(), seqs, estflow.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, c := range res.Consensus() {
//	    fmt.Println(c)
//	}
package estflow

import (
	"context"
	"fmt"

	"github.com/aria-lang/estflow-go/internal/alignment"
	"github.com/aria-lang/estflow-go/internal/assembly"
	"github.com/aria-lang/estflow-go/internal/consensus"
	"github.com/aria-lang/estflow-go/internal/kmer"
	"github.com/aria-lang/estflow-go/internal/sequence"
	"github.com/aria-lang/estflow-go/internal/stats"
)

// Re-export types for convenience
type (
	Sequence      = sequence.Sequence
	Store         = sequence.Store
	Options       = assembly.Options
	Result        = assembly.Result
	Contig        = consensus.Contig
	Branch        = consensus.Branch
	Alignment     = alignment.Alignment
	ScoringMatrix = alignment.ScoringMatrix
	OverlapResult = kmer.Result
	Summary       = stats.Summary
)

// NewSequence creates a fragment from raw bases.
func NewSequence(bases string) (*Sequence, error) {
	return sequence.New(bases)
}

// DefaultOptions returns the default assembly options.
func DefaultOptions() Options {
	return assembly.DefaultOptions()
}

// NewStore indexes fragments for one run. The fragments' Index fields are
// overwritten.
func NewStore(seqs []*Sequence) *Store {
	return sequence.NewStore(seqs)
}

// Assemble runs the whole pipeline over seqs.
func Assemble(ctx context.Context, seqs []*Sequence, opts Options) (*Result, error) {
	return assembly.Run(ctx, sequence.NewStore(seqs), opts)
}

// Overlap reports how a overlaps b with the given overlap parameters.
func Overlap(a, b *Sequence, params kmer.Params) (OverlapResult, error) {
	engine, err := kmer.NewEngine(params)
	if err != nil {
		return OverlapResult{}, err
	}
	if a.Len() < params.Window || b.Len() < params.Window {
		return OverlapResult{}, fmt.Errorf("fragments must be at least %d bases", params.Window)
	}
	return engine.Overlap(a.Bases, b.Bases), nil
}

// Alignment methods accepted by Align and AlignScore.
const (
	MethodLocal           = "local"
	MethodGlobal          = "global"
	MethodSmithWaterman   = "smith-waterman"
	MethodNeedlemanWunsch = "needleman-wunsch"
)

// MaxMatrixLength caps the inputs of the full-matrix methods, which keep a
// traceback cell for every pair of positions.
const MaxMatrixLength = 2000

// AlignLocal aligns a and b in linear space.
func AlignLocal(a, b *Sequence, scoring *ScoringMatrix) (*Alignment, error) {
	return Align(a, b, MethodLocal, scoring)
}

// Align aligns a and b with the named method. The linear-space methods take
// any length; smith-waterman and needleman-wunsch are limited to
// MaxMatrixLength bases.
func Align(a, b *Sequence, method string, scoring *ScoringMatrix) (*Alignment, error) {
	if scoring == nil {
		scoring = alignment.DefaultDNA()
	}
	switch method {
	case MethodLocal, "":
		return alignment.LocalLinear(a.Bases, b.Bases, scoring, alignment.NoHint)
	case MethodGlobal:
		return alignment.Hirschberg(a.Bases, b.Bases, scoring)
	case MethodSmithWaterman, MethodNeedlemanWunsch:
		if a.Len() > MaxMatrixLength || b.Len() > MaxMatrixLength {
			return nil, fmt.Errorf("%s is limited to %d bases, use %s or %s",
				method, MaxMatrixLength, MethodLocal, MethodGlobal)
		}
		if method == MethodSmithWaterman {
			return alignment.SmithWaterman(a.Bases, b.Bases, scoring)
		}
		return alignment.NeedlemanWunsch(a.Bases, b.Bases, scoring)
	}
	return nil, fmt.Errorf("unknown alignment method %q", method)
}

// AlignScore returns only the optimal score of aligning a and b, in linear
// space. Local methods give the local score, global methods the global one.
func AlignScore(a, b *Sequence, method string, scoring *ScoringMatrix) (int, error) {
	switch method {
	case MethodLocal, MethodSmithWaterman, "":
		return alignment.AlignmentScoreOnly(a.Bases, b.Bases, scoring)
	case MethodGlobal, MethodNeedlemanWunsch:
		return alignment.GlobalAlignmentScoreOnly(a.Bases, b.Bases, scoring)
	}
	return 0, fmt.Errorf("unknown alignment method %q", method)
}

// Summarize computes summary statistics of an assembly over n fragments.
func Summarize(n int, res *Result) Summary {
	return stats.Summarize(n, res)
}

// Version returns the estflow version.
func Version() string {
	return "0.4.0"
}
