// Package stats summarises fragment sets and assembly results.
package stats

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aria-lang/estflow-go/internal/assembly"
	"github.com/aria-lang/estflow-go/internal/kmer"
	"github.com/aria-lang/estflow-go/internal/sequence"
)

// LengthStats describes a collection of sequence lengths.
type LengthStats struct {
	Count      int     `json:"count"`
	TotalBases int     `json:"total_bases"`
	Min        int     `json:"min"`
	Max        int     `json:"max"`
	Mean       float64 `json:"mean"`
	Median     int     `json:"median"`
	N50        int     `json:"n50"`
}

// Lengths computes length statistics. An empty input gives the zero value.
func Lengths(lengths []int) LengthStats {
	if len(lengths) == 0 {
		return LengthStats{}
	}
	sorted := make([]int, len(lengths))
	copy(sorted, lengths)
	sort.Ints(sorted)

	total := 0
	for _, l := range sorted {
		total += l
	}
	count := len(sorted)
	mid := count / 2
	median := sorted[mid]
	if count%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	}

	return LengthStats{
		Count:      count,
		TotalBases: total,
		Min:        sorted[0],
		Max:        sorted[count-1],
		Mean:       float64(total) / float64(count),
		Median:     median,
		N50:        n50(sorted, total),
	}
}

// n50 is the length L such that sequences of length >= L hold at least half
// of all bases. sorted is ascending.
func n50(sorted []int, total int) int {
	running := 0
	for i := len(sorted) - 1; i >= 0; i-- {
		running += sorted[i]
		if 2*running >= total {
			return sorted[i]
		}
	}
	return 0
}

func (s LengthStats) String() string {
	return fmt.Sprintf("%d sequences, %d bases, length %d-%d, mean %.1f, median %d, N50 %d",
		s.Count, s.TotalBases, s.Min, s.Max, s.Mean, s.Median, s.N50)
}

// FragmentStats describes an input fragment set.
type FragmentStats struct {
	LengthStats
	MeanGCContent  float64      `json:"mean_gc"`
	TotalAmbiguous int          `json:"ambiguous_bases"`
	Words          *WordProfile `json:"words,omitempty"`
}

// WordProfile lists the most frequent words of size Word across a fragment
// set. Repeats and adapters show up here before they distort the overlap
// distances.
type WordProfile struct {
	Word   int              `json:"word"`
	Unique int              `json:"unique"`
	Total  int              `json:"total"`
	Top    []kmer.WordCount `json:"top"`
}

// Words counts every word of size k in the store and keeps the n most
// frequent.
func Words(store *sequence.Store, k, n int) (*WordProfile, error) {
	counter, err := kmer.NewCounter(k)
	if err != nil {
		return nil, err
	}
	for _, seq := range store.All() {
		counter.CountWords(seq.Bases)
	}
	return &WordProfile{
		Word:   k,
		Unique: counter.UniqueCount(),
		Total:  counter.Total,
		Top:    counter.MostFrequent(n),
	}, nil
}

func (p *WordProfile) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d-mers: %d distinct of %d", p.Word, p.Unique, p.Total)
	for _, wc := range p.Top {
		fmt.Fprintf(&sb, "\n  %s\t%d", wc.Word, wc.Count)
	}
	return sb.String()
}

// FromStore summarises the fragments of a store.
func FromStore(store *sequence.Store) (*FragmentStats, error) {
	if store.Len() == 0 {
		return nil, fmt.Errorf("fragment set cannot be empty")
	}
	fs := &FragmentStats{LengthStats: Lengths(store.Lengths())}
	gc := 0.0
	for _, seq := range store.All() {
		gc += seq.GCContent()
		fs.TotalAmbiguous += seq.CountAmbiguous()
	}
	fs.MeanGCContent = gc / float64(store.Len())
	return fs, nil
}

func (s *FragmentStats) String() string {
	return fmt.Sprintf("%s, mean GC %.1f%%, %d ambiguous bases",
		s.LengthStats, s.MeanGCContent*100, s.TotalAmbiguous)
}

// Summary describes an assembly result.
type Summary struct {
	Fragments  int         `json:"fragments"`
	Contigs    int         `json:"contigs"`
	Variants   int         `json:"variants"`
	Consensus  LengthStats `json:"consensus"`
	Used       int         `json:"used_fragments"`
	Singletons int         `json:"singletons"`
	Included   int         `json:"included"`
	Branches   int         `json:"branches"`
}

// Summarize computes the summary of res over a run of n fragments. Every
// variant counts as a consensus sequence; a fragment in several contigs is
// used once.
func Summarize(n int, res *assembly.Result) Summary {
	var lengths []int
	used := make(map[int]struct{})
	for _, c := range res.Contigs {
		for _, s := range c.Sequences() {
			lengths = append(lengths, len(s))
		}
		for _, m := range c.Members {
			used[m] = struct{}{}
		}
	}
	return Summary{
		Fragments:  n,
		Contigs:    len(res.Contigs),
		Variants:   len(lengths) - len(res.Contigs),
		Consensus:  Lengths(lengths),
		Used:       len(used),
		Singletons: len(res.Singletons),
		Included:   len(res.Inclusions),
		Branches:   len(res.Branches()),
	}
}

// UsedRatio is the fraction of fragments that ended up in a contig.
func (s Summary) UsedRatio() float64 {
	if s.Fragments == 0 {
		return 0
	}
	return float64(s.Used) / float64(s.Fragments)
}

func (s Summary) String() string {
	return fmt.Sprintf(`Assembly {
  fragments: %d
  contigs: %d (+%d variants)
  consensus: %s
  used fragments: %d (%.1f%%)
  singletons: %d
  included: %d
  branches: %d
}`, s.Fragments, s.Contigs, s.Variants, s.Consensus, s.Used, s.UsedRatio()*100,
		s.Singletons, s.Included, s.Branches)
}
