package consensus

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria-lang/estflow-go/internal/alignment"
	"github.com/aria-lang/estflow-go/internal/inclusion"
	"github.com/aria-lang/estflow-go/internal/kmer"
	"github.com/aria-lang/estflow-go/internal/layout"
	"github.com/aria-lang/estflow-go/internal/sequence"
)

func randomDNA(r *rand.Rand, n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteByte("ACGT"[r.Intn(4)])
	}
	return sb.String()
}

func placement(root int, coords map[int]int, members ...int) layout.Placement {
	return layout.Placement{Root: root, Coords: coords, Members: members}
}

func newReconstructor(t *testing.T, frags []string, tracker *inclusion.Tracker, params Params) *Reconstructor {
	t.Helper()
	store, err := sequence.FromStrings(frags)
	require.NoError(t, err)
	engine, err := kmer.NewEngine(kmer.Params{Window: 8, Word: 3})
	require.NoError(t, err)
	r, err := New(store, engine, nil, tracker, params)
	require.NoError(t, err)
	return r
}

func sequential() Params {
	p := DefaultParams()
	p.Parallel = false
	return p
}

func TestColumnMajority(t *testing.T) {
	tests := []struct {
		name  string
		votes string
		want  byte
		ok    bool
	}{
		{"empty", "", 0, false},
		{"single", "T", 'T', true},
		{"clear winner", "CCCA", 'C', true},
		{"A beats G on tie", "GA", 'A', true},
		{"G beats C on tie", "CG", 'G', true},
		{"T beats gap on tie", "-T", 'T', true},
		{"gap beats N on tie", "N-", '-', true},
		{"gap majority", "--A", '-', true},
		{"unknown counts as N", "XX", 'N', true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c column
			for i := 0; i < len(tt.votes); i++ {
				c[symbolIndex[tt.votes[i]]]++
			}
			got, ok := c.majority()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPileupGrowsBothWays(t *testing.T) {
	var p pileup
	p.place("ACGT", 10)
	p.place("TT", 6)
	p.vote(15, 'G')

	assert.Equal(t, 6, p.origin)
	assert.Equal(t, 16, p.end())
	assert.Equal(t, "TTACGTG", p.consensus())

	ref, coords := p.region(5, 12)
	assert.Equal(t, "TTAC", ref)
	assert.Equal(t, []int{6, 7, 10, 11}, coords)
}

func TestReconstructConcreteScenario(t *testing.T) {
	r := newReconstructor(t, []string{"ACGTACGT", "GTTTGGCC", "TGGCCAA"}, nil, sequential())

	c, err := r.ReconstructRoot(placement(0, map[int]int{0: 0, 1: 6, 2: 9}, 0, 1, 2))
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "ACGTACGTTTGGCCAA", c.Sequence)
	assert.Equal(t, []int{0, 1, 2}, c.Members)
	assert.Equal(t, 8, c.SeedLength)
	assert.False(t, c.Breakpoint.Found())
	assert.Equal(t, []string{"ACGTACGTTTGGCCAA"}, c.Sequences())
}

func TestReconstructSingleFragmentIsSingleton(t *testing.T) {
	r := newReconstructor(t, []string{"ACGTACGTAC", "TTTTGGGGCCCC"}, nil, sequential())

	res, err := r.Reconstruct([]layout.Placement{placement(0, map[int]int{0: 0}, 0)})
	require.NoError(t, err)
	assert.Empty(t, res.Contigs)
	assert.Equal(t, []int{0, 1}, res.Singletons)
	assert.Equal(t, 0, res.Used())
}

func TestReconstructReinsertsInclusions(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	p := randomDNA(rng, 60)
	tail := randomDNA(rng, 40)
	frags := []string{p, p[10:40], p[40:] + tail}
	tracker := inclusion.NewTracker(3)
	require.True(t, tracker.Add(1, 0))

	r := newReconstructor(t, frags, tracker, sequential())
	res, err := r.Reconstruct([]layout.Placement{placement(0, map[int]int{0: 0, 2: 40}, 0, 2)})
	require.NoError(t, err)

	require.Len(t, res.Contigs, 1)
	assert.Equal(t, p+tail, res.Contigs[0].Sequence)
	assert.Equal(t, []int{0, 1, 2}, res.Contigs[0].Members)
	assert.Empty(t, res.Singletons)
}

func TestReconstructDetectsTypeIBranch(t *testing.T) {
	rng := rand.New(rand.NewSource(41))
	s, c, d := randomDNA(rng, 120), randomDNA(rng, 100), randomDNA(rng, 100)
	frags := []string{
		s[0:60],
		s[40:100],
		s[80:120] + c[:20],
		s[80:120] + d[:20],
		c[0:60],
		c[40:100],
		d[0:60],
		d[40:100],
	}
	coords := map[int]int{0: 0, 1: 40, 2: 80, 3: 80, 4: 120, 5: 160, 6: 120, 7: 160}
	params := sequential()
	params.Mode = TypeI
	params.Window = 40

	r := newReconstructor(t, frags, nil, params)
	contig, err := r.ReconstructRoot(placement(0, coords, 0, 1, 2, 3, 4, 5, 6, 7))
	require.NoError(t, err)
	require.NotNil(t, contig)

	assert.Equal(t, Breakpoint{Start: 80, End: 120}, contig.Breakpoint)
	require.Len(t, contig.Variants, 2)
	assert.Equal(t, s+c, contig.Variants[0])
	assert.Equal(t, s+d, contig.Variants[1])
	assert.Equal(t, contig.Variants[0], contig.Sequence)
	assert.Equal(t, contig.Variants[0][:120], contig.Variants[1][:120])

	require.Len(t, contig.Branches, 2)
	assert.Equal(t, []int{2, 4, 5}, contig.Branches[0].Members)
	assert.Equal(t, []int{3, 6, 7}, contig.Branches[1].Members)
	assert.Equal(t, s[80:]+c, contig.Branches[0].Sequence)
	assert.Equal(t, s[80:]+d, contig.Branches[1].Sequence)

	t.Run("disabled", func(t *testing.T) {
		r := newReconstructor(t, frags, nil, sequential())
		contig, err := r.ReconstructRoot(placement(0, coords, 0, 1, 2, 3, 4, 5, 6, 7))
		require.NoError(t, err)
		assert.False(t, contig.Breakpoint.Found())
		assert.Empty(t, contig.Variants)
		assert.Empty(t, contig.Branches)
		assert.Len(t, contig.Members, 8)
	})
}

func TestDetectTypeII(t *testing.T) {
	coords := []int{0, 200, 400, 410, 420, 430, 600}
	ms := make([]member, len(coords))
	for i, c := range coords {
		ms[i] = member{index: i, coord: c}
	}

	tests := []struct {
		name        string
		consecutive bool
		want        Breakpoint
	}{
		{"single dense window", false, Breakpoint{Start: 300, End: 450}},
		{"needs two windows", true, NoBreakpoint},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Reconstructor{params: Params{Mode: TypeII, Window: 150, TypeIIFactor: 1.5, Consecutive: tt.consecutive}}
			assert.Equal(t, tt.want, r.detect(ms))
		})
	}
}

func TestReconstructSeparatesRootsWithUnrelatedSeeds(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	ref := randomDNA(rng, 120)
	frags := []string{ref[0:50], ref[30:80], ref[20:80], ref[60:120]}

	r := newReconstructor(t, frags, nil, sequential())
	res, err := r.Reconstruct([]layout.Placement{
		placement(0, map[int]int{0: 0, 1: 30}, 0, 1),
		placement(2, map[int]int{2: 0, 3: 40}, 2, 3),
	})
	require.NoError(t, err)

	require.Len(t, res.Contigs, 2)
	assert.Equal(t, ref[0:80], res.Contigs[0].Sequence)
	assert.Equal(t, ref[20:120], res.Contigs[1].Sequence)
}

// nestedRoots returns a root seeded by ref[0:60] using two fragments and a
// root seeded by ref[10:50], which lies inside the first seed, using three.
func nestedRoots(ref string) ([]string, []layout.Placement) {
	frags := []string{ref[0:60], ref[40:100], ref[10:50], ref[30:90], ref[70:120]}
	return frags, []layout.Placement{
		placement(0, map[int]int{0: 0, 1: 40}, 0, 1),
		placement(2, map[int]int{2: 0, 3: 20, 4: 60}, 2, 3, 4),
	}
}

func TestReconstructMergesRoots(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	ref := randomDNA(rng, 120)
	frags, placements := nestedRoots(ref)

	r := newReconstructor(t, frags, nil, sequential())
	res, err := r.Reconstruct(placements)
	require.NoError(t, err)

	require.Len(t, res.Contigs, 1)
	merged := res.Contigs[0]
	assert.Equal(t, ref, merged.Sequence)
	assert.Equal(t, 0, merged.Root, "longest seed wins")
	assert.Equal(t, 60, merged.SeedLength)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, merged.Members)
	assert.Empty(t, res.Singletons)
}

func TestReconstructMergeKeepsContigWithLongestSeedAndMostFragments(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	ref := randomDNA(rng, 120)
	frags := []string{ref[0:60], ref[40:100], ref[80:120], ref[20:50], ref[30:90]}

	r := newReconstructor(t, frags, nil, sequential())
	res, err := r.Reconstruct([]layout.Placement{
		placement(0, map[int]int{0: 0, 1: 40, 2: 80}, 0, 1, 2),
		placement(3, map[int]int{3: 0, 4: 10}, 3, 4),
	})
	require.NoError(t, err)

	require.Len(t, res.Contigs, 1)
	assert.Equal(t, ref, res.Contigs[0].Sequence)
	assert.Equal(t, 0, res.Contigs[0].Root)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, res.Contigs[0].Members)
}

// spliceRefusingAligner aligns pileup columns but reports no alignment for
// unhinted calls.
type spliceRefusingAligner struct {
	alignment.Aligner
}

func (a spliceRefusingAligner) Align(s1, s2 string, hint int) (*alignment.Alignment, error) {
	if hint == alignment.NoHint {
		return &alignment.Alignment{}, nil
	}
	return a.Aligner.Align(s1, s2, hint)
}

func TestReconstructKeepsGroupWhenContigsDoNotAlign(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	ref := randomDNA(rng, 120)
	frags, placements := nestedRoots(ref)

	store, err := sequence.FromStrings(frags)
	require.NoError(t, err)
	ls, err := alignment.NewLinearSpace(nil)
	require.NoError(t, err)
	r, err := New(store, nil, spliceRefusingAligner{ls}, nil, sequential())
	require.NoError(t, err)

	res, err := r.Reconstruct(placements)
	require.NoError(t, err)

	require.Len(t, res.Contigs, 2)
	assert.Equal(t, ref[0:100], res.Contigs[0].Sequence)
	assert.Equal(t, ref[10:120], res.Contigs[1].Sequence)
	assert.Equal(t, 5, res.Used())
}

func TestReconstructKeepsIndependentRoots(t *testing.T) {
	rng := rand.New(rand.NewSource(19))
	a, b := randomDNA(rng, 80), randomDNA(rng, 80)
	frags := []string{a[:50], a[30:], b[:50], b[30:]}

	params := sequential()
	params.Parallel = true
	r := newReconstructor(t, frags, nil, params)
	res, err := r.Reconstruct([]layout.Placement{
		placement(0, map[int]int{0: 0, 1: 30}, 0, 1),
		placement(2, map[int]int{2: 0, 3: 30}, 2, 3),
	})
	require.NoError(t, err)

	require.Len(t, res.Contigs, 2)
	assert.Equal(t, a, res.Contigs[0].Sequence)
	assert.Equal(t, b, res.Contigs[1].Sequence)
	assert.Equal(t, 4, res.Used())
}

type failingAligner struct{}

func (failingAligner) Align(string, string, int) (*alignment.Alignment, error) {
	return nil, errors.New("scoring rejected")
}

func TestReconstructPropagatesAlignmentFailure(t *testing.T) {
	store, err := sequence.FromStrings([]string{"ACGTACGT", "GTTTGGCC"})
	require.NoError(t, err)
	r, err := New(store, nil, failingAligner{}, nil, sequential())
	require.NoError(t, err)

	_, err = r.Reconstruct([]layout.Placement{placement(0, map[int]int{0: 0, 1: 6}, 0, 1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scoring rejected")
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"none": None, "Type-I": TypeI, "type2": TypeII, "": None} {
		got, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseMode("type-iii")
	assert.Error(t, err)

	var m Mode
	require.NoError(t, m.UnmarshalText([]byte("type-ii")))
	assert.Equal(t, TypeII, m)
}

func TestNewValidates(t *testing.T) {
	store, err := sequence.FromStrings([]string{"ACGT"})
	require.NoError(t, err)

	params := DefaultParams()
	params.Mode = TypeI
	_, err = New(store, nil, nil, nil, params)
	assert.Error(t, err)

	params.Mode = None
	params.Slack = -1
	_, err = New(store, nil, nil, nil, params)
	assert.Error(t, err)
}

func BenchmarkReconstructRoot(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	ref := randomDNA(rng, 2000)
	var frags []string
	coords := map[int]int{}
	var members []int
	for i, start := 0, 0; start+200 <= len(ref); i, start = i+1, start+100 {
		frags = append(frags, ref[start:start+200])
		coords[i] = start
		members = append(members, i)
	}
	store, _ := sequence.FromStrings(frags)
	r, _ := New(store, nil, nil, nil, Params{Slack: 50})
	p := placement(0, coords, members...)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = r.ReconstructRoot(p)
	}
}
