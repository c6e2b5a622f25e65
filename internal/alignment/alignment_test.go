package alignment

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomDNA(r *rand.Rand, n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteByte("ACGT"[r.Intn(4)])
	}
	return sb.String()
}

func mutate(r *rand.Rand, s string, rate float64) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		switch x := r.Float64(); {
		case x < rate/3:
			// deletion
		case x < 2*rate/3:
			sb.WriteByte(s[i])
			sb.WriteByte("ACGT"[r.Intn(4)])
		case x < rate:
			sb.WriteByte("ACGT"[r.Intn(4)])
		default:
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

func TestScoringMatrix(t *testing.T) {
	t.Run("DefaultDNA", func(t *testing.T) {
		s := DefaultDNA()
		assert.Equal(t, 2, s.MatchScore)
		assert.Equal(t, -1, s.MismatchPenalty)
		assert.Equal(t, -2, s.GapPenalty())
		assert.NoError(t, s.Validate())
	})

	t.Run("Score", func(t *testing.T) {
		s := DefaultDNA()
		assert.Equal(t, 2, s.Score('A', 'A'))
		assert.Equal(t, -1, s.Score('A', 'T'))
	})

	t.Run("Invalid scoring matrix", func(t *testing.T) {
		_, err := NewScoringMatrix(0, -1, -2, -1)
		var scoringErr *ScoringError
		require.ErrorAs(t, err, &scoringErr)

		_, err = NewScoringMatrix(2, 1, -2, -1)
		require.Error(t, err)

		_, err = Simple(2, -1, 1)
		require.Error(t, err)
	})
}

func TestSmithWaterman(t *testing.T) {
	tests := []struct {
		name     string
		seq1     string
		seq2     string
		minScore int
	}{
		{"identical short", "ATGC", "ATGC", 8},
		{"one mismatch", "ATGC", "ATGA", 6},
		{"shared core", "TTTTACGTACGTTTTT", "GGACGTACGGG", 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := SmithWaterman(tt.seq1, tt.seq2, nil)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, a.Score, tt.minScore)
			assert.Equal(t, len(a.AlignedSeq1), len(a.AlignedSeq2))
		})
	}

	_, err := SmithWaterman("", "ACGT", nil)
	assert.Error(t, err)
}

func TestNeedlemanWunsch(t *testing.T) {
	a, err := NeedlemanWunsch("ACGTACGT", "ACGACGT", nil)
	require.NoError(t, err)
	assert.Equal(t, "ACGTACGT", strings.ReplaceAll(a.AlignedSeq1, "-", ""))
	assert.Equal(t, "ACGACGT", strings.ReplaceAll(a.AlignedSeq2, "-", ""))
	assert.Equal(t, 1, a.TotalGaps())
	assert.Equal(t, 12, a.Score)
}

func TestSemiGlobalAlignment(t *testing.T) {
	a, err := SemiGlobalAlignment("GGCC", "GTTTGGCCAA", nil)
	require.NoError(t, err)
	assert.Equal(t, "GGCC", a.AlignedSeq1)
	assert.Equal(t, "GGCC", a.AlignedSeq2)
	assert.Equal(t, 4, a.Start2)
	assert.Equal(t, 8, a.End2)
	assert.InDelta(t, 1.0, a.Identity, 1e-9)
}

func TestAlignmentCIGAR(t *testing.T) {
	a, err := NewAlignment("AC-TA", "ACGTT", 0, Global)
	require.NoError(t, err)
	assert.Equal(t, "2M1I1M1X", a.ToCIGAR())
	assert.Equal(t, 3, a.MatchCount())
	assert.Equal(t, 1, a.MismatchCount())
	assert.Contains(t, a.Format(), "CIGAR: 2M1I1M1X")

	_, err = NewAlignment("AC", "A", 0, Global)
	assert.Error(t, err)
}

func TestLocalLinearMatchesSmithWaterman(t *testing.T) {
	r := rand.New(rand.NewSource(21))
	scoring := DefaultDNA()

	for trial := 0; trial < 25; trial++ {
		core := randomDNA(r, 40+r.Intn(40))
		s1 := randomDNA(r, r.Intn(30)) + core + randomDNA(r, r.Intn(30))
		s2 := randomDNA(r, r.Intn(30)) + mutate(r, core, 0.1) + randomDNA(r, r.Intn(30))

		full, err := SmithWaterman(s1, s2, scoring)
		require.NoError(t, err)
		lin, err := LocalLinear(s1, s2, scoring, NoHint)
		require.NoError(t, err)

		assert.Equal(t, full.Score, lin.Score, "trial %d", trial)
		assert.Equal(t, s1[lin.Start1:lin.End1], strings.ReplaceAll(lin.AlignedSeq1, "-", ""))
		assert.Equal(t, s2[lin.Start2:lin.End2], strings.ReplaceAll(lin.AlignedSeq2, "-", ""))
		assert.Equal(t, lin.Score, rowScore(lin.AlignedSeq1, lin.AlignedSeq2, scoring))
	}
}

func TestLocalLinearHint(t *testing.T) {
	t.Run("hint picks the expected repeat copy", func(t *testing.T) {
		a, err := LocalLinear("GTACGT", "GTTTGGCC", nil, 4)
		require.NoError(t, err)
		assert.Equal(t, 4, a.Score)
		assert.Equal(t, 4, a.Start1)
		assert.Equal(t, 0, a.Start2)
		assert.Equal(t, "GT", a.AlignedSeq1)
		assert.Equal(t, "GT", a.AlignedSeq2)
	})

	t.Run("without hint the first copy wins", func(t *testing.T) {
		a, err := LocalLinear("GTACGT", "GTTTGGCC", nil, NoHint)
		require.NoError(t, err)
		assert.Equal(t, 0, a.Start1)
	})

	t.Run("nothing in common", func(t *testing.T) {
		a, err := LocalLinear("AAAA", "CCCC", nil, NoHint)
		require.NoError(t, err)
		assert.True(t, a.Empty())
		assert.Equal(t, 0, a.Score)
	})

	t.Run("invalid scoring fails", func(t *testing.T) {
		_, err := LocalLinear("ACGT", "ACGT", &ScoringMatrix{MatchScore: 0}, NoHint)
		assert.Error(t, err)
	})
}

func TestHirschbergMatchesGlobalScore(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	scoring := DefaultDNA()

	for trial := 0; trial < 25; trial++ {
		s1 := randomDNA(r, 1+r.Intn(60))
		s2 := mutate(r, s1, 0.2)
		if s2 == "" {
			s2 = "A"
		}

		want, err := GlobalAlignmentScoreOnly(s1, s2, scoring)
		require.NoError(t, err)
		got, err := Hirschberg(s1, s2, scoring)
		require.NoError(t, err)

		assert.Equal(t, want, got.Score, "trial %d", trial)
		assert.Equal(t, s1, strings.ReplaceAll(got.AlignedSeq1, "-", ""))
		assert.Equal(t, s2, strings.ReplaceAll(got.AlignedSeq2, "-", ""))
	}
}

func TestSplice(t *testing.T) {
	aligner, err := NewLinearSpace(nil)
	require.NoError(t, err)

	tests := []struct {
		name          string
		first, second string
		want          string
	}{
		{"second extends right", "AAAACCCCGGGG", "CCCCGGGGTTTT", "AAAACCCCGGGGTTTT"},
		{"second inside first", "TTTTACGTACGGAAAA", "ACGTACGG", "TTTTACGTACGG"},
		{"second starts first", "CCCCGGGGTTTT", "AAAACCCCGGGG", "AAAACCCCGGGG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Splice(tt.first, tt.second, aligner)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err = Splice("AAAA", "CCCC", aligner)
	assert.ErrorIs(t, err, ErrNoAlignment)
}

func TestAlignmentScoreOnly(t *testing.T) {
	score, err := AlignmentScoreOnly("TTTTACGTACGTTTTT", "GGACGTACGGG", nil)
	require.NoError(t, err)

	full, err := SmithWaterman("TTTTACGTACGTTTTT", "GGACGTACGGG", nil)
	require.NoError(t, err)
	assert.Equal(t, full.Score, score)
}

func BenchmarkSmithWaterman(b *testing.B) {
	r := rand.New(rand.NewSource(1))
	s1, s2 := randomDNA(r, 400), randomDNA(r, 400)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = SmithWaterman(s1, s2, nil)
	}
}

func BenchmarkLocalLinear(b *testing.B) {
	r := rand.New(rand.NewSource(1))
	core := randomDNA(r, 300)
	s1, s2 := randomDNA(r, 200)+core, core+randomDNA(r, 200)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = LocalLinear(s1, s2, nil, NoHint)
	}
}
