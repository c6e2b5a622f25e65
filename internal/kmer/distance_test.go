package kmer

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t testing.TB, window, word int) *Engine {
	t.Helper()
	e, err := NewEngine(Params{Window: window, Word: word, Threshold: 0, MaxMismatchRate: 0.05})
	require.NoError(t, err)
	return e
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		wantErr bool
	}{
		{"defaults", DefaultParams(), false},
		{"window below word", Params{Window: 3, Word: 4}, true},
		{"word too large", Params{Window: 40, Word: 13}, true},
		{"negative threshold", Params{Window: 10, Word: 3, Threshold: -1}, true},
		{"mismatch rate above one", Params{Window: 10, Word: 3, MaxMismatchRate: 1.5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEngine(tt.params)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestScanMatchesBruteForce(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	e := newTestEngine(t, 12, 3)

	for trial := 0; trial < 20; trial++ {
		s1 := randomDNA(r, 30+r.Intn(20))
		s2 := randomDNA(r, 40+r.Intn(30))
		if trial%4 == 0 {
			// sprinkle ambiguous bases
			b := []byte(s2)
			b[r.Intn(len(b))] = 'N'
			s2 = string(b)
		}

		scan := e.Scan(s1, s2)

		left, right := s1[:12], s1[len(s1)-12:]
		bestL, bestR := -1, -1
		var posL, posR []int
		for j := 0; j+12 <= len(s2); j++ {
			dl, err := WindowDistance(left, s2[j:j+12], 3)
			require.NoError(t, err)
			dr, err := WindowDistance(right, s2[j:j+12], 3)
			require.NoError(t, err)
			if bestL < 0 || dl < bestL {
				bestL, posL = dl, []int{j}
			} else if dl == bestL {
				posL = append(posL, j)
			}
			if bestR < 0 || dr < bestR {
				bestR, posR = dr, []int{j}
			} else if dr == bestR {
				posR = append(posR, j)
			}
		}

		assert.Equal(t, bestL, scan.LeftDistance, "trial %d", trial)
		assert.Equal(t, posL, scan.LeftPositions, "trial %d", trial)
		assert.Equal(t, bestR, scan.RightDistance, "trial %d", trial)
		assert.Equal(t, posR, scan.RightPositions, "trial %d", trial)
	}
}

func TestScanReusesCleanTables(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	e := newTestEngine(t, 10, 2)
	s1, s2 := randomDNA(r, 40), randomDNA(r, 50)

	first := e.Scan(s1, s2)
	e.Scan(randomDNA(r, 30), randomDNA(r, 30))
	assert.Equal(t, first, e.Scan(s1, s2))
}

func TestSelfOverlap(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	e := newTestEngine(t, 20, 4)
	f := randomDNA(r, 120)

	scan := e.Scan(f, f)
	assert.Equal(t, 0, scan.LeftDistance)
	assert.Equal(t, []int{0}, scan.LeftPositions)

	res := e.Overlap(f, f)
	assert.Equal(t, len(f), abs(res.Length))
	assert.Equal(t, 0, res.WindowDistance)
	assert.Equal(t, FirstInSecond, res.Containment)
	assert.False(t, res.HasOverlap())
}

func TestSuffixPrefixOverlap(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	e := newTestEngine(t, 20, 4)

	x, y, z := randomDNA(r, 60), randomDNA(r, 45), randomDNA(r, 60)

	t.Run("second to the right", func(t *testing.T) {
		res := e.Overlap(x+y, y+z)
		require.True(t, res.HasOverlap())
		assert.Equal(t, len(y), res.Length)
		assert.Equal(t, 0, res.Distance)
		assert.Equal(t, NotContained, res.Containment)
	})

	t.Run("second to the left", func(t *testing.T) {
		res := e.Overlap(y+z, x+y)
		require.True(t, res.HasOverlap())
		assert.Equal(t, -len(y), res.Length)
	})

	t.Run("longer first fragment", func(t *testing.T) {
		res := e.Overlap(x+x+y, y+z)
		require.True(t, res.HasOverlap())
		assert.Equal(t, len(y), res.Length)

		res = e.Overlap(y+z, x+x+y)
		require.True(t, res.HasOverlap())
		assert.Equal(t, -len(y), res.Length)
	})
}

func TestNoOverlap(t *testing.T) {
	r := rand.New(rand.NewSource(9))
	e := newTestEngine(t, 20, 4)

	res := e.Overlap(randomDNA(r, 80), randomDNA(r, 90))
	assert.False(t, res.HasOverlap())
	assert.Equal(t, NoOverlap, res.Distance)
	assert.Equal(t, NotContained, res.Containment)
}

func TestContainment(t *testing.T) {
	r := rand.New(rand.NewSource(13))
	e := newTestEngine(t, 20, 4)

	long := randomDNA(r, 150)
	short := long[30:90]

	res := e.Overlap(short, long)
	assert.False(t, res.HasOverlap())
	assert.Equal(t, FirstInSecond, res.Containment)

	res = e.Overlap(long, short)
	assert.False(t, res.HasOverlap())
	assert.Equal(t, SecondInFirst, res.Containment)
}

func TestTiedWindowsPreferExactOverlap(t *testing.T) {
	e, err := NewEngine(Params{Window: 2, Word: 2})
	require.NoError(t, err)

	tests := []struct {
		name   string
		s1, s2 string
		want   int
		ok     bool
	}{
		{"right neighbour", "ACGTACGT", "GTTTGGCC", 2, true},
		{"repeated window resolves by mismatches", "GTTTGGCC", "ACGTACGT", -2, true},
		{"shorter right neighbour", "GTTTGGCC", "TGGCCAA", 5, true},
		{"shorter left neighbour", "TGGCCAA", "GTTTGGCC", -5, true},
		{"unrelated", "ACGTACGT", "TGGCCAA", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.Overlap(tt.s1, tt.s2)
			assert.Equal(t, tt.ok, res.HasOverlap())
			if tt.ok {
				assert.Equal(t, tt.want, res.Length)
				assert.Equal(t, 0, res.Distance)
			}
		})
	}
}

func TestDistance(t *testing.T) {
	e, err := NewEngine(Params{Window: 2, Word: 2})
	require.NoError(t, err)

	assert.Equal(t, 0, e.Distance("ACGTACGT", "GTTTGGCC"))
	assert.Equal(t, 2, e.Distance("ACGTACGT", "TGGCCAA"))
	assert.Equal(t, e.Distance("TGGCCAA", "ACGTACGT"), e.Distance("ACGTACGT", "TGGCCAA"))
}

func TestScanPanicsOnShortInput(t *testing.T) {
	e := newTestEngine(t, 20, 4)
	assert.Panics(t, func() { e.Scan("ACGT", "ACGTACGTACGTACGTACGTACGT") })
}

func BenchmarkOverlap(b *testing.B) {
	r := rand.New(rand.NewSource(1))
	e := newTestEngine(b, 50, 6)
	x, y, z := randomDNA(r, 300), randomDNA(r, 150), randomDNA(r, 300)
	s1, s2 := x+y, y+z
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Overlap(s1, s2)
	}
}
