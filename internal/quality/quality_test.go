package quality

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria-lang/estflow-go/internal/sequence"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
		offset  int
		want    []int
		wantErr interface{}
	}{
		{name: "phred33", encoded: "!+5?I", offset: Phred33, want: []int{0, 10, 20, 30, 40}},
		{name: "phred64", encoded: "@JT^h", offset: Phred64, want: []int{0, 10, 20, 30, 40}},
		{name: "highest printable", encoded: "~", offset: Phred33, want: []int{PhredMax}},
		{name: "empty", encoded: "", offset: Phred33, wantErr: &EmptyScoresError{}},
		{name: "below offset", encoded: "II5 ", offset: Phred33, wantErr: &InvalidEncodingError{}},
		{name: "phred33 in phred64", encoded: "h5", offset: Phred64, wantErr: &InvalidEncodingError{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Decode(tt.encoded, tt.offset)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.IsType(t, tt.wantErr, err)
				var qe QualityError
				assert.True(t, errors.As(err, &qe))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Values)
			assert.Equal(t, tt.encoded, s.Encode(tt.offset))
		})
	}
}

func TestInvalidEncodingPosition(t *testing.T) {
	_, err := FromPhred64("hh5h")
	var ie *InvalidEncodingError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, 2, ie.Position)
	assert.Equal(t, byte('5'), ie.Char)
	assert.Contains(t, err.Error(), "Phred+64")
}

func TestSummaries(t *testing.T) {
	s := &Scores{Values: []int{10, 20, 30}}
	assert.InDelta(t, 20.0, s.Average(), 1e-9)
	assert.InDelta(t, 0.111, s.ExpectedErrors(), 1e-9)
	assert.InDelta(t, 0.001, ErrorProbability(30), 1e-12)
	assert.Equal(t, 0.0, (&Scores{}).Average())
}

func scores(t *testing.T, encoded string) *Scores {
	t.Helper()
	s, err := FromPhred33(encoded)
	require.NoError(t, err)
	return s
}

func TestBounds(t *testing.T) {
	tests := []struct {
		name       string
		encoded    string
		threshold  int
		start, end int
	}{
		{"all good", "IIIIIIIIII", 20, 0, 10},
		{"bad head", "!!!!IIIIII", 20, 2, 10},
		{"bad tail", "IIIIII!!!!", 20, 0, 8},
		{"both ends", "!!!IIIIII!!!", 20, 1, 11},
		{"nothing good", "!!!!!!!!", 20, 0, 0},
		{"disabled", "!!!!", 0, 0, 4},
		{"shorter than window", "II", 20, 0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClipper(tt.threshold, 0)
			start, end := c.Bounds(scores(t, tt.encoded))
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}

func TestClip(t *testing.T) {
	seq, err := sequence.WithID("AAAACCCCGGGG", "est1")
	require.NoError(t, err)
	c := NewClipper(20, 4)

	clipped, err := c.Clip(seq, scores(t, "!!!!!!IIIIII"))
	require.NoError(t, err)
	require.NotNil(t, clipped)
	assert.Equal(t, "CCCCGGGG", clipped.Bases)
	assert.Equal(t, "est1", clipped.ID)
	assert.Equal(t, "AAAACCCCGGGG", seq.Bases, "input is left untouched")

	c.MinLength = 9
	clipped, err = c.Clip(seq, scores(t, "!!!!!!IIIIII"))
	require.NoError(t, err)
	assert.Nil(t, clipped)

	_, err = c.Clip(seq, scores(t, "III"))
	var lm *LengthMismatchError
	assert.True(t, errors.As(err, &lm))
}

func TestClipAll(t *testing.T) {
	var seqs []*sequence.Sequence
	for _, b := range []string{"ACGTACGTAC", "ACGTACGTAC", "ACGTACGTAC"} {
		s, err := sequence.New(b)
		require.NoError(t, err)
		seqs = append(seqs, s)
	}
	qs := []*Scores{
		scores(t, "IIIIIIIIII"),
		scores(t, "!!!!!!!!!!"),
		scores(t, "IIIIII!!!!"),
	}

	kept, sum, err := NewClipper(20, 5).ClipAll(seqs, qs)
	require.NoError(t, err)
	require.Len(t, kept, 2)
	assert.Equal(t, "ACGTACGTAC", kept[0].Bases)
	assert.Equal(t, "ACGTACGT", kept[1].Bases)
	assert.Equal(t, Summary{Reads: 3, Kept: 2, ClippedBases: 12}, sum)
	assert.Equal(t, 1, sum.Dropped())
	assert.True(t, strings.HasPrefix(sum.String(), "3 reads, 2 kept"))

	_, _, err = NewClipper(20, 5).ClipAll(seqs, qs[:1])
	assert.Error(t, err)
}

func BenchmarkBounds(b *testing.B) {
	s, _ := FromPhred33(strings.Repeat("!!5?II", 100))
	c := NewClipper(25, 0)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Bounds(s)
	}
}
