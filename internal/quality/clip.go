package quality

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/aria-lang/estflow-go/internal/sequence"
)

// Clipper trims low-quality ends off reads. An end is cut back until a
// window of Window bases averages at least Threshold.
type Clipper struct {
	Threshold int
	Window    int
	// reads shorter than this after clipping are dropped
	MinLength int
}

// NewClipper creates a clipper with a four-base window.
func NewClipper(threshold, minLength int) *Clipper {
	return &Clipper{Threshold: threshold, Window: 4, MinLength: minLength}
}

// Bounds returns the half-open range of bases kept. A read with no good
// window is clipped to nothing.
func (c *Clipper) Bounds(s *Scores) (int, int) {
	n := s.Len()
	if n == 0 {
		return 0, 0
	}
	if c.Threshold <= 0 {
		return 0, n
	}
	w := max(1, min(c.Window, n))
	need := c.Threshold * w

	sum := 0
	for i := 0; i < w; i++ {
		sum += s.Values[i]
	}
	start := -1
	for i := 0; ; i++ {
		if sum >= need {
			start = i
			break
		}
		if i+w >= n {
			break
		}
		sum += s.Values[i+w] - s.Values[i]
	}
	if start < 0 {
		return 0, 0
	}

	sum = 0
	for i := n - w; i < n; i++ {
		sum += s.Values[i]
	}
	end := n
	for j := n; j-w > start; j-- {
		if sum >= need {
			end = j
			break
		}
		sum += s.Values[j-w-1] - s.Values[j-1]
		end = j - 1
	}
	return start, end
}

// Clip returns the clipped read, or nil when what remains is shorter than
// MinLength.
func (c *Clipper) Clip(seq *sequence.Sequence, s *Scores) (*sequence.Sequence, error) {
	if seq.Len() != s.Len() {
		return nil, &LengthMismatchError{Bases: seq.Len(), Scores: s.Len()}
	}
	start, end := c.Bounds(s)
	if end-start == 0 || end-start < c.MinLength {
		return nil, nil
	}
	clipped := *seq
	clipped.Index = -1
	clipped.Bases = seq.Bases[start:end]
	return &clipped, nil
}

// Summary counts the outcome of clipping a batch.
type Summary struct {
	Reads        int
	Kept         int
	ClippedBases int
}

// Dropped returns the number of reads removed.
func (s Summary) Dropped() int {
	return s.Reads - s.Kept
}

func (s Summary) String() string {
	return fmt.Sprintf("%d reads, %d kept, %d dropped, %d bases clipped",
		s.Reads, s.Kept, s.Dropped(), s.ClippedBases)
}

// ClipAll clips every read and drops those that end up too short.
func (c *Clipper) ClipAll(seqs []*sequence.Sequence, scores []*Scores) ([]*sequence.Sequence, Summary, error) {
	if len(seqs) != len(scores) {
		return nil, Summary{}, fmt.Errorf("%d reads but %d quality strings", len(seqs), len(scores))
	}
	sum := Summary{Reads: len(seqs)}
	out := make([]*sequence.Sequence, 0, len(seqs))
	for i, seq := range seqs {
		clipped, err := c.Clip(seq, scores[i])
		if err != nil {
			return nil, sum, fmt.Errorf("read %s: %w", seq.Name(), err)
		}
		if clipped == nil {
			sum.ClippedBases += seq.Len()
			log.Debugf("dropping read %s after clipping", seq.Name())
			continue
		}
		sum.ClippedBases += seq.Len() - clipped.Len()
		sum.Kept++
		out = append(out, clipped)
	}
	return out, sum, nil
}
