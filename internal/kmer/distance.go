package kmer

import (
	"fmt"
	"math"
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"
)

// NoOverlap is the distance reported when two fragments do not form an edge.
// Callers must treat it as authoritative even when a length is also reported.
const NoOverlap = math.MaxInt

// Containment records which fragment, if any, lies entirely inside the other.
type Containment int

const (
	NotContained Containment = iota
	// FirstInSecond means the first argument lies inside the second.
	FirstInSecond
	// SecondInFirst means the second argument lies inside the first.
	SecondInFirst
)

func (c Containment) String() string {
	switch c {
	case FirstInSecond:
		return "first-in-second"
	case SecondInFirst:
		return "second-in-first"
	default:
		return "none"
	}
}

// Params tunes the overlap engine.
type Params struct {
	// Window is the number of bases compared at each fragment end.
	Window int `json:"window"`
	// Word is the k-mer size used for window histograms.
	Word int `json:"word"`
	// Threshold is the largest window distance still accepted as an overlap.
	Threshold int `json:"threshold"`
	// InclusionThreshold is the largest window distance at which a fragment
	// covering the whole shorter one is reported as contained.
	InclusionThreshold int `json:"inclusion_threshold"`
	// MaxMismatchRate bounds the base mismatches across the implied overlap.
	MaxMismatchRate float64 `json:"max_mismatch_rate"`
}

// DefaultParams returns the settings used for Sanger-length ESTs.
func DefaultParams() Params {
	return Params{
		Window:             50,
		Word:               6,
		Threshold:          40,
		InclusionThreshold: 0,
		MaxMismatchRate:    0.05,
	}
}

// Validate checks the parameters for internal consistency.
func (p Params) Validate() error {
	if p.Word <= 0 || p.Word > MaxWordSize {
		return fmt.Errorf("word size must be in [1, %d], got %d", MaxWordSize, p.Word)
	}
	if p.Window < p.Word {
		return fmt.Errorf("window size %d is smaller than word size %d", p.Window, p.Word)
	}
	if p.Threshold < 0 || p.InclusionThreshold < 0 {
		return fmt.Errorf("thresholds must be non-negative")
	}
	if p.MaxMismatchRate < 0 || p.MaxMismatchRate > 1 {
		return fmt.Errorf("mismatch rate must be in [0, 1], got %g", p.MaxMismatchRate)
	}
	return nil
}

// Result is the outcome of comparing two fragments. A negative Length means
// the second fragment lies to the LEFT of the first.
type Result struct {
	Length         int         `json:"length"`
	Distance       int         `json:"distance"`
	WindowDistance int         `json:"window_distance"`
	Containment    Containment `json:"containment"`
}

// HasOverlap reports whether the result is a usable overlap edge.
func (r Result) HasOverlap() bool {
	return r.Distance != NoOverlap
}

func (r Result) flip() Result {
	r.Length = -r.Length
	switch r.Containment {
	case FirstInSecond:
		r.Containment = SecondInFirst
	case SecondInFirst:
		r.Containment = FirstInSecond
	}
	return r
}

func (r Result) String() string {
	if !r.HasOverlap() {
		return fmt.Sprintf("Result { no overlap, containment: %s }", r.Containment)
	}
	return fmt.Sprintf("Result { length: %d, distance: %d }", r.Length, r.Distance)
}

// Scan holds the best window distances of the two end windows of a fragment
// against every window of another fragment, with all tied positions.
type Scan struct {
	LeftDistance   int
	LeftPositions  []int
	RightDistance  int
	RightPositions []int
}

// tables are the three histograms reused while sliding.
type tables struct {
	left, right, slide []int32
}

// Engine computes windowed D2 distances and overlaps. It is safe for
// concurrent use; histogram tables are pooled.
type Engine struct {
	params Params
	pool   sync.Pool
}

// NewEngine validates params and creates an engine.
func NewEngine(params Params) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	size := 1 << (2 * uint(params.Word))
	e := &Engine{params: params}
	e.pool.New = func() interface{} {
		return &tables{
			left:  make([]int32, size),
			right: make([]int32, size),
			slide: make([]int32, size),
		}
	}
	return e, nil
}

// Params returns the engine settings.
func (e *Engine) Params() Params {
	return e.params
}

// Scan fixes the first and last Window bases of s1 and slides a window over
// s2, keeping the running squared distance up to date with single-cell
// histogram changes. Both inputs must be at least Window long.
func (e *Engine) Scan(s1, s2 string) Scan {
	W, k := e.params.Window, e.params.Word
	if len(s1) < W || len(s2) < W {
		log.Panicf("fragments of length %d and %d are shorter than window %d", len(s1), len(s2), W)
	}
	t := e.pool.Get().(*tables)
	defer e.pool.Put(t)

	w1, w2 := Words(s1, k), Words(s2, k)
	per := W - k + 1
	rs := len(s1) - W

	var dl, dr int
	for _, w := range w1[:per] {
		if w >= 0 {
			dl += 2*int(t.left[w]) + 1
			t.left[w]++
		}
	}
	for _, w := range w1[rs : rs+per] {
		if w >= 0 {
			dr += 2*int(t.right[w]) + 1
			t.right[w]++
		}
	}

	// (d-δ)² - d² = 1 - 2δd for δ = ±1
	update := func(w int32, delta int32) {
		if w < 0 {
			return
		}
		dl += 1 - 2*int(delta)*int(t.left[w]-t.slide[w])
		dr += 1 - 2*int(delta)*int(t.right[w]-t.slide[w])
		t.slide[w] += delta
	}
	for _, w := range w2[:per] {
		update(w, 1)
	}

	scan := Scan{
		LeftDistance:   dl,
		LeftPositions:  []int{0},
		RightDistance:  dr,
		RightPositions: []int{0},
	}
	last := len(s2) - W
	for j := 1; j <= last; j++ {
		update(w2[j-1], -1)
		update(w2[j+per-1], 1)
		switch {
		case dl < scan.LeftDistance:
			scan.LeftDistance, scan.LeftPositions = dl, append(scan.LeftPositions[:0], j)
		case dl == scan.LeftDistance:
			scan.LeftPositions = append(scan.LeftPositions, j)
		}
		switch {
		case dr < scan.RightDistance:
			scan.RightDistance, scan.RightPositions = dr, append(scan.RightPositions[:0], j)
		case dr == scan.RightDistance:
			scan.RightPositions = append(scan.RightPositions, j)
		}
	}

	for _, w := range w1[:per] {
		if w >= 0 {
			t.left[w] = 0
		}
	}
	for _, w := range w1[rs : rs+per] {
		if w >= 0 {
			t.right[w] = 0
		}
	}
	for _, w := range w2[last : last+per] {
		if w >= 0 {
			t.slide[w] = 0
		}
	}
	return scan
}

// Distance returns the smallest end-window distance between two fragments.
// The end windows are taken from the shorter fragment.
func (e *Engine) Distance(s1, s2 string) int {
	if len(s1) > len(s2) {
		s1, s2 = s2, s1
	}
	scan := e.Scan(s1, s2)
	if scan.LeftDistance < scan.RightDistance {
		return scan.LeftDistance
	}
	return scan.RightDistance
}

// Overlap determines the signed overlap of s2 relative to s1. A positive
// length places s2 to the right of s1, a negative one to its left. A
// fragment covering the whole of the other is an inclusion and is never an
// overlap edge.
func (e *Engine) Overlap(s1, s2 string) Result {
	if len(s1) > len(s2) {
		return e.overlap(s2, s1).flip()
	}
	return e.overlap(s1, s2)
}

type candidate struct {
	length     int // signed, relative to the shorter fragment
	span       int
	distance   int
	mismatches int
	contained  bool
	position   int
}

// overlap requires len(s1) <= len(s2).
func (e *Engine) overlap(s1, s2 string) Result {
	scan := e.Scan(s1, s2)
	W := e.params.Window
	n1, n2 := len(s1), len(s2)

	var cands []candidate
	if scan.LeftDistance <= e.params.Threshold {
		for _, j := range scan.LeftPositions {
			// s1 starts at offset j of s2
			ov := n2 - j
			c := candidate{length: -ov, distance: scan.LeftDistance, position: j}
			if ov >= n1 {
				c.contained, c.span = true, n1
				c.mismatches = mismatches(s1, s2[j:j+n1])
			} else {
				c.span = ov
				c.mismatches = mismatches(s1[:ov], s2[j:])
			}
			cands = append(cands, c)
		}
	}
	if scan.RightDistance <= e.params.Threshold {
		for _, j := range scan.RightPositions {
			// s1 ends at offset j+W of s2
			ov := j + W
			c := candidate{length: ov, distance: scan.RightDistance, position: j}
			if ov >= n1 {
				off := ov - n1
				c.contained, c.span = true, n1
				c.mismatches = mismatches(s1, s2[off:off+n1])
			} else {
				c.span = ov
				c.mismatches = mismatches(s1[n1-ov:], s2[:ov])
			}
			cands = append(cands, c)
		}
	}

	best := scan.LeftDistance
	if scan.RightDistance < best {
		best = scan.RightDistance
	}
	none := Result{Distance: NoOverlap, WindowDistance: best}

	sort.SliceStable(cands, func(a, b int) bool {
		ca, cb := cands[a], cands[b]
		if ca.distance != cb.distance {
			return ca.distance < cb.distance
		}
		if ca.mismatches != cb.mismatches {
			return ca.mismatches < cb.mismatches
		}
		return abs(ca.length) > abs(cb.length)
	})
	for _, c := range cands {
		if float64(c.mismatches) > e.params.MaxMismatchRate*float64(c.span) {
			continue
		}
		if c.contained {
			r := Result{Length: c.length, Distance: NoOverlap, WindowDistance: c.distance}
			if c.distance <= e.params.InclusionThreshold {
				r.Containment = FirstInSecond
			}
			return r
		}
		return Result{Length: c.length, Distance: c.distance, WindowDistance: c.distance}
	}
	return none
}

// mismatches counts differing positions of two equal-length strings; N
// matches anything.
func mismatches(a, b string) int {
	n := 0
	for i := 0; i < len(a); i++ {
		if a[i] != b[i] && a[i] != 'N' && b[i] != 'N' {
			n++
		}
	}
	return n
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
