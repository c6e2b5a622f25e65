package inclusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackerAdd(t *testing.T) {
	tr := NewTracker(6)

	assert.True(t, tr.Add(1, 0))
	assert.True(t, tr.Add(2, 0))
	assert.True(t, tr.Add(3, 1))

	assert.True(t, tr.IsIncluded(1))
	assert.True(t, tr.IsIncluded(3))
	assert.False(t, tr.IsIncluded(0))
	assert.False(t, tr.IsIncluded(5))

	assert.Equal(t, []int{1, 2}, tr.Children(0))
	assert.Equal(t, []int{1, 3, 2}, tr.Descendants(0))
	assert.Equal(t, 3, tr.Count())

	p, ok := tr.Parent(3)
	assert.True(t, ok)
	assert.Equal(t, 1, p)

	assert.Equal(t, []Edge{{1, 0}, {2, 0}, {3, 1}}, tr.Edges())
}

func TestTrackerRejectsBadEdges(t *testing.T) {
	tr := NewTracker(4)

	assert.False(t, tr.Add(2, 2), "self inclusion")

	assert.True(t, tr.Add(1, 0))
	assert.False(t, tr.Add(1, 2), "child already has a parent")
	assert.False(t, tr.Add(0, 1), "reverse of an existing edge")

	assert.True(t, tr.Add(2, 1))
	assert.False(t, tr.Add(0, 2), "reverse through a chain")
	assert.Equal(t, 2, tr.Count())
}

func TestContains(t *testing.T) {
	assert.True(t, Contains("GTTTGGCC", "TGGC"))
	assert.True(t, Contains("ACGT", "ACGT"))
	assert.False(t, Contains("TGGC", "GTTTGGCC"))
	assert.False(t, Contains("ACGTACGT", "ACGA"))
}

func TestAlignedContainment(t *testing.T) {
	pred := AlignedContainment(nil, 0.9)

	parent := "TTTTACGTACGTACGTACGTACGTAAAA"
	assert.True(t, pred(parent, "ACGTACGTACGTACGT"))
	assert.True(t, pred(parent, "ACGTACGTACCTACGTACGT"), "one substitution in twenty")
	assert.False(t, pred(parent, "GGGGGGGGGGGG"))
	assert.False(t, pred("ACGT", parent))
}
