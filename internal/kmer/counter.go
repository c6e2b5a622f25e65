// Package kmer computes windowed D2 distances between EST fragments.
//
// Words of length k over {A,C,G,T} are packed two bits per base. A window of
// W bases is summarised by its word histogram, and the D2 distance between
// two windows is the squared Euclidean distance of their histograms.
package kmer

import (
	"fmt"
	"sort"
	"strings"
)

// MaxWordSize bounds k so that a histogram table stays below 64 MiB.
const MaxWordSize = 12

// code maps a base to its 2-bit value; -1 breaks the current word.
var code = [256]int8{}

func init() {
	for i := range code {
		code[i] = -1
	}
	code['A'], code['C'], code['G'], code['T'] = 0, 1, 2, 3
	code['a'], code['c'], code['g'], code['t'] = 0, 1, 2, 3
}

// Words encodes every k-mer of s. Entry i holds the code of s[i:i+k], or -1
// when that word contains a base outside {A,C,G,T}.
func Words(s string, k int) []int32 {
	if k <= 0 || len(s) < k {
		return nil
	}
	mask := int32(1)<<(2*uint(k)) - 1
	words := make([]int32, len(s)-k+1)
	var word int32
	run := 0
	for i := 0; i < len(s); i++ {
		c := code[s[i]]
		if c < 0 {
			run = 0
			word = 0
		} else {
			word = ((word << 2) | int32(c)) & mask
			run++
		}
		if i >= k-1 {
			if run >= k {
				words[i-k+1] = word
			} else {
				words[i-k+1] = -1
			}
		}
	}
	return words
}

// Decode turns a word code back into its bases.
func Decode(word int32, k int) string {
	var sb strings.Builder
	sb.Grow(k)
	for i := k - 1; i >= 0; i-- {
		sb.WriteByte("ACGT"[(word>>(2*uint(i)))&3])
	}
	return sb.String()
}

// Counter is a word histogram over all 4^k word codes.
type Counter struct {
	K      int
	Counts []int32
	Total  int
}

// NewCounter creates an empty histogram for words of size k.
func NewCounter(k int) (*Counter, error) {
	if k <= 0 || k > MaxWordSize {
		return nil, fmt.Errorf("word size must be in [1, %d], got %d", MaxWordSize, k)
	}
	return &Counter{K: k, Counts: make([]int32, 1<<(2*uint(k)))}, nil
}

// CountWords adds every valid word of s to the histogram.
func (c *Counter) CountWords(s string) {
	for _, w := range Words(s, c.K) {
		if w >= 0 {
			c.Counts[w]++
			c.Total++
		}
	}
}

// Get returns the count of a word given as bases.
func (c *Counter) Get(word string) (int, error) {
	if len(word) != c.K {
		return 0, fmt.Errorf("word length %d does not match k=%d", len(word), c.K)
	}
	w := Words(word, c.K)
	if len(w) != 1 || w[0] < 0 {
		return 0, nil
	}
	return int(c.Counts[w[0]]), nil
}

// UniqueCount returns the number of distinct words seen.
func (c *Counter) UniqueCount() int {
	n := 0
	for _, v := range c.Counts {
		if v > 0 {
			n++
		}
	}
	return n
}

// Reset clears all counts.
func (c *Counter) Reset() {
	clear(c.Counts)
	c.Total = 0
}

// WordCount pairs a word with its count.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// MostFrequent returns the n most frequent words, ties broken alphabetically.
func (c *Counter) MostFrequent(n int) []WordCount {
	var all []WordCount
	for w, v := range c.Counts {
		if v > 0 {
			all = append(all, WordCount{Word: Decode(int32(w), c.K), Count: int(v)})
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Count != all[j].Count {
			return all[i].Count > all[j].Count
		}
		return all[i].Word < all[j].Word
	})
	if n < len(all) {
		all = all[:n]
	}
	return all
}

// SquaredDistance returns the D2 distance between two histograms of equal k.
func SquaredDistance(a, b *Counter) (int, error) {
	if a.K != b.K {
		return 0, fmt.Errorf("cannot compare histograms with k=%d and k=%d", a.K, b.K)
	}
	d := 0
	for i := range a.Counts {
		diff := int(a.Counts[i] - b.Counts[i])
		d += diff * diff
	}
	return d, nil
}

// WindowDistance is the brute-force D2 distance between two windows.
// The engine computes the same quantity incrementally.
func WindowDistance(w1, w2 string, k int) (int, error) {
	a, err := NewCounter(k)
	if err != nil {
		return 0, err
	}
	b, _ := NewCounter(k)
	a.CountWords(w1)
	b.CountWords(w2)
	return SquaredDistance(a, b)
}
