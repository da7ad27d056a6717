// Package bloom answers "definitely unseen" questions about canonical URLs
// with a Bloom filter, so a frontier only consults its exact sets when a
// URL may already be known.
package bloom

import (
	"math"

	"github.com/bits-and-blooms/bloom/v3"
)

// URLSet is a probabilistic set of URL keys. It may report a URL it never
// saw (a false positive) but never misses one it did see.
// It is not safe for concurrent use; callers hold their own lock.
type URLSet struct {
	filter *bloom.BloomFilter
	added  uint
}

// NewURLSet returns a set sized for n keys at false positive rate fp.
func NewURLSet(n uint, fp float64) *URLSet {
	if n == 0 {
		n = 1
	}
	return &URLSet{filter: bloom.NewWithEstimates(n, fp)}
}

// Add records key.
func (s *URLSet) Add(key string) {
	s.filter.AddString(key)
	s.added++
}

// MayContain reports whether key may have been added.
func (s *URLSet) MayContain(key string) bool {
	return s.filter.TestString(key)
}

// Len returns the number of Add calls, duplicates included.
func (s *URLSet) Len() uint { return s.added }

// FalsePositiveRate estimates the current false positive rate from the
// number of keys added so far.
func (s *URLSet) FalsePositiveRate() float64 {
	m, k := float64(s.filter.Cap()), float64(s.filter.K())
	return math.Pow(1-math.Exp(-k*float64(s.added)/m), k)
}
