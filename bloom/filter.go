// Package bloom provides the probabilistic visited-set pre-check used by the
// folder crawler.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Filter is a Bloom filter over normalized folder URLs.
// A negative answer is exact; a positive answer must be confirmed by the caller.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected keys
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Add records key in the filter.
func (f *Filter) Add(key string) {
	f.f.AddString(key)
}

// Test returns true if key might have been added.
func (f *Filter) Test(key string) bool {
	return f.f.TestString(key)
}

// TestAndAdd reports whether key might have been added before, and adds it.
func (f *Filter) TestAndAdd(key string) bool {
	return f.f.TestAndAddString(key)
}

// EstimatedCount returns the approximate number of keys in the filter.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}
