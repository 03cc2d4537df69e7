// Package cache implements C6: an approximate-membership bloom filter
// over indexed paths and a path→FileEntry LRU. No bloom-filter library
// appears anywhere in the retrieval pack, so this one is hand-rolled on
// top of cespare/xxhash/v2 (already a teacher dependency) using the
// standard double-hashing construction (Kirsch-Mitzenmacher) to derive
// k independent hash functions from two xxHash64 digests.
package cache

import (
	"math"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Bloom is a thread-safe bloom filter sized for a target capacity and
// false-positive rate (spec §6: bloom_filter_capacity / _error_rate).
type Bloom struct {
	mu    sync.RWMutex
	bits  []uint64
	m     uint64 // number of bits
	k     uint64 // number of hash functions
	count uint64
}

// NewBloom sizes a filter for capacity items at the given false-positive
// error rate using the standard m = -n*ln(p)/(ln2)^2, k = (m/n)*ln2
// formulas.
func NewBloom(capacity uint64, errorRate float64) *Bloom {
	if capacity == 0 {
		capacity = 1
	}
	if errorRate <= 0 || errorRate >= 1 {
		errorRate = 1e-4
	}
	m := optimalM(capacity, errorRate)
	k := optimalK(m, capacity)
	words := (m + 63) / 64
	return &Bloom{
		bits: make([]uint64, words),
		m:    m,
		k:    k,
	}
}

func optimalM(n uint64, p float64) uint64 {
	m := math.Ceil(-1 * float64(n) * math.Log(p) / (math.Ln2 * math.Ln2))
	if m < 8 {
		m = 8
	}
	return uint64(m)
}

func optimalK(m, n uint64) uint64 {
	k := math.Round((float64(m) / float64(n)) * math.Ln2)
	if k < 1 {
		k = 1
	}
	return uint64(k)
}

// Add records key as present.
func (b *Bloom) Add(key string) {
	h1, h2 := twoHashes(key)
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := uint64(0); i < b.k; i++ {
		bit := (h1 + i*h2) % b.m
		b.bits[bit/64] |= 1 << (bit % 64)
	}
	b.count++
}

// MightContain reports whether key may be present (false positives
// possible; false negatives are not).
func (b *Bloom) MightContain(key string) bool {
	h1, h2 := twoHashes(key)
	b.mu.RLock()
	defer b.mu.RUnlock()
	for i := uint64(0); i < b.k; i++ {
		bit := (h1 + i*h2) % b.m
		if b.bits[bit/64]&(1<<(bit%64)) == 0 {
			return false
		}
	}
	return true
}

// Reset clears the filter in place, preserving its sizing. Used after a
// bulk rebuild (writer lock, per spec §5's "writer lock for bloom
// rebuilds").
func (b *Bloom) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.bits {
		b.bits[i] = 0
	}
	b.count = 0
}

// ApproxCount returns the number of Add calls observed (not corrected
// for estimated set cardinality; it's a coarse instrumentation value).
func (b *Bloom) ApproxCount() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.count
}

func twoHashes(key string) (uint64, uint64) {
	h1 := xxhash.Sum64String(key)
	h2 := xxhash.Sum64String(key + "\x00salt")
	if h2 == 0 {
		h2 = 1
	}
	return h1, h2
}
