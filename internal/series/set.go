// Package series provides the term container used by polynomials: an
// unordered chained hash set of (coefficient, monomial) terms keyed by
// monomial, with bucket-level access for the parallel multiplication paths.
//
// The bucket of a key is its hash masked by bucketCount-1, and bucket counts
// are always powers of two. Because kronecker.Monomial hashes to its packed
// value, the bucket of a product is the sum of the factors' buckets modulo
// the bucket count. The sparse multiplier relies on this to give each worker
// a disjoint range of destination buckets.
//
// A Set is not safe for concurrent use, with one exception: goroutines may
// call the *InBucket methods concurrently as long as they touch disjoint
// buckets and nothing resizes the set meanwhile.
package series

import (
	"fmt"
	"iter"
	"math/bits"

	apperrors "github.com/agbru/polycalc/internal/errors"
	"github.com/agbru/polycalc/internal/kronecker"
	"github.com/agbru/polycalc/internal/parallel"
)

const (
	// MaxLoadFactor is the load factor above which insertion grows the table.
	MaxLoadFactor = 1.0

	// MaxBucketCount is the largest supported bucket count.
	MaxBucketCount uint64 = 1 << 40
)

// Term is a (coefficient, monomial) pair.
type Term[C any] struct {
	Cf  C
	Key kronecker.Monomial
}

// Node is a chained entry of a Set.
type Node[C any] struct {
	Term Term[C]
	next *Node[C]
}

// Set is a chained hash set of terms keyed by monomial.
type Set[C any] struct {
	buckets []*Node[C]
	size    uint64
}

// New returns an empty set with at least n buckets. n is rounded up to a
// power of two; n == 0 yields a set with no buckets that grows on first
// insertion.
func New[C any](n uint64) (*Set[C], error) {
	s := &Set[C]{}
	if err := s.allocate(n); err != nil {
		return nil, err
	}
	return s, nil
}

// BucketsFor returns the power-of-two bucket count that holds size terms
// without exceeding MaxLoadFactor.
func BucketsFor(size uint64) uint64 {
	if size == 0 {
		return 0
	}
	return ceilPow2(uint64(float64(size)/MaxLoadFactor + 0.5))
}

func ceilPow2(n uint64) uint64 {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len64(n-1)
}

func (s *Set[C]) allocate(n uint64) (err error) {
	if n == 0 {
		s.buckets = nil
		return nil
	}
	if n > MaxBucketCount {
		return apperrors.NewAllocationError(n, fmt.Errorf("exceeds maximum bucket count %d", MaxBucketCount))
	}
	n = ceilPow2(n)
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.NewAllocationError(n, fmt.Errorf("%v", r))
		}
	}()
	s.buckets = make([]*Node[C], n)
	return nil
}

// BucketCount returns the number of buckets.
func (s *Set[C]) BucketCount() uint64 { return uint64(len(s.buckets)) }

// Size returns the recorded number of terms.
func (s *Set[C]) Size() uint64 { return s.size }

// Empty reports whether the set holds no terms.
func (s *Set[C]) Empty() bool { return s.size == 0 }

// UpdateSize overwrites the recorded number of terms. It is used after the
// *InBucket methods, which do not maintain the count.
func (s *Set[C]) UpdateSize(n uint64) { s.size = n }

// LoadFactor returns size / bucket count, or 0 for a set without buckets.
func (s *Set[C]) LoadFactor() float64 {
	if len(s.buckets) == 0 {
		return 0
	}
	return float64(s.size) / float64(len(s.buckets))
}

// BucketFromHash maps a hash to its bucket. The set must have buckets.
func (s *Set[C]) BucketFromHash(h uint64) uint64 {
	return h & (uint64(len(s.buckets)) - 1)
}

// Bucket returns the bucket of key. The set must have buckets.
func (s *Set[C]) Bucket(key kronecker.Monomial) uint64 {
	return s.BucketFromHash(key.Hash())
}

// Find returns a pointer to the term with the given key, or nil.
// The pointer stays valid until the term is erased or the set is rehashed.
func (s *Set[C]) Find(key kronecker.Monomial) *Term[C] {
	if len(s.buckets) == 0 {
		return nil
	}
	return s.FindInBucket(key, s.Bucket(key))
}

// FindInBucket is Find with a precomputed bucket.
func (s *Set[C]) FindInBucket(key kronecker.Monomial, b uint64) *Term[C] {
	for n := s.buckets[b]; n != nil; n = n.next {
		if n.Term.Key == key {
			return &n.Term
		}
	}
	return nil
}

// LinkInBucket prepends n to bucket b. The caller guarantees that n's key is
// not already present and that b is its bucket. The size is not updated.
func (s *Set[C]) LinkInBucket(n *Node[C], b uint64) {
	n.next = s.buckets[b]
	s.buckets[b] = n
}

// EraseInBucket removes the term with the given key from bucket b and reports
// whether it was present. The size is not updated.
func (s *Set[C]) EraseInBucket(key kronecker.Monomial, b uint64) bool {
	for p := &s.buckets[b]; *p != nil; p = &(*p).next {
		if (*p).Term.Key == key {
			*p = (*p).next
			return true
		}
	}
	return false
}

// EraseIfInRange removes every term of buckets [lo, hi) for which drop
// returns true and returns how many were removed. The size is not updated.
func (s *Set[C]) EraseIfInRange(lo, hi uint64, drop func(*Term[C]) bool) uint64 {
	var removed uint64
	for b := lo; b < hi; b++ {
		for p := &s.buckets[b]; *p != nil; {
			if drop(&(*p).Term) {
				*p = (*p).next
				removed++
				continue
			}
			p = &(*p).next
		}
	}
	return removed
}

// UniqueInsert adds a term whose key is known to be absent, growing the
// table when the load factor would exceed MaxLoadFactor.
func (s *Set[C]) UniqueInsert(t Term[C]) error {
	if err := s.reserve(s.size + 1); err != nil {
		return err
	}
	s.LinkInBucket(&Node[C]{Term: t}, s.Bucket(t.Key))
	s.size++
	return nil
}

// Merger is the coefficient arithmetic needed by Insert.
type Merger[C any] interface {
	Add(a, b C) (C, error)
	IsZero(c C) bool
}

// Insert adds t to the set, accumulating into an existing term with the same
// key. Zero coefficients are never stored: inserting a zero is a no-op and a
// term whose accumulated coefficient becomes zero is erased.
func (s *Set[C]) Insert(t Term[C], m Merger[C]) error {
	if m.IsZero(t.Cf) {
		return nil
	}
	if len(s.buckets) != 0 {
		b := s.Bucket(t.Key)
		if existing := s.FindInBucket(t.Key, b); existing != nil {
			sum, err := m.Add(existing.Cf, t.Cf)
			if err != nil {
				return err
			}
			if m.IsZero(sum) {
				s.EraseInBucket(t.Key, b)
				s.size--
				return nil
			}
			existing.Cf = sum
			return nil
		}
	}
	return s.UniqueInsert(t)
}

// Erase removes the term with the given key and reports whether it was present.
func (s *Set[C]) Erase(key kronecker.Monomial) bool {
	if len(s.buckets) == 0 {
		return false
	}
	if s.EraseInBucket(key, s.Bucket(key)) {
		s.size--
		return true
	}
	return false
}

func (s *Set[C]) reserve(size uint64) error {
	if float64(size) <= float64(len(s.buckets))*MaxLoadFactor {
		return nil
	}
	return s.Rehash(max(BucketsFor(size), 2*uint64(len(s.buckets))), 1)
}

// Clear removes every term and releases the bucket array.
func (s *Set[C]) Clear() {
	s.buckets = nil
	s.size = 0
}

// All iterates over the terms in bucket order. The yielded pointers may be
// used to update coefficients in place.
func (s *Set[C]) All() iter.Seq[*Term[C]] {
	return func(yield func(*Term[C]) bool) {
		for _, head := range s.buckets {
			for n := head; n != nil; n = n.next {
				if !yield(&n.Term) {
					return
				}
			}
		}
	}
}

// BucketTerms iterates over the terms of bucket b.
func (s *Set[C]) BucketTerms(b uint64) iter.Seq[*Term[C]] {
	return func(yield func(*Term[C]) bool) {
		for n := s.buckets[b]; n != nil; n = n.next {
			if !yield(&n.Term) {
				return
			}
		}
	}
}

// Terms returns a copy of all terms in bucket order.
func (s *Set[C]) Terms() []Term[C] {
	out := make([]Term[C], 0, s.size)
	for t := range s.All() {
		out = append(out, *t)
	}
	return out
}

// Rehash moves every term into a table of n buckets (rounded up to a power
// of two) using up to workers goroutines. Workers relocate disjoint ranges of
// buckets: when growing, old bucket i only feeds new buckets j with
// j&(old-1) == i; when shrinking, new bucket j only receives old buckets
// congruent to j modulo n.
func (s *Set[C]) Rehash(n uint64, workers int) error {
	if n == 0 && s.size != 0 {
		n = BucketsFor(s.size)
	}
	old := s.buckets
	if n == 0 {
		s.buckets = nil
		return nil
	}
	n = ceilPow2(n)
	if n == uint64(len(old)) {
		return nil
	}
	if err := s.allocate(n); err != nil {
		s.buckets = old
		return err
	}
	if len(old) == 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	mask := n - 1
	if n > uint64(len(old)) {
		return parallel.Each(workers, len(old), func(_, lo, hi int) error {
			for i := lo; i < hi; i++ {
				for node := old[i]; node != nil; {
					next := node.next
					s.LinkInBucket(node, node.Term.Key.Hash()&mask)
					node = next
				}
			}
			return nil
		})
	}
	return parallel.Each(workers, int(n), func(_, lo, hi int) error {
		for j := lo; j < hi; j++ {
			for i := j; i < len(old); i += int(n) {
				for node := old[i]; node != nil; {
					next := node.next
					s.LinkInBucket(node, uint64(j))
					node = next
				}
			}
		}
		return nil
	})
}
