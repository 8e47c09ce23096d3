// Package symbols provides the ordered, duplicate-free variable set that
// polynomials are defined over.
package symbols

import (
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Set is an immutable, lexicographically ordered set of variable names.
// The position of a name in the set is the index of its exponent in every
// monomial of a polynomial defined over the set.
type Set struct {
	names       []string
	fingerprint uint64
}

// New builds a Set from names. Duplicates are removed and the remaining names
// are sorted, so New("y", "x", "y") and New("x", "y") are equal.
func New(names ...string) Set {
	sorted := slices.Clone(names)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	return Set{names: sorted, fingerprint: fingerprint(sorted)}
}

func fingerprint(names []string) uint64 {
	d := xxhash.New()
	for _, n := range names {
		_, _ = d.WriteString(n)
		// Separator so that {"ab"} and {"a", "b"} differ.
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}

// Len returns the number of symbols.
func (s Set) Len() int { return len(s.names) }

// Names returns a copy of the ordered names.
func (s Set) Names() []string { return slices.Clone(s.names) }

// Name returns the i-th name.
func (s Set) Name(i int) string { return s.names[i] }

// Index returns the position of name, or -1 if it is not in the set.
func (s Set) Index(name string) int {
	i, ok := slices.BinarySearch(s.names, name)
	if !ok {
		return -1
	}
	return i
}

// Contains reports whether name is in the set.
func (s Set) Contains(name string) bool { return s.Index(name) >= 0 }

// Fingerprint returns a 64-bit hash of the ordered names.
func (s Set) Fingerprint() uint64 { return s.fingerprint }

// Equal reports whether both sets hold the same names. Fingerprints are
// compared first; the zero Set carries none and equals New().
func (s Set) Equal(o Set) bool {
	if len(s.names) != len(o.names) {
		return false
	}
	if s.fingerprint != 0 && o.fingerprint != 0 && s.fingerprint != o.fingerprint {
		return false
	}
	return slices.Equal(s.names, o.names)
}

// String formats the set as "{x, y, z}".
func (s Set) String() string {
	return "{" + strings.Join(s.names, ", ") + "}"
}
