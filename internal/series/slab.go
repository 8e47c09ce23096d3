package series

// Slab hands out Nodes from contiguous chunks so that filling a set does not
// pay one heap allocation per term. Allocation is a bump of an offset into
// the current chunk; a new, larger chunk is started when it is exhausted.
//
// Nodes are never returned to the slab individually: a chunk is released by
// the garbage collector once no node carved from it is referenced.
//
// Thread Safety: Slab is NOT thread-safe. Each worker should own one.
type Slab[C any] struct {
	chunk     []Node[C]
	offset    int
	nextSize  int
	allocated int
}

const (
	minSlabChunk = 64
	maxSlabChunk = 1 << 16
)

// NewSlab returns a slab whose first chunk holds hint nodes, clamped to a
// sensible range.
func NewSlab[C any](hint int) *Slab[C] {
	return &Slab[C]{nextSize: min(max(hint, minSlabChunk), maxSlabChunk)}
}

// Alloc returns a fresh node holding t.
func (s *Slab[C]) Alloc(t Term[C]) *Node[C] {
	if s.offset == len(s.chunk) {
		if s.nextSize == 0 {
			s.nextSize = minSlabChunk
		}
		s.chunk = make([]Node[C], s.nextSize)
		s.offset = 0
		s.nextSize = min(2*s.nextSize, maxSlabChunk)
	}
	n := &s.chunk[s.offset]
	s.offset++
	s.allocated++
	n.Term = t
	return n
}

// Allocated returns the number of nodes handed out.
func (s *Slab[C]) Allocated() int { return s.allocated }
