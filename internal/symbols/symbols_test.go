package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SortsAndDeduplicates(t *testing.T) {
	t.Parallel()
	s := New("z", "x", "y", "x")
	require.Equal(t, 3, s.Len())
	assert.Equal(t, []string{"x", "y", "z"}, s.Names())
	assert.Equal(t, "{x, y, z}", s.String())
	assert.Equal(t, "y", s.Name(1))
}

func TestIndex(t *testing.T) {
	t.Parallel()
	s := New("t", "x", "y", "z")
	tests := []struct {
		name string
		want int
	}{
		{"t", 0},
		{"x", 1},
		{"z", 3},
		{"w", -1},
		{"", -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.Index(tt.name), "Index(%q)", tt.name)
		assert.Equal(t, tt.want >= 0, s.Contains(tt.name))
	}
}

func TestEqual(t *testing.T) {
	t.Parallel()
	assert.True(t, New("x", "y").Equal(New("y", "x", "y")))
	assert.False(t, New("x", "y").Equal(New("x")))
	assert.False(t, New("ab").Equal(New("a", "b")))
	assert.NotEqual(t, New("ab").Fingerprint(), New("a", "b").Fingerprint())
	assert.True(t, New().Equal(Set{}))
}

func TestNames_ReturnsCopy(t *testing.T) {
	t.Parallel()
	s := New("x", "y")
	names := s.Names()
	names[0] = "mutated"
	assert.Equal(t, "x", s.Name(0))
}
