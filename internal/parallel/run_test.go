package parallel

import (
	"errors"
	"sync/atomic"
	"testing"

	apperrors "github.com/agbru/polycalc/internal/errors"
)

func TestRun_JoinsAllWorkers(t *testing.T) {
	t.Parallel()
	for _, n := range []int{0, 1, 2, 7, 32} {
		var calls atomic.Int32
		var seen [64]atomic.Bool
		err := Run(n, func(idx int) error {
			calls.Add(1)
			seen[idx].Store(true)
			return nil
		})
		if err != nil {
			t.Fatalf("n=%d: unexpected error %v", n, err)
		}
		want := max(n, 1)
		if int(calls.Load()) != want {
			t.Errorf("n=%d: expected %d calls, got %d", n, want, calls.Load())
		}
		for i := range want {
			if !seen[i].Load() {
				t.Errorf("n=%d: worker %d never ran", n, i)
			}
		}
	}
}

func TestRun_FirstErrorWinsAndPeersFinish(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	var finished atomic.Int32
	err := Run(8, func(idx int) error {
		defer finished.Add(1)
		if idx%2 == 0 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if finished.Load() != 8 {
		t.Errorf("expected all 8 workers joined, got %d", finished.Load())
	}
}

func TestRun_PanicBecomesConcurrencyError(t *testing.T) {
	t.Parallel()
	for _, n := range []int{1, 4} {
		err := Run(n, func(idx int) error {
			if idx == 0 {
				panic("worker exploded")
			}
			return nil
		})
		var ce *apperrors.ConcurrencyError
		if !errors.As(err, &ce) {
			t.Fatalf("n=%d: expected ConcurrencyError, got %T (%v)", n, err, err)
		}
		if ce.Worker != 0 {
			t.Errorf("n=%d: expected worker 0, got %d", n, ce.Worker)
		}
	}
}

func TestEach_CoversRangeExactlyOnce(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		workers  int
		total    int
		segments int
	}{
		{"empty", 4, 0, 0},
		{"single", 1, 10, 1},
		{"even", 4, 16, 4},
		{"remainder", 3, 10, 3},
		{"more workers than items", 8, 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			hits := make([]atomic.Int32, tt.total)
			var segments atomic.Int32
			err := Each(tt.workers, tt.total, func(_, start, end int) error {
				segments.Add(1)
				for i := start; i < end; i++ {
					hits[i].Add(1)
				}
				return nil
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if int(segments.Load()) != tt.segments {
				t.Errorf("expected %d segments, got %d", tt.segments, segments.Load())
			}
			for i := range hits {
				if hits[i].Load() != 1 {
					t.Errorf("index %d visited %d times", i, hits[i].Load())
				}
			}
		})
	}
}
