package calibration

import (
	"cmp"
	"math"
	"runtime"
	"slices"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Adaptive Candidate Generation
// ─────────────────────────────────────────────────────────────────────────────

// GenerateDensityDegrees returns the maximum exponents of the random operands
// used to sweep accumulation density. With a fixed term count, a small degree
// makes many term products collide (dense) and a large one makes them
// mostly distinct (sparse).
func GenerateDensityDegrees(quick bool) []int {
	if quick {
		return []int{2, 6, 24, 96}
	}
	return []int{1, 2, 4, 8, 16, 32, 64, 128, 512}
}

// GenerateWorkerCounts lists the worker counts worth timing on this machine:
// powers of two up to the CPU count, plus the CPU count itself.
func GenerateWorkerCounts() []int {
	numCPU := runtime.NumCPU()
	counts := []int{1}
	for w := 2; w < numCPU; w *= 2 {
		counts = append(counts, w)
	}
	if numCPU > 1 {
		counts = append(counts, numCPU)
	}
	return counts
}

// EstimateOptimalWorkers is the hardware default worker count used when no
// calibration is available.
func EstimateOptimalWorkers() int {
	return runtime.GOMAXPROCS(0)
}

// ─────────────────────────────────────────────────────────────────────────────
// Recommendations
// ─────────────────────────────────────────────────────────────────────────────

// Point is the measurement of one density: the candidates per result term,
// and the fastest time of each path.
type Point struct {
	Degree     int
	Ratio      float64
	Candidates uint64
	Terms      uint64
	Dense      time.Duration
	Sparse     time.Duration
	// DenseErr is set when the dense path could not run (array too large).
	DenseErr error
}

// DenseWins reports whether the dense path ran and beat the sparse one.
func (p Point) DenseWins() bool {
	return p.DenseErr == nil && p.Dense < p.Sparse
}

// RecommendDenseRatio picks the candidates-per-term threshold above which
// the dense path should be used. The points are sorted by ratio and the
// split that misclassifies the fewest points is chosen; the threshold is the
// geometric mean of the ratios on both sides of the split.
//
// Returns:
//   - float64: The recommended ratio.
//   - bool: False when there are no usable points.
func RecommendDenseRatio(points []Point) (float64, bool) {
	usable := make([]Point, 0, len(points))
	for _, p := range points {
		if p.Ratio > 0 && p.Sparse > 0 {
			usable = append(usable, p)
		}
	}
	if len(usable) == 0 {
		return 0, false
	}
	slices.SortFunc(usable, func(a, b Point) int { return cmp.Compare(a.Ratio, b.Ratio) })

	// errs(k) counts dense wins below k and sparse wins from k on.
	bestK, bestErrs := 0, math.MaxInt
	for k := 0; k <= len(usable); k++ {
		errs := 0
		for i, p := range usable {
			if (i < k) == p.DenseWins() {
				errs++
			}
		}
		if errs < bestErrs {
			bestK, bestErrs = k, errs
		}
	}

	switch bestK {
	case 0:
		return usable[0].Ratio / 2, true
	case len(usable):
		return usable[len(usable)-1].Ratio * 2, true
	default:
		return math.Sqrt(usable[bestK-1].Ratio * usable[bestK].Ratio), true
	}
}

// RecommendWorkers returns the worker count of the fastest timing.
func RecommendWorkers(timings map[int]time.Duration) (int, bool) {
	best, bestDur := 0, time.Duration(math.MaxInt64)
	for w, d := range timings {
		if d < bestDur || (d == bestDur && w < best) {
			best, bestDur = w, d
		}
	}
	return best, best > 0
}
