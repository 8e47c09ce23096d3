package multiply

import (
	"math"
	"math/rand/v2"

	"github.com/agbru/polycalc/internal/kronecker"
	"github.com/agbru/polycalc/internal/series"
)

// estimateSize predicts the number of distinct monomials in the product of
// v1 and v2 with a birthday-paradox argument.
//
// Each trial draws random (i, j) pairs and stops at the first product
// monomial already seen. When N distinct products are equally likely, the
// expected number of draws before a repeat is about sqrt(πN/2); inverting
// gives N ≈ 2·k̄²/π for the mean draw count k̄. The estimate is clamped to
// [1, |v1|·|v2|] and only sizes the destination, so a poor estimate costs
// time but never correctness.
func estimateSize[C any](v1, v2 []series.Term[C], opts Options) uint64 {
	total := uint64(len(v1)) * uint64(len(v2))
	if total <= 1 {
		return 1
	}
	maxDraws := uint64(opts.EstimateMaxDraws)
	if total < maxDraws {
		maxDraws = total
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	seen := make(map[kronecker.Monomial]struct{}, min(maxDraws, 4096))
	var sum float64
	for range opts.EstimateTrials {
		clear(seen)
		var draws uint64
		for draws < maxDraws {
			draws++
			key := v1[rng.IntN(len(v1))].Key.Mul(v2[rng.IntN(len(v2))].Key)
			if _, dup := seen[key]; dup {
				break
			}
			seen[key] = struct{}{}
		}
		sum += float64(draws)
	}
	mean := sum / float64(opts.EstimateTrials)
	est := 2 * mean * mean / math.Pi
	switch {
	case est < 1:
		return 1
	case est >= float64(total):
		return total
	}
	return uint64(est)
}
