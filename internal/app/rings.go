package app

import (
	"context"
	"io"
	"slices"

	"github.com/agbru/polycalc/internal/coeff"
)

// ringRunner runs the application over one coefficient ring.
type ringRunner func(ctx context.Context, a *Application, out io.Writer) int

var ringRunners = map[string]ringRunner{}

// registerRing makes r selectable with -coeff.
func registerRing[C any](r coeff.Ring[C]) {
	ringRunners[r.Name()] = func(ctx context.Context, a *Application, out io.Writer) int {
		return execute(ctx, a, r, out)
	}
}

func init() {
	registerRing(coeff.Int64{})
	registerRing(coeff.Float64{})
	registerRing(coeff.BigInt{})
	registerRing(coeff.Rat{})
}

// AvailableRings returns the names of the coefficient rings compiled into
// the binary, sorted.
func AvailableRings() []string {
	names := make([]string, 0, len(ringRunners))
	for name := range ringRunners {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
