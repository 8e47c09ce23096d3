// Package orchestration runs several multiplication engines on the same
// operands concurrently and checks that they agree.
package orchestration

//go:generate mockgen -source=orchestrator.go -destination=mocks/mock_engine.go -package=mocks

import (
	"cmp"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"slices"
	"sort"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/agbru/polycalc/internal/cli"
	"github.com/agbru/polycalc/internal/coeff"
	apperrors "github.com/agbru/polycalc/internal/errors"
	"github.com/agbru/polycalc/internal/multiply"
	"github.com/agbru/polycalc/internal/polynomial"
	"github.com/agbru/polycalc/internal/series"
)

// Outcome is what an engine reports about its product.
type Outcome struct {
	// Report describes how the product was computed.
	Report multiply.Report
	// Terms is the number of terms of the product.
	Terms int
	// Digest fingerprints the product. Engines that computed the same
	// product report the same digest.
	Digest uint64
}

// Engine computes one product.
type Engine interface {
	// Name identifies the engine in the summary table.
	Name() string
	// Run computes the product.
	Run(ctx context.Context) (Outcome, error)
}

// StrategyEngine multiplies two polynomials with a fixed strategy.
type StrategyEngine[C any] struct {
	strategy string
	a, b     *polynomial.Polynomial[C]
	opts     multiply.Options
	product  *polynomial.Polynomial[C]
}

// NewStrategyEngine returns an engine computing a·b with the given strategy.
// The other fields of opts are kept.
func NewStrategyEngine[C any](strategy string, a, b *polynomial.Polynomial[C], opts multiply.Options) *StrategyEngine[C] {
	opts.Strategy = strategy
	return &StrategyEngine[C]{strategy: strategy, a: a, b: b, opts: opts}
}

// Name returns the strategy name.
func (e *StrategyEngine[C]) Name() string { return e.strategy }

// Run computes the product and keeps it for Product.
func (e *StrategyEngine[C]) Run(ctx context.Context) (Outcome, error) {
	p, rep, err := e.a.Mul(ctx, e.b, e.opts)
	if err != nil {
		return Outcome{Report: rep}, err
	}
	e.product = p
	return Outcome{Report: rep, Terms: p.Len(), Digest: Digest(p)}, nil
}

// Product returns the product of the last successful Run, or nil.
func (e *StrategyEngine[C]) Product() *polynomial.Polynomial[C] { return e.product }

// Digest fingerprints p with xxhash over its terms in key order. Over an
// approximate ring only the monomials are hashed, since the coefficients of
// two correct products may differ in their last bits.
func Digest[C any](p *polynomial.Polynomial[C]) uint64 {
	terms := p.Series().Terms()
	slices.SortFunc(terms, func(a, b series.Term[C]) int { return cmp.Compare(a.Key, b.Key) })
	exact := !coeff.IsApproximate(p.Ring())

	h := xxhash.New()
	for _, name := range p.Symbols().Names() {
		_, _ = h.WriteString(name)
		_, _ = h.Write([]byte{0})
	}
	var buf [8]byte
	for _, t := range terms {
		binary.LittleEndian.PutUint64(buf[:], uint64(t.Key))
		_, _ = h.Write(buf[:])
		if exact {
			_, _ = h.WriteString(p.Ring().Format(t.Cf))
			_, _ = h.Write([]byte{0})
		}
	}
	return h.Sum64()
}

// FormatDigest renders a digest as 16 hexadecimal digits.
func FormatDigest(d uint64) string { return fmt.Sprintf("%016x", d) }

// CalculationResult is the outcome of one engine run.
type CalculationResult struct {
	// Name is the engine name.
	Name string
	// Outcome is the engine outcome. Only Report is meaningful on error.
	Outcome Outcome
	// Duration is the wall time of the run.
	Duration time.Duration
	// Err is the error the engine returned.
	Err error
}

// ExecuteCalculations runs the engines concurrently and collects their
// results in input order. A failing engine does not stop the others.
//
// Parameters:
//   - ctx: The context for cancellation and deadlines.
//   - engines: The engines to run.
//   - out: Where the progress spinner is drawn; nil disables it.
//
// Returns:
//   - []CalculationResult: One result per engine.
func ExecuteCalculations(ctx context.Context, engines []Engine, out io.Writer) []CalculationResult {
	var g errgroup.Group
	results := make([]CalculationResult, len(engines))

	var done chan cli.Completion
	var displayWg sync.WaitGroup
	if out != nil {
		done = make(chan cli.Completion, len(engines))
		displayWg.Add(1)
		go cli.DisplayProgress(&displayWg, done, len(engines), out)
	}

	for i, engine := range engines {
		g.Go(func() error {
			start := time.Now()
			outcome, err := engine.Run(ctx)
			results[i] = CalculationResult{
				Name: engine.Name(), Outcome: outcome, Duration: time.Since(start), Err: err,
			}
			if done != nil {
				done <- cli.Completion{Name: engine.Name(), Err: err}
			}
			return nil
		})
	}

	_ = g.Wait()
	if done != nil {
		close(done)
		displayWg.Wait()
	}
	return results
}

// AnalyzeComparisonResults prints a summary table of the results, sorted
// with successes first by duration, and checks that every successful engine
// produced the same digest.
//
// Parameters:
//   - results: The results to analyze. The slice is sorted in place.
//   - out: The io.Writer for the summary report.
//
// Returns:
//   - int: ExitSuccess, ExitErrorMismatch, or the exit code of the first error
//     when no engine succeeded.
func AnalyzeComparisonResults(results []CalculationResult, out io.Writer) int {
	sort.SliceStable(results, func(i, j int) bool {
		if (results[i].Err == nil) != (results[j].Err == nil) {
			return results[i].Err == nil
		}
		return results[i].Duration < results[j].Duration
	})

	var first *CalculationResult
	var firstError error
	successCount := 0

	fmt.Fprintf(out, "\n--- Comparison Summary ---\n")
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "%sStrategy%s\t%sDuration%s\t%sWorkers%s\t%sTerms%s\t%sStatus%s\n",
		cli.ColorBold(), cli.ColorReset(), cli.ColorBold(), cli.ColorReset(), cli.ColorBold(), cli.ColorReset(),
		cli.ColorBold(), cli.ColorReset(), cli.ColorBold(), cli.ColorReset())

	for i := range results {
		res := &results[i]
		var status string
		if res.Err != nil {
			status = fmt.Sprintf("%s❌ Failure (%v)%s", cli.ColorRed(), res.Err, cli.ColorReset())
			if firstError == nil {
				firstError = res.Err
			}
		} else {
			status = fmt.Sprintf("%s✅ Success%s", cli.ColorGreen(), cli.ColorReset())
			successCount++
			if first == nil {
				first = res
			}
		}
		duration := cli.FormatExecutionDuration(res.Duration)
		if res.Duration == 0 {
			duration = "< 1µs"
		}
		fmt.Fprintf(tw, "%s%s%s\t%s%s%s\t%d\t%d\t%s\n",
			cli.ColorBlue(), res.Name, cli.ColorReset(),
			cli.ColorYellow(), duration, cli.ColorReset(),
			res.Outcome.Report.Workers, res.Outcome.Terms,
			status)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(out, "Warning: failed to flush tabwriter: %v\n", err)
	}

	if successCount == 0 {
		fmt.Fprintf(out, "\nGlobal Status: Failure. No strategy could complete the multiplication.\n")
		return apperrors.HandleCalculationError(firstError, 0, out, cli.CLIColorProvider{})
	}

	for _, res := range results {
		if res.Err == nil && (res.Outcome.Digest != first.Outcome.Digest || res.Outcome.Terms != first.Outcome.Terms) {
			fmt.Fprintf(out, "\nGlobal Status: CRITICAL ERROR! %s and %s computed different products.\n", first.Name, res.Name)
			return apperrors.ExitErrorMismatch
		}
	}

	fmt.Fprintf(out, "\nGlobal Status: Success. All products are identical (digest %s).\n", FormatDigest(first.Outcome.Digest))
	return apperrors.ExitSuccess
}
