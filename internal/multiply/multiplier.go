package multiply

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/agbru/polycalc/internal/coeff"
	"github.com/agbru/polycalc/internal/logging"
	"github.com/agbru/polycalc/internal/series"
)

// Report describes how a multiplication was carried out.
type Report struct {
	// Strategy is the algorithm that ran, or "none" for an empty operand.
	Strategy string `json:"strategy"`
	// Workers is the number of goroutines that accumulated products.
	Workers int `json:"workers"`
	// Candidates is |a|·|b|, the number of term products.
	Candidates uint64 `json:"candidates"`
	// Estimate is the predicted number of result terms.
	Estimate uint64 `json:"estimate"`
	// Terms is the actual number of result terms.
	Terms uint64 `json:"terms"`
	// Buckets is the bucket count of the result.
	Buckets uint64 `json:"buckets"`
	// Insertions counts the terms created before sanitization.
	Insertions uint64 `json:"insertions"`
	// Tasks is the number of sparse tasks run.
	Tasks int `json:"tasks,omitempty"`
	// DenseSlots is the size of the dense array, when the dense path ran.
	DenseSlots uint64 `json:"dense_slots,omitempty"`
	// Duration is the wall time of the call.
	Duration time.Duration `json:"duration_ns"`
}

// StrategyNone is reported when an operand is empty and no algorithm ran.
const StrategyNone = "none"

// Multiplier multiplies term sets over a fixed coefficient ring with fixed
// options. It is safe for concurrent use.
type Multiplier[C any] struct {
	ring coeff.Ring[C]
	opts Options
}

// New returns a Multiplier for ring r. Zero fields of opts take their defaults.
//
// Parameters:
//   - r: The coefficient ring.
//   - opts: The tuning options.
//
// Returns:
//   - *Multiplier[C]: A ready-to-use multiplier.
func New[C any](r coeff.Ring[C], opts Options) *Multiplier[C] {
	if r == nil {
		panic("multiply: the coefficient ring cannot be nil")
	}
	return &Multiplier[C]{ring: r, opts: normalizeOptions(opts)}
}

// Options returns the normalized options.
func (m *Multiplier[C]) Options() Options { return m.opts }

// Ring returns the coefficient ring.
func (m *Multiplier[C]) Ring() coeff.Ring[C] { return m.ring }

// Multiply is a shorthand for New(r, opts).Multiply(ctx, nvars, a, b).
func Multiply[C any](ctx context.Context, r coeff.Ring[C], nvars int, a, b *series.Set[C], opts Options) (*series.Set[C], Report, error) {
	return New(r, opts).Multiply(ctx, nvars, a, b)
}

// Multiply computes the product of a and b, two term sets whose monomials
// have nvars components. The operands are only read.
//
// The call is all-or-nothing. Overflow of the exponent range or of the term
// count is detected before any result is allocated. An error raised by a
// worker stops the others after their current task, the partial result is
// cleared and the error is returned. The context is only checked before the
// accumulation starts.
//
// Parameters:
//   - ctx: The context for tracing and early cancellation.
//   - nvars: The number of symbols.
//   - a, b: The operands.
//
// Returns:
//   - *series.Set[C]: The product, free of zero terms.
//   - Report: How the product was computed.
//   - error: An *apperrors.OverflowError, *apperrors.AllocationError,
//     *apperrors.ConcurrencyError, a coefficient error, or a context error.
func (m *Multiplier[C]) Multiply(ctx context.Context, nvars int, a, b *series.Set[C]) (result *series.Set[C], rep Report, err error) {
	opts := m.opts
	tracer := otel.Tracer("polycalc/multiply")
	ctx, span := tracer.Start(ctx, "Multiply")
	defer span.End()

	start := time.Now()
	rep.Strategy = opts.Strategy
	defer func() {
		rep.Duration = time.Since(start)
		m.observe(span, &rep, err)
	}()

	if err := ctx.Err(); err != nil {
		return nil, rep, err
	}
	if a.Empty() || b.Empty() {
		rep.Strategy = StrategyNone
		empty, err := series.New[C](0)
		return empty, rep, err
	}

	v1, v2 := a.Terms(), b.Terms()
	rep.Candidates, err = candidates(len(v1), len(v2))
	if err != nil {
		return nil, rep, err
	}
	bnds, err := analyzeBounds(v1, v2, nvars)
	if err != nil {
		return nil, rep, err
	}

	j := &job[C]{
		ring:    m.ring,
		opts:    opts,
		v1:      v1,
		v2:      v2,
		bounds:  bnds,
		workers: workerCount(rep.Candidates, opts),
	}
	j.estimate = estimateSize(v1, v2, opts)
	rep.Estimate = j.estimate

	s, err := selectStrategy(j, rep.Candidates)
	if err != nil {
		return nil, rep, err
	}
	rep.Strategy = s.name()
	if err := ctx.Err(); err != nil {
		return nil, rep, err
	}

	dest, st, err := s.multiply(j)
	rep.Workers = st.workers
	rep.Tasks = st.tasks
	rep.DenseSlots = st.denseSlots
	rep.Insertions = st.insertions
	if err == nil {
		err = sanitize(m.ring, dest, st.insertions, st.workers)
	}
	if err != nil {
		if dest != nil {
			dest.Clear()
		}
		return nil, rep, err
	}
	rep.Terms = dest.Size()
	rep.Buckets = dest.BucketCount()
	return dest, rep, nil
}

// observe records metrics, trace attributes and a debug log for one call.
func (m *Multiplier[C]) observe(span trace.Span, rep *Report, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	multiplicationsTotal.WithLabelValues(rep.Strategy, status).Inc()
	multiplicationDuration.WithLabelValues(rep.Strategy).Observe(rep.Duration.Seconds())
	if err == nil {
		resultTerms.Observe(float64(rep.Terms))
		workersUsed.WithLabelValues(rep.Strategy).Observe(float64(rep.Workers))
		if rep.Terms > 0 && rep.Estimate > 0 {
			estimateAccuracy.Observe(float64(rep.Estimate) / float64(rep.Terms))
		}
	}

	span.SetAttributes(
		attribute.String("polycalc.strategy", rep.Strategy),
		attribute.Int("polycalc.workers", rep.Workers),
		attribute.Int64("polycalc.candidates", int64(rep.Candidates)),
		attribute.Int64("polycalc.terms", int64(rep.Terms)),
	)
	fields := []logging.Field{
		logging.String("ring", m.ring.Name()),
		logging.String("strategy", rep.Strategy),
		logging.Int("workers", rep.Workers),
		logging.Uint64("candidates", rep.Candidates),
		logging.Uint64("estimate", rep.Estimate),
		logging.Uint64("terms", rep.Terms),
		logging.Duration("duration", rep.Duration),
		logging.String("status", status),
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		fields = append(fields, logging.Err(err))
	}
	m.opts.Logger.Debug("multiplication completed", fields...)
}
