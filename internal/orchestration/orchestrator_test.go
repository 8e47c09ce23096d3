package orchestration_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"

	"github.com/agbru/polycalc/internal/coeff"
	apperrors "github.com/agbru/polycalc/internal/errors"
	"github.com/agbru/polycalc/internal/multiply"
	"github.com/agbru/polycalc/internal/orchestration"
	"github.com/agbru/polycalc/internal/orchestration/mocks"
	"github.com/agbru/polycalc/internal/polynomial"
	"github.com/agbru/polycalc/internal/symbols"
	"github.com/agbru/polycalc/internal/workload"
)

func mockEngine(ctrl *gomock.Controller, name string, outcome orchestration.Outcome, err error) *mocks.MockEngine {
	m := mocks.NewMockEngine(ctrl)
	m.EXPECT().Name().Return(name).AnyTimes()
	m.EXPECT().Run(gomock.Any()).Return(outcome, err).Times(1)
	return m
}

func TestExecuteCalculations(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	engines := []orchestration.Engine{
		mockEngine(ctrl, "dense", orchestration.Outcome{Terms: 3, Digest: 7}, nil),
		mockEngine(ctrl, "sparse", orchestration.Outcome{}, errors.New("mock error")),
	}
	results := orchestration.ExecuteCalculations(context.Background(), engines, nil)

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Name != "dense" || results[0].Err != nil || results[0].Outcome.Digest != 7 {
		t.Errorf("unexpected first result: %+v", results[0])
	}
	if results[1].Name != "sparse" || results[1].Err == nil {
		t.Errorf("unexpected second result: %+v", results[1])
	}
}

func TestExecuteCalculations_WithProgress(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	engines := []orchestration.Engine{
		mockEngine(ctrl, "dense", orchestration.Outcome{Terms: 1}, nil),
	}
	var buf bytes.Buffer
	results := orchestration.ExecuteCalculations(context.Background(), engines, &buf)
	if len(results) != 1 || results[0].Err != nil {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestAnalyzeComparisonResults(t *testing.T) {
	t.Parallel()
	ok := func(name string, digest uint64, d time.Duration) orchestration.CalculationResult {
		return orchestration.CalculationResult{Name: name, Outcome: orchestration.Outcome{Terms: 5, Digest: digest}, Duration: d}
	}
	failed := func(name string, err error) orchestration.CalculationResult {
		return orchestration.CalculationResult{Name: name, Err: err}
	}

	tests := []struct {
		name     string
		results  []orchestration.CalculationResult
		wantCode int
		contains string
	}{
		{
			name:     "all agree",
			results:  []orchestration.CalculationResult{ok("sparse", 42, 2*time.Millisecond), ok("dense", 42, time.Millisecond)},
			wantCode: apperrors.ExitSuccess,
			contains: "digest 000000000000002a",
		},
		{
			name:     "mismatch",
			results:  []orchestration.CalculationResult{ok("sparse", 42, time.Millisecond), ok("dense", 43, time.Millisecond)},
			wantCode: apperrors.ExitErrorMismatch,
			contains: "CRITICAL ERROR",
		},
		{
			name: "one failure is tolerated",
			results: []orchestration.CalculationResult{
				failed("dense", apperrors.NewAllocationError(1<<40, nil)),
				ok("sparse", 1, time.Millisecond),
			},
			wantCode: apperrors.ExitSuccess,
			contains: "Failure",
		},
		{
			name: "all overflow",
			results: []orchestration.CalculationResult{
				failed("dense", apperrors.NewOverflowError("bounds", 0, "too wide")),
				failed("sparse", apperrors.NewOverflowError("bounds", 0, "too wide")),
			},
			wantCode: apperrors.ExitErrorOverflow,
			contains: "No strategy could complete",
		},
		{
			name:     "timeout",
			results:  []orchestration.CalculationResult{failed("sparse", context.DeadlineExceeded)},
			wantCode: apperrors.ExitErrorTimeout,
			contains: "Timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			code := orchestration.AnalyzeComparisonResults(tt.results, &buf)
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d\n%s", code, tt.wantCode, buf.String())
			}
			if !strings.Contains(buf.String(), tt.contains) {
				t.Errorf("output should contain %q:\n%s", tt.contains, buf.String())
			}
		})
	}
}

func TestAnalyzeComparisonResults_SortsSuccessesFirst(t *testing.T) {
	t.Parallel()
	results := []orchestration.CalculationResult{
		{Name: "dense", Err: errors.New("boom")},
		{Name: "schoolbook", Duration: 3 * time.Millisecond},
		{Name: "sparse", Duration: time.Millisecond},
	}
	orchestration.AnalyzeComparisonResults(results, &bytes.Buffer{})
	got := []string{results[0].Name, results[1].Name, results[2].Name}
	want := []string{"sparse", "schoolbook", "dense"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestStrategyEngines_Agree(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	pair, err := workload.Build[int64](ctx, workload.Fateman, coeff.Int64{}, workload.Params{Degree: 3})
	if err != nil {
		t.Fatal(err)
	}

	var engines []orchestration.Engine
	var typed []*orchestration.StrategyEngine[int64]
	for _, s := range multiply.StrategyNames() {
		e := orchestration.NewStrategyEngine(s, pair.A, pair.B, multiply.Options{Workers: 3})
		engines = append(engines, e)
		typed = append(typed, e)
	}
	results := orchestration.ExecuteCalculations(ctx, engines, nil)
	for _, r := range results {
		if r.Err != nil {
			t.Fatalf("%s failed: %v", r.Name, r.Err)
		}
		if r.Outcome.Report.Strategy != r.Name {
			t.Errorf("%s reported strategy %s", r.Name, r.Outcome.Report.Strategy)
		}
	}
	if code := orchestration.AnalyzeComparisonResults(results, &bytes.Buffer{}); code != apperrors.ExitSuccess {
		t.Errorf("strategies disagree, exit code %d", code)
	}
	for _, e := range typed[1:] {
		if !e.Product().Equal(typed[0].Product()) {
			t.Errorf("%s and %s products differ", e.Name(), typed[0].Name())
		}
	}
}

func TestDigest(t *testing.T) {
	t.Parallel()
	syms := symbols.New("x", "y")

	build := func(r coeff.Ring[float64], terms [][3]float64) *polynomial.Polynomial[float64] {
		p, err := polynomial.New(r, syms)
		if err != nil {
			t.Fatal(err)
		}
		for _, term := range terms {
			if err := p.AddTerm(term[0], int64(term[1]), int64(term[2])); err != nil {
				t.Fatal(err)
			}
		}
		return p
	}

	a := build(coeff.Float64{}, [][3]float64{{1, 0, 0}, {2, 1, 0}, {3, 0, 1}})
	b := build(coeff.Float64{}, [][3]float64{{3, 0, 1}, {1, 0, 0}, {2 + 1e-15, 1, 0}})
	if orchestration.Digest(a) != orchestration.Digest(b) {
		t.Error("float digests should ignore insertion order and rounding")
	}
	c := build(coeff.Float64{}, [][3]float64{{1, 0, 0}, {2, 1, 0}, {3, 0, 2}})
	if orchestration.Digest(a) == orchestration.Digest(c) {
		t.Error("different monomials must change the digest")
	}

	ip, _ := polynomial.New[int64](coeff.Int64{}, syms)
	iq, _ := polynomial.New[int64](coeff.Int64{}, syms)
	_ = ip.AddTerm(2, 1, 0)
	_ = iq.AddTerm(3, 1, 0)
	if orchestration.Digest(ip) == orchestration.Digest(iq) {
		t.Error("exact digests must cover the coefficients")
	}
	if got := orchestration.FormatDigest(255); got != "00000000000000ff" {
		t.Errorf("FormatDigest(255) = %s", got)
	}
}
