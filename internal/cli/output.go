package cli

import (
	"encoding/json"
	"fmt"
	"io"

	apperrors "github.com/agbru/polycalc/internal/errors"
	"github.com/agbru/polycalc/internal/multiply"
)

// CLIColorProvider feeds the current theme to apperrors.HandleCalculationError.
type CLIColorProvider struct{}

var _ apperrors.ColorProvider = CLIColorProvider{}

// Yellow returns the warning color.
func (CLIColorProvider) Yellow() string { return ColorYellow() }

// Reset returns the reset code.
func (CLIColorProvider) Reset() string { return ColorReset() }

// Summary is the machine-readable outcome of a run, printed by -json.
type Summary struct {
	Workload string          `json:"workload"`
	Ring     string          `json:"ring"`
	Symbols  []string        `json:"symbols"`
	TermsA   int             `json:"terms_a"`
	TermsB   int             `json:"terms_b"`
	Report   multiply.Report `json:"report"`
	Digest   string          `json:"digest"`
	Product  string          `json:"product,omitempty"`
}

// WriteJSON prints s as indented JSON.
func WriteJSON(out io.Writer, s Summary) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// DisplayOperands prints the sizes of the two operands.
func DisplayOperands(out io.Writer, s Summary) {
	fmt.Fprintf(out, "Workload %s%s%s over %s%s%s, symbols %v\n",
		ColorBold(), s.Workload, ColorReset(), ColorCyan(), s.Ring, ColorReset(), s.Symbols)
	fmt.Fprintf(out, "Operands: %s%s%s × %s%s%s terms\n",
		ColorCyan(), formatCount(s.TermsA), ColorReset(), ColorCyan(), formatCount(s.TermsB), ColorReset())
}

// DisplayReport prints how a product was computed.
//
// Parameters:
//   - out: The output writer.
//   - rep: The multiplication report.
//   - details: Also print the internal counters (estimate, buckets, tasks).
func DisplayReport(out io.Writer, rep multiply.Report, details bool) {
	duration := FormatExecutionDuration(rep.Duration)
	if rep.Duration == 0 {
		duration = "< 1µs"
	}
	fmt.Fprintf(out, "Strategy: %s%s%s with %d worker(s) in %s%s%s\n",
		ColorBlue(), rep.Strategy, ColorReset(), rep.Workers, ColorGreen(), duration, ColorReset())
	fmt.Fprintf(out, "Product: %s%s%s terms from %s term products\n",
		ColorCyan(), formatCount(rep.Terms), ColorReset(), formatCount(rep.Candidates))
	if !details {
		return
	}
	fmt.Fprintf(out, "\n%s--- Details ---%s\n", ColorBold(), ColorReset())
	fmt.Fprintf(out, "Estimated terms : %s\n", formatCount(rep.Estimate))
	fmt.Fprintf(out, "Buckets         : %s\n", formatCount(rep.Buckets))
	fmt.Fprintf(out, "Insertions      : %s\n", formatCount(rep.Insertions))
	if rep.Tasks > 0 {
		fmt.Fprintf(out, "Sparse tasks    : %s\n", formatCount(rep.Tasks))
	}
	if rep.DenseSlots > 0 {
		fmt.Fprintf(out, "Dense slots     : %s\n", formatCount(rep.DenseSlots))
	}
}

// DisplayPolynomial prints the product text, truncated to its edges unless
// verbose is set.
func DisplayPolynomial(out io.Writer, text string, verbose bool) {
	fmt.Fprintf(out, "\n%s--- Product ---%s\n", ColorBold(), ColorReset())
	if verbose || len(text) <= TruncationLimit {
		fmt.Fprintf(out, "%s%s%s\n", ColorGreen(), text, ColorReset())
		return
	}
	fmt.Fprintf(out, "%s%s ... %s%s\n", ColorGreen(), text[:DisplayEdges], text[len(text)-DisplayEdges:], ColorReset())
	fmt.Fprintf(out, "(Tip: use the %s-v%s option to display the full product)\n", ColorYellow(), ColorReset())
}

// DisplayQuietResult prints a single line for scripts: the strategy, the
// term count, the duration in nanoseconds and the digest.
func DisplayQuietResult(out io.Writer, rep multiply.Report, digest string) {
	fmt.Fprintf(out, "%s %d %d %s\n", rep.Strategy, rep.Terms, rep.Duration.Nanoseconds(), digest)
}

// DisplaySaved confirms that the product was written to path.
func DisplaySaved(out io.Writer, path string) {
	fmt.Fprintf(out, "\n%s✓ Product saved to: %s%s%s\n", ColorGreen(), ColorCyan(), path, ColorReset())
}
