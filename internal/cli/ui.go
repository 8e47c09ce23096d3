// The cli package renders the polycalc command-line output: a spinner while
// multiplications run, the multiplication reports, and the product itself.
package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/polycalc/internal/ui"
)

// FormatExecutionDuration formats a time.Duration for display.
// It shows microseconds for durations less than a millisecond, milliseconds for
// durations less than a second, and the default string representation otherwise.
//
// Parameters:
//   - d: The duration to format.
//
// Returns:
//   - string: A formatted string representing the duration.
func FormatExecutionDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	} else if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.String()
}

const (
	// TruncationLimit is the length from which a printed polynomial is
	// truncated in standard output.
	TruncationLimit = 200
	// DisplayEdges is the number of characters kept at each end of a
	// truncated polynomial.
	DisplayEdges = 60
	// ProgressRefreshRate is the refresh period of the spinner.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth is the width in characters of the progress bar.
	ProgressBarWidth = 30
)

// Color functions return ANSI escape codes from the current theme.

// ColorReset returns the reset escape code from the current theme.
func ColorReset() string { return ui.GetCurrentTheme().Reset }

// ColorRed returns the error color from the current theme.
func ColorRed() string { return ui.GetCurrentTheme().Error }

// ColorGreen returns the success color from the current theme.
func ColorGreen() string { return ui.GetCurrentTheme().Success }

// ColorYellow returns the warning color from the current theme.
func ColorYellow() string { return ui.GetCurrentTheme().Warning }

// ColorBlue returns the primary color from the current theme.
func ColorBlue() string { return ui.GetCurrentTheme().Primary }

// ColorCyan returns the secondary color from the current theme.
func ColorCyan() string { return ui.GetCurrentTheme().Secondary }

// ColorBold returns the bold escape code from the current theme.
func ColorBold() string { return ui.GetCurrentTheme().Bold }

// Spinner abstracts a terminal spinner so that DisplayProgress can be tested
// without a terminal.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation.
	Stop()
	// UpdateSuffix sets the text that is displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner adapts *spinner.Spinner to Spinner.
type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }

func (rs *realSpinner) Stop() { rs.s.Stop() }

func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// Completion reports that one of the concurrent multiplications finished.
type Completion struct {
	// Name is the strategy or engine name.
	Name string
	// Err is the error the engine returned, if any.
	Err error
}

// progressBar renders a textual progress bar.
//
// Parameters:
//   - progress: The normalized progress value (0.0 to 1.0).
//   - length: The total character width of the progress bar.
//
// Returns:
//   - string: A string representation of the progress bar.
func progressBar(progress float64, length int) string {
	progress = min(max(progress, 0), 1)
	count := int(progress * float64(length))
	var builder strings.Builder
	builder.Grow(length * 3)
	for i := range length {
		if i < count {
			builder.WriteRune('█')
		} else {
			builder.WriteRune('░')
		}
	}
	return builder.String()
}

// DisplayProgress shows a spinner with the number of finished engines and
// the elapsed time until done is closed. It runs in its own goroutine.
//
// Parameters:
//   - wg: Signaled when the display routine returns.
//   - done: Receives one Completion per finished engine.
//   - total: The number of engines running.
//   - out: The io.Writer the spinner is rendered to.
func DisplayProgress(wg *sync.WaitGroup, done <-chan Completion, total int, out io.Writer) {
	defer wg.Done()
	if total <= 0 {
		for range done {
		}
		return
	}

	start := time.Now()
	finished := 0
	suffix := func() string {
		return fmt.Sprintf(" Multiplying: %d/%d [%s] %s", finished, total,
			progressBar(float64(finished)/float64(total), ProgressBarWidth),
			FormatExecutionDuration(time.Since(start).Truncate(time.Millisecond)))
	}

	s := newSpinner(spinner.WithWriter(out))
	s.UpdateSuffix(suffix())
	s.Start()
	defer s.Stop()

	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()

	for {
		select {
		case _, ok := <-done:
			if !ok {
				return
			}
			finished++
			s.UpdateSuffix(suffix())
		case <-ticker.C:
			s.UpdateSuffix(suffix())
		}
	}
}

// formatNumberString inserts thousand separators into a numeric string.
//
// Parameters:
//   - s: The numeric string to format.
//
// Returns:
//   - string: The formatted string with comma separators.
func formatNumberString(s string) string {
	if len(s) == 0 {
		return ""
	}
	prefix := ""
	if s[0] == '-' {
		prefix = "-"
		s = s[1:]
	}
	n := len(s)
	if n <= 3 {
		return prefix + s
	}

	numSeparators := (n - 1) / 3
	var builder strings.Builder
	builder.Grow(len(prefix) + n + numSeparators)
	builder.WriteString(prefix)

	firstGroupLen := n % 3
	if firstGroupLen == 0 {
		firstGroupLen = 3
	}
	builder.WriteString(s[:firstGroupLen])
	for i := firstGroupLen; i < n; i += 3 {
		builder.WriteByte(',')
		builder.WriteString(s[i : i+3])
	}
	return builder.String()
}

// formatCount formats an unsigned count with thousand separators.
func formatCount[T ~int | ~uint64](v T) string {
	return formatNumberString(fmt.Sprintf("%d", v))
}
