package calibration

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/agbru/polycalc/internal/cli"
)

// formatTrial renders a trial duration, or N/A when it did not run.
func formatTrial(ran bool, d time.Duration) string {
	if !ran {
		return fmt.Sprintf("%sN/A%s", cli.ColorRed(), cli.ColorReset())
	}
	return cli.FormatExecutionDuration(d)
}

// printCalibrationResults formats and prints the calibration tables.
func printCalibrationResults(out io.Writer, res Result) {
	fmt.Fprintf(out, "\n--- Calibration Summary ---\n")
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "  Degree\t│ Products/term\t│ Dense\t│ Sparse\t│ Faster\n")
	fmt.Fprintf(tw, "  %s\t┼%s\t┼%s\t┼%s\t┼%s\n",
		strings.Repeat("─", 6), strings.Repeat("─", 14), strings.Repeat("─", 10), strings.Repeat("─", 10), strings.Repeat("─", 8))
	for _, pt := range res.Points {
		winner := fmt.Sprintf("%ssparse%s", cli.ColorCyan(), cli.ColorReset())
		if pt.DenseWins() {
			winner = fmt.Sprintf("%sdense%s", cli.ColorGreen(), cli.ColorReset())
		}
		fmt.Fprintf(tw, "  %d\t│ %.1f\t│ %s\t│ %s\t│ %s\n",
			pt.Degree, pt.Ratio,
			formatTrial(pt.DenseErr == nil, pt.Dense), formatTrial(true, pt.Sparse),
			winner)
	}
	tw.Flush()

	if len(res.WorkerTimings) == 0 {
		return
	}
	workers := make([]int, 0, len(res.WorkerTimings))
	for w := range res.WorkerTimings {
		workers = append(workers, w)
	}
	slices.Sort(workers)

	fmt.Fprintf(out, "\n--- Worker Scaling (sparse) ---\n")
	tw = tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "  Workers\t│ Time\n")
	for _, w := range workers {
		highlight := ""
		if w == res.Workers {
			highlight = fmt.Sprintf(" %s(Optimal)%s", cli.ColorGreen(), cli.ColorReset())
		}
		fmt.Fprintf(tw, "  %d\t│ %s%s%s%s\n", w, cli.ColorYellow(),
			cli.FormatExecutionDuration(res.WorkerTimings[w]), cli.ColorReset(), highlight)
	}
	tw.Flush()
}
