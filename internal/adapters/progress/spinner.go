package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/trebuchet-org/emerald/internal/domain"
	"github.com/trebuchet-org/emerald/internal/usecase"
)

// SpinnerSink reports progress on stderr with a spinner while a step is
// waiting, and one line per finished artifact.
type SpinnerSink struct {
	out            io.Writer
	spinner        *spinner.Spinner
	stageStartTime time.Time
}

// NewSpinnerSink creates a new spinner-based progress sink writing to w
func NewSpinnerSink(w io.Writer) *SpinnerSink {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.HideCursor = false

	return &SpinnerSink{
		out:     w,
		spinner: s,
	}
}

// NewSink picks the spinner sink for terminals and the no-op sink otherwise
func NewSink(nonInteractive bool) usecase.ProgressSink {
	if nonInteractive || !isatty.IsTerminal(os.Stderr.Fd()) {
		return NewNopSink()
	}
	return NewSpinnerSink(os.Stderr)
}

// OnProgress handles progress events
func (r *SpinnerSink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	outcome, isArtifact := event.Metadata.(domain.ArtifactOutcome)
	if !isArtifact {
		r.onStep(event)
		return
	}

	prefix := fmt.Sprintf("[%d/%d] %s", event.Current, event.Total, outcome.ContractName)
	if outcome.ContractName == "" {
		prefix = fmt.Sprintf("[%d/%d] %s", event.Current, event.Total, outcome.Location)
	}

	switch outcome.State {
	case domain.StatePending:
		r.stageStartTime = time.Now()
	case domain.StateSubmitted:
		r.start(fmt.Sprintf("%s waiting for %s", prefix, shortHash(outcome.TransactionHash)))
	case domain.StateConfirmed:
		r.stop()
	case domain.StatePersisted:
		r.stop()
		fmt.Fprintf(r.out, "%s %s %s %s\n",
			color.GreenString("✓"),
			prefix,
			color.CyanString(outcome.Address),
			color.New(color.Faint).Sprintf("(%s)", time.Since(r.stageStartTime).Round(time.Millisecond)),
		)
	case domain.StateSkipped:
		r.stop()
		fmt.Fprintf(r.out, "%s %s %s\n",
			color.New(color.FgWhite, color.Faint).Sprint("⊘"),
			prefix,
			color.New(color.Faint).Sprintf("already deployed at %s", outcome.Address),
		)
	case domain.StateFailed:
		r.stop()
		fmt.Fprintf(r.out, "%s %s\n", color.RedString("✗"), prefix)
	}
}

func (r *SpinnerSink) onStep(event usecase.ProgressEvent) {
	if event.Spinner {
		r.start(event.Message)
		return
	}
	r.stop()
}

func (r *SpinnerSink) start(message string) {
	r.spinner.Suffix = " " + message
	if !r.spinner.Active() {
		r.spinner.Start()
	}
}

func (r *SpinnerSink) stop() {
	if r.spinner.Active() {
		r.spinner.Stop()
	}
}

// Info prints an info message
func (r *SpinnerSink) Info(message string) {
	r.printPaused(color.New(color.FgCyan), message)
}

// Error prints an error message
func (r *SpinnerSink) Error(message string) {
	r.printPaused(color.New(color.FgRed), message)
}

// printPaused stops the spinner while message is written
func (r *SpinnerSink) printPaused(c *color.Color, message string) {
	wasActive := r.spinner.Active()
	if wasActive {
		r.spinner.Stop()
	}

	c.Fprintln(r.out, message)

	if wasActive {
		r.spinner.Start()
	}
}

func shortHash(hash string) string {
	if len(hash) <= 14 {
		return hash
	}
	return hash[:10] + "…" + hash[len(hash)-4:]
}

// Ensure SpinnerSink implements ProgressSink
var _ usecase.ProgressSink = (*SpinnerSink)(nil)
