package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/nogrok/internal/model"
)

// SimpleWriter outputs human-readable text reports.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors so the output stays readable when piped to files or other
// tools.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections without entries are shown.
	showEmpty bool

	// verbose adds the matched URL of every detection.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report of one page in human-readable format.
func (w *SimpleWriter) Write(report *model.FilterReport) (int, error) {
	var sb strings.Builder

	writeBanner(&sb, "NOGROK REPORT")

	sb.WriteString(fmt.Sprintf("Page:      %s\n", report.Page))
	sb.WriteString(fmt.Sprintf("Provider:  %s\n", report.Provider))
	sb.WriteString(fmt.Sprintf("Mode:      %s\n", modeTitle(report.Mode)))
	sb.WriteString(fmt.Sprintf("Target:    %s\n", report.Target))
	sb.WriteString(fmt.Sprintf("Backend:   %s\n", report.Backend))
	sb.WriteString(fmt.Sprintf("Filtered:  %s\n", report.DateFiltered.Format(dateFormat)))
	sb.WriteString("\n")

	writeSection(&sb, "SUMMARY")
	sb.WriteString(fmt.Sprintf("  FLAGGED:  %d (%s)\n", report.Current, modeAction(report.Mode)))
	sb.WriteString(fmt.Sprintf("  DIRECT:   %d\n", report.DirectCount()))
	sb.WriteString(fmt.Sprintf("  REDIRECT: %d\n", report.DecodedCount()))
	sb.WriteString(fmt.Sprintf("  BATCHES:  %d\n", report.Batches))
	sb.WriteString(fmt.Sprintf("  TOTAL:    %d across all runs\n", report.Total))
	sb.WriteString("\n")

	w.writeDetections(&sb, report)
	writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeDetections writes one line per flagged result.
func (w *SimpleWriter) writeDetections(sb *strings.Builder, report *model.FilterReport) {
	if !report.HasDetections() && !w.showEmpty {
		return
	}

	writeSection(sb, "DETECTIONS")
	if !report.HasDetections() {
		sb.WriteString("  No results link to the target\n\n")
		return
	}

	for _, d := range report.Detections {
		marker := "[+]"
		if d.Incremental {
			marker = "[~]"
		}
		sb.WriteString(fmt.Sprintf("  %s %s (%s)\n", marker, d.Container, depthLabel(d.Match)))
		if w.verbose {
			sb.WriteString(fmt.Sprintf("      Match: %s\n", d.Match.Raw))
			if d.Anchor != "" && d.Anchor != d.Match.Raw {
				sb.WriteString(fmt.Sprintf("      Link:  %s\n", d.Anchor))
			}
		}
	}
	sb.WriteString("\n")
}

// WriteStats outputs the persisted counters and recent runs.
func (w *SimpleWriter) WriteStats(stats *model.Stats) (int, error) {
	var sb strings.Builder

	writeBanner(&sb, "NOGROK STATISTICS")

	sb.WriteString(fmt.Sprintf("Backend:   %s\n", stats.Backend))
	sb.WriteString(fmt.Sprintf("Mode:      %s\n", modeTitle(stats.Mode)))
	sb.WriteString(fmt.Sprintf("This page: %d\n", stats.Current))
	sb.WriteString(fmt.Sprintf("Total:     %d\n", stats.Total))
	sb.WriteString("\n")

	if stats.Summary.Runs > 0 || w.showEmpty {
		writeSection(&sb, "HISTORY")
		sb.WriteString(fmt.Sprintf("  RUNS:    %d\n", stats.Summary.Runs))
		sb.WriteString(fmt.Sprintf("  FLAGGED: %d\n", stats.Summary.Flagged))
		sb.WriteString(fmt.Sprintf("  HOSTS:   %d\n", stats.Summary.Hosts))
		sb.WriteString("\n")

		for _, r := range stats.Recent {
			sb.WriteString(fmt.Sprintf("  %s  %-24s %-10s %-5s %3d\n",
				r.Timestamp.Format(dateFormat), r.Host, r.Provider, r.Mode, r.Flagged))
		}
		if len(stats.Recent) > 0 {
			sb.WriteString("\n")
		}
	}

	writeFooter(&sb)
	return w.output.Write([]byte(sb.String()))
}

// writeBanner writes a boxed title.
func writeBanner(sb *strings.Builder, title string) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	pad := (70 - len(title)) / 2
	sb.WriteString(strings.Repeat(" ", pad))
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")
}

// writeSection writes a section heading.
func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// writeFooter writes the report footer.
func writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by nogrok\n")
	sb.WriteString("https://github.com/nao1215/nogrok\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
