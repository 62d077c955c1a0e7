package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/nogrok/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report of one page in Markdown format.
func (w *MarkdownWriter) Write(report *model.FilterReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("nogrok Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Page", "`" + report.Page + "`"},
			{"Provider", report.Provider},
			{"Mode", modeTitle(report.Mode)},
			{"Target", "`" + report.Target + "`"},
			{"Backend", report.Backend},
			{"Filtered", report.DateFiltered.Format(dateFormat)},
		},
	})
	md.PlainText("")

	w.writeSummary(md, report)
	w.writeDetections(md, report)
	writeMarkdownFooter(md)

	return len(md.String()), md.Build()
}

// writeSummary writes the counters, the depth chart and an alert.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.FilterReport) {
	md.H2("Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Counter", "Value"},
		Rows: [][]string{
			{"Flagged on this page", strconv.Itoa(report.Current)},
			{"Direct links", strconv.Itoa(report.DirectCount())},
			{"Redirect links", strconv.Itoa(report.DecodedCount())},
			{"Mutation batches", strconv.Itoa(report.Batches)},
			{"**Total**", "**" + strconv.Itoa(report.Total) + "**"},
		},
	})
	md.PlainText("")

	if report.HasDetections() {
		w.writePieChart(md, report)
		md.Notef("%d result(s) linking to %s were %s.",
			len(report.Detections), report.Target, modeAction(report.Mode))
	} else {
		md.Tip("No results on this page link to " + report.Target + ".")
	}
	md.PlainText("")
}

// writePieChart writes a mermaid pie chart of direct versus redirect matches.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.FilterReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Detections by Link Type"),
		piechart.WithShowData(true),
	)

	if n := report.DirectCount(); n > 0 {
		chart.LabelAndIntValue("Direct", uint64(n))
	}
	if n := report.DecodedCount(); n > 0 {
		chart.LabelAndIntValue("Redirect", uint64(n))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeDetections writes a table of flagged results.
func (w *MarkdownWriter) writeDetections(md *markdown.Markdown, report *model.FilterReport) {
	md.H2("Detections")
	md.PlainText("")

	if !report.HasDetections() {
		md.PlainText("No results were flagged.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Detections))
	for i, d := range report.Detections {
		when := "initial"
		if d.Incremental {
			when = "added later"
		}
		rows[i] = []string{
			"`" + d.Container + "`",
			depthLabel(d.Match),
			truncateString(d.Match.Raw, 60),
			when,
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Container", "Link", "Destination", "Seen"},
		Rows:   rows,
	})
	md.PlainText("")
}

// WriteStats outputs the persisted counters and run history in Markdown.
func (w *MarkdownWriter) WriteStats(stats *model.Stats) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("nogrok Statistics")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Backend", stats.Backend},
			{"Mode", modeTitle(stats.Mode)},
			{"Flagged on last page", strconv.Itoa(stats.Current)},
			{"**Total**", "**" + strconv.Itoa(stats.Total) + "**"},
		},
	})
	md.PlainText("")

	md.H2("History")
	md.PlainText("")

	if stats.Summary.Runs == 0 {
		md.PlainText("No runs recorded.")
		md.PlainText("")
		writeMarkdownFooter(md)
		return len(md.String()), md.Build()
	}

	md.BulletList(
		fmt.Sprintf("Runs: %d", stats.Summary.Runs),
		fmt.Sprintf("Results flagged: %d", stats.Summary.Flagged),
		fmt.Sprintf("Distinct hosts: %d", stats.Summary.Hosts),
	)
	md.PlainText("")

	if len(stats.Recent) > 0 {
		rows := make([][]string, len(stats.Recent))
		for i, r := range stats.Recent {
			rows[i] = []string{
				r.Timestamp.Format(dateFormat),
				r.Host,
				r.Provider,
				modeTitle(r.Mode),
				strconv.Itoa(r.Flagged),
				strconv.Itoa(r.Total),
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Date", "Host", "Provider", "Mode", "Flagged", "Total"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	writeMarkdownFooter(md)
	return len(md.String()), md.Build()
}

// writeMarkdownFooter writes the report footer.
func writeMarkdownFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [nogrok](https://github.com/nao1215/nogrok)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
