package report

import (
	"io"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/nogrok/internal/model"
)

// Writer defines the interface for report output.
// Implementations write filter results in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or both
// with the same API.
type Writer interface {
	// Write outputs the report of one filtered page.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.FilterReport) (int, error)

	// WriteStats outputs the persisted counters and run history.
	WriteStats(stats *model.Stats) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *model.FilterReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteStats outputs the stats to all configured Writers.
func (m *MultiWriter) WriteStats(stats *model.Stats) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteStats(stats)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// modeTitle returns the display name of a mode, e.g. "Gray".
// A Caser keeps state between calls, so each call builds its own.
func modeTitle(mode model.Mode) string {
	return cases.Title(language.English).String(string(mode))
}

// modeAction describes what the mode did to flagged results.
func modeAction(mode model.Mode) string {
	switch mode {
	case model.ModeHide:
		return "hidden"
	case model.ModeGray:
		return "grayed out"
	case model.ModeKeep:
		return "left visible"
	default:
		return "flagged"
	}
}

// depthLabel names the match depth of a detection.
func depthLabel(c model.CandidateURL) string {
	if c.Decoded() {
		return "redirect"
	}
	return "direct"
}

// dateFormat is the timestamp layout used by the text formats.
const dateFormat = "2006-01-02 15:04:05 MST"
