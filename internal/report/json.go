package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/nogrok/internal/model"
)

// JSONWriter outputs reports in JSON format.
// This format is designed for tool integration and programmatic processing.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because the report types are plain structs with tags and
// nothing in the output needs streaming or custom codecs.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string

	// version, when set, wraps every document with the tool version.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithVersion wraps output in an envelope carrying version.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Envelope wraps a document with the version that produced it.
//
// Design decision: We wrap rather than add a version field to the model
// types so the core structures stay free of output concerns.
type Envelope struct {
	// Version is the nogrok version that generated this document.
	Version string `json:"version"`

	// Report is set for page reports.
	Report *model.FilterReport `json:"report,omitempty"`

	// Stats is set for stats documents.
	Stats *model.Stats `json:"stats,omitempty"`
}

// Write outputs the page report in JSON format.
func (w *JSONWriter) Write(report *model.FilterReport) (int, error) {
	if w.version != "" {
		return w.writeJSON(&Envelope{Version: w.version, Report: report})
	}
	return w.writeJSON(report)
}

// WriteStats outputs the stats in JSON format.
func (w *JSONWriter) WriteStats(stats *model.Stats) (int, error) {
	if w.version != "" {
		return w.writeJSON(&Envelope{Version: w.version, Stats: stats})
	}
	return w.writeJSON(stats)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}
