package pipeline

import (
	"io"
	"path/filepath"

	"github.com/nao1215/nogrok/internal/dom"
	"github.com/nao1215/nogrok/internal/model"
)

// StdinName is the Source of a page read from standard input.
const StdinName = "-"

// Job is one page moving through the pipelines.
type Job struct {
	// Source is the file the page is read from, or StdinName.
	Source string

	// Input overrides Source as the page reader when set.
	Input io.Reader

	// PageURL is the location the page was rendered at. When empty the
	// page's canonical link is used.
	PageURL string

	// Fragments are HTML snippets appended to the page body after the
	// initial scan, one page task each, as a results page loading more
	// entries would.
	Fragments []string

	// Doc is the parsed page, set by LoadStep.
	Doc *dom.Document

	// Report is the session report, set by FilterStep.
	Report *model.FilterReport

	// Output is the file the filtered page was written to, set by
	// WriteStep. It stays empty when the page went to a writer.
	Output string

	// Err is the error that stopped this job, if any.
	Err error

	// Performed lists the names of the steps that ran, in order.
	Performed []string
}

// NewJob creates a job for a page file.
func NewJob(source, pageURL string, fragments ...string) *Job {
	return &Job{
		Source:    source,
		PageURL:   pageURL,
		Fragments: fragments,
		Performed: make([]string, 0),
	}
}

// Name returns the base name used for the job's output file.
func (j *Job) Name() string {
	if j.Source == "" || j.Source == StdinName {
		return "page.html"
	}
	return filepath.Base(j.Source)
}

// Failed reports whether a step stopped the job.
func (j *Job) Failed() bool {
	return j.Err != nil
}
