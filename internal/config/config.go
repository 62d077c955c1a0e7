package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/nao1215/nogrok/internal/model"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "nogrok"

	// DefaultBatchSize is the number of pages loaded or written at once.
	// Filtering itself is sequential because the total is shared.
	DefaultBatchSize = 10

	// DefaultMaxDrainRounds bounds how many mutation batches one page task
	// may cause before the rest are dropped. Treating a result only ever
	// adds a pill, so real pages settle in two rounds.
	DefaultMaxDrainRounds = 32
)

// Config holds all options of one nogrok invocation.
// It is populated from CLI flags and the config file and passed down
// explicitly rather than kept in global state.
//
// Design decision: We use a single flat struct instead of nested structs
// for simplicity. The number of options is manageable.
type Config struct {
	// Verbose enables debug logging. When false, only warnings and errors
	// are logged.
	Verbose bool

	// BatchSize is the number of pages loaded or written concurrently.
	BatchSize int

	// ConfigFilePath is the path to the configuration file.
	// If empty, .nogrok is searched in the current directory and then in
	// the user's home directory.
	ConfigFilePath string

	// File holds the settings loaded from the configuration file.
	// It is never nil after NewConfig.
	File *File

	// JSONReport selects the JSON report. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects the Markdown report. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When empty, the report is written to stderr so stdout can carry the page.
	ReportFile string

	// OutputDir receives the filtered pages. When empty, pages go to stdout.
	OutputDir string

	// Targets is the list of saved pages to filter ("-" for stdin).
	Targets []string

	// PageURL is the location the pages were rendered at. When empty,
	// each page's canonical link is used.
	PageURL string

	// AppendFiles are HTML fragments appended to every page after the
	// initial scan, in order, as a results page loading more entries would.
	AppendFiles []string

	// Mode, when set, is persisted before filtering starts.
	Mode string

	// DBDir is the directory of the state database.
	// Defaults to the XDG data directory (~/.local/share/nogrok on Linux).
	DBDir string

	// MaxDrainRounds is the livelock guard of the mutation loop.
	MaxDrainRounds int
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because several defaults are non-zero. This also serves as
// documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		File:           &File{},
		DBDir:          XDGDataDir(),
		MaxDrainRounds: DefaultMaxDrainRounds,
	}
}

// XDGDataDir returns the XDG data directory for nogrok.
// On Linux: ~/.local/share/nogrok
// On macOS: ~/Library/Application Support/nogrok
// On Windows: %LOCALAPPDATA%\nogrok
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for nogrok.
// On Linux: ~/.config/nogrok
// On macOS: ~/Library/Application Support/nogrok
// On Windows: %APPDATA%\nogrok
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast with clear messages, before any page is read
// or any state is written.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.MaxDrainRounds <= 0 {
		return ErrInvalidDrainRounds
	}

	if c.Mode != "" {
		if _, err := model.ParseMode(c.Mode); err != nil {
			return err
		}
	}

	if c.File != nil {
		return c.File.Validate()
	}
	return nil
}
