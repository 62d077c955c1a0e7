package log

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
)

// sensitiveKeys contains attribute keys that should always be sanitized.
var sensitiveKeys = map[string]bool{
	// HTTP headers
	"authorization":       true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"x-auth-token":        true,
	"proxy-authorization": true,

	// Authentication
	"password":      true,
	"passwd":        true,
	"secret":        true,
	"token":         true,
	"api_key":       true,
	"apikey":        true,
	"api-key":       true,
	"access_token":  true,
	"refresh_token": true,

	// Session
	"session":    true,
	"session_id": true,
	"sessionid":  true,
	"sid":        true,

	// Credentials
	"credential":  true,
	"credentials": true,
	"auth":        true,

	// Search terms
	"query":       true,
	"search":      true,
	"search_term": true,
}

// sensitivePatterns contains regex patterns that indicate sensitive values.
// Values matching these patterns will be sanitized regardless of key name.
var sensitivePatterns = []*regexp.Regexp{
	// JWT tokens
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`),

	// Bearer tokens
	regexp.MustCompile(`(?i)^bearer\s+.+`),

	// Basic auth
	regexp.MustCompile(`(?i)^basic\s+[A-Za-z0-9+/=]+$`),
}

// searchParams are the query keys search providers put the user's query in.
// q: Google, Bing, DuckDuckGo, Brave, Startpage, Qwant. p: Yahoo.
// text: Yandex. wd: Baidu. query: Startpage and others.
var searchParams = map[string]bool{
	"q":     true,
	"p":     true,
	"query": true,
	"text":  true,
	"wd":    true,
}

// MaskValue is the string used to replace sensitive values.
const MaskValue = "***REDACTED***"

// PrivacyHandler wraps an slog.Handler so that logs never carry what the
// user searched for or credentials.
//
// Every page nogrok filters is a search results page, and its URL holds
// the query. PrivacyHandler removes search-term parameters from any
// URL-valued attribute and masks attributes whose key or value looks
// sensitive, before passing the record to the underlying handler.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because it works with any underlying handler (text, JSON) and keeps
// every package on the plain *slog.Logger API.
type PrivacyHandler struct {
	// handler is the underlying slog handler that receives sanitized records.
	handler slog.Handler
}

// NewPrivacyHandler creates a new PrivacyHandler wrapping the given handler.
// If handler is nil, slog.Default().Handler() is used.
func NewPrivacyHandler(handler slog.Handler) *PrivacyHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &PrivacyHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrivacyHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle sanitizes the record's attributes and passes it to the underlying handler.
func (h *PrivacyHandler) Handle(ctx context.Context, r slog.Record) error {
	sanitized := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		sanitized.AddAttrs(h.sanitizeAttr(a))
		return true
	})
	return h.handler.Handle(ctx, sanitized)
}

// WithAttrs returns a new handler with the given attributes added.
// Attributes are sanitized before being added.
func (h *PrivacyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sanitizedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		sanitizedAttrs[i] = h.sanitizeAttr(a)
	}
	return &PrivacyHandler{handler: h.handler.WithAttrs(sanitizedAttrs)}
}

// WithGroup returns a new handler with the given group name.
func (h *PrivacyHandler) WithGroup(name string) slog.Handler {
	return &PrivacyHandler{handler: h.handler.WithGroup(name)}
}

// sanitizeAttr sanitizes a single attribute, recursively handling groups.
func (h *PrivacyHandler) sanitizeAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		sanitizedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			sanitizedAttrs[i] = h.sanitizeAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(sanitizedAttrs...)}
	}

	keyLower := strings.ToLower(a.Key)
	if sensitiveKeys[keyLower] || containsSensitiveKeyword(keyLower) {
		return slog.String(a.Key, MaskValue)
	}

	switch a.Value.Kind() {
	case slog.KindString:
		strVal := a.Value.String()
		if isSensitiveValue(strVal) {
			return slog.String(a.Key, MaskValue)
		}
		if stripped, ok := StripSearchTerms(strVal); ok {
			return slog.String(a.Key, stripped)
		}
	case slog.KindAny:
		if u, ok := a.Value.Any().(*url.URL); ok && u != nil {
			stripped, _ := StripSearchTerms(u.String())
			return slog.String(a.Key, stripped)
		}
	}

	return a
}

// StripSearchTerms removes search-term query parameters from an absolute
// URL. It reports whether s was a URL that had any. Other strings are
// returned unchanged.
func StripSearchTerms(s string) (string, bool) {
	if !strings.Contains(s, "?") {
		return s, false
	}
	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() {
		return s, false
	}

	values := u.Query()
	removed := false
	for key := range values {
		if searchParams[strings.ToLower(key)] {
			values.Del(key)
			removed = true
		}
	}
	if !removed {
		return s, false
	}
	u.RawQuery = values.Encode()
	return u.String(), true
}

// containsSensitiveKeyword checks if the key contains sensitive keywords.
// The bare "key" keyword is excluded because it causes false positives
// (e.g., "primary_key", "keyboard").
func containsSensitiveKeyword(key string) bool {
	sensitiveKeywords := []string{
		"password", "passwd", "secret", "token", "auth", "credential",
	}

	for _, keyword := range sensitiveKeywords {
		if strings.Contains(key, keyword) {
			return true
		}
	}
	return false
}

// isSensitiveValue checks if a value matches sensitive patterns.
func isSensitiveValue(value string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}

// NewLogger creates a text slog.Logger with privacy handling.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Warn
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level(verbose),
	}
	return slog.New(NewPrivacyHandler(slog.NewTextHandler(w, opts)))
}

// NewJSONLogger creates a JSON slog.Logger with privacy handling.
// Useful for structured log aggregation.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level(verbose),
	}
	return slog.New(NewPrivacyHandler(slog.NewJSONHandler(w, opts)))
}

func level(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}
