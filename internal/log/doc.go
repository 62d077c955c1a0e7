// Package log provides privacy-preserving logging built on top of the
// standard slog package.
//
// nogrok only ever looks at search results pages, whose URLs contain what
// the user searched for. The PrivacyHandler keeps that out of the logs:
//   - Search-term parameters (q, p, query, text, wd) are removed from
//     URL-valued attributes
//   - Attributes named like credentials or queries are masked
//   - Bearer, Basic and JWT values are masked regardless of key
//
// Even in verbose mode, these values are masked so logs can be shared.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//
//	logger.Debug("session started",
//	    "page", "https://www.google.com/search?q=go&hl=en", // logged as https://www.google.com/search?hl=en
//	)
//
//	slog.SetDefault(logger)
package log
