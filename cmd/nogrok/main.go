// Package main provides the entry point for the nogrok CLI.
//
// nogrok filters saved search results pages: results that link to the
// target domain (default "grokipedia"), directly or through a redirect
// parameter, are hidden, grayed out or kept, and the treated results are
// counted across runs.
//
// Usage:
//
//	nogrok filter --url https://www.google.com/search?q=go results.html
//	nogrok mode gray
//	nogrok stats
//
// See --help for all available options.
package main

func main() {
	Execute()
}
