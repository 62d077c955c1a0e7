package provider

import (
	"strings"

	"github.com/nao1215/nogrok/internal/dom"
	"golang.org/x/net/html"
)

// DefaultName is the name of the generic strategy used for unknown hosts.
const DefaultName = "default"

// Strategy describes how one search provider wraps its results.
//
// Design decision: A Strategy is plain data. The resolution logic lives in
// Container and is the same for every provider, so user-defined providers
// from the configuration file behave exactly like the built-in ones.
type Strategy struct {
	// Name identifies the provider in reports and logs.
	Name string

	// Host is a substring matched against the lower-cased page host.
	Host string

	// Patterns are CSS selectors of result containers.
	Patterns []string

	// Outer is an optional wrapper selector. When set, the nearest ancestor
	// matching it replaces the inner match.
	Outer string

	// Ordered makes Patterns a priority list: the first pattern that has a
	// matching ancestor wins. Otherwise the nearest ancestor matching any
	// pattern wins.
	Ordered bool
}

// IsDefault reports whether s is the generic fallback strategy. A strategy
// with a host or patterns is never the fallback, whatever its name.
func (s Strategy) IsDefault() bool {
	return s.Name == DefaultName && s.Host == "" && len(s.Patterns) == 0 && s.Outer == ""
}

// Matches reports whether the strategy serves host.
func (s Strategy) Matches(host string) bool {
	if s.Host == "" {
		return false
	}
	return strings.Contains(strings.ToLower(host), strings.ToLower(s.Host))
}

// Container returns the result container for anchor, or nil when none of
// the strategy's selectors match an ancestor.
func (s Strategy) Container(anchor *html.Node) *html.Node {
	if !dom.IsElement(anchor) {
		return nil
	}

	var inner *html.Node
	switch {
	case len(s.Patterns) == 0:
	case s.Ordered:
		for _, p := range s.Patterns {
			if inner = dom.Closest(anchor, p); inner != nil {
				break
			}
		}
	default:
		inner = dom.Closest(anchor, strings.Join(s.Patterns, ", "))
	}

	if s.Outer == "" {
		return inner
	}
	from := inner
	if from == nil {
		from = anchor
	}
	if outer := dom.Closest(from, s.Outer); outer != nil {
		return outer
	}
	return inner
}

// Builtins returns the built-in provider strategies in registration order.
func Builtins() []Strategy {
	return []Strategy{
		{
			Name:     "google",
			Host:     "google.",
			Patterns: []string{"div.MjjYud", "div.g", "div[data-sokoban-container]", "div#search div[data-hveid]"},
		},
		{
			Name:     "bing",
			Host:     "bing.com",
			Patterns: []string{"li.b_algo", "li.b_ans", "div.b_algo", "li.b_srt"},
		},
		{
			Name:     "duckduckgo",
			Host:     "duckduckgo.com",
			Patterns: []string{"li[data-layout]", "article[data-testid='result']", "article[data-nr]", "div.result", "div.web-result"},
		},
		{
			Name:     "brave",
			Host:     "search.brave.com",
			Patterns: []string{"div.snippet", "div.snippet-card", "div.result", "div.result-wrapper", "div.fdb", "div.card"},
		},
		{
			Name:     "startpage",
			Host:     "startpage.com",
			Patterns: []string{"div.w-gl__result", "section.w-gl", "div.result", "li.result", "div.w-gl__result__main", "div.w-gl"},
		},
		{
			// Qwant marks the whole result block with iwb-detected around
			// the web result card.
			Name:     "qwant",
			Host:     "qwant.com",
			Patterns: []string{"div[data-testid='webResult']", "div._0IJFK[data-testid='webResult']", "div[data-testid='SERVariant-A']"},
			Outer:    "div.iwb-detected",
			Ordered:  true,
		},
	}
}

// Default returns the generic strategy.
func Default() Strategy {
	return Strategy{Name: DefaultName}
}
