package provider

import (
	"github.com/nao1215/nogrok/internal/dom"
	"golang.org/x/net/html"
)

// fallbackTags are tried in order for pages without a known provider.
var fallbackTags = []string{"article", "li", "div"}

// Locator finds the result container of a link using one strategy.
type Locator struct {
	strategy Strategy
}

// NewLocator creates a Locator for strategy.
func NewLocator(strategy Strategy) *Locator {
	return &Locator{strategy: strategy}
}

// Strategy returns the strategy in use.
func (l *Locator) Strategy() Strategy {
	return l.strategy
}

// Locate returns the container of anchor, or nil.
//
// Design decision: Only the default strategy falls back to generic tags.
// On a known provider a link outside every result pattern belongs to the
// page chrome (navigation, footer), and hiding its nearest div would hide
// the wrong thing.
func (l *Locator) Locate(anchor *html.Node) *html.Node {
	if !dom.IsElement(anchor) {
		return nil
	}
	if !l.strategy.IsDefault() {
		return l.strategy.Container(anchor)
	}

	if c := l.strategy.Container(anchor); c != nil {
		return c
	}
	for _, tag := range fallbackTags {
		if c := dom.Closest(anchor, tag); c != nil {
			return c
		}
	}
	return dom.ParentElement(anchor)
}
