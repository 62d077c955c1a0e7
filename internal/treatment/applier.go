package treatment

import (
	"github.com/nao1215/nogrok/internal/dom"
	"github.com/nao1215/nogrok/internal/model"
	"golang.org/x/net/html"
)

// Class names and attributes written into the page.
const (
	// FlagClass marks a container that links to the target domain.
	FlagClass = "nogrok-flagged"

	// GrayClass is present on flagged containers while in gray mode.
	GrayClass = "nogrok-gray"

	// PillClass marks the label element appended in gray mode.
	PillClass = "nogrok-pill"

	// StyleID is the id of the injected stylesheet.
	StyleID = "nogrok-styles"

	// DefaultPillLabel is the text of the gray-mode label.
	DefaultPillLabel = "Filtered: Grokipedia"

	// GrayOpacity and GrayFilter are the inline values set in gray mode.
	GrayOpacity = "0.45"
	GrayFilter  = "grayscale(1)"
)

// Attributes holding the captured inline values.
const (
	attrOriginalDisplay = "data-nogrok-original-display"
	attrOriginalOpacity = "data-nogrok-original-opacity"
	attrOriginalFilter  = "data-nogrok-original-filter"
)

// stylesheet is the CSS for the pill and the gray line-through.
const stylesheet = `
.nogrok-pill {
  display: inline-flex;
  align-items: center;
  gap: 6px;
  padding: 3px 9px;
  margin-top: 6px;
  margin-left: 0;
  background: linear-gradient(120deg, #0ea5e9 0%, #6366f1 50%, #a855f7 100%);
  color: #0b1224;
  border-radius: 9999px;
  font-size: 12px;
  font-weight: 700;
  line-height: 1.4;
  width: fit-content;
  letter-spacing: 0.02em;
  box-shadow: 0 4px 12px rgba(99, 102, 241, 0.35);
}
.nogrok-gray {
  text-decoration: line-through;
  text-decoration-thickness: 2px;
  text-decoration-color: #475569;
}
`

// Applier changes flagged containers of one document.
// It is not safe for concurrent use; it runs on the goroutine that owns
// the document.
type Applier struct {
	doc      *dom.Document
	label    string
	injected bool
}

// Option configures an Applier.
type Option func(*Applier)

// WithPillLabel sets the gray-mode label text. An empty label keeps the default.
func WithPillLabel(label string) Option {
	return func(a *Applier) {
		if label != "" {
			a.label = label
		}
	}
}

// NewApplier creates an Applier for doc.
func NewApplier(doc *dom.Document, opts ...Option) *Applier {
	a := &Applier{
		doc:   doc,
		label: DefaultPillLabel,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Flag marks node as a flagged container. It returns false if node was
// already flagged.
func (a *Applier) Flag(node *html.Node) bool {
	if !dom.IsElement(node) || dom.HasClass(node, FlagClass) {
		return false
	}
	dom.AddClass(node, FlagClass)
	return true
}

// IsFlagged reports whether node carries the flag class.
func IsFlagged(node *html.Node) bool {
	return dom.HasClass(node, FlagClass)
}

// ApplyTo sets node to the visual state of mode. Calling it repeatedly
// with the same mode leaves the node unchanged after the first call.
func (a *Applier) ApplyTo(node *html.Node, mode model.Mode) {
	if !dom.IsElement(node) {
		return
	}
	capture(node)

	a.removePill(node)
	dom.RemoveClass(node, GrayClass)

	display, _ := dom.Attr(node, attrOriginalDisplay)
	opacity, _ := dom.Attr(node, attrOriginalOpacity)
	filter, _ := dom.Attr(node, attrOriginalFilter)

	switch mode {
	case model.ModeHide:
		dom.SetStyleProperty(node, "display", "none")
		dom.SetStyleProperty(node, "opacity", opacity)
		dom.SetStyleProperty(node, "filter", filter)
	case model.ModeGray:
		a.ensurePill(node)
		dom.AddClass(node, GrayClass)
		dom.SetStyleProperty(node, "display", display)
		dom.SetStyleProperty(node, "opacity", GrayOpacity)
		dom.SetStyleProperty(node, "filter", GrayFilter)
	default:
		dom.SetStyleProperty(node, "display", display)
		dom.SetStyleProperty(node, "opacity", opacity)
		dom.SetStyleProperty(node, "filter", filter)
	}
}

// ApplyToAllFlagged applies mode to every flagged container in the
// document and returns how many there were.
func (a *Applier) ApplyToAllFlagged(mode model.Mode) int {
	nodes := a.doc.Find("." + FlagClass).Nodes
	for _, n := range nodes {
		a.ApplyTo(n, mode)
	}
	return len(nodes)
}

// FlaggedCount returns the number of flagged containers in the document.
func (a *Applier) FlaggedCount() int {
	return a.doc.Count("." + FlagClass)
}

// InjectStyles adds the stylesheet to the document head once.
// The stylesheet goes into body when the page has no head.
func (a *Applier) InjectStyles() {
	if a.injected {
		return
	}
	a.injected = true
	if a.doc.Count("style#"+StyleID) > 0 {
		return
	}

	parent := a.doc.Head()
	if parent == nil {
		parent = a.doc.Body()
	}
	style := dom.NewElement("style", "id", StyleID)
	style.AppendChild(dom.NewText(stylesheet))
	a.doc.AppendChild(parent, style)
}

// IsPill reports whether n is a pill or inside one.
func IsPill(n *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if dom.HasClass(n, PillClass) {
			return true
		}
	}
	return false
}

// capture stores the current inline values on first treatment. The
// attribute's presence marks the capture, so an empty original is kept
// as empty.
func capture(node *html.Node) {
	for _, c := range []struct{ attr, prop string }{
		{attrOriginalDisplay, "display"},
		{attrOriginalOpacity, "opacity"},
		{attrOriginalFilter, "filter"},
	} {
		if _, ok := dom.Attr(node, c.attr); !ok {
			dom.SetAttr(node, c.attr, dom.StyleProperty(node, c.prop))
		}
	}
}

// ensurePill appends a pill to node unless one is already inside it.
func (a *Applier) ensurePill(node *html.Node) {
	if dom.Select(node).Find("." + PillClass).Length() > 0 {
		return
	}
	pill := dom.NewElement("span", "class", PillClass)
	pill.AppendChild(dom.NewText(a.label))
	a.doc.AppendChild(node, pill)
}

// removePill removes the first pill inside node.
func (a *Applier) removePill(node *html.Node) {
	pills := dom.Select(node).Find("." + PillClass).Nodes
	if len(pills) > 0 {
		a.doc.Remove(pills[0])
	}
}
