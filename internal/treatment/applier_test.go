package treatment

import (
	"strings"
	"testing"

	"github.com/nao1215/nogrok/internal/dom"
	"github.com/nao1215/nogrok/internal/model"
	"golang.org/x/net/html"
)

const testPage = `<html><head><title>r</title></head><body>
<div id="r1" style="display: flex; opacity: 0.9; color: red"><a href="https://grokipedia.org/a">a</a></div>
<div id="r2"><a href="https://grokipedia.org/b">b</a></div>
</body></html>`

func newTestApplier(t *testing.T, opts ...Option) (*dom.Document, *Applier) {
	t.Helper()

	doc, err := dom.ParseString(testPage, "https://www.google.com/search?q=x")
	if err != nil {
		t.Fatalf("failed to parse page: %v", err)
	}
	return doc, NewApplier(doc, opts...)
}

func byID(t *testing.T, doc *dom.Document, id string) *html.Node {
	t.Helper()

	sel := doc.Find("#" + id)
	if sel.Length() == 0 {
		t.Fatalf("no element #%s", id)
	}
	return sel.Get(0)
}

func pillCount(n *html.Node) int {
	return dom.Select(n).Find("." + PillClass).Length()
}

// TestApplyTo tests the visual state produced by each mode.
func TestApplyTo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mode        model.Mode
		wantDisplay string
		wantOpacity string
		wantFilter  string
		wantGray    bool
		wantPills   int
	}{
		{model.ModeHide, "none", "0.9", "", false, 0},
		{model.ModeGray, "flex", GrayOpacity, GrayFilter, true, 1},
		{model.ModeKeep, "flex", "0.9", "", false, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			t.Parallel()

			doc, a := newTestApplier(t)
			node := byID(t, doc, "r1")
			a.ApplyTo(node, tt.mode)

			if got := dom.StyleProperty(node, "display"); got != tt.wantDisplay {
				t.Errorf("display = %q, expected %q", got, tt.wantDisplay)
			}
			if got := dom.StyleProperty(node, "opacity"); got != tt.wantOpacity {
				t.Errorf("opacity = %q, expected %q", got, tt.wantOpacity)
			}
			if got := dom.StyleProperty(node, "filter"); got != tt.wantFilter {
				t.Errorf("filter = %q, expected %q", got, tt.wantFilter)
			}
			if got := dom.HasClass(node, GrayClass); got != tt.wantGray {
				t.Errorf("gray class = %v, expected %v", got, tt.wantGray)
			}
			if got := pillCount(node); got != tt.wantPills {
				t.Errorf("pills = %d, expected %d", got, tt.wantPills)
			}
			if got := dom.StyleProperty(node, "color"); got != "red" {
				t.Errorf("unrelated property changed: color = %q", got)
			}
		})
	}
}

// TestApplyToIdempotent tests that repeated application is stable.
func TestApplyToIdempotent(t *testing.T) {
	t.Parallel()

	for _, mode := range model.Modes() {
		t.Run(string(mode), func(t *testing.T) {
			t.Parallel()

			doc, a := newTestApplier(t)
			node := byID(t, doc, "r1")

			a.ApplyTo(node, mode)
			once := dom.Describe(node) + doc.String()
			a.ApplyTo(node, mode)
			a.ApplyTo(node, mode)
			twice := dom.Describe(node) + doc.String()

			if once != twice {
				t.Errorf("state changed on re-application\nfirst:  %s\nsecond: %s", once, twice)
			}
			if pillCount(node) > 1 {
				t.Errorf("expected at most one pill, got %d", pillCount(node))
			}
		})
	}
}

// TestApplyToRoundTrip tests that any mode sequence ending in keep restores
// the original inline styles.
func TestApplyToRoundTrip(t *testing.T) {
	t.Parallel()

	sequences := [][]model.Mode{
		{model.ModeGray, model.ModeKeep},
		{model.ModeHide, model.ModeGray, model.ModeKeep},
		{model.ModeGray, model.ModeHide, model.ModeGray, model.ModeKeep},
		{model.ModeKeep},
	}

	for _, seq := range sequences {
		name := make([]string, len(seq))
		for i, m := range seq {
			name[i] = string(m)
		}
		t.Run(strings.Join(name, "-"), func(t *testing.T) {
			t.Parallel()

			doc, a := newTestApplier(t)
			r1 := byID(t, doc, "r1")
			r2 := byID(t, doc, "r2")
			for _, m := range seq {
				a.ApplyTo(r1, m)
				a.ApplyTo(r2, m)
			}

			if got := dom.StyleProperty(r1, "display"); got != "flex" {
				t.Errorf("display = %q, expected flex", got)
			}
			if got := dom.StyleProperty(r1, "opacity"); got != "0.9" {
				t.Errorf("opacity = %q, expected 0.9", got)
			}
			if got := dom.StyleProperty(r1, "filter"); got != "" {
				t.Errorf("filter = %q, expected empty", got)
			}
			if _, ok := dom.Attr(r2, "style"); ok {
				t.Errorf("expected r2 style attribute to be gone, got %s", doc.String())
			}
			if pillCount(r1)+pillCount(r2) != 0 {
				t.Error("expected pills to be removed")
			}
			if dom.HasClass(r1, GrayClass) || dom.HasClass(r2, GrayClass) {
				t.Error("expected gray class to be removed")
			}
		})
	}
}

// TestCaptureOnce tests that originals are taken before the first change only.
func TestCaptureOnce(t *testing.T) {
	t.Parallel()

	doc, a := newTestApplier(t)
	node := byID(t, doc, "r2")

	a.ApplyTo(node, model.ModeHide)
	if v, ok := dom.Attr(node, attrOriginalDisplay); !ok || v != "" {
		t.Fatalf("expected empty captured display, got %q (present %v)", v, ok)
	}

	// The page sets its own style while the result is hidden.
	dom.SetStyleProperty(node, "opacity", "0.2")
	a.ApplyTo(node, model.ModeKeep)

	if got := dom.StyleProperty(node, "display"); got != "" {
		t.Errorf("expected display restored to empty, got %q", got)
	}
	if got := dom.StyleProperty(node, "opacity"); got != "" {
		t.Errorf("expected opacity restored to captured empty value, got %q", got)
	}
}

// TestCaptureRepeatedDeclaration tests that the value the page shows is
// captured when a property is declared twice.
func TestCaptureRepeatedDeclaration(t *testing.T) {
	t.Parallel()

	doc, a := newTestApplier(t)
	node := byID(t, doc, "r2")
	dom.SetAttr(node, "style", "opacity:0.5;opacity:0.7")

	a.ApplyTo(node, model.ModeGray)
	if v, _ := dom.Attr(node, attrOriginalOpacity); v != "0.7" {
		t.Fatalf("expected captured opacity 0.7, got %q", v)
	}

	a.ApplyTo(node, model.ModeKeep)
	if got := dom.StyleProperty(node, "opacity"); got != "0.7" {
		t.Errorf("expected opacity restored to 0.7, got %q", got)
	}
}

// TestFlag tests flag bookkeeping and ApplyToAllFlagged.
func TestFlag(t *testing.T) {
	t.Parallel()

	doc, a := newTestApplier(t)
	r1 := byID(t, doc, "r1")
	r2 := byID(t, doc, "r2")

	if !a.Flag(r1) {
		t.Error("expected first flag to succeed")
	}
	if a.Flag(r1) {
		t.Error("expected second flag to be a no-op")
	}
	if a.Flag(nil) {
		t.Error("expected nil flag to fail")
	}
	a.Flag(r2)

	if got := a.FlaggedCount(); got != 2 {
		t.Fatalf("expected 2 flagged, got %d", got)
	}
	if !IsFlagged(r2) {
		t.Error("expected r2 to be flagged")
	}

	if got := a.ApplyToAllFlagged(model.ModeGray); got != 2 {
		t.Errorf("expected 2 treated, got %d", got)
	}
	if pillCount(r1) != 1 || pillCount(r2) != 1 {
		t.Error("expected one pill per flagged container")
	}
	if got := a.FlaggedCount(); got != 2 {
		t.Errorf("pills must not change the flagged count, got %d", got)
	}
}

// TestPillRecords tests that pill insertions go through the mutation queue.
func TestPillRecords(t *testing.T) {
	t.Parallel()

	doc, a := newTestApplier(t, WithPillLabel("Hidden source"))
	node := byID(t, doc, "r1")
	doc.TakeRecords()

	a.ApplyTo(node, model.ModeGray)

	batch := doc.TakeRecords()
	if batch.Empty() {
		t.Fatal("expected a record for the pill")
	}
	added := batch.AddedNodes()
	if len(added) != 1 || !IsPill(added[0]) {
		t.Fatalf("expected one pill node, got %d nodes", len(added))
	}
	if !IsPill(added[0].FirstChild) {
		t.Error("expected text inside the pill to count as pill")
	}
	if got := added[0].FirstChild.Data; got != "Hidden source" {
		t.Errorf("label = %q, expected custom label", got)
	}
	if IsPill(node) {
		t.Error("container must not count as pill")
	}
}

// TestInjectStyles tests the one-time stylesheet insertion.
func TestInjectStyles(t *testing.T) {
	t.Parallel()

	t.Run("into head once", func(t *testing.T) {
		t.Parallel()

		doc, a := newTestApplier(t)
		a.InjectStyles()
		a.InjectStyles()

		if got := doc.Count("head > style#" + StyleID); got != 1 {
			t.Errorf("expected one stylesheet in head, got %d", got)
		}
		if !strings.Contains(doc.String(), "text-decoration: line-through") {
			t.Error("expected gray rule in output")
		}
	})

	t.Run("existing stylesheet is reused", func(t *testing.T) {
		t.Parallel()

		doc, err := dom.ParseString(`<html><head><style id="nogrok-styles"></style></head><body></body></html>`, "https://example.com/")
		if err != nil {
			t.Fatal(err)
		}
		NewApplier(doc).InjectStyles()
		if got := doc.Count("style#" + StyleID); got != 1 {
			t.Errorf("expected one stylesheet, got %d", got)
		}
	})
}
