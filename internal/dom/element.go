package dom

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// IsElement reports whether n is an element node.
func IsElement(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode
}

// IsAnchor reports whether n is an <a> element.
func IsAnchor(n *html.Node) bool {
	return IsElement(n) && n.DataAtom == atom.A
}

// NewElement creates a detached element. attrs are key, value pairs.
func NewElement(tag string, attrs ...string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

// NewText creates a detached text node.
func NewText(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}

// Attr returns the value of the attribute key and whether it is present.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets or replaces the attribute key.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes the attribute key if present.
func RemoveAttr(n *html.Node, key string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// HasClass reports whether the class list of n contains class.
func HasClass(n *html.Node, class string) bool {
	v, _ := Attr(n, "class")
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

// AddClass adds class to n. Adding a present class is a no-op.
func AddClass(n *html.Node, class string) {
	if HasClass(n, class) {
		return
	}
	v, _ := Attr(n, "class")
	SetAttr(n, "class", strings.TrimSpace(v+" "+class))
}

// RemoveClass removes class from n. The class attribute is dropped once empty.
func RemoveClass(n *html.Node, class string) {
	v, ok := Attr(n, "class")
	if !ok {
		return
	}
	kept := make([]string, 0)
	for _, c := range strings.Fields(v) {
		if c != class {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		RemoveAttr(n, "class")
		return
	}
	SetAttr(n, "class", strings.Join(kept, " "))
}

// Select wraps n in a goquery selection so selectors can run relative to it.
func Select(n *html.Node) *goquery.Selection {
	return goquery.NewDocumentFromNode(n).Selection
}

// Closest returns n or its nearest ancestor matching selector, or nil.
func Closest(n *html.Node, selector string) *html.Node {
	if n == nil {
		return nil
	}
	return first(Select(n).Closest(selector))
}

// first returns the first node of s, or nil when s is empty.
func first(s *goquery.Selection) *html.Node {
	if s.Length() == 0 {
		return nil
	}
	return s.Get(0)
}

// ParentElement returns the parent of n if it is an element, else nil.
func ParentElement(n *html.Node) *html.Node {
	if n == nil || !IsElement(n.Parent) {
		return nil
	}
	return n.Parent
}

// Contains reports whether n is ancestor or n itself.
func Contains(ancestor, n *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n == ancestor {
			return true
		}
	}
	return false
}

// Describe returns a short tag.class#id label for reports and logs.
func Describe(n *html.Node) string {
	if !IsElement(n) {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(n.Data)
	if id, ok := Attr(n, "id"); ok && id != "" {
		sb.WriteString("#")
		sb.WriteString(id)
	}
	if v, ok := Attr(n, "class"); ok {
		for _, c := range strings.Fields(v) {
			sb.WriteString(".")
			sb.WriteString(c)
		}
	}
	return sb.String()
}
