package dom

import (
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"
)

// StyleProperty returns the inline value of prop from the style attribute
// of n, or "" when the property is not set inline. Property names are
// matched case-insensitively. When a property is declared more than once
// the browser's choice is returned: the last declaration, unless an
// earlier one is !important and the later one is not.
func StyleProperty(n *html.Node, prop string) string {
	prop = strings.ToLower(prop)
	var found *css.Declaration
	for _, decl := range inlineDeclarations(n) {
		if strings.ToLower(decl.Property) != prop {
			continue
		}
		if found != nil && found.Important && !decl.Important {
			continue
		}
		found = decl
	}
	if found == nil {
		return ""
	}
	return found.Value
}

// SetStyleProperty sets prop in the style attribute of n. An empty value
// removes the property, and the attribute is dropped once no declarations
// remain. Other declarations keep their order.
func SetStyleProperty(n *html.Node, prop, value string) {
	prop = strings.ToLower(prop)
	decls := inlineDeclarations(n)

	kept := make([]*css.Declaration, 0, len(decls)+1)
	replaced := false
	for _, decl := range decls {
		if strings.ToLower(decl.Property) != prop {
			kept = append(kept, decl)
			continue
		}
		if value != "" && !replaced {
			kept = append(kept, &css.Declaration{Property: prop, Value: value})
			replaced = true
		}
	}
	if value != "" && !replaced {
		kept = append(kept, &css.Declaration{Property: prop, Value: value})
	}

	if len(kept) == 0 {
		RemoveAttr(n, "style")
		return
	}

	parts := make([]string, len(kept))
	for i, decl := range kept {
		parts[i] = decl.String()
	}
	SetAttr(n, "style", strings.Join(parts, " "))
}

// inlineDeclarations parses the style attribute of n.
//
// Design decision: douceur only finishes a declaration on ";" or "}", so a
// trailing ";" is added before parsing. When the attribute is malformed we
// fall back to a plain split so a page's own styles are never dropped.
func inlineDeclarations(n *html.Node) []*css.Declaration {
	style, ok := Attr(n, "style")
	style = strings.TrimSpace(style)
	if !ok || style == "" {
		return nil
	}
	if !strings.HasSuffix(style, ";") {
		style += ";"
	}

	decls, err := parser.ParseDeclarations(style)
	if err != nil {
		return splitDeclarations(style)
	}

	result := make([]*css.Declaration, 0, len(decls))
	for _, decl := range decls {
		if decl.Property != "" {
			result = append(result, decl)
		}
	}
	return result
}

// splitDeclarations is the lenient fallback for styles douceur rejects.
func splitDeclarations(style string) []*css.Declaration {
	result := make([]*css.Declaration, 0)
	for _, part := range strings.Split(style, ";") {
		prop, value, found := strings.Cut(part, ":")
		prop = strings.TrimSpace(prop)
		if !found || prop == "" {
			continue
		}
		value = strings.TrimSpace(value)
		important := false
		if lower := strings.ToLower(value); strings.HasSuffix(lower, "!important") {
			value = strings.TrimSpace(value[:len(value)-len("!important")])
			important = true
		}
		result = append(result, &css.Declaration{Property: prop, Value: value, Important: important})
	}
	return result
}
