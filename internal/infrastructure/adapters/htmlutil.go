package adapters

import (
	"bytes"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func parseHTML(body []byte) (*html.Node, error) {
	return html.Parse(bytes.NewReader(body))
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// matches reports whether n satisfies a minimal selector: "tag", ".class",
// "[attr]" or "[attr=value]".
func matches(n *html.Node, selector string) bool {
	if n.Type != html.ElementNode || selector == "" {
		return false
	}
	switch {
	case strings.HasPrefix(selector, "."):
		return hasClass(n, selector[1:])
	case strings.HasPrefix(selector, "[") && strings.HasSuffix(selector, "]"):
		inner := selector[1 : len(selector)-1]
		key, val, hasVal := strings.Cut(inner, "=")
		got := attr(n, strings.TrimSpace(key))
		if !hasVal {
			return got != ""
		}
		return got == strings.Trim(strings.TrimSpace(val), `"'`)
	default:
		return strings.EqualFold(n.Data, selector)
	}
}

// findFirst returns the first node in document order matching any selector,
// trying selectors in priority order.
func findFirst(root *html.Node, selectors ...string) *html.Node {
	for _, sel := range selectors {
		if n := find(root, func(n *html.Node) bool { return matches(n, sel) }); n != nil {
			return n
		}
	}
	return nil
}

func find(root *html.Node, pred func(*html.Node) bool) *html.Node {
	if pred(root) {
		return root
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if n := find(c, pred); n != nil {
			return n
		}
	}
	return nil
}

// findAll collects matching nodes without descending into a match
func findAll(root *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if pred(n) {
			out = append(out, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

// textContent returns the visible text under n with whitespace collapsed
func textContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			b.WriteByte(' ')
			return
		case html.ElementNode:
			if n.DataAtom == atom.Script || n.DataAtom == atom.Style || n.DataAtom == atom.Noscript {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func renderHTML(n *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

// resolveURL makes href absolute against base; "" when href is unusable
func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base == nil {
		if !ref.IsAbs() {
			return ""
		}
		return ref.String()
	}
	abs := base.ResolveReference(ref)
	abs.Fragment = ""
	return abs.String()
}
