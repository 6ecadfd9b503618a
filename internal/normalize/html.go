package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var dropped = map[atom.Atom]bool{
	atom.Head: true, atom.Nav: true, atom.Header: true, atom.Footer: true,
	atom.Aside: true, atom.Script: true, atom.Style: true, atom.Noscript: true,
	atom.Iframe: true, atom.Svg: true, atom.Form: true, atom.Template: true,
}

var blocks = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Section: true, atom.Article: true,
	atom.Main: true, atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true,
	atom.H5: true, atom.H6: true, atom.Ul: true, atom.Ol: true, atom.Dl: true,
	atom.Dt: true, atom.Dd: true, atom.Blockquote: true, atom.Pre: true,
	atom.Hr: true, atom.Table: true, atom.Caption: true, atom.Center: true,
	atom.Figure: true, atom.Figcaption: true, atom.Details: true, atom.Summary: true,
}

var markupRe = regexp.MustCompile(`(?i)<(?:html|body|p|div|table|tr|td|br|span|h[1-6]|ul|li|a)\b[^>]*>`)

// looksLikeHTML reports whether pasted text is markup rather than prose.
func looksLikeHTML(s string) bool {
	return len(markupRe.FindAllStringIndex(s, 3)) >= 2
}

// htmlToText renders the readable text of an HTML document. Page chrome is
// dropped, block elements start new lines, list items become "- item" lines,
// table rows become "a | b | c" lines and absolute links keep their target
// as "text (url)". Markup whitespace never produces blank lines, so a label
// stays directly above the list or table it introduces.
func htmlToText(body string, filter *BoilerplateFilter) (string, error) {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return "", err
	}
	w := &htmlWriter{filter: filter}
	w.walk(doc)

	var out []string
	for _, line := range strings.Split(cleanText(w.b.String()), "\n") {
		if line != "" && line != "-" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n"), nil
}

type htmlWriter struct {
	b      strings.Builder
	filter *BoilerplateFilter
}

func (w *htmlWriter) newline() {
	w.b.WriteByte('\n')
}

func (w *htmlWriter) skip(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if dropped[n.DataAtom] {
		return true
	}
	return w.filter.Match(attr(n, "class"), attr(n, "id"))
}

func (w *htmlWriter) walk(n *html.Node) {
	if w.skip(n) {
		return
	}
	switch n.Type {
	case html.TextNode:
		w.b.WriteString(n.Data)
		return
	case html.CommentNode:
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Br:
			w.newline()
			return
		case atom.Tr:
			w.newline()
			w.b.WriteString(strings.Join(w.cells(n), " | "))
			w.newline()
			return
		case atom.Li:
			w.newline()
			w.b.WriteString("- ")
			w.children(n)
			w.newline()
			return
		case atom.A:
			w.children(n)
			if href := absoluteHref(n); href != "" && !strings.Contains(textOf(n), href) {
				w.b.WriteString(" (" + href + ")")
			}
			return
		case atom.Img:
			if alt := attr(n, "alt"); alt != "" {
				w.b.WriteString(" " + alt + " ")
			}
			return
		}
		if blocks[n.DataAtom] {
			w.newline()
			w.children(n)
			w.newline()
			return
		}
	}
	w.children(n)
}

func (w *htmlWriter) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

// cells renders each td/th of a row on one line.
func (w *htmlWriter) cells(tr *html.Node) []string {
	var out []string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.DataAtom != atom.Td && c.DataAtom != atom.Th) {
			continue
		}
		if w.skip(c) {
			continue
		}
		sub := &htmlWriter{filter: w.filter}
		sub.children(c)
		cell := strings.Join(strings.Fields(sub.b.String()), " ")
		out = append(out, strings.ReplaceAll(cell, "|", "/"))
	}
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func absoluteHref(n *html.Node) string {
	href := strings.TrimSpace(attr(n, "href"))
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return ""
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var rec func(*html.Node)
	rec = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
	}
	rec(n)
	return b.String()
}
