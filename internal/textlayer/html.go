package textlayer

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// HTMLReader handles HTML invoices, typically saved e-mail bodies. Block
// elements end a line; table cells on one row share a line.
type HTMLReader struct{}

func (p *HTMLReader) Read(_ context.Context, r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			buf.WriteString(n.Data)
			return
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "head", "template", "noscript":
				return
			case "br":
				buf.WriteByte('\n')
				return
			case "li":
				buf.WriteString("\n- ")
			case "td", "th":
				buf.WriteByte(' ')
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && isBlock(n.Data) {
			buf.WriteByte('\n')
		}
	}

	body := findBody(doc)
	if body == nil {
		body = doc
	}
	walk(body)
	return buf.String(), nil
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "div", "tr", "li", "ul", "ol", "table", "section", "article",
		"address", "blockquote", "pre", "h1", "h2", "h3", "h4", "h5", "h6",
		"header", "footer", "dt", "dd":
		return true
	}
	return false
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
