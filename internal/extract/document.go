package extract

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

// Document is a parsed HTML page. It exposes the three views the crawler
// needs: whether a body exists, the raw anchor targets, and the stripped
// visible text.
type Document struct {
	// root is the parsed document tree.
	root *html.Node

	// body is the <body> element, nil when the document has none.
	body *html.Node
}

// ParseDocument decodes body using the charset declared in contentType
// (falling back to sniffing) and parses the result as HTML.
//
// Design decision: We decode before parsing rather than relying on the
// parser's own handling because pages on older university servers still
// serve ISO-8859-1 and friends; DetermineEncoding handles the declared
// header, a meta tag, and content sniffing in one call.
func ParseDocument(body []byte, contentType string) (*Document, error) {
	encoding, _, _ := charset.DetermineEncoding(body, contentType)

	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(body), encoding.NewDecoder()))
	if err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}

	root, err := html.Parse(bytes.NewReader(decoded))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	return &Document{
		root: root,
		body: findElement(root, "body"),
	}, nil
}

// HasBody reports whether the document contains a <body> element with any
// content. Pages without one carry no indexable text.
func (d *Document) HasBody() bool {
	return d.body != nil && d.body.FirstChild != nil
}

// Anchors returns the raw href value of every anchor element in document
// order. Values are returned as written; resolution against the base URL
// is the Extractor's job.
func (d *Document) Anchors() []string {
	var hrefs []string

	walk(d.root, func(n *html.Node) {
		if n.Type != html.ElementNode || n.Data != "a" {
			return
		}
		if href := getAttr(n, "href"); href != "" {
			hrefs = append(hrefs, href)
		}
	})

	return hrefs
}

// TextSegments returns the stripped visible text segments of the document
// body. Script and style content is excluded; whitespace-only segments are
// dropped.
func (d *Document) TextSegments() []string {
	if d.body == nil {
		return nil
	}

	var segments []string
	walk(d.body, func(n *html.Node) {
		if n.Type != html.TextNode {
			return
		}
		if p := n.Parent; p != nil && p.Type == html.ElementNode {
			switch p.Data {
			case "script", "style", "noscript":
				return
			}
		}
		if text := strings.TrimSpace(n.Data); text != "" {
			segments = append(segments, text)
		}
	})

	return segments
}

// Tokens returns the lowercase whitespace-separated words of the visible
// body text. This is the word list the pipeline counts for the thin-page
// check and folds into term frequencies.
func (d *Document) Tokens() []string {
	var tokens []string
	for _, segment := range d.TextSegments() {
		for _, word := range strings.Fields(segment) {
			tokens = append(tokens, strings.ToLower(word))
		}
	}
	return tokens
}

// TermFrequencies counts the document's tokens into the vector compared
// for near-duplicate detection.
func (d *Document) TermFrequencies() map[string]int {
	tf := make(map[string]int)
	for _, tok := range d.Tokens() {
		tf[tok]++
	}
	return tf
}

// walk visits every node under n in depth-first document order.
func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

// findElement returns the first element with the given tag name.
func findElement(n *html.Node, name string) *html.Node {
	if n.Type == html.ElementNode && n.Data == name {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, name); found != nil {
			return found
		}
	}
	return nil
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
