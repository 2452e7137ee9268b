// Package chartjs binds fan charts to <canvas> elements of server-rendered
// HTML pages, drawn in the browser by Chart.js.
package chartjs

import (
	"fmt"
	"io"

	"github.com/uyouii/fanchart/fanchart"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Page is a parsed HTML document.
type Page struct {
	root *html.Node
}

func ParsePage(r io.Reader) (*Page, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return &Page{root: root}, nil
}

// Canvas returns the <canvas> element whose id attribute equals id.
func (p *Page) Canvas(id string) (fanchart.Canvas, bool) {
	if p == nil || p.root == nil {
		return nil, false
	}
	n := findElement(p.root, func(n *html.Node) bool {
		return n.DataAtom == atom.Canvas && attr(n, "id") == id
	})
	if n == nil {
		return nil, false
	}
	return &Canvas{node: n, id: id}, true
}

func (p *Page) Render(w io.Writer) error {
	return html.Render(w, p.root)
}

// Canvas is a <canvas> element inside a Page.
type Canvas struct {
	node *html.Node
	id   string
}

func (c *Canvas) ID() string {
	return c.id
}

// insertAfter places nodes right after the canvas element, in order.
func (c *Canvas) insertAfter(nodes []*html.Node) {
	next := c.node.NextSibling
	for _, n := range nodes {
		c.node.Parent.InsertBefore(n, next)
	}
}

func findElement(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, match); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}
