// Package dom wraps a parsed HTML tree for the extraction passes. Nodes that
// take part in scoring are registered in an arena and addressed by stable
// NodeID values; structural edits go through the helpers in this package.
package dom

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/mrjoshuak/getbook/types"
)

// NodeID addresses a node registered in a Document.
type NodeID int

// NoNode is the zero reference.
const NoNode NodeID = -1

// Document is a parsed HTML tree plus the arena of registered nodes.
// It is mutated in place by the pipeline and must not be shared between
// goroutines.
type Document struct {
	doc   *goquery.Document
	nodes []*html.Node
	ids   map[*html.Node]NodeID
}

// New wraps an existing goquery document.
func New(doc *goquery.Document) *Document {
	return &Document{
		doc: doc,
		ids: make(map[*html.Node]NodeID),
	}
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, types.WrapParseError(err, "Parse", "failed to parse HTML")
	}
	return New(doc), nil
}

// ParseString reads an HTML document from a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Root returns the document node.
func (d *Document) Root() *html.Node {
	return d.doc.Nodes[0]
}

// Selection returns the goquery selection of the whole document.
func (d *Document) Selection() *goquery.Selection {
	return d.doc.Selection
}

// Find runs a CSS selector against the whole document.
func (d *Document) Find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// Body returns the <body> element, or nil.
func (d *Document) Body() *html.Node {
	return d.doc.Find("body").Get(0)
}

// ID registers n in the arena and returns its stable identifier.
func (d *Document) ID(n *html.Node) NodeID {
	if n == nil {
		return NoNode
	}
	if id, ok := d.ids[n]; ok {
		return id
	}
	id := NodeID(len(d.nodes))
	d.nodes = append(d.nodes, n)
	d.ids[n] = id
	return id
}

// Node resolves an identifier. It returns nil for NoNode or an unknown id.
func (d *Document) Node(id NodeID) *html.Node {
	if id < 0 || int(id) >= len(d.nodes) {
		return nil
	}
	return d.nodes[id]
}

// Select wraps a registered node in a goquery selection.
func (d *Document) Select(id NodeID) *goquery.Selection {
	return Wrap(d.Node(id))
}

// Depth returns the number of ancestors of a registered node.
func (d *Document) Depth(id NodeID) int {
	return Depth(d.Node(id))
}

// IsAncestor reports whether ancestor is found within maxHops parents of
// node. A non-positive maxHops searches all the way to the root.
func (d *Document) IsAncestor(ancestor, node NodeID, maxHops int) bool {
	a, n := d.Node(ancestor), d.Node(node)
	if a == nil || n == nil {
		return false
	}
	return IsAncestor(a, n, maxHops)
}

// Attached reports whether a registered node is still part of the tree.
func (d *Document) Attached(id NodeID) bool {
	n := d.Node(id)
	return n != nil && Attached(n, d.Root())
}

// Len returns the number of registered nodes.
func (d *Document) Len() int {
	return len(d.nodes)
}

// HTML renders the whole document.
func (d *Document) HTML() string {
	return OuterHTML(d.Root())
}

// Wrap returns a selection holding n alone.
func Wrap(n *html.Node) *goquery.Selection {
	if n == nil {
		return &goquery.Selection{}
	}
	return goquery.NewDocumentFromNode(n).Selection
}
