// Package readability implements the structural passes of the extraction
// pipeline: pre-cleaning, content selection and post-cleaning.
package readability

import (
	"github.com/rs/zerolog"
	"golang.org/x/net/html"

	"github.com/mrjoshuak/getbook/internal/dom"
	"github.com/mrjoshuak/getbook/internal/simplifiers"
	"github.com/mrjoshuak/getbook/lexicon"
)

// Readability runs the passes against one document. It is not safe for
// concurrent use; create one per document.
type Readability struct {
	doc     *dom.Document
	lex     *lexicon.Lexicon
	log     zerolog.Logger
	changed bool

	san *simplifiers.Sanitizer
}

// New creates a Readability bound to doc. A nil lexicon means the defaults.
func New(doc *dom.Document, lex *lexicon.Lexicon, logger zerolog.Logger) *Readability {
	if lex == nil {
		lex = lexicon.Default()
	}
	return &Readability{doc: doc, lex: lex, log: logger}
}

// Document returns the underlying document.
func (r *Readability) Document() *dom.Document {
	return r.doc
}

// KillTags removes elements that never carry readable content, and all
// comments.
func (r *Readability) KillTags(root *html.Node) {
	dom.RemoveComments(root)
	for _, n := range dom.FindAll(root, r.lex.KillTags...) {
		dom.Remove(n)
	}
}

func (r *Readability) remove(n *html.Node) {
	if n.Parent != nil {
		dom.Remove(n)
		r.changed = true
	}
}

func (r *Readability) replace(old, repl *html.Node) {
	if old.Parent != nil && old != repl {
		dom.Replace(old, repl)
		r.changed = true
	}
}

func (r *Readability) unwrap(n *html.Node) {
	if n.Parent != nil {
		dom.Unwrap(n)
		r.changed = true
	}
}

func (r *Readability) rename(n *html.Node, tag string) {
	if dom.TagName(n) != tag {
		dom.Rename(n, tag)
		r.changed = true
	}
}

func (r *Readability) setAttr(n *html.Node, key, val string) {
	if dom.Attr(n, key) != val || !dom.HasAttr(n, key) {
		dom.SetAttr(n, key, val)
		r.changed = true
	}
}

func (r *Readability) removeAttr(n *html.Node, key string) {
	if dom.HasAttr(n, key) {
		dom.RemoveAttr(n, key)
		r.changed = true
	}
}
