package readability

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/mrjoshuak/getbook/internal/dom"
	"github.com/mrjoshuak/getbook/lexicon"
	"github.com/mrjoshuak/getbook/types"
)

const (
	attrData       = "data-attrs"
	attrIndex      = "data-index"
	attrAttachment = "data-attachment"
)

// isPlaceholder reports an attachment marker span.
func isPlaceholder(n *html.Node) bool {
	return dom.IsElement(n, "span") && dom.HasClass(n, "tag") &&
		(dom.HasAttr(n, attrData) || dom.HasAttr(n, attrAttachment))
}

// NewPlaceholder builds a marker span for an attachment kind.
func NewPlaceholder(tag string, attrs ...html.Attribute) *html.Node {
	attrs = append([]html.Attribute{{Key: "class", Val: "tag tag-" + tag}}, attrs...)
	span := dom.NewElement("span", attrs...)
	span.AppendChild(dom.NewText(tag))
	return span
}

// extractAttachments replaces media below root by placeholders and returns
// their records grouped by kind. Existing placeholders are decoded and
// renumbered so a second pass over finalized content is stable.
func (r *Readability) extractAttachments(root *html.Node) map[string][]types.Attachment {
	out := make(map[string][]types.Attachment)

	for _, n := range dom.Elements(root) {
		if !dom.Attached(n, root) {
			continue
		}

		var (
			rec   types.Attachment
			ok    bool
			owner = n
		)
		switch {
		case dom.HasAttr(n, attrData) && isPlaceholder(n):
			rec, ok = decodePlaceholder(n, r.log)
		case dom.HasAttr(n, attrAttachment):
			rec, ok = dataAttachment(n), true
		case lexicon.Has(r.lex.SourceTags, dom.TagName(n)):
			rec, ok = r.mediaAttachment(n)
			if !ok {
				r.remove(n)
				continue
			}
			owner = NewPlaceholder(rec.Tag)
			r.replace(n, owner)
		}
		if !ok {
			continue
		}

		data, err := json.Marshal(rec)
		if err != nil {
			r.log.Warn().Err(err).Str("tag", rec.Tag).Msg("attachment not serializable")
			continue
		}
		dom.SetAttr(owner, attrData, string(data))
		dom.SetAttr(owner, attrIndex, strconv.Itoa(len(out[rec.Tag])))
		out[rec.Tag] = append(out[rec.Tag], rec)
	}

	return out
}

// mediaAttachment records the allow-listed attributes of a media element.
// It reports false when the element has nothing to play or show.
func (r *Readability) mediaAttachment(n *html.Node) (types.Attachment, bool) {
	tag := dom.TagName(n)
	rec := types.Attachment{Tag: tag, Attrs: r.allowedAttrs(n, tag)}

	switch tag {
	case "audio", "video":
		rec.Sources = r.childRecords(n, "source")
		rec.Tracks = r.childRecords(n, "track")
	case "object":
		rec.Params = r.childRecords(n, "param")
	}

	if rec.Attrs["src"] == "" && rec.Attrs["data"] == "" && len(rec.Sources) == 0 {
		return rec, false
	}

	rec.Attrs["src"] = httpScheme(rec.Attrs["src"])
	if rec.Attrs["src"] == "" {
		delete(rec.Attrs, "src")
	}
	for _, s := range rec.Sources {
		if s["src"] != "" {
			s["src"] = httpScheme(s["src"])
		}
	}
	return rec, true
}

func (r *Readability) allowedAttrs(n *html.Node, tag string) map[string]string {
	attrs := make(map[string]string)
	for _, key := range r.lex.ElementAttributes[tag] {
		if v := dom.Attr(n, key); v != "" {
			attrs[key] = v
		}
	}
	return attrs
}

func (r *Readability) childRecords(n *html.Node, tag string) []map[string]string {
	var out []map[string]string
	for _, c := range dom.FindAll(n, tag) {
		if attrs := r.allowedAttrs(c, tag); len(attrs) > 0 {
			out = append(out, attrs)
		}
	}
	return out
}

func httpScheme(src string) string {
	if strings.HasPrefix(src, "//") {
		return "http:" + src
	}
	return src
}

// dataAttachment records an element marked with data-attachment from its
// data-* attributes.
func dataAttachment(n *html.Node) types.Attachment {
	rec := types.Attachment{Tag: dom.Attr(n, attrAttachment), Attrs: make(map[string]string)}
	for _, a := range n.Attr {
		switch a.Key {
		case attrAttachment, attrData, attrIndex:
			continue
		}
		if strings.HasPrefix(a.Key, "data-") {
			rec.Attrs[strings.TrimPrefix(a.Key, "data-")] = a.Val
		}
	}
	return rec
}

// placeholderKind reads the attachment kind from the tag-<kind> class.
func placeholderKind(n *html.Node) string {
	for _, c := range strings.Fields(dom.Attr(n, "class")) {
		if kind, ok := strings.CutPrefix(c, "tag-"); ok {
			return kind
		}
	}
	return strings.TrimSpace(dom.Text(n))
}

// decodePlaceholder reads the record carried by a placeholder. A malformed
// record is dropped from the span and reported as false.
func decodePlaceholder(n *html.Node, logger zerolog.Logger) (types.Attachment, bool) {
	var rec types.Attachment
	if err := json.Unmarshal([]byte(dom.Attr(n, attrData)), &rec); err != nil {
		derr := &types.AttachmentDecodeError{Tag: placeholderKind(n), Err: err}
		logger.Warn().Err(derr).Msg("dropping attachment reference")
		dom.RemoveAttr(n, attrData)
		dom.RemoveAttr(n, attrIndex)
		return rec, false
	}
	if rec.Tag == "" {
		rec.Tag = placeholderKind(n)
	}
	if rec.Attrs == nil {
		rec.Attrs = make(map[string]string)
	}
	return rec, true
}

// ReplacePlaceholders hands every decodable placeholder in content to fn and
// swaps the span for the markup fn returns. An empty result keeps the span.
func ReplacePlaceholders(content string, fn func(types.Attachment) (string, error), logger zerolog.Logger) (string, error) {
	container := dom.NewElement("div")
	nodes, err := html.ParseFragment(strings.NewReader(content), &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
	})
	if err != nil {
		return "", types.WrapParseError(err, "ReplacePlaceholders", "failed to parse content")
	}
	for _, n := range nodes {
		container.AppendChild(n)
	}

	for _, n := range dom.Elements(container) {
		if !isPlaceholder(n) || !dom.HasAttr(n, attrData) || n.Parent == nil {
			continue
		}
		rec, ok := decodePlaceholder(n, logger)
		if !ok {
			continue
		}
		repl, err := fn(rec)
		if err != nil {
			return "", types.WrapAttachmentError(err, "ReplacePlaceholders", rec.Tag)
		}
		if repl == "" {
			continue
		}
		frag, err := html.ParseFragment(strings.NewReader(repl), n.Parent)
		if err != nil {
			return "", types.WrapParseError(err, "ReplacePlaceholders", "failed to parse replacement")
		}
		for _, f := range frag {
			n.Parent.InsertBefore(f, n)
		}
		dom.Remove(n)
	}

	return dom.InnerHTML(container), nil
}
