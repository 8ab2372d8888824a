package extractors

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/mrjoshuak/getbook/types"
)

// ArticleTypes are the JSON-LD @type values accepted as article data.
var ArticleTypes = []string{
	"Article", "NewsArticle", "Report",
	"ScholarlyArticle", "SocialMediaPosting", "TechArticle",
	"BlogPosting", "MedicalScholarlyArticle",
}

const ldJSONPath = `//script[@type='application/ld+json']`

// Schema is the JSON-LD article object of a page. Publisher-dependent shapes
// (strings, objects, lists) are resolved when the block is parsed; values of
// any other shape are dropped.
type Schema struct {
	Types     []string
	Name      string
	Headline  string
	Author    string
	Publisher string
	Image     *types.Image
	Published *time.Time
}

// ldObject is one JSON-LD node as it appears on the wire.
type ldObject struct {
	Type          json.RawMessage   `json:"@type"`
	Graph         []json.RawMessage `json:"@graph"`
	Name          json.RawMessage   `json:"name"`
	Headline      json.RawMessage   `json:"headline"`
	Author        json.RawMessage   `json:"author"`
	Publisher     json.RawMessage   `json:"publisher"`
	Image         json.RawMessage   `json:"image"`
	DatePublished json.RawMessage   `json:"datePublished"`
}

// ParseSchema reads the JSON-LD blocks of a document and returns the article
// object when exactly one node describes an article. Top-level lists and
// @graph containers are searched.
func ParseSchema(root *html.Node) *Schema {
	scripts, err := htmlquery.QueryAll(root, ldJSONPath)
	if err != nil {
		return nil
	}

	var found []*Schema
	for _, script := range scripts {
		for _, obj := range ldBlock(htmlquery.InnerText(script)) {
			if s := obj.schema(); s.isArticle() {
				found = append(found, s)
			}
		}
	}

	if len(found) != 1 {
		return nil
	}
	return found[0]
}

// ldBlock trims comment or CDATA wrappers from a script body and returns its
// nodes. An object span is tried before a list span.
func ldBlock(text string) []ldObject {
	for _, delims := range [][2]string{{"{", "}"}, {"[", "]"}} {
		start := strings.Index(text, delims[0])
		end := strings.LastIndex(text, delims[1])
		if start < 0 || end < start {
			continue
		}
		if nodes := ldNodes(json.RawMessage(text[start : end+1])); len(nodes) > 0 {
			return nodes
		}
	}
	return nil
}

// ldNodes flattens a block into its nodes: a single object, the items of a
// list, and the members of an @graph.
func ldNodes(raw json.RawMessage) []ldObject {
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		var out []ldObject
		for _, item := range list {
			out = append(out, ldNodes(item)...)
		}
		return out
	}

	var obj ldObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}
	out := []ldObject{obj}
	for _, item := range obj.Graph {
		out = append(out, ldNodes(item)...)
	}
	return out
}

func (o ldObject) schema() *Schema {
	s := &Schema{
		Name:      rawStringValue(o.Name),
		Headline:  rawStringValue(o.Headline),
		Author:    entityName(o.Author),
		Publisher: entityName(o.Publisher),
		Image:     imageValue(o.Image),
		Published: ParseDate(rawStringValue(o.DatePublished)),
	}
	if kind, ok := rawString(o.Type); ok {
		s.Types = []string{kind}
	} else if err := json.Unmarshal(o.Type, &s.Types); err != nil {
		s.Types = nil
	}
	return s
}

func (s *Schema) isArticle() bool {
	for _, kind := range s.Types {
		for _, t := range ArticleTypes {
			if kind == t {
				return true
			}
		}
	}
	return false
}

// Title returns the article name, else its headline.
func (s *Schema) Title() string {
	if s == nil {
		return ""
	}
	if s.Name != "" {
		return s.Name
	}
	return s.Headline
}

// AuthorName returns the first author's name.
func (s *Schema) AuthorName() string {
	if s == nil {
		return ""
	}
	return s.Author
}

// PublisherName returns the first publisher's name.
func (s *Schema) PublisherName() string {
	if s == nil {
		return ""
	}
	return s.Publisher
}

// Pubdate returns datePublished in UTC, or nil when it does not parse.
func (s *Schema) Pubdate() *time.Time {
	if s == nil {
		return nil
	}
	return s.Published
}

// LeadImage returns the image property.
func (s *Schema) LeadImage() *types.Image {
	if s == nil {
		return nil
	}
	return s.Image
}

// imageValue resolves a URL string or an ImageObject.
func imageValue(raw json.RawMessage) *types.Image {
	if len(raw) == 0 {
		return nil
	}
	if src, ok := rawString(raw); ok {
		if src == "" {
			return nil
		}
		return &types.Image{Src: src}
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}
	src := rawStringValue(obj["url"])
	if src == "" {
		return nil
	}
	return &types.Image{
		Src:    src,
		Width:  rawScalar(obj["width"]),
		Height: rawScalar(obj["height"]),
	}
}

// entityName resolves a string, an object with a name, or a list of either.
func entityName(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) == 0 {
			return ""
		}
		raw = list[0]
	}
	if name, ok := rawString(raw); ok {
		return name
	}
	var obj struct {
		Name json.RawMessage `json:"name"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ""
	}
	return rawStringValue(obj.Name)
}

func rawString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func rawStringValue(raw json.RawMessage) string {
	s, _ := rawString(raw)
	return s
}

// rawScalar renders a string or number as text.
func rawScalar(raw json.RawMessage) string {
	if s, ok := rawString(raw); ok {
		return s
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}
