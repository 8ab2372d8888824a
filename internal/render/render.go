// Package render writes chapters in the output formats of the command line
// tool and the HTTP server.
package render

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/rs/zerolog"

	"github.com/mrjoshuak/getbook/internal/readability"
	"github.com/mrjoshuak/getbook/types"
)

// Format is an output format.
type Format string

// Output formats
const (
	JSON     Format = "json"
	HTML     Format = "html"
	Markdown Format = "markdown"
)

// Formats lists the supported formats.
var Formats = []Format{JSON, HTML, Markdown}

// ParseFormat validates a format name. An empty name means JSON.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return JSON, nil
	case JSON, HTML, Markdown:
		return f, nil
	default:
		return "", types.WrapConfigError(fmt.Errorf("unknown format %q", name), "ParseFormat", "")
	}
}

// ContentType returns the media type of a rendered chapter.
func (f Format) ContentType() string {
	switch f {
	case HTML:
		return "text/html; charset=utf-8"
	case Markdown:
		return "text/markdown; charset=utf-8"
	default:
		return "application/json"
	}
}

// Renderer turns chapters into bytes. It is safe for concurrent use.
type Renderer struct {
	md  *converter.Converter
	log zerolog.Logger
}

// New creates a Renderer.
func New(logger zerolog.Logger) *Renderer {
	md := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	return &Renderer{md: md, log: logger}
}

// Render writes ch in format f.
func (r *Renderer) Render(ch *types.Chapter, f Format) ([]byte, error) {
	switch f {
	case JSON, "":
		out, err := json.MarshalIndent(ch, "", "  ")
		if err != nil {
			return nil, types.WrapError(err, types.RenderError, "Render", "failed to encode chapter")
		}
		return append(out, '\n'), nil
	case HTML:
		return []byte(r.HTML(ch)), nil
	case Markdown:
		md, err := r.Markdown(ch)
		if err != nil {
			return nil, err
		}
		return []byte(md), nil
	default:
		return nil, types.WrapConfigError(fmt.Errorf("unknown format %q", f), "Render", "")
	}
}

// HTML wraps the content in a standalone article.
func (r *Renderer) HTML(ch *types.Chapter) string {
	var b strings.Builder
	b.WriteString("<article")
	if ch.Lang != "" {
		fmt.Fprintf(&b, ` lang="%s"`, html.EscapeString(ch.Lang))
	}
	b.WriteString(">\n")
	fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(ch.Title))
	if ch.Author != "" {
		fmt.Fprintf(&b, "<p class=\"byline\">%s</p>\n", html.EscapeString(ch.Author))
	}
	b.WriteString(ch.Content)
	b.WriteString("\n</article>\n")
	return b.String()
}

// Markdown converts the chapter to Markdown. Image placeholders become
// images again, and other attachments become links to their source.
func (r *Renderer) Markdown(ch *types.Chapter) (string, error) {
	content, err := readability.ReplacePlaceholders(ch.Content, Embed, r.log)
	if err != nil {
		return "", err
	}

	body, err := r.md.ConvertString(content)
	if err != nil {
		return "", types.WrapError(err, types.RenderError, "Markdown", "failed to convert content")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", ch.Title)
	if ch.Author != "" {
		fmt.Fprintf(&b, "*%s*\n\n", ch.Author)
	}
	b.WriteString(strings.TrimSpace(body))
	b.WriteString("\n")
	return b.String(), nil
}

// Embed is the default attachment markup: an img for images and a link to the
// source for everything else. Attachments with no source keep their
// placeholder.
func Embed(a types.Attachment) (string, error) {
	src := a.Src()
	if src == "" {
		return "", nil
	}
	if a.Tag == "img" {
		alt := a.Attr("alt")
		return fmt.Sprintf(`<img src="%s" alt="%s">`, html.EscapeString(src), html.EscapeString(alt)), nil
	}
	return fmt.Sprintf(`<p><a href="%s">%s</a></p>`, html.EscapeString(src), html.EscapeString(a.Tag)), nil
}
