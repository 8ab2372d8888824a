// Package types provides the core data structures for the getbook library.
package types

import (
	"encoding/json"
	"sort"
	"time"
)

// Image is the lead image of a chapter.
type Image struct {
	Src    string `json:"src"`
	Width  string `json:"width,omitempty"`
	Height string `json:"height,omitempty"`
}

// Chapter is the normalized record produced for a single document.
// It is built once per parse and never modified afterwards.
type Chapter struct {
	URL         string                  `json:"url"`
	Lang        string                  `json:"lang"`
	Image       *Image                  `json:"image,omitempty"`
	Publisher   string                  `json:"publisher,omitempty"`
	Author      string                  `json:"author,omitempty"`
	Title       string                  `json:"title"`
	Summary     string                  `json:"summary,omitempty"`
	Content     string                  `json:"content"`
	Pubdate     *time.Time              `json:"pubdate,omitempty"`
	Attachments map[string][]Attachment `json:"attachments,omitempty"`
}

// AttachmentCount returns the total number of attachment records.
func (c *Chapter) AttachmentCount() int {
	n := 0
	for _, list := range c.Attachments {
		n += len(list)
	}
	return n
}

// Attachment records a media or data element that was lifted out of the
// content and replaced by a placeholder span.
//
// On the wire an attachment is a flat object: the tag and every preserved
// attribute share one level, nested sources, tracks and params are arrays.
type Attachment struct {
	Tag     string
	Attrs   map[string]string
	Sources []map[string]string
	Tracks  []map[string]string
	Params  []map[string]string
}

// Attr returns a preserved attribute value.
func (a Attachment) Attr(name string) string {
	return a.Attrs[name]
}

// Src returns the primary source of the attachment, falling back to the
// first nested source.
func (a Attachment) Src() string {
	if src := a.Attrs["src"]; src != "" {
		return src
	}
	for _, s := range a.Sources {
		if src := s["src"]; src != "" {
			return src
		}
	}
	return ""
}

const (
	keyTag     = "tag"
	keySources = "sources"
	keyTracks  = "tracks"
	keyParams  = "params"
)

// MarshalJSON flattens the attachment into a single object.
func (a Attachment) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(a.Attrs)+4)
	keys := make([]string, 0, len(a.Attrs))
	for k := range a.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out[k] = a.Attrs[k]
	}
	out[keyTag] = a.Tag
	if len(a.Sources) > 0 {
		out[keySources] = a.Sources
	}
	if len(a.Tracks) > 0 {
		out[keyTracks] = a.Tracks
	}
	if len(a.Params) > 0 {
		out[keyParams] = a.Params
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the flat object written by MarshalJSON.
// Non-string scalar attributes are rejected.
func (a *Attachment) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	decoded := Attachment{Attrs: make(map[string]string)}
	for k, v := range raw {
		switch k {
		case keyTag:
			if err := json.Unmarshal(v, &decoded.Tag); err != nil {
				return err
			}
		case keySources:
			if err := json.Unmarshal(v, &decoded.Sources); err != nil {
				return err
			}
		case keyTracks:
			if err := json.Unmarshal(v, &decoded.Tracks); err != nil {
				return err
			}
		case keyParams:
			if err := json.Unmarshal(v, &decoded.Params); err != nil {
				return err
			}
		default:
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return err
			}
			decoded.Attrs[k] = s
		}
	}
	*a = decoded
	return nil
}
