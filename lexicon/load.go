package lexicon

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mrjoshuak/getbook/types"
)

// Load decodes a YAML lexicon on top of the defaults. Keys missing from the
// document keep their default values; lists present in the document replace
// the default list entirely.
func Load(r io.Reader) (*Lexicon, error) {
	lex := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(lex); err != nil && !errors.Is(err, io.EOF) {
		return nil, types.WrapConfigError(err, "Load", "decode lexicon")
	}
	if err := lex.Validate(); err != nil {
		return nil, types.WrapConfigError(err, "Load", "")
	}
	return lex, nil
}

// LoadFile reads a YAML lexicon from path.
func LoadFile(path string) (*Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, types.WrapConfigError(err, "LoadFile", "open lexicon")
	}
	defer f.Close()
	return Load(f)
}

// Validate checks that the thresholds are usable.
func (l *Lexicon) Validate() error {
	t := l.Thresholds
	switch {
	case t.MaxDepth <= 0:
		return fmt.Errorf("max_depth must be positive, got %d", t.MaxDepth)
	case t.MinContentLength < 0:
		return fmt.Errorf("min_content_length must not be negative, got %d", t.MinContentLength)
	case t.MinScoreGap < 0:
		return fmt.Errorf("min_score_gap must not be negative, got %v", t.MinScoreGap)
	case t.SummaryLength <= 0:
		return fmt.Errorf("summary_length must be positive, got %d", t.SummaryLength)
	case len(l.ContainerTags) == 0:
		return errors.New("container_tags must not be empty")
	}
	return nil
}
