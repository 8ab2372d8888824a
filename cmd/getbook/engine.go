package main

import (
	"github.com/rs/zerolog"

	"github.com/mrjoshuak/getbook"
	"github.com/mrjoshuak/getbook/fetch"
	"github.com/mrjoshuak/getbook/lexicon"
	"github.com/mrjoshuak/getbook/sites"
	"github.com/mrjoshuak/getbook/sites/shiori"
)

// newExtractor builds an extractor from the shared engine flags.
func (f *EngineFlags) newExtractor(logger zerolog.Logger) (getbook.Extractor, error) {
	opts := []getbook.Option{
		getbook.WithLogger(logger),
		getbook.WithTimeout(f.Timeout),
	}

	if f.Lexicon != "" {
		lex, err := lexicon.LoadFile(f.Lexicon)
		if err != nil {
			return nil, err
		}
		opts = append(opts, getbook.WithLexicon(lex))
	}

	reg := sites.NewRegistry()
	if f.Engine == "readability" {
		reg.SetDefault(shiori.New())
	}
	opts = append(opts, getbook.WithRegistry(reg))

	fetchOpts := []fetch.Option{fetch.WithLogger(logger)}
	if f.Rate > 0 {
		fetchOpts = append(fetchOpts, fetch.WithRateLimit(f.Rate, 1))
	}
	opts = append(opts, getbook.WithFetcher(fetch.New(fetchOpts...)))

	return getbook.New(opts...), nil
}
