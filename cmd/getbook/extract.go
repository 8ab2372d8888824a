package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mrjoshuak/getbook"
	"github.com/mrjoshuak/getbook/internal/render"
)

type extractResult struct {
	input  string
	output []byte
	err    error
}

// Run executes the extract command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	inputs := c.Inputs
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}

	stdinCount := 0
	for _, in := range inputs {
		if in == "-" {
			stdinCount++
		}
	}
	if stdinCount > 1 {
		return fmt.Errorf("stdin can be read only once")
	}

	format, err := render.ParseFormat(c.Format)
	if err != nil {
		return err
	}
	ext, err := c.newExtractor(deps.Log)
	if err != nil {
		return err
	}
	renderer := render.New(deps.Log)

	if c.OutputDir != "" {
		if err := os.MkdirAll(c.OutputDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	results := make([]extractResult, len(inputs))

	g, ctx := errgroup.WithContext(deps.Ctx)
	g.SetLimit(max(c.Concurrency, 1))
	for i, in := range inputs {
		g.Go(func() error {
			results[i] = extractResult{input: in}

			ch, err := c.extract(ctx, ext, deps.Stdin, in)
			if err != nil {
				results[i].err = err
				return nil
			}
			results[i].output, results[i].err = renderer.Render(ch, format)
			return nil
		})
	}
	_ = g.Wait()

	names := newNamer()
	failed := 0
	for _, res := range results {
		if res.err != nil {
			failed++
			deps.Log.Error().Err(res.err).Str("input", res.input).Msg("extraction failed")
			continue
		}
		if err := c.write(deps.Stdout, res, names.next(outputName(res.input)), format); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed", failed, len(inputs))
	}
	return nil
}

func (c *ExtractCmd) extract(ctx context.Context, ext getbook.Extractor, stdin io.Reader, input string) (*getbook.Chapter, error) {
	if isURL(input) {
		return ext.Fetch(ctx, input)
	}

	if input == "-" {
		return ext.ExtractFromReader(ctx, c.URL, stdin)
	}

	f, err := os.Open(input)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ext.ExtractFromReader(ctx, c.URL, f)
}

func (c *ExtractCmd) write(stdout io.Writer, res extractResult, name string, format render.Format) error {
	if c.OutputDir == "" {
		if _, err := stdout.Write(res.output); err != nil {
			return err
		}
		if format != render.JSON {
			_, err := fmt.Fprintln(stdout)
			return err
		}
		return nil
	}

	target := filepath.Join(c.OutputDir, name+extension(format))
	if err := os.WriteFile(target, res.output, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	fmt.Fprintf(stdout, "Processed %s -> %s\n", res.input, target)
	return nil
}

func isURL(input string) bool {
	return strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://")
}

// outputName derives a file name from a path or URL input.
func outputName(input string) string {
	if input == "-" {
		return "stdin"
	}
	if isURL(input) {
		u, err := url.Parse(input)
		if err != nil {
			return "page"
		}
		name := path.Base(strings.TrimSuffix(u.Path, "/"))
		if name == "." || name == "/" || name == "" {
			name = u.Hostname()
		}
		return strings.TrimSuffix(name, path.Ext(name))
	}
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// namer hands out output names, numbering repeats in input order.
type namer map[string]int

func newNamer() namer { return namer{} }

func (n namer) next(name string) string {
	for {
		n[name]++
		count := n[name]
		if count == 1 {
			return name
		}
		candidate := fmt.Sprintf("%s-%d", name, count)
		if n[candidate] == 0 {
			n[candidate] = 1
			return candidate
		}
	}
}

func extension(f render.Format) string {
	switch f {
	case render.HTML:
		return ".html"
	case render.Markdown:
		return ".md"
	default:
		return ".json"
	}
}
