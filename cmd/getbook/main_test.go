package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	main "github.com/mrjoshuak/getbook/cmd/getbook"
	"github.com/mrjoshuak/getbook/types"
)

const page = `<html><head><title>Article Title</title></head><body><main><article><h1>Article Title</h1><p>This is a test paragraph with enough text to be considered relevant content by the extraction algorithm. We need to ensure that this paragraph has sufficient length to be scored highly by the content extraction algorithm.</p><p>Adding another paragraph increases the content score for this article element, making it more likely to be identified as the main content of the page, rather than navigation or other ancillary content.</p><img src="/a.png" alt="pic"></article></main></body></html>`

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	err := main.NewMain().Run(context.Background(), args, strings.NewReader(stdin), stdout, stderr)
	return stdout.String(), stderr.String(), err
}

func writePage(t *testing.T) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "article.html")
	require.NoError(t, os.WriteFile(file, []byte(page), 0o644))
	return file
}

func TestCLI_HelpShowsAllCommands(t *testing.T) {
	t.Parallel()

	stdout := &bytes.Buffer{}
	parser, err := kong.New(&main.CLI{},
		kong.Writers(stdout, &bytes.Buffer{}),
		kong.Exit(func(int) {}),
	)
	require.NoError(t, err)

	_, _ = parser.Parse([]string{"--help"})

	for _, cmd := range []string{"extract", "serve", "version"} {
		assert.Contains(t, stdout.String(), cmd)
	}
}

func TestMain_Run_NoArguments(t *testing.T) {
	t.Parallel()

	stdout, _, err := run(t, "")
	require.Error(t, err)
	assert.Contains(t, stdout, "extract")
}

func TestMain_Run_Version(t *testing.T) {
	t.Parallel()

	stdout, _, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, types.Name+" "+types.Version)
}

func TestExtract_FileToJSON(t *testing.T) {
	t.Parallel()

	stdout, _, err := run(t, "", "extract", "--url", "https://example.com/posts/1", writePage(t))
	require.NoError(t, err)

	var ch types.Chapter
	require.NoError(t, json.Unmarshal([]byte(stdout), &ch))
	assert.Equal(t, "Article Title", ch.Title)
	assert.Equal(t, "https://example.com/posts/1", ch.URL)
	require.Len(t, ch.Attachments["img"], 1)
	assert.Equal(t, "https://example.com/a.png", ch.Attachments["img"][0].Src())
}

func TestExtract_StdinToMarkdown(t *testing.T) {
	t.Parallel()

	stdout, _, err := run(t, page, "extract", "--url", "https://example.com/posts/1", "--format", "markdown", "-")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(stdout, "# Article Title\n"))
	assert.Contains(t, stdout, "![pic](https://example.com/a.png)")
}

func TestExtract_OutputDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	stdout, _, err := run(t, "", "extract", "--format", "html", "--output-dir", dir, writePage(t))
	require.NoError(t, err)
	assert.Contains(t, stdout, "Processed")

	out, err := os.ReadFile(filepath.Join(dir, "article.html"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "<h1>Article Title</h1>")
}

func TestExtract_OutputDirKeepsSameNamedInputsApart(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, _, err := run(t, "", "extract", "--format", "html", "--output-dir", dir,
		writePage(t), writePage(t), writePage(t))
	require.NoError(t, err)

	for _, name := range []string{"article.html", "article-2.html", "article-3.html"} {
		out, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Contains(t, string(out), "<h1>Article Title</h1>")
	}
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestExtract_ReportsFailures(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "missing.html")
	_, stderr, err := run(t, "", "extract", missing, writePage(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 inputs failed")
	assert.Contains(t, stderr, "missing.html")
}

func TestExtract_ReadabilityEngine(t *testing.T) {
	t.Parallel()

	stdout, _, err := run(t, "", "extract", "--engine", "readability", "--url", "https://example.com/posts/1", writePage(t))
	require.NoError(t, err)

	var ch types.Chapter
	require.NoError(t, json.Unmarshal([]byte(stdout), &ch))
	assert.Equal(t, "Article Title", ch.Title)
	assert.Contains(t, ch.Content, "test paragraph")
}

func TestExtract_RejectsUnknownEngine(t *testing.T) {
	t.Parallel()

	_, _, err := run(t, "", "extract", "--engine", "lynx", writePage(t))
	assert.Error(t, err)
}
