package main

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Dependencies holds the I/O and logger handed to every command.
type Dependencies struct {
	Ctx    context.Context
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Log    zerolog.Logger
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Log debug events"`

	Extract ExtractCmd `cmd:"" help:"Extract chapters from URLs or HTML files"`
	Serve   ServeCmd   `cmd:"" help:"Serve extraction over HTTP"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

// EngineFlags select how pages are parsed.
type EngineFlags struct {
	Lexicon string        `type:"existingfile" env:"GETBOOK_LEXICON" help:"YAML file overriding the built-in lexicon"`
	Timeout time.Duration `default:"30s" env:"GETBOOK_TIMEOUT" help:"Time budget for parsing one document"`
	Engine  string        `enum:"heuristic,readability" default:"heuristic" help:"Engine for pages without a site adapter (heuristic, readability)"`
	Rate    float64       `default:"0" help:"Requests per second to each host, 0 for unlimited"`
}

// ExtractCmd is the "extract" subcommand.
type ExtractCmd struct {
	EngineFlags

	Inputs      []string `arg:"" optional:"" name:"input" help:"URLs, HTML files, or - for stdin"`
	URL         string   `short:"u" name:"url" help:"Page URL of file and stdin inputs, used to resolve links"`
	Format      string   `short:"f" enum:"json,html,markdown" default:"json" help:"Output format (json, html, markdown)"`
	OutputDir   string   `short:"o" name:"output-dir" help:"Write one file per input instead of printing"`
	Concurrency int      `short:"c" default:"4" help:"Inputs processed at once"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	EngineFlags

	Addr string `default:":8080" env:"GETBOOK_ADDR" help:"Listen address"`
}

// VersionCmd is the "version" subcommand.
type VersionCmd struct{}
