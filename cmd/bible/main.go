// Package main provides a command-line client for Bible corpora.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/christian-word/bible-mcp/bible"
	"github.com/christian-word/bible-mcp/readers"
)

// CLI defines the command-line interface using Kong
var CLI struct {
	Source  string        `name:"source" short:"s" help:"Corpus location, a URL or a local JSON/YAML file" env:"BIBLE_SOURCE"`
	Timeout time.Duration `name:"timeout" default:"30s" help:"Corpus load timeout"`
	JSON    bool          `name:"json" help:"Print one JSON object per line"`
	Verbose bool          `name:"verbose" short:"v" help:"Verbose output"`

	Books    BooksCmd    `cmd:"" help:"List books"`
	Chapters ChaptersCmd `cmd:"" help:"List chapters of a book"`
	Verses   VersesCmd   `cmd:"" help:"List verses of a chapter"`
	Verse    VerseCmd    `cmd:"" help:"Print a single verse"`
	Range    RangeCmd    `cmd:"" help:"Print verses matching a selector such as 1-3,5"`
	Search   SearchCmd   `cmd:"" help:"Find verses containing text, ignoring case"`
	Grep     GrepCmd     `cmd:"" help:"Find verses matching a regular expression, ignoring case"`
	Random   RandomCmd   `cmd:"" help:"Print a random verse"`
	Text     TextCmd     `cmd:"" help:"Print a chapter as one text"`
	Dump     DumpCmd     `cmd:"" help:"Print every verse of a book"`
}

func newLogger(verbose bool) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          "bible",
		ReportTimestamp: true,
		Level:           log.WarnLevel,
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("bible"),
		kong.Description("Query Book/Chapter/Verse corpora from the command line"),
		kong.UsageOnError(),
	)

	logger := slog.New(newLogger(CLI.Verbose))
	src := readers.NewUniversalReader(CLI.Source, logger)
	b := bible.New(src,
		bible.WithLogger(logger),
		bible.WithLoadTimeout(CLI.Timeout))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	a := newApp(ctx, b, os.Stdout, CLI.JSON)
	kctx.FatalIfErrorf(kctx.Run(a))
}
