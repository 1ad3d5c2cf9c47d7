package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/christian-word/bible-mcp/bible"
)

type app struct {
	ctx  context.Context
	b    *bible.Bible
	out  io.Writer
	json bool
	ref  lipgloss.Style
}

func newApp(ctx context.Context, b *bible.Bible, out io.Writer, asJSON bool) *app {
	return &app{
		ctx:  ctx,
		b:    b,
		out:  out,
		json: asJSON,
		ref:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
	}
}

// emit prints items as JSON lines or through plain.
func emit[T any](a *app, items []T, plain func(T) string) error {
	for _, it := range items {
		if a.json {
			raw, err := json.Marshal(it)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, string(raw))
			continue
		}
		fmt.Fprintln(a.out, plain(it))
	}
	return nil
}

func (a *app) match(m bible.Match) string {
	return fmt.Sprintf("%s %s", a.ref.Render(fmt.Sprintf("%s %s:%s", m.Book, m.Chapter, m.Verse)), m.Text)
}

func (a *app) verse(v bible.VerseText) string {
	return fmt.Sprintf("%s %s", a.ref.Render(v.Number), v.Text)
}

func limit[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}

type BooksCmd struct{}

func (c *BooksCmd) Run(a *app) error {
	books, err := a.b.ListBooks(a.ctx)
	if err != nil {
		return err
	}
	return emit(a, books, func(b bible.BookInfo) string {
		if b.ShortName == "" {
			return fmt.Sprintf("%s %s", a.ref.Render(b.Number), b.Name)
		}
		return fmt.Sprintf("%s %s (%s)", a.ref.Render(b.Number), b.Name, b.ShortName)
	})
}

type ChaptersCmd struct {
	Book string `arg:"" help:"Book number, name or short name"`
}

func (c *ChaptersCmd) Run(a *app) error {
	chapters, err := a.b.ListChapters(a.ctx, c.Book)
	if err != nil {
		return err
	}
	return emit(a, chapters, func(s string) string { return s })
}

type VersesCmd struct {
	Book    string `arg:"" help:"Book number, name or short name"`
	Chapter string `arg:"" help:"Chapter number"`
}

func (c *VersesCmd) Run(a *app) error {
	verses, err := a.b.ListVerses(a.ctx, c.Book, c.Chapter)
	if err != nil {
		return err
	}
	return emit(a, verses, a.verse)
}

type VerseCmd struct {
	Book    string `arg:"" help:"Book number, name or short name"`
	Chapter string `arg:"" help:"Chapter number"`
	Verse   string `arg:"" help:"Verse number"`
}

func (c *VerseCmd) Run(a *app) error {
	v, ok, err := a.b.GetVerse(a.ctx, c.Book, c.Chapter, c.Verse)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("verse %s %s:%s not found", c.Book, c.Chapter, c.Verse)
	}
	return emit(a, []bible.VerseText{v}, a.verse)
}

type RangeCmd struct {
	Book     string `arg:"" help:"Book number, name or short name"`
	Chapter  string `arg:"" help:"Chapter number"`
	Selector string `arg:"" help:"Comma separated verse numbers and ranges"`
}

func (c *RangeCmd) Run(a *app) error {
	verses, err := a.b.GetVersesInRange(a.ctx, c.Book, c.Chapter, c.Selector)
	if err != nil {
		return err
	}
	return emit(a, verses, a.verse)
}

type SearchCmd struct {
	Query string `arg:"" help:"Text to look for"`
	Limit int    `name:"limit" short:"n" help:"Maximum number of results, 0 for all"`
}

func (c *SearchCmd) Run(a *app) error {
	res, err := a.b.Search(a.ctx, c.Query)
	if err != nil {
		return err
	}
	return emit(a, limit(res, c.Limit), a.match)
}

type GrepCmd struct {
	Pattern string        `arg:"" help:"Regular expression"`
	Limit   int           `name:"limit" short:"n" help:"Maximum number of results, 0 for all"`
	Timeout time.Duration `name:"match-timeout" default:"1s" help:"Time limit for a single match"`
}

func (c *GrepCmd) Run(a *app) error {
	re, err := bible.CompilePattern(c.Pattern, c.Timeout)
	if err != nil {
		return err
	}
	res, err := a.b.SearchRegexp(a.ctx, re)
	if err != nil {
		return err
	}
	return emit(a, limit(res, c.Limit), a.match)
}

type RandomCmd struct{}

func (c *RandomCmd) Run(a *app) error {
	m, ok, err := a.b.RandomVerse(a.ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no verses available")
	}
	return emit(a, []bible.Match{m}, a.match)
}

type TextCmd struct {
	Book    string `arg:"" help:"Book number, name or short name"`
	Chapter string `arg:"" help:"Chapter number"`
}

func (c *TextCmd) Run(a *app) error {
	text, err := a.b.ChapterText(a.ctx, c.Book, c.Chapter)
	if err != nil {
		return err
	}
	if a.json {
		return emit(a, []struct {
			Text string `json:"text"`
		}{{Text: text}}, nil)
	}
	fmt.Fprintln(a.out, text)
	return nil
}

type DumpCmd struct {
	Book string `arg:"" help:"Book number, name or short name"`
}

func (c *DumpCmd) Run(a *app) error {
	verses, err := a.b.AllVerses(a.ctx, c.Book)
	if err != nil {
		return err
	}
	return emit(a, verses, func(v bible.ChapterVerse) string {
		return fmt.Sprintf("%s %s", a.ref.Render(v.Chapter+":"+v.Verse), v.Text)
	})
}
