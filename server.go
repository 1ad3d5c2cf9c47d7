package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/christian-word/bible-mcp/bible"
	"github.com/christian-word/bible-mcp/docstore"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const serverVersion = "0.1.0"

type bibleSource interface {
	Current() *bible.Bible
}

type verseRetriever interface {
	Retrieve(ctx context.Context, query string, n int) ([]docstore.SearchResult, error)
}

type toolHandlers struct {
	src            bibleSource
	retriever      verseRetriever
	patternTimeout time.Duration
}

// NewBibleServer exposes the corpus as MCP tools. The semantic_search tool
// is registered only when retriever is not nil.
func NewBibleServer(src bibleSource, retriever verseRetriever, patternTimeout time.Duration) *server.MCPServer {
	h := &toolHandlers{
		src:            src,
		retriever:      retriever,
		patternTimeout: patternTimeout,
	}

	book := mcp.WithString("book",
		mcp.Required(),
		mcp.Description("Book number, name or short name. Names match case-insensitively, partial names are accepted"))
	chapter := mcp.WithString("chapter",
		mcp.Required(),
		mcp.Description("Chapter number"))
	limit := mcp.WithNumber("limit",
		mcp.Description("Maximum number of results, 0 for all"))

	srv := server.NewMCPServer("Bible", serverVersion, server.WithToolCapabilities(false))

	srv.AddTool(mcp.NewTool("list_books",
		mcp.WithDescription("Lists all books with their number, short name and name")),
		h.listBooks)
	srv.AddTool(mcp.NewTool("list_chapters",
		mcp.WithDescription("Lists chapter numbers of a book"),
		book),
		h.listChapters)
	srv.AddTool(mcp.NewTool("list_verses",
		mcp.WithDescription("Lists verses of a chapter"),
		book, chapter),
		h.listVerses)
	srv.AddTool(mcp.NewTool("get_verse",
		mcp.WithDescription("Returns a single verse"),
		book, chapter,
		mcp.WithString("verse", mcp.Required(), mcp.Description("Verse number"))),
		h.getVerse)
	srv.AddTool(mcp.NewTool("get_verses_range",
		mcp.WithDescription("Returns verses of a chapter matching a selector such as \"1-3,5\""),
		book, chapter,
		mcp.WithString("range", mcp.Required(), mcp.Description("Comma separated verse numbers and ranges"))),
		h.getVersesRange)
	srv.AddTool(mcp.NewTool("search",
		mcp.WithDescription("Finds verses containing the query, ignoring case"),
		mcp.WithString("query", mcp.Required(), mcp.Description("Text to look for")),
		limit),
		h.search)
	srv.AddTool(mcp.NewTool("search_pattern",
		mcp.WithDescription("Finds verses matching a regular expression, ignoring case"),
		mcp.WithString("pattern", mcp.Required(), mcp.Description("Regular expression")),
		limit),
		h.searchPattern)
	srv.AddTool(mcp.NewTool("random_verse",
		mcp.WithDescription("Returns a random verse")),
		h.randomVerse)
	srv.AddTool(mcp.NewTool("chapter_text",
		mcp.WithDescription("Returns a whole chapter as one text"),
		book, chapter),
		h.chapterText)
	srv.AddTool(mcp.NewTool("all_verses",
		mcp.WithDescription("Returns every verse of a book"),
		book),
		h.allVerses)

	if retriever != nil {
		srv.AddTool(mcp.NewTool("semantic_search",
			mcp.WithDescription("Finds verses close in meaning to the query"),
			mcp.WithString("query", mcp.Required(), mcp.Description("Search query")),
			limit),
			h.semanticSearch)
	}

	return srv
}

func (h *toolHandlers) listBooks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	books, err := h.src.Current().ListBooks(ctx)
	return jsonLinesResult(books, err)
}

func (h *toolHandlers) listChapters(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	book, err := request.RequireString("book")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	chapters, err := h.src.Current().ListChapters(ctx, book)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(strings.Join(chapters, "\n")), nil
}

func (h *toolHandlers) listVerses(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := requireStrings(request, "book", "chapter")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	verses, err := h.src.Current().ListVerses(ctx, args[0], args[1])
	return jsonLinesResult(verses, err)
}

func (h *toolHandlers) getVerse(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := requireStrings(request, "book", "chapter", "verse")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	v, ok, err := h.src.Current().GetVerse(ctx, args[0], args[1], args[2])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("verse %s %s:%s not found", args[0], args[1], args[2])), nil
	}

	return jsonLinesResult([]bible.VerseText{v}, nil)
}

func (h *toolHandlers) getVersesRange(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := requireStrings(request, "book", "chapter", "range")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	verses, err := h.src.Current().GetVersesInRange(ctx, args[0], args[1], args[2])
	return jsonLinesResult(verses, err)
}

func (h *toolHandlers) search(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := h.src.Current().Search(ctx, q)
	return jsonLinesResult(truncate(res, request.GetInt("limit", 0)), err)
}

// searchPattern compiles the pattern up front so clients see syntax errors
// instead of an empty result.
func (h *toolHandlers) searchPattern(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := request.RequireString("pattern")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	re, err := bible.CompilePattern(p, h.patternTimeout)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := h.src.Current().SearchRegexp(ctx, re)
	return jsonLinesResult(truncate(res, request.GetInt("limit", 0)), err)
}

func (h *toolHandlers) randomVerse(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	m, ok, err := h.src.Current().RandomVerse(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !ok {
		return mcp.NewToolResultError("no verses available"), nil
	}

	return jsonLinesResult([]bible.Match{m}, nil)
}

func (h *toolHandlers) chapterText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := requireStrings(request, "book", "chapter")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text, err := h.src.Current().ChapterText(ctx, args[0], args[1])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(text), nil
}

func (h *toolHandlers) allVerses(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	book, err := request.RequireString("book")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	verses, err := h.src.Current().AllVerses(ctx, book)
	return jsonLinesResult(verses, err)
}

func (h *toolHandlers) semanticSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := h.retriever.Retrieve(ctx, q, request.GetInt("limit", 0))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	type scored struct {
		Book    string  `json:"book"`
		Chapter string  `json:"chapter"`
		Verse   string  `json:"verse"`
		Text    string  `json:"text"`
		Score   float32 `json:"score"`
	}
	out := make([]scored, 0, len(res))
	for _, r := range res {
		out = append(out, scored(r))
	}

	return jsonLinesResult(out, nil)
}

func requireStrings(request mcp.CallToolRequest, keys ...string) ([]string, error) {
	res := make([]string, 0, len(keys))
	var errs []error
	for _, k := range keys {
		v, err := request.RequireString(k)
		if err != nil {
			errs = append(errs, err)
		}
		res = append(res, v)
	}

	return res, errors.Join(errs...)
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

// jsonLinesResult renders one JSON object per line.
func jsonLinesResult[T any](items []T, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response strings.Builder
	for _, it := range items {
		raw, err := json.Marshal(it)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		response.Write(raw)
		response.WriteByte('\n')
	}

	return mcp.NewToolResultText(response.String()), nil
}
