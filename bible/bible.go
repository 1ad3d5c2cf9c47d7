// Package bible normalizes loosely structured Book→Chapter→Verse documents
// into one canonical model and answers read-only queries over it.
//
// A Bible loads its corpus exactly once. Queries issued before the load
// completes wait for it; a failed load is returned to every caller.
package bible

import (
	"context"
	"io"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/google/uuid"
)

// Loader fetches and decodes the raw corpus document.
type Loader interface {
	Load(ctx context.Context) (Value, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context) (Value, error)

func (f LoaderFunc) Load(ctx context.Context) (Value, error) { return f(ctx) }

type Bible struct {
	id             string
	log            *slog.Logger
	loader         Loader
	loadTimeout    time.Duration
	patternTimeout time.Duration
	intn           func(n int) int

	once   sync.Once
	done   chan struct{}
	corpus *Corpus
	err    error
}

type Option func(*Bible)

func WithLogger(log *slog.Logger) Option {
	return func(b *Bible) {
		if log != nil {
			b.log = log
		}
	}
}

// WithLoadTimeout bounds the one-time load. Zero means no bound.
func WithLoadTimeout(d time.Duration) Option {
	return func(b *Bible) { b.loadTimeout = d }
}

func WithPatternTimeout(d time.Duration) Option {
	return func(b *Bible) { b.patternTimeout = d }
}

// WithRandom replaces the source used by RandomVerse. intn must return a
// value in [0, n) and be safe for concurrent use.
func WithRandom(intn func(n int) int) Option {
	return func(b *Bible) { b.intn = intn }
}

// New creates an instance over loader. No I/O happens until Start or the
// first query.
func New(loader Loader, opts ...Option) *Bible {
	b := &Bible{
		id:             uuid.NewString(),
		log:            slog.New(slog.NewTextHandler(io.Discard, nil)),
		loader:         loader,
		patternTimeout: DefaultPatternTimeout,
		intn:           rand.IntN,
		done:           make(chan struct{}),
	}
	for _, o := range opts {
		o(b)
	}
	b.log = b.log.With("instance", b.id)
	return b
}

func (b *Bible) ID() string { return b.id }

// Start begins the one-time load in the background. Later calls do nothing.
// The load is not tied to any caller's context and cannot be aborted.
func (b *Bible) Start() {
	b.once.Do(func() {
		go b.load()
	})
}

func (b *Bible) load() {
	defer close(b.done)

	ctx := context.Background()
	if b.loadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.loadTimeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := b.loader.Load(ctx)
	if err != nil {
		b.err = err
		b.log.Error("corpus load failed", "error", err)
		return
	}

	b.corpus = Normalize(raw)
	b.log.Info("corpus loaded",
		"books", len(b.corpus.books),
		"verses", b.corpus.VerseCount(),
		"duration_ms", time.Since(start).Milliseconds())
}

// Ready starts the load if needed and waits for it. It returns the load
// error, or ctx.Err() if ctx ends first; the load itself keeps running.
func (b *Bible) Ready(ctx context.Context) error {
	_, err := b.Corpus(ctx)
	return err
}

// OnReady calls fn once the load has finished, with its outcome.
func (b *Bible) OnReady(fn func(err error)) {
	b.Start()
	go func() {
		<-b.done
		fn(b.err)
	}()
}

// Loaded reports whether the load finished successfully, without waiting.
func (b *Bible) Loaded() bool {
	select {
	case <-b.done:
		return b.err == nil
	default:
		return false
	}
}

// Corpus waits for the load and returns the normalized model.
func (b *Bible) Corpus(ctx context.Context) (*Corpus, error) {
	b.Start()
	select {
	case <-b.done:
	default:
		select {
		case <-b.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if b.err != nil {
		return nil, b.err
	}
	return b.corpus, nil
}

func (b *Bible) ListBooks(ctx context.Context) ([]BookInfo, error) {
	c, err := b.Corpus(ctx)
	if err != nil {
		return nil, err
	}
	return c.ListBooks(), nil
}

func (b *Bible) ListChapters(ctx context.Context, bookID string) ([]string, error) {
	c, err := b.Corpus(ctx)
	if err != nil {
		return nil, err
	}
	return c.ListChapters(bookID), nil
}

func (b *Bible) ListVerses(ctx context.Context, bookID, chapterID string) ([]VerseText, error) {
	c, err := b.Corpus(ctx)
	if err != nil {
		return nil, err
	}
	return c.ListVerses(bookID, chapterID), nil
}

// GetVerse reports false when the verse does not resolve.
func (b *Bible) GetVerse(ctx context.Context, bookID, chapterID, verseID string) (VerseText, bool, error) {
	c, err := b.Corpus(ctx)
	if err != nil {
		return VerseText{}, false, err
	}
	v, ok := c.GetVerse(bookID, chapterID, verseID)
	return v, ok, nil
}

func (b *Bible) GetVersesInRange(ctx context.Context, bookID, chapterID, selector string) ([]VerseText, error) {
	c, err := b.Corpus(ctx)
	if err != nil {
		return nil, err
	}
	return c.GetVersesInRange(bookID, chapterID, selector), nil
}

func (b *Bible) Search(ctx context.Context, query string) ([]Match, error) {
	c, err := b.Corpus(ctx)
	if err != nil {
		return nil, err
	}
	return c.Search(query), nil
}

// SearchPattern matches a pattern against every verse, ignoring case. An
// empty or invalid pattern yields an empty result; the PatternError is
// logged, not returned. Use CompilePattern to validate input first.
func (b *Bible) SearchPattern(ctx context.Context, pattern string) ([]Match, error) {
	c, err := b.Corpus(ctx)
	if err != nil {
		return nil, err
	}
	if pattern == "" {
		return []Match{}, nil
	}
	re, err := CompilePattern(pattern, b.patternTimeout)
	if err != nil {
		b.log.Warn("pattern search skipped", "error", err)
		return []Match{}, nil
	}
	return b.searchRegexp(c, re), nil
}

// SearchRegexp is SearchPattern for an already compiled pattern, which is
// recompiled to ignore case.
func (b *Bible) SearchRegexp(ctx context.Context, re *regexp2.Regexp) ([]Match, error) {
	c, err := b.Corpus(ctx)
	if err != nil {
		return nil, err
	}
	if re == nil || re.String() == "" {
		return []Match{}, nil
	}
	re, err = withIgnoreCase(re, b.patternTimeout)
	if err != nil {
		b.log.Warn("pattern search skipped", "error", err)
		return []Match{}, nil
	}
	return b.searchRegexp(c, re), nil
}

func (b *Bible) searchRegexp(c *Corpus, re *regexp2.Regexp) []Match {
	res, err := c.SearchRegexp(re)
	if err != nil {
		b.log.Warn("pattern search aborted", "error", err)
	}
	return res
}

// RandomVerse reports false when the corpus, or the drawn book or chapter,
// is empty.
func (b *Bible) RandomVerse(ctx context.Context) (Match, bool, error) {
	c, err := b.Corpus(ctx)
	if err != nil {
		return Match{}, false, err
	}
	m, ok := c.RandomVerse(b.intn)
	return m, ok, nil
}

func (b *Bible) ChapterText(ctx context.Context, bookID, chapterID string) (string, error) {
	c, err := b.Corpus(ctx)
	if err != nil {
		return "", err
	}
	return c.ChapterText(bookID, chapterID), nil
}

func (b *Bible) AllVerses(ctx context.Context, bookID string) ([]ChapterVerse, error) {
	c, err := b.Corpus(ctx)
	if err != nil {
		return nil, err
	}
	return c.AllVerses(bookID), nil
}
