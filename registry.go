package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/christian-word/bible-mcp/bible"
	"github.com/christian-word/bible-mcp/docstore"
	"github.com/christian-word/bible-mcp/readers"
	"github.com/fsnotify/fsnotify"
)

type VerseIndex interface {
	Replace(ctx context.Context, source string, verses []docstore.Verse) error
}

// CorpusRegistry owns the Bible instance served to clients. A reload builds
// a fresh instance and swaps it in only once it has loaded successfully.
type CorpusRegistry struct {
	log              *slog.Logger
	source           string
	mergeEventsDelay time.Duration
	newBible         func() *bible.Bible
	index            VerseIndex
	current          atomic.Pointer[bible.Bible]
}

func NewCorpusRegistry(log *slog.Logger, source string, newBible func() *bible.Bible) *CorpusRegistry {
	reg := &CorpusRegistry{
		log:      log,
		source:   source,
		newBible: newBible,
	}
	reg.current.Store(newBible())
	return reg
}

func (r *CorpusRegistry) Current() *bible.Bible {
	return r.current.Load()
}

// Sync waits for the current instance to load and indexes its verses.
func (r *CorpusRegistry) Sync(ctx context.Context) error {
	b := r.Current()
	if err := b.Ready(ctx); err != nil {
		return fmt.Errorf("failed to load corpus from %s: %w", r.source, err)
	}

	return r.reindex(ctx, b)
}

// Reload loads the source into a new instance. On failure the current
// instance keeps serving.
func (r *CorpusRegistry) Reload(ctx context.Context) error {
	b := r.newBible()
	if err := b.Ready(ctx); err != nil {
		return fmt.Errorf("failed to reload corpus from %s: %w", r.source, err)
	}

	prev := r.current.Swap(b)
	r.log.Info("corpus reloaded", "instance", b.ID(), "previous", prev.ID())

	return r.reindex(ctx, b)
}

func (r *CorpusRegistry) reindex(ctx context.Context, b *bible.Bible) error {
	if r.index == nil {
		return nil
	}

	c, err := b.Corpus(ctx)
	if err != nil {
		return err
	}

	verses := corpusVerses(c)
	err = r.index.Replace(ctx, r.source, verses)
	if err != nil {
		return fmt.Errorf("failed to index corpus: %w", err)
	}

	r.log.Info("corpus indexed", "source", r.source, "verses", len(verses))
	return nil
}

func corpusVerses(c *bible.Corpus) []docstore.Verse {
	res := make([]docstore.Verse, 0, c.VerseCount())
	for _, b := range c.Books() {
		for _, ch := range b.Chapters {
			for _, v := range ch.Verses {
				if v.Text == "" {
					continue
				}

				res = append(res, docstore.Verse{
					Book:    b.Number,
					Chapter: ch.Number,
					Verse:   v.Number,
					Text:    v.Text,
				})
			}
		}
	}

	return res
}

// Watch reloads the corpus whenever the source file changes, merging bursts
// of events that arrive within mergeEventsDelay. Remote sources are not
// watched. Watching stops when ctx is done.
func (r *CorpusRegistry) Watch(ctx context.Context) error {
	fr := readers.FileReader{}
	if !fr.CanRead(r.source) {
		r.log.Info("remote source is not watched", "source", r.source)
		return nil
	}

	file, err := filepath.Abs(readers.LocalPath(r.source))
	if err != nil {
		return fmt.Errorf("failed to resolve source path: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	// editors often replace files, so watch the directory
	err = w.Add(filepath.Dir(file))
	if err != nil {
		w.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(file), err)
	}

	go r.watchLoop(ctx, w, file)
	return nil
}

func (r *CorpusRegistry) watchLoop(ctx context.Context, w *fsnotify.Watcher, file string) {
	defer w.Close()

	timer := time.NewTimer(r.mergeEventsDelay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != file || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			timer.Reset(r.mergeEventsDelay)

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			r.log.Warn("watcher error", "error", err)

		case <-timer.C:
			err := r.Reload(ctx)
			if err != nil {
				r.log.Error("corpus reload failed, keeping current", "error", err)
			}
		}
	}
}
