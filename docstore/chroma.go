package docstore

import (
	"context"
	"fmt"

	chroma "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	"golang.org/x/sync/errgroup"
)

const (
	MetaSource  = "source"
	MetaBook    = "book"
	MetaChapter = "chapter"
	MetaVerse   = "verse"
)

const maxParallelRequests = 4

type ChromaStore struct {
	results     int
	requestSize int
	col         chroma.Collection
}

type ChromaStoreConfig struct {
	BaseURL       string
	Collection    string
	EmbeddingFunc embeddings.EmbeddingFunction
	Results       int
	// RequestSize caps the verse text, in bytes, sent in one Add request.
	RequestSize int
	// Reset drops the collection before use.
	Reset bool
}

func NewChromaStore(ctx context.Context, cfg ChromaStoreConfig) (*ChromaStore, error) {
	client, err := chroma.NewHTTPClient(chroma.WithBaseURL(cfg.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create chroma client: %w", err)
	}

	col, err := openCollection(ctx, cfg.Reset,
		func(ctx context.Context) (chroma.Collection, error) {
			return client.GetOrCreateCollection(ctx, cfg.Collection,
				chroma.WithEmbeddingFunctionCreate(cfg.EmbeddingFunc))
		},
		func(ctx context.Context) error {
			return client.DeleteCollection(ctx, cfg.Collection)
		})
	if err != nil {
		return nil, fmt.Errorf("failed to open collection %s: %w", cfg.Collection, err)
	}

	return &ChromaStore{
		results:     cfg.Results,
		requestSize: cfg.RequestSize,
		col:         col,
	}, nil
}

// Injest adds verses tagged with source. Requests run in parallel; the
// first failure cancels the rest.
func (ds *ChromaStore) Injest(ctx context.Context, source string, verses []Verse) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelRequests)

	for _, batch := range batches(verses, ds.requestSize) {
		g.Go(func() error {
			texts := make([]string, 0, len(batch))
			metas := make([]chroma.DocumentMetadata, 0, len(batch))
			for _, v := range batch {
				texts = append(texts, v.Text)
				metas = append(metas, verseMetadata(source, v))
			}

			return ds.col.Add(gctx,
				chroma.WithTexts(texts...),
				chroma.WithIDGenerator(chroma.NewULIDGenerator()),
				chroma.WithMetadatas(metas...),
			)
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to injest verses from %s: %w", source, err)
	}

	return nil
}

func (ds *ChromaStore) Forget(ctx context.Context, source string) error {
	err := ds.col.Delete(ctx, chroma.WithWhereDelete(chroma.EqString(MetaSource, source)))
	if err != nil {
		return fmt.Errorf("failed to forget verses from %s: %w", source, err)
	}

	return nil
}

// Replace swaps every verse indexed for source with verses.
func (ds *ChromaStore) Replace(ctx context.Context, source string, verses []Verse) error {
	if err := ds.Forget(ctx, source); err != nil {
		return err
	}

	return ds.Injest(ctx, source, verses)
}

// Retrieve returns up to n verses closest to query; n <= 0 uses the
// configured default.
func (ds *ChromaStore) Retrieve(ctx context.Context, query string, n int) ([]SearchResult, error) {
	if n <= 0 {
		n = ds.results
	}

	r, err := ds.col.Query(ctx,
		chroma.WithQueryTexts(query),
		chroma.WithNResults(n),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve verses: %w", err)
	}

	return parseQueryResult(r), nil
}

// openCollection returns the collection, dropping and recreating it first
// when reset is set. The collection is created before the drop so a reset
// on a fresh server does not fail.
func openCollection(ctx context.Context, reset bool,
	getOrCreate func(context.Context) (chroma.Collection, error),
	drop func(context.Context) error,
) (chroma.Collection, error) {
	if reset {
		if _, err := getOrCreate(ctx); err != nil {
			return nil, err
		}
		if err := drop(ctx); err != nil {
			return nil, fmt.Errorf("failed to reset: %w", err)
		}
	}

	return getOrCreate(ctx)
}

func parseQueryResult(r chroma.QueryResult) []SearchResult {
	docGroups := r.GetDocumentsGroups()
	metaGroups := r.GetMetadatasGroups()
	scoreGroups := r.GetDistancesGroups()
	if len(docGroups) == 0 {
		return []SearchResult{}
	}

	docs := docGroups[0]
	res := make([]SearchResult, 0, len(docs))
	for i, doc := range docs {
		sr := SearchResult{Text: doc.ContentString()}
		if len(metaGroups) > 0 && i < len(metaGroups[0]) && metaGroups[0][i] != nil {
			meta := metaGroups[0][i]
			sr.Book, _ = meta.GetString(MetaBook)
			sr.Chapter, _ = meta.GetString(MetaChapter)
			sr.Verse, _ = meta.GetString(MetaVerse)
		}
		if len(scoreGroups) > 0 && i < len(scoreGroups[0]) {
			sr.Score = float32(scoreGroups[0][i])
		}

		res = append(res, sr)
	}

	return res
}

func verseMetadata(source string, v Verse) chroma.DocumentMetadata {
	return chroma.NewDocumentMetadata(
		chroma.NewStringAttribute(MetaSource, source),
		chroma.NewStringAttribute(MetaBook, v.Book),
		chroma.NewStringAttribute(MetaChapter, v.Chapter),
		chroma.NewStringAttribute(MetaVerse, v.Verse),
	)
}

// batches splits verses so that the text in each batch fits size bytes. A
// verse larger than size gets a batch of its own; size <= 0 means one batch.
func batches(verses []Verse, size int) [][]Verse {
	if len(verses) == 0 {
		return nil
	}
	if size <= 0 {
		return [][]Verse{verses}
	}

	var res [][]Verse
	start, total := 0, 0
	for i, v := range verses {
		l := len(v.Text)
		if i > start && total+l > size {
			res = append(res, verses[start:i])
			start, total = i, 0
		}
		total += l
	}

	return append(res, verses[start:])
}
