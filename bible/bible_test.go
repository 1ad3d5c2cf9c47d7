package bible

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedLoader blocks until release is closed and counts its calls.
type gatedLoader struct {
	calls   atomic.Int32
	release chan struct{}
	value   Value
	err     error
}

func newGatedLoader(v Value, err error) *gatedLoader {
	return &gatedLoader{release: make(chan struct{}), value: v, err: err}
}

func (l *gatedLoader) Load(ctx context.Context) (Value, error) {
	l.calls.Add(1)
	<-l.release
	return l.value, l.err
}

func staticLoader(v Value) Loader {
	return LoaderFunc(func(ctx context.Context) (Value, error) { return v, nil })
}

func Test_Bible_QueriesWaitForLoad(t *testing.T) {
	loader := newGatedLoader(canonicalBooks(), nil)
	b := New(loader)

	res := make(chan []BookInfo, 1)
	go func() {
		books, err := b.ListBooks(context.Background())
		assert.NoError(t, err)
		res <- books
	}()

	select {
	case <-res:
		t.Fatal("query returned before the load finished")
	case <-time.After(50 * time.Millisecond):
	}
	assert.False(t, b.Loaded())

	close(loader.release)
	books := <-res
	require.Len(t, books, 2)
	assert.True(t, b.Loaded())
	assert.Equal(t, int32(1), loader.calls.Load())
}

func Test_Bible_FetchErrorSharedByAllCallers(t *testing.T) {
	fetchErr := &FetchError{Source: "https://example.invalid/bible.json", Status: 404}
	loader := newGatedLoader(Value{}, fetchErr)
	b := New(loader)

	const callers = 8
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = b.Search(context.Background(), "love")
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(loader.release)
	wg.Wait()

	for _, err := range errs {
		require.Error(t, err)
		assert.Same(t, fetchErr, err)
		assert.ErrorIs(t, err, ErrFetch)
	}

	_, _, err := b.GetVerse(context.Background(), "1", "1", "1")
	assert.Same(t, fetchErr, err)
	assert.False(t, b.Loaded())
	assert.Equal(t, int32(1), loader.calls.Load())
}

func Test_Bible_ReadyHonorsContext(t *testing.T) {
	loader := newGatedLoader(canonicalBooks(), nil)
	b := New(loader)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, b.Ready(ctx), context.DeadlineExceeded)

	// the abandoned wait does not abort the load
	close(loader.release)
	require.NoError(t, b.Ready(context.Background()))
	assert.Equal(t, int32(1), loader.calls.Load())
}

func Test_Bible_OnReady(t *testing.T) {
	b := New(staticLoader(canonicalBooks()))

	done := make(chan error, 1)
	b.OnReady(func(err error) { done <- err })

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("OnReady callback not called")
	}
}

func Test_Bible_LoadTimeout(t *testing.T) {
	loader := LoaderFunc(func(ctx context.Context) (Value, error) {
		<-ctx.Done()
		return Value{}, &FetchError{Source: "slow", Err: ctx.Err()}
	})
	b := New(loader, WithLoadTimeout(10*time.Millisecond))

	err := b.Ready(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetch)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func Test_Bible_Queries(t *testing.T) {
	ctx := context.Background()
	b := New(staticLoader(canonicalBooks()), WithRandom(func(n int) int { return 0 }))

	chapters, err := b.ListChapters(ctx, "exodus")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, chapters)

	verses, err := b.ListVerses(ctx, "gen", "1")
	require.NoError(t, err)
	assert.Len(t, verses, 2)

	v, ok, err := b.GetVerse(ctx, "Genesis", "1", "2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "And the earth was without form, and void.", v.Text)

	rng, err := b.GetVersesInRange(ctx, "1", "1", "2,1")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, numbers(rng))

	found, err := b.Search(ctx, "EARTH")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	m, ok, err := b.RandomVerse(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Genesis", m.Book)
	assert.Equal(t, "1", m.Verse)

	text, err := b.ChapterText(ctx, "ex", "1")
	require.NoError(t, err)
	assert.Equal(t, "1. Now these are the names of the children of Israel.", text)

	all, err := b.AllVerses(ctx, "gen")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func Test_Bible_SearchPattern(t *testing.T) {
	ctx := context.Background()
	b := New(staticLoader(canonicalBooks()))

	res, err := b.SearchPattern(ctx, `^in the BEGINNING`)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "Genesis", res[0].Book)

	res, err = b.SearchPattern(ctx, `[unclosed`)
	require.NoError(t, err)
	assert.Equal(t, []Match{}, res)

	res, err = b.SearchPattern(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []Match{}, res)

	res, err = b.SearchRegexp(ctx, regexp2.MustCompile(`ISRAEL\.$`, regexp2.None))
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "Exodus", res[0].Book)
}

func Test_Bible_SearchPatternLoadFailure(t *testing.T) {
	parseErr := &ParseError{Source: "bible.json", Format: "JSON", Err: errors.New("unexpected EOF")}
	b := New(LoaderFunc(func(ctx context.Context) (Value, error) { return Value{}, parseErr }))

	_, err := b.SearchPattern(context.Background(), "[")
	assert.Same(t, parseErr, err)
	assert.ErrorIs(t, err, ErrParse)
}
