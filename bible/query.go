package bible

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
)

// ListBooks projects every book in stored order.
func (c *Corpus) ListBooks() []BookInfo {
	out := make([]BookInfo, 0, len(c.books))
	for _, b := range c.books {
		out = append(out, BookInfo{Number: b.Number, ShortName: b.ShortName, Name: b.Name})
	}
	return out
}

func (c *Corpus) ListChapters(bookID string) []string {
	b, ok := c.ResolveBook(bookID)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(b.Chapters))
	for _, ch := range b.Chapters {
		out = append(out, ch.Number)
	}
	return out
}

func (c *Corpus) ListVerses(bookID, chapterID string) []VerseText {
	_, ch, ok := c.resolveChapter(bookID, chapterID)
	if !ok {
		return []VerseText{}
	}
	return verseTexts(ch.Verses)
}

func (c *Corpus) GetVerse(bookID, chapterID, verseID string) (VerseText, bool) {
	_, ch, ok := c.resolveChapter(bookID, chapterID)
	if !ok || len(ch.Verses) == 0 {
		return VerseText{}, false
	}
	v, ok := ResolveVerse(ch.Verses, verseID)
	if !ok {
		return VerseText{}, false
	}
	return VerseText{Number: v.Number, Text: v.Text}, true
}

// GetVersesInRange returns the verses referenced by a selector like
// "1,3,5-7" in ascending order, whatever the order of the tokens.
func (c *Corpus) GetVersesInRange(bookID, chapterID, selector string) []VerseText {
	_, ch, ok := c.resolveChapter(bookID, chapterID)
	if !ok {
		return []VerseText{}
	}
	return verseTexts(versesInSpans(ch.Verses, parseSelector(selector)))
}

// Search finds verses containing query, ignoring case, in traversal order.
func (c *Corpus) Search(query string) []Match {
	out := []Match{}
	if query == "" {
		return out
	}
	q := lowerText(query)
	c.walk(func(b Book, ch Chapter, v Verse) error {
		if strings.Contains(v.lower, q) {
			out = append(out, match(b, ch, v))
		}
		return nil
	})
	return out
}

// SearchRegexp matches re against the raw verse text. A match that fails,
// such as one exceeding the pattern's timeout, aborts the scan with a
// PatternError.
func (c *Corpus) SearchRegexp(re *regexp2.Regexp) ([]Match, error) {
	out := []Match{}
	err := c.walk(func(b Book, ch Chapter, v Verse) error {
		ok, err := re.MatchString(v.Text)
		if err != nil {
			return &PatternError{Pattern: re.String(), Err: err}
		}
		if ok {
			out = append(out, match(b, ch, v))
		}
		return nil
	})
	if err != nil {
		return []Match{}, err
	}
	return out, nil
}

// RandomVerse draws a book, then a chapter in it, then a verse in it, each
// uniformly. intn must return a value in [0, n).
func (c *Corpus) RandomVerse(intn func(n int) int) (Match, bool) {
	if len(c.books) == 0 {
		return Match{}, false
	}
	b := c.books[intn(len(c.books))]
	if len(b.Chapters) == 0 {
		return Match{}, false
	}
	ch := b.Chapters[intn(len(b.Chapters))]
	if len(ch.Verses) == 0 {
		return Match{}, false
	}
	return match(b, ch, ch.Verses[intn(len(ch.Verses))]), true
}

// ChapterText renders a chapter as "1. text 2. text ...".
func (c *Corpus) ChapterText(bookID, chapterID string) string {
	_, ch, ok := c.resolveChapter(bookID, chapterID)
	if !ok {
		return ""
	}
	parts := make([]string, 0, len(ch.Verses))
	for _, v := range ch.Verses {
		parts = append(parts, fmt.Sprintf("%s. %s", v.Number, v.Text))
	}
	return strings.Join(parts, " ")
}

// AllVerses flattens one book in stored order.
func (c *Corpus) AllVerses(bookID string) []ChapterVerse {
	b, ok := c.ResolveBook(bookID)
	if !ok {
		return []ChapterVerse{}
	}
	out := []ChapterVerse{}
	for _, ch := range b.Chapters {
		for _, v := range ch.Verses {
			out = append(out, ChapterVerse{Chapter: ch.Number, Verse: v.Number, Text: v.Text})
		}
	}
	return out
}

func (c *Corpus) walk(fn func(b Book, ch Chapter, v Verse) error) error {
	for _, b := range c.books {
		for _, ch := range b.Chapters {
			for _, v := range ch.Verses {
				if err := fn(b, ch, v); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func match(b Book, ch Chapter, v Verse) Match {
	return Match{Book: b.Name, Chapter: ch.Number, Verse: v.Number, Text: v.Text}
}

func verseTexts(verses []Verse) []VerseText {
	out := make([]VerseText, 0, len(verses))
	for _, v := range verses {
		out = append(out, VerseText{Number: v.Number, Text: v.Text})
	}
	return out
}
