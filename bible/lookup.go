package bible

import (
	"strconv"
	"strings"
)

// isNumeric reports whether id is made of ASCII digits only.
func isNumeric(id string) bool {
	if id == "" {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < '0' || id[i] > '9' {
			return false
		}
	}
	return true
}

// numericValue parses a stored number the way a loose numeric comparison
// would: surrounding spaces are ignored and decimals are allowed.
func numericValue(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f, err == nil
}

// resolveNumeric finds the first item whose number equals n numerically and
// falls back to the 1-based position n.
func resolveNumeric[T any](items []T, number func(T) string, n float64) (int, bool) {
	for i, it := range items {
		if v, ok := numericValue(number(it)); ok && v == n {
			return i, true
		}
	}
	if n >= 1 && n <= float64(len(items)) {
		return int(n) - 1, true
	}
	return -1, false
}

func resolveIndex[T any](items []T, number func(T) string, id string) (int, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return -1, false
	}
	if isNumeric(id) {
		n, _ := strconv.ParseFloat(id, 64)
		return resolveNumeric(items, number, n)
	}
	for i, it := range items {
		if number(it) == id {
			return i, true
		}
	}
	return -1, false
}

func bookNumber(b Book) string       { return b.Number }
func bookName(b Book) string         { return b.Name }
func bookShortName(b Book) string    { return b.ShortName }
func chapterNumber(c Chapter) string { return c.Number }
func verseNumber(v Verse) string     { return v.Number }

// Book fields in match priority order.
var (
	bookExactFields = []func(Book) string{bookName, bookShortName, bookNumber}
	bookFuzzyFields = []func(Book) string{bookName, bookShortName}
)

// ResolveBook finds a book by number, 1-based position, or case-insensitive
// name/abbreviation. Exact name matches win over substring matches.
func (c *Corpus) ResolveBook(id string) (Book, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Book{}, false
	}
	if isNumeric(id) {
		n, _ := strconv.ParseFloat(id, 64)
		if i, ok := resolveNumeric(c.books, bookNumber, n); ok {
			return c.books[i], true
		}
		return Book{}, false
	}

	s := lowerText(id)
	for _, get := range bookExactFields {
		for _, b := range c.books {
			if v := get(b); v != "" && lowerText(v) == s {
				return b, true
			}
		}
	}
	for _, get := range bookFuzzyFields {
		for _, b := range c.books {
			if v := get(b); v != "" && strings.Contains(lowerText(v), s) {
				return b, true
			}
		}
	}
	return Book{}, false
}

// ResolveChapter finds a chapter by number or 1-based position. Non-numeric
// identifiers must equal the chapter number exactly.
func (b Book) ResolveChapter(id string) (Chapter, bool) {
	i, ok := resolveIndex(b.Chapters, chapterNumber, id)
	if !ok {
		return Chapter{}, false
	}
	return b.Chapters[i], true
}

// ResolveVerse applies the chapter rule to a verse list.
func ResolveVerse(verses []Verse, id string) (Verse, bool) {
	i, ok := resolveIndex(verses, verseNumber, id)
	if !ok {
		return Verse{}, false
	}
	return verses[i], true
}

func (c *Corpus) resolveChapter(bookID, chapterID string) (Book, Chapter, bool) {
	b, ok := c.ResolveBook(bookID)
	if !ok {
		return Book{}, Chapter{}, false
	}
	ch, ok := b.ResolveChapter(chapterID)
	return b, ch, ok
}
