package bible

// Book is one book of a normalized corpus.
type Book struct {
	Number    string
	ShortName string
	Name      string
	Chapters  []Chapter
}

type Chapter struct {
	Number string
	Verses []Verse
}

type Verse struct {
	Number string
	Text   string
	lower  string
}

// NewVerse builds a verse with its lowercase search text precomputed.
func NewVerse(number, text string) Verse {
	return Verse{Number: number, Text: text, lower: lowerText(text)}
}

// TextLower is the lowercase form of Text cached at normalization time.
func (v Verse) TextLower() string { return v.lower }

// Corpus is the canonical Book→Chapter→Verse model. It is built once by
// Normalize and must not be modified afterwards; every accessor only reads.
type Corpus struct {
	books []Book
}

// NewCorpus wraps already canonical books. Verses must come from NewVerse.
func NewCorpus(books []Book) *Corpus {
	if books == nil {
		books = []Book{}
	}
	return &Corpus{books: books}
}

func (c *Corpus) Books() []Book { return c.books }

// VerseCount is the total number of verses across all books.
func (c *Corpus) VerseCount() int {
	n := 0
	for _, b := range c.books {
		for _, ch := range b.Chapters {
			n += len(ch.Verses)
		}
	}
	return n
}

type BookInfo struct {
	Number    string `json:"number"`
	ShortName string `json:"shortName"`
	Name      string `json:"name"`
}

type VerseText struct {
	Number string `json:"number"`
	Text   string `json:"text"`
}

// Match is a verse located in the corpus, as returned by searches.
type Match struct {
	Book    string `json:"book"`
	Chapter string `json:"chapter"`
	Verse   string `json:"verse"`
	Text    string `json:"text"`
}

type ChapterVerse struct {
	Chapter string `json:"chapter"`
	Verse   string `json:"verse"`
	Text    string `json:"text"`
}
