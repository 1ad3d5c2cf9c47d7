package docstore

// Verse is one indexed verse. Book, Chapter and Verse are the identifiers
// the corpus exposes, so results can be fed back into exact lookups.
type Verse struct {
	Book    string
	Chapter string
	Verse   string
	Text    string
}

type SearchResult struct {
	Book    string
	Chapter string
	Verse   string
	Text    string
	Score   float32
}
