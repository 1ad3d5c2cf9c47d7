package bible

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Candidate field names, in priority order.
var (
	bookNumberFields  = []string{"number"}
	bookShortFields   = []string{"shortName", "short", "abbr"}
	bookNameFields    = []string{"name", "title", "book"}
	chapterNumFields  = []string{"number"}
	verseNumberFields = []string{"number", "verseNumber", "verse", "v", "id"}
	verseTextFields   = []string{"text", "content", "t", "tr", "line"}
)

// sequenceRule finds a sequence inside a value. Rules are tried in order and
// the first one that matches wins.
type sequenceRule struct {
	name string
	find func(v Value) (Value, bool)
}

var bookListRules = []sequenceRule{
	{name: "root", find: self},
	{name: "books", find: field("books")},
	{name: "body", find: field("body")},
	{name: "first sequence field", find: firstSequenceField},
}

var chapterListRules = []sequenceRule{
	{name: "chapters", find: field("chapters")},
	{name: "body", find: field("body")},
}

var verseListRules = []sequenceRule{
	{name: "chapter", find: self},
	{name: "verses", find: field("verses")},
	{name: "body", find: field("body")},
	{name: "numbered keys", find: numberedKeys},
}

func self(v Value) (Value, bool) { return v, v.IsSequence() }

func field(key string) func(Value) (Value, bool) {
	return func(v Value) (Value, bool) {
		f, ok := v.Get(key)
		return f, ok && f.IsSequence()
	}
}

// firstSequenceField only applies when the document declares neither of the
// conventional wrapper fields.
func firstSequenceField(v Value) (Value, bool) {
	if v.Has("books") || v.Has("body") {
		return Value{}, false
	}
	for _, f := range v.Fields() {
		if f.Value.IsSequence() {
			return f.Value, true
		}
	}
	return Value{}, false
}

// numberedKeys turns {"1": "...", "2": "..."} into verse records ordered by
// key value.
func numberedKeys(v Value) (Value, bool) {
	if !v.IsMapping() || v.Has("verses") {
		return Value{}, false
	}

	type keyed struct {
		n     int
		field Field
	}
	var found []keyed
	for _, f := range v.Fields() {
		n, err := strconv.Atoi(f.Key)
		if err != nil {
			continue
		}
		found = append(found, keyed{n: n, field: f})
	}
	if len(found) == 0 {
		return Value{}, false
	}

	slices.SortStableFunc(found, func(a, b keyed) int { return cmp.Compare(a.n, b.n) })
	items := make([]Value, 0, len(found))
	for _, k := range found {
		items = append(items, Mapping(
			F("number", String(k.field.Key)),
			F("text", k.field.Value),
		))
	}
	return Sequence(items...), true
}

func findSequence(v Value, rules []sequenceRule) []Value {
	for _, r := range rules {
		if seq, ok := r.find(v); ok {
			return seq.Items()
		}
	}
	return nil
}

// pick returns the text of the first present scalar among keys.
func pick(v Value, keys []string) (string, bool) {
	for _, k := range keys {
		f, ok := v.Get(k)
		if ok && f.present() && f.IsScalar() {
			return f.Text(), true
		}
	}
	return "", false
}

func position(i int) string { return strconv.Itoa(i + 1) }

// Normalize maps an arbitrarily shaped document into the canonical model.
// It never fails: unrecognized shapes degrade to defaults or are skipped.
func Normalize(raw Value) *Corpus {
	n := normalizer{lower: cases.Lower(language.Und)}
	items := findSequence(raw, bookListRules)
	books := make([]Book, 0, len(items))
	for i, b := range items {
		books = append(books, n.book(b, i))
	}
	return NewCorpus(books)
}

type normalizer struct {
	lower cases.Caser
}

func (n *normalizer) book(v Value, i int) Book {
	number, ok := pick(v, bookNumberFields)
	if !ok {
		number = position(i)
	}
	short, _ := pick(v, bookShortFields)
	name, ok := pick(v, bookNameFields)
	if !ok {
		name = fmt.Sprintf("Book %s", number)
	}

	items := findSequence(v, chapterListRules)
	chapters := make([]Chapter, 0, len(items))
	for ci, ch := range items {
		chapters = append(chapters, n.chapter(ch, ci))
	}

	return Book{Number: number, ShortName: short, Name: name, Chapters: chapters}
}

func (n *normalizer) chapter(v Value, i int) Chapter {
	number, ok := pick(v, chapterNumFields)
	if !ok {
		number = position(i)
	}

	items := findSequence(v, verseListRules)
	verses := make([]Verse, 0, len(items))
	for vi, raw := range items {
		verses = append(verses, n.verse(raw, vi))
	}

	return Chapter{Number: number, Verses: verses}
}

func (n *normalizer) verse(v Value, i int) Verse {
	number := position(i)
	var text string

	switch v.Kind() {
	case KindString:
		text = v.Text()
	case KindMapping:
		if num, ok := pick(v, verseNumberFields); ok {
			number = num
		}
		if t, ok := pick(v, verseTextFields); ok {
			text = t
		} else {
			text = firstStringField(v)
		}
	case KindSequence:
		for _, item := range v.Items() {
			if item.Kind() == KindString {
				text = item.Text()
				break
			}
		}
	default:
		text = v.Text()
	}

	return Verse{Number: number, Text: text, lower: n.lower.String(text)}
}

// firstStringField is the last resort for records whose text lives under an
// unknown key.
func firstStringField(v Value) string {
	for _, f := range v.Fields() {
		if f.Key != "number" && f.Value.Kind() == KindString {
			return f.Value.Text()
		}
	}
	return ""
}

// lowerText is the case folding applied to both verse text and queries.
func lowerText(s string) string {
	return cases.Lower(language.Und).String(s)
}
