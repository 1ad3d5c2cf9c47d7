package bible

import (
	"fmt"
	"testing"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numberedVerses(texts ...string) []Verse {
	verses := make([]Verse, 0, len(texts))
	for i, t := range texts {
		verses = append(verses, NewVerse(fmt.Sprint(i+1), t))
	}
	return verses
}

func queryCorpus() *Corpus {
	return NewCorpus([]Book{
		{Number: "1", ShortName: "Gen", Name: "Genesis", Chapters: []Chapter{
			{Number: "1", Verses: numberedVerses("one", "two", "three", "four", "five", "six")},
			{Number: "2", Verses: numberedVerses("Love is patient", "nothing here")},
		}},
		{Number: "2", ShortName: "1Jn", Name: "1 John", Chapters: []Chapter{
			{Number: "4", Verses: []Verse{
				NewVerse("7", "Beloved, let us LOVE one another"),
				NewVerse("8", "He that loveth not knoweth not God; for God is love."),
				NewVerse("9", "In this was manifested the love of God"),
			}},
		}},
	})
}

func numbers(vs []VerseText) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Number)
	}
	return out
}

func Test_ListBooks(t *testing.T) {
	assert.Equal(t, []BookInfo{
		{Number: "1", ShortName: "Gen", Name: "Genesis"},
		{Number: "2", ShortName: "1Jn", Name: "1 John"},
	}, queryCorpus().ListBooks())
}

func Test_ListChapters(t *testing.T) {
	c := queryCorpus()
	assert.Equal(t, []string{"1", "2"}, c.ListChapters("gen"))
	assert.Equal(t, []string{"4"}, c.ListChapters("john"))
	assert.Equal(t, []string{}, c.ListChapters("exodus"))
}

func Test_ListVerses(t *testing.T) {
	c := queryCorpus()
	assert.Equal(t, []VerseText{{Number: "1", Text: "Love is patient"}, {Number: "2", Text: "nothing here"}}, c.ListVerses("Genesis", "2"))
	assert.Equal(t, []VerseText{}, c.ListVerses("Genesis", "3"))
	assert.Equal(t, []VerseText{}, c.ListVerses("Exodus", "1"))
}

func Test_GetVerse(t *testing.T) {
	c := queryCorpus()

	v, ok := c.GetVerse("1jn", "4", "8")
	require.True(t, ok)
	assert.Equal(t, "8", v.Number)

	// chapter "1" resolves positionally to chapter "4"; verse "2" positionally to "8"
	v, ok = c.GetVerse("2", "1", "2")
	require.True(t, ok)
	assert.Equal(t, "8", v.Number)

	_, ok = c.GetVerse("1jn", "4", "10")
	assert.False(t, ok)
	_, ok = c.GetVerse("1jn", "5", "1")
	assert.False(t, ok)
}

func Test_GetVersesInRange(t *testing.T) {
	c := queryCorpus()

	var cases = []struct {
		selector string
		output   []string
	}{
		{selector: "2,4-6", output: []string{"2", "4", "5", "6"}},
		{selector: "6,2,4-5", output: []string{"2", "4", "5", "6"}},
		{selector: "x-y,3", output: []string{"3"}},
		{selector: "1, 1 ,1-2, ,", output: []string{"1", "2"}},
		{selector: "5-3", output: []string{}},
		{selector: "0,7,-1", output: []string{}},
		{selector: "2a,5b-6c", output: []string{"2", "5", "6"}},
		{selector: "1-999999999999999999999999", output: []string{"1", "2", "3", "4", "5", "6"}},
		{selector: "", output: []string{}},
	}

	for i, tc := range cases {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			assert.Equal(t, tc.output, numbers(c.GetVersesInRange("Genesis", "1", tc.selector)))
		})
	}
}

func Test_GetVersesInRange_NumbersBeforePositions(t *testing.T) {
	c := queryCorpus()

	// verses are numbered 7, 8, 9: 1-2 resolve by position, 8-9 by number
	assert.Equal(t, []string{"7", "8", "8", "9"}, numbers(c.GetVersesInRange("1jn", "4", "1-2,8-9")))
	assert.Equal(t, []VerseText{}, c.GetVersesInRange("nope", "4", "1"))
}

func Test_Search(t *testing.T) {
	c := queryCorpus()

	res := c.Search("love")
	assert.Equal(t, []Match{
		{Book: "Genesis", Chapter: "2", Verse: "1", Text: "Love is patient"},
		{Book: "1 John", Chapter: "4", Verse: "7", Text: "Beloved, let us LOVE one another"},
		{Book: "1 John", Chapter: "4", Verse: "8", Text: "He that loveth not knoweth not God; for God is love."},
		{Book: "1 John", Chapter: "4", Verse: "9", Text: "In this was manifested the love of God"},
	}, res)

	assert.Len(t, c.Search("LOVE ONE"), 1)
	assert.Equal(t, []Match{}, c.Search(""))
	assert.Equal(t, []Match{}, c.Search("charity"))
}

func Test_SearchRegexp(t *testing.T) {
	c := queryCorpus()

	re, err := CompilePattern(`\blove\b(?! of)`, time.Second)
	require.NoError(t, err)

	res, err := c.SearchRegexp(re)
	require.NoError(t, err)

	var refs []string
	for _, m := range res {
		refs = append(refs, m.Chapter+":"+m.Verse)
	}
	assert.Equal(t, []string{"2:1", "4:7", "4:8"}, refs)
}

func Test_CompilePattern_Invalid(t *testing.T) {
	_, err := CompilePattern("(unclosed", time.Second)
	require.Error(t, err)

	var perr *PatternError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "(unclosed", perr.Pattern)
	assert.ErrorIs(t, err, ErrPattern)
}

func Test_CompilePattern_Unicode(t *testing.T) {
	re, err := CompilePattern(`^бог\s`, time.Second)
	require.NoError(t, err)

	ok, err := re.MatchString("БОГ есть любовь")
	require.NoError(t, err)
	assert.True(t, ok)
}

func Test_withIgnoreCase(t *testing.T) {
	re := regexp2.MustCompile("LOVE", regexp2.None)

	ci, err := withIgnoreCase(re, time.Second)
	require.NoError(t, err)

	ok, err := ci.MatchString("love")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Second, ci.MatchTimeout)
}

func Test_withIgnoreCase_KeepsRightToLeft(t *testing.T) {
	re := regexp2.MustCompile(`LIGHT\w*`, regexp2.RightToLeft)

	ci, err := withIgnoreCase(re, 0)
	require.NoError(t, err)
	assert.True(t, ci.RightToLeft())

	m, err := ci.FindStringMatch("light and lighter")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "lighter", m.String())
}

func Test_RandomVerse(t *testing.T) {
	single := NewCorpus([]Book{{Number: "1", Name: "Jude", Chapters: []Chapter{
		{Number: "1", Verses: numberedVerses("only")},
	}}})

	for range 50 {
		m, ok := single.RandomVerse(func(n int) int { return n - 1 })
		require.True(t, ok)
		assert.Equal(t, Match{Book: "Jude", Chapter: "1", Verse: "1", Text: "only"}, m)
	}

	c := queryCorpus()
	draws := []int{1, 0, 2}
	m, ok := c.RandomVerse(func(n int) int {
		d := draws[0]
		draws = draws[1:]
		return d
	})
	require.True(t, ok)
	assert.Equal(t, Match{Book: "1 John", Chapter: "4", Verse: "9", Text: "In this was manifested the love of God"}, m)
}

func Test_RandomVerse_Empty(t *testing.T) {
	first := func(int) int { return 0 }

	var cases = []*Corpus{
		NewCorpus(nil),
		NewCorpus([]Book{{Number: "1"}}),
		NewCorpus([]Book{{Number: "1", Chapters: []Chapter{{Number: "1"}}}}),
	}

	for i, c := range cases {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			_, ok := c.RandomVerse(first)
			assert.False(t, ok)
		})
	}
}

func Test_ChapterText(t *testing.T) {
	c := queryCorpus()
	assert.Equal(t, "1. Love is patient 2. nothing here", c.ChapterText("gen", "2"))
	assert.Equal(t, "", c.ChapterText("gen", "9"))
}

func Test_AllVerses(t *testing.T) {
	c := queryCorpus()

	all := c.AllVerses("Genesis")
	require.Len(t, all, 8)
	assert.Equal(t, ChapterVerse{Chapter: "1", Verse: "1", Text: "one"}, all[0])
	assert.Equal(t, ChapterVerse{Chapter: "2", Verse: "2", Text: "nothing here"}, all[7])

	assert.Equal(t, []ChapterVerse{}, c.AllVerses("Revelation"))
}
