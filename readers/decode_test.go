package readers

import (
	"fmt"
	"strings"
	"testing"

	"github.com/christian-word/bible-mcp/bible"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_FormatOf(t *testing.T) {
	var cases = []struct {
		location string
		format   Format
	}{
		{location: "bible.json", format: FormatJSON},
		{location: "dir/bible.YAML", format: FormatYAML},
		{location: "https://example.com/bible.yml?raw=1", format: FormatYAML},
		{location: "https://example.com/bible", format: FormatJSON},
	}

	for i, c := range cases {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			assert.Equal(t, c.format, FormatOf(c.location))
		})
	}
}

func Test_Decode_JSONKeepsKeyOrder(t *testing.T) {
	v, err := Decode([]byte(`{"z": 1, "a": [true, null, "x", 2.50], "m": {}}`), FormatJSON)
	require.NoError(t, err)

	expected := bible.Mapping(
		bible.F("z", bible.Number("1")),
		bible.F("a", bible.Sequence(bible.Bool(true), bible.Null(), bible.String("x"), bible.Number("2.50"))),
		bible.F("m", bible.Mapping()),
	)
	assert.Equal(t, expected, v)
}

func Test_Decode_JSONErrors(t *testing.T) {
	var cases = []string{
		``,
		`{"books": [`,
		`[1, 2] [3]`,
		`{"a" 1}`,
	}

	for i, c := range cases {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			_, err := Decode([]byte(c), FormatJSON)
			assert.Error(t, err)
		})
	}
}

func Test_Decode_StripsBOM(t *testing.T) {
	v, err := Decode(append([]byte{0xEF, 0xBB, 0xBF}, []byte(`["a"]`)...), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, bible.Sequence(bible.String("a")), v)
}

func Test_Decode_YAML(t *testing.T) {
	src := `
base: &verse
  text: shared
books:
  - name: Psalms
    chapters:
      - verses:
          - *verse
          - "plain"
          - 3
          - 1.50
          - ~
          - yes
`
	v, err := Decode([]byte(src), FormatYAML)
	require.NoError(t, err)

	fields := v.Fields()
	require.Len(t, fields, 2)
	assert.Equal(t, "base", fields[0].Key)
	assert.Equal(t, "books", fields[1].Key)

	verses := bible.Normalize(v).Books()[0].Chapters[0].Verses
	require.Len(t, verses, 6)
	assert.Equal(t, "shared", verses[0].Text)
	assert.Equal(t, "plain", verses[1].Text)
	assert.Equal(t, "3", verses[2].Text)
	assert.Equal(t, "1.5", verses[3].Text)
	assert.Equal(t, "", verses[4].Text)
	// YAML 1.2: "yes" is a string
	assert.Equal(t, "yes", verses[5].Text)
}

func Test_Decode_YAMLEmptyAndInvalid(t *testing.T) {
	v, err := Decode([]byte(""), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, bible.KindNull, v.Kind())

	_, err = Decode([]byte("books: [unclosed"), FormatYAML)
	assert.Error(t, err)
}

func Test_Decode_YAMLRecursiveAlias(t *testing.T) {
	var cases = []string{
		"books: &a [*a]\n",
		"root: &m\n  books:\n    - name: Ruth\n      self: *m\n",
	}

	for i, c := range cases {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			_, err := Decode([]byte(c), FormatYAML)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "recursive alias")
		})
	}
}

func Test_Decode_YAMLAliasExpansionLimit(t *testing.T) {
	var src strings.Builder
	src.WriteString("l0: &l0 [\"lol\"]\n")
	for i := 1; i < 10; i++ {
		refs := strings.TrimSuffix(strings.Repeat(fmt.Sprintf("*l%d, ", i-1), 10), ", ")
		fmt.Fprintf(&src, "l%d: &l%d [%s]\n", i, i, refs)
	}

	_, err := Decode([]byte(src.String()), FormatYAML)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "aliases expand")
}

func Test_Decode_YAMLRepeatedAlias(t *testing.T) {
	v, err := Decode([]byte("v: &v {text: amen}\nbooks: [{chapters: [[*v, *v]]}]\n"), FormatYAML)
	require.NoError(t, err)

	verses := bible.Normalize(v).Books()[0].Chapters[0].Verses
	require.Len(t, verses, 2)
	assert.Equal(t, "amen", verses[1].Text)
}
