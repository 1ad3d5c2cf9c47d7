package bible

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

// span is an inclusive integer interval from a range selector.
type span struct {
	lo, hi int
}

func (s span) contains(n int) bool { return n >= s.lo && n <= s.hi }

// parseSelector reads a selector such as "1,3,5-7". Tokens whose bounds are
// not numbers are skipped.
func parseSelector(selector string) []span {
	var spans []span
	for _, tok := range strings.Split(selector, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}

		if strings.Contains(tok, "-") {
			parts := strings.Split(tok, "-")
			lo, okLo := leadingInt(parts[0])
			hi, okHi := leadingInt(parts[1])
			if !okLo || !okHi {
				continue
			}
			spans = append(spans, span{lo: lo, hi: hi})
			continue
		}

		n, ok := leadingInt(tok)
		if !ok {
			continue
		}
		spans = append(spans, span{lo: n, hi: n})
	}
	return spans
}

// leadingInt parses the integer prefix of s after leading whitespace, with an
// optional sign. "12abc" yields 12; "abc" fails.
func leadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\n\r")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		// Out of int range; saturate so the range still covers every verse.
		if s[0] == '-' {
			return math.MinInt, true
		}
		return math.MaxInt, true
	}
	return n, true
}

// versesInSpans returns the verses selected by spans in ascending selector
// order. Only integers that can resolve are visited: the integral verse
// numbers and the valid positions.
func versesInSpans(verses []Verse, spans []span) []Verse {
	if len(verses) == 0 || len(spans) == 0 {
		return nil
	}

	candidates := make(map[int]struct{}, len(verses)*2)
	for i, v := range verses {
		candidates[i+1] = struct{}{}
		if f, ok := numericValue(v.Number); ok && f == math.Trunc(f) && math.Abs(f) < math.MaxInt32 {
			candidates[int(f)] = struct{}{}
		}
	}

	selected := make([]int, 0, len(candidates))
	for n := range candidates {
		for _, s := range spans {
			if s.contains(n) {
				selected = append(selected, n)
				break
			}
		}
	}
	slices.Sort(selected)

	out := make([]Verse, 0, len(selected))
	for _, n := range selected {
		if i, ok := resolveNumeric(verses, verseNumber, float64(n)); ok {
			out = append(out, verses[i])
		}
	}
	return out
}
