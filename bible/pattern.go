package bible

import (
	"time"

	"github.com/dlclark/regexp2"
)

// DefaultPatternTimeout bounds the evaluation of one pattern against one verse.
const DefaultPatternTimeout = time.Second

// CompilePattern compiles a case-insensitive search pattern. The syntax is
// the one of JavaScript and .NET regular expressions, including lookaround
// and backreferences, and it matches on Unicode code points.
func CompilePattern(pattern string, timeout time.Duration) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(pattern, regexp2.IgnoreCase)
	if err != nil {
		return nil, &PatternError{Pattern: pattern, Err: err}
	}
	if timeout > 0 {
		re.MatchTimeout = timeout
	}
	return re, nil
}

// withIgnoreCase recompiles an existing pattern so it matches without regard
// to case. Only the match direction of re is kept.
func withIgnoreCase(re *regexp2.Regexp, timeout time.Duration) (*regexp2.Regexp, error) {
	opts := regexp2.RegexOptions(regexp2.IgnoreCase)
	if re.RightToLeft() {
		opts |= regexp2.RightToLeft
	}
	out, err := regexp2.Compile(re.String(), opts)
	if err != nil {
		return nil, &PatternError{Pattern: re.String(), Err: err}
	}
	out.MatchTimeout = re.MatchTimeout
	if timeout > 0 {
		out.MatchTimeout = timeout
	}
	return out, nil
}
