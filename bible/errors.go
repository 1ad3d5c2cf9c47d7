package bible

import (
	"errors"
	"fmt"
)

var (
	// ErrFetch is the root of every load transport failure.
	ErrFetch = errors.New("fetch failed")
	// ErrParse is the root of every payload decoding failure.
	ErrParse = errors.New("parse failed")
	// ErrPattern is the root of every invalid search pattern.
	ErrPattern = errors.New("invalid pattern")
)

// FetchError reports that the corpus source could not be read. Status is the
// HTTP status code when the transport answered with a failure, 0 otherwise.
type FetchError struct {
	Source string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("failed to load %s: status %d", e.Source, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("failed to load %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("failed to load %s", e.Source)
}

func (e *FetchError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrFetch
}

// Is lets errors.Is(err, ErrFetch) succeed even when a cause is wrapped.
func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// ParseError reports that a fetched payload is not valid structured data.
type ParseError struct {
	Source string
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to parse %s from %s: %v", e.Format, e.Source, e.Err)
	}
	return fmt.Sprintf("failed to parse %s from %s", e.Format, e.Source)
}

func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrParse
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// PatternError reports a search pattern that cannot be compiled or evaluated.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
	}
	return fmt.Sprintf("invalid pattern %q", e.Pattern)
}

func (e *PatternError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrPattern
}

func (e *PatternError) Is(target error) bool { return target == ErrPattern }
