package readers

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/christian-word/bible-mcp/bible"
)

// DefaultSource is the corpus loaded when no location is configured.
const DefaultSource = "https://raw.githubusercontent.com/christian-word/bible-engine/main/bible_ua.json"

// SourceReader fetches the raw bytes behind a location.
type SourceReader interface {
	CanRead(location string) bool
	Read(ctx context.Context, location string) ([]byte, error)
}

// UniversalReader loads a corpus document from a URL or a local path and
// decodes it as JSON or YAML. It implements bible.Loader.
type UniversalReader struct {
	log      *slog.Logger
	location string
	readers  []SourceReader
}

// NewUniversalReader uses the HTTP and file readers unless others are given.
func NewUniversalReader(location string, log *slog.Logger, readers ...SourceReader) *UniversalReader {
	if location == "" {
		location = DefaultSource
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if len(readers) == 0 {
		readers = []SourceReader{&HTTPReader{}, &FileReader{}}
	}

	return &UniversalReader{log: log, location: location, readers: readers}
}

func (r *UniversalReader) Location() string { return r.location }

func (r *UniversalReader) Load(ctx context.Context) (bible.Value, error) {
	reader, err := r.findReader()
	if err != nil {
		return bible.Value{}, err
	}

	data, err := reader.Read(ctx, r.location)
	if err != nil {
		return bible.Value{}, err
	}

	format := FormatOf(r.location)
	v, err := Decode(data, format)
	if err != nil {
		return bible.Value{}, &bible.ParseError{Source: r.location, Format: string(format), Err: err}
	}

	r.log.Info("corpus fetched", "source", r.location, "format", string(format), "bytes", len(data))
	return v, nil
}

func (r *UniversalReader) findReader() (SourceReader, error) {
	for _, sr := range r.readers {
		if sr.CanRead(r.location) {
			return sr, nil
		}
	}

	return nil, &bible.FetchError{Source: r.location, Err: errors.New("no reader for source")}
}
