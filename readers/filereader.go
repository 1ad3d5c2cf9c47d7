package readers

import (
	"context"
	"os"
	"strings"

	"github.com/christian-word/bible-mcp/bible"
)

type FileReader struct{}

func (r *FileReader) CanRead(location string) bool {
	return !isRemote(location)
}

func (r *FileReader) Read(ctx context.Context, location string) ([]byte, error) {
	buf, err := os.ReadFile(LocalPath(location))
	if err != nil {
		return nil, &bible.FetchError{Source: location, Err: err}
	}

	return buf, nil
}

// LocalPath strips an optional file:// scheme.
func LocalPath(location string) string {
	return strings.TrimPrefix(location, "file://")
}
