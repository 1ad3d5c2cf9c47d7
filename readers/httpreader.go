package readers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/christian-word/bible-mcp/bible"
)

type HTTPReader struct {
	Client *http.Client
}

func (r *HTTPReader) CanRead(location string) bool {
	return isRemote(location)
}

func (r *HTTPReader) Read(ctx context.Context, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, &bible.FetchError{Source: location, Err: fmt.Errorf("failed to build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.1")

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}

	res, err := client.Do(req)
	if err != nil {
		return nil, &bible.FetchError{Source: location, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &bible.FetchError{Source: location, Status: res.StatusCode}
	}

	buf, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &bible.FetchError{Source: location, Err: fmt.Errorf("failed to read body: %w", err)}
	}

	return buf, nil
}

func isRemote(location string) bool {
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}
