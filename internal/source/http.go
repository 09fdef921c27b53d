package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

type httpSource struct {
	url        string
	httpClient *http.Client
}

// NewHTTP builds a source that downloads the document over http(s).
func NewHTTP(url string) Source {
	return &httpSource{
		url: url,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (s *httpSource) Location() string { return s.url }

func (s *httpSource) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", s.url, err)
	}
	res, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch masterlist %s: %w", s.url, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch masterlist %s: unexpected status %s", s.url, res.Status)
	}
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read masterlist %s: %w", s.url, err)
	}
	return data, nil
}
