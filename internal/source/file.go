package source

import (
	"context"
	"fmt"
	"os"
)

type fileSource struct {
	path string
}

// NewFile builds a source backed by a local file.
func NewFile(path string) Source {
	return &fileSource{path: path}
}

func (s *fileSource) Location() string { return s.path }

func (s *fileSource) Fetch(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read masterlist %s: %w", s.path, err)
	}
	return data, nil
}
