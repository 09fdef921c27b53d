// Package source fetches masterlist documents from their configured
// locations: local files, http(s) URLs and s3 object references.
package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/lootcheck/internal/config"
)

// Source fetches one masterlist document.
type Source interface {
	// Location returns the configured location string, for logging and cache
	// naming.
	Location() string
	Fetch(ctx context.Context) ([]byte, error)
}

// Resolve picks a source implementation from the location's scheme. Anything
// without a recognised scheme is treated as a local file path.
func Resolve(ctx context.Context, location string, s3cfg config.S3Config) (Source, error) {
	switch {
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return NewHTTP(location), nil
	case strings.HasPrefix(location, "s3://"):
		bucket, key, err := splitS3Location(location)
		if err != nil {
			return nil, err
		}
		return NewS3(ctx, s3cfg, bucket, key, location)
	default:
		return NewFile(location), nil
	}
}

// IsRemote reports whether the location needs a network fetch.
func IsRemote(location string) bool {
	return strings.HasPrefix(location, "http://") ||
		strings.HasPrefix(location, "https://") ||
		strings.HasPrefix(location, "s3://")
}

func splitS3Location(location string) (bucket string, key string, err error) {
	rest := strings.TrimPrefix(location, "s3://")
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid s3 location %q, want s3://bucket/key", location)
	}
	return bucket, key, nil
}
