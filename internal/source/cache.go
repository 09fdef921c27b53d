package source

import (
	"context"
	"fmt"
	"hash/crc32"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// cacheName maps a location to a stable file name inside the cache dir. The
// checksum prefix keeps same-named documents from different locations apart.
func cacheName(location string) string {
	base := path.Base(strings.TrimSuffix(location, "/"))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	return fmt.Sprintf("%08x_%s", crc32.ChecksumIEEE([]byte(location)), base)
}

// CachePath returns where a remote location's document is cached.
func CachePath(cacheDir, location string) string {
	return filepath.Join(cacheDir, cacheName(location))
}

// Store fetches the document and writes it into the cache dir, returning the
// stored path.
func Store(ctx context.Context, src Source, cacheDir string) (string, error) {
	data, err := src.Fetch(ctx)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("ensure cache dir %s: %w", cacheDir, err)
	}
	dest := CachePath(cacheDir, src.Location())
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("write cache %s: %w", dest, err)
	}
	return dest, nil
}

// FetchWithCache fetches a remote document and refreshes its cached copy. On
// fetch failure a previously stored copy is used instead, so checks keep
// working offline.
func FetchWithCache(ctx context.Context, src Source, cacheDir string) ([]byte, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("location", src.Location()))
	data, fetchErr := src.Fetch(ctx)
	if fetchErr == nil {
		if err := os.MkdirAll(cacheDir, 0o755); err == nil {
			if err := os.WriteFile(CachePath(cacheDir, src.Location()), data, 0o644); err != nil {
				logger.Warn("refresh cached masterlist failed", zap.Error(err))
			}
		}
		return data, nil
	}
	cached, err := os.ReadFile(CachePath(cacheDir, src.Location()))
	if err != nil {
		return nil, fetchErr
	}
	logger.Warn("fetch failed, using cached masterlist", zap.Error(fetchErr))
	return cached, nil
}
