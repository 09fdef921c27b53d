package db

import (
	"context"
	"os"

	"github.com/xxxsen/lootcheck/internal/plugin"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// CachedCRC32 wraps checksum computation with the cache table: a hit with a
// matching modification time skips reading the file, a miss computes the
// checksum and stores it. Cache failures are logged and fall through to a
// plain computation. Without a configured database it degrades to
// plugin.ComputeCRC32.
func CachedCRC32(ctx context.Context) plugin.CRC32Func {
	return func(path string) (uint32, error) {
		if Default() == nil {
			return plugin.ComputeCRC32(path)
		}
		logger := logutil.GetLogger(ctx)
		info, err := os.Stat(path)
		if err != nil {
			return 0, err
		}
		modTime := info.ModTime().Unix()
		if crc, ok, err := FileCRCCacheDao.Lookup(ctx, path, modTime); err != nil {
			logger.Warn("crc cache lookup failed", zap.String("location", path), zap.Error(err))
		} else if ok {
			return crc, nil
		}
		crc, err := plugin.ComputeCRC32(path)
		if err != nil {
			return 0, err
		}
		if err := FileCRCCacheDao.Upsert(ctx, path, modTime, crc); err != nil {
			logger.Warn("crc cache store failed", zap.String("location", path), zap.Error(err))
		}
		return crc, nil
	}
}
