package app

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/xxxsen/lootcheck/internal/config"
	appdb "github.com/xxxsen/lootcheck/internal/db"

	"github.com/spf13/pflag"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// PruneCacheCommand removes checksum cache rows whose files no longer exist.
type PruneCacheCommand struct {
	cfg *config.Config

	configPath string
	dryRun     bool
}

func NewPruneCacheCommand() *PruneCacheCommand {
	return &PruneCacheCommand{
		dryRun: true,
	}
}

func (c *PruneCacheCommand) Name() string { return "prune-cache" }

func (c *PruneCacheCommand) Desc() string {
	return "remove checksum cache entries for files that no longer exist"
}

func (c *PruneCacheCommand) Init(f *pflag.FlagSet) {
	f.StringVar(&c.configPath, "config", "", "config file path")
	f.BoolVar(&c.dryRun, "dryrun", true, "report stale entries without deleting them")
}

func (c *PruneCacheCommand) PreRun(ctx context.Context) error {
	cfg, err := loadConfig(c.configPath)
	if err != nil {
		return err
	}
	if cfg.CacheDB == "" {
		return errors.New("prune-cache requires config.cache_db to be set")
	}
	c.cfg = cfg
	return nil
}

func (c *PruneCacheCommand) Run(ctx context.Context) error {
	logger := logutil.GetLogger(ctx)
	closeCache, err := setupCache(ctx, c.cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	entries, err := appdb.FileCRCCacheDao.ListAll(ctx)
	if err != nil {
		return err
	}

	missing := make([]string, 0)
	for _, entry := range entries {
		location := strings.TrimSpace(entry.Location)
		if location == "" {
			continue
		}
		if _, err := os.Stat(location); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				logger.Warn("cache target missing", zap.String("location", location))
				missing = append(missing, location)
			} else {
				logger.Warn("cache target stat failed", zap.String("location", location), zap.Error(err))
			}
		}
	}

	if len(missing) == 0 {
		logger.Info("no stale cache entries")
		return nil
	}
	if c.dryRun {
		logger.Info("stale cache entries found (dryrun)", zap.Int("count", len(missing)))
		return nil
	}

	const chunkSize = 200
	for start := 0; start < len(missing); start += chunkSize {
		end := start + chunkSize
		if end > len(missing) {
			end = len(missing)
		}
		if err := appdb.FileCRCCacheDao.DeleteByLocations(ctx, missing[start:end]); err != nil {
			return err
		}
	}
	logger.Info("stale cache entries deleted", zap.Int("count", len(missing)))
	return nil
}

func (c *PruneCacheCommand) PostRun(ctx context.Context) error { return nil }

func init() {
	RegisterRunner("prune-cache", func() IRunner { return NewPruneCacheCommand() })
}
