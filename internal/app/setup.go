package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/lootcheck/internal/config"
	"github.com/xxxsen/lootcheck/internal/db"
	"github.com/xxxsen/lootcheck/internal/env"
	"github.com/xxxsen/lootcheck/internal/espfile"
	"github.com/xxxsen/lootcheck/internal/masterlist"
	"github.com/xxxsen/lootcheck/internal/source"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

var defaultConfigPaths = []string{
	"./lootcheck.json",
	"/etc/lootcheck.json",
}

func loadConfig(explicit string) (*config.Config, error) {
	paths := append([]string{explicit}, defaultConfigPaths...)
	return config.LoadFirst(paths...)
}

func buildEnvironment(cfg *config.Config) (*env.Local, error) {
	opts := []env.LocalOption{
		env.WithParser(espfile.New()),
	}
	if len(cfg.ModVersions) > 0 {
		opts = append(opts, env.WithModVersions(cfg.ModVersions))
	}
	return env.NewLocal(cfg.GameDir, cfg.DataDir, cfg.PluginsFile, opts...)
}

// loadMasterlists fetches, parses and merges the configured documents in
// order, later documents overriding earlier ones. A failure on the first
// document is fatal; a failed override document is logged and skipped so the
// check still runs on the documents loaded so far.
func loadMasterlists(ctx context.Context, cfg *config.Config) (*masterlist.Store, error) {
	logger := logutil.GetLogger(ctx)
	var merged *masterlist.Store
	for _, location := range cfg.Masterlists {
		store, err := loadMasterlist(ctx, cfg, location)
		if err != nil {
			if merged == nil {
				return nil, err
			}
			logger.Warn("skip override masterlist",
				zap.String("location", location),
				zap.Error(err),
			)
			continue
		}
		logger.Info("masterlist loaded",
			zap.String("location", location),
			zap.Int("plugins", store.Len()),
		)
		if merged == nil {
			merged = store
		} else {
			merged = masterlist.Merge(merged, store)
		}
	}
	return merged, nil
}

func loadMasterlist(ctx context.Context, cfg *config.Config, location string) (*masterlist.Store, error) {
	src, err := source.Resolve(ctx, location, cfg.S3)
	if err != nil {
		return nil, err
	}
	var data []byte
	if source.IsRemote(location) {
		data, err = source.FetchWithCache(ctx, src, cfg.MasterlistCacheDir)
	} else {
		data, err = src.Fetch(ctx)
	}
	if err != nil {
		return nil, err
	}
	store, err := masterlist.Parse(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("parse masterlist %s: %w", location, err)
	}
	return store, nil
}

// setupCache opens the checksum cache database when one is configured and
// returns its close function.
func setupCache(ctx context.Context, cfg *config.Config) (func(), error) {
	if cfg.CacheDB == "" {
		return func() {}, nil
	}
	handle, err := db.Open(ctx, cfg.CacheDB)
	if err != nil {
		return nil, err
	}
	db.SetDefault(handle)
	return func() { handle.Close() }, nil
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	return nil
}
