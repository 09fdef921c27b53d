package app

import (
	"context"
	"os"

	"github.com/xxxsen/lootcheck/internal/config"
	"github.com/xxxsen/lootcheck/internal/model"
	"github.com/xxxsen/lootcheck/internal/source"

	"github.com/spf13/pflag"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// UpdateCommand downloads the configured remote masterlists into the local
// cache dir so later checks work offline.
type UpdateCommand struct {
	cfg *config.Config

	configPath string
	output     string
}

func NewUpdateCommand() *UpdateCommand {
	return &UpdateCommand{}
}

func (c *UpdateCommand) Name() string { return "update" }

func (c *UpdateCommand) Desc() string {
	return "download remote masterlists into the local cache"
}

func (c *UpdateCommand) Init(f *pflag.FlagSet) {
	f.StringVar(&c.configPath, "config", "", "config file path")
	f.StringVar(&c.output, "output", "", "write a JSON summary to this path")
}

func (c *UpdateCommand) PreRun(ctx context.Context) error {
	cfg, err := loadConfig(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}

func (c *UpdateCommand) Run(ctx context.Context) error {
	logger := logutil.GetLogger(ctx)
	report := model.UpdateReport{Updated: make([]model.UpdateEntry, 0)}

	for _, location := range c.cfg.Masterlists {
		if !source.IsRemote(location) {
			logger.Debug("skipping local masterlist", zap.String("location", location))
			continue
		}
		src, err := source.Resolve(ctx, location, c.cfg.S3)
		if err != nil {
			return err
		}
		dest, err := source.Store(ctx, src, c.cfg.MasterlistCacheDir)
		if err != nil {
			return err
		}
		info, err := os.Stat(dest)
		if err != nil {
			return err
		}
		logger.Info("masterlist updated",
			zap.String("location", location),
			zap.String("path", dest),
			zap.Int64("size", info.Size()),
		)
		report.Updated = append(report.Updated, model.UpdateEntry{
			Location: location,
			Path:     dest,
			Size:     int(info.Size()),
		})
	}
	report.Count = len(report.Updated)

	if c.output != "" {
		if err := writeJSONFile(c.output, report); err != nil {
			return err
		}
	}
	logger.Info("update completed", zap.Int("count", report.Count))
	return nil
}

func (c *UpdateCommand) PostRun(ctx context.Context) error { return nil }

func init() {
	RegisterRunner("update", func() IRunner { return NewUpdateCommand() })
}
