package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xxxsen/lootcheck/internal/config"
	"github.com/xxxsen/lootcheck/internal/model"

	"github.com/spf13/pflag"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// LookupCommand resolves a plugin name against the merged masterlists and
// prints its metadata record.
type LookupCommand struct {
	cfg *config.Config

	configPath string
	pluginName string
	output     string
}

func NewLookupCommand() *LookupCommand {
	return &LookupCommand{}
}

func (c *LookupCommand) Name() string { return "lookup" }

func (c *LookupCommand) Desc() string {
	return "print the merged metadata record for a plugin"
}

func (c *LookupCommand) Init(f *pflag.FlagSet) {
	f.StringVar(&c.configPath, "config", "", "config file path")
	f.StringVar(&c.pluginName, "plugin", "", "plugin file name to look up")
	f.StringVar(&c.output, "output", "", "write a JSON result to this path instead of printing yaml")
}

func (c *LookupCommand) PreRun(ctx context.Context) error {
	if strings.TrimSpace(c.pluginName) == "" {
		return errors.New("lookup requires --plugin")
	}
	cfg, err := loadConfig(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}

func (c *LookupCommand) Run(ctx context.Context) error {
	store, err := loadMasterlists(ctx, c.cfg)
	if err != nil {
		return err
	}
	record := store.Lookup(c.pluginName)

	if c.output != "" {
		out := model.LookupOutput{
			Plugin: c.pluginName,
			Found:  record != nil,
		}
		if record != nil {
			out.Record = record
		}
		return writeJSONFile(c.output, out)
	}

	if record == nil {
		fmt.Printf("no metadata for %s\n", c.pluginName)
		return nil
	}
	data, err := yaml.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if _, err := os.Stdout.Write(data); err != nil {
		return err
	}
	logutil.GetLogger(ctx).Debug("lookup completed", zap.String("plugin", c.pluginName))
	return nil
}

func (c *LookupCommand) PostRun(ctx context.Context) error { return nil }

func init() {
	RegisterRunner("lookup", func() IRunner { return NewLookupCommand() })
}
