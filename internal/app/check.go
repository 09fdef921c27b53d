package app

import (
	"context"
	"fmt"

	"github.com/xxxsen/lootcheck/internal/checker"
	"github.com/xxxsen/lootcheck/internal/config"
	"github.com/xxxsen/lootcheck/internal/db"
	"github.com/xxxsen/lootcheck/internal/model"
	"github.com/xxxsen/lootcheck/internal/warning"

	"github.com/fatih/color"
	"github.com/spf13/pflag"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// CheckCommand runs a full warning pass over the installed plugins.
type CheckCommand struct {
	cfg *config.Config

	configPath  string
	includeInfo bool
	output      string
	full        bool
}

func NewCheckCommand() *CheckCommand {
	return &CheckCommand{}
}

func (c *CheckCommand) Name() string { return "check" }

func (c *CheckCommand) Desc() string {
	return "check installed plugins against the masterlists and report warnings"
}

func (c *CheckCommand) Init(f *pflag.FlagSet) {
	f.StringVar(&c.configPath, "config", "", "config file path")
	f.BoolVar(&c.includeInfo, "include-info", false, "also report informational messages")
	f.StringVar(&c.output, "output", "", "write a JSON report to this path instead of printing")
	f.BoolVar(&c.full, "full", false, "print full descriptions (HTML markup) instead of short ones")
}

func (c *CheckCommand) PreRun(ctx context.Context) error {
	cfg, err := loadConfig(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	if cfg.IncludeInfo {
		c.includeInfo = true
	}
	logutil.GetLogger(ctx).Info("starting check",
		zap.String("data_dir", cfg.DataDir),
		zap.Strings("masterlists", cfg.Masterlists),
		zap.Bool("include_info", c.includeInfo),
	)
	return nil
}

func (c *CheckCommand) Run(ctx context.Context) error {
	closeCache, err := setupCache(ctx, c.cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	environment, err := buildEnvironment(c.cfg)
	if err != nil {
		return err
	}
	store, err := loadMasterlists(ctx, c.cfg)
	if err != nil {
		return err
	}

	chk := checker.New(environment, store, environment.Parser(),
		checker.WithCRC32Func(db.CachedCRC32(ctx)))
	warnings := chk.Run(ctx, c.includeInfo)

	if c.output != "" {
		report := model.CheckReport{
			Count:    len(warnings),
			Warnings: make([]model.ReportWarning, 0, len(warnings)),
		}
		for _, w := range warnings {
			report.Warnings = append(report.Warnings, model.ReportWarning{
				Plugin: w.PluginName(),
				Kind:   string(w.Kind()),
				Short:  w.ShortDescription(),
				Full:   w.FullDescription(),
			})
		}
		if err := writeJSONFile(c.output, report); err != nil {
			return err
		}
	} else {
		printWarnings(warnings, c.full)
	}

	logutil.GetLogger(ctx).Info("check completed", zap.Int("warnings", len(warnings)))
	return nil
}

func (c *CheckCommand) PostRun(ctx context.Context) error { return nil }

func printWarnings(warnings []warning.Warning, full bool) {
	if len(warnings) == 0 {
		color.Green("no warnings")
		return
	}
	kindColor := map[warning.Kind]*color.Color{
		warning.KindMessage:            color.New(color.FgYellow),
		warning.KindMissingRequirement: color.New(color.FgRed),
		warning.KindIncompatibility:    color.New(color.FgRed),
		warning.KindFormIDOutOfRange:   color.New(color.FgRed, color.Bold),
		warning.KindDirtyPlugin:        color.New(color.FgYellow),
	}
	for _, w := range warnings {
		paint, ok := kindColor[w.Kind()]
		if !ok {
			paint = color.New(color.FgYellow)
		}
		desc := w.ShortDescription()
		if full {
			desc = w.FullDescription()
		}
		fmt.Printf("%s %s\n", paint.Sprintf("[%s]", w.Kind()), desc)
	}
	color.New(color.Bold).Printf("%d warning(s)\n", len(warnings))
}

func init() {
	RegisterRunner("check", func() IRunner { return NewCheckCommand() })
}
