package app

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/xxxsen/lootcheck/internal/condition"
	"github.com/xxxsen/lootcheck/internal/config"
	"github.com/xxxsen/lootcheck/internal/db"
	"github.com/xxxsen/lootcheck/internal/model"
	"github.com/xxxsen/lootcheck/internal/plugin"

	"github.com/fatih/color"
	"github.com/spf13/pflag"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// EvalCommand evaluates one condition string against the configured game,
// useful when authoring masterlist entries.
type EvalCommand struct {
	cfg *config.Config

	configPath string
	condition  string
	pluginName string
	output     string
}

func NewEvalCommand() *EvalCommand {
	return &EvalCommand{}
}

func (c *EvalCommand) Name() string { return "eval" }

func (c *EvalCommand) Desc() string {
	return "evaluate a masterlist condition against the configured game"
}

func (c *EvalCommand) Init(f *pflag.FlagSet) {
	f.StringVar(&c.configPath, "config", "", "config file path")
	f.StringVar(&c.condition, "condition", "", "condition string to evaluate")
	f.StringVar(&c.pluginName, "plugin", "", "plugin file name providing the evaluation context")
	f.StringVar(&c.output, "output", "", "write a JSON result to this path")
}

func (c *EvalCommand) PreRun(ctx context.Context) error {
	if strings.TrimSpace(c.condition) == "" {
		return errors.New("eval requires --condition")
	}
	cfg, err := loadConfig(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}

func (c *EvalCommand) Run(ctx context.Context) error {
	closeCache, err := setupCache(ctx, c.cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	environment, err := buildEnvironment(c.cfg)
	if err != nil {
		return err
	}
	crcFn := db.CachedCRC32(ctx)
	evaluator := condition.NewEvaluator(environment, condition.WithCRC32Func(crcFn))

	var p *plugin.Plugin
	if c.pluginName != "" {
		p = plugin.New(filepath.Join(c.cfg.DataDir, c.pluginName), environment.Parser(),
			plugin.WithCRC32Func(crcFn))
	}

	result, err := evaluator.Evaluate(ctx, c.condition, p)
	if err != nil {
		return err
	}
	logutil.GetLogger(ctx).Debug("condition evaluated",
		zap.String("condition", c.condition),
		zap.Bool("result", result),
	)

	if c.output != "" {
		return writeJSONFile(c.output, model.EvalOutput{
			Condition: c.condition,
			Plugin:    c.pluginName,
			Result:    result,
		})
	}
	if result {
		color.Green("true")
	} else {
		color.Red("false")
	}
	return nil
}

func (c *EvalCommand) PostRun(ctx context.Context) error { return nil }

func init() {
	RegisterRunner("eval", func() IRunner { return NewEvalCommand() })
}
