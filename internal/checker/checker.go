// Package checker walks the installed plugins, resolves each against the
// merged metadata store and produces the warnings that apply.
package checker

import (
	"context"

	"github.com/xxxsen/lootcheck/internal/condition"
	"github.com/xxxsen/lootcheck/internal/env"
	"github.com/xxxsen/lootcheck/internal/masterlist"
	"github.com/xxxsen/lootcheck/internal/plugin"
	"github.com/xxxsen/lootcheck/internal/warning"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// Checker generates warnings for the installed plugins from a merged
// metadata store.
type Checker struct {
	env       env.Environment
	store     *masterlist.Store
	parser    plugin.Parser
	evaluator *condition.Evaluator
	crcFn     plugin.CRC32Func
}

// Option configures a Checker.
type Option func(*Checker)

// WithCRC32Func overrides checksum computation for plugins and condition
// functions, e.g. to consult a cache.
func WithCRC32Func(fn plugin.CRC32Func) Option {
	return func(c *Checker) {
		c.crcFn = fn
	}
}

// New builds a checker. The store must be fully merged before the first Run.
func New(environment env.Environment, store *masterlist.Store, parser plugin.Parser, opts ...Option) *Checker {
	c := &Checker{
		env:    environment,
		store:  store,
		parser: parser,
		crcFn:  plugin.ComputeCRC32,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.evaluator = condition.NewEvaluator(environment, condition.WithCRC32Func(c.crcFn))
	return c
}

// Run performs one full warning-generation pass over all installed plugins,
// in discovery order. A failure while processing one plugin is logged and
// never aborts the pass.
func (c *Checker) Run(ctx context.Context, includeInfo bool) []warning.Warning {
	var warnings []warning.Warning
	for _, path := range c.env.FindFiles("", env.IsPluginFileName) {
		p := plugin.New(path, c.parser, plugin.WithCRC32Func(c.crcFn))
		warnings = append(warnings, c.checkPlugin(ctx, p, includeInfo)...)
	}
	return warnings
}

// checkPlugin runs every check for one plugin. Failures are contained at
// this boundary so that one malformed metadata entry cannot block the
// remaining plugins.
func (c *Checker) checkPlugin(ctx context.Context, p *plugin.Plugin, includeInfo bool) (warnings []warning.Warning) {
	logger := logutil.GetLogger(ctx).With(zap.String("plugin", p.Name))
	defer func() {
		if r := recover(); r != nil {
			logger.Error("plugin check aborted", zap.Any("cause", r))
		}
	}()

	// The light-format range check applies whether or not the plugin has a
	// metadata record.
	if w := c.formIDRangeWarning(p, logger); w != nil {
		warnings = append(warnings, w)
	}

	record := c.store.Lookup(p.Name)
	if record == nil {
		return warnings
	}
	if len(record.Requirements) > 0 {
		logger.Debug("checking for missing requirements")
		warnings = append(warnings, c.requirementWarnings(ctx, p, record.Requirements, logger)...)
	}
	if len(record.Incompatibilities) > 0 {
		logger.Debug("checking for incompatible files")
		warnings = append(warnings, c.incompatibilityWarnings(ctx, p, record.Incompatibilities, logger)...)
	}
	if len(record.Messages) > 0 {
		logger.Debug("checking messages")
		warnings = append(warnings, c.messageWarnings(ctx, p, record.Messages, includeInfo, logger)...)
	}
	if len(record.Dirty) > 0 {
		logger.Debug("checking dirty state")
		warnings = append(warnings, c.dirtyWarnings(p, record.Dirty, logger)...)
	}
	return warnings
}

// formIDRangeWarning reports a light plugin that is not valid as light. A
// structural parse failure is logged and skipped; checksum-based checks for
// the plugin continue unaffected.
func (c *Checker) formIDRangeWarning(p *plugin.Plugin, logger *zap.Logger) warning.Warning {
	light, err := p.IsLight()
	if err != nil {
		logger.Warn("structural parse failed", zap.Error(err))
		return nil
	}
	if !light {
		return nil
	}
	valid, err := p.IsValidAsLight()
	if err != nil {
		logger.Warn("structural parse failed", zap.Error(err))
		return nil
	}
	if valid {
		return nil
	}
	return warning.NewFormIDOutOfRangeWarning(p.Name)
}

func (c *Checker) requirementWarnings(ctx context.Context, p *plugin.Plugin, refs []masterlist.FileRef, logger *zap.Logger) []warning.Warning {
	var warnings []warning.Warning
	for _, ref := range refs {
		found, err := c.evaluator.FileExists(ref.Name)
		if err != nil {
			logger.Error("invalid requirement reference",
				zap.String("name", ref.Name),
				zap.Error(err),
			)
			continue
		}
		if found {
			continue
		}
		if ref.Condition != "" {
			ok, err := c.evaluator.Evaluate(ctx, ref.Condition, p)
			if err != nil {
				logger.Error("invalid condition in metadata entry",
					zap.String("condition", ref.Condition),
					zap.Error(err),
				)
				continue
			}
			if !ok {
				continue
			}
		}
		warnings = append(warnings, warning.NewMissingRequirementWarning(p.Name, ref))
	}
	return warnings
}

func (c *Checker) incompatibilityWarnings(ctx context.Context, p *plugin.Plugin, refs []masterlist.FileRef, logger *zap.Logger) []warning.Warning {
	var warnings []warning.Warning
	for _, ref := range refs {
		found, err := c.evaluator.FileExists(ref.Name)
		if err != nil {
			logger.Error("invalid incompatibility reference",
				zap.String("name", ref.Name),
				zap.Error(err),
			)
			continue
		}
		if !found {
			continue
		}
		if ref.Condition != "" {
			ok, err := c.evaluator.Evaluate(ctx, ref.Condition, p)
			if err != nil {
				logger.Error("invalid condition in metadata entry",
					zap.String("condition", ref.Condition),
					zap.Error(err),
				)
				continue
			}
			if !ok {
				continue
			}
		}
		warnings = append(warnings, warning.NewIncompatibilityWarning(p.Name, ref))
	}
	return warnings
}

func (c *Checker) messageWarnings(ctx context.Context, p *plugin.Plugin, messages []masterlist.Message, includeInfo bool, logger *zap.Logger) []warning.Warning {
	var warnings []warning.Warning
	for _, msg := range messages {
		if !includeInfo && msg.Type != "warn" && msg.Type != "error" {
			continue
		}
		if msg.Condition != "" {
			ok, err := c.evaluator.Evaluate(ctx, msg.Condition, p)
			if err != nil {
				logger.Warn("invalid condition in metadata entry",
					zap.String("condition", msg.Condition),
					zap.Error(err),
				)
				continue
			}
			if !ok {
				continue
			}
		}
		warnings = append(warnings, warning.NewMessageWarning(p.Name, msg))
	}
	return warnings
}

func (c *Checker) dirtyWarnings(p *plugin.Plugin, infos []masterlist.DirtyInfo, logger *zap.Logger) []warning.Warning {
	crc, err := p.CRC()
	if err != nil {
		logger.Warn("checksum unavailable", zap.Error(err))
		return nil
	}
	var warnings []warning.Warning
	for _, info := range infos {
		if info.CRC == crc {
			warnings = append(warnings, warning.NewDirtyPluginWarning(p.Name, info))
		}
	}
	return warnings
}
