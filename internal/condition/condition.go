// Package condition parses and evaluates masterlist conditions: a small
// boolean expression language with embedded function calls, evaluated against
// host-provided facts. The condition text comes from a remotely maintained
// document and is treated as untrusted throughout.
package condition

import (
	"context"
	"strings"

	"github.com/xxxsen/lootcheck/internal/env"
	"github.com/xxxsen/lootcheck/internal/plugin"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// Evaluator evaluates masterlist conditions against an Environment.
type Evaluator struct {
	env   env.Environment
	crcFn plugin.CRC32Func
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithCRC32Func overrides how file checksums are computed, e.g. to consult a
// cache instead of re-reading files.
func WithCRC32Func(fn plugin.CRC32Func) Option {
	return func(ev *Evaluator) {
		ev.crcFn = fn
	}
}

// NewEvaluator builds a condition evaluator on top of the given environment.
func NewEvaluator(environment env.Environment, opts ...Option) *Evaluator {
	ev := &Evaluator{
		env:   environment,
		crcFn: plugin.ComputeCRC32,
	}
	for _, opt := range opts {
		opt(ev)
	}
	return ev
}

func (ev *Evaluator) crc32(path string) (uint32, error) {
	return ev.crcFn(path)
}

// Evaluate evaluates one condition string, optionally in the context of a
// plugin. The strategy is: extract embedded function calls, evaluate each and
// substitute its boolean result into the expression, then reduce the
// remaining pure-boolean expression. Returns an InvalidConditionError for any
// malformed function, argument, operator or token.
func (ev *Evaluator) Evaluate(ctx context.Context, cond string, p *plugin.Plugin) (bool, error) {
	logger := logutil.GetLogger(ctx)
	logger.Debug("evaluating condition", zap.String("condition", cond))
	// Quoted literals become placeholders first so that parentheses between
	// quotes cannot be misread as call boundaries.
	work, literals := replaceStringsWithPlaceholders(cond)
	for _, name := range functionNames {
		for _, call := range extractCalls(name, work, literals) {
			result, err := ev.evalCall(call, p)
			if err != nil {
				return false, err
			}
			logger.Debug("condition function evaluated",
				zap.String("call", call.name+"("+call.rawArgs+")"),
				zap.Bool("result", result),
			)
			work = strings.ReplaceAll(work, call.literal, boolToken(result))
		}
	}
	result, err := evalBooleanExpression(work)
	if err != nil {
		return false, err
	}
	logger.Debug("condition evaluated",
		zap.String("expression", work),
		zap.Bool("result", result),
	)
	return result, nil
}

// FileExists checks a file path or pattern the same way the file() condition
// function does. Used directly when validating requirement and
// incompatibility references.
func (ev *Evaluator) FileExists(pathOrPattern string) (bool, error) {
	return ev.evalFile(pathOrPattern)
}

func boolToken(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// evalCall parses the call's arguments and dispatches to the matching
// function. The checksum function gets a special case: when its path names
// the plugin currently being evaluated, the plugin's already-known checksum
// is used instead of re-reading the file.
func (ev *Evaluator) evalCall(call functionCall, p *plugin.Plugin) (bool, error) {
	args := splitOnUnquotedCommas(call.rawArgs)
	switch call.name {
	case "file", "readable", "active", "many", "many_active", "is_master":
		arg, err := singleStringArg(call, args)
		if err != nil {
			return false, err
		}
		switch call.name {
		case "file":
			return ev.evalFile(arg)
		case "readable":
			return ev.evalReadable(arg)
		case "active":
			return ev.evalActive(arg)
		case "many":
			return ev.evalMany(arg)
		case "many_active":
			return ev.evalManyActive(arg)
		default:
			return ev.env.IsMaster(arg), nil
		}
	case "checksum":
		if len(args) != 2 {
			return false, invalidCondition("checksum expects 2 arguments, got %d", len(args))
		}
		rel, err := unquoteRaw(args[0])
		if err != nil {
			return false, err
		}
		expected, err := parseChecksumValue(args[1])
		if err != nil {
			return false, err
		}
		if p != nil && (strings.EqualFold(rel, p.Name) || rel == p.Path) {
			crc, err := p.CRC()
			if err != nil {
				return false, err
			}
			return crc == expected, nil
		}
		return ev.evalChecksum(rel, expected)
	case "version", "product_version":
		if len(args) != 3 {
			return false, invalidCondition("%s expects 3 arguments, got %d", call.name, len(args))
		}
		rel, err := unquoteRaw(args[0])
		if err != nil {
			return false, err
		}
		given, err := unquoteRaw(args[1])
		if err != nil {
			return false, err
		}
		cmp, err := parseComparator(args[2])
		if err != nil {
			return false, err
		}
		if call.name == "version" {
			return ev.evalVersion(rel, given, cmp)
		}
		return ev.evalProductVersion(rel, given, cmp)
	default:
		return false, invalidCondition("unknown function: %s", call.name)
	}
}

func singleStringArg(call functionCall, args []string) (string, error) {
	if len(args) != 1 {
		return "", invalidCondition("%s expects 1 argument, got %d", call.name, len(args))
	}
	return unquoteRaw(args[0])
}
