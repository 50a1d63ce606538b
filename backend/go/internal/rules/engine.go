// Package rules evaluates user-taught condition/action rules against free text.
package rules

import (
	"context"
	"fmt"
	"regexp"

	"jarvis/backend/go/internal/models"
	"jarvis/backend/go/pkg/cache"
	"jarvis/backend/go/pkg/logger"
)

// Source provides the active rule set, highest priority first and creation
// order within equal priorities.
type Source interface {
	ActiveRules(ctx context.Context) ([]models.Rule, error)
}

// compiled is a cache entry. condition is kept so an edited rule recompiles.
type compiled struct {
	condition string
	re        *regexp.Regexp
	err       error
}

// Engine matches prompts against rules, first match wins.
type Engine struct {
	source   Source
	patterns *cache.LRU[uint, compiled]
	log      *logger.Logger
}

// NewEngine creates an Engine caching up to cacheSize compiled patterns.
func NewEngine(source Source, cacheSize int, log *logger.Logger) (*Engine, error) {
	if cacheSize <= 0 {
		cacheSize = 512
	}
	patterns, err := cache.NewLRU[uint, compiled](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Engine{source: source, patterns: patterns, log: log}, nil
}

// Compile turns a rule condition into a case-insensitive, unanchored pattern.
func Compile(condition string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("(?i)" + condition)
	if err != nil {
		return nil, fmt.Errorf("invalid rule condition %q: %w", condition, err)
	}
	return re, nil
}

// Validate reports whether condition can be used as a rule pattern.
func Validate(condition string) error {
	_, err := Compile(condition)
	return err
}

// Match returns the action of the first active rule whose condition is found
// in prompt. ok is false when no rule matches or there are no rules.
func (e *Engine) Match(ctx context.Context, prompt string) (action string, ok bool, err error) {
	rules, err := e.source.ActiveRules(ctx)
	if err != nil {
		return "", false, fmt.Errorf("load rules: %w", err)
	}
	for _, rule := range rules {
		re, err := e.pattern(rule)
		if err != nil {
			e.log.WithField("rule_id", rule.ID).WithErr(err).Warn("skipping rule with invalid condition")
			continue
		}
		if re.MatchString(prompt) {
			return rule.Action, true, nil
		}
	}
	return "", false, nil
}

func (e *Engine) pattern(rule models.Rule) (*regexp.Regexp, error) {
	if c, ok := e.patterns.Get(rule.ID); ok && c.condition == rule.Condition {
		return c.re, c.err
	}
	re, err := Compile(rule.Condition)
	e.patterns.Put(rule.ID, compiled{condition: rule.Condition, re: re, err: err})
	return re, err
}
