// Package intent assigns a coarse category to an incoming message.
package intent

import (
	"context"
	"fmt"
	"strings"
)

// Intent is the category of a user message.
type Intent string

const (
	TeachRule Intent = "teach_rule"
	TeachFact Intent = "teach_fact"
	General   Intent = "general"
)

// Classifier decides the intent of a prompt. Implementations never fail:
// anything they cannot decide is General.
type Classifier interface {
	Classify(ctx context.Context, prompt string) Intent
}

// Parse normalises raw classifier output and accepts only the exact labels.
func Parse(raw string) Intent {
	switch Intent(strings.ToLower(strings.TrimSpace(raw))) {
	case TeachRule:
		return TeachRule
	case TeachFact:
		return TeachFact
	default:
		return General
	}
}

const promptTemplate = `Analyze the following text and identify the user's intent.
The possible intents are: 'teach_rule', 'teach_fact', 'general'.
Return only one of the three options, with no quotes or punctuation.

User text: "%s"

Intent:`

// Oracle is the part of the language model the classifier needs.
type Oracle interface {
	Classify(ctx context.Context, prompt string) (string, error)
}

// Journal records audit events.
type Journal interface {
	Info(ctx context.Context, message string)
	Error(ctx context.Context, message string)
}

// OracleClassifier asks the language model for a label.
type OracleClassifier struct {
	oracle  Oracle
	journal Journal
}

// NewOracleClassifier creates an OracleClassifier.
func NewOracleClassifier(oracle Oracle, journal Journal) *OracleClassifier {
	return &OracleClassifier{oracle: oracle, journal: journal}
}

// Classify returns the oracle's label, or General on failure or unknown output.
func (c *OracleClassifier) Classify(ctx context.Context, prompt string) Intent {
	raw, err := c.oracle.Classify(ctx, fmt.Sprintf(promptTemplate, prompt))
	if err != nil {
		c.journal.Error(ctx, fmt.Sprintf("Intent analysis with the language model failed: %v", err))
		return General
	}
	got := Parse(raw)
	c.journal.Info(ctx, fmt.Sprintf("Intent identified for '%s': %s", prompt, got))
	return got
}

// KeywordClassifier is a deterministic classifier based on fixed phrases.
// It needs no language model.
type KeywordClassifier struct {
	RulePhrases []string
	FactPhrases []string
}

// NewKeywordClassifier returns a KeywordClassifier with the default phrases.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		RulePhrases: []string{"teach you a rule", "learn a rule", "new rule", "ensinar uma regra"},
		FactPhrases: []string{"remember that", "learn that", "fact:", "did you know", "lembre-se que"},
	}
}

// Classify matches phrases against the lowercased prompt, rule phrases first.
func (c *KeywordClassifier) Classify(_ context.Context, prompt string) Intent {
	p := strings.ToLower(prompt)
	for _, phrase := range c.RulePhrases {
		if strings.Contains(p, phrase) {
			return TeachRule
		}
	}
	for _, phrase := range c.FactPhrases {
		if strings.Contains(p, phrase) {
			return TeachFact
		}
	}
	return General
}
