// Package learning turns rule- and fact-teaching utterances into stored records.
package learning

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"jarvis/backend/go/internal/models"
	"jarvis/backend/go/internal/rules"
)

const (
	// FactConcept and FactRelationship label every taught fact; no entity
	// extraction is attempted.
	FactConcept      = "general"
	FactRelationship = "user statement"
	FactSource       = "user_teaching"

	GuidanceMessage     = "I couldn't understand the rule format. Please try 'If [condition], then [action]'."
	RuleApologyMessage  = "Sorry, I had a problem trying to learn that rule."
	FactApologyMessage  = "Sorry, I had a problem storing that information."
	invalidPatternReply = "I couldn't use '%s' as a rule condition (%v). Please rephrase the rule."
)

// Store persists learned records.
type Store interface {
	AddRule(ctx context.Context, rule *models.Rule) error
	AddFact(ctx context.Context, fact *models.Fact) error
}

// Journal records audit events.
type Journal interface {
	Info(ctx context.Context, message string)
	Warn(ctx context.Context, message string)
	Error(ctx context.Context, message string)
}

type connective struct {
	withComma    *regexp.Regexp
	withoutComma *regexp.Regexp
}

func newConnective(ifWord, thenWord string) connective {
	return connective{
		withComma:    regexp.MustCompile(`(?is)` + ifWord + `\s+(.+),\s+` + thenWord + `\s+(.+)`),
		withoutComma: regexp.MustCompile(`(?is)` + ifWord + `\s+(.+)\s+` + thenWord + `\s+(.+)`),
	}
}

// connectives are tried in order; the Portuguese pair keeps rules taught to
// the earlier backend working.
var connectives = []connective{
	newConnective("If", "then"),
	newConnective("Se", "então"),
}

// ExtractRule pulls the condition and action out of an "If X, then Y" style
// utterance. The comma form is preferred; captures are trimmed.
func ExtractRule(prompt string) (condition, action string, ok bool) {
	for _, c := range connectives {
		for _, re := range []*regexp.Regexp{c.withComma, c.withoutComma} {
			if m := re.FindStringSubmatch(prompt); m != nil {
				return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
			}
		}
	}
	return "", "", false
}

// Learner parses teaching utterances and stores the result.
type Learner struct {
	store   Store
	journal Journal
}

// NewLearner creates a Learner.
func NewLearner(store Store, journal Journal) *Learner {
	return &Learner{store: store, journal: journal}
}

// ParseRule learns a rule from prompt and returns the text to show the user.
// It never returns an error: every failure becomes a message.
func (l *Learner) ParseRule(ctx context.Context, prompt string) string {
	condition, action, ok := ExtractRule(prompt)
	if !ok {
		l.journal.Warn(ctx, fmt.Sprintf("Attempt to teach a rule with an invalid format: '%s'", prompt))
		return GuidanceMessage
	}
	if err := rules.Validate(condition); err != nil {
		l.journal.Warn(ctx, fmt.Sprintf("Rejected rule with an invalid condition pattern: '%s': %v", condition, err))
		return fmt.Sprintf(invalidPatternReply, condition, err)
	}

	rule := &models.Rule{Condition: condition, Action: action, Priority: 0, IsActive: true}
	if err := l.store.AddRule(ctx, rule); err != nil {
		l.journal.Error(ctx, fmt.Sprintf("Failed to save the new rule from prompt '%s': %v", prompt, err))
		return RuleApologyMessage
	}

	l.journal.Info(ctx, fmt.Sprintf("New rule added: IF %s THEN %s", condition, action))
	return fmt.Sprintf("Got it. Rule learned: 'If %s, then %s'.", condition, action)
}

// ParseFact stores the whole prompt as a fact and returns the text to show
// the user.
func (l *Learner) ParseFact(ctx context.Context, prompt string) string {
	fact := &models.Fact{
		Fact:         prompt,
		Concept:      FactConcept,
		Relationship: FactRelationship,
		Source:       FactSource,
		Confidence:   1.0,
	}
	if err := l.store.AddFact(ctx, fact); err != nil {
		l.journal.Error(ctx, fmt.Sprintf("Failed to learn new fact: %v", err))
		return FactApologyMessage
	}

	l.journal.Info(ctx, fmt.Sprintf("New fact learned: '%s'", prompt))
	return fmt.Sprintf("Thanks for teaching me. I stored the following information: '%s'.", prompt)
}
