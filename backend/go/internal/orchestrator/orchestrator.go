// Package orchestrator decides, for each incoming message, which response
// strategy fires: finishing a pending rule lesson, starting one, learning a
// fact, firing a stored rule, or asking the language model.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jarvis/backend/go/internal/dialogue"
	"jarvis/backend/go/internal/intent"
	"jarvis/backend/go/internal/models"
	"jarvis/backend/go/pkg/logger"

	"github.com/google/uuid"
)

// RulePrompt is the reply that opens a rule lesson.
const RulePrompt = "Great! Please tell me the rule. Try a format like 'If [condition], then [action or conclusion]'."

// apologyFormat wraps a language model failure for the user.
const apologyFormat = "Sorry, an internal error occurred while processing your request: %v"

// teachPhrases open a rule lesson even when the classifier says otherwise.
var teachPhrases = []string{
	"i want to teach you a rule",
	"quero te ensinar uma regra",
}

// History persists and replays conversation turns.
type History interface {
	AppendTurn(ctx context.Context, turn *models.Turn) error
	RecentTurns(ctx context.Context, conversationID string, limit int) ([]models.Turn, error)
}

// Learner turns teaching utterances into stored rules and facts.
type Learner interface {
	ParseRule(ctx context.Context, prompt string) string
	ParseFact(ctx context.Context, prompt string) string
}

// Matcher finds the action of the first active rule matching a prompt.
type Matcher interface {
	Match(ctx context.Context, prompt string) (action string, ok bool, err error)
}

// Oracle answers free-form conversation.
type Oracle interface {
	Converse(ctx context.Context, prompt string, history []models.Turn) (string, error)
}

// Journal records audit events.
type Journal interface {
	Info(ctx context.Context, message string)
	Error(ctx context.Context, message string)
}

// Reply is the outcome of one handled message.
type Reply struct {
	Text           string `json:"text"`
	ConversationID string `json:"conversation_id"`
}

// Options tunes an Orchestrator. Zero values fall back to defaults.
type Options struct {
	StateTTL     time.Duration // how long a pending lesson survives, default 30m
	HistoryLimit int           // turns handed to the oracle, default 20
}

// Orchestrator routes messages. It is safe for concurrent use; messages of
// one conversation are serialized through the Locker.
type Orchestrator struct {
	history    History
	states     dialogue.StateStore
	locker     dialogue.Locker
	classifier intent.Classifier
	learner    Learner
	rules      Matcher
	oracle     Oracle
	journal    Journal
	log        *logger.Logger
	opts       Options
	newID      func() string
}

// New creates an Orchestrator.
func New(
	history History,
	states dialogue.StateStore,
	locker dialogue.Locker,
	classifier intent.Classifier,
	learner Learner,
	rules Matcher,
	oracle Oracle,
	journal Journal,
	log *logger.Logger,
	opts Options,
) *Orchestrator {
	if opts.StateTTL <= 0 {
		opts.StateTTL = 30 * time.Minute
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 20
	}
	return &Orchestrator{
		history:    history,
		states:     states,
		locker:     locker,
		classifier: classifier,
		learner:    learner,
		rules:      rules,
		oracle:     oracle,
		journal:    journal,
		log:        log,
		opts:       opts,
		newID:      uuid.NewString,
	}
}

// Handle answers prompt within conversationID, starting a new conversation
// when the id is empty. Both the user turn and the reply are written to
// history. A returned error means the id is unusable or storage or locking
// failed.
func (o *Orchestrator) Handle(ctx context.Context, prompt, conversationID string) (*Reply, error) {
	if err := models.ValidateConversationID(conversationID); err != nil {
		return nil, err
	}
	if conversationID == "" {
		conversationID = o.newID()
	}
	log := o.log.WithConversation(conversationID)

	release, err := o.locker.Acquire(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("lock conversation: %w", err)
	}
	defer release()

	userTurn := models.NewTextTurn(conversationID, models.SpeakerUser, prompt)
	if err := o.history.AppendTurn(ctx, userTurn); err != nil {
		return nil, fmt.Errorf("save user turn: %w", err)
	}

	text, err := o.respond(ctx, prompt, conversationID, userTurn.ID)
	if err != nil {
		return nil, err
	}

	if err := o.history.AppendTurn(ctx, models.NewTextTurn(conversationID, models.SpeakerModel, text)); err != nil {
		return nil, fmt.Errorf("save model turn: %w", err)
	}
	log.Debug("message handled")
	return &Reply{Text: text, ConversationID: conversationID}, nil
}

func (o *Orchestrator) respond(ctx context.Context, prompt, conversationID string, userTurnID uint) (string, error) {
	state, err := o.states.Get(ctx, conversationID)
	if err != nil {
		return "", err
	}
	if state == models.StateAwaitingRuleDefinition {
		text := o.learner.ParseRule(ctx, prompt)
		// a failed parse does not re-prompt
		if err := o.states.Clear(ctx, conversationID); err != nil {
			return "", err
		}
		return text, nil
	}

	kind := o.classifier.Classify(ctx, prompt)
	switch {
	case kind == intent.TeachRule || hasTeachPhrase(prompt):
		if err := o.states.Set(ctx, conversationID, models.StateAwaitingRuleDefinition, o.opts.StateTTL); err != nil {
			return "", err
		}
		return RulePrompt, nil
	case kind == intent.TeachFact:
		return o.learner.ParseFact(ctx, prompt), nil
	}

	action, ok, err := o.rules.Match(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("match rules: %w", err)
	}
	if ok {
		o.journal.Info(ctx, fmt.Sprintf("Rule fired for prompt '%s'", prompt))
		return action, nil
	}

	history, err := o.priorTurns(ctx, conversationID, userTurnID)
	if err != nil {
		return "", err
	}
	answer, err := o.oracle.Converse(ctx, prompt, history)
	if err != nil {
		o.journal.Error(ctx, fmt.Sprintf("Language model call failed: %v", err))
		return fmt.Sprintf(apologyFormat, err), nil
	}
	return answer, nil
}

// priorTurns returns up to HistoryLimit turns preceding the current message.
// The prompt itself is sent separately, so its turn is left out.
func (o *Orchestrator) priorTurns(ctx context.Context, conversationID string, currentID uint) ([]models.Turn, error) {
	turns, err := o.history.RecentTurns(ctx, conversationID, o.opts.HistoryLimit+1)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	out := turns[:0]
	for _, t := range turns {
		if t.ID != currentID {
			out = append(out, t)
		}
	}
	if len(out) > o.opts.HistoryLimit {
		out = out[len(out)-o.opts.HistoryLimit:]
	}
	return out, nil
}

func hasTeachPhrase(prompt string) bool {
	p := strings.ToLower(prompt)
	for _, phrase := range teachPhrases {
		if strings.Contains(p, phrase) {
			return true
		}
	}
	return false
}
