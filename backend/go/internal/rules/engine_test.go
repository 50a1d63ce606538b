package rules

import (
	"context"
	"errors"
	"testing"

	"jarvis/backend/go/internal/models"
	"jarvis/backend/go/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticSource returns rules in the given order and filters inactive ones,
// mirroring the knowledge store contract.
type staticSource struct {
	rules []models.Rule
	err   error
	calls int
}

func (s *staticSource) ActiveRules(context.Context) ([]models.Rule, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	var out []models.Rule
	for _, r := range s.rules {
		if r.IsActive {
			out = append(out, r)
		}
	}
	return out, nil
}

func newEngine(t *testing.T, src Source) *Engine {
	t.Helper()
	e, err := NewEngine(src, 8, logger.NewDiscard())
	require.NoError(t, err)
	return e
}

func TestMatch_HigherPriorityWins(t *testing.T) {
	// ordered as the store returns them: priority DESC
	src := &staticSource{rules: []models.Rule{
		{ID: 2, Condition: "bar", Action: "B", Priority: 10, IsActive: true},
		{ID: 1, Condition: "foo", Action: "A", Priority: 5, IsActive: true},
	}}
	action, ok, err := newEngine(t, src).Match(context.Background(), "foo bar")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "B", action)
}

func TestMatch_CaseInsensitiveUnanchored(t *testing.T) {
	src := &staticSource{rules: []models.Rule{
		{ID: 1, Condition: "it rains", Action: "bring umbrella", IsActive: true},
	}}
	action, ok, err := newEngine(t, src).Match(context.Background(), "Looks like IT RAINS today")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "bring umbrella", action)
}

func TestMatch_InactiveNeverMatches(t *testing.T) {
	src := &staticSource{rules: []models.Rule{
		{ID: 1, Condition: "hello", Action: "top", Priority: 1000, IsActive: false},
	}}
	_, ok, err := newEngine(t, src).Match(context.Background(), "hello")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatch_EmptyRuleSet(t *testing.T) {
	_, ok, err := newEngine(t, &staticSource{}).Match(context.Background(), "anything")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatch_InvalidPatternIsSkipped(t *testing.T) {
	src := &staticSource{rules: []models.Rule{
		{ID: 1, Condition: "(unclosed", Action: "broken", Priority: 10, IsActive: true},
		{ID: 2, Condition: "weather", Action: "sunny", Priority: 1, IsActive: true},
	}}
	e := newEngine(t, src)

	action, ok, err := e.Match(context.Background(), "(unclosed weather")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "sunny", action)

	// the failure is cached too
	c, cached := e.patterns.Get(1)
	require.True(t, cached)
	assert.Error(t, c.err)
}

func TestMatch_RegexConditions(t *testing.T) {
	src := &staticSource{rules: []models.Rule{
		{ID: 1, Condition: `^what time is it\??$`, Action: "time to code", IsActive: true},
	}}
	e := newEngine(t, src)

	_, ok, _ := e.Match(context.Background(), "so, what time is it?")
	assert.False(t, ok)
	action, ok, _ := e.Match(context.Background(), "What time is it?")
	assert.True(t, ok)
	assert.Equal(t, "time to code", action)
}

func TestMatch_EditedConditionRecompiles(t *testing.T) {
	src := &staticSource{rules: []models.Rule{
		{ID: 1, Condition: "cats", Action: "meow", IsActive: true},
	}}
	e := newEngine(t, src)

	_, ok, _ := e.Match(context.Background(), "dogs")
	assert.False(t, ok)

	src.rules[0].Condition = "dogs"
	action, ok, _ := e.Match(context.Background(), "dogs")
	assert.True(t, ok)
	assert.Equal(t, "meow", action)
}

func TestMatch_SourceError(t *testing.T) {
	_, _, err := newEngine(t, &staticSource{err: errors.New("db down")}).Match(context.Background(), "x")
	assert.ErrorContains(t, err, "db down")
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate("it rains"))
	assert.NoError(t, Validate(`\bhello\b`))
	assert.Error(t, Validate("[a-"))
}
