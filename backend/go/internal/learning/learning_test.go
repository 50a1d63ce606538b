package learning

import (
	"context"
	"errors"
	"testing"

	"jarvis/backend/go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	rules []*models.Rule
	facts []*models.Fact
	err   error
}

func (m *memStore) AddRule(_ context.Context, r *models.Rule) error {
	if m.err != nil {
		return m.err
	}
	m.rules = append(m.rules, r)
	return nil
}

func (m *memStore) AddFact(_ context.Context, f *models.Fact) error {
	if m.err != nil {
		return m.err
	}
	m.facts = append(m.facts, f)
	return nil
}

type entry struct {
	level string
	msg   string
}

type memJournal struct{ entries []entry }

func (j *memJournal) Info(_ context.Context, m string)  { j.entries = append(j.entries, entry{"INFO", m}) }
func (j *memJournal) Warn(_ context.Context, m string)  { j.entries = append(j.entries, entry{"WARN", m}) }
func (j *memJournal) Error(_ context.Context, m string) { j.entries = append(j.entries, entry{"ERROR", m}) }

func (j *memJournal) levels() []string {
	var out []string
	for _, e := range j.entries {
		out = append(out, e.level)
	}
	return out
}

func TestExtractRule(t *testing.T) {
	cases := []struct {
		prompt    string
		condition string
		action    string
	}{
		{"If it rains, then bring umbrella", "it rains", "bring umbrella"},
		{"If it rains then bring umbrella", "it rains", "bring umbrella"},
		{"if   the door is open ,  then   close it  ", "the door is open", "close it"},
		{"IF hello THEN say hi", "hello", "say hi"},
		{"If the report\nis late,\nthen notify the\nmanager", "the report\nis late", "notify the\nmanager"},
		{"Se chover, então leve guarda-chuva", "chover", "leve guarda-chuva"},
		{"Se chover então leve guarda-chuva", "chover", "leve guarda-chuva"},
	}
	for _, tc := range cases {
		t.Run(tc.prompt, func(t *testing.T) {
			condition, action, ok := ExtractRule(tc.prompt)
			require.True(t, ok)
			assert.Equal(t, tc.condition, condition)
			assert.Equal(t, tc.action, action)
		})
	}
}

func TestExtractRule_NoMatch(t *testing.T) {
	for _, prompt := range []string{
		"",
		"bring an umbrella when it rains",
		"If it rains",
		"then do something",
	} {
		_, _, ok := ExtractRule(prompt)
		assert.False(t, ok, prompt)
	}
}

func TestParseRule_Persists(t *testing.T) {
	store := &memStore{}
	journal := &memJournal{}
	l := NewLearner(store, journal)

	reply := l.ParseRule(context.Background(), "If it rains then bring umbrella")

	assert.Contains(t, reply, "it rains")
	assert.Contains(t, reply, "bring umbrella")
	require.Len(t, store.rules, 1)
	got := store.rules[0]
	assert.Equal(t, "it rains", got.Condition)
	assert.Equal(t, "bring umbrella", got.Action)
	assert.Equal(t, 0, got.Priority)
	assert.True(t, got.IsActive)
	assert.Equal(t, []string{"INFO"}, journal.levels())
}

func TestParseRule_BadFormat(t *testing.T) {
	store := &memStore{}
	journal := &memJournal{}
	reply := NewLearner(store, journal).ParseRule(context.Background(), "umbrellas are useful")

	assert.Equal(t, GuidanceMessage, reply)
	assert.Empty(t, store.rules)
	assert.Equal(t, []string{"WARN"}, journal.levels())
}

func TestParseRule_InvalidPatternRejected(t *testing.T) {
	store := &memStore{}
	journal := &memJournal{}
	reply := NewLearner(store, journal).ParseRule(context.Background(), "If [a- then panic")

	assert.Contains(t, reply, "[a-")
	assert.Empty(t, store.rules)
	assert.Equal(t, []string{"WARN"}, journal.levels())
}

func TestParseRule_StoreFailure(t *testing.T) {
	store := &memStore{err: errors.New("disk full")}
	journal := &memJournal{}
	reply := NewLearner(store, journal).ParseRule(context.Background(), "If x, then y")

	assert.Equal(t, RuleApologyMessage, reply)
	assert.Equal(t, []string{"ERROR"}, journal.levels())
	assert.Contains(t, journal.entries[0].msg, "disk full")
}

func TestParseFact(t *testing.T) {
	store := &memStore{}
	journal := &memJournal{}
	reply := NewLearner(store, journal).ParseFact(context.Background(), "Brazil is in South America")

	assert.Contains(t, reply, "Brazil is in South America")
	require.Len(t, store.facts, 1)
	f := store.facts[0]
	assert.Equal(t, "Brazil is in South America", f.Fact)
	assert.Equal(t, FactConcept, f.Concept)
	assert.Equal(t, FactRelationship, f.Relationship)
	assert.Equal(t, "user_teaching", f.Source)
	assert.Equal(t, 1.0, f.Confidence)
	assert.Equal(t, []string{"INFO"}, journal.levels())
}

func TestParseFact_StoreFailure(t *testing.T) {
	store := &memStore{err: errors.New("locked")}
	journal := &memJournal{}
	reply := NewLearner(store, journal).ParseFact(context.Background(), "water is wet")

	assert.Equal(t, FactApologyMessage, reply)
	assert.Equal(t, []string{"ERROR"}, journal.levels())
}
