package bootstrap

import (
	"context"
	"strings"
	"testing"

	"jarvis/backend/go/internal/config"
	"jarvis/backend/go/internal/models"
	"jarvis/backend/go/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.AppConfig {
	cfg := config.Default()
	cfg.Databases.SQL.Path = ":memory:"
	cfg.Intent.Classifier = "keyword"
	return cfg
}

func TestNew_WithoutAPIKey(t *testing.T) {
	ctx := context.Background()
	app, err := New(ctx, testConfig(), logger.NewDiscard())
	require.NoError(t, err)
	defer app.Close()

	assert.False(t, app.Oracle.Configured())

	var warnings []models.LogEntry
	require.NoError(t, app.DB.Where("log_type = ?", models.LogWarn).Find(&warnings).Error)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "gemini")

	reply, err := app.Orchestrator.Handle(ctx, "hello", "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(reply.Text, "Sorry"))
	assert.Contains(t, reply.Text, "not configured")
}

func TestNew_TeachAndFireRule(t *testing.T) {
	ctx := context.Background()
	app, err := New(ctx, testConfig(), logger.NewDiscard())
	require.NoError(t, err)
	defer app.Close()

	reply, err := app.Orchestrator.Handle(ctx, "I want to teach you a rule", "c1")
	require.NoError(t, err)
	_, err = app.Orchestrator.Handle(ctx, "If weather, then look outside", reply.ConversationID)
	require.NoError(t, err)

	reply, err = app.Orchestrator.Handle(ctx, "How is the WEATHER today?", "c2")
	require.NoError(t, err)
	assert.Equal(t, "look outside", reply.Text)
}

func TestNew_RedisDialogue(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.Dialogue.Store = "redis"
	cfg.Dialogue.Lock = "redis"
	cfg.Databases.Redis.Address = mr.Addr()

	ctx := context.Background()
	app, err := New(ctx, cfg, logger.NewDiscard())
	require.NoError(t, err)
	defer app.Close()

	_, err = app.Orchestrator.Handle(ctx, "I want to teach you a rule", "c1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("jarvis:dialogue:c1"))
}

func TestNew_RedisUnavailable(t *testing.T) {
	cfg := testConfig()
	cfg.Dialogue.Store = "redis"

	_, err := New(context.Background(), cfg, logger.NewDiscard())
	assert.Error(t, err)
}
