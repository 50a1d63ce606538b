package sqldb

import (
	"context"
	"testing"

	"jarvis/backend/go/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMemory(t *testing.T) {
	db, err := OpenMemory()
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, HealthCheck(context.Background(), db))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(config.SQLConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestOpen_SQLiteRequiresPath(t *testing.T) {
	_, err := Open(config.SQLConfig{Driver: "sqlite"})
	assert.Error(t, err)
}

func TestHealthCheck_Nil(t *testing.T) {
	assert.Error(t, HealthCheck(context.Background(), nil))
}
