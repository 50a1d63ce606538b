package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"jarvis/backend/go/internal/models"
	"jarvis/backend/go/internal/orchestrator"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeConversations struct {
	err        error
	lastPrompt string
	lastID     string
}

func (f *fakeConversations) Handle(_ context.Context, prompt, conversationID string) (*orchestrator.Reply, error) {
	f.lastPrompt, f.lastID = prompt, conversationID
	if f.err != nil {
		return nil, f.err
	}
	if conversationID == "" {
		conversationID = "generated"
	}
	return &orchestrator.Reply{Text: "reply to " + prompt, ConversationID: conversationID}, nil
}

type fakeTeacher struct{ got string }

func (f *fakeTeacher) ParseRule(_ context.Context, prompt string) string {
	f.got = prompt
	return "learned " + prompt
}

type recordingJournal struct {
	mu      sync.Mutex
	entries []string
}

func (j *recordingJournal) add(level, msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, level+": "+msg)
}

func (j *recordingJournal) Info(_ context.Context, m string)     { j.add("INFO", m) }
func (j *recordingJournal) Warn(_ context.Context, m string)     { j.add("WARN", m) }
func (j *recordingJournal) Critical(_ context.Context, m string) { j.add("CRITICAL", m) }

type fixture struct {
	router  *gin.Engine
	conv    *fakeConversations
	teacher *fakeTeacher
	journal *recordingJournal
}

func newFixture(staticDir string) *fixture {
	f := &fixture{conv: &fakeConversations{}, teacher: &fakeTeacher{}, journal: &recordingJournal{}}
	h := NewHandler(f.conv, f.teacher, f.journal, "JARVIS Backend")
	f.router = SetupRouter(h, RouterOptions{StaticDir: staticDir})
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestChat(t *testing.T) {
	f := newFixture("")

	w := f.do(http.MethodPost, "/api/chat", `{"prompt":"hello"}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "reply to hello", body["text"])
	assert.Equal(t, "generated", body["conversation_id"])
	assert.Equal(t, "", f.conv.lastID)

	w = f.do(http.MethodPost, "/api/chat", `{"prompt":"again","conversation_id":"abc"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc", decode(t, w)["conversation_id"])
	assert.Contains(t, f.journal.entries, "INFO: New request on /api/chat for conversation: abc")
}

func TestChat_EmptyPromptIsAccepted(t *testing.T) {
	f := newFixture("")
	w := f.do(http.MethodPost, "/api/chat", `{"prompt":""}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestChat_MissingPrompt(t *testing.T) {
	f := newFixture("")
	for _, body := range []string{`{}`, `{"conversation_id":"x"}`, `not json`} {
		w := f.do(http.MethodPost, "/api/chat", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.NotEmpty(t, decode(t, w)["error"])
	}
	assert.Contains(t, f.journal.entries[0], "WARN")
}

func TestChat_InternalError(t *testing.T) {
	f := newFixture("")
	f.conv.err = errors.New("database is locked")

	w := f.do(http.MethodPost, "/api/chat", `{"prompt":"hello"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, internalErrorMessage, decode(t, w)["error"])
	assert.Contains(t, f.journal.entries, "CRITICAL: Fatal error on /api/chat: database is locked")
}

func TestTeachRule(t *testing.T) {
	f := newFixture("")

	w := f.do(http.MethodPost, "/api/teach_rule", `{"rule":"If a then b"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "learned If a then b", decode(t, w)["text"])

	w = f.do(http.MethodPost, "/api/teach_rule", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealth_Idempotent(t *testing.T) {
	f := newFixture("")
	first := f.do(http.MethodGet, "/api/health", "").Body.String()
	for i := 0; i < 3; i++ {
		w := f.do(http.MethodGet, "/api/health", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, first, w.Body.String())
	}
	assert.JSONEq(t, `{"status":"ok","service":"JARVIS Backend"}`, first)
}

func TestExplain(t *testing.T) {
	f := newFixture("")
	assert.Equal(t, http.StatusNotImplemented, f.do(http.MethodGet, "/api/explain", "").Code)
}

func TestCORS(t *testing.T) {
	f := newFixture("")
	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestFrontend_Missing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dist")
	f := newFixture(dir)

	w := f.do(http.MethodGet, "/some/page", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dir, decode(t, w)["frontend_path"])
}

func TestFrontend_SPAFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>app</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644))
	f := newFixture(dir)

	w := f.do(http.MethodGet, "/app.js", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "console.log(1)", w.Body.String())

	w = f.do(http.MethodGet, "/chat/123", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<html>app</html>", w.Body.String())

	w = f.do(http.MethodGet, "/../../etc/passwd", "")
	assert.Equal(t, "<html>app</html>", w.Body.String())
}

func TestChat_OversizedConversationID(t *testing.T) {
	f := newFixture("")
	id := strings.Repeat("a", models.MaxConversationIDLength+1)

	w := f.do(http.MethodPost, "/api/chat", `{"prompt":"hello","conversation_id":"`+id+`"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "conversation_id")
	assert.Empty(t, f.conv.lastPrompt, "the request must not reach the core")
}
