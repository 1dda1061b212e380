package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/sentinel"
	"github.com/aretw0/sentinel/pkg/adapters/memory"
	"github.com/aretw0/sentinel/pkg/console"
	"github.com/aretw0/sentinel/pkg/domain"
	"github.com/aretw0/sentinel/pkg/runner"
	"github.com/aretw0/sentinel/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, opts ...Option) (*Server, http.Handler) {
	t.Helper()
	eng, err := sentinel.New()
	require.NoError(t, err)
	cons := console.New(eng, session.NewManager(memory.NewStore()),
		console.WithSanitizer(runner.NewSanitizer(64)))
	srv, err := NewServer(cons, opts...)
	require.NoError(t, err)
	return srv, srv.Handler()
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestChat_AppendsTwoEntries(t *testing.T) {
	_, h := newTestServer(t)

	w := postJSON(t, h, "/chat", ChatRequest{SessionID: "s1", Message: "what are your skills?"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var turn console.ChatTurn
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &turn))
	assert.Equal(t, "s1", turn.SessionID)
	assert.Equal(t, sentinel.SourceRule, turn.Reply.Source)
	assert.True(t, strings.HasPrefix(turn.Reply.Text, "SKILL_QUERY"))
	require.Len(t, turn.Transcript.Entries, 2)
	assert.Equal(t, domain.RoleUser, turn.Transcript.Entries[0].Role)
	assert.Equal(t, domain.RoleSystem, turn.Transcript.Entries[1].Role)
}

func TestChat_NewSessionGetsID(t *testing.T) {
	_, h := newTestServer(t)

	w := postJSON(t, h, "/chat", ChatRequest{Message: "hello"})
	require.Equal(t, http.StatusOK, w.Code)

	var turn console.ChatTurn
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &turn))
	assert.Len(t, turn.SessionID, 36)
}

func TestChat_RejectsOversizedInput(t *testing.T) {
	_, h := newTestServer(t)

	w := postJSON(t, h, "/chat", ChatRequest{SessionID: "s1", Message: strings.Repeat("a", 65)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "maximum allowed size")
}

func TestChat_InvalidBody(t *testing.T) {
	_, h := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader("{"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid request body"}`, w.Body.String())
}

func TestTerminal_ClearEmptiesTranscript(t *testing.T) {
	_, h := newTestServer(t)

	w := postJSON(t, h, "/terminal", TerminalRequest{SessionID: "s1", Input: "status"})
	require.Equal(t, http.StatusOK, w.Code)
	var turn console.TerminalTurn
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &turn))
	assert.Equal(t, []string{"user@waseeq:~$ status", "SYSTEM: NOMINAL. THREAT_LEVEL: LOW."}, turn.Result.Texts())
	assert.Len(t, turn.Transcript.Entries, 5, "boot lines plus the turn")

	w = postJSON(t, h, "/terminal", TerminalRequest{SessionID: "s1", Input: "clear"})
	require.Equal(t, http.StatusOK, w.Code)
	turn = console.TerminalTurn{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &turn))
	assert.True(t, turn.Result.IsCleared())
	assert.Empty(t, turn.Transcript.Entries)
}

func TestTerminal_UnknownCommand(t *testing.T) {
	_, h := newTestServer(t)

	w := postJSON(t, h, "/terminal", TerminalRequest{SessionID: "s1", Input: "sudo rm"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ERR: sudo rm NOT_FOUND")
}

func TestSessions_GetAndReset(t *testing.T) {
	_, h := newTestServer(t)
	postJSON(t, h, "/chat", ChatRequest{SessionID: "s1", Message: "hello"})

	req := httptest.NewRequest(http.MethodGet, "/sessions/s1/chat", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var tr domain.Transcript
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tr))
	assert.Len(t, tr.Entries, 2)

	req = httptest.NewRequest(http.MethodDelete, "/sessions/s1", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/sessions/s1/chat", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessions_GetDoesNotStart(t *testing.T) {
	srv, h := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/sessions/ghost/terminal", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	ids, err := srv.Console.Sessions().List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSessions_InvalidChannel(t *testing.T) {
	_, h := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/sessions/s1/email", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRulesAndCommands(t *testing.T) {
	_, h := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/rules", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	var rules []domain.Rule
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rules))
	require.Len(t, rules, 4)
	assert.Equal(t, []string{"waseeq", "identity", "about"}, rules[0].Keywords)

	req = httptest.NewRequest(http.MethodGet, "/commands", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	var cmds []domain.Command
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cmds))
	assert.Equal(t, "help", cmds[0].Token)
}

func TestHealthAndInfo(t *testing.T) {
	_, h := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/info", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	var info map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "sentinel-http", info["app"])
	assert.Equal(t, "1.0.0", info["api_version"])
	assert.Equal(t, "waseeq", info["profile"])
	assert.Equal(t, "offline", info["mode"])
	assert.Equal(t, strings.TrimSpace(sentinel.Version), info["version"])
}

func TestOpenAPIDocument(t *testing.T) {
	doc, err := LoadSpec(context.Background())
	require.NoError(t, err)
	for _, path := range []string{"/chat", "/terminal", "/sessions/{id}/{channel}", "/sessions/{id}", "/rules", "/commands", "/events", "/health", "/info"} {
		assert.NotNil(t, doc.Paths.Find(path), path)
	}

	_, h := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "text/yaml", w.Header().Get("Content-Type"))
	assert.Equal(t, RawSpec(), w.Body.Bytes())
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "sentinel_test_total", Help: "test"})
	reg.MustRegister(c)
	c.Inc()

	_, h := newTestServer(t, WithMetrics(reg))
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sentinel_test_total 1")

	_, h = newTestServer(t)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRateLimit(t *testing.T) {
	_, h := newTestServer(t, WithRateLimit(0.001, 2))

	for i := 0; i < 2; i++ {
		w := postJSON(t, h, "/chat", ChatRequest{SessionID: "s1", Message: "hi"})
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := postJSON(t, h, "/chat", ChatRequest{SessionID: "s1", Message: "hi"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	w = postJSON(t, h, "/terminal", TerminalRequest{SessionID: "s2", Input: "status"})
	assert.Equal(t, http.StatusOK, w.Code, "buckets are per session")
}

func TestSubscribeEvents_RequiresSession(t *testing.T) {
	_, h := newTestServer(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events?session_id=s1&channel=fax", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubscribeEvents_Session(t *testing.T) {
	srv, h := newTestServer(t)
	ts := httptest.NewServer(h)
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/events?session_id=s1&channel=terminal", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := make(chan string, 32)
	go func() {
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

	require.Equal(t, "event: ping", <-lines)
	require.Eventually(t, func() bool { return srv.Streams.Count("s1") == 1 }, time.Second, 10*time.Millisecond)

	// The chat update is filtered out; only the terminal one arrives.
	postJSON(t, h, "/chat", ChatRequest{SessionID: "s1", Message: "hello"})
	postJSON(t, h, "/terminal", TerminalRequest{SessionID: "s1", Input: "whoami"})

	var update console.Update
	deadline := time.After(2 * time.Second)
	for update.SessionID == "" {
		select {
		case line, ok := <-lines:
			require.True(t, ok, "stream closed early")
			if data, found := strings.CutPrefix(line, "data: {"); found {
				require.NoError(t, json.Unmarshal([]byte("{"+data), &update))
			}
		case <-deadline:
			t.Fatal("no update received")
		}
	}
	assert.Equal(t, domain.ChannelTerminal, update.Channel)
	assert.Equal(t, domain.ResultAppended, update.Kind)
	require.Len(t, update.Entries, 2)
	assert.Equal(t, "GUEST. CLEARANCE: LEVEL_1.", update.Entries[1].Text)
}
