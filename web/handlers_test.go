package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"markestedt/ahkgen/config"
	"markestedt/ahkgen/session"
	"markestedt/ahkgen/storage"
)

type testEnv struct {
	srv    *httptest.Server
	server *Server
	cfg    *config.Config
	sess   *session.Session
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	cfg, err := config.Load(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)
	cfg.Script.OutputPath = filepath.Join(dir, "script.ahk")

	db, err := storage.Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sess := session.New(cfg, session.WithHistory(db))
	server := NewServer(sess, db, 0)
	handler, err := server.Handler()
	require.NoError(t, err)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	t.Cleanup(server.hub.Stop)

	return &testEnv{srv: srv, server: server, cfg: cfg, sess: sess}
}

func (e *testEnv) do(t *testing.T, method, path, body string) (*http.Response, map[string]interface{}) {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, r)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(data, &out))
	} else {
		out = map[string]interface{}{"text": string(data)}
	}
	return resp, out
}

func actionLabels(t *testing.T, body map[string]interface{}) []string {
	t.Helper()
	raw, ok := body["actions"].([]interface{})
	require.True(t, ok, "actions missing from %v", body)

	var out []string
	for _, a := range raw {
		out = append(out, a.(map[string]interface{})["label"].(string))
	}
	return out
}

func TestOptions(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodGet, "/api/options", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["hotkeys"], 15)
	assert.Len(t, body["actionTypes"], 5)
	assert.Equal(t, "#+F1", body["defaultHotkey"])
}

func TestAddAction(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/api/sequence", `{"type":"Send Keys","parameter":"control+s"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, []string{"Send Keys: ^s"}, actionLabels(t, body))

	resp, body = env.do(t, http.MethodPost, "/api/sequence", `{"type":"click_button","parameter":""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "warning", body["level"])

	resp, body = env.do(t, http.MethodPost, "/api/sequence", `{"type":"Double Click"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "warning", body["level"])

	// a body without a type must not fall back to any action
	resp, body = env.do(t, http.MethodPost, "/api/sequence", `{"parameter":"OK"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "warning", body["level"])

	resp, _ = env.do(t, http.MethodPost, "/api/sequence", `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	assert.Len(t, env.sess.Actions(), 1)
}

func TestReorderAndRemove(t *testing.T) {
	env := newTestEnv(t)
	for _, name := range []string{"A", "B", "C"} {
		resp, _ := env.do(t, http.MethodPost, "/api/sequence", `{"type":"Click Button","parameter":"`+name+`"}`)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, body := env.do(t, http.MethodPost, "/api/sequence/2/up", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"Click Button: A", "Click Button: C", "Click Button: B"}, actionLabels(t, body))

	resp, body = env.do(t, http.MethodPost, "/api/sequence/0/down", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"Click Button: C", "Click Button: A", "Click Button: B"}, actionLabels(t, body))

	resp, body = env.do(t, http.MethodDelete, "/api/sequence/1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"Click Button: C", "Click Button: B"}, actionLabels(t, body))

	resp, _ = env.do(t, http.MethodDelete, "/api/sequence/7", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPost, "/api/sequence/x/up", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.do(t, http.MethodDelete, "/api/sequence", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, env.sess.Actions())
}

func TestTranslate(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/api/translate", `{"combo":"shift+tab"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "+{Tab}", body["result"])
}

func TestGenerate(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/api/generate", `{"hotkey":"#1"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "No actions in sequence!", body["message"])
	_, statErr := os.Stat(env.cfg.Script.OutputPath)
	assert.True(t, os.IsNotExist(statErr))

	env.do(t, http.MethodPost, "/api/sequence", `{"type":"Click Button","parameter":"OK"}`)
	env.do(t, http.MethodPost, "/api/sequence", `{"type":"Cut Text"}`)

	resp, body = env.do(t, http.MethodGet, "/api/preview?hotkey=%231", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body["text"], "#1::")

	resp, body = env.do(t, http.MethodPost, "/api/generate", `{"hotkey":"#1"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "#1", body["hotkey"])
	assert.Equal(t, true, body["success"])

	data, err := os.ReadFile(env.cfg.Script.OutputPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "        Click, OK\n        Send, ^x\n")

	// empty body falls back to the default hotkey
	resp, body = env.do(t, http.MethodPost, "/api/generate", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "#+F1", body["hotkey"])

	resp, body = env.do(t, http.MethodGet, "/api/history?limit=10", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, body["total"])

	resp, body = env.do(t, http.MethodGet, "/api/stats?days=1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	overall := body["overall"].(map[string]interface{})
	assert.EqualValues(t, 2, overall["totalExports"])
}

func TestGenerate_WriteFailure(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.Script.OutputPath = filepath.Join(t.TempDir(), "missing", "script.ahk")

	env.do(t, http.MethodPost, "/api/sequence", `{"type":"Paste Text"}`)

	resp, body := env.do(t, http.MethodPost, "/api/generate", `{"hotkey":"#2"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "error", body["level"])
	assert.Contains(t, body["message"], "Failed to save script")
}

func TestDeleteHistory(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/sequence", `{"type":"Cut Text"}`)
	_, body := env.do(t, http.MethodPost, "/api/generate", `{}`)
	id := int(body["id"].(float64))

	resp, _ := env.do(t, http.MethodDelete, "/api/history/"+strconv.Itoa(id), "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.do(t, http.MethodDelete, "/api/history/"+strconv.Itoa(id), "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestConfig(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPut, "/api/config", `{"defaultHotkey":"^!4","windowTitle":"Notepad"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	resp, body = env.do(t, http.MethodGet, "/api/config", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "^!4", body["defaultHotkey"])
	assert.Equal(t, "Notepad", body["windowTitle"])

	reloaded, err := config.Load(env.cfg.Path())
	require.NoError(t, err)
	assert.Equal(t, "^!4", reloaded.Script.DefaultHotkey)

	resp, body = env.do(t, http.MethodPut, "/api/config", `{"defaultHotkey":"#9"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "warning", body["level"])
}

func TestHistoryPagination(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/sequence", `{"type":"Cut Text"}`)

	for _, hk := range []string{"#1", "#2", "#3"} {
		resp, _ := env.do(t, http.MethodPost, "/api/generate", `{"hotkey":"`+hk+`"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, body := env.do(t, http.MethodGet, "/api/history?limit=2&offset=1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 3, body["total"])
	assert.EqualValues(t, 2, body["limit"])
	assert.EqualValues(t, 1, body["offset"])

	exports := body["exports"].([]interface{})
	require.Len(t, exports, 2)
	assert.Equal(t, "#2", exports[0].(map[string]interface{})["hotkey"])
	assert.Equal(t, "#1", exports[1].(map[string]interface{})["hotkey"])
	assert.NotEqual(t, "0001-01-01T00:00:00Z", exports[0].(map[string]interface{})["timestamp"])

	// invalid values fall back to the defaults
	resp, body = env.do(t, http.MethodGet, "/api/history?limit=abc&offset=-4", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 50, body["limit"])
	assert.EqualValues(t, 0, body["offset"])
	assert.Len(t, body["exports"], 3)

	resp, body = env.do(t, http.MethodGet, "/api/history?offset=10", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body["exports"])
	assert.EqualValues(t, 3, body["total"])
}

func TestStats(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/sequence", `{"type":"Cut Text"}`)
	env.do(t, http.MethodPost, "/api/sequence", `{"type":"Paste Text"}`)

	for _, hk := range []string{"#1", "#1", "#2"} {
		resp, _ := env.do(t, http.MethodPost, "/api/generate", `{"hotkey":"`+hk+`"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, body := env.do(t, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	overall := body["overall"].(map[string]interface{})
	assert.EqualValues(t, 3, overall["totalExports"])
	assert.EqualValues(t, 6, overall["totalActions"])
	assert.EqualValues(t, 3, overall["successCount"])

	assert.Len(t, body["daily"], 1)

	hotkeys := body["hotkeys"].([]interface{})
	require.Len(t, hotkeys, 2)
	top := hotkeys[0].(map[string]interface{})
	assert.Equal(t, "#1", top["hotkey"])
	assert.EqualValues(t, 2, top["totalExports"])
}

func TestStatus(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/sequence", `{"type":"Cut Text"}`)

	resp, body := env.do(t, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["actions"])
	assert.Equal(t, "#+F1", body["defaultHotkey"])
	assert.Equal(t, env.cfg.Script.OutputPath, body["outputPath"])
	assert.Equal(t, true, body["historyEnabled"])
	assert.EqualValues(t, 0, body["clients"])
	assert.NotContains(t, body, "status")
}

func TestHistoryDisabled(t *testing.T) {
	cfg := config.Default()
	sess := session.New(cfg)
	server := NewServer(sess, nil, 0)
	t.Cleanup(server.hub.Stop)
	handler, err := server.Handler()
	require.NoError(t, err)

	for _, path := range []string{"/api/history", "/api/stats"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}
