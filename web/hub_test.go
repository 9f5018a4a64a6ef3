package web

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"markestedt/ahkgen/session"
)

type pushed struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data"`
}

func dialBuilder(t *testing.T, env *testEnv) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(env.srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	// registration completes after the upgrade response
	require.Eventually(t, func() bool { return env.server.hub.ClientCount() == 1 },
		2*time.Second, 10*time.Millisecond)
	return conn
}

func readPushed(t *testing.T, conn *websocket.Conn) pushed {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var msg pushed
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestWebSocket_SequenceChanges(t *testing.T) {
	env := newTestEnv(t)
	conn := dialBuilder(t, env)

	resp, _ := env.do(t, http.MethodPost, "/api/sequence", `{"type":"Click Button","parameter":"OK"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	msg := readPushed(t, conn)
	assert.Equal(t, MessageTypeSequence, msg.Type)

	var seq struct {
		Actions []struct {
			Label string `json:"label"`
		} `json:"actions"`
	}
	require.NoError(t, json.Unmarshal(msg.Data, &seq))
	require.Len(t, seq.Actions, 1)
	assert.Equal(t, "Click Button: OK", seq.Actions[0].Label)

	resp, _ = env.do(t, http.MethodPost, "/api/generate", `{"hotkey":"#4"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	msg = readPushed(t, conn)
	assert.Equal(t, MessageTypeGenerated, msg.Type)

	var export struct {
		Hotkey     string `json:"hotkey"`
		OutputPath string `json:"outputPath"`
	}
	require.NoError(t, json.Unmarshal(msg.Data, &export))
	assert.Equal(t, "#4", export.Hotkey)
	assert.Equal(t, env.cfg.Script.OutputPath, export.OutputPath)
}

func TestWebSocket_FailedGenerateStatus(t *testing.T) {
	env := newTestEnv(t)
	conn := dialBuilder(t, env)

	// a tray export of an empty sequence has no HTTP caller to answer
	_, err := env.sess.Generate("", session.SourceTray)
	require.Error(t, err)

	msg := readPushed(t, conn)
	assert.Equal(t, MessageTypeStatus, msg.Type)

	var p problem
	require.NoError(t, json.Unmarshal(msg.Data, &p))
	assert.Equal(t, "warning", p.Level)
	assert.Equal(t, "No actions in sequence!", p.Message)
}

func TestWebSocket_ClientLeaves(t *testing.T) {
	env := newTestEnv(t)
	conn := dialBuilder(t, env)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return env.server.hub.ClientCount() == 0 },
		2*time.Second, 10*time.Millisecond)
}
