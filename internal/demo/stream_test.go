package demo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamPushesFramesAndAppliesCommands(t *testing.T) {
	sim, err := NewSimulator(fastTiming())
	require.NoError(t, err)
	sim.Start(context.Background())
	defer sim.Stop()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		NewStream(sim, conn, nil).Serve()
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))

	var first Frame
	require.NoError(t, conn.ReadJSON(&first))
	assert.True(t, first.Snapshot.Active)
	assert.Equal(t, CuesFor(first.Snapshot), first.Cues)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.WriteJSON(Command{Type: "connect"}))

	for {
		var f Frame
		require.NoError(t, conn.ReadJSON(&f))
		if f.Snapshot.Connected {
			assert.True(t, f.Cues.ConnectionLine)
			break
		}
	}
	assert.True(t, sim.Snapshot().Connected)
}
