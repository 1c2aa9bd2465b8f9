package wsserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/vk/buildgraphgo/internal/cachelayout"
	"github.com/vk/buildgraphgo/internal/progress"
)

func TestReportBroadcastsToConnectedClient(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Give ServeWS time to register the connection before we report.
	time.Sleep(20 * time.Millisecond)

	hub.Report(progress.Event{Artifact: "com.example:a:1.0", Step: "HASH", Marker: cachelayout.Success})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got progress.Event
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, "com.example:a:1.0", got.Artifact)
	require.Equal(t, "HASH", got.Step)
}
