package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	ws "healthops-dashboard/internal/transport/websocket"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// connect starts a hub and returns a socket registered for userID.
func connect(t *testing.T, userID string) (*ws.Hub, *websocket.Conn) {
	t.Helper()

	hub := ws.NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.HandleWebSocket(w, r, userID)
	}))
	t.Cleanup(server.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+server.URL[4:], nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	// registration happens on the hub goroutine
	time.Sleep(100 * time.Millisecond)
	return hub, conn
}

func readMessage(t *testing.T, conn *websocket.Conn) (ws.Message, map[string]any) {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var received ws.Message
	require.NoError(t, conn.ReadJSON(&received))
	data, ok := received.Data.(map[string]any)
	require.True(t, ok, "data should decode as an object")
	return received, data
}

func TestWebSocketClient_NotifyExportProgress(t *testing.T) {
	hub, conn := connect(t, "nav-1")
	client := NewWebSocketClient(hub)

	require.NoError(t, client.NotifyExportProgress(context.Background(), "nav-1", "export-123", 50.5, "rows"))

	msg, data := readMessage(t, conn)
	assert.Equal(t, MessageExportProgress, msg.Type)
	assert.Equal(t, "nav-1", msg.UserID)
	assert.Equal(t, "export_progress#nav-1", msg.Channel)
	assert.Equal(t, "export-123", data["id"])
	assert.Equal(t, 50.5, data["progress"])
	assert.Equal(t, "rows", data["stage"])
}

func TestWebSocketClient_NotifyExportComplete(t *testing.T) {
	hub, conn := connect(t, "nav-1")
	client := NewWebSocketClient(hub)

	require.NoError(t, client.NotifyExportComplete(context.Background(), "nav-1", "export-123",
		"https://example.com/file.xlsx", "Service_Entries_20240101_101500.xlsx"))

	msg, data := readMessage(t, conn)
	assert.Equal(t, MessageExportComplete, msg.Type)
	assert.Equal(t, "https://example.com/file.xlsx", data["url"])
	assert.Equal(t, "Service_Entries_20240101_101500.xlsx", data["filename"])
}

func TestWebSocketClient_NotifyExportFailed(t *testing.T) {
	hub, conn := connect(t, "nav-1")
	client := NewWebSocketClient(hub)

	require.NoError(t, client.NotifyExportFailed(context.Background(), "nav-1", "export-123", "upload failed"))

	msg, data := readMessage(t, conn)
	assert.Equal(t, MessageExportFailed, msg.Type)
	assert.Equal(t, "export_failed#nav-1", msg.Channel)
	assert.Equal(t, "upload failed", data["message"])
}

func TestWebSocketClient_NotifyEntryChanged(t *testing.T) {
	hub, conn := connect(t, "admin-1")
	client := NewWebSocketClient(hub)
	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	require.NoError(t, client.NotifyEntryChanged(context.Background(), "entry.updated", "e1", "nav-1", at))

	msg, data := readMessage(t, conn)
	assert.Equal(t, "entry.updated", msg.Type)
	assert.Empty(t, msg.UserID)
	assert.Equal(t, "e1", data["id"])
	assert.Equal(t, "nav-1", data["actor_id"])
	assert.Equal(t, "2024-03-01T09:30:00Z", data["at"])
}

func TestWebSocketClient_NilHub(t *testing.T) {
	client := NewWebSocketClient(nil)
	ctx := context.Background()

	assert.NoError(t, client.NotifyExportProgress(ctx, "nav-1", "export-123", 50.5, ""))
	assert.NoError(t, client.NotifyExportComplete(ctx, "nav-1", "export-123", "u", "f.xlsx"))
	assert.NoError(t, client.NotifyExportFailed(ctx, "nav-1", "export-123", "boom"))
	assert.NoError(t, client.NotifyEntryChanged(ctx, "entry.deleted", "e1", "nav-1", time.Now()))
}

func TestWebSocketClient_MultipleProgressUpdates(t *testing.T) {
	hub, conn := connect(t, "nav-1")
	client := NewWebSocketClient(hub)

	for _, progress := range []float64{10, 25, 50, 75, 100} {
		require.NoError(t, client.NotifyExportProgress(context.Background(), "nav-1", "export-123", progress, ""))
		_, data := readMessage(t, conn)
		assert.Equal(t, progress, data["progress"])
	}
}
