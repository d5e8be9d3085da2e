package clients

import (
	"context"
	"time"

	ws "healthops-dashboard/internal/transport/websocket"
)

// Message types pushed to browsers.
const (
	MessageExportProgress = "export_progress"
	MessageExportComplete = "export_complete"
	MessageExportFailed   = "export_failed"
)

type WebSocketClient struct {
	hub *ws.Hub
}

func NewWebSocketClient(hub *ws.Hub) *WebSocketClient {
	return &WebSocketClient{
		hub: hub,
	}
}

func (c *WebSocketClient) NotifyExportProgress(ctx context.Context, userID, exportID string, progress float64, stage string) error {
	if c.hub == nil {
		return nil
	}

	data := map[string]any{
		"id":       exportID,
		"progress": progress,
	}
	if stage != "" {
		data["stage"] = stage
	}

	c.hub.Broadcast(userID, &ws.Message{
		Type:    MessageExportProgress,
		Channel: "export_progress#" + userID,
		Data:    data,
	})
	return nil
}

func (c *WebSocketClient) NotifyExportComplete(ctx context.Context, userID, exportID, url, filename string) error {
	if c.hub == nil {
		return nil
	}

	c.hub.Broadcast(userID, &ws.Message{
		Type:    MessageExportComplete,
		Channel: "export_complete#" + userID,
		Data: map[string]any{
			"id":       exportID,
			"url":      url,
			"filename": filename,
		},
	})
	return nil
}

func (c *WebSocketClient) NotifyExportFailed(ctx context.Context, userID, exportID, errMsg string) error {
	if c.hub == nil {
		return nil
	}

	c.hub.Broadcast(userID, &ws.Message{
		Type:    MessageExportFailed,
		Channel: "export_failed#" + userID,
		Data: map[string]any{
			"id":      exportID,
			"message": errMsg,
		},
	})
	return nil
}

// NotifyEntryChanged tells every open dashboard that an entry changed so it can reload.
func (c *WebSocketClient) NotifyEntryChanged(ctx context.Context, eventType, entryID, actorID string, at time.Time) error {
	if c.hub == nil {
		return nil
	}

	c.hub.BroadcastAll(&ws.Message{
		Type:    eventType,
		Channel: "entries",
		Data: map[string]any{
			"id":       entryID,
			"actor_id": actorID,
			"at":       at.UTC().Format(time.RFC3339),
		},
	})
	return nil
}
