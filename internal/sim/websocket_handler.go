package sim

import (
	"context"

	"github.com/flycharts/flycharts/internal/websocket"
	"github.com/flycharts/flycharts/pkg/logger"
)

// WebSocketHandler handles incoming WebSocket messages from dashboard
// clients
type WebSocketHandler struct {
	manager *Manager
	logger  *logger.Logger
}

// NewWebSocketHandler creates a new WebSocket message handler
func NewWebSocketHandler(manager *Manager, log *logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		manager: manager,
		logger:  log.Named("sim-ws-handler"),
	}
}

// HandleMessage handles incoming WebSocket messages
func (h *WebSocketHandler) HandleMessage(client *websocket.Client, messageType string, data map[string]any) error {
	switch messageType {
	case websocket.MessageTypeRequestPosition:
		return h.handlePositionRequest(client)
	case websocket.MessageTypeRequestStatus:
		return h.handleStatusRequest(client)
	default:
		h.logger.Debug("Unhandled message type", logger.String("type", messageType))
		return nil
	}
}

// GreetClient sends the current status, and the last position when one is
// known, to a freshly connected client
func (h *WebSocketHandler) GreetClient(client *websocket.Client) {
	status := h.manager.Status()
	h.sendToClient(client, &websocket.Message{
		Type: websocket.MessageTypeSimStatus,
		Data: status.ToMap(),
	})

	if status.LastPosition != nil {
		h.sendToClient(client, &websocket.Message{
			Type: websocket.MessageTypePositionUpdate,
			Data: status.LastPosition.ToMap(),
		})
	}
}

func (h *WebSocketHandler) handlePositionRequest(client *websocket.Client) error {
	reading, err := h.manager.CurrentPosition(context.Background())
	if err != nil {
		h.logger.Debug("Position request while link down", logger.Error(err))
		return h.sendToClient(client, &websocket.Message{
			Type: websocket.MessageTypeError,
			Data: map[string]any{"message": err.Error()},
		})
	}

	return h.sendToClient(client, &websocket.Message{
		Type: websocket.MessageTypePositionUpdate,
		Data: reading.ToMap(),
	})
}

func (h *WebSocketHandler) handleStatusRequest(client *websocket.Client) error {
	status := h.manager.Status()
	return h.sendToClient(client, &websocket.Message{
		Type: websocket.MessageTypeSimStatus,
		Data: status.ToMap(),
	})
}

func (h *WebSocketHandler) sendToClient(client *websocket.Client, message *websocket.Message) error {
	if !client.SendMessage(message) {
		h.logger.Warn("Client send channel full, dropping message",
			logger.String("type", message.Type))
	}
	return nil
}
