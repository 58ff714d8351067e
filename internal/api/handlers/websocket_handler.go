package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/proqure/backend/internal/chat"
	"github.com/proqure/backend/pkg/logger"
)

// WebSocketHandler drives one intake conversation per connection. The
// client sees a transient "thinking" status while the evaluation is in
// flight and a complete/error frame once it settles.
type WebSocketHandler struct {
	chat *chat.Service
}

func NewWebSocketHandler(chatService *chat.Service) *WebSocketHandler {
	return &WebSocketHandler{chat: chatService}
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	userID, _ := c.Locals("userID").(string)
	if userID == "" {
		h.sendError(c, "User not authenticated.")
		c.Close()
		return
	}

	logger.Info("Chat WebSocket connection established", zap.String("user_id", userID))

	defer func() {
		c.Close()
		logger.Info("Chat WebSocket connection closed")
	}()

	snap := h.chat.Start(userID)
	h.sendMessages(c, snap.Messages)

	for {
		var msg struct {
			Type    string `json:"type"`
			Content string `json:"content"`
		}

		if err := c.ReadJSON(&msg); err != nil {
			logger.Debug("WebSocket read ended", zap.Error(err))
			break
		}

		if msg.Type != "message" {
			continue
		}

		// Only the final answer can start a model call; everything else
		// settles immediately, so no status frame.
		if snap.Collecting && snap.QuestionIndex == snap.TotalQuestions-1 {
			h.sendStatus(c, "thinking")
		}

		next, err := h.chat.Handle(context.Background(), snap.SessionID, userID, msg.Content)
		if err != nil {
			switch {
			case errors.Is(err, chat.ErrSubmissionInFlight):
				h.sendError(c, "An evaluation is already in progress.")
			case errors.Is(err, chat.ErrEmptyMessage), errors.Is(err, chat.ErrMessageTooLong):
				h.sendError(c, "Invalid message.")
			default:
				logger.Error("WebSocket chat message failed", zap.Error(err))
				h.sendError(c, "Failed to process message.")
			}
			continue
		}

		h.sendMessages(c, next.Messages)

		if next.Done && !snap.Done {
			c.WriteJSON(map[string]interface{}{
				"type":    "complete",
				"summary": next.Summary,
				"report":  next.Report,
			})
		}

		snap = next
	}
}

func (h *WebSocketHandler) sendMessages(c *websocket.Conn, messages []chat.Message) {
	for _, message := range messages {
		if message.Role != chat.RoleAssistant {
			continue
		}
		c.WriteJSON(map[string]interface{}{
			"type":    "message",
			"role":    message.Role,
			"content": message.Content,
		})
	}
}

func (h *WebSocketHandler) sendStatus(c *websocket.Conn, status string) {
	c.WriteJSON(map[string]interface{}{
		"type":    "status",
		"content": status,
	})
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, errorMsg string) {
	c.WriteJSON(map[string]interface{}{
		"type":  "error",
		"error": errorMsg,
	})
}
