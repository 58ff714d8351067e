package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/proqure/backend/internal/chat"
	"github.com/proqure/backend/internal/middleware/auth"
	"github.com/proqure/backend/pkg/logger"
)

type ChatHandler struct {
	chat *chat.Service
}

func NewChatHandler(chatService *chat.Service) *ChatHandler {
	return &ChatHandler{chat: chatService}
}

// StartSession opens a fresh intake conversation and returns the greeting.
func (h *ChatHandler) StartSession(c *fiber.Ctx) error {
	snap := h.chat.Start(auth.UserID(c))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"session": snap,
	})
}

// SendMessage feeds one user message into a conversation. While the final
// submission's model call is in flight the session answers 409, so a client
// cannot double-submit an evaluation.
func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	userID := auth.UserID(c)
	sessionID := c.Params("id")

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	snap, err := h.chat.Handle(c.Context(), sessionID, userID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrSessionNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Session not found",
			})
		case errors.Is(err, chat.ErrSubmissionInFlight):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"message": "An evaluation is already in progress for this session",
			})
		case errors.Is(err, chat.ErrEmptyMessage), errors.Is(err, chat.ErrMessageTooLong):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid message",
			})
		default:
			logger.Error("Chat message handling failed",
				zap.String("session_id", sessionID),
				zap.Error(err),
			)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to process message",
			})
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"session": snap,
	})
}

// GetSession returns the full transcript and progress of a conversation.
func (h *ChatHandler) GetSession(c *fiber.Ctx) error {
	snap, err := h.chat.Get(c.Params("id"), auth.UserID(c))
	if err != nil {
		if errors.Is(err, chat.ErrSubmissionInFlight) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"message": "An evaluation is in progress for this session",
			})
		}
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Session not found",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"session": snap,
	})
}
