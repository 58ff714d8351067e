package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/proqure/backend/internal/analysis"
	"github.com/proqure/backend/internal/dashboard"
	"github.com/proqure/backend/internal/middleware/auth"
	"github.com/proqure/backend/pkg/logger"
)

type AnalyzeHandler struct {
	analyzer  *analysis.Service
	dashboard *dashboard.Service
}

func NewAnalyzeHandler(analyzer *analysis.Service, dash *dashboard.Service) *AnalyzeHandler {
	return &AnalyzeHandler{
		analyzer:  analyzer,
		dashboard: dash,
	}
}

// HandleAnalyze runs one supplier evaluation for a request that already
// carries a complete response record (the non-conversational entry point).
func (h *AnalyzeHandler) HandleAnalyze(c *fiber.Ctx) error {
	userID := auth.UserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "User not authenticated.",
		})
	}

	var req analysis.EvaluationRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse analyze request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	if req.SupplierName == "" || req.Industry == "" || len(req.Responses) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Missing required fields.",
		})
	}

	result, err := h.analyzer.Evaluate(c.Context(), userID, req)
	if err != nil {
		if errors.Is(err, analysis.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": analysis.UserMessage(err),
			})
		}
		logger.Error("Supplier evaluation failed",
			zap.String("supplier", req.SupplierName),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": analysis.UserMessage(err),
		})
	}

	h.dashboard.Invalidate(c.Context(), userID)

	return c.JSON(fiber.Map{
		"success":    true,
		"summary":    result.Summary,
		"fullReport": result.Report,
	})
}
