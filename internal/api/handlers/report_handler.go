package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/proqure/backend/internal/analysis"
	"github.com/proqure/backend/internal/dashboard"
	"github.com/proqure/backend/internal/middleware/auth"
	"github.com/proqure/backend/internal/storage/models"
	"github.com/proqure/backend/internal/storage/sqlite"
	"github.com/proqure/backend/pkg/logger"
)

type ReportHandler struct {
	db        *sqlite.Client
	dashboard *dashboard.Service
}

func NewReportHandler(db *sqlite.Client, dash *dashboard.Service) *ReportHandler {
	return &ReportHandler{
		db:        db,
		dashboard: dash,
	}
}

// reportView is a persisted report plus the derived aggregates every view
// recomputes identically (nothing derived is ever stored).
type reportView struct {
	models.Report
	RiskPercent         int    `json:"riskPercent"`
	SustainabilityScore int    `json:"sustainabilityScore"`
	GreenScore          int    `json:"greenScore"`
	ESGGrade            string `json:"esgGrade"`
	RiskLevel           string `json:"riskLevel"`
}

func toView(report models.Report) reportView {
	riskPercent := analysis.RiskPercent(report.AIOutput.Risk.RiskScore)
	sustainability := analysis.SustainabilityPercent(report.AIOutput.ESG)

	return reportView{
		Report:              report,
		RiskPercent:         riskPercent,
		SustainabilityScore: sustainability,
		GreenScore:          int(report.AIOutput.Environment.CarbonIntensityScore),
		ESGGrade:            analysis.ESGGrade(sustainability),
		RiskLevel:           analysis.RiskLevel(riskPercent),
	}
}

// GetAllReports returns the caller's reports, newest first.
func (h *ReportHandler) GetAllReports(c *fiber.Ctx) error {
	userID := auth.UserID(c)

	reports, err := h.db.GetReportsByOwner(c.Context(), userID)
	if err != nil {
		logger.Error("Failed to fetch reports", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch reports",
		})
	}

	views := make([]reportView, 0, len(reports))
	for _, report := range reports {
		views = append(views, toView(report))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"reports": views,
	})
}

// GetReportByID returns one report, with an ownership check: a foreign
// report is a 403, an unknown or malformed id a 404.
func (h *ReportHandler) GetReportByID(c *fiber.Ctx) error {
	userID := auth.UserID(c)

	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Invalid report ID",
		})
	}

	report, err := h.db.GetReport(c.Context(), id)
	if errors.Is(err, sqlite.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Report not found",
		})
	}
	if err != nil {
		logger.Error("Failed to fetch report", zap.String("report_id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch report",
		})
	}

	if report.OwnerID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"message": "Unauthorized",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"report":  toView(*report),
	})
}

// GetSuppliers returns the distinct supplier names the caller has evaluated.
func (h *ReportHandler) GetSuppliers(c *fiber.Ctx) error {
	userID := auth.UserID(c)

	suppliers, err := h.db.ListSupplierNames(c.Context(), userID)
	if err != nil {
		logger.Error("Failed to list suppliers", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch suppliers",
		})
	}

	if suppliers == nil {
		suppliers = []string{}
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"suppliers": suppliers,
	})
}

// GetDashboard returns the caller's aggregate metrics.
func (h *ReportHandler) GetDashboard(c *fiber.Ctx) error {
	userID := auth.UserID(c)

	summary, err := h.dashboard.Summary(c.Context(), userID)
	if err != nil {
		logger.Error("Failed to compute dashboard summary", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to compute dashboard",
		})
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"dashboard": summary,
	})
}
