package analysis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/proqure/backend/internal/llm"
	"github.com/proqure/backend/internal/metrics"
	"github.com/proqure/backend/internal/storage/models"
	"github.com/proqure/backend/pkg/logger"
)

// ErrInvalidRequest means the evaluation request is missing required fields.
var ErrInvalidRequest = errors.New("analysis: missing required fields")

// EvaluationRequest is a completed, validated intake record: supplier
// identity plus the numeric responses keyed by field key.
type EvaluationRequest struct {
	SupplierName string             `json:"supplierName"`
	Industry     string             `json:"industry"`
	Responses    map[string]float64 `json:"responses"`
}

// EvaluationResult is returned to the caller after a successful pipeline
// run: the persisted record and a short display summary.
type EvaluationResult struct {
	Summary string
	Report  *models.Report
}

// Completer issues a single model completion. Satisfied by *llm.Client.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ReportStore persists one report per successful evaluation. Satisfied by
// *sqlite.Client.
type ReportStore interface {
	InsertReport(ctx context.Context, report *models.Report) error
}

type Service struct {
	llm   Completer
	store ReportStore
}

func NewService(completer Completer, store ReportStore) *Service {
	return &Service{
		llm:   completer,
		store: store,
	}
}

// Evaluate runs the full pipeline for one supplier: build the prompt, call
// the model once, tolerantly extract the report, persist it, and derive the
// display summary. Any failure aborts the run without persisting anything;
// previously stored reports are never touched.
func (s *Service) Evaluate(ctx context.Context, ownerID string, req EvaluationRequest) (*EvaluationResult, error) {
	if strings.TrimSpace(req.SupplierName) == "" ||
		strings.TrimSpace(req.Industry) == "" ||
		len(req.Responses) == 0 {
		return nil, ErrInvalidRequest
	}

	logger.Info("Evaluating supplier",
		zap.String("supplier", req.SupplierName),
		zap.String("industry", req.Industry),
	)

	prompt := BuildPrompt(req)

	start := time.Now()
	raw, err := s.llm.Complete(ctx, SystemPrompt, prompt)
	metrics.ModelCallDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.EvaluationsTotal.WithLabelValues("model_failure").Inc()
		return nil, fmt.Errorf("model invocation failed: %w", err)
	}

	report, err := ExtractReport(raw)
	if err != nil {
		metrics.EvaluationsTotal.WithLabelValues("extraction_failure").Inc()
		metrics.ExtractionFailures.WithLabelValues(extractionKind(err)).Inc()
		logger.Error("Failed to extract report from model output",
			zap.Error(err),
			zap.String("raw_output", raw),
		)
		return nil, err
	}

	persisted := &models.Report{
		ID:           uuid.New().String(),
		OwnerID:      ownerID,
		SupplierName: req.SupplierName,
		Industry:     req.Industry,
		Responses:    req.Responses,
		AIOutput:     *report,
		CreatedAt:    time.Now(),
	}

	if err := s.store.InsertReport(ctx, persisted); err != nil {
		metrics.EvaluationsTotal.WithLabelValues("store_failure").Inc()
		return nil, fmt.Errorf("failed to persist report: %w", err)
	}

	metrics.EvaluationsTotal.WithLabelValues("success").Inc()
	metrics.ReportsCreated.Inc()

	return &EvaluationResult{
		Summary: Summarize(report),
		Report:  persisted,
	}, nil
}

// Summarize derives the short human summary shown when an evaluation
// completes. Zero or missing sub-fields render as "N/A" instead of failing.
func Summarize(report *models.AIReport) string {
	overall := report.ESG.OverallRating
	if overall == "" {
		overall = "N/A"
	}

	riskScore := "N/A"
	if report.Risk.RiskScore != 0 {
		riskScore = strconv.FormatFloat(report.Risk.RiskScore, 'f', -1, 64)
	}

	return fmt.Sprintf("Analysis Complete! ESG Overall: %s, Risk Score: %s.", overall, riskScore)
}

// UserMessage maps a pipeline error to the generic message shown to the
// user. Upstream diagnostics are logged separately and never surfaced.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		return "AI analysis credential not configured."
	case errors.Is(err, llm.ErrServiceUnavailable):
		return "Failed to reach the AI analysis service."
	case errors.Is(err, llm.ErrEmptyResponse):
		return "AI returned empty content."
	case errors.Is(err, ErrNoJSONFound), errors.Is(err, ErrMalformedJSON):
		return "AI returned unexpected format. Ensure JSON-only output."
	case errors.Is(err, ErrInvalidRequest):
		return "Missing required fields."
	default:
		return "Internal server error."
	}
}

func extractionKind(err error) string {
	if errors.Is(err, ErrNoJSONFound) {
		return "no_json_found"
	}
	return "malformed_json"
}
