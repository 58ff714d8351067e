package dashboard

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/proqure/backend/internal/analysis"
	"github.com/proqure/backend/internal/metrics"
	"github.com/proqure/backend/internal/storage/models"
	"github.com/proqure/backend/pkg/logger"
)

// Summary holds the owner-level aggregates shown on the dashboard. These
// are pure functions of the persisted reports and are never stored; the
// cache is a throwaway copy with a short TTL.
type Summary struct {
	TotalSuppliers    int          `json:"totalSuppliers"`
	AvgRiskScore      int          `json:"avgRiskScore"`
	AvgSustainability int          `json:"avgSustainability"`
	AvgGreenScore     int          `json:"avgGreenScore"`
	LowRiskCount      int          `json:"lowRiskCount"`
	HighRiskCount     int          `json:"highRiskCount"`
	ScoreDistribution Distribution `json:"scoreDistribution"`
}

// Distribution buckets suppliers by sustainability percentage.
type Distribution struct {
	Excellent int `json:"excellent"` // 90+
	Good      int `json:"good"`      // 75-89
	Fair      int `json:"fair"`      // 60-74
	Poor      int `json:"poor"`      // <60
}

type ReportLister interface {
	GetReportsByOwner(ctx context.Context, ownerID string) ([]models.Report, error)
}

type Cache interface {
	GetDashboard(ctx context.Context, ownerID string, summary interface{}) (bool, error)
	SetDashboard(ctx context.Context, ownerID string, summary interface{}, ttl time.Duration) error
	InvalidateDashboard(ctx context.Context, ownerID string) error
}

type Service struct {
	db       ReportLister
	cache    Cache
	cacheTTL time.Duration
}

// NewService wires the dashboard over the report store. cache may be nil,
// in which case every read recomputes.
func NewService(db ReportLister, cache Cache, cacheTTL time.Duration) *Service {
	return &Service{
		db:       db,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

func (s *Service) Summary(ctx context.Context, ownerID string) (*Summary, error) {
	if s.cache != nil {
		var cached Summary
		hit, err := s.cache.GetDashboard(ctx, ownerID, &cached)
		if err != nil {
			logger.Warn("Dashboard cache read failed", zap.Error(err))
		} else if hit {
			metrics.DashboardCacheHits.WithLabelValues("hit").Inc()
			return &cached, nil
		}
		metrics.DashboardCacheHits.WithLabelValues("miss").Inc()
	}

	reports, err := s.db.GetReportsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load reports for dashboard: %w", err)
	}

	summary := Compute(reports)

	if s.cache != nil {
		if err := s.cache.SetDashboard(ctx, ownerID, summary, s.cacheTTL); err != nil {
			logger.Warn("Dashboard cache write failed", zap.Error(err))
		}
	}

	return summary, nil
}

// Invalidate drops the cached aggregates after a new report is persisted.
func (s *Service) Invalidate(ctx context.Context, ownerID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateDashboard(ctx, ownerID); err != nil {
		logger.Warn("Dashboard cache invalidation failed", zap.Error(err))
	}
}

// Compute derives the aggregates from a set of reports.
func Compute(reports []models.Report) *Summary {
	summary := &Summary{TotalSuppliers: len(reports)}
	if len(reports) == 0 {
		return summary
	}

	var riskSum, sustainabilitySum, greenSum float64

	for _, report := range reports {
		riskPercent := analysis.RiskPercent(report.AIOutput.Risk.RiskScore)
		sustainability := analysis.SustainabilityPercent(report.AIOutput.ESG)

		riskSum += float64(riskPercent)
		sustainabilitySum += float64(sustainability)
		greenSum += report.AIOutput.ESG.Environmental

		switch analysis.RiskLevel(riskPercent) {
		case "Low":
			summary.LowRiskCount++
		case "High":
			summary.HighRiskCount++
		}

		switch {
		case sustainability >= 90:
			summary.ScoreDistribution.Excellent++
		case sustainability >= 75:
			summary.ScoreDistribution.Good++
		case sustainability >= 60:
			summary.ScoreDistribution.Fair++
		default:
			summary.ScoreDistribution.Poor++
		}
	}

	n := float64(len(reports))
	summary.AvgRiskScore = int(math.Round(riskSum / n))
	summary.AvgSustainability = int(math.Round(sustainabilitySum / n))
	summary.AvgGreenScore = int(math.Round(greenSum / n))

	return summary
}
