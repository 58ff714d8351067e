package analysis

import (
	"math"

	"github.com/proqure/backend/internal/storage/models"
)

// Derived aggregates are never stored; every view recomputes them from the
// persisted report with these functions so redisplays always agree.

// RiskPercent converts the model's 1-10 risk score to a 0-100 percentage.
func RiskPercent(riskScore float64) int {
	return int(math.Round(riskScore * 10))
}

// SustainabilityPercent is the rounded mean of the three ESG axes.
func SustainabilityPercent(esg models.ESGSection) int {
	return int(math.Round((esg.Environmental + esg.Social + esg.Governance) / 3))
}

// ESGGrade maps a sustainability percentage to a letter grade.
func ESGGrade(sustainabilityPercent int) string {
	switch {
	case sustainabilityPercent >= 90:
		return "A+"
	case sustainabilityPercent >= 80:
		return "A"
	case sustainabilityPercent >= 65:
		return "B"
	default:
		return "C"
	}
}

// RiskLevel buckets a risk percentage for dashboard display.
func RiskLevel(riskPercent int) string {
	switch {
	case riskPercent >= 70:
		return "High"
	case riskPercent >= 40:
		return "Medium"
	default:
		return "Low"
	}
}
