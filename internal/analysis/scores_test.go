package analysis

import (
	"testing"

	"github.com/proqure/backend/internal/storage/models"
)

func TestRiskPercent(t *testing.T) {
	tests := []struct {
		score float64
		want  int
	}{
		{0, 0},
		{4.2, 42},
		{4.25, 43},
		{10, 100},
	}

	for _, tt := range tests {
		if got := RiskPercent(tt.score); got != tt.want {
			t.Errorf("RiskPercent(%v) = %d, want %d", tt.score, got, tt.want)
		}
	}
}

func TestSustainabilityPercent(t *testing.T) {
	esg := models.ESGSection{Environmental: 70, Social: 65, Governance: 80}
	if got := SustainabilityPercent(esg); got != 72 {
		t.Errorf("SustainabilityPercent = %d, want 72", got)
	}

	if got := SustainabilityPercent(models.ESGSection{}); got != 0 {
		t.Errorf("SustainabilityPercent(zero) = %d, want 0", got)
	}
}

func TestESGGrade(t *testing.T) {
	tests := []struct {
		percent int
		want    string
	}{
		{95, "A+"},
		{90, "A+"},
		{89, "A"},
		{80, "A"},
		{79, "B"},
		{65, "B"},
		{64, "C"},
		{0, "C"},
	}

	for _, tt := range tests {
		if got := ESGGrade(tt.percent); got != tt.want {
			t.Errorf("ESGGrade(%d) = %q, want %q", tt.percent, got, tt.want)
		}
	}
}

func TestRiskLevel(t *testing.T) {
	tests := []struct {
		percent int
		want    string
	}{
		{100, "High"},
		{70, "High"},
		{69, "Medium"},
		{40, "Medium"},
		{39, "Low"},
		{0, "Low"},
	}

	for _, tt := range tests {
		if got := RiskLevel(tt.percent); got != tt.want {
			t.Errorf("RiskLevel(%d) = %q, want %q", tt.percent, got, tt.want)
		}
	}
}
