package models

import "time"

// Report is one persisted supplier evaluation. It is created exactly once
// when an evaluation succeeds and never updated afterwards.
type Report struct {
	ID           string             `json:"id"`
	OwnerID      string             `json:"ownerId"`
	SupplierName string             `json:"supplierName"`
	Industry     string             `json:"industry"`
	Responses    map[string]float64 `json:"responses"`
	AIOutput     AIReport           `json:"aiOutput"`
	CreatedAt    time.Time          `json:"createdAt"`
}

// AIReport is the structured analysis parsed out of the model's reply.
// Sections the model omits decode to zero values; consumers render those
// as "N/A" rather than failing the whole report.
type AIReport struct {
	SupplierName        string               `json:"supplierName"`
	Industry            string               `json:"industry"`
	Environment         EnvironmentSection   `json:"environment"`
	ESG                 ESGSection           `json:"esg"`
	Risk                RiskSection          `json:"risk"`
	SpendInsights       SpendInsightsSection `json:"spendInsights"`
	Diversity           DiversitySection     `json:"diversity"`
	Benchmarking        BenchmarkingSection  `json:"benchmarking"`
	FinalRecommendation string               `json:"finalRecommendation"`
}

type EnvironmentSection struct {
	Scope1               float64 `json:"scope1"`
	Scope2               float64 `json:"scope2"`
	Scope3               float64 `json:"scope3"`
	CarbonIntensityScore float64 `json:"carbonIntensityScore"`
	CO2SavingsPotential  float64 `json:"co2SavingsPotential"`
	Summary              string  `json:"summary"`
}

type ESGSection struct {
	Environmental float64 `json:"environmental"`
	Social        float64 `json:"social"`
	Governance    float64 `json:"governance"`
	OverallRating string  `json:"overallRating"`
}

type RiskSection struct {
	RiskScore float64                `json:"riskScore"`
	Breakdown map[string]interface{} `json:"breakdown"`
	RedFlags  []string               `json:"redFlags"`
}

type SpendInsightsSection struct {
	InefficiencyEstimate   string   `json:"inefficiencyEstimate"`
	Fortune500Comparison   string   `json:"fortune500Comparison"`
	ImprovementSuggestions []string `json:"improvementSuggestions"`
}

type DiversitySection struct {
	DiversityScore    float64  `json:"diversityScore"`
	ComplianceSummary string   `json:"complianceSummary"`
	Recommendations   []string `json:"recommendations"`
}

type BenchmarkingSection struct {
	IndustryPositionPercentile float64                `json:"industryPositionPercentile"`
	Fortune500Averages         map[string]interface{} `json:"fortune500Averages"`
}
