package analysis

import (
	"encoding/json"
	"fmt"
)

// SystemPrompt pins the model to JSON-only output. Kept deliberately
// repetitive; the instruction is still best-effort and the extractor
// tolerates prose anyway.
const SystemPrompt = "You are an advanced procurement sustainability AI a specialist in procurement " +
	"sustainability, supply chain risk analysis, and ESG benchmarking. Your sole task is to generate " +
	"ONLY a single valid JSON object containing the full supplier analysis. Your sole task is to " +
	"perform an analysis of the supplier and respond with ONLY a single, valid JSON object containing " +
	"the full report. DO NOT include any explanatory text, greetings, or markdown formatting outside " +
	"of the JSON object itself"

const promptTemplate = `
You are an expert AI in sustainable procurement, ESG analysis, and supplier risk management.

Analyze the supplier based on the data below and generate a structured JSON report. Include numeric and textual insights, actionable recommendations, and benchmarking. Ensure the recommendations and suggestions are as descriptive as possible. Give a brief overview of how Fortune 500 companies in the same industry as doing, just to enrich the context of insights.

Supplier Name: %q
Industry: %q
Responses: %s

Return ONLY a single JSON object with the following keys:

1. "supplierName" - Supplier name
2. "industry" - Industry
3. "environment" - {
    "scope1": number (tCO2e),
    "scope2": number (tCO2e),
    "scope3": number (tCO2e),
    "carbonIntensityScore": number (0-100),
    "co2SavingsPotential": number (tCO2e),
    "summary": string
  }
4. "esg" - {
    "environmental": number (0-100),
    "social": number (0-100),
    "governance": number (0-100),
    "overallRating": string (A-E)
  }
5. "risk" - {
    "riskScore": number (1-10),
    "breakdown": object,
    "redFlags": array of strings
  }
6. "spendInsights" - {
    "inefficiencyEstimate": string,
    "fortune500Comparison": string,
    "improvementSuggestions": array of strings
  }
7. "diversity" - {
    "diversityScore": number (0-100),
    "complianceSummary": string,
    "recommendations": array of strings
  }
8. "benchmarking" - {
    "industryPositionPercentile": number,
    "fortune500Averages": object
  }
9. "finalRecommendation" - string ("Go", "Conditional Go", "Do Not Proceed") with brief plan

Important:
- Return valid JSON ONLY.
- Include numeric values, percentages, and text explanations.
- Provide actionable insights and compare to industry standards.
`

// BuildPrompt renders the fixed instruction template around the supplier
// identity and collected responses. Deterministic: JSON object keys marshal
// in sorted order, so the same request always yields the same prompt.
func BuildPrompt(req EvaluationRequest) string {
	responses, err := json.MarshalIndent(req.Responses, "", "  ")
	if err != nil {
		// A map[string]float64 cannot fail to marshal; keep the template
		// well-formed regardless.
		responses = []byte("{}")
	}

	return fmt.Sprintf(promptTemplate, req.SupplierName, req.Industry, responses)
}
