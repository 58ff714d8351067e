package analysis

import (
	"errors"
	"testing"
)

func TestExtractJSONBare(t *testing.T) {
	parsed, err := ExtractJSON(`{"a": 1}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed["a"] != float64(1) {
		t.Errorf(`parsed["a"] = %v, want 1`, parsed["a"])
	}
}

func TestExtractJSONWrappedInProse(t *testing.T) {
	raw := "Sure! Here is the report you asked for:\n\n```json\n" +
		`{"a": 1, "nested": {"b": "x"}}` +
		"\n```\nLet me know if you need anything else."

	parsed, err := ExtractJSON(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed["a"] != float64(1) {
		t.Errorf(`parsed["a"] = %v, want 1`, parsed["a"])
	}
	nested, ok := parsed["nested"].(map[string]interface{})
	if !ok || nested["b"] != "x" {
		t.Errorf("nested object not preserved: %v", parsed["nested"])
	}
}

func TestExtractJSONNoBraces(t *testing.T) {
	_, err := ExtractJSON("I'm sorry, I cannot produce a report for this supplier.")
	if !errors.Is(err, ErrNoJSONFound) {
		t.Errorf("err = %v, want ErrNoJSONFound", err)
	}
}

func TestExtractJSONMalformed(t *testing.T) {
	_, err := ExtractJSON(`prefix {"a": 1,,,} suffix`)
	if !errors.Is(err, ErrMalformedJSON) {
		t.Errorf("err = %v, want ErrMalformedJSON", err)
	}
}

func TestExtractJSONUnbalancedBraces(t *testing.T) {
	// Last '}' precedes the first '{'; there is no candidate region.
	_, err := ExtractJSON("} nothing here {")
	if !errors.Is(err, ErrNoJSONFound) {
		t.Errorf("err = %v, want ErrNoJSONFound", err)
	}
}

func TestExtractReportTyped(t *testing.T) {
	raw := `The analysis follows.
{
  "supplierName": "Acme Co.",
  "esg": {"environmental": 70, "social": 65, "governance": 80, "overallRating": "B"},
  "risk": {"riskScore": 4.2, "redFlags": ["single-source dependency"]}
}`

	report, err := ExtractReport(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.SupplierName != "Acme Co." {
		t.Errorf("supplierName = %q", report.SupplierName)
	}
	if report.ESG.OverallRating != "B" {
		t.Errorf("overallRating = %q", report.ESG.OverallRating)
	}
	if report.Risk.RiskScore != 4.2 {
		t.Errorf("riskScore = %v", report.Risk.RiskScore)
	}
	// Sections the model omitted decode to zero values.
	if report.Diversity.DiversityScore != 0 || report.FinalRecommendation != "" {
		t.Error("omitted sections should decode to zero values")
	}
}
