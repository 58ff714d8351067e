package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/proqure/backend/internal/llm"
	"github.com/proqure/backend/internal/storage/models"
)

type stubCompleter struct {
	response string
	err      error
	calls    int
}

func (s *stubCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	s.calls++
	return s.response, s.err
}

type stubStore struct {
	inserted []*models.Report
	err      error
}

func (s *stubStore) InsertReport(ctx context.Context, report *models.Report) error {
	if s.err != nil {
		return s.err
	}
	s.inserted = append(s.inserted, report)
	return nil
}

func validRequest() EvaluationRequest {
	return EvaluationRequest{
		SupplierName: "Acme Co.",
		Industry:     "Manufacturing",
		Responses: map[string]float64{
			"deliveryReliability": 8,
			"lateDeliveries":      3,
			"carbonEmissions":     1200,
			"renewableEnergyPct":  40,
			"laborRating":         7,
			"governanceRating":    9,
			"annualSpend":         500000,
			"criticality":         6,
		},
	}
}

const modelReply = `Here is your report:
{
  "supplierName": "Acme Co.",
  "industry": "Manufacturing",
  "esg": {"environmental": 70, "social": 65, "governance": 80, "overallRating": "B"},
  "risk": {"riskScore": 4.2, "redFlags": []},
  "finalRecommendation": "Conditional Go"
}`

func TestEvaluateSuccess(t *testing.T) {
	completer := &stubCompleter{response: modelReply}
	store := &stubStore{}
	svc := NewService(completer, store)

	result, err := svc.Evaluate(context.Background(), "user-1", validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if completer.calls != 1 {
		t.Errorf("model called %d times, want exactly 1", completer.calls)
	}
	if len(store.inserted) != 1 {
		t.Fatalf("persisted %d reports, want 1", len(store.inserted))
	}

	persisted := store.inserted[0]
	if persisted.ID == "" {
		t.Error("persisted report has no ID")
	}
	if persisted.OwnerID != "user-1" {
		t.Errorf("ownerID = %q, want user-1", persisted.OwnerID)
	}
	if persisted.AIOutput.ESG.OverallRating != "B" {
		t.Errorf("overallRating = %q", persisted.AIOutput.ESG.OverallRating)
	}

	want := "Analysis Complete! ESG Overall: B, Risk Score: 4.2."
	if result.Summary != want {
		t.Errorf("summary = %q, want %q", result.Summary, want)
	}
}

func TestEvaluateMissingFields(t *testing.T) {
	completer := &stubCompleter{response: modelReply}
	store := &stubStore{}
	svc := NewService(completer, store)

	for name, req := range map[string]EvaluationRequest{
		"no supplier name": {Industry: "Manufacturing", Responses: map[string]float64{"criticality": 6}},
		"no industry":      {SupplierName: "Acme Co.", Responses: map[string]float64{"criticality": 6}},
		"no responses":     {SupplierName: "Acme Co.", Industry: "Manufacturing"},
	} {
		_, err := svc.Evaluate(context.Background(), "user-1", req)
		if !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("%s: err = %v, want ErrInvalidRequest", name, err)
		}
	}

	if completer.calls != 0 {
		t.Errorf("model called %d times for invalid requests, want 0", completer.calls)
	}
}

func TestEvaluateModelFailureNothingPersisted(t *testing.T) {
	completer := &stubCompleter{err: llm.ErrServiceUnavailable}
	store := &stubStore{}
	svc := NewService(completer, store)

	_, err := svc.Evaluate(context.Background(), "user-1", validRequest())
	if !errors.Is(err, llm.ErrServiceUnavailable) {
		t.Fatalf("err = %v, want ErrServiceUnavailable", err)
	}
	if len(store.inserted) != 0 {
		t.Error("report persisted despite model failure")
	}
}

func TestEvaluateExtractionFailureNothingPersisted(t *testing.T) {
	completer := &stubCompleter{response: "I'm sorry, I cannot produce a report."}
	store := &stubStore{}
	svc := NewService(completer, store)

	_, err := svc.Evaluate(context.Background(), "user-1", validRequest())
	if !errors.Is(err, ErrNoJSONFound) {
		t.Fatalf("err = %v, want ErrNoJSONFound", err)
	}
	if len(store.inserted) != 0 {
		t.Error("report persisted despite extraction failure")
	}
}

func TestEvaluateStoreFailure(t *testing.T) {
	completer := &stubCompleter{response: modelReply}
	store := &stubStore{err: errors.New("disk full")}
	svc := NewService(completer, store)

	_, err := svc.Evaluate(context.Background(), "user-1", validRequest())
	if err == nil {
		t.Fatal("expected error from store failure")
	}
	if !strings.Contains(err.Error(), "persist") {
		t.Errorf("err = %v, want persistence failure", err)
	}
}

func TestSummarizeDefaults(t *testing.T) {
	report := &models.AIReport{}
	want := "Analysis Complete! ESG Overall: N/A, Risk Score: N/A."
	if got := Summarize(report); got != want {
		t.Errorf("Summarize(empty) = %q, want %q", got, want)
	}

	report.ESG.OverallRating = "A"
	report.Risk.RiskScore = 3.5
	want = "Analysis Complete! ESG Overall: A, Risk Score: 3.5."
	if got := Summarize(report); got != want {
		t.Errorf("Summarize = %q, want %q", got, want)
	}
}

func TestUserMessageMapping(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{llm.ErrNotConfigured, "AI analysis credential not configured."},
		{llm.ErrServiceUnavailable, "Failed to reach the AI analysis service."},
		{llm.ErrEmptyResponse, "AI returned empty content."},
		{ErrNoJSONFound, "AI returned unexpected format. Ensure JSON-only output."},
		{ErrMalformedJSON, "AI returned unexpected format. Ensure JSON-only output."},
		{ErrInvalidRequest, "Missing required fields."},
		{errors.New("something else"), "Internal server error."},
	}

	for _, tt := range tests {
		if got := UserMessage(tt.err); got != tt.want {
			t.Errorf("UserMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}

	// Wrapped errors still map.
	wrapped := errors.Join(errors.New("upstream: 503"), llm.ErrServiceUnavailable)
	if got := UserMessage(wrapped); got != "Failed to reach the AI analysis service." {
		t.Errorf("UserMessage(wrapped) = %q", got)
	}
}
