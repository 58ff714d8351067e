package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/proqure/backend/internal/storage/models"
)

var (
	// ErrNoJSONFound means the model's reply contains no {...} region at all.
	ErrNoJSONFound = errors.New("analysis: no JSON object found in model output")

	// ErrMalformedJSON means a candidate region exists but does not parse.
	ErrMalformedJSON = errors.New("analysis: model output contains malformed JSON")
)

// jsonCandidate returns the region from the first '{' through the last '}'.
// The greedy outermost match is deliberate: models routinely wrap JSON in
// explanatory prose or code fences despite instructions.
func jsonCandidate(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return "", false
	}
	return raw[start : end+1], true
}

// ExtractJSON parses the single JSON object embedded in arbitrary
// surrounding text. No partial-object recovery is attempted: either the
// whole candidate parses or extraction fails.
func ExtractJSON(raw string) (map[string]interface{}, error) {
	candidate, ok := jsonCandidate(raw)
	if !ok {
		return nil, ErrNoJSONFound
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	return parsed, nil
}

// ExtractReport decodes the embedded JSON object into a typed report.
// Missing keys decode to zero values; consumers render those as defaults
// rather than rejecting the report.
func ExtractReport(raw string) (*models.AIReport, error) {
	candidate, ok := jsonCandidate(raw)
	if !ok {
		return nil, ErrNoJSONFound
	}

	var report models.AIReport
	if err := json.Unmarshal([]byte(candidate), &report); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	return &report, nil
}
