package intake

import (
	"math"
	"strconv"
	"strings"
)

type FieldType string

const (
	FieldText   FieldType = "text"
	FieldNumber FieldType = "number"
)

// FieldSpec describes one required intake field. The order of Fields defines
// the question order; the schema is fixed and never changes at runtime.
type FieldSpec struct {
	Key         string
	Label       string
	Placeholder string
	Type        FieldType
}

const (
	KeySupplierName        = "supplierName"
	KeyIndustry            = "industry"
	KeyDeliveryReliability = "deliveryReliability"
	KeyLateDeliveries      = "lateDeliveries"
	KeyCarbonEmissions     = "carbonEmissions"
	KeyRenewableEnergyPct  = "renewableEnergyPct"
	KeyLaborRating         = "laborRating"
	KeyGovernanceRating    = "governanceRating"
	KeyAnnualSpend         = "annualSpend"
	KeyCriticality         = "criticality"
)

var Fields = []FieldSpec{
	{
		Key:         KeySupplierName,
		Label:       "What is the name of the supplier you want to evaluate?",
		Placeholder: "Supplier name",
		Type:        FieldText,
	},
	{
		Key:         KeyIndustry,
		Label:       "What industry does this supplier operate in?",
		Placeholder: "e.g. Manufacturing, Logistics, Retail",
		Type:        FieldText,
	},
	{
		Key:         KeyDeliveryReliability,
		Label:       "On a scale of 1–10, how would you rate the supplier's delivery reliability?",
		Placeholder: "1 - 10",
		Type:        FieldNumber,
	},
	{
		Key:         KeyLateDeliveries,
		Label:       "How many late deliveries has this supplier had in the past 12 months?",
		Placeholder: "count",
		Type:        FieldNumber,
	},
	{
		Key:         KeyCarbonEmissions,
		Label:       "What is the supplier's estimated annual CO₂ emissions (in metric tons)?",
		Placeholder: "e.g. 1200",
		Type:        FieldNumber,
	},
	{
		Key:         KeyRenewableEnergyPct,
		Label:       "What percentage of the supplier's energy comes from renewable sources?",
		Placeholder: "0 - 100",
		Type:        FieldNumber,
	},
	{
		Key:         KeyLaborRating,
		Label:       "On a scale of 1–10, how would you rate the supplier's labor and worker safety practices?",
		Placeholder: "1 - 10",
		Type:        FieldNumber,
	},
	{
		Key:         KeyGovernanceRating,
		Label:       "On a scale of 1–10, how transparent and compliant is the supplier in governance practices?",
		Placeholder: "1 - 10",
		Type:        FieldNumber,
	},
	{
		Key:         KeyAnnualSpend,
		Label:       "What is your organization's annual spend on this supplier (in USD)?",
		Placeholder: "USD",
		Type:        FieldNumber,
	},
	{
		Key:         KeyCriticality,
		Label:       "How critical is this supplier to your supply chain on a scale of 1–10?",
		Placeholder: "1 - 10",
		Type:        FieldNumber,
	},
}

// ratingFields are bounded to a 1-10 scale.
var ratingFields = map[string]bool{
	KeyDeliveryReliability: true,
	KeyLaborRating:         true,
	KeyGovernanceRating:    true,
	KeyCriticality:         true,
}

// nonNegativeFields are counts, emissions, or currency amounts.
var nonNegativeFields = map[string]bool{
	KeyLateDeliveries:  true,
	KeyCarbonEmissions: true,
	KeyAnnualSpend:     true,
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Validate checks an already-parsed answer against the rules for the given
// field key. Text fields take a string, numeric fields a float64. It is a
// pure function with no side effects.
func Validate(key string, value interface{}) *ValidationError {
	if key == KeySupplierName || key == KeyIndustry {
		s, ok := value.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return invalid(key, "Required")
		}
		return nil
	}

	n, ok := value.(float64)
	if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
		return invalid(key, "Enter a valid number")
	}

	if ratingFields[key] {
		if n < 1 || n > 10 {
			return invalid(key, "Enter a value between 1 and 10")
		}
	}
	if key == KeyRenewableEnergyPct {
		if n < 0 || n > 100 {
			return invalid(key, "Enter a percentage between 0 and 100")
		}
	}
	if nonNegativeFields[key] {
		if n < 0 {
			return invalid(key, "Cannot be negative")
		}
	}

	return nil
}

// ParseAnswer parses raw user input according to the field's declared type
// and validates the result. The returned value is a string for text fields
// and a float64 for numeric fields.
func ParseAnswer(spec FieldSpec, raw string) (interface{}, *ValidationError) {
	raw = strings.TrimSpace(raw)

	var value interface{}
	if spec.Type == FieldText {
		value = raw
	} else {
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, invalid(spec.Key, "Enter a valid number")
		}
		value = n
	}

	if verr := Validate(spec.Key, value); verr != nil {
		return nil, verr
	}

	return value, nil
}
