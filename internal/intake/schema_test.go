package intake

import "testing"

func fieldByKey(t *testing.T, key string) FieldSpec {
	t.Helper()
	for _, f := range Fields {
		if f.Key == key {
			return f
		}
	}
	t.Fatalf("no field with key %q", key)
	return FieldSpec{}
}

func TestFieldOrder(t *testing.T) {
	if len(Fields) != 10 {
		t.Fatalf("expected 10 fields, got %d", len(Fields))
	}
	if Fields[0].Key != KeySupplierName {
		t.Errorf("first field = %q, want %q", Fields[0].Key, KeySupplierName)
	}
	if Fields[1].Key != KeyIndustry {
		t.Errorf("second field = %q, want %q", Fields[1].Key, KeyIndustry)
	}
	if Fields[len(Fields)-1].Key != KeyCriticality {
		t.Errorf("last field = %q, want %q", Fields[len(Fields)-1].Key, KeyCriticality)
	}
}

func TestParseAnswerTextFields(t *testing.T) {
	spec := fieldByKey(t, KeySupplierName)

	value, verr := ParseAnswer(spec, "  Acme Co.  ")
	if verr != nil {
		t.Fatalf("unexpected validation error: %v", verr)
	}
	if value != "Acme Co." {
		t.Errorf("value = %q, want trimmed %q", value, "Acme Co.")
	}

	_, verr = ParseAnswer(spec, "   ")
	if verr == nil {
		t.Fatal("expected validation error for blank input")
	}
	if verr.Message != "Required" {
		t.Errorf("message = %q, want %q", verr.Message, "Required")
	}
}

func TestParseAnswerRatingBounds(t *testing.T) {
	spec := fieldByKey(t, KeyDeliveryReliability)

	tests := []struct {
		input   string
		wantErr string
	}{
		{"1", ""},
		{"10", ""},
		{"5.5", ""},
		{"0", "Enter a value between 1 and 10"},
		{"11", "Enter a value between 1 and 10"},
		{"-3", "Enter a value between 1 and 10"},
		{"ten", "Enter a valid number"},
		{"", "Enter a valid number"},
	}

	for _, tt := range tests {
		_, verr := ParseAnswer(spec, tt.input)
		if tt.wantErr == "" {
			if verr != nil {
				t.Errorf("ParseAnswer(%q) unexpected error: %v", tt.input, verr)
			}
			continue
		}
		if verr == nil {
			t.Errorf("ParseAnswer(%q) expected error %q, got none", tt.input, tt.wantErr)
			continue
		}
		if verr.Message != tt.wantErr {
			t.Errorf("ParseAnswer(%q) message = %q, want %q", tt.input, verr.Message, tt.wantErr)
		}
	}
}

func TestParseAnswerPercentageBounds(t *testing.T) {
	spec := fieldByKey(t, KeyRenewableEnergyPct)

	tests := []struct {
		input   string
		wantErr string
	}{
		{"0", ""},
		{"100", ""},
		{"42.5", ""},
		{"-1", "Enter a percentage between 0 and 100"},
		{"101", "Enter a percentage between 0 and 100"},
	}

	for _, tt := range tests {
		_, verr := ParseAnswer(spec, tt.input)
		if tt.wantErr == "" {
			if verr != nil {
				t.Errorf("ParseAnswer(%q) unexpected error: %v", tt.input, verr)
			}
			continue
		}
		if verr == nil || verr.Message != tt.wantErr {
			t.Errorf("ParseAnswer(%q) = %v, want message %q", tt.input, verr, tt.wantErr)
		}
	}
}

func TestParseAnswerNonNegative(t *testing.T) {
	for _, key := range []string{KeyLateDeliveries, KeyCarbonEmissions, KeyAnnualSpend} {
		spec := fieldByKey(t, key)

		if _, verr := ParseAnswer(spec, "0"); verr != nil {
			t.Errorf("%s: zero should be accepted, got %v", key, verr)
		}
		if _, verr := ParseAnswer(spec, "1200"); verr != nil {
			t.Errorf("%s: positive value should be accepted, got %v", key, verr)
		}

		_, verr := ParseAnswer(spec, "-5")
		if verr == nil || verr.Message != "Cannot be negative" {
			t.Errorf("%s: ParseAnswer(-5) = %v, want %q", key, verr, "Cannot be negative")
		}
	}
}

func TestValidateRejectsNaN(t *testing.T) {
	if verr := Validate(KeyCarbonEmissions, "not a number"); verr == nil {
		t.Error("expected error for non-float value")
	}
}
