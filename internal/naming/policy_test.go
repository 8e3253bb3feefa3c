package naming

import (
	"errors"
	"testing"

	"renamer/pkg/models"
)

func TestNewPolicyDefaults(t *testing.T) {
	policy, err := NewPolicy("", 0.7, 0.0)
	if err != nil {
		t.Fatalf("NewPolicy returned error: %v", err)
	}
	if policy.Template != DefaultTemplate {
		t.Errorf("Template = %q, want %q", policy.Template, DefaultTemplate)
	}

	required := policy.RequiredFields()
	want := []models.Field{models.FieldDocumentType, models.FieldReference, models.FieldParty, models.FieldDate}
	if len(required) != len(want) {
		t.Fatalf("RequiredFields = %v, want %v", required, want)
	}
	for i := range want {
		if required[i] != want[i] {
			t.Errorf("RequiredFields[%d] = %q, want %q", i, required[i], want[i])
		}
	}
}

func TestNewPolicyRejectsUnknownPlaceholder(t *testing.T) {
	_, err := NewPolicy("{document_type}_{signer}", 0.7, 0.0)
	if err == nil {
		t.Fatal("NewPolicy accepted a template with an unknown placeholder")
	}
	if !errors.Is(err, ErrPolicyMisconfiguration) {
		t.Errorf("error %v should match ErrPolicyMisconfiguration", err)
	}
	if !errors.Is(err, ErrMissingTemplateField) {
		t.Errorf("error %v should match ErrMissingTemplateField", err)
	}
}

func TestNewPolicyValidatesThresholds(t *testing.T) {
	cases := []struct {
		name  string
		auto  float64
		floor float64
	}{
		{"auto above one", 1.5, 0.0},
		{"auto negative", -0.1, 0.0},
		{"floor above auto", 0.5, 0.6},
		{"floor negative", 0.7, -0.2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPolicy(DefaultTemplate, tc.auto, tc.floor)
			if !errors.Is(err, ErrPolicyMisconfiguration) {
				t.Errorf("NewPolicy(%v, %v) error = %v, want ErrPolicyMisconfiguration",
					tc.auto, tc.floor, err)
			}
		})
	}
}

func TestNewPolicyRejectsPlaceholderFreeTemplate(t *testing.T) {
	if _, err := NewPolicy("fixed_name", 0.7, 0.0); !errors.Is(err, ErrPolicyMisconfiguration) {
		t.Errorf("error = %v, want ErrPolicyMisconfiguration", err)
	}
}

func TestWithContextTemplateOverrides(t *testing.T) {
	base, err := NewPolicy(DefaultTemplate, 0.7, 0.0)
	if err != nil {
		t.Fatalf("NewPolicy returned error: %v", err)
	}
	policy, err := base.WithContextTemplate("fundos", "{document_type}_{fund}_{year}")
	if err != nil {
		t.Fatalf("WithContextTemplate returned error: %v", err)
	}

	variant := policy.ForContext("FUNDOS")
	if variant.Template != "{document_type}_{fund}_{year}" {
		t.Errorf("variant template = %q, want the fundos override", variant.Template)
	}
	if variant.AutoThreshold != base.AutoThreshold || variant.ReviewFloor != base.ReviewFloor {
		t.Error("variant must share the base thresholds")
	}

	required := variant.RequiredFields()
	want := []models.Field{models.FieldDocumentType, models.FieldFund, models.FieldYear}
	if len(required) != len(want) {
		t.Fatalf("variant RequiredFields = %v, want %v", required, want)
	}
	for i := range want {
		if required[i] != want[i] {
			t.Errorf("variant RequiredFields[%d] = %q, want %q", i, required[i], want[i])
		}
	}

	// The base policy and unregistered contexts are untouched.
	if got := policy.ForContext("mercado").Template; got != DefaultTemplate {
		t.Errorf("unregistered context template = %q, want base %q", got, DefaultTemplate)
	}
	if got := policy.ForContext("").Template; got != DefaultTemplate {
		t.Errorf("empty context template = %q, want base %q", got, DefaultTemplate)
	}
	if base.ForContext("fundos").Template != DefaultTemplate {
		t.Error("WithContextTemplate mutated the receiver")
	}
}

func TestWithContextTemplateValidatesOverride(t *testing.T) {
	base, err := NewPolicy(DefaultTemplate, 0.7, 0.0)
	if err != nil {
		t.Fatalf("NewPolicy returned error: %v", err)
	}
	if _, err := base.WithContextTemplate("fundos", "{signer}"); !errors.Is(err, ErrPolicyMisconfiguration) {
		t.Errorf("invalid override error = %v, want ErrPolicyMisconfiguration", err)
	}
	if _, err := base.WithContextTemplate("", "{party}"); !errors.Is(err, ErrPolicyMisconfiguration) {
		t.Errorf("empty context error = %v, want ErrPolicyMisconfiguration", err)
	}
}

func TestRequiredFieldsDeduplicates(t *testing.T) {
	policy, err := NewPolicy("{year}_{party}_{year}", 0.7, 0.0)
	if err != nil {
		t.Fatalf("NewPolicy returned error: %v", err)
	}
	required := policy.RequiredFields()
	if len(required) != 2 {
		t.Errorf("RequiredFields = %v, want year and party once each", required)
	}
}
