package naming

import (
	"strings"
	"testing"
	"unicode/utf8"

	"renamer/pkg/models"
)

func testContext(values map[models.Field]string) *models.DocumentContext {
	conf := make(map[models.Field]float64, len(values))
	for field := range values {
		conf[field] = 0.9
	}
	return &models.DocumentContext{
		DocumentID:      "doc-1",
		Values:          values,
		FieldConfidence: conf,
	}
}

func TestSynthesizeContractName(t *testing.T) {
	policy, err := NewPolicy(DefaultTemplate, 0.7, 0.0)
	if err != nil {
		t.Fatalf("NewPolicy returned error: %v", err)
	}
	ctx := testContext(map[models.Field]string{
		models.FieldDocumentType: "CONTRATO",
		models.FieldReference:    "123",
		models.FieldParty:        "EMPRESA XYZ",
		models.FieldDate:         "10/03/2024",
	})

	name := Synthesize(ctx, policy, "/scans/Documento Original.PDF")

	if got, want := name.String(), "contrato_123_empresa-xyz_2024-03-10.pdf"; got != want {
		t.Errorf("name = %q, want %q", got, want)
	}
	if name.Disambiguated {
		t.Error("fresh synthesis must not be marked disambiguated")
	}
}

func TestSynthesizeIsDeterministic(t *testing.T) {
	policy, err := NewPolicy(DefaultTemplate, 0.7, 0.0)
	if err != nil {
		t.Fatalf("NewPolicy returned error: %v", err)
	}
	ctx := testContext(map[models.Field]string{
		models.FieldDocumentType: "CPA",
		models.FieldReference:    "456",
		models.FieldParty:        "Fazenda São João",
		models.FieldDate:         "01/12/2023",
	})

	first := Synthesize(ctx, policy, "a.pdf")
	for i := 0; i < 5; i++ {
		if again := Synthesize(ctx, policy, "a.pdf"); again != first {
			t.Fatalf("synthesis is not deterministic: %+v vs %+v", again, first)
		}
	}
}

func TestSynthesizeRendersValues(t *testing.T) {
	cases := []struct {
		name  string
		field models.Field
		value string
		want  string
	}{
		{"accented party", models.FieldParty, "Fazenda São João", "fazenda-sao-joao"},
		{"slash date to iso", models.FieldDate, "10/03/2024", "2024-03-10"},
		{"dotted date to iso", models.FieldDate, "05.07.2022", "2022-07-05"},
		{"non-date date value kept as slug", models.FieldDate, "2024", "2024"},
		{"unknown value", models.FieldParty, models.UnknownValue, "unknown"},
		{"punctuation collapsed", models.FieldParty, "A & B / C", "a-b-c"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			policy, err := NewPolicy("{"+string(tc.field)+"}", 0.7, 0.0)
			if err != nil {
				t.Fatalf("NewPolicy returned error: %v", err)
			}
			ctx := testContext(map[models.Field]string{tc.field: tc.value})
			name := Synthesize(ctx, policy, "x.pdf")
			if name.Base != tc.want {
				t.Errorf("base = %q, want %q", name.Base, tc.want)
			}
		})
	}
}

func TestSynthesizeMissingFieldRendersUnknown(t *testing.T) {
	policy, err := NewPolicy(DefaultTemplate, 0.7, 0.0)
	if err != nil {
		t.Fatalf("NewPolicy returned error: %v", err)
	}
	ctx := testContext(nil)

	name := Synthesize(ctx, policy, "empty.pdf")
	if got, want := name.Base, "unknown_unknown_unknown_unknown"; got != want {
		t.Errorf("base = %q, want %q", got, want)
	}
}

func TestSynthesizeSanitizesTemplateLiterals(t *testing.T) {
	cases := []struct {
		name     string
		template string
		values   map[models.Field]string
		want     string
	}{
		{
			"path separator literal collapsed",
			"{document_type}/{date}",
			map[models.Field]string{
				models.FieldDocumentType: "CONTRATO",
				models.FieldDate:         "10/03/2024",
			},
			"contrato-2024-03-10",
		},
		{
			"accented uppercase literal folded",
			"Nº{reference_number}",
			map[models.Field]string{models.FieldReference: "123"},
			"no123",
		},
		{
			"whitespace literal collapsed",
			"{document_type} {reference_number}",
			map[models.Field]string{
				models.FieldDocumentType: "CONTRATO",
				models.FieldReference:    "77",
			},
			"contrato-77",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			policy, err := NewPolicy(tc.template, 0.7, 0.0)
			if err != nil {
				t.Fatalf("NewPolicy returned error: %v", err)
			}
			name := Synthesize(testContext(tc.values), policy, "x.pdf")
			if name.Base != tc.want {
				t.Errorf("base = %q, want %q", name.Base, tc.want)
			}
			if strings.ContainsAny(name.Base, "/\\") {
				t.Errorf("base %q contains a path separator", name.Base)
			}
		})
	}
}

func TestSynthesizeTruncationKeepsValidUTF8(t *testing.T) {
	policy, err := NewPolicy("Nº{party}", 0.7, 0.0)
	if err != nil {
		t.Fatalf("NewPolicy returned error: %v", err)
	}
	ctx := testContext(map[models.Field]string{
		models.FieldParty: strings.Repeat("ação ", 60),
	})

	name := Synthesize(ctx, policy, "long.pdf")
	if len(name.Base) > policy.MaxBaseLength {
		t.Errorf("base length %d exceeds cap %d", len(name.Base), policy.MaxBaseLength)
	}
	if !utf8.ValidString(name.Base) {
		t.Errorf("truncated base %q is not valid UTF-8", name.Base)
	}
	for _, r := range name.Base {
		if r > 'z' {
			t.Fatalf("base %q contains non-ASCII rune %q", name.Base, r)
		}
	}
}

func TestSynthesizeTruncatesLongNames(t *testing.T) {
	policy, err := NewPolicy("{party}", 0.7, 0.0)
	if err != nil {
		t.Fatalf("NewPolicy returned error: %v", err)
	}
	ctx := testContext(map[models.Field]string{
		models.FieldParty: strings.Repeat("fazenda ", 40),
	})

	name := Synthesize(ctx, policy, "long.pdf")
	if len(name.Base) > policy.MaxBaseLength {
		t.Errorf("base length %d exceeds cap %d", len(name.Base), policy.MaxBaseLength)
	}
	if strings.HasSuffix(name.Base, "-") || strings.HasSuffix(name.Base, "_") {
		t.Errorf("truncated base %q ends with a separator", name.Base)
	}
}
