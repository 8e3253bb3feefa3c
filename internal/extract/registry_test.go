package extract

import (
	"testing"

	"renamer/internal/normalize"
	"renamer/pkg/models"
)

func mustNormalize(t *testing.T, s string) normalize.Text {
	t.Helper()
	text, err := normalize.FromString(s)
	if err != nil {
		t.Fatalf("normalize %q: %v", s, err)
	}
	return text
}

func findCandidate(candidates []models.FieldCandidate, rule string) (models.FieldCandidate, bool) {
	for _, c := range candidates {
		if c.Rule == rule {
			return c, true
		}
	}
	return models.FieldCandidate{}, false
}

func TestExtractContractHeader(t *testing.T) {
	registry := DefaultRegistry(DefaultDictionaries())
	text := mustNormalize(t, "CONTRATO Nº 123 - Empresa XYZ - 10/03/2024")

	candidates := registry.Extract(text)

	want := []struct {
		rule  string
		field models.Field
		value string
	}{
		{"labeled-reference", models.FieldReference, "123"},
		{"contract-type", models.FieldDocumentType, "CONTRATO"},
		{"full-date", models.FieldDate, "10/03/2024"},
		{"issue-year", models.FieldYear, "2024"},
		{"company-party", models.FieldParty, "EMPRESA XYZ"},
	}
	for _, w := range want {
		c, ok := findCandidate(candidates, w.rule)
		if !ok {
			t.Errorf("rule %q produced no candidate", w.rule)
			continue
		}
		if c.Field != w.field {
			t.Errorf("rule %q field = %q, want %q", w.rule, c.Field, w.field)
		}
		if c.Value != w.value {
			t.Errorf("rule %q value = %q, want %q", w.rule, c.Value, w.value)
		}
		if c.Span.Len() <= 0 {
			t.Errorf("rule %q has empty span", w.rule)
		}
	}
}

func TestExtractKeepsCompetingCandidates(t *testing.T) {
	registry := DefaultRegistry(DefaultDictionaries())
	// Both the labeled number and a bare serial are present; the extractor
	// must keep both and let the resolver choose.
	text := mustNormalize(t, "CPR NUM 456 matricula 78901")

	candidates := registry.Extract(text)

	var refs []models.FieldCandidate
	for _, c := range candidates {
		if c.Field == models.FieldReference {
			refs = append(refs, c)
		}
	}
	if len(refs) != 2 {
		t.Fatalf("got %d reference candidates, want 2: %+v", len(refs), refs)
	}

	labeled, _ := findCandidate(candidates, "labeled-reference")
	bare, _ := findCandidate(candidates, "bare-reference")
	if labeled.Value != "456" {
		t.Errorf("labeled reference = %q, want 456", labeled.Value)
	}
	if bare.Value != "78901" {
		t.Errorf("bare reference = %q, want 78901", bare.Value)
	}
	if labeled.Confidence <= bare.Confidence {
		t.Errorf("labeled confidence %v should exceed bare %v", labeled.Confidence, bare.Confidence)
	}
}

func TestExtractRemapsContractType(t *testing.T) {
	registry := DefaultRegistry(DefaultDictionaries())
	text := mustNormalize(t, "CPR de soja safra 2024")

	candidates := registry.Extract(text)
	c, ok := findCandidate(candidates, "contract-type")
	if !ok {
		t.Fatal("contract-type produced no candidate")
	}
	if c.Value != "CPA" {
		t.Errorf("CPR should remap to CPA, got %q", c.Value)
	}
}

func TestExtractEntityStopsAtNextLabel(t *testing.T) {
	registry := DefaultRegistry(DefaultDictionaries())
	text := mustNormalize(t, "FAZENDA SANTA FE PARCEIRO JOAO")

	candidates := registry.Extract(text)

	farm, ok := findCandidate(candidates, "farm-entity")
	if !ok {
		t.Fatal("farm-entity produced no candidate")
	}
	if farm.Value != "SANTA FE" {
		t.Errorf("farm = %q, want SANTA FE", farm.Value)
	}

	partner, ok := findCandidate(candidates, "partner-party")
	if !ok {
		t.Fatal("partner-party produced no candidate")
	}
	if partner.Value != "JOAO" {
		t.Errorf("partner = %q, want JOAO", partner.Value)
	}
}

func TestExtractClassifiesContext(t *testing.T) {
	registry := DefaultRegistry(DefaultDictionaries())

	fund := mustNormalize(t, "cotas do FUNDO FIAGRO Terra Nova")
	c, ok := findCandidate(registry.Extract(fund), "fund-context")
	if !ok || c.Value != "fundos" {
		t.Errorf("fund context = %+v, want fundos candidate", c)
	}

	market := mustNormalize(t, "PARCEIRO rural da PROPRIEDADE")
	c, ok = findCandidate(registry.Extract(market), "market-context")
	if !ok || c.Value != "mercado" {
		t.Errorf("market context = %+v, want mercado candidate", c)
	}
}

func TestExtractPriorityFollowsRegistryOrder(t *testing.T) {
	registry := DefaultRegistry(DefaultDictionaries())
	text := mustNormalize(t, "CONTRATO Nº 123")

	candidates := registry.Extract(text)
	labeled, _ := findCandidate(candidates, "labeled-reference")
	contract, _ := findCandidate(candidates, "contract-type")
	if labeled.Priority >= contract.Priority {
		t.Errorf("labeled-reference priority %d should precede contract-type %d",
			labeled.Priority, contract.Priority)
	}
}

func TestExtractNothingFromUnrelatedText(t *testing.T) {
	registry := DefaultRegistry(DefaultDictionaries())
	text := mustNormalize(t, "lorem ipsum dolor sit amet")

	if candidates := registry.Extract(text); len(candidates) != 0 {
		t.Errorf("unrelated text produced candidates: %+v", candidates)
	}
}
