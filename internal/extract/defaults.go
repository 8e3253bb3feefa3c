package extract

import (
	"regexp"
	"strings"

	"renamer/pkg/models"
)

// Dictionaries holds the keyword sets the default rule registry is built
// from. Callers may replace individual sets through a rules file; empty
// sets fall back to the built-in defaults.
type Dictionaries struct {
	// DocumentTypes are contract-type and generic document-type tokens.
	DocumentTypes []string `json:"document_types"`

	// DocumentTitles are title abbreviations (amendments, promissory
	// instruments and the like).
	DocumentTitles []string `json:"document_titles"`

	// EnvironmentalDocs are environmental-compliance document codes.
	EnvironmentalDocs []string `json:"environmental_docs"`

	// PersonalDocs are personal identity document codes.
	PersonalDocs []string `json:"personal_docs"`

	// FundKeywords and MarketKeywords classify the document context as
	// "fundos" (investment funds) or "mercado" (market partners).
	FundKeywords   []string `json:"fund_keywords"`
	MarketKeywords []string `json:"market_keywords"`
}

// DefaultDictionaries returns the built-in keyword sets for Brazilian
// agricultural contracts and environmental-compliance documents.
func DefaultDictionaries() Dictionaries {
	return Dictionaries{
		DocumentTypes: []string{
			"CONTRATO", "CCV", "CPA", "CPR", "CCO", "CCE", "CDC",
		},
		DocumentTitles: []string{
			"PROM", "CONTR", "ADT", "1ADT", "2ADT", "3ADT", "CMDT",
			"TIP", "NOT", "RAS", "FAS", "CANI", "TAQ", "TAPI",
		},
		EnvironmentalDocs: []string{
			"MAT", "CARF", "CARE", "CTF", "ITR", "CCIR", "IE",
			"CND", "ADA", "CNE", "SISLA", "ICR", "IPR", "DARF",
		},
		PersonalDocs: []string{
			"RG", "CPF", "CNPJ", "CNH", "CERTIDAO", "CERTCASAMENTO", "CERTNASC",
		},
		FundKeywords:   []string{"FUNDO", "FIP", "FIAGRO", "SPE", "COTISTA"},
		MarketKeywords: []string{"PARCEIRO", "FAZENDA", "PROPRIEDADE"},
	}
}

// merged returns d with empty sets replaced by the built-in defaults.
func (d Dictionaries) merged() Dictionaries {
	defaults := DefaultDictionaries()
	if len(d.DocumentTypes) == 0 {
		d.DocumentTypes = defaults.DocumentTypes
	}
	if len(d.DocumentTitles) == 0 {
		d.DocumentTitles = defaults.DocumentTitles
	}
	if len(d.EnvironmentalDocs) == 0 {
		d.EnvironmentalDocs = defaults.EnvironmentalDocs
	}
	if len(d.PersonalDocs) == 0 {
		d.PersonalDocs = defaults.PersonalDocs
	}
	if len(d.FundKeywords) == 0 {
		d.FundKeywords = defaults.FundKeywords
	}
	if len(d.MarketKeywords) == 0 {
		d.MarketKeywords = defaults.MarketKeywords
	}
	return d
}

var (
	reLabeledNumber = regexp.MustCompile(`\b(?:NO?|NUM|NUMERO)\s*[:.]?\s*(\d{1,10})\b`)
	reBareNumber    = regexp.MustCompile(`\b(\d{5,8})(?:[/-]\d+)?\b`)
	reDate          = regexp.MustCompile(`\b(\d{2}[/\-.]\d{2}[/\-.]\d{4})\b`)
	reYear          = regexp.MustCompile(`\b(20\d{2})\b`)
	reOwner         = regexp.MustCompile(`(?:PROPRIETARIO|CPF DE)\s*:?\s+([A-Z][A-Z ]{2,49})`)
	reNonDigit      = regexp.MustCompile(`\D`)
)

// DefaultRegistry builds the standard extraction rule set in its declared
// priority order. The weights encode rule specificity: a number found next
// to a "Nº"/"NUM" label outranks a bare digit run, a full dd/mm/yyyy date
// outranks a lone year, a context inferred from keywords stays weak enough
// that an explicit hint always wins.
func DefaultRegistry(dicts Dictionaries) *Registry {
	d := dicts.merged()
	rules := []Rule{
		{
			Name:    "labeled-reference",
			Field:   models.FieldReference,
			Weight:  0.9,
			Matcher: regexMatcher{re: reLabeledNumber, transform: digitsOnly},
		},
		{
			Name:    "bare-reference",
			Field:   models.FieldReference,
			Weight:  0.6,
			Matcher: regexMatcher{re: reBareNumber, transform: digitsOnly},
		},
		{
			Name:    "contract-type",
			Field:   models.FieldDocumentType,
			Weight:  0.85,
			Matcher: newKeywordSet(d.DocumentTypes, map[string]string{"CPR": "CPA"}),
		},
		{
			Name:    "environmental-doc",
			Field:   models.FieldDocumentType,
			Weight:  0.85,
			Matcher: newKeywordSet(d.EnvironmentalDocs, nil),
		},
		{
			Name:    "document-title",
			Field:   models.FieldDocumentTitle,
			Weight:  0.8,
			Matcher: newKeywordSet(d.DocumentTitles, nil),
		},
		{
			Name:    "personal-doc",
			Field:   models.FieldPersonalDoc,
			Weight:  0.7,
			Matcher: newKeywordSet(d.PersonalDocs, nil),
		},
		{
			Name:    "full-date",
			Field:   models.FieldDate,
			Weight:  0.95,
			Matcher: regexMatcher{re: reDate},
		},
		{
			Name:    "issue-year",
			Field:   models.FieldYear,
			Weight:  0.7,
			Matcher: regexMatcher{re: reYear},
		},
		{
			Name:    "company-party",
			Field:   models.FieldParty,
			Weight:  0.8,
			Matcher: newEntityMatcher("EMPRESA", true, 3),
		},
		{
			Name:    "partner-party",
			Field:   models.FieldParty,
			Weight:  0.75,
			Matcher: newEntityMatcher("PARCEIRO", false, 3),
		},
		{
			Name:    "farm-entity",
			Field:   models.FieldFarm,
			Weight:  0.75,
			Matcher: newEntityMatcher("FAZENDA", false, 3),
		},
		{
			Name:    "fund-entity",
			Field:   models.FieldFund,
			Weight:  0.8,
			Matcher: newEntityMatcher("FUNDO", false, 3),
		},
		{
			Name:    "spe-entity",
			Field:   models.FieldSPE,
			Weight:  0.8,
			Matcher: newEntityMatcher("SPE", false, 3),
		},
		{
			Name:    "owner-name",
			Field:   models.FieldOwner,
			Weight:  0.8,
			Matcher: regexMatcher{re: reOwner, transform: strings.TrimSpace},
		},
		{
			Name:    "fund-context",
			Field:   models.FieldContext,
			Weight:  0.6,
			Matcher: newClassifier(d.FundKeywords, "fundos"),
		},
		{
			Name:    "market-context",
			Field:   models.FieldContext,
			Weight:  0.6,
			Matcher: newClassifier(d.MarketKeywords, "mercado"),
		},
	}
	return NewRegistry(rules)
}

func digitsOnly(s string) string {
	return reNonDigit.ReplaceAllString(s, "")
}
