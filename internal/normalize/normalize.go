// Package normalize turns raw OCR output into the canonical text form every
// downstream extraction stage works on. Normalization is idempotent:
// feeding an already-normalized text through again is a no-op.
package normalize

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"renamer/pkg/models"
)

// ErrInvalidInput is returned when the OCR result carries no text at all.
// It is non-fatal: downstream the document simply resolves with zero
// confidence and is flagged for review.
var ErrInvalidInput = errors.New("ocr result contains no text")

var (
	reWhitespace = regexp.MustCompile(`\s+`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
	reCRLF       = regexp.MustCompile(`\r\n?`)
)

// accentStripper decomposes characters and drops combining marks, so
// "Contratação" folds to "Contratacao" for matching.
var accentStripper = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Text is the normalized form of one document's OCR output.
//
// Original keeps the case of the recognized text with whitespace cleaned,
// for display and audit output. Folded is the accent-stripped, upper-cased
// matching copy all extraction rules run against. Neither is mutated after
// creation.
type Text struct {
	Original string
	Folded   string
}

// FromOcr normalizes the concatenated text of an OCR result.
func FromOcr(raw *models.RawOcrResult) (Text, error) {
	if raw == nil {
		return Text{}, ErrInvalidInput
	}
	return FromString(raw.Text())
}

// FromString normalizes an already-extracted text.
func FromString(s string) (Text, error) {
	original := clean(s)
	if original == "" {
		return Text{}, ErrInvalidInput
	}
	return Text{
		Original: original,
		Folded:   fold(original),
	}, nil
}

// clean collapses line endings, control characters, and runs of whitespace
// while keeping paragraph breaks readable.
func clean(s string) string {
	s = reCRLF.ReplaceAllString(s, "\n")
	s = strings.Map(func(r rune) rune {
		if r == '\n' {
			return r
		}
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
	s = reMultiBlank.ReplaceAllString(s, "\n\n")

	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(reWhitespace.ReplaceAllString(lines[i], " "))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// fold produces the matching copy: accents stripped, upper-cased.
func fold(s string) string {
	stripped, _, err := transform.String(accentStripper, s)
	if err != nil {
		// transform only fails on malformed UTF-8; fall back to the raw
		// string so matching still sees something.
		stripped = s
	}
	return strings.ToUpper(stripped)
}

// Fold exposes the matching-copy transformation for callers that need to
// compare user-supplied values against folded text.
func Fold(s string) string { return fold(clean(s)) }
