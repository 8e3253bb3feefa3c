package naming

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"renamer/pkg/models"
)

var (
	reDateValue   = regexp.MustCompile(`^(\d{2})[/\-.](\d{2})[/\-.](\d{4})$`)
	reSlugCollide = regexp.MustCompile(`-{2,}`)

	slugStripper = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Synthesize maps a resolved document context through the policy template
// into a canonical name. It is pure: identical context and policy always
// yield the identical base name, with no randomness and no clock. The
// source file's extension is preserved, lower-cased.
//
// The assembled base is rendered filesystem-safe as a whole: accents
// stripped, lower-cased, anything outside [a-z0-9_-] collapsed to hyphens.
// Template literals get the same treatment as field values, so a separator
// typo in the template can never smuggle a path component into a name.
// Date values in dd/mm/yyyy form (and dash/dot variants) render as ISO
// yyyy-mm-dd so names sort chronologically.
func Synthesize(ctx *models.DocumentContext, policy Policy, sourcePath string) models.CanonicalName {
	base := sanitizeBase(placeholderPattern.ReplaceAllStringFunc(policy.Template, func(ph string) string {
		field := models.Field(strings.Trim(ph, "{}"))
		return renderValue(field, ctx.Value(field))
	}))

	// sanitizeBase left pure ASCII, so byte truncation cannot split a rune.
	if max := policy.MaxBaseLength; max > 0 && len(base) > max {
		base = strings.Trim(base[:max], "_-")
	}

	return models.CanonicalName{
		Base: base,
		Ext:  strings.ToLower(filepath.Ext(sourcePath)),
	}
}

// renderValue turns one field value into its name segment.
func renderValue(field models.Field, value string) string {
	if field == models.FieldDate {
		if m := reDateValue.FindStringSubmatch(value); m != nil {
			return fmt.Sprintf("%s-%s-%s", m[3], m[2], m[1])
		}
	}
	return slug(value)
}

// sanitizeBase makes the assembled name filesystem-safe, keeping the
// template's underscore and hyphen separators but nothing else outside
// [a-z0-9].
func sanitizeBase(base string) string {
	stripped, _, err := transform.String(slugStripper, base)
	if err != nil {
		stripped = base
	}
	var b strings.Builder
	for _, r := range strings.ToLower(stripped) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return strings.Trim(reSlugCollide.ReplaceAllString(b.String(), "-"), "_-")
}

// slug produces a lower-case, accent-free, hyphen-separated segment.
func slug(value string) string {
	stripped, _, err := transform.String(slugStripper, value)
	if err != nil {
		stripped = value
	}
	var b strings.Builder
	for _, r := range strings.ToLower(stripped) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return strings.Trim(reSlugCollide.ReplaceAllString(b.String(), "-"), "-")
}
