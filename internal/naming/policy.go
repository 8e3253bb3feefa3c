// Package naming derives canonical, collision-free filenames from resolved
// document contexts under a batch-scoped naming policy.
package naming

import (
	"fmt"
	"regexp"
	"strings"

	"renamer/pkg/models"
)

// DefaultTemplate is the fallback naming template when none is configured.
const DefaultTemplate = "{document_type}_{reference_number}_{party}_{date}"

const (
	defaultMaxBaseLength = 120
	defaultSuffixLimit   = 10000
)

var placeholderPattern = regexp.MustCompile(`\{([a-z_]+)\}`)

// Policy is the read-only naming configuration for one batch run: the
// template, the confidence thresholds that split auto-rename from review,
// and the collision-suffix bounds. Build it once with NewPolicy and pass
// it by value; there are no hidden process-wide defaults.
type Policy struct {
	// Template is the naming template with {field} placeholders.
	Template string

	// AutoThreshold is the minimum overall confidence for an automatic
	// rename.
	AutoThreshold float64

	// ReviewFloor is the minimum overall confidence for flagging a
	// document for review; below it the document fails.
	ReviewFloor float64

	// MaxBaseLength caps the synthesized base name in bytes.
	MaxBaseLength int

	// SuffixLimit caps disambiguation attempts per name.
	SuffixLimit int

	required []models.Field

	// contexts maps a resolved context value ("fundos", "mercado") to the
	// policy variant used for documents classified into it. Fund share
	// agreements and market partner contracts want different name shapes.
	contexts map[string]Policy
}

// NewPolicy validates and builds a naming policy. Any violation returns
// ErrPolicyMisconfiguration; a template placeholder outside the document
// context schema additionally matches ErrMissingTemplateField.
func NewPolicy(template string, autoThreshold, reviewFloor float64) (Policy, error) {
	if template == "" {
		template = DefaultTemplate
	}
	if autoThreshold < 0 || autoThreshold > 1 {
		return Policy{}, fmt.Errorf("%w: auto threshold %.2f outside [0,1]", ErrPolicyMisconfiguration, autoThreshold)
	}
	if reviewFloor < 0 || reviewFloor > autoThreshold {
		return Policy{}, fmt.Errorf("%w: review floor %.2f outside [0, %.2f]", ErrPolicyMisconfiguration, reviewFloor, autoThreshold)
	}

	matches := placeholderPattern.FindAllStringSubmatch(template, -1)
	if len(matches) == 0 {
		return Policy{}, fmt.Errorf("%w: template %q has no field placeholders", ErrPolicyMisconfiguration, template)
	}

	var required []models.Field
	seen := make(map[models.Field]bool)
	for _, m := range matches {
		field := models.Field(m[1])
		if !models.IsKnownField(field) {
			return Policy{}, fmt.Errorf("%w: %w: %q in template %q",
				ErrPolicyMisconfiguration, ErrMissingTemplateField, field, template)
		}
		if !seen[field] {
			seen[field] = true
			required = append(required, field)
		}
	}

	return Policy{
		Template:      template,
		AutoThreshold: autoThreshold,
		ReviewFloor:   reviewFloor,
		MaxBaseLength: defaultMaxBaseLength,
		SuffixLimit:   defaultSuffixLimit,
		required:      required,
	}, nil
}

// RequiredFields returns the template's placeholder fields in first-use
// order. These are the fields whose confidence gates the naming decision.
func (p Policy) RequiredFields() []models.Field {
	out := make([]models.Field, len(p.required))
	copy(out, p.required)
	return out
}

// WithContextTemplate returns a copy of the policy that uses template for
// documents whose resolved context field equals context. The override is
// validated like the base template, so a broken variant still aborts
// before any document is processed. Thresholds and caps are shared.
func (p Policy) WithContextTemplate(context, template string) (Policy, error) {
	if context == "" {
		return Policy{}, fmt.Errorf("%w: context template with empty context value", ErrPolicyMisconfiguration)
	}
	sub, err := NewPolicy(template, p.AutoThreshold, p.ReviewFloor)
	if err != nil {
		return Policy{}, err
	}

	contexts := make(map[string]Policy, len(p.contexts)+1)
	for key, value := range p.contexts {
		contexts[key] = value
	}
	contexts[strings.ToLower(context)] = sub
	p.contexts = contexts
	return p, nil
}

// ForContext returns the policy variant for a resolved context value,
// falling back to the base policy when no override is registered.
func (p Policy) ForContext(context string) Policy {
	if sub, ok := p.contexts[strings.ToLower(context)]; ok {
		return sub
	}
	return p
}
