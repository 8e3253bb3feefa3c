package naming

import "errors"

var (
	// ErrPolicyMisconfiguration is returned for any invalid naming policy:
	// bad thresholds, empty templates, unknown placeholders. It is fatal
	// and must abort a batch before the first document is touched; a
	// configuration error never surfaces per-document.
	ErrPolicyMisconfiguration = errors.New("naming policy misconfigured")

	// ErrMissingTemplateField is returned when a template references a
	// field that is not part of the document context schema.
	ErrMissingTemplateField = errors.New("template references unknown field")

	// ErrCollisionExhausted is returned when the disambiguation suffix cap
	// is reached. Practically unreachable, but the resolver fails loudly
	// rather than loop without bound.
	ErrCollisionExhausted = errors.New("collision suffix attempts exhausted")
)
