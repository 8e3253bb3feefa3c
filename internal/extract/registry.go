package extract

import (
	"renamer/internal/normalize"
	"renamer/pkg/models"
)

// Registry is a fixed, ordered set of extraction rules. The order is the
// declared rule priority: it is the final tiebreak the context resolver
// falls back to, so two runs over the same text always resolve the same
// way.
type Registry struct {
	rules []Rule
}

// NewRegistry builds a registry from rules in priority order.
func NewRegistry(rules []Rule) *Registry {
	return &Registry{rules: rules}
}

// Rules returns the rules in priority order.
func (r *Registry) Rules() []Rule {
	return r.rules
}

// Extract runs every rule against the folded text and collects all
// candidates. Rules fire independently; a field may receive several
// competing candidates or none at all. Extraction never fails: text that
// matches nothing simply produces an empty candidate list, which resolves
// downstream to zero confidence.
func (r *Registry) Extract(text normalize.Text) []models.FieldCandidate {
	var candidates []models.FieldCandidate
	for priority, rule := range r.rules {
		for _, m := range rule.Matcher.Match(text.Folded) {
			candidates = append(candidates, models.FieldCandidate{
				Field:      rule.Field,
				Value:      m.Value,
				Confidence: rule.Weight,
				Span:       m.Span,
				Rule:       rule.Name,
				Priority:   priority,
			})
		}
	}
	return candidates
}
