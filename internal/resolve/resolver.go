// Package resolve merges competing field candidates into a single
// DocumentContext, the canonical decision artifact for naming.
package resolve

import (
	"sort"

	"renamer/pkg/models"
)

// Resolve picks one value per field from the extractor's candidates and
// computes the document's overall confidence.
//
// Winner selection per field: highest confidence first, then the longer
// source span (the more specific match), then the lower rule priority
// number from the registry's declared order. The chain is a total order,
// so resolution never depends on candidate arrival order.
//
// Required fields with no candidate resolve to UnknownValue at confidence
// 0.0. The overall confidence is the minimum over the required fields: the
// weakest link decides, so one unreliable field reliably flags the whole
// document no matter how strong the rest scored.
func Resolve(documentID string, candidates []models.FieldCandidate, required []models.Field) *models.DocumentContext {
	byField := make(map[models.Field][]models.FieldCandidate)
	for _, c := range candidates {
		byField[c.Field] = append(byField[c.Field], c)
	}

	ctx := &models.DocumentContext{
		DocumentID:      documentID,
		Values:          make(map[models.Field]string, len(byField)),
		FieldConfidence: make(map[models.Field]float64, len(byField)),
	}

	for field, group := range byField {
		winner := pickWinner(group)
		ctx.Values[field] = winner.Value
		ctx.FieldConfidence[field] = winner.Confidence
	}

	overall := 1.0
	for _, field := range required {
		if _, ok := ctx.Values[field]; !ok {
			ctx.Values[field] = models.UnknownValue
			ctx.FieldConfidence[field] = 0.0
		}
		if conf := ctx.FieldConfidence[field]; conf < overall {
			overall = conf
		}
	}
	if len(required) == 0 {
		overall = 0.0
	}
	ctx.OverallConfidence = overall

	return ctx
}

// pickWinner orders a field's candidates by the declared tiebreak chain and
// returns the best one.
func pickWinner(group []models.FieldCandidate) models.FieldCandidate {
	sorted := make([]models.FieldCandidate, len(group))
	copy(sorted, group)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.Span.Len() != b.Span.Len() {
			return a.Span.Len() > b.Span.Len()
		}
		return a.Priority < b.Priority
	})
	return sorted[0]
}
