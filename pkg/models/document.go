// Package models defines the shared data types that flow through the
// document interpretation pipeline: raw OCR output, extracted field
// candidates, the resolved document context, canonical names, and the
// audit records that trace every naming decision.
package models

import "time"

// Field identifies a metadata field that can be extracted from a document.
type Field string

// Known metadata fields. The extraction rule set targets these; the naming
// template may reference any of them as placeholders.
const (
	FieldDocumentType  Field = "document_type"
	FieldDocumentTitle Field = "document_title"
	FieldReference     Field = "reference_number"
	FieldDate          Field = "date"
	FieldYear          Field = "year"
	FieldParty         Field = "party"
	FieldFarm          Field = "farm"
	FieldFund          Field = "fund"
	FieldSPE           Field = "spe"
	FieldOwner         Field = "owner"
	FieldPersonalDoc   Field = "personal_document"
	FieldContext       Field = "context"
)

// KnownFields lists every field the pipeline can produce, in declaration
// order. Naming templates are validated against this set.
func KnownFields() []Field {
	return []Field{
		FieldDocumentType,
		FieldDocumentTitle,
		FieldReference,
		FieldDate,
		FieldYear,
		FieldParty,
		FieldFarm,
		FieldFund,
		FieldSPE,
		FieldOwner,
		FieldPersonalDoc,
		FieldContext,
	}
}

// IsKnownField reports whether f is one of the declared pipeline fields.
func IsKnownField(f Field) bool {
	for _, known := range KnownFields() {
		if f == known {
			return true
		}
	}
	return false
}

// UnknownValue is recorded for required fields that no extraction rule
// matched. It carries confidence 0.0 so the document is reliably flagged.
const UnknownValue = "UNKNOWN"

// TextBlock is one unit of recognized text with an optional per-block
// confidence. Providers that cannot score their output report a fixed
// neutral confidence instead.
type TextBlock struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// RawOcrResult is the immutable output of an OCR provider for one document.
type RawOcrResult struct {
	// SourcePath is the path of the document the text was recognized from.
	SourcePath string `json:"source_path"`

	// Blocks holds the recognized text in reading order, typically one
	// block per page.
	Blocks []TextBlock `json:"blocks"`

	// Engine identifies the provider that produced the result
	// (e.g. "google-vision", "documentai", "plaintext").
	Engine string `json:"engine"`
}

// Text concatenates all blocks in reading order.
func (r *RawOcrResult) Text() string {
	switch len(r.Blocks) {
	case 0:
		return ""
	case 1:
		return r.Blocks[0].Text
	}
	var out string
	for i, b := range r.Blocks {
		if i > 0 {
			out += "\n"
		}
		out += b.Text
	}
	return out
}

// Span marks a half-open byte range [Start, End) into the folded form of
// the normalized text a candidate was matched in.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the span length in bytes.
func (s Span) Len() int { return s.End - s.Start }

// FieldCandidate is one possible value for a field, produced by a single
// extraction rule. Several candidates may exist for the same field; the
// context resolver picks the winner.
type FieldCandidate struct {
	Field      Field   `json:"field"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
	Span       Span    `json:"span"`

	// Rule names the extraction rule that produced the candidate.
	Rule string `json:"rule"`

	// Priority is the rule's position in the declared registry order.
	// Lower wins ties that confidence and span length cannot break.
	Priority int `json:"priority"`
}

// DocumentContext is the canonical decision artifact for naming one
// document: exactly one value per field, with per-field and overall
// confidence. It is built once by the context resolver and never mutated.
type DocumentContext struct {
	DocumentID string `json:"document_id"`

	// Values maps each resolved field to its single chosen value.
	Values map[Field]string `json:"values"`

	// FieldConfidence holds the confidence of the chosen value per field.
	FieldConfidence map[Field]float64 `json:"field_confidence"`

	// OverallConfidence is the minimum confidence among the required
	// fields: a single unreliable field is never masked by strong scores
	// elsewhere.
	OverallConfidence float64 `json:"overall_confidence"`
}

// Value returns the chosen value for f, or UnknownValue if f was not
// resolved.
func (c *DocumentContext) Value(f Field) string {
	if v, ok := c.Values[f]; ok {
		return v
	}
	return UnknownValue
}

// Confidence returns the confidence of the chosen value for f, 0.0 if f
// was not resolved.
func (c *DocumentContext) Confidence(f Field) float64 {
	return c.FieldConfidence[f]
}

// CanonicalName is the deterministically derived target filename for a
// document.
type CanonicalName struct {
	// Base is the sanitized filename without extension.
	Base string `json:"base"`

	// Ext is the original file extension, including the leading dot.
	Ext string `json:"ext"`

	// Disambiguated is true when a numeric suffix was appended to avoid a
	// collision with a previously assigned name.
	Disambiguated bool `json:"disambiguated"`
}

// String returns the full filename.
func (n CanonicalName) String() string { return n.Base + n.Ext }

// Decision is the terminal state of one processed document.
type Decision string

const (
	// DecisionAutoRenamed means confidence met the auto threshold and the
	// rename is part of the operation plan.
	DecisionAutoRenamed Decision = "AUTO_RENAMED"

	// DecisionFlagged means the document was named but the rename is
	// withheld pending human review.
	DecisionFlagged Decision = "FLAGGED_FOR_REVIEW"

	// DecisionFailed means an unrecoverable error stopped the pipeline for
	// this document.
	DecisionFailed Decision = "FAILED"
)

// AuditRecord is the immutable per-document trace of extraction and naming.
// Corrections require a new record referencing the prior DocumentID.
type AuditRecord struct {
	DocumentID string `json:"document_id"`
	SourcePath string `json:"source_path"`
	Engine     string `json:"engine,omitempty"`

	// RawText is the OCR text the decision was derived from.
	RawText string `json:"raw_text,omitempty"`

	// Context is the resolved document context, nil for documents that
	// failed before resolution.
	Context *DocumentContext `json:"context,omitempty"`

	// Name is the canonical name after collision resolution; zero for
	// failed documents.
	Name CanonicalName `json:"name"`

	Decision    Decision  `json:"decision"`
	Reason      string    `json:"reason,omitempty"`
	ProcessedAt time.Time `json:"processed_at"`
}

// PlanEntry is one rename/copy instruction for the executing layer.
type PlanEntry struct {
	SourcePath string   `json:"source_path"`
	TargetPath string   `json:"target_path"`
	Decision   Decision `json:"decision"`
}

// Plan is the ordered sequence of file operations produced by a batch run.
// The core pipeline never applies it; that is the executor's job.
type Plan struct {
	Entries []PlanEntry `json:"entries"`
}
