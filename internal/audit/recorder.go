// Package audit accumulates the per-document trace of every pipeline
// decision and renders it as a batch report. The recorder only ever
// appends: a recorded decision is never rewritten, corrections require a
// new record referencing the prior document ID.
package audit

import (
	"sync"

	"renamer/pkg/models"
)

// Summary counts records per decision kind.
type Summary struct {
	Total       int `json:"total"`
	AutoRenamed int `json:"auto_renamed"`
	Flagged     int `json:"flagged_for_review"`
	Failed      int `json:"failed"`
}

// Report is the finalized batch report: all records in stable processing
// order plus the decision counts. It is the sole basis for the audit
// output formats.
type Report struct {
	Records []models.AuditRecord `json:"records"`
	Summary Summary              `json:"summary"`
}

// Recorder collects audit records for one batch run.
type Recorder struct {
	mu      sync.Mutex
	records []models.AuditRecord
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Append records one processed document. It never overwrites.
func (r *Recorder) Append(record models.AuditRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
}

// Len reports how many records have been appended.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// Finalize produces the batch report. The recorder remains usable; the
// returned slice is a snapshot.
func (r *Recorder) Finalize() *Report {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := make([]models.AuditRecord, len(r.records))
	copy(records, r.records)

	summary := Summary{Total: len(records)}
	for _, rec := range records {
		switch rec.Decision {
		case models.DecisionAutoRenamed:
			summary.AutoRenamed++
		case models.DecisionFlagged:
			summary.Flagged++
		case models.DecisionFailed:
			summary.Failed++
		}
	}

	return &Report{Records: records, Summary: summary}
}
