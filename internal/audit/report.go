package audit

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"renamer/pkg/models"
)

// csvHeader returns the fixed column layout: record columns first, then a
// value and confidence column per known field, in declaration order, so
// reruns diff cleanly.
func csvHeader() []string {
	header := []string{
		"document_id", "source_path", "engine", "new_name",
		"decision", "reason", "overall_confidence",
	}
	for _, field := range models.KnownFields() {
		header = append(header, string(field), "confidence_"+string(field))
	}
	return header
}

// WriteCSV renders the report in the renaming-log format, one row per
// processed document.
func (rep *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, rec := range rep.Records {
		row := []string{
			rec.DocumentID,
			rec.SourcePath,
			rec.Engine,
			rec.Name.String(),
			string(rec.Decision),
			rec.Reason,
		}
		if rec.Context != nil {
			row = append(row, formatConfidence(rec.Context.OverallConfidence))
			for _, field := range models.KnownFields() {
				if value, ok := rec.Context.Values[field]; ok {
					row = append(row, value, formatConfidence(rec.Context.FieldConfidence[field]))
				} else {
					row = append(row, "", "")
				}
			}
		} else {
			row = append(row, "")
			for range models.KnownFields() {
				row = append(row, "", "")
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteJSON renders the full report, records and summary, as indented JSON.
func (rep *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

func formatConfidence(c float64) string {
	return strconv.FormatFloat(c, 'f', 2, 64)
}
