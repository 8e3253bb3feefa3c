package audit

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"renamer/pkg/models"
)

// WriteXLSX renders the report as an XLSX workbook and returns its bytes.
// One row per document on a "Renames" sheet, decision counts on a
// "Summary" sheet.
func (rep *Report) WriteXLSX() ([]byte, error) {
	f := excelize.NewFile()

	const sheet = "Renames"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	// Drop excelize's default sheet so the workbook only has ours.
	if index, _ := f.GetSheetIndex("Sheet1"); index != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	headers := []string{
		"Document ID", "Source Path", "Engine", "New Name",
		"Decision", "Reason", "Overall Confidence",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, rec := range rep.Records {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, rec.DocumentID)
		write(2, rec.SourcePath)
		write(3, rec.Engine)
		write(4, rec.Name.String())
		write(5, string(rec.Decision))
		write(6, rec.Reason)
		if rec.Context != nil {
			write(7, rec.Context.OverallConfidence)
		} else {
			write(7, "")
		}
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 38) // document id
	_ = f.SetColWidth(sheet, "B", "B", 60) // source path
	_ = f.SetColWidth(sheet, "C", "C", 14) // engine
	_ = f.SetColWidth(sheet, "D", "D", 48) // new name
	_ = f.SetColWidth(sheet, "E", "E", 20) // decision
	_ = f.SetColWidth(sheet, "F", "F", 48) // reason

	if err := rep.writeSummarySheet(f); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func (rep *Report) writeSummarySheet(f *excelize.File) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	rows := [][]any{
		{"Total", rep.Summary.Total},
		{string(models.DecisionAutoRenamed), rep.Summary.AutoRenamed},
		{string(models.DecisionFlagged), rep.Summary.Flagged},
		{string(models.DecisionFailed), rep.Summary.Failed},
	}
	for i, pair := range rows {
		labelCell, _ := excelize.CoordinatesToCellName(1, i+1)
		valueCell, _ := excelize.CoordinatesToCellName(2, i+1)
		_ = f.SetCellValue(sheet, labelCell, pair[0])
		_ = f.SetCellValue(sheet, valueCell, pair[1])
	}
	_ = f.SetColWidth(sheet, "A", "A", 24)
	return nil
}
