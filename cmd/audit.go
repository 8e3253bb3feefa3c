package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"renamer/internal/audit"
	"renamer/internal/config"
	"renamer/internal/logger"
	"renamer/internal/normalize"
	"renamer/internal/resolve"
	"renamer/pkg/models"
)

var auditCmd = &cobra.Command{
	Use:   "audit [document-or-report]",
	Short: "Dump a document's OCR dossier, or inspect a JSON audit report",
	Long: `Given a document, run OCR and extraction and write a review dossier:
the raw OCR result as JSON, the recognized text, and a markdown table of
every extracted field candidate with its confidence. Nothing is renamed.

Given a JSON report produced by a process run, print its summary and
per-document decisions instead, optionally converting it to CSV or XLSX
for spreadsheet review.`,
	Example: `  # Write contrato.ocr.json, contrato.txt and contrato.fields.md
  renamer audit scans/contrato.pdf --out dossier/

  # Inspect a batch report
  renamer audit rename_report.json

  # Show only documents flagged for review
  renamer audit rename_report.json --decision FLAGGED_FOR_REVIEW

  # Convert a report to a spreadsheet
  renamer audit rename_report.json --convert audit.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)

	auditCmd.Flags().StringP("out", "o", ".", "Directory for the document dossier files")
	auditCmd.Flags().String("rules", "", "JSON dictionaries file overriding the built-in extraction rules")
	auditCmd.Flags().String("decision", "", "Only show report records with this decision (AUTO_RENAMED, FLAGGED_FOR_REVIEW, FAILED)")
	auditCmd.Flags().String("convert", "", "Write the report to this path in the format its extension selects (.csv, .json or .xlsx)")
}

func runAudit(cmd *cobra.Command, args []string) error {
	if strings.EqualFold(filepath.Ext(args[0]), ".json") {
		return runAuditReport(cmd, args[0])
	}
	return runAuditDocument(cmd, args[0])
}

// runAuditDocument writes the per-document dossier: raw OCR JSON, the
// recognized text, and the extracted-candidate table.
func runAuditDocument(cmd *cobra.Command, path string) error {
	log := logger.WithComponent("audit")

	outDir, _ := cmd.Flags().GetString("out")
	rulesFile, _ := cmd.Flags().GetString("rules")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if rulesFile == "" {
		rulesFile = cfg.RulesFile
	}
	registry, err := buildRegistry(rulesFile)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(log)
	defer cancel()

	provider, cleanup, err := buildProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	raw, err := provider.Recognize(ctx, path)
	if err != nil {
		return translateOCRError(err)
	}
	text, err := normalize.FromOcr(raw)
	if err != nil {
		return err
	}
	candidates := registry.Extract(text)
	resolved := resolve.Resolve("audit", candidates, nil)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create dossier directory: %w", err)
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	rawJSON, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ocr result: %w", err)
	}
	ocrPath := filepath.Join(outDir, base+".ocr.json")
	if err := os.WriteFile(ocrPath, rawJSON, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", ocrPath, err)
	}

	textPath := filepath.Join(outDir, base+".txt")
	if err := os.WriteFile(textPath, []byte(text.Original), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", textPath, err)
	}

	fieldsPath := filepath.Join(outDir, base+".fields.md")
	if err := os.WriteFile(fieldsPath, []byte(fieldsTable(path, candidates, resolved)), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", fieldsPath, err)
	}

	log.Info().
		Str("file", path).
		Int("candidates", len(candidates)).
		Str("out", outDir).
		Msg("Dossier written")
	fmt.Printf("Dossier written: %s, %s, %s\n", ocrPath, textPath, fieldsPath)
	return nil
}

// fieldsTable renders every candidate plus the per-field winners.
func fieldsTable(path string, candidates []models.FieldCandidate, resolved *models.DocumentContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Extraction audit: %s\n\n", filepath.Base(path))

	b.WriteString("## Candidates\n\n")
	if len(candidates) == 0 {
		b.WriteString("No extraction rule matched.\n")
	} else {
		b.WriteString("| Rule | Field | Value | Confidence | Span |\n|---|---|---|---|---|\n")
		for _, c := range candidates {
			fmt.Fprintf(&b, "| %s | %s | %s | %.2f | %d-%d |\n",
				c.Rule, c.Field, c.Value, c.Confidence, c.Span.Start, c.Span.End)
		}
	}

	b.WriteString("\n## Resolved values\n\n")
	wrote := false
	for _, field := range models.KnownFields() {
		value, ok := resolved.Values[field]
		if !ok {
			continue
		}
		if !wrote {
			b.WriteString("| Field | Value | Confidence |\n|---|---|---|\n")
			wrote = true
		}
		fmt.Fprintf(&b, "| %s | %s | %.2f |\n", field, value, resolved.Confidence(field))
	}
	if !wrote {
		b.WriteString("Nothing resolved.\n")
	}
	return b.String()
}

// runAuditReport prints a JSON report's summary and decisions.
func runAuditReport(cmd *cobra.Command, reportPath string) error {
	log := logger.WithComponent("audit")

	decisionFilter, _ := cmd.Flags().GetString("decision")
	convertPath, _ := cmd.Flags().GetString("convert")

	data, err := os.ReadFile(reportPath)
	if err != nil {
		return fmt.Errorf("failed to read report: %w", err)
	}
	var report audit.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return fmt.Errorf("failed to parse report: %w", err)
	}

	log.Info().
		Str("report", reportPath).
		Int("records", len(report.Records)).
		Msg("Audit report loaded")

	fmt.Printf("Report: %s\n", reportPath)
	fmt.Printf("Total: %d  renamed: %d  flagged: %d  failed: %d\n\n",
		report.Summary.Total, report.Summary.AutoRenamed, report.Summary.Flagged, report.Summary.Failed)

	for _, record := range report.Records {
		if decisionFilter != "" && string(record.Decision) != decisionFilter {
			continue
		}
		line := fmt.Sprintf("%-20s %s", record.Decision, record.SourcePath)
		if record.Decision != models.DecisionFailed {
			line += " -> " + record.Name.String()
		}
		if record.Reason != "" {
			line += "  (" + record.Reason + ")"
		}
		fmt.Println(line)
	}

	if convertPath != "" {
		if err := writeReport(&report, convertPath); err != nil {
			return err
		}
		fmt.Printf("\nConverted report written to %s\n", convertPath)
	}
	return nil
}
