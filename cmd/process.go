package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"renamer/internal/audit"
	"renamer/internal/batch"
	"renamer/internal/config"
	"renamer/internal/logger"
	"renamer/internal/plan"
)

var processCmd = &cobra.Command{
	Use:   "process [input-dir]",
	Short: "Interpret and rename every document in a directory",
	Long: `Process all documents in a directory: run OCR, extract identity
metadata, derive a canonical name for each document, and apply the result.

Documents whose overall confidence meets the auto threshold are moved into
the output directory under their canonical name. Uncertain documents are
copied into the review directory together with a pending-review note; the
originals stay in place. Every document gets an entry in the audit report.

Required environment variables depend on the OCR provider (see
RENAMER_OCR_PROVIDER):
  GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS - for vision
  GOOGLE_CLOUD_PROJECT, DOCUMENT_AI_PROCESSOR_ID - additionally for documentai`,
	Example: `  # Rename everything in ./scans into ./renamed
  renamer process ./scans

  # Custom output and review directories, 8 OCR workers
  renamer process ./scans -o ./renamed --review ./pendentes --workers 8

  # Plan only, touch nothing
  renamer process ./scans --dry-run

  # Custom naming template and spreadsheet report
  renamer process ./scans --template "{document_type}_{reference_number}_{date}" --report audit.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringP("out", "o", "renamed", "Output directory for auto-renamed documents")
	processCmd.Flags().String("review", "pendentes", "Directory for documents flagged for review")
	processCmd.Flags().String("template", "", "Naming template (default from RENAMER_TEMPLATE)")
	processCmd.Flags().Int("workers", 0, "Concurrent OCR workers (default from RENAMER_WORKERS)")
	processCmd.Flags().String("rules", "", "JSON dictionaries file overriding the built-in extraction rules")
	processCmd.Flags().String("report", "rename_report.csv", "Audit report path (.csv, .json or .xlsx)")
	processCmd.Flags().Bool("dry-run", false, "Plan and report without touching any file")
}

func runProcess(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("process")

	outDir, _ := cmd.Flags().GetString("out")
	reviewDir, _ := cmd.Flags().GetString("review")
	template, _ := cmd.Flags().GetString("template")
	workers, _ := cmd.Flags().GetInt("workers")
	rulesFile, _ := cmd.Flags().GetString("rules")
	reportPath, _ := cmd.Flags().GetString("report")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	inputDir := args[0]

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if template == "" {
		template = cfg.Template
	}
	if workers <= 0 {
		workers = cfg.Workers
	}
	if rulesFile == "" {
		rulesFile = cfg.RulesFile
	}

	// Policy misconfiguration is fatal before any document is touched.
	policy, err := buildPolicy(template, cfg)
	if err != nil {
		return err
	}

	registry, err := buildRegistry(rulesFile)
	if err != nil {
		return err
	}

	paths, err := collectDocuments(inputDir)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		log.Warn().Str("dir", inputDir).Msg("No documents found")
		fmt.Println("No documents found.")
		return nil
	}

	log.Info().
		Str("input", inputDir).
		Int("documents", len(paths)).
		Bool("dry_run", dryRun).
		Msg("Starting document processing")

	ctx, cancel := signalContext(log)
	defer cancel()

	provider, cleanup, err := buildProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	orchestrator := batch.New(provider, registry, policy, batch.Options{
		Workers:   workers,
		OutDir:    outDir,
		ReviewDir: reviewDir,
	})

	existing := append(listNames(outDir, log), listNames(reviewDir, log)...)

	operationPlan, report, err := orchestrator.Run(ctx, paths, existing)
	if err != nil {
		return err
	}

	executor := plan.NewExecutor(dryRun)
	for _, result := range executor.Apply(operationPlan, report) {
		if result.Err != nil {
			fmt.Fprintf(os.Stderr, "failed: %s -> %s: %v\n",
				result.Entry.SourcePath, result.Entry.TargetPath, result.Err)
		}
	}

	if err := writeReport(report, reportPath); err != nil {
		return err
	}

	fmt.Printf("Processed %d documents: %d renamed, %d flagged for review, %d failed.\n",
		report.Summary.Total, report.Summary.AutoRenamed, report.Summary.Flagged, report.Summary.Failed)
	fmt.Printf("Audit report written to %s\n", reportPath)
	return nil
}

// collectDocuments lists the regular, non-hidden files of dir in name
// order. Name order keeps reruns deterministic.
func collectDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// listNames returns the filenames already present in dir, to seed the
// collision set. A missing directory is fine: nothing to collide with.
func listNames(dir string, log zerolog.Logger) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("dir", dir).Msg("Could not list existing names")
		}
		return nil
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names
}

// writeReport writes the audit report in the format the file extension
// selects.
func writeReport(report *audit.Report, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer file.Close()
		return report.WriteCSV(file)

	case ".json":
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer file.Close()
		return report.WriteJSON(file)

	case ".xlsx":
		data, err := report.WriteXLSX()
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0o644)

	default:
		return fmt.Errorf("unsupported report format %q (use .csv, .json or .xlsx)", filepath.Ext(path))
	}
}
