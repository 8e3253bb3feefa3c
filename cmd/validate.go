package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"renamer/internal/batch"
	"renamer/internal/config"
	"renamer/internal/logger"
	"renamer/pkg/models"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Show what a document would be renamed to, without renaming it",
	Long: `Run a single document through the interpretation pipeline and print the
extracted fields, their confidences, and the canonical name a batch run
would derive. Nothing is renamed and no audit record is written.

Useful for tuning the naming template and the extraction dictionaries
against a problem document.`,
	Example: `  # Inspect a single contract scan
  renamer validate scans/contrato-042.pdf

  # Plain text output instead of JSON
  renamer validate scans/contrato-042.pdf --text`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

// validationOutput is the JSON structure printed per inspected document.
type validationOutput struct {
	SourcePath        string                   `json:"source_path"`
	ProposedName      string                   `json:"proposed_name"`
	OverallConfidence float64                  `json:"overall_confidence"`
	Fields            map[models.Field]string  `json:"fields"`
	FieldConfidence   map[models.Field]float64 `json:"field_confidence"`
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().String("template", "", "Naming template (default from RENAMER_TEMPLATE)")
	validateCmd.Flags().String("rules", "", "JSON dictionaries file overriding the built-in extraction rules")
	validateCmd.Flags().Bool("text", false, "Plain text output instead of JSON")
}

func runValidate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("validate")

	template, _ := cmd.Flags().GetString("template")
	rulesFile, _ := cmd.Flags().GetString("rules")
	textOutput, _ := cmd.Flags().GetBool("text")

	path := args[0]

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if template == "" {
		template = cfg.Template
	}
	if rulesFile == "" {
		rulesFile = cfg.RulesFile
	}

	policy, err := buildPolicy(template, cfg)
	if err != nil {
		return err
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

	orchestrator := batch.New(provider, registry, policy, batch.Options{})

	docContext, name, err := orchestrator.Validate(ctx, path)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	log.Info().
		Str("file", path).
		Str("name", name.String()).
		Float64("confidence", docContext.OverallConfidence).
		Msg("Document validated")

	if textOutput {
		fmt.Printf("File: %s\n", path)
		fmt.Printf("Proposed name: %s\n", name.String())
		fmt.Printf("Overall confidence: %.2f\n\n", docContext.OverallConfidence)
		for _, field := range models.KnownFields() {
			value, ok := docContext.Values[field]
			if !ok {
				continue
			}
			fmt.Printf("  %-18s %-40s %.2f\n", field, value, docContext.Confidence(field))
		}
		return nil
	}

	output := validationOutput{
		SourcePath:        path,
		ProposedName:      name.String(),
		OverallConfidence: docContext.OverallConfidence,
		Fields:            docContext.Values,
		FieldConfidence:   docContext.FieldConfidence,
	}
	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to create JSON output: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}
