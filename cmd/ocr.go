package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"renamer/internal/config"
	"renamer/internal/logger"
	"renamer/internal/normalize"
	"renamer/internal/ocr"
	"renamer/pkg/models"
)

var ocrCmd = &cobra.Command{
	Use:   "ocr [file]",
	Short: "Extract text from a document using the configured OCR provider",
	Long: `Run OCR over a single document and print the recognized text, without
any interpretation or renaming. Useful for checking what the extraction
rules actually see, especially when tuning dictionaries against a scan
that resolves badly.

Required environment variables depend on the OCR provider (see
RENAMER_OCR_PROVIDER):
  GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS - for vision
  GOOGLE_CLOUD_PROJECT, DOCUMENT_AI_PROCESSOR_ID - additionally for documentai`,
	Example: `  # Extract text from a contract scan to stdout
  renamer ocr contrato.pdf

  # Save extracted text to a file
  renamer ocr contrato.pdf -o extracted.txt

  # Show the accent-folded form the extraction rules match against
  renamer ocr contrato.pdf --folded

  # Per-block confidences as JSON
  renamer ocr contrato.pdf --json`,
	Args: cobra.ExactArgs(1),
	RunE: runOCRCmd,
}

// ocrOutput is the JSON structure printed with --json.
type ocrOutput struct {
	SourcePath  string             `json:"source_path"`
	Engine      string             `json:"engine"`
	Blocks      []models.TextBlock `json:"blocks"`
	ProcessedAt time.Time          `json:"processed_at"`
}

func init() {
	rootCmd.AddCommand(ocrCmd)

	ocrCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	ocrCmd.Flags().Bool("folded", false, "Print the normalized, accent-folded text instead of the raw text")
	ocrCmd.Flags().Bool("json", false, "Output as JSON with per-block confidences")
	ocrCmd.Flags().Int("timeout", 300, "Processing timeout in seconds")
}

func runOCRCmd(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("ocr")

	outputPath, _ := cmd.Flags().GetString("output")
	folded, _ := cmd.Flags().GetBool("folded")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	path := args[0]

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(log)
	defer cancel()
	timer := time.AfterFunc(time.Duration(timeoutSecs)*time.Second, cancel)
	defer timer.Stop()

	provider, cleanup, err := buildProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	log.Info().
		Str("file", path).
		Str("provider", provider.Name()).
		Msg("Starting OCR processing")

	start := time.Now()
	result, err := provider.Recognize(ctx, path)
	if err != nil {
		return translateOCRError(err)
	}

	log.Info().
		Int("blocks", len(result.Blocks)).
		Dur("duration", time.Since(start)).
		Int("text_length", len(result.Text())).
		Msg("OCR processing completed successfully")

	var outputData []byte
	switch {
	case jsonOutput:
		outputData, err = json.MarshalIndent(ocrOutput{
			SourcePath:  result.SourcePath,
			Engine:      result.Engine,
			Blocks:      result.Blocks,
			ProcessedAt: time.Now(),
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
	case folded:
		text, err := normalize.FromOcr(result)
		if err != nil {
			return err
		}
		outputData = []byte(text.Folded)
	default:
		outputData = []byte(result.Text())
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, outputData, 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		log.Info().
			Str("output_file", outputPath).
			Int("bytes", len(outputData)).
			Msg("OCR results written to file")
		return nil
	}

	if _, err := os.Stdout.Write(outputData); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if !jsonOutput {
		fmt.Println()
	}
	return nil
}

// translateOCRError turns provider errors into actionable messages.
func translateOCRError(err error) error {
	switch {
	case errors.Is(err, ocr.ErrTimeout):
		return fmt.Errorf("OCR processing timed out. Try increasing --timeout or processing a smaller file")
	case errors.Is(err, ocr.ErrFileTooLarge):
		return fmt.Errorf("document is too large for synchronous processing (maximum 20MB). Try compressing or splitting the file")
	case errors.Is(err, ocr.ErrTooManyPages):
		return fmt.Errorf("document has too many pages for synchronous processing (maximum 5). Try splitting into smaller files")
	case errors.Is(err, ocr.ErrEmptyDocument):
		return fmt.Errorf("no readable text found in the document. It may contain only images or be corrupted")
	case errors.Is(err, ocr.ErrUnsupportedFormat):
		return fmt.Errorf("unsupported document format. Supported: PDF, TIFF, PNG, JPEG (and plain text with the plaintext provider)")
	case errors.Is(err, ocr.ErrMissingCredentials):
		return fmt.Errorf("Google Cloud credentials not configured. Set GOOGLE_APPLICATION_CREDENTIALS to a service account JSON file, "+
			"or GOOGLE_CREDENTIALS with inline JSON, or run 'gcloud auth application-default login'. Original error: %w", err)
	default:
		return fmt.Errorf("OCR processing failed: %w", err)
	}
}
