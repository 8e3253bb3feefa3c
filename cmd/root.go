package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"renamer/internal/config"
	"renamer/internal/extract"
	"renamer/internal/logger"
	"renamer/internal/naming"
	"renamer/internal/ocr"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "renamer",
	Short: "Renamer CLI - canonical renaming for scanned documents",
	Long: `Renamer CLI reads scanned contract and compliance documents through an
OCR engine, extracts their identity metadata (document type, reference
number, parties, dates), and derives a canonical filename for each one.

Documents whose extraction confidence meets the configured threshold are
renamed automatically; uncertain ones are set aside for human review with
a note explaining what was found. Every decision is recorded in an audit
report.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Info().
			Str("version", version).
			Msg("Renamer CLI executed")

		fmt.Println("Welcome to Renamer CLI!")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}

// signalContext returns a context canceled on SIGINT/SIGTERM so an
// in-flight batch aborts cleanly instead of being killed mid-write.
func signalContext(log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, aborting batch")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// buildProvider creates the OCR provider the configuration selects,
// returning a cleanup func for providers that hold a client.
func buildProvider(ctx context.Context, cfg *config.Config) (ocr.Provider, func(), error) {
	switch cfg.OCRProvider {
	case config.ProviderVision:
		provider, err := ocr.NewVisionProvider(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Vision provider: %w", err)
		}
		return provider, func() { _ = provider.Close() }, nil

	case config.ProviderDocumentAI:
		provider, err := ocr.NewDocumentAIProvider(ctx, ocr.DocumentAIConfig{
			ProjectID:        cfg.GoogleCloudProject,
			Location:         cfg.GoogleCloudLocation,
			ProcessorID:      cfg.DocumentAIProcessorID,
			ProcessorVersion: cfg.DocumentAIProcessorVersion,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Document AI provider: %w", err)
		}
		return provider, func() { _ = provider.Close() }, nil

	case config.ProviderPlainText:
		return ocr.NewPlainTextProvider(cfg.NeutralConfidence), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown OCR provider %q", cfg.OCRProvider)
	}
}

// buildPolicy assembles the naming policy: the base template plus any
// configured per-context template variants. Any invalid template aborts
// here, before a batch starts.
func buildPolicy(template string, cfg *config.Config) (naming.Policy, error) {
	policy, err := naming.NewPolicy(template, cfg.AutoThreshold, cfg.ReviewFloor)
	if err != nil {
		return naming.Policy{}, err
	}
	for context, override := range map[string]string{
		"fundos":  cfg.TemplateFundos,
		"mercado": cfg.TemplateMercado,
	} {
		if override == "" {
			continue
		}
		policy, err = policy.WithContextTemplate(context, override)
		if err != nil {
			return naming.Policy{}, err
		}
	}
	return policy, nil
}

// buildRegistry creates the extraction rule registry, from a custom
// dictionaries file when one is configured.
func buildRegistry(rulesFile string) (*extract.Registry, error) {
	if rulesFile == "" {
		return extract.DefaultRegistry(extract.DefaultDictionaries()), nil
	}
	dicts, err := extract.LoadDictionaries(rulesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load extraction dictionaries: %w", err)
	}
	return extract.DefaultRegistry(dicts), nil
}
