package config

import (
	"fmt"
	"os"
	"strconv"

	"renamer/internal/logger"
)

// Provider names accepted in RENAMER_OCR_PROVIDER.
const (
	ProviderVision     = "vision"
	ProviderDocumentAI = "documentai"
	ProviderPlainText  = "plaintext"
)

type Config struct {
	// Naming Configuration
	Template        string
	TemplateFundos  string
	TemplateMercado string
	AutoThreshold   float64
	ReviewFloor     float64

	// Pipeline Configuration
	OCRProvider       string
	Workers           int
	NeutralConfidence float64
	RulesFile         string

	// Google Cloud Configuration (vision and documentai providers)
	GoogleCloudProject         string
	GoogleCloudLocation        string
	DocumentAIProcessorID      string
	DocumentAIProcessorVersion string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		Template:                   getEnv("RENAMER_TEMPLATE", ""),
		TemplateFundos:             getEnv("RENAMER_TEMPLATE_FUNDOS", ""),
		TemplateMercado:            getEnv("RENAMER_TEMPLATE_MERCADO", ""),
		AutoThreshold:              getEnvFloat("RENAMER_AUTO_THRESHOLD", 0.7),
		ReviewFloor:                getEnvFloat("RENAMER_REVIEW_FLOOR", 0.0),
		OCRProvider:                getEnv("RENAMER_OCR_PROVIDER", ProviderVision),
		Workers:                    getEnvInt("RENAMER_WORKERS", 4),
		NeutralConfidence:          getEnvFloat("RENAMER_NEUTRAL_CONFIDENCE", 0.5),
		RulesFile:                  getEnv("RENAMER_RULES_FILE", ""),
		GoogleCloudProject:         getEnv("GOOGLE_CLOUD_PROJECT", ""),
		GoogleCloudLocation:        getEnv("GOOGLE_CLOUD_LOCATION", "us"),
		DocumentAIProcessorID:      getEnv("DOCUMENT_AI_PROCESSOR_ID", ""),
		DocumentAIProcessorVersion: getEnv("DOCUMENT_AI_PROCESSOR_VERSION", ""),
		LogLevel:                   getEnv("LOG_LEVEL", "info"),
		LogFormat:                  getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:              getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:                  getEnv("LOG_OUTPUT", "stdout"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.AutoThreshold < 0 || c.AutoThreshold > 1 {
		return fmt.Errorf("RENAMER_AUTO_THRESHOLD must be in [0, 1], got %v", c.AutoThreshold)
	}
	if c.ReviewFloor < 0 || c.ReviewFloor > c.AutoThreshold {
		return fmt.Errorf("RENAMER_REVIEW_FLOOR must be in [0, %v], got %v", c.AutoThreshold, c.ReviewFloor)
	}
	if c.Workers < 1 {
		return fmt.Errorf("RENAMER_WORKERS must be at least 1, got %d", c.Workers)
	}
	if c.NeutralConfidence <= 0 || c.NeutralConfidence > 1 {
		return fmt.Errorf("RENAMER_NEUTRAL_CONFIDENCE must be in (0, 1], got %v", c.NeutralConfidence)
	}
	switch c.OCRProvider {
	case ProviderVision, ProviderPlainText:
	case ProviderDocumentAI:
		if c.GoogleCloudProject == "" {
			return fmt.Errorf("GOOGLE_CLOUD_PROJECT is required for the documentai provider")
		}
		if c.DocumentAIProcessorID == "" {
			return fmt.Errorf("DOCUMENT_AI_PROCESSOR_ID is required for the documentai provider")
		}
	default:
		return fmt.Errorf("RENAMER_OCR_PROVIDER must be one of %s, %s, %s; got %q",
			ProviderVision, ProviderDocumentAI, ProviderPlainText, c.OCRProvider)
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
