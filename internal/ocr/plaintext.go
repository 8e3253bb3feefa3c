package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"renamer/pkg/models"
)

// PlainTextProvider is the degraded collaborator: it reads pre-extracted
// UTF-8 text files directly, reporting a fixed neutral confidence since no
// recognition took place. It makes fallback text sources just another
// Provider, so the pipeline never special-cases them.
type PlainTextProvider struct {
	confidence float64
}

// NewPlainTextProvider creates the provider. confidence outside (0, 1]
// falls back to NeutralConfidence.
func NewPlainTextProvider(confidence float64) *PlainTextProvider {
	if confidence <= 0 || confidence > 1 {
		confidence = NeutralConfidence
	}
	return &PlainTextProvider{confidence: confidence}
}

// Name implements Provider.
func (p *PlainTextProvider) Name() string { return "plaintext" }

// Recognize implements Provider.
func (p *PlainTextProvider) Recognize(ctx context.Context, path string) (*models.RawOcrResult, error) {
	const op = "Recognize"

	if err := ctx.Err(); err != nil {
		return nil, wrapError(op, ErrTimeout, err.Error())
	}
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".txt" && ext != ".md" {
		return nil, wrapError(op, ErrUnsupportedFormat, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapError(op, ErrUnavailable, fmt.Sprintf("read %s: %v", path, err))
	}
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return nil, wrapError(op, ErrEmptyDocument, path)
	}

	return &models.RawOcrResult{
		SourcePath: path,
		Blocks:     []models.TextBlock{{Text: text, Confidence: p.confidence}},
		Engine:     p.Name(),
	}, nil
}
