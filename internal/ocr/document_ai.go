package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"

	"renamer/pkg/models"
)

// DocumentAIConfig holds the Document AI processor coordinates.
type DocumentAIConfig struct {
	// ProjectID is the Google Cloud project where the processor lives.
	ProjectID string

	// Location is the processing location ("us", "eu", ...). Regional
	// locations use their own API endpoint.
	Location string

	// ProcessorID identifies the OCR processor.
	ProcessorID string

	// ProcessorVersion pins a processor version; empty uses the default.
	ProcessorVersion string

	// Timeout bounds a single recognition call. Default: 60 seconds.
	Timeout time.Duration
}

// DocumentAIProvider recognizes document text with a Google Document AI
// OCR processor. Compared to Vision it reports per-page layout confidence
// and handles a wider set of input formats.
type DocumentAIProvider struct {
	client *documentai.DocumentProcessorClient
	config DocumentAIConfig
}

// NewDocumentAIProvider creates a provider with credentials from the
// environment and processor coordinates from config.
func NewDocumentAIProvider(ctx context.Context, config DocumentAIConfig) (*DocumentAIProvider, error) {
	const op = "NewDocumentAIProvider"

	if config.ProjectID == "" {
		return nil, wrapError(op, ErrUnavailable, "project ID is required")
	}
	if config.Location == "" {
		config.Location = "us"
	}
	if config.ProcessorID == "" {
		return nil, wrapError(op, ErrUnavailable, "processor ID is required")
	}
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}

	var clientOptions []option.ClientOption
	if config.Location != "us" {
		endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", config.Location)
		clientOptions = append(clientOptions, option.WithEndpoint(endpoint))
	}
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		clientOptions = append(clientOptions, option.WithCredentialsJSON([]byte(credJSON)))
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		clientOptions = append(clientOptions, option.WithCredentialsFile(credFile))
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, clientOptions...)
	if err != nil {
		if len(clientOptions) == 0 {
			return nil, wrapError(op, ErrMissingCredentials, "no credentials found in environment")
		}
		return nil, wrapError(op, err, fmt.Sprintf("failed to create Document AI client for location %s", config.Location))
	}

	return &DocumentAIProvider{client: client, config: config}, nil
}

// Name implements Provider.
func (p *DocumentAIProvider) Name() string { return "documentai" }

// Recognize implements Provider.
func (p *DocumentAIProvider) Recognize(ctx context.Context, path string) (*models.RawOcrResult, error) {
	const op = "Recognize"

	mimeType := mimeTypeFor(path)
	if mimeType == "" {
		return nil, wrapError(op, ErrUnsupportedFormat, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapError(op, ErrUnavailable, fmt.Sprintf("read %s: %v", path, err))
	}
	if len(data) > MaxFileSizeBytes {
		return nil, wrapError(op, ErrFileTooLarge, fmt.Sprintf("file size: %d bytes", len(data)))
	}

	processCtx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	req := &documentaipb.ProcessRequest{
		Name: p.processorName(),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  data,
				MimeType: mimeType,
			},
		},
	}

	resp, err := p.client.ProcessDocument(processCtx, req)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return nil, wrapError(op, ErrTimeout, path)
		case errors.Is(err, context.Canceled):
			return nil, wrapError(op, ErrTimeout, "recognition canceled")
		default:
			return nil, wrapError(op, ErrUnavailable, fmt.Sprintf("document ai call failed: %v", err))
		}
	}
	if resp.Document == nil {
		return nil, wrapError(op, ErrUnavailable, "no document in response")
	}

	result := &models.RawOcrResult{
		SourcePath: path,
		Blocks:     pageBlocks(resp.Document),
		Engine:     p.Name(),
	}
	if result.Text() == "" {
		return nil, wrapError(op, ErrEmptyDocument, path)
	}
	return result, nil
}

// pageBlocks slices the document's full text into one block per page using
// the page layout's text anchor, keeping the layout confidence. Documents
// without page layouts fall back to a single neutral-confidence block.
func pageBlocks(doc *documentaipb.Document) []models.TextBlock {
	fullText := doc.GetText()
	var blocks []models.TextBlock

	for _, page := range doc.GetPages() {
		layout := page.GetLayout()
		if layout == nil || layout.GetTextAnchor() == nil {
			continue
		}
		var pageText string
		for _, segment := range layout.GetTextAnchor().GetTextSegments() {
			start, end := segment.GetStartIndex(), segment.GetEndIndex()
			if start < 0 || end > int64(len(fullText)) || start >= end {
				continue
			}
			pageText += fullText[start:end]
		}
		if pageText == "" {
			continue
		}
		confidence := float64(layout.GetConfidence())
		if confidence == 0 {
			confidence = NeutralConfidence
		}
		blocks = append(blocks, models.TextBlock{Text: pageText, Confidence: confidence})
	}

	if len(blocks) == 0 && fullText != "" {
		blocks = []models.TextBlock{{Text: fullText, Confidence: NeutralConfidence}}
	}
	return blocks
}

// processorName constructs the full processor resource name.
func (p *DocumentAIProvider) processorName() string {
	if p.config.ProcessorVersion != "" {
		return fmt.Sprintf("projects/%s/locations/%s/processors/%s/processorVersions/%s",
			p.config.ProjectID, p.config.Location, p.config.ProcessorID, p.config.ProcessorVersion)
	}
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s",
		p.config.ProjectID, p.config.Location, p.config.ProcessorID)
}

// Close closes the underlying Document AI client.
func (p *DocumentAIProvider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}
