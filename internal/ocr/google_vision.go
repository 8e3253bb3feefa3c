package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"

	"renamer/pkg/models"
)

const (
	// MaxFileSizeBytes is the Vision API limit for synchronous processing (20MB).
	MaxFileSizeBytes = 20 * 1024 * 1024

	// MaxPagesSync is the Vision API page limit for synchronous processing.
	MaxPagesSync = 5
)

// VisionProvider recognizes document text with the Google Cloud Vision API.
// PDFs and TIFFs go through synchronous file annotation with per-page
// blocks; single images go through document text detection.
type VisionProvider struct {
	client *vision.ImageAnnotatorClient
}

// NewVisionProvider creates a provider with credentials from the
// environment: GOOGLE_CREDENTIALS inline JSON, then
// GOOGLE_APPLICATION_CREDENTIALS file path, then application default
// credentials.
func NewVisionProvider(ctx context.Context) (*VisionProvider, error) {
	const op = "NewVisionProvider"

	var client *vision.ImageAnnotatorClient
	var err error

	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, wrapError(op, err, "failed to create client with GOOGLE_CREDENTIALS")
		}
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credFile))
		if err != nil {
			return nil, wrapError(op, err, "failed to create client with GOOGLE_APPLICATION_CREDENTIALS")
		}
	} else {
		client, err = vision.NewImageAnnotatorClient(ctx)
		if err != nil {
			return nil, wrapError(op, ErrMissingCredentials, "no credentials found in environment")
		}
	}

	return &VisionProvider{client: client}, nil
}

// NewVisionProviderWithClient creates a provider with an explicit client
// (for testing).
func NewVisionProviderWithClient(client *vision.ImageAnnotatorClient) *VisionProvider {
	return &VisionProvider{client: client}
}

// Name implements Provider.
func (p *VisionProvider) Name() string { return "google-vision" }

// Recognize implements Provider.
func (p *VisionProvider) Recognize(ctx context.Context, path string) (*models.RawOcrResult, error) {
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

	var blocks []models.TextBlock
	switch mimeType {
	case "application/pdf", "image/tiff":
		blocks, err = p.annotateFile(ctx, data, mimeType)
	default:
		blocks, err = p.annotateImage(ctx, data)
	}
	if err != nil {
		return nil, p.translateError(op, err)
	}

	result := &models.RawOcrResult{
		SourcePath: path,
		Blocks:     blocks,
		Engine:     p.Name(),
	}
	if strings.TrimSpace(result.Text()) == "" {
		return nil, wrapError(op, ErrEmptyDocument, path)
	}
	return result, nil
}

// annotateFile runs synchronous document text detection over a multi-page
// file, one text block per page with the page's average word confidence.
func (p *VisionProvider) annotateFile(ctx context.Context, data []byte, mimeType string) ([]models.TextBlock, error) {
	req := &visionpb.BatchAnnotateFilesRequest{
		Requests: []*visionpb.AnnotateFileRequest{
			{
				InputConfig: &visionpb.InputConfig{
					Content:  data,
					MimeType: mimeType,
				},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
			},
		},
	}

	resp, err := p.client.BatchAnnotateFiles(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: vision api call failed: %v", ErrUnavailable, err)
	}
	if len(resp.Responses) == 0 {
		return nil, fmt.Errorf("%w: no response from vision api", ErrUnavailable)
	}
	fileResp := resp.Responses[0]
	if fileResp.Error != nil {
		return nil, fmt.Errorf("%w: vision api error: %s", ErrUnavailable, fileResp.Error.Message)
	}
	if len(fileResp.Responses) > MaxPagesSync {
		return nil, fmt.Errorf("%w: document has %d pages", ErrTooManyPages, len(fileResp.Responses))
	}

	var blocks []models.TextBlock
	for pageIdx, page := range fileResp.Responses {
		if page.Error != nil {
			return nil, fmt.Errorf("%w: page %d: %s", ErrUnavailable, pageIdx+1, page.Error.Message)
		}
		if page.FullTextAnnotation == nil {
			continue
		}
		blocks = append(blocks, models.TextBlock{
			Text:       page.FullTextAnnotation.Text,
			Confidence: annotationConfidence(page),
		})
	}
	return blocks, nil
}

// annotateImage runs document text detection over a single image.
func (p *VisionProvider) annotateImage(ctx context.Context, data []byte) ([]models.TextBlock, error) {
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: data},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
			},
		},
	}

	resp, err := p.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: vision api call failed: %v", ErrUnavailable, err)
	}
	if len(resp.Responses) == 0 {
		return nil, fmt.Errorf("%w: no response from vision api", ErrUnavailable)
	}
	imageResp := resp.Responses[0]
	if imageResp.Error != nil {
		return nil, fmt.Errorf("%w: vision api error: %s", ErrUnavailable, imageResp.Error.Message)
	}
	if imageResp.FullTextAnnotation == nil {
		return nil, nil
	}
	return []models.TextBlock{{
		Text:       imageResp.FullTextAnnotation.Text,
		Confidence: annotationConfidence(imageResp),
	}}, nil
}

// annotationConfidence averages the confidence of the response's text
// annotations, falling back to the neutral default when the engine
// reported none.
func annotationConfidence(resp *visionpb.AnnotateImageResponse) float64 {
	var sum float64
	var count int
	for _, annotation := range resp.TextAnnotations {
		if annotation.Confidence > 0 {
			sum += float64(annotation.Confidence)
			count++
		}
	}
	if count == 0 {
		return NeutralConfidence
	}
	return sum / float64(count)
}

// translateError maps transport-level failures to the sentinel kinds the
// orchestrator understands.
func (p *VisionProvider) translateError(op string, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return wrapError(op, ErrTimeout, err.Error())
	case errors.Is(err, context.Canceled):
		return wrapError(op, ErrTimeout, "recognition canceled")
	default:
		return wrapError(op, err, "")
	}
}

// Close closes the underlying Vision client.
func (p *VisionProvider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}
