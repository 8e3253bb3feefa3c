// Package ocr defines the OCR collaborator contract and its providers.
//
// The interpretation pipeline depends only on the Provider interface: a
// single operation from document path to raw recognized text. Concrete
// engines (Google Cloud Vision, Google Document AI, and a plain-text
// read-through for pre-extracted files) plug in behind it, so downstream
// logic is oblivious to where the text came from. A degraded provider that
// cannot score its output reports a fixed neutral confidence instead.
//
// Required Environment Variables (cloud providers):
//   - GOOGLE_APPLICATION_CREDENTIALS: Path to service account JSON file, OR
//   - GOOGLE_CREDENTIALS: Inline JSON credentials string
//   - GOOGLE_CLOUD_PROJECT: Google Cloud project ID (Document AI)
package ocr

import (
	"context"
	"path/filepath"
	"strings"

	"renamer/pkg/models"
)

// Provider recognizes text in a document file.
type Provider interface {
	// Name identifies the engine in audit records.
	Name() string

	// Recognize extracts text from the document at path. It returns
	// ErrUnavailable or ErrTimeout for collaborator failures and
	// ErrUnsupportedFormat when the file type is outside the engine's
	// reach. The result is immutable once returned.
	Recognize(ctx context.Context, path string) (*models.RawOcrResult, error)
}

// NeutralConfidence is the default confidence recorded for text blocks
// whose engine reports none.
const NeutralConfidence = 0.5

// mimeTypeFor maps a file extension to the MIME type the cloud engines
// expect. Empty string means unsupported.
func mimeTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf"
	case ".tif", ".tiff":
		return "image/tiff"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".bmp":
		return "image/bmp"
	default:
		return ""
	}
}
