package ocr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTextFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestPlainTextRecognize(t *testing.T) {
	path := writeTextFile(t, "contrato.txt", "CONTRATO Nº 123")
	provider := NewPlainTextProvider(0)

	result, err := provider.Recognize(context.Background(), path)
	if err != nil {
		t.Fatalf("Recognize returned error: %v", err)
	}
	if result.Text() != "CONTRATO Nº 123" {
		t.Errorf("text = %q", result.Text())
	}
	if result.Engine != "plaintext" {
		t.Errorf("engine = %q, want plaintext", result.Engine)
	}
	if len(result.Blocks) != 1 || result.Blocks[0].Confidence != NeutralConfidence {
		t.Errorf("blocks = %+v, want one block at neutral confidence", result.Blocks)
	}
}

func TestPlainTextCustomConfidence(t *testing.T) {
	path := writeTextFile(t, "doc.txt", "text")
	provider := NewPlainTextProvider(0.8)

	result, err := provider.Recognize(context.Background(), path)
	if err != nil {
		t.Fatalf("Recognize returned error: %v", err)
	}
	if result.Blocks[0].Confidence != 0.8 {
		t.Errorf("confidence = %v, want 0.8", result.Blocks[0].Confidence)
	}
}

func TestPlainTextRejectsUnsupportedFormat(t *testing.T) {
	path := writeTextFile(t, "scan.pdf", "%PDF-1.4")
	provider := NewPlainTextProvider(0)

	if _, err := provider.Recognize(context.Background(), path); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestPlainTextEmptyFile(t *testing.T) {
	path := writeTextFile(t, "blank.txt", "   \n\t ")
	provider := NewPlainTextProvider(0)

	_, err := provider.Recognize(context.Background(), path)
	if !errors.Is(err, ErrEmptyDocument) {
		t.Errorf("error = %v, want ErrEmptyDocument", err)
	}

	// The sentinel must survive the package's error wrapper.
	var wrapped *Error
	if !errors.As(err, &wrapped) {
		t.Errorf("error %T is not the package error type", err)
	}
}

func TestPlainTextCanceledContext(t *testing.T) {
	path := writeTextFile(t, "doc.txt", "text")
	provider := NewPlainTextProvider(0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := provider.Recognize(ctx, path); !errors.Is(err, ErrTimeout) {
		t.Errorf("error = %v, want ErrTimeout", err)
	}
}
