package ocr

import (
	"errors"
	"fmt"
)

// Common OCR collaborator errors.
var (
	// ErrUnavailable is returned when the OCR engine cannot be reached or
	// rejects the request. The document fails, the batch continues.
	ErrUnavailable = errors.New("ocr engine unavailable")

	// ErrTimeout is returned when recognition exceeds its deadline.
	ErrTimeout = errors.New("ocr processing timed out")

	// ErrEmptyDocument is returned when the engine finds no readable text.
	ErrEmptyDocument = errors.New("document contains no readable text")

	// ErrUnsupportedFormat is returned for file types the engine cannot
	// process.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrMissingCredentials is returned when neither
	// GOOGLE_APPLICATION_CREDENTIALS nor GOOGLE_CREDENTIALS is configured.
	ErrMissingCredentials = errors.New("missing Google Cloud credentials: set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS environment variable")

	// ErrFileTooLarge is returned when the document exceeds the engine's
	// synchronous processing limit.
	ErrFileTooLarge = errors.New("document exceeds maximum size for synchronous processing")

	// ErrTooManyPages is returned when the document exceeds the engine's
	// synchronous page limit.
	ErrTooManyPages = errors.New("document has too many pages for synchronous processing")
)

// Error wraps failures with the operation and additional context.
type Error struct {
	// Op is the operation that failed (e.g. "Recognize", "NewVisionProvider").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("ocr: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("ocr: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements error matching against the sentinel errors.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// wrapError wraps err as an *Error unless it already is one.
func wrapError(op string, err error, details string) error {
	if err == nil {
		return nil
	}
	var ocrErr *Error
	if errors.As(err, &ocrErr) {
		return err
	}
	return &Error{Op: op, Err: err, Details: details}
}
