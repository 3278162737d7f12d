// Package printing turns invoice HTML into PDF documents.
package printing

import "strings"

// PaperSize names a supported output sheet
type PaperSize string

const (
	PaperLetter PaperSize = "letter"
	PaperA4     PaperSize = "a4"
)

// Dimensions returns width and height in millimeters
func (p PaperSize) Dimensions() (width, height float64) {
	switch p {
	case PaperA4:
		return 210, 297
	default:
		return 215.9, 279.4
	}
}

// ParsePaperSize maps a config value to a paper size, defaulting to letter
func ParsePaperSize(s string) PaperSize {
	if PaperSize(strings.ToLower(strings.TrimSpace(s))) == PaperA4 {
		return PaperA4
	}
	return PaperLetter
}

// RenderError represents an error during PDF rendering
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeRenderTimeout = "RENDER_TIMEOUT"
	ErrCodeRenderFailed  = "RENDER_FAILED"
	ErrCodeInvalidHTML   = "INVALID_HTML"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
