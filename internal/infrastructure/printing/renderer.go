package printing

import (
	"context"
	"time"
)

// PaperSize is a named page size
type PaperSize string

const (
	PaperSizeA4     PaperSize = "A4"
	PaperSizeA5     PaperSize = "A5"
	PaperSizeLetter PaperSize = "LETTER"
)

// IsValid checks if the paper size is known
func (p PaperSize) IsValid() bool {
	switch p {
	case PaperSizeA4, PaperSizeA5, PaperSizeLetter:
		return true
	}
	return false
}

// Dimensions returns width and height in millimeters
func (p PaperSize) Dimensions() (width, height float64) {
	switch p {
	case PaperSizeA5:
		return 148, 210
	case PaperSizeLetter:
		return 215.9, 279.4
	default:
		return 210, 297
	}
}

// Margins in millimeters
type Margins struct {
	Top, Right, Bottom, Left float64
}

// DefaultMargins returns the invoice page margins
func DefaultMargins() Margins {
	return Margins{Top: 12, Right: 12, Bottom: 12, Left: 12}
}

// RenderRequest contains the parameters for rendering HTML to PDF
type RenderRequest struct {
	HTML      string
	PaperSize PaperSize
	Landscape bool
	Margins   Margins
	// Title for the PDF document metadata
	Title string
	// FooterHTML is printed on every page (optional)
	FooterHTML string
	// Timeout overrides the default rendering timeout
	Timeout time.Duration
}

// RenderResult contains the output from PDF rendering
type RenderResult struct {
	PDFData        []byte
	PageCount      int
	RenderDuration time.Duration
}

// PDFRenderer defines the interface for rendering HTML to PDF
type PDFRenderer interface {
	// Render converts HTML content to a PDF document
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	// Close releases any resources held by the renderer
	Close() error
}

// RenderError represents an error during rendering
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
	ErrCodeRenderTimeout    = "RENDER_TIMEOUT"
	ErrCodeRenderFailed     = "RENDER_FAILED"
	ErrCodeInvalidHTML      = "INVALID_HTML"
	ErrCodeInvalidPaperSize = "INVALID_PAPER_SIZE"
	ErrCodeTemplateFailed   = "TEMPLATE_FAILED"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
