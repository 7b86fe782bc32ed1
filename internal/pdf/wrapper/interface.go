package wrapper

import (
	"fmt"

	"github.com/a3tai/pdf-parser-service/internal/pdf/reconstruct"
)

// Document is an open PDF exclusively owned by one parse. It answers the
// three text-fidelity queries of reconstruct.PageSource and must be closed
// on every exit path.
type Document interface {
	reconstruct.PageSource

	PageCount() int
	Info() Info
	Close() error
}

// LibraryType represents the underlying PDF library being used
type LibraryType string

const (
	LibraryPDFCPU     LibraryType = "pdfcpu"
	LibraryLedongthuc LibraryType = "ledongthuc"
)

// Info contains document level information gathered while opening.
type Info struct {
	Title     string `json:"title,omitempty"`
	Author    string `json:"author,omitempty"`
	Producer  string `json:"producer,omitempty"`
	Version   string `json:"version,omitempty"`
	Encrypted bool   `json:"encrypted,omitempty"` // opened with the empty password
}

// WrapperError is returned by library adapters
type WrapperError struct {
	Library LibraryType `json:"library"`
	Op      string      `json:"operation"`
	Err     error       `json:"error"`
}

func (e *WrapperError) Error() string {
	return fmt.Sprintf("PDF %s library error in %s: %v", e.Library, e.Op, e.Err)
}

func (e *WrapperError) Unwrap() error {
	return e.Err
}

// Common error variables
var (
	ErrDocumentClosed = &WrapperError{Op: "document", Err: fmt.Errorf("document is closed")}
	ErrInvalidPage    = &WrapperError{Op: "page", Err: fmt.Errorf("invalid page number")}
)

// unavailable wraps cause so that the selector treats it as a missing
// fidelity rather than a page failure.
func unavailable(lib LibraryType, op string, cause any) error {
	return &WrapperError{
		Library: lib,
		Op:      op,
		Err:     fmt.Errorf("%w: %v", reconstruct.ErrFidelityUnavailable, cause),
	}
}
