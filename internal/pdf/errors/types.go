package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind classifies a parse failure. Callers branch on the kind, the detail
// string is for humans.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidInput
	KindUnsupportedMedia
	KindTooLarge
	KindEncrypted
	KindPageExtraction
	KindStream
	KindCanceled
)

// String returns the machine-readable name of the kind
func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "INVALID_INPUT"
	case KindUnsupportedMedia:
		return "UNSUPPORTED_MEDIA"
	case KindTooLarge:
		return "TOO_LARGE"
	case KindEncrypted:
		return "ENCRYPTED"
	case KindPageExtraction:
		return "PAGE_EXTRACTION"
	case KindStream:
		return "STREAM"
	case KindCanceled:
		return "CANCELED"
	default:
		return "INTERNAL"
	}
}

// HTTPStatus maps the kind to the status code the HTTP surface reports.
// Malformed and locked documents are the client's problem.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindInvalidInput, KindUnsupportedMedia, KindEncrypted:
		return http.StatusBadRequest
	case KindTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindCanceled:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Retryable reports whether a failure of this kind warrants reopening the
// document from a fresh buffer.
func (k Kind) Retryable() bool {
	return k == KindStream
}

// ParseError is the single structured failure returned by a parse.
type ParseError struct {
	Kind   Kind   `json:"kind"`
	Detail string `json:"detail"`
	Page   int    `json:"page,omitempty"` // 1-based, 0 when not page specific
	Err    error  `json:"-"`
}

// Error implements the error interface
func (e *ParseError) Error() string {
	msg := e.Detail
	if e.Page > 0 {
		msg = fmt.Sprintf("page %d: %s", e.Page, msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, msg)
}

// Unwrap returns the underlying error
func (e *ParseError) Unwrap() error {
	return e.Err
}

// New creates a ParseError without an underlying cause
func New(kind Kind, detail string) *ParseError {
	return &ParseError{Kind: kind, Detail: detail}
}

// Wrap creates a ParseError around err
func Wrap(kind Kind, err error, detail string) *ParseError {
	return &ParseError{Kind: kind, Detail: detail, Err: err}
}

// WithPage records the 1-based page the failure happened on
func (e *ParseError) WithPage(page int) *ParseError {
	e.Page = page
	return e
}

// KindOf returns the kind of the first ParseError in err's chain, or
// KindInternal if there is none.
func KindOf(err error) Kind {
	var pe *ParseError
	if stderrors.As(err, &pe) {
		return pe.Kind
	}
	return KindInternal
}

// Is reports whether err carries a ParseError of the given kind
func Is(err error, kind Kind) bool {
	var pe *ParseError
	return stderrors.As(err, &pe) && pe.Kind == kind
}
