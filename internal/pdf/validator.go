package pdf

import (
	"context"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	perrors "github.com/a3tai/pdf-parser-service/internal/pdf/errors"
)

const pdfMimeType = "application/pdf"

// errNotPDF is the message clients see for non-PDF uploads
const errNotPDF = "File must be a PDF (application/pdf)"

// Validator handles PDF validation for uploads and files on disk
type Validator struct {
	maxFileSize int64
	reader      *Reader
	opener      DocumentOpener
}

// NewValidator creates a new PDF validator with the specified constraints
func NewValidator(maxFileSize int64, opener DocumentOpener) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
		reader:      NewReader(maxFileSize),
		opener:      opener,
	}
}

// ValidateUpload checks an uploaded body before parsing. Both the declared
// content type and the sniffed one must be PDF.
func (v *Validator) ValidateUpload(contentType string, data []byte) error {
	if int64(len(data)) > v.maxFileSize {
		return perrors.New(perrors.KindTooLarge,
			fmt.Sprintf("file too large: %d bytes (max: %d bytes)", len(data), v.maxFileSize))
	}

	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), pdfMimeType) {
		return perrors.New(perrors.KindUnsupportedMedia, errNotPDF)
	}

	if !mimetype.Detect(data).Is(pdfMimeType) {
		return perrors.New(perrors.KindUnsupportedMedia, errNotPDF)
	}

	return nil
}

// ValidateFile checks that a file on disk is a PDF the parser can open
func (v *Validator) ValidateFile(ctx context.Context, req PDFValidateFileRequest) (*PDFValidateFileResult, error) {
	result := &PDFValidateFileResult{
		Path:  req.Path,
		Valid: false,
	}

	parseReq, err := v.reader.ReadFile(req.Path)
	if err != nil {
		result.Message = err.Error()
		return result, nil //nolint:nilerr // Return result with validation error, not a processing error
	}

	mtype := mimetype.Detect(parseReq.Data)
	result.MimeType = mtype.String()
	if !mtype.Is(pdfMimeType) {
		result.Message = fmt.Sprintf("file content is %s, not a PDF", mtype.String())
		return result, nil
	}

	doc, err := v.opener.Open(ctx, parseReq.Data)
	if err != nil {
		result.Message = err.Error()
		return result, nil //nolint:nilerr // Return result with validation error, not a processing error
	}
	defer doc.Close()

	result.Valid = true
	result.Pages = doc.PageCount()
	result.Encrypted = doc.Info().Encrypted
	return result, nil
}
