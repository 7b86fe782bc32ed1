package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/a3tai/pdf-parser-service/internal/pdf"
	perrors "github.com/a3tai/pdf-parser-service/internal/pdf/errors"
)

// multipartOverhead is the room left above the file size limit for the
// multipart envelope of an upload.
const multipartOverhead = 1 << 20

type handler struct {
	svc         Service
	maxFileSize int64
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "pdf-parser"})
}

func (h *handler) parse(c *gin.Context) {
	req, err := h.readUpload(c)
	if err != nil {
		respondError(c, err)
		return
	}

	logger(c).WithField("filename", req.Filename).Info("Processing PDF file")
	result, err := h.svc.Parse(c.Request.Context(), *req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handler) parseTextOnly(c *gin.Context) {
	req, err := h.readUpload(c)
	if err != nil {
		respondError(c, err)
		return
	}

	logger(c).WithField("filename", req.Filename).Info("Processing PDF file (text-only)")
	result, err := h.svc.ParseTextOnly(c.Request.Context(), *req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// readUpload reads and validates the multipart field "file"
func (h *handler) readUpload(c *gin.Context) (*pdf.ParseRequest, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxFileSize+multipartOverhead)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, perrors.New(perrors.KindTooLarge,
				fmt.Sprintf("file too large (max: %d bytes)", h.maxFileSize))
		}
		return nil, perrors.Wrap(perrors.KindInvalidInput, err, "multipart field 'file' is required")
	}

	f, err := header.Open()
	if err != nil {
		return nil, perrors.Wrap(perrors.KindInvalidInput, err, "upload could not be read")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, perrors.Wrap(perrors.KindInvalidInput, err, "upload could not be read")
	}

	if err := h.svc.ValidateUpload(header.Header.Get("Content-Type"), data); err != nil {
		return nil, err
	}
	return &pdf.ParseRequest{Filename: header.Filename, Data: data}, nil
}

// respondError writes {"error": KIND, "detail": message} with the status
// of the error's kind
func respondError(c *gin.Context, err error) {
	kind := perrors.KindOf(err)

	entry := logger(c).WithError(err).WithField("kind", kind.String())
	if kind.HTTPStatus() >= http.StatusInternalServerError {
		entry.Error("PDF request failed")
	} else {
		entry.Info("PDF request rejected")
	}

	c.AbortWithStatusJSON(kind.HTTPStatus(), gin.H{
		"error":  kind.String(),
		"detail": errorDetail(err),
	})
}

func errorDetail(err error) string {
	var pe *perrors.ParseError
	if !errors.As(err, &pe) {
		return fmt.Sprintf("Failed to parse PDF: %v", err)
	}

	detail := pe.Detail
	if pe.Page > 0 {
		detail = fmt.Sprintf("page %d: %s", pe.Page, detail)
	}
	if pe.Err != nil {
		detail = fmt.Sprintf("%s: %v", detail, pe.Err)
	}
	return detail
}
