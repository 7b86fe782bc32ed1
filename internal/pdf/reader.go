package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	perrors "github.com/a3tai/pdf-parser-service/internal/pdf/errors"
)

// Reader loads PDF files from disk for parsing
type Reader struct {
	maxFileSize int64
}

// NewReader creates a new PDF reader with the specified constraints
func NewReader(maxFileSize int64) *Reader {
	return &Reader{
		maxFileSize: maxFileSize,
	}
}

// ReadFile returns a parse request holding the file's bytes
func (r *Reader) ReadFile(path string) (*ParseRequest, error) {
	if path == "" {
		return nil, perrors.New(perrors.KindInvalidInput, "path cannot be empty")
	}

	fileInfo, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, perrors.New(perrors.KindInvalidInput, fmt.Sprintf("file does not exist: %s", path))
	}
	if err != nil {
		return nil, perrors.Wrap(perrors.KindInvalidInput, err, "cannot access file")
	}

	if err := r.checkFileInfo(path, fileInfo); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, perrors.Wrap(perrors.KindInvalidInput, err, "cannot read file")
	}

	return &ParseRequest{Filename: filepath.Base(path), Data: data}, nil
}

// checkFileInfo performs basic validation without reading the file
func (r *Reader) checkFileInfo(path string, fileInfo os.FileInfo) error {
	if fileInfo.IsDir() {
		return perrors.New(perrors.KindInvalidInput, fmt.Sprintf("path is a directory, not a file: %s", path))
	}

	if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return perrors.New(perrors.KindUnsupportedMedia, fmt.Sprintf("file is not a PDF: %s", path))
	}

	if fileInfo.Size() == 0 {
		return perrors.New(perrors.KindInvalidInput, fmt.Sprintf("file is empty: %s", path))
	}

	if fileInfo.Size() > r.maxFileSize {
		return perrors.New(perrors.KindTooLarge,
			fmt.Sprintf("file too large: %d bytes (max: %d bytes)", fileInfo.Size(), r.maxFileSize))
	}

	return nil
}
