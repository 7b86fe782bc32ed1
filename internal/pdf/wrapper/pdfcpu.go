package wrapper

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var disableConfigDir sync.Once

// preflight is what pdfcpu reports about a document before extraction.
type preflight struct {
	encrypted bool
	pageCount int
	version   string
}

func newPDFCPUConfiguration() *model.Configuration {
	// pdfcpu writes a config directory on first use unless told otherwise.
	disableConfigDir.Do(api.DisableConfigDir)

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// inspect reads the cross-reference structure with pdfcpu. Encrypted
// documents are read with the empty user password.
func inspect(data []byte) (pf *preflight, err error) {
	defer func() {
		if r := recover(); r != nil {
			pf = nil
			err = &WrapperError{Library: LibraryPDFCPU, Op: "inspect", Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	ctx, err := api.ReadContext(bytes.NewReader(data), newPDFCPUConfiguration())
	if err != nil {
		return nil, &WrapperError{
			Library: LibraryPDFCPU,
			Op:      "inspect",
			Err:     fmt.Errorf("failed to read PDF context: %w", err),
		}
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, &WrapperError{
			Library: LibraryPDFCPU,
			Op:      "inspect",
			Err:     fmt.Errorf("failed to ensure page count: %w", err),
		}
	}

	return &preflight{
		encrypted: ctx.Encrypt != nil,
		pageCount: ctx.PageCount,
		version:   ctx.HeaderVersion.String(),
	}, nil
}

// decrypt rewrites an encrypted document without encryption, authenticating
// with the empty password.
func decrypt(data []byte) (plain []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			plain = nil
			err = &WrapperError{Library: LibraryPDFCPU, Op: "decrypt", Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	conf := newPDFCPUConfiguration()
	conf.UserPW = ""
	conf.OwnerPW = ""

	var out bytes.Buffer
	if err := api.Decrypt(bytes.NewReader(data), &out, conf); err != nil {
		return nil, &WrapperError{
			Library: LibraryPDFCPU,
			Op:      "decrypt",
			Err:     fmt.Errorf("failed to decrypt PDF: %w", err),
		}
	}
	return out.Bytes(), nil
}

// isPasswordError reports whether a library error means the document
// stays locked without a password.
func isPasswordError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "password") || strings.Contains(msg, "encrypt")
}
