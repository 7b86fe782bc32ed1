package wrapper

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	perrors "github.com/a3tai/pdf-parser-service/internal/pdf/errors"
)

// OpenerConfig contains configuration options for the opener
type OpenerConfig struct {
	// SkipPreflight disables the pdfcpu pass that detects and removes
	// encryption before text extraction.
	SkipPreflight bool

	// Logger receives debug output about library fallbacks
	Logger *logrus.Entry
}

// Opener turns document bytes into an open Document. pdfcpu handles
// encryption, ledongthuc handles text.
type Opener struct {
	config OpenerConfig
	log    *logrus.Entry
}

// NewOpener creates an opener with the given configuration
func NewOpener(config OpenerConfig) *Opener {
	log := config.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Opener{config: config, log: log}
}

// Open opens data for extraction. Failures are *perrors.ParseError values:
// KindInvalidInput for malformed documents, KindEncrypted when the empty
// password does not unlock the document and KindStream when the reader
// broke down on the byte stream.
func (o *Opener) Open(ctx context.Context, data []byte) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, perrors.Wrap(perrors.KindCanceled, err, "parse canceled")
	}
	if len(data) == 0 {
		return nil, perrors.New(perrors.KindInvalidInput, "Invalid PDF file: document is empty")
	}

	var info Info
	if !o.config.SkipPreflight {
		unlocked, pf, err := o.preflight(data)
		if err != nil {
			return nil, err
		}
		data = unlocked
		if pf != nil {
			info.Version = pf.version
			info.Encrypted = pf.encrypted
		}
	}

	doc, err := openLedongthuc(data)
	if err != nil {
		return nil, classifyOpenError(err)
	}

	doc.info.Version = info.Version
	doc.info.Encrypted = info.Encrypted
	return doc, nil
}

// preflight inspects data with pdfcpu and returns the bytes to hand to the
// text library, decrypted when necessary.
func (o *Opener) preflight(data []byte) ([]byte, *preflight, error) {
	pf, err := inspect(data)
	if err != nil {
		if isPasswordError(err) {
			return nil, nil, perrors.Wrap(perrors.KindEncrypted, err, "PDF is encrypted and requires a password")
		}
		// pdfcpu is stricter than the text library; let ledongthuc decide.
		o.log.WithError(err).Debug("pdfcpu preflight failed")
		return data, nil, nil
	}

	if !pf.encrypted {
		return data, pf, nil
	}

	plain, err := decrypt(data)
	if err != nil {
		if isPasswordError(err) {
			return nil, nil, perrors.Wrap(perrors.KindEncrypted, err, "PDF is encrypted and requires a password")
		}
		o.log.WithError(err).Debug("pdfcpu decrypt failed, leaving decryption to ledongthuc")
		return data, pf, nil
	}

	o.log.WithField("pages", pf.pageCount).Debug("opened encrypted PDF with empty password")
	return plain, pf, nil
}

func classifyOpenError(err error) error {
	var pe *panicError
	switch {
	case errors.As(err, &pe):
		return perrors.Wrap(perrors.KindStream, err, "PDF stream could not be read")
	case isPasswordError(err):
		return perrors.Wrap(perrors.KindEncrypted, err, "PDF is encrypted and requires a password")
	default:
		return perrors.Wrap(perrors.KindInvalidInput, err, "Invalid PDF file")
	}
}
