package wrapper

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/ledongthuc/pdf"

	perrors "github.com/a3tai/pdf-parser-service/internal/pdf/errors"
	"github.com/a3tai/pdf-parser-service/internal/pdf/reconstruct"
)

// LedongthucDocument implements Document using ledongthuc/pdf
type LedongthucDocument struct {
	mu     sync.Mutex // the reader is not safe for concurrent use
	reader *pdf.Reader
	info   Info
	pages  int
	closed bool
}

// openLedongthuc opens an in-memory PDF. Panics raised by the reader while
// parsing the cross-reference data or the page tree are returned as errors.
func openLedongthuc(data []byte) (doc *LedongthucDocument, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = &panicError{op: "open", value: r}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &WrapperError{
			Library: LibraryLedongthuc,
			Op:      "open",
			Err:     fmt.Errorf("failed to open PDF: %w", err),
		}
	}

	doc = &LedongthucDocument{reader: reader, pages: reader.NumPage()}
	doc.info = doc.readInfo()
	return doc, nil
}

// panicError marks a recovered panic inside the PDF library. Such failures
// come from the byte stream rather than the document structure.
type panicError struct {
	op    string
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("PDF %s library panic in %s: %v", LibraryLedongthuc, e.op, e.value)
}

func streamPanic(op string, value any) error {
	return perrors.Wrap(perrors.KindStream, &panicError{op: op, value: value}, "PDF stream could not be read")
}

// readInfo reads the trailer's Info dictionary. A malformed dictionary is
// not worth failing the parse for.
func (d *LedongthucDocument) readInfo() (info Info) {
	defer func() {
		if recover() != nil {
			info = Info{}
		}
	}()

	dict := d.reader.Trailer().Key("Info")
	if dict.IsNull() {
		return Info{}
	}
	return Info{
		Title:    dict.Key("Title").Text(),
		Author:   dict.Key("Author").Text(),
		Producer: dict.Key("Producer").Text(),
	}
}

// PageCount returns the number of pages in the document
func (d *LedongthucDocument) PageCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0
	}
	return d.pages
}

// Info returns the document information read at open time
func (d *LedongthucDocument) Info() Info {
	return d.info
}

// Close releases the reader. Closing twice is a no-op.
func (d *LedongthucDocument) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.reader = nil
	return nil
}

// page returns the 0-based page index as a ledongthuc page. Callers hold mu.
// Walking the page tree resolves indirect objects, and a broken object
// makes the reader panic; that is reported as a stream failure.
func (d *LedongthucDocument) page(ctx context.Context, op string, index int) (p pdf.Page, err error) {
	if err := ctx.Err(); err != nil {
		return pdf.Page{}, err
	}
	if d.closed {
		return pdf.Page{}, &WrapperError{Library: LibraryLedongthuc, Op: op, Err: ErrDocumentClosed.Err}
	}
	if index < 0 || index >= d.pages {
		return pdf.Page{}, &WrapperError{
			Library: LibraryLedongthuc,
			Op:      op,
			Err:     fmt.Errorf("%w %d (document has %d pages)", ErrInvalidPage.Err, index+1, d.pages),
		}
	}

	defer func() {
		if r := recover(); r != nil {
			p = pdf.Page{}
			err = streamPanic(op, r)
		}
	}()

	return d.reader.Page(index + 1), nil
}

// PositionedSpans groups the page's glyphs into lines and blocks
func (d *LedongthucDocument) PositionedSpans(ctx context.Context, index int) (blocks []reconstruct.Block, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.page(ctx, "positioned_spans", index)
	if err != nil {
		return nil, err
	}
	if p.V.IsNull() {
		return nil, nil
	}

	defer func() {
		if r := recover(); r != nil {
			blocks = nil
			err = unavailable(LibraryLedongthuc, "positioned_spans", r)
		}
	}()

	return positionedBlocks(p.Content(), pageTop(p)), nil
}

// Blocks returns one text block per row reported by the library, plus
// drawing blocks for rectangles.
func (d *LedongthucDocument) Blocks(ctx context.Context, index int) (blocks []reconstruct.Block, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.page(ctx, "blocks", index)
	if err != nil {
		return nil, err
	}
	if p.V.IsNull() {
		return nil, nil
	}

	defer func() {
		if r := recover(); r != nil {
			blocks = nil
			err = unavailable(LibraryLedongthuc, "blocks", r)
		}
	}()

	rows, err := p.GetTextByRow()
	if err != nil {
		return nil, unavailable(LibraryLedongthuc, "blocks", err)
	}

	top := pageTop(p)
	for _, row := range rows {
		if b, ok := rowBlock(row, top); ok {
			blocks = append(blocks, b)
		}
	}
	return blocks, nil
}

// PlainText returns the library's linear text for the page. A reader panic
// is reported as a stream failure.
func (d *LedongthucDocument) PlainText(ctx context.Context, index int) (text string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.page(ctx, "plain_text", index)
	if err != nil {
		return "", err
	}
	if p.V.IsNull() {
		return "", nil
	}

	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = streamPanic("plain_text", r)
		}
	}()

	text, err = p.GetPlainText(nil)
	if err != nil {
		return "", &WrapperError{
			Library: LibraryLedongthuc,
			Op:      "plain_text",
			Err:     fmt.Errorf("failed to extract text: %w", err),
		}
	}
	return text, nil
}
