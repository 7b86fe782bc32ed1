package pdf

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/a3tai/pdf-parser-service/internal/pdf/reconstruct"
	"github.com/a3tai/pdf-parser-service/internal/pdf/wrapper"
)

// fakePage scripts the three fidelity queries of one page.
type fakePage struct {
	positioned    []reconstruct.Block
	positionedErr error
	blocks        []reconstruct.Block
	blocksErr     error
	plain         string
	plainErr      error
}

type fakeDocument struct {
	pages  []fakePage
	info   wrapper.Info
	closed atomic.Int32
}

func (d *fakeDocument) PositionedSpans(ctx context.Context, page int) ([]reconstruct.Block, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return d.pages[page].positioned, d.pages[page].positionedErr
}

func (d *fakeDocument) Blocks(ctx context.Context, page int) ([]reconstruct.Block, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return d.pages[page].blocks, d.pages[page].blocksErr
}

func (d *fakeDocument) PlainText(ctx context.Context, page int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return d.pages[page].plain, d.pages[page].plainErr
}

func (d *fakeDocument) PageCount() int    { return len(d.pages) }
func (d *fakeDocument) Info() wrapper.Info { return d.info }

func (d *fakeDocument) Close() error {
	d.closed.Add(1)
	return nil
}

// fakeOpener hands out one scripted result per Open call.
type fakeOpener struct {
	mu      sync.Mutex
	results []openResult
	data    [][]byte
}

type openResult struct {
	doc *fakeDocument
	err error
}

func (o *fakeOpener) Open(_ context.Context, data []byte) (wrapper.Document, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.data = append(o.data, data)
	r := o.results[0]
	if len(o.results) > 1 {
		o.results = o.results[1:]
	}
	if r.err != nil {
		return nil, r.err
	}
	return r.doc, nil
}

func (o *fakeOpener) calls() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.data)
}

func openerFor(docs ...*fakeDocument) *fakeOpener {
	o := &fakeOpener{}
	for _, d := range docs {
		o.results = append(o.results, openResult{doc: d})
	}
	return o
}

// column builds a positioned block whose lines are 12pt apart.
func column(x0, y0 float64, lines ...string) reconstruct.Block {
	b := reconstruct.Block{Type: reconstruct.BlockText}
	for i, text := range lines {
		top := y0 + float64(i)*12
		b.Lines = append(b.Lines, reconstruct.RawLine{
			BBox:  reconstruct.BBox{X0: x0, Y0: top, X1: x0 + 200, Y1: top + 10},
			Spans: []reconstruct.GlyphSpan{{Text: text, OriginX: x0}},
		})
	}
	b.BBox = reconstruct.BBox{X0: x0, Y0: y0, X1: x0 + 200, Y1: y0 + float64(len(lines))*12}
	return b
}

type recordingObserver struct {
	mu        sync.Mutex
	pages     []reconstruct.PageEvent
	fallbacks []reconstruct.FallbackEvent
}

func (r *recordingObserver) PageProcessed(e reconstruct.PageEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages = append(r.pages, e)
}

func (r *recordingObserver) TierFallback(e reconstruct.FallbackEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallbacks = append(r.fallbacks, e)
}
