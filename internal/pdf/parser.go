package pdf

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	perrors "github.com/a3tai/pdf-parser-service/internal/pdf/errors"
	"github.com/a3tai/pdf-parser-service/internal/pdf/reconstruct"
	"github.com/a3tai/pdf-parser-service/internal/pdf/wrapper"
)

// DocumentOpener opens document bytes for extraction
type DocumentOpener interface {
	Open(ctx context.Context, data []byte) (wrapper.Document, error)
}

// ParserOption configures a Parser
type ParserOption func(*Parser)

// WithOpener replaces the default ledongthuc/pdfcpu opener
func WithOpener(o DocumentOpener) ParserOption {
	return func(p *Parser) {
		p.opener = o
	}
}

// WithObserver replaces the default logging observer
func WithObserver(o reconstruct.Observer) ParserOption {
	return func(p *Parser) {
		p.observer = o
	}
}

// WithLogger sets the logger used for parse-level events
func WithLogger(log *logrus.Entry) ParserOption {
	return func(p *Parser) {
		p.log = log
	}
}

// Parser turns PDF bytes into reconstructed page text. A Parser is safe for
// concurrent use; every call opens and owns its own document.
type Parser struct {
	config     ParserConfig
	opener     DocumentOpener
	observer   reconstruct.Observer
	normalizer reconstruct.Normalizer
	log        *logrus.Entry
}

// NewParser creates a parser with the given configuration
func NewParser(config ParserConfig, opts ...ParserOption) (*Parser, error) {
	if err := config.Thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid thresholds: %w", err)
	}
	if config.Workers < 1 {
		return nil, fmt.Errorf("workers must be at least 1, got %d", config.Workers)
	}

	p := &Parser{
		config:     config,
		normalizer: reconstruct.Normalizer{UnicodeNFC: config.UnicodeNFC},
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.log == nil {
		p.log = logrus.NewEntry(logrus.StandardLogger())
	}
	if p.opener == nil {
		p.opener = wrapper.NewOpener(wrapper.OpenerConfig{Logger: p.log})
	}
	if p.observer == nil {
		p.observer = NewLogObserver(p.log)
	}
	return p, nil
}

// Config returns the parser configuration
func (p *Parser) Config() ParserConfig {
	return p.config
}

type loggerKey struct{}

// ContextWithLogger attaches a request-scoped log entry. Parse-level events
// of calls made with the returned context are logged through it.
func ContextWithLogger(ctx context.Context, log *logrus.Entry) context.Context {
	return context.WithValue(ctx, loggerKey{}, log)
}

func (p *Parser) logger(ctx context.Context) *logrus.Entry {
	if log, ok := ctx.Value(loggerKey{}).(*logrus.Entry); ok && log != nil {
		return log
	}
	return p.log
}

// extraction is the raw, unnormalized output of one document pass.
type extraction struct {
	pages    []reconstruct.Extraction
	info     wrapper.Info
	degraded bool
}

// Parse reconstructs the text of every page. Either every page succeeds
// or the parse fails with a *errors.ParseError and no partial result.
func (p *Parser) Parse(ctx context.Context, req ParseRequest) (*ParseResult, error) {
	log := p.logger(ctx).WithField("filename", req.Filename)
	start := time.Now()

	ex, err := p.extract(ctx, log, req.Data, true)
	if err != nil {
		log.WithError(err).Warn("PDF parse failed")
		return nil, err
	}

	result := &ParseResult{
		Pages: make([]Page, len(ex.pages)),
		Metadata: Metadata{
			PageCount: len(ex.pages),
			Filename:  req.Filename,
			FileSize:  int64(len(req.Data)),
			Title:     ex.info.Title,
			Author:    ex.info.Author,
			Producer:  ex.info.Producer,
			Version:   ex.info.Version,
			Encrypted: ex.info.Encrypted,
			Degraded:  ex.degraded,
			Tiers:     make(map[string]int),
		},
	}

	var all strings.Builder
	for i, page := range ex.pages {
		text := p.normalizer.Normalize(page.Text)
		result.Pages[i] = Page{PageNumber: i + 1, Text: text}
		result.Metadata.Tiers[page.Tier.String()]++

		all.WriteString(text)
		all.WriteByte('\n')
	}
	result.Text = p.normalizer.Normalize(all.String())

	log.WithFields(logrus.Fields{
		"pages":    result.Metadata.PageCount,
		"degraded": ex.degraded,
		"duration": time.Since(start),
	}).Info("PDF parsed")
	return result, nil
}

// ParseTextOnly returns the document text without per-page results. Page
// texts are concatenated as extracted and normalized once. A stream failure
// is retried with the full tier sequence rather than plain text only.
func (p *Parser) ParseTextOnly(ctx context.Context, req ParseRequest) (*TextOnlyResult, error) {
	log := p.logger(ctx).WithField("filename", req.Filename)

	ex, err := p.extract(ctx, log, req.Data, false)
	if err != nil {
		log.WithError(err).Warn("PDF text-only parse failed")
		return nil, err
	}

	var all strings.Builder
	for _, page := range ex.pages {
		all.WriteString(page.Text)
		all.WriteByte('\n')
	}

	log.WithField("pages", len(ex.pages)).Info("PDF parsed (text only)")
	return &TextOnlyResult{
		Text:      p.normalizer.Normalize(all.String()),
		PageCount: len(ex.pages),
		Filename:  req.Filename,
	}, nil
}

// extract runs the primary pass and, when it fails on the byte stream,
// exactly one more pass over a fresh copy of the bytes. The retry is
// plain-text only when retryPlainOnly is set.
func (p *Parser) extract(ctx context.Context, log *logrus.Entry, data []byte, retryPlainOnly bool) (*extraction, error) {
	var (
		result  *extraction
		attempt int
	)

	op := func() error {
		degraded := attempt > 0
		attempt++

		buf := data
		if degraded {
			buf = make([]byte, len(data))
			copy(buf, data)
		}

		ex, err := p.extractDocument(ctx, buf, degraded && retryPlainOnly)
		if err != nil {
			if perrors.KindOf(err).Retryable() {
				return err
			}
			return backoff.Permanent(err)
		}
		ex.degraded = degraded
		result = ex
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 1), ctx)
	notify := func(err error, _ time.Duration) {
		if retryPlainOnly {
			log.WithError(err).Warn("PDF stream error, retrying with plain text extraction")
			return
		}
		log.WithError(err).Warn("PDF stream error, retrying on a fresh copy")
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return nil, classify(ctx, err)
	}
	return result, nil
}

// extractDocument opens data and extracts every page. Pages run on at most
// Workers goroutines; results land in page order regardless.
func (p *Parser) extractDocument(ctx context.Context, data []byte, plainOnly bool) (*extraction, error) {
	doc, err := p.opener.Open(ctx, data)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	opts := []reconstruct.SelectorOption{reconstruct.WithObserver(p.observer)}
	if plainOnly {
		opts = append(opts, reconstruct.WithPlainOnly())
	}
	selector := reconstruct.NewSelector(p.config.Thresholds, opts...)

	pages := make([]reconstruct.Extraction, doc.PageCount())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.Workers)
	for i := range pages {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			ex, err := selector.Extract(gctx, doc, i)
			if err != nil {
				return pageError(i, err)
			}
			pages[i] = ex
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, perrors.Wrap(perrors.KindCanceled, err, "parse canceled")
	}

	return &extraction{pages: pages, info: doc.Info()}, nil
}

func pageError(index int, err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return perrors.Wrap(perrors.KindCanceled, err, "parse canceled").WithPage(index + 1)
	case perrors.Is(err, perrors.KindStream):
		return perrors.Wrap(perrors.KindStream, err, "PDF stream could not be read").WithPage(index + 1)
	default:
		return perrors.Wrap(perrors.KindPageExtraction, err, "Failed to extract text").WithPage(index + 1)
	}
}

// classify makes sure every failure leaving the parser is a ParseError.
func classify(ctx context.Context, err error) error {
	var pe *perrors.ParseError
	if errors.As(err, &pe) {
		return err
	}
	if ctx.Err() != nil {
		return perrors.Wrap(perrors.KindCanceled, err, "parse canceled")
	}
	return perrors.Wrap(perrors.KindInternal, err, "PDF parse failed")
}
