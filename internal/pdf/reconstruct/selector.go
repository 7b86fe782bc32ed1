package reconstruct

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrFidelityUnavailable is returned (possibly wrapped) by a PageSource that
// cannot supply the requested fidelity for a page. The selector recovers
// from it by falling back to the next tier.
var ErrFidelityUnavailable = errors.New("fidelity unavailable")

// PageSource is the decoding backend seen by the selector. Page indexes are
// 0-based.
type PageSource interface {
	// PositionedSpans returns blocks with their lines and glyph spans.
	PositionedSpans(ctx context.Context, page int) ([]Block, error)
	// Blocks returns blocks carrying their joined text.
	Blocks(ctx context.Context, page int) ([]Block, error)
	// PlainText returns the backend's best-effort linear text.
	PlainText(ctx context.Context, page int) (string, error)
}

// Tier is one fidelity level of extraction.
type Tier int

const (
	TierRich Tier = iota
	TierBlock
	TierPlain
)

// String returns a string representation of the tier
func (t Tier) String() string {
	switch t {
	case TierRich:
		return "rich"
	case TierBlock:
		return "block"
	case TierPlain:
		return "plain"
	default:
		return "unknown"
	}
}

type tierStatus int

const (
	statusOK tierStatus = iota
	statusEmpty
	statusUnavailable
)

// tierResult is the outcome of one tier: either text or the reason the
// selector has to move on.
type tierResult struct {
	text   string
	status tierStatus
	reason string
}

// Extraction is the selector's output for one page. Text is not normalized.
type Extraction struct {
	Text      string
	Tier      Tier
	Fallbacks []Tier
}

// SelectorOption configures a Selector.
type SelectorOption func(*Selector)

// WithObserver sets the observer receiving page and fallback events
func WithObserver(o Observer) SelectorOption {
	return func(s *Selector) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithPlainOnly skips the rich and block tiers.
func WithPlainOnly() SelectorOption {
	return func(s *Selector) {
		s.plainOnly = true
	}
}

// Selector runs the rich → block → plain fallback chain for one page.
type Selector struct {
	segmenter *Segmenter
	observer  Observer
	plainOnly bool
}

// NewSelector creates a selector using the given paragraph thresholds
func NewSelector(thresholds Thresholds, opts ...SelectorOption) *Selector {
	s := &Selector{
		segmenter: NewSegmenter(thresholds),
		observer:  NopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Extract returns the text of page (0-based). Fidelity-unavailable
// conditions and empty tiers fall through to the next tier; any other
// backend error is returned.
func (s *Selector) Extract(ctx context.Context, src PageSource, page int) (Extraction, error) {
	start := time.Now()
	tier := TierRich
	if s.plainOnly {
		tier = TierPlain
	}

	var fallbacks []Tier
	for {
		if err := ctx.Err(); err != nil {
			return Extraction{}, err
		}

		var (
			res tierResult
			err error
		)
		switch tier {
		case TierRich:
			res, err = s.rich(ctx, src, page)
		case TierBlock:
			res, err = s.block(ctx, src, page)
		default:
			res, err = s.plain(ctx, src, page)
		}
		if err != nil {
			return Extraction{}, fmt.Errorf("%s tier: %w", tier, err)
		}

		if res.status == statusOK || tier == TierPlain {
			ex := Extraction{Text: res.text, Tier: tier, Fallbacks: fallbacks}
			s.observer.PageProcessed(PageEvent{
				Page:      page + 1,
				Tier:      tier,
				Fallbacks: fallbacks,
				Chars:     len(res.text),
				Duration:  time.Since(start),
			})
			return ex, nil
		}

		next := tier + 1
		s.observer.TierFallback(FallbackEvent{Page: page + 1, From: tier, To: next, Reason: res.reason})
		fallbacks = append(fallbacks, tier)
		tier = next
	}
}

func (s *Selector) rich(ctx context.Context, src PageSource, page int) (tierResult, error) {
	blocks, err := src.PositionedSpans(ctx, page)
	if err != nil {
		if errors.Is(err, ErrFidelityUnavailable) {
			return tierResult{status: statusUnavailable, reason: err.Error()}, nil
		}
		return tierResult{}, err
	}

	lines, ok := CollectLines(blocks)
	if !ok {
		return tierResult{status: statusEmpty, reason: "no positioned lines"}, nil
	}
	text, ok := s.segmenter.Segment(lines)
	if !ok {
		return tierResult{status: statusEmpty, reason: "no paragraphs"}, nil
	}
	return tierResult{text: text, status: statusOK}, nil
}

func (s *Selector) block(ctx context.Context, src PageSource, page int) (tierResult, error) {
	blocks, err := src.Blocks(ctx, page)
	if err != nil {
		if errors.Is(err, ErrFidelityUnavailable) {
			return tierResult{status: statusUnavailable, reason: err.Error()}, nil
		}
		return tierResult{}, err
	}

	text := JoinBlockText(blocks)
	if text == "" {
		return tierResult{status: statusEmpty, reason: "no text blocks"}, nil
	}
	return tierResult{text: text, status: statusOK}, nil
}

func (s *Selector) plain(ctx context.Context, src PageSource, page int) (tierResult, error) {
	text, err := src.PlainText(ctx, page)
	if err != nil {
		return tierResult{}, err
	}
	return tierResult{text: text, status: statusOK}, nil
}
