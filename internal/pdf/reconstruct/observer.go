package reconstruct

import "time"

// PageEvent describes one page leaving the strategy selector.
type PageEvent struct {
	Page      int           // 1-based page number
	Tier      Tier          // tier that produced the text
	Fallbacks []Tier        // tiers that were tried and skipped
	Chars     int           // length of the raw page text in bytes
	Duration  time.Duration // time spent in the selector
}

// FallbackEvent describes a tier that could not produce text for a page.
type FallbackEvent struct {
	Page   int
	From   Tier
	To     Tier
	Reason string
}

// Observer receives extraction events. Implementations must be safe for
// concurrent use when pages are extracted in parallel.
type Observer interface {
	PageProcessed(PageEvent)
	TierFallback(FallbackEvent)
}

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) PageProcessed(PageEvent)    {}
func (NopObserver) TierFallback(FallbackEvent) {}
