package pdf

import (
	"github.com/sirupsen/logrus"

	"github.com/a3tai/pdf-parser-service/internal/pdf/reconstruct"
)

// LogObserver writes extraction events to a logrus entry at debug level.
type LogObserver struct {
	log *logrus.Entry
}

// NewLogObserver creates an observer logging through log
func NewLogObserver(log *logrus.Entry) *LogObserver {
	return &LogObserver{log: log}
}

// PageProcessed logs the tier that produced a page's text
func (o *LogObserver) PageProcessed(e reconstruct.PageEvent) {
	o.log.WithFields(logrus.Fields{
		"page":      e.Page,
		"tier":      e.Tier.String(),
		"fallbacks": len(e.Fallbacks),
		"chars":     e.Chars,
		"duration":  e.Duration,
	}).Debug("page extracted")
}

// TierFallback logs why a tier was skipped
func (o *LogObserver) TierFallback(e reconstruct.FallbackEvent) {
	o.log.WithFields(logrus.Fields{
		"page":   e.Page,
		"tier":   e.From.String(),
		"next":   e.To.String(),
		"reason": e.Reason,
	}).Debug("extraction tier unavailable")
}
