package reconstruct

import (
	"fmt"
	"math"
	"strings"
)

// Default paragraph segmentation thresholds, in page units (points).
const (
	DefaultParagraphGap = 7.0
	DefaultIndentDelta  = 18.0
	DefaultIndentMinGap = 2.0
)

// Thresholds are the tunable policy constants of paragraph segmentation.
type Thresholds struct {
	// ParagraphGap is the vertical gap above which a line always starts a
	// new paragraph.
	ParagraphGap float64 `json:"paragraph_gap"`

	// IndentDelta is the horizontal shift of the left edge that, together
	// with a vertical gap above IndentMinGap, starts a new paragraph.
	IndentDelta float64 `json:"indent_delta"`

	// IndentMinGap is the vertical gap an indented line needs before the
	// indent counts as a paragraph break.
	IndentMinGap float64 `json:"indent_min_gap"`
}

// DefaultThresholds returns the thresholds used when none are configured
func DefaultThresholds() Thresholds {
	return Thresholds{
		ParagraphGap: DefaultParagraphGap,
		IndentDelta:  DefaultIndentDelta,
		IndentMinGap: DefaultIndentMinGap,
	}
}

// Validate checks that every threshold is a positive finite number
func (t Thresholds) Validate() error {
	values := map[string]float64{
		"paragraph gap":  t.ParagraphGap,
		"indent delta":   t.IndentDelta,
		"indent min gap": t.IndentMinGap,
	}
	for name, v := range values {
		if v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
			return fmt.Errorf("%s must be a positive number, got %v", name, v)
		}
	}
	return nil
}

// Segmenter groups ordered lines into paragraphs.
type Segmenter struct {
	thresholds Thresholds
}

// NewSegmenter creates a segmenter with the given thresholds
func NewSegmenter(thresholds Thresholds) *Segmenter {
	return &Segmenter{thresholds: thresholds}
}

// Thresholds returns the segmenter's thresholds
func (s *Segmenter) Thresholds() Thresholds {
	return s.thresholds
}

// Paragraphs splits lines into paragraphs. Lines inside a paragraph are
// joined with a newline.
func (s *Segmenter) Paragraphs(lines []PositionedLine) []string {
	if len(lines) == 0 {
		return nil
	}

	var (
		paragraphs []string
		current    []string
		prevY1     float64
		prevX0     float64
	)

	for i, line := range lines {
		if i > 0 && s.breaksParagraph(line.Y0-prevY1, math.Abs(line.X0-prevX0)) {
			paragraphs = append(paragraphs, strings.Join(current, "\n"))
			current = current[:0:0]
		}
		current = append(current, line.Text)
		prevY1 = line.Y1
		prevX0 = line.X0
	}

	if len(current) > 0 {
		paragraphs = append(paragraphs, strings.Join(current, "\n"))
	}

	return paragraphs
}

// Segment returns the page text with paragraphs separated by a blank line.
// The boolean is false when there was nothing to segment.
func (s *Segmenter) Segment(lines []PositionedLine) (string, bool) {
	paragraphs := s.Paragraphs(lines)
	if len(paragraphs) == 0 {
		return "", false
	}
	text := strings.Join(paragraphs, "\n\n")
	return text, text != ""
}

// breaksParagraph reports whether a line separated from its predecessor by
// vgap and xdelta starts a new paragraph. A horizontal shift alone, with no
// meaningful vertical gap, does not.
func (s *Segmenter) breaksParagraph(vgap, xdelta float64) bool {
	if vgap > s.thresholds.ParagraphGap {
		return true
	}
	return xdelta > s.thresholds.IndentDelta && vgap > s.thresholds.IndentMinGap
}
