// Package reconstruct rebuilds readable page text from positioned text
// fragments reported by a PDF decoding backend.
package reconstruct

import "math"

// BBox is an axis-aligned box in page space. The origin is the top-left
// corner of the page and Y grows downward.
type BBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// GlyphSpan is a run of text sharing one rendering origin.
type GlyphSpan struct {
	Text    string  `json:"text"`
	OriginX float64 `json:"origin_x"`
}

// RawLine is a backend line whose spans have not been ordered yet.
type RawLine struct {
	BBox  BBox        `json:"bbox"`
	Spans []GlyphSpan `json:"spans"`
}

// Line is an assembled visual text line.
type Line struct {
	BBox BBox   `json:"bbox"`
	Text string `json:"text"`
}

// BlockType classifies a region of a page.
type BlockType int

const (
	BlockUnspecified BlockType = -1
	BlockText        BlockType = 0
	BlockImage       BlockType = 1
	BlockDrawing     BlockType = 2
)

// String returns a string representation of the block type
func (t BlockType) String() string {
	switch t {
	case BlockText:
		return "text"
	case BlockImage:
		return "image"
	case BlockDrawing:
		return "drawing"
	default:
		return "unspecified"
	}
}

// IsText reports whether blocks of this type contribute text. Unspecified
// blocks are treated as text.
func (t BlockType) IsText() bool {
	return t == BlockText || t == BlockUnspecified
}

// Block is a structural region of a page. Positioned queries fill Lines,
// block-level queries fill Text.
type Block struct {
	BBox  BBox      `json:"bbox"`
	Type  BlockType `json:"type"`
	Lines []RawLine `json:"lines,omitempty"`
	Text  string    `json:"text,omitempty"`
}

// PositionedLine is one entry of a page's ordered line collection.
type PositionedLine struct {
	Y0   float64
	Y1   float64
	X0   float64
	Text string
}

// round1 rounds to one decimal place so that visually co-linear fragments
// with sub-pixel jitter compare equal.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// readingOrderLess orders by top edge, then left edge, both rounded.
func readingOrderLess(y0a, x0a, y0b, x0b float64) bool {
	ya, yb := round1(y0a), round1(y0b)
	if ya != yb {
		return ya < yb
	}
	return round1(x0a) < round1(x0b)
}
