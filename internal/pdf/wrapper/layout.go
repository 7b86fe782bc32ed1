package wrapper

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/a3tai/pdf-parser-service/internal/pdf/reconstruct"
)

// Geometry used to turn ledongthuc glyphs into lines and blocks. Factors
// are relative to the font size.
const (
	defaultPageTop  = 792.0 // US Letter
	defaultFontSize = 10.0

	lineTolerance = 0.3 // baseline distance still on the same row
	wordGap       = 0.2 // horizontal gap that separates two words
	columnGap     = 2.5 // horizontal gap that splits a row into two lines
	blockGap      = 1.2 // vertical gap, in line heights, that continues a block
)

// glyph is a ledongthuc text element in PDF space (Y grows upward).
type glyph struct {
	x, y, w, size float64
	s             string
}

func toGlyph(t pdf.Text) (glyph, bool) {
	if strings.Trim(t.S, "\r\n") == "" {
		return glyph{}, false
	}
	size := t.FontSize
	if size <= 0 {
		size = defaultFontSize
	}
	w := t.W
	if w <= 0 {
		w = 0.5 * size * float64(utf8.RuneCountInString(t.S))
	}
	return glyph{x: t.X, y: t.Y, w: w, size: size, s: t.S}, true
}

func (g glyph) right() float64 {
	return g.x + g.w
}

// separated reports whether a word boundary lies between a and b.
func separated(a, b glyph) bool {
	return b.x-a.right() > wordGap*math.Max(a.size, b.size)
}

// pageTop returns the top edge of the page's MediaBox, following the
// Parent chain for inherited boxes.
func pageTop(p pdf.Page) float64 {
	for v := p.V; !v.IsNull(); v = v.Key("Parent") {
		box := v.Key("MediaBox")
		if box.Len() == 4 {
			return math.Max(box.Index(1).Float64(), box.Index(3).Float64())
		}
	}
	return defaultPageTop
}

// groupRows clusters glyphs sharing a baseline, top row first, each row
// ordered left to right.
func groupRows(texts []pdf.Text) [][]glyph {
	glyphs := make([]glyph, 0, len(texts))
	for _, t := range texts {
		if g, ok := toGlyph(t); ok {
			glyphs = append(glyphs, g)
		}
	}
	sort.SliceStable(glyphs, func(i, j int) bool {
		if glyphs[i].y != glyphs[j].y {
			return glyphs[i].y > glyphs[j].y
		}
		return glyphs[i].x < glyphs[j].x
	})

	var (
		rows [][]glyph
		rowY float64
	)
	for _, g := range glyphs {
		tol := math.Max(1, lineTolerance*g.size)
		if len(rows) > 0 && math.Abs(rowY-g.y) <= tol {
			rows[len(rows)-1] = append(rows[len(rows)-1], g)
			continue
		}
		rows = append(rows, []glyph{g})
		rowY = g.y
	}

	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].x < row[j].x })
	}
	return rows
}

// lineBuilder accumulates glyphs of one line into word spans.
type lineBuilder struct {
	spans   []reconstruct.GlyphSpan
	word    strings.Builder
	wordX   float64
	x0, x1  float64
	lowY    float64
	highTop float64
}

func newLineBuilder(g glyph) *lineBuilder {
	b := &lineBuilder{wordX: g.x, x0: g.x, x1: g.right(), lowY: g.y, highTop: g.y + g.size}
	b.word.WriteString(g.s)
	return b
}

func (b *lineBuilder) extend(g glyph) {
	b.x1 = math.Max(b.x1, g.right())
	b.lowY = math.Min(b.lowY, g.y)
	b.highTop = math.Max(b.highTop, g.y+g.size)
}

func (b *lineBuilder) add(g glyph) {
	b.word.WriteString(g.s)
	b.extend(g)
}

// startWord closes the current span. The span keeps a trailing space so
// that concatenating spans restores the word boundary.
func (b *lineBuilder) startWord(g glyph) {
	text := b.word.String()
	if !strings.HasSuffix(text, " ") && !strings.HasPrefix(g.s, " ") {
		text += " "
	}
	b.spans = append(b.spans, reconstruct.GlyphSpan{Text: text, OriginX: b.wordX})
	b.word.Reset()
	b.word.WriteString(g.s)
	b.wordX = g.x
	b.extend(g)
}

func (b *lineBuilder) line(top float64) (reconstruct.RawLine, bool) {
	spans := b.spans
	if b.word.Len() > 0 {
		spans = append(spans, reconstruct.GlyphSpan{Text: b.word.String(), OriginX: b.wordX})
	}

	blank := true
	for _, sp := range spans {
		if strings.TrimSpace(sp.Text) != "" {
			blank = false
			break
		}
	}
	if blank {
		return reconstruct.RawLine{}, false
	}

	return reconstruct.RawLine{
		BBox: reconstruct.BBox{
			X0: b.x0,
			Y0: top - b.highTop,
			X1: b.x1,
			Y1: top - b.lowY,
		},
		Spans: spans,
	}, true
}

// rowLines splits one row into lines at column gutters.
func rowLines(row []glyph, top float64) []reconstruct.RawLine {
	var (
		lines []reconstruct.RawLine
		cur   *lineBuilder
	)
	flush := func() {
		if cur == nil {
			return
		}
		if l, ok := cur.line(top); ok {
			lines = append(lines, l)
		}
	}

	for i, g := range row {
		if cur == nil {
			cur = newLineBuilder(g)
			continue
		}
		prev := row[i-1]
		gap := g.x - prev.right()
		switch {
		case gap > columnGap*math.Max(prev.size, g.size):
			flush()
			cur = newLineBuilder(g)
		case separated(prev, g):
			cur.startWord(g)
		default:
			cur.add(g)
		}
	}
	flush()
	return lines
}

// positionedBlocks builds text blocks from glyphs and drawing blocks from
// rectangles, all in top-down page coordinates.
func positionedBlocks(content pdf.Content, top float64) []reconstruct.Block {
	var lines []reconstruct.RawLine
	for _, row := range groupRows(content.Text) {
		lines = append(lines, rowLines(row, top)...)
	}

	blocks := groupBlocks(lines)
	return append(blocks, rectBlocks(content.Rect, top)...)
}

func overlapsX(a, b reconstruct.BBox) bool {
	return a.X0 < b.X1 && b.X0 < a.X1
}

// groupBlocks merges vertically adjacent, horizontally overlapping lines
// into text blocks.
func groupBlocks(lines []reconstruct.RawLine) []reconstruct.Block {
	sorted := make([]reconstruct.RawLine, len(lines))
	copy(sorted, lines)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].BBox.Y0 != sorted[j].BBox.Y0 {
			return sorted[i].BBox.Y0 < sorted[j].BBox.Y0
		}
		return sorted[i].BBox.X0 < sorted[j].BBox.X0
	})

	var blocks []reconstruct.Block
	for _, l := range sorted {
		height := l.BBox.Y1 - l.BBox.Y0
		joined := false
		for i := len(blocks) - 1; i >= 0; i-- {
			b := &blocks[i]
			last := b.Lines[len(b.Lines)-1].BBox
			gap := l.BBox.Y0 - last.Y1
			if !overlapsX(b.BBox, l.BBox) || gap > blockGap*height || l.BBox.Y0 < last.Y0 {
				continue
			}
			b.Lines = append(b.Lines, l)
			b.BBox = union(b.BBox, l.BBox)
			joined = true
			break
		}
		if !joined {
			blocks = append(blocks, reconstruct.Block{
				BBox:  l.BBox,
				Type:  reconstruct.BlockText,
				Lines: []reconstruct.RawLine{l},
			})
		}
	}
	return blocks
}

func union(a, b reconstruct.BBox) reconstruct.BBox {
	return reconstruct.BBox{
		X0: math.Min(a.X0, b.X0),
		Y0: math.Min(a.Y0, b.Y0),
		X1: math.Max(a.X1, b.X1),
		Y1: math.Max(a.Y1, b.Y1),
	}
}

func rectBlocks(rects []pdf.Rect, top float64) []reconstruct.Block {
	blocks := make([]reconstruct.Block, 0, len(rects))
	for _, r := range rects {
		blocks = append(blocks, reconstruct.Block{
			BBox: reconstruct.BBox{
				X0: math.Min(r.Min.X, r.Max.X),
				Y0: top - math.Max(r.Min.Y, r.Max.Y),
				X1: math.Max(r.Min.X, r.Max.X),
				Y1: top - math.Min(r.Min.Y, r.Max.Y),
			},
			Type: reconstruct.BlockDrawing,
		})
	}
	return blocks
}

// rowBlock turns one GetTextByRow row into a text block. Empty elements in
// a row mark word boundaries.
func rowBlock(row *pdf.Row, top float64) (reconstruct.Block, bool) {
	var (
		b       strings.Builder
		prev    glyph
		started bool
		pending bool
		bbox    reconstruct.BBox
	)

	for _, t := range row.Content {
		g, ok := toGlyph(t)
		if !ok {
			pending = started
			continue
		}
		gb := reconstruct.BBox{X0: g.x, Y0: top - (g.y + g.size), X1: g.right(), Y1: top - g.y}
		if !started {
			bbox = gb
			started = true
		} else {
			if (pending || separated(prev, g)) &&
				!strings.HasSuffix(b.String(), " ") && !strings.HasPrefix(g.s, " ") {
				b.WriteByte(' ')
			}
			bbox = union(bbox, gb)
		}
		b.WriteString(g.s)
		prev = g
		pending = false
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return reconstruct.Block{}, false
	}
	return reconstruct.Block{BBox: bbox, Type: reconstruct.BlockText, Text: text}, true
}
