package reconstruct

import (
	"sort"
	"strings"
)

// AssembleLine orders the spans of one line by horizontal origin and
// concatenates their text. Span boundaries already carry intra-line
// whitespace, so no separator is inserted.
func AssembleLine(raw RawLine) Line {
	spans := make([]GlyphSpan, len(raw.Spans))
	copy(spans, raw.Spans)
	sort.SliceStable(spans, func(i, j int) bool {
		return spans[i].OriginX < spans[j].OriginX
	})

	var b strings.Builder
	for _, sp := range spans {
		b.WriteString(sp.Text)
	}

	return Line{BBox: raw.BBox, Text: b.String()}
}

// SortBlocks orders blocks top-to-bottom, then left-to-right, in place.
func SortBlocks(blocks []Block) {
	sort.SliceStable(blocks, func(i, j int) bool {
		return readingOrderLess(blocks[i].BBox.Y0, blocks[i].BBox.X0, blocks[j].BBox.Y0, blocks[j].BBox.X0)
	})
}

// CollectLines gathers every non-empty line of every text block on a page
// into one collection ordered by reading position. The boolean is false
// when the page produced no lines at all.
func CollectLines(blocks []Block) ([]PositionedLine, bool) {
	ordered := make([]Block, len(blocks))
	copy(ordered, blocks)
	SortBlocks(ordered)

	var collected []PositionedLine
	for _, block := range ordered {
		if !block.Type.IsText() {
			continue
		}
		for _, raw := range block.Lines {
			if len(raw.Spans) == 0 {
				continue
			}
			line := AssembleLine(raw)
			if line.Text == "" {
				continue
			}
			collected = append(collected, PositionedLine{
				Y0:   line.BBox.Y0,
				Y1:   line.BBox.Y1,
				X0:   line.BBox.X0,
				Text: line.Text,
			})
		}
	}

	if len(collected) == 0 {
		return nil, false
	}

	// Block order alone does not interleave lines of vertically
	// overlapping blocks (columns) correctly.
	sort.SliceStable(collected, func(i, j int) bool {
		return readingOrderLess(collected[i].Y0, collected[i].X0, collected[j].Y0, collected[j].X0)
	})

	return collected, true
}

// JoinBlockText joins the text of text-type blocks in reading order.
func JoinBlockText(blocks []Block) string {
	ordered := make([]Block, len(blocks))
	copy(ordered, blocks)
	SortBlocks(ordered)

	texts := make([]string, 0, len(ordered))
	for _, block := range ordered {
		if !block.Type.IsText() || block.Text == "" {
			continue
		}
		texts = append(texts, block.Text)
	}
	return strings.Join(texts, "\n")
}
