package wrapper

import (
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/pdf-parser-service/internal/pdf/reconstruct"
)

func word(x, y, w float64, s string) pdf.Text {
	return pdf.Text{Font: "Helvetica", FontSize: 10, X: x, Y: y, W: w, S: s}
}

func TestToGlyph(t *testing.T) {
	tests := []struct {
		name  string
		text  pdf.Text
		ok    bool
		width float64
		size  float64
	}{
		{name: "regular", text: word(10, 10, 6, "a"), ok: true, width: 6, size: 10},
		{name: "newline only", text: word(10, 10, 6, "\n"), ok: false},
		{name: "empty", text: word(10, 10, 6, ""), ok: false},
		{name: "missing width", text: word(10, 10, 0, "ab"), ok: true, width: 10, size: 10},
		{name: "missing font size", text: pdf.Text{X: 1, Y: 1, W: 3, S: "x"}, ok: true, width: 3, size: defaultFontSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, ok := toGlyph(tt.text)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.width, g.w)
				assert.Equal(t, tt.size, g.size)
			}
		})
	}
}

func TestGroupRows(t *testing.T) {
	rows := groupRows([]pdf.Text{
		word(90, 686, 20, "Next"),
		word(78, 700.5, 3, "i"),
		word(72, 700, 6, "H"),
		word(72, 686, 18, "Row"),
	})

	require.Len(t, rows, 2)
	require.Len(t, rows[0], 2)
	assert.Equal(t, "H", rows[0][0].s)
	assert.Equal(t, "i", rows[0][1].s)
	require.Len(t, rows[1], 2)
	assert.Equal(t, "Row", rows[1][0].s)
	assert.Equal(t, "Next", rows[1][1].s)
}

func TestRowLines(t *testing.T) {
	row := groupRows([]pdf.Text{
		word(72, 700, 6, "H"),
		word(78, 700, 3, "i"),
		word(85, 700, 25, "there"),
		word(300, 700, 25, "Right"),
	})[0]

	lines := rowLines(row, defaultPageTop)
	require.Len(t, lines, 2)

	left := reconstruct.AssembleLine(lines[0])
	assert.Equal(t, "Hi there", left.Text)
	assert.Equal(t, 72.0, left.BBox.X0)
	assert.Equal(t, 110.0, left.BBox.X1)
	assert.Equal(t, 82.0, left.BBox.Y0)
	assert.Equal(t, 92.0, left.BBox.Y1)

	right := reconstruct.AssembleLine(lines[1])
	assert.Equal(t, "Right", right.Text)
	assert.Equal(t, 300.0, right.BBox.X0)
}

func TestPositionedBlocks(t *testing.T) {
	content := pdf.Content{
		Text: []pdf.Text{
			word(72, 700, 40, "Left"),
			word(300, 700, 40, "Right"),
			word(72, 686, 40, "below"),
			word(72, 500, 40, "far"),
		},
		Rect: []pdf.Rect{{Min: pdf.Point{X: 50, Y: 100}, Max: pdf.Point{X: 60, Y: 90}}},
	}

	blocks := positionedBlocks(content, defaultPageTop)
	require.Len(t, blocks, 4)

	assert.Equal(t, reconstruct.BlockText, blocks[0].Type)
	require.Len(t, blocks[0].Lines, 2, "lines 14pt apart share a block")
	assert.Equal(t, "Left", reconstruct.AssembleLine(blocks[0].Lines[0]).Text)
	assert.Equal(t, "below", reconstruct.AssembleLine(blocks[0].Lines[1]).Text)

	require.Len(t, blocks[1].Lines, 1)
	assert.Equal(t, "Right", reconstruct.AssembleLine(blocks[1].Lines[0]).Text)

	require.Len(t, blocks[2].Lines, 1)
	assert.Equal(t, "far", reconstruct.AssembleLine(blocks[2].Lines[0]).Text)

	drawing := blocks[3]
	assert.Equal(t, reconstruct.BlockDrawing, drawing.Type)
	assert.Equal(t, reconstruct.BBox{X0: 50, Y0: 692, X1: 60, Y1: 702}, drawing.BBox)
}

func TestPositionedBlocks_ReadingOrder(t *testing.T) {
	content := pdf.Content{Text: []pdf.Text{
		word(72, 686, 40, "second"),
		word(72, 700, 30, "first"),
	}}

	lines, ok := reconstruct.CollectLines(positionedBlocks(content, defaultPageTop))
	require.True(t, ok)
	require.Len(t, lines, 2)
	assert.Equal(t, "first", lines[0].Text)
	assert.Equal(t, "second", lines[1].Text)
	assert.Less(t, lines[0].Y0, lines[1].Y0)
}

func TestRowBlock(t *testing.T) {
	tests := []struct {
		name string
		row  pdf.TextHorizontal
		want string
		ok   bool
	}{
		{
			name: "adjacent glyphs join",
			row:  pdf.TextHorizontal{word(10, 10, 6, "a"), word(16, 10, 6, "b")},
			want: "ab",
			ok:   true,
		},
		{
			name: "gap separates words",
			row:  pdf.TextHorizontal{word(10, 10, 6, "a"), word(30, 10, 6, "b")},
			want: "a b",
			ok:   true,
		},
		{
			name: "empty element marks boundary",
			row:  pdf.TextHorizontal{word(10, 10, 6, "a"), word(16, 10, 0, ""), word(16, 10, 6, "b")},
			want: "a b",
			ok:   true,
		},
		{
			name: "no double spaces",
			row:  pdf.TextHorizontal{word(10, 10, 12, "a "), word(40, 10, 6, "b")},
			want: "a b",
			ok:   true,
		},
		{
			name: "blank row",
			row:  pdf.TextHorizontal{word(10, 10, 6, " "), word(16, 10, 6, "\n")},
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, ok := rowBlock(&pdf.Row{Position: 10, Content: tt.row}, defaultPageTop)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, b.Text)
				assert.Equal(t, reconstruct.BlockText, b.Type)
			}
		})
	}
}

func TestPageTop_DefaultsWithoutMediaBox(t *testing.T) {
	assert.Equal(t, defaultPageTop, pageTop(pdf.Page{}))
}
