// Package render draws flowchart elements onto a canvas: node boxes with
// wrapped labels and shadows, the diagram title, and the orthogonal edge
// paths between boxes. All drawing goes through the canvas merge setter,
// so the packages here never inspect or rewrite cells directly.
package render

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/ronikobrosly/retroflow/pkg/canvas"
	"github.com/ronikobrosly/retroflow/pkg/position"
)

// Style selects the corner glyphs for node boxes.
type Style int

const (
	// StyleSquare uses right-angle corners.
	StyleSquare Style = iota
	// StyleRounded uses rounded corners.
	StyleRounded
)

const (
	shadowGlyph = '░'
	// boxPadding is the horizontal padding between border and label.
	boxPadding = 1
)

type corners struct {
	topLeft, topRight, bottomLeft, bottomRight rune
}

func (s Style) corners() corners {
	if s == StyleRounded {
		return corners{'╭', '╮', '╰', '╯'}
	}
	return corners{'┌', '┐', '└', '┘'}
}

// BoxRenderer wraps labels and draws node boxes.
type BoxRenderer struct {
	// MaxTextWidth is the wrap width for label text in display cells.
	MaxTextWidth int
	// Shadow draws a shadow strip right of and below the box.
	Shadow bool
	// Style selects square or rounded corners.
	Style Style
	// Compact removes the horizontal padding between border and label.
	Compact bool
}

// NewBoxRenderer creates a renderer with the given wrap width.
func NewBoxRenderer(maxTextWidth int, shadow bool, style Style) *BoxRenderer {
	return &BoxRenderer{MaxTextWidth: maxTextWidth, Shadow: shadow, Style: style}
}

// Wrap splits a label into lines no wider than MaxTextWidth display
// cells, breaking on spaces. A single word wider than the limit gets its
// own line rather than being split mid-word.
func (r *BoxRenderer) Wrap(label string) []string {
	words := strings.Fields(label)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	var current []string
	width := 0
	for _, word := range words {
		w := runewidth.StringWidth(word)
		sep := 0
		if len(current) > 0 {
			sep = 1
		}
		if width+w+sep <= r.MaxTextWidth || len(current) == 0 {
			current = append(current, word)
			width += w + sep
		} else {
			lines = append(lines, strings.Join(current, " "))
			current = []string{word}
			width = w
		}
	}
	return append(lines, strings.Join(current, " "))
}

func (r *BoxRenderer) padding() int {
	if r.Compact {
		return 0
	}
	return boxPadding
}

// Measure returns the box footprint for a label: wrapped text width plus
// padding and borders, wrapped line count plus top and bottom borders.
func (r *BoxRenderer) Measure(label string) position.Dimensions {
	lines := r.Wrap(label)
	textWidth := 1
	for _, line := range lines {
		if w := runewidth.StringWidth(line); w > textWidth {
			textWidth = w
		}
	}
	return position.Dimensions{
		Width:  textWidth + 2*r.padding() + 2,
		Height: len(lines) + 2,
	}
}

// Draw renders the box at (x, y) with the given outer dimensions. The
// dimensions normally come from Measure, possibly widened to the minimum
// box width. Label lines are centered horizontally.
//
//	┌──────────┐
//	│  Verify  │░
//	└──────────┘░
//	 ░░░░░░░░░░░░
func (r *BoxRenderer) Draw(c *canvas.Canvas, x, y int, label string, d position.Dimensions) {
	w, h := d.Width, d.Height
	cs := r.Style.corners()

	c.Set(x, y, cs.topLeft, canvas.BoxBorder)
	for i := 1; i < w-1; i++ {
		c.Set(x+i, y, '─', canvas.BoxBorder)
	}
	c.Set(x+w-1, y, cs.topRight, canvas.BoxBorder)

	for row := 1; row < h-1; row++ {
		c.Set(x, y+row, '│', canvas.BoxBorder)
		c.Set(x+w-1, y+row, '│', canvas.BoxBorder)
		if r.Shadow {
			c.Set(x+w, y+row, shadowGlyph, canvas.Shadow)
		}
	}

	c.Set(x, y+h-1, cs.bottomLeft, canvas.BoxBorder)
	for i := 1; i < w-1; i++ {
		c.Set(x+i, y+h-1, '─', canvas.BoxBorder)
	}
	c.Set(x+w-1, y+h-1, cs.bottomRight, canvas.BoxBorder)

	if r.Shadow {
		c.Set(x+w, y+h-1, shadowGlyph, canvas.Shadow)
		// Offset by one so the strip sits under the content, not under
		// the left border.
		for i := 1; i <= w; i++ {
			c.Set(x+i, y+h, shadowGlyph, canvas.Shadow)
		}
	}

	for lineIdx, line := range r.Wrap(label) {
		textY := y + 1 + lineIdx
		textX := x + 1 + (w-2-runewidth.StringWidth(line))/2
		col := textX
		for _, ch := range line {
			c.Set(col, textY, ch, canvas.BoxText)
			col += runewidth.RuneWidth(ch)
		}
	}
}
