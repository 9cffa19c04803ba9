package render

import (
	"github.com/mattn/go-runewidth"

	"github.com/ronikobrosly/retroflow/pkg/canvas"
)

// TitleRenderer draws the diagram title: the text with a double-rule
// underline spanning its width.
type TitleRenderer struct{}

// Measure returns the title block's width and height in cells.
func (TitleRenderer) Measure(title string) (width, height int) {
	return runewidth.StringWidth(title), 2
}

// Draw renders the title at (x, y).
func (TitleRenderer) Draw(c *canvas.Canvas, x, y int, title string) {
	col := x
	for _, ch := range title {
		c.Set(col, y, ch, canvas.BoxText)
		col += runewidth.RuneWidth(ch)
	}
	for i := 0; i < runewidth.StringWidth(title); i++ {
		c.Set(x+i, y+1, '═', canvas.BoxText)
	}
}
