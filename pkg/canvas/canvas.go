// Package canvas provides the character grid that all rendering writes to.
//
// The grid is a fixed-size rectangle of runes. Every mutation goes through
// [Canvas.Set], which tags the write with a [Category] and applies the
// merge rules for that category. Line fragments merge into junction glyphs
// via the direction-mask union in [Merge], so the final picture does not
// depend on drawing order.
package canvas

import (
	"errors"
	"fmt"
	"strings"
)

// MaxCells bounds the grid area. Layouts whose computed canvas would
// exceed it are rejected before allocation.
const MaxCells = 4_000_000

// ErrTooLarge is returned by [New] when width*height exceeds MaxCells.
var ErrTooLarge = errors.New("canvas exceeds maximum cell count")

// Category classifies a write so the canvas can decide whether the
// incoming rune overwrites, merges with, or yields to what is already in
// the cell.
type Category uint8

const (
	// Blank is the category of untouched cells.
	Blank Category = iota
	// BoxBorder marks box outline glyphs. Overwrites anything.
	BoxBorder
	// BoxText marks label characters inside a box. Overwrites anything.
	BoxText
	// Shadow marks shadow fill. Lands on blank cells only.
	Shadow
	// Line marks edge path glyphs. Merges with other lines and with box
	// borders, lands on blank and shadow cells, and yields to arrows
	// and text.
	Line
	// Arrow marks arrowhead glyphs. Overwrites everything except box
	// borders and text.
	Arrow
)

// String returns the category name for logs and traces.
func (c Category) String() string {
	switch c {
	case Blank:
		return "blank"
	case BoxBorder:
		return "box-border"
	case BoxText:
		return "box-text"
	case Shadow:
		return "shadow"
	case Line:
		return "line"
	case Arrow:
		return "arrow"
	default:
		return fmt.Sprintf("category(%d)", uint8(c))
	}
}

// Observer is notified after every cell mutation. Writes that leave the
// cell unchanged do not fire. Used by the render tracer.
type Observer func(x, y int, prev, next rune, cat Category)

// Canvas is a fixed-size grid of runes. Not safe for concurrent use; each
// render pass owns its canvas exclusively.
type Canvas struct {
	width    int
	height   int
	cells    []rune
	cats     []Category
	observer Observer
}

// New creates a blank canvas of the given size. Width and height are
// clamped to at least 1. Returns ErrTooLarge when the area exceeds
// MaxCells.
func New(width, height int) (*Canvas, error) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if width*height > MaxCells {
		return nil, fmt.Errorf("%w: %dx%d = %d cells (limit %d)", ErrTooLarge, width, height, width*height, MaxCells)
	}

	cells := make([]rune, width*height)
	for i := range cells {
		cells[i] = ' '
	}
	return &Canvas{
		width:  width,
		height: height,
		cells:  cells,
		cats:   make([]Category, width*height),
	}, nil
}

// Width returns the canvas width in cells.
func (c *Canvas) Width() int { return c.width }

// Height returns the canvas height in cells.
func (c *Canvas) Height() int { return c.height }

// SetObserver installs a mutation observer. Pass nil to remove it.
func (c *Canvas) SetObserver(obs Observer) { c.observer = obs }

// Get returns the rune at (x, y), or a space for out-of-bounds coordinates.
func (c *Canvas) Get(x, y int) rune {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		return ' '
	}
	return c.cells[y*c.width+x]
}

// CategoryAt returns the category of the cell at (x, y). Out-of-bounds
// coordinates report Blank.
func (c *Canvas) CategoryAt(x, y int) Category {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		return Blank
	}
	return c.cats[y*c.width+x]
}

// Set writes ch at (x, y) under the given category's merge rules.
// Out-of-bounds writes are silently dropped, which keeps edge drawing
// total even when a route brushes the canvas margin.
func (c *Canvas) Set(x, y int, ch rune, cat Category) {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		return
	}
	idx := y*c.width + x
	prev := c.cells[idx]
	prevCat := c.cats[idx]

	next := prev
	nextCat := prevCat
	switch cat {
	case BoxBorder, BoxText:
		next = ch
		nextCat = cat

	case Shadow:
		if prevCat == Blank {
			next = ch
			nextCat = Shadow
		}

	case Line:
		switch prevCat {
		case Blank, Shadow:
			next = ch
			nextCat = Line
		case Line:
			next = Merge(prev, ch)
		case BoxBorder:
			// A line meeting a border becomes a junction on the border
			// (a port tee), which stays part of the border.
			if merged := Merge(prev, ch); merged != prev {
				next = merged
			}
		}
		// Arrows and box text win over lines.

	case Arrow:
		switch prevCat {
		case Blank, Shadow, Line, Arrow:
			next = ch
			nextCat = Arrow
		}
	}

	if next == prev && nextCat == prevCat {
		return
	}
	c.cells[idx] = next
	c.cats[idx] = nextCat
	if c.observer != nil {
		c.observer(x, y, prev, next, nextCat)
	}
}

// Rows returns every row as a string of exactly Width runes.
func (c *Canvas) Rows() []string {
	rows := make([]string, c.height)
	for y := 0; y < c.height; y++ {
		rows[y] = string(c.cells[y*c.width : (y+1)*c.width])
	}
	return rows
}

// String renders the canvas with trailing spaces stripped from each row
// and trailing blank rows removed.
func (c *Canvas) String() string {
	rows := c.Rows()
	last := len(rows) - 1
	for last >= 0 && strings.TrimRight(rows[last], " ") == "" {
		last--
	}
	trimmed := make([]string, 0, last+1)
	for _, row := range rows[:last+1] {
		trimmed = append(trimmed, strings.TrimRight(row, " "))
	}
	return strings.Join(trimmed, "\n")
}
