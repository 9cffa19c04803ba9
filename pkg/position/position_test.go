package position

import "testing"

// fixedSizer returns the same dimensions for every label.
type fixedSizer struct{ d Dimensions }

func (f fixedSizer) Measure(string) Dimensions { return f.d }

func testConfig(shadow bool) Config {
	return Config{
		MinBoxWidth:       10,
		HorizontalSpacing: 12,
		VerticalSpacing:   3,
		Shadow:            shadow,
	}
}

func TestBoxDimensionsMinWidth(t *testing.T) {
	c := NewCalculator(testConfig(true))
	dims := c.BoxDimensions([]string{"tiny", "big"}, fixedSizer{Dimensions{Width: 6, Height: 3}})

	for name, d := range dims {
		if d.Width != 10 {
			t.Errorf("dims[%q].Width = %d, want 10 (minimum)", name, d.Width)
		}
		if d.Height != 3 {
			t.Errorf("dims[%q].Height = %d, want 3", name, d.Height)
		}
	}
}

func TestPositionsVertical(t *testing.T) {
	c := NewCalculator(testConfig(true))
	layers := [][]string{{"A"}, {"B", "C"}}
	dims := map[string]Dimensions{
		"A": {Width: 10, Height: 3},
		"B": {Width: 10, Height: 3},
		"C": {Width: 10, Height: 3},
	}

	pos := c.Positions(layers, dims, 0)

	// Layer 1 is the widest: two 11-cell slots (width+shadow) plus a
	// 12-cell gap = 34. Layer 0's single 11-cell box centers at (34-11)/2.
	if got, want := pos["A"], (Point{X: 11, Y: 0}); got != want {
		t.Errorf("pos[A] = %+v, want %+v", got, want)
	}
	if got, want := pos["B"], (Point{X: 0, Y: 8}); got != want {
		t.Errorf("pos[B] = %+v, want %+v", got, want)
	}
	if got, want := pos["C"], (Point{X: 23, Y: 8}); got != want {
		t.Errorf("pos[C] = %+v, want %+v", got, want)
	}
}

func TestPositionsLeftMargin(t *testing.T) {
	c := NewCalculator(testConfig(false))
	layers := [][]string{{"A"}, {"B"}}
	dims := map[string]Dimensions{"A": {Width: 10, Height: 3}, "B": {Width: 10, Height: 3}}

	plain := c.Positions(layers, dims, 0)
	shifted := c.Positions(layers, dims, 7)

	for _, name := range []string{"A", "B"} {
		if shifted[name].X != plain[name].X+7 {
			t.Errorf("pos[%q].X = %d, want %d", name, shifted[name].X, plain[name].X+7)
		}
		if shifted[name].Y != plain[name].Y {
			t.Errorf("pos[%q].Y changed by left margin", name)
		}
	}
}

func TestPositionsHorizontal(t *testing.T) {
	c := NewCalculator(testConfig(true))
	layers := [][]string{{"A"}, {"B", "C"}}
	dims := map[string]Dimensions{
		"A": {Width: 10, Height: 3},
		"B": {Width: 10, Height: 3},
		"C": {Width: 10, Height: 3},
	}

	pos := c.PositionsHorizontal(layers, dims, 0)

	// Column 1 is the tallest: two 5-row slots (height+shadow) plus a
	// 3-row gap = 13. Column 0's single 5-row box centers at (13-5)/2.
	if got, want := pos["A"], (Point{X: 0, Y: 4}); got != want {
		t.Errorf("pos[A] = %+v, want %+v", got, want)
	}
	// Column 1 starts after column 0's width+shadow plus spacing.
	if got, want := pos["B"], (Point{X: 23, Y: 0}); got != want {
		t.Errorf("pos[B] = %+v, want %+v", got, want)
	}
	if got, want := pos["C"], (Point{X: 23, Y: 8}); got != want {
		t.Errorf("pos[C] = %+v, want %+v", got, want)
	}
}

func TestNoBoxOverlap(t *testing.T) {
	c := NewCalculator(testConfig(true))
	layers := [][]string{{"A", "B"}, {"C", "D", "E"}, {"F"}}
	dims := map[string]Dimensions{
		"A": {Width: 10, Height: 3}, "B": {Width: 14, Height: 5},
		"C": {Width: 10, Height: 3}, "D": {Width: 20, Height: 7},
		"E": {Width: 12, Height: 3}, "F": {Width: 10, Height: 3},
	}

	pos := c.Positions(layers, dims, 5)

	type rect struct{ x1, y1, x2, y2 int }
	rects := make(map[string]rect, len(pos))
	for name, p := range pos {
		d := dims[name]
		rects[name] = rect{p.X, p.Y, p.X + d.Width + 1, p.Y + d.Height + 1}
	}
	names := []string{"A", "B", "C", "D", "E", "F"}
	for i, a := range names {
		for _, b := range names[i+1:] {
			ra, rb := rects[a], rects[b]
			if ra.x1 <= rb.x2 && rb.x1 <= ra.x2 && ra.y1 <= rb.y2 && rb.y1 <= ra.y2 {
				t.Errorf("boxes %q %+v and %q %+v overlap", a, ra, b, rb)
			}
		}
	}
}

func TestLayerBoundaries(t *testing.T) {
	c := NewCalculator(testConfig(true))
	layers := [][]string{{"A"}, {"B"}}
	dims := map[string]Dimensions{"A": {Width: 10, Height: 3}, "B": {Width: 10, Height: 3}}

	bounds := c.LayerBoundaries(layers, dims)
	if len(bounds) != 2 {
		t.Fatalf("len(bounds) = %d, want 2", len(bounds))
	}

	// Layer 0 spans rows 0-4 (3 rows of box, 2 of shadow); the gap runs
	// up to the row before layer 1 at y=8.
	if b := bounds[0]; b.Top != 0 || b.Bottom != 4 || b.GapStart != 5 || b.GapEnd != 7 {
		t.Errorf("bounds[0] = %+v, want Top=0 Bottom=4 GapStart=5 GapEnd=7", b)
	}
	if b := bounds[1]; b.Top != 8 || b.GapStart != 13 || b.GapEnd != 16 {
		t.Errorf("bounds[1] = %+v, want Top=8 GapStart=13 GapEnd=16", b)
	}
}

func TestColumnBoundaries(t *testing.T) {
	c := NewCalculator(testConfig(false))
	layers := [][]string{{"A"}, {"B"}}
	dims := map[string]Dimensions{"A": {Width: 10, Height: 3}, "B": {Width: 12, Height: 3}}

	bounds := c.ColumnBoundaries(layers, dims)
	if b := bounds[0]; b.Left != 0 || b.Right != 9 || b.GapStart != 10 || b.GapEnd != 21 {
		t.Errorf("bounds[0] = %+v, want Left=0 Right=9 GapStart=10 GapEnd=21", b)
	}
	if b := bounds[1]; b.Left != 22 || b.Right != 33 {
		t.Errorf("bounds[1] = %+v, want Left=22 Right=33", b)
	}
}

func TestCanvasSize(t *testing.T) {
	c := NewCalculator(testConfig(true))
	dims := map[string]Dimensions{"A": {Width: 10, Height: 3}}
	pos := map[string]Point{"A": {X: 4, Y: 2}}

	w, h := c.CanvasSize(dims, pos)
	if w != 16 || h != 7 {
		t.Errorf("CanvasSize() = (%d, %d), want (16, 7)", w, h)
	}

	noShadow := NewCalculator(testConfig(false))
	w, h = noShadow.CanvasSize(dims, pos)
	if w != 14 || h != 5 {
		t.Errorf("CanvasSize() without shadow = (%d, %d), want (14, 5)", w, h)
	}
}

func TestPortX(t *testing.T) {
	c := NewCalculator(testConfig(true))

	if got := c.PortX(10, 10, 0, 1); got != 15 {
		t.Errorf("PortX(single) = %d, want 15", got)
	}

	// Two ports on a 16-wide box: usable 12, spacing 4, at offsets 2+4
	// and 2+8 from the box edge.
	if got := c.PortX(0, 16, 0, 2); got != 6 {
		t.Errorf("PortX(0 of 2) = %d, want 6", got)
	}
	if got := c.PortX(0, 16, 1, 2); got != 10 {
		t.Errorf("PortX(1 of 2) = %d, want 10", got)
	}

	// Ports stay inside the border even when crowded.
	for i := 0; i < 4; i++ {
		got := c.PortX(0, 10, i, 4)
		if got <= 0 || got >= 9 {
			t.Errorf("PortX(%d of 4) = %d, outside border columns (0, 9)", i, got)
		}
	}
}

func TestPortY(t *testing.T) {
	c := NewCalculator(testConfig(true))

	// Compact box (height 3): the single content row.
	if got := c.PortY(0, 3, 0, 1); got != 1 {
		t.Errorf("PortY(compact single) = %d, want 1", got)
	}
	if got := c.PortY(0, 3, 1, 3); got != 1 {
		t.Errorf("PortY(compact crowded) = %d, want 1 (clamped to content)", got)
	}

	// Height-7 box: content rows are 1-5 and the spacing floor keeps
	// every port inside that band.
	for i := 0; i < 2; i++ {
		got := c.PortY(0, 7, i, 2)
		if got < 1 || got > 5 {
			t.Errorf("PortY(%d of 2) = %d, outside content rows 1-5", i, got)
		}
	}
}
