// Package position turns a layered layout into absolute cell geometry:
// box dimensions, box positions for both flow directions, the inter-layer
// gap boundaries edge routing relies on, and port coordinates.
//
// All coordinates are character cells with (0, 0) at the top left. The
// calculator is pure; it never touches a canvas.
package position

// Dimensions is a node box's footprint in cells, excluding its shadow.
type Dimensions struct {
	Width  int
	Height int
}

// Point is an absolute top-left cell coordinate.
type Point struct {
	X int
	Y int
}

// Sizer measures the box a label needs. Implemented by the box renderer.
type Sizer interface {
	Measure(label string) Dimensions
}

// LayerBoundary describes the vertical extent of one layer in top-to-bottom
// flow, including its shadow rows, plus the gap below it where horizontal
// edge segments can run without hitting boxes.
type LayerBoundary struct {
	Layer    int
	Top      int // first row occupied by the layer (inclusive)
	Bottom   int // last occupied row, shadow included (inclusive)
	GapStart int // first row of the gap below the layer
	GapEnd   int // last row of the gap (inclusive)
}

// ColumnBoundary is the left-to-right counterpart of LayerBoundary: the
// horizontal extent of one layer-column and the gap to its right.
type ColumnBoundary struct {
	Layer    int
	Left     int
	Right    int
	GapStart int
	GapEnd   int
}

// Config holds the spacing knobs. Zero values are not defaulted here; the
// pipeline validates and fills them before constructing a Calculator.
type Config struct {
	MinBoxWidth       int
	HorizontalSpacing int
	VerticalSpacing   int
	Shadow            bool
}

// Calculator computes geometry for one render pass.
type Calculator struct {
	cfg Config
}

// NewCalculator creates a calculator with the given spacing configuration.
func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: cfg}
}

// shadowW and shadowH are the extra cells a shadowed box claims during
// spacing. Width gets one column (the right shadow strip); height gets two
// rows so the bottom strip never touches the next layer.
func (c *Calculator) shadowW() int {
	if c.cfg.Shadow {
		return 1
	}
	return 0
}

func (c *Calculator) shadowH() int {
	if c.cfg.Shadow {
		return 2
	}
	return 0
}

// BoxDimensions measures every node and applies the minimum width floor.
func (c *Calculator) BoxDimensions(nodes []string, sizer Sizer) map[string]Dimensions {
	dims := make(map[string]Dimensions, len(nodes))
	for _, name := range nodes {
		d := sizer.Measure(name)
		if d.Width < c.cfg.MinBoxWidth {
			d.Width = c.cfg.MinBoxWidth
		}
		dims[name] = d
	}
	return dims
}

// Positions places boxes for top-to-bottom flow. Layers stack vertically
// with VerticalSpacing between them; within a layer, boxes sit side by
// side with HorizontalSpacing gaps. Each layer is centered against the
// widest layer. leftMargin reserves columns on the left for the back-edge
// corridor.
func (c *Calculator) Positions(layers [][]string, dims map[string]Dimensions, leftMargin int) map[string]Point {
	heights := c.layerHeights(layers, dims)

	yPos := make([]int, len(layers))
	for i := 1; i < len(layers); i++ {
		yPos[i] = yPos[i-1] + heights[i-1] + c.cfg.VerticalSpacing
	}

	totals := make([]int, len(layers))
	maxTotal := 0
	for i, layer := range layers {
		total := 0
		for j, name := range layer {
			if j > 0 {
				total += c.cfg.HorizontalSpacing
			}
			total += dims[name].Width + c.shadowW()
		}
		totals[i] = total
		if total > maxTotal {
			maxTotal = total
		}
	}

	positions := make(map[string]Point, len(dims))
	for i, layer := range layers {
		x := leftMargin + (maxTotal-totals[i])/2
		for _, name := range layer {
			positions[name] = Point{X: x, Y: yPos[i]}
			x += dims[name].Width + c.shadowW() + c.cfg.HorizontalSpacing
		}
	}
	return positions
}

// PositionsHorizontal places boxes for left-to-right flow: layers become
// columns and nodes within a layer stack vertically, centered against the
// tallest column. topMargin reserves rows on top for the back-edge
// corridor.
func (c *Calculator) PositionsHorizontal(layers [][]string, dims map[string]Dimensions, topMargin int) map[string]Point {
	widths := c.columnWidths(layers, dims)

	xPos := make([]int, len(layers))
	for i := 1; i < len(layers); i++ {
		xPos[i] = xPos[i-1] + widths[i-1] + c.cfg.HorizontalSpacing
	}

	totals := make([]int, len(layers))
	maxTotal := 0
	for i, layer := range layers {
		total := 0
		for j, name := range layer {
			if j > 0 {
				total += c.cfg.VerticalSpacing
			}
			total += dims[name].Height + c.shadowH()
		}
		totals[i] = total
		if total > maxTotal {
			maxTotal = total
		}
	}

	positions := make(map[string]Point, len(dims))
	for i, layer := range layers {
		y := topMargin + (maxTotal-totals[i])/2
		for _, name := range layer {
			positions[name] = Point{X: xPos[i], Y: y}
			y += dims[name].Height + c.shadowH() + c.cfg.VerticalSpacing
		}
	}
	return positions
}

// LayerBoundaries reports each layer's row extent and the gap below it,
// used to route horizontal segments between layers in top-to-bottom flow.
func (c *Calculator) LayerBoundaries(layers [][]string, dims map[string]Dimensions) []LayerBoundary {
	heights := c.layerHeights(layers, dims)

	yPos := make([]int, len(layers))
	for i := 1; i < len(layers); i++ {
		yPos[i] = yPos[i-1] + heights[i-1] + c.cfg.VerticalSpacing
	}

	boundaries := make([]LayerBoundary, len(layers))
	for i := range layers {
		top := yPos[i]
		gapStart := top + heights[i]
		gapEnd := gapStart + c.cfg.VerticalSpacing
		if i < len(layers)-1 {
			gapEnd = yPos[i+1] - 1
		}
		boundaries[i] = LayerBoundary{
			Layer:    i,
			Top:      top,
			Bottom:   top + heights[i] - 1,
			GapStart: gapStart,
			GapEnd:   gapEnd,
		}
	}
	return boundaries
}

// ColumnBoundaries is the left-to-right analogue of LayerBoundaries.
func (c *Calculator) ColumnBoundaries(layers [][]string, dims map[string]Dimensions) []ColumnBoundary {
	widths := c.columnWidths(layers, dims)

	xPos := make([]int, len(layers))
	for i := 1; i < len(layers); i++ {
		xPos[i] = xPos[i-1] + widths[i-1] + c.cfg.HorizontalSpacing
	}

	boundaries := make([]ColumnBoundary, len(layers))
	for i := range layers {
		left := xPos[i]
		gapStart := left + widths[i]
		gapEnd := gapStart + c.cfg.HorizontalSpacing
		if i < len(layers)-1 {
			gapEnd = xPos[i+1] - 1
		}
		boundaries[i] = ColumnBoundary{
			Layer:    i,
			Left:     left,
			Right:    left + widths[i] - 1,
			GapStart: gapStart,
			GapEnd:   gapEnd,
		}
	}
	return boundaries
}

// CanvasSize returns the cell extent needed to hold every box and shadow.
func (c *Calculator) CanvasSize(dims map[string]Dimensions, positions map[string]Point) (width, height int) {
	pad := 0
	if c.cfg.Shadow {
		pad = 2
	}
	for name, p := range positions {
		d := dims[name]
		if right := p.X + d.Width + pad; right > width {
			width = right
		}
		if bottom := p.Y + d.Height + pad; bottom > height {
			height = bottom
		}
	}
	return width, height
}

// PortX returns the column of a port on a box's top or bottom border. A
// single port sits at the center; multiple ports spread across the border
// with a two-cell margin on each side.
func (c *Calculator) PortX(boxX, boxWidth, portIdx, portCount int) int {
	if portCount <= 1 {
		return boxX + boxWidth/2
	}
	usable := boxWidth - 4
	spacing := usable / (portCount + 1)
	return boxX + 2 + spacing*(portIdx+1)
}

// PortY returns the row of a port on a box's left or right border. Ports
// occupy content rows only, never the corner rows, and multiple ports are
// clamped into the content band so they cannot land on a border.
func (c *Calculator) PortY(boxY, boxHeight, portIdx, portCount int) int {
	contentTop := boxY + 1
	contentBottom := boxY + boxHeight - 2
	if contentBottom < contentTop {
		contentBottom = contentTop
	}
	contentHeight := contentBottom - contentTop + 1

	if portCount <= 1 || contentHeight == 1 {
		return contentTop + contentHeight/2
	}

	spacing := contentHeight / (portCount + 1)
	if spacing < 1 {
		spacing = 1
	}
	y := contentTop + spacing*(portIdx+1)
	if y < contentTop {
		y = contentTop
	}
	if y > contentBottom {
		y = contentBottom
	}
	return y
}

// layerHeights returns each layer's row span: the tallest box plus shadow.
func (c *Calculator) layerHeights(layers [][]string, dims map[string]Dimensions) []int {
	heights := make([]int, len(layers))
	for i, layer := range layers {
		for _, name := range layer {
			if h := dims[name].Height + c.shadowH(); h > heights[i] {
				heights[i] = h
			}
		}
	}
	return heights
}

// columnWidths returns each column's cell span: the widest box plus shadow.
func (c *Calculator) columnWidths(layers [][]string, dims map[string]Dimensions) []int {
	widths := make([]int, len(layers))
	for i, layer := range layers {
		for _, name := range layer {
			if w := dims[name].Width + c.shadowW(); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}
