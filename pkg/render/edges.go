package render

import (
	"sort"

	"github.com/ronikobrosly/retroflow/pkg/canvas"
	"github.com/ronikobrosly/retroflow/pkg/graph"
	"github.com/ronikobrosly/retroflow/pkg/layout"
	"github.com/ronikobrosly/retroflow/pkg/position"
)

// Arrowhead glyphs, oriented by direction of travel.
const (
	arrowDown  = '▼'
	arrowUp    = '▲'
	arrowRight = '►'
	arrowLeft  = '◄'
)

// EdgeDrawer routes and draws edges between positioned boxes. Forward
// edges run with the flow through the inter-layer gaps; back edges run
// through the margin corridor (see backedges.go). A drawer is prepared
// for one render pass at a time.
type EdgeDrawer struct {
	calc   *position.Calculator
	shadow bool

	dims    map[string]position.Dimensions
	pos     map[string]position.Point
	regions []cellRect
}

type cellRect struct{ x, y, w, h int }

func (r cellRect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

// placedBox is a box found in a routing region.
type placedBox struct {
	name string
	x, y int
	d    position.Dimensions
}

// NewEdgeDrawer creates a drawer using the calculator's port formulas.
func NewEdgeDrawer(calc *position.Calculator, shadow bool) *EdgeDrawer {
	return &EdgeDrawer{calc: calc, shadow: shadow}
}

func (d *EdgeDrawer) prepare(dims map[string]position.Dimensions, pos map[string]position.Point) {
	d.dims = dims
	d.pos = pos
	d.regions = d.regions[:0]
	for name, p := range pos {
		dm := dims[name]
		d.regions = append(d.regions, cellRect{p.X, p.Y, dm.Width, dm.Height})
	}
}

// blocked reports whether (x, y) lies on a box, border included. Line
// primitives skip blocked cells; the explicit port markers write straight
// to the canvas instead.
func (d *EdgeDrawer) blocked(x, y int) bool {
	for _, r := range d.regions {
		if r.contains(x, y) {
			return true
		}
	}
	return false
}

// vline draws a vertical line segment covering both endpoints.
func (d *EdgeDrawer) vline(c *canvas.Canvas, x, y1, y2 int) {
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	for y := y1; y <= y2; y++ {
		if d.blocked(x, y) {
			continue
		}
		c.Set(x, y, '│', canvas.Line)
	}
}

// hline draws a horizontal segment between two columns, endpoints
// excluded; the endpoints get corner or port glyphs from the caller.
func (d *EdgeDrawer) hline(c *canvas.Canvas, x1, x2, y int) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	for x := x1 + 1; x < x2; x++ {
		if d.blocked(x, y) {
			continue
		}
		c.Set(x, y, '─', canvas.Line)
	}
}

// lineAt places a corner or junction glyph, merging into whatever path
// fragments already occupy the cell.
func (d *EdgeDrawer) lineAt(c *canvas.Canvas, x, y int, glyph rune) {
	if d.blocked(x, y) {
		return
	}
	c.Set(x, y, glyph, canvas.Line)
}

// boxesInRegion finds boxes overlapping the given rectangle, shadows
// included, skipping the excluded nodes.
func (d *EdgeDrawer) boxesInRegion(exclude map[string]bool, xMin, xMax, yMin, yMax int) []placedBox {
	var found []placedBox
	for name, p := range d.pos {
		if exclude[name] {
			continue
		}
		dm := d.dims[name]
		right := p.X + dm.Width
		bottom := p.Y + dm.Height
		if d.shadow {
			right++
			bottom++
		}
		if p.X < xMax && right > xMin && p.Y < yMax && bottom > yMin {
			found = append(found, placedBox{name, p.X, p.Y, dm})
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].name < found[j].name })
	return found
}

// safeHorizontalY picks the row for a horizontal segment below the given
// layer: the middle of the inter-layer gap, but never above startY.
func safeHorizontalY(bounds []position.LayerBoundary, layer, startY int) int {
	if layer < len(bounds) {
		mid := (bounds[layer].GapStart + bounds[layer].GapEnd) / 2
		if mid < startY+1 {
			return startY + 1
		}
		return mid
	}
	return startY + 2
}

// safeVerticalX is the left-to-right counterpart: the column for a
// vertical segment right of the given layer-column.
func safeVerticalX(bounds []position.ColumnBoundary, layer, startX int) int {
	if layer < len(bounds) {
		mid := (bounds[layer].GapStart + bounds[layer].GapEnd) / 2
		if mid < startX+1 {
			return startX + 1
		}
		return mid
	}
	return startX + 2
}

// forwardAdjacency collects forward-edge fan-out and fan-in per node,
// ordered by the given ranking so port allocation is stable.
func forwardAdjacency(res *layout.Result, rank func(name string) int) (from, to map[string][]string) {
	from = make(map[string][]string)
	to = make(map[string][]string)
	for _, e := range res.Edges {
		if res.BackEdges[e] || res.Nodes[e.To].Layer <= res.Nodes[e.From].Layer {
			continue
		}
		from[e.From] = append(from[e.From], e.To)
		to[e.To] = append(to[e.To], e.From)
	}
	for _, list := range from {
		sort.SliceStable(list, func(i, j int) bool { return rank(list[i]) < rank(list[j]) })
	}
	for _, list := range to {
		sort.SliceStable(list, func(i, j int) bool { return rank(list[i]) < rank(list[j]) })
	}
	return from, to
}

func indexOf(list []string, name string) int {
	for i, n := range list {
		if n == name {
			return i
		}
	}
	return 0
}

// DrawForward draws all forward edges for top-to-bottom flow, in
// declaration order.
func (d *EdgeDrawer) DrawForward(
	c *canvas.Canvas,
	res *layout.Result,
	dims map[string]position.Dimensions,
	pos map[string]position.Point,
	bounds []position.LayerBoundary,
) {
	d.prepare(dims, pos)
	from, to := forwardAdjacency(res, func(name string) int { return res.Nodes[name].Order })

	for _, e := range res.Edges {
		if res.BackEdges[e] || res.Nodes[e.To].Layer <= res.Nodes[e.From].Layer {
			continue
		}
		d.drawForwardTB(c, res, e, from[e.From], to[e.To], bounds)
	}
}

// drawForwardTB draws one forward edge in top-to-bottom flow: out of the
// source's bottom border, through the gap, into the target's top border.
func (d *EdgeDrawer) drawForwardTB(
	c *canvas.Canvas,
	res *layout.Result,
	e graph.Edge,
	srcTargets, tgtSources []string,
	bounds []position.LayerBoundary,
) {
	srcDims, tgtDims := d.dims[e.From], d.dims[e.To]
	srcPos, tgtPos := d.pos[e.From], d.pos[e.To]
	srcLayer, tgtLayer := res.Nodes[e.From].Layer, res.Nodes[e.To].Layer
	exclude := map[string]bool{e.From: true, e.To: true}

	// Inner-width overlap between source and target decides whether a
	// straight drop is possible.
	srcLeft, srcRight := srcPos.X+1, srcPos.X+srcDims.Width-2
	tgtLeft, tgtRight := tgtPos.X+1, tgtPos.X+tgtDims.Width-2
	overlapLeft := max(srcLeft, tgtLeft)
	overlapRight := min(srcRight, tgtRight)
	hasOverlap := overlapLeft < overlapRight

	boxesInPath := false
	if hasOverlap {
		blocking := d.boxesInRegion(exclude,
			overlapLeft-1, overlapRight+1,
			srcPos.Y+srcDims.Height, tgtPos.Y)
		boxesInPath = len(blocking) > 0
	}

	// If any sibling target lacks overlap, all edges from this source use
	// distributed ports so the straight and jogged paths cannot collide.
	fanoutNeeded := false
	if len(srcTargets) > 1 {
		for _, t := range srcTargets {
			if t == e.To {
				continue
			}
			tp, td := d.pos[t], d.dims[t]
			if max(srcLeft, tp.X+1) >= min(srcRight, tp.X+td.Width-2) {
				fanoutNeeded = true
				break
			}
		}
	}

	var srcPortX, tgtPortX int
	if hasOverlap && !boxesInPath && !fanoutNeeded {
		// Straight drop: pick a port inside the overlap region, shared
		// between all targets that overlap the source.
		var overlapping []string
		for _, t := range srcTargets {
			tp, td := d.pos[t], d.dims[t]
			if max(srcLeft, tp.X+1) < min(srcRight, tp.X+td.Width-2) {
				overlapping = append(overlapping, t)
			}
		}
		portX := straightPort(overlapLeft, overlapRight, indexOf(overlapping, e.To), len(overlapping))
		srcPortX, tgtPortX = portX, portX
	} else {
		srcPortX = d.calc.PortX(srcPos.X, srcDims.Width, indexOf(srcTargets, e.To), len(srcTargets))
		tgtPortX = d.calc.PortX(tgtPos.X, tgtDims.Width, indexOf(tgtSources, e.From), len(tgtSources))
	}

	srcPortY := srcPos.Y + srcDims.Height - 1
	tgtPortY := tgtPos.Y

	// Exit marker on the source's bottom border.
	c.Set(srcPortX, srcPortY, '┬', canvas.Line)

	startY := srcPortY + 1
	endY := tgtPortY

	switch {
	case boxesInPath:
		// Detour right of every box in the intermediate layers.
		maxRight := srcPos.X + srcDims.Width
		for layer := srcLayer + 1; layer < tgtLayer; layer++ {
			for _, name := range res.Layers[layer] {
				p, dm := d.pos[name], d.dims[name]
				right := p.X + dm.Width
				if d.shadow {
					right += 2
				}
				if right > maxRight {
					maxRight = right
				}
			}
		}
		routeX := maxRight + 2

		midY := safeHorizontalY(bounds, srcLayer, startY)
		d.vline(c, srcPortX, startY, midY-1)
		d.lineAt(c, srcPortX, midY, '└')
		d.hline(c, srcPortX, routeX, midY)
		d.lineAt(c, routeX, midY, '┐')

		tgtMidY := safeHorizontalY(bounds, tgtLayer-1, startY)
		d.vline(c, routeX, midY+1, tgtMidY-1)
		d.lineAt(c, routeX, tgtMidY, '┘')
		d.hline(c, tgtPortX, routeX, tgtMidY)
		d.lineAt(c, tgtPortX, tgtMidY, '┌')
		if tgtMidY+1 <= endY-2 {
			d.vline(c, tgtPortX, tgtMidY+1, endY-2)
		}
		c.Set(tgtPortX, tgtPortY-1, arrowDown, canvas.Arrow)

	case srcPortX == tgtPortX && !fanoutNeeded:
		// Straight drop, unless something sits in the vertical path.
		blocking := d.boxesInRegion(exclude, srcPortX-1, srcPortX+2, startY, endY)
		if len(blocking) > 0 {
			safeX := 0
			for _, b := range blocking {
				if r := b.x + b.d.Width + 2; r > safeX {
					safeX = r
				}
			}
			d.drawDetour(c, srcPortX, tgtPortX, startY, endY, safeX, srcLayer, tgtLayer, bounds)
		} else {
			d.vline(c, srcPortX, startY, endY-2)
		}
		c.Set(tgtPortX, tgtPortY-1, arrowDown, canvas.Arrow)

	default:
		// Jog through the gap below the source layer.
		midY := safeHorizontalY(bounds, srcLayer, startY)

		loX, hiX := min(srcPortX, tgtPortX), max(srcPortX, tgtPortX)
		if blocking := d.boxesInRegion(exclude, loX, hiX, midY-1, midY+2); len(blocking) > 0 {
			// Drop the horizontal run below whatever blocks the gap.
			for _, b := range blocking {
				bottom := b.y + b.d.Height
				if d.shadow {
					bottom += 2
				}
				if bottom+2 > midY {
					midY = bottom + 2
				}
			}
		}

		d.vline(c, srcPortX, startY, midY-1)
		switch {
		case srcPortX == tgtPortX:
			d.lineAt(c, srcPortX, midY, '┬')
		case tgtPortX > srcPortX:
			d.lineAt(c, srcPortX, midY, '└')
		default:
			d.lineAt(c, srcPortX, midY, '┘')
		}
		d.hline(c, srcPortX, tgtPortX, midY)

		if blocking := d.boxesInRegion(exclude, tgtPortX-1, tgtPortX+2, midY, endY); len(blocking) > 0 {
			// The descent to the target is blocked; detour right of the
			// blockers and come back above the target layer.
			routeX := 0
			lowestBottom := 0
			for _, b := range blocking {
				right := b.x + b.d.Width
				bottom := b.y + b.d.Height
				if d.shadow {
					right += 2
					bottom += 2
				}
				if right+2 > routeX {
					routeX = right + 2
				}
				if bottom+2 > lowestBottom {
					lowestBottom = bottom + 2
				}
			}
			d.hline(c, srcPortX, routeX, midY)
			d.lineAt(c, routeX, midY, '┐')

			tgtMidY := safeHorizontalY(bounds, tgtLayer-1, startY)
			if lowestBottom > tgtMidY {
				tgtMidY = lowestBottom
			}
			d.vline(c, routeX, midY+1, tgtMidY-1)
			d.lineAt(c, routeX, tgtMidY, '┘')
			d.hline(c, tgtPortX, routeX, tgtMidY)
			d.lineAt(c, tgtPortX, tgtMidY, '┌')
			if tgtMidY+1 <= endY-2 {
				d.vline(c, tgtPortX, tgtMidY+1, endY-2)
			}
		} else {
			if tgtPortX != srcPortX {
				if tgtPortX > srcPortX {
					d.lineAt(c, tgtPortX, midY, '┐')
				} else {
					d.lineAt(c, tgtPortX, midY, '┌')
				}
			}
			if midY+1 <= endY-2 {
				d.vline(c, tgtPortX, midY+1, endY-2)
			}
		}
		c.Set(tgtPortX, tgtPortY-1, arrowDown, canvas.Arrow)
	}
}

// drawDetour routes down-right-down-left around obstacles sitting between
// a straight source/target column pair.
func (d *EdgeDrawer) drawDetour(
	c *canvas.Canvas,
	srcPortX, tgtPortX, startY, endY, safeX, srcLayer, tgtLayer int,
	bounds []position.LayerBoundary,
) {
	midY := safeHorizontalY(bounds, srcLayer, startY)
	d.vline(c, srcPortX, startY, midY-1)
	d.lineAt(c, srcPortX, midY, '└')
	d.hline(c, srcPortX, safeX, midY)
	d.lineAt(c, safeX, midY, '┐')

	tgtMidY := safeHorizontalY(bounds, tgtLayer-1, startY)
	d.vline(c, safeX, midY+1, tgtMidY-1)
	d.lineAt(c, safeX, tgtMidY, '┘')
	d.hline(c, tgtPortX, safeX, tgtMidY)
	d.lineAt(c, tgtPortX, tgtMidY, '┌')
	if tgtMidY+1 <= endY-2 {
		d.vline(c, tgtPortX, tgtMidY+1, endY-2)
	}
}

// straightPort distributes ports across an overlap region.
func straightPort(left, right, idx, count int) int {
	if count <= 1 {
		return (left + right) / 2
	}
	width := right - left
	if width >= count*2 {
		spacing := width / (count + 1)
		return left + spacing*(idx+1)
	}
	return left + (width*(idx+1))/(count+1)
}
