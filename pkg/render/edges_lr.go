package render

import (
	"github.com/ronikobrosly/retroflow/pkg/canvas"
	"github.com/ronikobrosly/retroflow/pkg/graph"
	"github.com/ronikobrosly/retroflow/pkg/layout"
	"github.com/ronikobrosly/retroflow/pkg/position"
)

// DrawForwardHorizontal draws all forward edges for left-to-right flow,
// in declaration order. Ports for a node are allocated top to bottom, so
// fan-out lines leave the box in the same vertical order as their
// targets.
func (d *EdgeDrawer) DrawForwardHorizontal(
	c *canvas.Canvas,
	res *layout.Result,
	dims map[string]position.Dimensions,
	pos map[string]position.Point,
	bounds []position.ColumnBoundary,
) {
	d.prepare(dims, pos)
	from, to := forwardAdjacency(res, func(name string) int { return pos[name].Y })

	for _, e := range res.Edges {
		if res.BackEdges[e] || res.Nodes[e.To].Layer <= res.Nodes[e.From].Layer {
			continue
		}
		d.drawForwardLR(c, res, e, from[e.From], to[e.To], bounds)
	}
}

// drawForwardLR draws one forward edge in left-to-right flow: out of the
// source's right border, through the column gap, into the target's left
// border.
func (d *EdgeDrawer) drawForwardLR(
	c *canvas.Canvas,
	res *layout.Result,
	e graph.Edge,
	srcTargets, tgtSources []string,
	bounds []position.ColumnBoundary,
) {
	srcDims, tgtDims := d.dims[e.From], d.dims[e.To]
	srcPos, tgtPos := d.pos[e.From], d.pos[e.To]
	srcLayer, tgtLayer := res.Nodes[e.From].Layer, res.Nodes[e.To].Layer
	exclude := map[string]bool{e.From: true, e.To: true}

	// Content-row overlap decides whether a straight run is possible.
	// Compact boxes have a single content row, so the comparison is
	// inclusive.
	srcTop, srcBottom := contentRows(srcPos.Y, srcDims.Height)
	tgtTop, tgtBottom := contentRows(tgtPos.Y, tgtDims.Height)
	overlapTop := max(srcTop, tgtTop)
	overlapBottom := min(srcBottom, tgtBottom)
	hasOverlap := overlapTop <= overlapBottom

	boxesInPath := false
	if hasOverlap {
		blocking := d.boxesInRegion(exclude,
			srcPos.X+srcDims.Width, tgtPos.X,
			overlapTop-1, overlapBottom+1)
		boxesInPath = len(blocking) > 0
	}

	fanoutNeeded := false
	if len(srcTargets) > 1 {
		for _, t := range srcTargets {
			if t == e.To {
				continue
			}
			tTop, tBottom := contentRows(d.pos[t].Y, d.dims[t].Height)
			if max(srcTop, tTop) > min(srcBottom, tBottom) {
				fanoutNeeded = true
				break
			}
		}
	}

	var srcPortY, tgtPortY int
	if hasOverlap && !boxesInPath && !fanoutNeeded {
		var overlapping []string
		for _, t := range srcTargets {
			tTop, tBottom := contentRows(d.pos[t].Y, d.dims[t].Height)
			if max(srcTop, tTop) <= min(srcBottom, tBottom) {
				overlapping = append(overlapping, t)
			}
		}
		portY := straightPortRow(overlapTop, overlapBottom, indexOf(overlapping, e.To), len(overlapping))
		srcPortY, tgtPortY = portY, portY
	} else {
		srcPortY = d.calc.PortY(srcPos.Y, srcDims.Height, indexOf(srcTargets, e.To), len(srcTargets))
		tgtPortY = d.calc.PortY(tgtPos.Y, tgtDims.Height, indexOf(tgtSources, e.From), len(tgtSources))
	}

	srcPortX := srcPos.X + srcDims.Width - 1
	tgtPortX := tgtPos.X

	// Exit marker on the source's right border.
	c.Set(srcPortX, srcPortY, '├', canvas.Line)

	startX := srcPortX + 1
	endX := tgtPortX

	switch {
	case boxesInPath:
		// Detour below every box in the intermediate columns.
		maxBottom := srcPos.Y + srcDims.Height
		for layer := srcLayer + 1; layer < tgtLayer; layer++ {
			for _, name := range res.Layers[layer] {
				p, dm := d.pos[name], d.dims[name]
				bottom := p.Y + dm.Height
				if d.shadow {
					bottom += 2
				}
				if bottom > maxBottom {
					maxBottom = bottom
				}
			}
		}
		routeY := maxBottom + 2

		midX := safeVerticalX(bounds, srcLayer, startX)
		d.hline(c, startX-1, midX, srcPortY)
		d.lineAt(c, midX, srcPortY, '┐')
		d.vline(c, midX, srcPortY+1, routeY-1)
		d.lineAt(c, midX, routeY, '└')

		tgtMidX := safeVerticalX(bounds, tgtLayer-1, startX)
		d.hline(c, midX, tgtMidX, routeY)
		d.lineAt(c, tgtMidX, routeY, '┘')
		d.vline(c, tgtMidX, tgtPortY+1, routeY-1)
		d.lineAt(c, tgtMidX, tgtPortY, '┌')
		d.hline(c, tgtMidX, endX-1, tgtPortY)
		c.Set(tgtPortX-1, tgtPortY, arrowRight, canvas.Arrow)

	case srcPortY == tgtPortY && !fanoutNeeded:
		d.hline(c, startX-1, endX-1, srcPortY)
		c.Set(tgtPortX-1, tgtPortY, arrowRight, canvas.Arrow)

	default:
		// Jog through the gap right of the source column.
		midX := safeVerticalX(bounds, srcLayer, startX)

		d.hline(c, startX-1, midX, srcPortY)
		switch {
		case srcPortY == tgtPortY:
			d.lineAt(c, midX, srcPortY, '─')
		case tgtPortY > srcPortY:
			d.lineAt(c, midX, srcPortY, '┐')
		default:
			d.lineAt(c, midX, srcPortY, '┘')
		}

		if tgtPortY > srcPortY && srcPortY+1 <= tgtPortY-1 {
			d.vline(c, midX, srcPortY+1, tgtPortY-1)
		} else if tgtPortY < srcPortY && tgtPortY+1 <= srcPortY-1 {
			d.vline(c, midX, tgtPortY+1, srcPortY-1)
		}

		if tgtPortY != srcPortY {
			if tgtPortY > srcPortY {
				d.lineAt(c, midX, tgtPortY, '└')
			} else {
				d.lineAt(c, midX, tgtPortY, '┌')
			}
		}
		d.hline(c, midX, endX-1, tgtPortY)
		c.Set(tgtPortX-1, tgtPortY, arrowRight, canvas.Arrow)
	}
}

// contentRows returns the first and last content row of a box, clamped so
// compact boxes report their single row.
func contentRows(boxY, boxHeight int) (top, bottom int) {
	top = boxY + 1
	bottom = boxY + boxHeight - 2
	if bottom < top {
		bottom = top
	}
	return top, bottom
}

// straightPortRow distributes ports across a row-overlap region.
func straightPortRow(top, bottom, idx, count int) int {
	if count <= 1 {
		return (top + bottom) / 2
	}
	height := max(1, bottom-top)
	if height >= count*2 {
		spacing := height / (count + 1)
		return top + spacing*(idx+1)
	}
	return top + (height*(idx+1))/(count+1)
}
