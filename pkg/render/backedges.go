package render

import (
	"sort"

	"github.com/ronikobrosly/retroflow/pkg/canvas"
	"github.com/ronikobrosly/retroflow/pkg/graph"
	"github.com/ronikobrosly/retroflow/pkg/layout"
	"github.com/ronikobrosly/retroflow/pkg/position"
)

// Corridor geometry for back edges. Each back edge gets its own lane in
// the margin, laneSpacing cells apart; MarginFor reserves room for all of
// them.
const (
	corridorBase = 2
	laneSpacing  = 3
)

// MarginFor returns the margin a layout with n back edges needs for its
// corridor (left margin in top-to-bottom flow, top margin in
// left-to-right flow).
func MarginFor(n int) int {
	if n == 0 {
		return 0
	}
	return 4 + laneSpacing*n
}

// backEdgeLanes orders back edges by descending layer span so the edge
// crossing the most layers takes the outermost lane and shorter edges
// nest inside it. Ties keep declaration order.
func backEdgeLanes(res *layout.Result) []graph.Edge {
	lanes := make([]graph.Edge, 0, len(res.BackEdges))
	for _, e := range res.Edges {
		if res.BackEdges[e] {
			lanes = append(lanes, e)
		}
	}
	span := func(e graph.Edge) int {
		return res.Nodes[e.From].Layer - res.Nodes[e.To].Layer
	}
	sort.SliceStable(lanes, func(i, j int) bool { return span(lanes[i]) > span(lanes[j]) })
	return lanes
}

// DrawBack draws all back edges for top-to-bottom flow. Each edge exits
// the bottom of its source, runs left into the margin corridor, up its
// lane, and enters the left side of its target.
func (d *EdgeDrawer) DrawBack(
	c *canvas.Canvas,
	res *layout.Result,
	dims map[string]position.Dimensions,
	pos map[string]position.Point,
) {
	if len(res.BackEdges) == 0 {
		return
	}
	d.prepare(dims, pos)

	entryCount := make(map[string]int)
	for lane, e := range backEdgeLanes(res) {
		d.drawBackTB(c, e, lane, entryCount)
	}
}

func (d *EdgeDrawer) drawBackTB(c *canvas.Canvas, e graph.Edge, lane int, entryCount map[string]int) {
	srcDims, tgtDims := d.dims[e.From], d.dims[e.To]
	srcPos, tgtPos := d.pos[e.From], d.pos[e.To]

	routeX := corridorBase + laneSpacing*lane

	entryIdx := entryCount[e.To]
	entryCount[e.To]++

	exitBorderY := srcPos.Y + srcDims.Height - 1
	exitBelowY := exitBorderY + 1
	if d.shadow {
		exitBelowY = exitBorderY + 2
	}

	// Entry on the target's left border, offset down for each additional
	// edge entering the same target and clamped to its content rows.
	entryX := tgtPos.X
	entryY := tgtPos.Y + 1 + entryIdx
	if maxY := tgtPos.Y + tgtDims.Height - 2; entryY > maxY {
		entryY = maxY
	}

	// The exit column shifts right per lane so nested corridors do not
	// share a column under the source, then slides off any border cell a
	// forward edge already uses as its own exit port.
	exitX := srcPos.X + 1 + laneSpacing*lane
	if exitX >= srcPos.X+srcDims.Width-1 {
		exitX = srcPos.X + 1
	}
	exitX = freeExitX(c, exitX, exitBorderY, srcPos.X, srcDims.Width)

	// Exit tee on the bottom border, then down through the shadow.
	c.Set(exitX, exitBorderY, '┬', canvas.Line)
	d.vline(c, exitX, exitBorderY+1, exitBelowY-1)
	d.lineAt(c, exitX, exitBelowY, '┘')
	d.hline(c, routeX, exitX, exitBelowY)
	d.lineAt(c, routeX, exitBelowY, '└')

	// Boxes sitting between the corridor and the target at entry height
	// force an approach from above instead.
	var blockers []placedBox
	for name, p := range d.pos {
		if name == e.To {
			continue
		}
		dm := d.dims[name]
		right := p.X + dm.Width
		bottom := p.Y + dm.Height
		if d.shadow {
			right++
			bottom += 2
		}
		if p.X > routeX && right < entryX && p.Y <= entryY && entryY < bottom {
			blockers = append(blockers, placedBox{name, p.X, p.Y, dm})
		}
	}

	if len(blockers) > 0 {
		// Up the corridor past the target layer, right over the
		// blockers, then down into the target from above.
		safeY := tgtPos.Y - 2

		maxBlockingRight := 0
		for _, b := range blockers {
			right := b.x + b.d.Width + 1
			if d.shadow {
				right++
			}
			if right > maxBlockingRight {
				maxBlockingRight = right
			}
		}
		approachX := min(maxBlockingRight+2, entryX-4)
		if approachX < routeX+4 {
			approachX = routeX + 4
		}

		d.vline(c, routeX, safeY+1, exitBelowY-1)
		d.lineAt(c, routeX, safeY, '┌')
		d.hline(c, routeX, approachX, safeY)
		d.lineAt(c, approachX, safeY, '┐')
		d.vline(c, approachX, safeY+1, entryY-1)
		d.lineAt(c, approachX, entryY, '└')
		d.hline(c, approachX, entryX-1, entryY)
		c.Set(entryX-1, entryY, arrowRight, canvas.Arrow)
	} else {
		d.vline(c, routeX, entryY+1, exitBelowY-1)
		d.lineAt(c, routeX, entryY, '┌')
		d.hline(c, routeX, entryX-1, entryY)
		c.Set(entryX-1, entryY, arrowRight, canvas.Arrow)
	}
}

// freeExitX slides an exit column off bottom-border cells already taken
// by another edge's port, scanning right of the wanted column and then
// left, always staying between the corners. A free cell still holds '─'.
func freeExitX(c *canvas.Canvas, want, borderY, boxX, boxW int) int {
	for x := want; x < boxX+boxW-1; x++ {
		if c.Get(x, borderY) == '─' {
			return x
		}
	}
	for x := want - 1; x > boxX; x-- {
		if c.Get(x, borderY) == '─' {
			return x
		}
	}
	return want
}

// freeExitY is the left-to-right counterpart of freeExitX, sliding an
// exit row off right-border cells already taken by another edge's port.
func freeExitY(c *canvas.Canvas, want, borderX, boxY, boxH int) int {
	for y := want; y < boxY+boxH-1; y++ {
		if c.Get(borderX, y) == '│' {
			return y
		}
	}
	for y := want - 1; y > boxY; y-- {
		if c.Get(borderX, y) == '│' {
			return y
		}
	}
	return want
}

// DrawBackHorizontal draws all back edges for left-to-right flow. Each
// edge exits the right side of its source, rises into the top margin
// corridor, runs left along its lane, and drops into the top of its
// target. titleOffset shifts the corridor below the title block.
func (d *EdgeDrawer) DrawBackHorizontal(
	c *canvas.Canvas,
	res *layout.Result,
	dims map[string]position.Dimensions,
	pos map[string]position.Point,
	titleOffset int,
) {
	if len(res.BackEdges) == 0 {
		return
	}
	d.prepare(dims, pos)

	entryCount := make(map[string]int)
	for lane, e := range backEdgeLanes(res) {
		d.drawBackLR(c, e, lane, titleOffset, entryCount)
	}
}

func (d *EdgeDrawer) drawBackLR(c *canvas.Canvas, e graph.Edge, lane, titleOffset int, entryCount map[string]int) {
	srcDims, tgtDims := d.dims[e.From], d.dims[e.To]
	srcPos, tgtPos := d.pos[e.From], d.pos[e.To]

	routeY := corridorBase + titleOffset + laneSpacing*lane

	entryIdx := entryCount[e.To]
	entryCount[e.To]++

	exitBorderX := srcPos.X + srcDims.Width - 1
	exitRightX := exitBorderX + 1
	if d.shadow {
		exitRightX = exitBorderX + 2
	}

	// Entry on the target's top border, offset right per additional edge
	// and clamped inside the border.
	entryY := tgtPos.Y
	entryX := tgtPos.X + 1 + entryIdx
	if maxX := tgtPos.X + tgtDims.Width - 2; entryX > maxX {
		entryX = maxX
	}

	// Exit row shifts down per lane, staying on content rows and off any
	// border cell a forward edge already uses as its own exit port.
	exitY := srcPos.Y + 1 + laneSpacing*lane
	if exitY >= srcPos.Y+srcDims.Height-1 {
		exitY = srcPos.Y + 1
	}
	exitY = freeExitY(c, exitY, exitBorderX, srcPos.Y, srcDims.Height)

	// Boxes above the source blocking the climb to the corridor push the
	// turn further right.
	turnUpX := exitRightX
	for name, p := range d.pos {
		if name == e.From {
			continue
		}
		dm := d.dims[name]
		right := p.X + dm.Width + 1
		bottom := p.Y + dm.Height
		if d.shadow {
			right++
			bottom += 2
		}
		if p.Y > routeY && bottom < exitY && p.X <= exitRightX && exitRightX < right {
			if right+1 > turnUpX {
				turnUpX = right + 1
			}
		}
	}

	// Exit marker on the source's right border, then out and up.
	c.Set(exitBorderX, exitY, '├', canvas.Line)
	d.hline(c, exitBorderX, turnUpX, exitY)
	d.lineAt(c, turnUpX, exitY, '┘')
	d.vline(c, turnUpX, routeY+1, exitY-1)
	d.lineAt(c, turnUpX, routeY, '┐')

	// Boxes between the corridor and the target blocking the drop at
	// entryX force an approach from the left side instead.
	var blockers []placedBox
	for name, p := range d.pos {
		if name == e.To {
			continue
		}
		dm := d.dims[name]
		right := p.X + dm.Width
		bottom := p.Y + dm.Height
		if d.shadow {
			right++
			bottom += 2
		}
		if p.Y > routeY && bottom < entryY && p.X <= entryX && entryX < right {
			blockers = append(blockers, placedBox{name, p.X, p.Y, dm})
		}
	}

	if len(blockers) > 0 {
		minBlockingLeft := blockers[0].x
		for _, b := range blockers[1:] {
			if b.x < minBlockingLeft {
				minBlockingLeft = b.x
			}
		}
		turnDownX := minBlockingLeft - 2

		targetEntryY := tgtPos.Y + 1 + entryIdx
		if maxY := tgtPos.Y + tgtDims.Height - 2; targetEntryY > maxY {
			targetEntryY = maxY
		}

		d.hline(c, turnDownX, turnUpX, routeY)
		d.lineAt(c, turnDownX, routeY, '┌')
		d.vline(c, turnDownX, routeY+1, targetEntryY-1)
		d.lineAt(c, turnDownX, targetEntryY, '└')
		d.hline(c, turnDownX, tgtPos.X-1, targetEntryY)
		c.Set(tgtPos.X-1, targetEntryY, arrowRight, canvas.Arrow)
	} else {
		d.hline(c, entryX, turnUpX, routeY)
		d.lineAt(c, entryX, routeY, '┌')
		d.vline(c, entryX, routeY+1, entryY-2)
		c.Set(entryX, entryY-1, arrowDown, canvas.Arrow)
	}
}
