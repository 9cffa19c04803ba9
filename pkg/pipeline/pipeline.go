// Package pipeline orchestrates the full render: parse, layout,
// positioning, and drawing. The Runner is the programmatic entry point
// that the CLI and any embedding code use.
package pipeline

import (
	"context"
	goerrors "errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ronikobrosly/retroflow/pkg/canvas"
	"github.com/ronikobrosly/retroflow/pkg/errors"
	"github.com/ronikobrosly/retroflow/pkg/layout"
	"github.com/ronikobrosly/retroflow/pkg/observability"
	"github.com/ronikobrosly/retroflow/pkg/parse"
	"github.com/ronikobrosly/retroflow/pkg/position"
	"github.com/ronikobrosly/retroflow/pkg/render"
	"github.com/ronikobrosly/retroflow/pkg/trace"
)

// Default option values.
const (
	DefaultMaxTextWidth      = 22
	DefaultMinBoxWidth       = 10
	DefaultHorizontalSpacing = 12
	DefaultVerticalSpacing   = 3
)

// titleSpacing is the number of blank rows between the title rule and
// the diagram.
const titleSpacing = 2

// canvasPad is the extra cell margin around the diagram.
const canvasPad = 5

// Options configures a render run.
type Options struct {
	MaxTextWidth      int    // wrap width for box labels
	MinBoxWidth       int    // minimum outer box width
	HorizontalSpacing int    // cells between boxes in a layer
	VerticalSpacing   int    // rows between layers
	Shadow            bool   // draw box shadows
	Rounded           bool   // rounded box corners
	Compact           bool   // no horizontal label padding
	Direction         string // "TB" or "LR"
	Title             string // optional title above the diagram
	Debug             bool   // capture a render trace
}

// DefaultOptions returns the standard render settings.
func DefaultOptions() Options {
	return Options{
		MaxTextWidth:      DefaultMaxTextWidth,
		MinBoxWidth:       DefaultMinBoxWidth,
		HorizontalSpacing: DefaultHorizontalSpacing,
		VerticalSpacing:   DefaultVerticalSpacing,
		Shadow:            true,
		Direction:         "TB",
	}
}

// ValidateAndSetDefaults fills zero-value fields with defaults and
// rejects invalid settings.
func (o *Options) ValidateAndSetDefaults() error {
	if o.MaxTextWidth <= 0 {
		o.MaxTextWidth = DefaultMaxTextWidth
	}
	if o.MinBoxWidth <= 0 {
		o.MinBoxWidth = DefaultMinBoxWidth
	}
	if o.HorizontalSpacing <= 0 {
		o.HorizontalSpacing = DefaultHorizontalSpacing
	}
	if o.VerticalSpacing <= 0 {
		o.VerticalSpacing = DefaultVerticalSpacing
	}
	if o.Direction == "" {
		o.Direction = "TB"
	}
	return errors.ValidateDirection(o.Direction)
}

// Result is the outcome of one render run.
type Result struct {
	Output string         // the rendered diagram
	Layout *layout.Result // layered layout, for debug output
	Groups []parse.Group  // group definitions from the input
	Width  int            // canvas width in cells
	Height int            // canvas height in cells

	Trace   *trace.RenderTrace // non-nil when Options.Debug is set
	Elapsed time.Duration
}

// Runner executes the render pipeline.
type Runner struct {
	opts Options
	log  *log.Logger
}

// NewRunner creates a runner with validated options. A nil logger
// disables logging.
func NewRunner(opts Options, logger *log.Logger) (*Runner, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{opts: opts, log: logger}, nil
}

// Options returns the runner's validated options.
func (r *Runner) Options() Options {
	return r.opts
}

// Generate renders the input text into an ASCII flowchart.
func (r *Runner) Generate(ctx context.Context, input string) (*Result, error) {
	start := time.Now()
	hooks := observability.Pipeline()

	var tr *trace.RenderTrace
	if r.opts.Debug {
		tr = trace.New(input, r.opts.Direction)
	}

	// Parse.
	parseStart := time.Now()
	hooks.OnParseStart(ctx, strings.Count(input, "\n")+1)
	parsed, err := parse.ParseWithGroups(input)
	if err != nil {
		hooks.OnParseComplete(ctx, 0, 0, time.Since(parseStart), err)
		return nil, err
	}
	names := parsed.Nodes()
	hooks.OnParseComplete(ctx, len(names), len(parsed.Connections), time.Since(parseStart), nil)
	r.log.Debug("parsed input",
		"nodes", len(names), "edges", len(parsed.Connections), "groups", len(parsed.Groups))
	if tr != nil {
		tr.AddStage("parse", map[string]string{
			"nodes":  fmt.Sprint(len(names)),
			"edges":  fmt.Sprint(len(parsed.Connections)),
			"groups": fmt.Sprint(len(parsed.Groups)),
		}, nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Layout.
	layoutStart := time.Now()
	hooks.OnLayoutStart(ctx, r.opts.Direction, len(names))
	res, err := layout.New().Layout(parsed.Connections)
	if err != nil {
		hooks.OnLayoutComplete(ctx, r.opts.Direction, 0, 0, time.Since(layoutStart), err)
		return nil, err
	}
	hooks.OnLayoutComplete(ctx, r.opts.Direction,
		len(res.Layers), len(res.BackEdges), time.Since(layoutStart), nil)
	r.log.Debug("layout complete",
		"layers", len(res.Layers), "backEdges", len(res.BackEdges), "cycles", res.HasCycles)
	if tr != nil {
		tr.AddStage("layout", map[string]string{
			"layers":    fmt.Sprint(len(res.Layers)),
			"backEdges": fmt.Sprint(len(res.BackEdges)),
			"cycles":    fmt.Sprint(res.HasCycles),
		}, nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Geometry.
	hooks.OnRenderStart(ctx, r.opts.Direction)
	renderStart := time.Now()

	calc := position.NewCalculator(position.Config{
		MinBoxWidth:       r.opts.MinBoxWidth,
		HorizontalSpacing: r.opts.HorizontalSpacing,
		VerticalSpacing:   r.opts.VerticalSpacing,
		Shadow:            r.opts.Shadow,
	})
	style := render.StyleSquare
	if r.opts.Rounded {
		style = render.StyleRounded
	}
	boxes := render.NewBoxRenderer(r.opts.MaxTextWidth, r.opts.Shadow, style)
	boxes.Compact = r.opts.Compact

	dims := calc.BoxDimensions(names, boxes)
	margin := render.MarginFor(len(res.BackEdges))
	horizontal := r.opts.Direction == "LR"

	var pos map[string]position.Point
	var layerBounds []position.LayerBoundary
	var colBounds []position.ColumnBoundary
	if horizontal {
		pos = calc.PositionsHorizontal(res.Layers, dims, margin)
		colBounds = calc.ColumnBoundaries(res.Layers, dims)
	} else {
		pos = calc.Positions(res.Layers, dims, margin)
		layerBounds = calc.LayerBoundaries(res.Layers, dims)
	}
	width, height := calc.CanvasSize(dims, pos)

	// Title block: center the title over the diagram, or the diagram
	// under the title when the title is wider.
	var titles render.TitleRenderer
	titleHeight, titleXOffset, diagramXOffset := 0, 0, 0
	if r.opts.Title != "" {
		titleWidth, h := titles.Measure(r.opts.Title)
		titleHeight = h + titleSpacing
		if titleWidth > width {
			diagramXOffset = (titleWidth - width) / 2
			width = titleWidth
		} else {
			titleXOffset = (width - titleWidth) / 2
		}
	}

	c, err := canvas.New(width+canvasPad, height+titleHeight+canvasPad)
	if err != nil {
		if goerrors.Is(err, canvas.ErrTooLarge) {
			err = errors.Wrap(errors.ErrCodeCanvasTooLarge, err,
				"diagram needs a %dx%d canvas", width+canvasPad, height+titleHeight+canvasPad)
		}
		hooks.OnRenderComplete(ctx, r.opts.Direction, 0, 0, time.Since(renderStart), err)
		return nil, err
	}
	if tr != nil {
		c.SetObserver(tr.Observer())
		tr.AddStage("canvas_created", map[string]string{
			"width":  fmt.Sprint(c.Width()),
			"height": fmt.Sprint(c.Height()),
		}, nil)
	}

	if r.opts.Title != "" {
		titles.Draw(c, titleXOffset, 0, r.opts.Title)
	}

	// Shift the diagram below the title and under the wider of the two.
	if titleHeight > 0 || diagramXOffset > 0 {
		for name, p := range pos {
			pos[name] = position.Point{X: p.X + diagramXOffset, Y: p.Y + titleHeight}
		}
		for i := range layerBounds {
			layerBounds[i].Top += titleHeight
			layerBounds[i].Bottom += titleHeight
			layerBounds[i].GapStart += titleHeight
			layerBounds[i].GapEnd += titleHeight
		}
		for i := range colBounds {
			colBounds[i].Left += diagramXOffset
			colBounds[i].Right += diagramXOffset
			colBounds[i].GapStart += diagramXOffset
			colBounds[i].GapEnd += diagramXOffset
		}
	}

	// Each trace stage opens a drawing phase, so placements made during
	// the phase are attributed to it; the snapshot shows the canvas as
	// the phase begins.
	if tr != nil {
		tr.AddStage("draw_boxes", map[string]string{"boxes": fmt.Sprint(len(names))}, c)
	}
	for _, name := range names {
		p := pos[name]
		boxes.Draw(c, p.X, p.Y, name, dims[name])
	}

	drawer := render.NewEdgeDrawer(calc, r.opts.Shadow)
	if tr != nil {
		tr.AddStage("draw_forward_edges", nil, c)
	}
	if horizontal {
		drawer.DrawForwardHorizontal(c, res, dims, pos, colBounds)
	} else {
		drawer.DrawForward(c, res, dims, pos, layerBounds)
	}

	if tr != nil {
		tr.AddStage("draw_back_edges", map[string]string{
			"backEdges": fmt.Sprint(len(res.BackEdges)),
		}, c)
	}
	if horizontal {
		drawer.DrawBackHorizontal(c, res, dims, pos, titleHeight)
	} else {
		drawer.DrawBack(c, res, dims, pos)
	}
	if tr != nil {
		tr.AddStage("complete", nil, c)
	}

	out := c.String()
	hooks.OnRenderComplete(ctx, r.opts.Direction, c.Width(), c.Height(), time.Since(renderStart), nil)

	elapsed := time.Since(start)
	r.log.Info("rendered flowchart",
		"direction", r.opts.Direction,
		"nodes", len(names),
		"layers", len(res.Layers),
		"backEdges", len(res.BackEdges),
		"size", fmt.Sprintf("%dx%d", c.Width(), c.Height()),
		"elapsed", elapsed)

	return &Result{
		Output:  out,
		Layout:  res,
		Groups:  parsed.Groups,
		Width:   c.Width(),
		Height:  c.Height(),
		Trace:   tr,
		Elapsed: elapsed,
	}, nil
}
