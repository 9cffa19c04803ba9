package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ronikobrosly/retroflow/pkg/cache"
	"github.com/ronikobrosly/retroflow/pkg/errors"
	"github.com/ronikobrosly/retroflow/pkg/export"
	"github.com/ronikobrosly/retroflow/pkg/observability"
	"github.com/ronikobrosly/retroflow/pkg/pipeline"
)

// renderCacheTTL bounds how long rendered diagrams stay cached.
const renderCacheTTL = 7 * 24 * time.Hour

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string // output file path; empty means stdout
	noShadow bool   // inverted flag, Options.Shadow defaults on
	noCache  bool
	refresh  bool // recompute even when a cached render exists
	debug    bool // print the render trace to stderr
	png      export.PNGOptions
	pipeline.Options
}

// renderCommand creates the render command for generating flowcharts.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{
		Options: pipeline.DefaultOptions(),
		png:     export.DefaultPNGOptions(),
	}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render connection definitions as an ASCII flowchart",
		Long: `Render connection definitions as an ASCII flowchart.

Input is read from the given file, or from stdin when the file is "-"
or omitted. Each line defines one connection:

  Start -> Process Data
  Process Data -> End

Output goes to stdout, or to a file with -o. A .png output path
switches to image export; anything else writes plain text.

Defaults can be set in ~/.config/retroflow/config.toml; command-line
flags override them.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(args)
			if err != nil {
				return err
			}
			applyConfig(cmd, &opts)
			opts.Shadow = !opts.noShadow
			return c.runRender(cmd.Context(), input, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout; .png for image export)")
	cmd.Flags().StringVarP(&opts.Direction, "direction", "d", opts.Direction, "layout direction: TB (top-bottom) or LR (left-right)")
	cmd.Flags().StringVar(&opts.Title, "title", "", "title drawn above the diagram")
	cmd.Flags().IntVar(&opts.MaxTextWidth, "max-text-width", opts.MaxTextWidth, "wrap box labels at this width")
	cmd.Flags().IntVar(&opts.MinBoxWidth, "min-box-width", opts.MinBoxWidth, "minimum box width")
	cmd.Flags().IntVar(&opts.HorizontalSpacing, "h-spacing", opts.HorizontalSpacing, "cells between boxes in a layer")
	cmd.Flags().IntVar(&opts.VerticalSpacing, "v-spacing", opts.VerticalSpacing, "rows between layers")
	cmd.Flags().BoolVar(&opts.noShadow, "no-shadow", false, "disable box shadows")
	cmd.Flags().BoolVar(&opts.Rounded, "rounded", false, "use rounded box corners")
	cmd.Flags().BoolVar(&opts.Compact, "compact", false, "remove horizontal label padding")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "print the render trace to stderr")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even when a cached render exists")

	cmd.Flags().StringVar(&opts.png.Font, "font", "", "monospace font name for PNG export")
	cmd.Flags().IntVar(&opts.png.FontSize, "font-size", opts.png.FontSize, "font size for PNG export")
	cmd.Flags().IntVar(&opts.png.Scale, "scale", opts.png.Scale, "resolution multiplier for PNG export")
	cmd.Flags().IntVar(&opts.png.Padding, "padding", opts.png.Padding, "pixel padding around the PNG image")
	cmd.Flags().StringVar(&opts.png.Background, "bg", opts.png.Background, "PNG background color (hex)")
	cmd.Flags().StringVar(&opts.png.Foreground, "fg", opts.png.Foreground, "PNG foreground color (hex)")

	return cmd
}

// readInput reads the flowchart definition from the named file, or from
// stdin when no file (or "-") is given.
func readInput(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "reading stdin")
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.New(errors.ErrCodeFileNotFound, "input file not found: %s", args[0])
		}
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "reading %s", args[0])
	}
	return string(data), nil
}

// applyConfig fills render options from the user config file for every
// flag the user did not set explicitly.
func applyConfig(cmd *cobra.Command, opts *renderOpts) {
	cfg, err := userConfig()
	if err != nil {
		// A broken config file should not block rendering.
		fmt.Fprintln(os.Stderr, err)
		return
	}

	flags := cmd.Flags()
	if !flags.Changed("direction") && cfg.Direction != "" {
		opts.Direction = cfg.Direction
	}
	if !flags.Changed("max-text-width") && cfg.MaxTextWidth > 0 {
		opts.MaxTextWidth = cfg.MaxTextWidth
	}
	if !flags.Changed("min-box-width") && cfg.MinBoxWidth > 0 {
		opts.MinBoxWidth = cfg.MinBoxWidth
	}
	if !flags.Changed("h-spacing") && cfg.HSpacing > 0 {
		opts.HorizontalSpacing = cfg.HSpacing
	}
	if !flags.Changed("v-spacing") && cfg.VSpacing > 0 {
		opts.VerticalSpacing = cfg.VSpacing
	}
	if !flags.Changed("no-shadow") && cfg.Shadow != nil {
		opts.noShadow = !*cfg.Shadow
	}
	if !flags.Changed("rounded") && cfg.Rounded {
		opts.Rounded = true
	}
	if !flags.Changed("compact") && cfg.Compact {
		opts.Compact = true
	}

	if !flags.Changed("font") && cfg.PNG.Font != "" {
		opts.png.Font = cfg.PNG.Font
	}
	if !flags.Changed("font-size") && cfg.PNG.FontSize > 0 {
		opts.png.FontSize = cfg.PNG.FontSize
	}
	if !flags.Changed("scale") && cfg.PNG.Scale > 0 {
		opts.png.Scale = cfg.PNG.Scale
	}
	if !flags.Changed("padding") && cfg.PNG.Padding > 0 {
		opts.png.Padding = cfg.PNG.Padding
	}
	if !flags.Changed("bg") && cfg.PNG.Background != "" {
		opts.png.Background = cfg.PNG.Background
	}
	if !flags.Changed("fg") && cfg.PNG.Foreground != "" {
		opts.png.Foreground = cfg.PNG.Foreground
	}
}

// runRender renders the input and writes the result to the requested
// destination. Text renders are cached by input and options.
func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	opts.Debug = opts.debug

	runner, err := pipeline.NewRunner(opts.Options, c.Logger)
	if err != nil {
		return err
	}

	output, cached, err := c.renderWithCache(ctx, runner, input, opts)
	if err != nil {
		return err
	}

	format := export.FormatText
	if opts.output != "" {
		format, err = export.FormatForPath(opts.output)
		if err != nil {
			return err
		}
	}

	hooks := observability.Pipeline()
	exportStart := time.Now()
	hooks.OnExportStart(ctx, string(format), opts.output)

	switch {
	case opts.output == "":
		fmt.Println(output)
	case format == export.FormatPNG:
		err = export.SavePNG(output, opts.output, opts.png)
	default:
		err = export.SaveText(output, opts.output)
	}
	hooks.OnExportComplete(ctx, string(format), opts.output, time.Since(exportStart), err)
	if err != nil {
		return err
	}

	if opts.output != "" {
		printSuccess("Flowchart written")
		printFile(opts.output)
		printStats(strings.Count(output, "\n")+1, cached)
	}
	return nil
}

// renderWithCache returns the rendered diagram, serving it from the
// render cache when possible. The boolean reports a cache hit.
func (c *CLI) renderWithCache(ctx context.Context, runner *pipeline.Runner, input string, opts *renderOpts) (string, bool, error) {
	store := newCache(opts.noCache)
	defer store.Close()

	ropts := runner.Options()
	key := cache.NewDefaultKeyer().RenderKey(input, cache.RenderKeyOpts{
		Direction:    ropts.Direction,
		MaxTextWidth: ropts.MaxTextWidth,
		MinBoxWidth:  ropts.MinBoxWidth,
		HSpacing:     ropts.HorizontalSpacing,
		VSpacing:     ropts.VerticalSpacing,
		Shadow:       ropts.Shadow,
		Rounded:      ropts.Rounded,
		Compact:      ropts.Compact,
		Title:        ropts.Title,
	})
	hooks := observability.Cache()

	// A debug run always recomputes so the trace covers the real work.
	if !opts.refresh && !opts.debug {
		if data, found, err := store.Get(ctx, key); err == nil && found {
			hooks.OnCacheHit(ctx, "render")
			c.Logger.Debug("render cache hit", "key", key)
			return string(data), true, nil
		}
		hooks.OnCacheMiss(ctx, "render")
	}

	res, err := runner.Generate(ctx, input)
	if err != nil {
		return "", false, err
	}
	if res.Trace != nil {
		fmt.Fprintln(os.Stderr, res.Trace.Summary())
	}

	if err := store.Set(ctx, key, []byte(res.Output), renderCacheTTL); err != nil {
		c.Logger.Debug("render cache write failed", "error", err)
	} else {
		hooks.OnCacheSet(ctx, "render", len(res.Output))
	}
	return res.Output, false, nil
}
