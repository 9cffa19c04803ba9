// Package export saves rendered flowcharts to files.
//
// Two formats are supported: plain text (the diagram as-is) and PNG,
// which rasterizes the diagram with a monospace font so the character
// grid is preserved exactly.
package export

import (
	"os"
	"strings"
	"unicode/utf8"

	"github.com/flopp/go-findfont"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"

	"github.com/ronikobrosly/retroflow/pkg/errors"
)

// PNGOptions controls PNG rasterization.
type PNGOptions struct {
	FontSize   int    // font size in points
	Background string // background color as hex, e.g. "#FFFFFF"
	Foreground string // text color as hex
	Padding    int    // padding around the diagram in pixels
	Font       string // font name to try first, empty for system defaults
	Scale      int    // resolution multiplier
}

// DefaultPNGOptions returns the standard PNG export settings.
func DefaultPNGOptions() PNGOptions {
	return PNGOptions{
		FontSize:   16,
		Background: "#FFFFFF",
		Foreground: "#000000",
		Padding:    20,
		Scale:      2,
	}
}

// SaveText writes the flowchart to a text file.
func SaveText(flowchart, path string) error {
	if err := errors.ValidateOutputPath(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(flowchart), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "writing %s", path)
	}
	return nil
}

// monospaceFonts are tried in order when no explicit font is given.
var monospaceFonts = []string{
	"DejaVuSansMono",
	"DejaVu Sans Mono",
	"Liberation Mono",
	"Ubuntu Mono",
	"Monaco",
	"Menlo",
	"Consolas",
	"Cascadia Code",
	"Courier New",
}

// resolveFace loads a monospace font face at the given size. An
// explicitly preferred font must exist; otherwise the system fonts are
// tried in order, falling back to the bundled Go Mono face.
func resolveFace(preferred string, points float64) (font.Face, error) {
	if preferred != "" {
		path, err := findfont.Find(preferred)
		if err != nil {
			return nil, errors.New(errors.ErrCodeFontNotFound, "font %q not found", preferred)
		}
		face, err := gg.LoadFontFace(path, points)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeFontNotFound, err, "loading font %s", path)
		}
		return face, nil
	}

	for _, name := range monospaceFonts {
		path, err := findfont.Find(name)
		if err != nil {
			continue
		}
		if face, err := gg.LoadFontFace(path, points); err == nil {
			return face, nil
		}
	}

	ft, err := opentype.Parse(gomono.TTF)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFontNotFound, err, "parsing bundled font")
	}
	face, err := opentype.NewFace(ft, &opentype.FaceOptions{
		Size:    points,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFontNotFound, err, "loading bundled font")
	}
	return face, nil
}

// imageSize computes the output image dimensions in pixels for the
// given diagram lines and character cell metrics.
func imageSize(lines []string, charWidth, lineHeight float64, padding, scale int) (int, int) {
	maxLen := 0
	for _, line := range lines {
		if n := utf8.RuneCountInString(line); n > maxLen {
			maxLen = n
		}
	}

	pad := padding * scale
	w := int(charWidth)*maxLen + pad*2
	h := int(lineHeight)*len(lines) + pad*2

	// Resulting images never go below 100x100 logical pixels.
	return max(w, 100*scale), max(h, 100*scale)
}

// SavePNG rasterizes the flowchart and writes it as a PNG image.
//
// Every character occupies one fixed-width cell, so box-drawing glyphs
// line up exactly as in the text output.
func SavePNG(flowchart, path string, opts PNGOptions) error {
	if err := errors.ValidateOutputPath(path); err != nil {
		return err
	}
	if opts.Scale < 1 {
		opts.Scale = 1
	}
	if opts.FontSize <= 0 {
		opts.FontSize = 16
	}

	points := float64(opts.FontSize * opts.Scale)
	face, err := resolveFace(opts.Font, points)
	if err != nil {
		return err
	}

	// Measure character cell size with a throwaway context before
	// sizing the real image.
	probe := gg.NewContext(1, 1)
	probe.SetFontFace(face)
	charWidth, charHeight := probe.MeasureString("M")
	lineHeight := charHeight * 1.2

	lines := splitLines(flowchart)
	width, height := imageSize(lines, charWidth, lineHeight, opts.Padding, opts.Scale)

	dc := gg.NewContext(width, height)
	dc.SetHexColor(background(opts.Background))
	dc.Clear()
	dc.SetFontFace(face)
	dc.SetHexColor(foreground(opts.Foreground))

	pad := float64(opts.Padding * opts.Scale)
	y := pad + charHeight
	for _, line := range lines {
		x := pad
		for _, r := range line {
			dc.DrawString(string(r), x, y)
			x += charWidth
		}
		y += lineHeight
	}

	if err := dc.SavePNG(path); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "writing %s", path)
	}
	return nil
}

func background(hex string) string {
	if hex == "" {
		return "#FFFFFF"
	}
	return hex
}

func foreground(hex string) string {
	if hex == "" {
		return "#000000"
	}
	return hex
}

func splitLines(s string) []string {
	return strings.Split(s, "\n")
}
