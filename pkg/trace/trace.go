// Package trace captures detailed records of a flowchart render for
// debugging.
//
// A RenderTrace collects two kinds of information: pipeline stage
// snapshots (layout, positioning, drawing) and individual character
// placements on the canvas. Attach the trace's Observer to a canvas to
// record placements as they happen.
package trace

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/ronikobrosly/retroflow/pkg/canvas"
)

// Placement records a single character written to the canvas.
type Placement struct {
	X        int
	Y        int
	Char     rune
	Previous rune
	Category canvas.Category
	Stage    string // pipeline stage active when the write happened
}

// String renders the placement in a compact single-line form.
func (p Placement) String() string {
	if p.Previous == ' ' {
		return fmt.Sprintf("(%d,%d): %q [%s] during %s", p.X, p.Y, p.Char, p.Category, p.Stage)
	}
	return fmt.Sprintf("(%d,%d): %q -> %q [%s] during %s", p.X, p.Y, p.Previous, p.Char, p.Category, p.Stage)
}

// Stage is a snapshot of pipeline state at one point in the render.
type Stage struct {
	Name   string
	Data   map[string]string
	Canvas []string // canvas rows at this point, nil if not captured
}

// String renders the stage header, its data, and a short canvas preview.
func (s Stage) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== Stage: %s ===\n", s.Name)

	keys := make([]string, 0, len(s.Data))
	for k := range s.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := s.Data[k]
		if len(v) > 100 {
			v = v[:100] + "..."
		}
		fmt.Fprintf(&b, "  %s: %s\n", k, v)
	}

	if len(s.Canvas) > 0 {
		b.WriteString("  Canvas preview (first 15 rows):\n")
		rows := s.Canvas
		if len(rows) > 15 {
			rows = rows[:15]
		}
		for _, row := range rows {
			fmt.Fprintf(&b, "    |%s|\n", row)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderTrace is the complete record of one render operation.
type RenderTrace struct {
	ID         string
	Input      string
	Direction  string
	Stages     []Stage
	Placements []Placement

	current string // name of the stage in progress
}

// New creates an empty trace for the given input and direction.
func New(input, direction string) *RenderTrace {
	return &RenderTrace{
		ID:        uuid.NewString(),
		Input:     input,
		Direction: direction,
	}
}

// Observer returns a canvas observer that records every placement,
// tagged with the trace's current stage.
func (t *RenderTrace) Observer() canvas.Observer {
	return func(x, y int, prev, next rune, cat canvas.Category) {
		t.Placements = append(t.Placements, Placement{
			X:        x,
			Y:        y,
			Char:     next,
			Previous: prev,
			Category: cat,
			Stage:    t.current,
		})
	}
}

// AddStage records a pipeline stage snapshot and makes it the current
// stage for subsequent placements. Pass a nil canvas to skip the row
// snapshot.
func (t *RenderTrace) AddStage(name string, data map[string]string, c *canvas.Canvas) {
	t.current = name
	var rows []string
	if c != nil {
		rows = c.Rows()
	}
	copied := make(map[string]string, len(data))
	for k, v := range data {
		copied[k] = v
	}
	t.Stages = append(t.Stages, Stage{Name: name, Data: copied, Canvas: rows})
}

// StageByName returns the stage with the given name, or nil.
func (t *RenderTrace) StageByName(name string) *Stage {
	for i := range t.Stages {
		if t.Stages[i].Name == name {
			return &t.Stages[i]
		}
	}
	return nil
}

// CanvasAtStage returns the canvas snapshot recorded at the named
// stage, or nil if the stage has none.
func (t *RenderTrace) CanvasAtStage(name string) []string {
	if s := t.StageByName(name); s != nil {
		return s.Canvas
	}
	return nil
}

// PlacementsAt returns every placement recorded at the coordinate.
func (t *RenderTrace) PlacementsAt(x, y int) []Placement {
	var out []Placement
	for _, p := range t.Placements {
		if p.X == x && p.Y == y {
			out = append(out, p)
		}
	}
	return out
}

// Upgrades returns the placements that modified an existing glyph
// rather than filling an empty or shadowed cell. Useful for debugging
// line merge behavior.
func (t *RenderTrace) Upgrades() []Placement {
	var out []Placement
	for _, p := range t.Placements {
		if p.Previous != ' ' && p.Previous != '░' {
			out = append(out, p)
		}
	}
	return out
}

// PlacementsByStage returns the placements whose stage name contains
// the substring.
func (t *RenderTrace) PlacementsByStage(substring string) []Placement {
	var out []Placement
	for _, p := range t.Placements {
		if strings.Contains(p.Stage, substring) {
			out = append(out, p)
		}
	}
	return out
}

// Summary returns a human-readable overview of the trace.
func (t *RenderTrace) Summary() string {
	var b strings.Builder
	rule := strings.Repeat("=", 60)

	input := t.Input
	truncated := ""
	if len(input) > 100 {
		input = input[:100]
		truncated = "..."
	}

	fmt.Fprintf(&b, "%s\nRENDER TRACE SUMMARY\n%s\n\n", rule, rule)
	fmt.Fprintf(&b, "Trace ID: %s\n", t.ID)
	fmt.Fprintf(&b, "Direction: %s\n", t.Direction)
	fmt.Fprintf(&b, "Input: %q%s\n\n", input, truncated)
	fmt.Fprintf(&b, "Pipeline stages: %d\n", len(t.Stages))

	for _, s := range t.Stages {
		mark := "-"
		if len(s.Canvas) > 0 {
			mark = "+"
		}
		fmt.Fprintf(&b, "  [%s] %s\n", mark, s.Name)
	}

	fmt.Fprintf(&b, "\nTotal character placements: %d\n", len(t.Placements))
	fmt.Fprintf(&b, "Character upgrades (overwrites): %d\n\n", len(t.Upgrades()))

	counts := make(map[canvas.Category]int)
	for _, p := range t.Placements {
		counts[p.Category]++
	}
	type kv struct {
		cat canvas.Category
		n   int
	}
	var sorted []kv
	for c, n := range counts {
		sorted = append(sorted, kv{c, n})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].n != sorted[j].n {
			return sorted[i].n > sorted[j].n
		}
		return sorted[i].cat < sorted[j].cat
	})

	b.WriteString("Placements by category:\n")
	for _, e := range sorted {
		fmt.Fprintf(&b, "  %s: %d\n", e.cat, e.n)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Dump returns the full trace: summary, every stage, every placement.
// Long for complex diagrams.
func (t *RenderTrace) Dump() string {
	var b strings.Builder
	rule := strings.Repeat("=", 60)
	sep := strings.Repeat("-", 40)

	b.WriteString(t.Summary())
	fmt.Fprintf(&b, "\n\n%s\nDETAILED TRACE\n%s\n\n", rule, rule)

	b.WriteString("PIPELINE STAGES:\n")
	b.WriteString(sep + "\n")
	for _, s := range t.Stages {
		b.WriteString(s.String())
		b.WriteString("\n\n")
	}

	b.WriteString("CHARACTER PLACEMENTS:\n")
	b.WriteString(sep + "\n")
	for _, p := range t.Placements {
		b.WriteString(p.String())
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// DumpToFile writes the complete dump to a file.
func (t *RenderTrace) DumpToFile(path string) error {
	return os.WriteFile(path, []byte(t.Dump()+"\n"), 0o644)
}

// CanvasEvolution shows the canvas snapshot at every stage that
// captured one, in order.
func (t *RenderTrace) CanvasEvolution() string {
	var b strings.Builder
	rule := strings.Repeat("=", 60)
	fmt.Fprintf(&b, "%s\nCANVAS EVOLUTION\n%s", rule, rule)

	for _, s := range t.Stages {
		if len(s.Canvas) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n\n--- After: %s ---", s.Name)
		for _, row := range s.Canvas {
			fmt.Fprintf(&b, "\n|%s|", row)
		}
	}
	return b.String()
}
