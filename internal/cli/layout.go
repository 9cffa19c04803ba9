package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ronikobrosly/retroflow/pkg/graph"
	"github.com/ronikobrosly/retroflow/pkg/layout"
	"github.com/ronikobrosly/retroflow/pkg/parse"
)

// layoutCommand creates the layout command for inspecting the layered
// layout without rendering it.
func (c *CLI) layoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "layout [file]",
		Short: "Show the layered layout for a set of connections",
		Long: `Show the layered layout for a set of connections.

Reads the same input as 'render' but prints the computed layer
assignment and detected back edges instead of drawing the diagram.
Useful for understanding why boxes end up where they do.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(args)
			if err != nil {
				return err
			}
			return c.runLayout(input)
		},
	}
}

func (c *CLI) runLayout(input string) error {
	parsed, err := parse.ParseWithGroups(input)
	if err != nil {
		return err
	}

	res, err := layout.New().Layout(parsed.Connections)
	if err != nil {
		return err
	}

	printKeyValue("Nodes", fmt.Sprint(len(parsed.Nodes())))
	printKeyValue("Edges", fmt.Sprint(len(parsed.Connections)))
	printKeyValue("Layers", fmt.Sprint(len(res.Layers)))
	printKeyValue("Back edges", fmt.Sprint(len(res.BackEdges)))
	fmt.Println()

	for i, layer := range res.Layers {
		fmt.Println(styleNumber.Render(fmt.Sprintf("%3d", i)) + "  " + strings.Join(layer, styleDim.Render(" · ")))
	}

	if len(res.BackEdges) > 0 {
		back := make([]graph.Edge, 0, len(res.BackEdges))
		for e := range res.BackEdges {
			back = append(back, e)
		}
		sort.Slice(back, func(i, j int) bool {
			if back[i].From != back[j].From {
				return back[i].From < back[j].From
			}
			return back[i].To < back[j].To
		})

		fmt.Println()
		printInfo("Back edges (drawn as return paths)")
		for _, e := range back {
			printDetail("%s %s %s", e.From, iconArrow, e.To)
		}
	}

	for _, g := range parsed.Groups {
		fmt.Println()
		printInfo("Group %q", g.Name)
		printDetail("%s", strings.Join(g.Members, ", "))
	}

	return nil
}
