// Package parse turns flowchart input text into graph connections and
// group definitions.
//
// Input is line oriented. Blank lines and lines starting with '#' are
// ignored. Group definitions use the form "[NAME: member member ...]"
// and must appear before the first edge. Edges use the form "A -> B".
package parse

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ronikobrosly/retroflow/pkg/errors"
	"github.com/ronikobrosly/retroflow/pkg/graph"
)

// groupPattern matches a group definition line: [GROUP NAME: node1 node2].
var groupPattern = regexp.MustCompile(`^\s*\[([^:]+):\s*(.+)\]\s*$`)

// Group is a named collection of nodes declared in the input.
type Group struct {
	Name    string
	Members []string
	Order   int // declaration order, zero-based
}

// Result holds everything extracted from one input document.
type Result struct {
	Connections []graph.Edge
	Groups      []Group
}

// Nodes returns the sorted unique node names appearing in the
// connections.
func (r *Result) Nodes() []string {
	seen := make(map[string]bool)
	var nodes []string
	for _, e := range r.Connections {
		for _, n := range []string{e.From, e.To} {
			if !seen[n] {
				seen[n] = true
				nodes = append(nodes, n)
			}
		}
	}
	sort.Strings(nodes)
	return nodes
}

// Parse parses input text into connections only, discarding groups.
func Parse(input string) ([]graph.Edge, error) {
	res, err := ParseWithGroups(input)
	if err != nil {
		return nil, err
	}
	return res.Connections, nil
}

// ParseWithGroups parses input text into connections and group
// definitions.
//
// Parsing runs in two passes. The first pass separates group lines from
// edge lines and parses the edges; the second resolves group members
// against the node names the edges declared, so multi-word node names
// can be matched greedily.
func ParseWithGroups(input string) (*Result, error) {
	lines := strings.Split(strings.TrimSpace(input), "\n")

	var connections []graph.Edge
	type numbered struct {
		num  int
		text string
	}
	var groupLines []numbered
	edgeStarted := false

	for i, raw := range lines {
		lineNum := i + 1
		line := strings.TrimSpace(raw)

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if groupPattern.MatchString(line) {
			if edgeStarted {
				return nil, errors.New(errors.ErrCodeInvalidInput,
					"line %d: group definitions must appear before edge definitions: %s", lineNum, line)
			}
			groupLines = append(groupLines, numbered{lineNum, line})
			continue
		}

		edgeStarted = true

		if !strings.Contains(line, "->") {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"line %d: expected '->' in connection: %s", lineNum, line)
		}
		parts := strings.Split(line, "->")
		if len(parts) != 2 {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"line %d: invalid connection format: %s", lineNum, line)
		}

		source := strings.TrimSpace(parts[0])
		target := strings.TrimSpace(parts[1])
		if source == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "line %d: empty source node", lineNum)
		}
		if target == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "line %d: empty target node", lineNum)
		}
		if err := errors.ValidateNodeName(source); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "line %d: bad source node", lineNum)
		}
		if err := errors.ValidateNodeName(target); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "line %d: bad target node", lineNum)
		}

		connections = append(connections, graph.Edge{From: source, To: target})
	}

	if len(connections) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no valid connections found in input")
	}

	res := &Result{Connections: connections}

	known := make(map[string]bool)
	for _, n := range res.Nodes() {
		known[n] = true
	}

	memberOf := make(map[string]string)
	for order, gl := range groupLines {
		m := groupPattern.FindStringSubmatch(gl.text)
		name := strings.TrimSpace(m[1])
		memberText := strings.TrimSpace(m[2])

		if name == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "line %d: empty group name", gl.num)
		}
		if memberText == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "line %d: empty member list for group", gl.num)
		}

		members := matchNodeNames(memberText, known)
		if len(members) == 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"line %d: no valid node names found in group members: %q", gl.num, memberText)
		}

		for _, member := range members {
			if owner, ok := memberOf[member]; ok {
				return nil, errors.New(errors.ErrCodeInvalidInput,
					"line %d: node %q already belongs to group %q", gl.num, member, owner)
			}
			memberOf[member] = name
		}

		res.Groups = append(res.Groups, Group{Name: name, Members: members, Order: order})
	}

	return res, nil
}

// matchNodeNames resolves a space-separated member list against the
// known node names, longest match first so multi-word names win over
// their prefixes. Unmatched words are skipped.
func matchNodeNames(memberText string, known map[string]bool) []string {
	sorted := make([]string, 0, len(known))
	for n := range known {
		sorted = append(sorted, n)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if len(sorted[i]) != len(sorted[j]) {
			return len(sorted[i]) > len(sorted[j])
		}
		return sorted[i] < sorted[j]
	})

	var members []string
	seen := make(map[string]bool)
	remaining := strings.TrimSpace(memberText)

	for remaining != "" {
		matched := false
		for _, node := range sorted {
			if !strings.HasPrefix(remaining, node) {
				continue
			}
			end := len(node)
			if end != len(remaining) && remaining[end] != ' ' {
				continue
			}
			if !seen[node] {
				seen[node] = true
				members = append(members, node)
			}
			remaining = strings.TrimLeft(remaining[end:], " ")
			matched = true
			break
		}
		if !matched {
			idx := strings.Index(remaining, " ")
			if idx == -1 {
				break
			}
			remaining = strings.TrimLeft(remaining[idx:], " ")
		}
	}
	return members
}
