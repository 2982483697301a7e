package dagobert

import (
	"fmt"
	"sort"
)

// plannedNode is one entry in a topological plan: a node and the edges
// that feed it, deduplicated and restricted to ancestors reachable from
// the graph's start node.
type plannedNode struct {
	NodeID  string
	Inbound []Edge
}

// planGraph converts a Graph into a deterministic topological order. It
// performs the minimum structural validation the scheduler needs to
// avoid looping or deadlocking forever: start/end existence, start
// having no inbound edges, every other reachable node having at least
// one inbound edge, end being reachable from start, and the absence of
// cycles among nodes reachable from start.
//
// Nodes not reachable from start are silently excluded from the plan —
// they could never receive a message, so they simply never run. This is
// the resolution recorded in DESIGN.md for the graph-validation open
// question the source spec leaves to the implementer.
func planGraph(g *Graph) ([]plannedNode, error) {
	if g == nil {
		return nil, &StructuralError{Message: "graph is nil", Code: "NIL_GRAPH"}
	}
	if _, ok := g.Nodes[g.Start]; !ok {
		return nil, &StructuralError{
			Message: fmt.Sprintf("start node %q not found", g.Start),
			Code:    "START_NOT_FOUND",
		}
	}
	if _, ok := g.Nodes[g.End]; !ok {
		return nil, &StructuralError{
			Message: fmt.Sprintf("end node %q not found", g.End),
			Code:    "END_NOT_FOUND",
		}
	}

	type pairKey struct{ from, to string }
	seen := make(map[pairKey]bool)
	inbound := make(map[string][]Edge)
	adjacency := make(map[string][]string)

	for _, e := range g.Edges {
		if _, ok := g.Nodes[e.From]; !ok {
			return nil, &StructuralError{
				Message: fmt.Sprintf("edge references unknown node %q", e.From),
				Code:    "NODE_NOT_FOUND",
			}
		}
		if _, ok := g.Nodes[e.To]; !ok {
			return nil, &StructuralError{
				Message: fmt.Sprintf("edge references unknown node %q", e.To),
				Code:    "NODE_NOT_FOUND",
			}
		}
		k := pairKey{e.From, e.To}
		if seen[k] {
			continue // first edge between an ordered pair wins; duplicates are redundant.
		}
		seen[k] = true
		inbound[e.To] = append(inbound[e.To], e)
		adjacency[e.From] = append(adjacency[e.From], e.To)
	}

	if len(inbound[g.Start]) > 0 {
		return nil, &StructuralError{
			Message: fmt.Sprintf("start node %q must not have inbound edges", g.Start),
			Code:    "START_HAS_INBOUND",
		}
	}

	reachable := map[string]bool{g.Start: true}
	queue := []string{g.Start}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, to := range adjacency[n] {
			if !reachable[to] {
				reachable[to] = true
				queue = append(queue, to)
			}
		}
	}

	if !reachable[g.End] {
		return nil, &StructuralError{
			Message: fmt.Sprintf("end node %q is not reachable from start node %q", g.End, g.Start),
			Code:    "END_UNREACHABLE",
		}
	}

	for n := range reachable {
		if n == g.Start {
			continue
		}
		if len(inbound[n]) == 0 {
			return nil, &StructuralError{
				Message: fmt.Sprintf("node %q is reachable from start but has no inbound edges", n),
				Code:    "DANGLING_SOURCE",
			}
		}
	}

	indegree := make(map[string]int, len(reachable))
	for n := range reachable {
		indegree[n] = 0
	}
	for to, edges := range inbound {
		if !reachable[to] {
			continue
		}
		for _, e := range edges {
			if reachable[e.From] {
				indegree[to]++
			}
		}
	}

	var ready []string
	for n := range reachable {
		if indegree[n] == 0 {
			ready = append(ready, n)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(reachable))
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)

		var unlocked []string
		for _, to := range adjacency[n] {
			if !reachable[to] {
				continue
			}
			indegree[to]--
			if indegree[to] == 0 {
				unlocked = append(unlocked, to)
			}
		}
		sort.Strings(unlocked)
		ready = append(ready, unlocked...)
		sort.Strings(ready)
	}

	if len(order) != len(reachable) {
		return nil, &StructuralError{Message: "graph contains a cycle", Code: "CYCLE_DETECTED"}
	}

	plan := make([]plannedNode, 0, len(order))
	for _, n := range order {
		var ib []Edge
		for _, e := range inbound[n] {
			if reachable[e.From] {
				ib = append(ib, e)
			}
		}
		plan = append(plan, plannedNode{NodeID: n, Inbound: ib})
	}
	return plan, nil
}
