package dagobert

// NodeFunc is the unary function a node executes exactly once per run.
//
// A source node (no inbound edges) is invoked with the run's payload. A
// dependent node (one or more inbound edges) is invoked with a
// map[string]any assembled by the edge operator from its upstream
// contributions (see EdgeOptions). A panic inside NodeFunc is recovered
// by the node runtime and treated the same as a returned error.
type NodeFunc func(input any) (any, error)

// EdgeOptions shapes the contribution one inbound edge makes to its
// consumer's input. All fields are optional.
type EdgeOptions struct {
	// Name overrides the key under which the upstream value appears in
	// the consumer's input map. Defaults to the producer node's ID.
	Name string

	// Transform replaces the upstream value before Filter runs.
	Transform func(v any) any

	// Filter decides whether the (transformed) value is admitted into
	// the consumer's input at all. A falsy result omits the key
	// entirely; it does not abort the consumer.
	Filter func(v any) bool
}

// Edge is one dependency arrow, from one node to another, with optional
// shaping for the value it carries.
type Edge struct {
	From    string
	To      string
	Options *EdgeOptions
}

// Graph is the caller-supplied, immutable-during-a-run description of a
// workflow: a set of nodes, the edges between them, and the designated
// start and end node.
//
// Graph can be built directly as a struct literal or incrementally via
// the chainable builder methods below.
type Graph struct {
	Nodes map[string]NodeFunc
	Edges []Edge
	Start string
	End   string
}

// NewGraph returns an empty Graph ready for AddNode/Connect calls.
func NewGraph() *Graph {
	return &Graph{Nodes: make(map[string]NodeFunc)}
}

// AddNode registers a node's function under id. Returns the graph for
// chaining.
func (g *Graph) AddNode(id string, fn NodeFunc) *Graph {
	if g.Nodes == nil {
		g.Nodes = make(map[string]NodeFunc)
	}
	g.Nodes[id] = fn
	return g
}

// Connect adds an edge from one node to another, with optional shaping.
// Multiple edges between the same ordered pair are permitted; only the
// first's Options are honored (see StructuralError-free duplicate
// handling in the planner).
func (g *Graph) Connect(from, to string, opts *EdgeOptions) *Graph {
	g.Edges = append(g.Edges, Edge{From: from, To: to, Options: opts})
	return g
}

// StartAt designates the graph's start node.
func (g *Graph) StartAt(id string) *Graph {
	g.Start = id
	return g
}

// EndAt designates the graph's end node.
func (g *Graph) EndAt(id string) *Graph {
	g.End = id
	return g
}
