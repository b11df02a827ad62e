package skill

import (
	"fmt"
	"slices"
	"strconv"

	errs "github.com/matzehuels/skillgraph/pkg/errors"
)

// SourceNodeID is the id of the camera source in graphs created with [New].
const SourceNodeID = "0"

// Name and route of the built-in camera source entry.
const (
	SourceEntryName = "rtsp"
	DefaultRoute    = "f"
)

// DefaultSourceRef returns the catalog reference used for the source when
// [New] is given none.
func DefaultSourceRef() *Ref {
	return &Ref{
		Name:        SourceEntryName,
		DisplayName: "RTSP",
		Outputs:     []Route{{Route: DefaultRoute, Type: "frame"}},
	}
}

// Graph is a skill pipeline graph: an arena of nodes addressed by ids that
// are never reused, plus one graph-level edge index.
//
// The zero value is not usable; create graphs with [New] or [Restore].
type Graph struct {
	nodes  []*Node
	index  map[string]*Node
	edges  []Edge
	next   int
	source string
}

// New creates a graph holding only the preconfigured camera source. A nil
// sourceRef selects [DefaultSourceRef].
func New(sourceRef *Ref) *Graph {
	if sourceRef == nil {
		sourceRef = DefaultSourceRef()
	}
	g := &Graph{index: make(map[string]*Node)}
	src := &Node{
		ID:         SourceNodeID,
		Kind:       KindSource,
		Name:       defaultName(KindSource, SubKindNone, sourceRef),
		Ref:        sourceRef.Clone(),
		Config:     DefaultSourceConfig(),
		Configured: true,
	}
	g.insert(src)
	g.source = src.ID
	g.next = 1
	return g
}

// Restore rebuilds a graph from decoded nodes and edges. Exactly one node
// must be the source, ids must be unique and every edge must reference
// existing nodes. The id counter resumes one past the highest numeric id.
func Restore(nodes []Node, edges []Edge) (*Graph, error) {
	g := &Graph{index: make(map[string]*Node, len(nodes))}
	maxID := -1
	for i := range nodes {
		n := nodes[i].clone()
		if !n.Kind.Valid() {
			return nil, fmt.Errorf("node %s: %w: %q", n.ID, ErrUnknownKind, n.Kind)
		}
		if _, dup := g.index[n.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateNodeID, n.ID)
		}
		if n.Kind == KindSource {
			if g.source != "" {
				return nil, fmt.Errorf("%w: %s and %s", ErrMultipleSources, g.source, n.ID)
			}
			g.source = n.ID
		}
		if v, err := strconv.Atoi(n.ID); err == nil && v > maxID {
			maxID = v
		}
		g.insert(&n)
	}
	if g.source == "" {
		return nil, ErrNoSource
	}
	g.next = max(maxID+1, len(nodes))

	for _, e := range edges {
		c := e.Connection.withDefaults()
		if g.index[c.Source] == nil || g.index[c.Target] == nil {
			return nil, fmt.Errorf("%w: %s -> %s", ErrDanglingEdge, c.Source, c.Target)
		}
		if err := CheckConnection(g.Connections(), c); err != nil {
			return nil, err
		}
		id := e.ID
		if id == "" {
			id = EdgeID(c)
		}
		g.edges = append(g.edges, Edge{ID: id, Connection: c})
	}
	return g, nil
}

func (g *Graph) insert(n *Node) {
	g.nodes = append(g.nodes, n)
	g.index[n.ID] = n
}

// AddNode appends a node of the given kind and returns its id. For transform
// and export nodes an empty subKind is derived from the reference name.
func (g *Graph) AddNode(kind Kind, sub SubKind, ref *Ref) (string, error) {
	const op = "add node"
	switch {
	case kind == KindSource:
		return "", reject(op, "", ErrMultipleSources)
	case !kind.Valid():
		return "", reject(op, "", fmt.Errorf("%w: %q", ErrUnknownKind, kind))
	}
	if kind.HasSubKind() {
		if sub == SubKindNone && ref != nil {
			sub = SubKindFromCatalogName(ref.Name)
		}
		if sub.Kind() != kind {
			return "", reject(op, "", fmt.Errorf("%w: %q for %s", ErrUnknownSubKind, sub, kind))
		}
	} else if sub != SubKindNone {
		return "", reject(op, "", fmt.Errorf("%w: %s nodes take no subKind", ErrUnknownSubKind, kind))
	}

	id := strconv.Itoa(g.next)
	g.next++
	g.insert(&Node{
		ID:      id,
		Kind:    kind,
		SubKind: sub,
		Name:    defaultName(kind, sub, ref),
		Ref:     ref.Clone(),
	})
	return id, nil
}

// RemoveNode deletes a node together with every edge touching it.
func (g *Graph) RemoveNode(id string) error {
	const op = "remove node"
	n := g.index[id]
	switch {
	case n == nil:
		return reject(op, id, ErrUnknownNode)
	case n.Kind == KindSource:
		return reject(op, id, ErrSourceImmutable)
	}
	g.nodes = slices.DeleteFunc(g.nodes, func(x *Node) bool { return x.ID == id })
	delete(g.index, id)
	g.edges = slices.DeleteFunc(g.edges, func(e Edge) bool { return e.Source == id || e.Target == id })
	return nil
}

// AddEdge materializes a connection after [CheckConnection] accepts it.
// Empty handles default to the two-port names.
func (g *Graph) AddEdge(c Connection) (string, error) {
	const op = "add edge"
	c = c.withDefaults()
	src, dst := g.index[c.Source], g.index[c.Target]
	switch {
	case src == nil:
		return "", reject(op, c.Source, ErrUnknownNode)
	case dst == nil:
		return "", reject(op, c.Target, ErrUnknownNode)
	case c.Source == c.Target:
		return "", reject(op, c.Source, ErrSelfLoop)
	case src.Kind == KindExport:
		return "", reject(op, c.Source, fmt.Errorf("%w: export nodes have no output", ErrNoSuchPort))
	case dst.Kind == KindSource:
		return "", reject(op, c.Target, fmt.Errorf("%w: the source has no input", ErrNoSuchPort))
	}
	if err := CheckConnection(g.Connections(), c); err != nil {
		return "", err
	}
	id := EdgeID(c)
	g.edges = append(g.edges, Edge{ID: id, Connection: c})
	return id, nil
}

// RemoveEdge deletes an edge by id.
func (g *Graph) RemoveEdge(id string) error {
	i := slices.IndexFunc(g.edges, func(e Edge) bool { return e.ID == id })
	if i < 0 {
		return reject("remove edge", id, ErrUnknownEdge)
	}
	g.edges = slices.Delete(g.edges, i, i+1)
	return nil
}

// SetNodeConfiguration validates cfg and stores it on the node, marking the
// node configured. The variant must match the node's kind and subKind.
func (g *Graph) SetNodeConfiguration(id string, cfg Configuration) error {
	const op = "configure node"
	n := g.index[id]
	switch {
	case n == nil:
		return reject(op, id, ErrUnknownNode)
	case n.Kind == KindSource:
		return reject(op, id, ErrSourceImmutable)
	case cfg == nil:
		return reject(op, id, fmt.Errorf("%w: missing configuration", ErrInvalidConfig))
	case cfg.Kind() != n.Kind || cfg.SubKind() != n.SubKind:
		return reject(op, id, fmt.Errorf("%w: %T for %s/%s", ErrConfigMismatch, cfg, n.Kind, n.SubKind))
	}
	if err := ValidateConfiguration(cfg); err != nil {
		return reject(op, id, err)
	}
	n.Config = cloneConfiguration(normalize(cfg))
	n.Configured = true
	if mc, ok := n.Config.(ModelConfig); ok && n.Ref != nil &&
		(mc.Model.ID == n.Ref.ID || mc.Model.Name == n.Ref.Name) {
		alignModel(n)
	}
	return nil
}

// alignModel copies the model selection and category of a model node's
// configuration from its reference. Only the reference is on the wire.
func alignModel(n *Node) {
	cfg, ok := n.Config.(ModelConfig)
	if !ok || n.Ref == nil {
		return
	}
	cfg.Model = ModelSelection{ID: n.Ref.ID, Name: n.Ref.Name}
	cfg.Category = n.Ref.Category
	n.Config = cfg
}

// SetNodeReference replaces the catalog reference of a non-source node. A
// model configuration takes its selection and category from ref.
func (g *Graph) SetNodeReference(id string, ref *Ref) error {
	const op = "set reference"
	n := g.index[id]
	switch {
	case n == nil:
		return reject(op, id, ErrUnknownNode)
	case n.Kind == KindSource:
		return reject(op, id, ErrSourceImmutable)
	}
	n.Ref = ref.Clone()
	alignModel(n)
	return nil
}

// RenameNode changes the display name of a node.
func (g *Graph) RenameNode(id, name string) error {
	n := g.index[id]
	if n == nil {
		return reject("rename node", id, ErrUnknownNode)
	}
	if err := errs.ValidateName(name); err != nil {
		return reject("rename node", id, err)
	}
	n.Name = name
	return nil
}

// MoveNode sets the advisory canvas position of a node.
func (g *Graph) MoveNode(id string, p Position) error {
	n := g.index[id]
	if n == nil {
		return reject("move node", id, ErrUnknownNode)
	}
	n.Position = p
	return nil
}

// Node returns a copy of the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	n := g.index[id]
	if n == nil {
		return Node{}, false
	}
	return n.clone(), true
}

// Nodes returns copies of all nodes in insertion order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = n.clone()
	}
	return out
}

// NodeIDs returns all node ids in insertion order.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, len(g.nodes))
	for i, n := range g.nodes {
		ids[i] = n.ID
	}
	return ids
}

// Source returns a copy of the camera source node.
func (g *Graph) Source() Node {
	return g.index[g.source].clone()
}

// NodeCount returns the number of nodes, the source included.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Edges returns a copy of the edge list in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// Connections derives the connection list from the edge index.
func (g *Graph) Connections() []Connection {
	out := make([]Connection, len(g.edges))
	for i, e := range g.edges {
		out[i] = e.Connection
	}
	return out
}

// ConnectMap returns the connections entering or leaving the node.
func (g *Graph) ConnectMap(id string) []Connection {
	var out []Connection
	for _, e := range g.edges {
		if e.Source == id || e.Target == id {
			out = append(out, e.Connection)
		}
	}
	return out
}

// InDegree returns the number of edges entering the node.
func (g *Graph) InDegree(id string) int {
	d := 0
	for _, e := range g.edges {
		if e.Target == id {
			d++
		}
	}
	return d
}

// OutDegree returns the number of edges leaving the node.
func (g *Graph) OutDegree(id string) int {
	d := 0
	for _, e := range g.edges {
		if e.Source == id {
			d++
		}
	}
	return d
}

// Children returns the targets of edges leaving the node, in edge order.
func (g *Graph) Children(id string) []string {
	var out []string
	for _, e := range g.edges {
		if e.Source == id {
			out = append(out, e.Target)
		}
	}
	return out
}

// Parents returns the sources of edges entering the node, in edge order.
func (g *Graph) Parents(id string) []string {
	var out []string
	for _, e := range g.edges {
		if e.Target == id {
			out = append(out, e.Source)
		}
	}
	return out
}

// NextID returns the id the next added node will receive.
func (g *Graph) NextID() string { return strconv.Itoa(g.next) }

// ReserveIDs advances the id counter to at least next. The counter never
// moves backwards.
func (g *Graph) ReserveIDs(next int) {
	if next > g.next {
		g.next = next
	}
}

// Clone returns a deep copy of the graph, id counter included.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		index:  make(map[string]*Node, len(g.nodes)),
		edges:  slices.Clone(g.edges),
		next:   g.next,
		source: g.source,
	}
	for _, n := range g.nodes {
		nc := n.clone()
		c.insert(&nc)
	}
	return c
}
