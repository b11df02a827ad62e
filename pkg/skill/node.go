package skill

import "slices"

// DefaultModelNodeName is the display name of model nodes whose catalog
// entry does not provide one.
const DefaultModelNodeName = "Run ML Model"

// Position is the advisory canvas coordinate of a node (top-left anchor).
// It never affects validation or encoding.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// IsZero reports whether the position was never set.
func (p Position) IsZero() bool { return p.X == 0 && p.Y == 0 }

// Route is a declared input or output port of a catalog entry.
type Route struct {
	Route string `json:"route" bson:"route" toml:"route" yaml:"route"`
	Type  string `json:"type,omitempty" bson:"type,omitempty" toml:"type" yaml:"type,omitempty"`
}

// Ref is a weak reference from a node to a catalog entry (a trained model, a
// named transform or a named export sink). The catalog owns the entry; the
// node keeps the fields it needs to encode itself.
type Ref struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	KanID       string  `json:"kan_id,omitempty"`
	DisplayName string  `json:"displayName,omitempty"`
	ProjectType string  `json:"projectType,omitempty"`
	Category    string  `json:"category,omitempty"`
	Inputs      []Route `json:"inputs,omitempty"`
	Outputs     []Route `json:"outputs,omitempty"`
}

// WireName is the name the execution engine knows the entry by: the
// catalog id for trained models, otherwise the entry name.
func (r *Ref) WireName() string {
	if r.KanID != "" {
		return r.KanID
	}
	return r.Name
}

// InputRoute returns the first declared input route.
func (r *Ref) InputRoute() (string, bool) {
	if r == nil || len(r.Inputs) == 0 {
		return "", false
	}
	return r.Inputs[0].Route, true
}

// OutputRoute returns the first declared output route.
func (r *Ref) OutputRoute() (string, bool) {
	if r == nil || len(r.Outputs) == 0 {
		return "", false
	}
	return r.Outputs[0].Route, true
}

// Clone returns a deep copy of r. Clone of nil is nil.
func (r *Ref) Clone() *Ref {
	if r == nil {
		return nil
	}
	c := *r
	c.Inputs = slices.Clone(r.Inputs)
	c.Outputs = slices.Clone(r.Outputs)
	return &c
}

// Node is a typed vertex of the skill graph.
//
// Values returned by [Graph.Node] and [Graph.Nodes] are copies; mutate the
// graph through its methods.
type Node struct {
	ID         string
	Kind       Kind
	SubKind    SubKind
	Name       string
	Position   Position
	Ref        *Ref
	Config     Configuration
	Configured bool
}

// IsSource reports whether n is the graph's camera source.
func (n Node) IsSource() bool { return n.Kind == KindSource }

// IsExport reports whether n is an export sink.
func (n Node) IsExport() bool { return n.Kind == KindExport }

func (n *Node) clone() Node {
	c := *n
	c.Ref = n.Ref.Clone()
	c.Config = cloneConfiguration(n.Config)
	return c
}

// defaultName derives the display name of a new node from its catalog entry.
func defaultName(kind Kind, sub SubKind, ref *Ref) string {
	if ref != nil && ref.DisplayName != "" {
		return ref.DisplayName
	}
	if kind == KindModel {
		return DefaultModelNodeName
	}
	if ref != nil && ref.Name != "" {
		return ref.Name
	}
	if sub != SubKindNone {
		return sub.CatalogName()
	}
	return string(kind)
}
