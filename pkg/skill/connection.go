package skill

import (
	"errors"
	"fmt"
)

// Port handle names of the two-port node model.
const (
	SourceHandle = "source"
	TargetHandle = "target"
)

// Sentinel errors used as rejection reasons.
var (
	// ErrConnectionRejected is returned when a (target, targetHandle) pair is
	// already bound by another connection.
	ErrConnectionRejected = errors.New("skill: target handle already connected")

	// ErrUnknownNode is returned when an operation names a node id not in the graph.
	ErrUnknownNode = errors.New("skill: unknown node")

	// ErrUnknownEdge is returned when an operation names an edge id not in the graph.
	ErrUnknownEdge = errors.New("skill: unknown edge")

	// ErrSourceImmutable is returned when a mutation targets the camera source.
	ErrSourceImmutable = errors.New("skill: source node cannot be removed or reconfigured")

	// ErrConfigMismatch is returned when a configuration variant does not
	// belong to the node's kind and subKind.
	ErrConfigMismatch = errors.New("skill: configuration does not match node kind")

	// ErrInvalidConfig is returned when a configuration fails field validation.
	ErrInvalidConfig = errors.New("skill: invalid configuration")

	// ErrSelfLoop is returned when a connection would feed a node into itself.
	ErrSelfLoop = errors.New("skill: self-loop")

	// ErrNoSuchPort is returned for connections leaving an export or entering the source.
	ErrNoSuchPort = errors.New("skill: node has no such port")

	// ErrMultipleSources is returned when a second source node is added or restored.
	ErrMultipleSources = errors.New("skill: graph already has a source")

	// ErrNoSource is returned when a restored graph has no source node.
	ErrNoSource = errors.New("skill: graph has no source")

	// ErrDuplicateNodeID is returned when restored nodes share an id.
	ErrDuplicateNodeID = errors.New("skill: duplicate node id")

	// ErrDanglingEdge is returned when a restored edge references a missing node.
	ErrDanglingEdge = errors.New("skill: edge references missing node")

	ErrUnknownKind    = errors.New("skill: unknown node kind")
	ErrUnknownSubKind = errors.New("skill: unknown subKind")
)

// Connection is a port-qualified link between two nodes, the unit checked
// before an edge is materialized.
type Connection struct {
	Source       string `json:"source"`
	SourceHandle string `json:"sourceHandle"`
	Target       string `json:"target"`
	TargetHandle string `json:"targetHandle"`
}

// Connect returns the connection from src's output port to dst's input port.
func Connect(src, dst string) Connection {
	return Connection{Source: src, SourceHandle: SourceHandle, Target: dst, TargetHandle: TargetHandle}
}

// withDefaults fills empty handles with the two-port names.
func (c Connection) withDefaults() Connection {
	if c.SourceHandle == "" {
		c.SourceHandle = SourceHandle
	}
	if c.TargetHandle == "" {
		c.TargetHandle = TargetHandle
	}
	return c
}

// Edge is a materialized connection.
type Edge struct {
	ID string `json:"id"`
	Connection
}

// EdgeID derives the editor's edge id for a connection.
func EdgeID(c Connection) string {
	c = c.withDefaults()
	return fmt.Sprintf("reactflow__edge-%s%s-%s%s", c.Source, c.SourceHandle, c.Target, c.TargetHandle)
}

// CheckConnection reports whether c may be added next to existing. A
// (target, targetHandle) pair may be bound at most once; source fan-out is
// unrestricted. The check knows nothing about node kinds.
func CheckConnection(existing []Connection, c Connection) error {
	c = c.withDefaults()
	for _, e := range existing {
		e = e.withDefaults()
		if e.Target == c.Target && e.TargetHandle == c.TargetHandle {
			return &Rejection{Op: "add edge", ID: c.Target, Reason: ErrConnectionRejected}
		}
	}
	return nil
}

// Rejection describes an illegal mutation. The graph is unchanged when one
// is returned.
type Rejection struct {
	Op     string
	ID     string
	Reason error
}

func (r *Rejection) Error() string {
	if r.ID == "" {
		return fmt.Sprintf("%s: %v", r.Op, r.Reason)
	}
	return fmt.Sprintf("%s %s: %v", r.Op, r.ID, r.Reason)
}

func (r *Rejection) Unwrap() error { return r.Reason }

func reject(op, id string, reason error) *Rejection {
	return &Rejection{Op: op, ID: id, Reason: reason}
}
