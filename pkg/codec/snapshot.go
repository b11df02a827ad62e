package codec

import (
	"encoding/json"
	"fmt"
	"strconv"

	errs "github.com/matzehuels/skillgraph/pkg/errors"
	"github.com/matzehuels/skillgraph/pkg/skill"
)

// SnapshotVersion is the current snapshot format version.
const SnapshotVersion = 1

// Snapshot is the full-fidelity editor state.
type Snapshot struct {
	Version int            `json:"version"`
	NextID  int            `json:"next_id"`
	Nodes   []SnapshotNode `json:"nodes"`
	Edges   []skill.Edge   `json:"edges"`
}

// SnapshotNode is a node with its configuration tagged by variant.
type SnapshotNode struct {
	ID         string         `json:"id"`
	Kind       skill.Kind     `json:"type"`
	SubKind    skill.SubKind  `json:"subKind,omitempty"`
	Name       string         `json:"name"`
	Position   skill.Position `json:"position"`
	Ref        *skill.Ref     `json:"model,omitempty"`
	Configured bool           `json:"isEditDone"`
	Config     *TaggedConfig  `json:"configurations,omitempty"`
}

// TaggedConfig carries a configuration with the kind and subKind that
// select its Go type.
type TaggedConfig struct {
	Kind    skill.Kind      `json:"kind"`
	SubKind skill.SubKind   `json:"subKind,omitempty"`
	Data    json.RawMessage `json:"data"`
}

// NewSnapshot captures g.
func NewSnapshot(g *skill.Graph) (Snapshot, error) {
	next, _ := strconv.Atoi(g.NextID())
	s := Snapshot{Version: SnapshotVersion, NextID: next, Edges: g.Edges()}
	for _, n := range g.Nodes() {
		sn := SnapshotNode{
			ID:         n.ID,
			Kind:       n.Kind,
			SubKind:    n.SubKind,
			Name:       n.Name,
			Position:   n.Position,
			Ref:        n.Ref,
			Configured: n.Configured,
		}
		if n.Config != nil {
			data, err := json.Marshal(n.Config)
			if err != nil {
				return Snapshot{}, fmt.Errorf("node %s: %w", n.ID, err)
			}
			sn.Config = &TaggedConfig{Kind: n.Config.Kind(), SubKind: n.Config.SubKind(), Data: data}
		}
		s.Nodes = append(s.Nodes, sn)
	}
	return s, nil
}

// Graph rebuilds the graph captured by s.
func (s Snapshot) Graph() (*skill.Graph, error) {
	if s.Version > SnapshotVersion {
		return nil, errs.New(errs.ErrCodeUnsupported, "snapshot version %d", s.Version)
	}
	nodes := make([]skill.Node, 0, len(s.Nodes))
	for _, sn := range s.Nodes {
		n := skill.Node{
			ID:         sn.ID,
			Kind:       sn.Kind,
			SubKind:    sn.SubKind,
			Name:       sn.Name,
			Position:   sn.Position,
			Ref:        sn.Ref,
			Configured: sn.Configured,
		}
		if sn.Config != nil {
			cfg, err := unmarshalConfig(sn.Config)
			if err != nil {
				return nil, errs.Wrap(errs.ErrCodeInvalidPayload, err, "node %s", sn.ID)
			}
			n.Config = cfg
		}
		nodes = append(nodes, n)
	}
	g, err := skill.Restore(nodes, s.Edges)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidPayload, err, "restore snapshot")
	}
	g.ReserveIDs(s.NextID)
	return g, nil
}

// MarshalSnapshot serializes g as a snapshot.
func MarshalSnapshot(g *skill.Graph) ([]byte, error) {
	s, err := NewSnapshot(g)
	if err != nil {
		return nil, err
	}
	return json.Marshal(s)
}

// UnmarshalSnapshot restores a graph from snapshot bytes.
func UnmarshalSnapshot(data []byte) (*skill.Graph, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidPayload, err, "decode snapshot")
	}
	return s.Graph()
}

// DecodeConfig parses data as the configuration selected by kind and sub.
func DecodeConfig(kind skill.Kind, sub skill.SubKind, data []byte) (skill.Configuration, error) {
	cfg, err := unmarshalConfig(&TaggedConfig{Kind: kind, SubKind: sub, Data: data})
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "%s configuration", kind)
	}
	return cfg, nil
}

func unmarshalConfig(t *TaggedConfig) (skill.Configuration, error) {
	switch t.Kind {
	case skill.KindSource:
		return unmarshalAs[skill.SourceConfig](t.Data)
	case skill.KindModel:
		return unmarshalAs[skill.ModelConfig](t.Data)
	}
	switch t.SubKind {
	case skill.SubKindFilter:
		return unmarshalAs[skill.FilterConfig](t.Data)
	case skill.SubKindGrpc:
		return unmarshalAs[skill.GrpcConfig](t.Data)
	case skill.SubKindSnippet:
		return unmarshalAs[skill.SnippetConfig](t.Data)
	case skill.SubKindIoTHub:
		return unmarshalAs[skill.IoTHubConfig](t.Data)
	case skill.SubKindIoTEdge:
		return unmarshalAs[skill.IoTEdgeConfig](t.Data)
	case skill.SubKindHTTP:
		return unmarshalAs[skill.HTTPConfig](t.Data)
	case skill.SubKindMQTT:
		return unmarshalAs[skill.MQTTConfig](t.Data)
	}
	return nil, fmt.Errorf("unknown configuration %s/%s", t.Kind, t.SubKind)
}

func unmarshalAs[T skill.Configuration](data json.RawMessage) (skill.Configuration, error) {
	var c T
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return c, nil
}
