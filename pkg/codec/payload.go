// Package codec translates skill graphs to and from the wire payload the
// execution engine consumes, and to and from the full-fidelity editor
// snapshot used to restore a session.
//
// # Wire payload
//
//	{
//	  "nodes": [{"id": "0", "type": "source", "name": "rtsp", "configurations": {...}}],
//	  "edges": [{"source": {"node": "0", "route": "f"}, "target": {"node": "1", "route": "f"}}],
//	  "parameters": {"rtsp": "invalid", ...}
//	}
//
// [Encode] projects each node's configuration onto the fields its kind
// needs and resolves edge ports into the routes declared by the node's
// catalog reference. [Decode] reverses this with the help of a
// [catalog.Catalog]. Positions, display names and per-field error strings
// are not part of the payload; a decoded graph needs a layout pass.
//
// # Snapshot
//
// [MarshalSnapshot] and [UnmarshalSnapshot] keep everything, positions and
// the id counter included.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	errs "github.com/matzehuels/skillgraph/pkg/errors"
)

// ParamPlaceholder is the value of every parameter in an encoded payload.
// A later deployment step substitutes the real values.
const ParamPlaceholder = "invalid"

// Payload is the wire format of a skill pipeline.
type Payload struct {
	Nodes      []NodePayload `json:"nodes" bson:"nodes"`
	Edges      []EdgePayload `json:"edges" bson:"edges"`
	Parameters Parameters    `json:"parameters" bson:"parameters"`
}

// NodePayload is one node on the wire. Name is the catalog id for model
// nodes and the catalog entry name for every other kind.
type NodePayload struct {
	ID             string            `json:"id" bson:"id"`
	Type           string            `json:"type" bson:"type"`
	Name           string            `json:"name" bson:"name"`
	Configurations map[string]string `json:"configurations" bson:"configurations"`
}

// Endpoint addresses a route of a node.
type Endpoint struct {
	Node  string `json:"node" bson:"node"`
	Route string `json:"route" bson:"route"`
}

// EdgePayload is one edge on the wire.
type EdgePayload struct {
	Source Endpoint `json:"source" bson:"source"`
	Target Endpoint `json:"target" bson:"target"`
}

// Parameters holds the deployment placeholders of a payload.
type Parameters struct {
	RTSP                string `json:"rtsp" bson:"rtsp"`
	FPS                 string `json:"fps" bson:"fps"`
	InstanceDisplayName string `json:"instance_displayname" bson:"instance_displayname"`
	SkillDisplayName    string `json:"skill_displayname" bson:"skill_displayname"`
	DeviceDisplayName   string `json:"device_displayname" bson:"device_displayname"`
	DeviceID            string `json:"device_id" bson:"device_id"`
}

// DefaultParameters returns the parameter block with every value set to
// [ParamPlaceholder].
func DefaultParameters() Parameters {
	return Parameters{
		RTSP:                ParamPlaceholder,
		FPS:                 ParamPlaceholder,
		InstanceDisplayName: ParamPlaceholder,
		SkillDisplayName:    ParamPlaceholder,
		DeviceDisplayName:   ParamPlaceholder,
		DeviceID:            ParamPlaceholder,
	}
}

// MarshalPayload converts a payload to indented JSON.
func MarshalPayload(p Payload) ([]byte, error) {
	var buf bytes.Buffer
	if err := WritePayload(p, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WritePayload writes a payload as indented JSON.
func WritePayload(p Payload, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// UnmarshalPayload parses JSON into a payload and checks its shape.
func UnmarshalPayload(data []byte) (Payload, error) {
	return ReadPayload(bytes.NewReader(data))
}

// ReadPayload decodes a JSON payload from r.
func ReadPayload(r io.Reader) (Payload, error) {
	var p Payload
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return Payload{}, errs.Wrap(errs.ErrCodeInvalidPayload, err, "decode payload")
	}
	if err := checkPayload(p); err != nil {
		return Payload{}, err
	}
	return p, nil
}

// ReadPayloadFile reads a JSON payload file.
func ReadPayloadFile(path string) (Payload, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Payload{}, errs.Wrap(errs.ErrCodeFileNotFound, err, "payload %s", path)
		}
		return Payload{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadPayload(f)
}

func checkPayload(p Payload) error {
	ids := make(map[string]bool, len(p.Nodes))
	for i, n := range p.Nodes {
		if n.ID == "" {
			return errs.New(errs.ErrCodeInvalidPayload, "node %d has no id", i)
		}
		if ids[n.ID] {
			return errs.New(errs.ErrCodeInvalidPayload, "duplicate node id %s", n.ID)
		}
		ids[n.ID] = true
		if n.Type == "" {
			return errs.New(errs.ErrCodeInvalidPayload, "node %s has no type", n.ID)
		}
	}
	for i, e := range p.Edges {
		if !ids[e.Source.Node] || !ids[e.Target.Node] {
			return errs.New(errs.ErrCodeInvalidPayload, "edge %d references unknown node (%s -> %s)",
				i, e.Source.Node, e.Target.Node)
		}
	}
	return nil
}
