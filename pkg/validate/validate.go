// Package validate decides whether a skill graph is a legal, fully
// configured pipeline.
//
// [Validate] runs an ordered list of checks and reports the first failure.
// The order matters: the editor shows one blocking message at a time, and
// each message assumes the earlier checks passed.
//
//  1. [EmptyGraph]: only the camera source exists
//  2. [NoModelNode]: no model node
//  3. [NoExportNode]: no export node
//  4. [IncompleteNode]: a non-source node is not configured (first in insertion order)
//  5. [Disconnected]: the degree check of [IsDiscrete] fails
//  6. [DuplicateName]: two non-source nodes share a display name
//
// Failures are values, not errors. Use [Result.Err] to turn one into a coded
// error for transports that need one.
package validate

import (
	"fmt"

	errs "github.com/matzehuels/skillgraph/pkg/errors"
	"github.com/matzehuels/skillgraph/pkg/skill"
)

// Code identifies a validation outcome.
type Code string

const (
	OK             Code = "ok"
	EmptyGraph     Code = "empty_graph"
	NoModelNode    Code = "no_model_node"
	NoExportNode   Code = "no_export_node"
	IncompleteNode Code = "incomplete_node"
	Disconnected   Code = "disconnected"
	DuplicateName  Code = "duplicate_name"
)

// Messages shown by the editor for each failure.
const (
	MsgEmptyGraph    = "Drag and drop these nodes to the canvas on the right"
	MsgNoModelNode   = "At least one model node"
	MsgNoExportNode  = "At least one Export Node needed"
	MsgDisconnected  = "Graph should be connected"
	MsgDuplicateName = "Node names must be unique"
)

// Result is the outcome of [Validate]. Node holds the offending node id for
// IncompleteNode and DuplicateName, and Name its display name.
type Result struct {
	Code    Code   `json:"code"`
	Node    string `json:"node,omitempty"`
	Name    string `json:"name,omitempty"`
	Message string `json:"message,omitempty"`
}

// OK reports whether the graph passed every check.
func (r Result) OK() bool { return r.Code == OK }

// Err returns nil for a passing result, otherwise an INVALID_GRAPH error
// carrying the editor message.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	return errs.New(errs.ErrCodeInvalidGraph, "%s", r.Message)
}

func (r Result) String() string {
	if r.OK() {
		return string(OK)
	}
	return fmt.Sprintf("%s: %s", r.Code, r.Message)
}

func fail(code Code, msg string) Result {
	return Result{Code: code, Message: msg}
}

// Validate checks g and returns the first failing rule, or an OK result.
func Validate(g *skill.Graph) Result {
	nodes := g.Nodes()
	if len(nodes) <= 1 {
		return fail(EmptyGraph, MsgEmptyGraph)
	}

	var hasModel, hasExport bool
	for _, n := range nodes {
		switch n.Kind {
		case skill.KindModel:
			hasModel = true
		case skill.KindExport:
			hasExport = true
		}
	}
	if !hasModel {
		return fail(NoModelNode, MsgNoModelNode)
	}
	if !hasExport {
		return fail(NoExportNode, MsgNoExportNode)
	}

	for _, n := range nodes {
		if !n.IsSource() && !n.Configured {
			return Result{
				Code:    IncompleteNode,
				Node:    n.ID,
				Name:    n.Name,
				Message: fmt.Sprintf("%s Node cannot be blank", n.Name),
			}
		}
	}

	if IsDiscrete(g) {
		return fail(Disconnected, MsgDisconnected)
	}

	seen := make(map[string]string, len(nodes))
	for _, n := range nodes {
		if n.IsSource() {
			continue
		}
		if _, dup := seen[n.Name]; dup {
			return Result{Code: DuplicateName, Node: n.ID, Name: n.Name, Message: MsgDuplicateName}
		}
		seen[n.Name] = n.ID
	}

	return Result{Code: OK}
}

// IsDiscrete reports whether g fails the local degree check: the source has
// no outbound edge, an export has no inbound edge, or a model or transform
// node lacks an inbound or an outbound edge.
//
// The check is local. Two pipelines that share only the source both pass.
func IsDiscrete(g *skill.Graph) bool {
	in := make(map[string]int, g.NodeCount())
	out := make(map[string]int, g.NodeCount())
	for _, e := range g.Edges() {
		out[e.Source]++
		in[e.Target]++
	}

	for _, n := range g.Nodes() {
		switch n.Kind {
		case skill.KindSource:
			if out[n.ID] == 0 {
				return true
			}
		case skill.KindExport:
			if in[n.ID] == 0 {
				return true
			}
		default:
			if in[n.ID] == 0 || out[n.ID] == 0 {
				return true
			}
		}
	}
	return false
}
