package editor

import (
	"github.com/matzehuels/skillgraph/pkg/skill"
	"github.com/matzehuels/skillgraph/pkg/validate"
)

// State is the editor state derived from the graph after each mutation.
type State string

const (
	// StateEmpty means only the camera source exists.
	StateEmpty State = "empty"
	// StatePartial means the graph fails at least one structural check.
	StatePartial State = "partially_configured"
	// StateValid means the graph passes every check and can be committed.
	StateValid State = "valid"
)

// StateOf derives the state of g from a validation result.
func StateOf(g *skill.Graph, r validate.Result) State {
	switch {
	case g.NodeCount() <= 1:
		return StateEmpty
	case r.OK():
		return StateValid
	default:
		return StatePartial
	}
}

// CanCommit reports whether a graph in state s may be encoded.
func (s State) CanCommit() bool { return s == StateValid }
