package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/skillgraph/pkg/skill"
)

// marshalPositions serializes computed positions for the layout cache.
func marshalPositions(pos map[string]skill.Position) ([]byte, error) {
	return json.Marshal(pos)
}

// applyPositions moves the nodes of g to cached positions. The entry must
// cover every node; otherwise g is left untouched.
func applyPositions(g *skill.Graph, data []byte) error {
	var pos map[string]skill.Position
	if err := json.Unmarshal(data, &pos); err != nil {
		return err
	}
	ids := g.NodeIDs()
	for _, id := range ids {
		if _, ok := pos[id]; !ok {
			return fmt.Errorf("cached layout has no position for node %s", id)
		}
	}
	for _, id := range ids {
		if err := g.MoveNode(id, pos[id]); err != nil {
			return err
		}
	}
	return nil
}
