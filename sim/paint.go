package sim

import (
	"bitbucket.org/Davydov/seqgen/tree"
)

// ModelAssignment maps node id to the index of the rate matrix active
// on the branch leading to the node. Model 0 is the background.
type ModelAssignment []int

// PaintModels resolves the model of every branch. paints maps node id
// to model index; the model applies to the whole subtree of the node
// unless a node closer to the leaves has its own entry. Every painted
// node must exist in the tree.
func PaintModels(t *tree.Tree, paints map[int]int) (ModelAssignment, error) {
	for id := range paints {
		if t.NodeByID(id) == nil {
			return nil, configErrorf("painted node %d not found in the tree (max node id %d)", id, t.MaxNodeID())
		}
	}
	ma := make(ModelAssignment, t.MaxNodeID()+1)
	var paint func(node *tree.Node, model int)
	paint = func(node *tree.Node, model int) {
		if m, ok := paints[node.ID]; ok {
			model = m
		}
		ma[node.ID] = model
		for _, child := range node.ChildNodes() {
			paint(child, model)
		}
	}
	paint(t.Node, 0)
	return ma, nil
}
