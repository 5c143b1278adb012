// Package tree implements rooted phylogenetic trees and a Newick
// reader. Nodes are numbered in pre-order while parsing (the root is
// node 0); these numbers are stable identifiers used to refer to
// branches.
package tree

import (
	"fmt"
)

// Tree is a rooted tree. It embeds the root node and caches a node
// array indexed by node id.
type Tree struct {
	*Node
	nNodes int
	nodes  []*Node
}

// NNodes returns the number of nodes including the root.
func (tree *Tree) NNodes() int {
	if tree.nNodes == 0 {
		tree.nNodes = tree.NSubNodes()
	}
	return tree.nNodes
}

// MaxNodeID returns the largest node id in the tree.
func (tree *Tree) MaxNodeID() (maxID int) {
	tree.Walk(func(node *Node) {
		if node.ID > maxID {
			maxID = node.ID
		}
	})
	return
}

// NodeIDArray returns an array of nodes indexed by node id. Ids
// without a node are nil.
func (tree *Tree) NodeIDArray() []*Node {
	if tree.nodes == nil {
		tree.nodes = make([]*Node, tree.MaxNodeID()+1)
		tree.Walk(func(node *Node) {
			tree.nodes[node.ID] = node
		})
	}
	return tree.nodes
}

// NodeByID returns the node with the given id or nil.
func (tree *Tree) NodeByID(id int) *Node {
	nodes := tree.NodeIDArray()
	if id < 0 || id >= len(nodes) {
		return nil
	}
	return nodes[id]
}

// Terminals returns a channel with all the terminal nodes in
// pre-order.
func (tree *Tree) Terminals() <-chan *Node {
	return tree.Walker(func(n *Node) bool {
		return n.IsTerminal()
	})
}

// NLeaves returns the number of terminal nodes.
func (tree *Tree) NLeaves() (i int) {
	for range tree.Terminals() {
		i++
	}
	return
}

// Walker returns a closed channel containing all the nodes passing
// the filter in pre-order. A nil filter accepts every node.
func (tree *Tree) Walker(filter func(*Node) bool) <-chan *Node {
	ch := make(chan *Node, tree.NNodes())
	tree.Walk(func(node *Node) {
		if filter == nil || filter(node) {
			ch <- node
		}
	})
	close(ch)
	return ch
}

// BrString returns the tree in Newick format with every node
// labeled by its id (name#id), without branch lengths.
func (tree *Tree) BrString() string {
	return tree.Node.StringBr() + ";"
}

// String returns the tree in Newick format.
func (tree *Tree) String() string {
	return tree.Node.String() + ";"
}

// Node is a tree node. BranchLength is the length of the branch
// leading to the node; it is meaningless for the root.
type Node struct {
	Name         string
	BranchLength float64
	Parent       *Node
	childNodes   []*Node
	ID           int
	LeafID       int
}

// NewNode creates a new node with a given parent and id. The node is
// not added to the parent children list.
func NewNode(parent *Node, nodeID int) (node *Node) {
	node = &Node{Parent: parent, ID: nodeID, LeafID: -1}
	return
}

// AddChild appends a child node.
func (node *Node) AddChild(subNode *Node) {
	subNode.Parent = node
	node.childNodes = append(node.childNodes, subNode)
}

// ChildNodes returns node children in input order.
func (node *Node) ChildNodes() []*Node {
	return node.childNodes
}

// Walk calls f for the node and all its descendants in pre-order.
func (node *Node) Walk(f func(*Node)) {
	f(node)
	for _, child := range node.childNodes {
		child.Walk(f)
	}
}

// NSubNodes returns the number of nodes in the subtree, including
// the node itself.
func (node *Node) NSubNodes() (size int) {
	for _, node := range node.childNodes {
		size += node.NSubNodes()
	}
	return size + 1
}

// IsRoot returns true if the node has no parent.
func (node *Node) IsRoot() bool {
	return node.Parent == nil
}

// IsTerminal returns true for the leaves.
func (node *Node) IsTerminal() bool {
	return len(node.childNodes) == 0
}

// StringBr returns a subtree in Newick format labeled with node ids.
func (node *Node) StringBr() (s string) {
	if node.IsTerminal() {
		return fmt.Sprintf("%s#%d", node.Name, node.ID)
	}
	s += "("
	for i, child := range node.childNodes {
		s += child.StringBr()
		if i != len(node.childNodes)-1 {
			s += ","
		}
	}
	s += fmt.Sprintf(")%s#%d", node.Name, node.ID)
	return s
}

// String returns a subtree in Newick format.
func (node *Node) String() (s string) {
	if node.IsTerminal() {
		return fmt.Sprintf("%s:%0.6f", node.Name, node.BranchLength)
	}
	s += "("
	for i, child := range node.childNodes {
		s += child.String()
		if i != len(node.childNodes)-1 {
			s += ","
		}
	}
	s += fmt.Sprintf(")%s:%0.6f", node.Name, node.BranchLength)
	return s
}
