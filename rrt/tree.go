package rrt

import "github.com/pkg/errors"

// NodeID is a stable index into a Tree
type NodeID int

// NoParent marks the root node
const NoParent NodeID = -1

// Node is a tree vertex. Parent is fixed at insertion and never rewired.
type Node struct {
	ID       NodeID `json:"id"`
	Position Point  `json:"position"`
	Parent   NodeID `json:"parent"`
}

// Tree is an append-only arena of nodes with back-references only.
// Every non-root node's parent was inserted before it.
type Tree struct {
	nodes []Node
}

// NewTree creates a tree holding only the root
func NewTree(root Point) *Tree {
	return &Tree{
		nodes: []Node{{ID: 0, Position: root, Parent: NoParent}},
	}
}

// Root returns the ID of the root node
func (t *Tree) Root() NodeID { return 0 }

// Len returns the number of nodes, root included
func (t *Tree) Len() int { return len(t.nodes) }

// Node returns the node with the given ID
func (t *Tree) Node(id NodeID) (Node, bool) {
	if !t.has(id) {
		return Node{}, false
	}
	return t.nodes[id], true
}

// Nodes returns the nodes in insertion order. The slice must not be modified.
func (t *Tree) Nodes() []Node { return t.nodes }

func (t *Tree) has(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}

// Insert appends a node under parent and returns its ID
func (t *Tree) Insert(position Point, parent NodeID) (NodeID, error) {
	if !t.has(parent) {
		return NoParent, errors.Wrapf(ErrUnknownNode, "parent %d", parent)
	}
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, Node{ID: id, Position: position, Parent: parent})
	return id, nil
}

// Nearest finds the node closest to target. Ties go to the earliest
// inserted node.
func (t *Tree) Nearest(target Point) NodeID {
	nearestID := NodeID(0)
	minDist := target.Distance(t.nodes[0].Position)

	for i := 1; i < len(t.nodes); i++ {
		dist := target.Distance(t.nodes[i].Position)
		if dist < minDist {
			minDist = dist
			nearestID = NodeID(i)
		}
	}

	return nearestID
}

// PathToRoot walks parent references from id to the root and returns the
// positions in root-to-node order
func (t *Tree) PathToRoot(id NodeID) ([]Point, error) {
	if !t.has(id) {
		return nil, errors.Wrapf(ErrUnknownNode, "node %d", id)
	}

	var reversed []Point
	for cur := id; cur != NoParent; {
		if !t.has(cur) || len(reversed) >= len(t.nodes) {
			return nil, errors.Wrapf(ErrBrokenChain, "walking from node %d, stuck at %d", id, cur)
		}
		node := t.nodes[cur]
		reversed = append(reversed, node.Position)
		cur = node.Parent
	}

	path := make([]Point, len(reversed))
	for i, p := range reversed {
		path[len(reversed)-1-i] = p
	}
	return path, nil
}

// Edges returns every parent-child segment, parent first
func (t *Tree) Edges() [][2]Point {
	edges := make([][2]Point, 0, len(t.nodes)-1)
	for _, node := range t.nodes[1:] {
		parent := t.nodes[node.Parent]
		edges = append(edges, [2]Point{parent.Position, node.Position})
	}
	return edges
}
