// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"fmt"
	"strconv"

	"carvel.dev/liquid/pkg/filepos"
)

var (
	NodeTagNone = NodeTag{-100}
	NodeTagRoot = NodeTag{0}
)

// TagNode is one node of the tag tree. Parent, Prev and Next are
// references into the same Nodes arena; only Children owns nodes.
type TagNode struct {
	Tag      NodeTag
	Name     string
	Args     string // tag arguments, or the text of literal/raw/comment nodes
	Payload  Payload
	Position *filepos.Position
	Void     Voidness

	Parent   NodeTag
	Prev     NodeTag
	Next     NodeTag
	Children []NodeTag

	// Body is the source between the open and close tags of a block.
	Body string
}

// Nodes is the arena holding every node of a tree. Tag ids are indexes.
type Nodes struct {
	nodes []*TagNode
}

func NewNodes() *Nodes {
	root := &TagNode{
		Tag:      NodeTagRoot,
		Name:     TagRoot,
		Position: filepos.NewUnknownPosition(),
		Parent:   NodeTagNone,
		Prev:     NodeTagNone,
		Next:     NodeTagNone,
	}
	return &Nodes{nodes: []*TagNode{root}}
}

func (n *Nodes) Ancestors() Ancestors { return Ancestors{n.parentTag} }

// AddNode stores node with the given parent. It does not make it one of the
// parent's children; elder chain members are reached through Next instead.
func (n *Nodes) AddNode(node *TagNode, parentTag NodeTag) NodeTag {
	tag := NodeTag{len(n.nodes)}
	node.Tag = tag
	node.Parent = parentTag
	node.Prev = NodeTagNone
	node.Next = NodeTagNone
	n.nodes = append(n.nodes, node)
	return tag
}

func (n *Nodes) AppendChild(parentTag, childTag NodeTag) {
	parent := n.Node(parentTag)
	parent.Children = append(parent.Children, childTag)
}

func (n *Nodes) FindNode(tag NodeTag) (*TagNode, bool) {
	if tag.id < 0 || tag.id >= len(n.nodes) {
		return nil, false
	}
	return n.nodes[tag.id], true
}

func (n *Nodes) Node(tag NodeTag) *TagNode {
	node, found := n.FindNode(tag)
	if !found {
		panic(fmt.Sprintf("expected to find %s", tag))
	}
	return node
}

func (n *Nodes) Root() *TagNode { return n.nodes[0] }

func (n *Nodes) Len() int { return len(n.nodes) }

// ChainHead walks Prev links back to the first member of an elder chain.
func (n *Nodes) ChainHead(node *TagNode) *TagNode {
	for !node.Prev.IsNone() {
		node = n.Node(node.Prev)
	}
	return node
}

func (n *Nodes) parentTag(tag NodeTag) (NodeTag, bool) {
	node, found := n.FindNode(tag)
	if !found || node.Parent.IsNone() {
		return NodeTag{}, false
	}
	return node.Parent, true
}

type NodeTag struct {
	id int
}

func (t NodeTag) Equals(other NodeTag) bool { return t.id == other.id }
func (t NodeTag) IsNone() bool              { return t.id == NodeTagNone.id }
func (t NodeTag) String() string            { return "node tag " + strconv.Itoa(t.id) }
