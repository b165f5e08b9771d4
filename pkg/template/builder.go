// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"fmt"
	"strings"

	"carvel.dev/liquid/pkg/filepos"
	"carvel.dev/liquid/pkg/lexer"
	"carvel.dev/liquid/pkg/template/core"
)

// Builder turns a segment sequence into a tag tree. A Builder is used for a
// single Build call.
type Builder struct {
	registry *Registry

	nodes    *Nodes
	stack    []NodeTag
	segments []*lexer.Segment
	openIdx  map[NodeTag]int
}

func NewBuilder(opts Options) *Builder {
	registry := opts.Registry
	if registry == nil {
		registry = NewBuiltinRegistry()
	}
	return &Builder{registry: registry}
}

func (b *Builder) Build(name string, segments []*lexer.Segment) (*Tree, error) {
	b.nodes = NewNodes()
	b.stack = nil
	b.segments = segments
	b.openIdx = map[NodeTag]int{}

	if rootDesc, found := b.registry.Lookup(TagRoot); found {
		payload, err := rootDesc.Parse("")
		if err != nil {
			return nil, err
		}
		b.nodes.Root().Payload = payload
	}

	for idx, seg := range segments {
		var err error

		switch seg.Kind {
		case lexer.SegmentLiteral:
			err = b.addText(TagLiteral, seg.Text(), seg)
		case lexer.SegmentRaw:
			err = b.addText(TagRaw, seg.Text(), seg)
		case lexer.SegmentComment:
			err = b.addText(TagComment, seg.Content, seg)
		case lexer.SegmentOutput:
			err = b.addVoid(TagOutput, seg.Content, seg)
		case lexer.SegmentTag:
			err = b.addTag(idx, seg)
		default:
			panic(fmt.Sprintf("Unknown segment kind %s", seg.Kind))
		}

		if err != nil {
			return nil, core.PositionedError(err, seg.Position)
		}
	}

	if err := b.finish(); err != nil {
		return nil, err
	}

	return &Tree{name: name, nodes: b.nodes}, nil
}

func (b *Builder) addText(virtualName, text string, seg *lexer.Segment) error {
	if len(text) == 0 {
		return nil
	}
	return b.addVoid(virtualName, text, seg)
}

func (b *Builder) addVoid(virtualName, content string, seg *lexer.Segment) error {
	desc, found := b.registry.Lookup(virtualName)
	if !found {
		panic(fmt.Sprintf("Expected registry to contain virtual tag '%s'", virtualName))
	}

	payload, err := desc.Parse(content)
	if err != nil {
		return err
	}

	node := &TagNode{Name: virtualName, Args: content, Payload: payload, Position: seg.Position, Void: Void}
	b.attach(node, b.currentParent())
	return nil
}

func (b *Builder) addTag(idx int, seg *lexer.Segment) error {
	name, args := seg.TagName()

	if len(name) == 0 {
		return core.NewError(core.SyntaxError, core.BadExpression, "empty tag")
	}

	if !isVirtualTag(name) {
		if desc, found := b.registry.Lookup(name); found {
			return b.openTag(desc, args, idx, seg)
		}
		if strings.HasPrefix(name, "end") {
			if _, found := b.registry.Lookup(name[3:]); found && !isVirtualTag(name[3:]) {
				return b.closeTag(name[3:], args, idx, seg)
			}
		}
	}

	hint := core.HintFor(core.UnknownTag, name)
	if len(hint) == 0 {
		hint = "known tags are " + strings.Join(b.registry.Names(), ", ")
	}
	return core.NewError(core.SyntaxError, core.UnknownTag, "unknown tag '%s'", name).
		WithName(name).WithHint(hint)
}

func (b *Builder) openTag(desc *Descriptor, args string, idx int, seg *lexer.Segment) error {
	payload, err := desc.Parse(args)
	if err != nil {
		if typedErr, ok := core.AsError(err); ok && len(typedErr.Name) == 0 {
			typedErr.WithName(desc.Name)
		}
		return err
	}

	node := &TagNode{Name: desc.Name, Args: args, Payload: payload, Position: seg.Position, Void: desc.Void}

	// Any tag opening inside a maybe-void tag, other than its own
	// successor, settles it as void
	b.collapseMaybeVoids(func(top *TagNode) bool { return !desc.Elders.Has(top.Name) })

	if top := b.top(); top != nil && desc.Elders.Has(top.Name) {
		b.pop()
		b.nodes.AddNode(node, top.Parent)
		top.Next = node.Tag
		node.Prev = top.Tag
	} else {
		if desc.Elders.Required {
			return core.NewError(core.SyntaxError, core.TagWrongPosition,
				"'%s' must follow %s", desc.Name, desc.Elders.AsString()).WithName(desc.Name)
		}
		b.attach(node, b.currentParent())
	}

	if err := b.checkParents(desc, node); err != nil {
		return err
	}

	if node.Void != Void {
		b.stack = append(b.stack, node.Tag)
		b.openIdx[node.Tag] = idx
	}
	return nil
}

func (b *Builder) checkParents(desc *Descriptor, node *TagNode) error {
	if !desc.Parents.Required {
		return nil
	}

	if desc.Parents.Immediate {
		parent := b.nodes.Node(node.Parent)
		if !desc.Parents.Has(parent.Name) {
			return core.NewError(core.SyntaxError, core.TagWrongPosition,
				"'%s' must be directly inside %s", desc.Name, desc.Parents.AsString()).WithName(desc.Name)
		}
		return nil
	}

	_, found := b.nodes.Ancestors().FindClosest(node.Tag, func(tag NodeTag) bool {
		return desc.Parents.Has(b.nodes.Node(tag).Name)
	})
	if !found {
		return core.NewError(core.SyntaxError, core.TagWrongPosition,
			"'%s' must be inside %s", desc.Name, desc.Parents.AsString()).WithName(desc.Name)
	}
	return nil
}

func (b *Builder) closeTag(name, args string, idx int, seg *lexer.Segment) error {
	if endDesc, found := b.registry.Lookup(TagEnd); found {
		if _, err := endDesc.Parse(args); err != nil {
			return err
		}
	}

	b.collapseMaybeVoids(func(top *TagNode) bool { return top.Name != name })

	top := b.top()
	if top == nil {
		return b.unexpectedEndErr(name)
	}

	head := b.nodes.ChainHead(top)

	switch {
	case head.Name == name:
		b.pop()
		if top.Void == MaybeVoid {
			top.Void = NonVoid
		}
		b.setBody(top, idx)
		return nil

	case b.endsParent(head, name):
		// Sub-clauses such as 'when' end with their enclosing tag
		b.pop()
		b.setBody(top, idx)

		parentTop := b.top()
		if parentTop == nil || !parentTop.Tag.Equals(top.Parent) {
			return b.unclosedErr(parentTop, fmt.Sprintf("before '{%% end%s %%}'", name))
		}
		b.pop()
		b.setBody(parentTop, idx)
		return nil
	}

	for _, tag := range b.stack {
		if b.nodes.Node(tag).Name == name {
			return b.unclosedErr(head, fmt.Sprintf("before '{%% end%s %%}'", name))
		}
	}
	return b.unexpectedEndErr(name)
}

func (b *Builder) endsParent(head *TagNode, name string) bool {
	desc, found := b.registry.Lookup(head.Name)
	if !found || !desc.Parents.Has(name) {
		return false
	}
	return b.nodes.Node(head.Parent).Name == name
}

func (b *Builder) finish() error {
	b.collapseMaybeVoids(func(*TagNode) bool { return true })

	if top := b.top(); top != nil {
		return b.unclosedErr(b.nodes.ChainHead(top), "at end of template")
	}
	return nil
}

// collapseMaybeVoids turns maybe-void tags at the top of the stack into
// void tags while shouldCollapse accepts them. Their children move up to
// their parent.
func (b *Builder) collapseMaybeVoids(shouldCollapse func(*TagNode) bool) {
	for {
		top := b.top()
		if top == nil || top.Void != MaybeVoid || !shouldCollapse(top) {
			return
		}
		b.pop()
		top.Void = Void

		parent := b.nodes.Node(top.Parent)
		for _, childTag := range top.Children {
			b.nodes.Node(childTag).Parent = parent.Tag
			parent.Children = append(parent.Children, childTag)
		}
		top.Children = nil
	}
}

func (b *Builder) attach(node *TagNode, parentTag NodeTag) {
	tag := b.nodes.AddNode(node, parentTag)
	b.nodes.AppendChild(parentTag, tag)
}

func (b *Builder) setBody(node *TagNode, closeIdx int) {
	openIdx, found := b.openIdx[node.Tag]
	if !found {
		return
	}
	var sb strings.Builder
	for _, seg := range b.segments[openIdx+1 : closeIdx] {
		sb.WriteString(seg.Source)
	}
	node.Body = sb.String()
}

func (b *Builder) currentParent() NodeTag {
	if top := b.top(); top != nil {
		return top.Tag
	}
	return NodeTagRoot
}

func (b *Builder) top() *TagNode {
	if len(b.stack) == 0 {
		return nil
	}
	return b.nodes.Node(b.stack[len(b.stack)-1])
}

func (b *Builder) pop() {
	b.stack = b.stack[:len(b.stack)-1]
}

func (b *Builder) unexpectedEndErr(name string) error {
	return core.NewError(core.SyntaxError, core.EndTagUnexpected,
		"unexpected '{%% end%s %%}'", name).WithName("end" + name).
		WithHint(fmt.Sprintf("no '%s' is open at this point", name))
}

func (b *Builder) unclosedErr(node *TagNode, where string) error {
	if node == nil {
		return core.NewError(core.SyntaxError, core.TagUnclosed, "unclosed tag %s", where)
	}
	pos := node.Position
	if pos == nil {
		pos = filepos.NewUnknownPosition()
	}
	return core.NewError(core.SyntaxError, core.TagUnclosed, "tag '%s' is not closed %s", node.Name, where).
		WithName(node.Name).WithHint(fmt.Sprintf("add '{%% end%s %%}'", node.Name)).WithPosition(pos)
}
