// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"fmt"
	"strings"

	"carvel.dev/liquid/pkg/filters"
	"carvel.dev/liquid/pkg/lexer"
	"carvel.dev/liquid/pkg/template/core"
)

type Options struct {
	Registry *Registry
	Filters  *filters.Table

	// StrictVariables makes lookups of undefined variables fail
	// instead of evaluating to nil.
	StrictVariables bool

	EchoComments  bool
	CommentPrefix string
}

func NewOptions() Options {
	return Options{
		Registry:        NewBuiltinRegistry(),
		Filters:         filters.NewBuiltinTable(),
		StrictVariables: true,
		CommentPrefix:   "# ",
	}
}

// RenderOpts are applied to a single render call.
type RenderOpts struct {
	// Filters override filters of the same name for this call only.
	Filters *filters.Table
}

// Template is a parsed template. It is not modified by rendering and may
// be rendered from several goroutines at once.
type Template struct {
	tree *Tree
	opts Options
}

func Parse(name string, data []byte, opts Options) (*Template, error) {
	segments, err := lexer.NewSplitter().Split(data, name)
	if err != nil {
		return nil, err
	}

	tree, err := NewBuilder(opts).Build(name, segments)
	if err != nil {
		return nil, err
	}

	return NewFromTree(tree, opts), nil
}

// NewFromTree wraps a tree built separately, for callers that time or
// inspect the lex and build phases themselves.
func NewFromTree(tree *Tree, opts Options) *Template {
	if opts.Filters == nil {
		opts.Filters = filters.NewBuiltinTable()
	}
	return &Template{tree: tree, opts: opts}
}

func (t *Template) Name() string { return t.tree.name }
func (t *Template) Tree() *Tree  { return t.tree }

func (t *Template) Render(vars map[string]interface{}) (string, error) {
	return t.RenderWithOpts(vars, nil, RenderOpts{})
}

// RenderWithOpts renders with separate local and global variables.
// Locals shadow globals of the same name.
func (t *Template) RenderWithOpts(local, global map[string]interface{}, renderOpts RenderOpts) (string, error) {
	table := t.opts.Filters
	if renderOpts.Filters != nil {
		table = table.Merge(renderOpts.Filters)
	}

	ctx := newRenderCtx(t.tree, t.opts, table, convertVars(local), convertVars(global))

	err := ctx.renderNode(NodeTagRoot, false)
	if err != nil {
		return "", err
	}
	return ctx.out.String(), nil
}

func convertVars(vars map[string]interface{}) map[string]core.Value {
	result := map[string]core.Value{}
	for name, val := range vars {
		result[name] = core.FromGo(val)
	}
	return result
}

// Tree is the resolved tag tree of a template.
type Tree struct {
	name  string
	nodes *Nodes
}

func (t *Tree) Root() *TagNode           { return t.nodes.Root() }
func (t *Tree) Node(tag NodeTag) *TagNode { return t.nodes.Node(tag) }

// DebugString prints one node per line, children indented under their
// parent and elder chain members at the depth of their chain head.
func (t *Tree) DebugString() string {
	var lines []string
	t.debugNode(t.nodes.Root(), 0, &lines)
	return strings.Join(lines, "\n")
}

func (t *Tree) debugNode(node *TagNode, depth int, lines *[]string) {
	for {
		indent := strings.Repeat("  ", depth)

		switch node.Name {
		case TagLiteral, TagRaw, TagComment:
			*lines = append(*lines, fmt.Sprintf("%s%s %q", indent, node.Name, node.Args))
		default:
			line := indent + node.Name
			if len(node.Args) > 0 {
				line += " " + node.Args
			}
			if node.Position.IsKnown() {
				line += fmt.Sprintf(" (%s)", node.Position.AsCompactString())
			}
			*lines = append(*lines, line)
		}

		for _, childTag := range node.Children {
			t.debugNode(t.nodes.Node(childTag), depth+1, lines)
		}

		if node.Next.IsNone() {
			return
		}
		node = t.nodes.Node(node.Next)
	}
}
