// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"strings"

	"carvel.dev/liquid/pkg/expr"
	"carvel.dev/liquid/pkg/filters"
	"carvel.dev/liquid/pkg/template/core"
)

// RenderCtx holds everything one render call mutates. The tree itself is
// only read, so a Template may be rendered concurrently.
type RenderCtx struct {
	tree    *Tree
	opts    Options
	filters *filters.Table

	out     *strings.Builder
	scopes  []map[string]core.Value
	globals map[string]core.Value

	states      map[NodeTag]*nodeState
	activeLoops []NodeTag
	increments  map[string]int
	decrements  map[string]int
}

var _ expr.Env = &RenderCtx{}

type nodeState struct {
	breakLoop    bool
	continueLoop bool
	subject      core.Value
	cycles       map[string]*cycleState
}

type cycleState struct {
	args  string
	index int
}

func newRenderCtx(tree *Tree, opts Options, table *filters.Table, locals, globals map[string]core.Value) *RenderCtx {
	return &RenderCtx{
		tree:       tree,
		opts:       opts,
		filters:    table,
		out:        &strings.Builder{},
		scopes:     []map[string]core.Value{locals},
		globals:    globals,
		states:     map[NodeTag]*nodeState{},
		increments: map[string]int{},
		decrements: map[string]int{},
	}
}

// Lookup searches the local scopes, innermost first, then globals.
func (c *RenderCtx) Lookup(name string) (core.Value, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if val, found := c.scopes[i][name]; found {
			return val, true
		}
	}
	val, found := c.globals[name]
	return val, found
}

func (c *RenderCtx) StrictVariables() bool { return c.opts.StrictVariables }

func (c *RenderCtx) ApplyFilter(name string, val core.Value, args []core.Value, kwargs map[string]core.Value) (core.Value, error) {
	return c.filters.Apply(name, val, args, kwargs)
}

func (c *RenderCtx) Options() Options { return c.opts }

func (c *RenderCtx) WriteString(str string) { c.out.WriteString(str) }

func (c *RenderCtx) Eval(node expr.Node) (core.Value, error) { return node.Eval(c) }

// Assign writes through every scope that already holds name, the current
// scope and the globals.
func (c *RenderCtx) Assign(name string, val core.Value) {
	for _, scope := range c.scopes {
		if _, found := scope[name]; found {
			scope[name] = val
		}
	}
	c.scopes[len(c.scopes)-1][name] = val
	c.globals[name] = val
}

// SetLocal sets a variable visible only in the current scope.
func (c *RenderCtx) SetLocal(name string, val core.Value) {
	c.scopes[len(c.scopes)-1][name] = val
}

// WithScope runs fn in a child scope. Variables set with SetLocal inside fn
// are gone once it returns.
func (c *RenderCtx) WithScope(fn func() error) error {
	c.scopes = append(c.scopes, map[string]core.Value{})
	defer func() { c.scopes = c.scopes[:len(c.scopes)-1] }()

	return fn()
}

// Capture returns the output written by fn instead of emitting it.
func (c *RenderCtx) Capture(fn func() error) (string, error) {
	saved := c.out
	c.out = &strings.Builder{}
	defer func() { c.out = saved }()

	err := fn()
	return c.out.String(), err
}

// RenderChildren renders the children of node in order, stopping early
// when a break or continue is pending for the innermost loop.
func (c *RenderCtx) RenderChildren(node *TagNode) error {
	for _, childTag := range node.Children {
		if err := c.renderNode(childTag, false); err != nil {
			return err
		}
		if c.interrupted() {
			return nil
		}
	}
	return nil
}

// RenderNext hands over to the next member of node's elder chain.
func (c *RenderCtx) RenderNext(node *TagNode) error {
	if node.Next.IsNone() {
		return nil
	}
	return c.renderNode(node.Next, true)
}

func (c *RenderCtx) renderNode(tag NodeTag, fromElder bool) error {
	node := c.tree.nodes.Node(tag)

	// Chain members are rendered by their elder
	if !node.Prev.IsNone() && !fromElder {
		return nil
	}
	if node.Payload == nil {
		return nil
	}

	return core.PositionedError(node.Payload.Render(c, node), node.Position)
}

func (c *RenderCtx) state(tag NodeTag) *nodeState {
	st, found := c.states[tag]
	if !found {
		st = &nodeState{}
		c.states[tag] = st
	}
	return st
}

// enterLoop starts fresh loop state for tag, dropping what an earlier run
// of the same loop left behind.
func (c *RenderCtx) enterLoop(tag NodeTag) *nodeState {
	st := &nodeState{}
	c.states[tag] = st
	c.activeLoops = append(c.activeLoops, tag)
	return st
}

func (c *RenderCtx) exitLoop() {
	c.activeLoops = c.activeLoops[:len(c.activeLoops)-1]
}

// innermostLoop returns the state of the loop being rendered, or the root
// state outside of loops.
func (c *RenderCtx) innermostLoop() (*nodeState, bool) {
	if len(c.activeLoops) == 0 {
		return c.state(NodeTagRoot), false
	}
	return c.state(c.activeLoops[len(c.activeLoops)-1]), true
}

func (c *RenderCtx) interrupted() bool {
	st, inLoop := c.innermostLoop()
	return inLoop && (st.breakLoop || st.continueLoop)
}
