// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package expr

import (
	"fmt"
	"strconv"
	"strings"

	"carvel.dev/liquid/pkg/template/core"
)

// Env is what an expression needs from the renderer.
type Env interface {
	Lookup(name string) (core.Value, bool)
	StrictVariables() bool
	ApplyFilter(name string, val core.Value, args []core.Value, kwargs map[string]core.Value) (core.Value, error)
}

// Node is an immutable expression tree node.
type Node interface {
	Eval(env Env) (core.Value, error)
	String() string
}

var (
	_ Node = Var{}
	_ Node = Const{}
	_ Node = GetAttr{}
	_ Node = GetItem{}
	_ Node = Comparison{}
	_ Node = Logical{}
	_ Node = Range{}
	_ Node = ListLiteral{}
	_ Node = &Output{}
)

type Var struct {
	Name string
}

func (n Var) Eval(env Env) (core.Value, error) {
	val, found := env.Lookup(n.Name)
	if found {
		return val, nil
	}
	if env.StrictVariables() {
		return nil, core.NewError(core.NameError, core.UndefinedVariable, "undefined variable '%s'", n.Name).
			WithName(n.Name).WithHint(core.HintFor(core.UndefinedVariable, n.Name))
	}
	return core.Nil, nil
}

func (n Var) String() string { return n.Name }

type Const struct {
	Value core.Value
}

func (n Const) Eval(Env) (core.Value, error) { return n.Value, nil }

func (n Const) String() string {
	switch typedVal := n.Value.(type) {
	case core.String:
		return strconv.Quote(string(typedVal))
	case core.NilValue:
		return "nil"
	case core.EmptyDrop:
		return "empty"
	default:
		return core.Display(typedVal)
	}
}

// GetAttr is `obj.name`. Missing attributes evaluate to nil.
type GetAttr struct {
	Obj  Node
	Name string
}

func (n GetAttr) Eval(env Env) (core.Value, error) {
	obj, err := n.Obj.Eval(env)
	if err != nil {
		return nil, err
	}
	val, found := core.Get(obj, core.String(n.Name))
	if !found {
		return core.Nil, nil
	}
	return val, nil
}

func (n GetAttr) String() string { return n.Obj.String() + "." + n.Name }

// GetItem is `obj[key]`. Missing items evaluate to nil.
type GetItem struct {
	Obj Node
	Key Node
}

func (n GetItem) Eval(env Env) (core.Value, error) {
	obj, err := n.Obj.Eval(env)
	if err != nil {
		return nil, err
	}
	key, err := n.Key.Eval(env)
	if err != nil {
		return nil, err
	}
	val, found := core.Get(obj, key)
	if !found {
		return core.Nil, nil
	}
	return val, nil
}

func (n GetItem) String() string { return fmt.Sprintf("%s[%s]", n.Obj, n.Key) }

type Comparison struct {
	Left  Node
	Op    string
	Right Node
}

func (n Comparison) Eval(env Env) (core.Value, error) {
	left, err := n.Left.Eval(env)
	if err != nil {
		return nil, err
	}
	right, err := n.Right.Eval(env)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case "==":
		return core.Bool(core.Equal(left, right)), nil
	case "!=", "<>":
		return core.Bool(!core.Equal(left, right)), nil
	case "contains":
		found, err := core.Contains(left, right)
		return core.Bool(found), err
	}

	cmp, err := core.Compare(left, right)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case "<":
		return core.Bool(cmp < 0), nil
	case ">":
		return core.Bool(cmp > 0), nil
	case "<=":
		return core.Bool(cmp <= 0), nil
	case ">=":
		return core.Bool(cmp >= 0), nil
	default:
		return nil, core.NewError(core.SyntaxError, core.BadExpression, "unknown comparison operator '%s'", n.Op)
	}
}

func (n Comparison) String() string { return fmt.Sprintf("%s %s %s", n.Left, n.Op, n.Right) }

// Logical is `and`/`or`. Both operators share one precedence level and
// group to the right, so `a or b and c` is `a or (b and c)`.
type Logical struct {
	Left  Node
	Op    string
	Right Node
}

func (n Logical) Eval(env Env) (core.Value, error) {
	left, err := n.Left.Eval(env)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case "and":
		if !core.Truthy(left) {
			return core.False, nil
		}
	case "or":
		if core.Truthy(left) {
			return core.True, nil
		}
	}

	right, err := n.Right.Eval(env)
	if err != nil {
		return nil, err
	}
	return core.Bool(core.Truthy(right)), nil
}

func (n Logical) String() string { return fmt.Sprintf("%s %s %s", n.Left, n.Op, n.Right) }

// Range is `(start..end)`, inclusive on both ends.
type Range struct {
	Start Node
	End   Node
}

const maxRangeSize = 1_000_000

func (n Range) Eval(env Env) (core.Value, error) {
	startVal, err := n.Start.Eval(env)
	if err != nil {
		return nil, err
	}
	endVal, err := n.End.Eval(env)
	if err != nil {
		return nil, err
	}

	start, err := core.ToInt(startVal)
	if err != nil {
		return nil, err
	}
	end, err := core.ToInt(endVal)
	if err != nil {
		return nil, err
	}

	if end < start {
		return core.List{}, nil
	}
	if uint64(end-start) >= maxRangeSize {
		return nil, core.NewError(core.RenderError, core.TypeMismatch,
			"range (%d..%d) exceeds %d items", start, end, maxRangeSize)
	}

	size := end - start
	result := make(core.List, 0, size+1)
	for i := 0; i <= size; i++ {
		result = append(result, core.Int(start+i))
	}
	return result, nil
}

func (n Range) String() string { return fmt.Sprintf("(%s..%s)", n.Start, n.End) }

// ListLiteral is `[a, b, c]`. Items are evaluated on every render.
type ListLiteral struct {
	Items []Node
}

func (n ListLiteral) Eval(env Env) (core.Value, error) {
	result := make(core.List, 0, len(n.Items))
	for _, item := range n.Items {
		val, err := item.Eval(env)
		if err != nil {
			return nil, err
		}
		result = append(result, val)
	}
	return result, nil
}

func (n ListLiteral) String() string {
	var items []string
	for _, item := range n.Items {
		items = append(items, item.String())
	}
	return "[" + strings.Join(items, ", ") + "]"
}

// FilterRef names a filter; it is resolved only when applied.
type FilterRef struct {
	Name string
}

type Kwarg struct {
	Name  string
	Value Node
}

type FilterCall struct {
	Filter FilterRef
	Args   []Node
	Kwargs []Kwarg
}

func (c FilterCall) String() string {
	var args []string
	for _, arg := range c.Args {
		args = append(args, arg.String())
	}
	for _, kwarg := range c.Kwargs {
		args = append(args, kwarg.Name+": "+kwarg.Value.String())
	}
	if len(args) == 0 {
		return c.Filter.Name
	}
	return c.Filter.Name + ": " + strings.Join(args, ", ")
}

// Output is a base expression piped through filters, left to right.
type Output struct {
	Base    Node
	Filters []FilterCall
}

func (n *Output) Eval(env Env) (core.Value, error) {
	val, err := n.Base.Eval(env)
	if err != nil {
		return nil, err
	}

	for _, call := range n.Filters {
		args := make([]core.Value, 0, len(call.Args))
		for _, argNode := range call.Args {
			arg, err := argNode.Eval(env)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}

		var kwargs map[string]core.Value
		if len(call.Kwargs) > 0 {
			kwargs = map[string]core.Value{}
			for _, kwarg := range call.Kwargs {
				kwargVal, err := kwarg.Value.Eval(env)
				if err != nil {
					return nil, err
				}
				kwargs[kwarg.Name] = kwargVal
			}
		}

		val, err = env.ApplyFilter(call.Filter.Name, val, args, kwargs)
		if err != nil {
			return nil, err
		}
	}

	return val, nil
}

func (n *Output) String() string {
	pieces := []string{n.Base.String()}
	for _, call := range n.Filters {
		pieces = append(pieces, call.String())
	}
	return strings.Join(pieces, " | ")
}
