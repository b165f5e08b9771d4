// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"fmt"

	"carvel.dev/liquid/pkg/expr"
	"carvel.dev/liquid/pkg/template/core"
)

// loopSpec is the shared grammar of for and tablerow:
// name in collection [limit: n] [offset: n] [cols: n] [reversed]
type loopSpec struct {
	varName  string
	coll     expr.Node
	limit    expr.Node
	offset   expr.Node
	cols     expr.Node
	reversed bool
}

func parseLoopSpec(args string, allowCols bool) (loopSpec, error) {
	var spec loopSpec

	p, err := expr.NewParser(args)
	if err != nil {
		return spec, err
	}

	spec.varName, err = p.ParseIdent()
	if err != nil {
		return spec, err
	}
	if err := p.ExpectKeyword("in"); err != nil {
		return spec, err
	}
	spec.coll, err = p.ParsePostfix()
	if err != nil {
		return spec, err
	}

	for !p.AtEnd() {
		p.Accept(expr.TokenComma)

		switch {
		case p.AcceptKeyword("reversed"):
			spec.reversed = true
		case p.AcceptKeyword("limit"):
			spec.limit, err = parseLoopModifier(p)
		case p.AcceptKeyword("offset"):
			spec.offset, err = parseLoopModifier(p)
		case allowCols && p.AcceptKeyword("cols"):
			spec.cols, err = parseLoopModifier(p)
		default:
			return spec, p.ExpectEnd()
		}
		if err != nil {
			return spec, err
		}
	}

	return spec, nil
}

func parseLoopModifier(p *expr.Parser) (expr.Node, error) {
	if _, err := p.Expect(expr.TokenColon, "':'"); err != nil {
		return nil, err
	}
	return p.ParsePostfix()
}

// items applies offset, then limit, then reversed.
func (s loopSpec) items(ctx *RenderCtx) ([]core.Value, error) {
	val, err := ctx.Eval(s.coll)
	if err != nil {
		return nil, err
	}
	items, err := core.Iterate(val)
	if err != nil {
		return nil, err
	}

	if s.offset != nil {
		offset, err := s.evalInt(ctx, s.offset)
		if err != nil {
			return nil, err
		}
		if offset > len(items) {
			offset = len(items)
		}
		if offset > 0 {
			items = items[offset:]
		}
	}

	if s.limit != nil {
		limit, err := s.evalInt(ctx, s.limit)
		if err != nil {
			return nil, err
		}
		if limit < 0 {
			limit = 0
		}
		if limit < len(items) {
			items = items[:limit]
		}
	}

	if s.reversed {
		reversed := make([]core.Value, len(items))
		for i, item := range items {
			reversed[len(items)-1-i] = item
		}
		items = reversed
	}

	return items, nil
}

func (s loopSpec) evalInt(ctx *RenderCtx, node expr.Node) (int, error) {
	val, err := ctx.Eval(node)
	if err != nil {
		return 0, err
	}
	return core.ToInt(val)
}

func (s loopSpec) name() string { return s.varName + "-" + s.coll.String() }

type forPayload struct {
	spec loopSpec
}

func parseFor(args string) (Payload, error) {
	spec, err := parseLoopSpec(args, false)
	if err != nil {
		return nil, err
	}
	return forPayload{spec}, nil
}

func (p forPayload) Render(ctx *RenderCtx, node *TagNode) error {
	items, err := p.spec.items(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return ctx.RenderNext(node)
	}

	parentLoop, found := ctx.Lookup("forloop")
	if !found {
		parentLoop = core.Nil
	}

	st := ctx.enterLoop(node.Tag)
	defer ctx.exitLoop()

	return ctx.WithScope(func() error {
		for i, item := range items {
			ctx.SetLocal(p.spec.varName, item)
			ctx.SetLocal("forloop", core.NewObject(&loopDrop{
				name: p.spec.name(), index0: i, length: len(items), parent: parentLoop}))

			st.continueLoop = false

			if err := ctx.RenderChildren(node); err != nil {
				return err
			}
			if st.breakLoop {
				break
			}
		}
		return nil
	})
}

// tablerowPayload renders an HTML table body, starting a new row every
// cols items.
type tablerowPayload struct {
	spec loopSpec
}

func parseTablerow(args string) (Payload, error) {
	spec, err := parseLoopSpec(args, true)
	if err != nil {
		return nil, err
	}
	return tablerowPayload{spec}, nil
}

func (p tablerowPayload) Render(ctx *RenderCtx, node *TagNode) error {
	items, err := p.spec.items(ctx)
	if err != nil {
		return err
	}

	cols := len(items)
	if p.spec.cols != nil {
		cols, err = p.spec.evalInt(ctx, p.spec.cols)
		if err != nil {
			return err
		}
		if cols <= 0 {
			cols = len(items)
		}
	}

	st := ctx.enterLoop(node.Tag)
	defer ctx.exitLoop()

	ctx.WriteString("<tr class=\"row1\">\n")

	err = ctx.WithScope(func() error {
		for i, item := range items {
			drop := &loopDrop{name: p.spec.name(), index0: i, length: len(items), cols: cols, parent: core.Nil}
			ctx.SetLocal(p.spec.varName, item)
			ctx.SetLocal("tablerowloop", core.NewObject(drop))

			st.continueLoop = false

			body, err := ctx.Capture(func() error { return ctx.RenderChildren(node) })
			if err != nil {
				return err
			}
			ctx.WriteString(fmt.Sprintf("<td class=\"col%d\">%s</td>", drop.col0()+1, body))

			if st.breakLoop {
				break
			}
			if drop.col0() == cols-1 && i != len(items)-1 {
				ctx.WriteString(fmt.Sprintf("</tr>\n<tr class=\"row%d\">", drop.row()+1))
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	ctx.WriteString("</tr>\n")
	return nil
}

type loopControlPayload struct {
	breakLoop bool
}

func (p loopControlPayload) Render(ctx *RenderCtx, _ *TagNode) error {
	st, inLoop := ctx.innermostLoop()
	if !inLoop {
		return nil
	}
	if p.breakLoop {
		st.breakLoop = true
	} else {
		st.continueLoop = true
	}
	return nil
}

// loopDrop is the forloop (and tablerowloop) variable.
type loopDrop struct {
	name   string
	index0 int
	length int
	cols   int
	parent core.Value
}

var _ core.Gettable = &loopDrop{}

var loopDropAttrNames = []string{
	"first", "index", "index0", "last", "length", "name", "parentloop", "rindex", "rindex0"}

var tablerowDropAttrNames = []string{"col", "col0", "col_first", "col_last", "row"}

func (d *loopDrop) Attr(name string) (core.Value, bool) {
	switch name {
	case "first":
		return core.Bool(d.index0 == 0), true
	case "last":
		return core.Bool(d.index0 == d.length-1), true
	case "index":
		return core.Int(d.index0 + 1), true
	case "index0":
		return core.Int(d.index0), true
	case "length":
		return core.Int(d.length), true
	case "rindex":
		return core.Int(d.length - d.index0), true
	case "rindex0":
		return core.Int(d.length - d.index0 - 1), true
	case "name":
		return core.String(d.name), true
	case "parentloop":
		return d.parent, true
	}

	if d.cols > 0 {
		switch name {
		case "col":
			return core.Int(d.col0() + 1), true
		case "col0":
			return core.Int(d.col0()), true
		case "col_first":
			return core.Bool(d.col0() == 0), true
		case "col_last":
			return core.Bool(d.col0() == d.cols-1 || d.index0 == d.length-1), true
		case "row":
			return core.Int(d.row()), true
		}
	}

	return nil, false
}

func (d *loopDrop) AttrNames() []string {
	if d.cols > 0 {
		return append(append([]string{}, loopDropAttrNames...), tablerowDropAttrNames...)
	}
	return loopDropAttrNames
}

func (d *loopDrop) col0() int { return d.index0 % d.cols }
func (d *loopDrop) row() int  { return d.index0/d.cols + 1 }
