// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"carvel.dev/liquid/pkg/expr"
	"carvel.dev/liquid/pkg/template/core"
)

// cyclePayload emits the next value of its list on each render within
// the enclosing loop. Cycles sharing a group name share their position.
type cyclePayload struct {
	group    expr.Node
	values   []expr.Node
	argsText string
}

func parseCycle(args string) (Payload, error) {
	p, err := expr.NewParser(args)
	if err != nil {
		return nil, err
	}

	first, err := p.ParsePostfix()
	if err != nil {
		return nil, err
	}

	payload := cyclePayload{argsText: args}

	if p.Accept(expr.TokenColon) {
		payload.group = first
		first, err = p.ParsePostfix()
		if err != nil {
			return nil, err
		}
	}
	payload.values = append(payload.values, first)

	for p.Accept(expr.TokenComma) {
		val, err := p.ParsePostfix()
		if err != nil {
			return nil, err
		}
		payload.values = append(payload.values, val)
	}

	return payload, p.ExpectEnd()
}

func (p cyclePayload) Render(ctx *RenderCtx, _ *TagNode) error {
	key := p.argsText
	if p.group != nil {
		groupVal, err := ctx.Eval(p.group)
		if err != nil {
			return err
		}
		key = "name:" + core.Display(groupVal)
	}

	st, _ := ctx.innermostLoop()
	if st.cycles == nil {
		st.cycles = map[string]*cycleState{}
	}

	cycle, found := st.cycles[key]
	switch {
	case !found:
		cycle = &cycleState{args: p.argsText}
		st.cycles[key] = cycle
	case cycle.args != p.argsText:
		return core.NewError(core.RenderError, core.TagFailed,
			"cycle group '%s' used with different values", key[len("name:"):]).WithName("cycle")
	}

	val, err := ctx.Eval(p.values[cycle.index%len(p.values)])
	if err != nil {
		return err
	}
	cycle.index++

	ctx.WriteString(core.Display(val))
	return nil
}
