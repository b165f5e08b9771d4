// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"carvel.dev/liquid/pkg/expr"
	"carvel.dev/liquid/pkg/template/core"
)

// conditionPayload implements if, elsif and unless: render the body when
// the condition holds, otherwise pass on to the next chain member.
type conditionPayload struct {
	cond   expr.Node
	negate bool
}

func parseCondition(negate bool) func(string) (Payload, error) {
	return func(args string) (Payload, error) {
		cond, err := expr.Parse(args)
		if err != nil {
			return nil, err
		}
		return conditionPayload{cond, negate}, nil
	}
}

func (p conditionPayload) Render(ctx *RenderCtx, node *TagNode) error {
	val, err := ctx.Eval(p.cond)
	if err != nil {
		return err
	}
	if core.Truthy(val) != p.negate {
		return ctx.RenderChildren(node)
	}
	return ctx.RenderNext(node)
}

// elsePayload always renders; its elder decides whether it is reached.
type elsePayload struct{}

func (elsePayload) Render(ctx *RenderCtx, node *TagNode) error {
	return ctx.RenderChildren(node)
}

// blockPayload renders its children unconditionally (root and raw).
type blockPayload struct{}

func (blockPayload) Render(ctx *RenderCtx, node *TagNode) error {
	return ctx.RenderChildren(node)
}
